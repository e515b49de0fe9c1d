package services

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Vector is a sparse numeric vector keyed by entity ID (user, skill, ...).
// Vectors are built once per scoring call and not mutated afterwards.
type Vector map[int64]float64

// PearsonCorrelation computes the Pearson correlation coefficient of two
// sparse vectors over the keys they share. Degenerate inputs (fewer than
// two shared keys, zero variance) resolve to 0.0 rather than NaN so callers
// never have to special-case the result.
func PearsonCorrelation(a, b Vector) float64 {
	var sum1, sum2, sum1Sq, sum2Sq, pSum float64
	n := 0

	for key, v1 := range a {
		v2, ok := b[key]
		if !ok {
			continue
		}
		sum1 += v1
		sum2 += v2
		sum1Sq += v1 * v1
		sum2Sq += v2 * v2
		pSum += v1 * v2
		n++
	}

	if n < 2 {
		return 0.0
	}

	fn := float64(n)
	numerator := pSum - sum1*sum2/fn
	denominator := math.Sqrt((sum1Sq - sum1*sum1/fn) * (sum2Sq - sum2*sum2/fn))

	if denominator == 0 {
		return 0.0
	}
	return numerator / denominator
}

// CosineSimilarity computes cosine similarity between two sparse vectors.
// The dot product runs over the key intersection only, while each norm
// covers that vector's full key set; missing keys contribute nothing to the
// dot product, so this matches the zero-filled union definition.
func CosineSimilarity(a, b Vector) float64 {
	dot := 0.0
	shared := 0
	for key, v1 := range a {
		if v2, ok := b[key]; ok {
			dot += v1 * v2
			shared++
		}
	}
	if shared == 0 {
		return 0.0
	}

	norm1 := floats.Norm(vectorValues(a), 2)
	norm2 := floats.Norm(vectorValues(b), 2)
	if norm1 == 0 || norm2 == 0 {
		return 0.0
	}

	return dot / (norm1 * norm2)
}

func vectorValues(v Vector) []float64 {
	values := make([]float64, 0, len(v))
	for _, value := range v {
		values = append(values, value)
	}
	return values
}
