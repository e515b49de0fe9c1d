package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPromoteTopK(t *testing.T) {
	score := func(scores map[int64]float64) func(int64) float64 {
		return func(id int64) float64 { return scores[id] }
	}

	t.Run("best scored items move to the front", func(t *testing.T) {
		items := []int64{1, 2, 3, 4, 5}
		scores := map[int64]float64{1: 0.1, 2: 0.9, 3: 0.2, 4: 0.8, 5: 0.0}

		result, promoted := PromoteTopK(items, score(scores), 2)

		assert.Equal(t, 2, promoted)
		assert.Equal(t, []int64{2, 4, 1, 3, 5}, result)
	})

	t.Run("unpromoted items keep their base order", func(t *testing.T) {
		items := []int64{5, 4, 3, 2, 1}
		scores := map[int64]float64{3: 1.0}

		result, promoted := PromoteTopK(items, score(scores), 1)

		assert.Equal(t, 1, promoted)
		assert.Equal(t, []int64{3, 5, 4, 2, 1}, result)
	})

	t.Run("ties break by base order", func(t *testing.T) {
		items := []int64{1, 2, 3}
		scores := map[int64]float64{1: 0.5, 2: 0.5, 3: 0.5}

		result, promoted := PromoteTopK(items, score(scores), 2)

		assert.Equal(t, 2, promoted)
		assert.Equal(t, []int64{1, 2, 3}, result)
	})

	t.Run("k larger than the list promotes everything", func(t *testing.T) {
		items := []int64{1, 2}
		scores := map[int64]float64{2: 1.0}

		result, promoted := PromoteTopK(items, score(scores), 10)

		assert.Equal(t, 2, promoted)
		assert.Equal(t, []int64{2, 1}, result)
	})

	t.Run("non positive k is a no-op", func(t *testing.T) {
		items := []int64{1, 2, 3}

		result, promoted := PromoteTopK(items, score(nil), 0)

		assert.Equal(t, 0, promoted)
		assert.Equal(t, items, result)
	})

	t.Run("empty input", func(t *testing.T) {
		result, promoted := PromoteTopK(nil, score(nil), 3)

		assert.Equal(t, 0, promoted)
		assert.Empty(t, result)
	})
}
