package services

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/arlenwu/teamforge/internal/config"
)

// CollaborativeFilter predicts item scores for a user from the behavior of
// Pearson-correlated neighbors. It is a pure in-memory computation over a
// matrix the caller builds per request.
type CollaborativeFilter struct {
	config *config.RecommendationConfig
	logger *logrus.Logger
}

func NewCollaborativeFilter(cfg *config.RecommendationConfig, logger *logrus.Logger) *CollaborativeFilter {
	return &CollaborativeFilter{
		config: cfg,
		logger: logger,
	}
}

type neighbor struct {
	userID     int64
	similarity float64
}

// ScoreItems predicts a score for every candidate item. A target user with
// no row in the matrix has no neighborhood and scores 0.0 everywhere.
func (f *CollaborativeFilter) ScoreItems(matrix BehaviorMatrix, targetUserID int64, candidateIDs []int64) map[int64]float64 {
	scores := make(map[int64]float64, len(candidateIDs))
	for _, itemID := range candidateIDs {
		scores[itemID] = 0.0
	}

	targetVector, ok := matrix[targetUserID]
	if !ok || len(targetVector) == 0 {
		return scores
	}

	neighbors := f.findNeighbors(matrix, targetUserID, targetVector)
	f.logger.WithFields(logrus.Fields{
		"user_id":   targetUserID,
		"neighbors": len(neighbors),
	}).Debug("collaborative neighborhood built")

	for _, itemID := range candidateIDs {
		scores[itemID] = f.predict(targetVector, itemID, neighbors, matrix)
	}

	return scores
}

// findNeighbors ranks all other users by Pearson correlation with the
// target, keeps those above the similarity threshold and caps the
// neighborhood at MaxNeighbors.
func (f *CollaborativeFilter) findNeighbors(matrix BehaviorMatrix, targetUserID int64, targetVector Vector) []neighbor {
	neighbors := make([]neighbor, 0)

	for userID, vector := range matrix {
		if userID == targetUserID {
			continue
		}
		similarity := PearsonCorrelation(targetVector, vector)
		if similarity > f.config.NeighborThreshold {
			neighbors = append(neighbors, neighbor{userID: userID, similarity: similarity})
		}
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].similarity != neighbors[j].similarity {
			return neighbors[i].similarity > neighbors[j].similarity
		}
		return neighbors[i].userID < neighbors[j].userID
	})

	if len(neighbors) > f.config.MaxNeighbors {
		neighbors = neighbors[:f.config.MaxNeighbors]
	}

	return neighbors
}

// predict returns the similarity-weighted average of neighbor weights for
// the item. Items the target already interacted with are still surfaced
// but damped, so familiar entries do not crowd out new ones.
func (f *CollaborativeFilter) predict(targetVector Vector, itemID int64, neighbors []neighbor, matrix BehaviorMatrix) float64 {
	if weight, ok := targetVector[itemID]; ok {
		return weight * f.config.InteractedDamping
	}

	weightedSum := 0.0
	similaritySum := 0.0

	for _, n := range neighbors {
		vector, ok := matrix[n.userID]
		if !ok {
			continue
		}
		if weight, ok := vector[itemID]; ok {
			weightedSum += n.similarity * weight
			similaritySum += math.Abs(n.similarity)
		}
	}

	if similaritySum == 0 {
		return 0.0
	}
	return weightedSum / similaritySum
}
