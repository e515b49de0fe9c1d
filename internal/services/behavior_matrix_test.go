package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arlenwu/teamforge/pkg/models"
)

func event(userID, targetID int64, behavior models.BehaviorType) models.BehaviorEvent {
	return models.BehaviorEvent{
		UserID:     userID,
		TargetType: models.TargetCompetition,
		TargetID:   targetID,
		Type:       behavior,
	}
}

func TestActionWeight(t *testing.T) {
	assert.Equal(t, 1.0, actionWeight(models.BehaviorView))
	assert.Equal(t, 2.0, actionWeight(models.BehaviorLike))
	assert.Equal(t, 3.0, actionWeight(models.BehaviorApply))
	assert.Equal(t, 5.0, actionWeight(models.BehaviorJoin))
	assert.Equal(t, 1.0, actionWeight(models.BehaviorType("SHARE")))
}

func TestBuildBehaviorMatrix(t *testing.T) {
	t.Run("empty input yields empty matrix", func(t *testing.T) {
		assert.Empty(t, BuildBehaviorMatrix(nil))
	})

	t.Run("single event normalizes to one", func(t *testing.T) {
		matrix := BuildBehaviorMatrix([]models.BehaviorEvent{
			event(1, 10, models.BehaviorLike),
		})

		require.Contains(t, matrix, int64(1))
		assert.Equal(t, 1.0, matrix[1][10])
	})

	t.Run("repeated actions accumulate before normalization", func(t *testing.T) {
		matrix := BuildBehaviorMatrix([]models.BehaviorEvent{
			event(1, 10, models.BehaviorView),
			event(1, 10, models.BehaviorView),
			event(1, 10, models.BehaviorApply), // item 10 sums to 5.0
			event(1, 20, models.BehaviorLike),  // item 20 sums to 2.0
		})

		row := matrix[1]
		require.Len(t, row, 2)
		assert.InDelta(t, 1.0, row[10], 1e-9)
		assert.InDelta(t, 0.4, row[20], 1e-9)
	})

	t.Run("each user row normalizes independently", func(t *testing.T) {
		matrix := BuildBehaviorMatrix([]models.BehaviorEvent{
			event(1, 10, models.BehaviorJoin),
			event(1, 20, models.BehaviorView),
			event(2, 10, models.BehaviorView),
		})

		assert.InDelta(t, 1.0, matrix[1][10], 1e-9)
		assert.InDelta(t, 0.2, matrix[1][20], 1e-9)
		assert.InDelta(t, 1.0, matrix[2][10], 1e-9)
	})

	t.Run("users without events have no row", func(t *testing.T) {
		matrix := BuildBehaviorMatrix([]models.BehaviorEvent{
			event(1, 10, models.BehaviorView),
		})

		_, ok := matrix[2]
		assert.False(t, ok)
	})
}

func TestBuildSkillVector(t *testing.T) {
	t.Run("duplicates keep the strongest value", func(t *testing.T) {
		vector := BuildSkillVector([]models.SkillAssignment{
			{SkillID: 1, Strength: 3},
			{SkillID: 1, Strength: 5},
			{SkillID: 1, Strength: 2},
			{SkillID: 2, Strength: 4},
		})

		assert.Equal(t, Vector{1: 5.0, 2: 4.0}, vector)
	})

	t.Run("empty input yields empty vector", func(t *testing.T) {
		assert.Empty(t, BuildSkillVector(nil))
	})
}
