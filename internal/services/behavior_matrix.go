package services

import "github.com/arlenwu/teamforge/pkg/models"

// BehaviorMatrix maps userID -> itemID -> normalized interaction weight.
// Users without any events have no row at all; an absent row means "no
// personalization signal", not a zero vector.
type BehaviorMatrix map[int64]Vector

// actionWeight converts a behavior type into its interaction strength.
// Unrecognized types count as a plain view.
func actionWeight(t models.BehaviorType) float64 {
	switch t {
	case models.BehaviorView:
		return 1.0
	case models.BehaviorLike:
		return 2.0
	case models.BehaviorApply:
		return 3.0
	case models.BehaviorJoin:
		return 5.0
	default:
		return 1.0
	}
}

// BuildBehaviorMatrix accumulates action weights per (user, item) pair and
// max-normalizes each user's row so its largest entry is 1.0. Repeated
// actions on the same item sum up before normalization. Events are expected
// to be pre-filtered to a single target-type domain.
func BuildBehaviorMatrix(events []models.BehaviorEvent) BehaviorMatrix {
	matrix := make(BehaviorMatrix)

	for _, event := range events {
		row, ok := matrix[event.UserID]
		if !ok {
			row = make(Vector)
			matrix[event.UserID] = row
		}
		row[event.TargetID] += actionWeight(event.Type)
	}

	for _, row := range matrix {
		normalizeRow(row)
	}

	return matrix
}

// normalizeRow divides every weight by the row maximum. Rows whose maximum
// is zero are left untouched to avoid dividing by zero.
func normalizeRow(row Vector) {
	max := 0.0
	for _, weight := range row {
		if weight > max {
			max = weight
		}
	}
	if max <= 0 {
		return
	}
	for item, weight := range row {
		row[item] = weight / max
	}
}
