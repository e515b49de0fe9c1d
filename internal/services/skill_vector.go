package services

import "github.com/arlenwu/teamforge/pkg/models"

// BuildSkillVector turns skill associations into a sparse vector keyed by
// skill ID. Duplicate skill entries keep the strongest value: a user listed
// twice for the same skill, or a team whose members overlap, counts at the
// highest level rather than the sum.
func BuildSkillVector(assignments []models.SkillAssignment) Vector {
	vector := make(Vector, len(assignments))
	for _, assignment := range assignments {
		strength := float64(assignment.Strength)
		if existing, ok := vector[assignment.SkillID]; !ok || strength > existing {
			vector[assignment.SkillID] = strength
		}
	}
	return vector
}
