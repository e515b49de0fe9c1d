package models

// Skill is a named capability users declare and competitions require.
type Skill struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// SkillAssignment associates a skill with a numeric strength. The strength
// is a proficiency (user skills), an importance (competition requirements)
// or a weight (team skill priorities) depending on which read model
// produced it.
type SkillAssignment struct {
	SkillID  int64  `json:"skill_id"`
	Name     string `json:"name,omitempty"`
	Strength int    `json:"strength"`
}
