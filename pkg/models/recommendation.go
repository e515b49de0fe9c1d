package models

// FallbackReason explains why personalized recommendation was skipped for a
// user. The empty value means the user is eligible.
type FallbackReason string

const (
	FallbackNone     FallbackReason = ""
	FallbackNoLogin  FallbackReason = "NO_LOGIN"
	FallbackNoSkills FallbackReason = "NO_SKILLS"
)

// Recommendation pairs a recommended item with its hybrid score and a short
// human-readable explanation. Explanation is never absent, only possibly
// empty.
type Recommendation[T any] struct {
	Item        T       `json:"item"`
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
}

// RecommendationResponse wraps a recommendation list with the eligibility
// outcome so clients can surface "complete your skill profile" style hints.
type RecommendationResponse[T any] struct {
	UserID          int64               `json:"user_id"`
	Recommendations []Recommendation[T] `json:"recommendations"`
	FallbackReason  FallbackReason      `json:"fallback_reason,omitempty"`
}
