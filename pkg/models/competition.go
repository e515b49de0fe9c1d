package models

import "time"

// CompetitionStatus tracks the coarse lifecycle of a competition. The
// engine only cares that candidates were pre-filtered to applyable ones;
// transitions themselves are plain CRUD handled elsewhere.
type CompetitionStatus string

const (
	CompetitionUpcoming CompetitionStatus = "UPCOMING"
	CompetitionOngoing  CompetitionStatus = "ONGOING"
	CompetitionFinished CompetitionStatus = "FINISHED"
)

type Competition struct {
	ID                   int64             `json:"id"`
	Name                 string            `json:"name"`
	Description          string            `json:"description,omitempty"`
	Status               CompetitionStatus `json:"status"`
	RegistrationDeadline time.Time         `json:"registration_deadline"`
	StartDate            time.Time         `json:"start_date"`
	EndDate              time.Time         `json:"end_date"`
	MinTeamSize          int               `json:"min_team_size"`
	MaxTeamSize          int               `json:"max_team_size"`
	CreatedAt            time.Time         `json:"created_at"`
}

// CompetitionListItem is a listing row, optionally annotated with the
// recommendation boost data when recommend mode promoted it.
type CompetitionListItem struct {
	Competition
	MatchScore      *float64 `json:"match_score,omitempty"`
	Recommended     bool     `json:"recommended"`
	RecommendReason string   `json:"recommend_reason,omitempty"`
}

// CompetitionPage is one page of the combined (promoted ++ default-ordered)
// listing sequence.
type CompetitionPage struct {
	Items []CompetitionListItem `json:"items"`
	Page  int                   `json:"page"`
	Size  int                   `json:"size"`
	Total int                   `json:"total"`
}
