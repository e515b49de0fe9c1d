package models

import "time"

type TeamStatus string

const (
	TeamRecruiting TeamStatus = "RECRUITING"
	TeamFull       TeamStatus = "FULL"
	TeamCompeting  TeamStatus = "COMPETING"
	TeamDisbanded  TeamStatus = "DISBANDED"
)

type Team struct {
	ID            int64      `json:"id"`
	CompetitionID int64      `json:"competition_id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Status        TeamStatus `json:"status"`
	LeaderID      int64      `json:"leader_id"`
	MemberCount   int        `json:"member_count"`
	CreatedAt     time.Time  `json:"created_at"`
}

// TeamRecommendationItem is a per-competition team suggestion row.
// FallbackSorted is true when no candidate scored above the personalization
// threshold and the list fell back to recency ordering.
type TeamRecommendationItem struct {
	TeamID         int64      `json:"team_id"`
	TeamName       string     `json:"team_name"`
	TeamStatus     TeamStatus `json:"team_status"`
	MatchScore     float64    `json:"match_score"`
	Reason         string     `json:"reason,omitempty"`
	FallbackSorted bool       `json:"fallback_sorted"`
}
