package models

import "time"

// BehaviorType classifies a logged user interaction. The set is closed;
// persistence rejects anything else at the schema boundary.
type BehaviorType string

const (
	BehaviorView  BehaviorType = "VIEW"
	BehaviorLike  BehaviorType = "LIKE"
	BehaviorApply BehaviorType = "APPLY"
	BehaviorJoin  BehaviorType = "JOIN"
)

// TargetType names the entity domain a behavior event refers to.
type TargetType string

const (
	TargetCompetition TargetType = "COMPETITION"
	TargetTeam        TargetType = "TEAM"
)

// BehaviorEvent is one logged (user, item, action) interaction.
type BehaviorEvent struct {
	ID         int64        `json:"id"`
	UserID     int64        `json:"user_id"`
	TargetType TargetType   `json:"target_type"`
	TargetID   int64        `json:"target_id"`
	Type       BehaviorType `json:"behavior_type"`
	CreatedAt  time.Time    `json:"created_at"`
}

// BehaviorEventRequest is the write-path payload for recording an event.
type BehaviorEventRequest struct {
	UserID     int64        `json:"user_id" binding:"required,min=1"`
	TargetType TargetType   `json:"target_type" binding:"required,oneof=COMPETITION TEAM"`
	TargetID   int64        `json:"target_id" binding:"required,min=1"`
	Type       BehaviorType `json:"behavior_type" binding:"required,oneof=VIEW LIKE APPLY JOIN"`
}
