package services

import (
	"context"

	"github.com/arlenwu/teamforge/pkg/models"
)

// RecommendationStore is the read-model contract the engine consumes. The
// CRUD layer owns the data; the engine only ever reads through this
// interface, which keeps scoring trivially safe to run from concurrent
// requests.
type RecommendationStore interface {
	ListBehaviorEvents(ctx context.Context, targetType models.TargetType) ([]models.BehaviorEvent, error)
	ListUserSkills(ctx context.Context, userID int64) ([]models.SkillAssignment, error)
	ListTeamMemberSkills(ctx context.Context, teamID int64) ([]models.SkillAssignment, error)
	ListRequiredSkills(ctx context.Context, competitionID int64) ([]models.SkillAssignment, error)
	ListTeamSkills(ctx context.Context, teamID int64) ([]models.SkillAssignment, error)
	UserExists(ctx context.Context, userID int64) (bool, error)
	CountUserSkills(ctx context.Context, userID int64) (int, error)
	ListAvailableCompetitions(ctx context.Context) ([]models.Competition, error)
	ListRecruitingTeams(ctx context.Context) ([]models.Team, error)
	ListTeamsByCompetition(ctx context.Context, competitionID int64) ([]models.Team, error)
	GetTeam(ctx context.Context, teamID int64) (*models.Team, error)
	ListCandidateUsers(ctx context.Context, teamID int64) ([]models.User, error)
}

// RecommendationServiceInterface is consumed by the HTTP handlers and the
// listing service.
type RecommendationServiceInterface interface {
	RecommendCompetitions(ctx context.Context, userID int64, limit int) ([]models.Recommendation[models.Competition], error)
	RecommendTeams(ctx context.Context, userID int64, limit int) ([]models.Recommendation[models.Team], error)
	RecommendTeamMembers(ctx context.Context, teamID int64, limit int) ([]models.Recommendation[models.User], error)
	CalculateCompetitionMatchScores(ctx context.Context, userID int64, competitions []models.Competition) map[int64]float64
	CalculateTeamMatchScores(ctx context.Context, userID int64, teams []models.Team) map[int64]float64
	BuildCompetitionRecommendReason(ctx context.Context, userID, competitionID int64) string
	BuildTeamRecommendReason(ctx context.Context, userID, teamID int64) string
	FallbackReason(ctx context.Context, userID int64) models.FallbackReason
}
