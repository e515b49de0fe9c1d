package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arlenwu/teamforge/internal/config"
	"github.com/arlenwu/teamforge/pkg/models"
)

const fallbackScore = 0.5

const (
	explainCompetitionSkills = "Your skills match this competition's requirements"
	explainCompetitionCrowd  = "Similar users are also interested"
	explainTeamSkills        = "Your skills complement this team"
	explainTeamCrowd         = "Users with similar activity joined teams like this"
	explainFallback          = "Recommended by default"
)

// RecommendationService blends content and collaborative scores into ranked
// recommendation lists. Every public method degrades instead of failing: an
// ineligible user or a scoring error yields the candidate list in its
// original order at a neutral score, never an empty 500.
type RecommendationService struct {
	store   RecommendationStore
	content *ContentScorer
	collab  *CollaborativeFilter
	config  *config.RecommendationConfig
	logger  *logrus.Logger
	metrics *RecommendationMetrics
}

func NewRecommendationService(store RecommendationStore, cfg *config.RecommendationConfig, logger *logrus.Logger, metrics *RecommendationMetrics) *RecommendationService {
	return &RecommendationService{
		store:   store,
		content: NewContentScorer(cfg, logger),
		collab:  NewCollaborativeFilter(cfg, logger),
		config:  cfg,
		logger:  logger,
		metrics: metrics,
	}
}

// FallbackReason reports why a user cannot receive personalized results, or
// FallbackNone when they can. Store errors are treated as ineligibility so
// the caller still serves a default-ordered list.
func (s *RecommendationService) FallbackReason(ctx context.Context, userID int64) models.FallbackReason {
	if userID <= 0 {
		return models.FallbackNoLogin
	}

	exists, err := s.store.UserExists(ctx, userID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("eligibility lookup failed, serving fallback")
		return models.FallbackNoLogin
	}
	if !exists {
		return models.FallbackNoLogin
	}

	count, err := s.store.CountUserSkills(ctx, userID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("skill count lookup failed, serving fallback")
		return models.FallbackNoSkills
	}
	if count == 0 {
		return models.FallbackNoSkills
	}

	return models.FallbackNone
}

// RecommendCompetitions returns the top personalized competitions for a
// user. The returned error is only non-nil when the candidate list itself
// cannot be loaded; every downstream failure falls back to default ordering.
func (s *RecommendationService) RecommendCompetitions(ctx context.Context, userID int64, limit int) ([]models.Recommendation[models.Competition], error) {
	limit = s.normalizeLimit(limit)
	started := time.Now()
	defer func() {
		s.metrics.ScoringDuration.WithLabelValues("competitions").Observe(time.Since(started).Seconds())
	}()

	candidates, err := s.store.ListAvailableCompetitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing competitions: %w", err)
	}

	if reason := s.FallbackReason(ctx, userID); reason != models.FallbackNone {
		s.metrics.Requests.WithLabelValues("competitions", "fallback").Inc()
		return fallbackList(candidates, limit), nil
	}

	var recs []models.Recommendation[models.Competition]
	err = capturePanic(func() error {
		var scoreErr error
		recs, scoreErr = s.scoreCompetitions(ctx, userID, candidates, limit)
		return scoreErr
	})
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("competition scoring failed, serving fallback")
		s.metrics.Requests.WithLabelValues("competitions", "fallback").Inc()
		return fallbackList(candidates, limit), nil
	}

	s.metrics.Requests.WithLabelValues("competitions", "personalized").Inc()
	return recs, nil
}

func (s *RecommendationService) scoreCompetitions(ctx context.Context, userID int64, candidates []models.Competition, limit int) ([]models.Recommendation[models.Competition], error) {
	userSkills, err := s.loadUserSkillVector(ctx, userID)
	if err != nil {
		return nil, err
	}

	events, err := s.store.ListBehaviorEvents(ctx, models.TargetCompetition)
	if err != nil {
		return nil, fmt.Errorf("listing behavior events: %w", err)
	}
	matrix := BuildBehaviorMatrix(events)

	candidateIDs := make([]int64, len(candidates))
	for i, c := range candidates {
		candidateIDs[i] = c.ID
	}
	collabScores := s.collab.ScoreItems(matrix, userID, candidateIDs)

	contentScores := make(map[int64]float64, len(candidates))
	for _, c := range candidates {
		required, err := s.store.ListRequiredSkills(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("listing required skills for competition %d: %w", c.ID, err)
		}
		contentScores[c.ID] = s.content.CompetitionFit(userSkills, BuildSkillVector(required))
	}

	return hybridRank(candidates, func(c models.Competition) int64 { return c.ID },
		contentScores, collabScores, s.config, limit,
		s.explainer(explainCompetitionSkills, explainCompetitionCrowd)), nil
}

// RecommendTeams returns the top recruiting teams for a user across all
// competitions, same degradation contract as RecommendCompetitions.
func (s *RecommendationService) RecommendTeams(ctx context.Context, userID int64, limit int) ([]models.Recommendation[models.Team], error) {
	limit = s.normalizeLimit(limit)
	started := time.Now()
	defer func() {
		s.metrics.ScoringDuration.WithLabelValues("teams").Observe(time.Since(started).Seconds())
	}()

	candidates, err := s.store.ListRecruitingTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing recruiting teams: %w", err)
	}

	if reason := s.FallbackReason(ctx, userID); reason != models.FallbackNone {
		s.metrics.Requests.WithLabelValues("teams", "fallback").Inc()
		return fallbackList(candidates, limit), nil
	}

	var recs []models.Recommendation[models.Team]
	err = capturePanic(func() error {
		var scoreErr error
		recs, scoreErr = s.scoreTeams(ctx, userID, candidates, limit)
		return scoreErr
	})
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("team scoring failed, serving fallback")
		s.metrics.Requests.WithLabelValues("teams", "fallback").Inc()
		return fallbackList(candidates, limit), nil
	}

	s.metrics.Requests.WithLabelValues("teams", "personalized").Inc()
	return recs, nil
}

func (s *RecommendationService) scoreTeams(ctx context.Context, userID int64, candidates []models.Team, limit int) ([]models.Recommendation[models.Team], error) {
	userSkills, err := s.loadUserSkillVector(ctx, userID)
	if err != nil {
		return nil, err
	}

	events, err := s.store.ListBehaviorEvents(ctx, models.TargetTeam)
	if err != nil {
		return nil, fmt.Errorf("listing behavior events: %w", err)
	}
	matrix := BuildBehaviorMatrix(events)

	candidateIDs := make([]int64, len(candidates))
	for i, t := range candidates {
		candidateIDs[i] = t.ID
	}
	collabScores := s.collab.ScoreItems(matrix, userID, candidateIDs)

	contentScores := make(map[int64]float64, len(candidates))
	for _, t := range candidates {
		score, err := s.teamComplementarity(ctx, t, userSkills)
		if err != nil {
			return nil, err
		}
		contentScores[t.ID] = score
	}

	return hybridRank(candidates, func(t models.Team) int64 { return t.ID },
		contentScores, collabScores, s.config, limit,
		s.explainer(explainTeamSkills, explainTeamCrowd)), nil
}

// RecommendTeamMembers ranks candidate users for a team by how much their
// skills fill the team's gaps against the competition requirements. This is
// a leader-facing view with no personalization fallback; an unknown team is
// an error.
func (s *RecommendationService) RecommendTeamMembers(ctx context.Context, teamID int64, limit int) ([]models.Recommendation[models.User], error) {
	limit = s.normalizeLimit(limit)
	started := time.Now()
	defer func() {
		s.metrics.ScoringDuration.WithLabelValues("members").Observe(time.Since(started).Seconds())
	}()

	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("loading team %d: %w", teamID, err)
	}

	required, err := s.store.ListRequiredSkills(ctx, team.CompetitionID)
	if err != nil {
		return nil, fmt.Errorf("listing required skills for competition %d: %w", team.CompetitionID, err)
	}
	requiredVector := BuildSkillVector(required)

	memberSkills, err := s.store.ListTeamMemberSkills(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("listing member skills for team %d: %w", teamID, err)
	}
	teamVector := BuildSkillVector(memberSkills)

	candidates, err := s.store.ListCandidateUsers(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("listing candidate users for team %d: %w", teamID, err)
	}

	recs := make([]models.Recommendation[models.User], 0, len(candidates))
	for _, user := range candidates {
		assignments, err := s.store.ListUserSkills(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("listing skills for user %d: %w", user.ID, err)
		}
		score := s.content.TeamComplementarity(teamVector, BuildSkillVector(assignments), requiredVector)
		if score <= s.config.MemberMinScore {
			continue
		}
		recs = append(recs, models.Recommendation[models.User]{
			Item:        user,
			Score:       score,
			Explanation: fmt.Sprintf("Fills skill gaps (complementarity %.2f)", score),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	if len(recs) > limit {
		recs = recs[:limit]
	}

	s.metrics.Requests.WithLabelValues("members", "personalized").Inc()
	return recs, nil
}

// CalculateCompetitionMatchScores computes content-fit scores for an
// externally chosen candidate set, with no filtering or ordering. Used by
// the paginated listing to annotate items in place. An ineligible user gets
// an empty map so the listing keeps its default ordering, and any scoring
// failure logs and returns an empty map so the listing still renders.
func (s *RecommendationService) CalculateCompetitionMatchScores(ctx context.Context, userID int64, competitions []models.Competition) map[int64]float64 {
	if reason := s.FallbackReason(ctx, userID); reason != models.FallbackNone {
		return map[int64]float64{}
	}

	scores := make(map[int64]float64, len(competitions))

	err := capturePanic(func() error {
		userSkills, err := s.loadUserSkillVector(ctx, userID)
		if err != nil {
			return err
		}

		for _, c := range competitions {
			required, err := s.store.ListRequiredSkills(ctx, c.ID)
			if err != nil {
				return err
			}
			scores[c.ID] = s.content.CompetitionFit(userSkills, BuildSkillVector(required))
		}
		return nil
	})
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("competition match scoring failed")
		return map[int64]float64{}
	}

	return scores
}

// CalculateTeamMatchScores is the team-scoped counterpart, used by the
// per-competition team recommendation endpoint. Same eligibility gate, but
// the score blends in the collaborative signal because team ranking also
// feeds the fallback-sort decision.
func (s *RecommendationService) CalculateTeamMatchScores(ctx context.Context, userID int64, teams []models.Team) map[int64]float64 {
	if reason := s.FallbackReason(ctx, userID); reason != models.FallbackNone {
		return map[int64]float64{}
	}

	scores := make(map[int64]float64, len(teams))

	err := capturePanic(func() error {
		userSkills, err := s.loadUserSkillVector(ctx, userID)
		if err != nil {
			return err
		}

		events, err := s.store.ListBehaviorEvents(ctx, models.TargetTeam)
		if err != nil {
			return err
		}
		matrix := BuildBehaviorMatrix(events)

		candidateIDs := make([]int64, len(teams))
		for i, t := range teams {
			candidateIDs[i] = t.ID
		}
		collabScores := s.collab.ScoreItems(matrix, userID, candidateIDs)

		for _, t := range teams {
			content, err := s.teamComplementarity(ctx, t, userSkills)
			if err != nil {
				return err
			}
			scores[t.ID] = s.config.ContentWeight*content + s.config.CollaborativeWeight*collabScores[t.ID]
		}
		return nil
	})
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("team match scoring failed")
		return map[int64]float64{}
	}

	return scores
}

func (s *RecommendationService) teamComplementarity(ctx context.Context, team models.Team, userSkills Vector) (float64, error) {
	required, err := s.store.ListRequiredSkills(ctx, team.CompetitionID)
	if err != nil {
		return 0, fmt.Errorf("listing required skills for competition %d: %w", team.CompetitionID, err)
	}
	memberSkills, err := s.store.ListTeamMemberSkills(ctx, team.ID)
	if err != nil {
		return 0, fmt.Errorf("listing member skills for team %d: %w", team.ID, err)
	}
	return s.content.TeamComplementarity(BuildSkillVector(memberSkills), userSkills, BuildSkillVector(required)), nil
}

func (s *RecommendationService) loadUserSkillVector(ctx context.Context, userID int64) (Vector, error) {
	assignments, err := s.store.ListUserSkills(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing skills for user %d: %w", userID, err)
	}
	return BuildSkillVector(assignments), nil
}

func (s *RecommendationService) normalizeLimit(limit int) int {
	if limit <= 0 {
		return s.config.DefaultTopK
	}
	if limit > s.config.MaxTopK {
		return s.config.MaxTopK
	}
	return limit
}

// explainer builds the per-item explanation from whichever score components
// cleared the threshold. A personalized result where neither signal clears
// it stays unexplained; explainFallback is reserved for the neutral
// fallback list.
func (s *RecommendationService) explainer(contentText, collabText string) func(content, collab float64) string {
	return func(content, collab float64) string {
		parts := make([]string, 0, 2)
		if content > s.config.ExplainThreshold {
			parts = append(parts, contentText)
		}
		if collab > s.config.ExplainThreshold {
			parts = append(parts, collabText)
		}
		return strings.Join(parts, "; ")
	}
}

// hybridRank blends the two score maps, drops items below the floor, sorts
// by score descending (candidate order breaks ties) and truncates to limit.
func hybridRank[T any](items []T, id func(T) int64, contentScores, collabScores map[int64]float64, cfg *config.RecommendationConfig, limit int, explain func(content, collab float64) string) []models.Recommendation[T] {
	recs := make([]models.Recommendation[T], 0, len(items))
	for _, item := range items {
		itemID := id(item)
		content := contentScores[itemID]
		collab := collabScores[itemID]
		score := cfg.ContentWeight*content + cfg.CollaborativeWeight*collab
		if score <= cfg.MinScore {
			continue
		}
		recs = append(recs, models.Recommendation[T]{
			Item:        item,
			Score:       score,
			Explanation: explain(content, collab),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

// fallbackList serves candidates in their original order at a neutral score.
func fallbackList[T any](items []T, limit int) []models.Recommendation[T] {
	if limit > len(items) {
		limit = len(items)
	}
	recs := make([]models.Recommendation[T], 0, limit)
	for _, item := range items[:limit] {
		recs = append(recs, models.Recommendation[T]{
			Item:        item,
			Score:       fallbackScore,
			Explanation: explainFallback,
		})
	}
	return recs
}

// capturePanic converts a panic inside scoring into an error so a bad score
// computation degrades to fallback instead of killing the request.
func capturePanic(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scoring panicked: %v", r)
		}
	}()
	return fn()
}
