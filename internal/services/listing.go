package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"

	"github.com/arlenwu/teamforge/internal/config"
	"github.com/arlenwu/teamforge/pkg/models"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// ListingStore is the query surface the listing service needs beyond the
// recommendation read model.
type ListingStore interface {
	SearchCompetitions(ctx context.Context, status models.CompetitionStatus, keyword string) ([]models.Competition, error)
	ListTeamsByCompetition(ctx context.Context, competitionID int64) ([]models.Team, error)
}

// CompetitionListQuery carries the parsed listing parameters. UserID is zero
// for anonymous requests.
type CompetitionListQuery struct {
	Status    models.CompetitionStatus
	Keyword   string
	Page      int
	Size      int
	Recommend bool
	TopK      int
	UserID    int64
}

// CompetitionService serves the paginated competition listing, optionally
// promoting the user's best matches to the head of the sequence, and the
// per-competition team suggestions.
type CompetitionService struct {
	store       ListingStore
	recommender RecommendationServiceInterface
	config      *config.RecommendationConfig
	logger      *logrus.Logger
}

func NewCompetitionService(store ListingStore, recommender RecommendationServiceInterface, cfg *config.RecommendationConfig, logger *logrus.Logger) *CompetitionService {
	return &CompetitionService{
		store:       store,
		recommender: recommender,
		config:      cfg,
		logger:      logger,
	}
}

// ListCompetitions runs the filtered query, applies Top-K promotion over the
// whole filtered sequence when recommend mode is on, and only then
// paginates, so page boundaries land on the combined order.
func (s *CompetitionService) ListCompetitions(ctx context.Context, query CompetitionListQuery) (*models.CompetitionPage, error) {
	page, size := normalizePage(query.Page, query.Size)
	keyword := norm.NFC.String(strings.TrimSpace(query.Keyword))

	competitions, err := s.store.SearchCompetitions(ctx, query.Status, keyword)
	if err != nil {
		return nil, fmt.Errorf("searching competitions: %w", err)
	}

	items := make([]models.CompetitionListItem, len(competitions))
	for i, c := range competitions {
		items[i] = models.CompetitionListItem{Competition: c}
	}

	if query.Recommend && query.UserID > 0 {
		items = s.promoteMatches(ctx, query.UserID, query.TopK, items)
	}

	total := len(items)
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	return &models.CompetitionPage{
		Items: items[start:end],
		Page:  page,
		Size:  size,
		Total: total,
	}, nil
}

// promoteMatches annotates and front-loads the user's top matches. A failed
// or empty scoring pass leaves the default order untouched.
func (s *CompetitionService) promoteMatches(ctx context.Context, userID int64, topK int, items []models.CompetitionListItem) []models.CompetitionListItem {
	competitions := make([]models.Competition, len(items))
	for i, item := range items {
		competitions[i] = item.Competition
	}

	scores := s.recommender.CalculateCompetitionMatchScores(ctx, userID, competitions)
	if len(scores) == 0 {
		return items
	}

	k := topK
	if k <= 0 {
		k = s.config.DefaultTopK
	}
	if k > s.config.MaxTopK {
		k = s.config.MaxTopK
	}

	combined, promoted := PromoteTopK(items, func(item models.CompetitionListItem) float64 {
		return scores[item.ID]
	}, k)

	for i := 0; i < promoted; i++ {
		score := scores[combined[i].ID]
		if score <= 0 {
			continue
		}
		combined[i].MatchScore = &score
		combined[i].Recommended = true
	}
	for i := 0; i < promoted; i++ {
		if !combined[i].Recommended {
			continue
		}
		combined[i].RecommendReason = s.recommender.BuildCompetitionRecommendReason(ctx, userID, combined[i].ID)
	}

	return combined
}

// RecommendTeamsForCompetition ranks a competition's teams for one user.
// When nobody clears the personalization threshold the list degrades to
// newest-first ordering and says so via FallbackSorted.
func (s *CompetitionService) RecommendTeamsForCompetition(ctx context.Context, userID, competitionID int64, limit int) ([]models.TeamRecommendationItem, error) {
	if limit <= 0 {
		limit = s.config.DefaultTopK
	}
	if limit > s.config.MaxTopK {
		limit = s.config.MaxTopK
	}

	teams, err := s.store.ListTeamsByCompetition(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("listing teams for competition %d: %w", competitionID, err)
	}
	if len(teams) == 0 {
		return []models.TeamRecommendationItem{}, nil
	}

	var scores map[int64]float64
	if userID > 0 {
		scores = s.recommender.CalculateTeamMatchScores(ctx, userID, teams)
	}

	maxScore := 0.0
	for _, score := range scores {
		if score > maxScore {
			maxScore = score
		}
	}

	if maxScore < s.config.TeamFallbackThreshold {
		return s.fallbackSortedTeams(ctx, userID, teams, scores, limit), nil
	}

	sorted := make([]models.Team, len(teams))
	copy(sorted, teams)
	sort.SliceStable(sorted, func(i, j int) bool {
		return scores[sorted[i].ID] > scores[sorted[j].ID]
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	items := make([]models.TeamRecommendationItem, len(sorted))
	for i, team := range sorted {
		items[i] = models.TeamRecommendationItem{
			TeamID:     team.ID,
			TeamName:   team.Name,
			TeamStatus: team.Status,
			MatchScore: scores[team.ID],
			Reason:     s.recommender.BuildTeamRecommendReason(ctx, userID, team.ID),
		}
	}
	return items, nil
}

func (s *CompetitionService) fallbackSortedTeams(ctx context.Context, userID int64, teams []models.Team, scores map[int64]float64, limit int) []models.TeamRecommendationItem {
	sorted := make([]models.Team, len(teams))
	copy(sorted, teams)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	items := make([]models.TeamRecommendationItem, len(sorted))
	for i, team := range sorted {
		items[i] = models.TeamRecommendationItem{
			TeamID:         team.ID,
			TeamName:       team.Name,
			TeamStatus:     team.Status,
			MatchScore:     scores[team.ID],
			Reason:         s.recommender.BuildTeamRecommendReason(ctx, userID, team.ID),
			FallbackSorted: true,
		}
	}
	return items
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}
