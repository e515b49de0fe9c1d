package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arlenwu/teamforge/pkg/models"
)

// fakeStore is an in-memory RecommendationStore. Setting an entry in errs
// makes the named method fail, which is how the degradation paths are
// exercised.
type fakeStore struct {
	users          map[int64]bool
	userSkills     map[int64][]models.SkillAssignment
	events         []models.BehaviorEvent
	requiredSkills map[int64][]models.SkillAssignment
	teamSkills     map[int64][]models.SkillAssignment
	memberSkills   map[int64][]models.SkillAssignment
	competitions   []models.Competition
	teams          []models.Team
	candidates     []models.User
	errs           map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:          make(map[int64]bool),
		userSkills:     make(map[int64][]models.SkillAssignment),
		requiredSkills: make(map[int64][]models.SkillAssignment),
		teamSkills:     make(map[int64][]models.SkillAssignment),
		memberSkills:   make(map[int64][]models.SkillAssignment),
		errs:           make(map[string]error),
	}
}

func (s *fakeStore) ListBehaviorEvents(_ context.Context, targetType models.TargetType) ([]models.BehaviorEvent, error) {
	if err := s.errs["ListBehaviorEvents"]; err != nil {
		return nil, err
	}
	var filtered []models.BehaviorEvent
	for _, e := range s.events {
		if e.TargetType == targetType {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

func (s *fakeStore) ListUserSkills(_ context.Context, userID int64) ([]models.SkillAssignment, error) {
	if err := s.errs["ListUserSkills"]; err != nil {
		return nil, err
	}
	return s.userSkills[userID], nil
}

func (s *fakeStore) ListTeamMemberSkills(_ context.Context, teamID int64) ([]models.SkillAssignment, error) {
	if err := s.errs["ListTeamMemberSkills"]; err != nil {
		return nil, err
	}
	return s.memberSkills[teamID], nil
}

func (s *fakeStore) ListRequiredSkills(_ context.Context, competitionID int64) ([]models.SkillAssignment, error) {
	if err := s.errs["ListRequiredSkills"]; err != nil {
		return nil, err
	}
	return s.requiredSkills[competitionID], nil
}

func (s *fakeStore) ListTeamSkills(_ context.Context, teamID int64) ([]models.SkillAssignment, error) {
	if err := s.errs["ListTeamSkills"]; err != nil {
		return nil, err
	}
	return s.teamSkills[teamID], nil
}

func (s *fakeStore) UserExists(_ context.Context, userID int64) (bool, error) {
	if err := s.errs["UserExists"]; err != nil {
		return false, err
	}
	return s.users[userID], nil
}

func (s *fakeStore) CountUserSkills(_ context.Context, userID int64) (int, error) {
	if err := s.errs["CountUserSkills"]; err != nil {
		return 0, err
	}
	return len(s.userSkills[userID]), nil
}

func (s *fakeStore) ListAvailableCompetitions(_ context.Context) ([]models.Competition, error) {
	if err := s.errs["ListAvailableCompetitions"]; err != nil {
		return nil, err
	}
	return s.competitions, nil
}

func (s *fakeStore) SearchCompetitions(_ context.Context, _ models.CompetitionStatus, _ string) ([]models.Competition, error) {
	if err := s.errs["SearchCompetitions"]; err != nil {
		return nil, err
	}
	return s.competitions, nil
}

func (s *fakeStore) ListRecruitingTeams(_ context.Context) ([]models.Team, error) {
	if err := s.errs["ListRecruitingTeams"]; err != nil {
		return nil, err
	}
	return s.teams, nil
}

func (s *fakeStore) ListTeamsByCompetition(_ context.Context, competitionID int64) ([]models.Team, error) {
	if err := s.errs["ListTeamsByCompetition"]; err != nil {
		return nil, err
	}
	var filtered []models.Team
	for _, t := range s.teams {
		if t.CompetitionID == competitionID {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

func (s *fakeStore) GetTeam(_ context.Context, teamID int64) (*models.Team, error) {
	if err := s.errs["GetTeam"]; err != nil {
		return nil, err
	}
	for i := range s.teams {
		if s.teams[i].ID == teamID {
			return &s.teams[i], nil
		}
	}
	return nil, errors.New("team not found")
}

func (s *fakeStore) ListCandidateUsers(_ context.Context, _ int64) ([]models.User, error) {
	if err := s.errs["ListCandidateUsers"]; err != nil {
		return nil, err
	}
	return s.candidates, nil
}

// The metrics constructor registers collectors on the global Prometheus
// registry, so it can only run once per test binary.
var (
	testMetricsOnce sync.Once
	testMetrics     *RecommendationMetrics
)

func newTestRecommendationService(store RecommendationStore) *RecommendationService {
	testMetricsOnce.Do(func() { testMetrics = NewRecommendationMetrics() })
	return NewRecommendationService(store, testConfig(), testLogger(), testMetrics)
}

func eligibleUser(store *fakeStore, userID int64, skills ...models.SkillAssignment) {
	store.users[userID] = true
	store.userSkills[userID] = skills
}

func TestRecommendationService_FallbackReason(t *testing.T) {
	store := newFakeStore()
	eligibleUser(store, 1, models.SkillAssignment{SkillID: 1, Strength: 3})
	store.users[2] = true
	service := newTestRecommendationService(store)

	ctx := context.Background()

	t.Run("anonymous user", func(t *testing.T) {
		assert.Equal(t, models.FallbackNoLogin, service.FallbackReason(ctx, 0))
		assert.Equal(t, models.FallbackNoLogin, service.FallbackReason(ctx, -4))
	})

	t.Run("unknown user", func(t *testing.T) {
		assert.Equal(t, models.FallbackNoLogin, service.FallbackReason(ctx, 99))
	})

	t.Run("user without skills", func(t *testing.T) {
		assert.Equal(t, models.FallbackNoSkills, service.FallbackReason(ctx, 2))
	})

	t.Run("eligible user", func(t *testing.T) {
		assert.Equal(t, models.FallbackNone, service.FallbackReason(ctx, 1))
	})

	t.Run("eligibility lookup failure degrades to fallback", func(t *testing.T) {
		store.errs["UserExists"] = errors.New("connection refused")
		defer delete(store.errs, "UserExists")

		assert.Equal(t, models.FallbackNoLogin, service.FallbackReason(ctx, 1))
	})
}

func TestRecommendationService_RecommendCompetitions(t *testing.T) {
	ctx := context.Background()

	setup := func() (*fakeStore, *RecommendationService) {
		store := newFakeStore()
		store.competitions = []models.Competition{
			{ID: 101, Name: "AI Challenge"},
			{ID: 102, Name: "Web Hackathon"},
			{ID: 103, Name: "Data Cup"},
		}
		// User 1 is a perfect fit for 101, a weak fit for 102, none for 103.
		eligibleUser(store, 1,
			models.SkillAssignment{SkillID: 1, Name: "Go", Strength: 5},
			models.SkillAssignment{SkillID: 2, Name: "SQL", Strength: 4},
		)
		store.requiredSkills[101] = []models.SkillAssignment{
			{SkillID: 1, Name: "Go", Strength: 5},
			{SkillID: 2, Name: "SQL", Strength: 4},
		}
		store.requiredSkills[102] = []models.SkillAssignment{
			{SkillID: 1, Name: "Go", Strength: 1},
			{SkillID: 3, Name: "CSS", Strength: 5},
		}
		store.requiredSkills[103] = []models.SkillAssignment{
			{SkillID: 9, Name: "Rust", Strength: 5},
		}
		return store, newTestRecommendationService(store)
	}

	t.Run("personalized results are sorted and filtered", func(t *testing.T) {
		_, service := setup()

		recs, err := service.RecommendCompetitions(ctx, 1, 10)

		require.NoError(t, err)
		require.Len(t, recs, 2) // 103 has no overlap and falls below the floor
		assert.Equal(t, int64(101), recs[0].Item.ID)
		assert.Equal(t, int64(102), recs[1].Item.ID)
		assert.Greater(t, recs[0].Score, recs[1].Score)
	})

	t.Run("strong content match is explained", func(t *testing.T) {
		_, service := setup()

		recs, err := service.RecommendCompetitions(ctx, 1, 10)

		require.NoError(t, err)
		assert.Equal(t, explainCompetitionSkills, recs[0].Explanation)
	})

	t.Run("anonymous user gets fallback list in original order", func(t *testing.T) {
		_, service := setup()

		recs, err := service.RecommendCompetitions(ctx, 0, 10)

		require.NoError(t, err)
		require.Len(t, recs, 3)
		assert.Equal(t, int64(101), recs[0].Item.ID)
		assert.Equal(t, int64(102), recs[1].Item.ID)
		assert.Equal(t, int64(103), recs[2].Item.ID)
		for _, rec := range recs {
			assert.Equal(t, fallbackScore, rec.Score)
			assert.Equal(t, explainFallback, rec.Explanation)
		}
	})

	t.Run("user without skills gets fallback list", func(t *testing.T) {
		store, service := setup()
		store.users[5] = true

		recs, err := service.RecommendCompetitions(ctx, 5, 2)

		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, fallbackScore, recs[0].Score)
	})

	t.Run("scoring failure degrades to fallback", func(t *testing.T) {
		store, service := setup()
		store.errs["ListBehaviorEvents"] = errors.New("query timeout")

		recs, err := service.RecommendCompetitions(ctx, 1, 10)

		require.NoError(t, err)
		require.Len(t, recs, 3)
		assert.Equal(t, fallbackScore, recs[0].Score)
	})

	t.Run("candidate load failure is a real error", func(t *testing.T) {
		store, service := setup()
		store.errs["ListAvailableCompetitions"] = errors.New("down")

		_, err := service.RecommendCompetitions(ctx, 1, 10)

		assert.Error(t, err)
	})

	t.Run("limit defaults and caps", func(t *testing.T) {
		_, service := setup()

		recs, err := service.RecommendCompetitions(ctx, 0, 0)
		require.NoError(t, err)
		assert.Len(t, recs, 3) // DefaultTopK exceeds the candidate count

		recs, err = service.RecommendCompetitions(ctx, 0, 1)
		require.NoError(t, err)
		assert.Len(t, recs, 1)
	})

	t.Run("weak signals leave the explanation empty", func(t *testing.T) {
		_, service := setup()

		recs, err := service.RecommendCompetitions(ctx, 1, 10)

		require.NoError(t, err)
		require.Len(t, recs, 2)
		// 102 survives the floor but neither signal clears the explain
		// threshold, which is distinct from the fallback explanation.
		assert.Empty(t, recs[1].Explanation)
	})

	t.Run("collaborative signal boosts what similar users joined", func(t *testing.T) {
		store, service := setup()
		// Strip content signal so only collaboration differentiates.
		store.requiredSkills = map[int64][]models.SkillAssignment{}
		store.events = []models.BehaviorEvent{
			event(1, 101, models.BehaviorView),
			event(1, 102, models.BehaviorLike),
			event(2, 101, models.BehaviorView),
			event(2, 102, models.BehaviorLike),
			event(2, 103, models.BehaviorJoin),
		}

		recs, err := service.RecommendCompetitions(ctx, 1, 10)

		require.NoError(t, err)
		require.NotEmpty(t, recs)
		assert.Equal(t, int64(103), recs[0].Item.ID)
	})
}

func TestRecommendationService_RecommendTeams(t *testing.T) {
	ctx := context.Background()

	store := newFakeStore()
	store.teams = []models.Team{
		{ID: 11, CompetitionID: 101, Name: "Gophers", Status: models.TeamRecruiting},
		{ID: 12, CompetitionID: 101, Name: "Rustaceans", Status: models.TeamRecruiting},
	}
	store.requiredSkills[101] = []models.SkillAssignment{
		{SkillID: 1, Name: "Go", Strength: 5},
	}
	// Team 11 lacks the required skill entirely; team 12 covers it.
	store.memberSkills[12] = []models.SkillAssignment{
		{SkillID: 1, Name: "Go", Strength: 5},
	}
	eligibleUser(store, 1, models.SkillAssignment{SkillID: 1, Name: "Go", Strength: 5})
	service := newTestRecommendationService(store)

	recs, err := service.RecommendTeams(ctx, 1, 10)

	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, int64(11), recs[0].Item.ID)
	assert.Equal(t, explainTeamSkills, recs[0].Explanation)
}

func TestRecommendationService_RecommendTeamMembers(t *testing.T) {
	ctx := context.Background()

	store := newFakeStore()
	store.teams = []models.Team{
		{ID: 11, CompetitionID: 101, Name: "Gophers", Status: models.TeamRecruiting},
	}
	store.requiredSkills[101] = []models.SkillAssignment{
		{SkillID: 1, Name: "Go", Strength: 5},
		{SkillID: 2, Name: "SQL", Strength: 3},
	}
	store.memberSkills[11] = []models.SkillAssignment{
		{SkillID: 1, Name: "Go", Strength: 4},
	}
	store.candidates = []models.User{
		{ID: 21, Username: "alice"},
		{ID: 22, Username: "bob"},
		{ID: 23, Username: "carol"},
	}
	// Alice fills the SQL gap, Bob duplicates what the team has, Carol
	// brings a small surplus.
	store.userSkills[21] = []models.SkillAssignment{{SkillID: 2, Name: "SQL", Strength: 5}}
	store.userSkills[22] = []models.SkillAssignment{{SkillID: 1, Name: "Go", Strength: 3}}
	store.userSkills[23] = []models.SkillAssignment{{SkillID: 1, Name: "Go", Strength: 5}}
	service := newTestRecommendationService(store)

	recs, err := service.RecommendTeamMembers(ctx, 11, 10)

	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, int64(21), recs[0].Item.ID)
	assert.Equal(t, int64(23), recs[1].Item.ID)
	assert.Greater(t, recs[0].Score, recs[1].Score)

	t.Run("unknown team is an error", func(t *testing.T) {
		_, err := service.RecommendTeamMembers(ctx, 999, 10)
		assert.Error(t, err)
	})
}

func TestRecommendationService_CalculateCompetitionMatchScores(t *testing.T) {
	ctx := context.Background()

	store := newFakeStore()
	eligibleUser(store, 1, models.SkillAssignment{SkillID: 1, Name: "Go", Strength: 5})
	store.requiredSkills[101] = []models.SkillAssignment{{SkillID: 1, Name: "Go", Strength: 5}}
	competitions := []models.Competition{
		{ID: 101, Name: "AI Challenge"},
		{ID: 102, Name: "Web Hackathon"},
	}
	service := newTestRecommendationService(store)

	t.Run("scores are the content fit alone", func(t *testing.T) {
		scores := service.CalculateCompetitionMatchScores(ctx, 1, competitions)

		require.Len(t, scores, 2)
		assert.InDelta(t, 1.0, scores[101], 1e-9)
		assert.Equal(t, 0.0, scores[102])
	})

	t.Run("ineligible user gets no scores despite behavior history", func(t *testing.T) {
		// User 7 exists, has no skills, and shares behavior with user 8 who
		// joined 102. Ineligibility must win over the crowd signal.
		store.users[7] = true
		store.events = []models.BehaviorEvent{
			event(7, 101, models.BehaviorView),
			event(8, 101, models.BehaviorView),
			event(8, 102, models.BehaviorJoin),
		}
		defer func() { store.events = nil }()

		scores := service.CalculateCompetitionMatchScores(ctx, 7, competitions)

		assert.Empty(t, scores)
	})

	t.Run("anonymous user gets no scores", func(t *testing.T) {
		assert.Empty(t, service.CalculateCompetitionMatchScores(ctx, 0, competitions))
	})

	t.Run("failure yields empty map", func(t *testing.T) {
		store.errs["ListUserSkills"] = errors.New("down")
		defer delete(store.errs, "ListUserSkills")

		scores := service.CalculateCompetitionMatchScores(ctx, 1, competitions)

		assert.Empty(t, scores)
	})
}

func TestRecommendationService_CalculateTeamMatchScores(t *testing.T) {
	ctx := context.Background()

	store := newFakeStore()
	eligibleUser(store, 1, models.SkillAssignment{SkillID: 1, Name: "Go", Strength: 5})
	store.users[2] = true // exists, no skills
	store.requiredSkills[101] = []models.SkillAssignment{{SkillID: 1, Name: "Go", Strength: 5}}
	teams := []models.Team{
		{ID: 11, CompetitionID: 101, Name: "Gophers", Status: models.TeamRecruiting},
	}
	service := newTestRecommendationService(store)

	t.Run("eligible user gets blended scores", func(t *testing.T) {
		scores := service.CalculateTeamMatchScores(ctx, 1, teams)

		require.Len(t, scores, 1)
		// Team 11 lacks the required skill, so the full gap bonus applies:
		// content 1.0 (capped) weighted 0.6, no collaborative signal.
		assert.InDelta(t, 0.6, scores[11], 1e-9)
	})

	t.Run("user without skills gets no scores", func(t *testing.T) {
		assert.Empty(t, service.CalculateTeamMatchScores(ctx, 2, teams))
	})
}
