package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arlenwu/teamforge/pkg/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestRepository(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockDB, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mockDB.Close)
	return New(mockDB, testLogger()), mockDB
}

func TestRepository_ListBehaviorEvents(t *testing.T) {
	repo, mockDB := newTestRepository(t)
	now := time.Now()

	rows := pgxmock.NewRows([]string{"id", "user_id", "target_type", "target_id", "behavior_type", "created_at"}).
		AddRow(int64(1), int64(7), models.TargetCompetition, int64(101), models.BehaviorView, now).
		AddRow(int64(2), int64(7), models.TargetCompetition, int64(102), models.BehaviorJoin, now)

	mockDB.ExpectQuery("SELECT id, user_id, target_type, target_id, behavior_type, created_at").
		WithArgs(models.TargetCompetition).
		WillReturnRows(rows)

	events, err := repo.ListBehaviorEvents(context.Background(), models.TargetCompetition)

	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int64(7), events[0].UserID)
	assert.Equal(t, models.BehaviorJoin, events[1].Type)
	require.NoError(t, mockDB.ExpectationsWereMet())
}

func TestRepository_InsertBehaviorEvent(t *testing.T) {
	repo, mockDB := newTestRepository(t)

	req := &models.BehaviorEventRequest{
		UserID:     7,
		TargetType: models.TargetTeam,
		TargetID:   11,
		Type:       models.BehaviorLike,
	}

	mockDB.ExpectExec("INSERT INTO behavior_events").
		WithArgs(req.UserID, req.TargetType, req.TargetID, req.Type).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.InsertBehaviorEvent(context.Background(), req))
	require.NoError(t, mockDB.ExpectationsWereMet())
}

func TestRepository_ListUserSkills(t *testing.T) {
	repo, mockDB := newTestRepository(t)

	rows := pgxmock.NewRows([]string{"skill_id", "name", "level"}).
		AddRow(int64(1), "Go", 5).
		AddRow(int64(2), "SQL", 3)

	mockDB.ExpectQuery("SELECT us.skill_id, s.name, us.level").
		WithArgs(int64(7)).
		WillReturnRows(rows)

	skills, err := repo.ListUserSkills(context.Background(), 7)

	require.NoError(t, err)
	require.Len(t, skills, 2)
	assert.Equal(t, models.SkillAssignment{SkillID: 1, Name: "Go", Strength: 5}, skills[0])
	require.NoError(t, mockDB.ExpectationsWereMet())
}

func TestRepository_UserExists(t *testing.T) {
	repo, mockDB := newTestRepository(t)

	mockDB.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.UserExists(context.Background(), 7)

	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, mockDB.ExpectationsWereMet())
}

func TestRepository_CountUserSkills(t *testing.T) {
	repo, mockDB := newTestRepository(t)

	mockDB.ExpectQuery("SELECT COUNT").
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountUserSkills(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, 3, count)
	require.NoError(t, mockDB.ExpectationsWereMet())
}

func TestRepository_GetTeam(t *testing.T) {
	repo, mockDB := newTestRepository(t)
	now := time.Now()

	t.Run("found", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"id", "competition_id", "name", "description", "status", "leader_id", "member_count", "created_at"}).
			AddRow(int64(11), int64(101), "Gophers", "", models.TeamRecruiting, int64(7), 3, now)

		mockDB.ExpectQuery("SELECT id, competition_id, name, description, status, leader_id, member_count, created_at").
			WithArgs(int64(11)).
			WillReturnRows(rows)

		team, err := repo.GetTeam(context.Background(), 11)

		require.NoError(t, err)
		assert.Equal(t, "Gophers", team.Name)
		assert.Equal(t, int64(101), team.CompetitionID)
	})

	t.Run("not found", func(t *testing.T) {
		mockDB.ExpectQuery("SELECT id, competition_id, name, description, status, leader_id, member_count, created_at").
			WithArgs(int64(99)).
			WillReturnRows(pgxmock.NewRows([]string{"id"}))

		_, err := repo.GetTeam(context.Background(), 99)

		assert.ErrorIs(t, err, ErrNotFound)
	})

	require.NoError(t, mockDB.ExpectationsWereMet())
}

func TestRepository_SearchCompetitions(t *testing.T) {
	repo, mockDB := newTestRepository(t)
	now := time.Now()

	rows := pgxmock.NewRows([]string{"id", "name", "description", "status", "registration_deadline", "start_date", "end_date", "min_team_size", "max_team_size", "created_at"}).
		AddRow(int64(101), "AI Challenge", "", models.CompetitionOngoing, now, now, now, 1, 5, now)

	mockDB.ExpectQuery("FROM competitions").
		WithArgs("ONGOING", "ai").
		WillReturnRows(rows)

	competitions, err := repo.SearchCompetitions(context.Background(), models.CompetitionOngoing, "ai")

	require.NoError(t, err)
	require.Len(t, competitions, 1)
	assert.Equal(t, "AI Challenge", competitions[0].Name)
	require.NoError(t, mockDB.ExpectationsWereMet())
}

func TestRepository_AuthenticateUser(t *testing.T) {
	repo, mockDB := newTestRepository(t)
	now := time.Now()

	t.Run("valid credentials", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"id", "username", "email", "role", "created_at"}).
			AddRow(int64(7), "alice", "alice@example.com", models.RoleStudent, now)

		mockDB.ExpectQuery("FROM users").
			WithArgs("alice", "secret").
			WillReturnRows(rows)

		user, err := repo.AuthenticateUser(context.Background(), "alice", "secret")

		require.NoError(t, err)
		assert.Equal(t, int64(7), user.ID)
		assert.Equal(t, models.RoleStudent, user.Role)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		mockDB.ExpectQuery("FROM users").
			WithArgs("alice", "wrong").
			WillReturnRows(pgxmock.NewRows([]string{"id"}))

		_, err := repo.AuthenticateUser(context.Background(), "alice", "wrong")

		assert.ErrorIs(t, err, ErrNotFound)
	})

	require.NoError(t, mockDB.ExpectationsWereMet())
}

func TestRepository_QueryError(t *testing.T) {
	repo, mockDB := newTestRepository(t)

	mockDB.ExpectQuery("FROM behavior_events").
		WithArgs(models.TargetTeam).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.ListBehaviorEvents(context.Background(), models.TargetTeam)

	assert.Error(t, err)
	require.NoError(t, mockDB.ExpectationsWereMet())
}
