package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/arlenwu/teamforge/pkg/models"
)

var ErrNotFound = errors.New("not found")

// Querier is the subset of pgxpool.Pool the repository needs. pgxmock
// satisfies it, which keeps query tests free of a live database.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository is the single Postgres read/write gateway. It backs every
// store interface the service layer declares.
type Repository struct {
	db     Querier
	logger *logrus.Logger
}

func New(db Querier, logger *logrus.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

func (r *Repository) ListBehaviorEvents(ctx context.Context, targetType models.TargetType) ([]models.BehaviorEvent, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, target_type, target_id, behavior_type, created_at
		FROM behavior_events
		WHERE target_type = $1
		ORDER BY id`, targetType)
	if err != nil {
		return nil, fmt.Errorf("querying behavior events: %w", err)
	}
	defer rows.Close()

	var events []models.BehaviorEvent
	for rows.Next() {
		var e models.BehaviorEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.TargetType, &e.TargetID, &e.Type, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning behavior event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *Repository) InsertBehaviorEvent(ctx context.Context, req *models.BehaviorEventRequest) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO behavior_events (user_id, target_type, target_id, behavior_type, created_at)
		VALUES ($1, $2, $3, $4, NOW())`,
		req.UserID, req.TargetType, req.TargetID, req.Type)
	if err != nil {
		return fmt.Errorf("inserting behavior event: %w", err)
	}
	return nil
}

func (r *Repository) ListUserSkills(ctx context.Context, userID int64) ([]models.SkillAssignment, error) {
	return r.scanAssignments(ctx, `
		SELECT us.skill_id, s.name, us.level
		FROM user_skills us
		JOIN skills s ON s.id = us.skill_id
		WHERE us.user_id = $1
		ORDER BY us.skill_id`, userID)
}

func (r *Repository) ListTeamMemberSkills(ctx context.Context, teamID int64) ([]models.SkillAssignment, error) {
	return r.scanAssignments(ctx, `
		SELECT us.skill_id, s.name, us.level
		FROM team_members tm
		JOIN user_skills us ON us.user_id = tm.user_id
		JOIN skills s ON s.id = us.skill_id
		WHERE tm.team_id = $1
		ORDER BY us.skill_id`, teamID)
}

func (r *Repository) ListRequiredSkills(ctx context.Context, competitionID int64) ([]models.SkillAssignment, error) {
	return r.scanAssignments(ctx, `
		SELECT cs.skill_id, s.name, cs.importance
		FROM competition_skills cs
		JOIN skills s ON s.id = cs.skill_id
		WHERE cs.competition_id = $1
		ORDER BY cs.skill_id`, competitionID)
}

func (r *Repository) ListTeamSkills(ctx context.Context, teamID int64) ([]models.SkillAssignment, error) {
	return r.scanAssignments(ctx, `
		SELECT ts.skill_id, s.name, ts.weight
		FROM team_skills ts
		JOIN skills s ON s.id = ts.skill_id
		WHERE ts.team_id = $1
		ORDER BY ts.skill_id`, teamID)
}

func (r *Repository) scanAssignments(ctx context.Context, query string, arg any) ([]models.SkillAssignment, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("querying skill assignments: %w", err)
	}
	defer rows.Close()

	var assignments []models.SkillAssignment
	for rows.Next() {
		var a models.SkillAssignment
		if err := rows.Scan(&a.SkillID, &a.Name, &a.Strength); err != nil {
			return nil, fmt.Errorf("scanning skill assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (r *Repository) UserExists(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking user existence: %w", err)
	}
	return exists, nil
}

func (r *Repository) CountUserSkills(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM user_skills WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting user skills: %w", err)
	}
	return count, nil
}

// ListAvailableCompetitions returns competitions still open for
// registration, in default listing order. This order is the fallback
// ordering personalization degrades to.
func (r *Repository) ListAvailableCompetitions(ctx context.Context) ([]models.Competition, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, status, registration_deadline, start_date, end_date,
		       min_team_size, max_team_size, created_at
		FROM competitions
		WHERE status IN ('UPCOMING', 'ONGOING') AND registration_deadline > NOW()
		ORDER BY registration_deadline, id`)
	if err != nil {
		return nil, fmt.Errorf("querying available competitions: %w", err)
	}
	defer rows.Close()
	return scanCompetitions(rows)
}

func (r *Repository) SearchCompetitions(ctx context.Context, status models.CompetitionStatus, keyword string) ([]models.Competition, error) {
	query := `
		SELECT id, name, description, status, registration_deadline, start_date, end_date,
		       min_team_size, max_team_size, created_at
		FROM competitions
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query, string(status), keyword)
	if err != nil {
		return nil, fmt.Errorf("searching competitions: %w", err)
	}
	defer rows.Close()
	return scanCompetitions(rows)
}

func scanCompetitions(rows pgx.Rows) ([]models.Competition, error) {
	var competitions []models.Competition
	for rows.Next() {
		var c models.Competition
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Status, &c.RegistrationDeadline,
			&c.StartDate, &c.EndDate, &c.MinTeamSize, &c.MaxTeamSize, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning competition: %w", err)
		}
		competitions = append(competitions, c)
	}
	return competitions, rows.Err()
}

func (r *Repository) ListRecruitingTeams(ctx context.Context) ([]models.Team, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, competition_id, name, description, status, leader_id, member_count, created_at
		FROM teams
		WHERE status = 'RECRUITING'
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying recruiting teams: %w", err)
	}
	defer rows.Close()
	return scanTeams(rows)
}

func (r *Repository) ListTeamsByCompetition(ctx context.Context, competitionID int64) ([]models.Team, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, competition_id, name, description, status, leader_id, member_count, created_at
		FROM teams
		WHERE competition_id = $1 AND status = 'RECRUITING'
		ORDER BY id`, competitionID)
	if err != nil {
		return nil, fmt.Errorf("querying teams for competition: %w", err)
	}
	defer rows.Close()
	return scanTeams(rows)
}

func scanTeams(rows pgx.Rows) ([]models.Team, error) {
	var teams []models.Team
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.CompetitionID, &t.Name, &t.Description, &t.Status,
			&t.LeaderID, &t.MemberCount, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *Repository) GetTeam(ctx context.Context, teamID int64) (*models.Team, error) {
	var t models.Team
	err := r.db.QueryRow(ctx, `
		SELECT id, competition_id, name, description, status, leader_id, member_count, created_at
		FROM teams
		WHERE id = $1`, teamID).
		Scan(&t.ID, &t.CompetitionID, &t.Name, &t.Description, &t.Status,
			&t.LeaderID, &t.MemberCount, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("team %d: %w", teamID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying team: %w", err)
	}
	return &t, nil
}

// ListCandidateUsers returns students who could still join the team.
func (r *Repository) ListCandidateUsers(ctx context.Context, teamID int64) ([]models.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT u.id, u.username, u.email, u.role, u.created_at
		FROM users u
		WHERE u.role = 'STUDENT'
		  AND NOT EXISTS (
			SELECT 1 FROM team_members tm WHERE tm.team_id = $1 AND tm.user_id = u.id
		  )
		ORDER BY u.id`, teamID)
	if err != nil {
		return nil, fmt.Errorf("querying candidate users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// AuthenticateUser checks credentials inside Postgres via pgcrypto so the
// hash never crosses the wire.
func (r *Repository) AuthenticateUser(ctx context.Context, username, password string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx, `
		SELECT id, username, email, role, created_at
		FROM users
		WHERE username = $1 AND password_hash = crypt($2, password_hash)`,
		username, password).
		Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("authenticating user: %w", err)
	}
	return &u, nil
}
