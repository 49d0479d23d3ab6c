package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/questworks/worldhunt/internal/hunt"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. libSQL surfaces these as plain errors, so the message is the only
// discriminator available.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (s *SQLiteStore) TeamFromToken(ctx context.Context, token string) (teamSession, error) {
	var sess teamSession
	err := s.db.QueryRowContext(ctx, `
		SELECT p.id, p.team_id, t.name
		FROM players p
		JOIN teams t ON t.id = p.team_id
		WHERE p.session_id = ?
	`, token).Scan(&sess.PlayerID, &sess.TeamID, &sess.TeamName)
	if errors.Is(err, sql.ErrNoRows) {
		return sess, errNoSession
	}
	return sess, err
}

func (s *SQLiteStore) TeamLookup(ctx context.Context, joinToken string) (TeamLookupResponse, error) {
	var resp TeamLookupResponse
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name FROM teams WHERE join_token = ?
	`, joinToken).Scan(&resp.ID, &resp.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return resp, ErrNotFound
	}
	return resp, err
}

func (s *SQLiteStore) JoinTeam(ctx context.Context, teamID, playerName string) (string, string, error) {
	var playerID, sessionID string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO players (team_id, name)
		VALUES (?, ?)
		RETURNING id, session_id
	`, teamID, playerName).Scan(&playerID, &sessionID)
	return playerID, sessionID, err
}

func (s *SQLiteStore) ListWorlds(ctx context.Context) ([]hunt.World, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, story, question, answer, ord, locked
		FROM worlds
		ORDER BY ord
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var worlds []hunt.World
	for rows.Next() {
		var w hunt.World
		var locked int
		if err := rows.Scan(&w.ID, &w.Title, &w.Story, &w.Question, &w.Answer, &w.Order, &locked); err != nil {
			return nil, err
		}
		w.Locked = locked == 1
		worlds = append(worlds, w)
	}
	return worlds, rows.Err()
}

func (s *SQLiteStore) scanWorld(row *sql.Row) (hunt.World, error) {
	var w hunt.World
	var locked int
	err := row.Scan(&w.ID, &w.Title, &w.Story, &w.Question, &w.Answer, &w.Order, &locked)
	if errors.Is(err, sql.ErrNoRows) {
		return w, ErrNotFound
	}
	w.Locked = locked == 1
	return w, err
}

func (s *SQLiteStore) WorldByID(ctx context.Context, id string) (hunt.World, error) {
	return s.scanWorld(s.db.QueryRowContext(ctx, `
		SELECT id, title, story, question, answer, ord, locked
		FROM worlds WHERE id = ?
	`, id))
}

func (s *SQLiteStore) WorldByOrder(ctx context.Context, order int) (hunt.World, error) {
	return s.scanWorld(s.db.QueryRowContext(ctx, `
		SELECT id, title, story, question, answer, ord, locked
		FROM worlds WHERE ord = ?
	`, order))
}

func (s *SQLiteStore) CreateWorld(ctx context.Context, req AdminWorldRequest) (hunt.World, error) {
	locked := 0
	if req.Locked {
		locked = 1
	}
	var id string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO worlds (title, story, question, answer, ord, locked)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`, req.Title, req.Story, req.Question, req.Answer, req.Order, locked).Scan(&id)
	if err != nil {
		return hunt.World{}, err
	}
	return s.WorldByID(ctx, id)
}

func (s *SQLiteStore) UpdateWorld(ctx context.Context, id string, req AdminWorldUpdate) (hunt.World, error) {
	// COALESCE keeps untouched columns; callers send only the fields they
	// want changed.
	var locked any
	if req.Locked != nil {
		if *req.Locked {
			locked = 1
		} else {
			locked = 0
		}
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE worlds SET
			title    = COALESCE(?, title),
			story    = COALESCE(?, story),
			question = COALESCE(?, question),
			answer   = COALESCE(?, answer),
			ord      = COALESCE(?, ord),
			locked   = COALESCE(?, locked)
		WHERE id = ?
	`, req.Title, req.Story, req.Question, req.Answer, req.Order, locked, id)
	if err != nil {
		return hunt.World{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hunt.World{}, ErrNotFound
	}
	return s.WorldByID(ctx, id)
}

func (s *SQLiteStore) DeleteWorld(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM worlds WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) UnlockWorld(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE worlds SET locked = 0 WHERE id = ? AND locked = 1
	`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *SQLiteStore) CompletedWorlds(ctx context.Context, teamID string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT world_id FROM progress
		WHERE team_id = ? AND completed_at IS NOT NULL
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	completed := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		completed[id] = true
	}
	return completed, rows.Err()
}

func (s *SQLiteStore) AttemptCount(ctx context.Context, teamID, worldID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT attempts FROM progress WHERE team_id = ? AND world_id = ?
	`, teamID, worldID).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return count, err
}

func (s *SQLiteStore) IncrementAttempts(ctx context.Context, teamID, worldID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO progress (team_id, world_id, attempts)
		VALUES (?, ?, 1)
		ON CONFLICT (team_id, world_id) DO UPDATE SET attempts = attempts + 1
	`, teamID, worldID)
	return err
}

func (s *SQLiteStore) CompleteWorld(ctx context.Context, teamID, worldID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE progress
		SET completed_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		WHERE team_id = ? AND world_id = ? AND completed_at IS NULL
	`, teamID, worldID)
	return err
}

func (s *SQLiteStore) EventControl(ctx context.Context) (eventControl, error) {
	var ec eventControl
	var open int
	var start, deadline sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT final_open, final_start, final_deadline,
			correct_real_world, correct_villain, correct_weapon
		FROM event_control WHERE id = 1
	`).Scan(&open, &start, &deadline, &ec.Key.RealWorld, &ec.Key.Villain, &ec.Key.Weapon)
	if err != nil {
		return ec, err
	}
	ec.FinalOpen = open == 1
	if start.Valid {
		ec.FinalStart = &start.String
	}
	if deadline.Valid {
		ec.FinalDeadline = &deadline.String
	}
	return ec, nil
}

func (s *SQLiteStore) OpenFinalWindow(ctx context.Context, deadline *string) (eventControl, error) {
	// Guarded on final_open = 0 so a redundant open never rewrites the
	// start time or deadline.
	_, err := s.db.ExecContext(ctx, `
		UPDATE event_control
		SET final_open = 1,
			final_start = strftime('%Y-%m-%dT%H:%M:%fZ', 'now'),
			final_deadline = ?
		WHERE id = 1 AND final_open = 0
	`, deadline)
	if err != nil {
		return eventControl{}, err
	}
	return s.EventControl(ctx)
}

func (s *SQLiteStore) CloseFinalWindow(ctx context.Context) (eventControl, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE event_control
		SET final_open = 0, final_start = NULL, final_deadline = NULL
		WHERE id = 1
	`)
	if err != nil {
		return eventControl{}, err
	}
	return s.EventControl(ctx)
}

func (s *SQLiteStore) SetAnswerKey(ctx context.Context, key hunt.AnswerKey) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE event_control
		SET correct_real_world = ?, correct_villain = ?, correct_weapon = ?
		WHERE id = 1
	`, key.RealWorld, key.Villain, key.Weapon)
	return err
}

func (s *SQLiteStore) FinalSubmissionByTeam(ctx context.Context, teamID string) (hunt.Submission, error) {
	var sub hunt.Submission
	err := s.db.QueryRowContext(ctx, `
		SELECT id, team_id, real_world, villain, weapon, submitted_at
		FROM final_submissions WHERE team_id = ?
	`, teamID).Scan(&sub.ID, &sub.TeamID, &sub.RealWorld, &sub.Villain, &sub.Weapon, &sub.SubmittedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return sub, ErrNotFound
	}
	return sub, err
}

func (s *SQLiteStore) InsertFinalSubmission(ctx context.Context, teamID, realWorld, villain, weapon string) (hunt.Submission, error) {
	var sub hunt.Submission
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO final_submissions (team_id, real_world, villain, weapon)
		VALUES (?, ?, ?, ?)
		RETURNING id, team_id, real_world, villain, weapon, submitted_at
	`, teamID, realWorld, villain, weapon).Scan(
		&sub.ID, &sub.TeamID, &sub.RealWorld, &sub.Villain, &sub.Weapon, &sub.SubmittedAt)
	if isUniqueViolation(err) {
		return sub, ErrAlreadySubmitted
	}
	if err != nil {
		return sub, err
	}

	// Denormalized convenience flag; the UNIQUE index above is the source
	// of truth for "has submitted".
	if _, err := s.db.ExecContext(ctx, `
		UPDATE teams SET final_submitted = 1 WHERE id = ?
	`, teamID); err != nil {
		return sub, fmt.Errorf("marking team submitted: %w", err)
	}
	return sub, nil
}

func (s *SQLiteStore) ListFinalSubmissions(ctx context.Context) ([]hunt.Submission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.team_id, t.name, f.real_world, f.villain, f.weapon, f.submitted_at
		FROM final_submissions f
		JOIN teams t ON t.id = f.team_id
		ORDER BY f.submitted_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []hunt.Submission
	for rows.Next() {
		var sub hunt.Submission
		if err := rows.Scan(&sub.ID, &sub.TeamID, &sub.TeamName, &sub.RealWorld, &sub.Villain, &sub.Weapon, &sub.SubmittedAt); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (s *SQLiteStore) InsertAnnouncement(ctx context.Context, message string) (Announcement, error) {
	var a Announcement
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO announcements (message)
		VALUES (?)
		RETURNING id, message, created_at
	`, message).Scan(&a.ID, &a.Message, &a.CreatedAt)
	return a, err
}

func (s *SQLiteStore) AnnouncementsSince(ctx context.Context, since string, limit int) ([]Announcement, error) {
	// created_at is RFC 3339 text, so lexicographic comparison is
	// chronological. An empty watermark returns the most recent limit rows.
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, message, created_at
		FROM announcements
		WHERE created_at > ?
		ORDER BY created_at DESC
		LIMIT ?
	`, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	announcements := []Announcement{}
	for rows.Next() {
		var a Announcement
		if err := rows.Scan(&a.ID, &a.Message, &a.CreatedAt); err != nil {
			return nil, err
		}
		announcements = append(announcements, a)
	}
	return announcements, rows.Err()
}

func (s *SQLiteStore) AdminByEmail(ctx context.Context, email string) (string, string, error) {
	var adminID, passwordHash string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, password_hash FROM admins WHERE email = ?
	`, email).Scan(&adminID, &passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrNotFound
	}
	return adminID, passwordHash, err
}

func (s *SQLiteStore) CreateAdminSession(ctx context.Context, adminID string) (string, error) {
	var sessionID string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO admin_sessions (admin_id)
		VALUES (?)
		RETURNING id
	`, adminID).Scan(&sessionID)
	return sessionID, err
}

func (s *SQLiteStore) DeleteAdminSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE id = ?`, sessionID)
	return err
}

func (s *SQLiteStore) AdminFromSession(ctx context.Context, sessionID string) (adminSession, error) {
	var sess adminSession
	err := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.email
		FROM admin_sessions s
		JOIN admins a ON a.id = s.admin_id
		WHERE s.id = ?
	`, sessionID).Scan(&sess.AdminID, &sess.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return adminSession{}, errNoAdminSession
	}
	return sess, err
}

func (s *SQLiteStore) TeamsOverview(ctx context.Context) ([]AdminTeamOverview, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name,
			(SELECT COUNT(*) FROM players p WHERE p.team_id = t.id),
			(SELECT COUNT(*) FROM progress pr WHERE pr.team_id = t.id AND pr.completed_at IS NOT NULL),
			(SELECT COUNT(*) FROM worlds),
			t.final_submitted
		FROM teams t
		ORDER BY t.created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := []AdminTeamOverview{}
	for rows.Next() {
		var t AdminTeamOverview
		var submitted int
		if err := rows.Scan(&t.ID, &t.Name, &t.MemberCount, &t.CompletedWorlds, &t.TotalWorlds, &submitted); err != nil {
			return nil, err
		}
		t.FinalSubmitted = submitted == 1
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (s *SQLiteStore) Stats(ctx context.Context) (AdminStats, error) {
	var st AdminStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM teams),
			(SELECT COUNT(DISTINCT team_id) FROM progress WHERE completed_at IS NOT NULL),
			(SELECT COUNT(*) FROM worlds),
			(SELECT COUNT(*) FROM worlds WHERE locked = 0),
			(SELECT COUNT(*) FROM announcements),
			(SELECT COUNT(*) FROM final_submissions)
	`).Scan(&st.TotalTeams, &st.ActiveTeams, &st.TotalWorlds, &st.UnlockedWorlds, &st.TotalAnnouncements, &st.FinalSubmissions)
	return st, err
}
