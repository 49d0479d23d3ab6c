package server

import (
	"context"
	"errors"

	"github.com/questworks/worldhunt/internal/hunt"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrAlreadySubmitted is returned when a second final submission is
	// attempted for a team, whether caught by the optimistic read or by the
	// UNIQUE(team_id) constraint during a racing insert.
	ErrAlreadySubmitted = errors.New("final answer already submitted")
)

// teamSession is the identity resolved from a player's Bearer token.
type teamSession struct {
	PlayerID string
	TeamID   string
	TeamName string
}

// eventControl mirrors the singleton event_control row.
type eventControl struct {
	FinalOpen     bool
	FinalStart    *string
	FinalDeadline *string
	Key           hunt.AnswerKey
}

// Announcement is an operator broadcast; also the SSE payload.
type Announcement struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}

type Store interface {
	TeamFromToken(ctx context.Context, token string) (teamSession, error)
	TeamLookup(ctx context.Context, joinToken string) (TeamLookupResponse, error)
	JoinTeam(ctx context.Context, teamID, playerName string) (playerID, sessionID string, err error)

	ListWorlds(ctx context.Context) ([]hunt.World, error)
	WorldByID(ctx context.Context, id string) (hunt.World, error)
	WorldByOrder(ctx context.Context, order int) (hunt.World, error)
	CreateWorld(ctx context.Context, req AdminWorldRequest) (hunt.World, error)
	UpdateWorld(ctx context.Context, id string, req AdminWorldUpdate) (hunt.World, error)
	DeleteWorld(ctx context.Context, id string) error

	// UnlockWorld clears the locked flag. It reports whether this call
	// performed the transition, so a concurrent double-unlock is observed
	// by exactly one caller.
	UnlockWorld(ctx context.Context, id string) (bool, error)

	CompletedWorlds(ctx context.Context, teamID string) (map[string]bool, error)
	AttemptCount(ctx context.Context, teamID, worldID string) (int, error)

	// IncrementAttempts bumps the (team, world) attempt counter with a
	// single atomic upsert, creating the progress row on first attempt.
	IncrementAttempts(ctx context.Context, teamID, worldID string) error

	// CompleteWorld stamps the progress row's completion time. The stamp is
	// write-once: a row that already has one is left untouched.
	CompleteWorld(ctx context.Context, teamID, worldID string) error

	EventControl(ctx context.Context) (eventControl, error)
	OpenFinalWindow(ctx context.Context, deadline *string) (eventControl, error)
	CloseFinalWindow(ctx context.Context) (eventControl, error)
	SetAnswerKey(ctx context.Context, key hunt.AnswerKey) error

	FinalSubmissionByTeam(ctx context.Context, teamID string) (hunt.Submission, error)
	InsertFinalSubmission(ctx context.Context, teamID, realWorld, villain, weapon string) (hunt.Submission, error)
	ListFinalSubmissions(ctx context.Context) ([]hunt.Submission, error)

	InsertAnnouncement(ctx context.Context, message string) (Announcement, error)
	AnnouncementsSince(ctx context.Context, since string, limit int) ([]Announcement, error)

	AdminByEmail(ctx context.Context, email string) (adminID, passwordHash string, err error)
	CreateAdminSession(ctx context.Context, adminID string) (string, error)
	DeleteAdminSession(ctx context.Context, sessionID string) error
	AdminFromSession(ctx context.Context, sessionID string) (adminSession, error)

	TeamsOverview(ctx context.Context) ([]AdminTeamOverview, error)
	Stats(ctx context.Context) (AdminStats, error)
}
