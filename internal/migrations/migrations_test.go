package migrations_test

import (
	"context"
	"testing"

	"github.com/questworks/worldhunt/internal/database"
	"github.com/questworks/worldhunt/internal/migrations"
)

func TestMigrations(t *testing.T) {
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	want := []string{
		"teams", "players", "worlds", "progress",
		"final_submissions", "event_control", "announcements",
		"admins", "admin_sessions",
	}
	for _, table := range want {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found: %v", table, err)
		}
	}

	// The event_control singleton row must exist from the start.
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM event_control WHERE id = 1").Scan(&n); err != nil || n != 1 {
		t.Errorf("event_control singleton: count=%d err=%v", n, err)
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := migrations.Run(db); err != nil {
		t.Fatalf("second run (should be no-op): %v", err)
	}
}

func TestFinalSubmissionUniquePerTeam(t *testing.T) {
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	if _, err := db.Exec(`INSERT INTO teams (id, name, join_token) VALUES ('t1', 'Team One', 'tok-1')`); err != nil {
		t.Fatalf("insert team: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO final_submissions (team_id, real_world, villain, weapon) VALUES ('t1', 'a', 'b', 'c')`); err != nil {
		t.Fatalf("first submission: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO final_submissions (team_id, real_world, villain, weapon) VALUES ('t1', 'x', 'y', 'z')`); err == nil {
		t.Fatal("second submission for same team should violate UNIQUE(team_id)")
	}
}
