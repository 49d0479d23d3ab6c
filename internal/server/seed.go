package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed creates the first admin account and, when the worlds table is empty,
// a demo hunt (four worlds, the first unlocked) with one demo team.
// Idempotent: existing data is never touched.
func Seed(ctx context.Context, logger *slog.Logger, db *sql.DB, adminEmail, adminPassword string) error {
	var admins int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&admins); err != nil {
		return fmt.Errorf("counting admins: %w", err)
	}
	if admins == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing admin password: %w", err)
		}
		if _, err := db.ExecContext(ctx, `
			INSERT INTO admins (email, password_hash) VALUES (?, ?)
		`, adminEmail, string(hash)); err != nil {
			return fmt.Errorf("creating admin: %w", err)
		}
		logger.Info("admin account created", "email", adminEmail)
	}

	var worlds int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM worlds`).Scan(&worlds); err != nil {
		return fmt.Errorf("counting worlds: %w", err)
	}
	if worlds > 0 {
		return nil
	}

	demo := []struct {
		title, story, question, answer string
		order, locked                  int
	}{
		{
			"The Hollow Oak", "A cipher was found carved into the old oak on the commons.",
			"Who signs their threats with a spider's web?", "Moriarty", 1, 0,
		},
		{
			"Harbor of Echoes", "The dockmaster's ledger is missing a page for the night of the theft.",
			"Which ship left before dawn?", "Aurora", 2, 1,
		},
		{
			"The Gaslight Archive", "Someone has been reading the sealed case files by candlelight.",
			"What year was the archive sealed?", "1887", 3, 1,
		},
		{
			"Clocktower Vault", "The tower bell rang thirteen times at midnight.",
			"What word opens the vault?", "Tempus", 4, 1,
		},
	}
	for _, w := range demo {
		if _, err := db.ExecContext(ctx, `
			INSERT INTO worlds (title, story, question, answer, ord, locked)
			VALUES (?, ?, ?, ?, ?, ?)
		`, w.title, w.story, w.question, w.answer, w.order, w.locked); err != nil {
			return fmt.Errorf("seeding world %q: %w", w.title, err)
		}
	}

	if _, err := db.ExecContext(ctx, `
		INSERT INTO teams (name, join_token) VALUES ('Baker Street Irregulars', 'irregulars-2026')
	`); err != nil {
		return fmt.Errorf("seeding demo team: %w", err)
	}

	logger.Info("demo hunt seeded", "worlds", len(demo))
	return nil
}
