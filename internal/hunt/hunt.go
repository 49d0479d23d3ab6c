// Package hunt defines the core domain types and the final-answer scoring
// rules. It has zero external dependencies — everything here is pure Go.
package hunt

import "strings"

// World is a sequentially unlocked puzzle unit. Worlds carry a dense, unique
// order; the world at order k+1 may only be opened by completing the world at
// order k.
type World struct {
	ID       string
	Title    string
	Story    string
	Question string
	Answer   string
	Order    int
	Locked   bool
}

// Progress tracks one team's attempts on one world. CompletedAt, once set,
// never changes.
type Progress struct {
	TeamID      string
	WorldID     string
	Attempts    int
	CompletedAt string
}

// Submission is a team's one-shot final answer with its server-assigned
// timestamp.
type Submission struct {
	ID          string
	TeamID      string
	TeamName    string
	RealWorld   string
	Villain     string
	Weapon      string
	SubmittedAt string
}

// AnswerKey is the operator-supplied correct triple. Scoring is disabled
// until all three fields are set.
type AnswerKey struct {
	RealWorld string
	Villain   string
	Weapon    string
}

// Set reports whether the operator has provided all three answers.
func (k AnswerKey) Set() bool {
	return normalize(k.RealWorld) != "" &&
		normalize(k.Villain) != "" &&
		normalize(k.Weapon) != ""
}

// MatchAnswer compares a submitted world answer against the canonical one.
// Comparison is trimmed and case-insensitive.
func MatchAnswer(submitted, canonical string) bool {
	return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(canonical))
}

// normalize lowercases, trims, and collapses internal whitespace, so that
// "  Mount  EVEREST " and "mount everest" compare equal.
func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
