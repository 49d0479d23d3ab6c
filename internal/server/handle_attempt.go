package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/questworks/worldhunt/internal/hunt"
)

// AttemptRequest is one answer attempt against a world.
type AttemptRequest struct {
	WorldID string `json:"worldId"`
	Answer  string `json:"answer"`
}

// AttemptResponse reports the outcome, including the single-step unlock
// cascade when the attempt completed a world.
type AttemptResponse struct {
	Correct           bool   `json:"correct"`
	AlreadyCompleted  bool   `json:"alreadyCompleted"`
	Message           string `json:"message"`
	NextWorldUnlocked bool   `json:"nextWorldUnlocked"`
	NextWorldTitle    string `json:"nextWorldTitle,omitempty"`
}

// handleAttempt validates an answer against a world, records the attempt,
// and on success marks completion and unlocks exactly the next world in
// sequence.
func handleAttempt(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := teamFromRequest(r, store)
		if err != nil {
			writeError(w, http.StatusUnauthorized, kindUnauthorized, "invalid or missing session token")
			return
		}

		var req AttemptRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, kindInvalidInput, "invalid request body")
			return
		}
		if req.WorldID == "" || strings.TrimSpace(req.Answer) == "" {
			writeError(w, http.StatusBadRequest, kindInvalidInput, "world ID and answer are required")
			return
		}

		world, err := store.WorldByID(r.Context(), req.WorldID)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, kindNotFound, "world not found")
			return
		}
		if err != nil {
			logger.Error("loading world", "error", err)
			writeInternal(w)
			return
		}
		if world.Locked {
			writeError(w, http.StatusForbidden, kindLocked, "this world is locked")
			return
		}

		// A repeat click on a finished world is a no-op, not a new attempt.
		completed, err := store.CompletedWorlds(r.Context(), sess.TeamID)
		if err != nil {
			logger.Error("loading completed worlds", "error", err)
			writeInternal(w)
			return
		}
		if completed[world.ID] {
			writeJSON(w, http.StatusOK, AttemptResponse{
				Correct:          true,
				AlreadyCompleted: true,
				Message:          "You already completed this world!",
			})
			return
		}

		// Count the attempt before checking correctness: wrong answers are
		// attempts too.
		if err := store.IncrementAttempts(r.Context(), sess.TeamID, world.ID); err != nil {
			logger.Error("incrementing attempts", "error", err)
			writeInternal(w)
			return
		}

		if !hunt.MatchAnswer(req.Answer, world.Answer) {
			writeJSON(w, http.StatusOK, AttemptResponse{
				Correct: false,
				Message: "Incorrect answer. Try again!",
			})
			return
		}

		if err := store.CompleteWorld(r.Context(), sess.TeamID, world.ID); err != nil {
			logger.Error("marking world complete", "error", err)
			writeInternal(w)
			return
		}

		resp := AttemptResponse{
			Correct: true,
			Message: "Correct! Well done, detective!",
		}

		// Unlock cascade: a single-step lookahead to order+1, never further.
		next, err := store.WorldByOrder(r.Context(), world.Order+1)
		switch {
		case errors.Is(err, ErrNotFound):
			// Last world; nothing to cascade.
		case err != nil:
			logger.Error("looking up next world", "error", err)
			writeInternal(w)
			return
		default:
			resp.NextWorldTitle = next.Title
			if next.Locked {
				unlocked, err := store.UnlockWorld(r.Context(), next.ID)
				if err != nil {
					logger.Error("unlocking next world", "error", err)
					writeInternal(w)
					return
				}
				resp.NextWorldUnlocked = unlocked
			}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
