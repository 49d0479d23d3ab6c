package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/questworks/worldhunt/internal/hunt"
)

// FinalSubmissionView is the team-facing slice of a submission.
type FinalSubmissionView struct {
	RealWorld   string `json:"realWorld"`
	Villain     string `json:"villain"`
	Weapon      string `json:"weapon"`
	SubmittedAt string `json:"submittedAt"`
}

// FinalStatusResponse tells a team whether the window is open and whether
// they have already used their one shot.
type FinalStatusResponse struct {
	IsOpen           bool                 `json:"isOpen"`
	Deadline         *string              `json:"deadline"`
	AlreadySubmitted bool                 `json:"alreadySubmitted"`
	Submission       *FinalSubmissionView `json:"submission"`
}

// FinalSubmitRequest is the one-shot three-field answer.
type FinalSubmitRequest struct {
	RealWorld string `json:"realWorld"`
	Villain   string `json:"villain"`
	Weapon    string `json:"weapon"`
}

// FinalSubmitResponse confirms a stored submission.
type FinalSubmitResponse struct {
	Message    string              `json:"message"`
	Submission FinalSubmissionView `json:"submission"`
}

func viewOf(sub hunt.Submission) FinalSubmissionView {
	return FinalSubmissionView{
		RealWorld:   sub.RealWorld,
		Villain:     sub.Villain,
		Weapon:      sub.Weapon,
		SubmittedAt: sub.SubmittedAt,
	}
}

func handleFinalStatus(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := teamFromRequest(r, store)
		if err != nil {
			writeError(w, http.StatusUnauthorized, kindUnauthorized, "invalid or missing session token")
			return
		}

		control, err := store.EventControl(r.Context())
		if err != nil {
			logger.Error("loading event control", "error", err)
			writeInternal(w)
			return
		}

		resp := FinalStatusResponse{
			IsOpen:   control.FinalOpen,
			Deadline: control.FinalDeadline,
		}

		sub, err := store.FinalSubmissionByTeam(r.Context(), sess.TeamID)
		switch {
		case errors.Is(err, ErrNotFound):
			// Not submitted yet.
		case err != nil:
			logger.Error("loading final submission", "error", err)
			writeInternal(w)
			return
		default:
			resp.AlreadySubmitted = true
			v := viewOf(sub)
			resp.Submission = &v
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// handleFinalSubmit enforces the one-shot, globally windowed submission. The
// optimistic existing-submission read covers the common case; the
// UNIQUE(team_id) constraint closes the race between two concurrent requests
// for the same team, and the resulting constraint violation surfaces as the
// same already-submitted outcome.
func handleFinalSubmit(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := teamFromRequest(r, store)
		if err != nil {
			writeError(w, http.StatusUnauthorized, kindUnauthorized, "invalid or missing session token")
			return
		}

		control, err := store.EventControl(r.Context())
		if err != nil {
			logger.Error("loading event control", "error", err)
			writeInternal(w)
			return
		}
		if !control.FinalOpen {
			writeError(w, http.StatusForbidden, kindWindowClosed, "final answer submission is not open yet")
			return
		}

		if _, err := store.FinalSubmissionByTeam(r.Context(), sess.TeamID); err == nil {
			writeError(w, http.StatusConflict, kindAlreadySubmitted, "your team has already submitted the final answer")
			return
		} else if !errors.Is(err, ErrNotFound) {
			logger.Error("checking existing submission", "error", err)
			writeInternal(w)
			return
		}

		var req FinalSubmitRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, kindInvalidInput, "invalid request body")
			return
		}
		req.RealWorld = strings.TrimSpace(req.RealWorld)
		req.Villain = strings.TrimSpace(req.Villain)
		req.Weapon = strings.TrimSpace(req.Weapon)
		if req.RealWorld == "" || req.Villain == "" || req.Weapon == "" {
			writeError(w, http.StatusBadRequest, kindInvalidInput, "all fields (real world, villain, weapon) are required")
			return
		}

		sub, err := store.InsertFinalSubmission(r.Context(), sess.TeamID, req.RealWorld, req.Villain, req.Weapon)
		if errors.Is(err, ErrAlreadySubmitted) {
			writeError(w, http.StatusConflict, kindAlreadySubmitted, "your team has already submitted the final answer")
			return
		}
		if err != nil {
			logger.Error("storing final submission", "error", err)
			writeInternal(w)
			return
		}

		writeJSON(w, http.StatusOK, FinalSubmitResponse{
			Message:    "Final answer submitted successfully!",
			Submission: viewOf(sub),
		})
	}
}
