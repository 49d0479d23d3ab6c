package server

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// EventControlResponse is the operator view of the final-answer window and
// answer key.
type EventControlResponse struct {
	FinalAnswerOpen     bool    `json:"finalAnswerOpen"`
	FinalAnswerStart    *string `json:"finalAnswerStartTime"`
	FinalAnswerDeadline *string `json:"finalAnswerDeadline"`
	CorrectRealWorld    string  `json:"correctRealWorld"`
	CorrectVillain      string  `json:"correctVillain"`
	CorrectWeapon       string  `json:"correctWeapon"`
}

// EventControlRequest sets the window to an explicit state. This is a
// set-state operation, not a toggle: repeating the current state is a no-op
// that returns the unchanged window.
type EventControlRequest struct {
	FinalAnswerOpen bool `json:"finalAnswerOpen"`
	DurationMinutes int  `json:"durationMinutes,omitempty"`
}

// AnswerKeyRequest updates the correct-answer triple. Omitted fields are
// left unchanged.
type AnswerKeyRequest struct {
	CorrectRealWorld *string `json:"correctRealWorld"`
	CorrectVillain   *string `json:"correctVillain"`
	CorrectWeapon    *string `json:"correctWeapon"`
}

func controlResponse(control eventControl) EventControlResponse {
	return EventControlResponse{
		FinalAnswerOpen:     control.FinalOpen,
		FinalAnswerStart:    control.FinalStart,
		FinalAnswerDeadline: control.FinalDeadline,
		CorrectRealWorld:    control.Key.RealWorld,
		CorrectVillain:      control.Key.Villain,
		CorrectWeapon:       control.Key.Weapon,
	}
}

func handleGetEventControl(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		control, err := store.EventControl(r.Context())
		if err != nil {
			logger.Error("loading event control", "error", err)
			writeInternal(w)
			return
		}
		writeJSON(w, http.StatusOK, controlResponse(control))
	}
}

func handleSetEventControl(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req EventControlRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, kindInvalidInput, "invalid request body")
			return
		}

		var (
			control eventControl
			err     error
		)
		if req.FinalAnswerOpen {
			var deadline *string
			if req.DurationMinutes > 0 {
				d := time.Now().UTC().
					Add(time.Duration(req.DurationMinutes) * time.Minute).
					Format("2006-01-02T15:04:05.000Z")
				deadline = &d
			}
			control, err = store.OpenFinalWindow(r.Context(), deadline)
		} else {
			control, err = store.CloseFinalWindow(r.Context())
		}
		if err != nil {
			logger.Error("updating event control", "error", err)
			writeInternal(w)
			return
		}

		writeJSON(w, http.StatusOK, controlResponse(control))
	}
}

func handleSetAnswerKey(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AnswerKeyRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, kindInvalidInput, "invalid request body")
			return
		}

		control, err := store.EventControl(r.Context())
		if err != nil {
			logger.Error("loading event control", "error", err)
			writeInternal(w)
			return
		}

		key := control.Key
		if req.CorrectRealWorld != nil {
			key.RealWorld = strings.TrimSpace(*req.CorrectRealWorld)
		}
		if req.CorrectVillain != nil {
			key.Villain = strings.TrimSpace(*req.CorrectVillain)
		}
		if req.CorrectWeapon != nil {
			key.Weapon = strings.TrimSpace(*req.CorrectWeapon)
		}

		if err := store.SetAnswerKey(r.Context(), key); err != nil {
			logger.Error("saving answer key", "error", err)
			writeInternal(w)
			return
		}

		control.Key = key
		writeJSON(w, http.StatusOK, controlResponse(control))
	}
}
