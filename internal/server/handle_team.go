package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type TeamLookupResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// handleTeamLookup lets a player confirm a join token before joining.
func handleTeamLookup(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "joinToken")

		resp, err := store.TeamLookup(r.Context(), token)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, kindNotFound, "team not found")
			return
		}
		if err != nil {
			logger.Error("looking up team", "error", err)
			writeInternal(w)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
