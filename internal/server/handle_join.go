package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

type JoinRequest struct {
	JoinToken  string `json:"joinToken"`
	PlayerName string `json:"playerName"`
}

type JoinResponse struct {
	Token    string `json:"token"`
	PlayerID string `json:"playerId"`
	TeamID   string `json:"teamId"`
	TeamName string `json:"teamName"`
}

// handleJoin binds a player to their team and issues the session token the
// rest of the API resolves team identity from.
func handleJoin(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req JoinRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, kindInvalidInput, "invalid request body")
			return
		}

		req.PlayerName = strings.TrimSpace(req.PlayerName)
		if req.PlayerName == "" || req.JoinToken == "" {
			writeError(w, http.StatusBadRequest, kindInvalidInput, "joinToken and playerName are required")
			return
		}

		team, err := store.TeamLookup(r.Context(), req.JoinToken)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, kindNotFound, "team not found")
			return
		}
		if err != nil {
			logger.Error("looking up team", "error", err)
			writeInternal(w)
			return
		}

		playerID, sessionID, err := store.JoinTeam(r.Context(), team.ID, req.PlayerName)
		if err != nil {
			logger.Error("joining team", "error", err)
			writeInternal(w)
			return
		}

		writeJSON(w, http.StatusOK, JoinResponse{
			Token:    sessionID,
			PlayerID: playerID,
			TeamID:   team.ID,
			TeamName: team.Name,
		})
	}
}
