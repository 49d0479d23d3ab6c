package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// WorldSummary is one entry in the team's world list. Answers never leave
// the server.
type WorldSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Order       int    `json:"order"`
	IsLocked    bool   `json:"isLocked"`
	IsCompleted bool   `json:"isCompleted"`
}

// WorldListResponse is the dashboard payload.
type WorldListResponse struct {
	Worlds   []WorldSummary `json:"worlds"`
	TeamID   string         `json:"teamId"`
	TeamName string         `json:"teamName"`
}

// WorldDetailResponse is a single unlocked world with the team's progress.
type WorldDetailResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Story       string `json:"story"`
	Question    string `json:"question"`
	Order       int    `json:"order"`
	IsCompleted bool   `json:"isCompleted"`
	Attempts    int    `json:"attempts"`
}

func handleListWorlds(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := teamFromRequest(r, store)
		if err != nil {
			writeError(w, http.StatusUnauthorized, kindUnauthorized, "invalid or missing session token")
			return
		}

		worlds, err := store.ListWorlds(r.Context())
		if err != nil {
			logger.Error("listing worlds", "error", err)
			writeInternal(w)
			return
		}
		completed, err := store.CompletedWorlds(r.Context(), sess.TeamID)
		if err != nil {
			logger.Error("loading completed worlds", "error", err)
			writeInternal(w)
			return
		}

		resp := WorldListResponse{
			Worlds:   make([]WorldSummary, 0, len(worlds)),
			TeamID:   sess.TeamID,
			TeamName: sess.TeamName,
		}
		for _, world := range worlds {
			resp.Worlds = append(resp.Worlds, WorldSummary{
				ID:          world.ID,
				Title:       world.Title,
				Order:       world.Order,
				IsLocked:    world.Locked,
				IsCompleted: completed[world.ID],
			})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func handleWorldDetail(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := teamFromRequest(r, store)
		if err != nil {
			writeError(w, http.StatusUnauthorized, kindUnauthorized, "invalid or missing session token")
			return
		}

		world, err := store.WorldByID(r.Context(), chi.URLParam(r, "worldID"))
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

		completed, err := store.CompletedWorlds(r.Context(), sess.TeamID)
		if err != nil {
			logger.Error("loading completed worlds", "error", err)
			writeInternal(w)
			return
		}
		attempts, err := store.AttemptCount(r.Context(), sess.TeamID, world.ID)
		if err != nil {
			logger.Error("loading attempt count", "error", err)
			writeInternal(w)
			return
		}

		writeJSON(w, http.StatusOK, WorldDetailResponse{
			ID:          world.ID,
			Title:       world.Title,
			Story:       world.Story,
			Question:    world.Question,
			Order:       world.Order,
			IsCompleted: completed[world.ID],
			Attempts:    attempts,
		})
	}
}
