package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/questworks/worldhunt/internal/hunt"
)

// AdminWorldItem is the operator view of a world, answer included.
type AdminWorldItem struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Story    string `json:"story"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Order    int    `json:"order"`
	IsLocked bool   `json:"isLocked"`
}

// AdminWorldRequest creates a world.
type AdminWorldRequest struct {
	Title    string `json:"title"`
	Story    string `json:"story"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Order    int    `json:"order"`
	Locked   bool   `json:"isLocked"`
}

// AdminWorldUpdate patches a world; nil fields are left unchanged.
type AdminWorldUpdate struct {
	Title    *string `json:"title"`
	Story    *string `json:"story"`
	Question *string `json:"question"`
	Answer   *string `json:"answer"`
	Order    *int    `json:"order"`
	Locked   *bool   `json:"isLocked"`
}

func adminWorldItem(w hunt.World) AdminWorldItem {
	return AdminWorldItem{
		ID:       w.ID,
		Title:    w.Title,
		Story:    w.Story,
		Question: w.Question,
		Answer:   w.Answer,
		Order:    w.Order,
		IsLocked: w.Locked,
	}
}

func handleAdminListWorlds(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		worlds, err := store.ListWorlds(r.Context())
		if err != nil {
			logger.Error("listing worlds", "error", err)
			writeInternal(w)
			return
		}
		items := []AdminWorldItem{}
		for _, world := range worlds {
			items = append(items, adminWorldItem(world))
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func handleAdminCreateWorld(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminWorldRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, kindInvalidInput, "invalid request body")
			return
		}
		req.Title = strings.TrimSpace(req.Title)
		req.Answer = strings.TrimSpace(req.Answer)
		if req.Title == "" || req.Answer == "" || req.Order < 1 {
			writeError(w, http.StatusBadRequest, kindInvalidInput, "title, answer, and a positive order are required")
			return
		}

		world, err := store.CreateWorld(r.Context(), req)
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, kindInvalidInput, "a world with this order already exists")
			return
		}
		if err != nil {
			logger.Error("creating world", "error", err)
			writeInternal(w)
			return
		}
		writeJSON(w, http.StatusCreated, adminWorldItem(world))
	}
}

func handleAdminGetWorld(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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
		writeJSON(w, http.StatusOK, adminWorldItem(world))
	}
}

func handleAdminUpdateWorld(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminWorldUpdate
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, kindInvalidInput, "invalid request body")
			return
		}

		world, err := store.UpdateWorld(r.Context(), chi.URLParam(r, "worldID"), req)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, kindNotFound, "world not found")
			return
		}
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, kindInvalidInput, "a world with this order already exists")
			return
		}
		if err != nil {
			logger.Error("updating world", "error", err)
			writeInternal(w)
			return
		}
		writeJSON(w, http.StatusOK, adminWorldItem(world))
	}
}

func handleAdminDeleteWorld(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := store.DeleteWorld(r.Context(), chi.URLParam(r, "worldID"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, kindNotFound, "world not found")
			return
		}
		if err != nil {
			logger.Error("deleting world", "error", err)
			writeInternal(w)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
