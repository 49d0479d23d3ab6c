package server

import (
	"log/slog"
	"net/http"
	"strings"
)

// pollLimit caps how many announcements the polling fallback returns per
// request.
const pollLimit = 5

// AnnouncementsResponse is the polling-transport payload.
type AnnouncementsResponse struct {
	Announcements []Announcement `json:"announcements"`
}

// AnnouncementRequest is the admin broadcast body.
type AnnouncementRequest struct {
	Message string `json:"message"`
}

// handleListAnnouncements is the polling fallback: announcements created
// after the client's watermark, newest first, capped at pollLimit. With no
// watermark it returns the recent history clients use to seed their
// duplicate-suppression set.
func handleListAnnouncements(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := teamFromRequest(r, store); err != nil {
			writeError(w, http.StatusUnauthorized, kindUnauthorized, "invalid or missing session token")
			return
		}

		since := r.URL.Query().Get("since")

		announcements, err := store.AnnouncementsSince(r.Context(), since, pollLimit)
		if err != nil {
			logger.Error("listing announcements", "error", err)
			writeInternal(w)
			return
		}

		writeJSON(w, http.StatusOK, AnnouncementsResponse{Announcements: announcements})
	}
}

// handleCreateAnnouncement persists the announcement, then hands it to the
// broker for push delivery. Clients without an open stream pick it up on
// their next poll.
func handleCreateAnnouncement(logger *slog.Logger, store Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AnnouncementRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, kindInvalidInput, "invalid request body")
			return
		}
		req.Message = strings.TrimSpace(req.Message)
		if req.Message == "" {
			writeError(w, http.StatusBadRequest, kindInvalidInput, "message is required")
			return
		}

		a, err := store.InsertAnnouncement(r.Context(), req.Message)
		if err != nil {
			logger.Error("creating announcement", "error", err)
			writeInternal(w)
			return
		}

		broker.Publish(r.Context(), a)

		writeJSON(w, http.StatusCreated, a)
	}
}
