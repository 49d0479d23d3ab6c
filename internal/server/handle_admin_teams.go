package server

import (
	"log/slog"
	"net/http"
)

// AdminTeamOverview summarizes one team's progress for the operator.
type AdminTeamOverview struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	MemberCount     int    `json:"memberCount"`
	CompletedWorlds int    `json:"completedWorlds"`
	TotalWorlds     int    `json:"totalWorlds"`
	FinalSubmitted  bool   `json:"finalSubmitted"`
}

// AdminStats is the dashboard counters payload.
type AdminStats struct {
	TotalTeams         int `json:"totalTeams"`
	ActiveTeams        int `json:"activeTeams"`
	TotalWorlds        int `json:"totalWorlds"`
	UnlockedWorlds     int `json:"unlockedWorlds"`
	TotalAnnouncements int `json:"totalAnnouncements"`
	FinalSubmissions   int `json:"finalSubmissions"`
}

func handleAdminListTeams(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teams, err := store.TeamsOverview(r.Context())
		if err != nil {
			logger.Error("listing teams", "error", err)
			writeInternal(w)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"teams": teams})
	}
}

func handleAdminStats(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := store.Stats(r.Context())
		if err != nil {
			logger.Error("loading stats", "error", err)
			writeInternal(w)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}
