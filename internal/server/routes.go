package server

import (
	"database/sql"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, db *sql.DB, rdb *redis.Client, broker *Broker, spaDir string) {
	store := NewSQLiteStore(db)

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("WorldHunt API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, db, rdb))
	r.Get("/ws/echo", handleWSEcho(logger))

	// Player routes — team resolved from the session token.
	r.Route("/api", func(r chi.Router) {
		r.Get("/teams/{joinToken}", handleTeamLookup(logger, store))
		r.Post("/join", handleJoin(logger, store))

		r.Get("/game/worlds", handleListWorlds(logger, store))
		r.Get("/game/worlds/{worldID}", handleWorldDetail(logger, store))
		r.Post("/game/attempt", handleAttempt(logger, store))

		r.Get("/final/status", handleFinalStatus(logger, store))
		r.Post("/final/submit", handleFinalSubmit(logger, store))

		r.Get("/announcements", handleListAnnouncements(logger, store))
		r.Get("/announcements/stream", handleAnnouncementStream(store, broker))
	})

	// Admin auth endpoints handle their own session checks.
	r.Post("/api/admin/login", handleAdminLogin(logger, store))
	r.Post("/api/admin/logout", handleAdminLogout(store))
	r.Get("/api/admin/me", handleAdminMe(store))

	// Operator routes — cookie session required.
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(adminAuthMiddleware(store))

		r.Get("/event-control", handleGetEventControl(logger, store))
		r.Post("/event-control", handleSetEventControl(logger, store))
		r.Patch("/event-control", handleSetAnswerKey(logger, store))

		r.Get("/submissions", handleListSubmissions(logger, store))
		r.Get("/teams", handleAdminListTeams(logger, store))
		r.Get("/stats", handleAdminStats(logger, store))

		r.Post("/announcements", handleCreateAnnouncement(logger, store, broker))

		r.Get("/worlds", handleAdminListWorlds(logger, store))
		r.Post("/worlds", handleAdminCreateWorld(logger, store))
		r.Get("/worlds/{worldID}", handleAdminGetWorld(logger, store))
		r.Patch("/worlds/{worldID}", handleAdminUpdateWorld(logger, store))
		r.Delete("/worlds/{worldID}", handleAdminDeleteWorld(logger, store))
	})

	if spaDir != "" {
		if info, err := os.Stat(spaDir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", spaDir)
			r.NotFound(handleSPA(spaDir))
		}
	}
}
