package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorResponse is the shape of every error body the API returns.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "WorldHunt API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the WorldHunt mystery event.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /ws/echo
	getWSEcho, _ := r.NewOperationContext(http.MethodGet, "/ws/echo")
	getWSEcho.SetSummary("WebSocket echo")
	getWSEcho.SetDescription("Connectivity probe: upgrades to a WebSocket connection that echoes messages back.")
	getWSEcho.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWSEcho)

	// GET /api/teams/{joinToken}
	getTeam, _ := r.NewOperationContext(http.MethodGet, "/api/teams/{joinToken}")
	getTeam.SetSummary("Look up team")
	getTeam.SetDescription("Look up a team by its join token before joining.")
	getTeam.AddRespStructure(TeamLookupResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getTeam.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getTeam)

	// POST /api/join
	postJoin, _ := r.NewOperationContext(http.MethodPost, "/api/join")
	postJoin.SetSummary("Join a team")
	postJoin.SetDescription("Player joins a team using the join token. Returns a session token.")
	postJoin.AddReqStructure(JoinRequest{})
	postJoin.AddRespStructure(JoinResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postJoin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postJoin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postJoin)

	// GET /api/game/worlds
	listWorlds, _ := r.NewOperationContext(http.MethodGet, "/api/game/worlds")
	listWorlds.SetSummary("List worlds")
	listWorlds.SetDescription("Returns all worlds in order with the team's completion status. Requires Bearer token.")
	listWorlds.AddRespStructure(WorldListResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	listWorlds.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(listWorlds)

	// GET /api/game/worlds/{worldID}
	getWorld, _ := r.NewOperationContext(http.MethodGet, "/api/game/worlds/{worldID}")
	getWorld.SetSummary("World detail")
	getWorld.SetDescription("Returns an unlocked world's story and question plus the team's attempt count. Requires Bearer token.")
	getWorld.AddRespStructure(WorldDetailResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getWorld.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	getWorld.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	getWorld.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getWorld)

	// POST /api/game/attempt
	postAttempt, _ := r.NewOperationContext(http.MethodPost, "/api/game/attempt")
	postAttempt.SetSummary("Attempt a world")
	postAttempt.SetDescription("Submit an answer for a world. A correct answer completes it and unlocks the next world in sequence. Requires Bearer token.")
	postAttempt.AddReqStructure(AttemptRequest{})
	postAttempt.AddRespStructure(AttemptResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postAttempt.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postAttempt.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	postAttempt.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	postAttempt.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postAttempt)

	// GET /api/final/status
	getFinalStatus, _ := r.NewOperationContext(http.MethodGet, "/api/final/status")
	getFinalStatus.SetSummary("Final answer status")
	getFinalStatus.SetDescription("Whether the final window is open, its deadline, and the team's own submission if any. Requires Bearer token.")
	getFinalStatus.AddRespStructure(FinalStatusResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getFinalStatus.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getFinalStatus)

	// POST /api/final/submit
	postFinal, _ := r.NewOperationContext(http.MethodPost, "/api/final/submit")
	postFinal.SetSummary("Submit final answer")
	postFinal.SetDescription("One-shot three-field submission, accepted only while the window is open. Requires Bearer token.")
	postFinal.AddReqStructure(FinalSubmitRequest{})
	postFinal.AddRespStructure(FinalSubmitResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postFinal.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postFinal.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	postFinal.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	postFinal.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postFinal)

	// GET /api/announcements
	listAnnouncements, _ := r.NewOperationContext(http.MethodGet, "/api/announcements")
	listAnnouncements.SetSummary("Poll announcements")
	listAnnouncements.SetDescription("Returns recent announcements created after the 'since' watermark, newest first. Requires Bearer token.")
	listAnnouncements.AddRespStructure(AnnouncementsResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	listAnnouncements.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(listAnnouncements)

	// GET /api/announcements/stream
	getStream, _ := r.NewOperationContext(http.MethodGet, "/api/announcements/stream")
	getStream.SetSummary("Announcement stream")
	getStream.SetDescription("Server-Sent Events stream of announcements with periodic heartbeats. Pass the session token as a query parameter.")
	getStream.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	getStream.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getStream)

	// POST /api/admin/login
	postLogin, _ := r.NewOperationContext(http.MethodPost, "/api/admin/login")
	postLogin.SetSummary("Admin login")
	postLogin.SetDescription("Authenticate with email and password. Sets the admin_session cookie.")
	postLogin.AddReqStructure(AdminLoginRequest{})
	postLogin.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postLogin)

	// POST /api/admin/logout
	postLogout, _ := r.NewOperationContext(http.MethodPost, "/api/admin/logout")
	postLogout.SetSummary("Admin logout")
	postLogout.SetDescription("Clears the admin session and expires the cookie.")
	postLogout.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postLogout)

	// GET /api/admin/me
	getMe, _ := r.NewOperationContext(http.MethodGet, "/api/admin/me")
	getMe.SetSummary("Current admin")
	getMe.SetDescription("Returns the currently authenticated admin. Requires the admin_session cookie.")
	getMe.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getMe.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getMe)

	// GET /api/admin/event-control
	getControl, _ := r.NewOperationContext(http.MethodGet, "/api/admin/event-control")
	getControl.SetSummary("Event control")
	getControl.SetDescription("Returns the final-answer window state and the correct-answer triple. Requires the admin_session cookie.")
	getControl.AddRespStructure(EventControlResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getControl.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getControl)

	// POST /api/admin/event-control
	setControl, _ := r.NewOperationContext(http.MethodPost, "/api/admin/event-control")
	setControl.SetSummary("Open or close final window")
	setControl.SetDescription("Sets the final-answer window to an explicit state. Opening may carry a duration in minutes which fixes the deadline. Repeating the current state is a no-op. Requires the admin_session cookie.")
	setControl.AddReqStructure(EventControlRequest{})
	setControl.AddRespStructure(EventControlResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	setControl.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	setControl.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(setControl)

	// PATCH /api/admin/event-control
	patchControl, _ := r.NewOperationContext(http.MethodPatch, "/api/admin/event-control")
	patchControl.SetSummary("Set correct answers")
	patchControl.SetDescription("Updates the correct-answer triple used to score final submissions. Omitted fields are unchanged. Requires the admin_session cookie.")
	patchControl.AddReqStructure(AnswerKeyRequest{})
	patchControl.AddRespStructure(EventControlResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	patchControl.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(patchControl)

	// GET /api/admin/submissions
	getSubs, _ := r.NewOperationContext(http.MethodGet, "/api/admin/submissions")
	getSubs.SetSummary("Evaluated submissions")
	getSubs.SetDescription("All final submissions scored against the current answer key, plus the ordered winner set. Requires the admin_session cookie.")
	getSubs.AddRespStructure(SubmissionsResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getSubs.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getSubs)

	// GET /api/admin/teams
	getTeams, _ := r.NewOperationContext(http.MethodGet, "/api/admin/teams")
	getTeams.SetSummary("Team progress overview")
	getTeams.SetDescription("Per-team member counts, completed worlds, and final-submission flags. Requires the admin_session cookie.")
	getTeams.AddRespStructure(map[string][]AdminTeamOverview{}, openapi.WithHTTPStatus(http.StatusOK))
	getTeams.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getTeams)

	// GET /api/admin/stats
	getStats, _ := r.NewOperationContext(http.MethodGet, "/api/admin/stats")
	getStats.SetSummary("Dashboard stats")
	getStats.SetDescription("Event-wide counters for the operator dashboard. Requires the admin_session cookie.")
	getStats.AddRespStructure(AdminStats{}, openapi.WithHTTPStatus(http.StatusOK))
	getStats.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getStats)

	// POST /api/admin/announcements
	postAnnouncement, _ := r.NewOperationContext(http.MethodPost, "/api/admin/announcements")
	postAnnouncement.SetSummary("Broadcast announcement")
	postAnnouncement.SetDescription("Persists an announcement and pushes it to all connected streams. Requires the admin_session cookie.")
	postAnnouncement.AddReqStructure(AnnouncementRequest{})
	postAnnouncement.AddRespStructure(Announcement{}, openapi.WithHTTPStatus(http.StatusCreated))
	postAnnouncement.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postAnnouncement.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postAnnouncement)

	// GET /api/admin/worlds
	listAdminWorlds, _ := r.NewOperationContext(http.MethodGet, "/api/admin/worlds")
	listAdminWorlds.SetSummary("List worlds with answers")
	listAdminWorlds.AddRespStructure([]AdminWorldItem{}, openapi.WithHTTPStatus(http.StatusOK))
	listAdminWorlds.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(listAdminWorlds)

	// POST /api/admin/worlds
	createWorld, _ := r.NewOperationContext(http.MethodPost, "/api/admin/worlds")
	createWorld.SetSummary("Create world")
	createWorld.SetDescription("Creates a world at a unique sequence position. Requires the admin_session cookie.")
	createWorld.AddReqStructure(AdminWorldRequest{})
	createWorld.AddRespStructure(AdminWorldItem{}, openapi.WithHTTPStatus(http.StatusCreated))
	createWorld.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	createWorld.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	createWorld.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(createWorld)

	// GET /api/admin/worlds/{worldID}
	getAdminWorld, _ := r.NewOperationContext(http.MethodGet, "/api/admin/worlds/{worldID}")
	getAdminWorld.SetSummary("Get world with answer")
	getAdminWorld.AddRespStructure(AdminWorldItem{}, openapi.WithHTTPStatus(http.StatusOK))
	getAdminWorld.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	getAdminWorld.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getAdminWorld)

	// PATCH /api/admin/worlds/{worldID}
	patchWorld, _ := r.NewOperationContext(http.MethodPatch, "/api/admin/worlds/{worldID}")
	patchWorld.SetSummary("Update world")
	patchWorld.SetDescription("Partial update; omitted fields are unchanged. Requires the admin_session cookie.")
	patchWorld.AddReqStructure(AdminWorldUpdate{})
	patchWorld.AddRespStructure(AdminWorldItem{}, openapi.WithHTTPStatus(http.StatusOK))
	patchWorld.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	patchWorld.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	patchWorld.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(patchWorld)

	// DELETE /api/admin/worlds/{worldID}
	deleteWorld, _ := r.NewOperationContext(http.MethodDelete, "/api/admin/worlds/{worldID}")
	deleteWorld.SetSummary("Delete world")
	deleteWorld.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	deleteWorld.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	deleteWorld.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(deleteWorld)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
