package server

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestAdminLoginGoodCredentials(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/admin/login",
		AdminLoginRequest{Email: "admin@worldhunt.dev", Password: "changeme"}, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp AdminMeResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Email != "admin@worldhunt.dev" {
		t.Errorf("expected email admin@worldhunt.dev, got %q", resp.Email)
	}

	found := false
	for _, c := range w.Result().Cookies() {
		if c.Name == "admin_session" && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected admin_session cookie to be set")
	}
}

func TestAdminLoginBadCredentials(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/admin/login",
		AdminLoginRequest{Email: "admin@worldhunt.dev", Password: "wrong"}, "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/admin/login",
		AdminLoginRequest{Email: "nobody@example.com", Password: "changeme"}, "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown email: expected 401, got %d", w.Code)
	}
}

func TestAdminMeAndLogout(t *testing.T) {
	r, _, _ := newTestRouter(t)
	cookies := adminLogin(t, r)

	w := doJSON(t, r, http.MethodGet, "/api/admin/me", nil, "", cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/admin/logout", nil, "", cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", w.Code)
	}

	// The session is invalid after logout.
	w = doJSON(t, r, http.MethodGet, "/api/admin/me", nil, "", cookies)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("after logout: expected 401, got %d", w.Code)
	}
}

func TestAdminRoutesUnauthenticated(t *testing.T) {
	r, _, _ := newTestRouter(t)

	endpoints := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/admin/event-control"},
		{http.MethodPost, "/api/admin/event-control"},
		{http.MethodPatch, "/api/admin/event-control"},
		{http.MethodGet, "/api/admin/submissions"},
		{http.MethodGet, "/api/admin/teams"},
		{http.MethodGet, "/api/admin/stats"},
		{http.MethodPost, "/api/admin/announcements"},
		{http.MethodGet, "/api/admin/worlds"},
		{http.MethodPost, "/api/admin/worlds"},
		{http.MethodGet, "/api/admin/worlds/someid"},
		{http.MethodPatch, "/api/admin/worlds/someid"},
		{http.MethodDelete, "/api/admin/worlds/someid"},
	}

	for _, ep := range endpoints {
		w := doJSON(t, r, ep.method, ep.path, nil, "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", ep.method, ep.path, w.Code)
		}
	}
}

func TestAdminWorldCRUD(t *testing.T) {
	r, _, _ := newTestRouter(t)
	cookies := adminLogin(t, r)

	// List includes the seeded worlds with answers.
	w := doJSON(t, r, http.MethodGet, "/api/admin/worlds", nil, "", cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var list []AdminWorldItem
	json.NewDecoder(w.Body).Decode(&list)
	if len(list) != 4 {
		t.Fatalf("list: expected 4 seeded worlds, got %d", len(list))
	}
	if list[0].Answer == "" {
		t.Error("list: admin view should include the answer")
	}

	// Create.
	w = doJSON(t, r, http.MethodPost, "/api/admin/worlds", AdminWorldRequest{
		Title:    "The Fifth Door",
		Story:    "A door appeared where no door was.",
		Question: "What is written on it?",
		Answer:   "Finis",
		Order:    5,
		Locked:   true,
	}, "", cookies)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created AdminWorldItem
	json.NewDecoder(w.Body).Decode(&created)
	if created.ID == "" {
		t.Fatal("create: expected non-empty ID")
	}
	if !created.IsLocked {
		t.Error("create: expected the lock flag to round-trip")
	}

	// Duplicate sequence position is rejected.
	w = doJSON(t, r, http.MethodPost, "/api/admin/worlds", AdminWorldRequest{
		Title: "Clash", Story: "s", Question: "q", Answer: "a", Order: 5,
	}, "", cookies)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate order: expected 409, got %d: %s", w.Code, w.Body.String())
	}

	// Partial update.
	newTitle := "The Fifth Door, Revisited"
	w = doJSON(t, r, http.MethodPatch, "/api/admin/worlds/"+created.ID,
		AdminWorldUpdate{Title: &newTitle}, "", cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var updated AdminWorldItem
	json.NewDecoder(w.Body).Decode(&updated)
	if updated.Title != newTitle {
		t.Errorf("update: expected title %q, got %q", newTitle, updated.Title)
	}
	if updated.Answer != "Finis" {
		t.Errorf("update: untouched fields must survive, got answer %q", updated.Answer)
	}

	// Get.
	w = doJSON(t, r, http.MethodGet, "/api/admin/worlds/"+created.ID, nil, "", cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Delete, then verify it is gone.
	w = doJSON(t, r, http.MethodDelete, "/api/admin/worlds/"+created.ID, nil, "", cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodGet, "/api/admin/worlds/"+created.ID, nil, "", cookies)
	if w.Code != http.StatusNotFound {
		t.Errorf("after delete: expected 404, got %d", w.Code)
	}
}

func TestAdminWorldValidation(t *testing.T) {
	r, _, _ := newTestRouter(t)
	cookies := adminLogin(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/admin/worlds", AdminWorldRequest{
		Title: "No Answer", Story: "s", Question: "q", Order: 9,
	}, "", cookies)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSetAnswerKey(t *testing.T) {
	r, _, _ := newTestRouter(t)
	cookies := adminLogin(t, r)

	realWorld, villain := "London", "Moriarty"
	w := doJSON(t, r, http.MethodPatch, "/api/admin/event-control",
		AnswerKeyRequest{CorrectRealWorld: &realWorld, CorrectVillain: &villain}, "", cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp EventControlResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.CorrectRealWorld != "London" || resp.CorrectVillain != "Moriarty" {
		t.Errorf("unexpected key: %+v", resp)
	}

	// A second partial patch leaves the other fields alone.
	weapon := "Revolver"
	w = doJSON(t, r, http.MethodPatch, "/api/admin/event-control",
		AnswerKeyRequest{CorrectWeapon: &weapon}, "", cookies)
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.CorrectRealWorld != "London" {
		t.Errorf("partial patch clobbered realWorld: %+v", resp)
	}
	if resp.CorrectWeapon != "Revolver" {
		t.Errorf("expected weapon 'Revolver', got %q", resp.CorrectWeapon)
	}
}

func TestAdminSubmissionsScoring(t *testing.T) {
	r, db, _ := newTestRouter(t)
	cookies := adminLogin(t, r)
	createTeam(t, db, "Scotland Yard", "yard-2026")

	openWindow(t, r, cookies, 0)

	irregulars := joinTeam(t, r, "irregulars-2026", "Wiggins")
	yard := joinTeam(t, r, "yard-2026", "Lestrade")

	// First team nails it, second team gets one field wrong.
	doJSON(t, r, http.MethodPost, "/api/final/submit",
		FinalSubmitRequest{RealWorld: "london", Villain: "MORIARTY", Weapon: " revolver "}, irregulars.Token, nil)
	doJSON(t, r, http.MethodPost, "/api/final/submit",
		FinalSubmitRequest{RealWorld: "London", Villain: "Moran", Weapon: "Revolver"}, yard.Token, nil)

	// Without a key nothing is scored.
	w := doJSON(t, r, http.MethodGet, "/api/admin/submissions", nil, "", cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp SubmissionsResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.HasCorrectAnswers {
		t.Error("expected hasCorrectAnswers=false before the key is set")
	}
	if resp.TotalSubmissions != 2 {
		t.Fatalf("expected 2 submissions, got %d", resp.TotalSubmissions)
	}
	if len(resp.Winners) != 0 {
		t.Errorf("expected no winners without a key, got %d", len(resp.Winners))
	}

	// Set the key and re-evaluate.
	realWorld, villain, weapon := "London", "Moriarty", "Revolver"
	doJSON(t, r, http.MethodPatch, "/api/admin/event-control",
		AnswerKeyRequest{CorrectRealWorld: &realWorld, CorrectVillain: &villain, CorrectWeapon: &weapon}, "", cookies)

	w = doJSON(t, r, http.MethodGet, "/api/admin/submissions", nil, "", cookies)
	json.NewDecoder(w.Body).Decode(&resp)
	if !resp.HasCorrectAnswers {
		t.Fatal("expected hasCorrectAnswers=true")
	}
	if len(resp.Winners) != 1 {
		t.Fatalf("expected 1 winner, got %d", len(resp.Winners))
	}
	if resp.Winners[0].TeamName != "Baker Street Irregulars" {
		t.Errorf("expected winning team 'Baker Street Irregulars', got %q", resp.Winners[0].TeamName)
	}
	if resp.Winners[0].Score != 3 {
		t.Errorf("expected winner score 3, got %d", resp.Winners[0].Score)
	}

	for _, s := range resp.Submissions {
		if s.TeamName == "Scotland Yard" {
			if s.Score != 2 || s.IsWinner {
				t.Errorf("expected Scotland Yard score 2 and no win, got score=%d winner=%v", s.Score, s.IsWinner)
			}
			if s.VillainCorrect {
				t.Error("expected villain field marked wrong")
			}
		}
	}
}

func TestAnnouncementsCreateAndPoll(t *testing.T) {
	r, _, _ := newTestRouter(t)
	cookies := adminLogin(t, r)
	sess := joinTeam(t, r, "irregulars-2026", "Wiggins")

	w := doJSON(t, r, http.MethodPost, "/api/admin/announcements",
		AnnouncementRequest{Message: "Doors open in ten minutes"}, "", cookies)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created Announcement
	json.NewDecoder(w.Body).Decode(&created)
	if created.ID == "" || created.CreatedAt == "" {
		t.Fatalf("create: expected id and timestamp, got %+v", created)
	}

	// The polling fallback sees it.
	w = doJSON(t, r, http.MethodGet, "/api/announcements", nil, sess.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("poll: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var poll AnnouncementsResponse
	json.NewDecoder(w.Body).Decode(&poll)
	if len(poll.Announcements) != 1 || poll.Announcements[0].ID != created.ID {
		t.Fatalf("poll: expected the created announcement, got %+v", poll.Announcements)
	}

	// The watermark excludes anything already seen.
	w = doJSON(t, r, http.MethodGet, "/api/announcements?since="+created.CreatedAt, nil, sess.Token, nil)
	json.NewDecoder(w.Body).Decode(&poll)
	if len(poll.Announcements) != 0 {
		t.Errorf("since watermark: expected 0 announcements, got %d", len(poll.Announcements))
	}
}

func TestAnnouncementsPollLimit(t *testing.T) {
	r, _, _ := newTestRouter(t)
	cookies := adminLogin(t, r)
	sess := joinTeam(t, r, "irregulars-2026", "Wiggins")

	for i := 0; i < pollLimit+3; i++ {
		w := doJSON(t, r, http.MethodPost, "/api/admin/announcements",
			AnnouncementRequest{Message: "bulletin"}, "", cookies)
		if w.Code != http.StatusCreated {
			t.Fatalf("create %d: expected 201, got %d", i, w.Code)
		}
	}

	w := doJSON(t, r, http.MethodGet, "/api/announcements", nil, sess.Token, nil)
	var poll AnnouncementsResponse
	json.NewDecoder(w.Body).Decode(&poll)
	if len(poll.Announcements) != pollLimit {
		t.Errorf("expected poll capped at %d, got %d", pollLimit, len(poll.Announcements))
	}
}

func TestAnnouncementValidation(t *testing.T) {
	r, _, _ := newTestRouter(t)
	cookies := adminLogin(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/admin/announcements",
		AnnouncementRequest{Message: "   "}, "", cookies)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAdminTeamsOverview(t *testing.T) {
	r, db, _ := newTestRouter(t)
	cookies := adminLogin(t, r)
	createTeam(t, db, "Scotland Yard", "yard-2026")

	sess := joinTeam(t, r, "irregulars-2026", "Wiggins")
	joinTeam(t, r, "irregulars-2026", "Simpson")

	list := listWorlds(t, r, sess.Token)
	first := worldByOrder(t, list, 1)
	doJSON(t, r, http.MethodPost, "/api/game/attempt",
		AttemptRequest{WorldID: first.ID, Answer: "Moriarty"}, sess.Token, nil)

	w := doJSON(t, r, http.MethodGet, "/api/admin/teams", nil, "", cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Teams []AdminTeamOverview `json:"teams"`
	}
	json.NewDecoder(w.Body).Decode(&resp)
	if len(resp.Teams) != 2 {
		t.Fatalf("expected 2 teams, got %d", len(resp.Teams))
	}

	for _, team := range resp.Teams {
		switch team.Name {
		case "Baker Street Irregulars":
			if team.MemberCount != 2 {
				t.Errorf("expected 2 members, got %d", team.MemberCount)
			}
			if team.CompletedWorlds != 1 {
				t.Errorf("expected 1 completed world, got %d", team.CompletedWorlds)
			}
			if team.TotalWorlds != 4 {
				t.Errorf("expected 4 total worlds, got %d", team.TotalWorlds)
			}
		case "Scotland Yard":
			if team.MemberCount != 0 || team.CompletedWorlds != 0 {
				t.Errorf("expected empty team, got %+v", team)
			}
		default:
			t.Errorf("unexpected team %q", team.Name)
		}
	}
}

func TestAdminStats(t *testing.T) {
	r, _, _ := newTestRouter(t)
	cookies := adminLogin(t, r)
	sess := joinTeam(t, r, "irregulars-2026", "Wiggins")

	list := listWorlds(t, r, sess.Token)
	first := worldByOrder(t, list, 1)
	doJSON(t, r, http.MethodPost, "/api/game/attempt",
		AttemptRequest{WorldID: first.ID, Answer: "Moriarty"}, sess.Token, nil)
	doJSON(t, r, http.MethodPost, "/api/admin/announcements",
		AnnouncementRequest{Message: "First world has fallen"}, "", cookies)

	w := doJSON(t, r, http.MethodGet, "/api/admin/stats", nil, "", cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var stats AdminStats
	json.NewDecoder(w.Body).Decode(&stats)
	if stats.TotalTeams != 1 {
		t.Errorf("expected 1 team, got %d", stats.TotalTeams)
	}
	if stats.TotalWorlds != 4 {
		t.Errorf("expected 4 worlds, got %d", stats.TotalWorlds)
	}
	if stats.UnlockedWorlds != 2 {
		t.Errorf("expected 2 unlocked worlds after the cascade, got %d", stats.UnlockedWorlds)
	}
	if stats.TotalAnnouncements != 1 {
		t.Errorf("expected 1 announcement, got %d", stats.TotalAnnouncements)
	}
	if stats.FinalSubmissions != 0 {
		t.Errorf("expected 0 final submissions, got %d", stats.FinalSubmissions)
	}
}
