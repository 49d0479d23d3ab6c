package server

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/questworks/worldhunt/internal/database"
	"github.com/questworks/worldhunt/internal/migrations"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestRouter spins up the full route tree against a fresh in-memory
// database seeded with the demo hunt.
func newTestRouter(t *testing.T) (*chi.Mux, *sql.DB, *Broker) {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	logger := testLogger()
	if err := Seed(ctx, logger, db, "admin@worldhunt.dev", "changeme"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	broker := NewBroker(nil, testLogger())
	r := chi.NewRouter()
	addRoutes(r, logger, db, nil, broker, "")
	return r, db, broker
}

// joinTeam runs the join flow and returns the issued session.
func joinTeam(t *testing.T, r http.Handler, joinToken, playerName string) JoinResponse {
	t.Helper()

	body, _ := json.Marshal(JoinRequest{JoinToken: joinToken, PlayerName: playerName})
	req := httptest.NewRequest(http.MethodPost, "/api/join", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("join: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp JoinResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Token == "" {
		t.Fatal("join: expected a session token")
	}
	return resp
}

// createTeam inserts an extra team and returns its join token.
func createTeam(t *testing.T, db *sql.DB, name, joinToken string) {
	t.Helper()
	if _, err := db.Exec(`INSERT INTO teams (name, join_token) VALUES (?, ?)`, name, joinToken); err != nil {
		t.Fatalf("insert team %q: %v", name, err)
	}
}

// adminLogin authenticates as the seeded admin and returns the session
// cookies.
func adminLogin(t *testing.T, r http.Handler) []*http.Cookie {
	t.Helper()

	body, _ := json.Marshal(AdminLoginRequest{Email: "admin@worldhunt.dev", Password: "changeme"})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	return w.Result().Cookies()
}

// doJSON builds a request with an optional Bearer token and cookies, runs
// it, and returns the recorder.
func doJSON(t *testing.T, r http.Handler, method, path string, body any, token string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// errKind decodes the machine-readable kind field from an error body.
func errKind(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Kind string `json:"kind"`
	}
	json.NewDecoder(w.Body).Decode(&body)
	return body.Kind
}
