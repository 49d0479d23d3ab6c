package server

import (
	"encoding/json"
	"net/http"
)

// Stable machine-readable error kinds. Clients branch on these; the message
// is for humans.
const (
	kindNotFound         = "not_found"
	kindLocked           = "locked"
	kindForbidden        = "forbidden"
	kindUnauthorized     = "unauthorized"
	kindWindowClosed     = "window_closed"
	kindAlreadySubmitted = "already_submitted"
	kindInvalidInput     = "invalid_input"
	kindInternal         = "internal"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, map[string]string{"error": msg, "kind": kind})
}

// writeInternal hides the underlying failure from the caller; the handler is
// responsible for logging it.
func writeInternal(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, kindInternal, "internal error")
}
