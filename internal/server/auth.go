package server

import (
	"errors"
	"net/http"
	"strings"
)

var errNoSession = errors.New("no valid session")

// teamFromRequest resolves the requesting player's team from the Bearer
// token. Identity issuance itself lives in the join flow; everything else in
// the API only ever sees the resolved team.
func teamFromRequest(r *http.Request, store Store) (teamSession, error) {
	auth := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(auth, "Bearer ")
	if !found || token == "" {
		// SSE clients can't set headers, so the stream endpoint passes the
		// token as a query parameter instead.
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		return teamSession{}, errNoSession
	}
	return store.TeamFromToken(r.Context(), token)
}
