package server

import (
	"fmt"
	"net/http"
	"time"
)

// heartbeatInterval keeps intermediary proxies from closing idle SSE
// connections. It is independent of announcement traffic.
const heartbeatInterval = 30 * time.Second

// handleAnnouncementStream is the push transport: a long-lived
// text/event-stream with a comment heartbeat and one data line per
// announcement. Disconnects are detected lazily on the next write; clients
// reconnect on their own and rely on the polling endpoint for anything
// missed in between.
func handleAnnouncementStream(store Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := teamFromRequest(r, store); err != nil {
			writeError(w, http.StatusUnauthorized, kindUnauthorized, "invalid or missing session token")
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, kindInternal, "streaming not supported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache, no-transform")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		ch := broker.Subscribe()
		defer broker.Unsubscribe(ch)

		fmt.Fprintf(w, ": connected\n\n")
		flusher.Flush()

		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case data := <-ch:
				fmt.Fprintf(w, "data: %s\n\n", data)
				flusher.Flush()
			case <-heartbeat.C:
				fmt.Fprintf(w, ": heartbeat\n\n")
				flusher.Flush()
			}
		}
	}
}
