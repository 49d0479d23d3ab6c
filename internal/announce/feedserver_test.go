package announce

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// feedServer is a minimal stand-in for the backend's announcement
// endpoints: an SSE stream plus a since-watermark poll.
type feedServer struct {
	*httptest.Server

	mu       sync.Mutex
	history  []Announcement
	subs     map[chan Announcement]struct{}
	streamOK bool
}

func newFeedServer(t *testing.T) *feedServer {
	t.Helper()

	fs := &feedServer{
		subs:     make(map[chan Announcement]struct{}),
		streamOK: true,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/announcements/stream", fs.handleStream)
	mux.HandleFunc("/api/announcements", fs.handlePoll)
	fs.Server = httptest.NewServer(mux)
	return fs
}

// blockStream makes the stream endpoint fail so only polling works.
func (fs *feedServer) blockStream() {
	fs.mu.Lock()
	fs.streamOK = false
	fs.mu.Unlock()
}

func (fs *feedServer) publish(a Announcement) {
	fs.mu.Lock()
	fs.history = append(fs.history, a)
	for ch := range fs.subs {
		select {
		case ch <- a:
		default:
		}
	}
	fs.mu.Unlock()
}

func (fs *feedServer) handleStream(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	ok := fs.streamOK
	fs.mu.Unlock()
	if !ok {
		http.Error(w, "stream unavailable", http.StatusServiceUnavailable)
		return
	}

	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ch := make(chan Announcement, 8)
	fs.mu.Lock()
	fs.subs[ch] = struct{}{}
	fs.mu.Unlock()
	defer func() {
		fs.mu.Lock()
		delete(fs.subs, ch)
		fs.mu.Unlock()
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case a := <-ch:
			data, _ := json.Marshal(a)
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func (fs *feedServer) handlePoll(w http.ResponseWriter, r *http.Request) {
	since := r.URL.Query().Get("since")

	fs.mu.Lock()
	var out []Announcement
	for i := len(fs.history) - 1; i >= 0; i-- {
		if fs.history[i].CreatedAt > since {
			out = append(out, fs.history[i])
		}
	}
	fs.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]Announcement{"announcements": out})
}
