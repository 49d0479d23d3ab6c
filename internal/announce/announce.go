// Package announce implements a client for the announcement feed. It
// consumes the SSE stream and the polling endpoint at the same time and
// delivers each announcement to the caller exactly once, so a dropped
// stream never loses a message and an overlapping poll never repeats one.
package announce

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Announcement mirrors the wire format served by the backend.
type Announcement struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}

const (
	defaultPollInterval  = 10 * time.Second
	defaultStreamBackoff = 2 * time.Second
	maxStreamBackoff     = 30 * time.Second
)

// Watcher follows the announcement feed for one player session.
type Watcher struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *slog.Logger
	notify  func(Announcement)

	pollInterval time.Duration

	mu        sync.Mutex
	seen      map[string]struct{}
	watermark string
}

// New returns a Watcher that calls notify once per distinct announcement.
// baseURL is the server root, e.g. "http://localhost:8080".
func New(baseURL, token string, logger *slog.Logger, notify func(Announcement)) *Watcher {
	return &Watcher{
		baseURL:      strings.TrimRight(baseURL, "/"),
		token:        token,
		client:       &http.Client{},
		logger:       logger,
		notify:       notify,
		pollInterval: defaultPollInterval,
		seen:         make(map[string]struct{}),
	}
}

// Run follows the feed until ctx is cancelled. The SSE stream and the
// poller run concurrently; either path may deliver first and the other
// becomes a no-op for that announcement.
func (w *Watcher) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return w.runStream(gctx) })
	g.Go(func() error {
		// The first fetch only seeds the seen set: announcements that
		// existed before startup are history, not news.
		if err := w.poll(gctx, true); err != nil && gctx.Err() == nil {
			w.logger.Warn("seeding from announcement history failed", "error", err)
		}
		return w.runPoll(gctx)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// deliver reports whether the announcement was new. The first path to
// deliver an ID wins; everything after is dropped. In seed mode the ID and
// watermark are recorded without notifying.
func (w *Watcher) deliver(a Announcement, seed bool) bool {
	w.mu.Lock()
	if _, dup := w.seen[a.ID]; dup {
		w.mu.Unlock()
		return false
	}
	w.seen[a.ID] = struct{}{}
	if a.CreatedAt > w.watermark {
		w.watermark = a.CreatedAt
	}
	w.mu.Unlock()

	if !seed {
		w.notify(a)
	}
	return true
}

func (w *Watcher) sinceWatermark() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.watermark
}

func (w *Watcher) runStream(ctx context.Context) error {
	backoff := defaultStreamBackoff
	for {
		err := w.readStream(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.logger.Warn("announcement stream dropped, reconnecting", "error", err, "backoff", backoff)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxStreamBackoff {
			backoff = maxStreamBackoff
		}
	}
}

func (w *Watcher) readStream(ctx context.Context) error {
	u := w.baseURL + "/api/announcements/stream?token=" + url.QueryEscape(w.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream returned status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		// Comment lines (": connected", ": heartbeat") keep the
		// connection alive but carry no payload.
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}

		var a Announcement
		if err := json.Unmarshal([]byte(payload), &a); err != nil {
			w.logger.Warn("skipping malformed stream event", "error", err)
			continue
		}
		w.deliver(a, false)
	}
	return scanner.Err()
}

func (w *Watcher) runPoll(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.poll(ctx, false); err != nil && ctx.Err() == nil {
				w.logger.Warn("announcement poll failed", "error", err)
			}
		}
	}
}

func (w *Watcher) poll(ctx context.Context, seed bool) error {
	u := w.baseURL + "/api/announcements"
	if since := w.sinceWatermark(); since != "" {
		u += "?since=" + url.QueryEscape(since)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+w.token)

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("poll returned status %d", resp.StatusCode)
	}

	var body struct {
		Announcements []Announcement `json:"announcements"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return err
	}

	// The endpoint returns newest first; deliver oldest first so the
	// callback observes announcements in creation order.
	for i := len(body.Announcements) - 1; i >= 0; i-- {
		w.deliver(body.Announcements[i], seed)
	}
	return nil
}
