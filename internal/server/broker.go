package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

// redisChannel carries announcements between instances when the broker is
// redis-backed.
const redisChannel = "worldhunt:announcements"

// Broker fans operator announcements out to every connected SSE subscriber.
//
// With a single instance the hub is purely in-process state. When a redis
// client is attached (multi-instance deployments), Publish routes through a
// redis channel and each instance's bridge goroutine re-delivers to its own
// local subscribers, so the hub stays a thin adapter over the shared
// transport. Delivery is best effort either way: the Announcement row is the
// only persistence, and clients recover missed events through the polling
// endpoint.
type Broker struct {
	mu     sync.RWMutex
	subs   map[chan []byte]struct{}
	rdb    *redis.Client
	logger *slog.Logger
}

func NewBroker(rdb *redis.Client, logger *slog.Logger) *Broker {
	return &Broker{
		subs:   make(map[chan []byte]struct{}),
		rdb:    rdb,
		logger: logger,
	}
}

// Subscribe returns a channel that receives JSON-encoded announcements.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}

// Publish sends an announcement to all subscribers. A publish failure to one
// subscriber never propagates to the publisher.
func (b *Broker) Publish(ctx context.Context, a Announcement) {
	data, _ := json.Marshal(a)
	if b.rdb != nil {
		// Local delivery happens when the bridge receives the message back.
		if err := b.rdb.Publish(ctx, redisChannel, data).Err(); err != nil {
			b.logger.Error("publishing announcement to redis", "error", err)
		}
		return
	}
	b.fanout(data)
}

func (b *Broker) fanout(data []byte) {
	b.mu.RLock()
	for ch := range b.subs {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}

// RunBridge consumes the redis channel and re-delivers messages to local
// subscribers. It blocks until ctx is cancelled and is a no-op when the
// broker has no redis client.
func (b *Broker) RunBridge(ctx context.Context) error {
	if b.rdb == nil {
		<-ctx.Done()
		return nil
	}

	sub := b.rdb.Subscribe(ctx, redisChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				b.logger.Warn("announcement bridge closed")
				return nil
			}
			b.fanout([]byte(msg.Payload))
		}
	}
}
