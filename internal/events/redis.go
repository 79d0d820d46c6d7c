package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const DefaultRedisChannel = "hotline:events"

// RedisForwarder republishes bus events on a Redis pub/sub channel so other
// processes (dashboards, notifiers) can follow call state without polling.
type RedisForwarder struct {
	Client  redis.UniversalClient
	Channel string
	Log     *slog.Logger
}

// Run forwards events until ctx is done or the channel is closed.
// Publish failures are logged and skipped; routing never waits on Redis.
func (f RedisForwarder) Run(ctx context.Context, in <-chan Event) {
	channel := f.Channel
	if channel == "" {
		channel = DefaultRedisChannel
	}
	log := f.Log
	if log == nil {
		log = slog.Default()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-in:
			if !ok {
				return
			}
			payload, err := json.Marshal(e)
			if err != nil {
				log.Error("event encode failed", "err", err, "event_id", e.ID)
				continue
			}
			if err := f.Client.Publish(ctx, channel, payload).Err(); err != nil {
				log.Warn("event publish failed", "err", err, "event_id", e.ID, "channel", channel)
			}
		}
	}
}
