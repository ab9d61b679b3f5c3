package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const mirrorTimeout = 2 * time.Second

// RedisMirror republishes events as JSON on a Redis pub/sub channel so other
// processes (reminder senders, dashboards) can follow the clinic's activity.
type RedisMirror struct {
	client  *redis.Client
	channel string
	log     zerolog.Logger
}

// NewRedisMirror connects to url and checks the connection.
func NewRedisMirror(ctx context.Context, url, channel string, log zerolog.Logger) (*RedisMirror, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisMirror{client: client, channel: channel, log: log}, nil
}

// Publish sends ev in the background; failures are logged and forgotten.
func (r *RedisMirror) Publish(_ context.Context, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		r.log.Error().Err(err).Str("kind", ev.Kind).Msg("failed to marshal event for Redis")
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
		defer cancel()
		if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
			r.log.Warn().Err(err).Str("kind", ev.Kind).Str("channel", r.channel).Msg("failed to mirror event to Redis")
		}
	}()
}

func (r *RedisMirror) Close() error {
	return r.client.Close()
}
