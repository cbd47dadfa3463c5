package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

// Options tunes the client beyond what the URL carries. Zero values keep the
// URL's (or go-redis') defaults.
type Options struct {
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	PingAttempts int
}

// DefaultOptions are used when NewClient is called without Options.
var DefaultOptions = Options{
	DialTimeout:  2 * time.Second,
	PingAttempts: 3,
}

// NewClient parses redisURL and returns a client that has answered a PING.
// The ping is retried with backoff so the service tolerates Redis starting
// a moment after it does.
func NewClient(ctx context.Context, redisURL string, opts ...Options) (*redis.Client, error) {
	o := DefaultOptions
	if len(opts) > 0 {
		o = opts[0]
	}

	parsed, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if o.PoolSize > 0 {
		parsed.PoolSize = o.PoolSize
	}
	if o.DialTimeout > 0 {
		parsed.DialTimeout = o.DialTimeout
	}
	if o.ReadTimeout > 0 {
		parsed.ReadTimeout = o.ReadTimeout
	}

	client := redis.NewClient(parsed)
	if err := ping(ctx, client, o.PingAttempts); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", parsed.Addr, err)
	}

	return client, nil
}

func ping(ctx context.Context, client *redis.Client, attempts int) error {
	if attempts < 1 {
		attempts = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = time.Second

	return backoff.Retry(func() error {
		return client.Ping(ctx).Err()
	}, backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx))
}
