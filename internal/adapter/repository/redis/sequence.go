package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// SequenceGenerator implements usecase.SequenceGenerator with INCR. Numbers
// may skip when a transaction that took one rolls back.
type SequenceGenerator struct {
	client redis.Cmdable
	prefix string
}

// NewSequenceGenerator creates a new SequenceGenerator.
func NewSequenceGenerator(client redis.Cmdable) *SequenceGenerator {
	return &SequenceGenerator{
		client: client,
		prefix: "opsledger:seq:",
	}
}

// Next returns the next value of the named sequence, starting at 1.
func (g *SequenceGenerator) Next(ctx context.Context, name string) (int64, error) {
	return g.client.Incr(ctx, g.prefix+name).Result()
}
