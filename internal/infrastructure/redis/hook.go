package redis

import (
	"context"
	"errors"
	"net"

	"github.com/redis/go-redis/v9"

	"github.com/iho/opsledger/internal/infrastructure/metrics"
)

// MetricsHook counts Redis commands and their failures by command name.
// A cache miss (redis.Nil) is not a failure.
type MetricsHook struct {
	metrics *metrics.Metrics
}

// NewMetricsHook creates a hook reporting to m.
func NewMetricsHook(m *metrics.Metrics) *MetricsHook {
	return &MetricsHook{metrics: m}
}

// DialHook implements redis.Hook.
func (h *MetricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.metrics.RedisErrors.WithLabelValues("dial").Inc()
		}
		return conn, err
	}
}

// ProcessHook implements redis.Hook.
func (h *MetricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		h.observe(cmd.Name(), err)
		return err
	}
}

// ProcessPipelineHook implements redis.Hook.
func (h *MetricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		for _, cmd := range cmds {
			h.observe(cmd.Name(), cmd.Err())
		}
		return err
	}
}

func (h *MetricsHook) observe(name string, err error) {
	h.metrics.RedisOperations.WithLabelValues(name).Inc()
	if err != nil && !errors.Is(err, redis.Nil) {
		h.metrics.RedisErrors.WithLabelValues(name).Inc()
	}
}
