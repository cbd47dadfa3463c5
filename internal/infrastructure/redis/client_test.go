package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	client, err := NewClient(ctx, "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(ctx, "opsledger:ping", "1", 0).Err())
	assert.True(t, mr.Exists("opsledger:ping"))
}

func TestNewClient_AppliesOptions(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(context.Background(), "redis://"+mr.Addr(), Options{
		PoolSize:    7,
		DialTimeout: 500 * time.Millisecond,
		ReadTimeout: 250 * time.Millisecond,
	})
	require.NoError(t, err)
	defer client.Close()

	opts := client.Options()
	assert.Equal(t, 7, opts.PoolSize)
	assert.Equal(t, 500*time.Millisecond, opts.DialTimeout)
	assert.Equal(t, 250*time.Millisecond, opts.ReadTimeout)
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient(context.Background(), "://bad-url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis url")
}

func TestNewClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	url := "redis://" + mr.Addr()
	mr.Close()

	start := time.Now()
	_, err := NewClient(context.Background(), url, Options{DialTimeout: 200 * time.Millisecond, PingAttempts: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping redis")
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestNewClient_CancelledContext(t *testing.T) {
	mr := miniredis.RunT(t)
	url := "redis://" + mr.Addr()
	mr.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(ctx, url, Options{PingAttempts: 10})
	require.Error(t, err)
}
