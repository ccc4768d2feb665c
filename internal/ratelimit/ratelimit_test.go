package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAllowsBurstThenThrottles(t *testing.T) {
	limiter := NewMemory(1, 2)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	for attempt := 0; attempt < 2; attempt++ {
		allowed, err := limiter.Allow(context.Background(), "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, allowed, "attempt %d should be within burst", attempt)
	}

	allowed, err := limiter.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, allowed)

	other, err := limiter.Allow(context.Background(), "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, other, "keys must not share a bucket")

	now = now.Add(time.Second)
	allowed, err = limiter.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed, "bucket should refill after a second")
}

func TestMemorySweepDropsIdleKeys(t *testing.T) {
	limiter := NewMemory(1, 1)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	_, _ = limiter.Allow(context.Background(), "stale")
	now = now.Add(2 * time.Minute)
	_, _ = limiter.Allow(context.Background(), "fresh")
	now = now.Add(2 * time.Minute)

	limiter.sweep()

	assert.Equal(t, 1, limiter.size())
}

func TestMemoryRunStopsWithContext(t *testing.T) {
	limiter := NewMemory(1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		limiter.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestNewRedisDefaults(t *testing.T) {
	limiter := NewRedis(nil, 2.5, 4, "  ")

	assert.Equal(t, int64(7), limiter.limit)
	assert.Equal(t, "calm:rl", limiter.prefix)
	assert.Equal(t, time.Second, limiter.window)
}

func TestRedisReportsUnavailableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	allowed, err := NewRedis(client, 1, 1, "test").Allow(context.Background(), "key")

	assert.False(t, allowed)
	assert.True(t, errors.Is(err, ErrLimiterUnavailable), "got %v", err)
}

func TestScriptCount(t *testing.T) {
	for _, value := range []any{int64(3), 3, "3"} {
		count, err := scriptCount(value)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	}

	_, err := scriptCount([]byte("3"))
	assert.Error(t, err)
}

func TestNewSelectsBackend(t *testing.T) {
	limiter, closeFn, err := New("", 1, 1)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, limiter)
	assert.NoError(t, closeFn())

	limiter, closeFn, err = New("redis://127.0.0.1:6379/0", 1, 1)
	require.NoError(t, err)
	assert.IsType(t, &Redis{}, limiter)
	assert.NoError(t, closeFn())

	_, _, err = New("://bad", 1, 1)
	assert.Error(t, err)
}
