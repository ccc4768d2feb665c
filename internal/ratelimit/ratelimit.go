// Package ratelimit throttles API requests per client key, in process or
// shared through Redis.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const (
	sweepInterval = time.Minute
	idleTTL       = 3 * time.Minute
)

var ErrLimiterUnavailable = errors.New("rate limiter unavailable")

type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type visitor struct {
	limiter *rate.Limiter
	seen    time.Time
}

// Memory keeps one token bucket per key.
type Memory struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

func NewMemory(rps float64, burst int) *Memory {
	if burst < 1 {
		burst = 1
	}
	return &Memory{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	entry, ok := m.visitors[key]
	if !ok {
		entry = &visitor{limiter: rate.NewLimiter(m.limit, m.burst)}
		m.visitors[key] = entry
	}
	entry.seen = now
	return entry.limiter.AllowN(now, 1), nil
}

// Run drops idle buckets until ctx is cancelled.
func (m *Memory) Run(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Memory) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-idleTTL)
	for key, entry := range m.visitors {
		if entry.seen.Before(cutoff) {
			delete(m.visitors, key)
		}
	}
}

func (m *Memory) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.visitors)
}

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// Redis is a fixed-window limiter shared by every instance pointing at the
// same server.
type Redis struct {
	client redis.Scripter
	limit  int64
	window time.Duration
	prefix string
}

// NewRedis allows ceil(rps) + burst requests per one-second window.
func NewRedis(client redis.Scripter, rps float64, burst int, prefix string) *Redis {
	limit := int64(math.Ceil(rps)) + int64(max(burst, 0))
	if limit < 1 {
		limit = 1
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "calm:rl"
	}
	return &Redis{client: client, limit: limit, window: time.Second, prefix: prefix}
}

func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	result, err := fixedWindowScript.Run(ctx, r.client, []string{r.prefix + ":" + key}, r.window.Milliseconds()).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	count, err := scriptCount(result)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	return count <= r.limit, nil
}

func scriptCount(result any) (int64, error) {
	switch value := result.(type) {
	case int64:
		return value, nil
	case int:
		return int64(value), nil
	case string:
		return strconv.ParseInt(value, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected script result type %T", result)
	}
}

// New returns a Redis limiter when redisURL is set, otherwise an in-memory
// one. The returned close function releases the Redis client.
func New(redisURL string, rps float64, burst int) (Limiter, func() error, error) {
	redisURL = strings.TrimSpace(redisURL)
	if redisURL == "" {
		return NewMemory(rps, burst), func() error { return nil }, nil
	}

	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(options)
	return NewRedis(client, rps, burst, ""), client.Close, nil
}
