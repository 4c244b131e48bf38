// Package cache puts a Redis-backed read-through cache in front of a term
// statistics Source. Cached entries go stale for at most the configured TTL
// after a document is re-indexed; Invalidate drops them all at once.
package cache

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/scoring/cosine"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/stats"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/cosine-scorer/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/pkg/resilience"
	"golang.org/x/sync/singleflight"
)

const (
	keyPrefix           = "termstats:"
	sharedLookupTimeout = 10 * time.Second
)

// Backend is the subset of the Redis client the cache needs.
type Backend interface {
	GetJSON(ctx context.Context, key string, dst any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

type StatsCache struct {
	source  stats.Source
	backend Backend
	ttl     time.Duration
	metrics *metrics.Metrics
	group   singleflight.Group
	breaker *resilience.CircuitBreaker
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New wraps source. m may be nil.
func New(source stats.Source, backend Backend, ttl time.Duration, m *metrics.Metrics) *StatsCache {
	return &StatsCache{
		source:  source,
		backend: backend,
		ttl:     ttl,
		metrics: m,
		breaker: resilience.NewCircuitBreaker("stats-cache", resilience.CircuitBreakerConfig{}),
		logger:  slog.Default().With("component", "stats-cache"),
	}
}

// TermStats serves from Redis when possible. Redis errors never fail the
// lookup; they fall through to the wrapped source, and repeated errors open
// a circuit breaker that skips Redis until it recovers.
func (c *StatsCache) TermStats(ctx context.Context, field, term, docID string) (cosine.TermStats, error) {
	key := buildKey(field, term, docID)
	if ts, ok := c.get(ctx, key); ok {
		return ts, nil
	}
	// The shared lookup must outlive any single caller, so it runs detached
	// from ctx and each caller waits on its own context.
	ch := c.group.DoChan(key, func() (interface{}, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLookupTimeout)
		defer cancel()
		if ts, ok := c.peek(lctx, key); ok {
			return ts, nil
		}
		ts, err := c.source.TermStats(lctx, field, term, docID)
		if err != nil {
			return nil, err
		}
		err = c.breaker.Execute(func() error {
			return c.backend.SetJSON(lctx, key, ts, c.ttl)
		})
		if err != nil && !errors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.Error("cache set failed", "key", key, "error", err)
		}
		return ts, nil
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return cosine.TermStats{}, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return cosine.TermStats{}, res.Err
	}
	return res.Val.(cosine.TermStats), nil
}

func (c *StatsCache) get(ctx context.Context, key string) (cosine.TermStats, bool) {
	ts, ok := c.peek(ctx, key)
	if ok {
		c.hits.Add(1)
		if c.metrics != nil {
			c.metrics.StatsCacheHitsTotal.Inc()
		}
		return ts, true
	}
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.StatsCacheMissTotal.Inc()
	}
	return cosine.TermStats{}, false
}

func (c *StatsCache) peek(ctx context.Context, key string) (cosine.TermStats, bool) {
	var ts cosine.TermStats
	found := false
	err := c.breaker.Execute(func() error {
		err := c.backend.GetJSON(ctx, key, &ts)
		if pkgredis.IsNilError(err) {
			return nil
		}
		found = err == nil
		return err
	})
	if err != nil && !errors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.Error("cache get failed", "key", key, "error", err)
	}
	if !found {
		return cosine.TermStats{}, false
	}
	return ts, true
}

// Invalidate removes every cached statistics entry. A successful flush
// shows Redis is reachable again, so it also closes the breaker.
func (c *StatsCache) Invalidate(ctx context.Context) error {
	deleted, err := c.backend.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating stats cache: %w", err)
	}
	c.breaker.Reset()
	c.logger.Info("cache invalidate", "keys_deleted", deleted)
	return nil
}

func (c *StatsCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// BreakerState reports whether Redis is currently being used.
func (c *StatsCache) BreakerState() resilience.State {
	return c.breaker.State()
}

func buildKey(field, term, docID string) string {
	raw := fmt.Sprintf("%s\x00%s\x00%s", field, term, docID)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
