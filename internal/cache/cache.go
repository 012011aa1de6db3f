// Package cache orchestrates flag evaluation: per-entry cache lookup, bulk
// snapshot evaluation with percentage rollout, remote fallback, and the
// background refresher.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/flagvault/flagvault-go/internal/api"
	"github.com/flagvault/flagvault-go/internal/domain"
	"github.com/flagvault/flagvault-go/internal/rollout"
	"github.com/flagvault/flagvault-go/internal/store"
	"github.com/flagvault/flagvault-go/telemetry"
)

// Cache coordinates the store, the rollout evaluator, and the remote flag
// service. It is the only component callers talk to.
type Cache struct {
	client    api.Client
	store     *store.Store
	rollout   *rollout.Evaluator
	config    Config
	logger    *zap.Logger
	telemetry telemetry.Provider

	// group deduplicates concurrent remote lookups for the same cache key.
	group singleflight.Group

	// breaker guards the bulk-fetch path only. Single-flag evaluation
	// fails open and must keep retrying the service on every call.
	breaker *gobreaker.CircuitBreaker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	refreshInProgress atomic.Bool
	stopOnce          sync.Once
}

// Option configures a Cache.
type Option func(*Cache)

// WithClient sets the remote flag service client. Required.
func WithClient(client api.Client) Option {
	return func(c *Cache) { c.client = client }
}

// WithConfig sets the cache configuration.
func WithConfig(cfg Config) Option {
	return func(c *Cache) { c.config = cfg }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// WithTelemetry sets the telemetry provider.
func WithTelemetry(provider telemetry.Provider) Option {
	return func(c *Cache) { c.telemetry = provider }
}

// New creates a new cache orchestrator with the given options.
func New(opts ...Option) (*Cache, error) {
	c := &Cache{
		config:    DefaultConfig(),
		rollout:   rollout.New(),
		logger:    zap.NewNop(),
		telemetry: telemetry.NewNoOp(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.client == nil {
		return nil, fmt.Errorf("flag service client is required")
	}

	if err := c.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c.store = store.New(c.config.MaxSize, c.config.TTL)

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "flagvault-bulk-fetch",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("bulk fetch circuit state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return c, nil
}

// Start begins the background refresher when caching is enabled and a
// nonzero refresh interval is configured.
func (c *Cache) Start(ctx context.Context) {
	c.ctx, c.cancel = context.WithCancel(ctx)

	if c.config.Enabled && c.config.RefreshInterval > 0 {
		c.wg.Add(1)
		go c.refreshLoop()
	}
}

// Evaluate resolves a flag to a boolean decision, failing open to
// defaultValue on any remote failure. Lookup order: per-entry cache, bulk
// snapshot (with rollout bucketing), remote fetch.
func (c *Cache) Evaluate(ctx context.Context, flagKey, subjectID string, defaultValue bool) bool {
	start := time.Now()
	ctx, endSpan := c.telemetry.StartEvaluation(ctx, flagKey)
	defer endSpan()

	key := store.Key{FlagKey: flagKey, TargetID: subjectID}

	if c.config.Enabled {
		if entry, ok := c.store.Get(key); ok {
			c.telemetry.RecordCacheHit(ctx, flagKey)
			c.telemetry.RecordEvaluation(ctx, flagKey, "cache", time.Since(start))
			return entry.Value
		}
		c.telemetry.RecordCacheMiss(ctx, flagKey)

		if def, ok := c.store.SnapshotLookup(flagKey); ok {
			value := c.rollout.Decide(flagKey, def, subjectID)
			c.store.Put(key, value)
			c.telemetry.RecordEvaluation(ctx, flagKey, "bulk", time.Since(start))
			return value
		}
	}

	value, err := c.fetchFlag(ctx, key)
	if err != nil {
		// Fail open: the caller's default stands in for the flag, and
		// nothing is cached so the next call retries the service.
		c.logger.Warn("flag fetch failed, returning default",
			zap.String("flag", flagKey),
			zap.Bool("default", defaultValue),
			zap.Error(err))
		c.telemetry.RecordEvaluation(ctx, flagKey, "default", time.Since(start))
		return defaultValue
	}

	if c.config.Enabled {
		c.store.Put(key, value)
	}

	c.telemetry.RecordEvaluation(ctx, flagKey, "remote", time.Since(start))
	return value
}

// fetchFlag fetches a single flag remotely, deduplicating concurrent
// lookups for the same key.
func (c *Cache) fetchFlag(ctx context.Context, key store.Key) (bool, error) {
	groupKey := key.FlagKey + "\x00" + key.TargetID

	value, err, _ := c.group.Do(groupKey, func() (interface{}, error) {
		return c.client.FetchFlag(ctx, key.FlagKey, key.TargetID)
	})
	if err != nil {
		return false, err
	}
	return value.(bool), nil
}

// GetAllFlags returns all flag definitions, serving the bulk snapshot when
// it is fresh. Unlike Evaluate this path is fail-loud: fetch errors
// propagate to the caller.
func (c *Cache) GetAllFlags(ctx context.Context) (map[string]domain.FlagDefinition, error) {
	if c.config.Enabled {
		if flags := c.store.SnapshotFlags(); flags != nil {
			return flags, nil
		}
	}

	return c.prefetch(ctx)
}

// Preload forces a bulk prefetch, replacing any existing snapshot. Fail-loud.
func (c *Cache) Preload(ctx context.Context) error {
	_, err := c.prefetch(ctx)
	return err
}

func (c *Cache) prefetch(ctx context.Context) (map[string]domain.FlagDefinition, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.client.FetchAllFlags(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, domain.NewServiceError(0, "bulk fetch suspended: too many consecutive failures")
		}
		return nil, err
	}

	defs := result.([]domain.FlagDefinition)
	flags := make(map[string]domain.FlagDefinition, len(defs))
	for _, def := range defs {
		flags[def.Key] = def
	}

	if c.config.Enabled {
		c.store.SetSnapshot(flags)
		// SetSnapshot owns the map; hand the caller a copy.
		return c.store.SnapshotFlags(), nil
	}

	return flags, nil
}

// Stats returns a read-only snapshot of cache statistics.
func (c *Cache) Stats() store.Stats {
	return c.store.Stats()
}

// FlagDebug describes the cache state of a single flag, for diagnosing
// silent fallbacks.
type FlagDebug struct {
	FlagKey         string
	Cached          bool
	Value           *bool
	CachedAt        *time.Time
	ExpiresAt       *time.Time
	TimeUntilExpiry *time.Duration
}

// Debug reports the cache state for a flag key with no subject identifier.
func (c *Cache) Debug(flagKey string) FlagDebug {
	info := FlagDebug{FlagKey: flagKey}

	entry, ok := c.store.Peek(store.Key{FlagKey: flagKey})
	if !ok {
		return info
	}

	until := time.Until(entry.ExpiresAt)
	value := entry.Value
	createdAt := entry.CreatedAt
	expiresAt := entry.ExpiresAt

	info.Cached = true
	info.Value = &value
	info.CachedAt = &createdAt
	info.ExpiresAt = &expiresAt
	info.TimeUntilExpiry = &until
	return info
}

// Clear removes all cache entries and the bulk snapshot. Cumulative hit and
// miss statistics are kept.
func (c *Cache) Clear() {
	c.store.Clear()
}

// ResetStats zeroes the cumulative hit and miss counters.
func (c *Cache) ResetStats() {
	c.store.ResetStats()
}

// stopJoinTimeout bounds how long Stop waits for an in-flight refresh cycle.
const stopJoinTimeout = 5 * time.Second

// Stop tears the cache down: no further refresh cycles are scheduled, any
// in-flight cycle is given a bounded window to finish, and the cache is
// cleared. Stop is idempotent.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}

		done := make(chan struct{})
		go func() {
			c.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(stopJoinTimeout):
			c.logger.Warn("refresh cycle did not finish before teardown deadline, detaching")
		}

		c.store.Clear()
	})
}
