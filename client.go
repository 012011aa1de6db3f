// Package flagvault provides a FlagVault feature-flag client with local
// caching, background refresh and percentage-rollout evaluation.
package flagvault

import (
	"context"
	"strings"

	"github.com/flagvault/flagvault-go/internal/api"
	"github.com/flagvault/flagvault-go/internal/cache"
	"github.com/flagvault/flagvault-go/internal/domain"
)

// maxTargetIDLength bounds subject identifiers sent as query parameters.
const maxTargetIDLength = 128

// Client is the main entry point for FlagVault.
// It evaluates flags against a local cache and falls back to the service.
type Client struct {
	apiKey string
	config Config
	cache  *cache.Cache
}

// New creates a new FlagVault client with the given options.
// The API key determines the environment: keys prefixed "live_" evaluate
// against production, "test_" against the test environment.
//
// Example:
//
//	client, err := flagvault.New("live_abc123",
//	    flagvault.WithCacheTTL(time.Minute),
//	    flagvault.WithRefreshInterval(30*time.Second),
//	)
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, domain.NewValidationError("API key is required to initialize the client")
	}

	cfg := &clientConfig{config: DefaultConfig()}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	apiClient := cfg.apiClient
	if apiClient == nil {
		apiClient = api.NewHTTPClient(api.Config{
			BaseURL:    cfg.config.BaseURL,
			APIKey:     apiKey,
			Timeout:    cfg.config.Timeout,
			HTTPClient: cfg.config.HTTPClient,
		})
	}

	c, err := cache.New(cfg.toCacheOptions(apiClient)...)
	if err != nil {
		return nil, err
	}
	c.Start(context.Background())

	return &Client{
		apiKey: apiKey,
		config: cfg.config,
		cache:  c,
	}, nil
}

// IsEnabled evaluates a flag for the optional subject and returns whether
// it is enabled.
//
// A remote or service failure never surfaces here: the call returns the
// caller-supplied defaultValue instead, and nothing is cached so the next
// call retries. The only errors returned are ValidationErrors for bad
// input, paired with defaultValue.
//
// Example:
//
//	enabled, err := client.IsEnabled(ctx, "new-checkout", false,
//	    flagvault.WithTargetID("user-123"),
//	)
func (c *Client) IsEnabled(ctx context.Context, flagKey string, defaultValue bool, opts ...EvalOption) (bool, error) {
	var params evalParams
	for _, opt := range opts {
		opt(&params)
	}

	subjectID, err := resolveSubject(flagKey, params)
	if err != nil {
		return defaultValue, err
	}

	return c.cache.Evaluate(ctx, flagKey, subjectID, defaultValue), nil
}

// GetAllFlags returns every flag definition for the environment. The result
// is served from the bulk cache when fresh; otherwise a single request
// fetches all flags and primes the cache.
//
// Unlike IsEnabled, failures propagate: callers invoking the bulk path do so
// deliberately and must be able to detect and retry.
func (c *Client) GetAllFlags(ctx context.Context) (map[string]Flag, error) {
	defs, err := c.cache.GetAllFlags(ctx)
	if err != nil {
		return nil, err
	}

	flags := make(map[string]Flag, len(defs))
	for key, def := range defs {
		flags[key] = toFlag(def)
	}
	return flags, nil
}

// PreloadFlags fetches all flag definitions and primes the bulk cache,
// regardless of any cached state. Call it at startup to avoid per-flag
// network latency on the first evaluations.
func (c *Client) PreloadFlags(ctx context.Context) error {
	return c.cache.Preload(ctx)
}

// GetCacheStats returns current cache statistics.
func (c *Client) GetCacheStats() CacheStats {
	s := c.cache.Stats()
	return CacheStats{
		Size:           s.Size,
		Hits:           s.Hits,
		Misses:         s.Misses,
		HitRate:        s.HitRate,
		ExpiredEntries: s.ExpiredEntries,
		MemoryUsage:    s.MemoryUsage,
	}
}

// DebugFlag reports the cache's view of a flag. Use it to tell a cached
// false apart from a silent fallback to the default value.
func (c *Client) DebugFlag(flagKey string) FlagDebugInfo {
	d := c.cache.Debug(flagKey)
	return FlagDebugInfo{
		FlagKey:          d.FlagKey,
		Cached:           d.Cached,
		Value:            d.Value,
		CachedAt:         d.CachedAt,
		ExpiresAt:        d.ExpiresAt,
		TimeUntilExpiry:  d.TimeUntilExpiry,
		FallbackBehavior: c.config.FallbackBehavior,
	}
}

// ClearCache removes all cached entries and the bulk snapshot. Hit and miss
// counters survive; the next evaluation of any flag reaches the service.
func (c *Client) ClearCache() {
	c.cache.Clear()
}

// ResetCacheStats zeroes the hit and miss counters without touching entries.
func (c *Client) ResetCacheStats() {
	c.cache.ResetStats()
}

// Environment reports which environment the configured API key targets.
func (c *Client) Environment() string {
	if strings.HasPrefix(c.apiKey, "test_") {
		return EnvironmentTest
	}
	return EnvironmentProduction
}

// Destroy stops the background refresher and releases the cache. The client
// must not be used afterwards. Destroy is safe to call more than once.
func (c *Client) Destroy() {
	c.cache.Stop()
}

// resolveSubject validates the per-call parameters and returns the subject
// identifier to evaluate with, empty when the call is untargeted.
//
// Only structured target IDs are constrained. Evaluation contexts are
// free-form and pass through untouched; the transport URL-encodes them.
func resolveSubject(flagKey string, params evalParams) (string, error) {
	if flagKey == "" {
		return "", domain.NewValidationError("flag key is required")
	}
	if params.hasTarget && params.hasContext {
		return "", domain.NewValidationError("cannot combine a target ID with an evaluation context")
	}

	if params.hasContext {
		return params.context, nil
	}

	targetID := params.targetID
	if targetID == "" {
		return "", nil
	}

	if len(targetID) > maxTargetIDLength {
		return "", domain.NewValidationError("target ID exceeds 128 characters")
	}
	for _, r := range targetID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return "", domain.NewValidationError("target ID may only contain letters, digits, hyphens and underscores")
		}
	}
	return targetID, nil
}

func toFlag(def domain.FlagDefinition) Flag {
	return Flag{
		Key:               def.Key,
		Enabled:           def.Enabled,
		Name:              def.Name,
		RolloutPercentage: def.RolloutPercentage,
		RolloutSeed:       def.RolloutSeed,
	}
}
