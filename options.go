package flagvault

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/flagvault/flagvault-go/internal/api"
	"github.com/flagvault/flagvault-go/internal/cache"
	"github.com/flagvault/flagvault-go/telemetry"
)

// Option configures a FlagVault client.
type Option func(*clientConfig) error

// clientConfig holds internal configuration.
type clientConfig struct {
	config    Config
	logger    *zap.Logger
	telemetry telemetry.Provider

	// apiClient replaces the HTTP transport entirely. Test hook.
	apiClient api.Client
}

// toCacheOptions converts clientConfig to cache options around the given
// transport.
func (c *clientConfig) toCacheOptions(client api.Client) []cache.Option {
	opts := []cache.Option{
		cache.WithClient(client),
		cache.WithConfig(cache.Config{
			Enabled:          c.config.CacheEnabled,
			TTL:              c.config.CacheTTL,
			MaxSize:          c.config.CacheMaxSize,
			RefreshInterval:  c.config.RefreshInterval,
			FallbackBehavior: c.config.FallbackBehavior,
		}),
	}

	if c.logger != nil {
		opts = append(opts, cache.WithLogger(c.logger))
	}
	if c.telemetry != nil {
		opts = append(opts, cache.WithTelemetry(c.telemetry))
	}

	return opts
}

// WithBaseURL sets the FlagVault API endpoint.
// Default: https://api.flagvault.com
func WithBaseURL(baseURL string) Option {
	return func(c *clientConfig) error {
		if baseURL == "" {
			return fmt.Errorf("base URL cannot be empty")
		}
		c.config.BaseURL = baseURL
		return nil
	}
}

// WithTimeout sets the HTTP timeout for service requests.
// Default: 10 seconds
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) error {
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive")
		}
		c.config.Timeout = timeout
		return nil
	}
}

// WithHTTPClient replaces the default HTTP transport.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) error {
		if client == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		c.config.HTTPClient = client
		return nil
	}
}

// WithCacheEnabled toggles local caching of evaluation results.
// Default: enabled
func WithCacheEnabled(enabled bool) Option {
	return func(c *clientConfig) error {
		c.config.CacheEnabled = enabled
		return nil
	}
}

// WithCacheTTL sets how long cached evaluations stay fresh.
// Default: 5 minutes
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *clientConfig) error {
		if ttl <= 0 {
			return fmt.Errorf("cache TTL must be positive")
		}
		c.config.CacheTTL = ttl
		return nil
	}
}

// WithCacheMaxSize bounds the number of cached entries.
// Default: 1000
func WithCacheMaxSize(maxSize int) Option {
	return func(c *clientConfig) error {
		if maxSize <= 0 {
			return fmt.Errorf("cache max size must be positive")
		}
		c.config.CacheMaxSize = maxSize
		return nil
	}
}

// WithRefreshInterval sets how often the background refresher runs.
// Zero disables background refresh.
// Default: 1 minute
func WithRefreshInterval(interval time.Duration) Option {
	return func(c *clientConfig) error {
		if interval < 0 {
			return fmt.Errorf("refresh interval cannot be negative")
		}
		c.config.RefreshInterval = interval
		return nil
	}
}

// WithFallbackBehavior selects what a failed evaluation does.
// Options: "default", "throw"
// Default: "default"
func WithFallbackBehavior(behavior string) Option {
	return func(c *clientConfig) error {
		if behavior != FallbackDefault && behavior != FallbackThrow {
			return fmt.Errorf("invalid fallback behavior: %s", behavior)
		}
		c.config.FallbackBehavior = behavior
		return nil
	}
}

// WithLogger sets a structured logger for cache and refresher events.
// By default nothing is logged.
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientConfig) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithTelemetry sets a telemetry provider for cache and evaluation metrics.
//
// Example:
//
//	provider, _ := telemetry.NewOTel()
//	client, err := flagvault.New("live_...", flagvault.WithTelemetry(provider))
func WithTelemetry(provider telemetry.Provider) Option {
	return func(c *clientConfig) error {
		if provider == nil {
			return fmt.Errorf("telemetry provider cannot be nil")
		}
		c.telemetry = provider
		return nil
	}
}

// WithConfig applies a full Config struct.
// This is an alternative to using individual options. Zero-valued string,
// duration and size fields fall back to their defaults, with two exceptions:
// CacheEnabled and RefreshInterval are always applied as given, because
// false and zero are meaningful settings (caching off, refresher off).
func WithConfig(cfg Config) Option {
	return func(c *clientConfig) error {
		if cfg.BaseURL != "" {
			c.config.BaseURL = cfg.BaseURL
		}
		if cfg.Timeout > 0 {
			c.config.Timeout = cfg.Timeout
		}
		if cfg.HTTPClient != nil {
			c.config.HTTPClient = cfg.HTTPClient
		}
		c.config.CacheEnabled = cfg.CacheEnabled
		if cfg.CacheTTL > 0 {
			c.config.CacheTTL = cfg.CacheTTL
		}
		if cfg.CacheMaxSize > 0 {
			c.config.CacheMaxSize = cfg.CacheMaxSize
		}
		c.config.RefreshInterval = cfg.RefreshInterval
		if cfg.FallbackBehavior != "" {
			if cfg.FallbackBehavior != FallbackDefault && cfg.FallbackBehavior != FallbackThrow {
				return fmt.Errorf("invalid fallback behavior: %s", cfg.FallbackBehavior)
			}
			c.config.FallbackBehavior = cfg.FallbackBehavior
		}
		return nil
	}
}

// withAPIClient injects a transport directly, bypassing HTTP. Used by tests.
func withAPIClient(client api.Client) Option {
	return func(c *clientConfig) error {
		c.apiClient = client
		return nil
	}
}
