package flagvault

import (
	"net/http"
	"time"
)

// Default connection settings applied by New when no option overrides them.
const (
	DefaultBaseURL = "https://api.flagvault.com"
	DefaultTimeout = 10 * time.Second
)

// Config holds the full client configuration. Most callers only need an API
// key and can rely on the defaults; Config exists for programs that load
// settings from their own configuration layer and apply them via WithConfig.
type Config struct {
	// BaseURL is the FlagVault API endpoint.
	BaseURL string

	// Timeout bounds each HTTP request to the service.
	Timeout time.Duration

	// HTTPClient, when set, replaces the default transport. Timeout still
	// applies per request via context.
	HTTPClient *http.Client

	// CacheEnabled toggles local caching of evaluation results.
	CacheEnabled bool

	// CacheTTL is how long a cached evaluation stays fresh.
	CacheTTL time.Duration

	// CacheMaxSize bounds the number of cached entries. The oldest entry
	// is evicted when the cache is full.
	CacheMaxSize int

	// RefreshInterval controls background refresh of entries close to
	// expiry. Zero disables the refresher.
	RefreshInterval time.Duration

	// FallbackBehavior is "default" or "throw". It is stored and exposed
	// through DebugFlag; evaluation fails open to the default value in
	// both modes.
	FallbackBehavior string
}

// DefaultConfig returns the configuration New starts from.
func DefaultConfig() Config {
	return Config{
		BaseURL:          DefaultBaseURL,
		Timeout:          DefaultTimeout,
		CacheEnabled:     true,
		CacheTTL:         5 * time.Minute,
		CacheMaxSize:     1000,
		RefreshInterval:  time.Minute,
		FallbackBehavior: FallbackDefault,
	}
}
