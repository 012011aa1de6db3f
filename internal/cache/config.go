package cache

import (
	"fmt"
	"time"
)

// Fallback behavior selectors. The value is stored and exposed but does not
// change how evaluation failures are handled; see the package documentation.
const (
	FallbackDefault = "default"
	FallbackThrow   = "throw"
)

// Config holds cache orchestrator configuration.
type Config struct {
	// Enabled turns per-entry and bulk caching on or off.
	Enabled bool

	// TTL applies to individual cache entries and the bulk snapshot.
	TTL time.Duration

	// MaxSize bounds the number of cache entries.
	MaxSize int

	// RefreshInterval is the background refresh period; 0 disables the
	// refresher.
	RefreshInterval time.Duration

	// FallbackBehavior is "default" or "throw".
	FallbackBehavior string
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:          true,
		TTL:              5 * time.Minute,
		MaxSize:          1000,
		RefreshInterval:  time.Minute,
		FallbackBehavior: FallbackDefault,
	}
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive")
	}

	if c.MaxSize <= 0 {
		return fmt.Errorf("cache max size must be positive")
	}

	if c.RefreshInterval < 0 {
		return fmt.Errorf("refresh interval must not be negative")
	}

	if c.FallbackBehavior != FallbackDefault && c.FallbackBehavior != FallbackThrow {
		return fmt.Errorf("invalid fallback behavior: %s (must be %q or %q)",
			c.FallbackBehavior, FallbackDefault, FallbackThrow)
	}

	return nil
}
