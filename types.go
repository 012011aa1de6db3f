package flagvault

import "time"

// Fallback behaviors accepted by WithFallbackBehavior.
const (
	FallbackDefault = "default"
	FallbackThrow   = "throw"
)

// Environments reported by Client.Environment, derived from the API key
// prefix ("live_" keys target production, "test_" keys target test).
const (
	EnvironmentProduction = "production"
	EnvironmentTest       = "test"
)

// Flag is a flag definition returned by GetAllFlags.
type Flag struct {
	// Key uniquely identifies the flag.
	Key string

	// Enabled is the flag's base state before rollout bucketing.
	Enabled bool

	// Name is the human-readable flag name, when the service provides one.
	Name string

	// RolloutPercentage, when non-nil, restricts the flag to that percentage
	// of subjects (0-100).
	RolloutPercentage *int

	// RolloutSeed salts the bucketing hash so flags roll out to
	// independent subject populations.
	RolloutSeed *string
}

// CacheStats is a point-in-time view of the evaluation cache.
type CacheStats struct {
	// Size is the number of live entries, including ones that have
	// expired but not yet been removed.
	Size int

	// Hits and Misses count cache lookups since the last ResetStats.
	Hits   uint64
	Misses uint64

	// HitRate is Hits / (Hits + Misses), or 0 with no accesses.
	HitRate float64

	// ExpiredEntries counts entries past their TTL still occupying a slot.
	ExpiredEntries int

	// MemoryUsage is an estimate of cache memory in bytes.
	MemoryUsage int64
}

// FlagDebugInfo describes the cache's view of a single flag. It is the
// sanctioned way to diagnose silent fallbacks, since IsEnabled never
// surfaces remote failures.
type FlagDebugInfo struct {
	FlagKey string

	// Cached reports whether an untargeted entry exists for the flag,
	// expired or not.
	Cached bool

	// Value, CachedAt, ExpiresAt and TimeUntilExpiry are nil unless Cached.
	Value           *bool
	CachedAt        *time.Time
	ExpiresAt       *time.Time
	TimeUntilExpiry *time.Duration

	// FallbackBehavior echoes the configured fallback mode.
	FallbackBehavior string
}

// evalParams collects per-call evaluation parameters.
type evalParams struct {
	targetID   string
	context    string
	hasTarget  bool
	hasContext bool
}

// EvalOption customizes a single IsEnabled call.
type EvalOption func(*evalParams)

// WithTargetID evaluates the flag for a specific subject, so percentage
// rollouts bucket that subject deterministically.
func WithTargetID(targetID string) EvalOption {
	return func(p *evalParams) {
		p.targetID = targetID
		p.hasTarget = true
	}
}

// WithEvalContext supplies a free-form evaluation context identifier. It is
// translated to a target ID on the wire, URL-encoded as needed, and cannot
// be combined with WithTargetID.
func WithEvalContext(contextID string) EvalOption {
	return func(p *evalParams) {
		p.context = contextID
		p.hasContext = true
	}
}
