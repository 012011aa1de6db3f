package domain

// FlagDefinition represents a feature flag definition as served by the
// FlagVault API. Definitions are immutable once fetched; a bulk refresh
// replaces them wholesale.
type FlagDefinition struct {
	Key     string
	Enabled bool
	Name    string

	// RolloutPercentage and RolloutSeed configure percentage rollout.
	// Both must be present for rollout bucketing to apply; otherwise the
	// decision is Enabled as-is.
	RolloutPercentage *int
	RolloutSeed       *string
}

// HasRollout reports whether the definition carries a complete rollout
// configuration (both percentage and seed).
func (f FlagDefinition) HasRollout() bool {
	return f.RolloutPercentage != nil && f.RolloutSeed != nil
}
