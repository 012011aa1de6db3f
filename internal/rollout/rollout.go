package rollout

import (
	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/flagvault/flagvault-go/internal/domain"
)

// Evaluator performs deterministic percentage-rollout bucketing.
type Evaluator struct{}

// New creates a new rollout evaluator.
func New() *Evaluator {
	return &Evaluator{}
}

// Decide resolves a flag definition to a boolean decision for the given
// subject identifier.
//
// A disabled flag is always false, regardless of rollout settings. A flag
// without a complete rollout configuration (percentage and seed) resolves to
// its enabled state directly. Otherwise the subject is bucketed into [0, 100)
// by a stable hash of flag key, seed, and subject identifier; the flag is on
// for the subject iff its bucket falls below the rollout percentage.
//
// When no subject identifier is supplied there is no identity to bucket
// against, so a random one is substituted per call and the outcome is
// intentionally non-deterministic across calls.
func (e *Evaluator) Decide(flagKey string, def domain.FlagDefinition, subjectID string) bool {
	if !def.Enabled {
		return false
	}

	if !def.HasRollout() {
		return def.Enabled
	}

	if subjectID == "" {
		subjectID = uuid.NewString()
	}

	return Bucket(flagKey, *def.RolloutSeed, subjectID) < *def.RolloutPercentage
}

// Bucket maps (flag key, seed, subject identifier) to a stable bucket in
// [0, 100). Identical inputs bucket identically across processes and
// restarts.
func Bucket(flagKey, seed, subjectID string) int {
	h := xxhash.Sum64String(flagKey + seed + subjectID)
	return int(h % 100)
}
