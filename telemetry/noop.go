package telemetry

import (
	"context"
	"time"
)

// NoOpProvider is a Provider that does nothing. It is the default when no
// telemetry is configured.
type NoOpProvider struct{}

// NewNoOp creates a new no-op telemetry provider.
func NewNoOp() *NoOpProvider {
	return &NoOpProvider{}
}

func (n *NoOpProvider) StartEvaluation(ctx context.Context, flagKey string) (context.Context, func()) {
	return ctx, func() {}
}

func (n *NoOpProvider) RecordCacheHit(ctx context.Context, flagKey string)  {}
func (n *NoOpProvider) RecordCacheMiss(ctx context.Context, flagKey string) {}

func (n *NoOpProvider) RecordEvaluation(ctx context.Context, flagKey string, source string, duration time.Duration) {
}

func (n *NoOpProvider) RecordRefresh(ctx context.Context, success bool, duration time.Duration, flagCount int) {
}

func (n *NoOpProvider) Shutdown(ctx context.Context) error {
	return nil
}
