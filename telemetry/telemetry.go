// Package telemetry defines the observability hooks used by the cache
// orchestrator, with an OpenTelemetry implementation and a no-op default.
package telemetry

import (
	"context"
	"time"
)

// Provider receives cache and evaluation events.
type Provider interface {
	// StartEvaluation opens a trace span covering one flag evaluation.
	// The returned function ends the span and must be called exactly once.
	StartEvaluation(ctx context.Context, flagKey string) (context.Context, func())

	// RecordCacheHit records a per-entry cache hit.
	RecordCacheHit(ctx context.Context, flagKey string)

	// RecordCacheMiss records a per-entry cache miss.
	RecordCacheMiss(ctx context.Context, flagKey string)

	// RecordEvaluation records a completed flag evaluation and the source
	// that answered it: "cache", "bulk", "remote", or "default".
	RecordEvaluation(ctx context.Context, flagKey string, source string, duration time.Duration)

	// RecordRefresh records a background refresh cycle.
	RecordRefresh(ctx context.Context, success bool, duration time.Duration, flagCount int)

	// Shutdown flushes and releases provider resources.
	Shutdown(ctx context.Context) error
}
