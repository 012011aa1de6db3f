package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	meterName  = "flagvault"
	tracerName = "flagvault"
)

// OTelProvider implements Provider using OpenTelemetry.
type OTelProvider struct {
	tracer trace.Tracer
	meter  metric.Meter

	cacheHits          metric.Int64Counter
	cacheMisses        metric.Int64Counter
	evaluations        metric.Int64Counter
	evaluationDuration metric.Float64Histogram
	refreshDuration    metric.Float64Histogram
	refreshSuccess     metric.Int64Counter
	refreshFailure     metric.Int64Counter
}

// NewOTel creates a new OpenTelemetry provider using the globally registered
// tracer and meter providers.
func NewOTel() (*OTelProvider, error) {
	provider := &OTelProvider{
		tracer: otel.Tracer(tracerName),
		meter:  otel.Meter(meterName),
	}

	if err := provider.initMetrics(); err != nil {
		return nil, err
	}

	return provider, nil
}

func (o *OTelProvider) initMetrics() error {
	var err error

	o.cacheHits, err = o.meter.Int64Counter(
		"flagvault.cache.hits",
		metric.WithDescription("Number of flag cache hits"),
	)
	if err != nil {
		return err
	}

	o.cacheMisses, err = o.meter.Int64Counter(
		"flagvault.cache.misses",
		metric.WithDescription("Number of flag cache misses"),
	)
	if err != nil {
		return err
	}

	o.evaluations, err = o.meter.Int64Counter(
		"flagvault.evaluations",
		metric.WithDescription("Number of flag evaluations"),
	)
	if err != nil {
		return err
	}

	o.evaluationDuration, err = o.meter.Float64Histogram(
		"flagvault.evaluation.duration",
		metric.WithDescription("Duration of flag evaluations"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	o.refreshDuration, err = o.meter.Float64Histogram(
		"flagvault.refresh.duration",
		metric.WithDescription("Duration of background refresh cycles"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	o.refreshSuccess, err = o.meter.Int64Counter(
		"flagvault.refresh.success",
		metric.WithDescription("Number of successful refresh cycles"),
	)
	if err != nil {
		return err
	}

	o.refreshFailure, err = o.meter.Int64Counter(
		"flagvault.refresh.failure",
		metric.WithDescription("Number of failed refresh cycles"),
	)
	if err != nil {
		return err
	}

	return nil
}

// RecordCacheHit records a per-entry cache hit.
func (o *OTelProvider) RecordCacheHit(ctx context.Context, flagKey string) {
	o.cacheHits.Add(ctx, 1, metric.WithAttributes(
		attribute.String("flag.key", flagKey),
	))
}

// RecordCacheMiss records a per-entry cache miss.
func (o *OTelProvider) RecordCacheMiss(ctx context.Context, flagKey string) {
	o.cacheMisses.Add(ctx, 1, metric.WithAttributes(
		attribute.String("flag.key", flagKey),
	))
}

// RecordEvaluation records a completed flag evaluation and its duration.
func (o *OTelProvider) RecordEvaluation(ctx context.Context, flagKey string, source string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("flag.key", flagKey),
		attribute.String("source", source),
	)
	o.evaluations.Add(ctx, 1, attrs)
	o.evaluationDuration.Record(ctx, float64(duration.Microseconds())/1000.0, attrs)
}

// RecordRefresh records a background refresh cycle.
func (o *OTelProvider) RecordRefresh(ctx context.Context, success bool, duration time.Duration, flagCount int) {
	o.refreshDuration.Record(ctx, float64(duration.Milliseconds()),
		metric.WithAttributes(
			attribute.Bool("success", success),
		))

	if success {
		o.refreshSuccess.Add(ctx, 1, metric.WithAttributes(
			attribute.Int("flag.count", flagCount),
		))
	} else {
		o.refreshFailure.Add(ctx, 1)
	}
}

// StartEvaluation opens a trace span covering one flag evaluation.
func (o *OTelProvider) StartEvaluation(ctx context.Context, flagKey string) (context.Context, func()) {
	ctx, span := o.tracer.Start(ctx, "flagvault.evaluate",
		trace.WithAttributes(attribute.String("flag.key", flagKey)))
	return ctx, func() { span.End() }
}

// Shutdown is a no-op; the OTel SDK lifecycle is owned by the host process.
func (o *OTelProvider) Shutdown(ctx context.Context) error {
	return nil
}
