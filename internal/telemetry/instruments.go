package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metric names.
const (
	MetricRequests        = "bitfinex.rest.requests"
	MetricRequestDuration = "bitfinex.rest.duration"
	MetricRetries         = "bitfinex.rest.retries"
	MetricTrackerEvicted  = "bitfinex.tracker.evicted"
	MetricCacheLookups    = "bitfinex.ticker_cache.lookups"
)

// Instruments groups the counters and histograms recorded by the client.
type Instruments struct {
	requests  metric.Int64Counter
	duration  metric.Float64Histogram
	retries   metric.Int64Counter
	evictions metric.Int64Counter
	lookups   metric.Int64Counter
}

// NewInstruments creates the client instruments from meter. A nil meter uses the global provider.
func NewInstruments(meter metric.Meter) *Instruments {
	if meter == nil {
		meter = otel.Meter("bitfinex.client")
	}
	inst := &Instruments{}
	inst.requests, _ = meter.Int64Counter(MetricRequests,
		metric.WithDescription("REST requests issued"),
		metric.WithUnit("{request}"))
	inst.duration, _ = meter.Float64Histogram(MetricRequestDuration,
		metric.WithDescription("REST round trip latency"),
		metric.WithUnit("ms"))
	inst.retries, _ = meter.Int64Counter(MetricRetries,
		metric.WithDescription("Public GET retry attempts"),
		metric.WithUnit("{retry}"))
	inst.evictions, _ = meter.Int64Counter(MetricTrackerEvicted,
		metric.WithDescription("Orders evicted from the side tracker"),
		metric.WithUnit("{order}"))
	inst.lookups, _ = meter.Int64Counter(MetricCacheLookups,
		metric.WithDescription("Ticker cache lookups by outcome"),
		metric.WithUnit("{lookup}"))
	return inst
}

// RecordRequest records one completed round trip.
func (i *Instruments) RecordRequest(ctx context.Context, method, endpoint string, status int, err error, elapsed time.Duration) {
	if i == nil {
		return
	}
	result := ResultOK
	if err != nil || status >= 400 {
		result = ResultError
	}
	opt := metric.WithAttributes(RequestAttributes(method, endpoint, status, result)...)
	if i.requests != nil {
		i.requests.Add(ctx, 1, opt)
	}
	if i.duration != nil {
		i.duration.Record(ctx, float64(elapsed)/float64(time.Millisecond), opt)
	}
}

// RecordRetry counts a retry of a public request.
func (i *Instruments) RecordRetry(ctx context.Context, endpoint string) {
	if i == nil || i.retries == nil {
		return
	}
	i.retries.Add(ctx, 1, metric.WithAttributes(AttrEndpoint.String(endpoint)))
}

// RecordEviction counts an order dropped from the tracker.
func (i *Instruments) RecordEviction(ctx context.Context, side string) {
	if i == nil || i.evictions == nil {
		return
	}
	i.evictions.Add(ctx, 1, metric.WithAttributes(AttrSide.String(side)))
}

// RecordCacheLookup counts a ticker cache hit or miss.
func (i *Instruments) RecordCacheLookup(ctx context.Context, hit bool) {
	if i == nil || i.lookups == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	i.lookups.Add(ctx, 1, metric.WithAttributes(AttrCache.String(outcome)))
}
