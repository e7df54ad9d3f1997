package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Sync cycle outcomes recorded on the cycles counter.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeDiscarded = "discarded"
)

// Metrics holds the instruments for the listings sync loop.
type Metrics struct {
	cycles   metric.Int64Counter
	pages    metric.Int64Counter
	duration metric.Float64Histogram
	listings metric.Int64Gauge
}

// NewMetrics registers the sync instruments on the given provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter("github.com/gallerihuset/kiosk/internal/syncer")

	cycles, err := meter.Int64Counter("kiosk.sync.cycles",
		metric.WithDescription("Completed sync cycles by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cycles counter: %w", err)
	}
	pages, err := meter.Int64Counter("kiosk.sync.pages_fetched",
		metric.WithDescription("Listing pages fetched"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pages counter: %w", err)
	}
	duration, err := meter.Float64Histogram("kiosk.sync.duration",
		metric.WithDescription("Duration of a full sync cycle"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}
	listings, err := meter.Int64Gauge("kiosk.sync.listings",
		metric.WithDescription("Listings in the authoritative collection"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating listings gauge: %w", err)
	}

	return &Metrics{cycles: cycles, pages: pages, duration: duration, listings: listings}, nil
}

// RecordCycle records one completed sync cycle.
func (m *Metrics) RecordCycle(ctx context.Context, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.cycles.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	m.duration.Record(ctx, took.Seconds())
}

// RecordPages records pages fetched during one cycle.
func (m *Metrics) RecordPages(ctx context.Context, n int) {
	if m == nil {
		return
	}
	m.pages.Add(ctx, int64(n))
}

// RecordListings records the current collection size.
func (m *Metrics) RecordListings(ctx context.Context, n int) {
	if m == nil {
		return
	}
	m.listings.Record(ctx, int64(n))
}
