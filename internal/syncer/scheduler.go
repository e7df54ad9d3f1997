package syncer

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/gallerihuset/kiosk/internal/clock"
	"github.com/gallerihuset/kiosk/internal/listing"
	"github.com/gallerihuset/kiosk/internal/telemetry"
)

// SnapshotFetcher retrieves one complete snapshot of the collection.
type SnapshotFetcher interface {
	FetchAll(ctx context.Context) ([]*listing.Listing, error)
}

// Sink receives each successfully fetched snapshot. Implemented by
// session.Session.
type Sink interface {
	ApplySnapshot(items []*listing.Listing, syncedAt time.Time)
}

// Scheduler runs one fetch-and-apply cycle immediately on start and then on
// every interval tick until its context is cancelled.
//
// At most one fetch is ever in flight: Run is a single goroutine that
// executes cycles synchronously, and ticks arriving while a cycle is running
// are dropped by the ticker (at most one is buffered). A dropped tick is
// simply a skipped cycle; the next tick resynchronizes. A fetch still in
// flight when the context is cancelled runs to completion, but its result is
// discarded rather than applied.
type Scheduler struct {
	fetcher      SnapshotFetcher
	sink         Sink
	interval     time.Duration
	fetchTimeout time.Duration
	clock        clock.Clock
	logger       *slog.Logger
	metrics      *telemetry.Metrics
	tracer       trace.Tracer
}

// NewScheduler creates a Scheduler. A zero fetchTimeout disables the
// per-cycle deadline; cancellation then rests entirely on ctx.
func NewScheduler(fetcher SnapshotFetcher, sink Sink, interval, fetchTimeout time.Duration, clk clock.Clock, logger *slog.Logger, metrics *telemetry.Metrics, tp trace.TracerProvider) *Scheduler {
	return &Scheduler{
		fetcher:      fetcher,
		sink:         sink,
		interval:     interval,
		fetchTimeout: fetchTimeout,
		clock:        clk,
		logger:       logger,
		metrics:      metrics,
		tracer:       tp.Tracer("github.com/gallerihuset/kiosk/internal/syncer"),
	}
}

// Run blocks until ctx is cancelled, executing sync cycles.
func (s *Scheduler) Run(ctx context.Context) {
	s.cycle(ctx)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sync scheduler stopped")
			return
		case <-ticker.C():
			s.cycle(ctx)
		}
	}
}

func (s *Scheduler) cycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	cycleID := uuid.NewString()
	start := s.clock.Now()

	ctx, span := s.tracer.Start(ctx, "Scheduler.cycle",
		trace.WithAttributes(attribute.String("cycle_id", cycleID)),
	)
	defer span.End()

	// Tick observability only; never blocks or fails the cycle.
	s.logger.InfoContext(ctx, "sync tick",
		slog.String("cycle_id", cycleID),
		slog.Time("at", start),
	)

	fetchCtx := ctx
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}

	items, err := s.fetcher.FetchAll(fetchCtx)
	took := s.clock.Now().Sub(start)
	if err != nil {
		// No update this cycle: the last known-good collection stays
		// authoritative and the failure is visible only in telemetry.
		s.logger.ErrorContext(ctx, "listings failed to retrieve or parse",
			slog.String("cycle_id", cycleID),
			slog.Any("error", err),
		)
		s.metrics.RecordCycle(ctx, telemetry.OutcomeError, took)
		return
	}

	if ctx.Err() != nil {
		// The session stopped while the fetch was in flight.
		s.logger.InfoContext(ctx, "discarding snapshot fetched after stop",
			slog.String("cycle_id", cycleID),
		)
		s.metrics.RecordCycle(ctx, telemetry.OutcomeDiscarded, took)
		return
	}

	s.sink.ApplySnapshot(items, s.clock.Now())
	s.metrics.RecordCycle(ctx, telemetry.OutcomeOK, took)
	s.metrics.RecordListings(ctx, len(items))

	s.logger.InfoContext(ctx, "sync cycle complete",
		slog.String("cycle_id", cycleID),
		slog.Int("listings", len(items)),
		slog.Duration("took", took),
	)
}
