// Package syncer drives the recurring paginated synchronization of an
// auction's listing collection.
package syncer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/gallerihuset/kiosk/internal/listing"
	"github.com/gallerihuset/kiosk/internal/telemetry"
)

// PageSource fetches one page of listing records. Implemented by
// transport.Client.
type PageSource interface {
	FetchPage(ctx context.Context, auctionID string, page, size int) ([]listing.Record, error)
}

// Fetcher retrieves the complete listing collection by walking pages until
// the first short page.
type Fetcher struct {
	source    PageSource
	auctionID string
	pageSize  int
	artworks  *listing.ArtworkCache
	metrics   *telemetry.Metrics
	tracer    trace.Tracer
}

// NewFetcher creates a Fetcher for one auction session.
func NewFetcher(source PageSource, auctionID string, pageSize int, artworks *listing.ArtworkCache, metrics *telemetry.Metrics, tp trace.TracerProvider) *Fetcher {
	return &Fetcher{
		source:    source,
		auctionID: auctionID,
		pageSize:  pageSize,
		artworks:  artworks,
		metrics:   metrics,
		tracer:    tp.Tracer("github.com/gallerihuset/kiosk/internal/syncer"),
	}
}

// FetchAll retrieves every page of the collection in server lot order.
//
// Pages are requested sequentially starting at 1; a page carrying pageSize
// or more records means another page must be requested, and the first
// strictly-short page is the last. A collection whose size is an exact
// multiple of the page size therefore costs one extra trailing request,
// usually empty. That request is kept for compatibility with the server's
// paging contract, which has no has-more flag.
//
// A transport or parse failure on any page fails the whole fetch; partial
// results are never returned.
func (f *Fetcher) FetchAll(ctx context.Context) ([]*listing.Listing, error) {
	ctx, span := f.tracer.Start(ctx, "Fetcher.FetchAll",
		trace.WithAttributes(attribute.String("auction_id", f.auctionID)),
	)
	defer span.End()

	var all []*listing.Listing
	pages := 0
	for page := 1; ; page++ {
		records, err := f.source.FetchPage(ctx, f.auctionID, page, f.pageSize)
		if err != nil {
			return nil, fmt.Errorf("fetching page %d: %w", page, err)
		}
		pages++

		items, err := listing.ParseRecords(f.artworks, records)
		if err != nil {
			return nil, fmt.Errorf("parsing page %d: %w", page, err)
		}
		all = append(all, items...)

		if len(records) < f.pageSize {
			break
		}
	}

	f.metrics.RecordPages(ctx, pages)
	span.SetAttributes(
		attribute.Int("pages", pages),
		attribute.Int("listings", len(all)),
	)
	return all, nil
}
