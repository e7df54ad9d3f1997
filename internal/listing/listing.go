// Package listing holds the auction lot domain model: listings, their shared
// artwork records, snapshot reconciliation and sort projections.
package listing

import "sync"

// Artwork is a shared, read-mostly record describing the work behind a lot.
// Listings reference it; they do not own its lifecycle.
type Artwork struct {
	Title         string
	ArtistSortKey string
	ImageWidth    int
	ImageHeight   int
}

// AspectRatio returns width/height of the artwork image. The second return
// is false when the image dimensions are unknown.
func (a *Artwork) AspectRatio() (float64, bool) {
	if a == nil || a.ImageWidth <= 0 || a.ImageHeight <= 0 {
		return 0, false
	}
	return float64(a.ImageWidth) / float64(a.ImageHeight), true
}

// Listing is a single auction lot. Its ID is server-assigned and stable
// across syncs; the remaining fields are refreshed every cycle.
type Listing struct {
	ID              string
	BidCount        int
	HighestBidCents int64
	LotOrdinal      int
	Artwork         *Artwork
}

// ArtworkCache deduplicates artwork records across sync cycles so that
// listings parsed from different snapshots share the same record.
type ArtworkCache struct {
	mu   sync.Mutex
	byID map[string]*Artwork
}

// NewArtworkCache creates an empty cache.
func NewArtworkCache() *ArtworkCache {
	return &ArtworkCache{byID: make(map[string]*Artwork)}
}

// Lookup returns the cached artwork for id, storing fresh if absent.
func (c *ArtworkCache) Lookup(id string, fresh *Artwork) *Artwork {
	if id == "" {
		return fresh
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if a, ok := c.byID[id]; ok {
		return a
	}
	c.byID[id] = fresh
	return fresh
}
