package listing

import (
	"fmt"
	"strings"
)

// Record is the wire representation of one listing as served by the
// auction API.
type Record struct {
	ID                    string         `json:"id"`
	BidCount              int            `json:"bidCount"`
	HighestBidAmountCents int64          `json:"highestBidAmountCents"`
	LotOrdinal            int            `json:"lotOrdinal"`
	Artwork               *ArtworkRecord `json:"artwork"`
}

// ArtworkRecord is the wire representation of the artwork attached to a
// listing record.
type ArtworkRecord struct {
	ID     string       `json:"id"`
	Title  string       `json:"title"`
	Artist string       `json:"artist"`
	Image  *ImageRecord `json:"image"`
}

// ImageRecord carries image metadata for an artwork.
type ImageRecord struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ParseError reports a record that could not be turned into a Listing.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parsing listing: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("parsing listing: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseRecords converts wire records into listings, attaching shared artwork
// records through the cache. Server order is preserved. Absent bid counts
// and amounts decode to zero, which downstream treats as "no bids yet".
func ParseRecords(cache *ArtworkCache, records []Record) ([]*Listing, error) {
	items := make([]*Listing, 0, len(records))
	for i, r := range records {
		if r.ID == "" {
			return nil, &ParseError{Reason: fmt.Sprintf("record %d has no id", i)}
		}
		l := &Listing{
			ID:              r.ID,
			BidCount:        r.BidCount,
			HighestBidCents: r.HighestBidAmountCents,
			LotOrdinal:      r.LotOrdinal,
		}
		if r.Artwork != nil {
			fresh := &Artwork{
				Title:         r.Artwork.Title,
				ArtistSortKey: strings.TrimSpace(r.Artwork.Artist),
			}
			if r.Artwork.Image != nil {
				fresh.ImageWidth = r.Artwork.Image.Width
				fresh.ImageHeight = r.Artwork.Image.Height
			}
			l.Artwork = cache.Lookup(r.Artwork.ID, fresh)
		}
		items = append(items, l)
	}
	return items, nil
}
