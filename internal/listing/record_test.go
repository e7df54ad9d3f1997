package listing_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/gallerihuset/kiosk/internal/listing"
)

func TestParseRecords(t *testing.T) {
	cache := listing.NewArtworkCache()
	records := []listing.Record{
		{
			ID:                    "lot-1",
			BidCount:              3,
			HighestBidAmountCents: 45000,
			LotOrdinal:            1,
			Artwork: &listing.ArtworkRecord{
				ID:     "art-9",
				Title:  "Untitled",
				Artist: "  Kirkeby ",
				Image:  &listing.ImageRecord{Width: 1200, Height: 800},
			},
		},
		{ID: "lot-2", LotOrdinal: 2},
	}

	items, err := listing.ParseRecords(cache, records)
	if err != nil {
		t.Fatalf("ParseRecords() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}

	if items[0].ID != "lot-1" || items[0].BidCount != 3 || items[0].HighestBidCents != 45000 {
		t.Errorf("items[0] = %+v, fields not carried over", items[0])
	}
	if items[0].Artwork == nil {
		t.Fatal("items[0] has no artwork attached")
	}
	if items[0].Artwork.ArtistSortKey != "Kirkeby" {
		t.Errorf("artist sort key = %q, want trimmed %q", items[0].Artwork.ArtistSortKey, "Kirkeby")
	}
	if ratio, ok := items[0].Artwork.AspectRatio(); !ok || ratio != 1.5 {
		t.Errorf("aspect ratio = %v, %v, want 1.5, true", ratio, ok)
	}

	// Absent bid fields mean "no bids yet".
	if items[1].BidCount != 0 || items[1].HighestBidCents != 0 {
		t.Errorf("items[1] = %+v, want zero bid fields", items[1])
	}
	if _, ok := items[1].Artwork.AspectRatio(); ok {
		t.Error("aspect ratio present for lot without artwork")
	}
}

func TestParseRecords_MissingIDFails(t *testing.T) {
	_, err := listing.ParseRecords(listing.NewArtworkCache(), []listing.Record{{LotOrdinal: 1}})
	if err == nil {
		t.Fatal("expected error for record without id")
	}
	var perr *listing.ParseError
	if !errors.As(err, &perr) {
		t.Errorf("error type = %T, want *listing.ParseError", err)
	}
}

func TestParseRecords_SharesArtworkAcrossSnapshots(t *testing.T) {
	cache := listing.NewArtworkCache()
	rec := listing.Record{
		ID:      "lot-1",
		Artwork: &listing.ArtworkRecord{ID: "art-1", Title: "Composition", Artist: "Jorn"},
	}

	first, err := listing.ParseRecords(cache, []listing.Record{rec})
	if err != nil {
		t.Fatal(err)
	}
	second, err := listing.ParseRecords(cache, []listing.Record{rec})
	if err != nil {
		t.Fatal(err)
	}

	if first[0].Artwork != second[0].Artwork {
		t.Error("same artwork id parsed into distinct records, want shared instance")
	}
}

func TestRecord_DecodesWireFormat(t *testing.T) {
	raw := `[{"id":"lot-7","bidCount":2,"highestBidAmountCents":90000,"lotOrdinal":7,` +
		`"artwork":{"id":"a","title":"Skagen","artist":"Ancher","image":{"width":640,"height":480}}}]`

	var records []listing.Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		t.Fatalf("unmarshalling: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	r := records[0]
	if r.ID != "lot-7" || r.BidCount != 2 || r.HighestBidAmountCents != 90000 || r.LotOrdinal != 7 {
		t.Errorf("record = %+v, wire fields not decoded", r)
	}
	if r.Artwork == nil || r.Artwork.Image == nil || r.Artwork.Image.Width != 640 {
		t.Errorf("artwork = %+v, want nested image metadata", r.Artwork)
	}
}
