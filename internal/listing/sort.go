package listing

import (
	"sort"
	"strings"
)

// SortMode is a named total ordering applied to the collection for display.
type SortMode int

// The fixed set of sort modes. Grid is the identity permutation: lots appear
// in server lot order.
const (
	Grid SortMode = iota
	LeastBids
	MostBids
	HighestBid
	LowestBid
	Alphabetical
)

// String returns the display name of the sort mode.
func (m SortMode) String() string {
	switch m {
	case Grid:
		return "Lot order"
	case LeastBids:
		return "Least bids"
	case MostBids:
		return "Most bids"
	case HighestBid:
		return "Highest bid"
	case LowestBid:
		return "Lowest bid"
	case Alphabetical:
		return "Artist A-Z"
	default:
		return "Unknown"
	}
}

// less reports whether a orders before b under the mode. It is nil-mode safe
// only for non-Grid modes; Project never calls it for Grid.
func (m SortMode) less(a, b *Listing) bool {
	switch m {
	case LeastBids:
		return a.BidCount < b.BidCount
	case MostBids:
		return a.BidCount > b.BidCount
	case HighestBid:
		return a.HighestBidCents > b.HighestBidCents
	case LowestBid:
		return a.HighestBidCents < b.HighestBidCents
	case Alphabetical:
		return strings.ToLower(artistKey(a)) < strings.ToLower(artistKey(b))
	default:
		return false
	}
}

func artistKey(l *Listing) string {
	if l.Artwork == nil {
		return ""
	}
	return l.Artwork.ArtistSortKey
}

// Project returns a sorted view of items under the given mode. The input is
// never mutated; ties keep their relative lot order (stable sort). Missing
// bid counts and amounts compare as zero.
func Project(items []*Listing, mode SortMode) []*Listing {
	view := make([]*Listing, len(items))
	copy(view, items)
	if mode == Grid {
		return view
	}
	sort.SliceStable(view, func(i, j int) bool {
		return mode.less(view[i], view[j])
	})
	return view
}
