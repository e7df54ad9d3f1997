package listing

// Reconcile merges a freshly fetched snapshot into the current collection.
//
// When the two sequences have the same length and the same id at every
// position, the mutable fields of the current items are updated in place and
// the current slice is returned unchanged in identity. The presentation
// layer may be holding onto those items (a detail view, a selection), and an
// in-place update keeps such references valid when only statistics changed.
//
// Any cardinality change, or any id mismatch at any position (a reorder, or
// a simultaneous add and remove), falls back to returning incoming verbatim
// as a full replace. The replaced return reports which path was taken so
// callers can avoid firing identity-change signals on in-place updates.
//
// Empty current and empty incoming reconcile trivially in place.
func Reconcile(current, incoming []*Listing) (merged []*Listing, replaced bool) {
	if len(current) != len(incoming) {
		return incoming, true
	}
	for i := range current {
		if current[i].ID != incoming[i].ID {
			return incoming, true
		}
	}
	for i, item := range current {
		item.BidCount = incoming[i].BidCount
		item.HighestBidCents = incoming[i].HighestBidCents
		item.LotOrdinal = incoming[i].LotOrdinal
		item.Artwork = incoming[i].Artwork
	}
	return current, false
}
