// Package session holds the authoritative listing state for one auction
// session and serves sorted projections and signals to the presentation
// layer.
package session

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/gallerihuset/kiosk/internal/listing"
)

// ItemView is the read-only projection of one listing handed to the
// presentation layer. It is a value; mutating it has no effect on the
// authoritative state.
type ItemView struct {
	ID              string
	Title           string
	Artist          string
	LotOrdinal      int
	BidCount        int
	HighestBidCents int64
}

// Callbacks are the presentation hooks supplied at construction. Both may
// be nil.
type Callbacks struct {
	// ShowDetails is invoked by Select with the chosen item.
	ShowDetails func(ItemView)
	// PresentModal is invoked by Activate with the chosen item.
	PresentModal func(ItemView)
}

// Session owns exactly one listing collection. It is created empty, patched
// or replaced by the sync loop on every completed cycle, and discarded when
// the session ends. Reads are safe from any goroutine; writes come only
// from the sync loop via ApplySnapshot and from SetSortMode.
type Session struct {
	mu       sync.RWMutex
	items    []*listing.Listing // authoritative, server lot order
	view     []*listing.Listing // derived, active sort order
	mode     listing.SortMode
	lastSync time.Time
	synced   bool

	callbacks Callbacks
	logger    *slog.Logger

	emptySubs []func(bool)
	gridSubs  []func(bool)
	syncSubs  []func(time.Time)
}

// New creates an empty session starting in Grid mode.
func New(logger *slog.Logger, callbacks Callbacks) *Session {
	return &Session{
		mode:      listing.Grid,
		callbacks: callbacks,
		logger:    logger,
	}
}

// ApplySnapshot reconciles a completed fetch into the session. The sorted
// view is always recomputed, since even an in-place update may change sort
// keys; the empty signal fires only when emptiness actually flips, so
// in-place statistic updates never disturb it.
func (s *Session) ApplySnapshot(items []*listing.Listing, syncedAt time.Time) {
	s.mu.Lock()
	wasEmpty := len(s.items) == 0

	merged, replaced := listing.Reconcile(s.items, items)
	s.items = merged
	s.view = listing.Project(s.items, s.mode)
	s.lastSync = syncedAt
	s.synced = true

	isEmpty := len(s.items) == 0
	fireEmpty := isEmpty != wasEmpty
	emptySubs := slices.Clone(s.emptySubs)
	syncSubs := slices.Clone(s.syncSubs)
	s.mu.Unlock()

	s.logger.Debug("snapshot applied",
		slog.Int("listings", len(merged)),
		slog.Bool("replaced", replaced),
	)

	if fireEmpty {
		for _, fn := range emptySubs {
			fn(isEmpty)
		}
	}
	for _, fn := range syncSubs {
		fn(syncedAt)
	}
}

// SetSortMode switches the active sort mode and recomputes the view.
func (s *Session) SetSortMode(mode listing.SortMode) {
	s.mu.Lock()
	if s.mode == mode {
		s.mu.Unlock()
		return
	}
	wasGrid := s.mode == listing.Grid
	s.mode = mode
	s.view = listing.Project(s.items, mode)
	isGrid := mode == listing.Grid
	fireGrid := isGrid != wasGrid
	gridSubs := slices.Clone(s.gridSubs)
	s.mu.Unlock()

	if fireGrid {
		for _, fn := range gridSubs {
			fn(isGrid)
		}
	}
}

// SortMode returns the active sort mode.
func (s *Session) SortMode() listing.SortMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// SortModeName returns the display name of the active sort mode.
func (s *Session) SortModeName() string {
	return s.SortMode().String()
}

// Count returns the number of listings in the current view.
func (s *Session) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.view)
}

// ItemAt returns the projection of the listing at the given sorted index.
func (s *Session) ItemAt(sortedIndex int) (ItemView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.itemAtLocked(sortedIndex)
}

func (s *Session) itemAtLocked(sortedIndex int) (ItemView, bool) {
	if sortedIndex < 0 || sortedIndex >= len(s.view) {
		return ItemView{}, false
	}
	l := s.view[sortedIndex]
	v := ItemView{
		ID:              l.ID,
		LotOrdinal:      l.LotOrdinal,
		BidCount:        l.BidCount,
		HighestBidCents: l.HighestBidCents,
	}
	if l.Artwork != nil {
		v.Title = l.Artwork.Title
		v.Artist = l.Artwork.ArtistSortKey
	}
	return v, true
}

// ImageAspectRatioAt returns the artwork image aspect ratio at the given
// sorted index. The second return is false when the index is out of range
// or the image dimensions are unknown.
func (s *Session) ImageAspectRatioAt(sortedIndex int) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sortedIndex < 0 || sortedIndex >= len(s.view) {
		return 0, false
	}
	return s.view[sortedIndex].Artwork.AspectRatio()
}

// Select routes a selection at the given sorted index to the show-details
// callback.
func (s *Session) Select(sortedIndex int) {
	s.mu.RLock()
	v, ok := s.itemAtLocked(sortedIndex)
	fn := s.callbacks.ShowDetails
	s.mu.RUnlock()
	if ok && fn != nil {
		fn(v)
	}
}

// Activate routes an activation at the given sorted index to the
// present-modal callback.
func (s *Session) Activate(sortedIndex int) {
	s.mu.RLock()
	v, ok := s.itemAtLocked(sortedIndex)
	fn := s.callbacks.PresentModal
	s.mu.RUnlock()
	if ok && fn != nil {
		fn(v)
	}
}

// IsEmpty reports whether the collection currently holds no listings.
func (s *Session) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items) == 0
}

// LastSyncAt returns the completion time of the most recent successful sync.
// The second return is false before the first success.
func (s *Session) LastSyncAt() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSync, s.synced
}

// OnEmptyChanged registers a callback fired when the collection flips
// between empty and non-empty.
func (s *Session) OnEmptyChanged(fn func(bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emptySubs = append(s.emptySubs, fn)
}

// OnGridModeChanged registers a callback fired when Grid mode is entered or
// left.
func (s *Session) OnGridModeChanged(fn func(bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gridSubs = append(s.gridSubs, fn)
}

// OnSynced registers a callback fired with the timestamp of every applied
// snapshot.
func (s *Session) OnSynced(fn func(time.Time)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncSubs = append(s.syncSubs, fn)
}
