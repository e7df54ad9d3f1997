package clock

import "time"

// Clock abstracts time operations for testability.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker delivers periodic ticks. Ticks that fire while the receiver is
// busy are dropped, matching time.Ticker semantics.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Real is a Clock backed by the system clock.
type Real struct{}

// Now returns the current time.
func (Real) Now() time.Time { return time.Now() }

// NewTicker returns a Ticker backed by time.Ticker.
func (Real) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

// Mock is a Clock that returns a fixed time and delivers ticks only when
// the test calls Tick.
type Mock struct {
	T     time.Time
	ticks chan time.Time
}

// NewMock creates a Mock fixed at t.
func NewMock(t time.Time) *Mock {
	return &Mock{T: t, ticks: make(chan time.Time, 1)}
}

// Now returns the fixed time.
func (m *Mock) Now() time.Time { return m.T }

// NewTicker returns a Ticker driven by Tick. The interval is ignored.
func (m *Mock) NewTicker(time.Duration) Ticker {
	return mockTicker{ch: m.ticks}
}

// Tick delivers one tick. Like a real ticker, the tick is dropped when the
// receiver has not consumed the previous one.
func (m *Mock) Tick() {
	select {
	case m.ticks <- m.T:
	default:
	}
}

type mockTicker struct {
	ch chan time.Time
}

func (m mockTicker) C() <-chan time.Time { return m.ch }
func (m mockTicker) Stop()               {}
