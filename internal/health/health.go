// Package health exposes liveness, readiness and kiosk status endpoints.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/gallerihuset/kiosk/internal/clock"
)

// Status represents a health check result.
type Status struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp string            `json:"timestamp"`
}

// KioskStatus is the payload of the status endpoint.
type KioskStatus struct {
	Listings   int    `json:"listings"`
	SortMode   string `json:"sortMode"`
	LastSyncAt string `json:"lastSyncAt,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// Checker defines a named health check function.
type Checker struct {
	Name  string
	Check func(ctx context.Context) error
}

// StatusSource reports the live kiosk state. Implemented by
// session.Session.
type StatusSource interface {
	Count() int
	SortModeName() string
	LastSyncAt() (time.Time, bool)
}

// Handler provides HTTP health check endpoints.
type Handler struct {
	mu       sync.RWMutex
	ready    bool
	checkers []Checker
	clock    clock.Clock
}

// NewHandler creates a new health handler with the given checkers.
func NewHandler(clk clock.Clock, checkers ...Checker) *Handler {
	return &Handler{checkers: checkers, clock: clk}
}

// SetReady marks the kiosk as ready to be displayed. Wired to the first
// successful sync.
func (h *Handler) SetReady(ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = ready
}

// Routes registers the health and status endpoints on a router.
func (h *Handler) Routes(r *mux.Router, status http.HandlerFunc) {
	r.HandleFunc("/healthz", h.LivenessHandler()).Methods(http.MethodGet)
	r.HandleFunc("/readyz", h.ReadinessHandler()).Methods(http.MethodGet)
	if status != nil {
		r.HandleFunc("/statusz", status).Methods(http.MethodGet)
	}
}

// LivenessHandler returns HTTP 200 if the process is alive.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, Status{
			Status:    "ok",
			Timestamp: h.clock.Now().UTC().Format(time.RFC3339),
		})
	}
}

// ReadinessHandler returns HTTP 200 once the kiosk is ready and all
// checkers pass.
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.mu.RLock()
		ready := h.ready
		h.mu.RUnlock()

		if !ready {
			writeJSON(w, http.StatusServiceUnavailable, Status{
				Status:    "not_ready",
				Timestamp: h.clock.Now().UTC().Format(time.RFC3339),
			})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := make(map[string]string)
		allOK := true
		for _, c := range h.checkers {
			if err := c.Check(ctx); err != nil {
				checks[c.Name] = err.Error()
				allOK = false
			} else {
				checks[c.Name] = "ok"
			}
		}

		status := "ready"
		code := http.StatusOK
		if !allOK {
			status = "not_ready"
			code = http.StatusServiceUnavailable
		}

		writeJSON(w, code, Status{
			Status:    status,
			Checks:    checks,
			Timestamp: h.clock.Now().UTC().Format(time.RFC3339),
		})
	}
}

// StatusHandler reports the live kiosk state for operators.
func (h *Handler) StatusHandler(source StatusSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ks := KioskStatus{
			Listings:  source.Count(),
			SortMode:  source.SortModeName(),
			Timestamp: h.clock.Now().UTC().Format(time.RFC3339),
		}
		if at, ok := source.LastSyncAt(); ok {
			ks.LastSyncAt = at.UTC().Format(time.RFC3339)
		}
		writeJSON(w, http.StatusOK, ks)
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
