package transport_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace/noop"

	"github.com/gallerihuset/kiosk/internal/listing"
	"github.com/gallerihuset/kiosk/internal/transport"
)

func newClient(baseURL string, opts ...transport.Option) *transport.Client {
	opts = append([]transport.Option{
		transport.WithMaxTries(3),
		transport.WithRetryInterval(time.Millisecond),
	}, opts...)
	return transport.NewClient(baseURL, slog.Default(), noop.NewTracerProvider(), opts...)
}

func TestFetchPage_DecodesListings(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"lot-1","bidCount":2,"highestBidAmountCents":5000,"lotOrdinal":1}]`))
	}))
	defer srv.Close()

	records, err := newClient(srv.URL).FetchPage(context.Background(), "sale-1", 3, 10)
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if gotPath != "/auctions/sale-1/listings" {
		t.Errorf("request path = %q, want %q", gotPath, "/auctions/sale-1/listings")
	}
	if gotQuery != "page=3&size=10" {
		t.Errorf("request query = %q, want %q", gotQuery, "page=3&size=10")
	}
	if len(records) != 1 || records[0].ID != "lot-1" || records[0].BidCount != 2 {
		t.Errorf("records = %+v, want one decoded listing", records)
	}
}

func TestFetchPage_EmptyArrayIsValid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	records, err := newClient(srv.URL).FetchPage(context.Background(), "sale-1", 1, 10)
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestFetchPage_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[{"id":"lot-1","lotOrdinal":1}]`))
	}))
	defer srv.Close()

	records, err := newClient(srv.URL).FetchPage(context.Background(), "sale-1", 1, 10)
	if err != nil {
		t.Fatalf("FetchPage() error = %v after retries", err)
	}
	if len(records) != 1 {
		t.Errorf("got %d records, want 1", len(records))
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d requests, want 3", got)
	}
}

func TestFetchPage_GivesUpAfterMaxTries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).FetchPage(context.Background(), "sale-1", 1, 10)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	var terr *transport.TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("error type = %T, want *transport.TransportError", err)
	}
	if terr.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", terr.StatusCode, http.StatusInternalServerError)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d requests, want 3", got)
	}
}

func TestFetchPage_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).FetchPage(context.Background(), "sale-1", 1, 10)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	var terr *transport.TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("error type = %T, want *transport.TransportError", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server saw %d requests, want 1 (no retry on 4xx)", got)
	}
}

func TestFetchPage_MalformedJSONIsParseError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"not":"an array"`))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).FetchPage(context.Background(), "sale-1", 1, 10)
	if err == nil {
		t.Fatal("expected error for malformed payload")
	}
	var perr *listing.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error type = %T, want *listing.ParseError", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server saw %d requests, want 1 (no retry on parse failure)", got)
	}
}

func TestFetchPage_HonorsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newClient(srv.URL).FetchPage(ctx, "sale-1", 1, 10)
	if err == nil {
		t.Fatal("expected error when context expires mid-request")
	}
}
