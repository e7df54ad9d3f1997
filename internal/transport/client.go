// Package transport implements the HTTP collaborator that serves paginated
// listing pages. Transient failures are retried here with exponential
// backoff; callers above this layer never retry.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/gallerihuset/kiosk/internal/listing"
)

// TransportError reports an HTTP or network failure while fetching a page.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("listings request %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("listings request %s: unexpected status %d", e.URL, e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client fetches listing pages from the auction API.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	maxTries      uint
	retryInterval time.Duration
	logger        *slog.Logger
	tracer        trace.Tracer
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxTries caps attempts per page, including the first.
func WithMaxTries(n uint) Option {
	return func(c *Client) { c.maxTries = n }
}

// WithRetryInterval sets the initial backoff interval between attempts.
func WithRetryInterval(d time.Duration) Option {
	return func(c *Client) { c.retryInterval = d }
}

// NewClient creates a listings page client.
func NewClient(baseURL string, logger *slog.Logger, tp trace.TracerProvider, opts ...Option) *Client {
	c := &Client{
		baseURL:       baseURL,
		httpClient:    &http.Client{Timeout: 15 * time.Second},
		maxTries:      3,
		retryInterval: 500 * time.Millisecond,
		logger:        logger,
		tracer:        tp.Tracer("github.com/gallerihuset/kiosk/internal/transport"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchPage retrieves one page of listing records. Network errors and 5xx
// responses are retried with backoff; 4xx responses and malformed payloads
// fail immediately. The context bounds all attempts, so an externally
// supplied timeout covers retries too.
func (c *Client) FetchPage(ctx context.Context, auctionID string, page, size int) ([]listing.Record, error) {
	ctx, span := c.tracer.Start(ctx, "Client.FetchPage",
		trace.WithAttributes(
			attribute.String("auction_id", auctionID),
			attribute.Int("page", page),
			attribute.Int("page_size", size),
		),
	)
	defer span.End()

	endpoint := fmt.Sprintf("%s/auctions/%s/listings", c.baseURL, url.PathEscape(auctionID))
	query := url.Values{
		"page": []string{strconv.Itoa(page)},
		"size": []string{strconv.Itoa(size)},
	}
	pageURL := endpoint + "?" + query.Encode()

	operation := func() ([]listing.Record, error) {
		records, err := c.fetchOnce(ctx, pageURL)
		if err == nil {
			return records, nil
		}
		if terr, ok := err.(*TransportError); ok && terr.StatusCode >= 500 {
			c.logger.WarnContext(ctx, "listings page fetch failed, retrying",
				slog.Int("page", page),
				slog.Int("status", terr.StatusCode),
			)
			return nil, err
		}
		if _, ok := err.(*TransportError); ok && isNetworkErr(err) {
			c.logger.WarnContext(ctx, "listings page fetch failed, retrying",
				slog.Int("page", page),
				slog.Any("error", err),
			)
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = c.retryInterval

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(c.maxTries),
	)
}

func (c *Client) fetchOnce(ctx context.Context, pageURL string) ([]listing.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &TransportError{URL: pageURL, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: pageURL, Err: err}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	var records []listing.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, &listing.ParseError{Reason: "decoding listings page", Err: err}
	}
	return records, nil
}

// isNetworkErr reports whether a TransportError wraps a transport-level
// failure rather than an HTTP status.
func isNetworkErr(err error) bool {
	terr, ok := err.(*TransportError)
	return ok && terr.Err != nil
}
