// Package httpfetch retrieves candidate documents over HTTP.
//
// Authentication and session mechanics of the upstream HR system are not
// this package's concern; it fetches plain URLs with an explicit retry
// policy. One document failing must never abort retrieval of the others,
// so Fetch reports per-document errors and callers decide what to skip.
package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/iamcalledayush/resume-scorer-resupply/internal/domain"
)

const maxDocumentBytes = 32 << 20

// Fetcher implements domain.DocumentFetcher with bounded retries.
type Fetcher struct {
	hc           *http.Client
	maxRetries   int
	initialDelay time.Duration
}

// New constructs a Fetcher. maxRetries counts retries after the first
// attempt; initialDelay seeds the exponential backoff between attempts.
func New(timeout time.Duration, maxRetries int, initialDelay time.Duration) *Fetcher {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if initialDelay <= 0 {
		initialDelay = time.Second
	}
	return &Fetcher{
		hc: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		maxRetries:   maxRetries,
		initialDelay: initialDelay,
	}
}

// Fetch downloads one document, retrying transient failures.
func (f *Fetcher) Fetch(ctx context.Context, name, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty source url for %q", domain.ErrInvalidArgument, name)
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = f.initialDelay
	policy := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(f.maxRetries)), ctx)

	var data []byte
	err := backoff.Retry(func() error {
		var attemptErr error
		data, attemptErr = f.attempt(ctx, url)
		return attemptErr
	}, policy)
	if err != nil {
		return nil, fmt.Errorf("op=httpfetch.Fetch %q: %w", name, err)
	}
	return data, nil
}

func (f *Fetcher) attempt(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	resp, err := f.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, backoff.Permanent(fmt.Errorf("%w: status 404", domain.ErrNotFound))
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status 429", domain.ErrUpstreamRateLimit)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, backoff.Permanent(fmt.Errorf("status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxDocumentBytes {
		return nil, backoff.Permanent(fmt.Errorf("%w: document exceeds %d bytes", domain.ErrInvalidArgument, maxDocumentBytes))
	}
	return data, nil
}
