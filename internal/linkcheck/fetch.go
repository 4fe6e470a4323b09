package linkcheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dgnsrekt/contribute_smoke/internal/page"
	"golang.org/x/time/rate"
)

const (
	DefaultFetchTimeout = 10 * time.Second
	maxDrainBytes       = 1 << 20
)

// StatusFetcher issues GET requests and reports the response status code.
type StatusFetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// FetcherOptions configures a StatusFetcher.
type FetcherOptions struct {
	// Client overrides the HTTP client. Its Timeout is set to Timeout when zero.
	Client    *http.Client
	Timeout   time.Duration
	RatePerS  float64
	UserAgent string
}

// NewStatusFetcher creates a fetcher. A non-positive RatePerS disables limiting.
func NewStatusFetcher(opts FetcherOptions) *StatusFetcher {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	} else if client.Timeout == 0 {
		c := *client
		c.Timeout = timeout
		client = &c
	}

	limit := rate.Inf
	if opts.RatePerS > 0 {
		limit = rate.Limit(opts.RatePerS)
	}
	return &StatusFetcher{
		client:    client,
		limiter:   rate.NewLimiter(limit, 1),
		userAgent: opts.UserAgent,
	}
}

// FetchStatus GETs url and returns its status code. Redirects are followed.
// Unreachable hosts and timeouts fail with NETWORK_ERROR.
func (f *StatusFetcher) FetchStatus(ctx context.Context, url string) (int, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, page.NewError(page.CodeNetwork, fmt.Sprintf("invalid url %q", url), err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, page.NewError(page.CodeNetwork, "request failed", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	return resp.StatusCode, nil
}
