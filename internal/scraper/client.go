package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pfrederiksen/regional-events/internal/logger"
	"golang.org/x/time/rate"
)

const (
	UserAgent = "regional-events/1.0 (github.com/pfrederiksen/regional-events)"
	Timeout   = 30 * time.Second
)

// Options configures a Client
type Options struct {
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64 // <= 0 disables pacing
}

// Client fetches upstream pages with a fixed user agent and request pacing
type Client struct {
	http      *http.Client
	userAgent string
	limiter   *rate.Limiter
}

// NewClient creates a new Client
func NewClient(opts Options) *Client {
	if opts.UserAgent == "" {
		opts.UserAgent = UserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = Timeout
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &Client{
		http: &http.Client{
			Timeout: opts.Timeout,
		},
		userAgent: opts.UserAgent,
		limiter:   limiter,
	}
}

// fetch GETs url and returns the body. Non-200 responses are errors unless
// accept reports that the body is still usable.
func (c *Client) fetch(ctx context.Context, url string, accept func(body []byte) bool) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	logger.Debug("Fetching page", logger.Fields{"url": url})
	logger.IncrCounter("scraper.requests")
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	logger.RecordTiming("scraper.request", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}

	if resp.StatusCode != http.StatusOK && (accept == nil || !accept(body)) {
		logger.IncrCounter("scraper.errors")
		return nil, fmt.Errorf("fetching %s: unexpected status code: %d", url, resp.StatusCode)
	}

	return body, nil
}
