// Package feed fetches RSS and Atom feeds and turns their entries into
// articles ready to be summarized.
package feed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"github.com/jdholdren/mldigest/internal/logger"
	"github.com/jdholdren/mldigest/internal/progress"
)

const (
	defaultAttempts  = 3
	defaultBackoff   = 2 * time.Second
	defaultUserAgent = "mldigest/1.0 (+https://github.com/jdholdren/mldigest)"
)

// Fetcher downloads feeds with a bounded number of attempts.
type Fetcher struct {
	client      *http.Client
	attempts    int
	backoff     time.Duration
	userAgent   string
	concurrency int
}

type Option func(*Fetcher)

func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithAttempts sets how many times a feed is requested before giving up.
func WithAttempts(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.attempts = n
		}
	}
}

// WithBackoff sets the pause between two attempts.
func WithBackoff(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.backoff = d
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

// WithConcurrency caps how many feeds are fetched at once. Zero means no cap.
func WithConcurrency(n int) Option {
	return func(f *Fetcher) { f.concurrency = n }
}

func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{Timeout: 20 * time.Second},
		attempts:  defaultAttempts,
		backoff:   defaultBackoff,
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch grabs and parses the feed at feedURL.
//
// Network errors and bad statuses are retried. Once the attempts are used up,
// or if the body isn't a feed, the failure is logged and nil is returned.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) *gofeed.Feed {
	ctx = logger.Ctx(ctx, slog.String("feed_url", feedURL))

	var (
		body    []byte
		attempt int
	)
	b := retry.WithMaxRetries(uint64(f.attempts-1), retry.NewConstant(f.backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++

		byts, err := f.get(ctx, feedURL)
		if err != nil {
			slog.DebugContext(ctx, "feed attempt failed", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		body = byts

		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "error fetching feed", "attempts", attempt, "error", err)
		return nil
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(toUTF8(body)))
	if err != nil {
		slog.ErrorContext(ctx, "error parsing feed", "error", err)
		return nil
	}

	return parsed
}

func (f *Fetcher) get(ctx context.Context, feedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error building request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error getting feed url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	byts, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading feed body: %w", err)
	}

	return byts, nil
}

// FetchAll fetches every feed concurrently and waits for all of them.
//
// Feeds that could not be fetched are left out of the result.
func (f *Fetcher) FetchAll(ctx context.Context, feedURLs []string) []*gofeed.Feed {
	var (
		results = make([]*gofeed.Feed, len(feedURLs))
		counter = progress.New(ctx, "fetching feeds", len(feedURLs))
		g       errgroup.Group
	)
	if f.concurrency > 0 {
		g.SetLimit(f.concurrency)
	}

	for i, u := range feedURLs {
		g.Go(func() error {
			results[i] = f.Fetch(ctx, u)
			counter.Inc()
			return nil
		})
	}
	_ = g.Wait() // Nothing in the group returns an error

	feeds := make([]*gofeed.Feed, 0, len(results))
	for _, fd := range results {
		if fd != nil {
			feeds = append(feeds, fd)
		}
	}

	return feeds
}
