// Package feed discovers article links from RSS/Atom feeds for scheduled
// ingestion. It uses the gofeed library with circuit breaker and retry.
package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"

	"healthquiz/internal/resilience/circuitbreaker"
	"healthquiz/internal/resilience/retry"
)

const userAgent = "HealthQuizBot/1.0"

// maxParallelFeeds bounds concurrent feed requests in Discover.
const maxParallelFeeds = 4

// Item is one entry of a feed.
type Item struct {
	Title       string
	URL         string
	PublishedAt time.Time
}

// Fetcher reads RSS/Atom feeds.
type Fetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewFetcher creates a Fetcher using client for HTTP.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		retryConfig:    retry.FeedFetchConfig(),
	}
}

// Fetch retrieves and parses the feed at feedURL.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]Item, error) {
	var items []Item

	err := retry.WithBackoff(ctx, f.retryConfig, func() error {
		res, err := f.circuitBreaker.Execute(func() (interface{}, error) {
			return f.doFetch(ctx, feedURL)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("feed fetch circuit breaker open, request rejected",
					slog.String("url", feedURL),
					slog.String("state", f.circuitBreaker.State().String()))
			}
			return err
		}
		items = res.([]Item)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", feedURL, err)
	}
	return items, nil
}

func (f *Fetcher) doFetch(ctx context.Context, feedURL string) ([]Item, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = userAgent
	fp.Client = f.client

	parsed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) {
			return nil, &retry.HTTPError{StatusCode: httpErr.StatusCode, Message: httpErr.Status}
		}
		return nil, err
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		if it.Link == "" {
			continue
		}
		var pubAt time.Time
		switch {
		case it.PublishedParsed != nil:
			pubAt = *it.PublishedParsed
		case it.UpdatedParsed != nil:
			pubAt = *it.UpdatedParsed
		}
		items = append(items, Item{Title: it.Title, URL: it.Link, PublishedAt: pubAt})
	}
	return items, nil
}

// Discover fetches every feed and returns their item links, deduplicated and
// in feed order. Feeds that fail are skipped; their errors are joined into
// the returned error alongside whatever links were found.
func (f *Fetcher) Discover(ctx context.Context, feedURLs []string) ([]string, error) {
	perFeed := make([][]Item, len(feedURLs))
	var (
		mu   sync.Mutex
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFeeds)
	for i, u := range feedURLs {
		g.Go(func() error {
			items, err := f.Fetch(gctx, u)
			if err != nil {
				slog.Warn("feed skipped", slog.String("url", u), slog.Any("error", err))
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return nil
			}
			perFeed[i] = items
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]struct{})
	var links []string
	for _, items := range perFeed {
		for _, it := range items {
			if _, dup := seen[it.URL]; dup {
				continue
			}
			seen[it.URL] = struct{}{}
			links = append(links, it.URL)
		}
	}
	return links, errors.Join(errs...)
}
