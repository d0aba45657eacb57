// Package extractor turns article URLs into structured content by fetching
// the page and applying ordered DOM heuristics for title, body and date.
package extractor

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"healthquiz/internal/domain/entity"
	"healthquiz/internal/observability/metrics"
	"healthquiz/internal/resilience/circuitbreaker"
)

// Extractor fetches pages and derives ExtractedContent from them.
// A single fetch is never retried. Each host has its own circuit breaker, so
// a dead site never fails fetches from another. Extractor is safe for
// concurrent use.
type Extractor struct {
	client   *http.Client
	config   Config
	now      func() time.Time
	cbConfig circuitbreaker.Config

	mu       sync.Mutex
	breakers map[string]*circuitbreaker.CircuitBreaker
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithClock overrides the time source used for the published-date fallback.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// New builds an Extractor whose HTTP client re-validates every redirect hop.
func New(cfg Config, opts ...Option) *Extractor {
	cbConfig := circuitbreaker.ExtractorConfig()
	// an HTTP status is an answer from a healthy host, not a transport failure
	cbConfig.IsSuccessful = func(err error) bool {
		var fe *FetchError
		return err == nil || (errors.As(err, &fe) && fe.StatusCode != 0)
	}

	e := &Extractor{
		config:   cfg,
		now:      time.Now,
		cbConfig: cbConfig,
		breakers: make(map[string]*circuitbreaker.CircuitBreaker),
	}

	e.client = &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= e.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", ErrTooManyRedirects, len(via))
			}
			if _, err := validateURL(req.URL.String(), e.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract fetches rawURL and returns its content. Failures are *FetchError
// (network, timeout, status, rejected URL) or *ExtractionError (parsing).
// The result is not gated; callers apply entity.ValidateContent.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*entity.ExtractedContent, error) {
	start := time.Now()

	u, err := validateURL(rawURL, e.config.DenyPrivateIPs)
	if err != nil {
		metrics.RecordExtraction(metrics.ExtractionFetchError, time.Since(start))
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	result, err := e.breakerFor(u).Execute(func() (interface{}, error) {
		return e.fetch(ctx, u)
	})
	if err != nil {
		metrics.RecordExtraction(metrics.ExtractionFetchError, time.Since(start))
		var fe *FetchError
		if errors.As(err, &fe) {
			return nil, fe
		}
		// circuit open / too many requests
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	content, err := e.Parse(u, result.([]byte))
	if err != nil {
		metrics.RecordExtraction(metrics.ExtractionParseError, time.Since(start))
		return nil, err
	}

	metrics.RecordExtraction(metrics.ExtractionSuccess, time.Since(start))
	slog.Debug("article extracted",
		slog.String("url", rawURL),
		slog.String("source", content.Source),
		slog.Int("clean_text_bytes", len(content.CleanText)))
	return content, nil
}

// breakerFor returns the breaker for u's host and port, creating it on first use.
func (e *Extractor) breakerFor(u *url.URL) *circuitbreaker.CircuitBreaker {
	host := u.Host
	e.mu.Lock()
	defer e.mu.Unlock()
	cb, ok := e.breakers[host]
	if !ok {
		cfg := e.cbConfig
		cfg.Name = e.cbConfig.Name + ":" + host
		cb = circuitbreaker.New(cfg)
		e.breakers[host] = cb
	}
	return cb
}

// fetch performs one GET bounded by the configured timeout and body size.
func (e *Extractor) fetch(ctx context.Context, u *url.URL) (interface{}, error) {
	reqCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &FetchError{URL: u.String(), Err: fmt.Errorf("%w: %v", ErrInvalidURL, err)}
	}
	req.Header.Set("User-Agent", e.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := e.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return nil, &FetchError{URL: u.String(), Err: fmt.Errorf("%w: request exceeded %v", ErrTimeout, e.config.Timeout)}
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Err != nil {
			return nil, &FetchError{URL: u.String(), Err: urlErr.Err}
		}
		return nil, &FetchError{URL: u.String(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: u.String(), StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.config.MaxBodySize+1))
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return nil, &FetchError{URL: u.String(), Err: fmt.Errorf("%w: body read exceeded %v", ErrTimeout, e.config.Timeout)}
		}
		return nil, &FetchError{URL: u.String(), Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > e.config.MaxBodySize {
		return nil, &FetchError{URL: u.String(), Err: fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, e.config.MaxBodySize)}
	}
	return body, nil
}

// Parse applies the extraction heuristics to an already fetched page.
func (e *Extractor) Parse(pageURL *url.URL, html []byte) (*entity.ExtractedContent, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, &ExtractionError{URL: pageURL.String(), Err: err}
	}

	stripNoise(doc)

	body := Longest(bodyCandidates(doc))
	if body == "" && e.config.ReadabilityFallback {
		body = readableText(pageURL, html)
	}
	if body == "" {
		body = allText(doc.Find("body"))
	}

	return &entity.ExtractedContent{
		Title:       inferTitle(doc),
		CleanText:   NormalizeWhitespace(body),
		Source:      SourceFromURL(pageURL),
		PublishedAt: inferPublishedAt(doc, e.now()),
	}, nil
}

// readableText runs Readability over the raw page; "" when it finds nothing.
func readableText(pageURL *url.URL, html []byte) string {
	article, err := readability.FromReader(bytes.NewReader(html), pageURL)
	if err != nil {
		slog.Debug("readability fallback failed",
			slog.String("url", pageURL.String()),
			slog.Any("error", err))
		return ""
	}
	return article.TextContent
}
