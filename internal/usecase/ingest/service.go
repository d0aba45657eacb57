package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/sync/errgroup"

	"healthquiz/internal/domain/entity"
	"healthquiz/internal/observability/metrics"
	"healthquiz/internal/repository"
)

// DefaultParallelism bounds concurrent page fetches in IngestURLs.
const DefaultParallelism = 4

// ContentExtractor fetches a page and returns its extracted content.
type ContentExtractor interface {
	Extract(ctx context.Context, url string) (*entity.ExtractedContent, error)
}

// Status is the per-item ingestion outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Result is the outcome for one URL or submitted article.
type Result struct {
	URL       string `json:"url"`
	Status    Status `json:"status"`
	Message   string `json:"message"`
	ArticleID string `json:"articleId,omitempty"`
	Title     string `json:"title,omitempty"`
}

// Summary counts results by status.
type Summary struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// BatchResult holds results in input order.
type BatchResult struct {
	Results []Result `json:"results"`
	Summary Summary  `json:"summary"`
}

func newBatch(results []Result) *BatchResult {
	b := &BatchResult{Results: results, Summary: Summary{Total: len(results)}}
	for _, r := range results {
		switch r.Status {
		case StatusSuccess:
			b.Summary.Success++
		case StatusSkipped:
			b.Summary.Skipped++
		default:
			b.Summary.Failed++
		}
	}
	return b
}

// Service ingests articles.
type Service struct {
	Articles  repository.ArticleRepository
	Extractor ContentExtractor
	// Parallelism bounds concurrent extractions; <= 0 means DefaultParallelism.
	Parallelism int
	Now         func() time.Time
}

// NewService wires a Service with default parallelism.
func NewService(articles repository.ArticleRepository, ex ContentExtractor) *Service {
	return &Service{Articles: articles, Extractor: ex, Parallelism: DefaultParallelism, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// IngestURLs extracts and stores each URL. URLs are processed concurrently
// but results keep input order, and one URL's failure never affects another.
func (s *Service) IngestURLs(ctx context.Context, urls []string) (*BatchResult, error) {
	if len(urls) == 0 {
		return nil, ErrNoURLs
	}

	limit := s.Parallelism
	if limit <= 0 {
		limit = DefaultParallelism
	}

	results := make([]Result, len(urls))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, raw := range urls {
		g.Go(func() error {
			results[i] = s.ingestURL(ctx, strings.TrimSpace(raw))
			return nil
		})
	}
	_ = g.Wait()

	batch := newBatch(results)
	slog.Info("url ingestion completed",
		slog.Int("total", batch.Summary.Total),
		slog.Int("success", batch.Summary.Success),
		slog.Int("skipped", batch.Summary.Skipped),
		slog.Int("failed", batch.Summary.Failed))
	return batch, nil
}

func (s *Service) ingestURL(ctx context.Context, rawURL string) Result {
	res := Result{URL: rawURL}

	existing, err := s.Articles.GetByURL(ctx, rawURL)
	if err != nil {
		return failed(res, fmt.Errorf("lookup existing article: %w", err))
	}
	if existing != nil {
		return skipped(res, existing.ID)
	}

	content, err := s.Extractor.Extract(ctx, rawURL)
	if err != nil {
		return failed(res, err)
	}
	if err := entity.ValidateContent(content); err != nil {
		return rejected(res, err)
	}

	return s.store(ctx, res, &entity.Article{
		URL:         rawURL,
		Title:       content.Title,
		Source:      content.Source,
		PublishedAt: content.PublishedAt,
		CleanText:   content.CleanText,
	})
}

// ArticleInput is a pre-summarized article from a structured feed.
type ArticleInput struct {
	Title            string   `json:"title"`
	ArticleURL       string   `json:"articleURL"`
	DateArticleAdded string   `json:"dateArticleAdded,omitempty"`
	Date             string   `json:"date"`
	Takeaway         string   `json:"takeaway"`
	Summary          string   `json:"summary"`
	Organizations    []string `json:"organizations"`
	Publisher        string   `json:"publisher"`
	Locations        []string `json:"locations"`
	MatchingTerms    []string `json:"matching_terms"`
}

// CleanText renders the submission as the article body used for generation.
func (in ArticleInput) CleanText() string {
	return fmt.Sprintf("%s\n\n%s\n\nOrganizations: %s\nLocations: %s\nRelevant Terms: %s",
		in.Takeaway,
		in.Summary,
		strings.Join(in.Organizations, ", "),
		strings.Join(in.Locations, ", "),
		strings.Join(in.MatchingTerms, ", "))
}

// IngestArticles stores structured submissions without fetching anything.
// The same gate and duplicate rules as IngestURLs apply.
func (s *Service) IngestArticles(ctx context.Context, items []ArticleInput) (*BatchResult, error) {
	if len(items) == 0 {
		return nil, ErrNoArticles
	}

	results := make([]Result, 0, len(items))
	for _, in := range items {
		results = append(results, s.ingestArticle(ctx, in))
	}

	batch := newBatch(results)
	slog.Info("article ingestion completed",
		slog.Int("total", batch.Summary.Total),
		slog.Int("success", batch.Summary.Success),
		slog.Int("skipped", batch.Summary.Skipped),
		slog.Int("failed", batch.Summary.Failed))
	return batch, nil
}

func (s *Service) ingestArticle(ctx context.Context, in ArticleInput) Result {
	rawURL := strings.TrimSpace(in.ArticleURL)
	res := Result{URL: rawURL}

	if err := entity.ValidateURLFormat(rawURL); err != nil {
		return failed(res, err)
	}

	existing, err := s.Articles.GetByURL(ctx, rawURL)
	if err != nil {
		return failed(res, fmt.Errorf("lookup existing article: %w", err))
	}
	if existing != nil {
		return skipped(res, existing.ID)
	}

	source := strings.TrimSpace(in.Publisher)
	if source == "" {
		if u, err := url.Parse(rawURL); err == nil {
			source = entity.SourceDomain(u)
		}
	}
	published := s.now()
	if d := strings.TrimSpace(in.Date); d != "" {
		if t, err := dateparse.ParseIn(d, time.UTC); err == nil {
			published = t
		}
	}

	content := &entity.ExtractedContent{
		Title:       strings.TrimSpace(in.Title),
		CleanText:   in.CleanText(),
		Source:      source,
		PublishedAt: published,
	}
	if err := entity.ValidateContent(content); err != nil {
		return rejected(res, err)
	}

	return s.store(ctx, res, &entity.Article{
		URL:         rawURL,
		Title:       content.Title,
		Source:      content.Source,
		PublishedAt: content.PublishedAt,
		CleanText:   content.CleanText,
	})
}

// store inserts a gated article as processed. A unique-url conflict means a
// concurrent ingestion won and is reported as skipped.
func (s *Service) store(ctx context.Context, res Result, a *entity.Article) Result {
	now := s.now()
	a.ID = entity.NewID()
	a.Status = entity.ArticleStatusProcessed
	a.CreatedAt, a.UpdatedAt = now, now

	if err := s.Articles.Create(ctx, a); err != nil {
		if errors.Is(err, entity.ErrDuplicate) {
			existing, lookupErr := s.Articles.GetByURL(ctx, a.URL)
			if lookupErr == nil && existing != nil {
				return skipped(res, existing.ID)
			}
			return skipped(res, "")
		}
		return failed(res, fmt.Errorf("store article: %w", err))
	}

	metrics.RecordIngest(metrics.IngestCreated)
	slog.Info("article ingested",
		slog.String("article_id", a.ID),
		slog.String("url", a.URL),
		slog.String("source", a.Source))
	res.Status, res.Message = StatusSuccess, MsgIngested
	res.ArticleID, res.Title = a.ID, a.Title
	return res
}

func skipped(res Result, articleID string) Result {
	metrics.RecordIngest(metrics.IngestDuplicate)
	res.Status, res.Message, res.ArticleID = StatusSkipped, MsgAlreadyExists, articleID
	return res
}

func rejected(res Result, err error) Result {
	metrics.RecordIngest(metrics.IngestRejected)
	slog.Info("article rejected by content gate",
		slog.String("url", res.URL),
		slog.Any("reason", err))
	res.Status, res.Message = StatusFailed, MsgValidationFailed
	return res
}

func failed(res Result, err error) Result {
	metrics.RecordIngest(metrics.IngestFailed)
	slog.Warn("article ingestion failed",
		slog.String("url", res.URL),
		slog.Any("error", err))
	res.Status, res.Message = StatusFailed, err.Error()
	return res
}
