package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthquiz/internal/domain/entity"
	"healthquiz/internal/usecase/ingest"
)

/* ─── stubs ─── */

type stubArticles struct {
	mu        sync.Mutex
	byURL     map[string]*entity.Article
	createErr error
	// raceURL simulates another writer inserting the url between lookup and create
	raceURL string
}

func newArticles() *stubArticles { return &stubArticles{byURL: map[string]*entity.Article{}} }

func (s *stubArticles) List(context.Context, int) ([]*entity.Article, error) { return nil, nil }

func (s *stubArticles) Get(_ context.Context, id string) (*entity.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.byURL {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (s *stubArticles) GetByURL(_ context.Context, url string) (*entity.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byURL[url], nil
}

func (s *stubArticles) Create(_ context.Context, a *entity.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	if a.URL == s.raceURL {
		s.byURL[a.URL] = &entity.Article{ID: "winner", URL: a.URL}
		return fmt.Errorf("Create: %w", entity.ErrDuplicate)
	}
	if _, ok := s.byURL[a.URL]; ok {
		return fmt.Errorf("Create: %w", entity.ErrDuplicate)
	}
	s.byURL[a.URL] = a
	return nil
}

type stubExtractor struct {
	pages map[string]*entity.ExtractedContent
	errs  map[string]error
	calls sync.Map
}

func (e *stubExtractor) Extract(_ context.Context, url string) (*entity.ExtractedContent, error) {
	e.calls.Store(url, true)
	if err, ok := e.errs[url]; ok {
		return nil, err
	}
	if c, ok := e.pages[url]; ok {
		return c, nil
	}
	return nil, errors.New("Failed to extract content from " + url + ": HTTP 404")
}

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func longText() string { return strings.Repeat("Hand washing prevents infection. ", 20) }

func newService(a *stubArticles, ex *stubExtractor) *ingest.Service {
	svc := ingest.NewService(a, ex)
	svc.Now = func() time.Time { return now }
	return svc
}

/* ─── IngestURLs ─── */

func TestIngestURLs_MixedOutcomesKeepOrder(t *testing.T) {
	articles := newArticles()
	articles.byURL["https://cdc.gov/old"] = &entity.Article{ID: "existing-id", URL: "https://cdc.gov/old"}
	ex := &stubExtractor{
		pages: map[string]*entity.ExtractedContent{
			"https://cdc.gov/new":   {Title: "Hand Hygiene", CleanText: longText(), Source: "cdc.gov", PublishedAt: now},
			"https://cdc.gov/short": {Title: "Stub", CleanText: "too short", Source: "cdc.gov", PublishedAt: now},
		},
	}

	res, err := newService(articles, ex).IngestURLs(context.Background(), []string{
		"https://cdc.gov/new",
		"https://cdc.gov/old",
		"https://cdc.gov/short",
		"https://cdc.gov/missing",
	})
	require.NoError(t, err)

	require.Len(t, res.Results, 4)
	assert.Equal(t, ingest.Summary{Total: 4, Success: 1, Skipped: 1, Failed: 2}, res.Summary)

	assert.Equal(t, ingest.StatusSuccess, res.Results[0].Status)
	assert.Equal(t, "Hand Hygiene", res.Results[0].Title)
	assert.NotEmpty(t, res.Results[0].ArticleID)

	assert.Equal(t, ingest.StatusSkipped, res.Results[1].Status)
	assert.Equal(t, ingest.MsgAlreadyExists, res.Results[1].Message)
	assert.Equal(t, "existing-id", res.Results[1].ArticleID)
	_, extracted := ex.calls.Load("https://cdc.gov/old")
	assert.False(t, extracted, "duplicates are skipped before fetching")

	assert.Equal(t, ingest.StatusFailed, res.Results[2].Status)
	assert.Equal(t, ingest.MsgValidationFailed, res.Results[2].Message)

	assert.Equal(t, ingest.StatusFailed, res.Results[3].Status)
	assert.Contains(t, res.Results[3].Message, "HTTP 404")

	stored := articles.byURL["https://cdc.gov/new"]
	require.NotNil(t, stored)
	assert.Equal(t, entity.ArticleStatusProcessed, stored.Status)
	assert.Equal(t, "cdc.gov", stored.Source)
	assert.Equal(t, now, stored.CreatedAt)
}

func TestIngestURLs_DuplicateInsertRaceIsSkipped(t *testing.T) {
	articles := newArticles()
	articles.raceURL = "https://who.int/a"
	ex := &stubExtractor{pages: map[string]*entity.ExtractedContent{
		"https://who.int/a": {Title: "T", CleanText: longText(), Source: "who.int", PublishedAt: now},
	}}

	res, err := newService(articles, ex).IngestURLs(context.Background(), []string{"https://who.int/a"})

	require.NoError(t, err)
	assert.Equal(t, ingest.StatusSkipped, res.Results[0].Status)
	assert.Equal(t, "winner", res.Results[0].ArticleID)
}

func TestIngestURLs_StorageFailure(t *testing.T) {
	articles := newArticles()
	articles.createErr = errors.New("disk full")
	ex := &stubExtractor{pages: map[string]*entity.ExtractedContent{
		"https://nih.gov/a": {Title: "T", CleanText: longText(), Source: "nih.gov", PublishedAt: now},
	}}

	res, err := newService(articles, ex).IngestURLs(context.Background(), []string{"https://nih.gov/a"})

	require.NoError(t, err)
	assert.Equal(t, ingest.StatusFailed, res.Results[0].Status)
	assert.Contains(t, res.Results[0].Message, "disk full")
}

func TestIngestURLs_Empty(t *testing.T) {
	_, err := newService(newArticles(), &stubExtractor{}).IngestURLs(context.Background(), nil)
	assert.ErrorIs(t, err, ingest.ErrNoURLs)
}

func TestIngestURLs_ManyConcurrent(t *testing.T) {
	ex := &stubExtractor{pages: map[string]*entity.ExtractedContent{}}
	var urls []string
	for i := 0; i < 25; i++ {
		u := fmt.Sprintf("https://medlineplus.gov/%d", i)
		urls = append(urls, u)
		ex.pages[u] = &entity.ExtractedContent{Title: fmt.Sprintf("T%d", i), CleanText: longText(), Source: "medlineplus.gov", PublishedAt: now}
	}

	res, err := newService(newArticles(), ex).IngestURLs(context.Background(), urls)

	require.NoError(t, err)
	assert.Equal(t, 25, res.Summary.Success)
	for i, r := range res.Results {
		assert.Equal(t, urls[i], r.URL)
		assert.Equal(t, fmt.Sprintf("T%d", i), r.Title)
	}
}

/* ─── IngestArticles ─── */

func sampleInput() ingest.ArticleInput {
	return ingest.ArticleInput{
		Title:         "Measles cases rise",
		ArticleURL:    "https://www.who.int/news/measles",
		Date:          "2024-02-10",
		Takeaway:      "Vaccination coverage has dropped.",
		Summary:       strings.Repeat("Measles spreads quickly among unvaccinated groups. ", 12),
		Organizations: []string{"WHO", "UNICEF"},
		Publisher:     "World Health Organization",
		Locations:     []string{"Europe"},
		MatchingTerms: []string{"measles", "vaccination"},
	}
}

func TestArticleInput_CleanText(t *testing.T) {
	in := ingest.ArticleInput{
		Takeaway:      "T",
		Summary:       "S",
		Organizations: []string{"a", "b"},
		Locations:     []string{"c"},
		MatchingTerms: []string{"d"},
	}

	assert.Equal(t, "T\n\nS\n\nOrganizations: a, b\nLocations: c\nRelevant Terms: d", in.CleanText())
}

func TestIngestArticles(t *testing.T) {
	articles := newArticles()
	noPublisher := sampleInput()
	noPublisher.ArticleURL = "https://www.cdc.gov/measles"
	noPublisher.Publisher = ""
	noPublisher.Date = "not a date"
	short := sampleInput()
	short.ArticleURL = "https://who.int/short"
	short.Summary = "brief"
	badURL := sampleInput()
	badURL.ArticleURL = "javascript:alert(1)"

	svc := newService(articles, &stubExtractor{})
	res, err := svc.IngestArticles(context.Background(), []ingest.ArticleInput{sampleInput(), noPublisher, short, badURL, sampleInput()})
	require.NoError(t, err)

	assert.Equal(t, ingest.Summary{Total: 5, Success: 2, Skipped: 1, Failed: 2}, res.Summary)
	assert.Equal(t, ingest.StatusSkipped, res.Results[4].Status, "second submission of the same url")
	assert.Equal(t, ingest.MsgValidationFailed, res.Results[2].Message)

	first := articles.byURL["https://www.who.int/news/measles"]
	require.NotNil(t, first)
	assert.Equal(t, "World Health Organization", first.Source)
	assert.Equal(t, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), first.PublishedAt)
	assert.Contains(t, first.CleanText, "Organizations: WHO, UNICEF")

	derived := articles.byURL["https://www.cdc.gov/measles"]
	require.NotNil(t, derived)
	assert.Equal(t, "cdc.gov", derived.Source)
	assert.Equal(t, now, derived.PublishedAt)
}

func TestIngestArticles_Empty(t *testing.T) {
	_, err := newService(newArticles(), &stubExtractor{}).IngestArticles(context.Background(), nil)
	assert.ErrorIs(t, err, ingest.ErrNoArticles)
}
