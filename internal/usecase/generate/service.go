package generate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"healthquiz/internal/domain/entity"
	"healthquiz/internal/observability/metrics"
	"healthquiz/internal/repository"
)

// ArticleInput is what a Generator sees of an article.
type ArticleInput struct {
	URL       string
	Title     string
	CleanText string
}

// Generator drafts multiple-choice questions from an article.
type Generator interface {
	Generate(ctx context.Context, in ArticleInput) ([]entity.QuestionDraft, error)
}

// Verifier reviews a draft. Its verdict is advisory and never blocks storage.
type Verifier interface {
	Verify(ctx context.Context, d entity.QuestionDraft) (entity.Verdict, error)
}

// ItemStatus is the per-draft outcome. It is a verdict for stored drafts and
// ItemFailed when the draft could not be stored.
type ItemStatus string

// ItemFailed marks a draft that was generated but not stored.
const ItemFailed ItemStatus = "failed"

// Item reports one generated draft.
type Item struct {
	QuestionID  string     `json:"questionId,omitempty"`
	Prompt      string     `json:"prompt"`
	Status      ItemStatus `json:"status"`
	ChoiceCount int        `json:"choiceCount,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Result is the outcome of GenerateForArticle.
type Result struct {
	ArticleID     string `json:"articleId"`
	ArticleTitle  string `json:"articleTitle"`
	AlreadyExists bool   `json:"already_exists"`
	// Count is the number of existing questions when AlreadyExists,
	// otherwise the number of drafts the generator returned.
	Count     int                `json:"count"`
	Items     []Item             `json:"results,omitempty"`
	Questions []*entity.Question `json:"-"`
}

// Service generates and stores questions for articles.
type Service struct {
	Articles  repository.ArticleRepository
	Questions repository.QuestionRepository
	Generator Generator
	Verifier  Verifier
	Now       func() time.Time
}

// NewService wires a Service. verifier may be nil, in which case every
// stored draft is reported as approved.
func NewService(articles repository.ArticleRepository, questions repository.QuestionRepository, gen Generator, verifier Verifier) *Service {
	return &Service{Articles: articles, Questions: questions, Generator: gen, Verifier: verifier, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// GenerateForArticle drafts questions for the article and stores each valid
// draft as an active reviewed question. Articles that already have questions
// are left alone.
func (s *Service) GenerateForArticle(ctx context.Context, articleID string) (*Result, error) {
	article, err := s.Articles.Get(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if article == nil {
		return nil, ErrArticleNotFound
	}

	res := &Result{ArticleID: article.ID, ArticleTitle: article.Title}

	existing, err := s.Questions.CountByArticle(ctx, article.ID)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	if existing > 0 {
		res.AlreadyExists, res.Count = true, existing
		return res, nil
	}

	start := time.Now()
	drafts, err := s.Generator.Generate(ctx, ArticleInput{
		URL:       article.URL,
		Title:     article.Title,
		CleanText: article.CleanText,
	})
	metrics.RecordGeneration(err == nil, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}
	if len(drafts) == 0 {
		return nil, ErrNoDrafts
	}
	res.Count = len(drafts)

	usable := 0
	for _, d := range drafts {
		if err := d.Validate(); err != nil {
			slog.WarnContext(ctx, "discarding malformed draft",
				slog.String("article_id", article.ID),
				slog.String("prompt", d.Prompt),
				slog.Any("error", err))
			res.Items = append(res.Items, Item{Prompt: d.Prompt, Status: ItemFailed, Error: err.Error()})
			continue
		}

		usable++
		verdict := s.verify(ctx, d)

		q := d.Question(article.ID)
		now := s.now()
		q.CreatedAt, q.UpdatedAt = now, now
		if err := s.Questions.Create(ctx, q); err != nil {
			slog.ErrorContext(ctx, "failed to store question",
				slog.String("article_id", article.ID),
				slog.Any("error", err))
			res.Items = append(res.Items, Item{Prompt: d.Prompt, Status: ItemFailed, Error: err.Error()})
			continue
		}

		res.Questions = append(res.Questions, q)
		res.Items = append(res.Items, Item{
			QuestionID:  q.ID,
			Prompt:      q.Prompt,
			Status:      ItemStatus(verdict),
			ChoiceCount: len(q.Choices),
		})
	}

	if usable == 0 {
		return nil, ErrNoDrafts
	}

	slog.InfoContext(ctx, "questions generated",
		slog.String("article_id", article.ID),
		slog.Int("drafts", len(drafts)),
		slog.Int("stored", len(res.Questions)))
	return res, nil
}

func (s *Service) verify(ctx context.Context, d entity.QuestionDraft) entity.Verdict {
	if s.Verifier == nil {
		return entity.VerdictApproved
	}
	v, err := s.Verifier.Verify(ctx, d)
	if err != nil {
		slog.WarnContext(ctx, "question verification failed",
			slog.String("prompt", d.Prompt),
			slog.Any("error", err))
		return entity.VerdictError
	}
	return v
}
