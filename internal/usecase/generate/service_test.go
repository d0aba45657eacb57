package generate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthquiz/internal/domain/entity"
	"healthquiz/internal/repository"
	"healthquiz/internal/usecase/generate"
)

type stubArticles struct {
	repository.ArticleRepository
	articles map[string]*entity.Article
	err      error
}

func (s *stubArticles) Get(_ context.Context, id string) (*entity.Article, error) {
	return s.articles[id], s.err
}

type stubQuestions struct {
	repository.QuestionRepository
	existing  int
	created   []*entity.Question
	createErr error
}

func (s *stubQuestions) CountByArticle(context.Context, string) (int, error) { return s.existing, nil }

func (s *stubQuestions) Create(_ context.Context, q *entity.Question) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, q)
	return nil
}

type stubGenerator struct {
	drafts []entity.QuestionDraft
	err    error
	got    generate.ArticleInput
	calls  int
}

func (g *stubGenerator) Generate(_ context.Context, in generate.ArticleInput) ([]entity.QuestionDraft, error) {
	g.calls++
	g.got = in
	return g.drafts, g.err
}

type stubVerifier struct {
	verdicts map[string]entity.Verdict
	err      error
}

func (v *stubVerifier) Verify(_ context.Context, d entity.QuestionDraft) (entity.Verdict, error) {
	if v.err != nil {
		return "", v.err
	}
	return v.verdicts[d.Prompt], nil
}

func draft(prompt string, answer int) entity.QuestionDraft {
	return entity.QuestionDraft{
		Prompt:      prompt,
		Choices:     []string{"a", "b", "c", "d"},
		AnswerIndex: answer,
		Explanation: "because",
		SourceQuote: "quote",
	}
}

func article() *stubArticles {
	return &stubArticles{articles: map[string]*entity.Article{
		"a1": {ID: "a1", URL: "https://cdc.gov/flu", Title: "Flu season", CleanText: "body"},
	}}
}

func TestGenerateForArticle_StoresDrafts(t *testing.T) {
	questions := &stubQuestions{}
	gen := &stubGenerator{drafts: []entity.QuestionDraft{draft("Q1", 0), draft("Q2", 3), draft("Q3", 2)}}
	ver := &stubVerifier{verdicts: map[string]entity.Verdict{
		"Q1": entity.VerdictApproved,
		"Q2": entity.VerdictNeedsRevision,
		"Q3": entity.VerdictApproved,
	}}
	svc := generate.NewService(article(), questions, gen, ver)

	res, err := svc.GenerateForArticle(context.Background(), "a1")
	require.NoError(t, err)

	assert.Equal(t, generate.ArticleInput{URL: "https://cdc.gov/flu", Title: "Flu season", CleanText: "body"}, gen.got)
	assert.False(t, res.AlreadyExists)
	assert.Equal(t, 3, res.Count)
	require.Len(t, questions.created, 3, "verdicts are advisory")
	assert.Equal(t, generate.ItemStatus(entity.VerdictNeedsRevision), res.Items[1].Status)
	assert.Equal(t, 4, res.Items[1].ChoiceCount)

	q2 := questions.created[1]
	assert.Equal(t, "a1", q2.ArticleID)
	assert.Equal(t, entity.DifficultyMedium, q2.Difficulty)
	assert.True(t, q2.Reviewed)
	assert.Equal(t, entity.QuestionStatusActive, q2.Status)
	assert.True(t, q2.Choices[3].IsCorrect)
	assert.False(t, q2.CreatedAt.IsZero())
}

func TestGenerateForArticle_AlreadyHasQuestions(t *testing.T) {
	gen := &stubGenerator{}
	svc := generate.NewService(article(), &stubQuestions{existing: 2}, gen, nil)

	res, err := svc.GenerateForArticle(context.Background(), "a1")

	require.NoError(t, err)
	assert.True(t, res.AlreadyExists)
	assert.Equal(t, 2, res.Count)
	assert.Zero(t, gen.calls)
}

func TestGenerateForArticle_NotFound(t *testing.T) {
	svc := generate.NewService(article(), &stubQuestions{}, &stubGenerator{}, nil)

	_, err := svc.GenerateForArticle(context.Background(), "missing")

	assert.ErrorIs(t, err, generate.ErrArticleNotFound)
}

func TestGenerateForArticle_MalformedDraftSkipped(t *testing.T) {
	bad := draft("bad", 5)
	short := draft("short", 0)
	short.Choices = short.Choices[:2]
	questions := &stubQuestions{}
	svc := generate.NewService(article(), questions, &stubGenerator{drafts: []entity.QuestionDraft{bad, draft("ok", 1), short}}, nil)

	res, err := svc.GenerateForArticle(context.Background(), "a1")

	require.NoError(t, err)
	require.Len(t, questions.created, 1)
	assert.Equal(t, "ok", questions.created[0].Prompt)
	assert.Equal(t, generate.ItemFailed, res.Items[0].Status)
	assert.Equal(t, generate.ItemStatus(entity.VerdictApproved), res.Items[1].Status)
	assert.Equal(t, generate.ItemFailed, res.Items[2].Status)
}

func TestGenerateForArticle_VerifierErrorStillStores(t *testing.T) {
	questions := &stubQuestions{}
	svc := generate.NewService(article(), questions, &stubGenerator{drafts: []entity.QuestionDraft{draft("Q", 0)}},
		&stubVerifier{err: errors.New("rate limited")})

	res, err := svc.GenerateForArticle(context.Background(), "a1")

	require.NoError(t, err)
	assert.Len(t, questions.created, 1)
	assert.Equal(t, generate.ItemStatus(entity.VerdictError), res.Items[0].Status)
}

func TestGenerateForArticle_GeneratorFailure(t *testing.T) {
	svc := generate.NewService(article(), &stubQuestions{}, &stubGenerator{err: errors.New("boom")}, nil)

	_, err := svc.GenerateForArticle(context.Background(), "a1")

	assert.ErrorContains(t, err, "boom")
}

func TestGenerateForArticle_NoDrafts(t *testing.T) {
	svc := generate.NewService(article(), &stubQuestions{}, &stubGenerator{}, nil)

	_, err := svc.GenerateForArticle(context.Background(), "a1")

	assert.ErrorIs(t, err, generate.ErrNoDrafts)
}

func TestGenerateForArticle_OnlyMalformedDrafts(t *testing.T) {
	questions := &stubQuestions{}
	svc := generate.NewService(article(), questions,
		&stubGenerator{drafts: []entity.QuestionDraft{draft("Q1", 4), draft("Q2", -1)}}, nil)

	_, err := svc.GenerateForArticle(context.Background(), "a1")

	assert.ErrorIs(t, err, generate.ErrNoDrafts)
	assert.Empty(t, questions.created)
}

func TestGenerateForArticle_StoreFailure(t *testing.T) {
	svc := generate.NewService(article(), &stubQuestions{createErr: errors.New("tx aborted")},
		&stubGenerator{drafts: []entity.QuestionDraft{draft("Q", 0)}}, nil)

	res, err := svc.GenerateForArticle(context.Background(), "a1")

	require.NoError(t, err)
	assert.Empty(t, res.Questions)
	assert.Equal(t, generate.ItemFailed, res.Items[0].Status)
	assert.Equal(t, "tx aborted", res.Items[0].Error)
}
