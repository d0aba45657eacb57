package article_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthquiz/internal/domain/entity"
	"healthquiz/internal/handler/http/article"
	artUC "healthquiz/internal/usecase/article"
)

const articleID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"

type stubArticleRepo struct {
	articles []*entity.Article
	listErr  error
}

func (s *stubArticleRepo) List(_ context.Context, limit int) ([]*entity.Article, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	if len(s.articles) > limit {
		return s.articles[:limit], nil
	}
	return s.articles, nil
}

func (s *stubArticleRepo) Get(_ context.Context, id string) (*entity.Article, error) {
	for _, a := range s.articles {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (s *stubArticleRepo) GetByURL(context.Context, string) (*entity.Article, error) { return nil, nil }
func (s *stubArticleRepo) Create(context.Context, *entity.Article) error              { return nil }

func newMux(repo *stubArticleRepo) *http.ServeMux {
	mux := http.NewServeMux()
	article.Register(mux, &artUC.Service{Repo: repo}, nil)
	return mux
}

func TestList_ReturnsArticles(t *testing.T) {
	published := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	repo := &stubArticleRepo{articles: []*entity.Article{{
		ID:          articleID,
		Title:       "Flu season update",
		URL:         "https://cdc.gov/flu",
		Source:      "cdc.gov",
		PublishedAt: published,
		CleanText:   "not exposed",
	}}}

	rec := httptest.NewRecorder()
	newMux(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/articles", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Articles []map[string]any `json:"articles"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Articles, 1)
	assert.Equal(t, "Flu season update", body.Articles[0]["title"])
	assert.Equal(t, "cdc.gov", body.Articles[0]["source"])
	assert.NotContains(t, body.Articles[0], "clean_text")
}

func TestList_EmptyIsArray(t *testing.T) {
	rec := httptest.NewRecorder()
	newMux(&stubArticleRepo{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/articles", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"articles":[]}`, rec.Body.String())
}

func TestList_RepoErrorIsSanitized(t *testing.T) {
	repo := &stubArticleRepo{listErr: errors.New("dial postgres://u:secret@db/x failed")}

	rec := httptest.NewRecorder()
	newMux(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/articles", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestGet(t *testing.T) {
	repo := &stubArticleRepo{articles: []*entity.Article{{ID: articleID, Title: "A"}}}
	mux := newMux(repo)

	tests := []struct {
		name string
		path string
		code int
	}{
		{"found", "/articles/" + articleID, http.StatusOK},
		{"unknown", "/articles/9b2d4f3e-1111-4a2b-8c3d-000000000000", http.StatusNotFound},
		{"malformed", "/articles/42", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}
