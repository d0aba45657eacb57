package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthquiz/internal/common/pagination"
)

func TestParseQueryParams(t *testing.T) {
	cfg := pagination.DefaultConfig()

	tests := []struct {
		name    string
		query   string
		want    pagination.Params
		wantErr bool
	}{
		{"defaults", "", pagination.Params{Page: 1, Limit: 50}, false},
		{"explicit", "?page=3&limit=20", pagination.Params{Page: 3, Limit: 20}, false},
		{"zero page", "?page=0", pagination.Params{}, true},
		{"non numeric limit", "?limit=abc", pagination.Params{}, true},
		{"limit over max", "?limit=201", pagination.Params{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest("GET", "/admin/questions"+tt.query, nil)
			got, err := pagination.ParseQueryParams(r, cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid query parameter")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParams_Offset(t *testing.T) {
	assert.Equal(t, 0, pagination.Params{Page: 1, Limit: 50}.Offset())
	assert.Equal(t, 100, pagination.Params{Page: 3, Limit: 50}.Offset())
}

func TestNewMetadata(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		pages int
	}{
		{0, 50, 1},
		{10, 50, 1},
		{50, 50, 1},
		{51, 50, 2},
		{250, 50, 5},
	}

	for _, tt := range tests {
		md := pagination.NewMetadata(pagination.Params{Page: 1, Limit: tt.limit}, tt.total)
		assert.Equal(t, tt.pages, md.Pages, "total=%d limit=%d", tt.total, tt.limit)
		assert.Equal(t, tt.total, md.Total)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PAGINATION_DEFAULT_LIMIT", "25")
	t.Setenv("PAGINATION_MAX_LIMIT", "10")

	assert.Equal(t, pagination.DefaultConfig(), pagination.LoadFromEnv(), "max below default falls back")
}
