package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/imdbapi/api"
	"github.com/use-agent/imdbapi/cache"
	"github.com/use-agent/imdbapi/config"
	"github.com/use-agent/imdbapi/models"
	"github.com/use-agent/imdbapi/scraper"
)

const apiKey = "test-key"

type fakeIMDb struct {
	mu       sync.Mutex
	titles   map[string]*models.Title
	results  []models.SearchResult
	titleReq []string
	queries  []scraper.SearchQuery
}

func (f *fakeIMDb) FindTitle(_ context.Context, id, locale string, episodes bool) (*models.Title, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.titleReq = append(f.titleReq, id+"|"+locale)
	if t, ok := f.titles[id]; ok {
		return t, nil
	}
	return nil, models.ExtractionError("structured data block not found", nil)
}

func (f *fakeIMDb) Search(_ context.Context, q scraper.SearchQuery) []models.SearchResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	return f.results
}

func (f *fakeIMDb) titleCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.titleReq)
}

type fakeStats struct{ info models.BrowserInfo }

func (s fakeStats) Stats() models.BrowserInfo { return s.info }

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Mode = "test"
	cfg.Auth = config.AuthConfig{Enabled: true, APIKeys: []string{apiKey}}
	cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000}
	return cfg
}

func newFake() *fakeIMDb {
	year := 2010
	return &fakeIMDb{
		titles: map[string]*models.Title{
			"tt0111161": {ID: "tt0111161", Title: "The Shawshank Redemption", Type: models.ContentTypeMovie, Year: 1994, Genres: []string{"Drama"}},
		},
		results: []models.SearchResult{
			{ID: "tt1375666", Title: "Inception", Type: models.ContentTypeMovie, Year: &year},
		},
	}
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("X-API-Key", apiKey)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *models.ErrorDetail {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name     string
		running  bool
		openTabs int
		want     string
	}{
		{"running", true, 3, "healthy"},
		{"down", false, 0, "degraded"},
		{"saturated", true, 9, "degraded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := fakeStats{models.BrowserInfo{Running: tt.running, Generation: 2, OpenTabs: tt.openTabs, MaxTabs: 10}}
			r := api.NewRouter(newFake(), stats, testConfig(), nil, time.Now())

			// No API key: health is public.
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			require.Equal(t, http.StatusOK, w.Code)

			var resp models.HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.want, resp.Status)
			assert.Equal(t, uint64(2), resp.Browser.Generation)
			assert.NotEmpty(t, resp.Version)
		})
	}
}

func TestTitle(t *testing.T) {
	fake := newFake()
	r := api.NewRouter(fake, fakeStats{}, testConfig(), nil, time.Now())

	t.Run("found", func(t *testing.T) {
		w := do(t, r, http.MethodGet, "/imdb/title/tt0111161?language=fr")
		require.Equal(t, http.StatusOK, w.Code)

		var title models.Title
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &title))
		assert.Equal(t, "The Shawshank Redemption", title.Title)
		assert.Equal(t, 1994, title.Year)
		assert.Contains(t, fake.titleReq, "tt0111161|fr")
	})

	t.Run("unsupported language falls back", func(t *testing.T) {
		w := do(t, r, http.MethodGet, "/imdb/title/tt0111161?language=xx")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, fake.titleReq, "tt0111161|en")
	})

	t.Run("extraction failure is not found", func(t *testing.T) {
		w := do(t, r, http.MethodGet, "/imdb/title/tt9999999")
		require.Equal(t, http.StatusNotFound, w.Code)
		detail := decodeError(t, w)
		assert.Equal(t, models.ErrCodeNotFound, detail.Code)
		assert.Contains(t, detail.Message, models.ErrCodeExtraction)
	})

	t.Run("malformed id", func(t *testing.T) {
		w := do(t, r, http.MethodGet, "/imdb/title/nm0000151")
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, models.ErrCodeInvalidInput, decodeError(t, w).Code)
	})

	t.Run("malformed episodes flag", func(t *testing.T) {
		w := do(t, r, http.MethodGet, "/imdb/title/tt0111161?episodes=maybe")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTitle_RequiresKey(t *testing.T) {
	r := api.NewRouter(newFake(), fakeStats{}, testConfig(), nil, time.Now())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/imdb/title/tt0111161", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, models.ErrCodeUnauthorized, decodeError(t, w).Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/imdb/title/tt0111161?apikey="+apiKey, nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTitle_CacheAndInvalidate(t *testing.T) {
	fake := newFake()
	cc := cache.New(time.Minute, 10)
	defer cc.Close()
	r := api.NewRouter(fake, fakeStats{}, testConfig(), cc, time.Now())

	first := do(t, r, http.MethodGet, "/imdb/title/tt0111161")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "miss", first.Header().Get("X-Cache"))

	second := do(t, r, http.MethodGet, "/imdb/title/tt0111161")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "hit", second.Header().Get("X-Cache"))
	assert.Equal(t, 1, fake.titleCalls())

	// A different locale is a different entry.
	do(t, r, http.MethodGet, "/imdb/title/tt0111161?language=de")
	assert.Equal(t, 2, fake.titleCalls())

	w := do(t, r, http.MethodDelete, "/imdb/cache/title/tt0111161")
	require.Equal(t, http.StatusOK, w.Code)
	var inv models.InvalidateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inv))
	assert.Equal(t, 2, inv.Removed)

	do(t, r, http.MethodGet, "/imdb/title/tt0111161")
	assert.Equal(t, 3, fake.titleCalls())
}

func TestSearch(t *testing.T) {
	fake := newFake()
	r := api.NewRouter(fake, fakeStats{}, testConfig(), nil, time.Now())

	w := do(t, r, http.MethodGet, "/imdb/search?title=inception&type=movie&year=2010&language=es")
	require.Equal(t, http.StatusOK, w.Code)

	var results []models.SearchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "tt1375666", results[0].ID)

	require.Len(t, fake.queries, 1)
	assert.Equal(t, scraper.SearchQuery{Query: "inception", Locale: "es", Type: models.ContentTypeMovie, Year: 2010}, fake.queries[0])
}

func TestSearch_Validation(t *testing.T) {
	r := api.NewRouter(newFake(), fakeStats{}, testConfig(), nil, time.Now())

	for _, target := range []string{
		"/imdb/search",
		"/imdb/search?title=x&type=unknown",
		"/imdb/search?title=x&year=soon",
		"/imdb/search?title=x&year=1200",
	} {
		t.Run(target, func(t *testing.T) {
			w := do(t, r, http.MethodGet, target)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, models.ErrCodeInvalidInput, decodeError(t, w).Code)
		})
	}
}

func TestSearch_EmptyResultsNotCached(t *testing.T) {
	fake := newFake()
	fake.results = []models.SearchResult{}
	cc := cache.New(time.Minute, 10)
	defer cc.Close()
	r := api.NewRouter(fake, fakeStats{}, testConfig(), cc, time.Now())

	w := do(t, r, http.MethodGet, "/imdb/search?title=nothing")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	do(t, r, http.MethodGet, "/imdb/search?title=nothing")
	assert.Len(t, fake.queries, 2)
	assert.Equal(t, 0, cc.Len())
}
