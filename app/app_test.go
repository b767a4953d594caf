package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/auriorajaa/safe/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Markets</title>
<item><title>Rupiah weakens</title><description>&lt;p&gt;The rupiah slid.&lt;/p&gt;</description>
<link>https://jp/1</link><pubDate>Mon, 19 May 2025 10:00:00 GMT</pubDate></item>
</channel></rss>`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// libreStub answers like LibreTranslate, prefixing the input.
func libreStub(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Q string `json:"q"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		json.NewEncoder(w).Encode(map[string]string{"translatedText": "[ID] " + req.Q})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// TestBuild_InvalidConfig verifies validation runs before anything is built
func TestBuild_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Scrape.MaxAttempts = 0

	_, err := Build(cfg, quietLogger())

	assert.ErrorContains(t, err, "scrape.max_attempts")
}

// TestBuild_WithoutCategoryStore verifies the built-in queries are used
// when no DSN is configured
func TestBuild_WithoutCategoryStore(t *testing.T) {
	gin.SetMode(gin.TestMode)

	a, err := Build(config.Default(), quietLogger())
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Categories)
	assert.Equal(t, []string{"libre"}, a.Translator.Providers())

	router := a.Server.SetupRouter()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestBuild_WithCategoryStore verifies the SQLite store is opened, seeded
// and exposed through the meta router only
func TestBuild_WithCategoryStore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.Storage.CategoriesDSN = filepath.Join(t.TempDir(), "categories.db")

	a, err := Build(cfg, quietLogger())
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Categories)

	meta := a.Server.SetupMetaRouter()
	w := httptest.NewRecorder()
	meta.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/meta/categories/cryptocurrency", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bitcoin")

	public := a.Server.SetupRouter()
	w = httptest.NewRecorder()
	public.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/meta/categories/cryptocurrency", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	_, err = a.Categories.Get("cryptocurrency")
	assert.NoError(t, err)
}

// TestBuild_RSSRegionalFeed verifies the rss feed format end to end with a
// stubbed translation provider
func TestBuild_RSSRegionalFeed(t *testing.T) {
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/markets.rss", r.URL.Path)
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssFixture)
	}))
	defer feed.Close()

	cfg := config.Default()
	cfg.News.FeedBaseURL = feed.URL
	cfg.News.FeedPath = "/markets.rss"
	cfg.News.FeedFormat = config.FeedFormatRSS
	cfg.Translation.LibreURL = libreStub(t).URL
	cfg.Translation.Pacing = 0

	a, err := Build(cfg, quietLogger())
	require.NoError(t, err)
	defer a.Close()

	result, err := a.News.Aggregate(context.Background(), "indonesian-investment", 10)

	require.NoError(t, err)
	require.Len(t, result.Articles, 1)
	article := result.Articles[0]
	assert.Equal(t, "[ID] Rupiah weakens", article.Title)
	assert.Equal(t, "Rupiah weakens", article.OriginalTitle)
	assert.Equal(t, "The rupiah slid.", article.OriginalDescription)
	assert.Equal(t, "2025-05-19T10:00:00.000Z", article.PublishedAt)
}

// TestServe_ShutsDownOnCancel verifies Serve returns cleanly once its
// context is cancelled, with both listeners running
func TestServe_ShutsDownOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Server.MetaAddr = "localhost:0"

	a, err := Build(cfg, quietLogger())
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
