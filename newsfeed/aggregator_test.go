package newsfeed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/auriorajaa/safe/apperr"
	"github.com/auriorajaa/safe/categories"
	"github.com/auriorajaa/safe/fetcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC)

func clock() time.Time { return testNow }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// staticFeed serves a fixed feed or error.
type staticFeed struct {
	feed *RegionalFeed
	err  error
}

func (f staticFeed) FetchFeed(ctx context.Context) (*RegionalFeed, error) {
	return f.feed, f.err
}

// prefixTranslator echoes its input with "[ID] ".
type prefixTranslator struct {
	calls [][]string
}

func (p *prefixTranslator) TranslateBatch(ctx context.Context, texts []string) []string {
	p.calls = append(p.calls, texts)
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = "[ID] " + t
	}
	return out
}

// fakeSearch records the query it was given.
type fakeSearch struct {
	query    string
	pageSize int
	resp     *SearchResponse
	err      error
}

func (f *fakeSearch) Search(ctx context.Context, titleQuery string, pageSize int) (*SearchResponse, error) {
	f.query = titleQuery
	f.pageSize = pageSize
	return f.resp, f.err
}

func fixtureFeed() *RegionalFeed {
	return &RegionalFeed{
		FeaturedPost: &FeedItem{
			Title:     "IDX composite hits record",
			Headline:  "Jakarta stocks closed at an all-time high.",
			Link:      "https://www.thejakartapost.com/business/featured",
			Image:     "https://img/featured.jpg",
			Published: "2 hours ago",
		},
		Posts: []FeedItem{
			{Title: "Rupiah weakens", Headline: "The rupiah slid against the dollar.", Link: "https://x/1", Published: "30 minutes ago"},
			{Title: "BI holds rate", Headline: "Bank Indonesia kept its benchmark rate.", Link: "https://x/2", Published: "1 day ago"},
			{Title: "Nickel exports", Headline: "Exports rose in April.", Link: "https://x/3", Published: "1 week ago"},
		},
	}
}

func newTestAggregator(feed FeedSource, search Searcher, translator Translator) *Aggregator {
	return NewAggregator(feed, search, translator, WithClock(clock), WithLogger(quietLogger()))
}

// TestAggregate_RegionalPageSize verifies translation, originals and
// truncation for the regional feed
func TestAggregate_RegionalPageSize(t *testing.T) {
	translator := &prefixTranslator{}
	agg := newTestAggregator(staticFeed{feed: fixtureFeed()}, nil, translator)

	result, err := agg.Aggregate(context.Background(), "indonesian-investment", 2)

	require.NoError(t, err)
	require.Len(t, result.Articles, 2)
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, 2, result.TotalResults)
	assert.False(t, result.IsTranslating)
	assert.Equal(t, RegionalTranslationMessage, result.TranslationMessage)

	featured := result.Articles[0]
	assert.Equal(t, "IDX composite hits record", featured.OriginalTitle)
	assert.Equal(t, "[ID] IDX composite hits record", featured.Title)
	assert.Equal(t, "Jakarta stocks closed at an all-time high.", featured.OriginalDescription)
	assert.Equal(t, "[ID] Jakarta stocks closed at an all-time high.", featured.Description)
	assert.Equal(t, featured.Description, featured.Content)
	assert.Equal(t, Source{ID: "jakarta-post", Name: "The Jakarta Post"}, featured.Source)
	assert.Equal(t, "The Jakarta Post", featured.Author)
	assert.Equal(t, "https://img/featured.jpg", featured.URLToImage)
	assert.Equal(t, "2025-05-20T06:00:00.000Z", featured.PublishedAt)

	second := result.Articles[1]
	assert.Equal(t, "Rupiah weakens", second.OriginalTitle)
	assert.Equal(t, "[ID] Rupiah weakens", second.Title)
	assert.Equal(t, "2025-05-20T07:30:00.000Z", second.PublishedAt)

	// every item is translated in one batch, before truncation
	require.Len(t, translator.calls, 1)
	assert.Len(t, translator.calls[0], 8)
	assert.Equal(t, "IDX composite hits record", translator.calls[0][0])
	assert.Equal(t, "Rupiah weakens", translator.calls[0][2])
}

// TestAggregate_RegionalCaseInsensitive verifies category matching
func TestAggregate_RegionalCaseInsensitive(t *testing.T) {
	agg := newTestAggregator(staticFeed{feed: fixtureFeed()}, nil, &prefixTranslator{})

	result, err := agg.Aggregate(context.Background(), "Indonesian-Investment", 10)

	require.NoError(t, err)
	assert.Len(t, result.Articles, 4)
}

// TestAggregate_RegionalDatesNotInFuture verifies every publishedAt is a
// valid instant no later than now
func TestAggregate_RegionalDatesNotInFuture(t *testing.T) {
	future := testNow.Add(time.Hour)
	feed := fixtureFeed()
	feed.Posts[0].Published = "just now"
	feed.Posts[1].PublishedAt = &future
	feed.Posts[2].Published = "20000 weeks ago"

	result, err := newTestAggregator(staticFeed{feed: feed}, nil, &prefixTranslator{}).
		Aggregate(context.Background(), RegionalCategory, 10)
	require.NoError(t, err)

	for _, article := range result.Articles {
		parsed, err := time.Parse(time.RFC3339, article.PublishedAt)
		require.NoError(t, err, article.PublishedAt)
		assert.False(t, parsed.After(testNow), article.PublishedAt)
	}
}

// TestAggregate_RegionalFeedError verifies the distinct regional error
func TestAggregate_RegionalFeedError(t *testing.T) {
	agg := newTestAggregator(staticFeed{err: errors.New("connection refused")}, &fakeSearch{}, &prefixTranslator{})

	_, err := agg.Aggregate(context.Background(), RegionalCategory, 5)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRegionalFeed)
	assert.NotErrorIs(t, err, ErrSearchNotConfigured)
}

// TestAggregate_KeywordUsesCategoryQuery verifies query resolution and
// pass-through
func TestAggregate_KeywordUsesCategoryQuery(t *testing.T) {
	search := &fakeSearch{resp: &SearchResponse{
		Status:       "ok",
		TotalResults: 42,
		Articles:     []NewsArticle{{Title: "Nasdaq climbs", PublishedAt: "2025-05-19T10:00:00Z"}},
	}}
	agg := newTestAggregator(staticFeed{err: errors.New("unused")}, search, &prefixTranslator{})

	result, err := agg.Aggregate(context.Background(), "Stock Market", 5)

	require.NoError(t, err)
	assert.Equal(t, categories.Builtin()["stock market"], search.query)
	assert.Equal(t, 5, search.pageSize)
	assert.Equal(t, 42, result.TotalResults)
	assert.Equal(t, "Nasdaq climbs", result.Articles[0].Title)
	assert.Empty(t, result.TranslationMessage)
	assert.Empty(t, result.Articles[0].OriginalTitle)
}

// TestAggregate_UnknownCategoryFallback verifies the generic query
func TestAggregate_UnknownCategoryFallback(t *testing.T) {
	search := &fakeSearch{resp: &SearchResponse{Status: "ok"}}
	agg := newTestAggregator(nil, search, nil)

	_, err := agg.Aggregate(context.Background(), "", 0)

	require.NoError(t, err)
	assert.Equal(t, categories.FallbackQuery, search.query)
	assert.Equal(t, DefaultPageSize, search.pageSize)
}

// TestAggregate_MissingSearchKey verifies the configuration error
func TestAggregate_MissingSearchKey(t *testing.T) {
	client := NewSearchClient("", "", "", fetcher.New(fetcher.SingleAttempt(time.Second)), clock)
	agg := newTestAggregator(nil, client, nil)

	_, err := agg.Aggregate(context.Background(), "stock market", 5)

	assert.ErrorIs(t, err, ErrSearchNotConfigured)
}

// TestSearchClient_RequestParameters verifies the outbound query against a
// fake search API
func TestSearchClient_RequestParameters(t *testing.T) {
	var got url.Values
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		got = r.URL.Query()
		w.Write([]byte(`{"status":"ok","totalResults":1,"articles":[
			{"source":{"id":"business-insider","name":"Business Insider"},"title":"Bitcoin price jumps",
			 "publishedAt":"2030-01-01T00:00:00Z"}]}`))
	}))
	defer server.Close()

	client := NewSearchClient(server.URL, "secret-key", "", fetcher.New(fetcher.SingleAttempt(5*time.Second)), clock)

	resp, err := client.Search(context.Background(), categories.Builtin()["cryptocurrency"], 7)

	require.NoError(t, err)
	assert.Equal(t, "/v2/everything", path)
	assert.Equal(t, categories.Builtin()["cryptocurrency"], got.Get("qInTitle"))
	assert.Equal(t, "2025-04-20", got.Get("from"))
	assert.Equal(t, "2025-05-20", got.Get("to"))
	assert.Equal(t, "en", got.Get("language"))
	assert.Equal(t, "publishedAt", got.Get("sortBy"))
	assert.Equal(t, "7", got.Get("pageSize"))
	assert.Equal(t, "business-insider", got.Get("sources"))
	assert.Equal(t, "secret-key", got.Get("apiKey"))

	require.Len(t, resp.Articles, 1)
	assert.Equal(t, "2025-05-20T08:00:00.000Z", resp.Articles[0].PublishedAt, "future dates are clamped")
}

// TestSearchClient_UpstreamError verifies status and body are kept and the
// key is not leaked
func TestSearchClient_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":"error","code":"apiKeyInvalid"}`))
	}))
	defer server.Close()

	client := NewSearchClient(server.URL, "secret-key", "", fetcher.New(fetcher.SingleAttempt(5*time.Second)), clock)

	_, err := client.Search(context.Background(), "(x)", 5)

	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apperr.HTTPStatus(err))
	assert.NotContains(t, err.Error(), "secret-key")

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Details, "apiKeyInvalid")
}

func TestParsePageSize(t *testing.T) {
	tests := map[string]int{
		"":     10,
		"abc":  10,
		"0":    10,
		"-3":   10,
		"1":    1,
		" 25 ": 25,
		"100":  100,
		"500":  100,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParsePageSize(in), "input %q", in)
	}
}

func TestClampPublishedAt(t *testing.T) {
	assert.Equal(t, "2025-05-01T10:00:00Z", ClampPublishedAt("2025-05-01T10:00:00Z", testNow))
	assert.Equal(t, "2025-05-20T08:00:00.000Z", ClampPublishedAt("not a date", testNow))
	assert.Equal(t, "2025-05-20T08:00:00.000Z", ClampPublishedAt("", testNow))
	assert.Equal(t, "2025-05-20T08:00:00.000Z", ClampPublishedAt("2026-01-01T00:00:00Z", testNow))
}
