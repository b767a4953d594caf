package newsfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/auriorajaa/safe/apperr"
	"github.com/auriorajaa/safe/fetcher"
)

// Search API defaults.
const (
	DefaultSearchBaseURL = "https://newsapi.org"
	DefaultSearchSource  = "business-insider"
)

// SearchResponse is the search API's answer. Articles are passed through
// apart from publishedAt clamping.
type SearchResponse struct {
	Status       string        `json:"status"`
	TotalResults int           `json:"totalResults"`
	Articles     []NewsArticle `json:"articles"`
}

// Searcher runs a title-restricted keyword search.
type Searcher interface {
	Search(ctx context.Context, titleQuery string, pageSize int) (*SearchResponse, error)
}

// SearchClient queries a NewsAPI-compatible "everything" endpoint scoped to
// one source over the last month.
type SearchClient struct {
	baseURL string
	apiKey  string
	source  string
	getter  fetcher.Getter
	now     func() time.Time
}

// NewSearchClient creates a search client. Empty baseURL and source use the
// defaults; an empty apiKey makes every Search fail with
// ErrSearchNotConfigured.
func NewSearchClient(baseURL, apiKey, source string, getter fetcher.Getter, now func() time.Time) *SearchClient {
	if baseURL == "" {
		baseURL = DefaultSearchBaseURL
	}
	if source == "" {
		source = DefaultSearchSource
	}
	if now == nil {
		now = time.Now
	}
	return &SearchClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		source:  source,
		getter:  getter,
		now:     now,
	}
}

// Configured reports whether an API key is set.
func (c *SearchClient) Configured() bool {
	return c.apiKey != ""
}

// RequestURL builds the search URL for a query.
func (c *SearchClient) RequestURL(titleQuery string, pageSize int) string {
	today := c.now().UTC()
	monthAgo := today.AddDate(0, -1, 0)

	params := url.Values{}
	params.Set("qInTitle", titleQuery)
	params.Set("from", monthAgo.Format("2006-01-02"))
	params.Set("to", today.Format("2006-01-02"))
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("sources", c.source)
	params.Set("apiKey", c.apiKey)

	return c.baseURL + "/v2/everything?" + params.Encode()
}

func (c *SearchClient) Search(ctx context.Context, titleQuery string, pageSize int) (*SearchResponse, error) {
	if !c.Configured() {
		return nil, ErrSearchNotConfigured
	}

	resp, err := c.getter.Get(ctx, c.RequestURL(titleQuery, pageSize))
	if err != nil {
		return nil, c.redact(err)
	}

	var decoded SearchResponse
	if err := json.Unmarshal(resp.Body, &decoded); err != nil {
		return nil, apperr.Internal("failed to decode search response", err)
	}
	if decoded.Articles == nil {
		decoded.Articles = []NewsArticle{}
	}

	now := c.now()
	for i := range decoded.Articles {
		decoded.Articles[i].PublishedAt = ClampPublishedAt(decoded.Articles[i].PublishedAt, now)
	}
	return &decoded, nil
}

// redact removes the API key from error messages, which embed the request
// URL.
func (c *SearchClient) redact(err error) error {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		return errors.New(strings.ReplaceAll(err.Error(), c.apiKey, "REDACTED"))
	}
	clean := *appErr
	clean.Message = strings.ReplaceAll(clean.Message, c.apiKey, "REDACTED")
	if clean.Err != nil {
		clean.Err = fmt.Errorf("%s", strings.ReplaceAll(clean.Err.Error(), c.apiKey, "REDACTED"))
	}
	return &clean
}
