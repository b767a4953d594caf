// Package newsfeed merges the keyword news search and the regional feed
// into one article list.
package newsfeed

import (
	"errors"
	"time"
)

// Layout is the ISO-8601 form used for every publishedAt this package
// emits.
const Layout = "2006-01-02T15:04:05.000Z"

// RegionalCategory selects the translated regional feed instead of the
// keyword search.
const RegionalCategory = "indonesian-investment"

// DefaultCategory is used when the caller does not name one.
const DefaultCategory = "financial"

// Page size bounds.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// RegionalTranslationMessage accompanies every regional feed response.
const RegionalTranslationMessage = "Mengambil dan menerjemahkan berita dari Jakarta Post"

var (
	// ErrSearchNotConfigured is returned when the keyword path is requested
	// without a search API key.
	ErrSearchNotConfigured = errors.New("news search API key is not configured")

	// ErrRegionalFeed wraps any failure of the regional feed path.
	ErrRegionalFeed = errors.New("regional feed unavailable")
)

// Source identifies the publisher of an article.
type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewsArticle is the uniform article shape returned by both paths.
// OriginalTitle and OriginalDescription hold the untranslated text of
// regional articles and stay empty for search results.
type NewsArticle struct {
	Source              Source `json:"source"`
	Author              string `json:"author"`
	Title               string `json:"title"`
	Description         string `json:"description"`
	URL                 string `json:"url"`
	URLToImage          string `json:"urlToImage"`
	PublishedAt         string `json:"publishedAt"`
	Content             string `json:"content"`
	OriginalTitle       string `json:"originalTitle,omitempty"`
	OriginalDescription string `json:"originalDescription,omitempty"`
}

// Result is the response envelope of the news endpoint.
type Result struct {
	Status             string        `json:"status"`
	TotalResults       int           `json:"totalResults"`
	Articles           []NewsArticle `json:"articles"`
	IsTranslating      bool          `json:"isTranslating"`
	TranslationMessage string        `json:"translationMessage"`
}

// ClampPublishedAt returns raw unchanged when it is a valid RFC 3339
// instant not after now. Anything else becomes now.
func ClampPublishedAt(raw string, now time.Time) string {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil || t.After(now) {
		return now.UTC().Format(Layout)
	}
	return raw
}
