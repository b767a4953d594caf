package newsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/auriorajaa/safe/fetcher"
)

// Regional feed defaults.
const (
	DefaultFeedBaseURL = "https://jakpost.vercel.app"
	DefaultFeedPath    = "/api/category/business/markets"
	RegionalSourceID   = "jakarta-post"
	RegionalSourceName = "The Jakarta Post"
)

// FeedItem is one regional feed entry. Published holds the relative form
// ("3 hours ago") used by the JSON feed; PublishedAt is set instead by
// feeds carrying absolute dates.
type FeedItem struct {
	Title       string     `json:"title"`
	Headline    string     `json:"headline"`
	Link        string     `json:"link"`
	Image       string     `json:"image"`
	Published   string     `json:"pusblised_at"`
	PublishedAt *time.Time `json:"-"`
}

// RegionalFeed is the parsed regional feed. The featured post, when
// present, comes before the regular posts.
type RegionalFeed struct {
	FeaturedPost *FeedItem  `json:"featured_post,omitempty"`
	Posts        []FeedItem `json:"posts"`
}

// Items returns the featured post followed by the regular posts.
func (f *RegionalFeed) Items() []FeedItem {
	if f == nil {
		return nil
	}
	items := make([]FeedItem, 0, len(f.Posts)+1)
	if f.FeaturedPost != nil {
		items = append(items, *f.FeaturedPost)
	}
	return append(items, f.Posts...)
}

// FeedSource fetches the regional feed.
type FeedSource interface {
	FetchFeed(ctx context.Context) (*RegionalFeed, error)
}

// FeedURL joins a base URL and a path, defaulting both.
func FeedURL(base, path string) string {
	if base == "" {
		base = DefaultFeedBaseURL
	}
	if path == "" {
		path = DefaultFeedPath
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// JSONFeed reads the regional feed from its JSON API.
type JSONFeed struct {
	url    string
	getter fetcher.Getter
}

// NewJSONFeed creates a JSON feed source for url.
func NewJSONFeed(url string, getter fetcher.Getter) *JSONFeed {
	return &JSONFeed{url: url, getter: getter}
}

func (f *JSONFeed) FetchFeed(ctx context.Context) (*RegionalFeed, error) {
	resp, err := f.getter.Get(ctx, f.url)
	if err != nil {
		return nil, err
	}

	var feed RegionalFeed
	if err := json.Unmarshal(resp.Body, &feed); err != nil {
		return nil, fmt.Errorf("failed to decode regional feed: %w", err)
	}
	return &feed, nil
}
