package newsfeed

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/auriorajaa/safe/fetcher"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
)

// RSSFeed reads the regional feed as RSS or Atom. gofeed detects the
// format; item descriptions are reduced to plain text.
type RSSFeed struct {
	url    string
	getter fetcher.Getter
	policy *bluemonday.Policy
}

// NewRSSFeed creates an RSS/Atom feed source for url.
func NewRSSFeed(url string, getter fetcher.Getter) *RSSFeed {
	return &RSSFeed{
		url:    url,
		getter: getter,
		policy: bluemonday.StrictPolicy(),
	}
}

func (f *RSSFeed) FetchFeed(ctx context.Context) (*RegionalFeed, error) {
	resp, err := f.getter.Get(ctx, f.url)
	if err != nil {
		return nil, err
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	feed := &RegionalFeed{Posts: make([]FeedItem, 0, len(parsed.Items))}
	for _, item := range parsed.Items {
		feed.Posts = append(feed.Posts, f.toFeedItem(item))
	}
	return feed, nil
}

func (f *RSSFeed) toFeedItem(item *gofeed.Item) FeedItem {
	headline := item.Description
	if headline == "" {
		headline = item.Content
	}

	out := FeedItem{
		Title:    f.plainText(item.Title),
		Headline: f.plainText(headline),
		Link:     item.Link,
	}

	if item.Image != nil {
		out.Image = item.Image.URL
	} else {
		for _, enc := range item.Enclosures {
			if strings.HasPrefix(enc.Type, "image/") {
				out.Image = enc.URL
				break
			}
		}
	}

	if item.PublishedParsed != nil {
		out.PublishedAt = item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		out.PublishedAt = item.UpdatedParsed
	}
	return out
}

// plainText strips markup and decodes entities.
func (f *RSSFeed) plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(f.policy.Sanitize(s)))
}
