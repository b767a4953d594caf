package newsfeed

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/auriorajaa/safe/categories"
	"github.com/auriorajaa/safe/reldate"
)

// Translator is the translation capability the regional path needs. The
// result always has the same length and order as texts.
type Translator interface {
	TranslateBatch(ctx context.Context, texts []string) []string
}

// Aggregator answers news requests from the keyword search or the
// regional feed. The two paths share nothing.
type Aggregator struct {
	feed       FeedSource
	search     Searcher
	categories categories.Resolver
	translator Translator
	now        func() time.Time
	logger     *slog.Logger
}

// Option customises an Aggregator.
type Option func(*Aggregator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) { a.logger = logger }
}

// WithCategories replaces the built-in category queries.
func WithCategories(resolver categories.Resolver) Option {
	return func(a *Aggregator) { a.categories = resolver }
}

// NewAggregator creates an aggregator.
func NewAggregator(feed FeedSource, search Searcher, translator Translator, opts ...Option) *Aggregator {
	a := &Aggregator{
		feed:       feed,
		search:     search,
		categories: categories.Static(categories.Builtin()),
		translator: translator,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// IsRegional reports whether category selects the regional feed.
func IsRegional(category string) bool {
	return strings.ToLower(category) == RegionalCategory
}

// ParsePageSize converts the pageSize parameter, defaulting to
// DefaultPageSize and capping at MaxPageSize.
func ParsePageSize(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return DefaultPageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// Aggregate returns at most pageSize articles for category. An empty
// category means DefaultCategory.
func (a *Aggregator) Aggregate(ctx context.Context, category string, pageSize int) (*Result, error) {
	if category == "" {
		category = DefaultCategory
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	if IsRegional(category) {
		return a.regional(ctx, pageSize)
	}
	return a.keyword(ctx, category, pageSize)
}

func (a *Aggregator) keyword(ctx context.Context, category string, pageSize int) (*Result, error) {
	if a.search == nil {
		return nil, ErrSearchNotConfigured
	}

	query, err := a.categories.TitleQuery(ctx, category)
	if err != nil {
		a.logger.Warn("category lookup failed, using fallback query", "category", category, "error", err)
		query = categories.FallbackQuery
	}

	a.logger.Info("searching news", "category", category, "page_size", pageSize)

	resp, err := a.search.Search(ctx, query, pageSize)
	if err != nil {
		return nil, err
	}

	return &Result{
		Status:       resp.Status,
		TotalResults: resp.TotalResults,
		Articles:     resp.Articles,
	}, nil
}

func (a *Aggregator) regional(ctx context.Context, pageSize int) (*Result, error) {
	a.logger.Info("fetching regional feed", "page_size", pageSize)

	feed, err := a.feed.FetchFeed(ctx)
	if err != nil {
		a.logger.Error("regional feed fetch failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrRegionalFeed, err)
	}

	items := feed.Items()

	// Two positions per item: title, then headline.
	texts := make([]string, 0, 2*len(items))
	for _, item := range items {
		texts = append(texts, item.Title, item.Headline)
	}

	a.logger.Info("translating regional feed", "texts", len(texts))
	translated := a.translator.TranslateBatch(ctx, texts)
	if len(translated) != len(texts) {
		a.logger.Warn("translator returned misaligned results, using originals",
			"want", len(texts), "got", len(translated))
		translated = texts
	}

	now := a.now()
	articles := make([]NewsArticle, 0, len(items))
	for i, item := range items {
		title := orOriginal(translated[2*i], item.Title)
		description := orOriginal(translated[2*i+1], item.Headline)

		articles = append(articles, NewsArticle{
			Source:              Source{ID: RegionalSourceID, Name: RegionalSourceName},
			Author:              RegionalSourceName,
			Title:               title,
			Description:         description,
			URL:                 item.Link,
			URLToImage:          item.Image,
			PublishedAt:         publishedAt(item, now),
			Content:             description,
			OriginalTitle:       item.Title,
			OriginalDescription: item.Headline,
		})
	}

	if len(articles) > pageSize {
		articles = articles[:pageSize]
	}

	return &Result{
		Status:             "ok",
		TotalResults:       len(articles),
		Articles:           articles,
		IsTranslating:      false,
		TranslationMessage: RegionalTranslationMessage,
	}, nil
}

// publishedAt resolves an item's date, absolute or relative, and clamps it
// to now.
func publishedAt(item FeedItem, now time.Time) string {
	var t time.Time
	if item.PublishedAt != nil {
		t = *item.PublishedAt
	} else {
		t = reldate.Parse(item.Published, now)
	}
	if t.After(now) {
		t = now
	}
	return t.UTC().Format(Layout)
}

func orOriginal(translated, original string) string {
	if translated == "" {
		return original
	}
	return translated
}
