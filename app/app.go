// Package app builds every component from a config.Config and wires them
// together for the binaries.
package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/auriorajaa/safe/api"
	"github.com/auriorajaa/safe/categories"
	"github.com/auriorajaa/safe/config"
	"github.com/auriorajaa/safe/fetcher"
	"github.com/auriorajaa/safe/metrics"
	"github.com/auriorajaa/safe/newsfeed"
	"github.com/auriorajaa/safe/scraper"
	"github.com/auriorajaa/safe/translate"
)

// ImageAccept is the Accept header sent by the image proxy.
const ImageAccept = "image/avif,image/webp,image/*,*/*;q=0.8"

// App holds the wired components.
type App struct {
	Config     config.Config
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
	Scraper    *scraper.Service
	Translator *translate.Gateway
	News       *newsfeed.Aggregator
	Categories *categories.Store
	Images     *fetcher.Fetcher
	Server     *api.Server
}

// Build creates every component. The category store is opened only when
// cfg.Storage.CategoriesDSN is set; otherwise the built-in queries are
// used. Call Close when done.
func Build(cfg config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := metrics.New()

	pages := fetcher.New(fetcher.Config{
		Timeout:     cfg.Scrape.Timeout,
		MaxAttempts: cfg.Scrape.MaxAttempts,
		RetryDelay:  cfg.Scrape.RetryDelay,
	}, fetcher.WithLogger(logger.With("component", "fetcher")), fetcher.WithMetrics(m))

	// Feeds, search and images get one attempt each.
	single := fetcher.New(fetcher.SingleAttempt(cfg.News.Timeout),
		fetcher.WithLogger(logger.With("component", "fetcher")), fetcher.WithMetrics(m))

	imageCfg := fetcher.SingleAttempt(cfg.News.Timeout)
	imageCfg.Accept = ImageAccept
	images := fetcher.New(imageCfg,
		fetcher.WithLogger(logger.With("component", "proxy")), fetcher.WithMetrics(m))

	gateway := translate.NewGateway(translate.Config{
		GoogleKey:      cfg.Translation.GoogleKey,
		GoogleEndpoint: cfg.Translation.GoogleEndpoint,
		LibreURL:       cfg.Translation.LibreURL,
		AzureKey:       cfg.Translation.AzureKey,
		AzureRegion:    cfg.Translation.AzureRegion,
		AzureEndpoint:  cfg.Translation.AzureEndpoint,
		Pacing:         cfg.Translation.Pacing,
		Timeout:        cfg.Translation.Timeout,
	}, translate.WithLogger(logger.With("component", "translate")), translate.WithMetrics(m))

	feedURL := newsfeed.FeedURL(cfg.News.FeedBaseURL, cfg.News.FeedPath)
	var feed newsfeed.FeedSource
	if cfg.News.FeedFormat == config.FeedFormatRSS {
		feed = newsfeed.NewRSSFeed(feedURL, single)
	} else {
		feed = newsfeed.NewJSONFeed(feedURL, single)
	}

	search := newsfeed.NewSearchClient(cfg.News.SearchBaseURL, cfg.News.SearchAPIKey,
		cfg.News.SearchSource, single, time.Now)

	a := &App{
		Config:     cfg,
		Logger:     logger,
		Metrics:    m,
		Translator: gateway,
		Images:     images,
	}

	var resolver categories.Resolver = categories.Static(categories.Builtin())
	if cfg.Storage.CategoriesDSN != "" {
		store, err := categories.NewStore(cfg.Storage.CategoriesDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open category store: %w", err)
		}
		a.Categories = store
		resolver = store
	}

	a.News = newsfeed.NewAggregator(feed, search, gateway,
		newsfeed.WithCategories(resolver),
		newsfeed.WithLogger(logger.With("component", "news")))

	a.Scraper = scraper.NewService(pages, scraper.ServiceConfig{
		AllowedDomain: cfg.Scrape.AllowedDomain,
		SourceName:    cfg.Scrape.SourceName,
	}, nil, logger.With("component", "scraper"))

	a.Server = api.NewServer(api.Deps{
		Scraper:    a.Scraper,
		News:       a.News,
		Images:     images,
		Categories: a.Categories,
		Config:     &a.Config,
		Metrics:    m,
		Logger:     logger,
		RateLimit:  cfg.Server.RateLimit,
		RateBurst:  cfg.Server.RateBurst,
	})

	logger.Info("components built",
		"feed_url", feedURL,
		"feed_format", cfg.News.FeedFormat,
		"translation_providers", gateway.Providers(),
		"search_configured", search.Configured(),
		"category_store", cfg.Storage.CategoriesDSN != "",
		"meta_api", cfg.Server.MetaAddr != "")

	return a, nil
}

// Close releases the category store, if one was opened.
func (a *App) Close() error {
	if a.Categories != nil {
		return a.Categories.Close()
	}
	return nil
}
