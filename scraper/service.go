package scraper

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/auriorajaa/safe/apperr"
	"github.com/auriorajaa/safe/fetcher"
)

// DefaultAllowedDomain is the only source the scrape endpoint accepts.
const DefaultAllowedDomain = "businessinsider.com"

// DefaultSourceName is used in the rejection message for other domains.
const DefaultSourceName = "Business Insider"

// Service runs the scrape pipeline: allowlist check, fetch, parse, extract.
type Service struct {
	getter        fetcher.Getter
	extractor     *Extractor
	allowedDomain string
	sourceName    string
	logger        *slog.Logger
}

// ServiceConfig configures a Service. Empty fields use the defaults.
type ServiceConfig struct {
	AllowedDomain string
	SourceName    string
	Article       *ArticleConfig
}

// NewService creates a scrape service on top of getter.
func NewService(getter fetcher.Getter, cfg ServiceConfig, extractor *Extractor, logger *slog.Logger) *Service {
	if cfg.AllowedDomain == "" {
		cfg.AllowedDomain = DefaultAllowedDomain
	}
	if cfg.SourceName == "" {
		cfg.SourceName = DefaultSourceName
	}
	if extractor == nil {
		articleCfg := DefaultArticleConfig()
		if cfg.Article != nil {
			articleCfg = *cfg.Article
		}
		extractor = NewExtractor(articleCfg, nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		getter:        getter,
		extractor:     extractor,
		allowedDomain: cfg.AllowedDomain,
		sourceName:    cfg.SourceName,
		logger:        logger,
	}
}

// Allowed reports whether rawURL may be scraped. The check is a plain
// substring match on the allowed domain.
func (s *Service) Allowed(rawURL string) bool {
	return strings.Contains(rawURL, s.allowedDomain)
}

// Scrape fetches rawURL and extracts the article. Disallowed URLs are
// rejected with a 403 input error before any request is made. An article
// that is not Usable is still returned without error.
func (s *Service) Scrape(ctx context.Context, rawURL string) (*ExtractedArticle, error) {
	if rawURL == "" {
		return nil, apperr.Input(http.StatusBadRequest, "URL parameter is required")
	}
	if !s.Allowed(rawURL) {
		return nil, apperr.Input(http.StatusForbidden, fmt.Sprintf("Only %s URLs are supported", s.sourceName))
	}

	s.logger.Info("scraping article", "url", rawURL)

	resp, err := s.getter.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	doc, err := ParseHTML(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, apperr.Internal("failed to parse article page", err)
	}

	article := s.extractor.Extract(doc, rawURL)
	if !article.Usable() {
		s.logger.Warn("article content could not be retrieved",
			"url", rawURL,
			"has_title", article.Title != "",
			"paragraphs", len(article.Content))
	}
	return article, nil
}
