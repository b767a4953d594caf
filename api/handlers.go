package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/auriorajaa/safe/apperr"
	"github.com/auriorajaa/safe/newsfeed"
	"github.com/gin-gonic/gin"
)

// Cache-Control values for successful responses.
const (
	ArticleCacheControl = "max-age=3600, s-maxage=3600"
	NewsCacheControl    = "public, s-maxage=43200"
)

// defaultImageType is used when the upstream image has no Content-Type.
const defaultImageType = "image/jpeg"

// HandleScrapeArticle handles GET /api/scrape-article?url=.
func (s *Server) HandleScrapeArticle(c *gin.Context) {
	rawURL := c.Query("url")

	article, err := s.scraper.Scrape(detached(c), rawURL)
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Kind == apperr.KindInput {
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": appErr.Message})
			return
		}

		status := apperr.HTTPStatus(err)
		s.loggerFor(c).Error("scrape failed", "url", rawURL, "status", status, "error", err)
		c.JSON(status, gin.H{
			"error":      "Failed to scrape article content",
			"details":    details(err),
			"statusCode": status,
		})
		return
	}

	c.Header("Cache-Control", ArticleCacheControl)
	c.JSON(http.StatusOK, article)
}

// HandleNews handles GET /api/news?category=&pageSize=.
func (s *Server) HandleNews(c *gin.Context) {
	category := c.DefaultQuery("category", newsfeed.DefaultCategory)
	pageSize := newsfeed.ParsePageSize(c.Query("pageSize"))

	result, err := s.news.Aggregate(detached(c), category, pageSize)
	if err != nil {
		s.newsError(c, category, err)
		return
	}

	if !newsfeed.IsRegional(category) {
		c.Header("Cache-Control", NewsCacheControl)
	}
	c.JSON(http.StatusOK, result)
}

// newsError keeps the search configuration, regional feed and upstream
// failures distinguishable for the caller.
func (s *Server) newsError(c *gin.Context, category string, err error) {
	logger := s.loggerFor(c)

	switch {
	case errors.Is(err, newsfeed.ErrSearchNotConfigured):
		logger.Error("news search requested without API key", "category", category)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "News API key is not configured"})
	case errors.Is(err, newsfeed.ErrRegionalFeed):
		logger.Error("regional feed failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":         "Failed to fetch Indonesian investment news",
			"isTranslating": false,
		})
	case apperr.Is(err, apperr.KindUpstream):
		status := apperr.HTTPStatus(err)
		logger.Error("news search failed", "category", category, "status", status, "error", err)
		c.JSON(status, gin.H{
			"error":   "Failed to fetch news from external API",
			"details": details(err),
		})
	default:
		logger.Error("news request failed", "category", category, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":         "Internal server error",
			"isTranslating": false,
		})
	}
}

// HandleProxy handles GET /api/proxy?url=, relaying image bytes.
func (s *Server) HandleProxy(c *gin.Context) {
	imageURL := c.Query("url")
	if imageURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image URL is required"})
		return
	}

	resp, err := s.images.Get(detached(c), imageURL)
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Kind == apperr.KindUpstream && appErr.StatusCode != 0 {
			status := apperr.HTTPStatus(err)
			c.JSON(status, gin.H{"error": fmt.Sprintf("Failed to fetch image: %d", appErr.StatusCode)})
			return
		}

		s.loggerFor(c).Error("image proxy failed", "url", imageURL, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultImageType
	}
	c.Data(http.StatusOK, contentType, resp.Body)
}

// details prefers the upstream body, then the error message.
func details(err error) string {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		if appErr.Details != "" {
			return appErr.Details
		}
		return appErr.Message
	}
	return err.Error()
}
