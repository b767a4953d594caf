// Package api serves the public scrape, news and image proxy endpoints and,
// on a separate router, the operator routes under /api/v1/meta.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/auriorajaa/safe/categories"
	"github.com/auriorajaa/safe/config"
	"github.com/auriorajaa/safe/fetcher"
	"github.com/auriorajaa/safe/logging"
	"github.com/auriorajaa/safe/metrics"
	"github.com/auriorajaa/safe/newsfeed"
	"github.com/auriorajaa/safe/scraper"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request id in both directions.
const RequestIDHeader = "X-Request-ID"

// Scraper extracts one article.
type Scraper interface {
	Scrape(ctx context.Context, rawURL string) (*scraper.ExtractedArticle, error)
}

// Aggregator answers news requests.
type Aggregator interface {
	Aggregate(ctx context.Context, category string, pageSize int) (*newsfeed.Result, error)
}

// Deps are the components a Server routes to. Categories and Config are
// optional; without them the matching meta routes are not registered.
// RateLimit is requests per second per client on /api; zero disables it.
type Deps struct {
	Scraper    Scraper
	News       Aggregator
	Images     fetcher.Getter
	Categories *categories.Store
	Config     *config.Config
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	RateLimit  float64
	RateBurst  int
}

// Server holds the HTTP handlers.
type Server struct {
	scraper    Scraper
	news       Aggregator
	images     fetcher.Getter
	categories *categories.Store
	config     *config.Config
	metrics    *metrics.Metrics
	logger     *slog.Logger
	limiter    *clientLimiter
}

// NewServer creates a server from deps.
func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		scraper:    deps.Scraper,
		news:       deps.News,
		images:     deps.Images,
		categories: deps.Categories,
		config:     deps.Config,
		metrics:    deps.Metrics,
		logger:     logger,
		limiter:    newClientLimiter(deps.RateLimit, deps.RateBurst),
	}
}

// SetupRouter configures the public router. It carries no meta routes.
func (s *Server) SetupRouter() *gin.Engine {
	router := gin.New()
	router.Use(s.requestLogger(), gin.CustomRecovery(s.recovered), s.observe())

	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := router.Group("/api", s.rateLimit())
	api.GET("/scrape-article", s.HandleScrapeArticle)
	api.GET("/news", s.HandleNews)
	api.GET("/proxy", s.HandleProxy)

	return router
}

// SetupMetaRouter configures the operator router with the category and
// config APIs. It has no CORS headers and is meant for a private listener.
func (s *Server) SetupMetaRouter() *gin.Engine {
	router := gin.New()
	router.Use(s.requestLogger(), gin.CustomRecovery(s.recovered), s.observe())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	meta := router.Group("/api/v1/meta")
	if s.categories != nil {
		categories.NewAPIServer(s.categories).RegisterRoutes(meta)
	}
	if s.config != nil {
		config.NewAPIServer(*s.config).RegisterRoutes(meta)
	}

	return router
}

// requestLogger assigns a request id, stores a request-scoped logger in
// the request context and logs one line per request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)

		logger := s.logger.With("request_id", id)
		c.Request = c.Request.WithContext(logging.WithContext(c.Request.Context(), logger))

		c.Next()

		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start))
	}
}

func (s *Server) recovered(c *gin.Context, recovered any) {
	s.loggerFor(c).Error("handler panicked", "panic", recovered)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveResponse(route, c.Writer.Status())
	}
}

func (s *Server) loggerFor(c *gin.Context) *slog.Logger {
	return logging.FromContext(c.Request.Context(), s.logger)
}

// detached keeps the request's values but not its cancellation: outbound
// calls run to completion or their own timeout even if the client leaves.
func detached(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}
