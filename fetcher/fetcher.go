// Package fetcher performs outbound HTTP GETs with a browser identity, a
// per-call timeout and a bounded retry loop.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/auriorajaa/safe/apperr"
	"github.com/auriorajaa/safe/metrics"
	"github.com/cenkalti/backoff/v5"
)

// Browser identity sent with every request to reduce anti-scraping
// rejections.
const (
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultAccept         = "text/html,application/xhtml+xml,application/xml"
	DefaultAcceptLanguage = "en-US,en;q=0.9"
)

// maxBodyBytes caps how much of a response body is read into memory.
const maxBodyBytes = 10 << 20

// maxDetailBytes caps how much of an error body is kept for diagnostics.
const maxDetailBytes = 4 << 10

// Config controls one Fetcher's identity, timeout and retry budget.
type Config struct {
	Timeout        time.Duration
	MaxAttempts    int
	RetryDelay     time.Duration
	UserAgent      string
	Accept         string
	AcceptLanguage string
}

// DefaultConfig returns the scrape-fetch policy: 10s timeout, 3 attempts, 1s
// between attempts.
func DefaultConfig() Config {
	return Config{
		Timeout:        10 * time.Second,
		MaxAttempts:    3,
		RetryDelay:     1 * time.Second,
		UserAgent:      DefaultUserAgent,
		Accept:         DefaultAccept,
		AcceptLanguage: DefaultAcceptLanguage,
	}
}

// SingleAttempt returns a policy with the browser identity, the given
// timeout and no retry.
func SingleAttempt(timeout time.Duration) Config {
	cfg := DefaultConfig()
	cfg.Timeout = timeout
	cfg.MaxAttempts = 1
	cfg.RetryDelay = 0
	return cfg
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Response is a fully read upstream answer.
type Response struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Getter is the fetch capability consumed by the pipelines.
type Getter interface {
	Get(ctx context.Context, rawURL string) (*Response, error)
}

// Fetcher implements Getter over net/http.
type Fetcher struct {
	config  Config
	client  *http.Client
	sleep   SleepFunc
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option customises a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the default client. The per-call timeout is still
// enforced through the request context.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) { f.client = client }
}

// WithSleep replaces the wait between attempts; tests pass a no-op.
func WithSleep(sleep SleepFunc) Option {
	return func(f *Fetcher) { f.sleep = sleep }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = logger }
}

// WithMetrics records every attempt's outcome.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Fetcher) { f.metrics = m }
}

// New creates a Fetcher. Zero-valued config fields fall back to
// DefaultConfig.
func New(config Config, opts ...Option) *Fetcher {
	defaults := DefaultConfig()
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.UserAgent == "" {
		config.UserAgent = defaults.UserAgent
	}
	if config.Accept == "" {
		config.Accept = defaults.Accept
	}
	if config.AcceptLanguage == "" {
		config.AcceptLanguage = defaults.AcceptLanguage
	}

	f := &Fetcher{
		config: config,
		client: &http.Client{},
		sleep:  sleepContext,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Config returns the effective policy.
func (f *Fetcher) Config() Config {
	return f.config
}

// Get fetches rawURL, retrying every failure except input errors until the
// attempt budget is spent. The last error is returned when all attempts
// fail.
func (f *Fetcher) Get(ctx context.Context, rawURL string) (*Response, error) {
	policy := backoff.NewConstantBackOff(f.config.RetryDelay)

	var lastErr error
	for attempt := 1; attempt <= f.config.MaxAttempts; attempt++ {
		resp, err := f.do(ctx, rawURL)
		if err == nil {
			f.metrics.ObserveFetch("ok")
			if attempt > 1 {
				f.logger.Info("fetch succeeded after retry", "url", rawURL, "attempt", attempt)
			}
			return resp, nil
		}
		lastErr = err
		f.metrics.ObserveFetch(outcomeOf(err))

		if !apperr.IsRetryable(err) {
			return nil, err
		}
		if attempt == f.config.MaxAttempts {
			break
		}

		delay := policy.NextBackOff()
		f.logger.Warn("fetch attempt failed",
			"url", rawURL,
			"attempt", attempt,
			"attempts_left", f.config.MaxAttempts-attempt,
			"retry_in", delay,
			"error", err)

		if err := f.sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("retry cancelled after %w: %w", lastErr, err)
		}
	}

	if f.config.MaxAttempts > 1 {
		f.logger.Error("fetch failed permanently", "url", rawURL, "attempts", f.config.MaxAttempts, "error", lastErr)
	}
	return nil, lastErr
}

// do performs a single attempt bounded by the configured timeout.
func (f *Fetcher) do(ctx context.Context, rawURL string) (*Response, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, apperr.Input(http.StatusBadRequest, fmt.Sprintf("invalid URL: %q", rawURL))
	}

	callCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperr.Input(http.StatusBadRequest, fmt.Sprintf("failed to create request: %v", err))
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", f.config.Accept)
	req.Header.Set("Accept-Language", f.config.AcceptLanguage)

	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(callCtx, err) {
			return nil, apperr.Timeout(rawURL, f.config.Timeout, err)
		}
		return nil, apperr.Upstream(rawURL, 0, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxDetailBytes))
		return nil, apperr.Upstream(rawURL, resp.StatusCode, string(detail), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if isTimeout(callCtx, err) {
			return nil, apperr.Timeout(rawURL, f.config.Timeout, err)
		}
		return nil, apperr.Upstream(rawURL, resp.StatusCode, "", fmt.Errorf("failed to read body: %w", err))
	}

	return &Response{
		URL:        rawURL,
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
	}, nil
}

// isTimeout distinguishes a blown per-call budget from other transport
// failures.
func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func outcomeOf(err error) string {
	switch apperr.KindOf(err) {
	case apperr.KindTimeout:
		return "timeout"
	case apperr.KindUpstream:
		return "upstream"
	case apperr.KindInput:
		return "input"
	default:
		return "error"
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
