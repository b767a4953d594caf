// Package translate implements the English to Indonesian translation
// gateway: a batch provider when credentials allow it, then a chain of
// per-string providers, and finally the original text.
package translate

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/auriorajaa/safe/metrics"
)

const (
	SourceLanguage = "en"
	TargetLanguage = "id"
)

// Provider translates a single string.
type Provider interface {
	Name() string
	Translate(ctx context.Context, text string) (string, error)
}

// BatchProvider translates many strings in one call, preserving order.
type BatchProvider interface {
	Name() string
	TranslateBatch(ctx context.Context, texts []string) ([]string, error)
}

// Gateway tries providers in priority order and never fails: when every
// provider fails the original text is returned.
type Gateway struct {
	batch   BatchProvider
	singles []Provider
	pacing  time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option customises a Gateway.
type Option func(*Gateway)

// WithProviders replaces the provider chain. batch may be nil.
func WithProviders(batch BatchProvider, singles ...Provider) Option {
	return func(g *Gateway) {
		g.batch = batch
		g.singles = singles
	}
}

// WithPacing sets the pause between the end of one per-string provider
// call and the start of the next.
func WithPacing(d time.Duration) Option {
	return func(g *Gateway) { g.pacing = d }
}

// WithSleep replaces the pacing wait.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(g *Gateway) { g.sleep = sleep }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) { g.logger = logger }
}

// WithMetrics records provider outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gateway) { g.metrics = m }
}

// NewGateway builds the provider chain from cfg: Google (batch and single)
// when a key is set, LibreTranslate always, Azure when key and region are
// both set.
func NewGateway(cfg Config, opts ...Option) *Gateway {
	g := &Gateway{
		pacing: cfg.Pacing,
		sleep:  sleepContext,
		logger: slog.Default(),
	}

	client := cfg.httpClient()
	if cfg.GoogleKey != "" {
		google := NewGoogle(cfg.GoogleKey, cfg.GoogleEndpoint, cfg.Timeout)
		g.batch = google
		g.singles = append(g.singles, google)
	}
	g.singles = append(g.singles, NewLibre(cfg.LibreURL, client))
	if cfg.AzureKey != "" && cfg.AzureRegion != "" {
		g.singles = append(g.singles, NewAzure(cfg.AzureKey, cfg.AzureRegion, cfg.AzureEndpoint, client))
	}

	for _, opt := range opts {
		opt(g)
	}
	return g
}

// TranslateBatch returns one translation per input, in input order. More
// than one string with a batch provider configured uses a single batch
// call; otherwise, or when that call fails, each string goes through
// Translate, pausing for the pacing interval after every call but the last.
func (g *Gateway) TranslateBatch(ctx context.Context, texts []string) []string {
	if len(texts) == 0 {
		return []string{}
	}

	if g.batch != nil && len(texts) > 1 {
		translated, err := g.batch.TranslateBatch(ctx, texts)
		switch {
		case err != nil:
			g.observe(g.batch.Name(), "error")
			g.logger.Warn("batch translation failed, falling back to individual calls",
				"provider", g.batch.Name(), "texts", len(texts), "error", err)
		case len(translated) != len(texts):
			g.observe(g.batch.Name(), "mismatch")
			g.logger.Warn("batch translation returned wrong number of results",
				"provider", g.batch.Name(), "want", len(texts), "got", len(translated))
		default:
			g.observe(g.batch.Name(), "ok")
			return withOriginals(translated, texts)
		}
	}

	out := make([]string, len(texts))
	copy(out, texts)
	called := false
	for i, text := range texts {
		if isBlank(text) {
			continue
		}
		var err error
		if called {
			err = g.sleep(ctx, g.pacing)
		} else {
			err = ctx.Err()
		}
		if err != nil {
			g.logger.Warn("translation interrupted, keeping originals", "remaining", len(texts)-i, "error", err)
			break
		}
		out[i] = g.Translate(ctx, text)
		called = true
	}
	return out
}

// Translate runs text through the per-string providers and returns the
// first non-empty result, or text itself when all fail.
func (g *Gateway) Translate(ctx context.Context, text string) string {
	if isBlank(text) {
		return text
	}

	for _, p := range g.singles {
		translated, err := p.Translate(ctx, text)
		if err != nil {
			g.observe(p.Name(), "error")
			g.logger.Warn("translation provider failed", "provider", p.Name(), "error", err)
			continue
		}
		if translated == "" {
			g.observe(p.Name(), "empty")
			continue
		}
		g.observe(p.Name(), "ok")
		return translated
	}

	g.logger.Warn("all translation services failed, returning original text")
	return text
}

// Providers lists the provider chain in call order, batch provider first.
func (g *Gateway) Providers() []string {
	var names []string
	if g.batch != nil {
		names = append(names, g.batch.Name()+" (batch)")
	}
	for _, p := range g.singles {
		names = append(names, p.Name())
	}
	return names
}

func (g *Gateway) observe(provider, outcome string) {
	g.metrics.ObserveTranslation(provider, outcome)
}

// withOriginals keeps the source text wherever it was blank or the
// translation came back empty.
func withOriginals(translated, originals []string) []string {
	out := make([]string, len(originals))
	for i := range originals {
		if translated[i] == "" || isBlank(originals[i]) {
			out[i] = originals[i]
			continue
		}
		out[i] = translated[i]
	}
	return out
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

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
