package translate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"google.golang.org/api/option"
	gtranslate "google.golang.org/api/translate/v2"
)

// Google calls the Cloud Translation v2 API. It serves both as the batch
// provider and as the first per-string provider.
type Google struct {
	key      string
	endpoint string
	timeout  time.Duration

	once    sync.Once
	service *gtranslate.Service
	initErr error
}

// NewGoogle creates a Google provider. An empty endpoint uses the public
// API.
func NewGoogle(key, endpoint string, timeout time.Duration) *Google {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Google{key: key, endpoint: endpoint, timeout: timeout}
}

func (g *Google) Name() string { return "google" }

func (g *Google) client() (*gtranslate.Service, error) {
	g.once.Do(func() {
		opts := []option.ClientOption{option.WithAPIKey(g.key)}
		if g.endpoint != "" {
			opts = append(opts, option.WithEndpoint(g.endpoint))
		}
		g.service, g.initErr = gtranslate.NewService(context.Background(), opts...)
	})
	return g.service, g.initErr
}

// TranslateBatch translates all texts in one POST request, keeping the
// texts out of the URL.
func (g *Google) TranslateBatch(ctx context.Context, texts []string) ([]string, error) {
	svc, err := g.client()
	if err != nil {
		return nil, fmt.Errorf("failed to create google translate client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := svc.Translations.Translate(&gtranslate.TranslateTextRequest{
		Q:      texts,
		Source: SourceLanguage,
		Target: TargetLanguage,
		Format: "text",
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("google translate request failed: %w", err)
	}

	out := make([]string, 0, len(resp.Translations))
	for _, t := range resp.Translations {
		if t == nil {
			out = append(out, "")
			continue
		}
		out = append(out, t.TranslatedText)
	}
	return out, nil
}

// Translate translates a single string.
func (g *Google) Translate(ctx context.Context, text string) (string, error) {
	out, err := g.TranslateBatch(ctx, []string{text})
	if err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "", fmt.Errorf("google translate returned no translations")
	}
	return out[0], nil
}
