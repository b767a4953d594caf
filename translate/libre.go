package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/auriorajaa/safe/apperr"
)

// Libre calls a LibreTranslate instance. It needs no credential and is the
// default per-string provider.
type Libre struct {
	url    string
	client *http.Client
}

// NewLibre creates a LibreTranslate provider. An empty url uses the public
// instance.
func NewLibre(url string, client *http.Client) *Libre {
	if url == "" {
		url = DefaultLibreURL
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Libre{url: url, client: client}
}

func (l *Libre) Name() string { return "libre" }

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
}

type libreResponse struct {
	TranslatedText string `json:"translatedText"`
}

func (l *Libre) Translate(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(libreRequest{
		Q:      text,
		Source: SourceLanguage,
		Target: TargetLanguage,
		Format: "text",
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", apperr.Upstream(l.url, 0, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", apperr.Upstream(l.url, resp.StatusCode, string(detail), nil)
	}

	var decoded libreResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return decoded.TranslatedText, nil
}
