package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/auriorajaa/safe/apperr"
)

// Azure calls the Microsoft Translator v3 API. It is only part of the
// chain when both a key and a region are configured.
type Azure struct {
	key      string
	region   string
	endpoint string
	client   *http.Client
}

// NewAzure creates an Azure Translator provider.
func NewAzure(key, region, endpoint string, client *http.Client) *Azure {
	if endpoint == "" {
		endpoint = DefaultAzureEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Azure{
		key:      key,
		region:   region,
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   client,
	}
}

func (a *Azure) Name() string { return "azure" }

type azureText struct {
	Text string `json:"text"`
}

type azureResult struct {
	Translations []azureText `json:"translations"`
}

func (a *Azure) Translate(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal([]azureText{{Text: text}})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	query := url.Values{}
	query.Set("api-version", "3.0")
	query.Set("to", TargetLanguage)
	endpoint := a.endpoint + "/translate?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", a.key)
	req.Header.Set("Ocp-Apim-Subscription-Region", a.region)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", apperr.Upstream(a.endpoint, 0, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", apperr.Upstream(a.endpoint, resp.StatusCode, string(detail), nil)
	}

	var decoded []azureResult
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(decoded) == 0 || len(decoded[0].Translations) == 0 {
		return "", nil
	}
	return decoded[0].Translations[0].Text, nil
}
