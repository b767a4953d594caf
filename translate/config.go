package translate

import (
	"net/http"
	"time"
)

// Defaults for the provider endpoints and call budget.
const (
	DefaultLibreURL      = "https://libretranslate.de/translate"
	DefaultAzureEndpoint = "https://api.cognitive.microsofttranslator.com"
	DefaultPacing        = 100 * time.Millisecond
	DefaultTimeout       = 15 * time.Second
)

// Config holds provider credentials and endpoints. Every credential is
// optional; a missing one only removes that provider from the chain.
type Config struct {
	GoogleKey      string
	GoogleEndpoint string
	LibreURL       string
	AzureKey       string
	AzureRegion    string
	AzureEndpoint  string
	Pacing         time.Duration
	Timeout        time.Duration
}

func (c Config) httpClient() *http.Client {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
