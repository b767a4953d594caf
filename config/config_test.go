package config

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValidate_Defaults verifies the built-in config is valid
func TestValidate_Defaults(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
}

// TestValidate_CollectsErrors verifies every invalid field is reported
func TestValidate_CollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Server.Addr = ""
	cfg.Scrape.MaxAttempts = 0
	cfg.News.FeedFormat = "csv"

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.addr")
	assert.Contains(t, err.Error(), "scrape.max_attempts")
	assert.Contains(t, err.Error(), "news.feed_format")
}

// TestValidate_ServerListeners verifies the listener and rate limit rules
func TestValidate_ServerListeners(t *testing.T) {
	cfg := Default()
	cfg.Server.MetaAddr = cfg.Server.Addr
	cfg.Server.RateBurst = 0

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.meta_addr")
	assert.Contains(t, err.Error(), "server.rate_burst")

	cfg = Default()
	cfg.Server.MetaAddr = "127.0.0.1:8081"
	cfg.Server.RateLimit = 0
	cfg.Server.RateBurst = 0
	assert.NoError(t, cfg.Validate())

	cfg.Server.RateLimit = -1
	assert.ErrorContains(t, cfg.Validate(), "server.rate_limit")
}

// TestValidate_MissingCredentialsAreFine verifies optional credentials
func TestValidate_MissingCredentialsAreFine(t *testing.T) {
	cfg := Default()
	cfg.Translation.GoogleKey = ""
	cfg.Translation.AzureKey = ""
	cfg.News.SearchAPIKey = ""

	assert.NoError(t, cfg.Validate())
}

// TestRedacted verifies credentials are masked and the original untouched
func TestRedacted(t *testing.T) {
	cfg := Default()
	cfg.Translation.GoogleKey = "google-secret"
	cfg.News.SearchAPIKey = "news-secret"

	redacted := cfg.Redacted()

	assert.Equal(t, "********", redacted.Translation.GoogleKey)
	assert.Equal(t, "********", redacted.News.SearchAPIKey)
	assert.Equal(t, "", redacted.Translation.AzureKey)
	assert.Equal(t, "google-secret", cfg.Translation.GoogleKey)
}

// TestHandleGetConfig verifies the config endpoint never returns secrets
func TestHandleGetConfig(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := Default()
	cfg.News.SearchAPIKey = "news-secret"

	router := gin.New()
	NewAPIServer(cfg).RegisterRoutes(router.Group("/api/v1/meta"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/meta/config", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "news-secret")

	var got Config
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, ":8080", got.Server.Addr)
	assert.Equal(t, "********", got.News.SearchAPIKey)
}
