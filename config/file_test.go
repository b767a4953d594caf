package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	cfg := Default()
	for name := range cfg.envString() {
		t.Setenv(name, "")
	}
	t.Setenv(EnvConfigPath, "")
	t.Setenv("FINNEWS_SCRAPE_MAX_ATTEMPTS", "")
	t.Setenv("FINNEWS_TRANSLATION_PACING", "")
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigFile_NoFile(t *testing.T) {
	cfg := Default()

	err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"), &cfg)

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg, "missing file should leave defaults untouched")
}

func TestLoadConfigFile_ValidConfig(t *testing.T) {
	path := writeConfig(t, `server:
  addr: ":9090"
storage:
  categories_dsn: "/var/lib/finnews/categories.db"
scrape:
  timeout: 12s
  max_attempts: 5
translation:
  google_key: "g-key"
  pacing: 250ms
news:
  feed_format: rss
  feed_base_url: "https://feeds.example.com"
`)

	cfg := Default()
	require.NoError(t, LoadConfigFile(path, &cfg))

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "/var/lib/finnews/categories.db", cfg.Storage.CategoriesDSN)
	assert.Equal(t, 12*time.Second, cfg.Scrape.Timeout)
	assert.Equal(t, 5, cfg.Scrape.MaxAttempts)
	assert.Equal(t, "g-key", cfg.Translation.GoogleKey)
	assert.Equal(t, 250*time.Millisecond, cfg.Translation.Pacing)
	assert.Equal(t, FeedFormatRSS, cfg.News.FeedFormat)
	assert.Equal(t, "https://feeds.example.com", cfg.News.FeedBaseURL)
}

func TestLoadConfigFile_PartialConfig(t *testing.T) {
	path := writeConfig(t, `news:
  search_api_key: "abc"
`)

	cfg := Default()
	require.NoError(t, LoadConfigFile(path, &cfg))

	assert.Equal(t, "abc", cfg.News.SearchAPIKey)
	assert.Equal(t, "https://newsapi.org", cfg.News.SearchBaseURL, "unspecified fields keep their defaults")
	assert.Equal(t, 3, cfg.Scrape.MaxAttempts)
}

func TestLoadConfigFile_InvalidYAML(t *testing.T) {
	path := writeConfig(t, `news:
  - this is invalid because news should be an object not a list
`)

	cfg := Default()
	err := LoadConfigFile(path, &cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_HomeDirectoryFile(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".finnews")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log:\n  level: debug\n"), 0o600))

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `translation:
  libre_url: "http://file-libre/translate"
news:
  search_api_key: "from-file"
`)
	t.Setenv(EnvConfigPath, path)
	t.Setenv("NEWS_API_KEY", "from-env")
	t.Setenv("AZURE_TRANSLATOR_REGION", "southeastasia")
	t.Setenv("FINNEWS_SCRAPE_MAX_ATTEMPTS", "2")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.News.SearchAPIKey)
	assert.Equal(t, "http://file-libre/translate", cfg.Translation.LibreURL)
	assert.Equal(t, "southeastasia", cfg.Translation.AzureRegion)
	assert.Equal(t, 2, cfg.Scrape.MaxAttempts)
}

func TestLoad_InvalidEnvNumber(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FINNEWS_SCRAPE_MAX_ATTEMPTS", "many")

	_, err := Load("")

	assert.ErrorContains(t, err, "FINNEWS_SCRAPE_MAX_ATTEMPTS")
}

func TestLoad_ValidationFailure(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "news:\n  feed_format: xml\n")

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "news.feed_format")
}
