package fetcher

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/auriorajaa/safe/apperr"
	"github.com/auriorajaa/safe/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestFetcher(cfg Config, opts ...Option) *Fetcher {
	opts = append([]Option{WithSleep(noSleep), WithLogger(quietLogger())}, opts...)
	return New(cfg, opts...)
}

// TestGet_SendsBrowserHeaders verifies the browser identity on every request
func TestGet_SendsBrowserHeaders(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	resp, err := newTestFetcher(DefaultConfig()).Get(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<html></html>", string(resp.Body))
	assert.Equal(t, "text/html", resp.Header.Get("Content-Type"))
	assert.Equal(t, DefaultUserAgent, got.Get("User-Agent"))
	assert.Equal(t, DefaultAccept, got.Get("Accept"))
	assert.Equal(t, DefaultAcceptLanguage, got.Get("Accept-Language"))
}

// TestGet_RetriesThenSucceeds verifies a transient failure is retried
func TestGet_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	var delays []time.Duration
	sleep := func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	m := metrics.New()
	f := New(DefaultConfig(), WithSleep(sleep), WithLogger(quietLogger()), WithMetrics(m))

	resp, err := f.Get(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "ok", string(resp.Body))
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{time.Second, time.Second}, delays)
	// one series for "upstream", one for "ok"
	assert.Equal(t, 2, testutil.CollectAndCount(m.Registry(), "finnews_fetch_attempts_total"))
}

// TestGet_ExhaustsAttempts verifies the last upstream error is returned
func TestGet_ExhaustsAttempts(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("missing"))
	}))
	defer server.Close()

	_, err := newTestFetcher(DefaultConfig()).Get(context.Background(), server.URL)

	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.True(t, apperr.Is(err, apperr.KindUpstream))
	assert.Equal(t, http.StatusNotFound, apperr.HTTPStatus(err))

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "missing", appErr.Details)
}

// TestGet_Timeout verifies a slow upstream becomes a timeout error
func TestGet_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	cfg := SingleAttempt(50 * time.Millisecond)
	_, err := newTestFetcher(cfg).Get(context.Background(), server.URL)

	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindTimeout))
	assert.Equal(t, http.StatusInternalServerError, apperr.HTTPStatus(err))
}

// TestGet_InvalidURLNotRetried verifies input errors fail on the first
// attempt
func TestGet_InvalidURLNotRetried(t *testing.T) {
	var slept bool
	sleep := func(ctx context.Context, d time.Duration) error {
		slept = true
		return nil
	}
	f := New(DefaultConfig(), WithSleep(sleep), WithLogger(quietLogger()))

	_, err := f.Get(context.Background(), "not a url")

	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInput))
	assert.False(t, slept)
}

// TestGet_SleepCancelled verifies a cancelled wait stops the retry loop
// and keeps the upstream failure that triggered the retry
func TestGet_SleepCancelled(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	sleep := func(ctx context.Context, d time.Duration) error { return context.Canceled }
	f := New(DefaultConfig(), WithSleep(sleep), WithLogger(quietLogger()))

	_, err := f.Get(context.Background(), server.URL)

	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, apperr.Is(err, apperr.KindUpstream))
	assert.Contains(t, err.Error(), "500")
	assert.Equal(t, int32(1), calls.Load())
}

// TestNew_Defaults verifies zero-valued config fields are filled in
func TestNew_Defaults(t *testing.T) {
	f := New(Config{})

	cfg := f.Config()
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 1, cfg.MaxAttempts)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
}
