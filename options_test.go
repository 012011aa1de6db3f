package flagvault

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flagvault/flagvault-go/internal/api"
	"github.com/flagvault/flagvault-go/telemetry"
)

func applyOptions(t *testing.T, opts ...Option) (*clientConfig, error) {
	t.Helper()
	cfg := &clientConfig{config: DefaultConfig()}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "https://api.flagvault.com", cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.True(t, cfg.CacheEnabled)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 1000, cfg.CacheMaxSize)
	assert.Equal(t, time.Minute, cfg.RefreshInterval)
	assert.Equal(t, FallbackDefault, cfg.FallbackBehavior)
}

func TestOptions_Apply(t *testing.T) {
	httpClient := &http.Client{}
	logger := zap.NewNop()
	provider := telemetry.NewNoOp()

	cfg, err := applyOptions(t,
		WithBaseURL("https://custom.api.com"),
		WithTimeout(5*time.Second),
		WithHTTPClient(httpClient),
		WithCacheEnabled(false),
		WithCacheTTL(time.Minute),
		WithCacheMaxSize(50),
		WithRefreshInterval(0),
		WithFallbackBehavior(FallbackThrow),
		WithLogger(logger),
		WithTelemetry(provider),
	)
	require.NoError(t, err)

	assert.Equal(t, "https://custom.api.com", cfg.config.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.config.Timeout)
	assert.Same(t, httpClient, cfg.config.HTTPClient)
	assert.False(t, cfg.config.CacheEnabled)
	assert.Equal(t, time.Minute, cfg.config.CacheTTL)
	assert.Equal(t, 50, cfg.config.CacheMaxSize)
	assert.Zero(t, cfg.config.RefreshInterval)
	assert.Equal(t, FallbackThrow, cfg.config.FallbackBehavior)
	assert.Same(t, logger, cfg.logger)
	assert.Same(t, provider, cfg.telemetry)
}

func TestOptions_Invalid(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"empty base URL", WithBaseURL("")},
		{"zero timeout", WithTimeout(0)},
		{"nil http client", WithHTTPClient(nil)},
		{"zero TTL", WithCacheTTL(0)},
		{"negative TTL", WithCacheTTL(-time.Second)},
		{"zero max size", WithCacheMaxSize(0)},
		{"negative refresh interval", WithRefreshInterval(-time.Second)},
		{"unknown fallback behavior", WithFallbackBehavior("explode")},
		{"nil logger", WithLogger(nil)},
		{"nil telemetry provider", WithTelemetry(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := applyOptions(t, tt.opt)
			assert.Error(t, err)
		})
	}
}

func TestWithConfig(t *testing.T) {
	cfg, err := applyOptions(t, WithConfig(Config{
		BaseURL:          "https://custom.api.com",
		Timeout:          3 * time.Second,
		CacheEnabled:     true,
		CacheTTL:         30 * time.Second,
		CacheMaxSize:     10,
		RefreshInterval:  15 * time.Second,
		FallbackBehavior: FallbackDefault,
	}))
	require.NoError(t, err)

	assert.Equal(t, "https://custom.api.com", cfg.config.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.config.Timeout)
	assert.Equal(t, 30*time.Second, cfg.config.CacheTTL)
	assert.Equal(t, 10, cfg.config.CacheMaxSize)
	assert.Equal(t, 15*time.Second, cfg.config.RefreshInterval)
}

func TestWithConfig_ZeroFieldsKeepDefaults(t *testing.T) {
	cfg, err := applyOptions(t, WithConfig(Config{CacheEnabled: true}))
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.config.BaseURL)
	assert.Equal(t, DefaultTimeout, cfg.config.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.config.CacheTTL)
	assert.Equal(t, 1000, cfg.config.CacheMaxSize)
	assert.Equal(t, FallbackDefault, cfg.config.FallbackBehavior)
}

func TestWithConfig_CacheTogglesApplyLiterally(t *testing.T) {
	// CacheEnabled and RefreshInterval have meaningful zero values and are
	// always taken as given, never defaulted.
	cfg, err := applyOptions(t, WithConfig(Config{
		CacheEnabled:    false,
		RefreshInterval: 0,
	}))
	require.NoError(t, err)
	assert.False(t, cfg.config.CacheEnabled)
	assert.Zero(t, cfg.config.RefreshInterval)

	cfg, err = applyOptions(t, WithConfig(Config{
		CacheEnabled:    true,
		RefreshInterval: 45 * time.Second,
	}))
	require.NoError(t, err)
	assert.True(t, cfg.config.CacheEnabled)
	assert.Equal(t, 45*time.Second, cfg.config.RefreshInterval)
}

func TestWithConfig_InvalidFallback(t *testing.T) {
	_, err := applyOptions(t, WithConfig(Config{FallbackBehavior: "explode"}))
	assert.Error(t, err)
}

func TestWithAPIClient_BypassesHTTP(t *testing.T) {
	mock := api.NewMockClient()
	mock.SetFlagState("injected", true)

	client, err := New("test-api-key", withAPIClient(mock), WithRefreshInterval(0))
	require.NoError(t, err)
	defer client.Destroy()

	enabled, err := client.IsEnabled(context.Background(), "injected", false)
	require.NoError(t, err)
	assert.True(t, enabled)
	assert.Equal(t, 1, mock.FetchCalls())
}
