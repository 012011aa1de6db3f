// Package api talks to the FlagVault flag service over HTTP. It is the only
// place that knows the wire format; callers receive domain types and the
// domain error taxonomy.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/flagvault/flagvault-go/internal/domain"
)

// Client is the remote flag service consumed by the cache orchestrator.
type Client interface {
	// FetchFlag fetches a single flag's enabled state. The target
	// identifier, when non-empty, is passed as the targetId query
	// parameter.
	FetchFlag(ctx context.Context, flagKey, targetID string) (bool, error)

	// FetchAllFlags fetches every flag definition in one call.
	FetchAllFlags(ctx context.Context) ([]domain.FlagDefinition, error)
}

// Config holds HTTP client configuration.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration

	// HTTPClient overrides the default client when set; the configured
	// timeout still applies per request.
	HTTPClient *http.Client
}

// HTTPClient implements Client against the FlagVault REST API.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

// NewHTTPClient creates a new FlagVault HTTP client.
func NewHTTPClient(cfg Config) *HTTPClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &HTTPClient{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		timeout:    cfg.Timeout,
		httpClient: httpClient,
	}
}

// FetchFlag fetches a single flag's enabled state.
func (c *HTTPClient) FetchFlag(ctx context.Context, flagKey, targetID string) (bool, error) {
	endpoint := fmt.Sprintf("%s/api/feature-flag/%s/enabled", c.baseURL, url.PathEscape(flagKey))
	if targetID != "" {
		endpoint += "?targetId=" + url.QueryEscape(targetID)
	}

	var state flagStateResponse
	if err := c.get(ctx, endpoint, &state); err != nil {
		return false, err
	}

	return state.Enabled, nil
}

// FetchAllFlags fetches every flag definition in one call. An empty or
// missing flags array yields an empty slice, not an error.
func (c *HTTPClient) FetchAllFlags(ctx context.Context) ([]domain.FlagDefinition, error) {
	endpoint := c.baseURL + "/api/feature-flag"

	var list flagListResponse
	if err := c.get(ctx, endpoint, &list); err != nil {
		return nil, err
	}

	flags := make([]domain.FlagDefinition, 0, len(list.Flags))
	for _, payload := range list.Flags {
		flags = append(flags, payload.toDomain())
	}
	return flags, nil
}

func (c *HTTPClient) get(ctx context.Context, endpoint string, result interface{}) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.NewServiceError(0, fmt.Sprintf("failed to create request: %v", err))
	}

	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return domain.NewNetworkError("request timed out", err)
		}
		return domain.NewNetworkError("failed to connect to API", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.NewNetworkError("failed to read response body", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domain.NewAuthenticationError(fmt.Sprintf("API key rejected (HTTP %d)", resp.StatusCode))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return domain.NewServiceError(resp.StatusCode, httpErrorMessage(body))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return domain.NewServiceError(0, fmt.Sprintf("malformed response body: %v", err))
	}

	return nil
}

// httpErrorMessage pulls the service's message field out of an error body
// when there is one, falling back to the raw body.
func httpErrorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	if len(body) == 0 {
		return "empty response body"
	}
	return string(body)
}
