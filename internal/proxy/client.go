// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/proxychat-tui/internal/model"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the proxy client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeUnreachable
	ErrTypeTimeout
	ErrTypeService
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrUnreachable = &ClientError{Type: ErrTypeUnreachable, Message: "proxy is not reachable"}
	ErrTimeout     = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
)

// IsUnreachable checks if an error indicates the proxy is down.
func IsUnreachable(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeUnreachable
	}
	return false
}

// IsServiceError checks if an error carries a proxy-reported message.
func IsServiceError(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeService
	}
	return false
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the proxy client.
type ClientConfig struct {
	// BaseURL is the proxy base URL (default: http://localhost:8080)
	BaseURL string

	// Timeout bounds completion requests (default: 120s)
	Timeout time.Duration

	// DefaultModel to use if none specified
	DefaultModel string

	// MaxTokens is the generation cap sent with every request (default: 4096)
	MaxTokens int
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:      "http://localhost:8080",
		Timeout:      120 * time.Second,
		DefaultModel: "claude-3-5-sonnet-20241022",
		MaxTokens:    4096,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the local completion proxy. It covers the
// completion, model listing, health, account registry, and OAuth endpoints.
//
// The Client is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new proxy client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new proxy client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:8080"
	}
	if config.Timeout == 0 {
		config.Timeout = 120 * time.Second
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 4096
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		// The proxy is a single local process; cap bursts so status polls and
		// sends cannot pile up against it.
		limiter: rate.NewLimiter(rate.Limit(10), 20),
	}
}

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// do waits for rate-limiter headroom and executes the request, mapping
// transport failures to the client error taxonomy.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, ErrTimeout
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, ErrTimeout
		}
		return nil, ErrUnreachable
	}
	return resp, nil
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// Health reports whether the proxy answers its health endpoint with
// status "ok". Any transport error or other status reads as unhealthy.
func (c *Client) Health(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return false
	}
	return health.Status == "ok"
}

// =============================================================================
// MODEL LISTING
// =============================================================================

// ListModels retrieves the models the proxy offers. Accepts both the wrapped
// {"data": [...]} shape and a bare list.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/v1/models", nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "failed to list models: " + resp.Status,
		}
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	var wrapped modelsResponse
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Data != nil {
		return wrapped.Data, nil
	}

	var bare []ModelInfo
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare, nil
	}

	return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "unrecognized models response"}
}

// =============================================================================
// COMPLETIONS
// =============================================================================

// CreateMessage sends the full message history to the completion endpoint and
// returns the reply. On a non-2xx status the proxy's structured error message
// is decoded when present, with the HTTP status as a fallback.
func (c *Client) CreateMessage(ctx context.Context, modelID string, messages []APIMessage, maxTokens int) (*MessagesResponse, error) {
	if modelID == "" {
		modelID = c.config.DefaultModel
	}
	if maxTokens <= 0 {
		maxTokens = c.config.MaxTokens
	}

	reqBody := MessagesRequest{
		Model:     modelID,
		Messages:  messages,
		MaxTokens: maxTokens,
		Stream:    false,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return nil, &ClientError{Type: ErrTypeService, Message: apiErr.Error.Message}
		}
		return nil, &ClientError{
			Type:    ErrTypeService,
			Message: "completion request failed: " + resp.Status,
		}
	}

	var result MessagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	return &result, nil
}

// =============================================================================
// ACCOUNT REGISTRY
// =============================================================================

// ListAccounts fetches the linked accounts. Any failure degrades to an empty
// list; the sidebar simply shows no accounts rather than an error.
func (c *Client) ListAccounts(ctx context.Context) []model.Account {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/accounts", nil)
	if err != nil {
		return nil
	}

	resp, err := c.do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var accounts accountsResponse
	if err := json.NewDecoder(resp.Body).Decode(&accounts); err != nil {
		return nil
	}
	return accounts.Accounts
}

// RemoveAccount deletes a linked account by email. A failure surfaces the
// server-provided message; the cached account list is not touched — callers
// re-fetch to resynchronize.
func (c *Client) RemoveAccount(ctx context.Context, email string) error {
	target := c.config.BaseURL + "/accounts/" + url.PathEscape(email)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, target, nil)
	if err != nil {
		return &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var remErr removeError
		if err := json.NewDecoder(resp.Body).Decode(&remErr); err == nil && remErr.Message != "" {
			return &ClientError{Type: ErrTypeService, Message: remErr.Message}
		}
		return &ClientError{
			Type:    ErrTypeService,
			Message: "failed to remove account: " + resp.Status,
		}
	}
	return nil
}

// =============================================================================
// OAUTH
// =============================================================================

// StartOAuth asks the proxy to begin an authorization handshake. The returned
// URL is opened for the user and the state token keys subsequent status polls.
func (c *Client) StartOAuth(ctx context.Context) (*OAuthStart, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/oauth/start", nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Type:    ErrTypeService,
			Message: "failed to start authentication: " + resp.Status,
		}
	}

	var start OAuthStart
	if err := json.NewDecoder(resp.Body).Decode(&start); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	if start.URL == "" || start.State == "" {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "incomplete oauth start response"}
	}
	return &start, nil
}

// OAuthStatus polls the authorization status for a state token.
func (c *Client) OAuthStatus(ctx context.Context, state string) (*OAuthStatus, error) {
	target := c.config.BaseURL + "/oauth/status/" + url.PathEscape(state)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Type:    ErrTypeService,
			Message: "status check failed: " + resp.Status,
		}
	}

	var status OAuthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return &status, nil
}
