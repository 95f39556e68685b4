// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package proxy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/proxychat-tui/internal/model"
)

func newTestClient(baseURL string) *Client {
	return NewClientWithConfig(&ClientConfig{BaseURL: baseURL})
}

// =============================================================================
// COMPLETION TESTS
// =============================================================================

func TestCreateMessage_Success(t *testing.T) {
	var gotReq MessagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/messages", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(MessagesResponse{
			Content: []ContentBlock{{Type: "text", Text: "**Hi** there"}},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	msgs := ToAPIMessages([]*model.Message{
		model.NewUserMessage([]model.ContentPart{model.NewTextPart("hi")}, "hi"),
	})

	resp, err := client.CreateMessage(context.Background(), "claude-3-5-sonnet-20241022", msgs, 4096)
	require.NoError(t, err)
	require.Equal(t, []string{"**Hi** there"}, resp.TextBlocks())

	// Request shape matches the proxy contract.
	require.Equal(t, "claude-3-5-sonnet-20241022", gotReq.Model)
	require.Equal(t, 4096, gotReq.MaxTokens)
	require.False(t, gotReq.Stream)
	require.Len(t, gotReq.Messages, 1)
	require.Equal(t, "user", gotReq.Messages[0].Role)
}

func TestCreateMessage_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"overloaded"}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.CreateMessage(context.Background(), "m", nil, 0)
	require.Error(t, err)
	require.True(t, IsServiceError(err))
	require.Equal(t, "overloaded", err.Error())
}

func TestCreateMessage_ErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.CreateMessage(context.Background(), "m", nil, 0)
	require.Error(t, err)
	require.True(t, IsServiceError(err))
	require.Contains(t, err.Error(), "502")
}

func TestCreateMessage_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // shut down before use

	client := newTestClient(srv.URL)
	_, err := client.CreateMessage(context.Background(), "m", nil, 0)
	require.Error(t, err)
	require.True(t, IsUnreachable(err))
}

func TestCreateMessage_PreservesImageParts(t *testing.T) {
	var gotReq MessagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(MessagesResponse{Content: []ContentBlock{{Type: "text", Text: "ok"}}})
	}))
	defer srv.Close()

	msg := model.NewUserMessage([]model.ContentPart{
		model.NewImagePart("image/png", "aGVsbG8="),
		model.NewTextPart("what is this?"),
	}, "what is this?")

	client := newTestClient(srv.URL)
	_, err := client.CreateMessage(context.Background(), "m", ToAPIMessages([]*model.Message{msg}), 0)
	require.NoError(t, err)

	require.Len(t, gotReq.Messages[0].Content, 2)
	img := gotReq.Messages[0].Content[0]
	require.Equal(t, "image", img.Type)
	require.NotNil(t, img.Source)
	require.Equal(t, "base64", img.Source.Type)
	require.Equal(t, "image/png", img.Source.MediaType)
	require.Equal(t, "aGVsbG8=", img.Source.Data)
	require.Equal(t, "text", gotReq.Messages[0].Content[1].Type)
}

// =============================================================================
// MODEL LISTING TESTS
// =============================================================================

func TestListModels(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"wrapped list", `{"data":[{"id":"claude-3-5-sonnet-20241022"},{"id":"claude-sonnet-4-5-thinking"}]}`},
		{"bare list", `[{"id":"claude-3-5-sonnet-20241022"},{"id":"claude-sonnet-4-5-thinking"}]`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/v1/models", r.URL.Path)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			models, err := newTestClient(srv.URL).ListModels(context.Background())
			require.NoError(t, err)
			require.Len(t, models, 2)
			require.Equal(t, "claude-3-5-sonnet-20241022", models[0].ID)
		})
	}
}

// =============================================================================
// HEALTH TESTS
// =============================================================================

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   bool
	}{
		{"ok", http.StatusOK, `{"status":"ok"}`, true},
		{"degraded", http.StatusOK, `{"status":"degraded"}`, false},
		{"http error", http.StatusServiceUnavailable, `{}`, false},
		{"garbage body", http.StatusOK, `not json`, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			require.Equal(t, tc.want, newTestClient(srv.URL).Health(context.Background()))
		})
	}
}

func TestHealth_Down(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	require.False(t, newTestClient(srv.URL).Health(context.Background()))
}

// =============================================================================
// ACCOUNT REGISTRY TESTS
// =============================================================================

func TestListAccounts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"accounts":[{"email":"a@example.com","sessionKey":"sk-test-1"},{"email":"b@example.com"}]}`))
	}))
	defer srv.Close()

	accounts := newTestClient(srv.URL).ListAccounts(context.Background())
	require.Len(t, accounts, 2)
	require.Equal(t, "a@example.com", accounts[0].Email)
	require.True(t, accounts[0].HasCredential())
	require.False(t, accounts[1].HasCredential())
}

func TestListAccounts_DegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	// Network failure shows as "no accounts", never as an error.
	require.Empty(t, newTestClient(srv.URL).ListAccounts(context.Background()))
}

func TestRemoveAccount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/accounts/a@example.com", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, newTestClient(srv.URL).RemoveAccount(context.Background(), "a@example.com"))
}

func TestRemoveAccount_ServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"account in use"}`))
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).RemoveAccount(context.Background(), "a@example.com")
	require.Error(t, err)
	require.Equal(t, "account in use", err.Error())
}

// =============================================================================
// OAUTH TESTS
// =============================================================================

func TestStartOAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/oauth/start", r.URL.Path)
		w.Write([]byte(`{"url":"https://auth.example.com/authorize","state":"st-123"}`))
	}))
	defer srv.Close()

	start, err := newTestClient(srv.URL).StartOAuth(context.Background())
	require.NoError(t, err)
	require.Equal(t, "https://auth.example.com/authorize", start.URL)
	require.Equal(t, "st-123", start.State)
}

func TestStartOAuth_Incomplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"url":""}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).StartOAuth(context.Background())
	require.Error(t, err)
}

func TestOAuthStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth/status/st-123", r.URL.Path)
		w.Write([]byte(`{"status":"failed","error":"denied"}`))
	}))
	defer srv.Close()

	status, err := newTestClient(srv.URL).OAuthStatus(context.Background(), "st-123")
	require.NoError(t, err)
	require.Equal(t, OAuthFailed, status.Status)
	require.Equal(t, "denied", status.Error)
}
