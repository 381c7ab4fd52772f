package claude

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespond(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role string `json:"role"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-3-5-haiku-latest", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_test",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-haiku-latest",
			"content": [{"type": "text", "text": "42."}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 5, "output_tokens": 2}
		}`))
	}))
	defer server.Close()

	client := New("sk-test", "claude-3-5-haiku-latest", anthropic.WithBaseURL(server.URL))

	answer, err := client.Respond(context.Background(), "What is the answer?")
	require.NoError(t, err)
	assert.Equal(t, "42.", answer)
}

func TestRespondAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type": "error", "error": {"type": "rate_limit_error", "message": "rate limited"}}`))
	}))
	defer server.Close()

	client := New("sk-test", "claude-3-5-haiku-latest", anthropic.WithBaseURL(server.URL))

	_, err := client.Respond(context.Background(), "hello")
	assert.Error(t, err)
}

func TestRespondEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_test",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-haiku-latest",
			"content": [],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 5, "output_tokens": 0}
		}`))
	}))
	defer server.Close()

	client := New("sk-test", "claude-3-5-haiku-latest", anthropic.WithBaseURL(server.URL))

	_, err := client.Respond(context.Background(), "hello")
	assert.Error(t, err)
}
