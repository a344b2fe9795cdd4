package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/intelmarket/gestor-pav/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string, retries int) *Client {
	c := NewClient(Config{
		APIKey:     "sk-test",
		BaseURL:    url + "/",
		Model:      "gpt-4o-mini",
		Timeout:    5 * time.Second,
		MaxRetries: retries,
	}, logger.Discard())
	c.backoff = func(int) time.Duration { return time.Millisecond }
	return c
}

func completionBody(content string, in, out int) string {
	raw, _ := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": content}}},
		"usage":   map[string]any{"prompt_tokens": in, "completion_tokens": out, "total_tokens": in + out},
	})
	return string(raw)
}

func TestCompleteJSON(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(completionBody(`{"cidade":"Recife"}`, 120, 80)))
	}))
	defer server.Close()

	c := newTestClient(server.URL, 0)
	out, err := c.CompleteJSON(context.Background(), Prompt{System: "s", User: "u", Temperature: 0.8, MaxTokens: 1000})
	require.NoError(t, err)

	assert.Equal(t, "Recife", out.Content["cidade"])
	assert.Equal(t, 120, out.InputTokens)
	assert.Equal(t, 80, out.OutputTokens)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, 0.8, got.Temperature)
	assert.Equal(t, 1000, got.MaxTokens)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
}

func TestCompleteJSON_RetriesRateLimit(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(completionBody(`{}`, 1, 1)))
	}))
	defer server.Close()

	out, err := newTestClient(server.URL, 2).CompleteJSON(context.Background(), Prompt{})
	require.NoError(t, err)
	assert.NotNil(t, out.Content)
	assert.Equal(t, int32(2), calls)
}

func TestCompleteJSON_RateLimitExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 1).CompleteJSON(context.Background(), Prompt{})
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
}

func TestCompleteJSON_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 3).CompleteJSON(context.Background(), Prompt{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, int32(1), calls)
}

func TestCompleteJSON_NonJSONContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(completionBody(`not json`, 1, 1)))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 0).CompleteJSON(context.Background(), Prompt{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a JSON object")
}

func TestCompleteJSON_MissingKey(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://unused"}, logger.Discard())
	assert.False(t, c.Configured())
	_, err := c.CompleteJSON(context.Background(), Prompt{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestCost(t *testing.T) {
	assert.InDelta(t, 0.15+0.60, Cost("gpt-4o-mini", 1_000_000, 1_000_000), 1e-9)
	assert.InDelta(t, 0.000075, Cost("gpt-4o-mini", 500, 0), 1e-12)
	assert.InDelta(t, Cost("gpt-4o-mini", 10, 10), Cost("unknown", 10, 10), 1e-12)
}
