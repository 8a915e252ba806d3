package ai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGroqClientComplete проверяет формирование запроса и разбор ответа Groq.
func TestGroqClientComplete(t *testing.T) {
	var captured groqChatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"steps\":[]}"}}]}`))
	}))
	defer server.Close()

	client := NewGroqClient("test-key", server.URL+"/", "llama-3.3-70b-versatile", 5*time.Second)
	text, err := client.Complete(context.Background(), "system text", "user text", 0.7, 0)
	require.NoError(t, err)

	assert.Equal(t, `{"steps":[]}`, text)
	assert.Equal(t, "llama-3.3-70b-versatile", captured.Model)
	assert.Equal(t, 0.7, captured.Temperature)
	assert.Equal(t, defaultMaxTokens, captured.MaxTokens)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "user text", captured.Messages[1].Content)
}

// TestGroqClientAPIError проверяет разбор ошибки API.
func TestGroqClientAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit reached"}}`))
	}))
	defer server.Close()

	client := NewGroqClient("test-key", server.URL, "model", 5*time.Second)
	_, err := client.Complete(context.Background(), "", "prompt", 0.3, 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit reached")
}

// TestGroqClientMissingKey проверяет отказ без API-ключа.
func TestGroqClientMissingKey(t *testing.T) {
	client := NewGroqClient(" ", "http://localhost", "model", time.Second)
	_, err := client.Complete(context.Background(), "", "prompt", 0.3, 100)
	assert.Error(t, err)
}

// TestGroqClientEmptyChoices проверяет ответ без вариантов.
func TestGroqClientEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := NewGroqClient("key", server.URL, "model", 5*time.Second)
	_, err := client.Complete(context.Background(), "", "prompt", 0.3, 100)
	assert.EqualError(t, err, "groq response missing choices")
}
