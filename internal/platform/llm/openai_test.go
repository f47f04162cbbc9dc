package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionHandler(t *testing.T, content string, seen *map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1234567890,
			"model":   TogetherDefaultModel,
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": content},
					"finish_reason": "stop",
				},
			},
		})
	}
}

func TestTogetherProvider_Complete(t *testing.T) {
	var seen map[string]any
	server := httptest.NewServer(completionHandler(t, `{"feedback":"ok","weaknesses":[]}`, &seen))
	defer server.Close()

	p, err := NewTogetherProvider("test-key", server.URL+"/v1", "")
	require.NoError(t, err)
	assert.Equal(t, TogetherDefaultModel, p.ModelID())

	resp, err := p.Complete(context.Background(), Request{
		System:      "You are a helpful assistant that only replies in JSON.",
		Prompt:      "Analyze this.",
		Temperature: 0.7,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"feedback":"ok","weaknesses":[]}`, resp.Text)

	assert.Equal(t, TogetherDefaultModel, seen["model"])
	assert.InDelta(t, 0.7, seen["temperature"], 1e-6)
	assert.EqualValues(t, defaultMaxTokens, seen["max_tokens"])

	messages, ok := seen["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "user", messages[1].(map[string]any)["role"])
	assert.Equal(t, "Analyze this.", messages[1].(map[string]any)["content"])
}

func TestOpenAIProvider_ServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "overloaded", "type": "server_error"},
		})
	}))
	defer server.Close()

	p, err := NewOpenAIProvider("test-key", server.URL+"/v1", "gpt-4o-mini")
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), Request{Prompt: "hi"})
	var unavailable *ErrProviderUnavailable
	require.True(t, errors.As(err, &unavailable), "got %v", err)
	assert.Equal(t, http.StatusServiceUnavailable, unavailable.StatusCode)
}

func TestOpenAIProvider_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	}))
	defer server.Close()

	p, err := NewOpenAIProvider("test-key", server.URL+"/v1", "")
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), Request{Prompt: "hi"})
	var invalid *ErrInvalidResponse
	assert.True(t, errors.As(err, &invalid), "got %v", err)
}
