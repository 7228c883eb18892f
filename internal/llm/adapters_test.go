package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaAdapter_Generate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3.2:3b","response":"Q: a?\nA: b.","done":true}`))
	}))
	defer srv.Close()

	adapter, err := NewOllamaAdapter(srv.URL, "", srv.Client())
	require.NoError(t, err)

	out, err := adapter.Complete(context.Background(), Request{Mode: ModeGenerate, Prompt: "p", MaxTokens: 600})

	require.NoError(t, err)
	assert.Equal(t, "Q: a?\nA: b.", out)
	assert.Equal(t, DefaultOllamaModel, got["model"])
	assert.Equal(t, false, got["stream"])
	opts := got["options"].(map[string]any)
	assert.EqualValues(t, 600, opts["num_predict"])
	assert.EqualValues(t, 2048, opts["num_ctx"])
}

func TestOllamaAdapter_Chat(t *testing.T) {
	var got struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"m","message":{"role":"assistant","content":"Arrays are contiguous."},"done":true}`))
	}))
	defer srv.Close()

	adapter, err := NewOllamaAdapter(srv.URL, "m", srv.Client())
	require.NoError(t, err)

	out, err := adapter.Complete(context.Background(), Request{Mode: ModeChat, System: "tutor", Prompt: "arrays?"})

	require.NoError(t, err)
	assert.Equal(t, "Arrays are contiguous.", out)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "arrays?", got.Messages[1].Content)
}

func TestOllamaAdapter_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model not loaded"}`))
	}))
	defer srv.Close()

	adapter, err := NewOllamaAdapter(srv.URL, "m", srv.Client())
	require.NoError(t, err)

	_, err = adapter.Complete(context.Background(), Request{Prompt: "p"})
	assert.Error(t, err)
}

func TestNewOllamaAdapter_BadURL(t *testing.T) {
	_, err := NewOllamaAdapter("://nope", "", nil)
	assert.Error(t, err)
}

func TestOpenAIAdapter_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"gpt-4o-mini",
			"choices":[{"index":0,"message":{"role":"assistant","content":"Week 3."},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	adapter, err := NewOpenAIAdapter("test-key", "", srv.URL+"/v1")
	require.NoError(t, err)

	out, err := adapter.Complete(context.Background(), Request{Mode: ModeChat, System: "s", Prompt: "when?"})

	require.NoError(t, err)
	assert.Equal(t, "Week 3.", out)
}

func TestOpenAIAdapter_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	adapter, err := NewOpenAIAdapter("test-key", "", srv.URL+"/v1")
	require.NoError(t, err)

	_, err = adapter.Complete(context.Background(), Request{Prompt: "p"})
	assert.Error(t, err)
}

func TestNewGeminiAdapter_NoKey(t *testing.T) {
	_, err := NewGeminiAdapter(context.Background(), "", "")
	assert.Equal(t, ErrNoAPIKey, err)
}
