package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

const (
	DefaultOllamaBaseURL = "http://localhost:11434"
	DefaultOllamaModel   = "llama3.2:3b"

	ollamaContextWindow = 2048
)

// OllamaAdapter talks to a local Ollama server.
type OllamaAdapter struct {
	client *api.Client
	model  string
}

// NewOllamaAdapter creates an adapter for the server at baseURL.
func NewOllamaAdapter(baseURL, model string, httpClient *http.Client) (*OllamaAdapter, error) {
	if baseURL == "" {
		baseURL = DefaultOllamaBaseURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base url: %w", err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OllamaAdapter{
		client: api.NewClient(u, httpClient),
		model:  model,
	}, nil
}

// Complete runs /api/generate or /api/chat depending on the request mode.
func (a *OllamaAdapter) Complete(ctx context.Context, req Request) (string, error) {
	stream := false
	options := map[string]any{
		"temperature": req.Temperature,
		"num_ctx":     ollamaContextWindow,
	}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}

	var out strings.Builder
	if req.Mode == ModeChat {
		messages := make([]api.Message, 0, 2)
		if req.System != "" {
			messages = append(messages, api.Message{Role: "system", Content: req.System})
		}
		messages = append(messages, api.Message{Role: "user", Content: req.Prompt})

		err := a.client.Chat(ctx, &api.ChatRequest{
			Model:    a.model,
			Messages: messages,
			Stream:   &stream,
			Options:  options,
		}, func(resp api.ChatResponse) error {
			out.WriteString(resp.Message.Content)
			return nil
		})
		if err != nil {
			return "", fmt.Errorf("ollama chat: %w", err)
		}
		return out.String(), nil
	}

	err := a.client.Generate(ctx, &api.GenerateRequest{
		Model:   a.model,
		Prompt:  req.Prompt,
		System:  req.System,
		Stream:  &stream,
		Options: options,
	}, func(resp api.GenerateResponse) error {
		out.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	return out.String(), nil
}
