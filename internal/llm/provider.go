package llm

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config selects and configures a provider.
type Config struct {
	Provider          string
	OllamaBaseURL     string
	OllamaModel       string
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIBaseURL     string
	GeminiAPIKey      string
	GeminiModel       string
	RequestsPerSecond float64
	Burst             int
}

// New builds a Client for cfg.Provider. The returned closer releases provider
// resources and is never nil.
func New(ctx context.Context, cfg Config) (*Client, io.Closer, error) {
	opts := ClientOptions{
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
	}

	switch cfg.Provider {
	case "", ProviderOllama:
		// the per-call context carries the deadline
		adapter, err := NewOllamaAdapter(cfg.OllamaBaseURL, cfg.OllamaModel, &http.Client{})
		if err != nil {
			return nil, nil, err
		}
		return NewClient(adapter, opts), nopCloser{}, nil
	case ProviderOpenAI:
		adapter, err := NewOpenAIAdapter(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
		if err != nil {
			return nil, nil, err
		}
		return NewClient(adapter, opts), nopCloser{}, nil
	case ProviderGemini:
		adapter, err := NewGeminiAdapter(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		return NewClient(adapter, opts), adapter, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
