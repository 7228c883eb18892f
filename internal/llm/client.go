// Package llm wraps the text-completion backends used to generate FAQs and
// chat answers.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/cloo-solutions/syllabus/internal/telemetry"
)

const (
	// DefaultGenerateTimeout bounds a single FAQ completion.
	DefaultGenerateTimeout = 180 * time.Second
	// DefaultChatTimeout bounds a single chat completion.
	DefaultChatTimeout = 60 * time.Second

	defaultTemperature = 0.2
	defaultMaxTokens   = 600
)

var (
	// ErrEmptyPrompt is returned when the prompt is blank
	ErrEmptyPrompt = errors.New("prompt cannot be empty")
	// ErrEmptyResponse is returned when the backend answers with no text
	ErrEmptyResponse = errors.New("model returned an empty response")
	// ErrNoAPIKey is returned when a hosted provider has no API key configured
	ErrNoAPIKey = errors.New("llm provider API key not set")
	// ErrUnknownProvider is returned for an unrecognised provider name
	ErrUnknownProvider = errors.New("unknown llm provider")
)

// Mode selects the completion style of a request.
type Mode int

const (
	// ModeGenerate is a single-shot completion of a prompt.
	ModeGenerate Mode = iota
	// ModeChat sends the prompt as a user turn after a system turn.
	ModeChat
)

func (m Mode) String() string {
	if m == ModeChat {
		return "chat"
	}
	return "generate"
}

// Request is one completion call.
type Request struct {
	Mode        Mode
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// CompletionAPI is implemented by each provider adapter.
type CompletionAPI interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Client adds timeouts, throttling and response checks on top of a
// CompletionAPI.
type Client struct {
	api             CompletionAPI
	limiter         *rate.Limiter
	generateTimeout time.Duration
	chatTimeout     time.Duration
}

// ClientOptions tunes a Client. Zero values fall back to defaults.
type ClientOptions struct {
	GenerateTimeout   time.Duration
	ChatTimeout       time.Duration
	RequestsPerSecond float64
	Burst             int
}

// NewClient creates a Client over api.
func NewClient(api CompletionAPI, opts ClientOptions) *Client {
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = DefaultGenerateTimeout
	}
	if opts.ChatTimeout <= 0 {
		opts.ChatTimeout = DefaultChatTimeout
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return &Client{
		api:             api,
		limiter:         limiter,
		generateTimeout: opts.GenerateTimeout,
		chatTimeout:     opts.ChatTimeout,
	}
}

// Generate completes prompt within the generate timeout.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, c.generateTimeout, Request{
		Mode:        ModeGenerate,
		Prompt:      prompt,
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	})
}

// Chat answers prompt under the given system instructions within the chat
// timeout.
func (c *Client) Chat(ctx context.Context, system, prompt string) (string, error) {
	return c.complete(ctx, c.chatTimeout, Request{
		Mode:        ModeChat,
		System:      system,
		Prompt:      prompt,
		Temperature: defaultTemperature,
	})
}

func (c *Client) complete(ctx context.Context, timeout time.Duration, req Request) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", ErrEmptyPrompt
	}

	ctx, span := telemetry.StartSpan(ctx, "llm."+req.Mode.String(), telemetry.SpanAttributes{
		Operation: req.Mode.String(),
	})
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		err = fmt.Errorf("rate limit wait: %w", err)
		span.SetError(err)
		return "", err
	}

	out, err := c.api.Complete(ctx, req)
	if err != nil {
		err = fmt.Errorf("failed to complete prompt: %w", err)
		span.SetError(err)
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		span.SetError(ErrEmptyResponse)
		return "", ErrEmptyResponse
	}
	return out, nil
}
