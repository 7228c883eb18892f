package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	envAPIKey = "SYLLABUS_API_KEY"
	envAPIURL = "SYLLABUS_API_URL"

	defaultAPIURL = "http://localhost:8000"

	// A FAQ build makes two model calls of up to three minutes each.
	defaultTimeout = 7 * time.Minute

	maxResponseBytes = 16 << 20
)

// APIClient talks to the syllabus HTTP API.
type APIClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewAPIClientWithCmd resolves the key and URL from the command's flags,
// the environment (including a .env file) and the user config file.
func NewAPIClientWithCmd(cmd *cobra.Command) (*APIClient, error) {
	_ = godotenv.Load()

	// surface a broken config file instead of silently skipping it
	if _, err := LoadGlobalConfig(); err != nil {
		return nil, err
	}

	var flagKey, flagURL string
	if cmd != nil {
		flagKey, _ = cmd.Flags().GetString("api-key")
		flagURL, _ = cmd.Flags().GetString("api-url")
	}

	_, apiKey := ResolveAPIKey(flagKey)
	_, baseURL := ResolveAPIURL(flagURL)

	return NewAPIClientWithConfig(apiKey, baseURL), nil
}

func NewAPIClientWithConfig(apiKey, baseURL string) *APIClient {
	return &APIClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// APIResponse is the {"data"} / {"error","code"} envelope.
type APIResponse struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
	Code  string          `json:"code,omitempty"`
}

func (r *APIResponse) decode(out any) error {
	if err := json.Unmarshal(r.Data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// APIError is returned for any 4xx or 5xx response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error (%d %s): %s", e.StatusCode, e.Code, e.Message)
}

func (c *APIClient) Get(path string) (*APIResponse, error) {
	return c.send(http.MethodGet, path, nil, "")
}

// Post sends body as JSON. A nil body sends no payload.
func (c *APIClient) Post(path string, body any) (*APIResponse, error) {
	if body == nil {
		return c.send(http.MethodPost, path, nil, "")
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return c.send(http.MethodPost, path, bytes.NewReader(payload), "application/json")
}

func (c *APIClient) GetInto(path string, out any) error {
	resp, err := c.Get(path)
	if err != nil {
		return err
	}
	return resp.decode(out)
}

func (c *APIClient) PostInto(path string, body, out any) error {
	resp, err := c.Post(path, body)
	if err != nil {
		return err
	}
	return resp.decode(out)
}

// Upload posts filePath as the "file" field of a multipart form.
func (c *APIClient) Upload(path, filePath string) (*APIResponse, error) {
	form, contentType, err := multipartFile(filePath)
	if err != nil {
		return nil, err
	}
	return c.send(http.MethodPost, path, form, contentType)
}

func multipartFile(filePath string) (*bytes.Buffer, string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	form := &bytes.Buffer{}
	mw := multipart.NewWriter(form)
	part, err := mw.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("failed to read file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish form: %w", err)
	}
	return form, mw.FormDataContentType(), nil
}

func (c *APIClient) send(method, path string, body io.Reader, contentType string) (*APIResponse, error) {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	envelope := &APIResponse{}
	parseErr := json.Unmarshal(raw, envelope)

	if resp.StatusCode >= http.StatusBadRequest {
		if parseErr != nil {
			// proxies and panics answer with plain text
			return nil, &APIError{StatusCode: resp.StatusCode, Message: string(raw)}
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Code: envelope.Code, Message: envelope.Error}
	}
	if parseErr != nil {
		return nil, fmt.Errorf("failed to parse response: %w", parseErr)
	}
	return envelope, nil
}
