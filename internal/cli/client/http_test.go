package client

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestAPIClient_GetInto(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/faq/faq-1", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusOK, map[string]interface{}{
			"data": map[string]interface{}{
				"faq_id": "faq-1", "page": 2, "page_size": 5, "total": 7, "total_pages": 2,
				"items": []map[string]string{{"q": "Q6?", "a": "A6"}, {"q": "Q7?", "a": "A7"}},
			},
		})
	}))
	defer server.Close()

	api := NewAPIClientWithConfig("secret", server.URL)
	page, err := fetchPage(api, "faq-1", 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 7, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Q6?", page.Items[0].Question)
}

func TestAPIClient_NoKeyNoAuthHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusOK, map[string]interface{}{"data": map[string]string{"status": "ok"}})
	}))
	defer server.Close()

	_, err := NewAPIClientWithConfig("", server.URL).Get("/health")
	require.NoError(t, err)
}

func TestAPIClient_PostInto(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "doc-1", body["document_id"])
		writeEnvelope(w, http.StatusOK, map[string]interface{}{
			"data": map[string]interface{}{"answer": "Friday", "matched_snippet": "due Friday"},
		})
	}))
	defer server.Close()

	var reply ChatReply
	err := NewAPIClientWithConfig("", server.URL).PostInto("/chat",
		map[string]string{"document_id": "doc-1", "question": "When?"}, &reply)
	require.NoError(t, err)
	assert.Equal(t, "Friday", reply.Answer)
	require.NotNil(t, reply.MatchedSnippet)
	assert.Equal(t, "due Friday", *reply.MatchedSnippet)
}

func TestAPIClient_ErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusNotFound, map[string]string{"error": "faq not found", "code": "NOT_FOUND"})
	}))
	defer server.Close()

	_, err := NewAPIClientWithConfig("", server.URL).Get("/faq/missing")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.Equal(t, "faq not found", apiErr.Message)
	assert.Contains(t, apiErr.Error(), "404 NOT_FOUND")
}

func TestAPIClient_NonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewAPIClientWithConfig("", server.URL).Get("/")
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "bad gateway")
}

func TestAPIClient_Upload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "syllabus.md")
	require.NoError(t, os.WriteFile(path, []byte("# Week 1\nIntro"), 0644))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)

		assert.Equal(t, "syllabus.md", header.Filename)
		assert.Equal(t, "# Week 1\nIntro", string(data))
		writeEnvelope(w, http.StatusOK, map[string]interface{}{
			"data": map[string]string{"document_id": "doc-9", "filename": header.Filename},
		})
	}))
	defer server.Close()

	resp, err := NewAPIClientWithConfig("", server.URL).Upload("/upload", path)
	require.NoError(t, err)

	var uploaded UploadResult
	require.NoError(t, resp.decode(&uploaded))
	assert.Equal(t, "doc-9", uploaded.DocumentID)
}

func TestAPIClient_UploadMissingFile(t *testing.T) {
	_, err := NewAPIClientWithConfig("", "http://127.0.0.1:1").Upload("/upload", "/does/not/exist.txt")
	assert.ErrorContains(t, err, "failed to open file")
}

func TestNewAPIClientWithCmd_Cascade(t *testing.T) {
	withTempConfig(t)
	t.Setenv(envAPIKey, "env-key")
	t.Setenv(envAPIURL, "http://env")

	cmd := &cobra.Command{}
	cmd.Flags().String("api-key", "", "")
	cmd.Flags().String("api-url", "", "")

	client, err := NewAPIClientWithCmd(cmd)
	require.NoError(t, err)
	assert.Equal(t, "env-key", client.apiKey)
	assert.Equal(t, "http://env", client.baseURL)

	require.NoError(t, cmd.Flags().Set("api-url", "http://flag"))
	client, err = NewAPIClientWithCmd(cmd)
	require.NoError(t, err)
	assert.Equal(t, "http://flag", client.baseURL)
}

func TestWaitForJob(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		status := "running"
		if calls >= 3 {
			status = "done"
		}
		writeEnvelope(w, http.StatusOK, map[string]interface{}{
			"data": map[string]interface{}{"job_id": "job-1", "faq_id": "faq-1", "status": status, "added": 5},
		})
	}))
	defer server.Close()

	job, err := waitForJob(NewAPIClientWithConfig("", server.URL), "job-1", time.Millisecond, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "done", job.Status)
	require.NotNil(t, job.Added)
	assert.Equal(t, 5, *job.Added)
	assert.Equal(t, 3, calls)
}
