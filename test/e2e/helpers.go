//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	openai "github.com/sashabaranov/go-openai"

	"github.com/cloo-solutions/syllabus/internal/api/handlers"
	"github.com/cloo-solutions/syllabus/internal/extract"
	"github.com/cloo-solutions/syllabus/internal/jobs"
	"github.com/cloo-solutions/syllabus/internal/llm"
	"github.com/cloo-solutions/syllabus/internal/repository"
	"github.com/cloo-solutions/syllabus/internal/server"
	"github.com/cloo-solutions/syllabus/internal/service"
	"github.com/cloo-solutions/syllabus/internal/storage"
	"github.com/cloo-solutions/syllabus/internal/testutil"
)

const e2eAPIKey = "e2e-secret"

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T          *testing.T
	Ctx        context.Context
	PostgresC  *testutil.PostgresContainer
	RustFSC    *testutil.RustFSContainer
	Pool       *pgxpool.Pool
	S3Client   *storage.S3Client
	Model      *fakeModel
	ServerURL  string
	BinaryDir  string
	HTTPClient *http.Client

	closers []func()
}

// SetupE2EEnv starts Postgres and RustFS, a fake chat-completions server and
// the API server wired to all three.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()
	env := &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}

	env.PostgresC = testutil.NewPostgresContainer(ctx, t)
	env.RustFSC = testutil.NewRustFSContainer(ctx, t)
	env.Pool = testutil.NewTestPool(ctx, t, env.PostgresC, "../../migrations")

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        env.RustFSC.Endpoint(),
		Region:          testutil.RustFSRegion,
		AccessKeyID:     testutil.RustFSAccessKey,
		SecretAccessKey: testutil.RustFSSecretKey,
		Bucket:          "e2e-documents",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}
	env.S3Client = s3Client

	env.Model = &fakeModel{}
	modelSrv := httptest.NewServer(env.Model)
	env.closers = append(env.closers, modelSrv.Close)

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}
	env.startServer(modelSrv.URL+"/v1", port)

	return env
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.RustFSC != nil {
		e.RustFSC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
	if e.BinaryDir != "" {
		os.RemoveAll(e.BinaryDir)
	}
}

func (e *E2ETestEnv) startServer(modelURL string, port int) {
	adapter, err := llm.NewOpenAIAdapter("test-key", "test-model", modelURL)
	if err != nil {
		e.T.Fatalf("failed to create model adapter: %v", err)
	}
	llmClient := llm.NewClient(adapter, llm.ClientOptions{})

	docs := repository.NewDocumentRepository(e.Pool)
	faqs := repository.NewFaqRepository(e.Pool)
	extendJobs := repository.NewExtendJobRepository(e.Pool)

	taskPool := jobs.NewPool(2, 8)
	taskPool.Start(context.Background())

	uuidGen := &service.DefaultUUIDGenerator{}
	router := server.NewRouter(server.RouterConfig{
		APIKey: e2eAPIKey,
		DocumentHandler: handlers.NewDocumentHandler(service.NewDocumentService(
			docs, e.S3Client.WithPrefix("uploads"), e.S3Client.WithPrefix("processed"),
			extract.NewDocconvExtractor(false), uuidGen)),
		FaqHandler:  handlers.NewFaqHandler(service.NewFaqService(docs, faqs, extendJobs, llmClient, taskPool, uuidGen)),
		ChatHandler: handlers.NewChatHandler(service.NewChatService(docs, llmClient)),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			e.T.Logf("server error: %v", err)
		}
	}()

	e.ServerURL = fmt.Sprintf("http://localhost:%d", port)
	waitForServer(e.T, e.ServerURL, 10*time.Second)

	e.closers = append(e.closers, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
		taskPool.Stop()
	})
}

// BuildBinaries builds the syllabus CLI
func (e *E2ETestEnv) BuildBinaries() {
	tmpDir, err := os.MkdirTemp("", "syllabus-e2e-*")
	if err != nil {
		e.T.Fatalf("failed to create temp dir: %v", err)
	}
	e.BinaryDir = tmpDir

	cmd := exec.Command("go", "build", "-o", filepath.Join(tmpDir, "syllabus"), "./cmd/syllabus")
	cmd.Dir = "../.."
	if out, err := cmd.CombinedOutput(); err != nil {
		e.T.Fatalf("failed to build syllabus: %v\n%s", err, out)
	}
}

// RunCLI runs the syllabus CLI against the test server
func (e *E2ETestEnv) RunCLI(args ...string) (string, error) {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "syllabus"), args...)
	cmd.Dir = e.BinaryDir
	cmd.Env = append(os.Environ(),
		"SYLLABUS_API_KEY="+e2eAPIKey,
		"SYLLABUS_API_URL="+e.ServerURL,
		"XDG_CONFIG_HOME="+e.BinaryDir,
		"NO_COLOR=1",
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// APIResponse is the JSON envelope returned by the server
type APIResponse struct {
	Status int
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error,omitempty"`
	Code   string          `json:"code,omitempty"`
}

// Get performs an authenticated GET request
func (e *E2ETestEnv) Get(path string) *APIResponse {
	req, err := http.NewRequest(http.MethodGet, e.ServerURL+path, nil)
	if err != nil {
		e.T.Fatalf("failed to create request: %v", err)
	}
	return e.do(req)
}

// Post performs an authenticated POST request with an optional JSON body
func (e *E2ETestEnv) Post(path string, body interface{}) *APIResponse {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			e.T.Fatalf("failed to marshal body: %v", err)
		}
		reqBody = bytes.NewReader(data)
	}
	req, err := http.NewRequest(http.MethodPost, e.ServerURL+path, reqBody)
	if err != nil {
		e.T.Fatalf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.do(req)
}

// Upload posts content as a multipart file
func (e *E2ETestEnv) Upload(filename string, content []byte) *APIResponse {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		e.T.Fatalf("failed to create form file: %v", err)
	}
	part.Write(content)
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, e.ServerURL+"/upload", &buf)
	if err != nil {
		e.T.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.do(req)
}

func (e *E2ETestEnv) do(req *http.Request) *APIResponse {
	req.Header.Set("Authorization", "Bearer "+e2eAPIKey)

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		e.T.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		e.T.Fatalf("failed to read body: %v", err)
	}

	apiResp := &APIResponse{Status: resp.StatusCode}
	if err := json.Unmarshal(body, apiResp); err != nil {
		e.T.Fatalf("HTTP %d: unparseable body %q", resp.StatusCode, body)
	}
	return apiResp
}

// Decode unmarshals the data member into out
func (r *APIResponse) Decode(t *testing.T, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(r.Data, out); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
}

// fakeModel serves the chat completions endpoint. Topic prompts get a fixed
// topic list, chat turns (those with a system message) get a fixed answer and
// every other prompt gets five Q/A pairs numbered across calls.
type fakeModel struct {
	mu     sync.Mutex
	next   int
	calls  int
	failQA bool
}

func (m *fakeModel) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/chat/completions" {
		http.NotFound(w, r)
		return
	}

	var req openai.ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	prompt := req.Messages[len(req.Messages)-1].Content

	m.mu.Lock()
	m.calls++
	var content string
	switch {
	case req.Messages[0].Role == openai.ChatMessageRoleSystem:
		content = "The midterm is on March 14."
	case strings.Contains(prompt, "TOPIC: <short topic name>"):
		content = "TOPIC: Entropy\nTOPIC: Decision trees"
	case m.failQA:
		m.mu.Unlock()
		http.Error(w, `{"error":{"message":"overloaded","type":"server_error"}}`, http.StatusServiceUnavailable)
		return
	default:
		var b strings.Builder
		for i := 0; i < 5; i++ {
			m.next++
			fmt.Fprintf(&b, "Q: What is concept number %d?\nA: It is explained in section %d.\n", m.next, m.next)
		}
		content = b.String()
	}
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
		ID:     "chatcmpl-e2e",
		Object: "chat.completion",
		Model:  req.Model,
		Choices: []openai.ChatCompletionChoice{{
			Index:        0,
			Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
			FinishReason: openai.FinishReasonStop,
		}},
	})
}

// SetFailQA makes Q/A generation calls fail until reset.
func (m *fakeModel) SetFailQA(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failQA = fail
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
