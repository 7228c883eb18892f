package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/cloo-solutions/syllabus/internal/jobs"
)

// MockLLMClient is a mock implementation of LLMClient
type MockLLMClient struct {
	mock.Mock
}

func (m *MockLLMClient) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockLLMClient) Chat(ctx context.Context, system, prompt string) (string, error) {
	args := m.Called(ctx, system, prompt)
	return args.String(0), args.Error(1)
}

// sequenceUUIDGenerator returns prefix-1, prefix-2, ...
type sequenceUUIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

func (g *sequenceUUIDGenerator) NewString() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// queueSubmitter holds submitted tasks until the test runs them.
type queueSubmitter struct {
	tasks  []jobs.Task
	reject error
}

func (q *queueSubmitter) Submit(task jobs.Task) error {
	if q.reject != nil {
		return q.reject
	}
	q.tasks = append(q.tasks, task)
	return nil
}

func (q *queueSubmitter) runAll(ctx context.Context) {
	pending := q.tasks
	q.tasks = nil
	for _, t := range pending {
		t(ctx)
	}
}
