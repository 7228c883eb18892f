package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cloo-solutions/syllabus/internal/domain"
	"github.com/cloo-solutions/syllabus/internal/extract"
	"github.com/cloo-solutions/syllabus/internal/jobs"
)

// DocumentRepositoryInterface defines the repository interface for document persistence
type DocumentRepositoryInterface interface {
	Create(ctx context.Context, d *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// FaqRepositoryInterface defines the repository interface for FAQ set persistence.
// Update must reject an item list shorter than the stored one.
type FaqRepositoryInterface interface {
	Create(ctx context.Context, f *domain.FaqSet) error
	GetByID(ctx context.Context, id string) (*domain.FaqSet, error)
	Update(ctx context.Context, f *domain.FaqSet) error
}

// ExtendJobRepositoryInterface defines the repository interface for extend job persistence
type ExtendJobRepositoryInterface interface {
	Create(ctx context.Context, job *domain.ExtendJob) error
	GetByID(ctx context.Context, id string) (*domain.ExtendJob, error)
	Update(ctx context.Context, job *domain.ExtendJob) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
	FailRunning(ctx context.Context, msg string, at time.Time) (int64, error)
}

// BlobStore stores raw uploads and extracted text
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// TextExtractor converts uploaded bytes to text
type TextExtractor interface {
	Extract(filename string, data []byte) (extract.Result, error)
}

// LLMClient is the text-completion collaborator
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Chat(ctx context.Context, system, prompt string) (string, error)
}

// TaskSubmitter schedules background work without blocking
type TaskSubmitter interface {
	Submit(task jobs.Task) error
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

func utcNow() time.Time {
	return time.Now().UTC()
}
