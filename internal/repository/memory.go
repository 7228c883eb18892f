package repository

import (
	"context"
	"sync"
	"time"

	"github.com/cloo-solutions/syllabus/internal/domain"
)

// The memory repositories keep everything in process. Records are copied on
// the way in and out so callers never share state with the store.

type MemoryDocumentRepository struct {
	mu   sync.RWMutex
	docs map[string]domain.Document
}

func NewMemoryDocumentRepository() *MemoryDocumentRepository {
	return &MemoryDocumentRepository{docs: make(map[string]domain.Document)}
}

func (r *MemoryDocumentRepository) Create(_ context.Context, d *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[d.ID] = *d
	return nil
}

func (r *MemoryDocumentRepository) GetByID(_ context.Context, id string) (*domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.docs[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return &d, nil
}

type MemoryFaqRepository struct {
	mu   sync.RWMutex
	sets map[string]*domain.FaqSet
}

func NewMemoryFaqRepository() *MemoryFaqRepository {
	return &MemoryFaqRepository{sets: make(map[string]*domain.FaqSet)}
}

func (r *MemoryFaqRepository) Create(_ context.Context, f *domain.FaqSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets[f.ID] = f.Clone()
	return nil
}

func (r *MemoryFaqRepository) GetByID(_ context.Context, id string) (*domain.FaqSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.sets[id]
	if !ok {
		return nil, domain.ErrFaqNotFound
	}
	return f.Clone(), nil
}

func (r *MemoryFaqRepository) Update(_ context.Context, f *domain.FaqSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.sets[f.ID]
	if !ok {
		return domain.ErrFaqNotFound
	}
	if len(f.Items) < len(cur.Items) {
		return ErrItemsShrunk
	}
	r.sets[f.ID] = f.Clone()
	return nil
}

type MemoryExtendJobRepository struct {
	mu   sync.RWMutex
	jobs map[string]*domain.ExtendJob
}

func NewMemoryExtendJobRepository() *MemoryExtendJobRepository {
	return &MemoryExtendJobRepository{jobs: make(map[string]*domain.ExtendJob)}
}

func (r *MemoryExtendJobRepository) Create(_ context.Context, job *domain.ExtendJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job.Clone()
	return nil
}

func (r *MemoryExtendJobRepository) GetByID(_ context.Context, id string) (*domain.ExtendJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrExtendJobNotFound
	}
	return job.Clone(), nil
}

func (r *MemoryExtendJobRepository) Update(_ context.Context, job *domain.ExtendJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[job.ID]; !ok {
		return domain.ErrExtendJobNotFound
	}
	r.jobs[job.ID] = job.Clone()
	return nil
}

func (r *MemoryExtendJobRepository) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, job := range r.jobs {
		if job.CreatedAt.Before(before) {
			delete(r.jobs, id)
			n++
		}
	}
	return n, nil
}

func (r *MemoryExtendJobRepository) FailRunning(_ context.Context, msg string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, job := range r.jobs {
		if job.Fail(msg, at) == nil {
			n++
		}
	}
	return n, nil
}
