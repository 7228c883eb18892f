package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/cloo-solutions/syllabus/internal/domain"
	"github.com/cloo-solutions/syllabus/internal/faq"
	"github.com/cloo-solutions/syllabus/internal/pagination"
	"github.com/cloo-solutions/syllabus/internal/telemetry"
)

// BuildResult is the outcome of building a FAQ from a document
type BuildResult struct {
	FaqID      string
	DocumentID string
	Count      int
}

// FaqPage is one page of a FAQ set
type FaqPage struct {
	FaqID         string
	DocumentID    string
	MaxReached    bool
	ExtendRunning bool
	pagination.PageResult[domain.QAItem]
}

// ExtendResult identifies the job serving an extension request
type ExtendResult struct {
	JobID          string
	AlreadyRunning bool
}

// FaqService builds FAQ sets and extends them in the background
type FaqService struct {
	docs    DocumentRepositoryInterface
	faqs    FaqRepositoryInterface
	jobs    ExtendJobRepositoryInterface
	llm     LLMClient
	tasks   TaskSubmitter
	uuidGen UUIDGenerator
	now     func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFaqService creates a new FaqService instance
func NewFaqService(
	docs DocumentRepositoryInterface,
	faqs FaqRepositoryInterface,
	jobs ExtendJobRepositoryInterface,
	llm LLMClient,
	tasks TaskSubmitter,
	uuidGen UUIDGenerator,
) *FaqService {
	if uuidGen == nil {
		uuidGen = &DefaultUUIDGenerator{}
	}
	return &FaqService{
		docs:    docs,
		faqs:    faqs,
		jobs:    jobs,
		llm:     llm,
		tasks:   tasks,
		uuidGen: uuidGen,
		now:     utcNow,
		locks:   make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex guarding mutations of one FAQ set.
func (s *FaqService) lockFor(faqID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[faqID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[faqID] = l
	}
	return l
}

// Build generates the first page of questions for a document.
func (s *FaqService) Build(ctx context.Context, documentID string) (*BuildResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "FaqService.Build", telemetry.SpanAttributes{
		DocumentID: documentID,
		Operation:  "build",
	})
	defer span.End()

	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !doc.HasText() {
		return nil, domain.ErrEmptyDocumentText
	}
	text := faq.Truncate(strings.TrimSpace(doc.RawText))

	rawTopics, err := s.llm.Generate(ctx, faq.TopicsPrompt(text))
	if err != nil {
		span.SetError(err)
		return nil, domain.ErrGenerationFailed.WithCause(fmt.Errorf("topics: %w", err))
	}
	topics := faq.ParseTopics(rawTopics)

	batch, err := s.generate(ctx, text, topics, domain.FaqPageSize, nil)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	seen := make(map[string]struct{})
	items, hashes := faq.Accept(batch, seen, domain.FaqPageSize)

	if missing := domain.FaqPageSize - len(items); missing > 0 {
		extra, err := s.generate(ctx, text, topics, missing, questionsOf(items))
		if err != nil {
			log.Printf("faq: supplementary request for document %s failed: %v", documentID, err)
		} else {
			more, moreHashes := faq.Accept(extra, seen, missing)
			items = append(items, more...)
			hashes = append(hashes, moreHashes...)
		}
	}

	if len(items) == 0 {
		return nil, domain.ErrUnparseableFAQ
	}

	set := domain.NewFaqSet(s.uuidGen.NewString(), documentID, topics, items, hashes, s.now())
	if err := domain.ValidateFaqSet(set); err != nil {
		return nil, err
	}
	if err := s.faqs.Create(ctx, set); err != nil {
		return nil, err
	}

	log.Printf("faq: built %s for document %s with %d items", set.ID, documentID, len(items))
	return &BuildResult{FaqID: set.ID, DocumentID: documentID, Count: len(items)}, nil
}

// generate asks for n Q/A pairs and parses the reply.
func (s *FaqService) generate(ctx context.Context, text string, topics []string, n int, exclude []string) ([]domain.QAItem, error) {
	raw, err := s.llm.Generate(ctx, faq.QAPrompt(text, topics, n, exclude))
	if err != nil {
		return nil, domain.ErrGenerationFailed.WithCause(err)
	}
	return faq.ParseQA(raw)
}

// GetPage returns one 1-based page of a FAQ set.
func (s *FaqService) GetPage(ctx context.Context, faqID string, page, pageSize int) (*FaqPage, error) {
	ctx, span := telemetry.StartSpan(ctx, "FaqService.GetPage", telemetry.SpanAttributes{
		FaqID:     faqID,
		Operation: "page",
	})
	defer span.End()

	set, err := s.faqs.GetByID(ctx, faqID)
	if err != nil {
		return nil, err
	}

	result, err := pagination.Paginate(set.Items, page, pageSize)
	if err != nil {
		return nil, err
	}

	running := false
	if set.ExtendRunning {
		job, err := s.inFlightJob(ctx, set)
		if err != nil {
			return nil, err
		}
		running = job != nil
	}

	return &FaqPage{
		FaqID:         set.ID,
		DocumentID:    set.DocumentID,
		MaxReached:    set.MaxReached,
		ExtendRunning: running,
		PageResult:    result,
	}, nil
}

// inFlightJob returns the job named by the set's running flag while that job
// is still running and within its TTL. A flag left behind by a crashed or
// interrupted task yields nil.
func (s *FaqService) inFlightJob(ctx context.Context, set *domain.FaqSet) (*domain.ExtendJob, error) {
	if !set.ExtendRunning || set.ExtendJobID == "" {
		return nil, nil
	}
	job, err := s.jobs.GetByID(ctx, set.ExtendJobID)
	if errors.Is(err, domain.ErrExtendJobNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if job.Finished() || job.Expired(s.now()) {
		return nil, nil
	}
	return job, nil
}

// StartExtend schedules generation of more questions. A request made while
// an extension is in flight returns that job instead of starting another.
func (s *FaqService) StartExtend(ctx context.Context, faqID string) (*ExtendResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "FaqService.StartExtend", telemetry.SpanAttributes{
		FaqID:     faqID,
		Operation: "extend",
	})
	defer span.End()

	lock := s.lockFor(faqID)
	lock.Lock()
	defer lock.Unlock()

	set, err := s.faqs.GetByID(ctx, faqID)
	if err != nil {
		return nil, err
	}
	if set.ExtendRunning {
		running, err := s.inFlightJob(ctx, set)
		if err != nil {
			return nil, err
		}
		if running != nil {
			return &ExtendResult{JobID: running.ID, AlreadyRunning: true}, nil
		}
		s.abandonJob(ctx, set.ExtendJobID)
		log.Printf("faq: extend flag on %s points at dead job %q, starting a new one", faqID, set.ExtendJobID)
	}

	now := s.now()
	job := domain.NewExtendJob(s.uuidGen.NewString(), faqID, now)
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	set.ExtendRunning = true
	set.ExtendJobID = job.ID
	set.UpdatedAt = now
	if err := s.faqs.Update(ctx, set); err != nil {
		s.failJob(ctx, job, err)
		return nil, err
	}

	telemetry.AddBreadcrumb(ctx, "faq", "extension "+job.ID+" started for "+faqID)

	jobID := job.ID
	if err := s.tasks.Submit(func(taskCtx context.Context) {
		s.runExtend(taskCtx, faqID, jobID)
	}); err != nil {
		log.Printf("faq: extension %s for %s rejected: %v", jobID, faqID, err)
		s.failJob(ctx, job, domain.ErrExtendQueueFull.WithCause(err))
		set.ExtendRunning = false
		set.UpdatedAt = s.now()
		if uerr := s.faqs.Update(ctx, set); uerr != nil {
			log.Printf("faq: failed to clear extend flag on %s: %v", faqID, uerr)
		}
	}

	return &ExtendResult{JobID: jobID}, nil
}

func (s *FaqService) failJob(ctx context.Context, job *domain.ExtendJob, cause error) {
	if err := job.Fail(cause.Error(), s.now()); err != nil {
		return
	}
	if err := s.jobs.Update(ctx, job); err != nil {
		log.Printf("faq: failed to record error on job %s: %v", job.ID, err)
	}
}

// abandonJob marks a job that will never finish as failed, if it still exists.
func (s *FaqService) abandonJob(ctx context.Context, jobID string) {
	if jobID == "" {
		return
	}
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil || job.Finished() {
		return
	}
	s.failJob(ctx, job, errExtensionAbandoned)
}

var errExtensionAbandoned = errors.New("extension abandoned before it finished")

// FailInterrupted marks every running job as failed. It is meant for startup,
// when no task from a previous process can still be running.
func (s *FaqService) FailInterrupted(ctx context.Context) (int64, error) {
	n, err := s.jobs.FailRunning(ctx, errExtensionAbandoned.Error(), s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to reset interrupted extensions: %w", err)
	}
	return n, nil
}

// GetJob returns an extension job. Jobs older than the TTL are swept first.
func (s *FaqService) GetJob(ctx context.Context, jobID string) (*domain.ExtendJob, error) {
	ctx, span := telemetry.StartSpan(ctx, "FaqService.GetJob", telemetry.SpanAttributes{
		JobID:     jobID,
		Operation: "job",
	})
	defer span.End()

	if _, err := s.jobs.DeleteExpired(ctx, s.now().Add(-domain.ExtendJobTTL)); err != nil {
		log.Printf("faq: sweeping expired jobs failed: %v", err)
	}

	return s.jobs.GetByID(ctx, jobID)
}

// runExtend is the background half of StartExtend. Generation runs without
// the FAQ lock; the append and job completion happen under it.
func (s *FaqService) runExtend(ctx context.Context, faqID, jobID string) {
	ctx, span := telemetry.StartSpan(ctx, "FaqService.runExtend", telemetry.SpanAttributes{
		FaqID:     faqID,
		JobID:     jobID,
		Operation: "extend",
	})
	defer span.End()

	defer func() {
		if p := recover(); p != nil {
			lock := s.lockFor(faqID)
			lock.Lock()
			s.clearRunning(ctx, faqID, jobID)
			s.abandonJob(ctx, jobID)
			lock.Unlock()
			panic(p)
		}
	}()

	batch, genErr := s.generateExtension(ctx, faqID)
	if genErr != nil {
		span.SetError(genErr)
		telemetry.CaptureError(ctx, genErr)
	}

	lock := s.lockFor(faqID)
	lock.Lock()
	defer lock.Unlock()

	added, err := s.applyExtension(ctx, faqID, jobID, batch, genErr)

	job, jerr := s.jobs.GetByID(ctx, jobID)
	if jerr != nil {
		log.Printf("faq: extension job %s vanished: %v", jobID, jerr)
		return
	}
	if err != nil {
		s.failJob(ctx, job, err)
		log.Printf("faq: extension %s for %s failed: %v", jobID, faqID, err)
		return
	}
	if cerr := job.Complete(added, s.now()); cerr != nil {
		return
	}
	if uerr := s.jobs.Update(ctx, job); uerr != nil {
		log.Printf("faq: failed to complete job %s: %v", jobID, uerr)
		return
	}
	log.Printf("faq: extension %s added %d items to %s", jobID, added, faqID)
}

// generateExtension produces candidate items for a FAQ set, or nil when the
// set is already full.
func (s *FaqService) generateExtension(ctx context.Context, faqID string) ([]domain.QAItem, error) {
	set, err := s.faqs.GetByID(ctx, faqID)
	if err != nil {
		return nil, err
	}
	remaining := set.Remaining()
	if remaining == 0 {
		return nil, nil
	}

	doc, err := s.docs.GetByID(ctx, set.DocumentID)
	if err != nil {
		return nil, err
	}
	if !doc.HasText() {
		return nil, domain.ErrEmptyDocumentText
	}
	text := faq.Truncate(strings.TrimSpace(doc.RawText))

	return s.generate(ctx, text, set.Topics, min(domain.FaqPageSize, remaining), set.Questions())
}

// applyExtension appends new items and clears the running flag if it still
// belongs to jobID. On failure the item list is left as it was but the flag
// is still cleared.
func (s *FaqService) applyExtension(ctx context.Context, faqID, jobID string, batch []domain.QAItem, genErr error) (int, error) {
	set, err := s.faqs.GetByID(ctx, faqID)
	if err != nil {
		return 0, err
	}

	added := 0
	if genErr == nil && len(batch) > 0 {
		limit := min(domain.FaqPageSize, set.Remaining())
		items, _ := faq.Accept(batch, set.SeenHashes, limit)
		set.Items = append(set.Items, items...)
		added = len(items)
	}
	set.MaxReached = len(set.Items) >= domain.FaqMaxItems
	if set.ExtendJobID == jobID {
		set.ExtendRunning = false
	}
	set.UpdatedAt = s.now()

	if err := s.faqs.Update(ctx, set); err != nil {
		s.clearRunning(ctx, faqID, jobID)
		return 0, err
	}
	return added, genErr
}

// clearRunning drops the running flag unless a newer job has taken it over.
func (s *FaqService) clearRunning(ctx context.Context, faqID, jobID string) {
	set, err := s.faqs.GetByID(ctx, faqID)
	if err != nil {
		log.Printf("faq: failed to clear extend flag on %s: %v", faqID, err)
		return
	}
	if !set.ExtendRunning || set.ExtendJobID != jobID {
		return
	}
	set.ExtendRunning = false
	set.UpdatedAt = s.now()
	if err := s.faqs.Update(ctx, set); err != nil {
		log.Printf("faq: failed to clear extend flag on %s: %v", faqID, err)
	}
}

func questionsOf(items []domain.QAItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Question
	}
	return out
}
