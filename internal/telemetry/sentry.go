// Package telemetry wraps Sentry tracing and error reporting for the API and
// the background extension jobs.
package telemetry

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/cloo-solutions/syllabus/internal/domain"
)

const (
	serverName   = "syllabus"
	flushTimeout = 5 * time.Second
)

// unsampledPrefixes are transaction names never traced: probes and job polling.
var unsampledPrefixes = []string{
	"GET /health",
	"GET /faq/jobs/",
}

type Config struct {
	DSN              string
	Environment      string
	TracesSampleRate float64
	Debug            bool
}

// Init configures the global Sentry client. An empty DSN disables Sentry and
// returns a no-op flush. Init failures are logged, not returned, so the
// server still starts.
func Init(cfg Config) (func(), error) {
	if cfg.DSN == "" {
		return func() {}, nil
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.TracesSampleRate <= 0 {
		cfg.TracesSampleRate = 1.0
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		EnableTracing:    true,
		TracesSampleRate: cfg.TracesSampleRate,
		Debug:            cfg.Debug,
		ServerName:       serverName,
		TracesSampler: sentry.TracesSampler(func(sc sentry.SamplingContext) float64 {
			return sampleRate(sc.Span, cfg.TracesSampleRate)
		}),
	})
	if err != nil {
		log.Printf("sentry: failed to initialize (continuing without tracing): %v", err)
		return func() {}, nil
	}

	log.Printf("sentry: tracing initialized (environment: %s, sample_rate: %.2f)", cfg.Environment, cfg.TracesSampleRate)
	return func() { sentry.Flush(flushTimeout) }, nil
}

// sampleRate skips probe and polling transactions and makes child spans
// follow their parent.
func sampleRate(span *sentry.Span, rate float64) float64 {
	for _, p := range unsampledPrefixes {
		if strings.HasPrefix(span.Name, p) {
			return 0
		}
	}
	var root sentry.SpanID
	if span.ParentSpanID != root {
		if span.Sampled.Bool() {
			return 1
		}
		return 0
	}
	return rate
}

// SpanAttributes are tagged on service and LLM spans when non-empty.
type SpanAttributes struct {
	DocumentID string
	FaqID      string
	JobID      string
	Operation  string
}

func (a SpanAttributes) apply(span *sentry.Span) {
	for _, tag := range [][2]string{
		{"document_id", a.DocumentID},
		{"faq_id", a.FaqID},
		{"job_id", a.JobID},
	} {
		if tag[1] != "" {
			span.SetTag(tag[0], tag[1])
		}
	}
	if a.Operation != "" {
		span.SetData("operation", a.Operation)
	}
}

// Span is a nil-safe handle on a Sentry span.
type Span struct {
	inner *sentry.Span
}

func (s *Span) End() {
	if s.inner != nil {
		s.inner.Finish()
	}
}

// SetError records err on the span. Client errors (validation, not found,
// unsupported, unauthorized) only set the span status; everything else is
// also reported as an exception.
func (s *Span) SetError(err error) {
	if s.inner == nil || err == nil {
		return
	}
	if code := domain.CodeOf(err); code != "" {
		s.inner.SetTag("error_code", code)
	}
	if isClientError(err) {
		s.inner.Status = sentry.SpanStatusInvalidArgument
		return
	}
	s.inner.Status = sentry.SpanStatusInternalError
	if hub := sentry.GetHubFromContext(s.inner.Context()); hub != nil {
		hub.CaptureException(err)
	}
}

// StartSpan starts a child of the span in ctx, or a new transaction named
// name when ctx carries none (background jobs).
func StartSpan(ctx context.Context, name string, attrs SpanAttributes) (context.Context, *Span) {
	var span *sentry.Span
	if parent := sentry.SpanFromContext(ctx); parent != nil {
		span = parent.StartChild(name)
	} else {
		span = sentry.StartSpan(ctx, name, sentry.WithTransactionName(name))
	}
	attrs.apply(span)
	return span.Context(), &Span{inner: span}
}

// CaptureError reports a failure that has no caller to return it to, such as
// a failed extension job. Client errors are ignored.
func CaptureError(ctx context.Context, err error) {
	if err == nil || isClientError(err) {
		return
	}
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	sentry.CaptureException(err)
}

// AddBreadcrumb records a step that will be attached to later events.
func AddBreadcrumb(ctx context.Context, category, message string) {
	breadcrumb := &sentry.Breadcrumb{
		Category:  category,
		Message:   message,
		Level:     sentry.LevelInfo,
		Timestamp: time.Now(),
	}
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.AddBreadcrumb(breadcrumb, nil)
		return
	}
	sentry.AddBreadcrumb(breadcrumb)
}

func isClientError(err error) bool {
	switch domain.CodeOf(err) {
	case domain.ErrCodeValidation, domain.ErrCodeNotFound, domain.ErrCodeUnsupported, domain.ErrCodeUnauthorized:
		return true
	}
	return false
}
