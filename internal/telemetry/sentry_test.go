package telemetry

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/syllabus/internal/domain"
)

func TestInit_EmptyDSNIsNoop(t *testing.T) {
	shutdown, err := Init(Config{})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	shutdown()
}

func TestStartSpan_WithoutSentry(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "FaqService.Build", SpanAttributes{
		DocumentID: "d1",
		Operation:  "build",
	})
	require.NotNil(t, span)
	assert.NotNil(t, ctx)

	span.SetError(errors.New("boom"))
	span.SetError(nil)
	span.End()

	CaptureError(ctx, errors.New("background failure"))
	AddBreadcrumb(ctx, "faq", "extend started")
}

func TestSpan_NilInner(t *testing.T) {
	var span Span
	span.SetError(errors.New("boom"))
	span.End()
}

func TestIsClientError(t *testing.T) {
	assert.True(t, isClientError(domain.ErrFaqNotFound))
	assert.True(t, isClientError(fmt.Errorf("build: %w", domain.ErrEmptyDocumentText)))
	assert.True(t, isClientError(domain.ErrInvalidAPIKey))
	assert.False(t, isClientError(domain.ErrGenerationFailed.WithCause(errors.New("timeout"))))
	assert.False(t, isClientError(errors.New("plain")))
}

func TestSampleRate(t *testing.T) {
	health := &sentry.Span{Name: "GET /health"}
	assert.Equal(t, 0.0, sampleRate(health, 0.5))

	poll := &sentry.Span{Name: "GET /faq/jobs/{job_id}"}
	assert.Equal(t, 0.0, sampleRate(poll, 0.5))

	root := &sentry.Span{Name: "POST /documents/{document_id}/build_faq"}
	assert.Equal(t, 0.5, sampleRate(root, 0.5))

	child := &sentry.Span{Name: "FaqService.Build", ParentSpanID: sentry.SpanID{1}, Sampled: sentry.SampledTrue}
	assert.Equal(t, 1.0, sampleRate(child, 0.5))

	dropped := &sentry.Span{Name: "FaqService.Build", ParentSpanID: sentry.SpanID{1}, Sampled: sentry.SampledFalse}
	assert.Equal(t, 0.0, sampleRate(dropped, 0.5))
}
