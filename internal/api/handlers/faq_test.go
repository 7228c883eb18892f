package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/cloo-solutions/syllabus/internal/domain"
	"github.com/cloo-solutions/syllabus/internal/pagination"
	"github.com/cloo-solutions/syllabus/internal/service"
)

func TestFaqHandler_Build(t *testing.T) {
	mockSvc := new(MockFaqService)
	handler := NewFaqHandler(mockSvc)
	mockSvc.On("Build", mock.Anything, "doc-1").
		Return(&service.BuildResult{FaqID: "faq-1", DocumentID: "doc-1", Count: 5}, nil)

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/documents/doc-1/build_faq", nil), "document_id", "doc-1")
	w := httptest.NewRecorder()
	handler.Build(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp BuildFaqResponse
	decodeData(t, w.Body.Bytes(), &resp)
	assert.Equal(t, BuildFaqResponse{FaqID: "faq-1", DocumentID: "doc-1", Count: 5}, resp)
}

func TestFaqHandler_Build_GenerationFailure(t *testing.T) {
	mockSvc := new(MockFaqService)
	handler := NewFaqHandler(mockSvc)
	mockSvc.On("Build", mock.Anything, "doc-1").
		Return(nil, domain.ErrGenerationFailed.WithCause(errors.New("ollama: connection refused")))

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/documents/doc-1/build_faq", nil), "document_id", "doc-1")
	w := httptest.NewRecorder()
	handler.Build(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "GENERATION_FAILED")
}

func TestFaqHandler_Get(t *testing.T) {
	mockSvc := new(MockFaqService)
	handler := NewFaqHandler(mockSvc)
	mockSvc.On("GetPage", mock.Anything, "faq-1", 2, 5).Return(&service.FaqPage{
		FaqID:      "faq-1",
		DocumentID: "doc-1",
		PageResult: pagination.PageResult[domain.QAItem]{
			Items:      []domain.QAItem{{Question: "Q6?", Answer: "A6."}},
			Page:       2,
			PageSize:   5,
			Total:      6,
			TotalPages: 2,
		},
	}, nil)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/faq/faq-1?page=2", nil), "faq_id", "faq-1")
	w := httptest.NewRecorder()
	handler.Get(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp FaqPageResponse
	decodeData(t, w.Body.Bytes(), &resp)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 6, resp.Total)
	assert.Equal(t, 2, resp.TotalPages)
	assert.Equal(t, []domain.QAItem{{Question: "Q6?", Answer: "A6."}}, resp.Items)
	assert.Contains(t, w.Body.String(), `"q":"Q6?"`)
}

func TestFaqHandler_Get_BadQuery(t *testing.T) {
	handler := NewFaqHandler(new(MockFaqService))

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/faq/faq-1?page=two", nil), "faq_id", "faq-1")
	w := httptest.NewRecorder()
	handler.Get(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFaqHandler_Get_InvalidPage(t *testing.T) {
	mockSvc := new(MockFaqService)
	handler := NewFaqHandler(mockSvc)
	mockSvc.On("GetPage", mock.Anything, "faq-1", 0, 5).Return(nil, domain.ErrInvalidPage)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/faq/faq-1?page=0", nil), "faq_id", "faq-1")
	w := httptest.NewRecorder()
	handler.Get(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFaqHandler_Extend(t *testing.T) {
	mockSvc := new(MockFaqService)
	handler := NewFaqHandler(mockSvc)
	mockSvc.On("StartExtend", mock.Anything, "faq-1").Return(&service.ExtendResult{JobID: "job-1", AlreadyRunning: true}, nil)

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/faq/faq-1/extend", nil), "faq_id", "faq-1")
	w := httptest.NewRecorder()
	handler.Extend(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	var resp ExtendResponse
	decodeData(t, w.Body.Bytes(), &resp)
	assert.Equal(t, ExtendResponse{JobID: "job-1", AlreadyRunning: true}, resp)
}

func TestFaqHandler_Extend_NotFound(t *testing.T) {
	mockSvc := new(MockFaqService)
	handler := NewFaqHandler(mockSvc)
	mockSvc.On("StartExtend", mock.Anything, "nope").Return(nil, domain.ErrFaqNotFound)

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/faq/nope/extend", nil), "faq_id", "nope")
	w := httptest.NewRecorder()
	handler.Extend(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFaqHandler_GetJob(t *testing.T) {
	mockSvc := new(MockFaqService)
	handler := NewFaqHandler(mockSvc)

	created := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	job := domain.NewExtendJob("job-1", "faq-1", created)
	_ = job.Complete(3, created.Add(time.Minute))
	mockSvc.On("GetJob", mock.Anything, "job-1").Return(job, nil)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/faq/jobs/job-1", nil), "job_id", "job-1")
	w := httptest.NewRecorder()
	handler.GetJob(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp ExtendJobResponse
	decodeData(t, w.Body.Bytes(), &resp)
	assert.Equal(t, "done", resp.Status)
	if assert.NotNil(t, resp.Added) {
		assert.Equal(t, 3, *resp.Added)
	}
	assert.Nil(t, resp.Error)
	assert.Contains(t, w.Body.String(), `"error":null`)
}

func TestFaqHandler_GetJob_Failed(t *testing.T) {
	mockSvc := new(MockFaqService)
	handler := NewFaqHandler(mockSvc)

	job := domain.NewExtendJob("job-2", "faq-1", time.Now().UTC())
	_ = job.Fail("generation failed", time.Now().UTC())
	mockSvc.On("GetJob", mock.Anything, "job-2").Return(job, nil)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/faq/jobs/job-2", nil), "job_id", "job-2")
	w := httptest.NewRecorder()
	handler.GetJob(w, req)

	var resp ExtendJobResponse
	decodeData(t, w.Body.Bytes(), &resp)
	assert.Equal(t, "error", resp.Status)
	assert.Nil(t, resp.Added)
	if assert.NotNil(t, resp.Error) {
		assert.Equal(t, "generation failed", *resp.Error)
	}
}
