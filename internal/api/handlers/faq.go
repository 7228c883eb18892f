package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cloo-solutions/syllabus/internal/api"
	"github.com/cloo-solutions/syllabus/internal/domain"
	"github.com/cloo-solutions/syllabus/internal/pagination"
	"github.com/cloo-solutions/syllabus/internal/service"
)

type FaqService interface {
	Build(ctx context.Context, documentID string) (*service.BuildResult, error)
	GetPage(ctx context.Context, faqID string, page, pageSize int) (*service.FaqPage, error)
	StartExtend(ctx context.Context, faqID string) (*service.ExtendResult, error)
	GetJob(ctx context.Context, jobID string) (*domain.ExtendJob, error)
}

type FaqHandler struct {
	svc FaqService
}

func NewFaqHandler(svc FaqService) *FaqHandler {
	return &FaqHandler{svc: svc}
}

type BuildFaqResponse struct {
	FaqID      string `json:"faq_id"`
	DocumentID string `json:"document_id"`
	Count      int    `json:"count"`
}

type FaqPageResponse struct {
	FaqID         string          `json:"faq_id"`
	DocumentID    string          `json:"document_id"`
	Page          int             `json:"page"`
	PageSize      int             `json:"page_size"`
	Total         int             `json:"total"`
	TotalPages    int             `json:"total_pages"`
	MaxReached    bool            `json:"max_reached"`
	ExtendRunning bool            `json:"extend_running"`
	Items         []domain.QAItem `json:"items"`
}

type ExtendResponse struct {
	JobID          string `json:"job_id"`
	AlreadyRunning bool   `json:"already_running"`
}

type ExtendJobResponse struct {
	JobID      string  `json:"job_id"`
	FaqID      string  `json:"faq_id"`
	Status     string  `json:"status"`
	Added      *int    `json:"added"`
	Error      *string `json:"error"`
	CreatedAt  string  `json:"created_at"`
	FinishedAt *string `json:"finished_at,omitempty"`
}

func jobToResponse(j *domain.ExtendJob) *ExtendJobResponse {
	resp := &ExtendJobResponse{
		JobID:     j.ID,
		FaqID:     j.FaqID,
		Status:    string(j.Status),
		Added:     j.Added,
		CreatedAt: j.CreatedAt.Format(time.RFC3339),
	}
	if j.Error != "" {
		msg := j.Error
		resp.Error = &msg
	}
	if j.FinishedAt != nil {
		at := j.FinishedAt.Format(time.RFC3339)
		resp.FinishedAt = &at
	}
	return resp
}

func (h *FaqHandler) Build(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "document_id")
	if documentID == "" {
		api.Error(w, http.StatusBadRequest, "document_id is required")
		return
	}

	res, err := h.svc.Build(r.Context(), documentID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, BuildFaqResponse{
		FaqID:      res.FaqID,
		DocumentID: res.DocumentID,
		Count:      res.Count,
	})
}

func (h *FaqHandler) Get(w http.ResponseWriter, r *http.Request) {
	faqID := chi.URLParam(r, "faq_id")
	if faqID == "" {
		api.Error(w, http.StatusBadRequest, "faq_id is required")
		return
	}

	page, err := intQuery(r, "page", pagination.DefaultPage)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "page must be an integer")
		return
	}
	pageSize, err := intQuery(r, "page_size", pagination.DefaultPageSize)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "page_size must be an integer")
		return
	}

	res, err := h.svc.GetPage(r.Context(), faqID, page, pageSize)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, FaqPageResponse{
		FaqID:         res.FaqID,
		DocumentID:    res.DocumentID,
		Page:          res.Page,
		PageSize:      res.PageSize,
		Total:         res.Total,
		TotalPages:    res.TotalPages,
		MaxReached:    res.MaxReached,
		ExtendRunning: res.ExtendRunning,
		Items:         res.Items,
	})
}

func (h *FaqHandler) Extend(w http.ResponseWriter, r *http.Request) {
	faqID := chi.URLParam(r, "faq_id")
	if faqID == "" {
		api.Error(w, http.StatusBadRequest, "faq_id is required")
		return
	}

	res, err := h.svc.StartExtend(r.Context(), faqID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusAccepted, ExtendResponse{JobID: res.JobID, AlreadyRunning: res.AlreadyRunning})
}

func (h *FaqHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		api.Error(w, http.StatusBadRequest, "job_id is required")
		return
	}

	job, err := h.svc.GetJob(r.Context(), jobID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, jobToResponse(job))
}

func intQuery(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
