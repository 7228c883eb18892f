package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cloo-solutions/syllabus/internal/api"
	"github.com/cloo-solutions/syllabus/internal/service"
)

type ChatService interface {
	Answer(ctx context.Context, documentID, question string) (*service.ChatResult, error)
}

type ChatHandler struct {
	svc ChatService
}

func NewChatHandler(svc ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type ChatRequest struct {
	DocumentID string `json:"document_id"`
	Question   string `json:"question"`
}

type ChatResponse struct {
	Answer         string  `json:"answer"`
	MatchedSnippet *string `json:"matched_snippet"`
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.DocumentID) == "" {
		api.Error(w, http.StatusBadRequest, "document_id is required")
		return
	}

	res, err := h.svc.Answer(r.Context(), req.DocumentID, req.Question)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, ChatResponse{Answer: res.Answer, MatchedSnippet: res.MatchedSnippet})
}
