// Package api holds the JSON envelope shared by every handler.
package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/cloo-solutions/syllabus/internal/domain"
)

// SuccessResponse is the {"data": ...} envelope.
type SuccessResponse struct {
	Data any `json:"data"`
}

// ErrorResponse is the {"error": ..., "code": ...} envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

var statusByCode = map[string]int{
	domain.ErrCodeValidation:       http.StatusBadRequest,
	domain.ErrCodeNotFound:         http.StatusNotFound,
	domain.ErrCodeGenerationFailed: http.StatusBadGateway,
	domain.ErrCodeUnsupported:      http.StatusUnsupportedMediaType,
	domain.ErrCodeUnauthorized:     http.StatusUnauthorized,
	domain.ErrCodeInternalError:    http.StatusInternalServerError,
}

// codeByStatus labels handler-level rejections that never reach the domain.
var codeByStatus = map[int]string{
	http.StatusBadRequest:            domain.ErrCodeValidation,
	http.StatusUnauthorized:          domain.ErrCodeUnauthorized,
	http.StatusNotFound:              domain.ErrCodeNotFound,
	http.StatusRequestEntityTooLarge: domain.ErrCodeValidation,
	http.StatusUnsupportedMediaType:  domain.ErrCodeUnsupported,
}

// JSON writes data with the given status. A nil data writes no body.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}

func Success(w http.ResponseWriter, status int, data any) {
	JSON(w, status, SuccessResponse{Data: data})
}

// Error writes an error envelope whose code is derived from status.
func Error(w http.ResponseWriter, status int, message string) {
	code, ok := codeByStatus[status]
	if !ok && status >= http.StatusInternalServerError {
		code = domain.ErrCodeInternalError
	}
	JSON(w, status, ErrorResponse{Error: message, Code: code})
}

// DomainErrorToHTTP returns the status for the first DomainError in err's
// chain. Anything else is a 500.
func DomainErrorToHTTP(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if status, ok := statusByCode[domain.CodeOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// HandleError writes err as an error envelope. Errors outside the domain
// taxonomy are logged and answered with a generic message.
func HandleError(w http.ResponseWriter, err error) {
	code := domain.CodeOf(err)
	if code == "" {
		log.Printf("api: unhandled error: %v", err)
		JSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: domain.ErrCodeInternalError})
		return
	}
	JSON(w, DomainErrorToHTTP(err), ErrorResponse{Error: err.Error(), Code: code})
}
