package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/syllabus/internal/domain"
	"github.com/cloo-solutions/syllabus/internal/service"
)

func multipartUpload(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestDocumentHandler_Upload_Success(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	doc := domain.NewDocument("doc-1", "notes.txt", "text/plain", "doc-1__notes.txt", "Entropy.", time.Now().UTC())
	mockSvc.On("Upload", mock.Anything, service.UploadInput{Filename: "notes.txt", Data: []byte("Entropy.")}).Return(doc, nil)

	w := httptest.NewRecorder()
	handler.Upload(w, multipartUpload(t, "file", "notes.txt", []byte("Entropy.")))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp UploadResponse
	decodeData(t, w.Body.Bytes(), &resp)
	assert.Equal(t, "doc-1", resp.DocumentID)
	assert.Equal(t, "notes.txt", resp.Filename)
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_Upload_MissingFile(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	w := httptest.NewRecorder()
	handler.Upload(w, multipartUpload(t, "attachment", "notes.txt", []byte("x")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "file is required")
	mockSvc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestDocumentHandler_Upload_NotMultipart(t *testing.T) {
	handler := NewDocumentHandler(new(MockDocumentService))

	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewBufferString(`{"file":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.Upload(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentHandler_Upload_UnsupportedFile(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)
	mockSvc.On("Upload", mock.Anything, mock.Anything).Return(nil, domain.ErrUnsupportedFileType)

	w := httptest.NewRecorder()
	handler.Upload(w, multipartUpload(t, "file", "broken.pdf", []byte("%PDF-garbage")))

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestDocumentHandler_Get(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	created := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	doc := domain.NewDocument("doc-1", "notes.txt", "text/plain", "doc-1__notes.txt", "héllo", created)
	mockSvc.On("GetByID", mock.Anything, "doc-1").Return(doc, nil)

	w := httptest.NewRecorder()
	handler.Get(w, withURLParam(httptest.NewRequest(http.MethodGet, "/documents/doc-1", nil), "document_id", "doc-1"))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp DocumentResponse
	decodeData(t, w.Body.Bytes(), &resp)
	assert.Equal(t, 5, resp.Chars)
	assert.Equal(t, "2026-02-01T09:30:00Z", resp.CreatedAt)
}

func TestDocumentHandler_Get_NotFound(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)
	mockSvc.On("GetByID", mock.Anything, "nope").Return(nil, domain.ErrDocumentNotFound)

	w := httptest.NewRecorder()
	handler.Get(w, withURLParam(httptest.NewRequest(http.MethodGet, "/documents/nope", nil), "document_id", "nope"))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
