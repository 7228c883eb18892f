package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/cloo-solutions/syllabus/internal/domain"
	"github.com/cloo-solutions/syllabus/internal/storage"
	"github.com/cloo-solutions/syllabus/internal/telemetry"
)

var errFilename = errors.New("filename is required")

// DocumentService ingests uploaded course files
type DocumentService struct {
	repo      DocumentRepositoryInterface
	uploads   BlobStore
	processed BlobStore
	extractor TextExtractor
	uuidGen   UUIDGenerator
}

// NewDocumentService creates a new DocumentService instance
func NewDocumentService(
	repo DocumentRepositoryInterface,
	uploads BlobStore,
	processed BlobStore,
	extractor TextExtractor,
	uuidGen UUIDGenerator,
) *DocumentService {
	if uuidGen == nil {
		uuidGen = &DefaultUUIDGenerator{}
	}
	return &DocumentService{
		repo:      repo,
		uploads:   uploads,
		processed: processed,
		extractor: extractor,
		uuidGen:   uuidGen,
	}
}

// UploadInput is a file received from a client
type UploadInput struct {
	Filename string
	Data     []byte
}

// Upload stores the raw file, extracts and stores its text and records the document.
// Unsupported file types are accepted with placeholder text.
func (s *DocumentService) Upload(ctx context.Context, input UploadInput) (*domain.Document, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.Upload", telemetry.SpanAttributes{
		Operation: "upload",
	})
	defer span.End()

	filename := strings.TrimSpace(input.Filename)
	if filename == "" {
		return nil, domain.ErrMissingRequiredField.WithCause(errFilename)
	}

	id := s.uuidGen.NewString()

	res, err := s.extractor.Extract(filename, input.Data)
	if err != nil {
		return nil, err
	}

	rawKey := id + "__" + storage.SafeName(filename)
	if err := s.uploads.Put(ctx, rawKey, res.ContentType, input.Data); err != nil {
		span.SetError(err)
		return nil, domain.ErrStorageOperationFail.WithCause(err)
	}
	if err := s.processed.Put(ctx, id+".txt", "text/plain; charset=utf-8", []byte(res.Text)); err != nil {
		span.SetError(err)
		return nil, domain.ErrStorageOperationFail.WithCause(err)
	}

	doc := domain.NewDocument(id, filename, res.ContentType, rawKey, res.Text, utcNow())
	if err := domain.ValidateDocument(doc); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, err
	}

	log.Printf("document: stored %s (%s, %d chars, supported=%t)", id, filename, len([]rune(res.Text)), res.Supported)
	return doc, nil
}

// GetByID retrieves a document by ID
func (s *DocumentService) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.GetByID", telemetry.SpanAttributes{
		DocumentID: id,
		Operation:  "get",
	})
	defer span.End()

	return s.repo.GetByID(ctx, id)
}
