package domain

import (
	"fmt"
	"strings"
	"time"
)

// Document is an uploaded course file together with its extracted text.
// It is immutable once created.
type Document struct {
	ID          string
	Filename    string
	ContentType string
	StorageKey  string
	RawText     string
	CreatedAt   time.Time
}

// NewDocument creates a new Document instance
func NewDocument(
	id, filename, contentType, storageKey, rawText string,
	createdAt time.Time,
) *Document {
	return &Document{
		ID:          id,
		Filename:    filename,
		ContentType: contentType,
		StorageKey:  storageKey,
		RawText:     rawText,
		CreatedAt:   createdAt,
	}
}

// HasText reports whether the document carries any non-blank text.
func (d *Document) HasText() bool {
	return strings.TrimSpace(d.RawText) != ""
}

// ValidateDocument validates a Document instance
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}

	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	if d.Filename == "" {
		return fmt.Errorf("document Filename is required")
	}

	if d.CreatedAt.IsZero() {
		return fmt.Errorf("document CreatedAt is required")
	}

	return nil
}
