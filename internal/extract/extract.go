// Package extract turns uploaded files into plain text.
package extract

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"

	"github.com/cloo-solutions/syllabus/internal/domain"
)

// Result is the text extracted from one file.
type Result struct {
	Text        string
	ContentType string
	// Supported is false when Text is the placeholder for an unhandled type.
	Supported bool
}

// Extractor converts file bytes to text.
type Extractor interface {
	Extract(filename string, data []byte) (Result, error)
}

var docconvTypes = map[string]struct{}{
	".pdf":   {},
	".doc":   {},
	".docx":  {},
	".odt":   {},
	".rtf":   {},
	".html":  {},
	".htm":   {},
	".xml":   {},
	".pages": {},
}

// DocconvExtractor reads text files directly and hands office and PDF formats
// to docconv. Anything else gets a placeholder text instead of an error.
type DocconvExtractor struct {
	useReadability bool
}

func NewDocconvExtractor(useReadability bool) *DocconvExtractor {
	return &DocconvExtractor{useReadability: useReadability}
}

// Placeholder is the text stored for files whose type cannot be extracted.
func Placeholder(ext string) string {
	return fmt.Sprintf("[Text extraction not implemented for %s. Upload a .txt for now.]", ext)
}

func (e *DocconvExtractor) Extract(filename string, data []byte) (Result, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	contentType := docconv.MimeTypeByExtension(filename)

	switch ext {
	case ".txt", ".md":
		return Result{
			Text:        strings.ToValidUTF8(string(data), ""),
			ContentType: "text/plain",
			Supported:   true,
		}, nil
	case ".csv":
		text, err := csvText(data)
		if err != nil {
			return Result{}, domain.ErrUnsupportedFileType.WithCause(err)
		}
		return Result{Text: text, ContentType: "text/csv", Supported: true}, nil
	}

	if _, ok := docconvTypes[ext]; !ok {
		log.Printf("extract: no extractor for %q, storing placeholder", ext)
		return Result{Text: Placeholder(ext), ContentType: contentType}, nil
	}

	res, err := docconv.Convert(bytes.NewReader(data), contentType, e.useReadability)
	if err != nil {
		log.Printf("docconv: extraction failed for content type '%s': %v", contentType, err)
		return Result{}, domain.ErrUnsupportedFileType.WithCause(err)
	}
	return Result{Text: res.Body, ContentType: contentType, Supported: true}, nil
}

// csvText renders each record as one line of comma-separated cells.
func csvText(data []byte) (string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var b strings.Builder
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read csv: %w", err)
		}
		b.WriteString(strings.Join(rec, ", "))
		b.WriteByte('\n')
	}
	return b.String(), nil
}
