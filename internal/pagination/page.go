package pagination

import (
	"github.com/cloo-solutions/syllabus/internal/domain"
)

const (
	DefaultPage     = 1
	DefaultPageSize = domain.FaqPageSize
	MaxPageSize     = 50
)

// PageResult represents one page window over an ordered sequence
type PageResult[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Normalize validates a 1-based page and a page size, capping the size at
// MaxPageSize.
func Normalize(page, pageSize int) (int, int, error) {
	if page < 1 {
		return 0, 0, domain.ErrInvalidPage
	}
	if pageSize < 1 {
		return 0, 0, domain.ErrInvalidPageSize
	}
	return page, min(pageSize, MaxPageSize), nil
}

// TotalPages returns ceil(total/pageSize).
func TotalPages(total, pageSize int) int {
	if pageSize < 1 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Paginate slices items for a 1-based page. A page past the end yields an
// empty, non-nil slice. The returned items never alias the input.
func Paginate[T any](items []T, page, pageSize int) (PageResult[T], error) {
	page, pageSize, err := Normalize(page, pageSize)
	if err != nil {
		return PageResult[T]{}, err
	}

	total := len(items)
	start := min((page-1)*pageSize, total)
	end := min(start+pageSize, total)

	window := make([]T, end-start)
	copy(window, items[start:end])

	return PageResult[T]{
		Items:      window,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: TotalPages(total, pageSize),
	}, nil
}
