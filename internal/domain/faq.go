package domain

import (
	"fmt"
	"time"
)

const (
	// FaqPageSize is the number of items a build produces and the default page size.
	FaqPageSize = 5
	// FaqMaxItems is the upper bound on items in a FaqSet.
	FaqMaxItems = 25
)

// QAItem is a single generated question and answer.
type QAItem struct {
	Question string `json:"q"`
	Answer   string `json:"a"`
}

// FaqSet is the generated FAQ for one document.
//
// Items only ever grow, no two items share a normalized-question hash and
// SeenHashes holds the hash of every item's question.
type FaqSet struct {
	ID            string
	DocumentID    string
	Topics        []string
	Items         []QAItem
	SeenHashes    map[string]struct{}
	ExtendRunning bool
	ExtendJobID   string
	MaxReached    bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewFaqSet creates a new FaqSet. hashes must hold the hash of each item.
func NewFaqSet(
	id, documentID string,
	topics []string,
	items []QAItem,
	hashes []string,
	createdAt time.Time,
) *FaqSet {
	seen := make(map[string]struct{}, len(hashes))
	for _, h := range hashes {
		seen[h] = struct{}{}
	}
	return &FaqSet{
		ID:         id,
		DocumentID: documentID,
		Topics:     topics,
		Items:      items,
		SeenHashes: seen,
		MaxReached: len(items) >= FaqMaxItems,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

// Seen reports whether a normalized-question hash is already present.
func (f *FaqSet) Seen(hash string) bool {
	_, ok := f.SeenHashes[hash]
	return ok
}

// Remaining returns how many items may still be appended.
func (f *FaqSet) Remaining() int {
	if n := FaqMaxItems - len(f.Items); n > 0 {
		return n
	}
	return 0
}

// Questions returns the question text of every item in order.
func (f *FaqSet) Questions() []string {
	out := make([]string, len(f.Items))
	for i, it := range f.Items {
		out[i] = it.Question
	}
	return out
}

// HashList returns SeenHashes as a slice in no particular order.
func (f *FaqSet) HashList() []string {
	out := make([]string, 0, len(f.SeenHashes))
	for h := range f.SeenHashes {
		out = append(out, h)
	}
	return out
}

// Clone returns a deep copy of the FaqSet.
func (f *FaqSet) Clone() *FaqSet {
	if f == nil {
		return nil
	}
	c := *f
	c.Topics = append([]string(nil), f.Topics...)
	c.Items = append([]QAItem(nil), f.Items...)
	c.SeenHashes = make(map[string]struct{}, len(f.SeenHashes))
	for h := range f.SeenHashes {
		c.SeenHashes[h] = struct{}{}
	}
	return &c
}

// ValidateFaqSet validates a FaqSet instance
func ValidateFaqSet(f *FaqSet) error {
	if f == nil {
		return fmt.Errorf("faq set cannot be nil")
	}

	if f.ID == "" {
		return fmt.Errorf("faq set ID is required")
	}

	if f.DocumentID == "" {
		return fmt.Errorf("faq set DocumentID is required")
	}

	if len(f.Items) > FaqMaxItems {
		return fmt.Errorf("faq set holds %d items, max is %d", len(f.Items), FaqMaxItems)
	}

	if len(f.SeenHashes) < len(f.Items) {
		return fmt.Errorf("faq set SeenHashes is missing item hashes")
	}

	return nil
}
