package faq

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/cloo-solutions/syllabus/internal/domain"
)

var (
	punctuation = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// NormalizeQuestion lowercases q, strips punctuation and collapses whitespace.
// Punctuation goes first, so whitespace it leaves behind is collapsed too:
// "What is X ?" and "what is x?" normalize to the same "what is x".
func NormalizeQuestion(q string) string {
	q = punctuation.ReplaceAllString(strings.ToLower(q), "")
	return strings.TrimSpace(whitespace.ReplaceAllString(q, " "))
}

// QuestionHash is the hex SHA-256 of the normalized question.
func QuestionHash(q string) string {
	sum := sha256.Sum256([]byte(NormalizeQuestion(q)))
	return hex.EncodeToString(sum[:])
}

// Accept returns the items of batch whose question hash is in neither seen nor
// earlier in batch, stopping after limit items. The hashes of accepted items
// are added to seen and returned alongside them.
func Accept(batch []domain.QAItem, seen map[string]struct{}, limit int) ([]domain.QAItem, []string) {
	var (
		accepted []domain.QAItem
		hashes   []string
	)
	for _, item := range batch {
		if len(accepted) >= limit {
			break
		}
		if NormalizeQuestion(item.Question) == "" {
			continue
		}
		h := QuestionHash(item.Question)
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		accepted = append(accepted, item)
		hashes = append(hashes, h)
	}
	return accepted, hashes
}
