package faq

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cloo-solutions/syllabus/internal/domain"
)

func TestNormalizeQuestion(t *testing.T) {
	assert.Equal(t, "what is the exam date", NormalizeQuestion("  What is the EXAM date?? "))
	assert.Equal(t, "whats on week 2", NormalizeQuestion("What's   on\tweek 2!"))
	assert.Equal(t, "café hours", NormalizeQuestion("Café, hours?"))
	assert.Equal(t, "", NormalizeQuestion("?!"))
	// whitespace left by stripped punctuation collapses as well
	assert.Equal(t, "what is x", NormalizeQuestion("What is X ?"))
	assert.Equal(t, QuestionHash("what is x?"), QuestionHash("What is X ?"))
}

func TestQuestionHash_Idempotent(t *testing.T) {
	a := QuestionHash("When is the midterm?")
	b := QuestionHash("when is   the MIDTERM")
	c := QuestionHash("When is the final?")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestAccept(t *testing.T) {
	seen := map[string]struct{}{QuestionHash("Old question?"): {}}
	batch := []domain.QAItem{
		{Question: "old question", Answer: "dup of existing"},
		{Question: "New one?", Answer: "1"},
		{Question: "NEW ONE", Answer: "dup within batch"},
		{Question: "???", Answer: "blank after normalizing"},
		{Question: "Second?", Answer: "2"},
		{Question: "Third?", Answer: "3"},
	}

	accepted, hashes := Accept(batch, seen, 2)

	assert.Equal(t, []domain.QAItem{
		{Question: "New one?", Answer: "1"},
		{Question: "Second?", Answer: "2"},
	}, accepted)
	assert.Equal(t, []string{QuestionHash("New one?"), QuestionHash("Second?")}, hashes)
	assert.Len(t, seen, 3)
}

func TestAccept_DuplicateNeverGrows(t *testing.T) {
	seen := map[string]struct{}{}
	first, _ := Accept([]domain.QAItem{{Question: "Q?", Answer: "a"}}, seen, 5)
	again, _ := Accept([]domain.QAItem{{Question: "q", Answer: "b"}}, seen, 5)

	assert.Len(t, first, 1)
	assert.Empty(t, again)
}
