package faq

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	short := "syllabus"
	assert.Equal(t, short, Truncate(short))

	long := strings.Repeat("ü", MaxInputChars+50)
	assert.Len(t, []rune(Truncate(long)), MaxInputChars)
}

func TestTopicsPrompt(t *testing.T) {
	p := TopicsPrompt("Week 1: Intro")
	assert.Contains(t, p, "TOPIC:")
	assert.True(t, strings.HasSuffix(p, "DOCUMENT:\nWeek 1: Intro"))
}

func TestQAPrompt(t *testing.T) {
	p := QAPrompt("Week 1: Intro", []string{"Arrays", "Grading"}, 5, []string{"When is the exam?"})

	assert.Contains(t, p, "Write 5 questions")
	assert.Contains(t, p, "TOPICS:\n- Arrays\n- Grading\n")
	assert.Contains(t, p, "Do NOT repeat")
	assert.Contains(t, p, "- When is the exam?\n")
	assert.Contains(t, p, "Q: <question>\nA: <answer>")
}

func TestQAPrompt_NoTopicsOrExclusions(t *testing.T) {
	p := QAPrompt("text", nil, 3, nil)

	assert.NotContains(t, p, "TOPICS:")
	assert.NotContains(t, p, "Do NOT repeat")
}
