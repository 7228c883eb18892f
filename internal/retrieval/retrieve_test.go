package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrieve_FallbackWithoutKeywords(t *testing.T) {
	chunks := []string{"one", "two", "three", "four", "five"}

	got := Retrieve(chunks, "is it?", 4)
	require.Len(t, got, 4)
	for i, s := range got {
		assert.Equal(t, chunks[i], s.Text)
		assert.Equal(t, 0, s.Score)
	}

	assert.Len(t, Retrieve(chunks[:2], "", 4), 2)
}

func TestRetrieve_ScoresDistinctKeywords(t *testing.T) {
	chunks := []string{
		"Week 1 covers arrays.",
		"Grading: exams are 40 percent, arrays homework 60 percent.",
		"Nothing relevant here.",
		"Exams happen in week 10.",
	}

	got := Retrieve(chunks, "How are exams and arrays graded?", 4)
	require.Len(t, got, 3)
	assert.Equal(t, chunks[1], got[0].Text)
	assert.Equal(t, 2, got[0].Score)
	// ties keep input order
	assert.Equal(t, chunks[0], got[1].Text)
	assert.Equal(t, chunks[3], got[2].Text)
}

func TestRetrieve_SubstringContainment(t *testing.T) {
	got := Retrieve([]string{"Print the LABEL on each submission"}, "which label for submission", 4)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Score)

	got = Retrieve([]string{"labelled boxes"}, "label", 4)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Score)
}

func TestRetrieve_TopK(t *testing.T) {
	chunks := []string{"exam a", "exam b", "exam c", "exam d", "exam e"}

	got := Retrieve(chunks, "exam", 2)
	assert.Equal(t, []string{"exam a", "exam b"}, Texts(got))
	assert.Nil(t, Retrieve(chunks, "exam", 0))
}

func TestRetrieve_NoMatches(t *testing.T) {
	assert.Empty(t, Retrieve([]string{"alpha", "beta"}, "quantum chromodynamics", 4))
}
