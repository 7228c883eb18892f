// Package retrieval implements the keyword retrieval used by chat: text is cut
// into overlapping windows and windows are ranked by keyword overlap.
package retrieval

import (
	"regexp"
	"strings"
)

const (
	DefaultMaxChars = 900
	DefaultOverlap  = 120
)

var (
	horizontalSpace = regexp.MustCompile(`[ \t]+`)
	blankLines      = regexp.MustCompile(`\n{3,}`)
)

// Chunk is a window of normalized document text.
type Chunk struct {
	Text        string
	StartOffset int
}

// Normalize collapses runs of spaces and tabs to one space and three or more
// newlines to exactly two.
func Normalize(text string) string {
	text = horizontalSpace.ReplaceAllString(text, " ")
	return blankLines.ReplaceAllString(text, "\n\n")
}

// Chunk splits text into windows of at most maxChars runes. Each window after
// the first starts overlap runes before the end of the previous one, and always
// at least one rune after the previous start. Whitespace-only windows are
// dropped and each window is trimmed.
func Chunk(text string, maxChars, overlap int) []string {
	chunks := ChunkWithOffsets(text, maxChars, overlap)
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}

// ChunkWithOffsets is Chunk but also reports where each window starts, in
// runes, within the normalized text.
func ChunkWithOffsets(text string, maxChars, overlap int) []Chunk {
	if maxChars < 1 {
		maxChars = 1
	}
	if overlap < 0 {
		overlap = 0
	}
	runes := []rune(Normalize(text))
	n := len(runes)

	var chunks []Chunk
	for i := 0; i < n; {
		end := min(i+maxChars, n)
		if piece := strings.TrimSpace(string(runes[i:end])); piece != "" {
			chunks = append(chunks, Chunk{Text: piece, StartOffset: i})
		}
		if end == n {
			break
		}
		i = max(end-overlap, i+1)
	}
	return chunks
}
