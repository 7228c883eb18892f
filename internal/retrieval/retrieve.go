package retrieval

import (
	"sort"
	"strings"
)

// DefaultTopK is the number of chunks chat retrieves.
const DefaultTopK = 4

// Scored is a chunk paired with the number of distinct keywords it contains.
type Scored struct {
	Text  string
	Score int
}

// Retrieve ranks chunks against the keywords of question and returns at most k.
//
// A chunk's score is the number of distinct keywords found in it as
// case-insensitive substrings, so "lab" matches inside "label". Chunks scoring
// zero are dropped and ties keep their original order. When the question has
// no keywords the first k chunks are returned with score 0.
func Retrieve(chunks []string, question string, k int) []Scored {
	if k <= 0 {
		return nil
	}

	kws := Keywords(question)
	if len(kws) == 0 {
		n := min(k, len(chunks))
		out := make([]Scored, n)
		for i := range n {
			out[i] = Scored{Text: chunks[i]}
		}
		return out
	}

	var scored []Scored
	for _, c := range chunks {
		lower := strings.ToLower(c)
		score := 0
		for _, kw := range kws {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > 0 {
			scored = append(scored, Scored{Text: c, Score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// Texts returns the chunk text of each result.
func Texts(results []Scored) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Text
	}
	return out
}
