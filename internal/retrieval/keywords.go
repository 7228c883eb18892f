package retrieval

import (
	"regexp"
	"strings"
)

const (
	minKeywordLen = 4
	maxKeywords   = 18
)

var tokenPattern = regexp.MustCompile(`[a-zA-Z0-9]+`)

// stopwords is the fixed exclusion list; retrieval scores depend on it
// staying exactly this set.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "that": {}, "this": {}, "from": {},
	"into": {}, "your": {}, "you": {}, "are": {}, "was": {}, "were": {}, "will": {},
	"have": {}, "has": {}, "had": {}, "they": {}, "them": {}, "their": {}, "then": {},
	"than": {}, "when": {}, "what": {}, "why": {}, "how": {}, "where": {}, "can": {},
	"could": {}, "should": {}, "would": {}, "about": {}, "also": {}, "not": {},
	"but": {}, "its": {}, "it's": {}, "as": {}, "on": {}, "in": {}, "to": {},
	"of": {}, "a": {}, "an": {}, "is": {}, "be": {}, "by": {}, "or": {}, "at": {},
	"it": {},
}

// Keywords returns the lowercase alphanumeric tokens of question that are at
// least four characters long and not stopwords, deduplicated in order of first
// occurrence and capped at 18.
func Keywords(question string) []string {
	tokens := tokenPattern.FindAllString(strings.ToLower(question), -1)

	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, maxKeywords)
	for _, tok := range tokens {
		if len(tok) < minKeywordLen {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
		if len(out) == maxKeywords {
			break
		}
	}
	return out
}
