// Package faq turns model output into question/answer items and builds the
// prompts that ask for them.
package faq

import (
	"strings"

	"github.com/cloo-solutions/syllabus/internal/domain"
)

// MaxTopics bounds the topics kept from a topics response.
const MaxTopics = 8

// ErrNoItems is returned when model output yields no complete Q/A pair.
var ErrNoItems = domain.ErrUnparseableFAQ

// ParseQA reads line-oriented "Q: ..." / "A: ..." output.
//
// A Q: line flushes any complete pending pair and starts a new question. An A:
// line starts the answer. TOPIC: lines are discarded. Any other non-blank line
// continues the answer, or the question if no answer has started, joined with
// a single space. Prefixes match case-insensitively and may be wrapped in
// markdown emphasis such as **Q:**.
func ParseQA(raw string) ([]domain.QAItem, error) {
	var (
		items    []domain.QAItem
		question string
		answer   string
		inAnswer bool
	)

	flush := func() {
		if question != "" && answer != "" {
			items = append(items, domain.QAItem{Question: question, Answer: answer})
		}
		question, answer, inAnswer = "", "", false
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if _, ok := cutPrefix(line, "TOPIC:"); ok {
			continue
		}
		if rest, ok := cutPrefix(line, "Q:"); ok {
			flush()
			question = rest
			continue
		}
		if rest, ok := cutPrefix(line, "A:"); ok {
			if question == "" {
				continue
			}
			inAnswer = true
			answer = join(answer, rest)
			continue
		}

		switch {
		case inAnswer:
			answer = join(answer, line)
		case question != "":
			question = join(question, line)
		}
	}
	flush()

	if len(items) == 0 {
		return nil, ErrNoItems
	}
	return items, nil
}

// ParseTopics extracts topic names from a topics response. TOPIC: lines win
// when present; otherwise every non-blank line counts, with bullets and
// numbering removed. Topics are deduplicated case-insensitively and capped at
// MaxTopics.
func ParseTopics(raw string) []string {
	lines := strings.Split(raw, "\n")

	var tagged []string
	for _, line := range lines {
		if rest, ok := cutPrefix(strings.TrimSpace(line), "TOPIC:"); ok {
			tagged = append(tagged, rest)
		}
	}
	if len(tagged) == 0 {
		for _, line := range lines {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasSuffix(line, ":") {
				continue
			}
			tagged = append(tagged, stripListMarker(line))
		}
	}

	seen := make(map[string]struct{}, len(tagged))
	topics := make([]string, 0, MaxTopics)
	for _, t := range tagged {
		t = strings.Trim(strings.TrimSpace(t), "*_`\"")
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		topics = append(topics, t)
		if len(topics) == MaxTopics {
			break
		}
	}
	return topics
}

// cutPrefix matches prefix case-insensitively after removing leading markdown
// emphasis, heading or bullet marks, and returns the trimmed remainder.
func cutPrefix(line, prefix string) (string, bool) {
	l := strings.TrimLeft(line, "*_#- ")
	if len(l) < len(prefix) || !strings.EqualFold(l[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimLeft(l[len(prefix):], "*_ ")), true
}

func stripListMarker(line string) string {
	line = strings.TrimLeft(line, "-*•+ ")
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i < len(line) && (line[i] == '.' || line[i] == ')') {
		line = line[i+1:]
	}
	return strings.TrimSpace(line)
}

func join(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " " + b
}
