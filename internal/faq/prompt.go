package faq

import (
	"fmt"
	"strings"
)

// MaxInputChars is the prefix of document text sent to the model.
const MaxInputChars = 6000

// Truncate returns at most MaxInputChars runes of text.
func Truncate(text string) string {
	r := []rune(text)
	if len(r) <= MaxInputChars {
		return text
	}
	return string(r[:MaxInputChars])
}

// TopicsPrompt asks for the main topics of a document.
func TopicsPrompt(text string) string {
	var b strings.Builder
	b.WriteString("You are helping a student study a course document.\n")
	fmt.Fprintf(&b, "List the %d most important topics the document covers.\n", MaxTopics)
	b.WriteString("Write one topic per line as:\nTOPIC: <short topic name>\n")
	b.WriteString("Do not write anything else.\n\n")
	b.WriteString("DOCUMENT:\n")
	b.WriteString(Truncate(text))
	return b.String()
}

// QAPrompt asks for n question/answer pairs about text. Topics steer the
// questions and exclude lists questions that must not be repeated.
func QAPrompt(text string, topics []string, n int, exclude []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write %d questions a student is likely to ask about the course document below, ", n)
	b.WriteString("each with a short answer taken from the document.\n")
	b.WriteString("Prefer course content (concepts, methods, examples) over logistics unless the document is mostly logistics.\n")

	if len(topics) > 0 {
		b.WriteString("\nTOPICS:\n")
		for _, t := range topics {
			fmt.Fprintf(&b, "- %s\n", t)
		}
	}

	if len(exclude) > 0 {
		b.WriteString("\nDo NOT repeat or rephrase any of these questions:\n")
		for _, q := range exclude {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}

	b.WriteString("\nUse exactly this format with no numbering or extra text:\n")
	b.WriteString("Q: <question>\nA: <answer>\n\n")
	b.WriteString("DOCUMENT:\n")
	b.WriteString(Truncate(text))
	return b.String()
}
