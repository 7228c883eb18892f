package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/cloo-solutions/syllabus/internal/domain"
	"github.com/cloo-solutions/syllabus/internal/retrieval"
	"github.com/cloo-solutions/syllabus/internal/telemetry"
)

const (
	chatContextFallbackChars = 2000
	chatContextSeparator     = "\n\n---\n\n"
)

var (
	leadingFence  = regexp.MustCompile("^```[a-zA-Z]*\\s*")
	trailingFence = regexp.MustCompile("\\s*```$")
)

var logisticsHints = []string{
	"grading", "deadline", "attendance", "schedule", "office hours", "zoom", "link",
	"submission", "exam date", "date", "time", "room", "campus", "policy", "late",
	"assignment due", "rubric",
}

const chatSystemPrompt = `You are a helpful course tutor.
Default: focus on COURSE CONTENT (concepts, methods, comparisons, applications, examples).
Only answer logistics (deadlines, grading, schedule) if the user explicitly asks.
If the provided context is insufficient, say what key term/topic is missing and suggest what to search for.`

// ChatResult is an answer plus the best matching chunk, if any matched
type ChatResult struct {
	Answer         string
	MatchedSnippet *string
}

// ChatService answers questions about a document using keyword retrieval
type ChatService struct {
	docs DocumentRepositoryInterface
	llm  LLMClient
}

// NewChatService creates a new ChatService instance
func NewChatService(docs DocumentRepositoryInterface, llm LLMClient) *ChatService {
	return &ChatService{docs: docs, llm: llm}
}

// Answer retrieves the chunks most related to question and asks the model.
func (s *ChatService) Answer(ctx context.Context, documentID, question string) (*ChatResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "ChatService.Answer", telemetry.SpanAttributes{
		DocumentID: documentID,
		Operation:  "chat",
	})
	defer span.End()

	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(doc.RawText)
	if text == "" {
		return nil, domain.ErrEmptyDocumentText
	}

	q := strings.TrimSpace(question)
	if q == "" {
		return nil, domain.ErrEmptyQuestion
	}

	chunks := retrieval.Chunk(text, retrieval.DefaultMaxChars, retrieval.DefaultOverlap)
	top := retrieval.Retrieve(chunks, q, retrieval.DefaultTopK)

	context := strings.Join(retrieval.Texts(top), chatContextSeparator)
	if len(top) == 0 {
		context = prefix(text, chatContextFallbackChars)
	}

	raw, err := s.llm.Chat(ctx, chatSystemPrompt, buildChatPrompt(q, context, asksLogistics(q)))
	if err != nil {
		span.SetError(err)
		return nil, domain.ErrGenerationFailed.WithCause(err)
	}

	result := &ChatResult{Answer: stripModelNoise(raw)}
	if len(top) > 0 {
		matched := top[0].Text
		result.MatchedSnippet = &matched
	}
	return result, nil
}

func buildChatPrompt(question, context string, logistics bool) string {
	kind := "content"
	if logistics {
		kind = "logistics"
	}

	var b strings.Builder
	b.WriteString("QUESTION:\n")
	b.WriteString(question)
	b.WriteString("\n\nCONTEXT (from the user materials):\n")
	b.WriteString(context)
	b.WriteString("\n\nINSTRUCTIONS:\n")
	b.WriteString("- This looks like a " + kind + " question.\n")
	b.WriteString("- If this is a content question: define, compare, and give a small example.\n")
	b.WriteString("- If this is a logistics question: answer directly using context.")
	return b.String()
}

func asksLogistics(question string) bool {
	q := strings.ToLower(question)
	for _, h := range logisticsHints {
		if strings.Contains(q, h) {
			return true
		}
	}
	return false
}

// stripModelNoise removes a markdown code fence wrapped around the answer.
func stripModelNoise(s string) string {
	s = strings.TrimSpace(s)
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
