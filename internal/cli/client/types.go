package client

// Wire types mirror the server's JSON responses.

type UploadResult struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
}

type BuildResult struct {
	FaqID      string `json:"faq_id"`
	DocumentID string `json:"document_id"`
	Count      int    `json:"count"`
}

type QAItem struct {
	Question string `json:"q"`
	Answer   string `json:"a"`
}

type FaqPage struct {
	FaqID         string   `json:"faq_id"`
	DocumentID    string   `json:"document_id"`
	Page          int      `json:"page"`
	PageSize      int      `json:"page_size"`
	Total         int      `json:"total"`
	TotalPages    int      `json:"total_pages"`
	MaxReached    bool     `json:"max_reached"`
	ExtendRunning bool     `json:"extend_running"`
	Items         []QAItem `json:"items"`
}

type ExtendStarted struct {
	JobID          string `json:"job_id"`
	AlreadyRunning bool   `json:"already_running"`
}

type ExtendJob struct {
	JobID  string  `json:"job_id"`
	FaqID  string  `json:"faq_id"`
	Status string  `json:"status"`
	Added  *int    `json:"added"`
	Error  *string `json:"error"`
}

type ChatReply struct {
	Answer         string  `json:"answer"`
	MatchedSnippet *string `json:"matched_snippet"`
}
