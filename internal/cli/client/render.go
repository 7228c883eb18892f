package client

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	boldCyan  = color.New(color.FgCyan, color.Bold).SprintFunc()
	boldGreen = color.New(color.FgGreen, color.Bold).SprintFunc()
	yellow    = color.New(color.FgYellow).SprintFunc()
	red       = color.New(color.FgRed, color.Bold).SprintFunc()
	faint     = color.New(color.Faint).SprintFunc()
)

func printJSON(w io.Writer, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func renderFaqPage(w io.Writer, page *FaqPage) {
	first := (page.Page-1)*page.PageSize + 1
	for i, item := range page.Items {
		fmt.Fprintf(w, "%s %s\n", boldCyan(fmt.Sprintf("Q%d.", first+i)), item.Question)
		fmt.Fprintf(w, "    %s\n\n", item.Answer)
	}

	footer := fmt.Sprintf("page %d/%d, %d questions", page.Page, max(page.TotalPages, 1), page.Total)
	switch {
	case page.MaxReached:
		footer += ", maximum reached"
	case page.ExtendRunning:
		footer += ", extension running"
	}
	fmt.Fprintln(w, faint(footer))
}

func renderJob(w io.Writer, job *ExtendJob) {
	var status string
	switch job.Status {
	case "done":
		status = boldGreen(job.Status)
	case "error":
		status = red(job.Status)
	default:
		status = yellow(job.Status)
	}

	line := fmt.Sprintf("job %s (faq %s): %s", job.JobID, job.FaqID, status)
	if job.Added != nil {
		line += fmt.Sprintf(", added %d", *job.Added)
	}
	if job.Error != nil {
		line += ": " + *job.Error
	}
	fmt.Fprintln(w, line)
}

func renderChat(w io.Writer, reply *ChatReply) {
	fmt.Fprintln(w, boldGreen("Answer:"))
	fmt.Fprintln(w, reply.Answer)
	if reply.MatchedSnippet != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, faint("Matched: "+oneLine(*reply.MatchedSnippet, 160)))
	}
}

func oneLine(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
