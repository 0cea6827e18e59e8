// Package digest turns a batch of normalized mail records into a
// summarization prompt and hands it to the text-generation backend.
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	gc "github.com/joshsymonds/maildigest/internal/gmail"
)

const promptHeader = `You are an email summarization assistant.
Analyze the messages below and produce a bullet-point digest of the ones that matter.
Use your best judgment to decide which of the other messages are also relevant.

Here are the emails to summarize:

`

const regularHeader = "\nOther emails that may contain relevant information:\n"

const promptFooter = `
Respond with one line per relevant email, formatted exactly as:
- [Sender] - <one-sentence summary>
`

// Summarizer is the narrow text-generation surface the composer needs.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// Compose builds the instruction prompt for one run. Important messages
// come first, then the regular ones, each group preserving input order.
// Deterministic: identical input yields a byte-identical prompt.
func Compose(messages []gc.Message) string {
	var important, regular []gc.Message
	for _, m := range messages {
		if m.Important {
			important = append(important, m)
		} else {
			regular = append(regular, m)
		}
	}

	var b strings.Builder
	b.WriteString(promptHeader)
	for _, m := range important {
		writeEntry(&b, m)
	}
	if len(regular) > 0 {
		b.WriteString(regularHeader)
		for _, m := range regular {
			writeEntry(&b, m)
		}
	}
	b.WriteString(promptFooter)
	return b.String()
}

func writeEntry(b *strings.Builder, m gc.Message) {
	fmt.Fprintf(b, "- From: %s, Subject: %s\n  Content: %s\n", m.Sender, m.Subject, m.Body)
}

// Composer produces the digest text for one run.
type Composer struct {
	Backend Summarizer
	Log     *slog.Logger
}

// Digest composes the prompt and asks the backend for the digest text.
// Backend errors and empty results degrade to ok=false with the cause
// logged; an empty message list is still summarized (a degenerate digest
// is acceptable output, not an error).
func (c *Composer) Digest(ctx context.Context, messages []gc.Message) (string, bool) {
	prompt := Compose(messages)
	text, err := c.Backend.Summarize(ctx, prompt)
	if err != nil {
		c.Log.Error("summarize digest", "error", err)
		return "", false
	}
	if strings.TrimSpace(text) == "" {
		c.Log.Error("summarization backend returned empty text")
		return "", false
	}
	return text, true
}
