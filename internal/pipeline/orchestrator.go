// Package pipeline drives one run of the digest pipeline:
// connect, fetch, compose-and-summarize, file task.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gc "github.com/joshsymonds/maildigest/internal/gmail"
)

// State names the stage a run is in. Runs terminate Done or Failed; the
// Outcome carries the last stage entered.
type State int

const (
	StateConnect State = iota
	StateFetch
	StateCompose
	StateFile
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateConnect:
		return "connect"
	case StateFetch:
		return "fetch"
	case StateCompose:
		return "compose"
	case StateFile:
		return "file"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MailSource is the mail side of the pipeline.
type MailSource interface {
	Connect(ctx context.Context) bool
	FetchRecent(ctx context.Context, filters gc.FilterConfig) []gc.Message
	Disconnect()
}

// DigestComposer turns fetched messages into digest text.
type DigestComposer interface {
	Digest(ctx context.Context, messages []gc.Message) (string, bool)
}

// TaskFiler submits the digest to the external tracker.
type TaskFiler interface {
	CreateTask(ctx context.Context, content, description string) bool
}

// FilterSource supplies the filter settings, read fresh per run.
type FilterSource interface {
	FilterConfig() (gc.FilterConfig, error)
}

// Outcome records where a run terminated and why.
type Outcome struct {
	Done       bool
	Stage      State // last stage entered
	Messages   int
	Cause      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Orchestrator executes runs. Exactly one run executes at a time; the
// scheduler never starts a run while another is in progress.
type Orchestrator struct {
	Source   MailSource
	Composer DigestComposer
	Filer    TaskFiler
	Filters  FilterSource
	Log      *slog.Logger
	Clock    func() time.Time
}

func NewOrchestrator(source MailSource, composer DigestComposer, filer TaskFiler, filters FilterSource, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		Source:   source,
		Composer: composer,
		Filer:    filer,
		Filters:  filters,
		Log:      log,
		Clock:    time.Now,
	}
}

func (o *Orchestrator) clock() time.Time {
	if o.Clock != nil {
		return o.Clock()
	}
	return time.Now()
}

// Execute performs one full run. Failures terminate the run without
// crashing the process; Disconnect runs exactly once on every path,
// including connect failure and panics inside a stage.
func (o *Orchestrator) Execute(ctx context.Context) (out Outcome) {
	out = Outcome{Stage: StateConnect, StartedAt: o.clock()}
	o.Log.Info("starting daily email summary run")

	defer func() {
		if r := recover(); r != nil {
			out.Done = false
			out.Cause = fmt.Sprintf("panic: %v", r)
			o.Log.Error("run aborted by panic", "stage", out.Stage.String(), "panic", r)
		}
		out.FinishedAt = o.clock()
		if out.Done {
			o.Log.Info("run complete", "messages", out.Messages)
		} else {
			o.Log.Error("run failed", "stage", out.Stage.String(), "cause", out.Cause)
		}
	}()
	defer o.Source.Disconnect()

	filters, err := o.Filters.FilterConfig()
	if err != nil {
		out.Cause = fmt.Sprintf("load filter configuration: %v", err)
		return out
	}

	if !o.Source.Connect(ctx) {
		out.Cause = "failed to connect to mail provider"
		return out
	}

	out.Stage = StateFetch
	messages := o.Source.FetchRecent(ctx, filters)
	out.Messages = len(messages)

	out.Stage = StateCompose
	text, ok := o.Composer.Digest(ctx, messages)
	if !ok {
		out.Cause = "summarization produced no digest"
		return out
	}

	out.Stage = StateFile
	title := fmt.Sprintf("Email digest for %s", o.clock().Format("2006-01-02"))
	if !o.Filer.CreateTask(ctx, title, text) {
		out.Cause = "task filing failed"
		return out
	}

	out.Stage = StateDone
	out.Done = true
	return out
}
