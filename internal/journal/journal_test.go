package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndRecent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	started := time.Date(2026, time.August, 28, 9, 0, 0, 0, time.UTC)

	entries := []Entry{
		{StartedAt: started, FinishedAt: started.Add(time.Minute), Outcome: "done", Messages: 4},
		{StartedAt: started.Add(24 * time.Hour), FinishedAt: started.Add(24*time.Hour + time.Minute), Outcome: "failed", Messages: 0, Cause: "failed to connect to mail provider"},
	}
	for _, e := range entries {
		if err := j.Record(ctx, e); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	got, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	// Newest first.
	if got[0].Outcome != "failed" || got[1].Outcome != "done" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[0].Cause != "failed to connect to mail provider" {
		t.Fatalf("cause = %q", got[0].Cause)
	}
	if !got[1].StartedAt.Equal(started) {
		t.Fatalf("started_at = %v, want %v", got[1].StartedAt, started)
	}
}

func TestRecentLimit(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		e := Entry{StartedAt: time.Now(), FinishedAt: time.Now(), Outcome: "done", Messages: i}
		if err := j.Record(ctx, e); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	got, err := j.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}
}
