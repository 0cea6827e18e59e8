package schedule

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func slogDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseScanTime(t *testing.T) {
	tests := []struct {
		input   string
		hour    int
		minute  int
		wantErr bool
	}{
		{input: "09:00", hour: 9, minute: 0},
		{input: "9:00", hour: 9, minute: 0},
		{input: "23:59", hour: 23, minute: 59},
		{input: " 07:30 ", hour: 7, minute: 30},
		{input: "25:00", wantErr: true},
		{input: "noon", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.input, func(t *testing.T) {
			hour, minute, err := ParseScanTime(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if hour != tc.hour || minute != tc.minute {
				t.Fatalf("got %02d:%02d, want %02d:%02d", hour, minute, tc.hour, tc.minute)
			}
		})
	}
}

func TestShouldFireOncePerDay(t *testing.T) {
	l := &Loop{hour: 9, minute: 0}
	day1 := time.Date(2026, time.August, 28, 9, 0, 10, 0, time.UTC)

	if !l.shouldFire(day1) {
		t.Fatal("expected fire at scan minute")
	}
	if l.shouldFire(day1.Add(20 * time.Second)) {
		t.Fatal("second tick in the same minute must not fire")
	}
	if l.shouldFire(day1.Add(time.Hour)) {
		t.Fatal("wrong minute must not fire")
	}
	if !l.shouldFire(day1.Add(24 * time.Hour)) {
		t.Fatal("expected fire again the next day")
	}
}

func TestShouldFireSkipsWrongMinute(t *testing.T) {
	l := &Loop{hour: 14, minute: 30}
	for _, now := range []time.Time{
		time.Date(2026, time.August, 28, 14, 29, 59, 0, time.UTC),
		time.Date(2026, time.August, 28, 14, 31, 0, 0, time.UTC),
		time.Date(2026, time.August, 28, 2, 30, 0, 0, time.UTC),
	} {
		if l.shouldFire(now) {
			t.Fatalf("fired at %v", now)
		}
	}
}

func TestStartRunsImmediatelyAndStopsOnCancel(t *testing.T) {
	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	l := &Loop{
		ScanTime: "09:00",
		Interval: time.Millisecond,
		// Clock pinned far from the scan minute so only the startup run fires.
		Clock: func() time.Time {
			return time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)
		},
		Log: slogDiscard(),
		Run: func(ctx context.Context) {
			_ = ctx
			runs.Add(1)
		},
	}

	done := make(chan error, 1)
	go func() { done <- l.Start(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("start returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("loop did not stop on cancel")
	}
	if got := runs.Load(); got != 1 {
		t.Fatalf("runs = %d, want exactly the startup run", got)
	}
}

func TestStartRejectsBadScanTime(t *testing.T) {
	l := &Loop{ScanTime: "25:00", Log: slogDiscard(), Run: func(context.Context) {}}
	if err := l.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid scan time")
	}
}
