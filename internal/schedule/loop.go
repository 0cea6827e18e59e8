// Package schedule runs the pipeline once per day at a configured
// wall-clock time.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Loop wakes at a coarse interval and triggers Run when the clock crosses
// ScanTime. Runs execute synchronously inside the loop, so a tick that
// arrives mid-run is absorbed rather than queued.
type Loop struct {
	ScanTime string        // daily trigger, 24h "HH:MM"
	Interval time.Duration // polling granularity; defaults to one minute
	Clock    func() time.Time
	Log      *slog.Logger
	Run      func(ctx context.Context)

	hour, minute int
	firedDay     string
}

// ParseScanTime validates and splits an "HH:MM" trigger time.
func ParseScanTime(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("parse scan time %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}

// Start runs once immediately (startup behavior), then polls until ctx is
// canceled. Returns nil on clean shutdown.
func (l *Loop) Start(ctx context.Context) error {
	hour, minute, err := ParseScanTime(l.ScanTime)
	if err != nil {
		return err
	}
	l.hour, l.minute = hour, minute

	clock := l.Clock
	if clock == nil {
		clock = time.Now
	}
	interval := l.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	l.Log.Info("scheduler started", "scan_time", l.ScanTime)
	l.Run(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.Log.Info("scheduler stopped")
			return nil
		case <-ticker.C:
			if l.shouldFire(clock()) {
				l.Run(ctx)
			}
		}
	}
}

// shouldFire reports whether now matches the trigger minute and the loop
// has not already fired today.
func (l *Loop) shouldFire(now time.Time) bool {
	if now.Hour() != l.hour || now.Minute() != l.minute {
		return false
	}
	day := now.Format("2006-01-02")
	if day == l.firedDay {
		return false
	}
	l.firedDay = day
	return true
}
