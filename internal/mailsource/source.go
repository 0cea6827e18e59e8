// Package mailsource implements the mail side of the digest pipeline:
// session lifecycle plus the filtered fetch of recent messages.
package mailsource

import (
	"context"
	"log/slog"

	gc "github.com/joshsymonds/maildigest/internal/gmail"
)

// Connector yields an authenticated provider client for one session.
type Connector interface {
	Connect(ctx context.Context) (gc.Client, error)
}

// Source fetches recent mail through a narrow provider client. Errors at
// this boundary are logged and degrade to empty or partial results; the
// orchestrator never sees them.
type Source struct {
	Connector Connector
	Log       *slog.Logger

	client gc.Client // session handle, nil until Connect succeeds
}

func New(connector Connector, log *slog.Logger) *Source {
	return &Source{Connector: connector, Log: log}
}

// Connect establishes the provider session. Returns false and logs the
// cause on any failure; no error escapes this boundary.
func (s *Source) Connect(ctx context.Context) bool {
	client, err := s.Connector.Connect(ctx)
	if err != nil {
		s.Log.Error("failed to connect to mail provider", "error", err)
		return false
	}
	s.client = client
	return true
}

// Disconnect releases the session handle. Idempotent; safe to call when
// Connect never succeeded.
func (s *Source) Disconnect() {
	s.client = nil
}

// FetchRecent retrieves messages matching the push-down query built from
// filters, in provider-returned order. A mid-fetch error is logged and
// whatever was collected so far is returned; this is not transactional.
func (s *Source) FetchRecent(ctx context.Context, filters gc.FilterConfig) []gc.Message {
	if s.client == nil {
		s.Log.Error("mail source not connected")
		return nil
	}

	q := gc.BuildQuery(filters)
	s.Log.Info("fetching recent mail", "query", q.Raw)

	ids, err := s.client.List(ctx, q)
	if err != nil {
		s.Log.Error("list recent mail", "error", err)
		return nil
	}

	var msgs []gc.Message
	for _, id := range ids {
		m, err := s.client.Get(ctx, id)
		if err != nil {
			s.Log.Error("fetch message", "id", string(id), "error", err, "collected", len(msgs))
			return msgs
		}
		msgs = append(msgs, m)
	}
	return msgs
}
