// Package runtime adapts *gmail.Service to the pipeline's small interface
// and owns the OAuth plumbing around it.
package runtime

import (
	"context"
	"fmt"
	"strings"

	gmailapi "google.golang.org/api/gmail/v1"

	gc "github.com/joshsymonds/maildigest/internal/gmail"
)

const (
	fallbackSubject = "No subject"
	fallbackSender  = "Unknown sender"
	fallbackDate    = "Unknown date"
)

type googleClient struct{ svc *gmailapi.Service }

func NewGoogleAPIClient(svc *gmailapi.Service) *googleClient { return &googleClient{svc} }

func (g *googleClient) List(ctx context.Context, q gc.Query) ([]gc.MessageID, error) {
	res, err := g.svc.Users.Messages.List("me").Q(q.Raw).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	var ids []gc.MessageID
	for _, m := range res.Messages {
		ids = append(ids, gc.MessageID(m.Id))
	}
	return ids, nil
}

func (g *googleClient) Get(ctx context.Context, id gc.MessageID) (gc.Message, error) {
	msg, err := g.svc.Users.Messages.Get("me", string(id)).Format("full").Context(ctx).Do()
	if err != nil {
		return gc.Message{}, fmt.Errorf("get message %s: %w", id, err)
	}
	return normalize(msg), nil
}

// normalize flattens a provider message into the pipeline's record. A
// message is important when Gmail applied the IMPORTANT label or the
// sender set an Importance header containing "important".
func normalize(msg *gmailapi.Message) gc.Message {
	out := gc.Message{
		Sender:  fallbackSender,
		Subject: fallbackSubject,
		Date:    fallbackDate,
		Body:    msg.Snippet,
	}
	for _, l := range msg.LabelIds {
		if l == "IMPORTANT" {
			out.Important = true
		}
	}
	if msg.Payload == nil {
		return out
	}
	for _, h := range msg.Payload.Headers {
		switch strings.ToLower(h.Name) {
		case "subject":
			if h.Value != "" {
				out.Subject = h.Value
			}
		case "from":
			if h.Value != "" {
				out.Sender = h.Value
			}
		case "date":
			if h.Value != "" {
				out.Date = h.Value
			}
		case "importance":
			if strings.Contains(strings.ToLower(h.Value), "important") {
				out.Important = true
			}
		}
	}
	return out
}
