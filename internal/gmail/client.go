package gmail

import "context"

// Client is the narrow Gmail surface required by the digest pipeline.
type Client interface {
	List(ctx context.Context, q Query) ([]MessageID, error)
	Get(ctx context.Context, id MessageID) (Message, error)
}
