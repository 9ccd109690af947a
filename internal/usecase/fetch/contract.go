package fetch

import (
	"context"

	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/transport/rss"
)

// FeedFetcher downloads and parses a single RSS/Atom feed.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string, limit int) ([]rss.Item, error)
}

// SeenSet answers whether an article id was ingested by a previous run.
type SeenSet interface {
	Contains(id string) bool
}

// SnapshotWriter persists a JSON snapshot of the fetched batch.
type SnapshotWriter interface {
	Write(v any) (string, error)
}
