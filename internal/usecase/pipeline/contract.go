package pipeline

import (
	"context"

	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/domain"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/usecase/fetch"
)

// Fetcher pulls fresh articles from the configured feeds.
type Fetcher interface {
	FetchAll(ctx context.Context) ([]domain.Article, fetch.Stats, error)
}

// Enricher fills AI summaries in place.
type Enricher interface {
	Summarize(ctx context.Context, articles []domain.Article) error
}

// Indexer embeds and stores articles in the vector index.
type Indexer interface {
	Store(ctx context.Context, articles []domain.Article) (int, error)
}

// SnapshotStore persists timestamped JSON snapshots.
type SnapshotStore interface {
	Write(v any) (string, error)
}

// SeenSet records ingested article ids across runs.
type SeenSet interface {
	Add(ids ...string)
	Save() error
}

// StatsStore persists the last-run record.
type StatsStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
