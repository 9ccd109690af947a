package index

import (
	"context"

	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/repository/articles"
)

// Embedder converts text into vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Repository is the article vector store (ISP).
type Repository interface {
	EnsureIndex(ctx context.Context) error
	Upsert(ctx context.Context, recs []articles.Record) error
	Get(ctx context.Context, id string) (articles.Record, error)
	SearchByVector(ctx context.Context, vector []float32, k int, f articles.SearchFilter) ([]articles.Hit, error)
	ListMeta(ctx context.Context, offset, limit int) ([]articles.Record, int, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) (int, error)
	IndexName() string
}
