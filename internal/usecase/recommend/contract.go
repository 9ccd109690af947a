package recommend

import (
	"context"

	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/repository/articles"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/transport/cohere"
)

// Index is the vector index adapter (ISP).
type Index interface {
	QueryByText(ctx context.Context, text string, k int, category string) ([]articles.Hit, error)
	QueryByID(ctx context.Context, id string, k int) ([]articles.Hit, error)
	GetByID(ctx context.Context, id string) (articles.Record, error)
	Sample(ctx context.Context, limit int) ([]articles.Record, error)
}

// Reranker reorders candidate documents by relevance to a query.
type Reranker interface {
	Enabled() bool
	Rerank(ctx context.Context, query string, documents []string, topN int) ([]cohere.Result, error)
}

// Completer produces a chat completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}
