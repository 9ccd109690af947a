package domain

import "errors"

var (
	// ErrArticleNotFound signals a missing article in the vector index.
	ErrArticleNotFound = errors.New("article not found")
	// ErrEmbeddingProvider signals an embedding provider failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrCompletionProvider signals a generative-text provider failure.
	ErrCompletionProvider = errors.New("completion provider error")
	// ErrRerankProvider signals a re-ranking provider failure.
	ErrRerankProvider = errors.New("rerank provider error")
	// ErrIndexUnavailable signals that the vector index cannot be reached.
	ErrIndexUnavailable = errors.New("vector index unavailable")
	// ErrNoPipelineOutput signals that no processed snapshot exists yet.
	ErrNoPipelineOutput = errors.New("no pipeline output available")
)
