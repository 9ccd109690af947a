package index

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/domain"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/logger"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/metrics"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/repository/articles"
)

// Stored metadata is bounded so a single oversized article cannot bloat
// the index.
const (
	maxTitleLen   = 1000
	maxSummaryLen = 2000
	maxTagCount   = 10
	maxPreviewLen = 500
	maxEmbedLen   = 8000
)

// defaultCategory labels articles whose feed carried no category.
const defaultCategory = "general"

// Service embeds articles and maintains the vector index.
type Service struct {
	repo      Repository
	embed     Embedder
	threshold float64
	namespace string
}

// New creates an index service. threshold is the minimum similarity
// score a search hit must reach to be returned.
func New(repo Repository, embed Embedder, threshold float64, namespace string) *Service {
	return &Service{repo: repo, embed: embed, threshold: threshold, namespace: namespace}
}

// Store embeds and upserts articles. Any embedding or write failure
// aborts the whole call; partially stored batches are safe to retry
// because upserts are idempotent per article id.
func (s *Service) Store(ctx context.Context, arts []domain.Article) (int, error) {
	if len(arts) == 0 {
		return 0, nil
	}

	if err := s.repo.EnsureIndex(ctx); err != nil {
		return 0, fmt.Errorf("ensure index: %w", err)
	}

	texts := make([]string, len(arts))
	for i := range arts {
		texts[i] = embeddingText(&arts[i])
	}

	vectors, err := s.embed.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed %d articles: %w", len(arts), err)
	}
	if len(vectors) != len(arts) {
		return 0, fmt.Errorf("embedding count mismatch: got %d vectors for %d articles", len(vectors), len(arts))
	}

	recs := make([]articles.Record, len(arts))
	for i := range arts {
		recs[i] = toRecord(&arts[i], vectors[i])
	}

	if err := s.repo.Upsert(ctx, recs); err != nil {
		return 0, fmt.Errorf("store articles: %w", err)
	}

	metrics.ArticlesIndexedTotal.Add(float64(len(recs)))
	logger.FromContext(ctx).Info("articles indexed", zap.Int("count", len(recs)))
	return len(recs), nil
}

// QueryByText embeds the query and returns up to k hits above the
// similarity threshold. A non-empty category narrows the search with a
// tag pre-filter; the KNN then over-fetches 2x to compensate for
// threshold trimming.
func (s *Service) QueryByText(ctx context.Context, text string, k int, category string) ([]articles.Hit, error) {
	vector, err := s.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	fetchK := k
	if category != "" {
		fetchK = 2 * k
	}

	hits, err := s.repo.SearchByVector(ctx, vector, fetchK, articles.SearchFilter{Category: category})
	if err != nil {
		return nil, fmt.Errorf("query by text: %w", err)
	}
	return capHits(s.aboveThreshold(hits), k), nil
}

// QueryByID finds articles similar to a stored one, reusing its stored
// vector instead of re-embedding. Only the source article itself is
// excluded; hits from the same outlet compete like any other candidate.
func (s *Service) QueryByID(ctx context.Context, id string, k int) ([]articles.Hit, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(rec.Vector) == 0 {
		return nil, fmt.Errorf("article %s: %w", id, domain.ErrArticleNotFound)
	}

	// The stored article matches itself with score 1, so fetch one extra.
	hits, err := s.repo.SearchByVector(ctx, rec.Vector, k+1, articles.SearchFilter{})
	if err != nil {
		return nil, fmt.Errorf("query by id: %w", err)
	}

	filtered := hits[:0]
	for _, h := range hits {
		if h.Record.Article.ID != id {
			filtered = append(filtered, h)
		}
	}
	return capHits(s.aboveThreshold(filtered), k), nil
}

// GetByID fetches a single stored record.
func (s *Service) GetByID(ctx context.Context, id string) (articles.Record, error) {
	return s.repo.Get(ctx, id)
}

// Sample returns up to limit stored records for aggregation, metadata
// only.
func (s *Service) Sample(ctx context.Context, limit int) ([]articles.Record, error) {
	recs, _, err := s.repo.ListMeta(ctx, 0, limit)
	if err != nil {
		return nil, fmt.Errorf("sample articles: %w", err)
	}
	return recs, nil
}

// Clear deletes every indexed article and drops the index.
func (s *Service) Clear(ctx context.Context) (int, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return n, fmt.Errorf("clear index: %w", err)
	}
	logger.FromContext(ctx).Info("index cleared", zap.Int("deleted", n))
	return n, nil
}

// Stats describes the current index contents.
func (s *Service) Stats(ctx context.Context) (domain.IndexStats, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return domain.IndexStats{}, fmt.Errorf("index stats: %w", err)
	}
	return domain.IndexStats{
		TotalArticles: n,
		IndexName:     s.repo.IndexName(),
		Namespace:     s.namespace,
	}, nil
}

func (s *Service) aboveThreshold(hits []articles.Hit) []articles.Hit {
	if s.threshold <= 0 {
		return hits
	}
	filtered := hits[:0]
	for _, h := range hits {
		if h.Score >= s.threshold {
			filtered = append(filtered, h)
		}
	}
	return filtered
}

func capHits(hits []articles.Hit, k int) []articles.Hit {
	if len(hits) > k {
		return hits[:k]
	}
	return hits
}

// embeddingText builds the text a vector is computed from. Title and
// summary carry most of the signal; content fills the remainder up to
// the length cap.
func embeddingText(art *domain.Article) string {
	text := fmt.Sprintf("Title: %s\n\nSummary: %s\n\nContent: %s",
		art.Title, art.BestSummary(), art.Content)
	if len(text) > maxEmbedLen {
		text = text[:runeBoundary(text, maxEmbedLen)] + "..."
	}
	return text
}

// toRecord converts an article to its stored form with bounded
// metadata.
func toRecord(art *domain.Article, vector []float32) articles.Record {
	stored := *art
	stored.Title = truncate(stored.Title, maxTitleLen)
	stored.Summary = truncate(stored.Summary, maxSummaryLen)
	stored.AISummary = truncate(stored.AISummary, maxSummaryLen)
	if len(stored.Tags) > maxTagCount {
		stored.Tags = stored.Tags[:maxTagCount]
	}
	if stored.Category == "" {
		stored.Category = defaultCategory
	}
	stored.Content = ""

	return articles.Record{
		Article:        stored,
		ContentPreview: truncate(strings.TrimSpace(art.Content), maxPreviewLen),
		Vector:         vector,
	}
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:runeBoundary(s, max)]
	}
	return s
}

// runeBoundary backs a byte cut index up so a multi-byte rune is never
// split.
func runeBoundary(s string, i int) int {
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}
