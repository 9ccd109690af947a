package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/domain"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/logger"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/repository/articles"
)

// trendingSampleSize bounds the number of recent articles a trending
// analysis reads.
const trendingSampleSize = 50

// Service turns vector search hits into ranked recommendations, with
// an optional rerank pass on top of raw similarity.
type Service struct {
	index      Index
	reranker   Reranker
	completer  Completer
	maxResults int
}

// New creates a recommendation service. maxResults caps every response;
// reranker and completer may be nil, disabling reranking and insights.
func New(index Index, reranker Reranker, completer Completer, maxResults int) *Service {
	if maxResults <= 0 {
		maxResults = 10
	}
	return &Service{index: index, reranker: reranker, completer: completer, maxResults: maxResults}
}

// ByText recommends articles for a free-text query. The index is
// over-fetched 2x so the rerank pass has candidates to promote.
func (s *Service) ByText(ctx context.Context, query string, max int, category string) ([]domain.Recommendation, error) {
	max = s.capMax(max)

	hits, err := s.index.QueryByText(ctx, query, 2*max, category)
	if err != nil {
		return nil, fmt.Errorf("recommend by text: %w", err)
	}

	recs := toRecommendations(hits)
	recs = s.applyRerank(ctx, query, recs)
	return truncateRecs(recs, max), nil
}

// Similar recommends articles close to a stored one. Only the source
// article itself is excluded; same-outlet siblings compete on
// similarity like any other candidate.
func (s *Service) Similar(ctx context.Context, id string, max int) ([]domain.Recommendation, error) {
	max = s.capMax(max)

	source, err := s.index.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	hits, err := s.index.QueryByID(ctx, id, 2*max)
	if err != nil {
		return nil, fmt.Errorf("recommend similar to %s: %w", id, err)
	}

	recs := toRecommendations(hits)
	if len(recs) > max {
		query := strings.TrimSpace(source.Article.Title + " " + source.Article.BestSummary())
		recs = s.applyRerank(ctx, query, recs)
	}
	return truncateRecs(recs, max), nil
}

// Trending counts category and tag frequencies over a sample of recent
// articles. Ties keep first-seen order.
func (s *Service) Trending(ctx context.Context, limit int) ([]domain.TrendingTopic, error) {
	if limit <= 0 {
		limit = 10
	}

	recs, err := s.index.Sample(ctx, trendingSampleSize)
	if err != nil {
		return nil, fmt.Errorf("trending: %w", err)
	}

	counts := make(map[string]int)
	var order []string
	bump := func(topic string) {
		topic = strings.ToLower(strings.TrimSpace(topic))
		if topic == "" {
			return
		}
		if _, seen := counts[topic]; !seen {
			order = append(order, topic)
		}
		counts[topic]++
	}

	for i := range recs {
		bump(recs[i].Article.Category)
		for _, tag := range recs[i].Article.Tags {
			bump(tag)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}

	topics := make([]domain.TrendingTopic, len(order))
	for i, topic := range order {
		topics[i] = domain.TrendingTopic{Topic: topic, Count: counts[topic]}
	}
	return topics, nil
}

// Insight asks the completion provider why the recommendations match
// the query. Insights are decoration; any failure yields an empty
// string, never an error.
func (s *Service) Insight(ctx context.Context, query string, recs []domain.Recommendation) string {
	if s.completer == nil || len(recs) == 0 {
		return ""
	}

	var b strings.Builder
	if query != "" {
		fmt.Fprintf(&b, "In two or three sentences, explain why these news articles are relevant to the query %q:\n", query)
	} else {
		fmt.Fprintf(&b, "In two or three sentences, explain what connects these news articles and why a reader of one would want the others:\n")
	}
	for i, rec := range recs {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, rec.Title, rec.Summary)
	}

	text, err := s.completer.Complete(ctx, b.String(), 0)
	if err != nil {
		logger.FromContext(ctx).Warn("insight generation failed", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(text)
}

// applyRerank reorders recommendations by provider relevance. A failed
// rerank call keeps the similarity order; reranking must never make the
// response worse than not having it.
func (s *Service) applyRerank(ctx context.Context, query string, recs []domain.Recommendation) []domain.Recommendation {
	if s.reranker == nil || !s.reranker.Enabled() || len(recs) < 2 {
		return recs
	}

	docs := make([]string, len(recs))
	for i, rec := range recs {
		docs[i] = strings.TrimSpace(rec.Title + " " + rec.Summary)
	}

	results, err := s.reranker.Rerank(ctx, query, docs, len(docs))
	if err != nil {
		logger.FromContext(ctx).Warn("rerank failed, keeping similarity order", zap.Error(err))
		return recs
	}

	// Providers return results sorted by relevance. A stable sort keeps
	// the pre-rerank order for equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	reordered := make([]domain.Recommendation, 0, len(recs))
	taken := make([]bool, len(recs))
	for _, res := range results {
		if res.Index < 0 || res.Index >= len(recs) || taken[res.Index] {
			continue
		}
		rec := recs[res.Index]
		rec.RerankScore = res.Score
		rec.Reranked = true
		reordered = append(reordered, rec)
		taken[res.Index] = true
	}
	// A truncated provider response must not drop candidates.
	for i, rec := range recs {
		if !taken[i] {
			reordered = append(reordered, rec)
		}
	}
	return reordered
}

func (s *Service) capMax(max int) int {
	if max <= 0 || max > s.maxResults {
		return s.maxResults
	}
	return max
}

func toRecommendations(hits []articles.Hit) []domain.Recommendation {
	recs := make([]domain.Recommendation, len(hits))
	for i, h := range hits {
		recs[i] = toRecommendation(h)
	}
	return recs
}

func toRecommendation(h articles.Hit) domain.Recommendation {
	art := h.Record.Article

	published := ""
	if !art.Published.IsZero() {
		published = art.Published.UTC().Format(time.RFC3339)
	}

	return domain.Recommendation{
		ID:             art.ID,
		Title:          art.Title,
		Link:           art.Link,
		Summary:        art.BestSummary(),
		Published:      published,
		SourceName:     art.SourceName,
		Category:       art.Category,
		Tags:           art.Tags,
		ContentPreview: h.Record.ContentPreview,
		Score:          h.Score,
	}
}

func truncateRecs(recs []domain.Recommendation, max int) []domain.Recommendation {
	if len(recs) > max {
		return recs[:max]
	}
	return recs
}
