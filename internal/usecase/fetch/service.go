package fetch

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/domain"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/logger"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/metrics"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/transport/rss"
)

// Stats summarizes one fetch pass.
type Stats struct {
	Fetched    int            `json:"fetched"`
	Duplicates int            `json:"duplicates"`
	Invalid    int            `json:"invalid"`
	FeedErrors int            `json:"feed_errors"`
	ByCategory map[string]int `json:"by_category"`
}

// Service pulls articles from the configured RSS sources, assigns
// canonical ids, and drops everything the seen-set already knows.
type Service struct {
	fetcher    FeedFetcher
	seen       SeenSet
	raw        SnapshotWriter
	sources    map[string][]string
	maxPerFeed int
}

// New creates a fetch service. sources maps category name to feed URLs.
func New(fetcher FeedFetcher, seen SeenSet, raw SnapshotWriter, sources map[string][]string, maxPerFeed int) *Service {
	return &Service{
		fetcher:    fetcher,
		seen:       seen,
		raw:        raw,
		sources:    sources,
		maxPerFeed: maxPerFeed,
	}
}

// FetchAll walks every configured category. A failing feed is logged and
// skipped; it never aborts the pass.
func (s *Service) FetchAll(ctx context.Context) ([]domain.Article, Stats, error) {
	categories := make([]string, 0, len(s.sources))
	for cat := range s.sources {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	return s.fetchCategories(ctx, categories)
}

// FetchCategory fetches the feeds of a single category.
func (s *Service) FetchCategory(ctx context.Context, category string) ([]domain.Article, Stats, error) {
	if _, ok := s.sources[category]; !ok {
		return nil, Stats{}, fmt.Errorf("unknown category %q", category)
	}
	return s.fetchCategories(ctx, []string{category})
}

func (s *Service) fetchCategories(ctx context.Context, categories []string) ([]domain.Article, Stats, error) {
	log := logger.FromContext(ctx)
	stats := Stats{ByCategory: make(map[string]int)}
	inRun := make(map[string]struct{})

	var articles []domain.Article
	for _, category := range categories {
		for _, feedURL := range s.sources[category] {
			items, err := s.fetcher.Fetch(ctx, feedURL, s.maxPerFeed)
			if err != nil {
				stats.FeedErrors++
				metrics.FeedFetchErrorsTotal.WithLabelValues(domain.SourceNameFromURL(feedURL)).Inc()
				log.Warn("feed fetch failed",
					zap.String("category", category),
					zap.String("url", feedURL),
					zap.Error(err),
				)
				continue
			}

			for i := range items {
				art, ok := s.toArticle(&items[i], category, feedURL)
				if !ok {
					stats.Invalid++
					metrics.ArticlesDroppedTotal.WithLabelValues("invalid").Inc()
					continue
				}
				// Dedup keys on the content hash, not the full id, so the
				// same story syndicated through two feeds collapses to one.
				hash := domain.ContentHash(art.Title, art.Link)
				if _, dup := inRun[hash]; dup || s.seen.Contains(hash) {
					stats.Duplicates++
					metrics.ArticlesDroppedTotal.WithLabelValues("duplicate").Inc()
					continue
				}
				inRun[hash] = struct{}{}
				articles = append(articles, art)
				stats.Fetched++
				stats.ByCategory[category]++
				metrics.ArticlesFetchedTotal.WithLabelValues(category).Inc()
			}
		}
	}

	if len(articles) > 0 && s.raw != nil {
		if _, err := s.raw.Write(articles); err != nil {
			// The raw snapshot is a debugging artifact; losing it must
			// not lose the articles themselves.
			log.Warn("write raw snapshot failed", zap.Error(err))
		}
	}

	log.Info("fetch pass complete",
		zap.Int("fetched", stats.Fetched),
		zap.Int("duplicates", stats.Duplicates),
		zap.Int("invalid", stats.Invalid),
		zap.Int("feed_errors", stats.FeedErrors),
	)
	return articles, stats, nil
}

// toArticle converts a feed item into the canonical article record.
// Items without both a title and a link cannot be identified and are
// rejected.
func (s *Service) toArticle(item *rss.Item, category, feedURL string) (domain.Article, bool) {
	if item.Title == "" || item.Link == "" {
		return domain.Article{}, false
	}

	sourceName := domain.SourceNameFromURL(feedURL)
	return domain.Article{
		ID:         domain.ArticleID(item.Title, item.Link, sourceName),
		Title:      item.Title,
		Link:       item.Link,
		Summary:    item.Summary,
		Content:    item.Content,
		Published:  item.Published,
		SourceName: sourceName,
		SourceFeed: feedURL,
		Category:   category,
		Tags:       item.Tags,
		Author:     item.Author,
		Slug:       item.Slug,
		FetchedAt:  time.Now().UTC(),
	}, true
}
