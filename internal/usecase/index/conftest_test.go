package index

import (
	"context"
	"strings"

	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/domain"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/repository/articles"
)

// mockEmbedder produces deterministic unit vectors and records inputs.
type mockEmbedder struct {
	embedTexts []string
	batchTexts [][]string
	embedErr   error
	batchErr   error
}

func vec(seed float32) []float32 {
	return []float32{seed, 0, 0, 1}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.embedTexts = append(m.embedTexts, text)
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return vec(1), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batchTexts = append(m.batchTexts, texts)
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = vec(float32(i))
	}
	return out, nil
}

// mockRepo keeps records in memory and serves canned search hits.
type mockRepo struct {
	records     map[string]articles.Record
	hits        []articles.Hit
	lastK       int
	lastFilter  articles.SearchFilter
	upserted    [][]articles.Record
	ensured     int
	deleted     int
	count       int
	searchErr   error
	upsertErr   error
	listErr     error
	listRecords []articles.Record
}

func (m *mockRepo) EnsureIndex(context.Context) error {
	m.ensured++
	return nil
}

func (m *mockRepo) Upsert(_ context.Context, recs []articles.Record) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserted = append(m.upserted, recs)
	return nil
}

func (m *mockRepo) Get(_ context.Context, id string) (articles.Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return articles.Record{}, domain.ErrArticleNotFound
	}
	return rec, nil
}

func (m *mockRepo) SearchByVector(_ context.Context, _ []float32, k int, f articles.SearchFilter) ([]articles.Hit, error) {
	m.lastK = k
	m.lastFilter = f
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	hits := m.hits
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (m *mockRepo) ListMeta(_ context.Context, _, limit int) ([]articles.Record, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	recs := m.listRecords
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, len(m.listRecords), nil
}

func (m *mockRepo) Count(context.Context) (int, error) {
	return m.count, nil
}

func (m *mockRepo) DeleteAll(context.Context) (int, error) {
	return m.deleted, nil
}

func (m *mockRepo) IndexName() string {
	return "newsai:articles:idx"
}

func hit(id, source string, score float64) articles.Hit {
	return articles.Hit{
		Record: articles.Record{Article: domain.Article{
			ID:         id,
			Title:      strings.ReplaceAll(id, "_", " "),
			SourceName: source,
		}},
		Score: score,
	}
}
