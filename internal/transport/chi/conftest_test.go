package chi

import (
	"context"
	"encoding/json"
	"os"

	"go.uber.org/zap"

	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/domain"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/usecase/pipeline"
)

type mockRecommender struct {
	byText  []domain.Recommendation
	similar []domain.Recommendation
	topics  []domain.TrendingTopic
	insight string

	byTextErr  error
	similarErr error
	trendErr   error

	lastQuery    string
	lastCategory string
	lastID       string
	lastMax      int
}

func (m *mockRecommender) ByText(_ context.Context, query string, max int, category string) ([]domain.Recommendation, error) {
	m.lastQuery, m.lastMax, m.lastCategory = query, max, category
	if m.byTextErr != nil {
		return nil, m.byTextErr
	}
	return m.byText, nil
}

func (m *mockRecommender) Similar(_ context.Context, id string, max int) ([]domain.Recommendation, error) {
	m.lastID, m.lastMax = id, max
	if m.similarErr != nil {
		return nil, m.similarErr
	}
	return m.similar, nil
}

func (m *mockRecommender) Trending(_ context.Context, limit int) ([]domain.TrendingTopic, error) {
	m.lastMax = limit
	if m.trendErr != nil {
		return nil, m.trendErr
	}
	return m.topics, nil
}

func (m *mockRecommender) Insight(context.Context, string, []domain.Recommendation) string {
	return m.insight
}

type mockIndexer struct {
	stats domain.IndexStats
	err   error
}

func (m *mockIndexer) Stats(context.Context) (domain.IndexStats, error) {
	if m.err != nil {
		return domain.IndexStats{}, m.err
	}
	return m.stats, nil
}

type mockPipeline struct {
	run pipeline.RunStats
	err error
}

func (m *mockPipeline) LastRun(context.Context) (pipeline.RunStats, error) {
	if m.err != nil {
		return pipeline.RunStats{}, m.err
	}
	return m.run, nil
}

// mockSnapshots round-trips articles through JSON like the real store.
type mockSnapshots struct {
	articles []domain.Article
	missing  bool
}

func (m *mockSnapshots) ReadLatest(v any) error {
	if m.missing {
		return os.ErrNotExist
	}
	data, err := json.Marshal(m.articles)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

type mockSeen struct {
	n int
}

func (m *mockSeen) Len() int { return m.n }

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(context.Context) error { return m.err }

type mockHealth struct {
	err error
}

func (m *mockHealth) HealthCheck(context.Context) error { return m.err }

type serverFixture struct {
	recommender *mockRecommender
	index       *mockIndexer
	pipeline    *mockPipeline
	snapshots   *mockSnapshots
	seen        *mockSeen
	store       *mockPinger
	embedder    *mockHealth
	server      *Server
}

func newServerFixture() *serverFixture {
	f := &serverFixture{
		recommender: &mockRecommender{},
		index:       &mockIndexer{},
		pipeline:    &mockPipeline{err: domain.ErrNoPipelineOutput},
		snapshots:   &mockSnapshots{},
		seen:        &mockSeen{},
		store:       &mockPinger{},
		embedder:    &mockHealth{},
	}
	f.server = NewServer(
		f.recommender, f.index, f.pipeline, f.snapshots,
		f.seen, f.store, f.embedder, zap.NewNop(),
	)
	return f
}
