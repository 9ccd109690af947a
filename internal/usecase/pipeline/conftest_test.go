package pipeline

import (
	"context"

	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/db"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/domain"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/usecase/fetch"
)

type mockFetcher struct {
	articles []domain.Article
	stats    fetch.Stats
	err      error
}

func (m *mockFetcher) FetchAll(context.Context) ([]domain.Article, fetch.Stats, error) {
	return m.articles, m.stats, m.err
}

type mockEnricher struct {
	err    error
	called int
}

func (m *mockEnricher) Summarize(_ context.Context, articles []domain.Article) error {
	m.called++
	if m.err != nil {
		return m.err
	}
	for i := range articles {
		articles[i].AISummary = "summary"
	}
	return nil
}

type mockIndexer struct {
	stored int
	err    error
	called int
}

func (m *mockIndexer) Store(_ context.Context, articles []domain.Article) (int, error) {
	m.called++
	if m.err != nil {
		return 0, m.err
	}
	m.stored = len(articles)
	return len(articles), nil
}

type mockSnapshot struct {
	wrote []any
	err   error
}

func (m *mockSnapshot) Write(v any) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.wrote = append(m.wrote, v)
	return "/tmp/snapshot.json", nil
}

type mockSeen struct {
	added []string
	saved int
	err   error
}

func (m *mockSeen) Add(ids ...string) {
	m.added = append(m.added, ids...)
}

func (m *mockSeen) Save() error {
	if m.err != nil {
		return m.err
	}
	m.saved++
	return nil
}

type mockStats struct {
	data map[string][]byte
}

func (m *mockStats) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStats) Set(_ context.Context, key string, value []byte) error {
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[key] = value
	return nil
}
