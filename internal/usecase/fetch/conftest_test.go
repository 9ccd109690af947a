package fetch

import (
	"context"

	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/transport/rss"
)

// mockFetcher serves canned items per feed URL and records requested limits.
type mockFetcher struct {
	items  map[string][]rss.Item
	errs   map[string]error
	limits []int
	urls   []string
}

func (m *mockFetcher) Fetch(_ context.Context, url string, limit int) ([]rss.Item, error) {
	m.urls = append(m.urls, url)
	m.limits = append(m.limits, limit)
	if err := m.errs[url]; err != nil {
		return nil, err
	}
	return m.items[url], nil
}

type mockSeen struct {
	ids map[string]struct{}
}

func (m *mockSeen) Contains(id string) bool {
	_, ok := m.ids[id]
	return ok
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
	return "/tmp/raw_news.json", nil
}
