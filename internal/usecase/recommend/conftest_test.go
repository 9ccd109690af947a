package recommend

import (
	"context"

	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/domain"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/repository/articles"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/transport/cohere"
)

// mockIndex serves canned hits and records the last query parameters.
type mockIndex struct {
	records   map[string]articles.Record
	textHits  []articles.Hit
	idHits    []articles.Hit
	samples   []articles.Record
	lastText  string
	lastK     int
	lastCat   string
	lastID    string
	textErr   error
	idErr     error
	sampleErr error
}

func (m *mockIndex) QueryByText(_ context.Context, text string, k int, category string) ([]articles.Hit, error) {
	m.lastText, m.lastK, m.lastCat = text, k, category
	if m.textErr != nil {
		return nil, m.textErr
	}
	return m.textHits, nil
}

func (m *mockIndex) QueryByID(_ context.Context, id string, k int) ([]articles.Hit, error) {
	m.lastID, m.lastK = id, k
	if m.idErr != nil {
		return nil, m.idErr
	}
	return m.idHits, nil
}

func (m *mockIndex) GetByID(_ context.Context, id string) (articles.Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return articles.Record{}, domain.ErrArticleNotFound
	}
	return rec, nil
}

func (m *mockIndex) Sample(_ context.Context, limit int) ([]articles.Record, error) {
	if m.sampleErr != nil {
		return nil, m.sampleErr
	}
	if len(m.samples) > limit {
		return m.samples[:limit], nil
	}
	return m.samples, nil
}

// mockReranker returns a fixed permutation or an error.
type mockReranker struct {
	enabled bool
	results []cohere.Result
	err     error
	queries []string
	docs    [][]string
}

func (m *mockReranker) Enabled() bool { return m.enabled }

func (m *mockReranker) Rerank(_ context.Context, query string, documents []string, _ int) ([]cohere.Result, error) {
	m.queries = append(m.queries, query)
	m.docs = append(m.docs, documents)
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

type mockCompleter struct {
	response string
	err      error
	prompts  []string
}

func (m *mockCompleter) Complete(_ context.Context, prompt string, _ int) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func hit(id, title string, score float64) articles.Hit {
	return articles.Hit{
		Record: articles.Record{Article: domain.Article{ID: id, Title: title, Summary: "about " + title}},
		Score:  score,
	}
}
