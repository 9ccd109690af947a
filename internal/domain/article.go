package domain

import "time"

// Article is the canonical record that flows through every pipeline stage.
// The fetcher creates it, the enricher fills AISummary in place, and the
// vector index adapter converts it (without mutating it) into a stored
// vector record.
type Article struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Link       string    `json:"link"`
	Summary    string    `json:"summary"`
	AISummary  string    `json:"ai_summary,omitempty"`
	Content    string    `json:"content"`
	Published  time.Time `json:"published"`
	SourceName string    `json:"source_name"`
	SourceFeed string    `json:"source_feed"`
	Category   string    `json:"category"`
	Tags       []string  `json:"tags,omitempty"`
	Author     string    `json:"author,omitempty"`
	Slug       string    `json:"slug,omitempty"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// BestSummary prefers the AI-generated summary over the feed-provided one.
func (a *Article) BestSummary() string {
	if a.AISummary != "" {
		return a.AISummary
	}
	return a.Summary
}

// Recommendation is a single ranked result. Produced fresh per request,
// never persisted.
type Recommendation struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Link           string   `json:"link"`
	Summary        string   `json:"summary"`
	Published      string   `json:"published"`
	SourceName     string   `json:"source_name"`
	Category       string   `json:"category"`
	Tags           []string `json:"tags,omitempty"`
	ContentPreview string   `json:"content_preview,omitempty"`
	Score          float64  `json:"similarity_score"`
	RerankScore    float64  `json:"rerank_score,omitempty"`
	Reranked       bool     `json:"-"`
}

// TrendingTopic is a category or keyword with its frequency over a
// sample of recent articles.
type TrendingTopic struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// IndexStats describes the vector index contents.
type IndexStats struct {
	TotalArticles int    `json:"total_articles"`
	IndexName     string `json:"index_name"`
	Namespace     string `json:"namespace"`
}
