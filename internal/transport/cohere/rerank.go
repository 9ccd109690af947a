package cohere

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/domain"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/metrics"
)

const rerankPath = "/v2/rerank"

// Reranker scores documents against a query via the Cohere rerank API.
type Reranker struct {
	apiKey   string
	baseURL  string
	model    string
	client   *http.Client
	provider string
	logger   *zap.Logger
}

// Config holds the rerank provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewReranker creates a Cohere rerank client.
func NewReranker(cfg *Config) *Reranker {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.cohere.com"
	}

	return &Reranker{
		apiKey:   cfg.APIKey,
		baseURL:  baseURL,
		model:    cfg.Model,
		client:   &http.Client{Timeout: timeout},
		provider: "cohere",
		logger:   cfg.Logger,
	}
}

// Enabled reports whether the provider is configured with an API key.
func (r *Reranker) Enabled() bool {
	return r.apiKey != ""
}

// Result is a single reranked document reference.
type Result struct {
	Index int     `json:"index"`
	Score float64 `json:"relevance_score"`
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n,omitempty"`
}

type rerankResponse struct {
	Results []Result `json:"results"`
}

// Rerank scores documents against the query and returns results ordered
// by descending relevance. topN <= 0 returns scores for all documents.
func (r *Reranker) Rerank(ctx context.Context, query string, documents []string, topN int) ([]Result, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(rerankRequest{
		Model:     r.model,
		Query:     query,
		Documents: documents,
		TopN:      topN,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+rerankPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build rerank request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()

	resp, err := r.client.Do(req)
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(r.provider, r.model, "error").Inc()
		return nil, fmt.Errorf("rerank request: %v: %w", err, domain.ErrRerankProvider)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(r.provider, r.model, "error").Inc()
		return nil, fmt.Errorf("read rerank response: %v: %w", err, domain.ErrRerankProvider)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderRequestsTotal.WithLabelValues(r.provider, r.model, "error").Inc()
		return nil, fmt.Errorf("rerank API error %d: %s: %w",
			resp.StatusCode, truncateBody(raw), domain.ErrRerankProvider)
	}

	var parsed rerankResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(r.provider, r.model, "error").Inc()
		return nil, fmt.Errorf("decode rerank response: %v: %w", err, domain.ErrRerankProvider)
	}

	metrics.ProviderRequestsTotal.WithLabelValues(r.provider, r.model, "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(r.provider, r.model).Observe(time.Since(start).Seconds())

	return parsed.Results, nil
}

func truncateBody(b []byte) string {
	const limit = 256
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
