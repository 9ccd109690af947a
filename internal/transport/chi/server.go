package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/domain"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/usecase/pipeline"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/version"
)

// fetchNewsLimit caps how many articles GET /fetch-news returns.
const fetchNewsLimit = 50

// Recommender serves ranked article recommendations.
type Recommender interface {
	ByText(ctx context.Context, query string, max int, category string) ([]domain.Recommendation, error)
	Similar(ctx context.Context, id string, max int) ([]domain.Recommendation, error)
	Trending(ctx context.Context, limit int) ([]domain.TrendingTopic, error)
	Insight(ctx context.Context, query string, recs []domain.Recommendation) string
}

// Indexer exposes vector index statistics.
type Indexer interface {
	Stats(ctx context.Context) (domain.IndexStats, error)
}

// PipelineReader reads the persisted last-run record.
type PipelineReader interface {
	LastRun(ctx context.Context) (pipeline.RunStats, error)
}

// SnapshotReader loads the latest consolidated article snapshot.
type SnapshotReader interface {
	ReadLatest(v any) error
}

// SeenCounter reports the seen-set size.
type SeenCounter interface {
	Len() int
}

// Pinger checks vector store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker checks the embedding provider.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type errorCode string

const (
	codeBadRequest       errorCode = "bad_request"
	codeUnauthorized     errorCode = "unauthorized"
	codeArticleNotFound  errorCode = "article_not_found"
	codeNoPipelineOutput errorCode = "no_pipeline_output"
	codeProviderError    errorCode = "provider_error"
	codeIndexUnavailable errorCode = "index_unavailable"
	codeInternalError    errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API over the news pipeline and recommender.
type Server struct {
	recommender   Recommender
	index         Indexer
	pipeline      PipelineReader
	snapshots     SnapshotReader
	seen          SeenCounter
	store         Pinger
	embedder      HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	recommender Recommender,
	index Indexer,
	pipe PipelineReader,
	snapshots SnapshotReader,
	seen SeenCounter,
	store Pinger,
	embedder HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		recommender: recommender,
		index:       index,
		pipeline:    pipe,
		snapshots:   snapshots,
		seen:        seen,
		store:       store,
		embedder:    embedder,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrArticleNotFound, http.StatusNotFound, codeArticleNotFound),
		sentinelHandler(domain.ErrNoPipelineOutput, http.StatusNotFound, codeNoPipelineOutput),
		sentinelHandler(domain.ErrEmbeddingProvider, http.StatusBadGateway, codeProviderError),
		sentinelHandler(domain.ErrCompletionProvider, http.StatusBadGateway, codeProviderError),
		sentinelHandler(domain.ErrRerankProvider, http.StatusBadGateway, codeProviderError),
		sentinelHandler(domain.ErrIndexUnavailable, http.StatusServiceUnavailable, codeIndexUnavailable),
	}
	return s
}

// Register mounts every route on the router. Middleware is the
// caller's concern.
func (s *Server) Register(r chi.Router) {
	r.Get("/", s.Info)
	r.Get("/fetch-news", s.FetchNews)
	r.Get("/recommend-news", s.RecommendNews)
	r.Get("/search-news", s.SearchNews)
	r.Get("/trending-topics", s.TrendingTopics)
	r.Get("/stats", s.Stats)
	r.Get("/healthz", s.Healthz)
	r.Get("/metrics", s.Metrics)
}

// Info handles GET /.
func (s *Server) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "newsai",
		"version": version.Version,
		"commit":  version.Commit,
		"endpoints": []string{
			"/fetch-news",
			"/recommend-news",
			"/search-news",
			"/trending-topics",
			"/stats",
			"/healthz",
			"/metrics",
		},
	})
}

// FetchNews handles GET /fetch-news: the latest consolidated pipeline
// output, capped at fetchNewsLimit articles.
func (s *Server) FetchNews(w http.ResponseWriter, r *http.Request) {
	var articles []domain.Article
	if err := s.snapshots.ReadLatest(&articles); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = domain.ErrNoPipelineOutput
		}
		s.handleDomainError(w, err)
		return
	}

	total := len(articles)
	if len(articles) > fetchNewsLimit {
		articles = articles[:fetchNewsLimit]
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total":    total,
		"returned": len(articles),
		"articles": articles,
	})
}

// RecommendNews handles GET /recommend-news?article_id=&max_results=.
func (s *Server) RecommendNews(w http.ResponseWriter, r *http.Request) {
	articleID := r.URL.Query().Get("article_id")
	if articleID == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "article_id is required")
		return
	}

	maxResults, ok := intParam(w, r, "max_results")
	if !ok {
		return
	}

	recs, err := s.recommender.Similar(r.Context(), articleID, maxResults)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"article_id":      articleID,
		"count":           len(recs),
		"recommendations": recs,
		"ai_insight":      s.recommender.Insight(r.Context(), "", recs),
	})
}

// SearchNews handles GET /search-news?query=&max_results=&category=.
func (s *Server) SearchNews(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "query is required")
		return
	}

	maxResults, ok := intParam(w, r, "max_results")
	if !ok {
		return
	}
	category := r.URL.Query().Get("category")

	recs, err := s.recommender.ByText(r.Context(), query, maxResults, category)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":           query,
		"category":        category,
		"count":           len(recs),
		"recommendations": recs,
		"ai_insight":      s.recommender.Insight(r.Context(), query, recs),
	})
}

// TrendingTopics handles GET /trending-topics?limit=.
func (s *Server) TrendingTopics(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(w, r, "limit")
	if !ok {
		return
	}

	topics, err := s.recommender.Trending(r.Context(), limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":  len(topics),
		"topics": topics,
	})
}

// Stats handles GET /stats.
func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.index.Stats(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := map[string]any{
		"index":         stats,
		"seen_articles": s.seen.Len(),
	}
	if run, err := s.pipeline.LastRun(r.Context()); err == nil {
		resp["last_run"] = run
	}

	writeJSON(w, http.StatusOK, resp)
}

// Healthz handles GET /healthz.
func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"database":  "ok",
		"embedding": "ok",
	}
	healthy := true

	if err := s.store.Ping(r.Context()); err != nil {
		checks["database"] = "failed"
		healthy = false
	}
	if err := s.embedder.HealthCheck(r.Context()); err != nil {
		checks["embedding"] = "failed"
		healthy = false
	}

	status, httpStatus := "healthy", http.StatusOK
	if !healthy {
		status, httpStatus = "unhealthy", http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": status,
		"checks": checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// intParam parses an optional positive integer query parameter.
// 0 means "not set" and lets the service apply its default.
func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		writeError(w, http.StatusBadRequest, codeBadRequest, name+" must be a positive integer")
		return 0, false
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrArticleNotFound,
		domain.ErrNoPipelineOutput,
		domain.ErrEmbeddingProvider,
		domain.ErrCompletionProvider,
		domain.ErrRerankProvider,
		domain.ErrIndexUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
