package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/domain"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/usecase/pipeline"
)

func doRequest(f *serverFixture, target string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	f.server.Register(r)

	req := httptest.NewRequest("GET", target, http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestInfo(t *testing.T) {
	rr := doRequest(newServerFixture(), "/")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["service"] != "newsai" {
		t.Errorf("service = %v", body["service"])
	}
}

func TestFetchNews(t *testing.T) {
	f := newServerFixture()
	f.snapshots.articles = []domain.Article{
		{ID: "src_a", Title: "A"},
		{ID: "src_b", Title: "B"},
	}

	rr := doRequest(f, "/fetch-news")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["total"] != float64(2) || body["returned"] != float64(2) {
		t.Errorf("body = %v", body)
	}
}

func TestFetchNewsNoOutput(t *testing.T) {
	f := newServerFixture()
	f.snapshots.missing = true

	rr := doRequest(f, "/fetch-news")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["code"] != string(codeNoPipelineOutput) {
		t.Errorf("code = %v", body["code"])
	}
}

func TestRecommendNews(t *testing.T) {
	f := newServerFixture()
	f.recommender.similar = []domain.Recommendation{{ID: "src_x", Title: "X"}}
	f.recommender.insight = "related coverage"

	rr := doRequest(f, "/recommend-news?article_id=src_a&max_results=5")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if f.recommender.lastID != "src_a" || f.recommender.lastMax != 5 {
		t.Errorf("recommender called with id=%q max=%d", f.recommender.lastID, f.recommender.lastMax)
	}
	body := decodeBody(t, rr)
	if body["count"] != float64(1) || body["ai_insight"] != "related coverage" {
		t.Errorf("body = %v", body)
	}
}

func TestRecommendNewsMissingID(t *testing.T) {
	rr := doRequest(newServerFixture(), "/recommend-news")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestRecommendNewsUnknownID(t *testing.T) {
	f := newServerFixture()
	f.recommender.similarErr = domain.ErrArticleNotFound

	rr := doRequest(f, "/recommend-news?article_id=src_missing")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["code"] != string(codeArticleNotFound) {
		t.Errorf("code = %v", body["code"])
	}
}

func TestRecommendNewsProviderFailure(t *testing.T) {
	f := newServerFixture()
	f.recommender.similarErr = domain.ErrEmbeddingProvider

	rr := doRequest(f, "/recommend-news?article_id=src_a")
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rr.Code)
	}
}

func TestSearchNews(t *testing.T) {
	f := newServerFixture()
	f.recommender.byText = []domain.Recommendation{
		{ID: "src_x", Title: "X"},
		{ID: "src_y", Title: "Y"},
	}

	rr := doRequest(f, "/search-news?query=ai+chips&category=technology&max_results=3")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if f.recommender.lastQuery != "ai chips" || f.recommender.lastCategory != "technology" || f.recommender.lastMax != 3 {
		t.Errorf("recommender called with query=%q category=%q max=%d",
			f.recommender.lastQuery, f.recommender.lastCategory, f.recommender.lastMax)
	}
	body := decodeBody(t, rr)
	if body["count"] != float64(2) {
		t.Errorf("count = %v", body["count"])
	}
}

func TestSearchNewsMissingQuery(t *testing.T) {
	rr := doRequest(newServerFixture(), "/search-news")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestSearchNewsBadMaxResults(t *testing.T) {
	rr := doRequest(newServerFixture(), "/search-news?query=x&max_results=-1")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestTrendingTopics(t *testing.T) {
	f := newServerFixture()
	f.recommender.topics = []domain.TrendingTopic{{Topic: "technology", Count: 4}}

	rr := doRequest(f, "/trending-topics?limit=5")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["count"] != float64(1) {
		t.Errorf("count = %v", body["count"])
	}
}

func TestStats(t *testing.T) {
	f := newServerFixture()
	f.index.stats = domain.IndexStats{TotalArticles: 7, IndexName: "newsai:articles:idx", Namespace: "default"}
	f.seen.n = 12
	f.pipeline.err = nil
	f.pipeline.run = pipeline.RunStats{RunID: "run-1", Status: "success"}

	rr := doRequest(f, "/stats")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["seen_articles"] != float64(12) {
		t.Errorf("seen_articles = %v", body["seen_articles"])
	}
	if body["last_run"] == nil {
		t.Error("last_run missing")
	}
}

func TestStatsWithoutLastRun(t *testing.T) {
	f := newServerFixture()

	rr := doRequest(f, "/stats")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if _, ok := body["last_run"]; ok {
		t.Error("last_run must be omitted when no run is recorded")
	}
}

func TestStatsIndexUnavailable(t *testing.T) {
	f := newServerFixture()
	f.index.err = domain.ErrIndexUnavailable

	rr := doRequest(f, "/stats")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
}

func TestHealthz(t *testing.T) {
	rr := doRequest(newServerFixture(), "/healthz")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["status"] != "healthy" {
		t.Errorf("status = %v", body["status"])
	}
}

func TestHealthzDatabaseDown(t *testing.T) {
	f := newServerFixture()
	f.store.err = errors.New("connection refused")

	rr := doRequest(f, "/healthz")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
	body := decodeBody(t, rr)
	checks := body["checks"].(map[string]any)
	if checks["database"] != "failed" || checks["embedding"] != "ok" {
		t.Errorf("checks = %v", checks)
	}
}

func TestInternalErrorIsOpaque(t *testing.T) {
	f := newServerFixture()
	f.recommender.byTextErr = errors.New("secret internal detail")

	rr := doRequest(f, "/search-news?query=x")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["message"] != "internal error" {
		t.Errorf("message = %v leaks internals", body["message"])
	}
}
