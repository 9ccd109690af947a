package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/domain"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/usecase/fetch"
)

type fixture struct {
	fetcher   *mockFetcher
	enricher  *mockEnricher
	indexer   *mockIndexer
	processed *mockSnapshot
	api       *mockSnapshot
	seen      *mockSeen
	stats     *mockStats
	svc       *Service
}

func newFixture(arts []domain.Article) *fixture {
	f := &fixture{
		fetcher: &mockFetcher{
			articles: arts,
			stats:    fetch.Stats{Fetched: len(arts), Duplicates: 2, FeedErrors: 1},
		},
		enricher:  &mockEnricher{},
		indexer:   &mockIndexer{},
		processed: &mockSnapshot{},
		api:       &mockSnapshot{},
		seen:      &mockSeen{},
		stats:     &mockStats{},
	}
	f.svc = New(f.fetcher, f.enricher, f.indexer, f.processed, f.api, f.seen, f.stats, "newsai:")
	return f
}

func twoArticles() []domain.Article {
	return []domain.Article{
		{ID: "src_a", Title: "A", Link: "https://src.example.com/a"},
		{ID: "src_b", Title: "B", Link: "https://src.example.com/b"},
	}
}

func TestRun(t *testing.T) {
	f := newFixture(twoArticles())

	run, err := f.svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if run.Status != "success" {
		t.Errorf("status = %q", run.Status)
	}
	if run.RunID == "" {
		t.Error("run id missing")
	}
	if run.Fetched != 2 || run.Duplicates != 2 || run.FeedErrors != 1 || run.Stored != 2 {
		t.Errorf("run = %+v", run)
	}

	if f.enricher.called != 1 || f.indexer.called != 1 {
		t.Errorf("enrich calls = %d, index calls = %d", f.enricher.called, f.indexer.called)
	}
	if len(f.processed.wrote) != 1 || len(f.api.wrote) != 1 {
		t.Errorf("snapshots: processed=%d api=%d", len(f.processed.wrote), len(f.api.wrote))
	}
	if len(f.seen.added) != 2 || f.seen.saved != 1 {
		t.Errorf("seen: added=%v saved=%d", f.seen.added, f.seen.saved)
	}
	// The seen-set records content hashes, not source-prefixed ids.
	arts := twoArticles()
	for i, a := range arts {
		if want := domain.ContentHash(a.Title, a.Link); f.seen.added[i] != want {
			t.Errorf("seen[%d] = %q, want %q", i, f.seen.added[i], want)
		}
	}
}

func TestRunPersistsStats(t *testing.T) {
	f := newFixture(twoArticles())

	run, err := f.svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	last, err := f.svc.LastRun(context.Background())
	if err != nil {
		t.Fatalf("LastRun: %v", err)
	}
	if last.RunID != run.RunID || last.Status != "success" || last.Stored != 2 {
		t.Errorf("last run = %+v", last)
	}
}

func TestRunEmptyFetchShortCircuits(t *testing.T) {
	f := newFixture(nil)
	f.fetcher.stats = fetch.Stats{}

	run, err := f.svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if run.Status != "success" {
		t.Errorf("status = %q, want success", run.Status)
	}
	if f.enricher.called != 0 || f.indexer.called != 0 {
		t.Error("downstream steps must not run on an empty fetch")
	}
	if f.seen.saved != 0 {
		t.Error("seen-set must not be saved on an empty fetch")
	}
}

func TestRunIndexFailureFailsRun(t *testing.T) {
	f := newFixture(twoArticles())
	f.indexer.err = errors.New("embedding provider down")

	run, err := f.svc.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if run.Status != "failure" || run.Error == "" {
		t.Errorf("run = %+v", run)
	}
	// Unindexed articles must stay out of the seen-set so the next run
	// retries them.
	if len(f.seen.added) != 0 || f.seen.saved != 0 {
		t.Errorf("seen: added=%v saved=%d", f.seen.added, f.seen.saved)
	}

	last, lerr := f.svc.LastRun(context.Background())
	if lerr != nil {
		t.Fatalf("LastRun: %v", lerr)
	}
	if last.Status != "failure" {
		t.Errorf("persisted status = %q", last.Status)
	}
}

func TestRunProcessedSnapshotFailureIsNotFatal(t *testing.T) {
	f := newFixture(twoArticles())
	f.processed.err = errors.New("disk full")

	run, err := f.svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if run.Status != "success" {
		t.Errorf("status = %q", run.Status)
	}
}

func TestRunSeenSaveFailureFailsRun(t *testing.T) {
	f := newFixture(twoArticles())
	f.seen.err = errors.New("read-only filesystem")

	run, err := f.svc.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if run.Status != "failure" {
		t.Errorf("status = %q", run.Status)
	}
}

func TestLastRunNoOutput(t *testing.T) {
	f := newFixture(nil)

	_, err := f.svc.LastRun(context.Background())
	if !errors.Is(err, domain.ErrNoPipelineOutput) {
		t.Fatalf("err = %v, want ErrNoPipelineOutput", err)
	}
}
