package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/db"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/domain"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/logger"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/metrics"
)

// Step names, used as metric labels and in run logs.
const (
	stepFetch       = "fetch"
	stepEnrich      = "enrich"
	stepIndex       = "index"
	stepConsolidate = "consolidate"
)

// RunStats is the persisted outcome of one pipeline run.
type RunStats struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	Fetched    int       `json:"fetched"`
	Duplicates int       `json:"duplicates"`
	FeedErrors int       `json:"feed_errors"`
	Stored     int       `json:"stored"`
}

// Service orchestrates one ingestion run: fetch, enrich, index, then
// consolidate the outputs.
type Service struct {
	fetcher   Fetcher
	enricher  Enricher
	indexer   Indexer
	processed SnapshotStore
	api       SnapshotStore
	seen      SeenSet
	stats     StatsStore
	statsKey  string
}

// New creates a pipeline service. keyPrefix namespaces the persisted
// last-run record.
func New(
	fetcher Fetcher,
	enricher Enricher,
	indexer Indexer,
	processed, api SnapshotStore,
	seen SeenSet,
	stats StatsStore,
	keyPrefix string,
) *Service {
	return &Service{
		fetcher:   fetcher,
		enricher:  enricher,
		indexer:   indexer,
		processed: processed,
		api:       api,
		seen:      seen,
		stats:     stats,
		statsKey:  keyPrefix + "pipeline:last_run",
	}
}

// Run executes one full ingestion pass. An empty fetch short-circuits
// as success; a provider failure while indexing fails the run. Articles
// only enter the seen-set after they are safely indexed, so a failed
// run retries them on the next pass.
func (s *Service) Run(ctx context.Context) (RunStats, error) {
	runID := uuid.NewString()
	ctx = logger.ContextWithRun(ctx, logger.FromContext(ctx), runID)
	log := logger.FromContext(ctx)

	start := time.Now()
	run := RunStats{RunID: runID, StartedAt: start.UTC()}

	log.Info("pipeline run started")

	var arts []domain.Article
	err := s.step(ctx, stepFetch, func() error {
		fetched, fstats, ferr := s.fetcher.FetchAll(ctx)
		if ferr != nil {
			return ferr
		}
		arts = fetched
		run.Fetched = fstats.Fetched
		run.Duplicates = fstats.Duplicates
		run.FeedErrors = fstats.FeedErrors
		return nil
	})
	if err != nil {
		return s.finish(ctx, run, start, err)
	}

	if len(arts) == 0 {
		log.Warn("no new articles fetched, skipping remaining steps")
		return s.finish(ctx, run, start, nil)
	}

	err = s.step(ctx, stepEnrich, func() error {
		if eerr := s.enricher.Summarize(ctx, arts); eerr != nil {
			return eerr
		}
		if _, werr := s.processed.Write(arts); werr != nil {
			log.Warn("write processed snapshot failed", zap.Error(werr))
		}
		return nil
	})
	if err != nil {
		return s.finish(ctx, run, start, err)
	}

	err = s.step(ctx, stepIndex, func() error {
		stored, serr := s.indexer.Store(ctx, arts)
		run.Stored = stored
		return serr
	})
	if err != nil {
		return s.finish(ctx, run, start, fmt.Errorf("index articles: %w", err))
	}

	err = s.step(ctx, stepConsolidate, func() error {
		if _, werr := s.api.Write(arts); werr != nil {
			return fmt.Errorf("write consolidated snapshot: %w", werr)
		}
		hashes := make([]string, len(arts))
		for i := range arts {
			hashes[i] = domain.ContentHash(arts[i].Title, arts[i].Link)
		}
		s.seen.Add(hashes...)
		if serr := s.seen.Save(); serr != nil {
			return fmt.Errorf("save seen-set: %w", serr)
		}
		return nil
	})
	return s.finish(ctx, run, start, err)
}

// LastRun returns the persisted record of the most recent run.
func (s *Service) LastRun(ctx context.Context) (RunStats, error) {
	data, err := s.stats.Get(ctx, s.statsKey)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return RunStats{}, domain.ErrNoPipelineOutput
		}
		return RunStats{}, fmt.Errorf("load last run: %w", err)
	}

	var run RunStats
	if err := json.Unmarshal(data, &run); err != nil {
		return RunStats{}, fmt.Errorf("decode last run: %w", err)
	}
	return run, nil
}

func (s *Service) step(ctx context.Context, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.PipelineStepDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	log := logger.FromContext(ctx)
	if err != nil {
		log.Error("pipeline step failed", zap.String("step", name), zap.Error(err))
		return err
	}
	log.Info("pipeline step complete",
		zap.String("step", name),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

func (s *Service) finish(ctx context.Context, run RunStats, start time.Time, err error) (RunStats, error) {
	run.DurationMS = time.Since(start).Milliseconds()
	run.Status = "success"
	if err != nil {
		run.Status = "failure"
		run.Error = err.Error()
	}
	metrics.PipelineRunsTotal.WithLabelValues(run.Status).Inc()

	log := logger.FromContext(ctx)
	if data, merr := json.Marshal(run); merr == nil {
		if serr := s.stats.Set(ctx, s.statsKey, data); serr != nil {
			log.Warn("persist run stats failed", zap.Error(serr))
		}
	}

	log.Info("pipeline run finished",
		zap.String("status", run.Status),
		zap.Int("fetched", run.Fetched),
		zap.Int("stored", run.Stored),
		zap.Int64("duration_ms", run.DurationMS),
	)
	return run, err
}
