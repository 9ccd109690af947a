package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/config"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/db"
	dbredis "github.com/nnarahchibuike/final-ds-task-ai-news/internal/db/redis"
	logpkg "github.com/nnarahchibuike/final-ds-task-ai-news/internal/logger"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/metrics"
	articlesrepo "github.com/nnarahchibuike/final-ds-task-ai-news/internal/repository/articles"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/repository/embcache"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/repository/seen"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/repository/snapshot"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/transport/cohere"
	openaiT "github.com/nnarahchibuike/final-ds-task-ai-news/internal/transport/openai"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/transport/rss"
	enrichuc "github.com/nnarahchibuike/final-ds-task-ai-news/internal/usecase/enrich"
	fetchuc "github.com/nnarahchibuike/final-ds-task-ai-news/internal/usecase/fetch"
	indexuc "github.com/nnarahchibuike/final-ds-task-ai-news/internal/usecase/index"
	pipelineuc "github.com/nnarahchibuike/final-ds-task-ai-news/internal/usecase/pipeline"
	recommenduc "github.com/nnarahchibuike/final-ds-task-ai-news/internal/usecase/recommend"
)

const feedFetchTimeout = 15 * time.Second

// app is the composition root shared by every subcommand.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	store  db.Store

	seen     *seen.Set
	api      *snapshot.Store
	embedder *openaiT.Embedder

	index     *indexuc.Service
	recommend *recommenduc.Service
	pipeline  *pipelineuc.Service
}

func newApp(env string) (*app, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, err
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, err
	}

	store, err := dbredis.NewStore(dbredis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(context.Background(),
		time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, err
	}
	logger.Info("connected to vector store", zap.Strings("addrs", cfg.Database.Addrs))

	// Metrics are registered explicitly (no init())
	metrics.RegisterPipelineMetrics()
	metrics.RegisterProviderMetrics()

	seenSet, err := seen.Load(cfg.Storage.SeenSetPath, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	raw := snapshot.New(cfg.Storage.RawDir, "raw_articles", logger)
	processed := snapshot.New(cfg.Storage.ProcessedDir, "processed_news", logger)
	api := snapshot.New(cfg.Storage.ProcessedDir, "api_articles", logger)

	embedder := openaiT.NewEmbedder(&openaiT.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		BatchSize:  cfg.Embedding.BatchSize,
		Provider:   "embedding",
		Logger:     logger,
	})

	// Pass nil interface (not typed nil pointer!) when the provider is
	// not configured. Go gotcha: a typed nil wrapped in an interface is
	// not nil.
	var completer enrichuc.Completer
	if cfg.LLM.APIKey != "" {
		completer = openaiT.NewCompleter(&openaiT.CompleterConfig{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
			Provider:    "llm",
			Logger:      logger,
		})
	}

	reranker := cohere.NewReranker(&cohere.Config{
		APIKey:  cfg.Rerank.APIKey,
		BaseURL: cfg.Rerank.BaseURL,
		Model:   cfg.Rerank.Model,
		Logger:  logger,
	})

	articles := articlesrepo.New(store, cfg.Storage.KeyPrefix, cfg.Embedding.Dimensions)

	fetchSvc := fetchuc.New(
		rss.NewFetcher(feedFetchTimeout, logger),
		seenSet, raw,
		cfg.Feeds.Sources, cfg.Feeds.MaxArticlesPerFeed,
	)
	enrichSvc := enrichuc.New(completer, enrichuc.Config{
		BatchSize:      cfg.LLM.BatchSize,
		RateLimitDelay: time.Duration(cfg.LLM.RateLimitDelaySec) * time.Second,
		TargetWords:    cfg.TargetSummaryWords(),
		MaxContentLen:  cfg.LLM.MaxContentLen,
		CleanContent:   cfg.LLM.ContentCleaning(),
	})
	// Cached embeddings survive pipeline re-runs of unchanged articles.
	cachedEmbedder := embcache.New(embedder, store, cfg.Storage.KeyPrefix, logger)

	indexSvc := indexuc.New(articles, cachedEmbedder, cfg.Recommend.SimilarityThreshold, cfg.Storage.Namespace)
	recommendSvc := recommenduc.New(indexSvc, reranker, completer, cfg.Recommend.MaxRecommendations)
	pipelineSvc := pipelineuc.New(
		fetchSvc, enrichSvc, indexSvc,
		processed, api, seenSet, store, cfg.Storage.KeyPrefix,
	)

	return &app{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		seen:      seenSet,
		api:       api,
		embedder:  embedder,
		index:     indexSvc,
		recommend: recommendSvc,
		pipeline:  pipelineSvc,
	}, nil
}

func (a *app) close() {
	a.store.Close()
	_ = a.logger.Sync()
}
