package enrich

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/domain"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/logger"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/metrics"
)

// summarySeparator delimits summaries inside a batched completion.
// The model is instructed to emit it verbatim between summaries.
const summarySeparator = "---SUMMARY_SEPARATOR---"

// Config tunes the summarization batcher.
type Config struct {
	BatchSize      int
	RateLimitDelay time.Duration
	TargetWords    int
	MaxContentLen  int
	CleanContent   bool
}

// Service generates AI summaries for articles in fixed-size batches.
// One completion call covers a whole batch; a failed batch falls back
// to per-article calls so a single bad response never empties the run.
type Service struct {
	completer Completer
	cfg       Config
	sleep     func(time.Duration)
}

// New creates an enrichment service.
func New(completer Completer, cfg Config) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if cfg.TargetWords <= 0 {
		cfg.TargetWords = 60
	}
	if cfg.MaxContentLen <= 0 {
		cfg.MaxContentLen = 2000
	}
	return &Service{completer: completer, cfg: cfg, sleep: time.Sleep}
}

// Summarize fills AISummary on every article in place. Articles whose
// summary could not be generated keep an empty AISummary; the method
// only errors when the context is done.
func (s *Service) Summarize(ctx context.Context, articles []domain.Article) error {
	if s.completer == nil || len(articles) == 0 {
		return nil
	}
	log := logger.FromContext(ctx)

	for start := 0; start < len(articles); start += s.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.cfg.RateLimitDelay > 0 {
			s.sleep(s.cfg.RateLimitDelay)
		}

		end := start + s.cfg.BatchSize
		if end > len(articles) {
			end = len(articles)
		}
		batch := articles[start:end]

		summaries, err := s.summarizeBatch(ctx, batch)
		if err != nil {
			log.Warn("batch summarization failed, falling back to per-article calls",
				zap.Int("batch_start", start),
				zap.Int("batch_len", len(batch)),
				zap.Error(err),
			)
			metrics.SummaryFallbacksTotal.Inc()
			s.summarizeIndividually(ctx, batch)
			continue
		}
		for i := range batch {
			batch[i].AISummary = summaries[i]
		}
	}
	return nil
}

// summarizeBatch asks for all summaries of a batch in one completion.
func (s *Service) summarizeBatch(ctx context.Context, batch []domain.Article) ([]string, error) {
	prompt := s.buildBatchPrompt(batch)
	maxTokens := s.cfg.TargetWords * len(batch) * 3 / 2

	text, err := s.completer.Complete(ctx, prompt, maxTokens)
	if err != nil {
		return nil, fmt.Errorf("batch completion: %w", err)
	}
	return parseBatchResponse(text, len(batch)), nil
}

// summarizeIndividually is the degraded path after a failed batch call.
// Each article gets its own completion; an article whose call fails is
// left without an AI summary.
func (s *Service) summarizeIndividually(ctx context.Context, batch []domain.Article) {
	log := logger.FromContext(ctx)
	for i := range batch {
		if ctx.Err() != nil {
			return
		}
		if s.cfg.RateLimitDelay > 0 {
			s.sleep(s.cfg.RateLimitDelay)
		}
		summary, err := s.summarizeOne(ctx, &batch[i])
		if err != nil {
			log.Warn("article summarization failed",
				zap.String("article_id", batch[i].ID),
				zap.Error(err),
			)
			continue
		}
		batch[i].AISummary = summary
	}
}

func (s *Service) summarizeOne(ctx context.Context, art *domain.Article) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a professional news summarizer. Create a news summary that is EXACTLY %d words long.\n\n", s.cfg.TargetWords)
	fmt.Fprintf(&b, "Title: %s\n\nContent: %s\n\n", art.Title, s.truncate(s.contentFor(art)))
	fmt.Fprintf(&b, "Requirements:\n")
	fmt.Fprintf(&b, "- EXACTLY %d words (no more, no less)\n", s.cfg.TargetWords)
	fmt.Fprintf(&b, "- Capture the main points and key information\n")
	fmt.Fprintf(&b, "- Be objective and factual\n")
	fmt.Fprintf(&b, "- Do not include introductory phrases, start directly with the content\n\n")
	fmt.Fprintf(&b, "Write your %d-word summary:", s.cfg.TargetWords)

	text, err := s.completer.Complete(ctx, b.String(), s.cfg.TargetWords*3/2)
	if err != nil {
		return "", fmt.Errorf("completion: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (s *Service) buildBatchPrompt(batch []domain.Article) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create news summaries for the following %d articles. Each summary must be EXACTLY %d words.\n\n", len(batch), s.cfg.TargetWords)
	fmt.Fprintf(&b, "IMPORTANT INSTRUCTIONS:\n")
	fmt.Fprintf(&b, "- Create exactly %d words for each summary\n", s.cfg.TargetWords)
	fmt.Fprintf(&b, "- Separate each summary with '%s'\n", summarySeparator)
	fmt.Fprintf(&b, "- Maintain the same order as the articles below\n")
	fmt.Fprintf(&b, "- Be objective and factual\n")
	fmt.Fprintf(&b, "- Start directly with content (no introductory phrases)\n")

	for i := range batch {
		fmt.Fprintf(&b, "\nARTICLE %d:\nTitle: %s\nContent: %s\n", i+1, batch[i].Title, s.truncate(s.contentFor(&batch[i])))
	}

	fmt.Fprintf(&b, "\nNow provide exactly %d words for each of the %d articles above, separated by '%s':",
		s.cfg.TargetWords, len(batch), summarySeparator)
	return b.String()
}

// contentFor picks the best text to summarize from, cleaned if enabled.
// Articles without content fall back to the feed summary.
func (s *Service) contentFor(art *domain.Article) string {
	content := art.Content
	if content == "" {
		content = art.Summary
	}
	if s.cfg.CleanContent {
		content = CleanContent(content)
	}
	return content
}

func (s *Service) truncate(content string) string {
	if len(content) > s.cfg.MaxContentLen {
		return content[:runeBoundary(content, s.cfg.MaxContentLen)] + "..."
	}
	return content
}

// runeBoundary backs a byte cut index up so a multi-byte rune is never
// split.
func runeBoundary(s string, i int) int {
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

// parseBatchResponse splits a batched completion into exactly n
// summaries. Missing entries become empty strings, surplus entries are
// dropped, so the result always aligns positionally with the batch.
func parseBatchResponse(text string, n int) []string {
	parts := strings.Split(text, summarySeparator)

	summaries := make([]string, 0, n)
	for _, p := range parts {
		if cleaned := strings.TrimSpace(p); cleaned != "" {
			summaries = append(summaries, cleaned)
		}
	}

	for len(summaries) < n {
		summaries = append(summaries, "")
	}
	return summaries[:n]
}
