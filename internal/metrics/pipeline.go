package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline Prometheus metrics.
var (
	PipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsai",
			Name:      "pipeline_runs_total",
			Help:      "Total number of pipeline runs",
		},
		[]string{"status"}, // "ok" / "error"
	)

	PipelineStepDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "newsai",
			Name:      "pipeline_step_duration_seconds",
			Help:      "Pipeline step duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"step"}, // "fetch" / "enrich" / "index" / "snapshot"
	)

	ArticlesFetchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsai",
			Name:      "articles_fetched_total",
			Help:      "Total articles fetched from feeds",
		},
		[]string{"category"},
	)

	ArticlesDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsai",
			Name:      "articles_dropped_total",
			Help:      "Total articles dropped before enrichment",
		},
		[]string{"reason"}, // "duplicate" / "invalid"
	)

	ArticlesIndexedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "newsai",
			Name:      "articles_indexed_total",
			Help:      "Total articles stored in the vector index",
		},
	)

	FeedFetchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsai",
			Name:      "feed_fetch_errors_total",
			Help:      "Total feed fetch failures",
		},
		[]string{"source"},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers Prometheus pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(PipelineRunsTotal)
	prometheus.MustRegister(PipelineStepDuration)
	prometheus.MustRegister(ArticlesFetchedTotal)
	prometheus.MustRegister(ArticlesDroppedTotal)
	prometheus.MustRegister(ArticlesIndexedTotal)
	prometheus.MustRegister(FeedFetchErrorsTotal)
	pipelineMetricsRegistered = true
}
