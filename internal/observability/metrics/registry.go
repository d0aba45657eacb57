package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)
)

// Content extraction
var (
	// ExtractionAttemptsTotal counts extractions by result: success, fetch_error, parse_error
	ExtractionAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_extraction_attempts_total",
			Help: "Total number of content extraction attempts",
		},
		[]string{"result"},
	)

	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "content_extraction_duration_seconds",
			Help:    "Time taken to fetch and parse an article page",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8, 25.6},
		},
		[]string{"result"},
	)

	// IngestedArticlesTotal counts ingestion outcomes: created, duplicate, rejected, failed
	IngestedArticlesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_ingested_total",
			Help: "Total number of article ingestion outcomes",
		},
		[]string{"outcome"},
	)
)

// Question lifecycle
var (
	// QuestionTransitionsTotal counts archive/restore/sweep attempts by outcome
	QuestionTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "question_transitions_total",
			Help: "Total number of question lifecycle transitions attempted",
		},
		[]string{"transition", "outcome"},
	)

	SweepRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "question_sweep_runs_total",
			Help: "Total number of sweep runs",
		},
		[]string{"mode"},
	)

	SweepQuestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "question_sweep_questions_total",
			Help: "Expired questions seen by live sweeps, by result",
		},
		[]string{"result"}, // deleted, protected, failed
	)

	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "question_sweep_duration_seconds",
			Help:    "Time taken by a sweep run",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	QuestionsByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "questions_total",
			Help: "Number of questions by lifecycle status",
		},
		[]string{"status"},
	)
)

// Generation and quiz
var (
	QuestionsGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questions_generated_total",
			Help: "Total number of question generation attempts",
		},
		[]string{"status"},
	)

	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "question_generation_duration_seconds",
			Help:    "Time taken to generate a question from an article",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	QuizSessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_sessions_total",
			Help: "Quiz sessions by event",
		},
		[]string{"event"}, // started, finished
	)

	QuizResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_responses_total",
			Help: "Recorded quiz responses",
		},
		[]string{"correct"},
	)
)

// Database metrics track database performance
var (
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}
