package worker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"healthquiz/internal/pkg/config"
)

// Job names used as the "job" label.
const (
	JobSweep      = "sweep"
	JobFeedIngest = "feed_ingest"
)

// WorkerMetrics are the worker's Prometheus metrics: configuration load
// tracking plus per-job run counts, durations and last success.
type WorkerMetrics struct {
	*config.ConfigMetrics

	JobRunsTotal            *prometheus.CounterVec
	JobDurationSeconds      *prometheus.HistogramVec
	JobLastSuccessTimestamp *prometheus.GaugeVec
	FeedLinksDiscovered     prometheus.Counter
}

// NewWorkerMetrics registers the worker metrics on the default registry.
func NewWorkerMetrics() *WorkerMetrics {
	return NewWorkerMetricsWith(prometheus.DefaultRegisterer)
}

// NewWorkerMetricsWith registers the worker metrics on reg.
func NewWorkerMetricsWith(reg prometheus.Registerer) *WorkerMetrics {
	f := promauto.With(reg)
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetricsWith(reg, "worker"),

		JobRunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_job_runs_total",
			Help: "Total number of scheduled job runs by job and status (success/failure)",
		}, []string{"job", "status"}),

		JobDurationSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of scheduled job runs in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}, []string{"job"}),

		JobLastSuccessTimestamp: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "worker_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful run per job",
		}, []string{"job"}),

		FeedLinksDiscovered: f.NewCounter(prometheus.CounterOpts{
			Name: "worker_feed_links_discovered_total",
			Help: "Total number of article links found in feeds",
		}),
	}
}

// RecordJob records one finished run of job.
func (m *WorkerMetrics) RecordJob(job string, duration time.Duration, err error) {
	m.JobDurationSeconds.WithLabelValues(job).Observe(duration.Seconds())
	if err != nil {
		m.JobRunsTotal.WithLabelValues(job, "failure").Inc()
		return
	}
	m.JobRunsTotal.WithLabelValues(job, "success").Inc()
	m.JobLastSuccessTimestamp.WithLabelValues(job).SetToCurrentTime()
}

// RecordFeedLinks adds n discovered links.
func (m *WorkerMetrics) RecordFeedLinks(n int) {
	m.FeedLinksDiscovered.Add(float64(n))
}
