package worker

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "0 3 * * *", cfg.SweepSchedule)
	assert.Equal(t, "30 * * * *", cfg.FeedSchedule)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.False(t, cfg.FeedsEnabled())
}

func TestWorkerConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*WorkerConfig)
		want   string
	}{
		{"bad sweep cron", func(c *WorkerConfig) { c.SweepSchedule = "nightly" }, "sweep schedule"},
		{"bad feed cron", func(c *WorkerConfig) { c.FeedSchedule = "" }, "feed schedule"},
		{"bad timezone", func(c *WorkerConfig) { c.Timezone = "Nowhere/Land" }, "timezone"},
		{"concurrency", func(c *WorkerConfig) { c.NotifyMaxConcurrent = 0 }, "notify max concurrent"},
		{"timeout", func(c *WorkerConfig) { c.JobTimeout = 0 }, "job timeout"},
		{"privileged port", func(c *WorkerConfig) { c.HealthPort = 80 }, "health port"},
		{"port clash", func(c *WorkerConfig) { c.MetricsPort = c.HealthPort }, "must differ"},
		{"feed url", func(c *WorkerConfig) { c.FeedURLs = []string{"ftp://x"} }, "feed url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SWEEP_CRON", "15 4 * * *")
	t.Setenv("FEED_CRON", "not a cron")
	t.Setenv("FEED_URLS", "https://www.cdc.gov/rss.xml, https://www.who.int/rss-feeds/news-english.xml")
	t.Setenv("CRON_TZ", "America/Chicago")
	t.Setenv("NOTIFY_MAX_CONCURRENT", "500")
	t.Setenv("JOB_TIMEOUT", "10m")
	t.Setenv("HEALTH_PORT", "")
	t.Setenv("METRICS_PORT", "9300")

	m := NewWorkerMetricsWith(prometheus.NewRegistry())
	cfg, err := LoadConfigFromEnv(slog.New(slog.NewTextHandler(io.Discard, nil)), m)
	require.NoError(t, err)

	assert.Equal(t, "15 4 * * *", cfg.SweepSchedule)
	assert.Equal(t, "30 * * * *", cfg.FeedSchedule)
	assert.Len(t, cfg.FeedURLs, 2)
	assert.True(t, cfg.FeedsEnabled())
	assert.Equal(t, "America/Chicago", cfg.Timezone)
	assert.Equal(t, 5, cfg.NotifyMaxConcurrent)
	assert.Equal(t, 10*time.Minute, cfg.JobTimeout)
	assert.Equal(t, 9091, cfg.HealthPort)
	assert.Equal(t, 9300, cfg.MetricsPort)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("feed_cron")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("notify_max_concurrent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbackActive))
}

func TestLoadConfigFromEnv_BadFeedList(t *testing.T) {
	t.Setenv("FEED_URLS", "https://ok.example.org/feed,"+strings.Repeat("x", 5))
	m := NewWorkerMetricsWith(prometheus.NewRegistry())
	cfg, _ := LoadConfigFromEnv(slog.New(slog.NewTextHandler(io.Discard, nil)), m)
	assert.False(t, cfg.FeedsEnabled())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("feed_urls")))
}

func TestWorkerMetrics_RecordJob(t *testing.T) {
	m := NewWorkerMetricsWith(prometheus.NewRegistry())

	m.RecordJob(JobSweep, time.Second, nil)
	m.RecordJob(JobSweep, time.Second, assert.AnError)
	m.RecordJob(JobFeedIngest, time.Second, nil)
	m.RecordFeedLinks(7)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRunsTotal.WithLabelValues(JobSweep, "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRunsTotal.WithLabelValues(JobSweep, "failure")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.FeedLinksDiscovered))
	assert.Greater(t, testutil.ToFloat64(m.JobLastSuccessTimestamp.WithLabelValues(JobFeedIngest)), 0.0)
}
