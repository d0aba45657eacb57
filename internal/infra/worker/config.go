package worker

import (
	"fmt"
	"log/slog"
	"time"

	"healthquiz/internal/domain/entity"
	"healthquiz/internal/pkg/config"
)

// WorkerConfig controls the scheduled jobs of cmd/worker.
type WorkerConfig struct {
	// SweepSchedule runs the expired-question sweep (SWEEP_CRON).
	SweepSchedule string
	// FeedSchedule runs feed ingestion (FEED_CRON). It is ignored when
	// FeedURLs is empty.
	FeedSchedule string
	FeedURLs     []string
	// Timezone is the IANA zone both schedules are evaluated in (CRON_TZ).
	Timezone string

	NotifyMaxConcurrent int
	// JobTimeout bounds a single job run.
	JobTimeout time.Duration

	HealthPort  int
	MetricsPort int
}

// DefaultConfig returns the production defaults: a nightly sweep at 03:00 UTC
// and hourly feed ingestion at half past.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		SweepSchedule:       "0 3 * * *",
		FeedSchedule:        "30 * * * *",
		Timezone:            "UTC",
		NotifyMaxConcurrent: 5,
		JobTimeout:          30 * time.Minute,
		HealthPort:          9091,
		MetricsPort:         9090,
	}
}

// FeedsEnabled reports whether feed ingestion should be scheduled.
func (c *WorkerConfig) FeedsEnabled() bool { return len(c.FeedURLs) > 0 }

// Validate reports every invalid field at once.
func (c *WorkerConfig) Validate() error {
	var errs []error
	check := func(field string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
		}
	}

	check("sweep schedule", config.ValidateCronSchedule(c.SweepSchedule))
	check("feed schedule", config.ValidateCronSchedule(c.FeedSchedule))
	check("timezone", config.ValidateTimezone(c.Timezone))
	check("notify max concurrent", config.ValidateIntRange(c.NotifyMaxConcurrent, 1, 50))
	check("job timeout", config.ValidatePositiveDuration(c.JobTimeout))
	check("health port", config.ValidatePort(c.HealthPort))
	check("metrics port", config.ValidatePort(c.MetricsPort))
	for _, u := range c.FeedURLs {
		check("feed url", entity.ValidateURLFormat(u))
	}
	if c.HealthPort == c.MetricsPort {
		errs = append(errs, fmt.Errorf("health and metrics ports must differ (both %d)", c.HealthPort))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadConfigFromEnv reads the worker settings. Invalid values fall back to
// their defaults with a warning and a config fallback metric; the returned
// error is always nil.
//
//	SWEEP_CRON            cron expression   (0 3 * * *)
//	FEED_CRON             cron expression   (30 * * * *)
//	FEED_URLS             comma-separated feed URLs
//	CRON_TZ               IANA timezone     (UTC)
//	NOTIFY_MAX_CONCURRENT 1-100             (5)
//	JOB_TIMEOUT           1m-4h             (30m)
//	HEALTH_PORT           1024-65535        (9091)
//	METRICS_PORT          1024-65535        (9090)
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	apply := func(field string, res config.ConfigLoadResult) config.ConfigLoadResult {
		if res.FallbackApplied {
			fallbackApplied = true
			metrics.RecordFallback(field)
			for _, w := range res.Warnings {
				logger.Warn("Configuration fallback applied",
					slog.String("field", field),
					slog.String("warning", w))
			}
		}
		return res
	}

	cfg.SweepSchedule = apply("sweep_cron",
		config.LoadEnvWithFallback("SWEEP_CRON", cfg.SweepSchedule, config.ValidateCronSchedule)).Value.(string)
	cfg.FeedSchedule = apply("feed_cron",
		config.LoadEnvWithFallback("FEED_CRON", cfg.FeedSchedule, config.ValidateCronSchedule)).Value.(string)
	cfg.FeedURLs = apply("feed_urls",
		config.LoadEnvList("FEED_URLS", nil, entity.ValidateURLFormat)).Value.([]string)
	cfg.Timezone = apply("timezone",
		config.LoadEnvWithFallback("CRON_TZ", cfg.Timezone, config.ValidateTimezone)).Value.(string)
	cfg.NotifyMaxConcurrent = apply("notify_max_concurrent",
		config.LoadEnvInt("NOTIFY_MAX_CONCURRENT", cfg.NotifyMaxConcurrent, func(v int) error {
			return config.ValidateIntRange(v, 1, 100)
		})).Value.(int)
	cfg.JobTimeout = apply("job_timeout",
		config.LoadEnvDuration("JOB_TIMEOUT", cfg.JobTimeout, func(d time.Duration) error {
			return config.ValidateDuration(d, time.Minute, 4*time.Hour)
		})).Value.(time.Duration)
	cfg.HealthPort = apply("health_port",
		config.LoadEnvInt("HEALTH_PORT", cfg.HealthPort, config.ValidatePort)).Value.(int)
	cfg.MetricsPort = apply("metrics_port",
		config.LoadEnvInt("METRICS_PORT", cfg.MetricsPort, config.ValidatePort)).Value.(int)

	metrics.SetFallbackActive(fallbackApplied)
	metrics.RecordLoadTimestamp()
	return &cfg, nil
}
