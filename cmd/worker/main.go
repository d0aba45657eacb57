package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/robfig/cron/v3"

	"healthquiz/internal/handler/http/respond"
	pgRepo "healthquiz/internal/infra/adapter/persistence/postgres"
	"healthquiz/internal/infra/db"
	"healthquiz/internal/infra/extractor"
	"healthquiz/internal/infra/feed"
	"healthquiz/internal/infra/notifier"
	workerPkg "healthquiz/internal/infra/worker"
	"healthquiz/internal/observability/logging"
	"healthquiz/internal/observability/tracing"
	"healthquiz/internal/resilience/circuitbreaker"
	ingestUC "healthquiz/internal/usecase/ingest"
	"healthquiz/internal/usecase/lifecycle"
	"healthquiz/internal/usecase/notify"
)

// jobs bundles what the scheduled jobs need.
type jobs struct {
	logger    *slog.Logger
	cfg       *workerPkg.WorkerConfig
	metrics   *workerPkg.WorkerMetrics
	health    *workerPkg.HealthServer
	lifecycle *lifecycle.Service
	ingest    *ingestUC.Service
	feeds     *feed.Fetcher
	notify    notify.Service
}

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	database, err := db.Open(openCtx)
	cancel()
	if err != nil {
		logger.Error("failed to open database", slog.String("error", respond.SanitizeError(err)))
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}

	shutdownTracing := tracing.Init("healthquiz-worker")
	defer func() { _ = shutdownTracing(context.Background()) }()

	workerMetrics := workerPkg.NewWorkerMetrics()
	cfg, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("sweep_schedule", cfg.SweepSchedule),
		slog.String("feed_schedule", cfg.FeedSchedule),
		slog.Int("feeds", len(cfg.FeedURLs)),
		slog.String("timezone", cfg.Timezone),
		slog.Int("notify_max_concurrent", cfg.NotifyMaxConcurrent),
		slog.Duration("job_timeout", cfg.JobTimeout))

	notifyService := notify.NewService([]notify.Channel{
		notify.NewSlackChannel(notifier.LoadSlackConfig()),
		notify.NewDiscordChannel(notifier.LoadDiscordConfig()),
	}, cfg.NotifyMaxConcurrent)

	extractorCfg, err := extractor.LoadConfigFromEnv()
	if err != nil {
		logger.Warn("invalid extractor configuration, using defaults", slog.Any("error", err))
	}

	questions := pgRepo.NewQuestionRepo(database)
	dbBreaker := circuitbreaker.NewDBCircuitBreaker(database)

	startMetricsServer(ctx, logger, cfg.MetricsPort, notifyService)

	healthServer := workerPkg.NewHealthServer(fmt.Sprintf(":%d", cfg.HealthPort), logger, dbBreaker.PingContext)
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	j := &jobs{
		logger:    logger,
		cfg:       cfg,
		metrics:   workerMetrics,
		health:    healthServer,
		lifecycle: lifecycle.NewService(questions),
		ingest:    ingestUC.NewService(pgRepo.NewArticleRepo(database), extractor.New(extractorCfg)),
		feeds:     feed.NewFetcher(nil),
		notify:    notifyService,
	}

	c, err := j.schedule()
	if err != nil {
		logger.Error("failed to schedule jobs", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()
	healthServer.SetReady(true)
	logger.Info("worker started")

	<-ctx.Done()
	logger.Info("shutting down worker...")
	healthServer.SetReady(false)

	// Wait for running jobs, then for their notifications.
	<-c.Stop().Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := notifyService.Shutdown(shutdownCtx); err != nil {
		logger.Warn("notifications still pending at shutdown", slog.Any("error", err))
	}
	logger.Info("worker stopped")
}

// schedule registers the sweep job and, when feeds are configured, the feed
// ingestion job. Overlapping runs of the same job are skipped.
func (j *jobs) schedule() (*cron.Cron, error) {
	loc, err := time.LoadLocation(j.cfg.Timezone)
	if err != nil {
		j.logger.Error("invalid timezone, using UTC", slog.String("timezone", j.cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger), cron.Recover(cron.DefaultLogger)),
	)

	if _, err := c.AddFunc(j.cfg.SweepSchedule, j.runSweep); err != nil {
		return nil, fmt.Errorf("add sweep job: %w", err)
	}
	if j.cfg.FeedsEnabled() {
		if _, err := c.AddFunc(j.cfg.FeedSchedule, j.runFeedIngest); err != nil {
			return nil, fmt.Errorf("add feed job: %w", err)
		}
	} else {
		j.logger.Info("FEED_URLS not set, feed ingestion disabled")
	}
	return c, nil
}

func (j *jobs) finish(job string, started time.Time, err error) {
	d := time.Since(started)
	j.metrics.RecordJob(job, d, err)
	j.health.RecordRun(job, started, d, err)
}

// runSweep deletes expired archived questions and reports the run.
func (j *jobs) runSweep() {
	started := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), j.cfg.JobTimeout)
	defer cancel()

	report, err := j.lifecycle.Sweep(ctx)
	if report == nil {
		j.logger.Error("sweep failed", slog.String("error", respond.SanitizeError(err)))
		j.finish(workerPkg.JobSweep, started, err)
		return
	}
	if err != nil {
		j.logger.Warn("sweep finished with failures", slog.String("error", respond.SanitizeError(err)))
	}

	if rerr := j.lifecycle.RefreshStatusGauges(ctx); rerr != nil {
		j.logger.Warn("failed to refresh question gauges", slog.Any("error", rerr))
	}
	_ = j.notify.NotifyReport(ctx, notify.NewSweepReport(notify.SweepSummary{
		Trigger:    "cron",
		Candidates: report.Candidates,
		Deleted:    report.Deleted,
		Protected:  report.Protected,
		Failed:     report.Failed,
		Duration:   report.Duration,
	}))
	j.finish(workerPkg.JobSweep, started, err)
}

// runFeedIngest pulls article links from the configured feeds and ingests
// them. Links already stored come back as skipped.
func (j *jobs) runFeedIngest() {
	started := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), j.cfg.JobTimeout)
	defer cancel()

	links, ferr := j.feeds.Discover(ctx, j.cfg.FeedURLs)
	if ferr != nil {
		j.logger.Warn("some feeds failed", slog.Any("error", ferr))
	}
	j.metrics.RecordFeedLinks(len(links))
	if len(links) == 0 {
		j.logger.Info("no feed links discovered")
		j.finish(workerPkg.JobFeedIngest, started, ferr)
		return
	}

	batch, err := j.ingest.IngestURLs(ctx, links)
	if err != nil {
		j.logger.Error("feed ingestion failed", slog.Any("error", err))
		j.finish(workerPkg.JobFeedIngest, started, err)
		return
	}
	if batch.Summary.Success > 0 || batch.Summary.Failed > 0 {
		_ = j.notify.NotifyReport(ctx, notify.NewIngestReport(notify.IngestSummary{
			Source:  fmt.Sprintf("%d feeds", len(j.cfg.FeedURLs)),
			Total:   batch.Summary.Total,
			Success: batch.Summary.Success,
			Skipped: batch.Summary.Skipped,
			Failed:  batch.Summary.Failed,
		}))
	}
	j.finish(workerPkg.JobFeedIngest, started, nil)
}
