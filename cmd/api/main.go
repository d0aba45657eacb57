package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"healthquiz/internal/common/pagination"
	pgRepo "healthquiz/internal/infra/adapter/persistence/postgres"
	"healthquiz/internal/infra/db"
	"healthquiz/internal/infra/extractor"
	"healthquiz/internal/infra/generator"
	"healthquiz/internal/infra/notifier"
	"healthquiz/internal/observability/logging"
	"healthquiz/internal/observability/tracing"
	"healthquiz/internal/resilience/circuitbreaker"
	"healthquiz/pkg/config"

	hhttp "healthquiz/internal/handler/http"
	hadmin "healthquiz/internal/handler/http/admin"
	harticle "healthquiz/internal/handler/http/article"
	hauth "healthquiz/internal/handler/http/auth"
	hquiz "healthquiz/internal/handler/http/quiz"
	"healthquiz/internal/handler/http/requestid"

	artUC "healthquiz/internal/usecase/article"
	genUC "healthquiz/internal/usecase/generate"
	ingestUC "healthquiz/internal/usecase/ingest"
	"healthquiz/internal/usecase/lifecycle"
	"healthquiz/internal/usecase/notify"
	quizUC "healthquiz/internal/usecase/quiz"
)

func main() {
	logger := initLogger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	database, err := db.Open(ctx)
	cancel()
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
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

	shutdownTracing := tracing.Init("healthquiz-api")
	defer func() { _ = shutdownTracing(context.Background()) }()

	version := config.GetEnvString("VERSION", "dev")
	components := setupServer(logger, database, version)
	runServer(logger, components, version)
}

// initLogger installs a JSON logger at LOG_LEVEL as the default.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// ServerComponents holds what runServer needs beyond the handler.
type ServerComponents struct {
	Handler     http.Handler
	Notifier    notify.Service
	RateLimiter *hhttp.RateLimiter
	AuthLimiter *hhttp.RateLimiter
}

// setupServer wires repositories, use cases and routes.
func setupServer(logger *slog.Logger, database *sql.DB, version string) *ServerComponents {
	articles := pgRepo.NewArticleRepo(database)
	questions := pgRepo.NewQuestionRepo(database)
	quizzes := pgRepo.NewQuizRepo(database)

	notifySvc := notify.NewService([]notify.Channel{
		notify.NewEmailChannel(notifier.LoadEmailConfig(), config.GetEnvString("APP_URL", "http://localhost:3000")),
		notify.NewSlackChannel(notifier.LoadSlackConfig()),
		notify.NewDiscordChannel(notifier.LoadDiscordConfig()),
	}, config.GetEnvInt("NOTIFY_MAX_CONCURRENT", 10))

	extractorCfg, err := extractor.LoadConfigFromEnv()
	if err != nil {
		logger.Warn("invalid extractor configuration, using defaults", slog.Any("error", err))
	}
	ingestSvc := ingestUC.NewService(articles, extractor.New(extractorCfg))

	genCfg, err := generator.LoadConfig()
	if err != nil {
		logger.Error("failed to load generator configuration", slog.Any("error", err))
		os.Exit(1)
	}
	gen, err := generator.New(genCfg)
	if err != nil {
		logger.Error("failed to create generator", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("question generator configured",
		slog.String("provider", genCfg.Provider),
		slog.String("model", genCfg.Model))
	genSvc := genUC.NewService(articles, questions, gen, gen)

	quizSvc := quizUC.NewService(questions, quizzes, notifySvc,
		config.GetEnvInt("QUIZ_QUESTIONS_PER_SESSION", quizUC.DefaultQuestionsPerSession))
	lifecycleSvc := lifecycle.NewService(questions)

	issuer, err := hauth.NewIssuer(os.Getenv("JWT_SECRET"), config.GetEnvDuration("JWT_TTL", time.Hour))
	if err != nil {
		logger.Error("invalid JWT configuration", slog.Any("error", err))
		os.Exit(1)
	}
	provider, err := hauth.NewProvider(os.Getenv("ADMIN_USER"), os.Getenv("ADMIN_USER_PASSWORD"))
	if err != nil {
		logger.Error("invalid admin credentials", slog.Any("error", err))
		os.Exit(1)
	}

	authLimiter := hhttp.NewRateLimiter(5, time.Minute)
	dbBreaker := circuitbreaker.NewDBCircuitBreaker(database)

	mux := http.NewServeMux()
	mux.Handle("POST /auth/token", authLimiter.Limit(hauth.TokenHandler(provider, issuer)))
	mux.Handle("GET /health", &hhttp.HealthHandler{
		DB:       dbBreaker,
		Stats:    database.Stats,
		Version:  version,
		Channels: func() any { return notifySvc.GetChannelHealth() },
	})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{DB: dbBreaker})
	mux.Handle("GET /live", hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	harticle.Register(mux, &artUC.Service{Repo: articles}, logger)
	hquiz.Register(mux, quizSvc)
	hadmin.Register(mux, &hadmin.Handlers{
		Ingest:     ingestSvc,
		Generate:   genSvc,
		Lifecycle:  lifecycleSvc,
		Pagination: pagination.LoadFromEnv(),
		Notifier:   notifySvc,
		Logger:     logger,
	}, hauth.RequireAdmin(issuer))

	limiter := hhttp.NewRateLimiter(
		config.GetEnvInt("RATE_LIMIT_REQUESTS", 120),
		config.GetEnvDuration("RATE_LIMIT_WINDOW", time.Minute))

	return &ServerComponents{
		Handler:     applyMiddleware(logger, mux, limiter),
		Notifier:    notifySvc,
		RateLimiter: limiter,
		AuthLimiter: authLimiter,
	}
}

// applyMiddleware wraps handler, outermost first:
// security headers, CORS, request id, tracing, rate limit, recovery, logging, body limit, metrics.
func applyMiddleware(logger *slog.Logger, handler http.Handler, limiter *hhttp.RateLimiter) http.Handler {
	origins := config.GetEnvStringList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"})
	logger.Info("CORS enabled", slog.Any("allowed_origins", origins))

	h := handler
	h = hhttp.MetricsMiddleware(h)
	h = hhttp.LimitRequestBody(5 << 20)(h)
	h = hhttp.Logging(logger)(h)
	h = hhttp.Recover(logger)(h)
	h = limiter.Limit(h)
	h = tracing.Middleware(h)
	h = requestid.Middleware(h)
	h = hhttp.CORS(origins)(h)
	h = hhttp.SecurityHeaders(h)
	return h
}

// runServer serves until SIGINT/SIGTERM, then drains requests and pending
// notifications.
func runServer(logger *slog.Logger, c *ServerComponents, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed := c.RateLimiter.Cleanup() + c.AuthLimiter.Cleanup()
				logger.Debug("rate limiter cleanup", slog.Int("removed", removed))
			}
		}
	}()

	addr := ":" + config.GetEnvString("PORT", "8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           c.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	if err := c.Notifier.Shutdown(shutdownCtx); err != nil {
		logger.Warn("notifications still pending at shutdown", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
