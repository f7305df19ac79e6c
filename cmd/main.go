package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/journal-reminder-scheduling/internal/config"
	"github.com/KasumiMercury/journal-reminder-scheduling/internal/domain"
	"github.com/KasumiMercury/journal-reminder-scheduling/internal/handler"
	"github.com/KasumiMercury/journal-reminder-scheduling/internal/health"
	"github.com/KasumiMercury/journal-reminder-scheduling/internal/infra/dispatchrecorder"
	"github.com/KasumiMercury/journal-reminder-scheduling/internal/infra/notifier"
	"github.com/KasumiMercury/journal-reminder-scheduling/internal/infra/postgres"
	"github.com/KasumiMercury/journal-reminder-scheduling/internal/infra/repository"
	"github.com/KasumiMercury/journal-reminder-scheduling/internal/observability"
	"github.com/KasumiMercury/journal-reminder-scheduling/internal/observability/logging"
	"github.com/KasumiMercury/journal-reminder-scheduling/internal/observability/metrics"
	"github.com/KasumiMercury/journal-reminder-scheduling/internal/observability/middleware"
	"github.com/KasumiMercury/journal-reminder-scheduling/internal/service/processor"
	"github.com/KasumiMercury/journal-reminder-scheduling/internal/service/reminder"
	"github.com/KasumiMercury/journal-reminder-scheduling/internal/service/schedule"
	"github.com/KasumiMercury/journal-reminder-scheduling/internal/trigger"
)

// Version is set via ldflags at build time
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	obs, err := initObservability(ctx)
	if err != nil {
		slog.Error("failed to initialize observability", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			slog.Warn("observability shutdown error", slog.String("error", err.Error()))
		}
	}()

	slog.SetDefault(obs.Logger())

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		return 1
	}

	if err := config.ValidateForRun(cfg); err != nil {
		slog.Error("configuration validation error", slog.String("error", err.Error()))
		return 1
	}

	httpMetrics, err := metrics.NewHTTPMetrics()
	if err != nil {
		slog.Error("failed to initialize HTTP metrics", slog.String("error", err.Error()))
		return 1
	}

	processorMetrics, err := metrics.NewProcessorMetrics()
	if err != nil {
		slog.Error("failed to initialize processor metrics", slog.String("error", err.Error()))
		return 1
	}

	resultRecorderCfg := dispatchrecorder.LoadConfig()
	resultRecorder, err := dispatchrecorder.NewRecorder(ctx, resultRecorderCfg)
	if err != nil {
		slog.Error("failed to initialize dispatch result recorder", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		if err := resultRecorder.Close(); err != nil {
			slog.Warn("failed to close dispatch result recorder", slog.String("error", err.Error()))
		}
	}()

	db, err := postgres.New(ctx, cfg.Postgres.URI)
	if err != nil {
		slog.Error("failed to connect postgres",
			slog.String("event", "postgres.connect.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		slog.Error("failed to run migrations", slog.String("error", err.Error()))
		return 1
	}

	redisClient := redis.NewClient(cfg.Redis.Options())

	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		slog.Error("failed to instrument redis tracing",
			slog.String("event", "redis.otel.tracing.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	if err := redisotel.InstrumentMetrics(redisClient); err != nil {
		slog.Error("failed to instrument redis metrics",
			slog.String("event", "redis.otel.metrics.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Error("failed to connect redis",
			slog.String("event", "redis.connect.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	defer func() {
		if err := redisClient.Close(); err != nil {
			slog.Warn("failed to close redis client", slog.String("error", err.Error()))
		}
	}()

	slog.Info("redis connected",
		slog.String("addr", cfg.Redis.Addr),
	)

	reminderRepo := repository.NewReminderRepository(db)
	dispatchLedger := repository.NewDispatchLedger(redisClient)

	var reminderNotifier domain.Notifier = notifier.NewLogNotifier()
	if cfg.Notifier.WebhookURL != "" {
		reminderNotifier = notifier.NewWebhookNotifier(cfg.Notifier.WebhookURL, cfg.Notifier.MaxRetries)
		slog.Info("webhook notifier initialized",
			slog.String("url", cfg.Notifier.WebhookURL),
		)
	} else {
		slog.Warn("NOTIFIER_WEBHOOK_URL not set, notifications are logged only")
	}

	calculator := schedule.NewCalculator(nil)

	reminderService := reminder.NewService(reminderRepo, calculator)
	processorService := processor.NewService(
		reminderRepo,
		reminderNotifier,
		calculator,
		dispatchLedger,
		resultRecorder,
		processorMetrics,
		cfg.Processor.DueBatchLimit,
	)

	reminderHandler := handler.NewReminderHandler(reminderService)
	processHandler := handler.NewProcessHandler(processorService)

	r := gin.New()
	r.Use(middleware.Gin(middleware.GinConfig{
		SkipPaths:   []string{"/health", "/health/live", "/health/ready", "/metrics"},
		Module:      logging.Module("reminder-scheduling"),
		TracerName:  "github.com/KasumiMercury/journal-reminder-scheduling/internal/observability/middleware",
		HTTPMetrics: httpMetrics,
	}))
	r.Use(middleware.PanicRecoveryGin())

	healthChecker := health.NewChecker(db.Pool, redisClient, Version)
	r.GET("/health/live", healthChecker.LiveHandler())
	r.GET("/health/ready", healthChecker.ReadyHandler())
	r.GET("/health", healthChecker.ReadyHandler())

	v1 := r.Group("/api/v1")
	{
		v1.POST("/reminders", reminderHandler.HandleCreate)
		v1.GET("/reminders/:id", reminderHandler.HandleGet)
		v1.PATCH("/reminders/:id", reminderHandler.HandleUpdate)
		v1.DELETE("/reminders/:id", reminderHandler.HandleDelete)
		v1.GET("/entries/:entryId/reminders", reminderHandler.HandleListByEntry)
		v1.DELETE("/entries/:entryId/reminders", reminderHandler.HandleDeleteByEntry)
		v1.POST("/reminders/process", processHandler.HandleProcess)
	}

	if cfg.Processor.Interval > 0 {
		ticker := trigger.NewTicker(processorService, cfg.Processor.Interval)
		reminderService.SetSweepNotifier(ticker)
		go ticker.Start(ctx)
	} else {
		slog.Info("internal sweep ticker disabled, processing runs on demand only")
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Port),
			slog.Int("due_batch_limit", cfg.Processor.DueBatchLimit),
			slog.Duration("process_interval", cfg.Processor.Interval),
		)
		serverErr <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown server", slog.String("error", err.Error()))
			return 1
		}

		slog.Info("server exited properly")
		return 0

	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return 0
		}
		slog.Error("server exited with error", slog.String("error", err.Error()))
		return 1
	}
}

func initObservability(ctx context.Context) (*observability.Resources, error) {
	serviceName := os.Getenv("SERVICE_NAME")
	if serviceName == "" {
		serviceName = "reminder-scheduling"
	}

	env := logging.EnvDev
	if e := os.Getenv("ENV"); e != "" {
		env = logging.Environment(e)
	}

	return observability.Init(ctx, observability.Config{
		ServiceInfo: logging.ServiceInfo{
			Name:    serviceName,
			Version: Version,
		},
		Environment:   env,
		SamplingRate:  1.0,
		DefaultModule: logging.Module("reminder-scheduling"),
	})
}
