package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/ghuser/todoreminder/pkg/app"
	"github.com/ghuser/todoreminder/pkg/cache"
	"github.com/ghuser/todoreminder/pkg/config"
	"github.com/ghuser/todoreminder/pkg/database"
	"github.com/ghuser/todoreminder/pkg/events"
	"github.com/ghuser/todoreminder/pkg/httpx"
	"github.com/ghuser/todoreminder/pkg/logger"
	"github.com/ghuser/todoreminder/pkg/telemetry"
	"github.com/ghuser/todoreminder/pkg/workflows"
	accountsvcs "github.com/ghuser/todoreminder/services/account/application/services"
	notifsvcs "github.com/ghuser/todoreminder/services/notification/application/services"
	"github.com/ghuser/todoreminder/services/notification/application/subscribers"
	"github.com/ghuser/todoreminder/services/notification/domain"
	"github.com/ghuser/todoreminder/services/notification/infrastructure/sender"
	"github.com/ghuser/todoreminder/services/notification/infrastructure/temporal"
	todosvcs "github.com/ghuser/todoreminder/services/todo/application/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.Validate(cfg); err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg).With("process", "worker")

	ctx := context.Background()

	otelShutdown, metricsHandler, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer pool.Close() //nolint:errcheck
	log.Info("database pool connected")

	eventBus, err := events.NewEventBus(cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	var fsClient *firestore.Client
	if cfg.ItemStore == config.StoreFirestore {
		fsClient, err = firestore.NewClient(ctx, cfg.FirestoreProjectID)
		if err != nil {
			log.Error("failed to create firestore client", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer fsClient.Close() //nolint:errcheck
	}

	var temporalClient *workflows.TemporalClient
	if cfg.DispatchBackend == config.DispatchTemporal {
		temporalClient, err = workflows.NewTemporalClient(ctx, cfg, log)
		if err != nil {
			log.Error("failed to initialize temporal client", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer temporalClient.Close()
	}

	appConfig := &app.Application{
		Config:         cfg,
		Db:             pool,
		Logger:         log,
		EventBus:       eventBus,
		Redis:          redisClient,
		Firestore:      fsClient,
		TemporalClient: temporalClient,
	}

	send, err := newSender(appConfig)
	if err != nil {
		log.Error("failed to create reminder sender", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	notif, err := notifsvcs.New(appConfig, todosvcs.NewRepository(appConfig), send)
	if err != nil {
		log.Error("failed to wire reminders", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	if err := subscribers.Register(runCtx, eventBus, notif.Synchronizer, log); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	go notif.Synchronizer.RunResync(runCtx, cfg.ResyncInterval)

	switch {
	case notif.Dispatcher != nil:
		go notif.Dispatcher.Run(runCtx)
		log.Info("reminder dispatcher started", "interval", cfg.DispatchInterval, "batch", cfg.DispatchBatch)
	case notif.Activities != nil:
		w := temporalClient.NewWorker(cfg.ReconcileConcurrency)
		w.RegisterWorkflow(temporal.ReminderWorkflow)
		w.RegisterActivity(notif.Activities)
		if err := w.Start(); err != nil {
			log.Error("failed to start temporal worker", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer w.Stop()
		log.Info("temporal worker started", "task_queue", cfg.TemporalTaskQueue)
	}

	var srv *http.Server
	if cfg.WorkerAddr != "" {
		r := httpx.NewProbeRouter(httpx.HealthChecks{
			"database": pool,
			"redis":    redisClient,
			"eventbus": eventBus,
			"temporal": healthChecker(temporalClient),
		}, metricsHandler)
		srv = httpx.NewServer(cfg.WorkerAddr, r)
		go func() {
			log.Info("worker probe server listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("worker probe server error", "error", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancelRun()
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}

	// EventBus.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("worker stopped")
}

// newSender pushes over LINE when a channel token is configured and logs
// reminders otherwise.
func newSender(a *app.Application) (domain.Sender, error) {
	if a.Config.LineChannelToken == "" {
		a.Logger.Info("LINE_CHANNEL_TOKEN not set, reminders will be logged only")
		return sender.NewLogSender(a.Logger), nil
	}
	api, err := messaging_api.NewMessagingApiAPI(a.Config.LineChannelToken)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(a.Config.ReminderTimezone)
	if err != nil {
		return nil, err
	}
	return sender.NewLineSender(api, accountsvcs.New(a).Account, loc, a.Logger), nil
}

// healthChecker keeps a nil client out of HealthChecks.
func healthChecker(tc *workflows.TemporalClient) httpx.HealthChecker {
	if tc == nil {
		return nil
	}
	return tc
}
