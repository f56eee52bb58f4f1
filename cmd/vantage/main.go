package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/vantage-erp/vantage-erp/internal/app"
	"github.com/vantage-erp/vantage-erp/internal/draft"
	"github.com/vantage-erp/vantage-erp/internal/orders"
	"github.com/vantage-erp/vantage-erp/internal/platform/cache"
	"github.com/vantage-erp/vantage-erp/internal/platform/db"
	"github.com/vantage-erp/vantage-erp/internal/workflow"
	"github.com/vantage-erp/vantage-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable", slog.Any("error", err))
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	// Draft durability prefers postgres when configured, then redis; with
	// neither reachable the store degrades to in-memory behavior.
	var snapshots draft.SnapshotStore
	if cfg.PGDSN != "" {
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		snapshots = draft.NewPGSnapshotStore(pool)
	} else if redisClient != nil {
		snapshots = draft.NewRedisSnapshotStore(redisClient, cfg.DraftTTL)
	} else {
		logger.Warn("no durable storage configured, drafts will not survive restarts")
	}

	orderClient := orders.NewClient(orders.ClientConfig{
		BaseURL: cfg.OrderServiceURL,
		Timeout: cfg.OrderServiceTimeout,
	}, logger)

	draftService := draft.NewService(snapshots, orderClient, logger)
	draftHandler := draft.NewHandler(logger, draftService)

	historyService := workflow.NewHistoryService(orderClient, redisClient, cfg.HistoryTTL, logger)
	controller := workflow.NewController(orderClient, historyService, func(orderID int64, status orders.Status) {
		logger.Info("order status changed", slog.Int64("order_id", orderID), slog.String("status", string(status)))
	}, logger)
	workflowHandler := workflow.NewHandler(logger, controller, historyService)

	var jobsHandler *jobs.Handler
	if redisClient != nil {
		inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		jobsHandler = jobs.NewHandler(inspector, logger)
	}

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		DraftHandler:    draftHandler,
		WorkflowHandler: workflowHandler,
		JobsHandler:     jobsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
