package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/xe-erp/peppol-web/internal/app"
	jobmetrics "github.com/xe-erp/peppol-web/internal/jobs"
	"github.com/xe-erp/peppol-web/internal/peppol"
	"github.com/xe-erp/peppol-web/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
	if !cfg.HasServiceAccount() {
		logger.Error("ODOO_SERVICE_LOGIN and ODOO_SERVICE_PASSWORD are required by the worker")
		os.Exit(1)
	}

	backend := app.NewBackend(cfg, logger)
	syncJob := &jobs.SyncJob{
		Sessions: backend,
		Connect:  peppol.ClientConnector(backend),
		Login:    cfg.OdooServiceLogin,
		Password: cfg.OdooServicePassword,
		Group:    cfg.PeppolGroup,
		Logger:   logger,
		Metrics:  jobmetrics.NewMetrics(nil),
	}

	var (
		handlers []jobs.TaskHandler
		cron     []jobs.CronRegistration
	)
	for _, taskType := range jobs.SyncTaskTypes {
		handlers = append(handlers, jobs.TaskHandler{Type: taskType, Handler: syncJob.Handle})
		if cfg.PeppolSyncCron == "" {
			continue
		}
		task, err := jobs.NewSyncTask(taskType, "scheduler")
		if err != nil {
			logger.Error("build sync task", slog.String("task", taskType), slog.Any("error", err))
			os.Exit(1)
		}
		cron = append(cron, jobs.CronRegistration{Spec: cfg.PeppolSyncCron, Task: task, Options: []asynq.Option{asynq.MaxRetry(0)}})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: cfg.RedisOptions().AsynqOpt(),
		Logger:    logger,
		Handlers:  handlers,
		Cron:      cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.String("cron", cfg.PeppolSyncCron))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
