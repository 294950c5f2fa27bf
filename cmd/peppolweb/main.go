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

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xe-erp/peppol-web/internal/app"
	"github.com/xe-erp/peppol-web/internal/auth"
	"github.com/xe-erp/peppol-web/internal/moves"
	"github.com/xe-erp/peppol-web/internal/observability"
	"github.com/xe-erp/peppol-web/internal/peppol"
	"github.com/xe-erp/peppol-web/internal/platform/cache"
	"github.com/xe-erp/peppol-web/internal/platform/db"
	"github.com/xe-erp/peppol-web/internal/rbac"
	"github.com/xe-erp/peppol-web/internal/shared"
	"github.com/xe-erp/peppol-web/internal/view"
	"github.com/xe-erp/peppol-web/jobs"
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

	var dbpool *pgxpool.Pool
	if cfg.PGDSN != "" {
		dbpool, err = db.New(ctx, cfg.PGDSN)
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer dbpool.Close()
		if err := db.Migrate(ctx, dbpool); err != nil {
			logger.Error("migrate", slog.Any("error", err))
			os.Exit(1)
		}
	} else {
		logger.Warn("PG_DSN not set, action audit and duplicate-submit protection disabled")
	}

	redisClient, err := cache.New(ctx, cfg.RedisOptions())
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "peppolweb_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	menu, err := app.NewUserMenu(cfg)
	if err != nil {
		logger.Error("build user menu", slog.Any("error", err))
		os.Exit(1)
	}

	backend := app.NewBackend(cfg, logger)
	connect := peppol.ClientConnector(backend)
	metrics := observability.NewMetrics()

	authHandler := auth.NewHandler(logger, auth.NewService(backend), templates, sessionManager, csrfManager)

	movesOpts := moves.Options{
		Group:   cfg.PeppolGroup,
		PerPage: cfg.ListPageSize,
		Menu:    menu,
		Metrics: metrics,
	}
	if dbpool != nil {
		movesOpts.Audit = shared.NewAuditLogger(dbpool)
		idempotency := shared.NewIdempotencyStore(dbpool)
		movesOpts.Idempotency = idempotency
		go sweepIdempotencyKeys(ctx, idempotency, logger)
	}
	movesHandler := moves.NewHandler(logger, templates, csrfManager, connect, movesOpts)

	inspector := asynq.NewInspector(cfg.RedisOptions().AsynqOpt())
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsClient := jobs.NewClient(cfg.RedisOptions().AsynqOpt())
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobsClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Templates:      templates,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		AuthHandler:    authHandler,
		MovesHandler:   movesHandler,
		JobHandler:     jobHandler,
		RBACMiddleware: rbac.Middleware{Connect: connect, Logger: logger},
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("backend", backend.BaseURL()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// sweepIdempotencyKeys drops claimed keys once a day; a key only needs to
// outlive the page it was rendered on.
func sweepIdempotencyKeys(ctx context.Context, store *shared.IdempotencyStore, logger *slog.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.Cleanup(ctx, 7*24*time.Hour); err != nil {
				logger.Warn("idempotency cleanup", slog.Any("error", err))
			}
		}
	}
}
