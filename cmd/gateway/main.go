package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/application"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/application/services"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/config"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/domain"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/infrastructure/guard"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/infrastructure/persistence/memory"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/infrastructure/persistence/postgres"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/infrastructure/processor"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/infrastructure/signature"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/interfaces/rest"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/interfaces/rest/handlers"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/worker"
)

// pollMargin keeps the long-poll route alive past the poller's own deadline
// so the timeout outcome is still written.
const pollMargin = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting card gateway",
		"port", cfg.Server.Port,
		"env", cfg.Primary.Env,
		"storage", cfg.Primary.Storage,
		"log_level", cfg.Logger.Level,
	)

	ctx := context.Background()

	var (
		attempts application.AttemptRepository
		ledger   application.CreditLedger
	)
	if cfg.Primary.Storage == "memory" {
		store := memory.NewStore()
		attempts, ledger = store, store
		logger.Warn("using in-memory storage, attempts and credits are lost on restart")
	} else {
		db, err := postgres.Connect(ctx, &cfg.Database, logger)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			logger.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
		attempts = postgres.NewAttemptRepository(db)
		ledger = postgres.NewCreditLedger(db)
	}

	challengeGuard, err := guard.New(cfg.Redis)
	if err != nil {
		logger.Warn("redis unavailable, challenge claims are local to this instance",
			"addr", cfg.Redis.Addr,
			"error", err,
		)
	}
	defer challengeGuard.Close()

	signer, err := signature.NewSigner(cfg.Processor.SecretKey)
	if err != nil {
		logger.Error("failed to build signer", "error", err)
		os.Exit(1)
	}

	client, err := processor.NewClient(cfg.Processor, signer, logger)
	if err != nil {
		logger.Error("failed to build processor client", "error", err)
		os.Exit(1)
	}

	publicURL, err := cfg.Processor.PublicURL()
	if err != nil {
		logger.Error("invalid public base url", "error", err)
		os.Exit(1)
	}

	orchestrator := services.NewOrchestrator(challengeGuard)
	payments := services.NewPaymentService(
		client,
		orchestrator,
		attempts,
		ledger,
		domain.ChallengeDefaults{
			TermURL:     handlers.ACSTermURL(publicURL),
			SettleDelay: cfg.ThreeDS.SettleDelay,
		},
		logger,
	)
	callbacks := services.NewCallbackService(signer, payments, logger)
	poller := worker.NewPoller(payments, cfg.Poller, logger)

	reconciler := worker.NewReconciler(attempts, payments, orchestrator, cfg.Reconciler, logger)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	if err := reconciler.Start(workerCtx); err != nil {
		logger.Error("failed to start reconciler", "error", err)
		os.Exit(1)
	}

	spec, err := rest.LoadSpec(ctx)
	if err != nil {
		logger.Error("failed to load api spec", "error", err)
		os.Exit(1)
	}

	h := handlers.NewHandlers(payments, callbacks, poller, logger)
	router := handlers.NewRouter(h, spec, handlers.RouterConfig{
		RequestTimeout: cfg.Server.RequestTimeout,
		PollTimeout:    cfg.Poller.MaxDuration + pollMargin,
		CallbackPath:   cfg.Processor.CallbackPath,
	}, logger)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	cancelWorkers()
	<-reconciler.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
