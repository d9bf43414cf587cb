package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/application"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/config"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/domain"
	"github.com/robfig/cron/v3"
)

// ReconcilerService is the part of the payment service the reconciler drives.
type ReconcilerService interface {
	CheckStatus(ctx context.Context, id domain.PaymentID) (*domain.PaymentResponse, error)
	Settle(ctx context.Context, id domain.PaymentID) error
}

// AttemptMemory is the orchestrator's in-process view of open attempts.
type AttemptMemory interface {
	Prune(olderThan time.Duration) int
	State(id domain.PaymentID) (domain.AttemptState, bool)
}

// Reconciler re-checks attempts the payer abandoned mid-flow, retries credit
// application for unsettled successes, and trims orchestrator memory.
type Reconciler struct {
	repo       application.AttemptRepository
	payments   ReconcilerService
	memory     AttemptMemory
	cron       *cron.Cron
	schedule   string
	staleAfter time.Duration
	batchSize  int
	retention  time.Duration
	logger     *slog.Logger
}

func NewReconciler(
	repo application.AttemptRepository,
	payments ReconcilerService,
	memory AttemptMemory,
	cfg config.ReconcilerConfig,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		repo:       repo,
		payments:   payments,
		memory:     memory,
		cron:       cron.New(),
		schedule:   cfg.Schedule,
		staleAfter: cfg.StaleAfter,
		batchSize:  cfg.BatchSize,
		retention:  cfg.Retention,
		logger:     logger,
	}
}

// Start schedules the reconciliation cycle. Runs stop being scheduled when
// ctx is done; Stop waits for a running cycle.
func (r *Reconciler) Start(ctx context.Context) error {
	_, err := r.cron.AddFunc(r.schedule, func() {
		defer r.recoverFromPanic()
		r.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid reconciler schedule %q: %w", r.schedule, err)
	}

	r.logger.Info("starting background reconciler",
		"schedule", r.schedule,
		"stale_after", r.staleAfter,
		"batch_size", r.batchSize,
	)
	r.cron.Start()

	go func() {
		<-ctx.Done()
		r.Stop()
	}()
	return nil
}

func (r *Reconciler) Stop() context.Context {
	r.logger.Info("stopping background reconciler")
	return r.cron.Stop()
}

// RunOnce executes a single reconciliation cycle.
func (r *Reconciler) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	r.reconcileStale(ctx)
	r.settleUnsettled(ctx)

	if removed := r.memory.Prune(r.retention); removed > 0 {
		r.logger.Info("pruned finished attempts", "count", removed)
	}
}

func (r *Reconciler) reconcileStale(ctx context.Context) {
	stale, err := r.repo.FindStale(ctx, r.staleAfter, r.batchSize)
	if err != nil {
		r.logger.Error("failed to fetch stale attempts", "error", err)
		return
	}
	if len(stale) == 0 {
		return
	}

	r.logger.Info("reconciling stale attempts", "count", len(stale))

	var resolved int
	for _, attempt := range stale {
		resp, err := r.payments.CheckStatus(ctx, attempt.ID)
		if err != nil {
			memState, _ := r.memory.State(attempt.ID)
			r.logger.Error("reconciliation failed for attempt",
				"payment_id", attempt.ID,
				"state", attempt.State,
				"memory_state", memState,
				"category", application.CategorizeError(err),
				"error", err,
			)
			continue
		}
		if resp.Status.IsFinal() {
			resolved++
			r.logger.Info("reconciled attempt",
				"payment_id", attempt.ID,
				"status", resp.Status,
			)
		}
	}

	r.logger.Info("processed stale attempts",
		"processed", len(stale),
		"resolved", resolved,
	)
}

func (r *Reconciler) settleUnsettled(ctx context.Context) {
	unsettled, err := r.repo.FindUnsettled(ctx, r.batchSize)
	if err != nil {
		r.logger.Error("failed to fetch unsettled attempts", "error", err)
		return
	}

	for _, attempt := range unsettled {
		if err := r.payments.Settle(ctx, attempt.ID); err != nil {
			r.logger.Error("failed to settle attempt",
				"payment_id", attempt.ID,
				"error", err,
			)
		}
	}
}

func (r *Reconciler) recoverFromPanic() {
	if rec := recover(); rec != nil {
		r.logger.Error("panic in reconciler", "panic", rec)
	}
}
