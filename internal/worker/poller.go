package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/application"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/config"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/domain"
)

// StatusChecker performs one status check for a payment.
type StatusChecker interface {
	CheckStatus(ctx context.Context, id domain.PaymentID) (*domain.PaymentResponse, error)
}

// Poller repeats status checks until the payment settles, a new challenge
// appears, the caller gives up, or the maximum duration passes.
type Poller struct {
	checker     StatusChecker
	interval    time.Duration
	maxDuration time.Duration
	logger      *slog.Logger
}

func NewPoller(checker StatusChecker, cfg config.PollerConfig, logger *slog.Logger) *Poller {
	return &Poller{
		checker:     checker,
		interval:    cfg.Interval,
		maxDuration: cfg.MaxDuration,
		logger:      logger,
	}
}

// Poll checks immediately and then once per interval. On timeout it returns
// a timeout response with application.ErrPollTimeout; on cancellation it
// returns ctx.Err().
func (p *Poller) Poll(ctx context.Context, id domain.PaymentID) (*domain.PaymentResponse, error) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	deadline := time.NewTimer(p.maxDuration)
	defer deadline.Stop()

	started := time.Now()
	checks := 0

	for {
		checks++
		resp, err := p.checker.CheckStatus(ctx, id)
		if err != nil && ctx.Err() != nil {
			return nil, ctx.Err()
		}

		switch {
		case err != nil && !application.IsRetryable(err):
			return resp, err
		case err != nil:
			p.logger.Warn("status check failed, retrying",
				"payment_id", id,
				"attempt", checks,
				"error", err,
			)
		case resp.Status.IsFinal(), resp.Status == domain.StatusThreeDSRequired:
			p.logger.Debug("polling finished",
				"payment_id", id,
				"status", resp.Status,
				"checks", checks,
				"elapsed", time.Since(started),
			)
			return resp, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			p.logger.Info("polling timed out",
				"payment_id", id,
				"checks", checks,
				"max_duration", p.maxDuration,
			)
			return domain.TimedOut(id), application.ErrPollTimeout
		case <-ticker.C:
		}
	}
}
