package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/application"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/domain"
)

// PaymentService drives a purchase through the processor and its 3DS steps.
// All calls for one PaymentID are serialized by the orchestrator.
type PaymentService struct {
	client       application.ProcessorClient
	orchestrator *Orchestrator
	attempts     application.AttemptRepository
	ledger       application.CreditLedger
	defaults     domain.ChallengeDefaults
	logger       *slog.Logger
	now          func() time.Time
}

func NewPaymentService(
	client application.ProcessorClient,
	orchestrator *Orchestrator,
	attempts application.AttemptRepository,
	ledger application.CreditLedger,
	defaults domain.ChallengeDefaults,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		client:       client,
		orchestrator: orchestrator,
		attempts:     attempts,
		ledger:       ledger,
		defaults:     defaults,
		logger:       logger,
		now:          time.Now,
	}
}

// WithClock replaces the clock used for attempt timestamps.
func (s *PaymentService) WithClock(now func() time.Time) *PaymentService {
	s.now = now
	return s
}

func (s *PaymentService) Orchestrator() *Orchestrator {
	return s.orchestrator
}

// Purchase validates the request, sends the sale and records the attempt.
// Invalid requests never reach the processor.
func (s *PaymentService) Purchase(ctx context.Context, req domain.PaymentRequest) (*domain.PaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp, callErr := s.client.InitiatePayment(ctx, req)
	id := resp.PaymentID
	if id == "" {
		return resp, callErr
	}

	attempt := domain.NewPaymentAttempt(id, req, s.now())
	if err := s.attempts.Create(ctx, attempt); err != nil {
		// The processor already knows the payment; keep orchestrating in memory.
		s.logger.Error("failed to record payment attempt",
			"payment_id", id,
			"error", err,
		)
	}
	s.orchestrator.Track(id)

	unlock, err := s.orchestrator.Lock(id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return s.apply(ctx, id, resp, callErr)
}

// CompleteACS forwards the ACS result of a basic challenge. A second
// submission is refused without calling the processor.
func (s *PaymentService) CompleteACS(ctx context.Context, id domain.PaymentID, paRes, md string) (*domain.PaymentResponse, error) {
	unlock, err := s.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := s.claim(ctx, id, domain.ChallengeBasic); err != nil {
		return nil, err
	}

	resp, callErr := s.client.Submit3DSResult(ctx, id, paRes, md)
	return s.apply(ctx, id, resp, callErr)
}

// CompleteFingerprint reports the end of the extended fingerprint step. The
// reply may upgrade the attempt to a 3DS2 challenge.
func (s *PaymentService) CompleteFingerprint(ctx context.Context, id domain.PaymentID, completed bool) (*domain.PaymentResponse, error) {
	unlock, err := s.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := s.claim(ctx, id, domain.ChallengeExtended); err != nil {
		return nil, err
	}

	resp, callErr := s.client.Initiate3DSCheck(ctx, id, completed)
	return s.apply(ctx, id, resp, callErr)
}

// CheckStatus asks the processor once. Final attempts are answered from
// memory and never reach the network again.
func (s *PaymentService) CheckStatus(ctx context.Context, id domain.PaymentID) (*domain.PaymentResponse, error) {
	unlock, err := s.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if final, ok := s.orchestrator.Final(id); ok {
		s.settleOwed(ctx, id, final)
		return final, nil
	}

	resp, callErr := s.client.CheckStatus(ctx, id)
	return s.apply(ctx, id, resp, callErr)
}

// ApplyExternal folds an already verified callback outcome into the attempt.
func (s *PaymentService) ApplyExternal(ctx context.Context, resp *domain.PaymentResponse) (*domain.PaymentResponse, error) {
	unlock, err := s.lock(ctx, resp.PaymentID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return s.apply(ctx, resp.PaymentID, resp, nil)
}

// Settle applies credits for a succeeded attempt that was never credited.
func (s *PaymentService) Settle(ctx context.Context, id domain.PaymentID) error {
	unlock, err := s.lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	if final, ok := s.orchestrator.Final(id); ok {
		if _, err := s.catchUp(ctx, id, final); err != nil {
			return err
		}
	}
	return s.settle(ctx, id)
}

// lock takes the per-payment lock, restoring the attempt from storage when
// this process has not seen it.
func (s *PaymentService) lock(ctx context.Context, id domain.PaymentID) (func(), error) {
	unlock, err := s.orchestrator.Lock(id)
	if err == nil {
		return unlock, nil
	}
	if !errors.Is(err, domain.ErrPaymentNotFound) {
		return nil, err
	}

	attempt, err := s.attempts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.orchestrator.Restore(attempt)
	s.logger.Debug("restored payment attempt", "payment_id", id, "state", attempt.State)

	return s.orchestrator.Lock(id)
}

func (s *PaymentService) claim(ctx context.Context, id domain.PaymentID, kind domain.ChallengeKind) error {
	err := s.orchestrator.Claim(ctx, id, kind)
	if errors.Is(err, domain.ErrChallengeAlreadyHandled) {
		s.logger.Warn("duplicate 3ds completion refused",
			"payment_id", id,
			"challenge", kind,
		)
	}
	return err
}

// apply runs with the payment lock held.
func (s *PaymentService) apply(ctx context.Context, id domain.PaymentID, resp *domain.PaymentResponse, callErr error) (*domain.PaymentResponse, error) {
	resp = s.defaults.Decorate(resp)

	if callErr != nil && !failsAttempt(callErr) {
		s.logger.Warn("processor call left payment open",
			"payment_id", id,
			"category", application.CategorizeError(callErr),
			"error", callErr,
		)
		return resp, callErr
	}

	outcome, err := s.orchestrator.Apply(id, resp)
	if err != nil {
		return nil, err
	}

	if outcome.Changed {
		s.logger.Info("payment state changed",
			"payment_id", id,
			"status", outcome.Response.Status,
			"code", outcome.Response.Code,
		)
		s.persist(ctx, id, outcome.Response)
	}
	if outcome.Succeeded {
		s.settleOwed(ctx, id, outcome.Response)
	}

	return outcome.Response, callErr
}

func (s *PaymentService) persist(ctx context.Context, id domain.PaymentID, resp *domain.PaymentResponse) {
	attempt, err := s.attempts.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to load payment attempt", "payment_id", id, "error", err)
		return
	}

	changed, err := attempt.Apply(resp, s.now())
	if err != nil {
		s.logger.Warn("stored attempt rejected transition",
			"payment_id", id,
			"from", attempt.State,
			"status", resp.Status,
			"error", err,
		)
		return
	}
	if !changed {
		return
	}

	if err := s.attempts.Update(ctx, attempt); err != nil {
		s.logger.Error("failed to update payment attempt", "payment_id", id, "error", err)
	}
}

// catchUp writes a final outcome the stored attempt missed, for example after a
// failed update. The caller holds the payment lock.
func (s *PaymentService) catchUp(ctx context.Context, id domain.PaymentID, final *domain.PaymentResponse) (*domain.PaymentAttempt, error) {
	attempt, err := s.attempts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if attempt.IsFinal() {
		return attempt, nil
	}

	changed, err := attempt.Apply(final, s.now())
	if err != nil || !changed {
		return attempt, err
	}
	if err := s.attempts.Update(ctx, attempt); err != nil {
		return nil, fmt.Errorf("update payment attempt: %w", err)
	}
	s.logger.Warn("stored attempt caught up with final outcome",
		"payment_id", id,
		"state", attempt.State,
	)
	return attempt, nil
}

// settleOwed repairs the stored attempt and applies credits still owed for a
// final success. Failures are logged; the reconciler retries.
func (s *PaymentService) settleOwed(ctx context.Context, id domain.PaymentID, final *domain.PaymentResponse) {
	attempt, err := s.catchUp(ctx, id, final)
	if err != nil {
		s.logger.Error("failed to sync final payment attempt", "payment_id", id, "error", err)
		return
	}
	if attempt.State != domain.StateSucceeded || attempt.SettledAt != nil {
		return
	}
	if err := s.settle(ctx, id); err != nil {
		s.logger.Error("failed to apply credits", "payment_id", id, "error", err)
	}
}

func (s *PaymentService) settle(ctx context.Context, id domain.PaymentID) error {
	attempt, err := s.attempts.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if attempt.State != domain.StateSucceeded {
		return domain.ErrInvalidTransition
	}

	credit, err := creditFor(attempt)
	if err != nil {
		return application.NewInternalError(err)
	}

	applied, err := s.ledger.ApplyCredit(ctx, credit)
	if err != nil {
		return application.NewInternalError(err)
	}

	if applied {
		s.logger.Info("credits applied",
			"payment_id", id,
			"payer_id", attempt.PayerID,
			"credits", attempt.Credits,
			"amount", attempt.Money().String(),
		)
	} else {
		s.logger.Info("credits already applied", "payment_id", id)
	}
	return nil
}
