package services

import (
	"context"
	"log/slog"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/domain"
)

// PayloadVerifier checks a signature over a decoded JSON tree.
type PayloadVerifier interface {
	Verify(payload any, sig string) bool
}

// CallbackService accepts the processor's asynchronous notifications.
type CallbackService struct {
	verifier PayloadVerifier
	payments *PaymentService
	logger   *slog.Logger
}

func NewCallbackService(verifier PayloadVerifier, payments *PaymentService, logger *slog.Logger) *CallbackService {
	return &CallbackService{
		verifier: verifier,
		payments: payments,
		logger:   logger,
	}
}

// Verify checks the callback signature over every field the processor sent.
func (s *CallbackService) Verify(cb *domain.CallbackData) bool {
	sig := cb.SignatureValue()
	if sig == "" {
		return false
	}
	return s.verifier.Verify(cb.Raw, sig)
}

// Handle parses, authenticates and applies one callback body. Nothing from
// an unauthenticated body reaches the attempt.
func (s *CallbackService) Handle(ctx context.Context, body []byte) (*domain.PaymentResponse, error) {
	cb, err := domain.ParseCallback(body)
	if err != nil {
		s.logger.Warn("rejected malformed callback", "error", err)
		return nil, err
	}

	if !s.Verify(cb) {
		s.logger.Warn("callback signature mismatch",
			"security_event", "signature_mismatch",
			"payment_id", cb.PaymentID(),
		)
		return nil, domain.ErrSignatureMismatch
	}

	id, err := cb.RequirePaymentID()
	if err != nil {
		return nil, err
	}

	resp := cb.Classify(id)
	s.logger.Info("processor callback received",
		"payment_id", id,
		"status", resp.Status,
	)

	return s.payments.ApplyExternal(ctx, resp)
}
