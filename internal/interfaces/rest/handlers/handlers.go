package handlers

import (
	"context"
	"log/slog"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/application/services"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/domain"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/worker"
)

// PaymentService is the purchase flow the HTTP surface drives.
type PaymentService interface {
	Purchase(ctx context.Context, req domain.PaymentRequest) (*domain.PaymentResponse, error)
	CheckStatus(ctx context.Context, id domain.PaymentID) (*domain.PaymentResponse, error)
	CompleteACS(ctx context.Context, id domain.PaymentID, paRes, md string) (*domain.PaymentResponse, error)
	CompleteFingerprint(ctx context.Context, id domain.PaymentID, completed bool) (*domain.PaymentResponse, error)
}

type CallbackProcessor interface {
	Handle(ctx context.Context, body []byte) (*domain.PaymentResponse, error)
}

type StatusPoller interface {
	Poll(ctx context.Context, id domain.PaymentID) (*domain.PaymentResponse, error)
}

var (
	_ PaymentService    = (*services.PaymentService)(nil)
	_ CallbackProcessor = (*services.CallbackService)(nil)
	_ StatusPoller      = (*worker.Poller)(nil)
)

type Handlers struct {
	payments  PaymentService
	callbacks CallbackProcessor
	poller    StatusPoller
	logger    *slog.Logger
}

func NewHandlers(
	payments PaymentService,
	callbacks CallbackProcessor,
	poller StatusPoller,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		payments:  payments,
		callbacks: callbacks,
		poller:    poller,
		logger:    logger,
	}
}
