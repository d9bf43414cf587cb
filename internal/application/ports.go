package application

import (
	"context"
	"time"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/domain"
)

// ProcessorClient is the port for the external acquiring processor.
// Every method returns a non-nil response; once a PaymentID is minted the
// response carries it. A non-nil error is a *ProcessorError, a *TransportError,
// a validation DomainError or domain.ErrSignatureMismatch, and the response
// then has StatusError. Implementations never retry.
type ProcessorClient interface {
	InitiatePayment(ctx context.Context, req domain.PaymentRequest) (*domain.PaymentResponse, error)
	Submit3DSResult(ctx context.Context, id domain.PaymentID, paRes, md string) (*domain.PaymentResponse, error)
	Initiate3DSCheck(ctx context.Context, id domain.PaymentID, completed bool) (*domain.PaymentResponse, error)
	CheckStatus(ctx context.Context, id domain.PaymentID) (*domain.PaymentResponse, error)
}

// AttemptRepository is the port for attempt persistence. It never sees card data.
type AttemptRepository interface {
	Create(ctx context.Context, attempt *domain.PaymentAttempt) error
	FindByID(ctx context.Context, id domain.PaymentID) (*domain.PaymentAttempt, error)
	Update(ctx context.Context, attempt *domain.PaymentAttempt) error
	FindStale(ctx context.Context, olderThan time.Duration, limit int) ([]*domain.PaymentAttempt, error)
	// FindUnsettled returns succeeded attempts whose credits were never applied.
	FindUnsettled(ctx context.Context, limit int) ([]*domain.PaymentAttempt, error)
}

// Credit is one ledger mutation, keyed by PaymentID.
type Credit struct {
	PaymentID   domain.PaymentID
	PayerID     string
	Credits     int
	Amount      int64
	Currency    string
	RequestHash string
}

// CreditLedger applies credits at most once per PaymentID. applied is false
// when the PaymentID was already credited.
type CreditLedger interface {
	ApplyCredit(ctx context.Context, credit Credit) (applied bool, err error)
}

// ChallengeGuard records that a challenge variant was handled for a payment.
// Claim returns false when it was already claimed, possibly by another instance.
type ChallengeGuard interface {
	Claim(ctx context.Context, id domain.PaymentID, kind domain.ChallengeKind) (bool, error)
}
