package services

import (
	"errors"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/application"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/domain"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/infrastructure/signature"
)

// creditRecord is the part of a settled attempt the ledger fingerprints.
type creditRecord struct {
	PaymentID domain.PaymentID `json:"payment_id"`
	PayerID   string           `json:"payer_id"`
	Credits   int              `json:"credits"`
	Amount    int64            `json:"amount"`
	Currency  string           `json:"currency"`
}

func creditFor(attempt *domain.PaymentAttempt) (application.Credit, error) {
	hash, err := signature.Hash(creditRecord{
		PaymentID: attempt.ID,
		PayerID:   attempt.PayerID,
		Credits:   attempt.Credits,
		Amount:    attempt.Amount,
		Currency:  attempt.Currency,
	})
	if err != nil {
		return application.Credit{}, err
	}

	return application.Credit{
		PaymentID:   attempt.ID,
		PayerID:     attempt.PayerID,
		Credits:     attempt.Credits,
		Amount:      attempt.Amount,
		Currency:    attempt.Currency,
		RequestHash: hash,
	}, nil
}

// failsAttempt reports whether a client error is a processor verdict that
// ends the attempt. Transport faults, 5xx replies and bad signatures leave
// the attempt open for the next status check.
func failsAttempt(err error) bool {
	if err == nil || errors.Is(err, domain.ErrSignatureMismatch) {
		return false
	}
	procErr, ok := application.IsProcessorError(err)
	return ok && !procErr.IsRetryable()
}
