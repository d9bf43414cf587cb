package testhelpers

import (
	"time"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/domain"
	"github.com/google/uuid"
)

// NewPaymentRequest returns a valid request for a fresh payer.
func NewPaymentRequest() domain.PaymentRequest {
	return domain.PaymentRequest{
		PayerID:     "payer-" + uuid.NewString(),
		Credits:     100,
		Amount:      1000,
		Currency:    "EUR",
		Description: "100 credits",
		ClientIP:    "203.0.113.7",
		Card: domain.Card{
			PAN:         "4111111111111111",
			ExpiryMonth: 12,
			ExpiryYear:  time.Now().Year() + 3,
			CVV:         "123",
			Holder:      "Jane Doe",
		},
	}
}

// NewAttempt returns an INITIATED attempt for req, timestamped at now.
func NewAttempt(req domain.PaymentRequest, now time.Time) *domain.PaymentAttempt {
	id, err := domain.NewPaymentID(req.PayerID, now)
	if err != nil {
		panic(err)
	}
	return domain.NewPaymentAttempt(id, req, now)
}
