package postgres

import (
	"time"
)

// AttemptModel is the payment_attempts row. Card data has no column.
type AttemptModel struct {
	ID               string
	PayerID          string
	Credits          int
	Amount           int64
	Currency         string
	State            string
	ChallengeKind    *string
	ProcessorCode    *string
	ProcessorMessage *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	SettledAt        *time.Time
}

// CreditApplication is the credit_applications row. The payment_id primary
// key makes a second application for the same payment a no-op.
type CreditApplication struct {
	PaymentID   string
	PayerID     string
	Credits     int
	Amount      int64
	Currency    string
	RequestHash string
	AppliedAt   time.Time
}
