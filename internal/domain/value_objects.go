package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentID correlates initiation, challenge, callback and status poll for one attempt.
type PaymentID string

// NewPaymentID derives the id from payer identity and the purchase time.
func NewPaymentID(payerID string, at time.Time) (PaymentID, error) {
	payerID = strings.TrimSpace(payerID)
	if payerID == "" {
		return "", &DomainError{
			Code:    ErrCodeInvalidPaymentRequest,
			Message: "payer id is required to mint a payment id",
			Err:     ErrInvalidPaymentRequest,
		}
	}
	return PaymentID(fmt.Sprintf("%s_%d", payerID, at.UnixMilli())), nil
}

func (id PaymentID) String() string {
	return string(id)
}

// Money is an amount in minor currency units.
type Money struct {
	Amount   int64
	Currency string
}

var minorUnitExponent = map[string]int32{
	"JPY": 0,
	"KRW": 0,
	"VND": 0,
	"BHD": 3,
	"KWD": 3,
	"OMR": 3,
	"TND": 3,
}

// Major converts minor units to the currency's major unit.
func (m Money) Major() decimal.Decimal {
	exp, ok := minorUnitExponent[strings.ToUpper(m.Currency)]
	if !ok {
		exp = 2
	}
	return decimal.New(m.Amount, -exp)
}

func (m Money) String() string {
	exp, ok := minorUnitExponent[strings.ToUpper(m.Currency)]
	if !ok {
		exp = 2
	}
	return m.Major().StringFixed(exp) + " " + strings.ToUpper(m.Currency)
}
