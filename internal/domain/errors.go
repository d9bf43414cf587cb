package domain

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// DomainError represents a business logic error
type DomainError struct {
	Code    string
	Message string
	Fields  map[string]string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Domain validation errors
const (
	ErrCodeInvalidCardNumber       = "INVALID_CARD_NUMBER"
	ErrCodeInvalidExpiry           = "INVALID_EXPIRY"
	ErrCodeInvalidPaymentRequest   = "INVALID_PAYMENT_REQUEST"
	ErrCodeInvalidTransition       = "INVALID_TRANSITION"
	ErrCodePaymentNotFound         = "PAYMENT_NOT_FOUND"
	ErrCodeSignatureMismatch       = "SIGNATURE_MISMATCH"
	ErrCodeChallengeAlreadyHandled = "CHALLENGE_ALREADY_HANDLED"
	ErrCodeNoActiveChallenge       = "NO_ACTIVE_CHALLENGE"
	ErrCodeMalformedCallback       = "MALFORMED_CALLBACK"
)

var (
	ErrInvalidCardNumber       = errors.New("invalid card number")
	ErrInvalidExpiry           = errors.New("invalid card expiry")
	ErrInvalidPaymentRequest   = errors.New("invalid payment request")
	ErrInvalidTransition       = errors.New("invalid state transition")
	ErrPaymentNotFound         = errors.New("payment not found")
	ErrSignatureMismatch       = errors.New("signature mismatch")
	ErrChallengeAlreadyHandled = errors.New("3ds challenge already handled")
	ErrNoActiveChallenge       = errors.New("no active 3ds challenge")
	ErrMalformedCallback       = errors.New("malformed callback")
)

func NewInvalidCardNumberError(reason string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidCardNumber,
		Message: reason,
		Err:     ErrInvalidCardNumber,
	}
}

func NewInvalidExpiryError(reason string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidExpiry,
		Message: reason,
		Err:     ErrInvalidExpiry,
	}
}

// NewInvalidRequestError carries per-field validation messages keyed by json field name.
func NewInvalidRequestError(fields map[string]string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidPaymentRequest,
		Message: "invalid fields: " + strings.Join(slices.Sorted(maps.Keys(fields)), ", "),
		Fields:  fields,
		Err:     ErrInvalidPaymentRequest,
	}
}

func NewNoActiveChallengeError(id PaymentID, want ChallengeKind) *DomainError {
	return &DomainError{
		Code:    ErrCodeNoActiveChallenge,
		Message: fmt.Sprintf("payment %s has no pending %s challenge", id, want),
		Err:     ErrNoActiveChallenge,
	}
}

func NewChallengeAlreadyHandledError(id PaymentID, kind ChallengeKind) *DomainError {
	return &DomainError{
		Code:    ErrCodeChallengeAlreadyHandled,
		Message: fmt.Sprintf("%s challenge for payment %s was already handled", kind, id),
		Err:     ErrChallengeAlreadyHandled,
	}
}

// IsErrorCode checks whether err is a DomainError with the given code.
func IsErrorCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
