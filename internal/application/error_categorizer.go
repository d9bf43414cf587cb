package application

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/domain"
)

// ErrPollTimeout means polling hit its maximum duration without a final outcome.
var ErrPollTimeout = errors.New("status polling timed out")

// ErrorCategory drives retry decisions and the category log attribute.
type ErrorCategory string

const (
	CategoryTransient      ErrorCategory = "TRANSIENT"
	CategoryPermanent      ErrorCategory = "PERMANENT"
	CategoryBusinessRule   ErrorCategory = "BUSINESS_RULE"
	CategoryClientError    ErrorCategory = "CLIENT_ERROR"
	CategoryInfrastructure ErrorCategory = "INFRASTRUCTURE"
	CategorySecurity       ErrorCategory = "SECURITY"
)

// Rejected before any processor call.
var inputErrors = []error{
	domain.ErrInvalidCardNumber,
	domain.ErrInvalidExpiry,
	domain.ErrInvalidPaymentRequest,
	domain.ErrMalformedCallback,
}

// Orchestration conflicts on an existing attempt.
var conflictErrors = []error{
	domain.ErrInvalidTransition,
	domain.ErrChallengeAlreadyHandled,
	domain.ErrNoActiveChallenge,
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isCancellation(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

// CategorizeError classifies err. Unknown errors count as transient.
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, domain.ErrSignatureMismatch):
		return CategorySecurity
	case isAny(err, inputErrors), errors.Is(err, domain.ErrPaymentNotFound):
		return CategoryClientError
	case isAny(err, conflictErrors):
		return CategoryBusinessRule
	case errors.Is(err, ErrPollTimeout), isCancellation(err):
		return CategoryTransient
	}

	if _, ok := IsTransportError(err); ok {
		return CategoryTransient
	}
	if procErr, ok := IsProcessorError(err); ok {
		if procErr.IsRetryable() {
			return CategoryTransient
		}
		return CategoryPermanent
	}
	if svcErr, ok := IsServiceError(err); ok {
		switch svcErr.Code {
		case ErrCodeInvalidInput:
			return CategoryClientError
		case ErrCodeInternal:
			return CategoryInfrastructure
		}
	}
	return CategoryTransient
}

// IsRetryable reports whether a later attempt may succeed.
func IsRetryable(err error) bool {
	switch CategorizeError(err) {
	case CategoryTransient, CategoryInfrastructure:
		return true
	}
	return false
}

func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.HTTPStatus
	}

	switch {
	case errors.Is(err, domain.ErrSignatureMismatch):
		return http.StatusUnauthorized
	case isAny(err, inputErrors):
		return http.StatusBadRequest
	case isAny(err, conflictErrors):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPaymentNotFound):
		return http.StatusNotFound
	}

	if _, ok := IsProcessorError(err); ok {
		return http.StatusBadGateway
	}
	if _, ok := IsTransportError(err); ok {
		return http.StatusServiceUnavailable
	}
	if isCancellation(err) {
		return http.StatusRequestTimeout
	}
	return http.StatusInternalServerError
}

// ToErrorCode picks the envelope code. Processor codes come back as
// PROCESSOR_ERROR_<code>.
func ToErrorCode(err error) string {
	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.Code
	}
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}

	switch {
	case errors.Is(err, domain.ErrSignatureMismatch):
		return domain.ErrCodeSignatureMismatch
	case errors.Is(err, domain.ErrPaymentNotFound):
		return domain.ErrCodePaymentNotFound
	case errors.Is(err, domain.ErrInvalidTransition):
		return domain.ErrCodeInvalidTransition
	case errors.Is(err, domain.ErrMalformedCallback):
		return domain.ErrCodeMalformedCallback
	}

	if procErr, ok := IsProcessorError(err); ok {
		if procErr.Code == "" {
			return ErrCodeProcessor
		}
		return ErrCodeProcessor + "_" + strings.ToUpper(procErr.Code)
	}
	if _, ok := IsTransportError(err); ok {
		return ErrCodeTransport
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrPollTimeout) {
		return ErrCodeTimeout
	}
	return ErrCodeInternal
}
