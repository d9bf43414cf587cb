package application

import (
	"errors"
	"fmt"
	"net/http"
)

// ServiceError is a gateway-side failure with its own code and HTTP status.
type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeTimeout      = "TIMEOUT"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeInvalidState = "INVALID_STATE"
	ErrCodeProcessor    = "PROCESSOR_ERROR"
	ErrCodeTransport    = "PROCESSOR_UNAVAILABLE"
)

func serviceError(code string, status int, msg string, cause error) *ServiceError {
	return &ServiceError{Code: code, Message: msg, HTTPStatus: status, Err: cause}
}

func NewTimeoutError() *ServiceError {
	return serviceError(ErrCodeTimeout, http.StatusRequestTimeout, "request deadline exceeded", nil)
}

// NewInternalError hides cause from clients; it is still logged.
func NewInternalError(cause error) *ServiceError {
	return serviceError(ErrCodeInternal, http.StatusInternalServerError, "internal gateway error", cause)
}

func NewInvalidInputError(cause error) *ServiceError {
	return serviceError(ErrCodeInvalidInput, http.StatusBadRequest, "invalid request", cause)
}

func NewInvalidStateError(cause error) *ServiceError {
	return serviceError(ErrCodeInvalidState, http.StatusConflict, "payment is not in a state that allows this", cause)
}

func IsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	ok := errors.As(err, &svcErr)
	return svcErr, ok
}

// ProcessorError is an error the processor declared: a non-2xx reply or an
// explicit error status. Code and Message are passed through verbatim.
type ProcessorError struct {
	Code       string
	Message    string
	StatusCode int
	Fields     []FieldError
}

// FieldError is one entry of the processor's per-field error list.
type FieldError struct {
	Field   string
	Code    string
	Message string
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("processor error [%s]: %s (status: %d)", e.Code, e.Message, e.StatusCode)
}

func (e *ProcessorError) IsRetryable() bool {
	return e.StatusCode >= 500
}

func IsProcessorError(err error) (*ProcessorError, bool) {
	var procErr *ProcessorError
	ok := errors.As(err, &procErr)
	return procErr, ok
}

// TransportError is a network failure or an unreadable reply.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("processor transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func IsTransportError(err error) (*TransportError, bool) {
	var tErr *TransportError
	ok := errors.As(err, &tErr)
	return tErr, ok
}
