package rest

import (
	"errors"
	"net/http"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/application"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/domain"
)

type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// BuildErrorResponse maps an error to its status code and body. Processor
// codes, messages and field errors are passed through unchanged.
func BuildErrorResponse(err error) (int, ErrorResponse) {
	detail := ErrorDetail{
		Code:    application.ToErrorCode(err),
		Message: err.Error(),
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		detail.Message = domainErr.Message
		if len(domainErr.Fields) > 0 {
			detail.Details = domainErr.Fields
		}
	}

	if procErr, ok := application.IsProcessorError(err); ok {
		detail.Message = procErr.Message
		detail.Details = map[string]string{"processor_code": procErr.Code}
		for _, f := range procErr.Fields {
			detail.Details[f.Field] = f.Message
		}
	}

	// internal causes stay in the logs
	if svcErr, ok := application.IsServiceError(err); ok && svcErr.Code == application.ErrCodeInternal {
		detail.Message = svcErr.Message
	}

	return application.ToHTTPStatus(err), ErrorResponse{Success: false, Error: detail}
}

// WriteError maps application errors to HTTP responses
func WriteError(w http.ResponseWriter, err error) {
	statusCode, response := BuildErrorResponse(err)
	WriteJSON(w, statusCode, response)
}
