package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/application"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/interfaces/rest"
)

// Timeout bounds a route group. http.TimeoutHandler puts the deadline on the
// request context, so an in-flight processor call is cancelled with it.
func Timeout(limit time.Duration) func(http.Handler) http.Handler {
	body := timeoutEnvelope()
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.TimeoutHandler(next, limit, body)
	}
}

func timeoutEnvelope() string {
	_, resp := rest.BuildErrorResponse(application.NewTimeoutError())
	raw, err := json.Marshal(resp)
	if err != nil {
		return `{"success":false,"error":{"code":"TIMEOUT"}}`
	}
	return string(raw)
}
