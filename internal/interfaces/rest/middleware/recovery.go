package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/application"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/interfaces/rest"
)

// Recovery answers a handler panic with the INTERNAL_ERROR envelope.
// http.ErrAbortHandler is re-raised so net/http still drops the connection.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.ErrorContext(r.Context(), "handler panicked",
					slog.String("route", r.Method+" "+r.URL.Path),
					slog.String("request_id", RequestIDFrom(r.Context())),
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
				)
				rest.WriteError(w, application.NewInternalError(fmt.Errorf("handler panic: %v", rec)))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
