package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/domain"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/interfaces/rest"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/interfaces/rest/middleware"
)

// DefaultCallbackPath is where the processor posts notifications unless configured.
const DefaultCallbackPath = "/v1/callbacks/processor"

// RouterConfig bounds handler run time. PollTimeout applies to the long-poll
// route only and must exceed the poller's maximum duration.
type RouterConfig struct {
	RequestTimeout time.Duration
	PollTimeout    time.Duration
	CallbackPath   string
}

func NewRouter(h *Handlers, spec *rest.Spec, cfg RouterConfig, logger *slog.Logger) http.Handler {
	callbackPath := cfg.CallbackPath
	if callbackPath == "" {
		callbackPath = DefaultCallbackPath
	}
	bounded := middleware.Timeout(cfg.RequestTimeout)
	longPoll := middleware.Timeout(cfg.PollTimeout)

	mux := http.NewServeMux()
	mux.Handle("POST /v1/payments", bounded(http.HandlerFunc(h.Purchase)))
	mux.Handle("GET /v1/payments/{paymentId}", bounded(http.HandlerFunc(h.CheckStatus)))
	mux.Handle("POST /v1/payments/{paymentId}/poll", longPoll(http.HandlerFunc(h.Poll)))
	mux.Handle("POST /v1/payments/{paymentId}/3ds/acs", bounded(http.HandlerFunc(h.CompleteACS)))
	mux.Handle("POST /v1/payments/{paymentId}/3ds/fingerprint", bounded(http.HandlerFunc(h.CompleteFingerprint)))
	mux.Handle("POST "+callbackPath, bounded(http.HandlerFunc(h.ProcessorCallback)))
	mux.HandleFunc("GET /healthz", h.Health)
	mux.Handle("GET /docs/openapi.yaml", rest.DocsHandler())

	handler := middleware.OpenAPIValidator(spec, "/v1/payments")(mux)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(handler)
	return handler
}

// ACSTermURL builds the per-payment URL the issuer's ACS posts PaRes back to.
func ACSTermURL(public *url.URL) func(domain.PaymentID) string {
	return func(id domain.PaymentID) string {
		return public.JoinPath("v1", "payments", id.String(), "3ds", "acs").String()
	}
}
