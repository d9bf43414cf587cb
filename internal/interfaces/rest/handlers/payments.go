package handlers

import (
	"errors"
	"net/http"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/application"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/domain"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/interfaces/rest"
	"github.com/oapi-codegen/runtime"
)

func (h *Handlers) Purchase(w http.ResponseWriter, r *http.Request) {
	var req domain.PaymentRequest
	if err := rest.DecodeJSON(r, &req); err != nil {
		rest.WriteError(w, err)
		return
	}
	if req.ClientIP == "" {
		req.ClientIP = rest.ClientIP(r)
	}

	resp, err := h.payments.Purchase(r.Context(), req)
	h.respond(w, r, resp, err)
}

func (h *Handlers) CheckStatus(w http.ResponseWriter, r *http.Request) {
	id, err := paymentID(r)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	resp, err := h.payments.CheckStatus(r.Context(), id)
	h.respond(w, r, resp, err)
}

// Poll blocks until the payment settles, a new challenge appears, the poll
// times out, or the client goes away.
func (h *Handlers) Poll(w http.ResponseWriter, r *http.Request) {
	id, err := paymentID(r)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	resp, err := h.poller.Poll(r.Context(), id)
	if r.Context().Err() != nil {
		// nobody is listening
		return
	}
	h.respond(w, r, resp, err)
}

func (h *Handlers) respond(w http.ResponseWriter, r *http.Request, resp *domain.PaymentResponse, err error) {
	if errors.Is(err, application.ErrPollTimeout) && resp != nil {
		rest.WritePayment(w, resp)
		return
	}
	if err != nil {
		h.logger.Warn("payment request failed",
			"path", r.URL.Path,
			"category", application.CategorizeError(err),
			"error", err,
		)
		rest.WriteError(w, err)
		return
	}
	rest.WritePayment(w, resp)
}

func paymentID(r *http.Request) (domain.PaymentID, error) {
	var id string
	err := runtime.BindStyledParameterWithLocation("simple", false, "paymentId", runtime.ParamLocationPath, r.PathValue("paymentId"), &id)
	if err != nil {
		return "", application.NewInvalidInputError(err)
	}
	if id == "" {
		return "", application.NewInvalidInputError(errors.New("paymentId is required"))
	}
	return domain.PaymentID(id), nil
}
