package handlers

import (
	"net/http"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/interfaces/rest"
)

// ProcessorCallback applies a signed notification. Non-2xx replies make the
// processor redeliver.
func (h *Handlers) ProcessorCallback(w http.ResponseWriter, r *http.Request) {
	body, err := rest.ReadBody(r)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	resp, err := h.callbacks.Handle(r.Context(), body)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WritePayment(w, resp)
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	rest.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
