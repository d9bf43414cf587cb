package handlers

import (
	"mime"
	"net/http"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/application"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/interfaces/rest"
)

type acsResult struct {
	PaRes string `json:"pares"`
	MD    string `json:"md"`
}

type fingerprintResult struct {
	Completed *bool `json:"completed"`
}

// CompleteACS accepts the ACS form post (PaRes, MD) or the same values as JSON.
func (h *Handlers) CompleteACS(w http.ResponseWriter, r *http.Request) {
	id, err := paymentID(r)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	var in acsResult
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		r.Body = http.MaxBytesReader(w, r.Body, rest.MaxBodyBytes)
		if err := r.ParseForm(); err != nil {
			rest.WriteError(w, application.NewInvalidInputError(err))
			return
		}
		in.PaRes = r.PostForm.Get("PaRes")
		in.MD = r.PostForm.Get("MD")
	} else if err := rest.DecodeJSON(r, &in); err != nil {
		rest.WriteError(w, err)
		return
	}

	resp, err := h.payments.CompleteACS(r.Context(), id, in.PaRes, in.MD)
	h.respond(w, r, resp, err)
}

// CompleteFingerprint reports the end of the hidden fingerprint frame.
// An empty body means the frame completed.
func (h *Handlers) CompleteFingerprint(w http.ResponseWriter, r *http.Request) {
	id, err := paymentID(r)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	var in fingerprintResult
	if err := rest.DecodeJSON(r, &in); err != nil {
		rest.WriteError(w, err)
		return
	}
	completed := in.Completed == nil || *in.Completed

	resp, err := h.payments.CompleteFingerprint(r.Context(), id, completed)
	h.respond(w, r, resp, err)
}
