package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/application"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/domain"
)

// MaxBodyBytes caps request bodies; processor callbacks are the largest.
const MaxBodyBytes = 1 << 20

type PaymentEnvelope struct {
	Success bool                    `json:"success"`
	Data    *domain.PaymentResponse `json:"data"`
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WritePayment renders an outcome. Declines and timeouts are outcomes, not
// errors, so they share the 200 envelope with successes.
func WritePayment(w http.ResponseWriter, resp *domain.PaymentResponse) {
	WriteJSON(w, http.StatusOK, PaymentEnvelope{
		Success: resp.Status != domain.StatusError,
		Data:    resp,
	})
}

// DecodeJSON reads a single JSON document into dst.
func DecodeJSON(r *http.Request, dst any) error {
	body, err := ReadBody(r)
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return application.NewInvalidInputError(fmt.Errorf("decode body: %w", err))
	}
	return nil
}

func ReadBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, application.NewInvalidInputError(fmt.Errorf("read body: %w", err))
	}
	if len(body) > MaxBodyBytes {
		return nil, application.NewInvalidInputError(errors.New("request body too large"))
	}
	return body, nil
}

// ClientIP prefers the first X-Forwarded-For hop, then the peer address.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
