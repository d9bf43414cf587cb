package domain

import (
	"encoding/json"
	"slices"
)

// Status is the outcome reported to the purchase flow.
type Status string

const (
	StatusSuccess         Status = "success"
	StatusDecline         Status = "decline"
	StatusPending         Status = "pending"
	StatusThreeDSRequired Status = "3ds_required"
	StatusError           Status = "error"
	StatusTimeout         Status = "timeout"
)

// IsFinal reports whether no further processor interaction can change the outcome.
func (s Status) IsFinal() bool {
	return slices.Contains([]Status{StatusSuccess, StatusDecline, StatusError}, s)
}

// PaymentResponse is a tagged union keyed by Status. Challenge is set only
// when Status is StatusThreeDSRequired.
type PaymentResponse struct {
	PaymentID PaymentID
	Status    Status
	Code      string
	Message   string
	Challenge Challenge
}

func Succeeded(id PaymentID) *PaymentResponse {
	return &PaymentResponse{PaymentID: id, Status: StatusSuccess}
}

func Declined(id PaymentID, code, message string) *PaymentResponse {
	return &PaymentResponse{PaymentID: id, Status: StatusDecline, Code: code, Message: message}
}

func Pending(id PaymentID) *PaymentResponse {
	return &PaymentResponse{PaymentID: id, Status: StatusPending}
}

func Failed(id PaymentID, code, message string) *PaymentResponse {
	return &PaymentResponse{PaymentID: id, Status: StatusError, Code: code, Message: message}
}

func ChallengeRequired(id PaymentID, c Challenge) *PaymentResponse {
	return &PaymentResponse{PaymentID: id, Status: StatusThreeDSRequired, Challenge: c}
}

func TimedOut(id PaymentID) *PaymentResponse {
	return &PaymentResponse{PaymentID: id, Status: StatusTimeout, Message: "payment is still processing, check back later"}
}

type paymentResponseJSON struct {
	PaymentID PaymentID      `json:"payment_id"`
	Status    Status         `json:"status"`
	Code      string         `json:"code,omitempty"`
	Message   string         `json:"message,omitempty"`
	Challenge *challengeJSON `json:"challenge,omitempty"`
}

type challengeJSON struct {
	ChallengeForm
	SubmitAfterMS int64 `json:"submit_after_ms,omitempty"`
}

func (r PaymentResponse) MarshalJSON() ([]byte, error) {
	out := paymentResponseJSON{
		PaymentID: r.PaymentID,
		Status:    r.Status,
		Code:      r.Code,
		Message:   r.Message,
	}
	if r.Challenge != nil {
		form := r.Challenge.Form()
		out.Challenge = &challengeJSON{
			ChallengeForm: form,
			SubmitAfterMS: form.SubmitAfter.Milliseconds(),
		}
	}
	return json.Marshal(out)
}
