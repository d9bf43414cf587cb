package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ProcessorCode accepts both string and numeric codes from the processor.
type ProcessorCode string

func (c *ProcessorCode) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*c = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = ProcessorCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("processor code: %w", err)
	}
	*c = ProcessorCode(n.String())
	return nil
}

type CallbackGeneral struct {
	ProjectID json.Number `json:"project_id"`
	PaymentID string      `json:"payment_id"`
	Signature string      `json:"signature"`
}

type CallbackPayment struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Type   string `json:"type"`
}

type CallbackOperation struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Code    ProcessorCode `json:"code"`
}

type CallbackACS struct {
	ACSURL  string `json:"acs_url"`
	PaReq   string `json:"pa_req"`
	MD      string `json:"md"`
	TermURL string `json:"term_url"`
}

type CallbackThreeDS2 struct {
	Iframe   *CallbackFrame `json:"iframe"`
	Redirect *CallbackFrame `json:"redirect"`
}

// CallbackFrame is a URL plus the form parameters to post into it.
type CallbackFrame struct {
	URL    string            `json:"url"`
	Params map[string]string `json:"params"`
}

type CallbackFieldError struct {
	Field   string        `json:"field"`
	Code    ProcessorCode `json:"code"`
	Message string        `json:"message"`
}

// CallbackData is the processor's message document. Synchronous replies and
// webhook notifications share it. Raw is the decoded tree the signature
// covers, so fields this struct does not model are still verified.
type CallbackData struct {
	Status       string               `json:"status"`
	Code         ProcessorCode        `json:"code"`
	Message      string               `json:"message"`
	General      *CallbackGeneral     `json:"general,omitempty"`
	Payment      CallbackPayment      `json:"payment"`
	Operation    CallbackOperation    `json:"operation"`
	ACS          *CallbackACS         `json:"acs,omitempty"`
	ThreeDS2     *CallbackThreeDS2    `json:"threeds2,omitempty"`
	Errors       []CallbackFieldError `json:"errors,omitempty"`
	CustomFields map[string]any       `json:"custom_fields,omitempty"`
	Signature    string               `json:"signature"`

	Raw any `json:"-"`
}

// ParseCallback decodes a processor document. Numbers in Raw keep their
// literal text.
func ParseCallback(body []byte) (*CallbackData, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedCallback)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCallback, err)
	}
	if _, ok := raw.(map[string]any); !ok {
		return nil, fmt.Errorf("%w: document is not an object", ErrMalformedCallback)
	}

	var data CallbackData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCallback, err)
	}
	data.Raw = raw
	return &data, nil
}

// SignatureValue returns the top-level signature, or the one in general.
func (d *CallbackData) SignatureValue() string {
	if d.Signature != "" {
		return d.Signature
	}
	if d.General != nil {
		return d.General.Signature
	}
	return ""
}

// PaymentID correlates the document: payment.id, then custom_fields.payment_id,
// then general.payment_id.
func (d *CallbackData) PaymentID() PaymentID {
	if id := strings.TrimSpace(d.Payment.ID); id != "" {
		return PaymentID(id)
	}
	if v, ok := d.CustomFields["payment_id"]; ok && v != nil {
		if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
			return PaymentID(s)
		}
	}
	if d.General != nil {
		return PaymentID(strings.TrimSpace(d.General.PaymentID))
	}
	return ""
}

// ErrorCode prefers the operation code, then the top-level code, then the first field error.
func (d *CallbackData) ErrorCode() string {
	switch {
	case d.Operation.Code != "":
		return string(d.Operation.Code)
	case d.Code != "":
		return string(d.Code)
	case len(d.Errors) > 0:
		return string(d.Errors[0].Code)
	}
	return ""
}

func (d *CallbackData) ErrorMessage() string {
	switch {
	case d.Operation.Message != "":
		return d.Operation.Message
	case d.Message != "":
		return d.Message
	case len(d.Errors) > 0:
		return d.Errors[0].Message
	}
	return ""
}

func statusIn(status string, candidates ...string) bool {
	for _, s := range candidates {
		if strings.EqualFold(strings.TrimSpace(s), status) {
			return true
		}
	}
	return false
}

// hasStatus checks the payment and operation blocks only. The top-level
// status acknowledges the request and says nothing about the outcome.
func (d *CallbackData) hasStatus(status string) bool {
	return statusIn(status, d.Payment.Status, d.Operation.Status)
}

// IsError reports an explicit error status anywhere in the document.
func (d *CallbackData) IsError() bool {
	return statusIn("error", d.Status, d.Payment.Status, d.Operation.Status)
}

// Classify maps the document onto a PaymentResponse. The first matching rule wins:
// explicit error, success, fingerprint iframe, 3DS2 redirect, ACS, decline,
// and pending otherwise.
func (d *CallbackData) Classify(fallback PaymentID) *PaymentResponse {
	id := d.PaymentID()
	if id == "" {
		id = fallback
	}

	switch {
	case d.IsError():
		return Failed(id, d.ErrorCode(), d.ErrorMessage())
	case d.hasStatus("success"):
		return Succeeded(id)
	}

	if c := d.challenge(); c != nil {
		return ChallengeRequired(id, c)
	}

	if d.hasStatus("decline") {
		return Declined(id, d.ErrorCode(), d.ErrorMessage())
	}
	return Pending(id)
}

func (d *CallbackData) challenge() Challenge {
	if d.ThreeDS2 != nil {
		if f := d.ThreeDS2.Iframe; f != nil && f.URL != "" {
			return FingerprintChallenge{
				IframeURL:  f.URL,
				MethodData: f.Params["threeDSMethodData"],
			}
		}
		if f := d.ThreeDS2.Redirect; f != nil && f.URL != "" {
			return RedirectChallenge{
				URL:         f.URL,
				CReq:        f.Params["creq"],
				SessionData: f.Params["threeDSSessionData"],
			}
		}
	}
	if d.ACS != nil && d.ACS.ACSURL != "" {
		return ACSChallenge{
			ACSURL:  d.ACS.ACSURL,
			PaReq:   d.ACS.PaReq,
			MD:      d.ACS.MD,
			TermURL: d.ACS.TermURL,
		}
	}
	return nil
}

// ChallengeDefaults fills challenge fields the processor leaves to the merchant.
// TermURL is where the ACS posts PaRes and MD back for a payment.
type ChallengeDefaults struct {
	TermURL     func(id PaymentID) string
	SettleDelay time.Duration
}

// Decorate returns resp with the defaults applied to its challenge.
func (cd ChallengeDefaults) Decorate(resp *PaymentResponse) *PaymentResponse {
	if resp == nil || resp.Challenge == nil {
		return resp
	}
	switch c := resp.Challenge.(type) {
	case ACSChallenge:
		if c.TermURL == "" && cd.TermURL != nil {
			c.TermURL = cd.TermURL(resp.PaymentID)
		}
		resp.Challenge = c
	case FingerprintChallenge:
		if c.SettleDelay == 0 {
			c.SettleDelay = cd.SettleDelay
		}
		resp.Challenge = c
	}
	return resp
}

// IsNotFound reports the processor's "transaction not found" reply.
func (d *CallbackData) IsNotFound(httpStatus int) bool {
	if httpStatus == http.StatusNotFound || d.ErrorCode() == NotFoundCode {
		return true
	}
	return strings.Contains(strings.ToLower(d.ErrorMessage()), "not found")
}

// NotFoundCode is the processor code for an unknown transaction.
const NotFoundCode = "3061"

var errNoPaymentID = errors.New("callback does not identify a payment")

// RequirePaymentID returns the correlated id or ErrMalformedCallback.
func (d *CallbackData) RequirePaymentID() (PaymentID, error) {
	id := d.PaymentID()
	if id == "" {
		return "", fmt.Errorf("%w: %v", ErrMalformedCallback, errNoPaymentID)
	}
	return id, nil
}
