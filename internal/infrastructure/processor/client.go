// Package processor is the HTTP client for the acquiring processor's card API.
package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/application"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/config"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/domain"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/infrastructure/signature"
	"github.com/go-resty/resty/v2"
)

const (
	SalePath          = "/v2/payment/card/sale"
	ThreeDSResultPath = "/v2/payment/card/3ds_result"
	ThreeDSCheckPath  = "/v2/payment/card/3ds_check_iframe"
	StatusPath        = "/v2/payment/status"
)

// Client signs every request and classifies every reply. It never retries;
// re-polling is the caller's job.
type Client struct {
	http          *resty.Client
	signer        *signature.Signer
	projectID     int64
	callbackURL   string
	returnURL     *url.URL
	verifyReplies bool
	now           func() time.Time
	logger        *slog.Logger
}

var _ application.ProcessorClient = (*Client)(nil)

func NewClient(cfg config.ProcessorConfig, signer *signature.Signer, logger *slog.Logger) (*Client, error) {
	public, err := cfg.PublicURL()
	if err != nil {
		return nil, err
	}
	callbackURL, err := cfg.CallbackURL()
	if err != nil {
		return nil, err
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:          httpClient,
		signer:        signer,
		projectID:     cfg.ProjectID,
		callbackURL:   callbackURL,
		returnURL:     public.JoinPath(cfg.ReturnPath),
		verifyReplies: cfg.VerifyReplies,
		now:           time.Now,
		logger:        logger,
	}, nil
}

// WithClock replaces the clock used to mint payment ids.
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

// InitiatePayment validates req, mints its PaymentID and posts the sale.
func (c *Client) InitiatePayment(ctx context.Context, req domain.PaymentRequest) (*domain.PaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return failedFromError("", err), err
	}
	id, err := domain.NewPaymentID(req.PayerID, c.now())
	if err != nil {
		return failedFromError("", err), err
	}

	card := req.Card.Normalized()
	body := saleRequest{
		General: c.general(id, true),
		Customer: customerBlock{
			ID:        req.PayerID,
			IPAddress: req.ClientIP,
		},
		Payment: paymentBlock{
			Amount:      req.Amount,
			Currency:    req.Currency,
			Description: req.Description,
		},
		Card: cardBlock{
			PAN:        card.PAN,
			Year:       card.ExpiryYear,
			Month:      card.ExpiryMonth,
			CardHolder: card.Holder,
			CVV:        card.CVV,
		},
		ReturnURL: c.returnURLs(id),
		CustomFields: customFieldsBlock{
			PaymentID: id.String(),
			PayerID:   req.PayerID,
			Credits:   req.Credits,
		},
	}
	if req.Billing != nil && (req.Billing.PostCode != "" || req.Billing.Street != "") {
		body.AVS = &avsBlock{
			PostCode:      req.Billing.PostCode,
			StreetAddress: req.Billing.Street,
		}
	}

	c.logger.InfoContext(ctx, "initiating card sale",
		"payment_id", id,
		"amount", req.Money().String(),
		"card", card,
	)
	return sendRequest(c, ctx, "sale", SalePath, id, &body, false)
}

// Submit3DSResult posts the ACS PaRes and MD for basic 3DS completion.
func (c *Client) Submit3DSResult(ctx context.Context, id domain.PaymentID, paRes, md string) (*domain.PaymentResponse, error) {
	body := threeDSResultRequest{
		General: c.general(id, false),
		PaRes:   paRes,
		MD:      md,
	}
	return sendRequest(c, ctx, "3ds_result", ThreeDSResultPath, id, &body, false)
}

// Initiate3DSCheck signals that the fingerprint frame finished (or not).
func (c *Client) Initiate3DSCheck(ctx context.Context, id domain.PaymentID, completed bool) (*domain.PaymentResponse, error) {
	indicator := "N"
	if completed {
		indicator = "Y"
	}
	body := threeDSCheckRequest{
		General:             c.general(id, false),
		CompletionIndicator: indicator,
	}
	return sendRequest(c, ctx, "3ds_check", ThreeDSCheckPath, id, &body, false)
}

// CheckStatus reads the current outcome. An unknown transaction is pending.
func (c *Client) CheckStatus(ctx context.Context, id domain.PaymentID) (*domain.PaymentResponse, error) {
	body := statusRequest{General: c.general(id, false)}
	return sendRequest(c, ctx, "status", StatusPath, id, &body, true)
}

func (c *Client) general(id domain.PaymentID, withCallback bool) generalBlock {
	g := generalBlock{
		ProjectID: c.projectID,
		PaymentID: id.String(),
	}
	if withCallback {
		g.MerchantCallbackURL = c.callbackURL
	}
	return g
}

func (c *Client) returnURLs(id domain.PaymentID) returnURLBlock {
	build := func(status string) string {
		u := *c.returnURL
		q := url.Values{"payment_id": {id.String()}}
		if status != "" {
			q.Set("status", status)
		}
		u.RawQuery = q.Encode()
		return u.String()
	}
	return returnURLBlock{
		Success: build("success"),
		Decline: build("decline"),
		Return:  build(""),
	}
}

// signedBody converts the request to a tree and stores the signature in general.
func (c *Client) signedBody(payload any) (map[string]any, error) {
	tree, err := signature.Tree(payload)
	if err != nil {
		return nil, err
	}
	root, ok := tree.(map[string]any)
	if !ok {
		return nil, errors.New("request is not a JSON object")
	}
	general, ok := root["general"].(map[string]any)
	if !ok {
		return nil, errors.New("request has no general block")
	}
	general[signature.Field] = c.signer.SignTree(root)
	return root, nil
}

func sendRequest[Req any](c *Client, ctx context.Context, op, path string, id domain.PaymentID, reqBody *Req, notFoundIsPending bool) (*domain.PaymentResponse, error) {
	body, err := c.signedBody(reqBody)
	if err != nil {
		return domain.Failed(id, "", "could not build processor request"), &application.TransportError{Op: op, Err: fmt.Errorf("sign request: %w", err)}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(path)
	if err != nil {
		c.logger.WarnContext(ctx, "processor request failed",
			"op", op,
			"payment_id", id,
			"error", err,
		)
		return domain.Failed(id, "", "payment processor unavailable"), &application.TransportError{Op: op, Err: err}
	}

	return c.interpret(ctx, op, id, resp.StatusCode(), resp.Body(), notFoundIsPending)
}

func (c *Client) interpret(ctx context.Context, op string, id domain.PaymentID, status int, raw []byte, notFoundIsPending bool) (*domain.PaymentResponse, error) {
	data, parseErr := domain.ParseCallback(raw)

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		if notFoundIsPending && (status == http.StatusNotFound || (parseErr == nil && data.IsNotFound(status))) {
			c.logger.DebugContext(ctx, "transaction not indexed yet", "op", op, "payment_id", id)
			return domain.Pending(id), nil
		}
		procErr := &application.ProcessorError{
			StatusCode: status,
			Message:    http.StatusText(status),
		}
		if parseErr == nil {
			procErr.Code = data.ErrorCode()
			if msg := data.ErrorMessage(); msg != "" {
				procErr.Message = msg
			}
			procErr.Fields = fieldErrors(data)
		}
		c.logger.WarnContext(ctx, "processor rejected request",
			"op", op,
			"payment_id", id,
			"status_code", status,
			"code", procErr.Code,
			"message", procErr.Message,
		)
		return domain.Failed(id, procErr.Code, procErr.Message), procErr
	}

	if parseErr != nil {
		return domain.Failed(id, "", "malformed processor reply"), &application.TransportError{Op: op, Err: parseErr}
	}

	if c.verifyReplies {
		if sig := data.SignatureValue(); sig != "" && !c.signer.Verify(data.Raw, sig) {
			c.logger.WarnContext(ctx, "processor reply failed signature verification",
				"security_event", "signature_mismatch",
				"op", op,
				"payment_id", id,
			)
			return domain.Failed(id, domain.ErrCodeSignatureMismatch, "processor reply signature mismatch"), domain.ErrSignatureMismatch
		}
	}

	result := data.Classify(id)
	result.PaymentID = id

	if result.Status == domain.StatusError {
		if notFoundIsPending && data.IsNotFound(status) {
			return domain.Pending(id), nil
		}
		procErr := &application.ProcessorError{
			Code:       result.Code,
			Message:    result.Message,
			StatusCode: status,
			Fields:     fieldErrors(data),
		}
		c.logger.WarnContext(ctx, "processor reported error",
			"op", op,
			"payment_id", id,
			"code", procErr.Code,
			"message", procErr.Message,
		)
		return result, procErr
	}

	c.logger.DebugContext(ctx, "processor reply classified",
		"op", op,
		"payment_id", id,
		"status", result.Status,
	)
	return result, nil
}

func fieldErrors(data *domain.CallbackData) []application.FieldError {
	if len(data.Errors) == 0 {
		return nil
	}
	out := make([]application.FieldError, 0, len(data.Errors))
	for _, e := range data.Errors {
		out = append(out, application.FieldError{
			Field:   e.Field,
			Code:    string(e.Code),
			Message: e.Message,
		})
	}
	return out
}

func failedFromError(id domain.PaymentID, err error) *domain.PaymentResponse {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domain.Failed(id, domainErr.Code, domainErr.Message)
	}
	return domain.Failed(id, "", err.Error())
}
