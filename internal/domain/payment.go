// Package domain encodes a card payment attempt and its 3DS lifecycle
package domain

import (
	"slices"
	"time"
)

// AttemptState is the orchestrator state of a payment attempt
type AttemptState string

const (
	StateInitiated        AttemptState = "INITIATED"
	StateChallengePending AttemptState = "CHALLENGE_PENDING"
	StateSucceeded        AttemptState = "SUCCEEDED"
	StateDeclined         AttemptState = "DECLINED"
	StateFailed           AttemptState = "FAILED"
)

// PaymentAttempt is the persisted view of an attempt. It holds no card data.
type PaymentAttempt struct {
	ID       PaymentID
	PayerID  string
	Credits  int
	Amount   int64
	Currency string
	State    AttemptState

	ChallengeKind    ChallengeKind
	ProcessorCode    string
	ProcessorMessage string

	CreatedAt time.Time
	UpdatedAt time.Time
	SettledAt *time.Time
}

func NewPaymentAttempt(id PaymentID, req PaymentRequest, now time.Time) *PaymentAttempt {
	return &PaymentAttempt{
		ID:        id,
		PayerID:   req.PayerID,
		Credits:   req.Credits,
		Amount:    req.Amount,
		Currency:  req.Currency,
		State:     StateInitiated,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Apply moves the attempt to the state implied by resp. Pending responses
// leave the state untouched and report no change.
func (a *PaymentAttempt) Apply(resp *PaymentResponse, now time.Time) (bool, error) {
	target, ok := stateFor(resp.Status)
	if !ok {
		return false, nil
	}
	if err := a.transition(target); err != nil {
		return false, err
	}

	if resp.Challenge != nil {
		a.ChallengeKind = resp.Challenge.Kind()
	}
	if resp.Code != "" || resp.Message != "" {
		a.ProcessorCode = resp.Code
		a.ProcessorMessage = resp.Message
	}
	a.UpdatedAt = now
	return true, nil
}

// MarkSettled records that credits were applied for this attempt.
func (a *PaymentAttempt) MarkSettled(now time.Time) {
	if a.SettledAt == nil {
		a.SettledAt = &now
	}
}

func (a *PaymentAttempt) transition(target AttemptState) error {
	if err := a.canTransitionTo(target); err != nil {
		return err
	}
	a.State = target
	return nil
}

func (a *PaymentAttempt) canTransitionTo(target AttemptState) error {
	switch a.State {
	case StateInitiated:
		return a.allow(target, StateChallengePending, StateSucceeded, StateDeclined, StateFailed)
	case StateChallengePending:
		return a.allow(target, StateChallengePending, StateSucceeded, StateDeclined, StateFailed)
	}
	return ErrInvalidTransition
}

func (a *PaymentAttempt) allow(target AttemptState, allowed ...AttemptState) error {
	if slices.Contains(allowed, target) {
		return nil
	}
	return ErrInvalidTransition
}

// IsFinal reports whether the attempt can no longer change.
func (a *PaymentAttempt) IsFinal() bool {
	switch a.State {
	case StateSucceeded, StateDeclined, StateFailed:
		return true
	default:
		return false
	}
}

// Outcome renders the stored state as a response for callers that only have the record.
func (a *PaymentAttempt) Outcome() *PaymentResponse {
	switch a.State {
	case StateSucceeded:
		return Succeeded(a.ID)
	case StateDeclined:
		return Declined(a.ID, a.ProcessorCode, a.ProcessorMessage)
	case StateFailed:
		return Failed(a.ID, a.ProcessorCode, a.ProcessorMessage)
	default:
		return Pending(a.ID)
	}
}

func (a *PaymentAttempt) Money() Money {
	return Money{Amount: a.Amount, Currency: a.Currency}
}

func stateFor(status Status) (AttemptState, bool) {
	switch status {
	case StatusSuccess:
		return StateSucceeded, true
	case StatusDecline:
		return StateDeclined, true
	case StatusError:
		return StateFailed, true
	case StatusThreeDSRequired:
		return StateChallengePending, true
	default:
		return "", false
	}
}
