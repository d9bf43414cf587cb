package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/application"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/domain"
)

// Outcome is the result of applying one processor reply to an attempt.
type Outcome struct {
	Response *domain.PaymentResponse
	// Changed is true when the attempt state or its challenge moved.
	Changed bool
	// Succeeded is true only for the first transition into succeeded.
	Succeeded bool
}

type attemptEntry struct {
	mu        sync.Mutex
	state     domain.AttemptState
	kind      domain.ChallengeKind
	challenge domain.Challenge
	handled   map[domain.ChallengeKind]bool
	final     *domain.PaymentResponse
	touched   time.Time
}

// Orchestrator holds the 3DS state of every in-flight attempt of this process.
// Apply and Claim expect the caller to hold Lock for the same PaymentID.
type Orchestrator struct {
	mu      sync.Mutex
	entries map[domain.PaymentID]*attemptEntry
	guard   application.ChallengeGuard
	now     func() time.Time
}

func NewOrchestrator(guard application.ChallengeGuard) *Orchestrator {
	return &Orchestrator{
		entries: make(map[domain.PaymentID]*attemptEntry),
		guard:   guard,
		now:     time.Now,
	}
}

// WithClock replaces the clock used for pruning.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// Track registers a freshly initiated attempt. Known ids are left alone.
func (o *Orchestrator) Track(id domain.PaymentID) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.entries[id]; ok {
		return
	}
	o.entries[id] = &attemptEntry{
		state:   domain.StateInitiated,
		handled: make(map[domain.ChallengeKind]bool),
		touched: o.now(),
	}
}

// Restore rebuilds an entry from a persisted attempt, e.g. after a restart.
func (o *Orchestrator) Restore(attempt *domain.PaymentAttempt) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.entries[attempt.ID]; ok {
		return
	}
	e := &attemptEntry{
		state:   attempt.State,
		kind:    attempt.ChallengeKind,
		handled: make(map[domain.ChallengeKind]bool),
		touched: o.now(),
	}
	if attempt.IsFinal() {
		e.final = attempt.Outcome()
	}
	o.entries[attempt.ID] = e
}

func (o *Orchestrator) entry(id domain.PaymentID) (*attemptEntry, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.entries[id]
	return e, ok
}

// Lock serializes every operation on one PaymentID.
func (o *Orchestrator) Lock(id domain.PaymentID) (unlock func(), err error) {
	e, ok := o.entry(id)
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	e.mu.Lock()
	return e.mu.Unlock, nil
}

// Apply folds a processor reply into the attempt. Final outcomes are sticky,
// and a reply that repeats the current or an already handled challenge is
// reported as pending.
func (o *Orchestrator) Apply(id domain.PaymentID, resp *domain.PaymentResponse) (Outcome, error) {
	e, ok := o.entry(id)
	if !ok {
		return Outcome{}, domain.ErrPaymentNotFound
	}
	e.touched = o.now()

	if e.final != nil {
		return Outcome{Response: e.final}, nil
	}

	switch resp.Status {
	case domain.StatusSuccess, domain.StatusDecline, domain.StatusError:
		e.final = resp
		e.challenge = nil
		e.state = finalState(resp.Status)
		return Outcome{
			Response:  resp,
			Changed:   true,
			Succeeded: resp.Status == domain.StatusSuccess,
		}, nil

	case domain.StatusThreeDSRequired:
		if resp.Challenge == nil {
			return Outcome{Response: domain.Pending(id)}, nil
		}
		kind := resp.Challenge.Kind()
		if e.handled[kind] || domain.SameChallenge(e.challenge, resp.Challenge) {
			return Outcome{Response: domain.Pending(id)}, nil
		}
		e.state = domain.StateChallengePending
		e.kind = kind
		e.challenge = resp.Challenge
		return Outcome{Response: resp, Changed: true}, nil
	}

	return Outcome{Response: resp}, nil
}

func finalState(status domain.Status) domain.AttemptState {
	switch status {
	case domain.StatusSuccess:
		return domain.StateSucceeded
	case domain.StatusDecline:
		return domain.StateDeclined
	default:
		return domain.StateFailed
	}
}

// Claim marks the pending challenge of the given kind as handled. It
// succeeds at most once per PaymentID and kind, across instances when the
// guard is shared.
func (o *Orchestrator) Claim(ctx context.Context, id domain.PaymentID, kind domain.ChallengeKind) error {
	e, ok := o.entry(id)
	if !ok {
		return domain.ErrPaymentNotFound
	}
	if e.handled[kind] {
		return domain.NewChallengeAlreadyHandledError(id, kind)
	}
	if e.final != nil || e.state != domain.StateChallengePending || e.kind != kind {
		return domain.NewNoActiveChallengeError(id, kind)
	}

	claimed, err := o.guard.Claim(ctx, id, kind)
	if err != nil {
		return fmt.Errorf("claim %s challenge: %w", kind, err)
	}
	e.handled[kind] = true
	if !claimed {
		return domain.NewChallengeAlreadyHandledError(id, kind)
	}
	e.touched = o.now()
	return nil
}

// Challenge returns the challenge currently awaiting the payer, if any.
func (o *Orchestrator) Challenge(id domain.PaymentID) (domain.Challenge, bool) {
	e, ok := o.entry(id)
	if !ok {
		return nil, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.challenge == nil || e.handled[e.kind] {
		return nil, false
	}
	return e.challenge, true
}

// Final returns the sticky final response. The caller holds Lock.
func (o *Orchestrator) Final(id domain.PaymentID) (*domain.PaymentResponse, bool) {
	e, ok := o.entry(id)
	if !ok || e.final == nil {
		return nil, false
	}
	return e.final, true
}

// State reports the orchestrator state of an attempt.
func (o *Orchestrator) State(id domain.PaymentID) (domain.AttemptState, bool) {
	e, ok := o.entry(id)
	if !ok {
		return "", false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state, true
}

// Prune drops final entries untouched for longer than olderThan and returns
// how many were removed. Open attempts are kept.
func (o *Orchestrator) Prune(olderThan time.Duration) int {
	cutoff := o.now().Add(-olderThan)

	o.mu.Lock()
	defer o.mu.Unlock()

	removed := 0
	for id, e := range o.entries {
		if !e.mu.TryLock() {
			continue
		}
		if e.final != nil && e.touched.Before(cutoff) {
			delete(o.entries, id)
			removed++
		}
		e.mu.Unlock()
	}
	return removed
}
