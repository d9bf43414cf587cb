// Package memory keeps attempts and credits in process memory. It backs
// tests and storage-less runs and loses everything on restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/application"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/domain"
)

type Store struct {
	mu       sync.RWMutex
	attempts map[domain.PaymentID]domain.PaymentAttempt
	credits  map[domain.PaymentID]application.Credit
	wallets  map[string]int64
	now      func() time.Time
}

var (
	_ application.AttemptRepository = (*Store)(nil)
	_ application.CreditLedger      = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		attempts: make(map[domain.PaymentID]domain.PaymentAttempt),
		credits:  make(map[domain.PaymentID]application.Credit),
		wallets:  make(map[string]int64),
		now:      time.Now,
	}
}

func (s *Store) Create(_ context.Context, attempt *domain.PaymentAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.attempts[attempt.ID]; ok {
		return fmt.Errorf("payment attempt %s already exists", attempt.ID)
	}
	s.attempts[attempt.ID] = *attempt
	return nil
}

func (s *Store) FindByID(_ context.Context, id domain.PaymentID) (*domain.PaymentAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.attempts[id]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	return &a, nil
}

func (s *Store) Update(_ context.Context, attempt *domain.PaymentAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.attempts[attempt.ID]
	if !ok {
		return domain.ErrPaymentNotFound
	}
	next := *attempt
	if stored.SettledAt != nil {
		next.SettledAt = stored.SettledAt
	}
	s.attempts[attempt.ID] = next
	return nil
}

func (s *Store) FindStale(_ context.Context, olderThan time.Duration, limit int) ([]*domain.PaymentAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := s.now().Add(-olderThan)
	var out []*domain.PaymentAttempt
	for _, a := range s.attempts {
		if a.IsFinal() || !a.UpdatedAt.Before(cutoff) {
			continue
		}
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) FindUnsettled(_ context.Context, limit int) ([]*domain.PaymentAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.PaymentAttempt
	for _, a := range s.attempts {
		if a.State == domain.StateSucceeded && a.SettledAt == nil {
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ApplyCredit records the credit and increments the wallet once per PaymentID.
func (s *Store) ApplyCredit(_ context.Context, credit application.Credit) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.credits[credit.PaymentID]; ok {
		return false, nil
	}
	s.credits[credit.PaymentID] = credit
	s.wallets[credit.PayerID] += int64(credit.Credits)

	if a, ok := s.attempts[credit.PaymentID]; ok {
		a.MarkSettled(s.now())
		s.attempts[credit.PaymentID] = a
	}
	return true, nil
}

func (s *Store) Balance(payerID string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wallets[payerID]
}

// Applications counts ledger mutations.
func (s *Store) Applications() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.credits)
}

// WithClock replaces the clock used for staleness and settlement stamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}
