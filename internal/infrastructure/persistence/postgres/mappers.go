package postgres

import (
	"github.com/DanielPopoola/ficmart-card-gateway/internal/domain"
)

// toDomainModel: maps db model to domain entity
func toDomainModel(m AttemptModel) *domain.PaymentAttempt {
	a := &domain.PaymentAttempt{
		ID:        domain.PaymentID(m.ID),
		PayerID:   m.PayerID,
		Credits:   m.Credits,
		Amount:    m.Amount,
		Currency:  m.Currency,
		State:     domain.AttemptState(m.State),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		SettledAt: m.SettledAt,
	}
	if m.ChallengeKind != nil {
		a.ChallengeKind = domain.ChallengeKind(*m.ChallengeKind)
	}
	if m.ProcessorCode != nil {
		a.ProcessorCode = *m.ProcessorCode
	}
	if m.ProcessorMessage != nil {
		a.ProcessorMessage = *m.ProcessorMessage
	}
	return a
}

// toDBModel: maps domain entity to db model
func toDBModel(a *domain.PaymentAttempt) *AttemptModel {
	return &AttemptModel{
		ID:               a.ID.String(),
		PayerID:          a.PayerID,
		Credits:          a.Credits,
		Amount:           a.Amount,
		Currency:         a.Currency,
		State:            string(a.State),
		ChallengeKind:    nullable(string(a.ChallengeKind)),
		ProcessorCode:    nullable(a.ProcessorCode),
		ProcessorMessage: nullable(a.ProcessorMessage),
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
		SettledAt:        a.SettledAt,
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
