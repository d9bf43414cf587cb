package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/application"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/domain"
	"github.com/jackc/pgx/v5"
)

const attemptColumns = `
	id, payer_id, credits, amount, currency, state,
	challenge_kind, processor_code, processor_message,
	created_at, updated_at, settled_at`

type AttemptRepository struct {
	q Executor
}

var _ application.AttemptRepository = (*AttemptRepository)(nil)

func NewAttemptRepository(db *DB) *AttemptRepository {
	return &AttemptRepository{q: db.Pool}
}

func (r *AttemptRepository) Create(ctx context.Context, attempt *domain.PaymentAttempt) error {
	query := `
		INSERT INTO payment_attempts (` + attemptColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	m := toDBModel(attempt)
	_, err := r.q.Exec(ctx, query,
		m.ID,
		m.PayerID,
		m.Credits,
		m.Amount,
		m.Currency,
		m.State,
		m.ChallengeKind,
		m.ProcessorCode,
		m.ProcessorMessage,
		m.CreatedAt,
		m.UpdatedAt,
		m.SettledAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("payment attempt %s already exists: %w", m.ID, err)
		}
		return fmt.Errorf("failed to create payment attempt: %w", err)
	}

	return nil
}

// FindByID returns domain.ErrPaymentNotFound for an unknown id.
func (r *AttemptRepository) FindByID(ctx context.Context, id domain.PaymentID) (*domain.PaymentAttempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM payment_attempts WHERE id = $1`

	attempt, err := scanAttempt(r.q.QueryRow(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("find payment attempt: %w", err)
	}
	return attempt, nil
}

func (r *AttemptRepository) Update(ctx context.Context, attempt *domain.PaymentAttempt) error {
	query := `
		UPDATE payment_attempts
		SET state = $1,
			challenge_kind = $2, processor_code = $3, processor_message = $4,
			updated_at = $5, settled_at = COALESCE(settled_at, $6)
		WHERE id = $7
	`

	m := toDBModel(attempt)
	tag, err := r.q.Exec(ctx, query,
		m.State,
		m.ChallengeKind,
		m.ProcessorCode,
		m.ProcessorMessage,
		m.UpdatedAt,
		m.SettledAt,
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment attempt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}

	return nil
}

// FindStale returns non-final attempts untouched for longer than olderThan, oldest first.
func (r *AttemptRepository) FindStale(ctx context.Context, olderThan time.Duration, limit int) ([]*domain.PaymentAttempt, error) {
	query := `
		SELECT ` + attemptColumns + `
		FROM payment_attempts
		WHERE state IN ('INITIATED', 'CHALLENGE_PENDING')
		  AND updated_at < $1
		ORDER BY updated_at ASC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, time.Now().Add(-olderThan), limit)
	if err != nil {
		return nil, fmt.Errorf("query stale attempts: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.PaymentAttempt, error) {
		return scanAttempt(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan stale attempts: %w", err)
	}

	return results, nil
}

func (r *AttemptRepository) FindUnsettled(ctx context.Context, limit int) ([]*domain.PaymentAttempt, error) {
	query := `
		SELECT ` + attemptColumns + `
		FROM payment_attempts
		WHERE state = 'SUCCEEDED' AND settled_at IS NULL
		ORDER BY updated_at ASC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query unsettled attempts: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.PaymentAttempt, error) {
		return scanAttempt(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan unsettled attempts: %w", err)
	}

	return results, nil
}

func scanAttempt(row pgx.Row) (*domain.PaymentAttempt, error) {
	var m AttemptModel
	err := row.Scan(
		&m.ID, &m.PayerID, &m.Credits, &m.Amount, &m.Currency, &m.State,
		&m.ChallengeKind, &m.ProcessorCode, &m.ProcessorMessage,
		&m.CreatedAt, &m.UpdatedAt, &m.SettledAt,
	)
	if err != nil {
		return nil, err
	}
	return toDomainModel(m), nil
}

// MarkSettled stamps settled_at once; later calls leave the first stamp.
func (r *AttemptRepository) MarkSettled(ctx context.Context, id domain.PaymentID, at time.Time) error {
	query := `UPDATE payment_attempts SET settled_at = $1 WHERE id = $2 AND settled_at IS NULL`
	if _, err := r.q.Exec(ctx, query, at, id.String()); err != nil {
		return fmt.Errorf("failed to mark attempt settled: %w", err)
	}
	return nil
}
