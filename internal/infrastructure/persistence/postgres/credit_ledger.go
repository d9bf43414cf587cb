package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/application"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CreditRepository owns credit_applications and wallet_balances.
type CreditRepository struct {
	q Executor
}

func NewCreditRepository(db *DB) *CreditRepository {
	return &CreditRepository{q: db.Pool}
}

// Insert records the application. It reports false when the payment was already credited.
func (r *CreditRepository) Insert(ctx context.Context, c CreditApplication) (bool, error) {
	query := `
		INSERT INTO credit_applications (payment_id, payer_id, credits, amount, currency, request_hash, applied_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (payment_id) DO NOTHING
	`

	tag, err := r.q.Exec(ctx, query,
		c.PaymentID,
		c.PayerID,
		c.Credits,
		c.Amount,
		c.Currency,
		c.RequestHash,
		c.AppliedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to record credit application: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *CreditRepository) AddToWallet(ctx context.Context, payerID string, credits int, at time.Time) error {
	query := `
		INSERT INTO wallet_balances (payer_id, credits, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (payer_id) DO UPDATE
		SET credits = wallet_balances.credits + EXCLUDED.credits,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := r.q.Exec(ctx, query, payerID, credits, at); err != nil {
		return fmt.Errorf("failed to update wallet balance: %w", err)
	}
	return nil
}

// Balance returns 0 for a payer with no wallet row.
func (r *CreditRepository) Balance(ctx context.Context, payerID string) (int64, error) {
	var credits int64
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE((SELECT credits FROM wallet_balances WHERE payer_id = $1), 0)`,
		payerID,
	).Scan(&credits)
	if err != nil {
		return 0, fmt.Errorf("failed to read wallet balance: %w", err)
	}
	return credits, nil
}

// CreditLedger applies a credit, the wallet increment and the settled stamp
// in one transaction.
type CreditLedger struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

var _ application.CreditLedger = (*CreditLedger)(nil)

func NewCreditLedger(db *DB) *CreditLedger {
	return &CreditLedger{
		pool: db.Pool,
		now:  time.Now,
	}
}

func (l *CreditLedger) ApplyCredit(ctx context.Context, credit application.Credit) (bool, error) {
	applied := false
	at := l.now().UTC()

	err := inLedgerTx(ctx, l.pool, func(tx ledgerTx) error {
		inserted, err := tx.credits.Insert(ctx, CreditApplication{
			PaymentID:   credit.PaymentID.String(),
			PayerID:     credit.PayerID,
			Credits:     credit.Credits,
			Amount:      credit.Amount,
			Currency:    credit.Currency,
			RequestHash: credit.RequestHash,
			AppliedAt:   at,
		})
		if err != nil || !inserted {
			return err
		}

		if err := tx.credits.AddToWallet(ctx, credit.PayerID, credit.Credits, at); err != nil {
			return err
		}
		if err := tx.attempts.MarkSettled(ctx, credit.PaymentID, at); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

// ledgerTx binds both repositories to one transaction.
type ledgerTx struct {
	attempts *AttemptRepository
	credits  *CreditRepository
}

// inLedgerTx commits only when fn returns nil.
func inLedgerTx(ctx context.Context, pool *pgxpool.Pool, fn func(ledgerTx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin credit transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ledgerTx{attempts: &AttemptRepository{q: tx}, credits: &CreditRepository{q: tx}}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit credit transaction: %w", err)
	}
	return nil
}
