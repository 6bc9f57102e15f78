package payments

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore implements Store with PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed transaction store
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the payment_transactions table
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS payment_transactions (
			id            VARCHAR(64) PRIMARY KEY,
			org_id        VARCHAR(64) NOT NULL,
			amount        NUMERIC(18,2) NOT NULL,
			tokens_amount BIGINT NOT NULL CHECK (tokens_amount > 0),
			status        VARCHAR(20) NOT NULL DEFAULT 'pending',
			created_at    TIMESTAMPTZ DEFAULT NOW(),
			completed_at  TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS idx_payment_transactions_org
			ON payment_transactions(org_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_payment_transactions_status
			ON payment_transactions(status);
	`)
	return err
}

func (p *PostgresStore) Insert(ctx context.Context, tx *Transaction) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO payment_transactions (id, org_id, amount, tokens_amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, tx.ID, tx.OrganizationID, tx.Amount, tx.TokensAmount, tx.Status, tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (p *PostgresStore) Get(ctx context.Context, id string) (*Transaction, error) {
	tx := &Transaction{}
	err := p.db.QueryRowContext(ctx, `
		SELECT id, org_id, amount::text, tokens_amount, status, created_at, completed_at
		FROM payment_transactions WHERE id = $1
	`, id).Scan(&tx.ID, &tx.OrganizationID, &tx.Amount, &tx.TokensAmount,
		&tx.Status, &tx.CreatedAt, &tx.CompletedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

func (p *PostgresStore) ListByOrganization(ctx context.Context, orgID string, limit int) ([]*Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, org_id, amount::text, tokens_amount, status, created_at, completed_at
		FROM payment_transactions
		WHERE org_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, orgID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Transaction
	for rows.Next() {
		tx := &Transaction{}
		if err := rows.Scan(&tx.ID, &tx.OrganizationID, &tx.Amount, &tx.TokensAmount,
			&tx.Status, &tx.CreatedAt, &tx.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

// MarkSucceeded flips a pending transaction to success with a single
// conditional update. RowsAffected tells us whether this delivery of the
// confirmation won the transition; concurrent duplicates see zero rows
// and skip the ledger credit.
func (p *PostgresStore) MarkSucceeded(ctx context.Context, id string) (bool, error) {
	res, err := p.db.ExecContext(ctx, `
		UPDATE payment_transactions
		SET status = 'success', completed_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark transaction succeeded: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		// Distinguish "already settled" from "never existed".
		var exists bool
		if err := p.db.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM payment_transactions WHERE id = $1)
		`, id).Scan(&exists); err != nil {
			return false, fmt.Errorf("failed to check transaction: %w", err)
		}
		if !exists {
			return false, ErrNotFound
		}
		return false, nil
	}
	return true, nil
}
