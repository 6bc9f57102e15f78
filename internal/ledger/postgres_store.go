package ledger

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore implements Store with PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed ledger store
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the organizations and token_credits tables
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS organizations (
			id            VARCHAR(64) PRIMARY KEY,
			token_balance BIGINT NOT NULL DEFAULT 0,
			updated_at    TIMESTAMPTZ DEFAULT NOW(),
			CONSTRAINT chk_token_balance_nonneg CHECK (token_balance >= 0)
		);

		CREATE TABLE IF NOT EXISTS token_credits (
			id         BIGSERIAL PRIMARY KEY,
			org_id     VARCHAR(64) NOT NULL,
			delta      BIGINT NOT NULL CHECK (delta > 0),
			reference  VARCHAR(64) NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_token_credits_org ON token_credits(org_id);
	`)
	return err
}

// GetBalance retrieves an organization's token balance.
// Organizations without a row read as zero balance.
func (p *PostgresStore) GetBalance(ctx context.Context, orgID string) (int64, error) {
	var balance int64
	err := p.db.QueryRowContext(ctx, `
		SELECT token_balance FROM organizations WHERE id = $1
	`, orgID).Scan(&balance)

	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// Credit adds tokens to an organization's balance with a single atomic
// add-delta statement and records an audit row in the same transaction.
// Concurrent credits and debits from the operation path serialize at the
// balance row, never in handler memory.
func (p *PostgresStore) Credit(ctx context.Context, orgID string, delta int64, reference string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin credit tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO organizations (id, token_balance, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET
			token_balance = organizations.token_balance + $2,
			updated_at    = NOW()
	`, orgID, delta)
	if err != nil {
		return fmt.Errorf("failed to credit balance: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO token_credits (org_id, delta, reference)
		VALUES ($1, $2, $3)
	`, orgID, delta, reference)
	if err != nil {
		return fmt.Errorf("failed to record credit: %w", err)
	}

	return tx.Commit()
}
