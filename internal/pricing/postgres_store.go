package pricing

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore implements Store with PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed catalog store
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the operation_configs table and seeds the default catalog.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS operation_configs (
			operation_type    VARCHAR(64) PRIMARY KEY,
			is_ai             BOOLEAN NOT NULL DEFAULT FALSE,
			fixed_cost        BIGINT NOT NULL DEFAULT 0,
			max_output_tokens BIGINT NOT NULL DEFAULT 0,
			model_name        VARCHAR(128),
			provider          VARCHAR(64),
			updated_at        TIMESTAMPTZ DEFAULT NOW()
		);
	`)
	if err != nil {
		return err
	}

	for _, cfg := range DefaultCatalog() {
		_, err := p.db.ExecContext(ctx, `
			INSERT INTO operation_configs
				(operation_type, is_ai, fixed_cost, max_output_tokens, model_name, provider)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (operation_type) DO NOTHING
		`, cfg.OperationType, cfg.IsAI, cfg.FixedCost, cfg.MaxOutputTokens,
			cfg.ModelName, cfg.Provider)
		if err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
	}
	return nil
}

func (p *PostgresStore) GetConfig(ctx context.Context, operationType string) (*OperationConfig, error) {
	cfg := &OperationConfig{}
	var model, provider sql.NullString
	err := p.db.QueryRowContext(ctx, `
		SELECT operation_type, is_ai, fixed_cost, max_output_tokens, model_name, provider
		FROM operation_configs WHERE operation_type = $1
	`, operationType).Scan(&cfg.OperationType, &cfg.IsAI, &cfg.FixedCost,
		&cfg.MaxOutputTokens, &model, &provider)

	if err == sql.ErrNoRows {
		return nil, ErrUnknownOperation
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get operation config: %w", err)
	}
	cfg.ModelName = model.String
	cfg.Provider = provider.String
	return cfg, nil
}

func (p *PostgresStore) List(ctx context.Context) ([]*OperationConfig, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT operation_type, is_ai, fixed_cost, max_output_tokens, model_name, provider
		FROM operation_configs ORDER BY operation_type
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list operation configs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*OperationConfig
	for rows.Next() {
		cfg := &OperationConfig{}
		var model, provider sql.NullString
		if err := rows.Scan(&cfg.OperationType, &cfg.IsAI, &cfg.FixedCost,
			&cfg.MaxOutputTokens, &model, &provider); err != nil {
			return nil, fmt.Errorf("failed to scan operation config: %w", err)
		}
		cfg.ModelName = model.String
		cfg.Provider = provider.String
		out = append(out, cfg)
	}
	return out, rows.Err()
}
