// Package pricing estimates token costs for metered operations and decides
// whether an organization's balance admits them.
//
// Estimates are advisory: nothing is reserved or debited here. The
// operation-execution path settles actual usage against the ledger; this
// package only answers "can the org afford the worst case, and what will
// it probably cost".
package pricing

import (
	"context"
	"errors"
)

// defaultInputEstimate is the assumed input token count when an operation
// is priced without its input text (roughly a one-page prompt).
const defaultInputEstimate = 500

var ErrUnknownOperation = errors.New("unknown operation type")

// OperationConfig is a catalog entry for a metered operation.
// Non-AI operations cost a flat FixedCost; AI operations are priced from
// input length and the model's output ceiling.
type OperationConfig struct {
	OperationType   string `json:"operation_type"`
	IsAI            bool   `json:"is_ai"`
	FixedCost       int64  `json:"fixed_cost"`
	MaxOutputTokens int64  `json:"max_output_tokens"`
	ModelName       string `json:"model_name,omitempty"`
	Provider        string `json:"provider,omitempty"`
}

// Store is the read-only operation catalog.
type Store interface {
	// GetConfig returns the catalog entry for an operation type, or
	// ErrUnknownOperation if the type is not in the catalog.
	GetConfig(ctx context.Context, operationType string) (*OperationConfig, error)
	List(ctx context.Context) ([]*OperationConfig, error)
}

// BalanceProvider reads an organization's current token balance.
// *ledger.Ledger satisfies this.
type BalanceProvider interface {
	GetBalance(ctx context.Context, orgID string) (int64, error)
}

// Estimate is the admission answer for one operation request.
// HasEnough gates on the worst case (MaxCost); BalanceAfter projects the
// balance using the likely cost (ExpectedCost) and may go negative when
// the org can cover the ceiling but probably won't need to.
type Estimate struct {
	OperationType string `json:"operation_type"`
	ExpectedCost  int64  `json:"expected_cost"`
	MaxCost       int64  `json:"max_cost"`
	HasEnough     bool   `json:"has_enough"`
	BalanceAfter  int64  `json:"balance_after"`
}

// Estimator prices operations against the catalog and an org's balance.
type Estimator struct {
	store    Store
	balances BalanceProvider
}

// NewEstimator creates an estimator over a catalog and a balance source.
func NewEstimator(store Store, balances BalanceProvider) *Estimator {
	return &Estimator{store: store, balances: balances}
}

// Estimate prices one operation for an organization.
//
// Unknown operation types return (nil, nil): there is no price to quote
// and the caller must deny admission. multiplier scales the whole price
// (batch sizes, premium tiers); values below 1 are treated as 1.
func (e *Estimator) Estimate(ctx context.Context, orgID, operationType, inputText string, multiplier int64) (*Estimate, error) {
	cfg, err := e.store.GetConfig(ctx, operationType)
	if errors.Is(err, ErrUnknownOperation) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if multiplier < 1 {
		multiplier = 1
	}

	var expected, max int64
	if !cfg.IsAI {
		expected = cfg.FixedCost * multiplier
		max = expected
	} else {
		input := int64(defaultInputEstimate)
		if inputText != "" {
			// Rough chars-per-token ratio of 3, rounded up.
			input = (int64(len(inputText)) + 2) / 3
		}
		max = (input + cfg.MaxOutputTokens) * multiplier
		// Typical responses use about 40% of the output ceiling.
		expectedOut := (cfg.MaxOutputTokens*2 + 4) / 5
		expected = (input + expectedOut) * multiplier
	}

	balance, err := e.balances.GetBalance(ctx, orgID)
	if err != nil {
		return nil, err
	}

	return &Estimate{
		OperationType: operationType,
		ExpectedCost:  expected,
		MaxCost:       max,
		HasEnough:     balance >= max,
		BalanceAfter:  balance - expected,
	}, nil
}

// Catalog returns all configured operations.
func (e *Estimator) Catalog(ctx context.Context) ([]*OperationConfig, error) {
	return e.store.List(ctx)
}
