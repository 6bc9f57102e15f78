// Package ledger tracks organizations' prepaid token balances.
//
// Flow:
//  1. Organization buys a token package through the payment gateway
//  2. The confirmation handler credits the balance (exactly once per invoice)
//  3. Metered operations debit the balance on their own execution path
//
// This package owns credits and reads only. Debiting, and keeping the
// balance non-negative under debit, belongs to the operation-execution
// path, which settles against the same store.
package ledger

import (
	"context"
	"errors"
)

var (
	ErrInvalidDelta = errors.New("credit delta must be positive")
)

// Store persists organization token balances
type Store interface {
	// GetBalance returns the current balance; unknown organizations read as 0.
	GetBalance(ctx context.Context, orgID string) (int64, error)
	// Credit adds delta tokens to the balance as a single store-level
	// add-delta operation. Implementations must not read-modify-write.
	Credit(ctx context.Context, orgID string, delta int64, reference string) error
}

// Ledger manages organization token balances
type Ledger struct {
	store Store
}

// New creates a new ledger
func New(store Store) *Ledger {
	return &Ledger{store: store}
}

// GetBalance returns an organization's current token balance
func (l *Ledger) GetBalance(ctx context.Context, orgID string) (int64, error) {
	return l.store.GetBalance(ctx, orgID)
}

// Credit adds tokens to an organization's balance. Only the payment
// confirmation path calls this; the reference is the settled invoice id.
func (l *Ledger) Credit(ctx context.Context, orgID string, delta int64, reference string) error {
	if delta <= 0 {
		return ErrInvalidDelta
	}
	return l.store.Credit(ctx, orgID, delta, reference)
}
