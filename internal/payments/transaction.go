// Package payments implements invoice creation and gateway settlement.
//
// An organization buys a token package: we insert a pending transaction,
// hand the client signed gateway parameters, and wait for the gateway's
// server-to-server confirmation callback. The callback verifies the
// inbound signature, flips the transaction pending → success exactly once,
// and credits the token ledger for that one transition.
package payments

import (
	"context"
	"errors"
	"time"
)

// Transaction statuses
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

var (
	ErrNotFound         = errors.New("transaction not found")
	ErrValidation       = errors.New("invalid invoice request")
	ErrMalformedRequest = errors.New("malformed confirmation")
	ErrSignatureInvalid = errors.New("confirmation signature mismatch")
)

// Transaction is a token purchase moving through the payment gateway.
// Amount is the charge in currency units with exactly two decimal places,
// as formatted for the gateway; TokensAmount is what the organization's
// balance gains on settlement.
type Transaction struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	Amount         string     `json:"amount"`
	TokensAmount   int64      `json:"tokens_amount"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// Store persists payment transactions
type Store interface {
	Insert(ctx context.Context, tx *Transaction) error
	Get(ctx context.Context, id string) (*Transaction, error)
	ListByOrganization(ctx context.Context, orgID string, limit int) ([]*Transaction, error)
	// MarkSucceeded transitions a transaction pending → success. It reports
	// whether this call performed the transition: false means the transaction
	// was already settled (or failed), and the caller must not credit again.
	MarkSucceeded(ctx context.Context, id string) (bool, error)
}
