package payments

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/hireflow/tokenpay/internal/idgen"
	"github.com/hireflow/tokenpay/internal/logging"
	"github.com/hireflow/tokenpay/internal/money"
	"github.com/hireflow/tokenpay/internal/signature"
	"github.com/hireflow/tokenpay/internal/traces"
	"github.com/hireflow/tokenpay/internal/validation"
)

// Custom shop parameter names carried through the gateway and echoed back
// in the confirmation callback. Part of the signed payload on both legs.
const (
	ParamOrgID  = "shp_org_id"
	ParamTokens = "shp_tokens"
)

// LedgerService credits token balances on settlement.
type LedgerService interface {
	Credit(ctx context.Context, orgID string, delta int64, reference string) error
}

// GatewayParams is everything the client needs to redirect the buyer to the
// payment gateway. Field names and casing follow the gateway's form fields.
type GatewayParams struct {
	MerchantLogin  string `json:"MerchantLogin"`
	OutSum         string `json:"OutSum"`
	InvID          string `json:"InvId"`
	Description    string `json:"Description"`
	SignatureValue string `json:"SignatureValue"`
	IsTest         string `json:"IsTest"`
	ShpOrgID       string `json:"shp_org_id"`
	ShpTokens      string `json:"shp_tokens"`
}

// Confirmation is the gateway's server-to-server settlement callback,
// decoded but not yet authenticated. All fields arrive as strings and the
// signature is computed over them exactly as received.
type Confirmation struct {
	OutSum    string
	InvID     string
	Signature string
	OrgID     string
	Tokens    string
}

// Service implements invoice creation and confirmation settlement.
type Service struct {
	store    Store
	codec    *signature.Codec
	ledger   LedgerService
	testMode bool
}

// NewService creates a payment service. testMode marks outbound invoices
// as gateway test payments (no real charge).
func NewService(store Store, codec *signature.Codec, ledger LedgerService, testMode bool) *Service {
	return &Service{
		store:    store,
		codec:    codec,
		ledger:   ledger,
		testMode: testMode,
	}
}

// CreateInvoice records a pending transaction and returns the signed
// parameter set for the gateway redirect. Each call creates a fresh
// invoice; abandoned invoices simply stay pending.
func (s *Service) CreateInvoice(ctx context.Context, orgID, amount string, tokens int64) (*Transaction, *GatewayParams, error) {
	ctx, span := traces.StartSpan(ctx, "payments.CreateInvoice",
		traces.OrganizationID(orgID),
		traces.Amount(amount),
		traces.Tokens(tokens),
	)
	defer span.End()

	if !validation.IsValidOrgID(orgID) {
		return nil, nil, fmt.Errorf("%w: organization id", ErrValidation)
	}
	cents, ok := money.Parse(amount)
	if !ok || cents == 0 {
		return nil, nil, fmt.Errorf("%w: amount must be a positive decimal", ErrValidation)
	}
	if tokens <= 0 {
		return nil, nil, fmt.Errorf("%w: tokens must be greater than zero", ErrValidation)
	}

	tx := &Transaction{
		ID:             idgen.WithPrefix("pay_"),
		OrganizationID: orgID,
		Amount:         money.Format(cents),
		TokensAmount:   tokens,
		Status:         StatusPending,
		CreatedAt:      time.Now(),
	}
	if err := s.store.Insert(ctx, tx); err != nil {
		return nil, nil, fmt.Errorf("failed to record invoice: %w", err)
	}

	custom := map[string]string{
		ParamOrgID:  orgID,
		ParamTokens: strconv.FormatInt(tokens, 10),
	}
	isTest := "0"
	if s.testMode {
		isTest = "1"
	}

	params := &GatewayParams{
		MerchantLogin:  s.codec.Login(),
		OutSum:         tx.Amount,
		InvID:          tx.ID,
		Description:    fmt.Sprintf("Token package: %d tokens", tokens),
		SignatureValue: s.codec.SignOutbound(tx.Amount, tx.ID, custom),
		IsTest:         isTest,
		ShpOrgID:       orgID,
		ShpTokens:      custom[ParamTokens],
	}

	logging.L(ctx).Info("invoice created",
		"invoice_id", tx.ID,
		"org_id", orgID,
		"amount", tx.Amount,
		"tokens", tokens,
	)
	return tx, params, nil
}

// HandleConfirmation settles a gateway confirmation callback.
//
// The returned ack is the literal body the gateway expects ("OK" + invoice
// id). settled reports whether this delivery performed the pending → success
// transition; duplicates get the same ack with settled=false and no second
// credit. An error means the callback was rejected (validation or signature,
// the caller answers 400) or the store failed (500, the gateway will retry
// and the conditional transition keeps the retry safe).
func (s *Service) HandleConfirmation(ctx context.Context, conf Confirmation) (ack string, settled bool, err error) {
	ctx, span := traces.StartSpan(ctx, "payments.HandleConfirmation",
		traces.InvoiceID(conf.InvID),
		traces.OrganizationID(conf.OrgID),
	)
	defer span.End()

	// Reject obviously broken callbacks before any signature work.
	if conf.OutSum == "" || conf.InvID == "" || conf.Signature == "" ||
		conf.OrgID == "" || conf.Tokens == "" {
		return "", false, fmt.Errorf("%w: missing required field", ErrMalformedRequest)
	}
	tokens, perr := strconv.ParseInt(conf.Tokens, 10, 64)
	if perr != nil || tokens <= 0 {
		return "", false, fmt.Errorf("%w: tokens", ErrMalformedRequest)
	}

	want := s.codec.SignInbound(conf.OutSum, conf.InvID, map[string]string{
		ParamOrgID:  conf.OrgID,
		ParamTokens: conf.Tokens,
	})
	if !signature.Verify(conf.Signature, want) {
		logging.L(ctx).Warn("confirmation signature mismatch",
			"invoice_id", conf.InvID,
			"org_id", conf.OrgID,
		)
		return "", false, ErrSignatureInvalid
	}

	changed, err := s.store.MarkSucceeded(ctx, conf.InvID)
	if err != nil {
		return "", false, fmt.Errorf("failed to settle transaction: %w", err)
	}

	ack = "OK" + conf.InvID
	if !changed {
		// Duplicate delivery of an already-settled invoice. Acknowledge so
		// the gateway stops retrying; the balance was credited the first time.
		logging.L(ctx).Info("duplicate confirmation acknowledged",
			"invoice_id", conf.InvID,
		)
		return ack, false, nil
	}

	if err := s.ledger.Credit(ctx, conf.OrgID, tokens, conf.InvID); err != nil {
		// The status transition already happened and is not rolled back.
		// Surfacing the error makes the gateway redeliver; the retry finds
		// the transaction settled and acks without touching the balance, so
		// this invoice needs operator attention.
		logging.L(ctx).Error("credit failed after settlement",
			"invoice_id", conf.InvID,
			"org_id", conf.OrgID,
			"tokens", tokens,
			"error", err,
		)
		return "", false, fmt.Errorf("failed to credit tokens: %w", err)
	}

	logging.L(ctx).Info("payment settled",
		"invoice_id", conf.InvID,
		"org_id", conf.OrgID,
		"tokens", tokens,
	)
	return ack, true, nil
}

// Get returns a transaction by id.
func (s *Service) Get(ctx context.Context, id string) (*Transaction, error) {
	return s.store.Get(ctx, id)
}

// ListByOrganization returns an organization's recent transactions.
func (s *Service) ListByOrganization(ctx context.Context, orgID string, limit int) ([]*Transaction, error) {
	return s.store.ListByOrganization(ctx, orgID, limit)
}
