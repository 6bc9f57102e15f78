package payments

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hireflow/tokenpay/internal/logging"
	"github.com/hireflow/tokenpay/internal/metrics"
	"github.com/hireflow/tokenpay/internal/validation"
)

// Handlers provides HTTP handlers for payment operations
type Handlers struct {
	service *Service
}

// NewHandlers creates payment handlers
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// CreateInvoiceRequest is the request body for invoice creation
type CreateInvoiceRequest struct {
	OrganizationID string `json:"organization_id" binding:"required"`
	Amount         string `json:"amount" binding:"required"`
	Tokens         int64  `json:"tokens" binding:"required"`
}

// CreateInvoice handles POST /v1/payments/invoices
func (h *Handlers) CreateInvoice(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "organization_id, amount and tokens are required",
		})
		return
	}

	if errs := validation.Validate(
		validation.ValidOrgID("organization_id", req.OrganizationID),
		validation.ValidAmount("amount", req.Amount),
		validation.Positive("tokens", req.Tokens),
	); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": errs.Error(),
			"details": errs,
		})
		return
	}

	tx, params, err := h.service.CreateInvoice(c.Request.Context(),
		req.OrganizationID, req.Amount, req.Tokens)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "validation_failed",
				"message": err.Error(),
			})
			return
		}
		logging.L(c.Request.Context()).Error("invoice creation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "failed to create invoice",
		})
		return
	}

	metrics.InvoicesCreatedTotal.Inc()
	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"transaction": tx,
		"params":      params,
	})
}

// Result handles GET and POST /v1/payments/result, the gateway's
// server-to-server confirmation callback. The gateway speaks plain text:
// "OK<InvId>" acknowledges, anything else is treated as failure and the
// delivery is retried.
func (h *Handlers) Result(c *gin.Context) {
	conf := Confirmation{
		OutSum:    resultParam(c, "OutSum"),
		InvID:     resultParam(c, "InvId"),
		Signature: resultParam(c, "SignatureValue"),
		OrgID:     resultParam(c, ParamOrgID),
		Tokens:    resultParam(c, ParamTokens),
	}

	ack, settled, err := h.service.HandleConfirmation(c.Request.Context(), conf)
	if err != nil {
		switch {
		case errors.Is(err, ErrMalformedRequest),
			errors.Is(err, ErrSignatureInvalid),
			errors.Is(err, ErrNotFound):
			metrics.ConfirmationsTotal.WithLabelValues("rejected").Inc()
			c.String(http.StatusBadRequest, "Failed")
		default:
			logging.L(c.Request.Context()).Error("confirmation processing failed",
				"invoice_id", conf.InvID,
				"error", err,
			)
			metrics.ConfirmationsTotal.WithLabelValues("error").Inc()
			c.String(http.StatusInternalServerError, "Failed")
		}
		return
	}

	if settled {
		metrics.ConfirmationsTotal.WithLabelValues("settled").Inc()
		if tokens, err := strconv.ParseInt(conf.Tokens, 10, 64); err == nil {
			metrics.TokensCreditedTotal.Add(float64(tokens))
		}
	} else {
		metrics.ConfirmationsTotal.WithLabelValues("duplicate").Inc()
	}
	c.String(http.StatusOK, ack)
}

// Get handles GET /v1/payments/:id
func (h *Handlers) Get(c *gin.Context) {
	id := c.Param("id")

	tx, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "transaction not found",
			})
			return
		}
		logging.L(c.Request.Context()).Error("transaction lookup failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "failed to get transaction",
		})
		return
	}

	c.JSON(http.StatusOK, tx)
}

// ListByOrganization handles GET /v1/organizations/:org/payments
func (h *Handlers) ListByOrganization(c *gin.Context) {
	orgID := c.Param("org")

	limit := 50
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	txs, err := h.service.ListByOrganization(c.Request.Context(), orgID, limit)
	if err != nil {
		logging.L(c.Request.Context()).Error("transaction list failed", "org_id", orgID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "failed to list transactions",
		})
		return
	}
	if txs == nil {
		txs = []*Transaction{}
	}

	c.JSON(http.StatusOK, gin.H{
		"organization_id": orgID,
		"transactions":    txs,
		"count":           len(txs),
	})
}

// Success handles GET /v1/payments/success, the browser redirect after a
// completed payment. Informational only: settlement happens on the Result
// callback, never here.
func (h *Handlers) Success(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"invoice_id": resultParam(c, "InvId"),
		"message":    "payment received, tokens will be credited shortly",
	})
}

// Fail handles GET /v1/payments/fail, the browser redirect after a
// cancelled or declined payment. No state changes.
func (h *Handlers) Fail(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "failed",
		"invoice_id": resultParam(c, "InvId"),
		"message":    "payment was not completed",
	})
}

// resultParam reads a gateway parameter from either the query string or a
// form-encoded body; gateways deliver callbacks both ways.
func resultParam(c *gin.Context, name string) string {
	return c.Request.FormValue(name)
}
