package ledger

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hireflow/tokenpay/internal/logging"
)

// Handlers provides HTTP handlers for balance queries
type Handlers struct {
	ledger *Ledger
}

// NewHandlers creates balance query handlers
func NewHandlers(ledger *Ledger) *Handlers {
	return &Handlers{ledger: ledger}
}

// GetBalance handles GET /v1/organizations/:org/balance
func (h *Handlers) GetBalance(c *gin.Context) {
	orgID := c.Param("org")

	balance, err := h.ledger.GetBalance(c.Request.Context(), orgID)
	if err != nil {
		logging.L(c.Request.Context()).Error("failed to read balance",
			"org_id", orgID,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "failed to read balance",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"organization_id": orgID,
		"token_balance":   balance,
	})
}
