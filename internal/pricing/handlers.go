package pricing

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hireflow/tokenpay/internal/logging"
	"github.com/hireflow/tokenpay/internal/metrics"
	"github.com/hireflow/tokenpay/internal/traces"
	"github.com/hireflow/tokenpay/internal/validation"
)

// Handlers provides HTTP handlers for cost estimation
type Handlers struct {
	estimator *Estimator
}

// NewHandlers creates estimation handlers
func NewHandlers(estimator *Estimator) *Handlers {
	return &Handlers{estimator: estimator}
}

// EstimateRequest is the request body for operation cost estimation
type EstimateRequest struct {
	OrganizationID string `json:"organization_id" binding:"required"`
	OperationType  string `json:"operation_type" binding:"required"`
	InputText      string `json:"input_text"`
	Multiplier     int64  `json:"multiplier"`
}

// Estimate handles POST /v1/operations/estimate
func (h *Handlers) Estimate(c *gin.Context) {
	var req EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "organization_id and operation_type are required",
		})
		return
	}
	if !validation.IsValidOrgID(req.OrganizationID) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": "organization_id must be a valid organization id",
		})
		return
	}

	ctx, span := traces.StartSpan(c.Request.Context(), "pricing.Estimate",
		traces.OrganizationID(req.OrganizationID),
		traces.OperationType(req.OperationType),
	)
	defer span.End()

	est, err := h.estimator.Estimate(ctx, req.OrganizationID,
		req.OperationType, req.InputText, req.Multiplier)
	if err != nil {
		logging.L(ctx).Error("estimate failed",
			"org_id", req.OrganizationID,
			"operation_type", req.OperationType,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "failed to estimate operation cost",
		})
		return
	}
	if est == nil {
		metrics.EstimatesTotal.WithLabelValues("unknown").Inc()
		c.JSON(http.StatusNotFound, gin.H{
			"admit":   false,
			"error":   "unknown_operation",
			"message": "operation type is not in the catalog",
		})
		return
	}

	decision := "deny"
	if est.HasEnough {
		decision = "admit"
	}
	metrics.EstimatesTotal.WithLabelValues(decision).Inc()

	c.JSON(http.StatusOK, gin.H{
		"admit":    est.HasEnough,
		"estimate": est,
	})
}

// Catalog handles GET /v1/operations
func (h *Handlers) Catalog(c *gin.Context) {
	configs, err := h.estimator.Catalog(c.Request.Context())
	if err != nil {
		logging.L(c.Request.Context()).Error("catalog read failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "failed to read operation catalog",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"operations": configs,
		"count":      len(configs),
	})
}
