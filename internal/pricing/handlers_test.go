package pricing

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireflow/tokenpay/internal/ledger"
)

func setupRouter(t *testing.T) (*gin.Engine, *ledger.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	balances := ledger.NewMemoryStore()
	h := NewHandlers(NewEstimator(NewMemoryStore(), ledger.New(balances)))

	router := gin.New()
	router.POST("/v1/operations/estimate", h.Estimate)
	router.GET("/v1/operations", h.Catalog)
	return router, balances
}

func postEstimate(router *gin.Engine, body any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/operations/estimate", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestEstimateHandler_Admits(t *testing.T) {
	router, balances := setupRouter(t)
	balances.SetBalance("org_1", 1000)

	w := postEstimate(router, gin.H{
		"organization_id": "org_1",
		"operation_type":  "vacancy_publish",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Admit    bool      `json:"admit"`
		Estimate *Estimate `json:"estimate"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Admit)
	require.NotNil(t, resp.Estimate)
	assert.Equal(t, int64(100), resp.Estimate.MaxCost)
	assert.Equal(t, int64(900), resp.Estimate.BalanceAfter)
}

func TestEstimateHandler_DeniesOnLowBalance(t *testing.T) {
	router, _ := setupRouter(t)

	w := postEstimate(router, gin.H{
		"organization_id": "org_broke",
		"operation_type":  "resume_match",
		"input_text":      "senior backend engineer, 7 years of experience",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Admit    bool      `json:"admit"`
		Estimate *Estimate `json:"estimate"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Admit)
	require.NotNil(t, resp.Estimate)
	assert.Negative(t, resp.Estimate.BalanceAfter)
}

func TestEstimateHandler_UnknownOperation(t *testing.T) {
	router, _ := setupRouter(t)

	w := postEstimate(router, gin.H{
		"organization_id": "org_1",
		"operation_type":  "teleport_candidate",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"admit":false`)
	assert.Contains(t, w.Body.String(), "unknown_operation")
}

func TestEstimateHandler_Validation(t *testing.T) {
	router, _ := setupRouter(t)

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing org", gin.H{"operation_type": "vacancy_publish"}},
		{"missing operation", gin.H{"organization_id": "org_1"}},
		{"bad org id", gin.H{"organization_id": "org 1!", "operation_type": "vacancy_publish"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postEstimate(router, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestCatalogHandler(t *testing.T) {
	router, _ := setupRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/operations", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "vacancy_publish")
	assert.Contains(t, w.Body.String(), "resume_match")
	assert.Contains(t, w.Body.String(), `"count":5`)
}
