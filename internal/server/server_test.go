package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireflow/tokenpay/internal/config"
	"github.com/hireflow/tokenpay/internal/signature"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:              "8080",
		Env:               "development",
		LogLevel:          "error",
		MerchantLogin:     "hireflow",
		MerchantPassword1: "secret-one",
		MerchantPassword2: "secret-two",
		PaymentTestMode:   true,
		RateLimitRPM:      100000,
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv, err := New(testConfig())
	require.NoError(t, err)
	return srv
}

func do(srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		data, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	w := do(srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)

	w = do(srv, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Readiness flips on in Run(); before that the server reports not ready.
	w = do(srv, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	// Generate at least one observation so the counter has a child to export.
	do(srv, http.MethodGet, "/health", nil)

	w := do(srv, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tokenpay_http_requests_total")
}

func TestInfoEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := do(srv, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tokenpay")
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t)

	w := do(srv, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-from-lb")
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	assert.Equal(t, "req-from-lb", w.Header().Get("X-Request-ID"))
}

func TestOrgParamValidation(t *testing.T) {
	srv := newTestServer(t)

	w := do(srv, http.MethodGet, "/v1/organizations/org%20bad%21/balance", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_organization")
}

// invoiceParams pulls the gateway parameter set out of an invoice response.
type invoiceParams struct {
	OutSum    string `json:"OutSum"`
	InvID     string `json:"InvId"`
	ShpOrgID  string `json:"shp_org_id"`
	ShpTokens string `json:"shp_tokens"`
}

func createInvoice(t *testing.T, srv *Server, org, amount string, tokens int64) invoiceParams {
	t.Helper()

	w := do(srv, http.MethodPost, "/v1/payments/invoices", gin.H{
		"organization_id": org,
		"amount":          amount,
		"tokens":          tokens,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Params invoiceParams `json:"params"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Params
}

// gatewayCallback builds the query string the gateway would send after a
// completed payment, signed with the second merchant password.
func gatewayCallback(p invoiceParams) string {
	codec := signature.NewCodec("hireflow", "secret-one", "secret-two")
	sig := codec.SignInbound(p.OutSum, p.InvID, map[string]string{
		"shp_org_id": p.ShpOrgID,
		"shp_tokens": p.ShpTokens,
	})

	v := url.Values{}
	v.Set("OutSum", p.OutSum)
	v.Set("InvId", p.InvID)
	v.Set("SignatureValue", sig)
	v.Set("shp_org_id", p.ShpOrgID)
	v.Set("shp_tokens", p.ShpTokens)
	return v.Encode()
}

func getBalance(t *testing.T, srv *Server, org string) int64 {
	t.Helper()

	w := do(srv, http.MethodGet, "/v1/organizations/"+org+"/balance", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		TokenBalance int64 `json:"token_balance"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.TokenBalance
}

func TestPurchaseFlow(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, int64(0), getBalance(t, srv, "org_1"))

	params := createInvoice(t, srv, "org_1", "499.00", 1000)

	// Gateway confirms the payment.
	w := do(srv, http.MethodGet, "/v1/payments/result?"+gatewayCallback(params), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK"+params.InvID, w.Body.String())

	assert.Equal(t, int64(1000), getBalance(t, srv, "org_1"))

	// The transaction is now settled.
	w = do(srv, http.MethodGet, "/v1/payments/"+params.InvID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"success"`)

	// And the estimator admits an affordable operation.
	w = do(srv, http.MethodPost, "/v1/operations/estimate", gin.H{
		"organization_id": "org_1",
		"operation_type":  "vacancy_publish",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"admit":true`)
}

func TestPurchaseFlow_ConcurrentConfirmations(t *testing.T) {
	srv := newTestServer(t)

	// Seed a balance through a first settled purchase.
	first := createInvoice(t, srv, "org_1", "250.00", 500)
	w := do(srv, http.MethodGet, "/v1/payments/result?"+gatewayCallback(first), nil)
	require.Equal(t, http.StatusOK, w.Code)

	// A second invoice gets its confirmation delivered many times at once.
	second := createInvoice(t, srv, "org_1", "499.00", 1000)
	callback := "/v1/payments/result?" + gatewayCallback(second)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, callback, nil)
			srv.Router().ServeHTTP(w, req)
		}()
	}
	wg.Wait()

	// 500 + 1000, not 500 + N*1000.
	assert.Equal(t, int64(1500), getBalance(t, srv, "org_1"))
}

func TestResultRejectsForgedCallback(t *testing.T) {
	srv := newTestServer(t)

	params := createInvoice(t, srv, "org_1", "499.00", 1000)

	// Sign with the wrong secret.
	codec := signature.NewCodec("hireflow", "secret-one", "wrong-secret")
	sig := codec.SignInbound(params.OutSum, params.InvID, map[string]string{
		"shp_org_id": params.ShpOrgID,
		"shp_tokens": params.ShpTokens,
	})
	v := url.Values{}
	v.Set("OutSum", params.OutSum)
	v.Set("InvId", params.InvID)
	v.Set("SignatureValue", sig)
	v.Set("shp_org_id", params.ShpOrgID)
	v.Set("shp_tokens", params.ShpTokens)

	w := do(srv, http.MethodGet, "/v1/payments/result?"+v.Encode(), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Failed", w.Body.String())
	assert.Equal(t, int64(0), getBalance(t, srv, "org_1"))
}

func TestEstimateDeniesUnknownOperation(t *testing.T) {
	srv := newTestServer(t)

	w := do(srv, http.MethodPost, "/v1/operations/estimate", gin.H{
		"organization_id": "org_1",
		"operation_type":  "mind_reading",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"admit":false`)
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t)

	w := do(srv, http.MethodGet, "/health", nil)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}
