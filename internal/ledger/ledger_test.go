package ledger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBalance_UnknownOrgReadsZero(t *testing.T) {
	l := New(NewMemoryStore())

	balance, err := l.GetBalance(context.Background(), "org_never_seen")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestCredit_AddsDelta(t *testing.T) {
	store := NewMemoryStore()
	l := New(store)
	ctx := context.Background()

	require.NoError(t, l.Credit(ctx, "org_1", 500, "pay_a"))
	require.NoError(t, l.Credit(ctx, "org_1", 1000, "pay_b"))

	balance, err := l.GetBalance(ctx, "org_1")
	require.NoError(t, err)
	assert.Equal(t, int64(1500), balance)
	assert.Equal(t, 2, store.CreditCount("org_1"))
}

func TestCredit_RejectsNonPositiveDelta(t *testing.T) {
	l := New(NewMemoryStore())
	ctx := context.Background()

	assert.ErrorIs(t, l.Credit(ctx, "org_1", 0, "pay_a"), ErrInvalidDelta)
	assert.ErrorIs(t, l.Credit(ctx, "org_1", -100, "pay_a"), ErrInvalidDelta)

	balance, err := l.GetBalance(ctx, "org_1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestCredit_IsolatedPerOrganization(t *testing.T) {
	l := New(NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, l.Credit(ctx, "org_a", 300, "pay_a"))
	require.NoError(t, l.Credit(ctx, "org_b", 700, "pay_b"))

	balA, err := l.GetBalance(ctx, "org_a")
	require.NoError(t, err)
	balB, err := l.GetBalance(ctx, "org_b")
	require.NoError(t, err)

	assert.Equal(t, int64(300), balA)
	assert.Equal(t, int64(700), balB)
}

func TestCredit_ConcurrentCreditsAllLand(t *testing.T) {
	l := New(NewMemoryStore())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Credit(ctx, "org_1", 10, "pay_x")
		}()
	}
	wg.Wait()

	balance, err := l.GetBalance(ctx, "org_1")
	require.NoError(t, err)
	assert.Equal(t, int64(500), balance)
}

func TestGetBalanceHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := NewMemoryStore()
	store.SetBalance("org_1", 2500)
	h := NewHandlers(New(store))

	router := gin.New()
	router.GET("/v1/organizations/:org/balance", h.GetBalance)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/organizations/org_1/balance", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token_balance":2500`)
	assert.Contains(t, w.Body.String(), `"organization_id":"org_1"`)
}
