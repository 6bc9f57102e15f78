package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireflow/tokenpay/internal/testutil"
)

func TestPostgresStore_CreditAndBalance(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	store := NewPostgresStore(db)
	ctx := context.Background()

	// Unknown org reads as zero.
	balance, err := store.GetBalance(ctx, "org_pg_1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	// First credit inserts the row.
	require.NoError(t, store.Credit(ctx, "org_pg_1", 500, "pay_a"))
	balance, err = store.GetBalance(ctx, "org_pg_1")
	require.NoError(t, err)
	assert.Equal(t, int64(500), balance)

	// Second credit adds to it.
	require.NoError(t, store.Credit(ctx, "org_pg_1", 1000, "pay_b"))
	balance, err = store.GetBalance(ctx, "org_pg_1")
	require.NoError(t, err)
	assert.Equal(t, int64(1500), balance)
}

func TestPostgresStore_ConcurrentCredits(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	store := NewPostgresStore(db)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Credit(ctx, "org_pg_conc", 10, "pay_x")
		}()
	}
	wg.Wait()

	balance, err := store.GetBalance(ctx, "org_pg_conc")
	require.NoError(t, err)
	assert.Equal(t, int64(200), balance)
}
