package ledger

import (
	"context"
	"sync"
	"time"
)

// creditEntry records a single credit for inspection in tests.
type creditEntry struct {
	OrgID     string
	Delta     int64
	Reference string
	CreatedAt time.Time
}

// MemoryStore is an in-memory ledger store for demo/development mode.
type MemoryStore struct {
	balances map[string]int64
	entries  []creditEntry
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory ledger store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		balances: make(map[string]int64),
	}
}

func (m *MemoryStore) GetBalance(ctx context.Context, orgID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balances[orgID], nil
}

func (m *MemoryStore) Credit(ctx context.Context, orgID string, delta int64, reference string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.balances[orgID] += delta
	m.entries = append(m.entries, creditEntry{
		OrgID:     orgID,
		Delta:     delta,
		Reference: reference,
		CreatedAt: time.Now(),
	})
	return nil
}

// SetBalance seeds a balance directly. Test helper only; production
// balances move exclusively through Credit and the external debit path.
func (m *MemoryStore) SetBalance(orgID string, balance int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[orgID] = balance
}

// CreditCount returns how many credits were applied for an organization.
func (m *MemoryStore) CreditCount(orgID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, e := range m.entries {
		if e.OrgID == orgID {
			n++
		}
	}
	return n
}
