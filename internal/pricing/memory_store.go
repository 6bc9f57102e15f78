package pricing

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory operation catalog for demo/development mode.
type MemoryStore struct {
	configs map[string]*OperationConfig
	mu      sync.RWMutex
}

// NewMemoryStore creates a catalog seeded with the default operations.
func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{
		configs: make(map[string]*OperationConfig),
	}
	for _, cfg := range DefaultCatalog() {
		m.configs[cfg.OperationType] = cfg
	}
	return m
}

func (m *MemoryStore) GetConfig(ctx context.Context, operationType string) (*OperationConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cfg, ok := m.configs[operationType]
	if !ok {
		return nil, ErrUnknownOperation
	}
	cp := *cfg
	return &cp, nil
}

func (m *MemoryStore) List(ctx context.Context) ([]*OperationConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*OperationConfig, 0, len(m.configs))
	for _, cfg := range m.configs {
		cp := *cfg
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OperationType < out[j].OperationType
	})
	return out, nil
}

// SetConfig adds or replaces a catalog entry. Test/demo helper.
func (m *MemoryStore) SetConfig(cfg *OperationConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *cfg
	m.configs[cfg.OperationType] = &cp
}

// DefaultCatalog is the built-in operation catalog used in memory mode
// and seeded into the database by migrations.
func DefaultCatalog() []*OperationConfig {
	return []*OperationConfig{
		{OperationType: "vacancy_publish", IsAI: false, FixedCost: 100},
		{OperationType: "contact_reveal", IsAI: false, FixedCost: 50},
		{OperationType: "resume_match", IsAI: true, MaxOutputTokens: 2000,
			ModelName: "gpt-4o", Provider: "openai"},
		{OperationType: "vacancy_generate", IsAI: true, MaxOutputTokens: 1500,
			ModelName: "gpt-4o-mini", Provider: "openai"},
		{OperationType: "candidate_screening", IsAI: true, MaxOutputTokens: 3000,
			ModelName: "claude-sonnet-4-5", Provider: "anthropic"},
	}
}
