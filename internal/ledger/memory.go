package ledger

import (
	"context"
	"sync"

	"github.com/osse101/pointshop/internal/domain"
)

// MemoryLedger keeps balances in a map. Unknown users start at the default balance.
type MemoryLedger struct {
	mu             sync.RWMutex
	balances       map[domain.Identity]int64
	defaultBalance int64
}

// NewMemoryLedger creates a MemoryLedger
func NewMemoryLedger(defaultBalance int64) *MemoryLedger {
	return &MemoryLedger{
		balances:       make(map[domain.Identity]int64),
		defaultBalance: defaultBalance,
	}
}

func (m *MemoryLedger) GetBalance(ctx context.Context, user domain.Identity) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balanceLocked(user), nil
}

func (m *MemoryLedger) SetBalance(ctx context.Context, user domain.Identity, balance int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[user] = balance
	return nil
}

func (m *MemoryLedger) Debit(ctx context.Context, user domain.Identity, amount int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.balanceLocked(user)
	if current < amount {
		return 0, domain.ErrInsufficientFunds
	}
	m.balances[user] = current - amount
	return current - amount, nil
}

func (m *MemoryLedger) balanceLocked(user domain.Identity) int64 {
	if b, ok := m.balances[user]; ok {
		return b
	}
	return m.defaultBalance
}
