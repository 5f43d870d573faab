// Package authority adapts the user-authority (role level) store.
package authority

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/pointshop/internal/domain"
	"github.com/osse101/pointshop/internal/logger"
)

// Store is the authority collaborator contract. Unknown users have level 0.
type Store interface {
	GetAuthority(ctx context.Context, user domain.Identity) (int, error)
	SetAuthority(ctx context.Context, user domain.Identity, level int) error
}

// Guard bounds authority calls with a timeout
type Guard struct {
	inner   Store
	timeout time.Duration
}

// NewGuard wraps a Store
func NewGuard(inner Store, timeout time.Duration) *Guard {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Guard{inner: inner, timeout: timeout}
}

// GetAuthority returns the user's current level
func (g *Guard) GetAuthority(ctx context.Context, user domain.Identity) (int, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	level, err := g.inner.GetAuthority(callCtx, user)
	if err != nil {
		logger.FromContext(ctx).Error(LogMsgGetFailed, "user", user.String(), "error", err)
		return 0, fmt.Errorf(ErrMsgGetFailed, err)
	}
	return level, nil
}

// SetAuthority sets the user's level. Failures wrap domain.ErrAuthorityUpdateFailed.
func (g *Guard) SetAuthority(ctx context.Context, user domain.Identity, level int) error {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.inner.SetAuthority(callCtx, user, level); err != nil {
		logger.FromContext(ctx).Error(LogMsgSetFailed, "user", user.String(), "level", level, "error", err)
		return fmt.Errorf(ErrMsgSetFailedFormat, domain.ErrAuthorityUpdateFailed, err)
	}
	return nil
}

// MemoryStore keeps levels in a map
type MemoryStore struct {
	mu     sync.RWMutex
	levels map[domain.Identity]int
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{levels: make(map[domain.Identity]int)}
}

func (m *MemoryStore) GetAuthority(ctx context.Context, user domain.Identity) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.levels[user], nil
}

func (m *MemoryStore) SetAuthority(ctx context.Context, user domain.Identity, level int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.levels[user] = level
	return nil
}
