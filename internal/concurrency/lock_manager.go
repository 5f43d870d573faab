package concurrency

import (
	"sync"

	"github.com/osse101/pointshop/internal/domain"
)

// LockManager handles named locks
type LockManager struct {
	locks sync.Map
}

// NewLockManager creates a new LockManager
func NewLockManager() *LockManager {
	return &LockManager{}
}

// GetLock returns a mutex for the given key
func (lm *LockManager) GetLock(key string) *sync.Mutex {
	lock, _ := lm.locks.LoadOrStore(key, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// LockUser acquires the lock for a user identity and returns its release func.
// Balance reads and debits for one identity are serialized through it.
func (lm *LockManager) LockUser(id domain.Identity) func() {
	mu := lm.GetLock(id.String())
	mu.Lock()
	return mu.Unlock
}
