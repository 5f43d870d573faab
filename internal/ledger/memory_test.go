package ledger

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLedger_ConcurrentDebits(t *testing.T) {
	l := NewMemoryLedger(100)

	var ok int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Debit(context.Background(), alice, 30); err == nil {
				atomic.AddInt32(&ok, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(3), ok)
	balance, err := l.GetBalance(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance)
}
