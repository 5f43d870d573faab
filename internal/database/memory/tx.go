package memory

import (
	"context"
	"time"

	"github.com/osse101/pointshop/internal/domain"
)

// storeTx holds the store's transaction lock until Commit or Rollback
type storeTx struct {
	s      *Store
	undo   []func()
	closed bool
}

func (t *storeTx) Commit(ctx context.Context) error {
	if t.closed {
		return errTxClosed
	}
	t.closed = true
	t.undo = nil
	t.s.txMu.Unlock()
	return nil
}

func (t *storeTx) Rollback(ctx context.Context) error {
	if t.closed {
		return errTxClosed
	}
	t.closed = true

	t.s.mu.Lock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.s.mu.Unlock()

	t.undo = nil
	t.s.txMu.Unlock()
	return nil
}

// LockUserKey is satisfied by the store-wide transaction lock
func (t *storeTx) LockUserKey(ctx context.Context, user domain.Identity, key string) error {
	if t.closed {
		return errTxClosed
	}
	return nil
}

func (t *storeTx) GetItemForUpdate(ctx context.Context, id int64) (*domain.CatalogItem, error) {
	if t.closed {
		return nil, errTxClosed
	}
	return t.s.GetItem(ctx, id)
}

func (t *storeTx) InsertPurchase(ctx context.Context, p *domain.Purchase) error {
	if t.closed {
		return errTxClosed
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if _, ok := t.s.items[p.ItemID]; !ok {
		return domain.ErrItemNotFound
	}
	t.s.nextPurchaseID++
	p.ID = t.s.nextPurchaseID
	stored := *p
	t.s.purchases[p.ID] = &stored

	id := p.ID
	t.undo = append(t.undo, func() { delete(t.s.purchases, id) })
	return nil
}

func (t *storeTx) InsertGrant(ctx context.Context, g *domain.UsageGrant) error {
	if t.closed {
		return errTxClosed
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if _, ok := t.s.purchases[g.PurchaseID]; !ok {
		return domain.ErrNotFound
	}
	t.s.nextGrantID++
	g.ID = t.s.nextGrantID
	stored := copyGrant(g)
	t.s.grants[g.ID] = &stored

	id := g.ID
	t.undo = append(t.undo, func() { delete(t.s.grants, id) })
	return nil
}

func (t *storeTx) DecrementStock(ctx context.Context, itemID int64) (bool, error) {
	if t.closed {
		return false, errTxClosed
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	item, ok := t.s.items[itemID]
	if !ok {
		return false, domain.ErrItemNotFound
	}
	if item.Stock <= 0 {
		return false, nil
	}

	prev := item.Clone()
	item.Stock--
	item.UpdatedAt = time.Now().UTC()
	t.undo = append(t.undo, func() {
		if cur, ok := t.s.items[itemID]; ok {
			cur.Stock = prev.Stock
			cur.UpdatedAt = prev.UpdatedAt
		}
	})
	return true, nil
}

func (t *storeTx) GetGrantsForUpdate(ctx context.Context, user domain.Identity, itemID int64) ([]domain.UsageGrant, error) {
	if t.closed {
		return nil, errTxClosed
	}
	grants, err := t.s.ListGrantsByUser(ctx, user)
	if err != nil {
		return nil, err
	}
	out := grants[:0]
	for _, g := range grants {
		if g.ItemID == itemID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (t *storeTx) UpdateGrant(ctx context.Context, g *domain.UsageGrant) error {
	if t.closed {
		return errTxClosed
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	cur, ok := t.s.grants[g.ID]
	if !ok {
		return domain.ErrNotFound
	}
	prev := copyGrant(cur)
	next := copyGrant(g)
	t.s.grants[g.ID] = &next
	t.undo = append(t.undo, func() { t.s.grants[prev.ID] = &prev })
	return nil
}
