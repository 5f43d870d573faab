// Package memory provides an in-process entitlement store for tests and local development.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/osse101/pointshop/internal/domain"
	"github.com/osse101/pointshop/internal/repository"
)

var errTxClosed = errors.New(domain.ErrMsgTxClosed)

// Store implements repository.Shop in memory.
//
// Transactions are serialized by txMu, so LockUserKey and row locks are
// implied. Writes inside a transaction apply immediately and are undone on
// rollback; readers outside it may observe them before commit.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	items     map[int64]*domain.CatalogItem
	purchases map[int64]*domain.Purchase
	grants    map[int64]*domain.UsageGrant

	nextItemID     int64
	nextPurchaseID int64
	nextGrantID    int64
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{
		items:     make(map[int64]*domain.CatalogItem),
		purchases: make(map[int64]*domain.Purchase),
		grants:    make(map[int64]*domain.UsageGrant),
	}
}

var _ repository.Shop = (*Store)(nil)

func fold(s string) string {
	// Casers are stateful; build one per call
	return cases.Fold().String(s)
}

// CreateItem stores a copy of item and assigns its ID
func (s *Store) CreateItem(ctx context.Context, item *domain.CatalogItem) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTaken(item.Name, 0) {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateName, item.Name)
	}
	s.nextItemID++
	item.ID = s.nextItemID
	s.items[item.ID] = item.Clone()
	return nil
}

// UpdateItem replaces the stored item
func (s *Store) UpdateItem(ctx context.Context, item *domain.CatalogItem) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[item.ID]; !ok {
		return domain.ErrItemNotFound
	}
	if s.nameTaken(item.Name, item.ID) {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateName, item.Name)
	}
	s.items[item.ID] = item.Clone()
	return nil
}

// DeleteItem removes the item with its grants and purchases
func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return domain.ErrItemNotFound
	}
	for gid, g := range s.grants {
		if g.ItemID == id {
			delete(s.grants, gid)
		}
	}
	for pid, p := range s.purchases {
		if p.ItemID == id {
			delete(s.purchases, pid)
		}
	}
	delete(s.items, id)
	return nil
}

// GetItem returns a copy of the item
func (s *Store) GetItem(ctx context.Context, id int64) (*domain.CatalogItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return item.Clone(), nil
}

// GetItemByName matches names case-insensitively
func (s *Store) GetItemByName(ctx context.Context, name string) (*domain.CatalogItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := fold(name)
	for _, item := range s.sortedItems() {
		if fold(item.Name) == want {
			return item.Clone(), nil
		}
	}
	return nil, domain.ErrItemNotFound
}

// FindEnabledItem prefers an exact case-insensitive name, then the lowest-id substring match
func (s *Store) FindEnabledItem(ctx context.Context, query string) (*domain.CatalogItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := fold(query)
	var partial *domain.CatalogItem
	for _, item := range s.sortedItems() {
		if !item.Enabled {
			continue
		}
		name := fold(item.Name)
		if name == want {
			return item.Clone(), nil
		}
		if partial == nil && strings.Contains(name, want) {
			partial = item
		}
	}
	if partial == nil {
		return nil, domain.ErrItemNotFound
	}
	return partial.Clone(), nil
}

// FindEnabledCommand returns the lowest-id enabled command item bound to command
func (s *Store) FindEnabledCommand(ctx context.Context, command string) (*domain.CatalogItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.sortedItems() {
		if item.Enabled && item.Kind == domain.KindCommand && item.Command == command {
			return item.Clone(), nil
		}
	}
	return nil, domain.ErrItemNotFound
}

// ListItems returns one page of the view
func (s *Store) ListItems(ctx context.Context, filter domain.ItemFilter, offset, limit int) ([]domain.CatalogItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.filterItems(filter)
	if filter.View == domain.ViewStorefront {
		sort.SliceStable(matched, func(i, j int) bool {
			if matched[i].Price != matched[j].Price {
				return matched[i].Price < matched[j].Price
			}
			return matched[i].ID < matched[j].ID
		})
	}

	out := make([]domain.CatalogItem, 0, limit)
	for i := offset; i < len(matched) && len(out) < limit; i++ {
		out = append(out, *matched[i].Clone())
	}
	return out, nil
}

// CountItems counts items in the view
func (s *Store) CountItems(ctx context.Context, filter domain.ItemFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.filterItems(filter)), nil
}

// ListPurchasesByUser returns the user's purchases by id
func (s *Store) ListPurchasesByUser(ctx context.Context, user domain.Identity) ([]domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Purchase
	for _, p := range s.purchases {
		if p.User == user {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListGrantsByUser returns the user's grants by id
func (s *Store) ListGrantsByUser(ctx context.Context, user domain.Identity) ([]domain.UsageGrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.UsageGrant
	for _, g := range s.grants {
		if g.User == user {
			out = append(out, copyGrant(g))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListGrants orders by last use descending with never-used grants last, then id descending
func (s *Store) ListGrants(ctx context.Context, offset, limit int) ([]domain.UsageGrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]domain.UsageGrant, 0, len(s.grants))
	for _, g := range s.grants {
		all = append(all, copyGrant(g))
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i].LastUsedAt, all[j].LastUsedAt
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return all[i].ID > all[j].ID
	})

	if offset >= len(all) {
		return []domain.UsageGrant{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// CountGrants counts all grants
func (s *Store) CountGrants(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.grants), nil
}

// BeginTx blocks until no other transaction is open
func (s *Store) BeginTx(ctx context.Context) (repository.ShopTx, error) {
	locked := make(chan struct{})
	go func() {
		s.txMu.Lock()
		close(locked)
	}()

	select {
	case <-locked:
		return &storeTx{s: s}, nil
	case <-ctx.Done():
		// Hand the lock back once the waiter gets it
		go func() {
			<-locked
			s.txMu.Unlock()
		}()
		return nil, ctx.Err()
	}
}

func (s *Store) nameTaken(name string, exceptID int64) bool {
	want := fold(name)
	for id, item := range s.items {
		if id != exceptID && fold(item.Name) == want {
			return true
		}
	}
	return false
}

func (s *Store) sortedItems() []*domain.CatalogItem {
	out := make([]*domain.CatalogItem, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) filterItems(filter domain.ItemFilter) []*domain.CatalogItem {
	var out []*domain.CatalogItem
	for _, item := range s.sortedItems() {
		if filter.View == domain.ViewStorefront && !item.Enabled {
			continue
		}
		if filter.Kind != "" && item.Kind != filter.Kind {
			continue
		}
		out = append(out, item)
	}
	return out
}

func copyGrant(g *domain.UsageGrant) domain.UsageGrant {
	out := *g
	if g.LastUsedAt != nil {
		t := *g.LastUsedAt
		out.LastUsedAt = &t
	}
	return out
}
