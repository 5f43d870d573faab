package gate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/pointshop/internal/catalog"
	"github.com/osse101/pointshop/internal/database/memory"
	"github.com/osse101/pointshop/internal/domain"
	"github.com/osse101/pointshop/internal/event"
	"github.com/osse101/pointshop/internal/testing/leaktest"
)

var (
	alice = domain.NewIdentity("twitch", "alice")
	bob   = domain.NewIdentity("twitch", "bob")
	t0    = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fixture struct {
	store *memory.Store
	bus   *event.MemoryBus
	clock *fakeClock
	gate  *Gate
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: memory.NewStore(),
		bus:   event.NewMemoryBus(),
		clock: &fakeClock{now: t0},
	}
	f.gate = New(f.store, f.bus, WithClock(f.clock.Now), WithCache(16, time.Hour))
	return f
}

func (f *fixture) addCommand(t *testing.T, command string, maxUses, cooldown int) *domain.CatalogItem {
	t.Helper()
	item := &domain.CatalogItem{
		Name:            command + " pass",
		Kind:            domain.KindCommand,
		Command:         command,
		MaxUses:         maxUses,
		CooldownMinutes: cooldown,
		Enabled:         true,
		Stock:           domain.UnlimitedStock,
	}
	require.NoError(t, f.store.CreateItem(context.Background(), item))
	return item
}

// grant records a purchase of item for user with the given uses left
func (f *fixture) grant(t *testing.T, user domain.Identity, item *domain.CatalogItem, remaining int) *domain.UsageGrant {
	t.Helper()
	ctx := context.Background()
	tx, err := f.store.BeginTx(ctx)
	require.NoError(t, err)

	p := &domain.Purchase{ItemID: item.ID, User: user, PurchasedAt: t0}
	require.NoError(t, tx.InsertPurchase(ctx, p))
	g := &domain.UsageGrant{PurchaseID: p.ID, User: user, ItemID: item.ID, Command: item.Command, RemainingUses: remaining}
	require.NoError(t, tx.InsertGrant(ctx, g))
	require.NoError(t, tx.Commit(ctx))
	return g
}

func TestCheckAndConsume_UsesThenExhausted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	item := f.addCommand(t, "boost", 3, 0)
	f.grant(t, alice, item, 3)

	for _, want := range []int{2, 1, 0} {
		d, err := f.gate.CheckAndConsume(ctx, alice, "boost")
		require.NoError(t, err)
		assert.Equal(t, domain.GateConsumed, d.Outcome)
		assert.Equal(t, want, d.Remaining)
		assert.Equal(t, 3, d.Max)
		assert.True(t, d.Allowed())
	}

	d, err := f.gate.CheckAndConsume(ctx, alice, "boost")
	require.NoError(t, err)
	assert.Equal(t, domain.GateBlocked, d.Outcome)
	assert.Equal(t, domain.BlockExhausted, d.Reason)
	assert.False(t, d.Allowed())
	assert.ErrorIs(t, d.Err(), domain.ErrExhausted)

	grants, err := f.store.ListGrantsByUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, 0, grants[0].RemainingUses)
	require.NotNil(t, grants[0].LastUsedAt)
	assert.True(t, grants[0].LastUsedAt.Equal(t0))
}

func TestCheckAndConsume_PassThrough(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	item := f.addCommand(t, "boost", 3, 0)
	f.grant(t, bob, item, 3)

	t.Run("ungated command", func(t *testing.T) {
		d, err := f.gate.CheckAndConsume(ctx, alice, "dance")
		require.NoError(t, err)
		assert.Equal(t, domain.GatePassThrough, d.Outcome)
		assert.Equal(t, "dance", d.Command)
		assert.NoError(t, d.Err())
	})

	t.Run("never purchased", func(t *testing.T) {
		d, err := f.gate.CheckAndConsume(ctx, alice, "boost")
		require.NoError(t, err)
		assert.Equal(t, domain.GatePassThrough, d.Outcome)
	})

	t.Run("disabled item", func(t *testing.T) {
		item.Enabled = false
		require.NoError(t, f.store.UpdateItem(ctx, item))
		f.gate.Invalidate()

		d, err := f.gate.CheckAndConsume(ctx, bob, "boost")
		require.NoError(t, err)
		assert.Equal(t, domain.GatePassThrough, d.Outcome)
	})
}

func TestCheckAndConsume_Cooldown(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	item := f.addCommand(t, "boost", 5, 10)
	f.grant(t, alice, item, 5)

	d, err := f.gate.CheckAndConsume(ctx, alice, "boost")
	require.NoError(t, err)
	require.Equal(t, domain.GateConsumed, d.Outcome)
	assert.Equal(t, 4, d.Remaining)

	f.clock.Set(t0.Add(5 * time.Minute))
	d, err = f.gate.CheckAndConsume(ctx, alice, "boost")
	require.NoError(t, err)
	assert.Equal(t, domain.GateBlocked, d.Outcome)
	assert.Equal(t, domain.BlockCooldown, d.Reason)
	assert.Equal(t, 5, d.RemainingMinutes)
	assert.Equal(t, 4, d.Remaining)

	var cd *domain.CooldownError
	require.ErrorAs(t, d.Err(), &cd)
	assert.Equal(t, 5, cd.RemainingMinutes)

	f.clock.Set(t0.Add(9*time.Minute + time.Second))
	d, err = f.gate.CheckAndConsume(ctx, alice, "boost")
	require.NoError(t, err)
	assert.Equal(t, domain.BlockCooldown, d.Reason)
	assert.Equal(t, 1, d.RemainingMinutes)

	f.clock.Set(t0.Add(10*time.Minute + time.Second))
	d, err = f.gate.CheckAndConsume(ctx, alice, "boost")
	require.NoError(t, err)
	assert.Equal(t, domain.GateConsumed, d.Outcome)
	assert.Equal(t, 3, d.Remaining)
}

func TestCheckAndConsume_SkipsEmptyGrants(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	item := f.addCommand(t, "boost", 2, 0)
	f.grant(t, alice, item, 0)
	second := f.grant(t, alice, item, 2)

	d, err := f.gate.CheckAndConsume(ctx, alice, "boost")
	require.NoError(t, err)
	assert.Equal(t, domain.GateConsumed, d.Outcome)
	assert.Equal(t, second.ID, d.GrantID)
	assert.Equal(t, 1, d.Remaining)
}

func TestCheckAndConsume_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.gate.CheckAndConsume(ctx, domain.Identity{}, "boost")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.gate.CheckAndConsume(ctx, alice, "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCheckAndConsume_ConcurrentUse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	item := f.addCommand(t, "boost", 3, 0)
	f.grant(t, alice, item, 3)
	checker := leaktest.NewGoroutineChecker(t)

	const callers = 10
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		consumed int
		blocked  int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := f.gate.CheckAndConsume(ctx, alice, "boost")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			switch d.Outcome {
			case domain.GateConsumed:
				consumed++
			case domain.GateBlocked:
				blocked++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, consumed)
	assert.Equal(t, callers-3, blocked)
	checker.Check(0)
}

func TestGate_InvalidatedByCatalogChanges(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := catalog.NewService(f.store, f.bus, catalog.DefaultDefaults())

	// Not for sale yet; the negative answer is cached.
	d, err := f.gate.CheckAndConsume(ctx, alice, "boost")
	require.NoError(t, err)
	assert.Equal(t, domain.GatePassThrough, d.Outcome)

	maxUses := 2
	item, err := svc.Create(ctx, catalog.NewItem{
		Name:    "Boost",
		Price:   10,
		Kind:    domain.KindCommand,
		Command: "boost",
		MaxUses: &maxUses,
	})
	require.NoError(t, err)
	f.grant(t, alice, item, 2)

	d, err = f.gate.CheckAndConsume(ctx, alice, "boost")
	require.NoError(t, err)
	assert.Equal(t, domain.GateConsumed, d.Outcome)
	assert.Equal(t, 2, d.Max)

	disabled := false
	_, err = svc.Update(ctx, item.ID, catalog.ItemPatch{Enabled: &disabled})
	require.NoError(t, err)

	d, err = f.gate.CheckAndConsume(ctx, alice, "boost")
	require.NoError(t, err)
	assert.Equal(t, domain.GatePassThrough, d.Outcome)
}

func TestGate_PublishesDecisions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	item := f.addCommand(t, "boost", 1, 0)
	f.grant(t, alice, item, 1)

	var got []event.GateDecidedPayloadV1
	f.bus.Subscribe(event.GateDecided, func(ctx context.Context, e event.Event) error {
		p, err := event.DecodePayload[event.GateDecidedPayloadV1](e.Payload)
		if err != nil {
			return err
		}
		got = append(got, p)
		return nil
	})

	_, err := f.gate.CheckAndConsume(ctx, alice, "boost")
	require.NoError(t, err)
	_, err = f.gate.CheckAndConsume(ctx, alice, "boost")
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, domain.GateConsumed, got[0].Outcome)
	assert.Equal(t, domain.GateBlocked, got[1].Outcome)
	assert.Equal(t, domain.BlockExhausted, got[1].Reason)
	assert.Equal(t, alice, got[1].User)
}

type failingStore struct {
	*memory.Store
}

func (s failingStore) FindEnabledCommand(ctx context.Context, command string) (*domain.CatalogItem, error) {
	return nil, errors.New("connection reset")
}

func TestCheckAndConsume_LookupError(t *testing.T) {
	g := New(failingStore{memory.NewStore()}, nil)

	_, err := g.CheckAndConsume(context.Background(), alice, "boost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestCeilMinutes(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int
	}{
		{time.Nanosecond, 1},
		{time.Minute, 1},
		{time.Minute + time.Nanosecond, 2},
		{5 * time.Minute, 5},
		{9*time.Minute + 59*time.Second, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ceilMinutes(tt.in), tt.in.String())
	}
}
