// Package gate decides whether a chat command may run for a caller and spends
// one use of the caller's entitlement when it does.
package gate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/osse101/pointshop/internal/domain"
	"github.com/osse101/pointshop/internal/event"
	"github.com/osse101/pointshop/internal/logger"
	"github.com/osse101/pointshop/internal/metrics"
	"github.com/osse101/pointshop/internal/repository"
)

// Store is the slice of the entitlement store the gate needs
type Store interface {
	FindEnabledCommand(ctx context.Context, command string) (*domain.CatalogItem, error)
	BeginTx(ctx context.Context) (repository.ShopTx, error)
}

// Gate checks and consumes command entitlements
type Gate struct {
	store Store
	bus   event.Bus
	now   func() time.Time

	cacheSize    int
	cacheTTL     time.Duration
	elevationTTL time.Duration

	commands   *expirable.LRU[string, *domain.CatalogItem]
	loads      singleflight.Group
	generation atomic.Uint64
}

// Option configures a Gate
type Option func(*Gate)

// WithClock replaces the wall clock used for cooldowns and elevation expiry
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// WithCache sizes the command lookup cache. A non-positive ttl disables expiry.
func WithCache(size int, ttl time.Duration) Option {
	return func(g *Gate) {
		if size > 0 {
			g.cacheSize = size
		}
		g.cacheTTL = ttl
	}
}

// WithElevationTTL sets how long an elevation granted by WithElevation lives
func WithElevationTTL(ttl time.Duration) Option {
	return func(g *Gate) {
		if ttl > 0 {
			g.elevationTTL = ttl
		}
	}
}

// New creates a gate over store. When bus is set the gate publishes its
// decisions there and drops cached command lookups on every catalog change.
func New(store Store, bus event.Bus, opts ...Option) *Gate {
	g := &Gate{
		store:        store,
		bus:          bus,
		now:          func() time.Time { return time.Now().UTC() },
		cacheSize:    DefaultCacheSize,
		cacheTTL:     DefaultCacheTTL,
		elevationTTL: DefaultElevationTTL,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.commands = expirable.NewLRU[string, *domain.CatalogItem](g.cacheSize, nil, g.cacheTTL)

	if bus != nil {
		event.SubscribeAll(bus, event.CatalogTypes, func(ctx context.Context, evt event.Event) error {
			logger.FromContext(ctx).Debug(LogMsgCacheInvalidate, "type", evt.Type)
			g.Invalidate()
			return nil
		})
	}
	return g
}

// Invalidate forgets every cached command lookup
func (g *Gate) Invalidate() {
	g.generation.Add(1)
	g.commands.Purge()
}

// CheckAndConsume resolves the caller's entitlement for command. Ungated
// commands and callers who never bought the command pass through; otherwise
// one use is consumed or the call is blocked by exhaustion or cooldown.
func (g *Gate) CheckAndConsume(ctx context.Context, user domain.Identity, command string) (domain.GateDecision, error) {
	log := logger.FromContext(ctx)

	if err := user.Validate(); err != nil {
		return domain.GateDecision{}, err
	}
	command = strings.TrimSpace(command)
	if command == "" {
		return domain.GateDecision{}, &domain.ValidationError{Field: FieldCommand, Message: ErrMsgCommandRequired, Kind: domain.ErrInvalidInput}
	}

	decision, err := g.decide(ctx, user, command)
	if err != nil {
		return domain.GateDecision{}, err
	}

	log.Debug(LogMsgGateChecked, "user", user.String(), "command", command,
		"outcome", decision.Outcome, "reason", decision.Reason, "remaining", decision.Remaining)
	g.publish(ctx, event.NewGateDecidedEvent(user, decision))
	return decision, nil
}

func (g *Gate) decide(ctx context.Context, user domain.Identity, command string) (domain.GateDecision, error) {
	pass := domain.GateDecision{Outcome: domain.GatePassThrough, Command: command}

	item, err := g.lookup(ctx, command)
	if err != nil {
		return domain.GateDecision{}, err
	}
	if item == nil {
		return pass, nil
	}

	tx, err := g.store.BeginTx(ctx)
	if err != nil {
		return domain.GateDecision{}, fmt.Errorf(ErrMsgBeginTransactionFailed, err)
	}
	defer repository.SafeRollback(ctx, tx)

	if err := tx.LockUserKey(ctx, user, repository.CommandLockKey(command)); err != nil {
		return domain.GateDecision{}, fmt.Errorf(ErrMsgAcquireLockFailed, err)
	}

	grants, err := tx.GetGrantsForUpdate(ctx, user, item.ID)
	if err != nil {
		return domain.GateDecision{}, fmt.Errorf(ErrMsgGetGrantsFailed, err)
	}
	if len(grants) == 0 {
		return pass, nil
	}

	var grant *domain.UsageGrant
	for i := range grants {
		if grants[i].RemainingUses > 0 {
			grant = &grants[i]
			break
		}
	}
	if grant == nil {
		return domain.GateDecision{
			Outcome: domain.GateBlocked,
			Reason:  domain.BlockExhausted,
			Command: command,
			ItemID:  item.ID,
			Max:     item.EffectiveMaxUses(),
		}, nil
	}

	now := g.now()
	if wait := cooldownLeft(item.CooldownMinutes, grant.LastUsedAt, now); wait > 0 {
		return domain.GateDecision{
			Outcome:          domain.GateBlocked,
			Reason:           domain.BlockCooldown,
			Command:          command,
			ItemID:           item.ID,
			GrantID:          grant.ID,
			Remaining:        grant.RemainingUses,
			Max:              item.EffectiveMaxUses(),
			RemainingMinutes: ceilMinutes(wait),
		}, nil
	}

	grant.RemainingUses--
	grant.LastUsedAt = &now
	if err := tx.UpdateGrant(ctx, grant); err != nil {
		return domain.GateDecision{}, fmt.Errorf(ErrMsgUpdateGrantFailed, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.GateDecision{}, fmt.Errorf(ErrMsgCommitTransactionFailed, err)
	}

	return domain.GateDecision{
		Outcome:   domain.GateConsumed,
		Command:   command,
		ItemID:    item.ID,
		GrantID:   grant.ID,
		Remaining: grant.RemainingUses,
		Max:       item.EffectiveMaxUses(),
	}, nil
}

// lookup resolves command to its enabled item, or nil when the command is not
// sold in the shop. Both answers are cached.
func (g *Gate) lookup(ctx context.Context, command string) (*domain.CatalogItem, error) {
	if item, ok := g.commands.Get(command); ok {
		metrics.GateCacheLookups.WithLabelValues(metrics.CacheHit).Inc()
		return item, nil
	}
	metrics.GateCacheLookups.WithLabelValues(metrics.CacheMiss).Inc()

	v, err, _ := g.loads.Do(command, func() (interface{}, error) {
		gen := g.generation.Load()
		item, err := g.store.FindEnabledCommand(ctx, command)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			item = nil
		case err != nil:
			return nil, fmt.Errorf(ErrMsgLookupCommandFailed, err)
		}
		// A catalog change during the load makes this answer stale.
		if g.generation.Load() == gen {
			g.commands.Add(command, item)
		}
		return item, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.CatalogItem), nil
}

func (g *Gate) publish(ctx context.Context, evt event.Event) {
	if g.bus == nil {
		return
	}
	if err := g.bus.Publish(ctx, evt); err != nil {
		logger.FromContext(ctx).Warn(LogMsgPublishFailed, "type", evt.Type, "error", err)
	}
}

// cooldownLeft is how long until a grant last used at lastUsed may be used again
func cooldownLeft(cooldownMinutes int, lastUsed *time.Time, now time.Time) time.Duration {
	if cooldownMinutes <= 0 || lastUsed == nil {
		return 0
	}
	cooldown := time.Duration(cooldownMinutes) * time.Minute
	elapsed := now.Sub(*lastUsed)
	if elapsed >= cooldown {
		return 0
	}
	return cooldown - elapsed
}

func ceilMinutes(d time.Duration) int {
	return int((d + time.Minute - 1) / time.Minute)
}
