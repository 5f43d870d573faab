// Package purchase turns points into entitlements.
package purchase

import (
	"context"
	"time"

	"github.com/osse101/pointshop/internal/authority"
	"github.com/osse101/pointshop/internal/concurrency"
	"github.com/osse101/pointshop/internal/domain"
	"github.com/osse101/pointshop/internal/event"
	"github.com/osse101/pointshop/internal/logger"
	"github.com/osse101/pointshop/internal/repository"
)

// Service defines purchase and entitlement operations
type Service interface {
	Purchase(ctx context.Context, user domain.Identity, itemQuery string) (*domain.Receipt, error)
	Entitlements(ctx context.Context, user domain.Identity) ([]domain.Entitlement, error)
	GrantUses(ctx context.Context, actor, target domain.Identity, command string, amount int) (*domain.UsageGrant, error)
	UsageReport(ctx context.Context, actor domain.Identity, page, pageSize int) (*domain.UsageReport, error)
}

// Balances is the guarded ledger the engine debits
type Balances interface {
	Balance(ctx context.Context, user domain.Identity) (int64, error)
	Debit(ctx context.Context, user domain.Identity, amount int64) (int64, error)
}

// Admins authorizes administrative calls
type Admins interface {
	Require(id domain.Identity) error
}

type service struct {
	store     repository.Shop
	ledger    Balances
	authority authority.Store
	admins    Admins
	locks     *concurrency.LockManager
	bus       event.Bus
	now       func() time.Time
}

// NewService creates the purchase engine. bus may be nil.
func NewService(store repository.Shop, ledger Balances, auth authority.Store, admins Admins, locks *concurrency.LockManager, bus event.Bus) Service {
	if locks == nil {
		locks = concurrency.NewLockManager()
	}
	return &service{
		store:     store,
		ledger:    ledger,
		authority: auth,
		admins:    admins,
		locks:     locks,
		bus:       bus,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) publish(ctx context.Context, evt event.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, evt); err != nil {
		logger.FromContext(ctx).Warn(LogMsgPublishFailed, "type", evt.Type, "error", err)
	}
}
