package purchase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/osse101/pointshop/internal/domain"
	"github.com/osse101/pointshop/internal/event"
	"github.com/osse101/pointshop/internal/logger"
	"github.com/osse101/pointshop/internal/metrics"
	"github.com/osse101/pointshop/internal/repository"
)

// Purchase buys the enabled item best matching itemQuery.
//
// The ledger debit is the point of no return: a failure before it leaves the
// balance untouched, and a failure after it returns an error wrapping
// domain.ErrInconsistentState.
func (s *service) Purchase(ctx context.Context, user domain.Identity, itemQuery string) (receipt *domain.Receipt, err error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgPurchaseCalled, "user", user.String(), "item", itemQuery)

	kind := KindUnresolved
	defer func() {
		outcome := outcomeOf(err)
		metrics.PurchasesTotal.WithLabelValues(kind, outcome).Inc()
		if err != nil && outcome != metrics.OutcomeInconsistent {
			log.Info(LogMsgPurchaseRejected, "user", user.String(), "item", itemQuery, "outcome", outcome, "error", err)
		}
	}()

	if err := user.Validate(); err != nil {
		return nil, err
	}
	query := strings.TrimSpace(itemQuery)
	if query == "" {
		return nil, &domain.ValidationError{Field: FieldItem, Message: ErrMsgItemQueryRequired}
	}

	// 1. Resolve the item
	item, err := s.store.FindEnabledItem(ctx, query)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf(ErrMsgItemNotFoundFmt, domain.ErrItemNotFound, query)
		}
		return nil, fmt.Errorf(ErrMsgFindItemFailed, err)
	}
	kind = string(item.Kind)

	// 2-3. Cheap rejection before any lock is taken
	if err := s.checkEligibility(ctx, user, item); err != nil {
		return nil, err
	}

	release := s.locks.LockUser(user)
	defer release()

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgBeginTransactionFailed, err)
	}
	defer repository.SafeRollback(ctx, tx)

	if err := tx.LockUserKey(ctx, user, purchaseLockKey(item)); err != nil {
		return nil, fmt.Errorf(ErrMsgAcquireLockFailed, err)
	}

	// Re-check 2-4 under the locks
	item, err = tx.GetItemForUpdate(ctx, item.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf(ErrMsgItemNotFoundFmt, domain.ErrItemNotFound, query)
		}
		return nil, fmt.Errorf(ErrMsgReloadItemFailed, err)
	}
	if !item.Enabled {
		return nil, fmt.Errorf(ErrMsgItemNotFoundFmt, domain.ErrItemNotFound, query)
	}
	if err := s.checkEligibility(ctx, user, item); err != nil {
		return nil, err
	}

	// 4. Balance
	balance, err := s.ledger.Balance(ctx, user)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgBalanceFailedFmt, domain.ErrDebitFailed, err)
	}
	if balance < item.Price {
		return nil, &domain.InsufficientFundsError{ItemName: item.Name, Required: item.Price, Available: balance}
	}

	// 5. Debit
	balanceAfter := balance
	if item.Price > 0 {
		balanceAfter, err = s.ledger.Debit(ctx, user, item.Price)
		if err != nil {
			if !errors.Is(err, domain.ErrDebitFailed) {
				err = fmt.Errorf(ErrMsgBalanceFailedFmt, domain.ErrDebitFailed, err)
			}
			return nil, err
		}
	}

	// 6. Record the purchase
	p := &domain.Purchase{ItemID: item.ID, User: user, PricePaid: item.Price, PurchasedAt: s.now()}
	if err := tx.InsertPurchase(ctx, p); err != nil {
		return nil, s.inconsistent(ctx, user, item, 0, fmt.Errorf(ErrMsgInsertPurchaseFailed, err))
	}

	receipt = &domain.Receipt{
		PurchaseID:   p.ID,
		ItemID:       item.ID,
		ItemName:     item.Name,
		Kind:         item.Kind,
		PricePaid:    item.Price,
		BalanceAfter: balanceAfter,
	}

	// 7b. Usage grant and stock
	if item.Kind != domain.KindRole {
		if err := s.grantFor(ctx, tx, user, item, p, receipt); err != nil {
			return nil, s.inconsistent(ctx, user, item, 0, err)
		}
	}

	// 7a. Role upgrade, written while the role lock is still held
	if item.Kind == domain.KindRole {
		if err := s.authority.SetAuthority(ctx, user, item.Level()); err != nil {
			if !errors.Is(err, domain.ErrAuthorityUpdateFailed) {
				err = fmt.Errorf("%w: %w", domain.ErrAuthorityUpdateFailed, err)
			}
			return nil, s.inconsistent(ctx, user, item, 0, err)
		}
		receipt.RoleUpgraded = true
		receipt.NewAuthority = item.Level()
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, s.inconsistent(ctx, user, item, 0, fmt.Errorf(ErrMsgCommitTransactionFailed, err))
	}
	if receipt.RoleUpgraded {
		log.Info(LogMsgRoleUpgraded, "user", user.String(), "level", item.Level())
	}

	log.Info(LogMsgItemPurchased, "user", user.String(), "item_id", item.ID, "item", item.Name,
		"price", item.Price, "balance_after", balanceAfter, "purchase_id", p.ID)
	s.publish(ctx, event.NewPurchaseCompletedEvent(user, receipt))
	return receipt, nil
}

// purchaseLockKey serializes every role purchase of a user, since the
// authority check spans all role items. Other kinds lock per item.
func purchaseLockKey(item *domain.CatalogItem) string {
	if item.Kind == domain.KindRole {
		return repository.RoleLockKey()
	}
	return repository.ItemLockKey(item.ID)
}

// checkEligibility applies the stock and role rules
func (s *service) checkEligibility(ctx context.Context, user domain.Identity, item *domain.CatalogItem) error {
	if item.SoldOut() {
		return &domain.OutOfStockError{ItemName: item.Name}
	}
	if item.Kind != domain.KindRole {
		return nil
	}

	current, err := s.authority.GetAuthority(ctx, user)
	if err != nil {
		return fmt.Errorf(ErrMsgGetAuthorityFailed, err)
	}
	if current >= item.Level() {
		return &domain.RoleNotHigherError{ItemName: item.Name, Current: current, Required: item.Level()}
	}
	return nil
}

func (s *service) grantFor(ctx context.Context, tx repository.ShopTx, user domain.Identity, item *domain.CatalogItem, p *domain.Purchase, receipt *domain.Receipt) error {
	grant := &domain.UsageGrant{
		PurchaseID:    p.ID,
		User:          user,
		ItemID:        item.ID,
		Command:       item.Command,
		RemainingUses: item.EffectiveMaxUses(),
	}
	if err := tx.InsertGrant(ctx, grant); err != nil {
		return fmt.Errorf(ErrMsgInsertGrantFailed, err)
	}

	if !item.IsUnlimited() {
		ok, err := tx.DecrementStock(ctx, item.ID)
		if err != nil {
			return fmt.Errorf(ErrMsgDecrementStockFailed, err)
		}
		if !ok {
			return errors.New(ErrMsgStockVanished)
		}
	}

	receipt.GrantID = grant.ID
	receipt.RemainingUses = grant.RemainingUses
	receipt.MaxUses = item.EffectiveMaxUses()
	return nil
}

// inconsistent reports a failure after the ledger was debited
func (s *service) inconsistent(ctx context.Context, user domain.Identity, item *domain.CatalogItem, purchaseID int64, cause error) error {
	logger.FromContext(ctx).Error(LogMsgInconsistentState,
		"severity", SeverityCritical,
		"user", user.String(),
		"item_id", item.ID,
		"item", item.Name,
		"amount", item.Price,
		"purchase_id", purchaseID,
		"error", cause)
	metrics.PurchaseInconsistencies.Inc()

	return &domain.InconsistencyError{
		User:       user,
		ItemID:     item.ID,
		Amount:     item.Price,
		PurchaseID: purchaseID,
		Err:        cause,
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, domain.ErrInconsistentState):
		return metrics.OutcomeInconsistent
	case errors.Is(err, domain.ErrNotFound):
		return metrics.OutcomeItemNotFound
	case errors.Is(err, domain.ErrOutOfStock):
		return metrics.OutcomeOutOfStock
	case errors.Is(err, domain.ErrRoleNotHigher):
		return metrics.OutcomeRoleNotHigher
	case errors.Is(err, domain.ErrDebitFailed):
		return metrics.OutcomeDebitFailed
	case errors.Is(err, domain.ErrInsufficientFunds):
		return metrics.OutcomeInsufficientFunds
	default:
		return metrics.OutcomeError
	}
}
