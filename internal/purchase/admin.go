package purchase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/osse101/pointshop/internal/domain"
	"github.com/osse101/pointshop/internal/event"
	"github.com/osse101/pointshop/internal/logger"
	"github.com/osse101/pointshop/internal/repository"
)

// GrantUses adds amount uses of command to target's entitlement, creating a
// zero-price purchase when target has none. Only administrators may call it.
func (s *service) GrantUses(ctx context.Context, actor, target domain.Identity, command string, amount int) (*domain.UsageGrant, error) {
	if err := s.admins.Require(actor); err != nil {
		return nil, err
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}
	command = strings.TrimSpace(command)
	if command == "" {
		return nil, &domain.ValidationError{Field: FieldCommand, Message: ErrMsgCommandRequired}
	}
	if amount < 1 {
		return nil, &domain.ValidationError{Field: FieldAmount, Message: ErrMsgAmountTooLow}
	}

	item, err := s.store.FindEnabledCommand(ctx, command)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf(ErrMsgItemNotFoundFmt, domain.ErrItemNotFound, command)
		}
		return nil, fmt.Errorf(ErrMsgFindItemFailed, err)
	}

	release := s.locks.LockUser(target)
	defer release()

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgBeginTransactionFailed, err)
	}
	defer repository.SafeRollback(ctx, tx)

	if err := tx.LockUserKey(ctx, target, repository.CommandLockKey(item.Command)); err != nil {
		return nil, fmt.Errorf(ErrMsgAcquireLockFailed, err)
	}

	grants, err := tx.GetGrantsForUpdate(ctx, target, item.ID)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgListGrantsFailed, err)
	}

	var grant domain.UsageGrant
	if len(grants) == 0 {
		p := &domain.Purchase{ItemID: item.ID, User: target, PricePaid: 0, PurchasedAt: s.now()}
		if err := tx.InsertPurchase(ctx, p); err != nil {
			return nil, fmt.Errorf(ErrMsgInsertPurchaseFailed, err)
		}
		grant = domain.UsageGrant{
			PurchaseID:    p.ID,
			User:          target,
			ItemID:        item.ID,
			Command:       item.Command,
			RemainingUses: amount,
		}
		if err := tx.InsertGrant(ctx, &grant); err != nil {
			return nil, fmt.Errorf(ErrMsgInsertGrantFailed, err)
		}
	} else {
		grant = grants[0]
		grant.RemainingUses += amount
		if err := tx.UpdateGrant(ctx, &grant); err != nil {
			return nil, fmt.Errorf(ErrMsgUpdateGrantFailed, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf(ErrMsgCommitTransactionFailed, err)
	}

	logger.FromContext(ctx).Info(LogMsgUsageGranted, "actor", actor.String(), "target", target.String(),
		"command", item.Command, "amount", amount, "grant_id", grant.ID, "remaining", grant.RemainingUses)
	s.publish(ctx, event.NewUsageGrantedEvent(actor, target, item.Command, amount, grant.ID))
	return &grant, nil
}

// UsageReport pages through every usage grant, most recently used first.
// Only administrators may call it.
func (s *service) UsageReport(ctx context.Context, actor domain.Identity, page, pageSize int) (*domain.UsageReport, error) {
	if err := s.admins.Require(actor); err != nil {
		return nil, err
	}
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = domain.DefaultAdminPageSize
	}
	if page < 1 {
		return nil, &domain.ValidationError{Field: FieldPage, Message: ErrMsgPageRange}
	}
	if pageSize < 1 || pageSize > domain.MaxPageSize {
		return nil, &domain.ValidationError{Field: FieldPageSize, Message: ErrMsgPageSizeRange}
	}

	total, err := s.store.CountGrants(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgCountGrantsFailed, err)
	}
	grants, err := s.store.ListGrants(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgListGrantsFailed, err)
	}

	items := make(itemCache)
	records := make([]domain.UsageRecord, 0, len(grants))
	for _, g := range grants {
		rec := domain.UsageRecord{
			GrantID:       g.ID,
			User:          g.User,
			ItemID:        g.ItemID,
			Command:       g.Command,
			RemainingUses: g.RemainingUses,
			LastUsedAt:    g.LastUsedAt,
		}
		item, err := items.get(ctx, s, g.ItemID)
		if err != nil {
			return nil, err
		}
		if item != nil {
			rec.MaxUses = item.EffectiveMaxUses()
		}
		records = append(records, rec)
	}

	return &domain.UsageReport{Records: records, Page: page, PageSize: pageSize, Total: total}, nil
}
