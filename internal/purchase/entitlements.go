package purchase

import (
	"context"
	"errors"
	"fmt"

	"github.com/osse101/pointshop/internal/domain"
	"github.com/osse101/pointshop/internal/logger"
)

// Entitlements lists the user's non-role purchases with their usage grant
func (s *service) Entitlements(ctx context.Context, user domain.Identity) ([]domain.Entitlement, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}

	purchases, err := s.store.ListPurchasesByUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgListPurchasesFailed, err)
	}
	grants, err := s.store.ListGrantsByUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgListGrantsFailed, err)
	}

	byPurchase := make(map[int64]domain.UsageGrant, len(grants))
	for _, g := range grants {
		byPurchase[g.PurchaseID] = g
	}

	items := make(itemCache)
	out := make([]domain.Entitlement, 0, len(grants))
	for _, p := range purchases {
		g, ok := byPurchase[p.ID]
		if !ok {
			continue
		}
		item, err := items.get(ctx, s, p.ItemID)
		if err != nil {
			return nil, err
		}
		if item == nil || item.Kind == domain.KindRole {
			continue
		}

		out = append(out, domain.Entitlement{
			PurchaseID:      p.ID,
			ItemID:          item.ID,
			ItemName:        item.Name,
			Kind:            item.Kind,
			Command:         g.Command,
			RemainingUses:   g.RemainingUses,
			MaxUses:         item.EffectiveMaxUses(),
			CooldownMinutes: item.CooldownMinutes,
			PurchasedAt:     p.PurchasedAt,
			LastUsedAt:      g.LastUsedAt,
		})
	}
	return out, nil
}

// itemCache memoizes item lookups within one call. A nil entry marks a deleted item.
type itemCache map[int64]*domain.CatalogItem

func (c itemCache) get(ctx context.Context, s *service, id int64) (*domain.CatalogItem, error) {
	if item, ok := c[id]; ok {
		return item, nil
	}
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf(ErrMsgReloadItemFailed, err)
		}
		logger.FromContext(ctx).Warn(LogMsgGrantMissingItem, "item_id", id)
		item = nil
	}
	c[id] = item
	return item, nil
}
