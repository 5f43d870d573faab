// Package catalog manages the shop's item catalog.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/osse101/pointshop/internal/domain"
	"github.com/osse101/pointshop/internal/event"
	"github.com/osse101/pointshop/internal/logger"
	"github.com/osse101/pointshop/internal/repository"
)

// NewItem is the input to Create. Nil optional fields take configured defaults.
type NewItem struct {
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           int64           `json:"price"`
	Kind            domain.ItemKind `json:"kind"`
	Command         string          `json:"command,omitempty"`
	MaxUses         *int            `json:"max_uses,omitempty"`
	CooldownMinutes *int            `json:"cooldown_minutes,omitempty"`
	Enabled         *bool           `json:"enabled,omitempty"`
	Stock           *int            `json:"stock,omitempty"`
	RoleLevel       *int            `json:"role_level,omitempty"`
}

// ItemPatch carries the fields an Update changes. Nil fields are left alone.
type ItemPatch struct {
	Name            *string          `json:"name,omitempty"`
	Description     *string          `json:"description,omitempty"`
	Price           *int64           `json:"price,omitempty"`
	Kind            *domain.ItemKind `json:"kind,omitempty"`
	Command         *string          `json:"command,omitempty"`
	MaxUses         *int             `json:"max_uses,omitempty"`
	CooldownMinutes *int             `json:"cooldown_minutes,omitempty"`
	Enabled         *bool            `json:"enabled,omitempty"`
	Stock           *int             `json:"stock,omitempty"`
	RoleLevel       *int             `json:"role_level,omitempty"`
}

// ListQuery selects a page of a catalog view
type ListQuery struct {
	View     domain.ItemView
	Kind     domain.ItemKind
	Page     int
	PageSize int
}

// Defaults are applied to fields a creator leaves unset
type Defaults struct {
	MaxUses         int
	CooldownMinutes int
	RoleLevel       int
}

// DefaultDefaults returns the stock defaults
func DefaultDefaults() Defaults {
	return Defaults{
		MaxUses:         domain.DefaultCommandMaxUses,
		CooldownMinutes: domain.DefaultCommandCooldownMinutes,
		RoleLevel:       domain.DefaultRoleLevel,
	}
}

// Service defines catalog operations
type Service interface {
	Create(ctx context.Context, in NewItem) (*domain.CatalogItem, error)
	Update(ctx context.Context, id int64, patch ItemPatch) (*domain.CatalogItem, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.CatalogItem, error)
	List(ctx context.Context, q ListQuery) (*domain.ItemPage, error)
}

type service struct {
	repo     repository.Catalog
	bus      event.Bus
	defaults Defaults
	validate *validator.Validate
	now      func() time.Time
}

// NewService creates a catalog service. Mutations are announced on bus, which may be nil.
func NewService(repo repository.Catalog, bus event.Bus, defaults Defaults) Service {
	return &service{
		repo:     repo,
		bus:      bus,
		defaults: defaults,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Create(ctx context.Context, in NewItem) (*domain.CatalogItem, error) {
	now := s.now()
	item := &domain.CatalogItem{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Kind:        in.Kind,
		Command:     strings.TrimSpace(in.Command),
		Enabled:     true,
		Stock:       domain.UnlimitedStock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.applyDefaults(item, in)

	if err := s.validateItem(item); err != nil {
		return nil, err
	}

	if err := s.repo.CreateItem(ctx, item); err != nil {
		if errors.Is(err, domain.ErrDuplicateName) {
			return nil, err
		}
		return nil, fmt.Errorf(ErrMsgCreateItemFailed, err)
	}

	logger.FromContext(ctx).Info(LogMsgItemCreated, "item_id", item.ID, "name", item.Name, "kind", item.Kind)
	s.publish(ctx, event.ItemCreated, item)
	return item, nil
}

func (s *service) applyDefaults(item *domain.CatalogItem, in NewItem) {
	switch item.Kind {
	case domain.KindCommand:
		item.MaxUses = s.defaults.MaxUses
		item.CooldownMinutes = s.defaults.CooldownMinutes
	case domain.KindRole:
		lvl := s.defaults.RoleLevel
		item.RoleLevel = &lvl
		item.MaxUses = 1
	default:
		item.MaxUses = domain.DefaultItemMaxUses
	}

	if in.MaxUses != nil {
		item.MaxUses = *in.MaxUses
	}
	if in.CooldownMinutes != nil {
		item.CooldownMinutes = *in.CooldownMinutes
	}
	if in.Enabled != nil {
		item.Enabled = *in.Enabled
	}
	if in.Stock != nil {
		item.Stock = *in.Stock
	}
	if in.RoleLevel != nil {
		lvl := *in.RoleLevel
		item.RoleLevel = &lvl
	}
}

func (s *service) Update(ctx context.Context, id int64, patch ItemPatch) (*domain.CatalogItem, error) {
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf(ErrMsgGetItemFailed, err)
	}

	wasRole := item.Kind == domain.KindRole
	applyPatch(item, patch)
	if item.Kind == domain.KindRole && !wasRole && item.RoleLevel == nil {
		lvl := s.defaults.RoleLevel
		item.RoleLevel = &lvl
	}
	item.UpdatedAt = s.now()

	if err := s.validateItem(item); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		if errors.Is(err, domain.ErrDuplicateName) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf(ErrMsgUpdateItemFailed, err)
	}

	logger.FromContext(ctx).Info(LogMsgItemUpdated, "item_id", item.ID, "name", item.Name)
	s.publish(ctx, event.ItemUpdated, item)
	return item, nil
}

func applyPatch(item *domain.CatalogItem, p ItemPatch) {
	if p.Name != nil {
		item.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Kind != nil {
		item.Kind = *p.Kind
	}
	if p.Command != nil {
		item.Command = strings.TrimSpace(*p.Command)
	}
	if p.MaxUses != nil {
		item.MaxUses = *p.MaxUses
	}
	if p.CooldownMinutes != nil {
		item.CooldownMinutes = *p.CooldownMinutes
	}
	if p.Enabled != nil {
		item.Enabled = *p.Enabled
	}
	if p.Stock != nil {
		item.Stock = *p.Stock
	}
	if p.RoleLevel != nil {
		lvl := *p.RoleLevel
		item.RoleLevel = &lvl
	}
}

func (s *service) Delete(ctx context.Context, id int64) error {
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf(ErrMsgGetItemFailed, err)
	}

	if err := s.repo.DeleteItem(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf(ErrMsgDeleteItemFailed, err)
	}

	logger.FromContext(ctx).Info(LogMsgItemDeleted, "item_id", id, "name", item.Name)
	s.publish(ctx, event.ItemDeleted, item)
	return nil
}

func (s *service) Get(ctx context.Context, id int64) (*domain.CatalogItem, error) {
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf(ErrMsgGetItemFailed, err)
	}
	return item, nil
}

func (s *service) List(ctx context.Context, q ListQuery) (*domain.ItemPage, error) {
	if q.View == "" {
		q.View = domain.ViewStorefront
	}
	if q.PageSize == 0 {
		q.PageSize = defaultPageSize(q.View)
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if err := validateQuery(q); err != nil {
		return nil, err
	}

	filter := domain.ItemFilter{View: q.View, Kind: q.Kind}
	total, err := s.repo.CountItems(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgCountItemsFailed, err)
	}

	items, err := s.repo.ListItems(ctx, filter, (q.Page-1)*q.PageSize, q.PageSize)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgListItemsFailed, err)
	}
	if items == nil {
		items = []domain.CatalogItem{}
	}

	return &domain.ItemPage{
		Items:      items,
		Page:       q.Page,
		PageSize:   q.PageSize,
		Total:      total,
		TotalPages: (total + q.PageSize - 1) / q.PageSize,
	}, nil
}

func defaultPageSize(view domain.ItemView) int {
	if view == domain.ViewAdmin {
		return domain.DefaultAdminPageSize
	}
	return domain.DefaultStorefrontPageSize
}

// publish notifies subscribers. A failing subscriber does not fail the mutation.
func (s *service) publish(ctx context.Context, t event.Type, item *domain.CatalogItem) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event.NewItemChangedEvent(t, item)); err != nil {
		logger.FromContext(ctx).Warn(LogMsgPublishFailed, "type", t, "item_id", item.ID, "error", err)
	}
}
