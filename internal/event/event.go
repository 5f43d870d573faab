package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/pointshop/internal/domain"
)

// Type represents the type of an event
type Type string

// Metadata defines the type for event metadata
type Metadata interface{}

// Event represents a generic event in the system
type Event struct {
	Version  string      `json:"version"` // Event schema version (e.g., "1.0")
	Type     Type        `json:"type"`
	Payload  interface{} `json:"payload"`
	Metadata Metadata    `json:"metadata"`
}

// GetMetadataValue extracts a value from the event metadata safely
func (e Event) GetMetadataValue(key string) interface{} {
	if e.Metadata == nil {
		return nil
	}

	if m, ok := e.Metadata.(map[string]interface{}); ok {
		return m[key]
	}

	return nil
}

// Shop event types
const (
	ItemCreated Type = "catalog.item.created"
	ItemUpdated Type = "catalog.item.updated"
	ItemDeleted Type = "catalog.item.deleted"

	PurchaseCompleted Type = "shop.purchase.completed"
	UsageGranted      Type = "shop.usage.granted"
	GateDecided       Type = "shop.gate.decided"
)

// CatalogTypes lists every catalog mutation event
var CatalogTypes = []Type{ItemCreated, ItemUpdated, ItemDeleted}

// ItemChangedPayloadV1 is the typed payload for catalog mutation events
type ItemChangedPayloadV1 struct {
	ItemID  int64           `json:"item_id"`
	Name    string          `json:"name"`
	Kind    domain.ItemKind `json:"kind"`
	Command string          `json:"command,omitempty"`
}

// PurchaseCompletedPayloadV1 is the typed payload for purchase events
type PurchaseCompletedPayloadV1 struct {
	PurchaseID   int64           `json:"purchase_id"`
	User         domain.Identity `json:"user"`
	ItemID       int64           `json:"item_id"`
	ItemName     string          `json:"item_name"`
	Kind         domain.ItemKind `json:"kind"`
	PricePaid    int64           `json:"price_paid"`
	RoleUpgraded bool            `json:"role_upgraded"`
	Timestamp    int64           `json:"timestamp"`
}

// UsageGrantedPayloadV1 is the typed payload for admin credit grants
type UsageGrantedPayloadV1 struct {
	Actor     domain.Identity `json:"actor"`
	Target    domain.Identity `json:"target"`
	Command   string          `json:"command"`
	Amount    int             `json:"amount"`
	GrantID   int64           `json:"grant_id"`
	Timestamp int64           `json:"timestamp"`
}

// GateDecidedPayloadV1 is the typed payload for gate decisions
type GateDecidedPayloadV1 struct {
	User      domain.Identity    `json:"user"`
	Command   string             `json:"command"`
	Outcome   domain.GateOutcome `json:"outcome"`
	Reason    domain.BlockReason `json:"reason,omitempty"`
	Remaining int                `json:"remaining"`
	Timestamp int64              `json:"timestamp"`
}

// Type-safe event constructors

// NewItemChangedEvent creates a catalog mutation event
func NewItemChangedEvent(eventType Type, item *domain.CatalogItem) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    eventType,
		Payload: ItemChangedPayloadV1{
			ItemID:  item.ID,
			Name:    item.Name,
			Kind:    item.Kind,
			Command: item.Command,
		},
	}
}

// NewPurchaseCompletedEvent creates a purchase event from a receipt
func NewPurchaseCompletedEvent(user domain.Identity, receipt *domain.Receipt) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    PurchaseCompleted,
		Payload: PurchaseCompletedPayloadV1{
			PurchaseID:   receipt.PurchaseID,
			User:         user,
			ItemID:       receipt.ItemID,
			ItemName:     receipt.ItemName,
			Kind:         receipt.Kind,
			PricePaid:    receipt.PricePaid,
			RoleUpgraded: receipt.RoleUpgraded,
			Timestamp:    time.Now().Unix(),
		},
		Metadata: map[string]interface{}{
			MetadataKeyPlatform: user.Platform,
		},
	}
}

// NewUsageGrantedEvent creates an admin credit grant event
func NewUsageGrantedEvent(actor, target domain.Identity, command string, amount int, grantID int64) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    UsageGranted,
		Payload: UsageGrantedPayloadV1{
			Actor:     actor,
			Target:    target,
			Command:   command,
			Amount:    amount,
			GrantID:   grantID,
			Timestamp: time.Now().Unix(),
		},
	}
}

// NewGateDecidedEvent creates a gate decision event
func NewGateDecidedEvent(user domain.Identity, d domain.GateDecision) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    GateDecided,
		Payload: GateDecidedPayloadV1{
			User:      user,
			Command:   d.Command,
			Outcome:   d.Outcome,
			Reason:    d.Reason,
			Remaining: d.Remaining,
			Timestamp: time.Now().Unix(),
		},
		Metadata: map[string]interface{}{
			MetadataKeyPlatform: user.Platform,
		},
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers.
// Handlers run synchronously, so a cache invalidation subscriber has finished
// before the publishing mutation returns.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// SubscribeAll subscribes one handler to several event types
func SubscribeAll(bus Bus, types []Type, handler Handler) {
	for _, t := range types {
		bus.Subscribe(t, handler)
	}
}
