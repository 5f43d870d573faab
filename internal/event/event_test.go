package event

import (
	"context"
	"errors"
	"testing"

	"github.com/osse101/pointshop/internal/domain"
)

func TestMemoryBus_PublishSubscribe(t *testing.T) {
	bus := NewMemoryBus()
	eventType := Type("test_event")
	handled := false

	bus.Subscribe(eventType, func(ctx context.Context, event Event) error {
		if event.Type != eventType {
			t.Errorf("Expected event type %s, got %s", eventType, event.Type)
		}
		if event.Payload.(string) != "payload" {
			t.Errorf("Expected payload 'payload', got %v", event.Payload)
		}
		handled = true
		return nil
	})

	err := bus.Publish(context.Background(), Event{
		Version: "1.0",
		Type:    eventType,
		Payload: "payload",
	})

	if err != nil {
		t.Errorf("Publish returned error: %v", err)
	}

	if !handled {
		t.Error("Handler was not called")
	}
}

func TestMemoryBus_PublishMultipleHandlers(t *testing.T) {
	bus := NewMemoryBus()
	eventType := Type("test_event")
	count := 0

	handler := func(ctx context.Context, event Event) error {
		count++
		return nil
	}

	bus.Subscribe(eventType, handler)
	bus.Subscribe(eventType, handler)

	err := bus.Publish(context.Background(), Event{Version: "1.0", Type: eventType})
	if err != nil {
		t.Errorf("Publish returned error: %v", err)
	}

	if count != 2 {
		t.Errorf("Expected 2 handlers to be called, got %d", count)
	}
}

func TestMemoryBus_PublishError(t *testing.T) {
	bus := NewMemoryBus()
	eventType := Type("test_event")

	bus.Subscribe(eventType, func(ctx context.Context, event Event) error {
		return errors.New("handler error")
	})

	err := bus.Publish(context.Background(), Event{Version: "1.0", Type: eventType})
	if err == nil {
		t.Error("Expected error from Publish, got nil")
	}
}

func TestSubscribeAll(t *testing.T) {
	bus := NewMemoryBus()
	var seen []Type

	SubscribeAll(bus, CatalogTypes, func(ctx context.Context, e Event) error {
		seen = append(seen, e.Type)
		return nil
	})

	for _, typ := range CatalogTypes {
		if err := bus.Publish(context.Background(), Event{Version: EventSchemaVersion, Type: typ}); err != nil {
			t.Fatalf("Publish returned error: %v", err)
		}
	}

	if len(seen) != len(CatalogTypes) {
		t.Fatalf("Expected %d deliveries, got %d", len(CatalogTypes), len(seen))
	}
}

func TestNewItemChangedEvent_DecodePayload(t *testing.T) {
	item := &domain.CatalogItem{ID: 7, Name: "Boost", Kind: domain.KindCommand, Command: "boost"}

	evt := NewItemChangedEvent(ItemUpdated, item)

	payload, err := DecodePayload[ItemChangedPayloadV1](evt.Payload)
	if err != nil {
		t.Fatalf("DecodePayload returned error: %v", err)
	}
	if payload.ItemID != 7 || payload.Command != "boost" {
		t.Errorf("Unexpected payload: %+v", payload)
	}

	// JSON fallback path
	generic := map[string]interface{}{"item_id": 9, "name": "VIP", "kind": "role"}
	payload, err = DecodePayload[ItemChangedPayloadV1](generic)
	if err != nil {
		t.Fatalf("DecodePayload returned error: %v", err)
	}
	if payload.ItemID != 9 || payload.Kind != domain.KindRole {
		t.Errorf("Unexpected payload: %+v", payload)
	}
}

func TestEvent_GetMetadataValue(t *testing.T) {
	evt := NewGateDecidedEvent(domain.NewIdentity("twitch", "1"), domain.GateDecision{Command: "boost"})

	if got := evt.GetMetadataValue(MetadataKeyPlatform); got != "twitch" {
		t.Errorf("Expected platform metadata twitch, got %v", got)
	}
	if got := (Event{}).GetMetadataValue("x"); got != nil {
		t.Errorf("Expected nil for empty metadata, got %v", got)
	}
}
