package metrics

import (
	"context"

	"github.com/osse101/pointshop/internal/event"
	"github.com/osse101/pointshop/internal/logger"
)

// EventMetricsCollector subscribes to shop events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to all events
func (e *EventMetricsCollector) Register(bus event.Bus) error {
	eventTypes := append([]event.Type{
		event.PurchaseCompleted,
		event.UsageGranted,
		event.GateDecided,
	}, event.CatalogTypes...)

	event.SubscribeAll(bus, eventTypes, e.HandleEvent)
	return nil
}

// HandleEvent processes events and updates metrics
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	switch evt.Type {
	case event.PurchaseCompleted:
		p, err := event.DecodePayload[event.PurchaseCompletedPayloadV1](evt.Payload)
		if err != nil {
			EventHandlerErrors.WithLabelValues(string(evt.Type)).Inc()
			log.Debug(LogMsgEventPayloadDecode, "type", evt.Type, "error", err)
			return nil
		}
		PointsSpent.Add(float64(p.PricePaid))
		if p.RoleUpgraded {
			RoleUpgrades.Inc()
		}

	case event.UsageGranted:
		p, err := event.DecodePayload[event.UsageGrantedPayloadV1](evt.Payload)
		if err != nil {
			EventHandlerErrors.WithLabelValues(string(evt.Type)).Inc()
			log.Debug(LogMsgEventPayloadDecode, "type", evt.Type, "error", err)
			return nil
		}
		UsageGranted.Add(float64(p.Amount))

	case event.GateDecided:
		p, err := event.DecodePayload[event.GateDecidedPayloadV1](evt.Payload)
		if err != nil {
			EventHandlerErrors.WithLabelValues(string(evt.Type)).Inc()
			log.Debug(LogMsgEventPayloadDecode, "type", evt.Type, "error", err)
			return nil
		}
		GateDecisions.WithLabelValues(string(p.Outcome), string(p.Reason)).Inc()
	}

	log.Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}
