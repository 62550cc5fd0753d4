package telemetry

import (
	"context"

	"github.com/minimart/backend/internal/domain/inventory"
	"github.com/minimart/backend/internal/domain/purchasing"
	"github.com/minimart/backend/internal/domain/shared"
)

// EventMetricsHandler feeds the business counters from domain events on the
// event bus.
type EventMetricsHandler struct {
	metrics *BusinessMetrics
}

// NewEventMetricsHandler creates an EventMetricsHandler.
func NewEventMetricsHandler(metrics *BusinessMetrics) *EventMetricsHandler {
	return &EventMetricsHandler{metrics: metrics}
}

// EventTypes returns the event types this handler subscribes to.
func (h *EventMetricsHandler) EventTypes() []string {
	return []string{
		purchasing.EventTypePurchaseOrderCreated,
		purchasing.EventTypePurchaseOrderReceived,
		purchasing.EventTypePurchaseOrderPaid,
		purchasing.EventTypePurchaseOrderCancelled,
		inventory.EventTypeStockMovementAppended,
	}
}

// Handle records the metric matching the event.
func (h *EventMetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *purchasing.PurchaseOrderCreatedEvent:
		h.metrics.RecordOrderCreated(ctx)
	case *purchasing.PurchaseOrderReceivedEvent:
		h.metrics.RecordOrderReceived(ctx, string(e.Status))
	case *purchasing.PurchaseOrderPaidEvent:
		h.metrics.RecordOrderPaid(ctx, string(e.PaymentMethod))
	case *purchasing.PurchaseOrderCancelledEvent:
		h.metrics.RecordOrderCancelled(ctx)
	case *inventory.StockMovementAppendedEvent:
		h.metrics.RecordStockMovement(ctx, string(e.MovementType))
	}
	return nil
}
