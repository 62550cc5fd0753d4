package purchasing

import (
	"context"

	"github.com/minimart/backend/internal/domain/purchasing"
	"github.com/minimart/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// PurchaseOrderReceivedHandler reacts to goods being received against an
// order. The stock and cost updates happen inside the receive transaction;
// this handler only records the outcome.
type PurchaseOrderReceivedHandler struct {
	logger *zap.Logger
}

// NewPurchaseOrderReceivedHandler creates a new PurchaseOrderReceivedHandler
func NewPurchaseOrderReceivedHandler(logger *zap.Logger) *PurchaseOrderReceivedHandler {
	return &PurchaseOrderReceivedHandler{logger: logger}
}

// EventTypes returns the event types this handler subscribes to
func (h *PurchaseOrderReceivedHandler) EventTypes() []string {
	return []string{purchasing.EventTypePurchaseOrderReceived}
}

// Handle processes a PurchaseOrderReceivedEvent
func (h *PurchaseOrderReceivedHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	received, ok := event.(*purchasing.PurchaseOrderReceivedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()))
		return nil
	}

	var quantity int64
	for _, line := range received.Lines {
		quantity += line.Quantity
	}

	h.logger.Info("purchase order received",
		zap.String("order_id", received.OrderID.String()),
		zap.String("order_number", received.OrderNumber),
		zap.String("status", received.Status.String()),
		zap.Int("lines", len(received.Lines)),
		zap.Int64("quantity", quantity))

	return nil
}

var _ shared.EventHandler = (*PurchaseOrderReceivedHandler)(nil)
