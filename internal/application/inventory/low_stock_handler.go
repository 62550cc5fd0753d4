package inventory

import (
	"context"

	"github.com/minimart/backend/internal/domain/inventory"
	"github.com/minimart/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LowStockHandler surfaces low-stock conditions detected by ledger writes
type LowStockHandler struct {
	logger *zap.Logger
}

// NewLowStockHandler creates a new LowStockHandler
func NewLowStockHandler(logger *zap.Logger) *LowStockHandler {
	return &LowStockHandler{logger: logger}
}

// EventTypes returns the event types this handler subscribes to
func (h *LowStockHandler) EventTypes() []string {
	return []string{inventory.EventTypeLowStockDetected}
}

// Handle processes a LowStockDetectedEvent
func (h *LowStockHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	lowStock, ok := event.(*inventory.LowStockDetectedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()))
		return nil
	}

	h.logger.Warn("product stock below minimum",
		zap.String("product_id", lowStock.ProductID.String()),
		zap.String("sku", lowStock.SKU),
		zap.Int64("stock", lowStock.Stock),
		zap.Int64("min_stock", lowStock.MinStock))

	return nil
}

var _ shared.EventHandler = (*LowStockHandler)(nil)
