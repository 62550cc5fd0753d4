package inventory

import (
	"github.com/google/uuid"
	"github.com/minimart/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeStockMovement = "StockMovement"

// Event type constants
const (
	EventTypeStockMovementAppended = "StockMovementAppended"
	EventTypeLowStockDetected      = "LowStockDetected"
)

// StockMovementAppendedEvent is published after a movement commits
type StockMovementAppendedEvent struct {
	shared.BaseDomainEvent
	MovementID    uuid.UUID       `json:"movement_id"`
	ProductID     uuid.UUID       `json:"product_id"`
	MovementType  MovementType    `json:"movement_type"`
	Quantity      int64           `json:"quantity"`
	PreviousStock int64           `json:"previous_stock"`
	NewStock      int64           `json:"new_stock"`
	UnitValue     decimal.Decimal `json:"unit_value"`
	ReferenceType ReferenceType   `json:"reference_type"`
	ReferenceID   string          `json:"reference_id"`
}

// NewStockMovementAppendedEvent creates a new StockMovementAppendedEvent
func NewStockMovementAppendedEvent(movement *StockMovement) *StockMovementAppendedEvent {
	return &StockMovementAppendedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockMovementAppended, AggregateTypeStockMovement, movement.ID),
		MovementID:      movement.ID,
		ProductID:       movement.ProductID,
		MovementType:    movement.Type,
		Quantity:        movement.Quantity,
		PreviousStock:   movement.PreviousStock,
		NewStock:        movement.NewStock,
		UnitValue:       movement.UnitValue(),
		ReferenceType:   movement.ReferenceType,
		ReferenceID:     movement.ReferenceID,
	}
}

// LowStockDetectedEvent is published when a movement drops stock below the
// product's minimum stock threshold
type LowStockDetectedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
	Stock     int64     `json:"stock"`
	MinStock  int64     `json:"min_stock"`
}

// NewLowStockDetectedEvent creates a new LowStockDetectedEvent
func NewLowStockDetectedEvent(productID uuid.UUID, sku string, stock, minStock int64) *LowStockDetectedEvent {
	return &LowStockDetectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLowStockDetected, AggregateTypeStockMovement, productID),
		ProductID:       productID,
		SKU:             sku,
		Stock:           stock,
		MinStock:        minStock,
	}
}
