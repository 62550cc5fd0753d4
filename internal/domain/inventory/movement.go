package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/minimart/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MovementType represents the type of stock movement
type MovementType string

const (
	// MovementTypePurchase represents stock received against a purchase order
	MovementTypePurchase MovementType = "PURCHASE"
	// MovementTypeSale represents stock leaving inventory through a sale
	MovementTypeSale MovementType = "SALE"
	// MovementTypeAdjustment represents a manual correction, in either direction
	MovementTypeAdjustment MovementType = "ADJUSTMENT"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypePurchase, MovementTypeSale, MovementTypeAdjustment:
		return true
	}
	return false
}

// ReferenceType represents the originating document type for a movement
type ReferenceType string

const (
	// ReferenceTypePurchaseOrder points back to a purchase order
	ReferenceTypePurchaseOrder ReferenceType = "PURCHASE_ORDER"
	// ReferenceTypeSalesOrder points back to a sales order
	ReferenceTypeSalesOrder ReferenceType = "SALES_ORDER"
	// ReferenceTypeManualAdjustment marks an operator-initiated correction
	ReferenceTypeManualAdjustment ReferenceType = "MANUAL_ADJUSTMENT"
	// ReferenceTypeMovementReversal points back to the movement being reversed
	ReferenceTypeMovementReversal ReferenceType = "MOVEMENT_REVERSAL"
)

// String returns the string representation of ReferenceType
func (r ReferenceType) String() string {
	return string(r)
}

// IsValid returns true if the reference type is valid
func (r ReferenceType) IsValid() bool {
	switch r {
	case ReferenceTypePurchaseOrder, ReferenceTypeSalesOrder, ReferenceTypeManualAdjustment, ReferenceTypeMovementReversal:
		return true
	}
	return false
}

// StockMovement is an immutable, append-only record of a stock change.
// Corrections are made with new offsetting ADJUSTMENT movements, never by
// editing history. For any product the PreviousStock/NewStock pairs form an
// unbroken chain ordered by OccurredAt.
type StockMovement struct {
	shared.BaseEntity
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_product_time,priority:1"`
	Type          MovementType    `gorm:"type:varchar(20);not null;index"`
	Quantity      int64           `gorm:"not null"` // Signed; positive for increases
	PreviousStock int64           `gorm:"not null"`
	NewStock      int64           `gorm:"not null"`
	UnitCost      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Populated for inbound movements
	UnitPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Populated for outbound movements
	TotalValue    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReferenceType ReferenceType   `gorm:"type:varchar(30);not null;index:idx_movement_reference,priority:1"`
	ReferenceID   string          `gorm:"type:varchar(50);not null;index:idx_movement_reference,priority:2"`
	// ReferenceLineID identifies the order line that caused the movement (optional)
	ReferenceLineID string    `gorm:"type:varchar(50)"`
	Reason          string    `gorm:"type:varchar(255)"`
	Notes           string    `gorm:"type:text"`
	OccurredAt      time.Time `gorm:"type:timestamptz;not null;index:idx_movement_product_time,priority:2"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a new stock movement. quantity is signed: PURCHASE
// movements must increase stock, SALE movements must decrease it, ADJUSTMENT
// movements may do either but not nothing. unitValue is the per-unit cost for
// inbound movements and the per-unit price for outbound movements.
func NewStockMovement(
	productID uuid.UUID,
	movementType MovementType,
	quantity int64,
	unitValue decimal.Decimal,
	previousStock int64,
	referenceType ReferenceType,
	referenceID string,
) (*StockMovement, error) {
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !movementType.IsValid() {
		return nil, shared.NewValidationError("INVALID_MOVEMENT_TYPE", "Invalid movement type")
	}
	if !referenceType.IsValid() {
		return nil, shared.NewValidationError("INVALID_REFERENCE_TYPE", "Invalid reference type")
	}
	if referenceID == "" {
		return nil, shared.NewValidationError("INVALID_REFERENCE_ID", "Reference ID cannot be empty")
	}
	if unitValue.IsNegative() {
		return nil, shared.NewValidationError("INVALID_UNIT_VALUE", "Unit value cannot be negative")
	}
	if previousStock < 0 {
		return nil, shared.NewValidationError("INVALID_PREVIOUS_STOCK", "Previous stock cannot be negative")
	}

	switch {
	case movementType == MovementTypePurchase && quantity <= 0:
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Purchase movement quantity must be positive")
	case movementType == MovementTypeSale && quantity >= 0:
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Sale movement quantity must be negative")
	case movementType == MovementTypeAdjustment && quantity == 0:
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Adjustment movement quantity cannot be zero")
	}

	newStock := previousStock + quantity
	if newStock < 0 {
		return nil, shared.ErrNegativeStock
	}

	absQuantity := quantity
	if absQuantity < 0 {
		absQuantity = -absQuantity
	}

	m := &StockMovement{
		BaseEntity:    shared.NewBaseEntity(),
		ProductID:     productID,
		Type:          movementType,
		Quantity:      quantity,
		PreviousStock: previousStock,
		NewStock:      newStock,
		TotalValue:    unitValue.Mul(decimal.NewFromInt(absQuantity)),
		ReferenceType: referenceType,
		ReferenceID:   referenceID,
		OccurredAt:    time.Now(),
	}

	if quantity > 0 {
		m.UnitCost = unitValue
		m.UnitPrice = decimal.Zero
	} else {
		m.UnitCost = decimal.Zero
		m.UnitPrice = unitValue
	}

	return m, nil
}

// WithReferenceLineID sets the originating order line ID
func (m *StockMovement) WithReferenceLineID(lineID string) *StockMovement {
	m.ReferenceLineID = lineID
	return m
}

// WithReason sets the reason for the movement
func (m *StockMovement) WithReason(reason string) *StockMovement {
	m.Reason = reason
	return m
}

// WithNotes sets free-form notes on the movement
func (m *StockMovement) WithNotes(notes string) *StockMovement {
	m.Notes = notes
	return m
}

// IsInbound returns true if the movement increases stock
func (m *StockMovement) IsInbound() bool {
	return m.Quantity > 0
}

// UnitValue returns whichever of unit cost or unit price is populated
func (m *StockMovement) UnitValue() decimal.Decimal {
	if m.IsInbound() {
		return m.UnitCost
	}
	return m.UnitPrice
}

// Reversal builds an offsetting ADJUSTMENT movement that undoes this one.
// previousStock is the product's stock at the time the reversal is appended.
func (m *StockMovement) Reversal(previousStock int64, reason string) (*StockMovement, error) {
	if reason == "" {
		return nil, shared.NewValidationError("INVALID_REASON", "Reversal reason cannot be empty")
	}
	reversal, err := NewStockMovement(
		m.ProductID,
		MovementTypeAdjustment,
		-m.Quantity,
		m.UnitValue(),
		previousStock,
		ReferenceTypeMovementReversal,
		m.ID.String(),
	)
	if err != nil {
		return nil, err
	}
	return reversal.WithReason(reason), nil
}
