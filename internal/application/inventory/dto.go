package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/minimart/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// AdjustStockRequest represents a manual stock correction
type AdjustStockRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int64     `json:"quantity" binding:"required"` // Signed; negative shrinks stock
	Reason    string    `json:"reason" binding:"required,min=1,max=255"`
	Notes     string    `json:"notes" binding:"max=2000"`
}

// ReverseMovementRequest represents a request to undo a previous movement
type ReverseMovementRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=255"`
}

// MovementListQuery represents filter options for movement history
type MovementListQuery struct {
	Types    []string   `form:"types"`
	From     *time.Time `form:"from"`
	To       *time.Time `form:"to"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size" binding:"omitempty,max=200"`
}

// MovementResponse represents a stock movement in API responses
type MovementResponse struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       uuid.UUID       `json:"product_id"`
	Type            string          `json:"type"`
	Quantity        int64           `json:"quantity"`
	PreviousStock   int64           `json:"previous_stock"`
	NewStock        int64           `json:"new_stock"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TotalValue      decimal.Decimal `json:"total_value"`
	ReferenceType   string          `json:"reference_type"`
	ReferenceID     string          `json:"reference_id"`
	ReferenceLineID string          `json:"reference_line_id,omitempty"`
	Reason          string          `json:"reason,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	OccurredAt      time.Time       `json:"occurred_at"`
}

// ToMovementResponse converts a domain movement to a response
func ToMovementResponse(m *inventory.StockMovement) MovementResponse {
	return MovementResponse{
		ID:              m.ID,
		ProductID:       m.ProductID,
		Type:            m.Type.String(),
		Quantity:        m.Quantity,
		PreviousStock:   m.PreviousStock,
		NewStock:        m.NewStock,
		UnitCost:        m.UnitCost,
		UnitPrice:       m.UnitPrice,
		TotalValue:      m.TotalValue,
		ReferenceType:   m.ReferenceType.String(),
		ReferenceID:     m.ReferenceID,
		ReferenceLineID: m.ReferenceLineID,
		Reason:          m.Reason,
		Notes:           m.Notes,
		OccurredAt:      m.OccurredAt,
	}
}

// ToMovementResponses converts a slice of movements to responses
func ToMovementResponses(movements []inventory.StockMovement) []MovementResponse {
	responses := make([]MovementResponse, len(movements))
	for i := range movements {
		responses[i] = ToMovementResponse(&movements[i])
	}
	return responses
}

// StockConsistencyResponse reports a ledger-versus-product reconciliation
type StockConsistencyResponse struct {
	ProductID    uuid.UUID `json:"product_id"`
	ProductStock int64     `json:"product_stock"`
	LedgerSum    int64     `json:"ledger_sum"`
	Consistent   bool      `json:"consistent"`
}
