package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MovementFilter narrows movement history queries.
// Results are always ordered by occurrence time ascending.
type MovementFilter struct {
	Types    []MovementType
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// DefaultMovementFilter returns a filter with default paging
func DefaultMovementFilter() MovementFilter {
	return MovementFilter{
		Page:     1,
		PageSize: 50,
	}
}

// StockMovementRepository defines the interface for the append-only ledger.
// Movements are never updated or deleted.
type StockMovementRepository interface {
	// Append persists a new movement row
	Append(ctx context.Context, movement *StockMovement) error

	// FindByID finds a movement by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockMovement, error)

	// FindByProduct finds movements for a product matching the filter,
	// ordered by occurrence time ascending
	FindByProduct(ctx context.Context, productID uuid.UUID, filter MovementFilter) ([]StockMovement, error)

	// FindByReference finds movements originating from a source document
	FindByReference(ctx context.Context, referenceType ReferenceType, referenceID string) ([]StockMovement, error)

	// SumQuantityByProduct sums signed movement quantities for a product.
	// Used to reconcile the cached product stock against the ledger.
	SumQuantityByProduct(ctx context.Context, productID uuid.UUID) (int64, error)

	// CountByProduct counts movements for a product matching the filter
	CountByProduct(ctx context.Context, productID uuid.UUID, filter MovementFilter) (int64, error)
}
