package purchasing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/minimart/backend/internal/domain/shared"
)

// ErrDuplicateOrderNumber is returned by Save when the order number is
// already taken. Two concurrent Creates can allocate the same number; the
// caller re-allocates and retries.
var ErrDuplicateOrderNumber = shared.NewConflictError("DUPLICATE_ORDER_NUMBER", "Order number is already in use")

// OrderFilter narrows purchase order list queries
type OrderFilter struct {
	Status     *PurchaseOrderStatus
	SupplierID *uuid.UUID
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

// DefaultOrderFilter returns a filter with default paging
func DefaultOrderFilter() OrderFilter {
	return OrderFilter{
		Page:     1,
		PageSize: 20,
	}
}

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	// FindByID finds an order with its items by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// FindByOrderNumber finds an order with its items by order number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*PurchaseOrder, error)

	// FindAll finds orders matching the filter, newest first
	FindAll(ctx context.Context, filter OrderFilter) ([]PurchaseOrder, error)

	// Save creates or updates an order and its items
	Save(ctx context.Context, order *PurchaseOrder) error

	// SaveWithLock updates an order with optimistic locking on the aggregate
	// version. Returns a conflict error when the persisted version has moved.
	SaveWithLock(ctx context.Context, order *PurchaseOrder) error

	// NextOrderNumber allocates the next order number for the given month,
	// formatted PO-YYYYMM-NNNN
	NextOrderNumber(ctx context.Context, at time.Time) (string, error)

	// Count counts orders matching the filter
	Count(ctx context.Context, filter OrderFilter) (int64, error)

	// CountByStatus counts orders grouped by receipt status
	CountByStatus(ctx context.Context) (map[PurchaseOrderStatus]int64, error)
}
