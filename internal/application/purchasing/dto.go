package purchasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/minimart/backend/internal/domain/purchasing"
	"github.com/shopspring/decimal"
)

// CreatePurchaseOrderRequest represents a request to create a purchase order
type CreatePurchaseOrderRequest struct {
	SupplierID   uuid.UUID          `json:"supplier_id" binding:"required"`
	Items        []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Tax          decimal.Decimal    `json:"tax"`
	ExpectedDate *time.Time         `json:"expected_date"`
	Notes        string             `json:"notes" binding:"max=2000"`
}

// OrderItemRequest represents one requested order line
type OrderItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  int64           `json:"quantity" binding:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required,dgt=0"`
}

// UpdatePurchaseOrderRequest replaces the full item set of an editable order
type UpdatePurchaseOrderRequest struct {
	Items        []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Tax          decimal.Decimal    `json:"tax"`
	ExpectedDate *time.Time         `json:"expected_date"`
	Notes        string             `json:"notes" binding:"max=2000"`
}

// ReceiveGoodsRequest represents a receipt against one or more order lines
type ReceiveGoodsRequest struct {
	Lines []ReceiveLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ReceiveLineRequest represents one receipt line. Zero quantities are
// accepted and ignored.
type ReceiveLineRequest struct {
	ItemID   uuid.UUID `json:"item_id" binding:"required"`
	Quantity int64     `json:"quantity" binding:"gte=0"`
}

// PayOrderRequest registers payment on an order
type PayOrderRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required,oneof=CASH CARD TRANSFER CHECK"`
}

// CancelOrderRequest cancels a pending order
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// OrderListQuery represents filter options for order lists
type OrderListQuery struct {
	Status     string     `form:"status"`
	SupplierID *uuid.UUID `form:"supplier_id"`
	From       *time.Time `form:"from"`
	To         *time.Time `form:"to"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size" binding:"omitempty,max=100"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"order_number"`
	SupplierID    uuid.UUID           `json:"supplier_id"`
	SupplierName  string              `json:"supplier_name"`
	Items         []OrderItemResponse `json:"items"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	Tax           decimal.Decimal     `json:"tax"`
	Total         decimal.Decimal     `json:"total"`
	Status        string              `json:"status"`
	PaymentStatus string              `json:"payment_status"`
	PaymentMethod *string             `json:"payment_method,omitempty"`
	PaidAt        *time.Time          `json:"paid_at,omitempty"`
	OrderDate     time.Time           `json:"order_date"`
	ExpectedDate  *time.Time          `json:"expected_date,omitempty"`
	Notes         string              `json:"notes,omitempty"`
	CancelledAt   *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason  string              `json:"cancel_reason,omitempty"`
	Version       int                 `json:"version"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	ID               uuid.UUID       `json:"id"`
	ProductID        uuid.UUID       `json:"product_id"`
	ProductName      string          `json:"product_name"`
	ProductSKU       string          `json:"product_sku"`
	QuantityOrdered  int64           `json:"quantity_ordered"`
	QuantityReceived int64           `json:"quantity_received"`
	QuantityPending  int64           `json:"quantity_pending"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	TotalPrice       decimal.Decimal `json:"total_price"`
}

// ReceiveGoodsResponse reports the outcome of a receipt
type ReceiveGoodsResponse struct {
	Order PurchaseOrderResponse     `json:"order"`
	Lines []purchasing.ReceivedLine `json:"lines"`
}

// OrderStatusSummaryResponse counts orders per receipt status
type OrderStatusSummaryResponse struct {
	Pending           int64 `json:"pending"`
	PartiallyReceived int64 `json:"partially_received"`
	Received          int64 `json:"received"`
	Cancelled         int64 `json:"cancelled"`
	Total             int64 `json:"total"`
}

// ToPurchaseOrderResponse converts a domain order to a response
func ToPurchaseOrderResponse(order *purchasing.PurchaseOrder) PurchaseOrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i := range order.Items {
		item := &order.Items[i]
		items[i] = OrderItemResponse{
			ID:               item.ID,
			ProductID:        item.ProductID,
			ProductName:      item.ProductName,
			ProductSKU:       item.ProductSKU,
			QuantityOrdered:  item.QuantityOrdered,
			QuantityReceived: item.QuantityReceived,
			QuantityPending:  item.PendingQuantity(),
			UnitPrice:        item.UnitPrice,
			TotalPrice:       item.TotalPrice,
		}
	}

	var method *string
	if order.PaymentMethod != nil {
		m := order.PaymentMethod.String()
		method = &m
	}

	return PurchaseOrderResponse{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		SupplierID:    order.SupplierID,
		SupplierName:  order.SupplierName,
		Items:         items,
		Subtotal:      order.Subtotal,
		Tax:           order.Tax,
		Total:         order.Total,
		Status:        order.Status.String(),
		PaymentStatus: order.PaymentStatus.String(),
		PaymentMethod: method,
		PaidAt:        order.PaidAt,
		OrderDate:     order.OrderDate,
		ExpectedDate:  order.ExpectedDate,
		Notes:         order.Notes,
		CancelledAt:   order.CancelledAt,
		CancelReason:  order.CancelReason,
		Version:       order.Version,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}

// ToPurchaseOrderResponses converts a slice of orders to responses
func ToPurchaseOrderResponses(orders []purchasing.PurchaseOrder) []PurchaseOrderResponse {
	responses := make([]PurchaseOrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToPurchaseOrderResponse(&orders[i])
	}
	return responses
}
