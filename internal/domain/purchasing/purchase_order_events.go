package purchasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/minimart/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypePurchaseOrder = "PurchaseOrder"

// Event type constants
const (
	EventTypePurchaseOrderCreated   = "PurchaseOrderCreated"
	EventTypePurchaseOrderUpdated   = "PurchaseOrderUpdated"
	EventTypePurchaseOrderReceived  = "PurchaseOrderReceived"
	EventTypePurchaseOrderPaid      = "PurchaseOrderPaid"
	EventTypePurchaseOrderCancelled = "PurchaseOrderCancelled"
)

// PurchaseOrderCreatedEvent is published when a new order is created
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	SupplierID  uuid.UUID       `json:"supplier_id"`
	ItemCount   int             `json:"item_count"`
	Total       decimal.Decimal `json:"total"`
}

// NewPurchaseOrderCreatedEvent creates a new PurchaseOrderCreatedEvent
func NewPurchaseOrderCreatedEvent(order *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, AggregateTypePurchaseOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		SupplierID:      order.SupplierID,
		ItemCount:       len(order.Items),
		Total:           order.Total,
	}
}

// PurchaseOrderUpdatedEvent is published when an order's item set is replaced
type PurchaseOrderUpdatedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	ItemCount   int             `json:"item_count"`
	Total       decimal.Decimal `json:"total"`
}

// NewPurchaseOrderUpdatedEvent creates a new PurchaseOrderUpdatedEvent
func NewPurchaseOrderUpdatedEvent(order *PurchaseOrder) *PurchaseOrderUpdatedEvent {
	return &PurchaseOrderUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderUpdated, AggregateTypePurchaseOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		ItemCount:       len(order.Items),
		Total:           order.Total,
	}
}

// PurchaseOrderReceivedEvent is published when goods are received
type PurchaseOrderReceivedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID           `json:"order_id"`
	OrderNumber string              `json:"order_number"`
	Status      PurchaseOrderStatus `json:"status"`
	Lines       []ReceivedLine      `json:"lines"`
}

// NewPurchaseOrderReceivedEvent creates a new PurchaseOrderReceivedEvent
func NewPurchaseOrderReceivedEvent(order *PurchaseOrder, lines []ReceivedLine) *PurchaseOrderReceivedEvent {
	return &PurchaseOrderReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderReceived, AggregateTypePurchaseOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		Status:          order.Status,
		Lines:           lines,
	}
}

// PurchaseOrderPaidEvent is published when payment is registered
type PurchaseOrderPaidEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID       `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	PaidAt        time.Time       `json:"paid_at"`
	Total         decimal.Decimal `json:"total"`
}

// NewPurchaseOrderPaidEvent creates a new PurchaseOrderPaidEvent
func NewPurchaseOrderPaidEvent(order *PurchaseOrder) *PurchaseOrderPaidEvent {
	var method PaymentMethod
	if order.PaymentMethod != nil {
		method = *order.PaymentMethod
	}
	var paidAt time.Time
	if order.PaidAt != nil {
		paidAt = *order.PaidAt
	}
	return &PurchaseOrderPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderPaid, AggregateTypePurchaseOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		PaymentMethod:   method,
		PaidAt:          paidAt,
		Total:           order.Total,
	}
}

// PurchaseOrderCancelledEvent is published when an order is cancelled
type PurchaseOrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Reason      string    `json:"reason,omitempty"`
}

// NewPurchaseOrderCancelledEvent creates a new PurchaseOrderCancelledEvent
func NewPurchaseOrderCancelledEvent(order *PurchaseOrder) *PurchaseOrderCancelledEvent {
	return &PurchaseOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCancelled, AggregateTypePurchaseOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		Reason:          order.CancelReason,
	}
}
