package purchasing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minimart/backend/internal/domain/shared"
	"github.com/minimart/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus represents the receipt status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusPending           PurchaseOrderStatus = "PENDING"
	PurchaseOrderStatusPartiallyReceived PurchaseOrderStatus = "PARTIALLY_RECEIVED"
	PurchaseOrderStatusReceived          PurchaseOrderStatus = "RECEIVED"
	PurchaseOrderStatusCancelled         PurchaseOrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusPending, PurchaseOrderStatusPartiallyReceived,
		PurchaseOrderStatusReceived, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case PurchaseOrderStatusPending:
		return target == PurchaseOrderStatusPartiallyReceived ||
			target == PurchaseOrderStatusReceived ||
			target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusPartiallyReceived:
		return target == PurchaseOrderStatusPartiallyReceived ||
			target == PurchaseOrderStatusReceived
	case PurchaseOrderStatusReceived, PurchaseOrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// CanReceive returns true if receiving goods is allowed in this status
func (s PurchaseOrderStatus) CanReceive() bool {
	return s == PurchaseOrderStatusPending || s == PurchaseOrderStatusPartiallyReceived
}

// IsTerminal returns true if no further receipt transition is permitted
func (s PurchaseOrderStatus) IsTerminal() bool {
	return s == PurchaseOrderStatusReceived || s == PurchaseOrderStatusCancelled
}

// PaymentStatus represents the payment status of a purchase order.
// The payment axis is orthogonal to the receipt axis.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusPending || s == PaymentStatusPaid
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// PaymentMethod represents how a purchase order was paid
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
	PaymentMethodCheck    PaymentMethod = "CHECK"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodCheck:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// PurchaseOrderItem represents a line item in a purchase order.
// Items are owned exclusively by their order.
type PurchaseOrderItem struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName      string          `gorm:"type:varchar(200);not null"`
	ProductSKU       string          `gorm:"type:varchar(50);not null"`
	QuantityOrdered  int64           `gorm:"not null"`
	QuantityReceived int64           `gorm:"not null;default:0"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Agreed purchase cost for this order
	TotalPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null"` // QuantityOrdered * UnitPrice
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItem) TableName() string {
	return "purchase_order_items"
}

// NewPurchaseOrderItem creates a new purchase order item
func NewPurchaseOrderItem(orderID, productID uuid.UUID, productName, productSKU string, quantityOrdered int64, unitPrice decimal.Decimal) (*PurchaseOrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewValidationError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantityOrdered <= 0 {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Ordered quantity must be positive")
	}
	if unitPrice.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("INVALID_PRICE", "Unit price must be positive")
	}

	now := time.Now()

	return &PurchaseOrderItem{
		ID:               uuid.New(),
		OrderID:          orderID,
		ProductID:        productID,
		ProductName:      productName,
		ProductSKU:       productSKU,
		QuantityOrdered:  quantityOrdered,
		QuantityReceived: 0,
		UnitPrice:        unitPrice,
		TotalPrice:       unitPrice.Mul(decimal.NewFromInt(quantityOrdered)),
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// PendingQuantity returns the quantity still to be received
func (i *PurchaseOrderItem) PendingQuantity() int64 {
	pending := i.QuantityOrdered - i.QuantityReceived
	if pending < 0 {
		return 0
	}
	return pending
}

// IsFullyReceived returns true if all ordered quantity has been received
func (i *PurchaseOrderItem) IsFullyReceived() bool {
	return i.QuantityReceived >= i.QuantityOrdered
}

// CanReceive returns true if more goods can be received for this item
func (i *PurchaseOrderItem) CanReceive() bool {
	return i.QuantityReceived < i.QuantityOrdered
}

// AddReceivedQuantity adds to the received quantity.
// Over-receipt is a conflict: validation passed against a stale pending
// figure, so the caller should re-fetch and resubmit.
func (i *PurchaseOrderItem) AddReceivedQuantity(quantity int64) error {
	if quantity <= 0 {
		return shared.NewValidationError("INVALID_QUANTITY", "Receive quantity must be positive")
	}
	if i.QuantityReceived+quantity > i.QuantityOrdered {
		return shared.NewConflictError("OVER_RECEIPT",
			fmt.Sprintf("Cannot receive %d, only %d pending", quantity, i.PendingQuantity()))
	}

	i.QuantityReceived += quantity
	i.UpdatedAt = time.Now()

	return nil
}

// GetUnitPriceMoney returns the unit price as a Money value object
func (i *PurchaseOrderItem) GetUnitPriceMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(i.UnitPrice)
}

// ItemInput describes a requested order line for create/edit operations
type ItemInput struct {
	ProductID       uuid.UUID
	ProductName     string
	ProductSKU      string
	QuantityOrdered int64
	UnitPrice       decimal.Decimal
}

// ReceiptLine describes one line of a receive operation
type ReceiptLine struct {
	ItemID   uuid.UUID
	Quantity int64
}

// ReceivedLine reports an accepted receipt line back to the caller
type ReceivedLine struct {
	ItemID      uuid.UUID       `json:"item_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductSKU  string          `json:"product_sku"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// PurchaseOrder is the aggregate root for a supplier order. It enforces the
// receipt state machine (PENDING -> PARTIALLY_RECEIVED -> RECEIVED, PENDING ->
// CANCELLED) and the orthogonal payment axis (PENDING -> PAID, blocked only by
// cancellation). Orders are never deleted; cancellation is a status change.
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	OrderNumber   string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	SupplierID    uuid.UUID           `gorm:"type:uuid;not null;index"`
	SupplierName  string              `gorm:"type:varchar(200);not null"`
	Items         []PurchaseOrderItem `gorm:"foreignKey:OrderID;references:ID"`
	Subtotal      decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Tax           decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"` // Caller-supplied, opaque
	Total         decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Status        PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PaymentStatus PaymentStatus       `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PaymentMethod *PaymentMethod      `gorm:"type:varchar(20)"`
	PaidAt        *time.Time
	OrderDate     time.Time `gorm:"type:timestamptz;not null;index"`
	ExpectedDate  *time.Time
	Notes         string     `gorm:"type:text"`
	CancelledAt   *time.Time `gorm:"index"`
	CancelReason  string     `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a new purchase order with its full item set.
// Totals are computed from the items plus the caller-supplied tax and frozen
// until the next edit.
func NewPurchaseOrder(orderNumber string, supplierID uuid.UUID, supplierName string, items []ItemInput, tax decimal.Decimal, expectedDate *time.Time, notes string) (*PurchaseOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewValidationError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewValidationError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if supplierName == "" {
		return nil, shared.NewValidationError("INVALID_SUPPLIER_NAME", "Supplier name cannot be empty")
	}
	if tax.IsNegative() {
		return nil, shared.NewValidationError("INVALID_TAX", "Tax cannot be negative")
	}

	order := &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		SupplierID:        supplierID,
		SupplierName:      supplierName,
		Items:             make([]PurchaseOrderItem, 0, len(items)),
		Subtotal:          decimal.Zero,
		Tax:               tax,
		Total:             decimal.Zero,
		Status:            PurchaseOrderStatusPending,
		PaymentStatus:     PaymentStatusPending,
		OrderDate:         time.Now(),
		ExpectedDate:      expectedDate,
		Notes:             notes,
	}

	if err := order.setItems(items); err != nil {
		return nil, err
	}

	order.AddDomainEvent(NewPurchaseOrderCreatedEvent(order))

	return order, nil
}

// ReplaceItems fully replaces the item set and recomputes totals.
// Allowed only while the order is PENDING with zero receipts.
func (o *PurchaseOrder) ReplaceItems(items []ItemInput, tax decimal.Decimal, expectedDate *time.Time, notes string) error {
	if !o.IsEditable() {
		return shared.NewStateError("ORDER_NOT_EDITABLE", "Order is not editable", o.Status.String())
	}
	if tax.IsNegative() {
		return shared.NewValidationError("INVALID_TAX", "Tax cannot be negative")
	}

	o.Tax = tax
	if err := o.setItems(items); err != nil {
		return err
	}

	o.ExpectedDate = expectedDate
	o.Notes = notes
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewPurchaseOrderUpdatedEvent(o))

	return nil
}

// setItems validates and installs a full item set, then recomputes totals
func (o *PurchaseOrder) setItems(items []ItemInput) error {
	if len(items) == 0 {
		return shared.NewValidationError("NO_ITEMS", "Order must have at least one item")
	}

	newItems := make([]PurchaseOrderItem, 0, len(items))
	seen := make(map[uuid.UUID]bool, len(items))
	for _, input := range items {
		if seen[input.ProductID] {
			return shared.NewValidationError("DUPLICATE_PRODUCT", "Product appears more than once in order")
		}
		seen[input.ProductID] = true

		item, err := NewPurchaseOrderItem(o.ID, input.ProductID, input.ProductName, input.ProductSKU, input.QuantityOrdered, input.UnitPrice)
		if err != nil {
			return err
		}
		newItems = append(newItems, *item)
	}

	o.Items = newItems
	o.recalculateTotals()

	return nil
}

// ApplyReceipt processes receipt of goods against one or more order lines.
// Every line is validated against the current pending quantities before any
// line is applied, so the call is all-or-nothing. Lines with zero quantity
// are ignored, but at least one line must carry a positive quantity. Returns
// the accepted lines in input order.
func (o *PurchaseOrder) ApplyReceipt(lines []ReceiptLine) ([]ReceivedLine, error) {
	if !o.Status.CanReceive() {
		return nil, shared.NewStateError("INVALID_STATE",
			fmt.Sprintf("Cannot receive goods for order in %s status", o.Status), o.Status.String())
	}
	if len(lines) == 0 {
		return nil, shared.NewValidationError("NO_ITEMS", "Receipt lines cannot be empty")
	}

	// Validate all lines before mutating anything
	hasPositive := false
	pending := make(map[uuid.UUID]int64, len(o.Items))
	for idx := range o.Items {
		pending[o.Items[idx].ID] = o.Items[idx].PendingQuantity()
	}
	for _, line := range lines {
		if line.Quantity < 0 {
			return nil, shared.NewValidationError("INVALID_QUANTITY", "Receive quantity cannot be negative")
		}
		if line.Quantity == 0 {
			continue
		}
		hasPositive = true

		remaining, ok := pending[line.ItemID]
		if !ok {
			return nil, shared.NewNotFoundError("ITEM_NOT_FOUND", fmt.Sprintf("Order item %s not found", line.ItemID))
		}
		if line.Quantity > remaining {
			return nil, shared.NewConflictError("OVER_RECEIPT",
				fmt.Sprintf("Cannot receive %d for item %s, only %d pending", line.Quantity, line.ItemID, remaining))
		}
		pending[line.ItemID] = remaining - line.Quantity
	}
	if !hasPositive {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "At least one receipt line must have a positive quantity")
	}

	received := make([]ReceivedLine, 0, len(lines))
	for _, line := range lines {
		if line.Quantity == 0 {
			continue
		}
		item := o.GetItem(line.ItemID)
		if err := item.AddReceivedQuantity(line.Quantity); err != nil {
			return nil, err
		}
		received = append(received, ReceivedLine{
			ItemID:      item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductSKU:  item.ProductSKU,
			Quantity:    line.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	// Recompute status once after all lines are applied
	if o.isAllItemsReceived() {
		o.Status = PurchaseOrderStatusReceived
	} else {
		o.Status = PurchaseOrderStatusPartiallyReceived
	}

	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewPurchaseOrderReceivedEvent(o, received))

	return received, nil
}

// Pay registers payment, setting payment status, method, and timestamp
// together. Payment is independent of receiving progress and blocked only by
// cancellation. Paying an already-paid order is an idempotent no-op.
func (o *PurchaseOrder) Pay(method PaymentMethod) error {
	if o.Status == PurchaseOrderStatusCancelled {
		return shared.NewStateError("ORDER_CANCELLED", "Cannot pay a cancelled order", o.Status.String())
	}
	if o.PaymentStatus == PaymentStatusPaid {
		return nil
	}
	if !method.IsValid() {
		return shared.NewValidationError("INVALID_PAYMENT_METHOD", "Invalid payment method")
	}

	now := time.Now()
	o.PaymentStatus = PaymentStatusPaid
	o.PaymentMethod = &method
	o.PaidAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewPurchaseOrderPaidEvent(o))

	return nil
}

// Cancel transitions the order to the terminal CANCELLED state. Allowed only
// while the order is PENDING with zero receipts. Cancelling an already
// cancelled order is an idempotent no-op.
func (o *PurchaseOrder) Cancel(reason string) error {
	if o.Status == PurchaseOrderStatusCancelled {
		return nil
	}
	if o.hasReceipts() {
		return shared.NewStateError("ALREADY_RECEIVED", "Cannot cancel order with received items", o.Status.String())
	}
	if !o.Status.CanTransitionTo(PurchaseOrderStatusCancelled) {
		return shared.NewStateError("INVALID_STATE",
			fmt.Sprintf("Cannot cancel order in %s status", o.Status), o.Status.String())
	}

	now := time.Now()
	o.Status = PurchaseOrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewPurchaseOrderCancelledEvent(o))

	return nil
}

// recalculateTotals recomputes subtotal and total from the current items
func (o *PurchaseOrder) recalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.TotalPrice)
	}
	o.Subtotal = subtotal
	o.Total = subtotal.Add(o.Tax)
}

// isAllItemsReceived checks if every item has been fully received
func (o *PurchaseOrder) isAllItemsReceived() bool {
	for _, item := range o.Items {
		if !item.IsFullyReceived() {
			return false
		}
	}
	return len(o.Items) > 0
}

// hasReceipts checks if any goods have been received
func (o *PurchaseOrder) hasReceipts() bool {
	for _, item := range o.Items {
		if item.QuantityReceived > 0 {
			return true
		}
	}
	return false
}

// IsEditable returns true if the item set may still be replaced
func (o *PurchaseOrder) IsEditable() bool {
	return o.Status == PurchaseOrderStatusPending && !o.hasReceipts()
}

// IsPaid returns true if the order has been paid
func (o *PurchaseOrder) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// IsCancelled returns true if the order is cancelled
func (o *PurchaseOrder) IsCancelled() bool {
	return o.Status == PurchaseOrderStatusCancelled
}

// GetItem returns an item by its ID, or nil if absent
func (o *PurchaseOrder) GetItem(itemID uuid.UUID) *PurchaseOrderItem {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx]
		}
	}
	return nil
}

// GetItemByProduct returns an item by product ID, or nil if absent
func (o *PurchaseOrder) GetItemByProduct(productID uuid.UUID) *PurchaseOrderItem {
	for idx := range o.Items {
		if o.Items[idx].ProductID == productID {
			return &o.Items[idx]
		}
	}
	return nil
}

// TotalOrderedQuantity returns the total ordered quantity across items
func (o *PurchaseOrder) TotalOrderedQuantity() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.QuantityOrdered
	}
	return total
}

// TotalReceivedQuantity returns the total received quantity across items
func (o *PurchaseOrder) TotalReceivedQuantity() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.QuantityReceived
	}
	return total
}

// TotalPendingQuantity returns the total quantity still to be received
func (o *PurchaseOrder) TotalPendingQuantity() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.PendingQuantity()
	}
	return total
}

// GetTotalMoney returns the order total as a Money value object
func (o *PurchaseOrder) GetTotalMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(o.Total)
}
