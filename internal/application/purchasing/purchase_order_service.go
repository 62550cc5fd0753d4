package purchasing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	appinventory "github.com/minimart/backend/internal/application/inventory"
	"github.com/minimart/backend/internal/domain/catalog"
	"github.com/minimart/backend/internal/domain/inventory"
	"github.com/minimart/backend/internal/domain/partner"
	"github.com/minimart/backend/internal/domain/purchasing"
	"github.com/minimart/backend/internal/domain/shared"
)

// maxReceiveRetries bounds retries when a concurrent writer moves an order
// or a product's stock between load and commit
const maxReceiveRetries = 3

// PurchaseOrderService implements purchase order lifecycle operations.
// Receiving goods is the only operation that crosses into the stock ledger;
// it runs order update, movement appends, and product stock updates in one
// transaction.
type PurchaseOrderService struct {
	scope          appinventory.TransactionScope
	orderRepo      purchasing.PurchaseOrderRepository
	productRepo    catalog.ProductRepository
	supplierRepo   partner.SupplierRepository
	eventPublisher shared.EventPublisher
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(
	scope appinventory.TransactionScope,
	orderRepo purchasing.PurchaseOrderRepository,
	productRepo catalog.ProductRepository,
	supplierRepo partner.SupplierRepository,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		scope:        scope,
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *PurchaseOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new purchase order against an active supplier. Product
// name and SKU are snapshotted onto the order lines so later catalog edits
// don't rewrite order history.
func (s *PurchaseOrderService) Create(ctx context.Context, req *CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, req.SupplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to find supplier: %w", err)
	}
	if !supplier.IsActive() {
		return nil, shared.NewStateError("SUPPLIER_INACTIVE", "Cannot order from an inactive supplier", string(supplier.Status))
	}

	items, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	// Two concurrent Creates can allocate the same number, so re-allocate
	// once on a duplicate before giving up.
	var order *purchasing.PurchaseOrder
	for attempt := 0; ; attempt++ {
		orderNumber, err := s.orderRepo.NextOrderNumber(ctx, time.Now())
		if err != nil {
			return nil, fmt.Errorf("failed to allocate order number: %w", err)
		}

		order, err = purchasing.NewPurchaseOrder(orderNumber, supplier.ID, supplier.Name, items, req.Tax, req.ExpectedDate, req.Notes)
		if err != nil {
			return nil, err
		}

		err = s.orderRepo.Save(ctx, order)
		if err == nil {
			break
		}
		if errors.Is(err, purchasing.ErrDuplicateOrderNumber) && attempt == 0 {
			continue
		}
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	s.publishAndClear(ctx, order)

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Update replaces the item set of an editable order
func (s *PurchaseOrderService) Update(ctx context.Context, orderID uuid.UUID, req *UpdatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	items, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	if err := order.ReplaceItems(items, req.Tax, req.ExpectedDate, req.Notes); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	s.publishAndClear(ctx, order)

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Receive processes receipt of goods against an order. The order lines, the
// ledger appends, and the product stock and average cost updates commit
// atomically; a failure on any line leaves everything untouched. Retries on
// concurrent stock or order version conflicts.
func (s *PurchaseOrderService) Receive(ctx context.Context, orderID uuid.UUID, req *ReceiveGoodsRequest) (*ReceiveGoodsResponse, error) {
	lines := make([]purchasing.ReceiptLine, len(req.Lines))
	for i, line := range req.Lines {
		lines[i] = purchasing.ReceiptLine{ItemID: line.ItemID, Quantity: line.Quantity}
	}

	var response *ReceiveGoodsResponse
	var events []shared.DomainEvent

	var lastErr error
	for attempt := 0; attempt < maxReceiveRetries; attempt++ {
		events = events[:0]
		lastErr = s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
			order, err := repos.OrderRepo().FindByID(ctx, orderID)
			if err != nil {
				return fmt.Errorf("failed to find order: %w", err)
			}

			received, err := order.ApplyReceipt(lines)
			if err != nil {
				return err
			}

			for _, line := range received {
				if err := s.applyReceivedLine(ctx, repos, order, line, &events); err != nil {
					return err
				}
			}

			if err := repos.OrderRepo().SaveWithLock(ctx, order); err != nil {
				return err
			}

			events = append(events, order.GetDomainEvents()...)
			order.ClearDomainEvents()

			response = &ReceiveGoodsResponse{
				Order: ToPurchaseOrderResponse(order),
				Lines: received,
			}
			return nil
		})
		if lastErr == nil {
			break
		}
		if !s.isRetryableConflict(lastErr) {
			return nil, lastErr
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}

	s.publishEvents(ctx, events)
	return response, nil
}

// applyReceivedLine appends one PURCHASE movement and rolls the product's
// stock and moving-average cost forward. Lines for the same product are
// processed sequentially, each seeing the stock left by the previous one.
func (s *PurchaseOrderService) applyReceivedLine(
	ctx context.Context,
	repos appinventory.TransactionalRepositories,
	order *purchasing.PurchaseOrder,
	line purchasing.ReceivedLine,
	events *[]shared.DomainEvent,
) error {
	product, err := repos.ProductRepo().FindByID(ctx, line.ProductID)
	if err != nil {
		return fmt.Errorf("failed to find product %s: %w", line.ProductSKU, err)
	}

	previousStock := product.Stock
	movement, err := inventory.NewStockMovement(
		product.ID,
		inventory.MovementTypePurchase,
		line.Quantity,
		line.UnitPrice,
		previousStock,
		inventory.ReferenceTypePurchaseOrder,
		order.ID.String(),
	)
	if err != nil {
		return err
	}
	movement.WithReferenceLineID(line.ItemID.String())

	newAverage := inventory.RecomputeAverageCost(previousStock, product.AverageCost, line.Quantity, line.UnitPrice)
	if err := product.ApplyStock(previousStock, movement.NewStock, newAverage, line.UnitPrice); err != nil {
		return err
	}

	if err := repos.MovementRepo().Append(ctx, movement); err != nil {
		return fmt.Errorf("failed to append movement: %w", err)
	}
	if err := repos.ProductRepo().UpdateStockAndCost(ctx, product, previousStock); err != nil {
		return err
	}

	*events = append(*events, inventory.NewStockMovementAppendedEvent(movement))
	return nil
}

// Pay registers payment on an order. Paying an already-paid order succeeds
// without changing anything.
func (s *PurchaseOrderService) Pay(ctx context.Context, orderID uuid.UUID, req *PayOrderRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	alreadyPaid := order.IsPaid()
	if err := order.Pay(purchasing.PaymentMethod(req.PaymentMethod)); err != nil {
		return nil, err
	}

	if !alreadyPaid {
		if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
			return nil, err
		}
		s.publishAndClear(ctx, order)
	}

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Cancel cancels a pending order. Cancelling an already-cancelled order
// succeeds without changing anything.
func (s *PurchaseOrderService) Cancel(ctx context.Context, orderID uuid.UUID, req *CancelOrderRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	alreadyCancelled := order.IsCancelled()
	if err := order.Cancel(req.Reason); err != nil {
		return nil, err
	}

	if !alreadyCancelled {
		if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
			return nil, err
		}
		s.publishAndClear(ctx, order)
	}

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetByID returns an order with its items
func (s *PurchaseOrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetByOrderNumber returns an order with its items by order number
func (s *PurchaseOrderService) GetByOrderNumber(ctx context.Context, orderNumber string) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// List returns orders matching the query, newest first
func (s *PurchaseOrderService) List(ctx context.Context, query *OrderListQuery) (*shared.Paginated[PurchaseOrderResponse], error) {
	filter := purchasing.DefaultOrderFilter()
	if query != nil {
		if query.Status != "" {
			status := purchasing.PurchaseOrderStatus(query.Status)
			if !status.IsValid() {
				return nil, shared.NewValidationError("INVALID_STATUS", fmt.Sprintf("Invalid order status: %s", query.Status))
			}
			filter.Status = &status
		}
		filter.SupplierID = query.SupplierID
		filter.From = query.From
		filter.To = query.To
		if query.Page > 0 {
			filter.Page = query.Page
		}
		if query.PageSize > 0 {
			filter.PageSize = query.PageSize
		}
	}

	orders, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	total, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	page := shared.NewPaginated(ToPurchaseOrderResponses(orders), total, filter.Page, filter.PageSize)
	return &page, nil
}

// StatusSummary counts orders per receipt status
func (s *PurchaseOrderService) StatusSummary(ctx context.Context) (*OrderStatusSummaryResponse, error) {
	counts, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}

	summary := &OrderStatusSummaryResponse{
		Pending:           counts[purchasing.PurchaseOrderStatusPending],
		PartiallyReceived: counts[purchasing.PurchaseOrderStatusPartiallyReceived],
		Received:          counts[purchasing.PurchaseOrderStatusReceived],
		Cancelled:         counts[purchasing.PurchaseOrderStatusCancelled],
	}
	summary.Total = summary.Pending + summary.PartiallyReceived + summary.Received + summary.Cancelled
	return summary, nil
}

// resolveItems checks the requested products exist and are active, and
// snapshots their name and SKU onto the order lines
func (s *PurchaseOrderService) resolveItems(ctx context.Context, requests []OrderItemRequest) ([]purchasing.ItemInput, error) {
	ids := make([]uuid.UUID, len(requests))
	for i, r := range requests {
		ids[i] = r.ProductID
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	items := make([]purchasing.ItemInput, 0, len(requests))
	for _, r := range requests {
		product, ok := byID[r.ProductID]
		if !ok {
			return nil, shared.NewNotFoundError("PRODUCT_NOT_FOUND", fmt.Sprintf("Product %s not found", r.ProductID))
		}
		if !product.IsActive() {
			return nil, shared.NewStateError("PRODUCT_INACTIVE",
				fmt.Sprintf("Product %s is not active", product.SKU), string(product.Status))
		}
		items = append(items, purchasing.ItemInput{
			ProductID:       product.ID,
			ProductName:     product.Name,
			ProductSKU:      product.SKU,
			QuantityOrdered: r.Quantity,
			UnitPrice:       r.UnitPrice,
		})
	}
	return items, nil
}

// isRetryableConflict reports whether the receive transaction lost a race it
// can win on a retry. Over-receipt conflicts are surfaced to the caller
// because a retry would fail the same way against the updated order.
func (s *PurchaseOrderService) isRetryableConflict(err error) bool {
	if errors.Is(err, shared.ErrStockConflict) || errors.Is(err, shared.ErrConcurrencyConflict) {
		return true
	}
	return false
}

func (s *PurchaseOrderService) publishAndClear(ctx context.Context, order *purchasing.PurchaseOrder) {
	if s.eventPublisher == nil {
		return
	}
	events := order.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	order.ClearDomainEvents()
}

func (s *PurchaseOrderService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}
