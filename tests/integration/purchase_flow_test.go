package integration

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inventoryapp "github.com/minimart/backend/internal/application/inventory"
	purchasingapp "github.com/minimart/backend/internal/application/purchasing"
	reportapp "github.com/minimart/backend/internal/application/report"
	"github.com/minimart/backend/internal/domain/catalog"
	"github.com/minimart/backend/internal/domain/partner"
	"github.com/minimart/backend/internal/infrastructure/persistence"
)

type testEnv struct {
	productRepo   catalog.ProductRepository
	supplierRepo  partner.SupplierRepository
	orderService  *purchasingapp.PurchaseOrderService
	ledgerService *inventoryapp.LedgerService
	reportService *reportapp.StockReportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tdb := NewTestDB(t)

	productRepo := persistence.NewGormProductRepository(tdb.DB)
	supplierRepo := persistence.NewGormSupplierRepository(tdb.DB)
	movementRepo := persistence.NewGormStockMovementRepository(tdb.DB)
	orderRepo := persistence.NewGormPurchaseOrderRepository(tdb.DB)
	scope := persistence.NewGormTransactionScope(tdb.DB)

	return &testEnv{
		productRepo:   productRepo,
		supplierRepo:  supplierRepo,
		orderService:  purchasingapp.NewPurchaseOrderService(scope, orderRepo, productRepo, supplierRepo),
		ledgerService: inventoryapp.NewLedgerService(scope, movementRepo),
		reportService: reportapp.NewStockReportService(productRepo),
	}
}

func (e *testEnv) seedSupplier(t *testing.T, ctx context.Context, code string) *partner.Supplier {
	t.Helper()

	supplier, err := partner.NewSupplier(code, "Acme Wholesale")
	require.NoError(t, err)
	require.NoError(t, e.supplierRepo.Save(ctx, supplier))
	return supplier
}

func (e *testEnv) seedProduct(t *testing.T, ctx context.Context, sku string) *catalog.Product {
	t.Helper()

	product, err := catalog.NewProduct(sku, "Instant Noodles", "box", decimal.NewFromInt(12))
	require.NoError(t, err)
	require.NoError(t, e.productRepo.Save(ctx, product))
	return product
}

func TestPurchaseOrderLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	supplier := env.seedSupplier(t, ctx, "SUP-001")
	product := env.seedProduct(t, ctx, "SKU-NOODLES")

	// Create
	order, err := env.orderService.Create(ctx, &purchasingapp.CreatePurchaseOrderRequest{
		SupplierID: supplier.ID,
		Items: []purchasingapp.OrderItemRequest{
			{ProductID: product.ID, Quantity: 10, UnitPrice: decimal.NewFromInt(8)},
		},
		Tax: decimal.NewFromInt(4),
	})
	require.NoError(t, err)
	assert.Equal(t, "PENDING", order.Status)
	assert.Regexp(t, `^PO-\d{6}-\d{4}$`, order.OrderNumber)
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(80)))
	assert.True(t, order.Total.Equal(decimal.NewFromInt(84)))

	// Partial receipt
	receipt, err := env.orderService.Receive(ctx, order.ID, &purchasingapp.ReceiveGoodsRequest{
		Lines: []purchasingapp.ReceiveLineRequest{
			{ItemID: order.Items[0].ID, Quantity: 4},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "PARTIALLY_RECEIVED", receipt.Order.Status)

	got, err := env.productRepo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.Stock)
	assert.True(t, got.AverageCost.Equal(decimal.NewFromInt(8)), "average cost should equal first receipt cost, got %s", got.AverageCost)
	assert.True(t, got.LastCost.Equal(decimal.NewFromInt(8)))

	// Remaining receipt completes the order
	receipt, err = env.orderService.Receive(ctx, order.ID, &purchasingapp.ReceiveGoodsRequest{
		Lines: []purchasingapp.ReceiveLineRequest{
			{ItemID: order.Items[0].ID, Quantity: 6},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "RECEIVED", receipt.Order.Status)

	got, err = env.productRepo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Stock)

	// Every receipt left a ledger entry and the chain reconciles
	movements, err := env.ledgerService.ListMovements(ctx, product.ID, &inventoryapp.MovementListQuery{})
	require.NoError(t, err)
	require.Len(t, movements.Items, 2)
	assert.Equal(t, "PURCHASE", movements.Items[0].Type)
	assert.Equal(t, int64(0), movements.Items[0].PreviousStock)
	assert.Equal(t, int64(4), movements.Items[0].NewStock)
	assert.Equal(t, int64(4), movements.Items[1].PreviousStock)
	assert.Equal(t, int64(10), movements.Items[1].NewStock)

	consistency, err := env.ledgerService.CheckConsistency(ctx, product.ID)
	require.NoError(t, err)
	assert.True(t, consistency.Consistent)

	// Pay
	paid, err := env.orderService.Pay(ctx, order.ID, &purchasingapp.PayOrderRequest{PaymentMethod: "TRANSFER"})
	require.NoError(t, err)
	assert.Equal(t, "PAID", paid.PaymentStatus)
	require.NotNil(t, paid.PaymentMethod)
	assert.Equal(t, "TRANSFER", *paid.PaymentMethod)
	assert.NotNil(t, paid.PaidAt)
}

func TestMovingAverageCostAcrossOrders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	supplier := env.seedSupplier(t, ctx, "SUP-002")
	product := env.seedProduct(t, ctx, "SKU-AVG")

	receiveAll := func(unitPrice int64, quantity int64) {
		order, err := env.orderService.Create(ctx, &purchasingapp.CreatePurchaseOrderRequest{
			SupplierID: supplier.ID,
			Items: []purchasingapp.OrderItemRequest{
				{ProductID: product.ID, Quantity: quantity, UnitPrice: decimal.NewFromInt(unitPrice)},
			},
		})
		require.NoError(t, err)

		_, err = env.orderService.Receive(ctx, order.ID, &purchasingapp.ReceiveGoodsRequest{
			Lines: []purchasingapp.ReceiveLineRequest{
				{ItemID: order.Items[0].ID, Quantity: quantity},
			},
		})
		require.NoError(t, err)
	}

	receiveAll(10, 10) // 10 units @ 10
	receiveAll(16, 10) // 10 units @ 16 -> average (100+160)/20 = 13

	got, err := env.productRepo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), got.Stock)
	assert.True(t, got.AverageCost.Equal(decimal.NewFromInt(13)), "expected average cost 13, got %s", got.AverageCost)
	assert.True(t, got.LastCost.Equal(decimal.NewFromInt(16)))

	report, err := env.reportService.ProductStockValue(ctx, product.ID)
	require.NoError(t, err)
	assert.True(t, report.StockValue.Equal(decimal.NewFromInt(260)), "expected stock value 260, got %s", report.StockValue)
}

func TestAdjustmentAndReversal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	supplier := env.seedSupplier(t, ctx, "SUP-003")
	product := env.seedProduct(t, ctx, "SKU-ADJ")

	order, err := env.orderService.Create(ctx, &purchasingapp.CreatePurchaseOrderRequest{
		SupplierID: supplier.ID,
		Items: []purchasingapp.OrderItemRequest{
			{ProductID: product.ID, Quantity: 5, UnitPrice: decimal.NewFromInt(6)},
		},
	})
	require.NoError(t, err)
	_, err = env.orderService.Receive(ctx, order.ID, &purchasingapp.ReceiveGoodsRequest{
		Lines: []purchasingapp.ReceiveLineRequest{
			{ItemID: order.Items[0].ID, Quantity: 5},
		},
	})
	require.NoError(t, err)

	// Shrinkage found during a count
	adjustment, err := env.ledgerService.AppendAdjustment(ctx, &inventoryapp.AdjustStockRequest{
		ProductID: product.ID,
		Quantity:  -2,
		Reason:    "cycle count shrinkage",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), adjustment.NewStock)

	got, err := env.productRepo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Stock)

	// The count was wrong; reverse it
	reversal, err := env.ledgerService.ReverseMovement(ctx, adjustment.ID, &inventoryapp.ReverseMovementRequest{
		Reason: "count was mistaken",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), reversal.Quantity)
	assert.Equal(t, int64(5), reversal.NewStock)
	assert.Equal(t, "MOVEMENT_REVERSAL", reversal.ReferenceType)
	assert.Equal(t, adjustment.ID.String(), reversal.ReferenceID)

	consistency, err := env.ledgerService.CheckConsistency(ctx, product.ID)
	require.NoError(t, err)
	assert.True(t, consistency.Consistent)
	assert.Equal(t, int64(5), consistency.ProductStock)
}

func TestCancelPendingOrderOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	supplier := env.seedSupplier(t, ctx, "SUP-004")
	product := env.seedProduct(t, ctx, "SKU-CXL")

	order, err := env.orderService.Create(ctx, &purchasingapp.CreatePurchaseOrderRequest{
		SupplierID: supplier.ID,
		Items: []purchasingapp.OrderItemRequest{
			{ProductID: product.ID, Quantity: 3, UnitPrice: decimal.NewFromInt(9)},
		},
	})
	require.NoError(t, err)

	cancelled, err := env.orderService.Cancel(ctx, order.ID, &purchasingapp.CancelOrderRequest{Reason: "supplier out of stock"})
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)

	// Goods were never received, so no ledger entries and no stock
	got, err := env.productRepo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Stock)

	movements, err := env.ledgerService.ListMovements(ctx, product.ID, &inventoryapp.MovementListQuery{})
	require.NoError(t, err)
	assert.Empty(t, movements.Items)

	// Receiving against a cancelled order is rejected
	_, err = env.orderService.Receive(ctx, order.ID, &purchasingapp.ReceiveGoodsRequest{
		Lines: []purchasingapp.ReceiveLineRequest{
			{ItemID: order.Items[0].ID, Quantity: 1},
		},
	})
	require.Error(t, err)
}
