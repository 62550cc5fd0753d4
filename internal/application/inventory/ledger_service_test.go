package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/minimart/backend/internal/domain/catalog"
	"github.com/minimart/backend/internal/domain/inventory"
	"github.com/minimart/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestProduct(t *testing.T, stock int64, averageCost decimal.Decimal) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct("WIDGET-1", "Widget", "pcs", decimal.NewFromInt(25))
	require.NoError(t, err)
	product.Stock = stock
	product.AverageCost = averageCost
	product.LastCost = averageCost
	product.ClearDomainEvents()
	return product
}

func newLedgerService(productRepo *MockProductRepository, movementRepo *MockStockMovementRepository) (*LedgerService, *MockEventPublisher) {
	scope := NewNoOpTransactionScope(productRepo, movementRepo, nil)
	service := NewLedgerService(scope, movementRepo)
	publisher := NewMockEventPublisher()
	service.SetEventPublisher(publisher)
	return service, publisher
}

func TestAppendAdjustmentIncreasesStock(t *testing.T) {
	productRepo := new(MockProductRepository)
	movementRepo := new(MockStockMovementRepository)
	service, publisher := newLedgerService(productRepo, movementRepo)

	product := newTestProduct(t, 10, decimal.NewFromInt(12))
	productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	movementRepo.On("Append", mock.Anything, mock.AnythingOfType("*inventory.StockMovement")).Return(nil)
	productRepo.On("UpdateStockAndCost", mock.Anything, product, int64(10)).Return(nil)

	resp, err := service.AppendAdjustment(context.Background(), &AdjustStockRequest{
		ProductID: product.ID,
		Quantity:  3,
		Reason:    "cycle count",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3), resp.Quantity)
	assert.Equal(t, int64(10), resp.PreviousStock)
	assert.Equal(t, int64(13), resp.NewStock)
	assert.Equal(t, inventory.MovementTypeAdjustment.String(), resp.Type)
	assert.Equal(t, inventory.ReferenceTypeManualAdjustment.String(), resp.ReferenceType)
	assert.Equal(t, "cycle count", resp.Reason)

	assert.Equal(t, int64(13), product.Stock)
	assert.True(t, product.AverageCost.Equal(decimal.NewFromInt(12)))

	appended := publisher.GetEventsByType(inventory.EventTypeStockMovementAppended)
	assert.Len(t, appended, 1)
	productRepo.AssertExpectations(t)
	movementRepo.AssertExpectations(t)
}

func TestAppendAdjustmentRejectsNegativeResult(t *testing.T) {
	productRepo := new(MockProductRepository)
	movementRepo := new(MockStockMovementRepository)
	service, publisher := newLedgerService(productRepo, movementRepo)

	product := newTestProduct(t, 2, decimal.NewFromInt(12))
	productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)

	_, err := service.AppendAdjustment(context.Background(), &AdjustStockRequest{
		ProductID: product.ID,
		Quantity:  -5,
		Reason:    "damage",
	})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NEGATIVE_STOCK", domainErr.Code)

	assert.Equal(t, int64(2), product.Stock)
	assert.Empty(t, publisher.GetEvents())
	movementRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestAppendAdjustmentRequiresReason(t *testing.T) {
	productRepo := new(MockProductRepository)
	movementRepo := new(MockStockMovementRepository)
	service, _ := newLedgerService(productRepo, movementRepo)

	_, err := service.AppendAdjustment(context.Background(), &AdjustStockRequest{
		ProductID: uuid.New(),
		Quantity:  1,
	})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_REASON", domainErr.Code)
	productRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestAppendAdjustmentRetriesOnStockConflict(t *testing.T) {
	productRepo := new(MockProductRepository)
	movementRepo := new(MockStockMovementRepository)
	service, _ := newLedgerService(productRepo, movementRepo)

	first := newTestProduct(t, 10, decimal.NewFromInt(12))
	second := newTestProduct(t, 11, decimal.NewFromInt(12))
	second.BaseEntity = first.BaseEntity

	productRepo.On("FindByID", mock.Anything, first.ID).Return(first, nil).Once()
	productRepo.On("FindByID", mock.Anything, first.ID).Return(second, nil).Once()
	movementRepo.On("Append", mock.Anything, mock.AnythingOfType("*inventory.StockMovement")).Return(nil)
	productRepo.On("UpdateStockAndCost", mock.Anything, first, int64(10)).Return(shared.ErrStockConflict).Once()
	productRepo.On("UpdateStockAndCost", mock.Anything, second, int64(11)).Return(nil).Once()

	resp, err := service.AppendAdjustment(context.Background(), &AdjustStockRequest{
		ProductID: first.ID,
		Quantity:  2,
		Reason:    "recount",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(11), resp.PreviousStock)
	assert.Equal(t, int64(13), resp.NewStock)
	productRepo.AssertExpectations(t)
}

func TestAppendAdjustmentPublishesLowStockEvent(t *testing.T) {
	productRepo := new(MockProductRepository)
	movementRepo := new(MockStockMovementRepository)
	service, publisher := newLedgerService(productRepo, movementRepo)

	product := newTestProduct(t, 10, decimal.NewFromInt(12))
	require.NoError(t, product.SetMinStock(8))
	productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	movementRepo.On("Append", mock.Anything, mock.AnythingOfType("*inventory.StockMovement")).Return(nil)
	productRepo.On("UpdateStockAndCost", mock.Anything, product, int64(10)).Return(nil)

	_, err := service.AppendAdjustment(context.Background(), &AdjustStockRequest{
		ProductID: product.ID,
		Quantity:  -4,
		Reason:    "shrinkage",
	})
	require.NoError(t, err)

	lowStock := publisher.GetEventsByType(inventory.EventTypeLowStockDetected)
	require.Len(t, lowStock, 1)
	event := lowStock[0].(*inventory.LowStockDetectedEvent)
	assert.Equal(t, int64(6), event.Stock)
	assert.Equal(t, int64(8), event.MinStock)
}

func TestReverseMovementAppendsOffsettingAdjustment(t *testing.T) {
	productRepo := new(MockProductRepository)
	movementRepo := new(MockStockMovementRepository)
	service, publisher := newLedgerService(productRepo, movementRepo)

	product := newTestProduct(t, 8, decimal.NewFromInt(100))
	original, err := inventory.NewStockMovement(
		product.ID, inventory.MovementTypePurchase, 5, decimal.NewFromInt(100), 3,
		inventory.ReferenceTypePurchaseOrder, uuid.New().String())
	require.NoError(t, err)

	movementRepo.On("FindByReference", mock.Anything, inventory.ReferenceTypeMovementReversal, original.ID.String()).
		Return([]inventory.StockMovement{}, nil)
	movementRepo.On("FindByID", mock.Anything, original.ID).Return(original, nil)
	productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)

	var reversal *inventory.StockMovement
	movementRepo.On("Append", mock.Anything, mock.AnythingOfType("*inventory.StockMovement")).
		Run(func(args mock.Arguments) {
			reversal = args.Get(1).(*inventory.StockMovement)
		}).Return(nil)
	productRepo.On("UpdateStockAndCost", mock.Anything, product, int64(8)).Return(nil)

	resp, err := service.ReverseMovement(context.Background(), original.ID, &ReverseMovementRequest{Reason: "wrong order"})
	require.NoError(t, err)

	require.NotNil(t, reversal)
	assert.Equal(t, inventory.MovementTypeAdjustment, reversal.Type)
	assert.Equal(t, int64(-5), reversal.Quantity)
	assert.Equal(t, int64(8), reversal.PreviousStock)
	assert.Equal(t, int64(3), reversal.NewStock)
	assert.Equal(t, inventory.ReferenceTypeMovementReversal, reversal.ReferenceType)
	assert.Equal(t, original.ID.String(), reversal.ReferenceID)

	assert.Equal(t, int64(3), product.Stock)
	assert.Equal(t, int64(3), resp.NewStock)
	assert.Len(t, publisher.GetEventsByType(inventory.EventTypeStockMovementAppended), 1)
}

func TestReverseMovementOnlyOnce(t *testing.T) {
	productRepo := new(MockProductRepository)
	movementRepo := new(MockStockMovementRepository)
	service, _ := newLedgerService(productRepo, movementRepo)

	movementID := uuid.New()
	existing, err := inventory.NewStockMovement(
		uuid.New(), inventory.MovementTypeAdjustment, -5, decimal.NewFromInt(100), 8,
		inventory.ReferenceTypeMovementReversal, movementID.String())
	require.NoError(t, err)

	movementRepo.On("FindByReference", mock.Anything, inventory.ReferenceTypeMovementReversal, movementID.String()).
		Return([]inventory.StockMovement{*existing}, nil)

	_, err = service.ReverseMovement(context.Background(), movementID, &ReverseMovementRequest{Reason: "again"})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_REVERSED", domainErr.Code)
	movementRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestListMovementsRejectsUnknownType(t *testing.T) {
	productRepo := new(MockProductRepository)
	movementRepo := new(MockStockMovementRepository)
	service, _ := newLedgerService(productRepo, movementRepo)

	_, err := service.ListMovements(context.Background(), uuid.New(), &MovementListQuery{Types: []string{"TELEPORT"}})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_MOVEMENT_TYPE", domainErr.Code)
}

func TestListMovementsPaginates(t *testing.T) {
	productRepo := new(MockProductRepository)
	movementRepo := new(MockStockMovementRepository)
	service, _ := newLedgerService(productRepo, movementRepo)

	productID := uuid.New()
	movement, err := inventory.NewStockMovement(
		productID, inventory.MovementTypePurchase, 5, decimal.NewFromInt(10), 0,
		inventory.ReferenceTypePurchaseOrder, uuid.New().String())
	require.NoError(t, err)

	movementRepo.On("FindByProduct", mock.Anything, productID, mock.AnythingOfType("inventory.MovementFilter")).
		Return([]inventory.StockMovement{*movement}, nil)
	movementRepo.On("CountByProduct", mock.Anything, productID, mock.AnythingOfType("inventory.MovementFilter")).
		Return(int64(1), nil)

	page, err := service.ListMovements(context.Background(), productID, &MovementListQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)

	assert.Equal(t, int64(1), page.Total)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, movement.ID, page.Items[0].ID)
}

func TestCheckConsistency(t *testing.T) {
	productRepo := new(MockProductRepository)
	movementRepo := new(MockStockMovementRepository)
	service, _ := newLedgerService(productRepo, movementRepo)

	product := newTestProduct(t, 13, decimal.NewFromInt(12))
	productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	movementRepo.On("SumQuantityByProduct", mock.Anything, product.ID).Return(int64(13), nil).Once()

	resp, err := service.CheckConsistency(context.Background(), product.ID)
	require.NoError(t, err)
	assert.True(t, resp.Consistent)
	assert.Equal(t, int64(13), resp.LedgerSum)

	movementRepo.On("SumQuantityByProduct", mock.Anything, product.ID).Return(int64(12), nil).Once()
	resp, err = service.CheckConsistency(context.Background(), product.ID)
	require.NoError(t, err)
	assert.False(t, resp.Consistent)
}
