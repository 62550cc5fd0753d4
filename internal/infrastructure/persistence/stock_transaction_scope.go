package persistence

import (
	"context"

	appinventory "github.com/minimart/backend/internal/application/inventory"
	"github.com/minimart/backend/internal/domain/catalog"
	"github.com/minimart/backend/internal/domain/inventory"
	"github.com/minimart/backend/internal/domain/purchasing"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction. All
// repositories handed to fn share the transaction and commit or roll back
// together.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinventory.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newGormTransactionalRepositories(tx))
	})
}

// gormTransactionalRepositories builds repositories bound to a single transaction
type gormTransactionalRepositories struct {
	productRepo  *GormProductRepository
	movementRepo *GormStockMovementRepository
	orderRepo    *GormPurchaseOrderRepository
}

func newGormTransactionalRepositories(tx *gorm.DB) *gormTransactionalRepositories {
	return &gormTransactionalRepositories{
		productRepo:  NewGormProductRepository(tx),
		movementRepo: NewGormStockMovementRepository(tx),
		orderRepo:    NewGormPurchaseOrderRepository(tx),
	}
}

// ProductRepo returns the product repository scoped to the transaction
func (r *gormTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return r.productRepo
}

// MovementRepo returns the stock movement repository scoped to the transaction
func (r *gormTransactionalRepositories) MovementRepo() inventory.StockMovementRepository {
	return r.movementRepo
}

// OrderRepo returns the purchase order repository scoped to the transaction
func (r *gormTransactionalRepositories) OrderRepo() purchasing.PurchaseOrderRepository {
	return r.orderRepo
}

// Ensure interfaces are implemented
var _ appinventory.TransactionScope = (*GormTransactionScope)(nil)
var _ appinventory.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
