package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minimart/backend/internal/domain/shared"
	"github.com/minimart/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "active"
	ProductStatusInactive     ProductStatus = "inactive"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

// Product represents a product/SKU in the catalog.
// It is the aggregate root for product-related operations. Stock and cost
// fields are written exclusively through the stock ledger.
type Product struct {
	shared.BaseAggregateRoot
	SKU         string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	Unit        string          `gorm:"type:varchar(20);not null;default:'pcs'"`
	BasePrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Selling price
	Stock       int64           `gorm:"not null;default:0"`
	MinStock    int64           `gorm:"not null;default:0"` // Threshold for low-stock alerts
	AverageCost decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LastCost    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status      ProductStatus   `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(sku, name, unit string, basePrice decimal.Decimal) (*Product, error) {
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if unit == "" {
		unit = "pcs"
	}
	if len(unit) > 20 {
		return nil, shared.NewValidationError("INVALID_UNIT", "Unit cannot exceed 20 characters")
	}
	if basePrice.IsNegative() {
		return nil, shared.NewValidationError("INVALID_PRICE", "Base price cannot be negative")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               strings.ToUpper(sku),
		Name:              name,
		Unit:              unit,
		BasePrice:         basePrice,
		AverageCost:       decimal.Zero,
		LastCost:          decimal.Zero,
		Status:            ProductStatusActive,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update updates the product's basic information
func (p *Product) Update(name, description string) error {
	if err := validateProductName(name); err != nil {
		return err
	}

	p.Name = name
	p.Description = description
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// SetBasePrice updates the selling price
func (p *Product) SetBasePrice(price valueobject.Money) error {
	if price.Amount().IsNegative() {
		return shared.NewValidationError("INVALID_PRICE", "Base price cannot be negative")
	}

	p.BasePrice = price.Amount()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetMinStock sets the low-stock alert threshold
func (p *Product) SetMinStock(minStock int64) error {
	if minStock < 0 {
		return shared.NewValidationError("INVALID_MIN_STOCK", "Minimum stock cannot be negative")
	}

	p.MinStock = minStock
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// ApplyStock transitions stock and cost fields as recorded by a ledger movement.
// previousStock must match the product's current stock; a mismatch means a
// concurrent movement won the race and the caller must reload and retry.
func (p *Product) ApplyStock(previousStock, newStock int64, averageCost, lastCost decimal.Decimal) error {
	if p.Stock != previousStock {
		return shared.ErrStockConflict
	}
	if newStock < 0 {
		return shared.ErrNegativeStock
	}
	if averageCost.IsNegative() || lastCost.IsNegative() {
		return shared.NewValidationError("INVALID_COST", "Cost cannot be negative")
	}

	p.Stock = newStock
	p.AverageCost = averageCost
	p.LastCost = lastCost
	p.UpdatedAt = time.Now()

	return nil
}

// Activate activates the product
func (p *Product) Activate() error {
	if p.Status == ProductStatusActive {
		return shared.NewStateError("ALREADY_ACTIVE", "Product is already active", string(p.Status))
	}
	if p.Status == ProductStatusDiscontinued {
		return shared.NewStateError("CANNOT_ACTIVATE", "Cannot activate a discontinued product", string(p.Status))
	}

	oldStatus := p.Status
	p.Status = ProductStatusActive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductStatusChangedEvent(p, oldStatus, ProductStatusActive))

	return nil
}

// Deactivate deactivates the product
func (p *Product) Deactivate() error {
	if p.Status == ProductStatusInactive {
		return shared.NewStateError("ALREADY_INACTIVE", "Product is already inactive", string(p.Status))
	}
	if p.Status == ProductStatusDiscontinued {
		return shared.NewStateError("CANNOT_DEACTIVATE", "Cannot deactivate a discontinued product", string(p.Status))
	}

	oldStatus := p.Status
	p.Status = ProductStatusInactive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductStatusChangedEvent(p, oldStatus, ProductStatusInactive))

	return nil
}

// IsActive returns true if the product is active
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// IsLowStock returns true if stock has fallen below the alert threshold
func (p *Product) IsLowStock() bool {
	return p.MinStock > 0 && p.Stock < p.MinStock
}

// GetBasePriceMoney returns the selling price as a Money value object
func (p *Product) GetBasePriceMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(p.BasePrice)
}

// GetAverageCostMoney returns the average cost as a Money value object
func (p *Product) GetAverageCostMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(p.AverageCost)
}

func validateSKU(sku string) error {
	if sku == "" {
		return shared.NewValidationError("INVALID_SKU", "Product SKU cannot be empty")
	}
	if len(sku) > 50 {
		return shared.NewValidationError("INVALID_SKU", "Product SKU cannot exceed 50 characters")
	}
	for _, r := range sku {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewValidationError("INVALID_SKU", "Product SKU can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewValidationError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
