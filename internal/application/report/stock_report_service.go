package report

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/minimart/backend/internal/domain/catalog"
	"github.com/minimart/backend/internal/domain/inventory"
	"github.com/minimart/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// reportPageSize bounds how many products a single report pass loads
const reportPageSize = 500

// StockValueLine is the per-product row of the stock value report
type StockValueLine struct {
	ProductID        uuid.UUID       `json:"product_id"`
	SKU              string          `json:"sku"`
	Name             string          `json:"name"`
	Stock            int64           `json:"stock"`
	AverageCost      decimal.Decimal `json:"average_cost"`
	BasePrice        decimal.Decimal `json:"base_price"`
	StockValue       decimal.Decimal `json:"stock_value"`
	PotentialRevenue decimal.Decimal `json:"potential_revenue"`
	PotentialProfit  decimal.Decimal `json:"potential_profit"`
	ProfitMargin     decimal.Decimal `json:"profit_margin"`
	LowStock         bool            `json:"low_stock"`
}

// StockValueReport aggregates inventory valuation across the catalog
type StockValueReport struct {
	Lines                 []StockValueLine `json:"lines"`
	TotalStockValue       decimal.Decimal  `json:"total_stock_value"`
	TotalPotentialRevenue decimal.Decimal  `json:"total_potential_revenue"`
	TotalPotentialProfit  decimal.Decimal  `json:"total_potential_profit"`
	OverallProfitMargin   decimal.Decimal  `json:"overall_profit_margin"`
	ProductCount          int              `json:"product_count"`
	LowStockCount         int              `json:"low_stock_count"`
}

// StockReportService builds valuation reports over the product catalog.
// Reports value stock at the moving-average cost maintained by the ledger.
type StockReportService struct {
	productRepo catalog.ProductRepository
}

// NewStockReportService creates a new StockReportService
func NewStockReportService(productRepo catalog.ProductRepository) *StockReportService {
	return &StockReportService{productRepo: productRepo}
}

// StockValue computes the stock value report across all active products
func (s *StockReportService) StockValue(ctx context.Context) (*StockValueReport, error) {
	report := &StockValueReport{
		Lines:                 make([]StockValueLine, 0),
		TotalStockValue:       decimal.Zero,
		TotalPotentialRevenue: decimal.Zero,
		TotalPotentialProfit:  decimal.Zero,
	}

	filter := shared.DefaultFilter()
	filter.PageSize = reportPageSize
	filter.OrderBy = "sku"
	filter.OrderDir = "asc"

	for page := 1; ; page++ {
		filter.Page = page
		products, err := s.productRepo.FindActive(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to load products: %w", err)
		}
		if len(products) == 0 {
			break
		}

		for i := range products {
			line := buildLine(&products[i])
			report.Lines = append(report.Lines, line)
			report.TotalStockValue = report.TotalStockValue.Add(line.StockValue)
			report.TotalPotentialRevenue = report.TotalPotentialRevenue.Add(line.PotentialRevenue)
			report.TotalPotentialProfit = report.TotalPotentialProfit.Add(line.PotentialProfit)
			if line.LowStock {
				report.LowStockCount++
			}
		}

		if len(products) < reportPageSize {
			break
		}
	}

	report.ProductCount = len(report.Lines)
	report.OverallProfitMargin = inventory.ProfitMarginPercent(report.TotalPotentialRevenue, report.TotalPotentialProfit)
	return report, nil
}

// ProductStockValue computes the valuation line for a single product
func (s *StockReportService) ProductStockValue(ctx context.Context, productID uuid.UUID) (*StockValueLine, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	line := buildLine(product)
	return &line, nil
}

// LowStock returns the valuation lines for products below their minimum
// stock threshold
func (s *StockReportService) LowStock(ctx context.Context) ([]StockValueLine, error) {
	report, err := s.StockValue(ctx)
	if err != nil {
		return nil, err
	}

	lines := make([]StockValueLine, 0, report.LowStockCount)
	for _, line := range report.Lines {
		if line.LowStock {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

func buildLine(product *catalog.Product) StockValueLine {
	stockValue := inventory.StockValue(product.Stock, product.AverageCost)
	revenue := inventory.PotentialRevenue(product.Stock, product.BasePrice)
	profit := inventory.PotentialProfit(revenue, stockValue)

	return StockValueLine{
		ProductID:        product.ID,
		SKU:              product.SKU,
		Name:             product.Name,
		Stock:            product.Stock,
		AverageCost:      product.AverageCost,
		BasePrice:        product.BasePrice,
		StockValue:       stockValue,
		PotentialRevenue: revenue,
		PotentialProfit:  profit,
		ProfitMargin:     inventory.ProfitMarginPercent(revenue, profit),
		LowStock:         product.IsLowStock(),
	}
}
