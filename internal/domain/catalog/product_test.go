package catalog

import (
	"errors"
	"testing"

	"github.com/minimart/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	tests := []struct {
		name      string
		sku       string
		prodName  string
		unit      string
		basePrice decimal.Decimal
		wantErr   string
	}{
		{"valid", "COLA-600", "Cola 600ml", "pcs", decimal.NewFromInt(18), ""},
		{"lowercase sku uppercased", "cola-600", "Cola 600ml", "pcs", decimal.NewFromInt(18), ""},
		{"empty sku", "", "Cola", "pcs", decimal.Zero, "INVALID_SKU"},
		{"sku with spaces", "COLA 600", "Cola", "pcs", decimal.Zero, "INVALID_SKU"},
		{"empty name", "COLA-600", "", "pcs", decimal.Zero, "INVALID_NAME"},
		{"negative price", "COLA-600", "Cola", "pcs", decimal.NewFromInt(-1), "INVALID_PRICE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProduct(tt.sku, tt.prodName, tt.unit, tt.basePrice)
			if tt.wantErr != "" {
				var domainErr *shared.DomainError
				require.True(t, errors.As(err, &domainErr))
				assert.Equal(t, tt.wantErr, domainErr.Code)
				assert.Equal(t, shared.KindValidation, domainErr.Kind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "COLA-600", p.SKU)
			assert.Equal(t, ProductStatusActive, p.Status)
			assert.True(t, p.AverageCost.IsZero())
			assert.Equal(t, int64(0), p.Stock)
			assert.Len(t, p.GetDomainEvents(), 1)
		})
	}
}

func TestProductApplyStock(t *testing.T) {
	p, err := NewProduct("COLA-600", "Cola 600ml", "pcs", decimal.NewFromInt(18))
	require.NoError(t, err)

	avgCost := decimal.NewFromInt(12)
	require.NoError(t, p.ApplyStock(0, 10, avgCost, avgCost))
	assert.Equal(t, int64(10), p.Stock)
	assert.True(t, p.AverageCost.Equal(avgCost))
	assert.True(t, p.LastCost.Equal(avgCost))
}

func TestProductApplyStockStaleSnapshot(t *testing.T) {
	p, err := NewProduct("COLA-600", "Cola 600ml", "pcs", decimal.NewFromInt(18))
	require.NoError(t, err)
	require.NoError(t, p.ApplyStock(0, 10, decimal.NewFromInt(12), decimal.NewFromInt(12)))

	err = p.ApplyStock(0, 15, decimal.NewFromInt(12), decimal.NewFromInt(12))
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, shared.KindConflict, domainErr.Kind)
	assert.True(t, domainErr.Retryable())
	assert.Equal(t, int64(10), p.Stock)
}

func TestProductApplyStockNegative(t *testing.T) {
	p, err := NewProduct("COLA-600", "Cola 600ml", "pcs", decimal.NewFromInt(18))
	require.NoError(t, err)

	err = p.ApplyStock(0, -5, decimal.Zero, decimal.Zero)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, shared.KindValidation, domainErr.Kind)
}

func TestProductStatusTransitions(t *testing.T) {
	p, err := NewProduct("COLA-600", "Cola 600ml", "pcs", decimal.NewFromInt(18))
	require.NoError(t, err)

	require.NoError(t, p.Deactivate())
	assert.False(t, p.IsActive())

	err = p.Deactivate()
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, shared.KindState, domainErr.Kind)

	require.NoError(t, p.Activate())
	assert.True(t, p.IsActive())
}

func TestProductIsLowStock(t *testing.T) {
	p, err := NewProduct("COLA-600", "Cola 600ml", "pcs", decimal.NewFromInt(18))
	require.NoError(t, err)

	assert.False(t, p.IsLowStock())

	require.NoError(t, p.SetMinStock(5))
	assert.True(t, p.IsLowStock())

	require.NoError(t, p.ApplyStock(0, 5, decimal.Zero, decimal.Zero))
	assert.False(t, p.IsLowStock())
}
