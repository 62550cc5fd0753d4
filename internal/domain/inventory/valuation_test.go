package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecomputeAverageCost(t *testing.T) {
	tests := []struct {
		name         string
		currentStock int64
		currentAvg   string
		incomingQty  int64
		incomingCost string
		want         string
	}{
		{"blend into existing stock", 10, "1000", 5, "1600", "1200"},
		{"zero stock bootstrap", 0, "0", 5, "1600", "1600"},
		{"zero stock with stale average", 0, "500", 5, "1600", "1600"},
		{"same cost leaves average unchanged", 10, "12.5", 10, "12.5", "12.5"},
		{"rounds to four places", 3, "10", 7, "11", "10.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecomputeAverageCost(
				tt.currentStock,
				decimal.RequireFromString(tt.currentAvg),
				tt.incomingQty,
				decimal.RequireFromString(tt.incomingCost),
			)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"got %s, want %s", got, tt.want)
		})
	}
}

// Splitting one receipt batch into multiple sequential calls must converge on
// the same average as a single call, within rounding tolerance.
func TestRecomputeAverageCostSplitInvariance(t *testing.T) {
	currentStock := int64(10)
	currentAvg := decimal.RequireFromString("1000")
	incomingCost := decimal.RequireFromString("1600")

	single := RecomputeAverageCost(currentStock, currentAvg, 15, incomingCost)

	splits := [][]int64{
		{5, 10},
		{10, 5},
		{1, 14},
		{3, 4, 8},
		{5, 5, 5},
	}

	tolerance := decimal.RequireFromString("0.001")
	for _, split := range splits {
		stock := currentStock
		avg := currentAvg
		for _, qty := range split {
			avg = RecomputeAverageCost(stock, avg, qty, incomingCost)
			stock += qty
		}
		require.Equal(t, currentStock+int64(15), stock)
		diff := single.Sub(avg).Abs()
		assert.True(t, diff.LessThanOrEqual(tolerance),
			"split %v diverged: single=%s sequential=%s", split, single, avg)
	}
}

func TestStockValueMetrics(t *testing.T) {
	stock := int64(15)
	avgCost := decimal.RequireFromString("1200")
	basePrice := decimal.RequireFromString("1800")

	value := StockValue(stock, avgCost)
	assert.True(t, value.Equal(decimal.RequireFromString("18000")))

	revenue := PotentialRevenue(stock, basePrice)
	assert.True(t, revenue.Equal(decimal.RequireFromString("27000")))

	profit := PotentialProfit(revenue, value)
	assert.True(t, profit.Equal(decimal.RequireFromString("9000")))

	margin := ProfitMarginPercent(revenue, profit)
	assert.True(t, margin.Equal(decimal.RequireFromString("33.33")), "got %s", margin)
}

func TestProfitMarginPercentZeroRevenue(t *testing.T) {
	margin := ProfitMarginPercent(decimal.Zero, decimal.Zero)
	assert.True(t, margin.IsZero())
}
