package inventory

import "github.com/shopspring/decimal"

// Costs are carried at 4 decimal places, display percentages at 2.
const (
	costPrecision    = 4
	percentPrecision = 2
)

// RecomputeAverageCost blends an incoming receipt into the running weighted
// average cost. Called once per receipt line with the stock level as it stood
// before that specific movement, so multi-line receipts apply sequentially.
func RecomputeAverageCost(currentStock int64, currentAverageCost decimal.Decimal, incomingQuantity int64, incomingUnitCost decimal.Decimal) decimal.Decimal {
	denominator := currentStock + incomingQuantity
	if denominator <= 0 {
		return currentAverageCost
	}
	if currentStock <= 0 {
		return incomingUnitCost.Round(costPrecision)
	}

	currentValue := decimal.NewFromInt(currentStock).Mul(currentAverageCost)
	incomingValue := decimal.NewFromInt(incomingQuantity).Mul(incomingUnitCost)

	return currentValue.Add(incomingValue).Div(decimal.NewFromInt(denominator)).Round(costPrecision)
}

// StockValue returns the value of on-hand stock at average cost
func StockValue(stock int64, averageCost decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(stock).Mul(averageCost)
}

// PotentialRevenue returns the revenue if all on-hand stock sold at base price
func PotentialRevenue(stock int64, basePrice decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(stock).Mul(basePrice)
}

// PotentialProfit returns potential revenue minus stock value
func PotentialProfit(revenue, stockValue decimal.Decimal) decimal.Decimal {
	return revenue.Sub(stockValue)
}

// ProfitMarginPercent returns the profit margin as a display percentage.
// Zero revenue yields zero rather than a division error.
func ProfitMarginPercent(revenue, profit decimal.Decimal) decimal.Decimal {
	if revenue.IsZero() {
		return decimal.Zero
	}
	return profit.Div(revenue).Mul(decimal.NewFromInt(100)).Round(percentPrecision)
}
