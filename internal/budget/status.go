package budget

import (
	"github.com/envelope-zero/analytics/internal/models"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	half    = decimal.NewFromInt(50)
)

// DefaultAlertThreshold is used when a budget is created without a threshold.
var DefaultAlertThreshold = decimal.NewFromInt(80)

// Consumption returns the absolute actual amount in percent of the budget
// amount. Costs are negative in the ledger, spend is their magnitude.
func Consumption(actual, budget decimal.Decimal) decimal.Decimal {
	if !budget.IsPositive() {
		return decimal.Zero
	}

	return actual.Abs().Div(budget).Mul(hundred)
}

// Status derives the budget status from the consumption in percent.
//
// All comparisons are strict: a budget consumed to exactly its threshold is
// still on track.
func Status(consumption, threshold decimal.Decimal) models.BudgetStatus {
	switch {
	case consumption.GreaterThan(hundred):
		return models.BudgetOverrun
	case consumption.GreaterThan(threshold):
		return models.BudgetWarning
	case consumption.LessThan(half):
		return models.BudgetUnderBudget
	}

	return models.BudgetOnTrack
}
