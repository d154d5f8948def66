package report

import (
	"github.com/shopspring/decimal"
)

// VarianceRow compares the actual margin of a dimension value with its budget.
//
// BudgetMargin, Variance and VariancePercent are nil when there is no budget
// for the key. A zero variance means actual and budget are equal.
type VarianceRow struct {
	Key             string           `json:"key" example:"WEB_RELAUNCH"`
	ActualMargin    decimal.Decimal  `json:"actualMargin" example:"-38250"`
	BudgetMargin    *decimal.Decimal `json:"budgetMargin,omitempty" example:"-45000"`
	Variance        *decimal.Decimal `json:"variance,omitempty" example:"6750"`      // Actual minus budget
	VariancePercent *decimal.Decimal `json:"variancePercent,omitempty" example:"15"` // Variance in percent of the absolute budget, nil if the budget is zero
}

// VarianceAnalysis left joins the actual rows with the budget rows on their
// key. The order of the actual rows is kept.
func VarianceAnalysis(actual, budget []PnLData) []VarianceRow {
	budgets := make(map[string]decimal.Decimal, len(budget))
	for _, b := range budget {
		budgets[b.Key] = b.Margin
	}

	rows := make([]VarianceRow, 0, len(actual))
	for _, a := range actual {
		row := VarianceRow{
			Key:          a.Key,
			ActualMargin: a.Margin,
		}

		if b, ok := budgets[a.Key]; ok {
			variance := a.Margin.Sub(b)
			row.BudgetMargin = &b
			row.Variance = &variance

			if !b.IsZero() {
				percent := variance.Div(b.Abs()).Mul(hundred)
				row.VariancePercent = &percent
			}
		}

		rows = append(rows, row)
	}

	return rows
}
