package report

import (
	"context"
	"time"

	"github.com/envelope-zero/analytics/internal/allocation"
	"github.com/envelope-zero/analytics/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Reporter builds reports from the stored tagged entries and budget lines.
type Reporter struct {
	db *gorm.DB
}

func NewReporter(db *gorm.DB) *Reporter {
	return &Reporter{db: db}
}

// Query selects the entries a report is built from.
type Query struct {
	AxisCode string    `form:"axis" example:"PROJECT"`
	From     time.Time `form:"from" time_format:"2006-01-02"` // Inclusive, ignored if zero
	To       time.Time `form:"to" time_format:"2006-01-02"`   // Exclusive, ignored if zero
}

func (r *Reporter) entries(ctx context.Context, from, to time.Time) ([]models.TaggedEntry, error) {
	return allocation.FindTagged(r.db.WithContext(ctx), allocation.TaggedFilter{From: from, To: to})
}

// PnL returns the profit and loss per value of the queried axis.
func (r *Reporter) PnL(ctx context.Context, q Query) ([]PnLData, error) {
	entries, err := r.entries(ctx, q.From, q.To)
	if err != nil {
		return nil, err
	}

	return ComputePnL(GroupByDimension(entries, q.AxisCode)), nil
}

// Heatmap returns the margin by the values of two axes.
func (r *Reporter) Heatmap(ctx context.Context, rowAxis, columnAxis string, from, to time.Time) (Heatmap, error) {
	entries, err := r.entries(ctx, from, to)
	if err != nil {
		return Heatmap{}, err
	}

	return NewHeatmap(entries, rowAxis, columnAxis), nil
}

// BudgetVariance compares the actual margin per value of the queried axis
// with the budget lines on that axis that overlap the queried window.
//
// A budget line plans costs, its planned margin is the negative budget
// amount. Several budget lines for one value are summed.
func (r *Reporter) BudgetVariance(ctx context.Context, q Query) ([]VarianceRow, error) {
	actual, err := r.PnL(ctx, q)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Where("axis_type = ?", models.NormalizeAxisCode(q.AxisCode))
	if !q.To.IsZero() {
		query = query.Where("start_date < ?", q.To)
	}
	if !q.From.IsZero() {
		query = query.Where("end_date > ?", q.From)
	}

	var lines []models.BudgetLine
	err = query.Order("axis_value ASC").Find(&lines).Error
	if err != nil {
		return nil, err
	}

	planned := make(map[string]decimal.Decimal)
	var keys []string
	for _, l := range lines {
		if _, ok := planned[l.AxisValue]; !ok {
			keys = append(keys, l.AxisValue)
			planned[l.AxisValue] = decimal.Zero
		}
		planned[l.AxisValue] = planned[l.AxisValue].Sub(l.BudgetAmount)
	}

	budget := make([]PnLData, 0, len(keys))
	for _, key := range keys {
		budget = append(budget, PnLData{
			Key:     key,
			Revenue: decimal.Zero,
			Costs:   planned[key].Abs(),
			Margin:  planned[key],
		})
	}

	return VarianceAnalysis(actual, budget), nil
}
