package budget

import (
	"context"
	"time"

	"github.com/envelope-zero/analytics/internal/forecast"
	"github.com/envelope-zero/analytics/internal/models"
	"github.com/envelope-zero/analytics/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// alerts returns the alerts a budget line qualifies for at the given
// consumption. Whether they are new is decided when they are stored.
func (t *Tracker) alerts(budget models.BudgetLine, consumption decimal.Decimal) []models.BudgetAlert {
	var alerts []models.BudgetAlert
	percent := consumption.InexactFloat64()

	if consumption.GreaterThan(budget.AlertThreshold) {
		alerts = append(alerts, t.alert(budget, models.AlertThreshold, models.SeverityWarning, false,
			t.printer.Sprintf("%s has used %.1f%% of its budget of %.2f", budget.Name, percent, budget.BudgetAmount.InexactFloat64())))
	}

	if consumption.GreaterThan(hundred) {
		alerts = append(alerts, t.alert(budget, models.AlertOverrun, models.SeverityCritical, true,
			t.printer.Sprintf("%s is over budget by %.2f", budget.Name, budget.ActualAmount.Sub(budget.BudgetAmount).InexactFloat64())))
	}

	return alerts
}

func (t *Tracker) alert(budget models.BudgetLine, kind models.AlertType, severity models.AlertSeverity, actionRequired bool, message string) models.BudgetAlert {
	return models.BudgetAlert{
		BudgetID:       budget.ID,
		Type:           kind,
		Period:         types.RangeKey(budget.StartDate, budget.EndDate),
		Severity:       severity,
		Message:        message,
		CurrentAmount:  budget.ActualAmount,
		BudgetAmount:   budget.BudgetAmount,
		Variance:       budget.ActualAmount.Sub(budget.BudgetAmount),
		TriggeredDate:  t.now().In(time.UTC),
		ActionRequired: actionRequired,
	}
}

// AlertFilter filters the alerts returned by Alerts.
type AlertFilter struct {
	BudgetID   uuid.UUID
	UnreadOnly bool
	Type       models.AlertType
}

// Alerts returns the alerts matching the filter, newest first.
func (t *Tracker) Alerts(ctx context.Context, filter AlertFilter) ([]models.BudgetAlert, error) {
	query := t.db.WithContext(ctx)

	if filter.BudgetID != uuid.Nil {
		query = query.Where("budget_id = ?", filter.BudgetID)
	}

	if filter.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}

	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	alerts := []models.BudgetAlert{}
	err := query.Order("triggered_date DESC, created_at DESC").Find(&alerts).Error
	return alerts, err
}

// MarkAlertRead sets the read flag of an alert. Nothing else about an alert
// can change.
func (t *Tracker) MarkAlertRead(ctx context.Context, id uuid.UUID) (models.BudgetAlert, error) {
	var alert models.BudgetAlert
	err := t.db.WithContext(ctx).First(&alert, "id = ?", id).Error
	if err != nil {
		return models.BudgetAlert{}, err
	}

	if alert.IsRead {
		return alert, nil
	}

	err = t.db.WithContext(ctx).Model(&alert).Update("IsRead", true).Error
	if err != nil {
		return models.BudgetAlert{}, err
	}

	alert.IsRead = true
	return alert, nil
}

// Risk is the forecast of a budget line.
type Risk struct {
	Budget   models.BudgetLine   `json:"budget"`
	Forecast *forecast.Forecast  `json:"forecast"` // nil when there are fewer than two snapshots
	Alert    *models.BudgetAlert `json:"alert"`    // Set when this assessment raised a forecast alert
}

// AssessRisk projects the monthly snapshots of a budget line and raises a
// forecast alert when the projected overrun is high.
func (t *Tracker) AssessRisk(ctx context.Context, id uuid.UUID) (Risk, error) {
	budget, err := t.Budget(ctx, id)
	if err != nil {
		return Risk{}, err
	}

	snapshots, err := t.Snapshots(ctx, id)
	if err != nil {
		return Risk{}, err
	}

	series := make([]float64, 0, len(snapshots))
	for _, s := range snapshots {
		series = append(series, s.ActualAmount.InexactFloat64())
	}

	risk := Risk{Budget: budget}
	f, ok := forecast.Assess(series, budget.BudgetAmount.InexactFloat64(), t.forecast)
	if !ok {
		return risk, nil
	}
	risk.Forecast = f

	if f.RiskLevel != forecast.RiskHigh {
		return risk, nil
	}

	alert := t.alert(budget, models.AlertForecast, models.SeverityWarning, true,
		t.printer.Sprintf("%s is projected to reach %.2f against a budget of %.2f", budget.Name, f.ForecastAmount, budget.BudgetAmount.InexactFloat64()))

	err = t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		emitted, err := emit(tx, &alert)
		if emitted {
			risk.Alert = &alert
		}
		return err
	})
	if err != nil {
		return Risk{}, err
	}

	return risk, nil
}
