// Package budget tracks budget lines against the tagged ledger and raises
// alerts when they cross their thresholds.
package budget

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/envelope-zero/analytics/internal/allocation"
	"github.com/envelope-zero/analytics/internal/axis"
	"github.com/envelope-zero/analytics/internal/forecast"
	"github.com/envelope-zero/analytics/internal/models"
	"github.com/envelope-zero/analytics/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Tracker maintains budget lines and their alerts.
type Tracker struct {
	db       *gorm.DB
	axes     *axis.Registry
	forecast forecast.Options
	now      func() time.Time
	printer  *message.Printer
}

// NewTracker returns a Tracker. Alert messages are written in English.
func NewTracker(db *gorm.DB, axes *axis.Registry, opts forecast.Options) *Tracker {
	return &Tracker{
		db:       db,
		axes:     axes,
		forecast: opts,
		now:      time.Now,
		printer:  message.NewPrinter(language.English),
	}
}

// WithClock sets the clock used for alert and snapshot dates.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// WithLanguage sets the language alert messages are formatted for.
func (t *Tracker) WithLanguage(tag language.Tag) *Tracker {
	t.printer = message.NewPrinter(tag)
	return t
}

// Spec describes a budget line to create.
type Spec struct {
	Name           string          `json:"name" example:"Website Relaunch Q1"`
	StartDate      time.Time       `json:"startDate" example:"2024-01-01T00:00:00Z"`
	EndDate        time.Time       `json:"endDate" example:"2024-04-01T00:00:00Z"`
	AxisType       string          `json:"axisType" example:"PROJECT"`
	AxisValue      string          `json:"axisValue" example:"WEB_RELAUNCH"`
	BudgetAmount   decimal.Decimal `json:"budgetAmount" example:"45000"`
	AlertThreshold decimal.Decimal `json:"alertThreshold" example:"85"` // Defaults to 80
	Notes          string          `json:"notes" example:""`
}

// CreateBudget validates and stores a budget line.
func (t *Tracker) CreateBudget(ctx context.Context, spec Spec) (models.BudgetLine, error) {
	if strings.TrimSpace(spec.Name) == "" {
		return models.BudgetLine{}, models.ErrBudgetNameEmpty
	}

	if !spec.StartDate.Before(spec.EndDate) {
		return models.BudgetLine{}, models.ErrBudgetPeriodInvalid
	}

	if !spec.BudgetAmount.IsPositive() {
		return models.BudgetLine{}, models.ErrBudgetAmountNotPositive
	}

	if spec.AlertThreshold.IsZero() {
		spec.AlertThreshold = DefaultAlertThreshold
	}

	if !spec.AlertThreshold.IsPositive() || spec.AlertThreshold.GreaterThan(hundred) {
		return models.BudgetLine{}, models.ErrBudgetThresholdRange
	}

	_, err := t.axes.ValueByCode(ctx, spec.AxisType, spec.AxisValue)
	if errors.Is(err, models.ErrResourceNotFound) {
		return models.BudgetLine{}, fmt.Errorf("%w: there is no value %s on axis %s", models.ErrValidation, spec.AxisValue, spec.AxisType)
	} else if err != nil {
		return models.BudgetLine{}, err
	}

	budget := models.BudgetLine{
		Name:           spec.Name,
		StartDate:      spec.StartDate,
		EndDate:        spec.EndDate,
		AxisType:       spec.AxisType,
		AxisValue:      spec.AxisValue,
		BudgetAmount:   spec.BudgetAmount,
		ActualAmount:   decimal.Zero,
		AlertThreshold: spec.AlertThreshold,
		Status:         Status(decimal.Zero, spec.AlertThreshold),
		Notes:          spec.Notes,
	}

	err = t.db.WithContext(ctx).Create(&budget).Error
	if err != nil {
		return models.BudgetLine{}, err
	}

	return budget, nil
}

// Budget returns the budget line with the given ID.
func (t *Tracker) Budget(ctx context.Context, id uuid.UUID) (models.BudgetLine, error) {
	var budget models.BudgetLine
	err := t.db.WithContext(ctx).First(&budget, "id = ?", id).Error
	return budget, err
}

// Filter filters the budget lines returned by Budgets.
type Filter struct {
	AxisType  string
	AxisValue string
	Status    models.BudgetStatus
}

// Budgets returns the budget lines matching the filter, ordered by start date.
func (t *Tracker) Budgets(ctx context.Context, filter Filter) ([]models.BudgetLine, error) {
	query := t.db.WithContext(ctx)

	if filter.AxisType != "" {
		query = query.Where("axis_type = ?", models.NormalizeAxisCode(filter.AxisType))
	}

	if filter.AxisValue != "" {
		query = query.Where("axis_value = ?", filter.AxisValue)
	}

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	budgets := []models.BudgetLine{}
	err := query.Order("start_date ASC, name ASC").Find(&budgets).Error
	return budgets, err
}

// RefreshActual recomputes the actual amount and status of a budget line
// from the tagged entries of its axis value in [StartDate, EndDate).
//
// It returns the alerts raised by this refresh. Thresholds that were already
// crossed earlier in the same budget period raise no new alert.
func (t *Tracker) RefreshActual(ctx context.Context, id uuid.UUID) (models.BudgetLine, []models.BudgetAlert, error) {
	budget, err := t.Budget(ctx, id)
	if err != nil {
		return models.BudgetLine{}, nil, err
	}

	entries, err := allocation.FindTagged(t.db.WithContext(ctx), allocation.TaggedFilter{
		AxisCode:  budget.AxisType,
		ValueCode: budget.AxisValue,
		From:      budget.StartDate,
		To:        budget.EndDate,
	})
	if err != nil {
		return models.BudgetLine{}, nil, err
	}

	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Amount)
	}

	budget.ActualAmount = sum.Abs()
	consumption := Consumption(budget.ActualAmount, budget.BudgetAmount)
	budget.Status = Status(consumption, budget.AlertThreshold)

	var raised []models.BudgetAlert
	err = t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&budget).Select("ActualAmount", "Status").Updates(&budget).Error
		if err != nil {
			return err
		}

		if err := t.snapshot(tx, budget); err != nil {
			return err
		}

		for _, alert := range t.alerts(budget, consumption) {
			emitted, err := emit(tx, &alert)
			if err != nil {
				return err
			}

			if emitted {
				raised = append(raised, alert)
			}
		}

		return nil
	})
	if err != nil {
		return models.BudgetLine{}, nil, err
	}

	log.Debug().Str("budget", budget.ID.String()).Str("status", string(budget.Status)).Int("alerts", len(raised)).Msg("refreshed budget")
	return budget, raised, nil
}

// RefreshAll refreshes every budget line whose period has started.
func (t *Tracker) RefreshAll(ctx context.Context) ([]models.BudgetAlert, error) {
	var budgets []models.BudgetLine
	err := t.db.WithContext(ctx).Where("start_date <= ?", t.now()).Find(&budgets).Error
	if err != nil {
		return nil, err
	}

	var raised []models.BudgetAlert
	for _, b := range budgets {
		_, alerts, err := t.RefreshActual(ctx, b.ID)
		if err != nil {
			return raised, err
		}
		raised = append(raised, alerts...)
	}

	return raised, nil
}

// snapshot records the actual amount for the month the refresh happens in,
// clamped to the budget period.
func (t *Tracker) snapshot(tx *gorm.DB, budget models.BudgetLine) error {
	at := t.now().In(time.UTC)
	if at.Before(budget.StartDate) {
		at = budget.StartDate
	}

	if !at.Before(budget.EndDate) {
		at = budget.EndDate.Add(-time.Nanosecond)
	}

	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "budget_id"}, {Name: "period"}},
		DoUpdates: clause.AssignmentColumns([]string{"actual_amount", "updated_at"}),
	}).Create(&models.BudgetSnapshot{
		BudgetID:     budget.ID,
		Period:       types.MonthOf(at).String(),
		ActualAmount: budget.ActualAmount,
	}).Error
}

// Snapshots returns the monthly actual amounts of a budget line in
// chronological order.
func (t *Tracker) Snapshots(ctx context.Context, id uuid.UUID) ([]models.BudgetSnapshot, error) {
	if _, err := t.Budget(ctx, id); err != nil {
		return nil, err
	}

	snapshots := []models.BudgetSnapshot{}
	err := t.db.WithContext(ctx).Where("budget_id = ?", id).Order("period ASC").Find(&snapshots).Error
	return snapshots, err
}

// emit stores the alert unless an alert of the same type exists for the
// budget period already. It reports whether the alert was stored.
func emit(tx *gorm.DB, alert *models.BudgetAlert) (bool, error) {
	result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(alert)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}
