package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BudgetStatus is the consumption state of a budget line.
type BudgetStatus string

const (
	BudgetUnderBudget BudgetStatus = "under-budget"
	BudgetOnTrack     BudgetStatus = "on-track"
	BudgetWarning     BudgetStatus = "warning"
	BudgetOverrun     BudgetStatus = "overrun"
)

// BudgetLine is the budget for one axis value in the period [StartDate, EndDate).
type BudgetLine struct {
	DefaultModel
	Name           string          `json:"name" example:"Website Relaunch Q1"`
	StartDate      time.Time       `json:"startDate" example:"2024-01-01T00:00:00Z"`
	EndDate        time.Time       `json:"endDate" example:"2024-04-01T00:00:00Z"` // Exclusive
	AxisType       string          `json:"axisType" gorm:"index:budget_axis" example:"PROJECT"`
	AxisValue      string          `json:"axisValue" gorm:"index:budget_axis" example:"WEB_RELAUNCH"`
	BudgetAmount   decimal.Decimal `json:"budgetAmount" gorm:"type:DECIMAL(20,8)" example:"45000"`
	ActualAmount   decimal.Decimal `json:"actualAmount" gorm:"type:DECIMAL(20,8)" example:"38250"` // Derived from tagged entries
	AlertThreshold decimal.Decimal `json:"alertThreshold" gorm:"type:DECIMAL(20,8)" example:"85"`  // Consumption in percent above which a warning is raised
	Status         BudgetStatus    `json:"status" example:"on-track"`                              // Derived from the consumption
	Notes          string          `json:"notes" example:""`
}

// AfterFind sets the timezone of the period to UTC.
func (b *BudgetLine) AfterFind(tx *gorm.DB) (err error) {
	_ = b.DefaultModel.AfterFind(tx)
	b.StartDate = b.StartDate.In(time.UTC)
	b.EndDate = b.EndDate.In(time.UTC)
	return nil
}

func (b *BudgetLine) BeforeSave(_ *gorm.DB) error {
	b.Name = strings.TrimSpace(b.Name)
	b.Notes = strings.TrimSpace(b.Notes)
	b.AxisType = NormalizeAxisCode(b.AxisType)
	b.AxisValue = strings.TrimSpace(b.AxisValue)
	b.StartDate = b.StartDate.In(time.UTC)
	b.EndDate = b.EndDate.In(time.UTC)

	return nil
}

func (BudgetLine) Self() string {
	return "Budget Line"
}

// Export returns all budget lines.
func (BudgetLine) Export(db *gorm.DB) (json.RawMessage, error) {
	return export[BudgetLine](db)
}

// BudgetSnapshot is the actual amount of a budget line at the end of a month.
type BudgetSnapshot struct {
	ID           uuid.UUID       `json:"-" gorm:"type:uuid;primaryKey"`
	BudgetID     uuid.UUID       `json:"budgetId" gorm:"uniqueIndex:budget_snapshot_period"`
	Period       string          `json:"period" gorm:"uniqueIndex:budget_snapshot_period" example:"2024-03"`
	ActualAmount decimal.Decimal `json:"actualAmount" gorm:"type:DECIMAL(20,8)" example:"12750"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func (s *BudgetSnapshot) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// AlertType is the reason a budget alert was raised.
type AlertType string

const (
	AlertThreshold AlertType = "threshold"
	AlertOverrun   AlertType = "overrun"
	AlertForecast  AlertType = "forecast"
)

// AlertSeverity is how urgent a budget alert is.
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// BudgetAlert is raised when a budget line crosses a threshold.
//
// Alerts are audit history. Only IsRead can change after creation.
type BudgetAlert struct {
	DefaultModel
	BudgetID       uuid.UUID       `json:"budgetId" gorm:"uniqueIndex:budget_alert_dedupe"`
	Type           AlertType       `json:"type" gorm:"uniqueIndex:budget_alert_dedupe" example:"threshold"`
	Period         string          `json:"period" gorm:"uniqueIndex:budget_alert_dedupe" example:"2024-01-01/2024-04-01"` // Budget period the alert belongs to
	Severity       AlertSeverity   `json:"severity" example:"warning"`
	Message        string          `json:"message" example:"Website Relaunch Q1 has used 91.2% of its budget"`
	CurrentAmount  decimal.Decimal `json:"currentAmount" gorm:"type:DECIMAL(20,8)" example:"41040"`
	BudgetAmount   decimal.Decimal `json:"budgetAmount" gorm:"type:DECIMAL(20,8)" example:"45000"`
	Variance       decimal.Decimal `json:"variance" gorm:"type:DECIMAL(20,8)" example:"-3960"`
	TriggeredDate  time.Time       `json:"triggeredDate" example:"2024-03-12T09:00:00Z"`
	IsRead         bool            `json:"isRead" example:"false"`
	ActionRequired bool            `json:"actionRequired" example:"true"`
}

// BeforeUpdate only allows the read flag to change.
func (a *BudgetAlert) BeforeUpdate(tx *gorm.DB) error {
	for _, field := range []string{"BudgetID", "Type", "Period", "Severity", "Message", "CurrentAmount", "BudgetAmount", "Variance", "TriggeredDate", "ActionRequired"} {
		if tx.Statement.Changed(field) {
			return ErrAlertImmutable
		}
	}

	return nil
}

func (BudgetAlert) Self() string {
	return "Budget Alert"
}

// Export returns all budget alerts.
func (BudgetAlert) Export(db *gorm.DB) (json.RawMessage, error) {
	return export[BudgetAlert](db)
}
