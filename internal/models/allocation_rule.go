package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RuleType is the allocation strategy of a rule.
type RuleType string

const (
	RuleTypeFixed      RuleType = "fixed"
	RuleTypePercentage RuleType = "percentage"
	RuleTypeFormula    RuleType = "formula"
)

// Valid reports if the rule type is known.
func (t RuleType) Valid() bool {
	switch t {
	case RuleTypeFixed, RuleTypePercentage, RuleTypeFormula:
		return true
	}
	return false
}

// Schedule is the cadence at which the host scheduler runs a rule.
type Schedule string

const (
	ScheduleManual  Schedule = "manual"
	ScheduleDaily   Schedule = "daily"
	ScheduleWeekly  Schedule = "weekly"
	ScheduleMonthly Schedule = "monthly"
)

// Valid reports if the schedule is known.
func (s Schedule) Valid() bool {
	switch s {
	case ScheduleManual, ScheduleDaily, ScheduleWeekly, ScheduleMonthly:
		return true
	}
	return false
}

// AllocationRule splits the amounts of ledger entries on a source account
// across axis values.
type AllocationRule struct {
	DefaultModel
	Name           string           `json:"name" example:"Rent by cost center"`
	Type           RuleType         `json:"type" example:"percentage"`
	SourceAccount  string           `json:"sourceAccount" example:"613000*"`                // Exact account or glob pattern
	TargetAxes     []string         `json:"targetAxes" gorm:"serializer:json" example:"CC"` // Axis codes the rule allocates to
	Formula        string           `json:"formula" example:"amount * timesheet.hours / total_hours"`
	Percentage     *decimal.Decimal `json:"percentage" gorm:"type:DECIMAL(20,8)" example:"40"` // Share of the amount to allocate, 0 to 100
	Schedule       Schedule         `json:"schedule" example:"monthly"`
	Active         bool             `json:"active" example:"true"`
	Conditions     []RuleCondition  `json:"conditions" gorm:"foreignKey:RuleID;constraint:OnDelete:CASCADE"`
	ExecutionCount uint             `json:"executionCount" example:"12"`
	SuccessRate    decimal.Decimal  `json:"successRate" gorm:"type:DECIMAL(20,8)" example:"91.66666667"` // Percentage of successful executions
	LastExecution  *time.Time       `json:"lastExecution" example:"2024-03-01T04:00:00Z"`
	NextExecution  *time.Time       `json:"nextExecution" example:"2024-04-01T04:00:00Z"` // Unset for manual rules
}

func (r *AllocationRule) BeforeSave(_ *gorm.DB) error {
	r.Name = strings.TrimSpace(r.Name)
	r.SourceAccount = strings.TrimSpace(r.SourceAccount)
	r.Formula = strings.TrimSpace(r.Formula)

	for i := range r.TargetAxes {
		r.TargetAxes[i] = NormalizeAxisCode(r.TargetAxes[i])
	}

	return nil
}

func (AllocationRule) Self() string {
	return "Allocation Rule"
}

// Export returns all allocation rules with their conditions.
func (AllocationRule) Export(db *gorm.DB) (json.RawMessage, error) {
	return export[AllocationRule](db.Preload("Conditions"))
}

// ConditionOperator compares an entry field with a condition value.
type ConditionOperator string

const (
	OperatorEquals     ConditionOperator = "equals"
	OperatorNotEquals  ConditionOperator = "not_equals"
	OperatorContains   ConditionOperator = "contains"
	OperatorStartsWith ConditionOperator = "starts_with"
	OperatorMatches    ConditionOperator = "matches" // glob pattern
	OperatorGreater    ConditionOperator = "gt"
	OperatorLess       ConditionOperator = "lt"
	OperatorGreaterEq  ConditionOperator = "gte"
	OperatorLessEq     ConditionOperator = "lte"
)

// Valid reports if the operator is known. The empty operator is treated as equals.
func (o ConditionOperator) Valid() bool {
	switch o {
	case "", OperatorEquals, OperatorNotEquals, OperatorContains, OperatorStartsWith, OperatorMatches,
		OperatorGreater, OperatorLess, OperatorGreaterEq, OperatorLessEq:
		return true
	}
	return false
}

// RuleCondition maps ledger entries matching Field Operator Value to axis values.
//
// An empty Field matches every entry.
type RuleCondition struct {
	ID       uuid.UUID                  `json:"id" gorm:"type:uuid;primaryKey"`
	RuleID   uuid.UUID                  `json:"-" gorm:"index"`
	Position uint                       `json:"position" example:"0"`
	Field    string                     `json:"field" example:"cost_center"`
	Operator ConditionOperator          `json:"operator" example:"equals"`
	Value    string                     `json:"value" example:"DEV"`
	Mappings map[string]string          `json:"mappings" gorm:"serializer:json"` // Axis code to value code
	Bindings map[string]decimal.Decimal `json:"bindings" gorm:"serializer:json"` // Formula variables for entries matching this condition
}

func (c *RuleCondition) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *RuleCondition) BeforeSave(_ *gorm.DB) error {
	c.Field = strings.TrimSpace(c.Field)

	mappings := make(map[string]string, len(c.Mappings))
	for axis, value := range c.Mappings {
		mappings[NormalizeAxisCode(axis)] = strings.TrimSpace(value)
	}
	c.Mappings = mappings

	return nil
}

// ExecutionStatus is the outcome of a rule execution.
type ExecutionStatus string

const (
	ExecutionSuccess ExecutionStatus = "success"
	ExecutionPartial ExecutionStatus = "partial"
	ExecutionError   ExecutionStatus = "error"
)

// AllocationExecution is the audit record of a single rule execution.
//
// Executions are append-only, corrections are made by executing again.
type AllocationExecution struct {
	DefaultModel
	RuleID            uuid.UUID       `json:"ruleId" gorm:"index"`
	Timestamp         time.Time       `json:"timestamp" example:"2024-03-01T04:00:00Z"`
	Period            string          `json:"period" example:"2024-03"`
	Status            ExecutionStatus `json:"status" example:"success"`
	EntriesProcessed  int             `json:"entriesProcessed" example:"10"`
	EntriesAllocated  int             `json:"entriesAllocated" example:"10"`
	TotalAmount       decimal.Decimal `json:"totalAmount" gorm:"type:DECIMAL(20,8)" example:"8500"`
	UnallocatedAmount decimal.Decimal `json:"unallocatedAmount" gorm:"type:DECIMAL(20,8)" example:"0"` // Sum of amounts left unallocated
	DurationMs        int64           `json:"durationMs" example:"12"`
	ErrorMessage      string          `json:"errorMessage" example:""`
}

func (e *AllocationExecution) BeforeUpdate(_ *gorm.DB) error {
	return ErrExecutionImmutable
}

func (AllocationExecution) Self() string {
	return "Allocation Execution"
}

// Export returns all executions.
func (AllocationExecution) Export(db *gorm.DB) (json.RawMessage, error) {
	return export[AllocationExecution](db)
}

// AllocationFence marks a ledger entry as allocated by a rule for a period.
//
// The unique index is the fencing token: a second execution for the same
// rule and period cannot claim the entry again.
type AllocationFence struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	RuleID      uuid.UUID `gorm:"uniqueIndex:allocation_fence"`
	EntryRef    string    `gorm:"uniqueIndex:allocation_fence"`
	Period      string    `gorm:"uniqueIndex:allocation_fence"`
	ExecutionID uuid.UUID
	CreatedAt   time.Time
}

func (f *AllocationFence) BeforeCreate(_ *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
