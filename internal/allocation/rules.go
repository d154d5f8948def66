package allocation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/envelope-zero/analytics/internal/formula"
	"github.com/envelope-zero/analytics/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConditionSpec describes a condition of a rule.
type ConditionSpec struct {
	Field    string                     `json:"field" example:"cost_center"` // Entry field or attribute, empty to match all entries
	Operator models.ConditionOperator   `json:"operator" example:"equals"`
	Value    string                     `json:"value" example:"DEV"`
	Mappings map[string]string          `json:"mappings"` // Axis code to value code
	Bindings map[string]decimal.Decimal `json:"bindings"` // Formula variables for matching entries
}

// RuleSpec describes an allocation rule to create or update.
type RuleSpec struct {
	Name          string           `json:"name" example:"Rent by cost center"`
	Type          models.RuleType  `json:"type" example:"percentage"`
	SourceAccount string           `json:"sourceAccount" example:"613000 - Loyers"`
	TargetAxes    []string         `json:"targetAxes" example:"CC"`
	Formula       string           `json:"formula" example:""`
	Percentage    *decimal.Decimal `json:"percentage" example:"100"`
	Schedule      models.Schedule  `json:"schedule" example:"monthly"`
	Active        bool             `json:"active" example:"true"`
	Conditions    []ConditionSpec  `json:"conditions"`
}

// normalize trims the spec and fills in defaults.
func (s *RuleSpec) normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.SourceAccount = strings.TrimSpace(s.SourceAccount)
	s.Formula = strings.TrimSpace(s.Formula)

	if s.Schedule == "" {
		s.Schedule = models.ScheduleManual
	}

	for i := range s.TargetAxes {
		s.TargetAxes[i] = models.NormalizeAxisCode(s.TargetAxes[i])
	}
}

// validate enforces the invariants of the rule type.
func (s RuleSpec) validate() error {
	if s.Name == "" {
		return models.ErrRuleNameEmpty
	}

	if !s.Type.Valid() {
		return models.ErrRuleTypeInvalid
	}

	if s.SourceAccount == "" {
		return models.ErrRuleSourceAccountEmpty
	}

	if !s.Schedule.Valid() {
		return models.ErrRuleScheduleInvalid
	}

	if s.Type == models.RuleTypeFormula {
		if s.Formula == "" {
			return models.ErrRuleFormulaMissing
		}

		if err := formula.Validate(s.Formula); err != nil {
			return fmt.Errorf("%w: %w", models.ErrValidation, err)
		}
	} else if s.Formula != "" {
		return models.ErrRuleFormulaUnexpected
	}

	if s.Type == models.RuleTypePercentage {
		if s.Percentage == nil {
			return models.ErrRulePercentageMissing
		}

		if s.Percentage.IsNegative() || s.Percentage.GreaterThan(decimal.NewFromInt(100)) {
			return models.ErrRulePercentageRange
		}
	} else if s.Percentage != nil {
		return models.ErrRulePercentageUnneeded
	}

	if len(s.TargetAxes) == 0 || len(s.TargetAxes) > models.MaxActiveAxes {
		return models.ErrRuleTargetAxes
	}

	for i, code := range s.TargetAxes {
		if !models.ValidAxisCode(code) || slices.Index(s.TargetAxes, code) != i {
			return models.ErrRuleTargetAxes
		}
	}

	for _, c := range s.Conditions {
		if !c.Operator.Valid() {
			return fmt.Errorf("%w %q", models.ErrConditionOperator, c.Operator)
		}

		for axisCode := range c.Mappings {
			if !slices.Contains(s.TargetAxes, models.NormalizeAxisCode(axisCode)) {
				return fmt.Errorf("%w: mapping for axis %s which is not a target axis", models.ErrValidation, axisCode)
			}
		}

		for name := range c.Bindings {
			if !formula.IsVariable(name) {
				return fmt.Errorf("%w: binding for unknown variable %s", models.ErrValidation, name)
			}
		}
	}

	return nil
}

func (s RuleSpec) conditions() []models.RuleCondition {
	conditions := make([]models.RuleCondition, 0, len(s.Conditions))
	for i, c := range s.Conditions {
		operator := c.Operator
		if operator == "" {
			operator = models.OperatorEquals
		}

		conditions = append(conditions, models.RuleCondition{
			Position: uint(i),
			Field:    c.Field,
			Operator: operator,
			Value:    c.Value,
			Mappings: c.Mappings,
			Bindings: c.Bindings,
		})
	}

	return conditions
}

// CreateRule validates and stores a new allocation rule.
func (e *Engine) CreateRule(ctx context.Context, spec RuleSpec) (models.AllocationRule, error) {
	spec.normalize()
	if err := spec.validate(); err != nil {
		return models.AllocationRule{}, err
	}

	rule := models.AllocationRule{
		Name:          spec.Name,
		Type:          spec.Type,
		SourceAccount: spec.SourceAccount,
		TargetAxes:    spec.TargetAxes,
		Formula:       spec.Formula,
		Percentage:    spec.Percentage,
		Schedule:      spec.Schedule,
		Active:        spec.Active,
		Conditions:    spec.conditions(),
	}

	if rule.Active {
		rule.NextExecution = e.scheduler.Next(rule.Schedule, e.now())
	}

	err := e.db.WithContext(ctx).Create(&rule).Error
	if err != nil {
		return models.AllocationRule{}, err
	}

	log.Info().Str("rule", rule.ID.String()).Str("type", string(rule.Type)).Msg("created allocation rule")
	return rule, nil
}

// UpdateRule replaces the definition of a rule. The execution statistics
// are kept.
func (e *Engine) UpdateRule(ctx context.Context, id uuid.UUID, spec RuleSpec) (models.AllocationRule, error) {
	spec.normalize()
	if err := spec.validate(); err != nil {
		return models.AllocationRule{}, err
	}

	rule, err := e.Rule(ctx, id)
	if err != nil {
		return models.AllocationRule{}, err
	}

	rule.Name = spec.Name
	rule.Type = spec.Type
	rule.SourceAccount = spec.SourceAccount
	rule.TargetAxes = spec.TargetAxes
	rule.Formula = spec.Formula
	rule.Percentage = spec.Percentage
	rule.Schedule = spec.Schedule
	rule.Active = spec.Active
	rule.NextExecution = nil
	if rule.Active {
		rule.NextExecution = e.scheduler.Next(rule.Schedule, e.now())
	}

	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("rule_id = ?", rule.ID).Delete(&models.RuleCondition{}).Error
		if err != nil {
			return err
		}

		err = tx.Model(&rule).Omit(clause.Associations).Select("*").Updates(&rule).Error
		if err != nil {
			return err
		}

		rule.Conditions = spec.conditions()
		for i := range rule.Conditions {
			rule.Conditions[i].RuleID = rule.ID
		}

		if len(rule.Conditions) == 0 {
			return nil
		}

		return tx.Create(&rule.Conditions).Error
	})
	if err != nil {
		return models.AllocationRule{}, err
	}

	return rule, nil
}

// ActivateRule activates a rule and schedules its next execution.
func (e *Engine) ActivateRule(ctx context.Context, id uuid.UUID) (models.AllocationRule, error) {
	return e.setActive(ctx, id, true)
}

// DeactivateRule deactivates a rule. Inactive rules refuse to execute.
func (e *Engine) DeactivateRule(ctx context.Context, id uuid.UUID) (models.AllocationRule, error) {
	return e.setActive(ctx, id, false)
}

func (e *Engine) setActive(ctx context.Context, id uuid.UUID, active bool) (models.AllocationRule, error) {
	rule, err := e.Rule(ctx, id)
	if err != nil {
		return models.AllocationRule{}, err
	}

	rule.Active = active
	rule.NextExecution = nil
	if active {
		rule.NextExecution = e.scheduler.Next(rule.Schedule, e.now())
	}

	err = e.db.WithContext(ctx).Model(&rule).Select("Active", "NextExecution").Updates(&rule).Error
	if err != nil {
		return models.AllocationRule{}, err
	}

	return rule, nil
}

// Rule returns the rule with its conditions in order.
func (e *Engine) Rule(ctx context.Context, id uuid.UUID) (models.AllocationRule, error) {
	var rule models.AllocationRule
	err := e.db.WithContext(ctx).
		Preload("Conditions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&rule, "id = ?", id).Error
	if err != nil {
		return models.AllocationRule{}, err
	}

	return rule, nil
}

// RuleFilter filters the rules returned by Rules.
type RuleFilter struct {
	Active *bool
	Type   models.RuleType
}

// Rules returns all rules matching the filter ordered by name.
func (e *Engine) Rules(ctx context.Context, filter RuleFilter) ([]models.AllocationRule, error) {
	query := e.db.WithContext(ctx).
		Preload("Conditions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })

	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}

	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	rules := []models.AllocationRule{}
	err := query.Order("name ASC").Find(&rules).Error
	if err != nil {
		return nil, err
	}

	return rules, nil
}

// DueRules returns the active rules whose next execution is not after now.
func (e *Engine) DueRules(ctx context.Context, now time.Time) ([]models.AllocationRule, error) {
	rules := []models.AllocationRule{}
	err := e.db.WithContext(ctx).
		Where("active = ? AND next_execution IS NOT NULL AND next_execution <= ?", true, now).
		Order("next_execution ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}

	return rules, nil
}

// Executions returns the executions of a rule, latest first.
func (e *Engine) Executions(ctx context.Context, ruleID uuid.UUID) ([]models.AllocationExecution, error) {
	executions := []models.AllocationExecution{}
	err := e.db.WithContext(ctx).
		Where(&models.AllocationExecution{RuleID: ruleID}).
		Order("timestamp DESC, created_at DESC").
		Find(&executions).Error
	if err != nil {
		return nil, err
	}

	return executions, nil
}
