package models

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the engine wraps exactly one of them,
// callers check with errors.Is.
var (
	ErrGeneral          = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound = errors.New("there is no")
	ErrValidation       = errors.New("validation failed")
	ErrPrecondition     = errors.New("precondition failed")
)

// Axis errors
var (
	ErrAxisCodeInvalid     = fmt.Errorf("%w: the axis code must match [A-Z0-9_]{2,20}", ErrValidation)
	ErrAxisCodeNotUnique   = fmt.Errorf("%w: the axis code must be unique", ErrValidation)
	ErrAxisOrderInvalid    = fmt.Errorf("%w: the axis order must be between 1 and 4", ErrValidation)
	ErrAxisOrderNotUnique  = fmt.Errorf("%w: the axis order must be unique among active axes", ErrValidation)
	ErrAxisLimitReached    = fmt.Errorf("%w: at most 4 axes can be active at the same time", ErrValidation)
	ErrAxisRequired        = fmt.Errorf("%w: a required axis cannot be deactivated", ErrValidation)
	ErrAxisInactive        = fmt.Errorf("%w: the axis is not active", ErrValidation)
	ErrAxisLabelEmpty      = fmt.Errorf("%w: the axis label must not be empty", ErrValidation)
	ErrValueCodeInvalid    = fmt.Errorf("%w: the value code must not be empty", ErrValidation)
	ErrValueCodeNotUnique  = fmt.Errorf("%w: the value code must be unique for the axis", ErrValidation)
	ErrValueParentMismatch = fmt.Errorf("%w: the parent value must belong to the same axis", ErrValidation)
	ErrValueInactive       = fmt.Errorf("%w: the axis value is not active", ErrValidation)
)

// Allocation rule errors
var (
	ErrRuleNameEmpty          = fmt.Errorf("%w: the rule name must not be empty", ErrValidation)
	ErrRuleTypeInvalid        = fmt.Errorf("%w: the rule type must be one of fixed, percentage, formula", ErrValidation)
	ErrRuleFormulaMissing     = fmt.Errorf("%w: formula rules need a formula", ErrValidation)
	ErrRuleFormulaUnexpected  = fmt.Errorf("%w: only formula rules can have a formula", ErrValidation)
	ErrRulePercentageRange    = fmt.Errorf("%w: the percentage must be between 0 and 100", ErrValidation)
	ErrRulePercentageMissing  = fmt.Errorf("%w: percentage rules need a percentage", ErrValidation)
	ErrRulePercentageUnneeded = fmt.Errorf("%w: only percentage rules can have a percentage", ErrValidation)
	ErrRuleTargetAxes         = fmt.Errorf("%w: a rule needs between 1 and 4 distinct target axes", ErrValidation)
	ErrRuleScheduleInvalid    = fmt.Errorf("%w: the schedule must be one of manual, daily, weekly, monthly", ErrValidation)
	ErrRuleSourceAccountEmpty = fmt.Errorf("%w: the source account pattern must not be empty", ErrValidation)
	ErrConditionOperator      = fmt.Errorf("%w: unknown condition operator", ErrValidation)
	ErrRuleInactive           = fmt.Errorf("%w: the allocation rule is not active", ErrPrecondition)
	ErrRuleTargetInactive     = fmt.Errorf("%w: the rule targets an axis that is not active", ErrPrecondition)
	ErrRuleMappingInvalid     = fmt.Errorf("%w: a condition maps to an axis value that does not exist or is inactive", ErrPrecondition)
	ErrExecutionImmutable     = errors.New("allocation executions cannot be modified")
)

// Tagging errors
var (
	ErrTagAxisDuplicate    = fmt.Errorf("%w: an entry can only have one value per axis", ErrValidation)
	ErrTagRequiredAxis     = fmt.Errorf("%w: a value for every required axis must be assigned", ErrValidation)
	ErrTagTooManyAxes      = fmt.Errorf("%w: an entry can be tagged on at most 4 axes", ErrValidation)
	ErrTagEntryRefEmpty    = fmt.Errorf("%w: the ledger entry reference must not be empty", ErrValidation)
	ErrLedgerEntryNotFound = fmt.Errorf("%w ledger entry with this reference", ErrResourceNotFound)
)

// Budget errors
var (
	ErrBudgetPeriodInvalid     = fmt.Errorf("%w: the start date must be before the end date", ErrValidation)
	ErrBudgetAmountNotPositive = fmt.Errorf("%w: the budget amount must be larger than zero", ErrValidation)
	ErrBudgetThresholdRange    = fmt.Errorf("%w: the alert threshold must be larger than 0 and at most 100", ErrValidation)
	ErrBudgetNameEmpty         = fmt.Errorf("%w: the budget name must not be empty", ErrValidation)
	ErrAlertImmutable          = errors.New("only the read flag of a budget alert can be changed")
)
