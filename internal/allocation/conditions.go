package allocation

import (
	"strings"

	"github.com/envelope-zero/analytics/internal/models"
	"github.com/ryanuber/go-glob"
	"github.com/shopspring/decimal"
)

// field returns the value of a condition field for an entry and if the entry
// has it. Besides the attributes, "account", "label" and "amount" address the
// entry itself.
func field(entry models.LedgerEntry, name string) (string, bool) {
	switch name {
	case "account":
		return entry.AccountCode, true
	case "label":
		return entry.Label, true
	case "amount":
		return entry.Amount.String(), true
	}

	value, ok := entry.Attributes[name]
	return value, ok
}

// matches reports if the entry satisfies the condition. A condition without a
// field matches every entry.
func matches(c models.RuleCondition, entry models.LedgerEntry) bool {
	if c.Field == "" {
		return true
	}

	value, ok := field(entry, c.Field)
	if !ok {
		return false
	}

	switch c.Operator {
	case "", models.OperatorEquals:
		return value == c.Value
	case models.OperatorNotEquals:
		return value != c.Value
	case models.OperatorContains:
		return strings.Contains(value, c.Value)
	case models.OperatorStartsWith:
		return strings.HasPrefix(value, c.Value)
	case models.OperatorMatches:
		return glob.Glob(c.Value, value)
	case models.OperatorGreater, models.OperatorLess, models.OperatorGreaterEq, models.OperatorLessEq:
		return compare(c.Operator, value, c.Value)
	}

	return false
}

func compare(op models.ConditionOperator, value, reference string) bool {
	v, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return false
	}

	r, err := decimal.NewFromString(strings.TrimSpace(reference))
	if err != nil {
		return false
	}

	switch op {
	case models.OperatorGreater:
		return v.GreaterThan(r)
	case models.OperatorLess:
		return v.LessThan(r)
	case models.OperatorGreaterEq:
		return v.GreaterThanOrEqual(r)
	case models.OperatorLessEq:
		return v.LessThanOrEqual(r)
	}

	return false
}

// matchingConditions returns the conditions the entry satisfies, in order.
func matchingConditions(conditions []models.RuleCondition, entry models.LedgerEntry) []models.RuleCondition {
	var matched []models.RuleCondition
	for _, c := range conditions {
		if matches(c, entry) {
			matched = append(matched, c)
		}
	}

	return matched
}
