package allocation

import (
	"errors"
	"fmt"

	"github.com/envelope-zero/analytics/internal/formula"
	"github.com/envelope-zero/analytics/internal/models"
	"github.com/shopspring/decimal"
)

// Entry level failures. They leave the entry unallocated but never abort
// an execution.
var (
	errMappingMissing = errors.New("no axis value mapped for target axis")
	errOverflow       = errors.New("allocated amount exceeds the entry amount")
	errSignMismatch   = errors.New("allocated amount has the opposite sign of the entry amount")
	errNoMatch        = errors.New("no condition matches the entry")
)

// fragment is the share of a ledger entry allocated to one set of axis values.
type fragment struct {
	amount   decimal.Decimal
	mappings map[string]string // Axis code to value code
}

// strategy computes the fragments of an entry. There is one implementation
// per rule type.
type strategy interface {
	allocate(entry models.LedgerEntry, matched []models.RuleCondition, targets []string) ([]fragment, error)
}

type fixedStrategy struct{}

type percentageStrategy struct {
	share decimal.Decimal // Percentage divided by 100
}

type formulaStrategy struct {
	expression formula.Node
}

// strategyFor returns the strategy for a rule. It fails if the rule violates
// the invariants of its type.
func strategyFor(rule models.AllocationRule) (strategy, error) {
	switch rule.Type {
	case models.RuleTypeFixed:
		return fixedStrategy{}, nil

	case models.RuleTypePercentage:
		if rule.Percentage == nil {
			return nil, models.ErrRulePercentageMissing
		}
		return percentageStrategy{share: rule.Percentage.Div(decimal.NewFromInt(100))}, nil

	case models.RuleTypeFormula:
		node, err := formula.Parse(rule.Formula)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", models.ErrValidation, err)
		}
		return formulaStrategy{expression: node}, nil
	}

	return nil, models.ErrRuleTypeInvalid
}

// merge combines the mappings of all matched conditions. The first condition
// that maps an axis wins.
func merge(matched []models.RuleCondition, targets []string) (map[string]string, error) {
	if len(matched) == 0 {
		return nil, errNoMatch
	}

	mappings := make(map[string]string, len(targets))
	for _, target := range targets {
		for _, c := range matched {
			if value, ok := c.Mappings[target]; ok && value != "" {
				mappings[target] = value
				break
			}
		}

		if _, ok := mappings[target]; !ok {
			return nil, fmt.Errorf("%w %s", errMappingMissing, target)
		}
	}

	return mappings, nil
}

func (fixedStrategy) allocate(entry models.LedgerEntry, matched []models.RuleCondition, targets []string) ([]fragment, error) {
	mappings, err := merge(matched, targets)
	if err != nil {
		return nil, err
	}

	return []fragment{{amount: entry.Amount, mappings: mappings}}, nil
}

func (s percentageStrategy) allocate(entry models.LedgerEntry, matched []models.RuleCondition, targets []string) ([]fragment, error) {
	mappings, err := merge(matched, targets)
	if err != nil {
		return nil, err
	}

	return []fragment{{amount: entry.Amount.Mul(s.share), mappings: mappings}}, nil
}

// allocate evaluates the formula once per matched condition. Each condition
// must map every target axis.
func (s formulaStrategy) allocate(entry models.LedgerEntry, matched []models.RuleCondition, targets []string) ([]fragment, error) {
	if len(matched) == 0 {
		return nil, errNoMatch
	}

	base := bindings(entry)
	fragments := make([]fragment, 0, len(matched))
	total := decimal.Zero

	for _, c := range matched {
		mappings, err := merge([]models.RuleCondition{c}, targets)
		if err != nil {
			return nil, err
		}

		vars := make(formula.Bindings, len(base)+len(c.Bindings))
		for name, value := range base {
			vars[name] = value
		}
		for name, value := range c.Bindings {
			vars[name] = value
		}

		amount, err := s.expression.Eval(vars)
		if err != nil {
			return nil, err
		}

		total = total.Add(amount)
		fragments = append(fragments, fragment{amount: amount, mappings: mappings})
	}

	if total.Abs().GreaterThan(entry.Amount.Abs()) {
		return nil, fmt.Errorf("%w: %s > %s", errOverflow, total.Abs(), entry.Amount.Abs())
	}

	// Fragments must book the entry on the same side of the ledger
	if total.Sign()*entry.Amount.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s has the opposite sign of %s", errSignMismatch, total, entry.Amount)
	}

	return fragments, nil
}

// bindings returns the formula variables an entry provides: its amount and
// every numeric attribute that is part of the vocabulary.
func bindings(entry models.LedgerEntry) formula.Bindings {
	b := formula.Bindings{"amount": entry.Amount}

	for name, raw := range entry.Attributes {
		if name == "amount" || !formula.IsVariable(name) {
			continue
		}

		value, err := decimal.NewFromString(raw)
		if err != nil {
			continue
		}
		b[name] = value
	}

	return b
}
