package allocation_test

import (
	"github.com/envelope-zero/analytics/internal/allocation"
	"github.com/envelope-zero/analytics/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestCreateRuleValidation() {
	valid := func() allocation.RuleSpec {
		return allocation.RuleSpec{
			Name:          "Rent",
			Type:          models.RuleTypeFixed,
			SourceAccount: rent,
			TargetAxes:    []string{"CC"},
		}
	}

	tests := []struct {
		name   string
		modify func(*allocation.RuleSpec)
		err    error
	}{
		{"Empty name", func(s *allocation.RuleSpec) { s.Name = " " }, models.ErrRuleNameEmpty},
		{"Unknown type", func(s *allocation.RuleSpec) { s.Type = "weighted" }, models.ErrRuleTypeInvalid},
		{"No source account", func(s *allocation.RuleSpec) { s.SourceAccount = "" }, models.ErrRuleSourceAccountEmpty},
		{"Unknown schedule", func(s *allocation.RuleSpec) { s.Schedule = "hourly" }, models.ErrRuleScheduleInvalid},
		{"No target axes", func(s *allocation.RuleSpec) { s.TargetAxes = nil }, models.ErrRuleTargetAxes},
		{"Duplicate target axes", func(s *allocation.RuleSpec) { s.TargetAxes = []string{"CC", "cc"} }, models.ErrRuleTargetAxes},
		{"Five target axes", func(s *allocation.RuleSpec) { s.TargetAxes = []string{"A1", "A2", "A3", "A4", "A5"} }, models.ErrRuleTargetAxes},
		{"Formula on fixed rule", func(s *allocation.RuleSpec) { s.Formula = "amount" }, models.ErrRuleFormulaUnexpected},
		{"Percentage on fixed rule", func(s *allocation.RuleSpec) { s.Percentage = percent(10) }, models.ErrRulePercentageUnneeded},
		{"Formula rule without formula", func(s *allocation.RuleSpec) { s.Type = models.RuleTypeFormula }, models.ErrRuleFormulaMissing},
		{"Malformed formula", func(s *allocation.RuleSpec) {
			s.Type = models.RuleTypeFormula
			s.Formula = "amount * (bonus"
		}, models.ErrValidation},
		{"Percentage rule without percentage", func(s *allocation.RuleSpec) { s.Type = models.RuleTypePercentage }, models.ErrRulePercentageMissing},
		{"Percentage above 100", func(s *allocation.RuleSpec) {
			s.Type = models.RuleTypePercentage
			s.Percentage = percent(101)
		}, models.ErrRulePercentageRange},
		{"Negative percentage", func(s *allocation.RuleSpec) {
			s.Type = models.RuleTypePercentage
			s.Percentage = percent(-1)
		}, models.ErrRulePercentageRange},
		{"Unknown operator", func(s *allocation.RuleSpec) {
			s.Conditions = []allocation.ConditionSpec{{Field: "label", Operator: "like"}}
		}, models.ErrConditionOperator},
		{"Mapping outside target axes", func(s *allocation.RuleSpec) {
			s.Conditions = []allocation.ConditionSpec{{Mappings: map[string]string{"PROJECT": "WEB"}}}
		}, models.ErrValidation},
		{"Binding for unknown variable", func(s *allocation.RuleSpec) {
			s.Conditions = []allocation.ConditionSpec{{Bindings: map[string]decimal.Decimal{"bonus": decimal.NewFromInt(1)}}}
		}, models.ErrValidation},
	}

	for _, tt := range tests {
		spec := valid()
		tt.modify(&spec)

		_, err := suite.engine.CreateRule(suite.ctx, spec)
		assert.ErrorIs(suite.T(), err, tt.err, tt.name)
		assert.ErrorIs(suite.T(), err, models.ErrValidation, tt.name)
	}

	rules, err := suite.engine.Rules(suite.ctx, allocation.RuleFilter{})
	require.Nil(suite.T(), err)
	assert.Len(suite.T(), rules, 0, "no invalid rule must be stored")
}

func (suite *TestSuiteStandard) TestPercentageBoundaries() {
	for _, p := range []int64{0, 100} {
		_, err := suite.engine.CreateRule(suite.ctx, allocation.RuleSpec{
			Name:          "Boundary",
			Type:          models.RuleTypePercentage,
			SourceAccount: rent,
			TargetAxes:    []string{"CC"},
			Percentage:    percent(p),
		})
		assert.Nil(suite.T(), err, "percentage %d", p)
	}
}

func (suite *TestSuiteStandard) TestUpdateRule() {
	rule := suite.createTestRule(allocation.RuleSpec{
		Name:          "Rent",
		Type:          models.RuleTypeFixed,
		SourceAccount: rent,
		TargetAxes:    []string{"CC"},
		Conditions:    costCenterConditions(),
	})

	updated, err := suite.engine.UpdateRule(suite.ctx, rule.ID, allocation.RuleSpec{
		Name:          "Rent by hours",
		Type:          models.RuleTypeFormula,
		SourceAccount: "613*",
		TargetAxes:    []string{"CC"},
		Formula:       "amount / 2",
		Schedule:      models.ScheduleMonthly,
		Active:        true,
		Conditions:    []allocation.ConditionSpec{{Mappings: map[string]string{"CC": "CC_DEV"}}},
	})
	require.Nil(suite.T(), err)
	assert.NotNil(suite.T(), updated.NextExecution)

	loaded, err := suite.engine.Rule(suite.ctx, rule.ID)
	require.Nil(suite.T(), err)
	assert.Equal(suite.T(), "Rent by hours", loaded.Name)
	assert.Equal(suite.T(), models.RuleTypeFormula, loaded.Type)
	assert.Equal(suite.T(), "amount / 2", loaded.Formula)
	assert.True(suite.T(), loaded.Active)
	require.Len(suite.T(), loaded.Conditions, 1)
	assert.Equal(suite.T(), map[string]string{"CC": "CC_DEV"}, loaded.Conditions[0].Mappings)

	_, err = suite.engine.UpdateRule(suite.ctx, uuid.New(), allocation.RuleSpec{Name: "x", Type: models.RuleTypeFixed, SourceAccount: rent, TargetAxes: []string{"CC"}})
	assert.ErrorIs(suite.T(), err, models.ErrResourceNotFound)
}

func (suite *TestSuiteStandard) TestActivateDeactivateRule() {
	rule := suite.createTestRule(allocation.RuleSpec{
		Name:          "Rent",
		Type:          models.RuleTypeFixed,
		SourceAccount: rent,
		TargetAxes:    []string{"CC"},
		Schedule:      models.ScheduleWeekly,
	})
	assert.False(suite.T(), rule.Active)
	assert.Nil(suite.T(), rule.NextExecution)

	rule, err := suite.engine.ActivateRule(suite.ctx, rule.ID)
	require.Nil(suite.T(), err)
	assert.True(suite.T(), rule.Active)
	require.NotNil(suite.T(), rule.NextExecution)
	assert.Equal(suite.T(), "Monday", rule.NextExecution.Weekday().String())

	active := true
	rules, err := suite.engine.Rules(suite.ctx, allocation.RuleFilter{Active: &active})
	require.Nil(suite.T(), err)
	assert.Len(suite.T(), rules, 1)

	rule, err = suite.engine.DeactivateRule(suite.ctx, rule.ID)
	require.Nil(suite.T(), err)
	assert.False(suite.T(), rule.Active)
	assert.Nil(suite.T(), rule.NextExecution)

	rules, err = suite.engine.Rules(suite.ctx, allocation.RuleFilter{Active: &active})
	require.Nil(suite.T(), err)
	assert.Len(suite.T(), rules, 0)
}
