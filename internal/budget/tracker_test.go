package budget_test

import (
	"time"

	"github.com/envelope-zero/analytics/internal/budget"
	"github.com/envelope-zero/analytics/internal/forecast"
	"github.com/envelope-zero/analytics/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestCreateBudget() {
	b := suite.createTestBudget(45000, 85)

	assert.Equal(suite.T(), models.BudgetUnderBudget, b.Status)
	assert.True(suite.T(), b.ActualAmount.IsZero())
	assert.Equal(suite.T(), "PROJECT", b.AxisType)
}

func (suite *TestSuiteStandard) TestCreateBudgetDefaultThreshold() {
	b, err := suite.tracker.CreateBudget(suite.ctx, budget.Spec{
		Name:         "Mobile App",
		StartDate:    day(time.January, 1),
		EndDate:      day(time.July, 1),
		AxisType:     "project",
		AxisValue:    "MOBILE_APP",
		BudgetAmount: decimal.NewFromInt(10000),
	})

	require.Nil(suite.T(), err)
	assert.True(suite.T(), b.AlertThreshold.Equal(decimal.NewFromInt(80)))
}

func (suite *TestSuiteStandard) TestCreateBudgetErrors() {
	valid := budget.Spec{
		Name:         "Website Relaunch Q1",
		StartDate:    day(time.January, 1),
		EndDate:      day(time.April, 1),
		AxisType:     "PROJECT",
		AxisValue:    "WEB_RELAUNCH",
		BudgetAmount: decimal.NewFromInt(45000),
	}

	tests := []struct {
		name   string
		modify func(*budget.Spec)
		err    error
	}{
		{"empty name", func(s *budget.Spec) { s.Name = " " }, models.ErrBudgetNameEmpty},
		{"end before start", func(s *budget.Spec) { s.EndDate = s.StartDate.AddDate(0, 0, -1) }, models.ErrBudgetPeriodInvalid},
		{"empty period", func(s *budget.Spec) { s.EndDate = s.StartDate }, models.ErrBudgetPeriodInvalid},
		{"zero amount", func(s *budget.Spec) { s.BudgetAmount = decimal.Zero }, models.ErrBudgetAmountNotPositive},
		{"negative amount", func(s *budget.Spec) { s.BudgetAmount = decimal.NewFromInt(-1) }, models.ErrBudgetAmountNotPositive},
		{"threshold above 100", func(s *budget.Spec) { s.AlertThreshold = decimal.NewFromInt(101) }, models.ErrBudgetThresholdRange},
		{"negative threshold", func(s *budget.Spec) { s.AlertThreshold = decimal.NewFromInt(-5) }, models.ErrBudgetThresholdRange},
		{"unknown value", func(s *budget.Spec) { s.AxisValue = "NOPE" }, models.ErrValidation},
		{"unknown axis", func(s *budget.Spec) { s.AxisType = "CLIENT" }, models.ErrValidation},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			spec := valid
			tt.modify(&spec)

			_, err := suite.tracker.CreateBudget(suite.ctx, spec)
			assert.ErrorIs(suite.T(), err, tt.err)
		})
	}
}

func (suite *TestSuiteStandard) TestRefreshActual() {
	b := suite.createTestBudget(45000, 85)

	suite.book("JE-1", day(time.January, 15), -12750, "WEB_RELAUNCH")
	suite.book("JE-2", day(time.February, 15), -12750, "WEB_RELAUNCH")
	suite.book("JE-3", day(time.March, 15), -12750, "WEB_RELAUNCH")

	// Other project and after the end of the period
	suite.book("JE-4", day(time.March, 15), -9999, "MOBILE_APP")
	suite.book("JE-5", day(time.April, 1), -9999, "WEB_RELAUNCH")

	b, alerts, err := suite.tracker.RefreshActual(suite.ctx, b.ID)
	require.Nil(suite.T(), err)

	assert.True(suite.T(), b.ActualAmount.Equal(decimal.NewFromInt(38250)), "actual amount is %s", b.ActualAmount)
	assert.Equal(suite.T(), models.BudgetOnTrack, b.Status, "85%% consumption with a threshold of 85 is on track")
	assert.Len(suite.T(), alerts, 0)

	stored, err := suite.tracker.Budget(suite.ctx, b.ID)
	require.Nil(suite.T(), err)
	assert.True(suite.T(), stored.ActualAmount.Equal(decimal.NewFromInt(38250)))
	assert.Equal(suite.T(), models.BudgetOnTrack, stored.Status)
}

func (suite *TestSuiteStandard) TestRefreshActualAlertsOnce() {
	b := suite.createTestBudget(45000, 85)
	suite.book("JE-1", day(time.March, 1), -41040, "WEB_RELAUNCH")

	b, alerts, err := suite.tracker.RefreshActual(suite.ctx, b.ID)
	require.Nil(suite.T(), err)
	assert.Equal(suite.T(), models.BudgetWarning, b.Status)
	require.Len(suite.T(), alerts, 1)

	alert := alerts[0]
	assert.Equal(suite.T(), models.AlertThreshold, alert.Type)
	assert.Equal(suite.T(), models.SeverityWarning, alert.Severity)
	assert.Equal(suite.T(), "2024-01-01/2024-04-01", alert.Period)
	assert.Contains(suite.T(), alert.Message, "91.2%")
	assert.True(suite.T(), alert.Variance.Equal(decimal.NewFromInt(-3960)), "variance is %s", alert.Variance)
	assert.True(suite.T(), alert.TriggeredDate.Equal(now))

	_, alerts, err = suite.tracker.RefreshActual(suite.ctx, b.ID)
	require.Nil(suite.T(), err)
	assert.Len(suite.T(), alerts, 0, "a second refresh must not raise the alert again")

	stored, err := suite.tracker.Alerts(suite.ctx, budget.AlertFilter{BudgetID: b.ID})
	require.Nil(suite.T(), err)
	assert.Len(suite.T(), stored, 1)
}

func (suite *TestSuiteStandard) TestRefreshActualOverrun() {
	b := suite.createTestBudget(45000, 85)
	suite.book("JE-1", day(time.February, 1), -41040, "WEB_RELAUNCH")

	_, alerts, err := suite.tracker.RefreshActual(suite.ctx, b.ID)
	require.Nil(suite.T(), err)
	require.Len(suite.T(), alerts, 1)

	suite.book("JE-2", day(time.March, 1), -6000, "WEB_RELAUNCH")

	b, alerts, err = suite.tracker.RefreshActual(suite.ctx, b.ID)
	require.Nil(suite.T(), err)
	assert.Equal(suite.T(), models.BudgetOverrun, b.Status)
	require.Len(suite.T(), alerts, 1, "only the overrun is new")
	assert.Equal(suite.T(), models.AlertOverrun, alerts[0].Type)
	assert.Equal(suite.T(), models.SeverityCritical, alerts[0].Severity)
	assert.True(suite.T(), alerts[0].ActionRequired)

	_, alerts, err = suite.tracker.RefreshActual(suite.ctx, b.ID)
	require.Nil(suite.T(), err)
	assert.Len(suite.T(), alerts, 0)
}

func (suite *TestSuiteStandard) TestRefreshActualStraightToOverrun() {
	b := suite.createTestBudget(45000, 85)
	suite.book("JE-1", day(time.February, 1), -50000, "WEB_RELAUNCH")

	_, alerts, err := suite.tracker.RefreshActual(suite.ctx, b.ID)
	require.Nil(suite.T(), err)
	assert.Len(suite.T(), alerts, 2, "both thresholds are crossed")
}

func (suite *TestSuiteStandard) TestRefreshActualSnapshot() {
	b := suite.createTestBudget(45000, 85)
	suite.book("JE-1", day(time.March, 1), -1000, "WEB_RELAUNCH")

	for i := 0; i < 2; i++ {
		_, _, err := suite.tracker.RefreshActual(suite.ctx, b.ID)
		require.Nil(suite.T(), err)
	}

	snapshots, err := suite.tracker.Snapshots(suite.ctx, b.ID)
	require.Nil(suite.T(), err)
	require.Len(suite.T(), snapshots, 1)
	assert.Equal(suite.T(), "2024-03", snapshots[0].Period)
	assert.True(suite.T(), snapshots[0].ActualAmount.Equal(decimal.NewFromInt(1000)))
}

func (suite *TestSuiteStandard) TestRefreshActualNotFound() {
	_, _, err := suite.tracker.RefreshActual(suite.ctx, uuid.New())
	assert.ErrorIs(suite.T(), err, models.ErrResourceNotFound)
}

func (suite *TestSuiteStandard) TestRefreshAll() {
	suite.createTestBudget(45000, 85)
	suite.book("JE-1", day(time.March, 1), -50000, "WEB_RELAUNCH")

	alerts, err := suite.tracker.RefreshAll(suite.ctx)
	require.Nil(suite.T(), err)
	assert.Len(suite.T(), alerts, 2)

	alerts, err = suite.tracker.RefreshAll(suite.ctx)
	require.Nil(suite.T(), err)
	assert.Len(suite.T(), alerts, 0)
}

func (suite *TestSuiteStandard) TestBudgets() {
	suite.createTestBudget(45000, 85)

	budgets, err := suite.tracker.Budgets(suite.ctx, budget.Filter{AxisType: "project"})
	require.Nil(suite.T(), err)
	assert.Len(suite.T(), budgets, 1)

	budgets, err = suite.tracker.Budgets(suite.ctx, budget.Filter{AxisValue: "MOBILE_APP"})
	require.Nil(suite.T(), err)
	assert.Len(suite.T(), budgets, 0)
}

func (suite *TestSuiteStandard) TestMarkAlertRead() {
	b := suite.createTestBudget(45000, 85)
	suite.book("JE-1", day(time.March, 1), -41040, "WEB_RELAUNCH")

	_, alerts, err := suite.tracker.RefreshActual(suite.ctx, b.ID)
	require.Nil(suite.T(), err)
	require.Len(suite.T(), alerts, 1)

	alert, err := suite.tracker.MarkAlertRead(suite.ctx, alerts[0].ID)
	require.Nil(suite.T(), err)
	assert.True(suite.T(), alert.IsRead)

	unread, err := suite.tracker.Alerts(suite.ctx, budget.AlertFilter{UnreadOnly: true})
	require.Nil(suite.T(), err)
	assert.Len(suite.T(), unread, 0)

	_, err = suite.tracker.MarkAlertRead(suite.ctx, uuid.New())
	assert.ErrorIs(suite.T(), err, models.ErrResourceNotFound)
}

func (suite *TestSuiteStandard) TestAssessRisk() {
	b := suite.createTestBudget(45000, 85)

	for i, amount := range []int64{10000, 20000, 30000} {
		err := suite.db.Create(&models.BudgetSnapshot{
			BudgetID:     b.ID,
			Period:       time.Date(2024, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC).Format("2006-01"),
			ActualAmount: decimal.NewFromInt(amount),
		}).Error
		require.Nil(suite.T(), err)
	}

	risk, err := suite.tracker.AssessRisk(suite.ctx, b.ID)
	require.Nil(suite.T(), err)
	require.NotNil(suite.T(), risk.Forecast)

	assert.InDelta(suite.T(), 60000, risk.Forecast.ForecastAmount, 1e-6)
	assert.Equal(suite.T(), forecast.TrendIncreasing, risk.Forecast.Trend)
	assert.Equal(suite.T(), forecast.RiskHigh, risk.Forecast.RiskLevel)
	require.NotNil(suite.T(), risk.Alert)
	assert.Equal(suite.T(), models.AlertForecast, risk.Alert.Type)

	risk, err = suite.tracker.AssessRisk(suite.ctx, b.ID)
	require.Nil(suite.T(), err)
	assert.NotNil(suite.T(), risk.Forecast)
	assert.Nil(suite.T(), risk.Alert, "the forecast alert is only raised once per period")
}

func (suite *TestSuiteStandard) TestAssessRiskNotEnoughHistory() {
	b := suite.createTestBudget(45000, 85)
	suite.book("JE-1", day(time.March, 1), -1000, "WEB_RELAUNCH")

	_, _, err := suite.tracker.RefreshActual(suite.ctx, b.ID)
	require.Nil(suite.T(), err)

	risk, err := suite.tracker.AssessRisk(suite.ctx, b.ID)
	require.Nil(suite.T(), err)
	assert.Nil(suite.T(), risk.Forecast)
	assert.Nil(suite.T(), risk.Alert)
}
