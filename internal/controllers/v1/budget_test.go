package v1_test

import (
	"net/http"
	"time"

	"github.com/envelope-zero/analytics/internal/budget"
	v1 "github.com/envelope-zero/analytics/internal/controllers/v1"
	"github.com/envelope-zero/analytics/internal/models"
	"github.com/envelope-zero/analytics/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func q1Budget(amount, threshold int64) budget.Spec {
	return budget.Spec{
		Name:           "Website Relaunch Q1",
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		AxisType:       "PROJECT",
		AxisValue:      "WEB_RELAUNCH",
		BudgetAmount:   decimal.NewFromInt(amount),
		AlertThreshold: decimal.NewFromInt(threshold),
	}
}

func (suite *TestSuiteStandard) createTestBudget(spec budget.Spec) models.BudgetLine {
	r := suite.request(http.MethodPost, url("/budgets"), spec)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var response v1.Response[models.BudgetLine]
	test.DecodeResponse(suite.T(), &r, &response)
	return response.Data
}

// webRelaunchCosts books 41040 of costs on WEB_RELAUNCH in March.
func (suite *TestSuiteStandard) webRelaunchCosts() {
	suite.createTestAxis("PROJECT", 1, "WEB_RELAUNCH", "MOBILE_APP")
	suite.importEntries(
		v1.LedgerEntryEditable{ExternalID: "JE-1", Date: march(4), Amount: decimalOf(-20000), AccountCode: "604000"},
		v1.LedgerEntryEditable{ExternalID: "JE-2", Date: march(11), Amount: decimalOf(-21040), AccountCode: "604000"},
	)
	suite.tag("JE-1", "PROJECT", "WEB_RELAUNCH")
	suite.tag("JE-2", "PROJECT", "WEB_RELAUNCH")
}

func (suite *TestSuiteStandard) TestBudgetCreate() {
	suite.createTestAxis("PROJECT", 1, "WEB_RELAUNCH")

	b := suite.createTestBudget(q1Budget(45000, 0))
	assert.True(suite.T(), decimal.NewFromInt(80).Equal(b.AlertThreshold), "Threshold must default to 80, is %s", b.AlertThreshold)

	r := suite.request(http.MethodGet, url("/budgets/%s", b.ID), nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	r = suite.request(http.MethodGet, url("/budgets?axisType=project&axisValue=WEB_RELAUNCH"), nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var budgets v1.Response[[]models.BudgetLine]
	test.DecodeResponse(suite.T(), &r, &budgets)
	assert.Len(suite.T(), budgets.Data, 1)
}

func (suite *TestSuiteStandard) TestBudgetCreateFails() {
	suite.createTestAxis("PROJECT", 1, "WEB_RELAUNCH")

	reversed := q1Budget(45000, 85)
	reversed.StartDate, reversed.EndDate = reversed.EndDate, reversed.StartDate

	unknownValue := q1Budget(45000, 85)
	unknownValue.AxisValue = "NOPE"

	tests := []struct {
		name string
		spec budget.Spec
	}{
		{"Zero amount", q1Budget(0, 85)},
		{"Threshold above 100", q1Budget(45000, 101)},
		{"End before start", reversed},
		{"Unknown value", unknownValue},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			r := suite.request(http.MethodPost, url("/budgets"), tt.spec)
			test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
		})
	}
}

func (suite *TestSuiteStandard) TestBudgetRefresh() {
	suite.webRelaunchCosts()
	b := suite.createTestBudget(q1Budget(45000, 85))

	r := suite.request(http.MethodPost, url("/budgets/%s/refresh", b.ID), nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var refresh v1.Response[v1.BudgetRefresh]
	test.DecodeResponse(suite.T(), &r, &refresh)
	assert.True(suite.T(), decimal.NewFromInt(41040).Equal(refresh.Data.Budget.ActualAmount), refresh.Data.Budget.ActualAmount.String())
	assert.Equal(suite.T(), models.BudgetWarning, refresh.Data.Budget.Status)
	if assert.Len(suite.T(), refresh.Data.Alerts, 1) {
		assert.Equal(suite.T(), models.AlertThreshold, refresh.Data.Alerts[0].Type)
		assert.True(suite.T(), decimal.NewFromInt(-3960).Equal(refresh.Data.Alerts[0].Variance), refresh.Data.Alerts[0].Variance.String())
	}

	// Refreshing again raises no duplicate alert
	r = suite.request(http.MethodPost, url("/budgets/%s/refresh", b.ID), nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &refresh)
	assert.Len(suite.T(), refresh.Data.Alerts, 0)

	r = suite.request(http.MethodGet, url("/budgets/%s/snapshots", b.ID), nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var snapshots v1.Response[[]models.BudgetSnapshot]
	test.DecodeResponse(suite.T(), &r, &snapshots)
	if assert.Len(suite.T(), snapshots.Data, 1) {
		assert.Equal(suite.T(), "2024-03", snapshots.Data[0].Period)
	}

	r = suite.request(http.MethodGet, url("/budgets?status=warning"), nil)
	var budgets v1.Response[[]models.BudgetLine]
	test.DecodeResponse(suite.T(), &r, &budgets)
	assert.Len(suite.T(), budgets.Data, 1)
}

func (suite *TestSuiteStandard) TestBudgetRefreshAll() {
	suite.webRelaunchCosts()
	suite.createTestBudget(q1Budget(40000, 85))

	r := suite.request(http.MethodPost, url("/budgets/refresh"), nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var alerts v1.Response[[]models.BudgetAlert]
	test.DecodeResponse(suite.T(), &r, &alerts)
	assert.Len(suite.T(), alerts.Data, 2, "Going straight to overrun raises threshold and overrun alerts")
}

func (suite *TestSuiteStandard) TestBudgetForecast() {
	suite.webRelaunchCosts()
	b := suite.createTestBudget(q1Budget(45000, 85))

	r := suite.request(http.MethodPost, url("/budgets/%s/refresh", b.ID), nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	r = suite.request(http.MethodGet, url("/budgets/%s/forecast", b.ID), nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var risk v1.Response[budget.Risk]
	test.DecodeResponse(suite.T(), &r, &risk)
	assert.Equal(suite.T(), b.ID, risk.Data.Budget.ID)
	assert.Nil(suite.T(), risk.Data.Forecast, "One snapshot is not enough history for a forecast")
	assert.Nil(suite.T(), risk.Data.Alert)
}

func (suite *TestSuiteStandard) TestBudgetNotFound() {
	for _, path := range []string{"", "/snapshots", "/forecast"} {
		r := suite.request(http.MethodGet, url("/budgets/6a9f7d35-4a67-49a0-a8e3-5b8f4f1b7a11%s", path), nil)
		test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
	}

	r := suite.request(http.MethodPost, url("/budgets/6a9f7d35-4a67-49a0-a8e3-5b8f4f1b7a11/refresh"), nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}
