package v1_test

import (
	"net/http"

	v1 "github.com/envelope-zero/analytics/internal/controllers/v1"
	"github.com/envelope-zero/analytics/internal/report"
	"github.com/envelope-zero/analytics/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// reportEntries books revenue and costs on two projects. JE-4 has no project.
func (suite *TestSuiteStandard) reportEntries() {
	suite.createTestAxis("PROJECT", 1, "WEB_RELAUNCH", "MOBILE_APP")
	suite.createTestAxis("CLIENT", 2, "ACME", "GLOBEX")
	suite.importEntries(
		v1.LedgerEntryEditable{ExternalID: "JE-1", Date: march(1), Amount: decimalOf(52000), AccountCode: "706000"},
		v1.LedgerEntryEditable{ExternalID: "JE-2", Date: march(2), Amount: decimalOf(-38250), AccountCode: "604000"},
		v1.LedgerEntryEditable{ExternalID: "JE-3", Date: march(3), Amount: decimalOf(10000), AccountCode: "706000"},
		v1.LedgerEntryEditable{ExternalID: "JE-4", Date: march(4), Amount: decimalOf(-850), AccountCode: "613000"},
	)

	for _, tag := range []struct{ ref, project, client string }{
		{"JE-1", "WEB_RELAUNCH", "ACME"},
		{"JE-2", "WEB_RELAUNCH", "ACME"},
		{"JE-3", "MOBILE_APP", "GLOBEX"},
	} {
		r := suite.request(http.MethodPost, url("/tagged-entries"), map[string]any{
			"entryRef":    tag.ref,
			"assignments": map[string]string{"PROJECT": tag.project, "CLIENT": tag.client},
		})
		test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)
	}
	suite.tag("JE-4", "CLIENT", "ACME")
}

func (suite *TestSuiteStandard) TestReportPnL() {
	suite.reportEntries()

	r := suite.request(http.MethodGet, url("/reports/pnl?axis=PROJECT&from=2024-03-01&to=2024-04-01"), nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.Response[[]report.PnLData]
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Require().Len(response.Data, 3)

	assert.Equal(suite.T(), "WEB_RELAUNCH", response.Data[0].Key)
	assert.True(suite.T(), decimal.NewFromInt(13750).Equal(response.Data[0].Margin), response.Data[0].Margin.String())
	assert.Equal(suite.T(), "MOBILE_APP", response.Data[1].Key)
	assert.Equal(suite.T(), report.Unassigned, response.Data[2].Key)
	assert.True(suite.T(), decimal.NewFromInt(-850).Equal(response.Data[2].Margin), response.Data[2].Margin.String())

	// Nothing is booked before March
	r = suite.request(http.MethodGet, url("/reports/pnl?axis=PROJECT&to=2024-03-01"), nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Len(suite.T(), response.Data, 0)
}

func (suite *TestSuiteStandard) TestReportHeatmap() {
	suite.reportEntries()

	r := suite.request(http.MethodGet, url("/reports/heatmap?rows=PROJECT&columns=CLIENT"), nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.Response[report.Heatmap]
	test.DecodeResponse(suite.T(), &r, &response)

	cell, ok := response.Data.Cell("WEB_RELAUNCH", "ACME")
	assert.True(suite.T(), ok)
	assert.True(suite.T(), decimal.NewFromInt(13750).Equal(cell), cell.String())

	cell, ok = response.Data.Cell(report.Unassigned, "ACME")
	assert.True(suite.T(), ok)
	assert.True(suite.T(), decimal.NewFromInt(-850).Equal(cell), cell.String())
}

func (suite *TestSuiteStandard) TestReportVariance() {
	suite.reportEntries()
	suite.createTestBudget(q1Budget(30000, 85))

	r := suite.request(http.MethodGet, url("/reports/variance?axis=PROJECT&from=2024-01-01&to=2024-04-01"), nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.Response[[]report.VarianceRow]
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Require().Len(response.Data, 3)

	web := response.Data[0]
	assert.Equal(suite.T(), "WEB_RELAUNCH", web.Key)
	if assert.NotNil(suite.T(), web.Variance) {
		assert.True(suite.T(), decimal.NewFromInt(43750).Equal(*web.Variance), web.Variance.String())
	}
	assert.Nil(suite.T(), response.Data[1].BudgetMargin, "MOBILE_APP has no budget")
}

func (suite *TestSuiteStandard) TestReportBadQuery() {
	for _, path := range []string{
		"/reports/pnl",
		"/reports/pnl?axis=PROJECT&from=yesterday",
		"/reports/heatmap?rows=PROJECT",
		"/reports/heatmap?columns=CLIENT",
		"/reports/variance",
	} {
		r := suite.request(http.MethodGet, url("%s", path), nil)
		test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
	}
}
