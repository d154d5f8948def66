package v1_test

import (
	"net/http"

	v1 "github.com/envelope-zero/analytics/internal/controllers/v1"
	"github.com/envelope-zero/analytics/internal/models"
	"github.com/envelope-zero/analytics/test"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestAlerts() {
	suite.webRelaunchCosts()
	b := suite.createTestBudget(q1Budget(40000, 85))
	other := suite.createTestBudget(q1Budget(100000, 85))

	for _, id := range []string{b.ID.String(), other.ID.String()} {
		r := suite.request(http.MethodPost, url("/budgets/%s/refresh", id), nil)
		test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	}

	tests := []struct {
		query string
		count int
	}{
		{"", 2},
		{"?type=overrun", 1},
		{"?budget=" + b.ID.String(), 2},
		{"?budget=" + other.ID.String(), 0},
		{"?unread=true", 2},
	}

	for _, tt := range tests {
		suite.Run(tt.query, func() {
			r := suite.request(http.MethodGet, url("/alerts%s", tt.query), nil)
			test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

			var response v1.Response[[]models.BudgetAlert]
			test.DecodeResponse(suite.T(), &r, &response)
			assert.Len(suite.T(), response.Data, tt.count)
		})
	}

	r := suite.request(http.MethodGet, url("/alerts?budget=nope"), nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestAlertMarkRead() {
	suite.webRelaunchCosts()
	b := suite.createTestBudget(q1Budget(45000, 85))

	r := suite.request(http.MethodPost, url("/budgets/%s/refresh", b.ID), nil)
	var refresh v1.Response[v1.BudgetRefresh]
	test.DecodeResponse(suite.T(), &r, &refresh)
	suite.Require().Len(refresh.Data.Alerts, 1)

	r = suite.request(http.MethodPost, url("/alerts/%s/read", refresh.Data.Alerts[0].ID), nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var alert v1.Response[models.BudgetAlert]
	test.DecodeResponse(suite.T(), &r, &alert)
	assert.True(suite.T(), alert.Data.IsRead)
	assert.Equal(suite.T(), refresh.Data.Alerts[0].Message, alert.Data.Message)

	r = suite.request(http.MethodGet, url("/alerts?unread=true"), nil)
	var alerts v1.Response[[]models.BudgetAlert]
	test.DecodeResponse(suite.T(), &r, &alerts)
	assert.Len(suite.T(), alerts.Data, 0)

	r = suite.request(http.MethodPost, url("/alerts/6a9f7d35-4a67-49a0-a8e3-5b8f4f1b7a11/read"), nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}
