package v1_test

import (
	"encoding/json"
	"net/http"

	v1 "github.com/envelope-zero/analytics/internal/controllers/v1"
	"github.com/envelope-zero/analytics/internal/models"
	"github.com/envelope-zero/analytics/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestExport() {
	a := suite.createTestAxis("CC", 1, "CC_DEV", "CC_OPS")

	r := suite.request(http.MethodGet, url("/export"), nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.ExportResponse
	test.DecodeResponse(suite.T(), &r, &response)

	assert.Len(suite.T(), response.Data, len(models.Registry), "Number of models in export does not match registry")

	var axes []models.Axis
	require.Nil(suite.T(), json.Unmarshal(response.Data["Axis"], &axes))
	require.Len(suite.T(), axes, 1)
	assert.Equal(suite.T(), a.ID, axes[0].ID)

	var values []models.AxisValue
	require.Nil(suite.T(), json.Unmarshal(response.Data["AxisValue"], &values))
	assert.Len(suite.T(), values, 2)

	var entries []models.LedgerEntry
	require.Nil(suite.T(), json.Unmarshal(response.Data["LedgerEntry"], &entries))
	assert.Len(suite.T(), entries, 0)
}

func (suite *TestSuiteStandard) TestExportDatabaseClosed() {
	suite.CloseDB()

	r := suite.request(http.MethodGet, url("/export"), nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusInternalServerError)
}
