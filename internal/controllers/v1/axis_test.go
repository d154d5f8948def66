package v1_test

import (
	"context"
	"net/http"

	"github.com/envelope-zero/analytics/internal/axis"
	v1 "github.com/envelope-zero/analytics/internal/controllers/v1"
	"github.com/envelope-zero/analytics/internal/models"
	"github.com/envelope-zero/analytics/test"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestAxisCreate() {
	r := suite.request(http.MethodPost, url("/axes"), axis.AxisSpec{Code: "project", Label: "Project", Order: 1})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var response v1.Response[models.Axis]
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), "PROJECT", response.Data.Code)
	assert.True(suite.T(), response.Data.Active)

	r = suite.request(http.MethodGet, url("/axes/%s", response.Data.ID), nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
}

func (suite *TestSuiteStandard) TestAxisCreateFails() {
	suite.createTestAxis("PROJECT", 1)

	tests := []struct {
		name   string
		body   any
		status int
		err    string
	}{
		{"Empty body", "", http.StatusBadRequest, "the request body must not be empty"},
		{"Broken JSON", `{"code": "CC"`, http.StatusBadRequest, ""},
		{"Invalid code", axis.AxisSpec{Code: "C", Label: "Cost Center", Order: 2}, http.StatusBadRequest, models.ErrAxisCodeInvalid.Error()},
		{"Order out of range", axis.AxisSpec{Code: "CC", Label: "Cost Center", Order: 5}, http.StatusBadRequest, models.ErrAxisOrderInvalid.Error()},
		{"Duplicate code", axis.AxisSpec{Code: "PROJECT", Label: "Project", Order: 2}, http.StatusBadRequest, models.ErrAxisCodeNotUnique.Error()},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			r := suite.request(http.MethodPost, url("/axes"), tt.body)
			test.AssertHTTPStatus(suite.T(), &r, tt.status)

			if tt.err != "" {
				var response struct{ Error string }
				test.DecodeResponse(suite.T(), &r, &response)
				assert.Equal(suite.T(), tt.err, response.Error)
			}
		})
	}
}

func (suite *TestSuiteStandard) TestAxisLimit() {
	for i, code := range []string{"PROJECT", "CLIENT", "CC", "REGION"} {
		suite.createTestAxis(code, uint(i+1))
	}

	r := suite.request(http.MethodPost, url("/axes"), axis.AxisSpec{Code: "PRODUCT", Label: "Product", Order: 4})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
	assert.Contains(suite.T(), r.Body.String(), "at most 4 axes")
}

func (suite *TestSuiteStandard) TestAxisGetFails() {
	r := suite.request(http.MethodGet, url("/axes/not-a-uuid"), nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	r = suite.request(http.MethodGet, url("/axes/6a9f7d35-4a67-49a0-a8e3-5b8f4f1b7a11"), nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
	assert.Contains(suite.T(), r.Body.String(), "there is no axis matching your query")
}

func (suite *TestSuiteStandard) TestAxisActivation() {
	a := suite.createTestAxis("PROJECT", 1)

	r := suite.request(http.MethodPost, url("/axes/%s/deactivate", a.ID), nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.Response[[]models.Axis]
	r = suite.request(http.MethodGet, url("/axes?active=true"), nil)
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Len(suite.T(), response.Data, 0)

	r = suite.request(http.MethodPost, url("/axes/%s/activate", a.ID), nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	r = suite.request(http.MethodGet, url("/axes?active=true"), nil)
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Len(suite.T(), response.Data, 1)
}

func (suite *TestSuiteStandard) TestAxisReorder() {
	project := suite.createTestAxis("PROJECT", 1)
	client := suite.createTestAxis("CLIENT", 2)

	r := suite.request(http.MethodPost, url("/axes/reorder"), v1.ReorderRequest{A: project.ID, B: client.ID})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.Response[[]models.Axis]
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), "CLIENT", response.Data[0].Code)
	assert.Equal(suite.T(), "PROJECT", response.Data[1].Code)
}

func (suite *TestSuiteStandard) TestAxisValues() {
	a := suite.createTestAxis("PROJECT", 1)

	r := suite.request(http.MethodPost, url("/axes/%s/values", a.ID), axis.ValueSpec{Code: "WEB_RELAUNCH", Label: "Website Relaunch"})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var value v1.Response[models.AxisValue]
	test.DecodeResponse(suite.T(), &r, &value)
	assert.Equal(suite.T(), a.ID, value.Data.AxisID)

	r = suite.request(http.MethodPost, url("/axes/%s/values", a.ID), axis.ValueSpec{Code: "WEB_RELAUNCH", Label: "Duplicate"})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var values v1.Response[[]models.AxisValue]
	r = suite.request(http.MethodGet, url("/axes/%s/values", a.ID), nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &values)
	assert.Len(suite.T(), values.Data, 1)

	r = suite.request(http.MethodGet, url("/values/%s", value.Data.ID), nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
}

func (suite *TestSuiteStandard) TestValueDelete() {
	a := suite.createTestAxis("PROJECT", 1, "WEB_RELAUNCH", "MOBILE_APP")
	suite.importEntries(v1.LedgerEntryEditable{ExternalID: "JE-1", Date: march(1), Amount: decimalOf(100), AccountCode: "706000"})
	suite.tag("JE-1", "PROJECT", "WEB_RELAUNCH")

	var values v1.Response[[]models.AxisValue]
	r := suite.request(http.MethodGet, url("/axes/%s/values", a.ID), nil)
	test.DecodeResponse(suite.T(), &r, &values)

	for _, v := range values.Data {
		r := suite.request(http.MethodDelete, url("/values/%s", v.ID), nil)

		// Used values are deactivated, unused ones deleted
		if v.Code == "WEB_RELAUNCH" {
			test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

			var value v1.Response[models.AxisValue]
			test.DecodeResponse(suite.T(), &r, &value)
			assert.False(suite.T(), value.Data.Active)
			assert.Equal(suite.T(), uint64(1), value.Data.UsageCount)
			continue
		}

		test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

		r = suite.request(http.MethodGet, url("/values/%s", v.ID), nil)
		test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
	}
}

func (suite *TestSuiteStandard) TestValueDeactivate() {
	a := suite.createTestAxis("PROJECT", 1, "WEB_RELAUNCH")
	value, err := suite.co.Axes.ValueByCode(context.Background(), a.Code, "WEB_RELAUNCH")
	suite.Require().Nil(err)

	r := suite.request(http.MethodPost, url("/values/%s/deactivate", value.ID), nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	// Inactive values cannot be used for tagging
	suite.importEntries(v1.LedgerEntryEditable{ExternalID: "JE-1", Date: march(1), Amount: decimalOf(100), AccountCode: "706000"})
	r = suite.request(http.MethodPost, url("/tagged-entries"), map[string]any{
		"entryRef":    "JE-1",
		"assignments": map[string]string{"PROJECT": "WEB_RELAUNCH"},
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
	assert.Contains(suite.T(), r.Body.String(), "not active")
}
