package v1_test

import (
	"context"
	"net/http"

	"github.com/envelope-zero/analytics/internal/allocation"
	v1 "github.com/envelope-zero/analytics/internal/controllers/v1"
	"github.com/envelope-zero/analytics/internal/models"
	"github.com/envelope-zero/analytics/test"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestTagEntry() {
	suite.createTestAxis("PROJECT", 1, "WEB_RELAUNCH")
	suite.createTestAxis("CLIENT", 2, "ACME")
	suite.ledgerEntries()

	r := suite.request(http.MethodPost, url("/tagged-entries"), allocation.ManualTag{
		EntryRef:    "JE-3",
		Assignments: map[string]string{"project": "WEB_RELAUNCH", "CLIENT": "ACME"},
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var tagged v1.Response[models.TaggedEntry]
	test.DecodeResponse(suite.T(), &r, &tagged)
	assert.Equal(suite.T(), models.ProvenanceManual, tagged.Data.Provenance)
	assert.True(suite.T(), decimalOf(4000).Equal(tagged.Data.Amount))
	assert.Len(suite.T(), tagged.Data.Assignments, 2)
}

func (suite *TestSuiteStandard) TestTagEntryFails() {
	a := suite.createTestAxis("PROJECT", 1, "WEB_RELAUNCH")
	suite.ledgerEntries()

	_, err := suite.co.Axes.RegisterAxis(context.Background(), axisSpec("CLIENT", 2, true))
	suite.Require().Nil(err)

	tests := []struct {
		name   string
		tag    allocation.ManualTag
		status int
	}{
		{"No entry reference", allocation.ManualTag{Assignments: map[string]string{"PROJECT": "WEB_RELAUNCH"}}, http.StatusBadRequest},
		{"Unknown entry", allocation.ManualTag{EntryRef: "JE-404", Assignments: map[string]string{"PROJECT": "WEB_RELAUNCH"}}, http.StatusNotFound},
		{"Required axis missing", allocation.ManualTag{EntryRef: "JE-1", Assignments: map[string]string{"PROJECT": "WEB_RELAUNCH"}}, http.StatusBadRequest},
		{"Unknown value", allocation.ManualTag{EntryRef: "JE-1", Assignments: map[string]string{"PROJECT": "NOPE", "CLIENT": "NOPE"}}, http.StatusNotFound},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			r := suite.request(http.MethodPost, url("/tagged-entries"), tt.tag)
			test.AssertHTTPStatus(suite.T(), &r, tt.status)
		})
	}

	r := suite.request(http.MethodGet, url("/axes/%s/values", a.ID), nil)
	var values v1.Response[[]models.AxisValue]
	test.DecodeResponse(suite.T(), &r, &values)
	assert.Equal(suite.T(), uint64(0), values.Data[0].UsageCount, "Failed tagging must not count as usage")
}

func (suite *TestSuiteStandard) TestTaggedEntries() {
	suite.createTestAxis("PROJECT", 1, "WEB_RELAUNCH", "MOBILE_APP")
	suite.ledgerEntries()
	suite.tag("JE-1", "PROJECT", "WEB_RELAUNCH")
	suite.tag("JE-3", "PROJECT", "WEB_RELAUNCH")
	suite.tag("JE-4", "PROJECT", "MOBILE_APP")

	tests := []struct {
		query string
		refs  []string
	}{
		{"", []string{"JE-1", "JE-3", "JE-4"}},
		{"?axis=PROJECT&value=WEB_RELAUNCH", []string{"JE-1", "JE-3"}},
		{"?entry=JE-4", []string{"JE-4"}},
		{"?provenance=rule", []string{}},
		{"?from=2024-03-02&to=2024-03-28", []string{"JE-3"}},
	}

	for _, tt := range tests {
		suite.Run(tt.query, func() {
			r := suite.request(http.MethodGet, url("/tagged-entries%s", tt.query), nil)
			test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

			var response v1.Response[[]models.TaggedEntry]
			test.DecodeResponse(suite.T(), &r, &response)

			refs := make([]string, 0, len(response.Data))
			for _, e := range response.Data {
				refs = append(refs, e.EntryRef)
			}
			assert.Equal(suite.T(), tt.refs, refs)
		})
	}

	r := suite.request(http.MethodGet, url("/tagged-entries?rule=nope"), nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}
