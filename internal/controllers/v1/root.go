package v1

import (
	"net/http"

	"github.com/envelope-zero/analytics/internal/httputil"
	"github.com/envelope-zero/analytics/internal/models"
	"github.com/gin-gonic/gin"
)

func RegisterRootRoutes(r *gin.RouterGroup) {
	r.GET("", Get)
	r.OPTIONS("", Options)
}

type RootResponse struct {
	Links Links `json:"links"` // Links for the v1 API
}

type Links struct {
	Axes          string `json:"axes" example:"https://example.com/api/v1/axes"`
	Values        string `json:"values" example:"https://example.com/api/v1/values"`
	LedgerEntries string `json:"ledgerEntries" example:"https://example.com/api/v1/ledger-entries"`
	TaggedEntries string `json:"taggedEntries" example:"https://example.com/api/v1/tagged-entries"`
	Rules         string `json:"rules" example:"https://example.com/api/v1/rules"`
	Formulas      string `json:"formulas" example:"https://example.com/api/v1/formulas"`
	Budgets       string `json:"budgets" example:"https://example.com/api/v1/budgets"`
	Alerts        string `json:"alerts" example:"https://example.com/api/v1/alerts"`
	Reports       string `json:"reports" example:"https://example.com/api/v1/reports"`
	Export        string `json:"export" example:"https://example.com/api/v1/export"`
}

// Get returns the link list for v1
//
//	@Summary		v1 API
//	@Description	Returns general information about the v1 API
//	@Tags			v1
//	@Success		200	{object}	RootResponse
//	@Router			/v1 [get]
func Get(c *gin.Context) {
	url := c.GetString(string(models.DBContextURL)) + "/v1"

	c.JSON(http.StatusOK, RootResponse{
		Links: Links{
			Axes:          url + "/axes",
			Values:        url + "/values",
			LedgerEntries: url + "/ledger-entries",
			TaggedEntries: url + "/tagged-entries",
			Rules:         url + "/rules",
			Formulas:      url + "/formulas",
			Budgets:       url + "/budgets",
			Alerts:        url + "/alerts",
			Reports:       url + "/reports",
			Export:        url + "/export",
		},
	})
}

// Options returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			v1
//	@Success		204
//	@Router			/v1 [options]
func Options(c *gin.Context) {
	httputil.OptionsGet(c)
}
