package v1

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/envelope-zero/analytics/internal/httputil"
	"github.com/envelope-zero/analytics/internal/models"
	"github.com/gin-gonic/gin"
)

// ExportResponse contains all resources of the instance, keyed by model name.
type ExportResponse struct {
	Data         map[string]json.RawMessage `json:"data"`
	CreationTime time.Time                  `json:"creationTime" example:"2024-03-31T18:00:00Z"`
}

// RegisterExportRoutes registers the routes for the export with
// the RouterGroup that is passed.
func (co Controller) RegisterExportRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", httputil.OptionsGet)
	r.GET("", co.GetExport)
}

// @Summary		Export
// @Description	Exports all resources for the instance, including deleted ones
// @Tags			Export
// @Produce		json
// @Success		200	{object}	ExportResponse
// @Failure		500	{object}	httpError
// @Router			/v1/export [get]
func (co Controller) GetExport(c *gin.Context) {
	resources, err := models.Export(c, co.DB)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, ExportResponse{
		Data:         resources,
		CreationTime: time.Now(),
	})
}
