package v1

import (
	"net/http"

	"github.com/envelope-zero/analytics/internal/httputil"
	"github.com/gin-gonic/gin"
)

// RegisterValueRoutes registers the routes for axis values with
// the RouterGroup that is passed.
func (co Controller) RegisterValueRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/:id", httputil.OptionsGetDelete)
	r.GET("/:id", co.GetValue)
	r.DELETE("/:id", co.DeleteValue)
	r.POST("/:id/deactivate", co.DeactivateValue)
}

// @Summary		Get axis value
// @Tags			Values
// @Produce		json
// @Success		200	{object}	Response[models.AxisValue]
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/values/{id} [get]
func (co Controller) GetValue(c *gin.Context) {
	id, err := httputil.ParamID(c)
	if err != nil {
		fail(c, err)
		return
	}

	v, err := co.Axes.Value(c, id)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, v)
}

// @Summary		Delete axis value
// @Description	Deletes an unused axis value. Values that have been used for tagging or have children are deactivated instead and returned.
// @Tags			Values
// @Produce		json
// @Success		200	{object}	Response[models.AxisValue]
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/values/{id} [delete]
func (co Controller) DeleteValue(c *gin.Context) {
	id, err := httputil.ParamID(c)
	if err != nil {
		fail(c, err)
		return
	}

	deleted, err := co.Axes.DeleteValue(c, id)
	if err != nil {
		fail(c, err)
		return
	}

	if deleted {
		c.Status(http.StatusNoContent)
		return
	}

	v, err := co.Axes.Value(c, id)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, v)
}

// @Summary		Deactivate axis value
// @Tags			Values
// @Produce		json
// @Success		200	{object}	Response[models.AxisValue]
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/values/{id}/deactivate [post]
func (co Controller) DeactivateValue(c *gin.Context) {
	id, err := httputil.ParamID(c)
	if err != nil {
		fail(c, err)
		return
	}

	v, err := co.Axes.DeactivateValue(c, id)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, v)
}
