package v1

import (
	"context"
	"net/http"

	"github.com/envelope-zero/analytics/internal/axis"
	"github.com/envelope-zero/analytics/internal/httputil"
	"github.com/envelope-zero/analytics/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RegisterAxisRoutes registers the routes for axes with
// the RouterGroup that is passed.
func (co Controller) RegisterAxisRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetAxes)
		r.POST("", co.CreateAxis)
		r.OPTIONS("/reorder", httputil.OptionsPost)
		r.POST("/reorder", co.ReorderAxes)
	}

	// Axis with ID
	{
		r.OPTIONS("/:id", httputil.OptionsGet)
		r.GET("/:id", co.GetAxis)
		r.POST("/:id/activate", co.ActivateAxis)
		r.POST("/:id/deactivate", co.DeactivateAxis)
		r.OPTIONS("/:id/values", httputil.OptionsGetPost)
		r.GET("/:id/values", co.GetAxisValues)
		r.POST("/:id/values", co.CreateAxisValue)
	}
}

// @Summary		List axes
// @Description	Returns all axes ordered by their order. Set active=true to only list active axes.
// @Tags			Axes
// @Produce		json
// @Success		200		{object}	Response[[]models.Axis]
// @Failure		500		{object}	httpError
// @Param			active	query		bool	false	"Only active axes"
// @Router			/v1/axes [get]
func (co Controller) GetAxes(c *gin.Context) {
	var (
		axes []models.Axis
		err  error
	)

	if c.Query("active") == "true" {
		axes, err = co.Axes.ActiveAxes(c)
	} else {
		axes, err = co.Axes.Axes(c)
	}
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, axes)
}

// @Summary		Register axis
// @Description	Registers a new active axis. At most four axes can be active.
// @Tags			Axes
// @Accept			json
// @Produce		json
// @Success		201		{object}	Response[models.Axis]
// @Failure		400		{object}	httpError
// @Failure		500		{object}	httpError
// @Param			axis	body		axis.AxisSpec	true	"Axis"
// @Router			/v1/axes [post]
func (co Controller) CreateAxis(c *gin.Context) {
	var spec axis.AxisSpec
	if err := httputil.BindData(c, &spec); err != nil {
		fail(c, err)
		return
	}

	a, err := co.Axes.RegisterAxis(c, spec)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusCreated, a)
}

// @Summary		Get axis
// @Tags			Axes
// @Produce		json
// @Success		200	{object}	Response[models.Axis]
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/axes/{id} [get]
func (co Controller) GetAxis(c *gin.Context) {
	id, err := httputil.ParamID(c)
	if err != nil {
		fail(c, err)
		return
	}

	a, err := co.Axes.Axis(c, id)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, a)
}

// @Summary		Activate axis
// @Tags			Axes
// @Produce		json
// @Success		200	{object}	Response[models.Axis]
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/axes/{id}/activate [post]
func (co Controller) ActivateAxis(c *gin.Context) {
	co.setAxisActive(c, co.Axes.ActivateAxis)
}

// @Summary		Deactivate axis
// @Description	Deactivates an axis. Required axes cannot be deactivated.
// @Tags			Axes
// @Produce		json
// @Success		200	{object}	Response[models.Axis]
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/axes/{id}/deactivate [post]
func (co Controller) DeactivateAxis(c *gin.Context) {
	co.setAxisActive(c, co.Axes.DeactivateAxis)
}

func (co Controller) setAxisActive(c *gin.Context, set func(context.Context, uuid.UUID) (models.Axis, error)) {
	id, err := httputil.ParamID(c)
	if err != nil {
		fail(c, err)
		return
	}

	a, err := set(c, id)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, a)
}

// ReorderRequest names the two axes whose orders are swapped.
type ReorderRequest struct {
	A uuid.UUID `json:"a" example:"65392deb-5e92-4268-b114-297faad6cdce"`
	B uuid.UUID `json:"b" example:"e9a9c2a1-1b0c-4f5e-9a0e-0c6f1c2a2d5b"`
}

// @Summary		Reorder axes
// @Description	Swaps the order of two active axes
// @Tags			Axes
// @Accept			json
// @Produce		json
// @Success		200		{object}	Response[[]models.Axis]
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Param			axes	body		ReorderRequest	true	"Axes to swap"
// @Router			/v1/axes/reorder [post]
func (co Controller) ReorderAxes(c *gin.Context) {
	var req ReorderRequest
	if err := httputil.BindData(c, &req); err != nil {
		fail(c, err)
		return
	}

	if err := co.Axes.ReorderAxes(c, req.A, req.B); err != nil {
		fail(c, err)
		return
	}

	axes, err := co.Axes.ActiveAxes(c)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, axes)
}

// @Summary		List axis values
// @Tags			Axes
// @Produce		json
// @Success		200	{object}	Response[[]models.AxisValue]
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/axes/{id}/values [get]
func (co Controller) GetAxisValues(c *gin.Context) {
	id, err := httputil.ParamID(c)
	if err != nil {
		fail(c, err)
		return
	}

	if _, err := co.Axes.Axis(c, id); err != nil {
		fail(c, err)
		return
	}

	values, err := co.Axes.Values(c, id)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, values)
}

// @Summary		Add axis value
// @Tags			Axes
// @Accept			json
// @Produce		json
// @Success		201		{object}	Response[models.AxisValue]
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Param			id		path		string			true	"ID formatted as string"
// @Param			value	body		axis.ValueSpec	true	"Value"
// @Router			/v1/axes/{id}/values [post]
func (co Controller) CreateAxisValue(c *gin.Context) {
	id, err := httputil.ParamID(c)
	if err != nil {
		fail(c, err)
		return
	}

	var spec axis.ValueSpec
	if err := httputil.BindData(c, &spec); err != nil {
		fail(c, err)
		return
	}

	v, err := co.Axes.AddValue(c, id, spec)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusCreated, v)
}
