package v1

import (
	"net/http"

	"github.com/envelope-zero/analytics/internal/budget"
	"github.com/envelope-zero/analytics/internal/httputil"
	"github.com/envelope-zero/analytics/internal/models"
	"github.com/gin-gonic/gin"
)

// RegisterBudgetRoutes registers the routes for budget lines with
// the RouterGroup that is passed.
func (co Controller) RegisterBudgetRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetBudgets)
		r.POST("", co.CreateBudget)
		r.OPTIONS("/refresh", httputil.OptionsPost)
		r.POST("/refresh", co.RefreshBudgets)
	}

	// Budget with ID
	{
		r.OPTIONS("/:id", httputil.OptionsGet)
		r.GET("/:id", co.GetBudget)
		r.OPTIONS("/:id/refresh", httputil.OptionsPost)
		r.POST("/:id/refresh", co.RefreshBudget)
		r.OPTIONS("/:id/forecast", httputil.OptionsGet)
		r.GET("/:id/forecast", co.GetBudgetForecast)
		r.OPTIONS("/:id/snapshots", httputil.OptionsGet)
		r.GET("/:id/snapshots", co.GetBudgetSnapshots)
	}
}

// BudgetRefresh is the result of refreshing a budget line.
type BudgetRefresh struct {
	Budget models.BudgetLine    `json:"budget"`
	Alerts []models.BudgetAlert `json:"alerts"` // Alerts raised by this refresh
}

// @Summary		List budget lines
// @Tags			Budgets
// @Produce		json
// @Success		200			{object}	Response[[]models.BudgetLine]
// @Failure		500			{object}	httpError
// @Param			axisType	query		string	false	"Axis code"
// @Param			axisValue	query		string	false	"Value code"
// @Param			status		query		string	false	"on-track, warning, overrun or under-budget"
// @Router			/v1/budgets [get]
func (co Controller) GetBudgets(c *gin.Context) {
	budgets, err := co.Tracker.Budgets(c, budget.Filter{
		AxisType:  c.Query("axisType"),
		AxisValue: c.Query("axisValue"),
		Status:    models.BudgetStatus(c.Query("status")),
	})
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, budgets)
}

// @Summary		Create budget line
// @Tags			Budgets
// @Accept			json
// @Produce		json
// @Success		201		{object}	Response[models.BudgetLine]
// @Failure		400		{object}	httpError
// @Param			budget	body		budget.Spec	true	"Budget line"
// @Router			/v1/budgets [post]
func (co Controller) CreateBudget(c *gin.Context) {
	var spec budget.Spec
	if err := httputil.BindData(c, &spec); err != nil {
		fail(c, err)
		return
	}

	b, err := co.Tracker.CreateBudget(c, spec)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusCreated, b)
}

// @Summary		Get budget line
// @Tags			Budgets
// @Produce		json
// @Success		200	{object}	Response[models.BudgetLine]
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/budgets/{id} [get]
func (co Controller) GetBudget(c *gin.Context) {
	id, err := httputil.ParamID(c)
	if err != nil {
		fail(c, err)
		return
	}

	b, err := co.Tracker.Budget(c, id)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, b)
}

// @Summary		Refresh budget line
// @Description	Recomputes the actual amount of a budget line from the tagged entries and raises alerts.
// @Tags			Budgets
// @Produce		json
// @Success		200	{object}	Response[BudgetRefresh]
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/budgets/{id}/refresh [post]
func (co Controller) RefreshBudget(c *gin.Context) {
	id, err := httputil.ParamID(c)
	if err != nil {
		fail(c, err)
		return
	}

	b, alerts, err := co.Tracker.RefreshActual(c, id)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, BudgetRefresh{Budget: b, Alerts: alerts})
}

// @Summary		Refresh all budget lines
// @Description	Refreshes every budget line that has started and returns the alerts raised.
// @Tags			Budgets
// @Produce		json
// @Success		200	{object}	Response[[]models.BudgetAlert]
// @Failure		500	{object}	httpError
// @Router			/v1/budgets/refresh [post]
func (co Controller) RefreshBudgets(c *gin.Context) {
	alerts, err := co.Tracker.RefreshAll(c)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, alerts)
}

// @Summary		Forecast budget line
// @Description	Projects the monthly snapshots of a budget line and assesses the overrun risk. The forecast is null with fewer than two snapshots.
// @Tags			Budgets
// @Produce		json
// @Success		200	{object}	Response[budget.Risk]
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/budgets/{id}/forecast [get]
func (co Controller) GetBudgetForecast(c *gin.Context) {
	id, err := httputil.ParamID(c)
	if err != nil {
		fail(c, err)
		return
	}

	risk, err := co.Tracker.AssessRisk(c, id)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, risk)
}

// @Summary		List budget snapshots
// @Tags			Budgets
// @Produce		json
// @Success		200	{object}	Response[[]models.BudgetSnapshot]
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/budgets/{id}/snapshots [get]
func (co Controller) GetBudgetSnapshots(c *gin.Context) {
	id, err := httputil.ParamID(c)
	if err != nil {
		fail(c, err)
		return
	}

	snapshots, err := co.Tracker.Snapshots(c, id)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, snapshots)
}
