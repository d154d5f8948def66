package v1

import (
	"net/http"

	"github.com/envelope-zero/analytics/internal/budget"
	"github.com/envelope-zero/analytics/internal/httputil"
	"github.com/envelope-zero/analytics/internal/models"
	"github.com/gin-gonic/gin"
)

// RegisterAlertRoutes registers the routes for budget alerts with
// the RouterGroup that is passed.
func (co Controller) RegisterAlertRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", httputil.OptionsGet)
	r.GET("", co.GetAlerts)
	r.OPTIONS("/:id/read", httputil.OptionsPost)
	r.POST("/:id/read", co.MarkAlertRead)
}

// @Summary		List alerts
// @Tags			Alerts
// @Produce		json
// @Success		200		{object}	Response[[]models.BudgetAlert]
// @Failure		400		{object}	httpError
// @Param			budget	query		string	false	"ID of the budget line"
// @Param			unread	query		bool	false	"Only unread alerts"
// @Param			type	query		string	false	"threshold, overrun or forecast"
// @Router			/v1/alerts [get]
func (co Controller) GetAlerts(c *gin.Context) {
	budgetID, err := queryUUID(c, "budget")
	if err != nil {
		fail(c, err)
		return
	}

	alerts, err := co.Tracker.Alerts(c, budget.AlertFilter{
		BudgetID:   budgetID,
		UnreadOnly: c.Query("unread") == "true",
		Type:       models.AlertType(c.Query("type")),
	})
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, alerts)
}

// @Summary		Mark alert as read
// @Tags			Alerts
// @Produce		json
// @Success		200	{object}	Response[models.BudgetAlert]
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/alerts/{id}/read [post]
func (co Controller) MarkAlertRead(c *gin.Context) {
	id, err := httputil.ParamID(c)
	if err != nil {
		fail(c, err)
		return
	}

	alert, err := co.Tracker.MarkAlertRead(c, id)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, alert)
}
