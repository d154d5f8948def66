package v1

import (
	"fmt"
	"net/http"

	"github.com/envelope-zero/analytics/internal/httputil"
	"github.com/envelope-zero/analytics/internal/report"
	"github.com/gin-gonic/gin"
)

// RegisterReportRoutes registers the routes for reports with
// the RouterGroup that is passed.
func (co Controller) RegisterReportRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/pnl", httputil.OptionsGet)
	r.GET("/pnl", co.GetPnL)
	r.OPTIONS("/heatmap", httputil.OptionsGet)
	r.GET("/heatmap", co.GetHeatmap)
	r.OPTIONS("/variance", httputil.OptionsGet)
	r.GET("/variance", co.GetVariance)
}

// reportQuery parses the axis and window of a report. The axis is required.
func reportQuery(c *gin.Context, param string) (report.Query, error) {
	var window QueryWindow
	_ = c.ShouldBindQuery(&window)

	from, to, err := window.times()
	if err != nil {
		return report.Query{}, err
	}

	axisCode := c.Query(param)
	if axisCode == "" {
		return report.Query{}, fmt.Errorf("%w: the %s parameter is required", httputil.ErrInvalidQuery, param)
	}

	return report.Query{AxisCode: axisCode, From: from, To: to}, nil
}

// @Summary		Profit and loss
// @Description	Returns revenue, costs and margin per value of an axis, ordered by margin. Entries without a value on the axis are reported as "Unassigned".
// @Tags			Reports
// @Produce		json
// @Success		200		{object}	Response[[]report.PnLData]
// @Failure		400		{object}	httpError
// @Param			axis	query		string	true	"Axis code"
// @Param			from	query		string	false	"First day, YYYY-MM-DD"
// @Param			to		query		string	false	"Day after the last day, YYYY-MM-DD"
// @Router			/v1/reports/pnl [get]
func (co Controller) GetPnL(c *gin.Context) {
	q, err := reportQuery(c, "axis")
	if err != nil {
		fail(c, err)
		return
	}

	data, err := co.Reporter.PnL(c, q)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, data)
}

// @Summary		Margin heatmap
// @Description	Returns the margin by the values of two axes.
// @Tags			Reports
// @Produce		json
// @Success		200		{object}	Response[report.Heatmap]
// @Failure		400		{object}	httpError
// @Param			rows	query		string	true	"Axis code of the rows"
// @Param			columns	query		string	true	"Axis code of the columns"
// @Param			from	query		string	false	"First day, YYYY-MM-DD"
// @Param			to		query		string	false	"Day after the last day, YYYY-MM-DD"
// @Router			/v1/reports/heatmap [get]
func (co Controller) GetHeatmap(c *gin.Context) {
	q, err := reportQuery(c, "rows")
	if err != nil {
		fail(c, err)
		return
	}

	columns := c.Query("columns")
	if columns == "" {
		fail(c, fmt.Errorf("%w: the columns parameter is required", httputil.ErrInvalidQuery))
		return
	}

	heatmap, err := co.Reporter.Heatmap(c, q.AxisCode, columns, q.From, q.To)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, heatmap)
}

// @Summary		Budget variance
// @Description	Compares the actual margin per value of an axis with the budget lines on that axis.
// @Tags			Reports
// @Produce		json
// @Success		200		{object}	Response[[]report.VarianceRow]
// @Failure		400		{object}	httpError
// @Param			axis	query		string	true	"Axis code"
// @Param			from	query		string	false	"First day, YYYY-MM-DD"
// @Param			to		query		string	false	"Day after the last day, YYYY-MM-DD"
// @Router			/v1/reports/variance [get]
func (co Controller) GetVariance(c *gin.Context) {
	q, err := reportQuery(c, "axis")
	if err != nil {
		fail(c, err)
		return
	}

	rows, err := co.Reporter.BudgetVariance(c, q)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, rows)
}
