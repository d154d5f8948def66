package v1

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/envelope-zero/analytics/internal/allocation"
	"github.com/envelope-zero/analytics/internal/httputil"
	"github.com/envelope-zero/analytics/internal/models"
	"github.com/gin-gonic/gin"
)

// RegisterRuleRoutes registers the routes for allocation rules with
// the RouterGroup that is passed.
func (co Controller) RegisterRuleRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetRules)
		r.POST("", co.CreateRule)
	}

	// Rule with ID
	{
		r.OPTIONS("/:id", httputil.OptionsGetPut)
		r.GET("/:id", co.GetRule)
		r.PUT("/:id", co.UpdateRule)
		r.POST("/:id/activate", co.ActivateRule)
		r.POST("/:id/deactivate", co.DeactivateRule)
		r.OPTIONS("/:id/execute", httputil.OptionsPost)
		r.POST("/:id/execute", co.ExecuteRule)
		r.OPTIONS("/:id/executions", httputil.OptionsGet)
		r.GET("/:id/executions", co.GetRuleExecutions)
	}
}

// ExecuteRequest selects the period a rule is executed for.
type ExecuteRequest struct {
	AsOf time.Time `json:"asOf" example:"2024-03-31T00:00:00Z"` // Defaults to now
}

// @Summary		List rules
// @Tags			Rules
// @Produce		json
// @Success		200		{object}	Response[[]models.AllocationRule]
// @Failure		400		{object}	httpError
// @Param			active	query		bool	false	"Filter by active flag"
// @Param			type	query		string	false	"fixed, percentage or formula"
// @Router			/v1/rules [get]
func (co Controller) GetRules(c *gin.Context) {
	filter := allocation.RuleFilter{
		Type: models.RuleType(c.Query("type")),
	}

	if s, ok := c.GetQuery("active"); ok {
		active, err := strconv.ParseBool(s)
		if err != nil {
			fail(c, errors.Join(httputil.ErrInvalidQuery, err))
			return
		}
		filter.Active = &active
	}

	rules, err := co.Engine.Rules(c, filter)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, rules)
}

// @Summary		Create rule
// @Description	Creates an allocation rule. Formulas are validated on creation.
// @Tags			Rules
// @Accept			json
// @Produce		json
// @Success		201		{object}	Response[models.AllocationRule]
// @Failure		400		{object}	httpError
// @Param			rule	body		allocation.RuleSpec	true	"Rule"
// @Router			/v1/rules [post]
func (co Controller) CreateRule(c *gin.Context) {
	var spec allocation.RuleSpec
	if err := httputil.BindData(c, &spec); err != nil {
		fail(c, err)
		return
	}

	rule, err := co.Engine.CreateRule(c, spec)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusCreated, rule)
}

// @Summary		Get rule
// @Tags			Rules
// @Produce		json
// @Success		200	{object}	Response[models.AllocationRule]
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/rules/{id} [get]
func (co Controller) GetRule(c *gin.Context) {
	id, err := httputil.ParamID(c)
	if err != nil {
		fail(c, err)
		return
	}

	rule, err := co.Engine.Rule(c, id)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, rule)
}

// @Summary		Update rule
// @Description	Replaces the definition of a rule. Its conditions are replaced as a whole.
// @Tags			Rules
// @Accept			json
// @Produce		json
// @Success		200		{object}	Response[models.AllocationRule]
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Param			id		path		string				true	"ID formatted as string"
// @Param			rule	body		allocation.RuleSpec	true	"Rule"
// @Router			/v1/rules/{id} [put]
func (co Controller) UpdateRule(c *gin.Context) {
	id, err := httputil.ParamID(c)
	if err != nil {
		fail(c, err)
		return
	}

	var spec allocation.RuleSpec
	if err := httputil.BindData(c, &spec); err != nil {
		fail(c, err)
		return
	}

	rule, err := co.Engine.UpdateRule(c, id, spec)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, rule)
}

// @Summary		Activate rule
// @Tags			Rules
// @Produce		json
// @Success		200	{object}	Response[models.AllocationRule]
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/rules/{id}/activate [post]
func (co Controller) ActivateRule(c *gin.Context) {
	co.setRuleActive(c, true)
}

// @Summary		Deactivate rule
// @Tags			Rules
// @Produce		json
// @Success		200	{object}	Response[models.AllocationRule]
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/rules/{id}/deactivate [post]
func (co Controller) DeactivateRule(c *gin.Context) {
	co.setRuleActive(c, false)
}

func (co Controller) setRuleActive(c *gin.Context, active bool) {
	id, err := httputil.ParamID(c)
	if err != nil {
		fail(c, err)
		return
	}

	var rule models.AllocationRule
	if active {
		rule, err = co.Engine.ActivateRule(c, id)
	} else {
		rule, err = co.Engine.DeactivateRule(c, id)
	}
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, rule)
}

// @Summary		Execute rule
// @Description	Executes a rule for the period containing asOf. Entries already allocated by the rule in that period are skipped.
// @Tags			Rules
// @Accept			json
// @Produce		json
// @Success		200		{object}	Response[models.AllocationExecution]
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Failure		409		{object}	httpError
// @Param			id		path		string			true	"ID formatted as string"
// @Param			request	body		ExecuteRequest	false	"Execution period"
// @Router			/v1/rules/{id}/execute [post]
func (co Controller) ExecuteRule(c *gin.Context) {
	id, err := httputil.ParamID(c)
	if err != nil {
		fail(c, err)
		return
	}

	var request ExecuteRequest
	if err := c.ShouldBindJSON(&request); err != nil && !errors.Is(err, io.EOF) {
		fail(c, errors.Join(httputil.ErrInvalidBody, err))
		return
	}

	if request.AsOf.IsZero() {
		request.AsOf = time.Now()
	}

	execution, err := co.Engine.ExecuteRule(c, id, request.AsOf)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, execution)
}

// @Summary		List rule executions
// @Tags			Rules
// @Produce		json
// @Success		200	{object}	Response[[]models.AllocationExecution]
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/rules/{id}/executions [get]
func (co Controller) GetRuleExecutions(c *gin.Context) {
	id, err := httputil.ParamID(c)
	if err != nil {
		fail(c, err)
		return
	}

	if _, err := co.Engine.Rule(c, id); err != nil {
		fail(c, err)
		return
	}

	executions, err := co.Engine.Executions(c, id)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, executions)
}
