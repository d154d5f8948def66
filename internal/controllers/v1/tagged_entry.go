package v1

import (
	"net/http"

	"github.com/envelope-zero/analytics/internal/allocation"
	"github.com/envelope-zero/analytics/internal/httputil"
	"github.com/envelope-zero/analytics/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RegisterTaggedEntryRoutes registers the routes for tagged entries with
// the RouterGroup that is passed.
func (co Controller) RegisterTaggedEntryRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", httputil.OptionsGetPost)
	r.GET("", co.GetTaggedEntries)
	r.POST("", co.TagEntry)
}

// @Summary		List tagged entries
// @Tags			Tagged Entries
// @Produce		json
// @Success		200			{object}	Response[[]models.TaggedEntry]
// @Failure		400			{object}	httpError
// @Param			entry		query		string	false	"External ID of the ledger entry"
// @Param			axis		query		string	false	"Axis code"
// @Param			value		query		string	false	"Value code, only used with axis"
// @Param			provenance	query		string	false	"manual or rule"
// @Param			rule		query		string	false	"ID of the rule that created the entries"
// @Param			from		query		string	false	"First day, YYYY-MM-DD"
// @Param			to			query		string	false	"Day after the last day, YYYY-MM-DD"
// @Router			/v1/tagged-entries [get]
func (co Controller) GetTaggedEntries(c *gin.Context) {
	var window QueryWindow
	_ = c.ShouldBindQuery(&window)

	from, to, err := window.times()
	if err != nil {
		fail(c, err)
		return
	}

	filter := allocation.TaggedFilter{
		EntryRef:   c.Query("entry"),
		AxisCode:   c.Query("axis"),
		ValueCode:  c.Query("value"),
		Provenance: models.Provenance(c.Query("provenance")),
		From:       from,
		To:         to,
	}

	ruleID, err := queryUUID(c, "rule")
	if err != nil {
		fail(c, err)
		return
	}
	if ruleID != uuid.Nil {
		filter.RuleID = &ruleID
	}

	entries, err := co.Engine.TaggedEntries(c, filter)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, entries)
}

// @Summary		Tag ledger entry
// @Description	Tags a ledger entry by hand with one value per axis. Every required axis must be assigned.
// @Tags			Tagged Entries
// @Accept			json
// @Produce		json
// @Success		201	{object}	Response[models.TaggedEntry]
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			tag	body		allocation.ManualTag	true	"Tag"
// @Router			/v1/tagged-entries [post]
func (co Controller) TagEntry(c *gin.Context) {
	var tag allocation.ManualTag
	if err := httputil.BindData(c, &tag); err != nil {
		fail(c, err)
		return
	}

	entry, err := co.Engine.TagEntry(c, tag)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusCreated, entry)
}
