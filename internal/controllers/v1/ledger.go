package v1

import (
	"net/http"
	"time"

	"github.com/envelope-zero/analytics/internal/httputil"
	"github.com/envelope-zero/analytics/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// RegisterLedgerRoutes registers the routes for the ledger mirror with
// the RouterGroup that is passed.
func (co Controller) RegisterLedgerRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", httputil.OptionsGetPost)
	r.GET("", co.GetLedgerEntries)
	r.POST("", co.ImportLedgerEntries)
	r.OPTIONS("/:ref", httputil.OptionsGet)
	r.GET("/:ref", co.GetLedgerEntry)
}

// LedgerEntryEditable is an entry of the external ledger to mirror.
type LedgerEntryEditable struct {
	ExternalID  string            `json:"externalId" example:"JE-2024-000123"`
	Date        time.Time         `json:"date" example:"2024-03-05T00:00:00Z"`
	Amount      decimal.Decimal   `json:"amount" example:"-850"`
	AccountCode string            `json:"accountCode" example:"613000 - Loyers"`
	Label       string            `json:"label" example:"Office rent March"`
	Attributes  map[string]string `json:"attributes"`
}

func (e LedgerEntryEditable) model() models.LedgerEntry {
	return models.LedgerEntry{
		ExternalID:  e.ExternalID,
		Date:        e.Date,
		Amount:      e.Amount,
		AccountCode: e.AccountCode,
		Label:       e.Label,
		Attributes:  e.Attributes,
	}
}

type ImportResult struct {
	Imported int64 `json:"imported" example:"17"` // Number of created or updated entries
}

// @Summary		List ledger entries
// @Description	Returns the mirrored ledger entries, optionally filtered by an account pattern such as "62*"
// @Tags			Ledger
// @Produce		json
// @Success		200		{object}	Response[[]models.LedgerEntry]
// @Failure		400		{object}	httpError
// @Param			account	query		string	false	"Account code or glob pattern"
// @Param			from	query		string	false	"First day, YYYY-MM-DD"
// @Param			to		query		string	false	"Day after the last day, YYYY-MM-DD"
// @Router			/v1/ledger-entries [get]
func (co Controller) GetLedgerEntries(c *gin.Context) {
	var window QueryWindow
	_ = c.ShouldBindQuery(&window)

	from, to, err := window.times()
	if err != nil {
		fail(c, err)
		return
	}

	pattern := c.Query("account")
	if pattern == "" {
		pattern = "*"
	}

	entries, err := co.Ledger.Entries(c, pattern, from, to)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, entries)
}

// @Summary		Get ledger entry
// @Tags			Ledger
// @Produce		json
// @Success		200	{object}	Response[models.LedgerEntry]
// @Failure		404	{object}	httpError
// @Param			ref	path		string	true	"External ID of the entry"
// @Router			/v1/ledger-entries/{ref} [get]
func (co Controller) GetLedgerEntry(c *gin.Context) {
	entry, err := co.Ledger.Entry(c, c.Param("ref"))
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, entry)
}

// @Summary		Import ledger entries
// @Description	Mirrors entries of the external ledger. Existing entries are updated, identified by their external ID.
// @Tags			Ledger
// @Accept			json
// @Produce		json
// @Success		201		{object}	Response[ImportResult]
// @Failure		400		{object}	httpError
// @Param			entries	body		[]LedgerEntryEditable	true	"Entries"
// @Router			/v1/ledger-entries [post]
func (co Controller) ImportLedgerEntries(c *gin.Context) {
	var editables []LedgerEntryEditable
	if err := httputil.BindData(c, &editables); err != nil {
		fail(c, err)
		return
	}

	entries := make([]models.LedgerEntry, 0, len(editables))
	for _, e := range editables {
		entries = append(entries, e.model())
	}

	n, err := co.Ledger.Import(c, entries)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusCreated, ImportResult{Imported: n})
}
