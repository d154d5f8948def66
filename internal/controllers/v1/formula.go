package v1

import (
	"errors"
	"net/http"

	"github.com/envelope-zero/analytics/internal/formula"
	"github.com/envelope-zero/analytics/internal/httputil"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// RegisterFormulaRoutes registers the routes for formulas with
// the RouterGroup that is passed.
func RegisterFormulaRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/validate", httputil.OptionsPost)
	r.POST("/validate", ValidateFormula)
	r.OPTIONS("/evaluate", httputil.OptionsPost)
	r.POST("/evaluate", EvaluateFormula)
}

type FormulaRequest struct {
	Formula  string                     `json:"formula" example:"amount * timesheet.hours / total_hours"`
	Bindings map[string]decimal.Decimal `json:"bindings"` // Only used for evaluation
}

type FormulaValidation struct {
	Valid     bool     `json:"valid" example:"false"`
	Error     string   `json:"error,omitempty" example:"unknown variable foo"`
	Position  *int     `json:"position,omitempty" example:"9"` // Byte offset of the error
	Variables []string `json:"variables,omitempty"`
}

type FormulaResult struct {
	Result decimal.Decimal `json:"result" example:"425"`
}

// @Summary		Validate formula
// @Description	Checks the syntax of a formula. Invalid formulas are not an error of the request.
// @Tags			Formulas
// @Accept			json
// @Produce		json
// @Success		200		{object}	Response[FormulaValidation]
// @Failure		400		{object}	httpError
// @Param			formula	body		FormulaRequest	true	"Formula"
// @Router			/v1/formulas/validate [post]
func ValidateFormula(c *gin.Context) {
	var request FormulaRequest
	if err := httputil.BindData(c, &request); err != nil {
		fail(c, err)
		return
	}

	variables, err := formula.Variables(request.Formula)
	if err != nil {
		validation := FormulaValidation{Error: err.Error()}

		var syntaxErr *formula.SyntaxError
		if errors.As(err, &syntaxErr) {
			validation.Position = &syntaxErr.Position
		}

		respond(c, http.StatusOK, validation)
		return
	}

	respond(c, http.StatusOK, FormulaValidation{Valid: true, Variables: variables})
}

// @Summary		Evaluate formula
// @Description	Evaluates a formula with the given variable bindings.
// @Tags			Formulas
// @Accept			json
// @Produce		json
// @Success		200		{object}	Response[FormulaResult]
// @Failure		400		{object}	httpError
// @Failure		422		{object}	httpError
// @Param			formula	body		FormulaRequest	true	"Formula and bindings"
// @Router			/v1/formulas/evaluate [post]
func EvaluateFormula(c *gin.Context) {
	var request FormulaRequest
	if err := httputil.BindData(c, &request); err != nil {
		fail(c, err)
		return
	}

	result, err := formula.Evaluate(request.Formula, request.Bindings)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, FormulaResult{Result: result})
}
