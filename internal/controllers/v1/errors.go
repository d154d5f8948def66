package v1

import (
	"errors"
	"net/http"

	"github.com/envelope-zero/analytics/internal/formula"
	"github.com/envelope-zero/analytics/internal/httputil"
	"github.com/envelope-zero/analytics/internal/models"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type httpError struct {
	Error string `json:"error" example:"the specified resource ID is not a valid UUID"`
}

var errQueryTime = errors.New("the from and to query parameters must be dates formatted as YYYY-MM-DD")

// status returns the appropriate HTTP status for an error
func status(err error) int {
	switch {
	case errors.Is(err, models.ErrGeneral):
		return http.StatusInternalServerError
	case errors.Is(err, models.ErrResourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrPrecondition):
		return http.StatusConflict
	case errors.Is(err, formula.ErrEvaluation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, formula.ErrSyntax),
		errors.Is(err, httputil.ErrInvalidBody),
		errors.Is(err, httputil.ErrRequestBodyEmpty),
		errors.Is(err, httputil.ErrInvalidUUID),
		errors.Is(err, httputil.ErrInvalidQuery),
		errors.Is(err, errQueryTime):
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

// fail writes the error response for err.
//
// Errors the API does not know about are logged and replaced with a general
// message.
func fail(c *gin.Context, err error) {
	s := status(err)
	if s == http.StatusInternalServerError && !errors.Is(err, models.ErrGeneral) {
		log.Error().Str("request-id", requestid.Get(c)).Msgf("%T: %v", err, err.Error())
		err = models.ErrGeneral
	}

	c.JSON(s, httpError{Error: err.Error()})
}
