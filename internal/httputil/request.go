package httputil

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// BindData binds the JSON body of the request to data.
func BindData(c *gin.Context, data any) error {
	if err := c.ShouldBindJSON(data); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrRequestBodyEmpty
		}

		var jsonUnmarshalTypeError *json.UnmarshalTypeError
		if errors.As(err, &jsonUnmarshalTypeError) {
			return errors.Join(ErrInvalidBody, err)
		}

		log.Error().Str("request-id", requestid.Get(c)).Msgf("%T: %v", err, err.Error())
		return ErrInvalidBody
	}

	return nil
}

// UUIDFromString parses a resource ID.
//
// An empty string is uuid.Nil, which means "not set" for query parameters.
func UUIDFromString(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, nil
	}

	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, ErrInvalidUUID
	}

	return u, nil
}

// ParamID parses the "id" path parameter. A missing ID is invalid.
func ParamID(c *gin.Context) (uuid.UUID, error) {
	id, err := UUIDFromString(c.Param("id"))
	if err != nil {
		return uuid.Nil, err
	}

	if id == uuid.Nil {
		return uuid.Nil, ErrInvalidUUID
	}

	return id, nil
}
