package v1

import (
	"time"

	"github.com/envelope-zero/analytics/internal/httputil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Response wraps the data of every successful response.
type Response[T any] struct {
	Data T `json:"data"`
}

func respond[T any](c *gin.Context, status int, data T) {
	c.JSON(status, Response[T]{Data: data})
}

// QueryWindow is the [from, to) window of list and report endpoints.
type QueryWindow struct {
	From string `form:"from" example:"2024-01-01"` // Inclusive
	To   string `form:"to" example:"2024-04-01"`   // Exclusive
}

// times parses the window. Unset bounds are zero.
func (q QueryWindow) times() (from, to time.Time, err error) {
	if q.From != "" {
		from, err = time.Parse(time.DateOnly, q.From)
		if err != nil {
			return time.Time{}, time.Time{}, errQueryTime
		}
	}

	if q.To != "" {
		to, err = time.Parse(time.DateOnly, q.To)
		if err != nil {
			return time.Time{}, time.Time{}, errQueryTime
		}
	}

	return from, to, nil
}

// queryUUID parses an optional UUID query parameter.
func queryUUID(c *gin.Context, name string) (uuid.UUID, error) {
	return httputil.UUIDFromString(c.Query(name))
}
