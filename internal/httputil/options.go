package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func OptionsGet(c *gin.Context) {
	c.Header("allow", "OPTIONS, GET")
	c.Status(http.StatusNoContent)
}

func OptionsPost(c *gin.Context) {
	c.Header("allow", "OPTIONS, POST")
	c.Status(http.StatusNoContent)
}

func OptionsGetPost(c *gin.Context) {
	c.Header("allow", "OPTIONS, GET, POST")
	c.Status(http.StatusNoContent)
}

func OptionsGetPut(c *gin.Context) {
	c.Header("allow", "OPTIONS, GET, PUT")
	c.Status(http.StatusNoContent)
}

func OptionsGetDelete(c *gin.Context) {
	c.Header("allow", "OPTIONS, GET, DELETE")
	c.Status(http.StatusNoContent)
}
