package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oceanview/backend/pkg/response"
)

// RespOK documents the success envelope for swagger.
type RespOK struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func respondErr(c *gin.Context, code response.APIResponseCode, msg string) {
	c.JSON(code.HTTPStatus(), response.ErrorT(code, msg))
}

func respondOK[T any](c *gin.Context, data T) {
	c.JSON(response.APIResponseCodeOK.HTTPStatus(), response.OKT(data))
}

// pagination reads from/size query parameters with sane bounds.
func pagination(c *gin.Context) (from, size int) {
	from, _ = strconv.Atoi(c.DefaultQuery("from", "0"))
	size, _ = strconv.Atoi(c.DefaultQuery("size", "10"))
	if from < 0 {
		from = 0
	}
	if size <= 0 || size > 100 {
		size = 10
	}
	return from, size
}
