package utils

import (
	"github.com/gin-gonic/gin"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
		Data:    nil,
	})
}

// RespondErrorWith adds extra top-level fields (e.g. "shortages") to an error body.
func RespondErrorWith(c *gin.Context, code int, err error, extra gin.H) {
	body := gin.H{
		"status":  false,
		"message": err.Error(),
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(code, body)
}
