package serviceutils

import (
	"github.com/labstack/echo/v4"
	"github.com/locvowork/tablexcel/internal/logger"
)

// APIResponse is the JSON envelope of every API reply.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func ResponseSuccess(c echo.Context, status int, msg string, data interface{}) error {
	return c.JSON(status, APIResponse{
		Success: true,
		Data:    data,
		Message: msg,
	})
}

// ResponseError logs err and replies with msg and the error text.
func ResponseError(c echo.Context, status int, msg string, err error) error {
	resp := APIResponse{Success: false, Message: msg}
	if err != nil {
		resp.Error = err.Error()
		logger.ErrorLog(c.Request().Context(), msg, err)
	}
	return c.JSON(status, resp)
}
