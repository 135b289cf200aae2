package serviceutils

import (
	"github.com/labstack/echo/v4"
)

// Response is the JSON envelope of every API answer.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ResponseSuccess writes a successful envelope.
func ResponseSuccess(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ResponseError writes a failed envelope. err may be nil.
func ResponseError(c echo.Context, status int, message string, err error) error {
	return ResponseErrorWithData(c, status, message, err, nil)
}

// ResponseErrorWithData writes a failed envelope that still carries data the
// client needs to recover.
func ResponseErrorWithData(c echo.Context, status int, message string, err error, data interface{}) error {
	resp := Response{
		Success: false,
		Message: message,
		Data:    data,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return c.JSON(status, resp)
}
