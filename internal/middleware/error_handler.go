package middleware

import (
	"net/http"

	"nurseNav/pkg/logger"

	jsonres "nurseNav/pkg/response"

	"github.com/labstack/echo/v4"
)

// ErrorHandler is the central echo HTTP error handler. It keeps error
// payloads in the same envelope the middleware uses so clients never
// see echo's default error shape.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal server error"

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		}
	}

	if code >= http.StatusInternalServerError {
		logger.Error("Unhandled request error", "error", err, "path", c.Path())
	}

	if err := c.JSON(code, jsonres.Error(http.StatusText(code), message, nil)); err != nil {
		logger.Error("Failed to write error response", err)
	}
}
