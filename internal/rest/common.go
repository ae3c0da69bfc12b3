package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type ResponseError struct {
	Message string `json:"message"`
}

// currentUserID pulls the authenticated user id set by the auth middleware.
func currentUserID(c echo.Context) (uint, bool) {
	uid, ok := c.Get("user_id").(uint)
	return uid, ok
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
}
