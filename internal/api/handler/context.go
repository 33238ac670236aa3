package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxUserID returns the user id injected by the OptionalAuth middleware, or
// "" when the request carried no token.
func ctxUserID(c echo.Context) string {
	id, _ := c.Get("user_id").(string)
	return id
}

// bindAndValidate decodes the request body into req and runs the registered
// validator over it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(req)
}
