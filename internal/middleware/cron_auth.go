package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// CronAuth guards scheduler-only routes with a shared bearer secret. An
// empty secret rejects every call.
func CronAuth(secret string) echo.MiddlewareFunc {
	expected := []byte("Bearer " + secret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			got := []byte(c.Request().Header.Get(echo.HeaderAuthorization))
			if secret == "" || subtle.ConstantTimeCompare(got, expected) != 1 {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized cron call")
			}
			return next(c)
		}
	}
}
