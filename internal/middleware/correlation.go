package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
)

const (
	HeaderCorrelationID = "X-Correlation-ID"
	correlationKey      = "correlation_id"
)

// Correlation reuses an incoming X-Correlation-ID or generates one, echoes
// it on the response and stores it on the context for logs and errors.
func Correlation() echo.MiddlewareFunc {
	return echoMw.RequestIDWithConfig(echoMw.RequestIDConfig{
		TargetHeader: HeaderCorrelationID,
		Generator:    uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			c.Set(correlationKey, id)
		},
	})
}

func CorrelationID(c echo.Context) string {
	if id, ok := c.Get(correlationKey).(string); ok {
		return id
	}
	return c.Response().Header().Get(HeaderCorrelationID)
}
