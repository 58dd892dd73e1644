package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/eventsdhaka/discovery/internal/dto"
)

// ErrorHandler renders every error as {"error", "correlation_id"}. Errors
// that are not *echo.HTTPError become 500s and their text stays in the log.
func ErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := http.StatusText(code)

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(code)
			}
		}

		correlationID := CorrelationID(c)
		if code >= http.StatusInternalServerError {
			logged := err
			if he != nil && he.Internal != nil {
				logged = he.Internal
			}
			log.Error().
				Err(logged).
				Str("correlation_id", correlationID).
				Str("method", c.Request().Method).
				Str("uri", c.Request().RequestURI).
				Int("status", code).
				Msg("request failed")
		}

		resp := dto.ErrorResponse{Error: msg, CorrelationID: correlationID}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, resp)
	}
}
