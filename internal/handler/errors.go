package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/eventsdhaka/discovery/internal/filter"
	"github.com/eventsdhaka/discovery/internal/reminder"
	"github.com/eventsdhaka/discovery/internal/service"
	"github.com/eventsdhaka/discovery/pkg/validator"
)

const organizerProfileMessage = "Organizer profile not found. Create organizer profile first."

// Limiter builds per-group rate limit middleware. A nil Limiter disables limits.
type Limiter interface {
	Limit(group string, max int) echo.MiddlewareFunc
}

func limit(l Limiter, group string, max int) []echo.MiddlewareFunc {
	if l == nil {
		return nil
	}
	return []echo.MiddlewareFunc{l.Limit(group, max)}
}

// httpError maps service errors onto status codes.
func httpError(err error) error {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, service.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
	case errors.Is(err, service.ErrOrganizerProfileMissing):
		return echo.NewHTTPError(http.StatusBadRequest, organizerProfileMessage)
	case errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrReportNotFound),
		errors.Is(err, service.ErrReminderNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrEventLocked),
		errors.Is(err, service.ErrNotSaveable),
		errors.Is(err, service.ErrInvalidReportTransition),
		errors.Is(err, service.ErrInvalidReminderOption),
		errors.Is(err, service.ErrInvalidTimezone):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrStatusConflict),
		errors.Is(err, service.ErrReportConflict),
		errors.Is(err, reminder.ErrDispatchRunning):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validator.Validate(c.Request().Context(), req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func uuidParam(c echo.Context, name, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+what+" id")
	}
	return id, nil
}

// pageParams applies the browse paging defaults and caps to page and limit.
func pageParams(c echo.Context) (int, int) {
	f := filter.Normalize(c.QueryParams(), time.Now())
	return f.Page, f.Limit
}

func optionalBool(v string) *bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}

// Dispatcher runs one reminder dispatch pass.
type Dispatcher interface {
	Run(ctx context.Context) (reminder.Summary, error)
}
