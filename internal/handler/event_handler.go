package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eventsdhaka/discovery/internal/calendar"
	"github.com/eventsdhaka/discovery/internal/dto"
	"github.com/eventsdhaka/discovery/internal/filter"
	"github.com/eventsdhaka/discovery/internal/middleware"
	"github.com/eventsdhaka/discovery/internal/models"
	"github.com/eventsdhaka/discovery/internal/service"
)

type EventHandler struct {
	svc     service.EventService
	reports service.ReportService
	now     func() time.Time
}

func NewEventHandler(svc service.EventService, reports service.ReportService) *EventHandler {
	return &EventHandler{svc: svc, reports: reports, now: time.Now}
}

func (h *EventHandler) RegisterRoutes(g *echo.Group, l Limiter) {
	g.GET("", h.Browse, limit(l, "events:list", 120)...)
	g.POST("/validate", h.Validate, limit(l, "events:validate", 40)...)
	g.GET("/:id", h.Get, limit(l, "events:detail", 120)...)
	g.GET("/:id/calendar.ics", h.Calendar, limit(l, "events:calendar", 60)...)
	g.POST("/:id/click", h.Click, limit(l, "events:click", 120)...)
	g.POST("/:id/report", h.Report, limit(l, "events:report", 20)...)

	status := append(limit(l, "events:status", 40), middleware.RequireRole(models.RoleOrganizer, models.RoleAdmin))
	g.PATCH("/:id/status", h.ChangeStatus, status...)
	verify := append(limit(l, "events:verify", 40), middleware.RequireRole(models.RoleAdmin))
	g.PATCH("/:id/verify", h.SetVerified, verify...)
}

func (h *EventHandler) Browse(c echo.Context) error {
	f := filter.Normalize(c.QueryParams(), h.now())
	page, err := h.svc.Browse(c.Request().Context(), f)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToEventPage(page))
}

func (h *EventHandler) Get(c echo.Context) error {
	event, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

func (h *EventHandler) Calendar(c echo.Context) error {
	out, err := h.svc.ExportCalendar(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+out.Filename+`"`)
	return c.Blob(http.StatusOK, calendar.ContentType, out.Body)
}

func (h *EventHandler) ChangeStatus(c echo.Context) error {
	id, err := uuidParam(c, "id", "event")
	if err != nil {
		return err
	}
	var req dto.StatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	event, err := h.svc.ChangeStatus(c.Request().Context(), middleware.IdentityFrom(c), id, models.EventStatus(req.Status))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

func (h *EventHandler) SetVerified(c echo.Context) error {
	id, err := uuidParam(c, "id", "event")
	if err != nil {
		return err
	}
	var req dto.VerifyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	event, err := h.svc.SetVerified(c.Request().Context(), middleware.IdentityFrom(c), id, *req.Verified)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

func (h *EventHandler) Click(c echo.Context) error {
	id, err := uuidParam(c, "id", "event")
	if err != nil {
		return err
	}
	var req dto.ClickRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.svc.RecordClick(c.Request().Context(), middleware.IdentityFrom(c), id, req.Source); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, map[string]bool{"success": true})
}

func (h *EventHandler) Report(c echo.Context) error {
	id, err := uuidParam(c, "id", "event")
	if err != nil {
		return err
	}
	var req dto.CreateReportRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	report, err := h.reports.Create(c.Request().Context(), middleware.IdentityFrom(c), id, req.Reason, req.Description)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToReportResponse(report))
}

func (h *EventHandler) Validate(c echo.Context) error {
	var req dto.EventSubmissionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	report, err := h.svc.CheckQuality(c.Request().Context(), req.ToSubmission())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToQualityResponse(report))
}
