package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/eventsdhaka/discovery/internal/dto"
	"github.com/eventsdhaka/discovery/internal/middleware"
	"github.com/eventsdhaka/discovery/internal/models"
	"github.com/eventsdhaka/discovery/internal/repository"
	"github.com/eventsdhaka/discovery/internal/service"
)

// SubmissionHandler serves the organizer and admin event entry routes.
type SubmissionHandler struct {
	svc service.EventService
}

func NewSubmissionHandler(svc service.EventService) *SubmissionHandler {
	return &SubmissionHandler{svc: svc}
}

func (h *SubmissionHandler) RegisterRoutes(api *echo.Group, l Limiter) {
	organizer := append(limit(l, "organizer:events", 40), middleware.RequireRole(models.RoleOrganizer, models.RoleAdmin))
	api.POST("/organizer/events", h.Submit, organizer...)
	api.GET("/organizer/events", h.ListOwn, organizer...)
	api.PATCH("/organizer/events/:id", h.UpdateOwn, organizer...)
	api.DELETE("/organizer/events/:id", h.DeleteOwn, organizer...)

	admin := append(limit(l, "admin:events", 60), middleware.RequireRole(models.RoleAdmin))
	api.POST("/admin/events", h.CreateDraft, admin...)
	api.GET("/admin/events", h.AdminList, admin...)
	api.POST("/admin/digest", h.WeekendDigest, admin...)
}

func (h *SubmissionHandler) Submit(c echo.Context) error {
	var req dto.EventSubmissionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	created, err := h.svc.SubmitAsOrganizer(c.Request().Context(), middleware.IdentityFrom(c), req.ToSubmission())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToSubmissionResponse(created))
}

func (h *SubmissionHandler) CreateDraft(c echo.Context) error {
	var req dto.EventSubmissionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	created, err := h.svc.CreateDraft(c.Request().Context(), middleware.IdentityFrom(c), req.ToSubmission())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToSubmissionResponse(created))
}

func (h *SubmissionHandler) ListOwn(c echo.Context) error {
	page, size := pageParams(c)
	events, err := h.svc.ListOwn(c.Request().Context(), middleware.IdentityFrom(c), page, size)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToEventPage(events))
}

func (h *SubmissionHandler) AdminList(c echo.Context) error {
	f := repository.AdminFilter{
		Verified:       optionalBool(c.QueryParam("verified")),
		IncludeDeleted: c.QueryParam("include_deleted") == "true",
	}
	if s := c.QueryParam("status"); s != "" {
		f.Status = models.EventStatus(s)
		if !f.Status.Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid status filter")
		}
	}
	if o := c.QueryParam("organizer"); o != "" {
		id, err := uuid.Parse(o)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid organizer id")
		}
		f.OrganizerID = &id
	}

	page, size := pageParams(c)
	events, err := h.svc.AdminList(c.Request().Context(), middleware.IdentityFrom(c), f, page, size)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToEventPage(events))
}

func (h *SubmissionHandler) UpdateOwn(c echo.Context) error {
	id, err := uuidParam(c, "id", "event")
	if err != nil {
		return err
	}
	var req dto.EventUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	event, err := h.svc.UpdateOwn(c.Request().Context(), middleware.IdentityFrom(c), id, req.ToEdit())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

func (h *SubmissionHandler) DeleteOwn(c echo.Context) error {
	id, err := uuidParam(c, "id", "event")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteOwn(c.Request().Context(), middleware.IdentityFrom(c), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *SubmissionHandler) WeekendDigest(c echo.Context) error {
	digest, err := h.svc.WeekendDigest(c.Request().Context(), middleware.IdentityFrom(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToDigestResponse(digest))
}
