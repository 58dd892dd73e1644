package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eventsdhaka/discovery/internal/dto"
	"github.com/eventsdhaka/discovery/internal/middleware"
	"github.com/eventsdhaka/discovery/internal/service"
)

type SaveHandler struct {
	svc service.SaveService
}

func NewSaveHandler(svc service.SaveService) *SaveHandler {
	return &SaveHandler{svc: svc}
}

func (h *SaveHandler) RegisterRoutes(e *echo.Group, l Limiter) {
	guard := append(limit(l, "events:save", 60), middleware.RequireAuth())
	e.POST("/events/:id/save", h.Save, guard...)
	e.DELETE("/events/:id/save", h.Unsave, guard...)
	e.GET("/users/me/saves", h.List, append(limit(l, "saves:list", 120), middleware.RequireAuth())...)
}

func (h *SaveHandler) Save(c echo.Context) error {
	id, err := uuidParam(c, "id", "event")
	if err != nil {
		return err
	}
	_, rem, err := h.svc.Save(c.Request().Context(), middleware.IdentityFrom(c), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.SaveResponse{Success: true, Saved: true, Reminder: dto.ToReminderResponse(rem)})
}

func (h *SaveHandler) Unsave(c echo.Context) error {
	id, err := uuidParam(c, "id", "event")
	if err != nil {
		return err
	}
	if err := h.svc.Unsave(c.Request().Context(), middleware.IdentityFrom(c), id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.SaveResponse{Success: true, Saved: false})
}

func (h *SaveHandler) List(c echo.Context) error {
	saves, err := h.svc.ListSaves(c.Request().Context(), middleware.IdentityFrom(c))
	if err != nil {
		return httpError(err)
	}
	resp := make([]dto.SavedEventResponse, len(saves))
	for i := range saves {
		resp[i] = dto.ToSavedEventResponse(&saves[i])
	}
	return c.JSON(http.StatusOK, resp)
}
