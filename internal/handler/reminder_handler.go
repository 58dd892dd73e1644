package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/eventsdhaka/discovery/internal/dto"
	"github.com/eventsdhaka/discovery/internal/middleware"
	"github.com/eventsdhaka/discovery/internal/service"
)

type ReminderHandler struct {
	svc        service.ReminderService
	dispatcher Dispatcher
	log        zerolog.Logger
}

func NewReminderHandler(svc service.ReminderService, dispatcher Dispatcher, log zerolog.Logger) *ReminderHandler {
	return &ReminderHandler{svc: svc, dispatcher: dispatcher, log: log}
}

// RegisterRoutes mounts the subscriber routes and the dispatch trigger,
// which is guarded by cronSecret instead of a user identity.
func (h *ReminderHandler) RegisterRoutes(g *echo.Group, l Limiter, cronSecret string) {
	g.POST("/dispatch", h.Dispatch, middleware.CronAuth(cronSecret))
	g.POST("", h.Upsert, append(limit(l, "reminders:upsert", 60), middleware.RequireAuth())...)
	g.DELETE("/:id", h.Delete, append(limit(l, "reminders:delete", 60), middleware.RequireAuth())...)
}

func (h *ReminderHandler) Upsert(c echo.Context) error {
	var req dto.ReminderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	rem, err := h.svc.Upsert(c.Request().Context(), middleware.IdentityFrom(c), req.ToService())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "reminder": dto.ToReminderResponse(rem)})
}

func (h *ReminderHandler) Delete(c echo.Context) error {
	id, err := uuidParam(c, "id", "reminder")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), middleware.IdentityFrom(c), id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (h *ReminderHandler) Dispatch(c echo.Context) error {
	summary, err := h.dispatcher.Run(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	h.log.Info().
		Str("correlation_id", middleware.CorrelationID(c)).
		Int("sent", summary.SentCount).
		Int("failed", summary.Failed).
		Int("scanned", summary.Scanned).
		Msg("reminder dispatch finished")
	return c.JSON(http.StatusOK, dto.DispatchResponse{Success: true, Summary: summary})
}
