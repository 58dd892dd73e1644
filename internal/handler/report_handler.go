package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eventsdhaka/discovery/internal/dto"
	"github.com/eventsdhaka/discovery/internal/middleware"
	"github.com/eventsdhaka/discovery/internal/models"
	"github.com/eventsdhaka/discovery/internal/service"
)

type ReportHandler struct {
	svc service.ReportService
}

func NewReportHandler(svc service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

func (h *ReportHandler) RegisterRoutes(api *echo.Group, l Limiter) {
	admin := append(limit(l, "reports:admin", 60), middleware.RequireRole(models.RoleAdmin))
	api.POST("/reports/:id/resolve", h.Resolve, admin...)
	api.GET("/admin/reports", h.List, admin...)
}

func (h *ReportHandler) Resolve(c echo.Context) error {
	id, err := uuidParam(c, "id", "report")
	if err != nil {
		return err
	}
	var req dto.ResolveReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	report, err := h.svc.Resolve(c.Request().Context(), middleware.IdentityFrom(c), id, req.Status)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToReportResponse(report))
}

func (h *ReportHandler) List(c echo.Context) error {
	reports, err := h.svc.List(c.Request().Context(), middleware.IdentityFrom(c), c.QueryParam("status"))
	if err != nil {
		return httpError(err)
	}
	resp := make([]dto.ReportResponse, len(reports))
	for i := range reports {
		resp[i] = dto.ToReportResponse(&reports[i])
	}
	return c.JSON(http.StatusOK, resp)
}
