package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/performpulse/internal/service"
	"github.com/locvowork/performpulse/internal/service/serviceutils"
)

type DashboardHandler struct {
	svc *service.DashboardService
}

func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

func (h *DashboardHandler) SummaryHandler(c echo.Context) error {
	summary, err := h.svc.Summary(c.Request().Context())
	if err != nil {
		return respondError(c, "Failed to build dashboard", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Dashboard retrieved successfully", summary)
}
