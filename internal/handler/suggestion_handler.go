package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/performpulse/internal/domain"
	"github.com/locvowork/performpulse/internal/service"
	"github.com/locvowork/performpulse/internal/service/serviceutils"
)

type SuggestionHandler struct {
	svc *service.SuggestionService
}

func NewSuggestionHandler(svc *service.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{svc: svc}
}

func (h *SuggestionHandler) SuggestHandler(c echo.Context) error {
	var in domain.SuggestionInput
	if err := c.Bind(&in); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	out, err := h.svc.Suggest(c.Request().Context(), in)
	if err != nil {
		return respondError(c, "Failed to generate suggestions", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Suggestions generated", out)
}

func (h *SuggestionHandler) SuggestForEmployeeHandler(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid employee ID", err)
	}

	out, err := h.svc.SuggestForEmployee(c.Request().Context(), id)
	if err != nil {
		return respondError(c, "Failed to generate suggestions", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Suggestions generated", out)
}
