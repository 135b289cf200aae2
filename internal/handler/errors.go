package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/performpulse/internal/domain"
	"github.com/locvowork/performpulse/internal/logger"
	"github.com/locvowork/performpulse/internal/service/serviceutils"
)

// errorStatus maps domain errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsValidation(err):
		return http.StatusUnprocessableEntity
	case domain.IsTransport(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c echo.Context, message string, err error) error {
	return respondErrorWithData(c, message, err, nil)
}

func respondErrorWithData(c echo.Context, message string, err error, data interface{}) error {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorLog(c.Request().Context(), message, err)
	}
	return serviceutils.ResponseErrorWithData(c, status, message, err, data)
}
