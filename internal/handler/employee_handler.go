package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/performpulse/internal/domain"
	"github.com/locvowork/performpulse/internal/service"
	"github.com/locvowork/performpulse/internal/service/serviceutils"
)

const maxPageSize = 100

type EmployeeHandler struct {
	directory   domain.Directory
	departments *service.DepartmentIndex
	pageSize    int
}

func NewEmployeeHandler(directory domain.Directory, departments *service.DepartmentIndex, pageSize int) *EmployeeHandler {
	return &EmployeeHandler{directory: directory, departments: departments, pageSize: pageSize}
}

func (h *EmployeeHandler) ListHandler(c echo.Context) error {
	limit, err := intParam(c, "limit", h.pageSize)
	if err != nil || limit < 1 || limit > maxPageSize {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid limit", err)
	}
	skip, err := intParam(c, "skip", 0)
	if err != nil || skip < 0 {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid skip", err)
	}

	page, err := h.directory.FetchEmployees(c.Request().Context(), domain.EmployeeQuery{
		Limit:      limit,
		Skip:       skip,
		Search:     strings.TrimSpace(c.QueryParam("q")),
		Department: strings.TrimSpace(c.QueryParam("department")),
	})
	if err != nil {
		return respondError(c, "Failed to fetch employees", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employees retrieved successfully", page)
}

func (h *EmployeeHandler) GetHandler(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid employee ID", err)
	}

	emp, err := h.directory.FetchEmployeeByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, "Failed to get employee", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employee retrieved successfully", emp)
}

func (h *EmployeeHandler) DepartmentsHandler(c echo.Context) error {
	names := h.departments.ListDepartments(c.Request().Context())
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Departments retrieved successfully", names)
}

func intParam(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}
