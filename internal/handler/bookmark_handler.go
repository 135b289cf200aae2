package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/performpulse/internal/domain"
	"github.com/locvowork/performpulse/internal/service"
	"github.com/locvowork/performpulse/internal/service/serviceutils"
	"github.com/locvowork/performpulse/pkg/simpleexcel"
)

type BookmarkHandler struct {
	store     *service.BookmarkStore
	directory domain.Directory
}

func NewBookmarkHandler(store *service.BookmarkStore, directory domain.Directory) *BookmarkHandler {
	return &BookmarkHandler{store: store, directory: directory}
}

// ListHandler returns every bookmark, or the fuzzy matches of ?q=.
func (h *BookmarkHandler) ListHandler(c echo.Context) error {
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Bookmarks retrieved successfully", h.store.Search(c.QueryParam("q")))
}

func (h *BookmarkHandler) ExportHandler(c echo.Context) error {
	data, err := service.ExportBookmarks(h.store)
	if err != nil {
		return respondError(c, "Failed to export bookmarks", err)
	}

	filename := fmt.Sprintf("bookmarks-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK, simpleexcel.ContentType, data)
}

func (h *BookmarkHandler) StatusHandler(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid employee ID", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Bookmark status retrieved", BookmarkStatus{
		ID:         id,
		Bookmarked: h.store.IsBookmarked(id),
	})
}

// AddHandler bookmarks a snapshot of the employee as the directory has it now.
func (h *BookmarkHandler) AddHandler(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid employee ID", err)
	}

	if h.store.IsBookmarked(id) {
		return serviceutils.ResponseSuccess(c, http.StatusOK, "Employee already bookmarked", BookmarkStatus{ID: id, Bookmarked: true})
	}

	emp, err := h.directory.FetchEmployeeByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, "Failed to get employee", err)
	}

	status := http.StatusOK
	if h.store.Add(c.Request().Context(), *emp) {
		status = http.StatusCreated
	}
	return serviceutils.ResponseSuccess(c, status, "Employee bookmarked", BookmarkStatus{ID: id, Bookmarked: true})
}

func (h *BookmarkHandler) RemoveHandler(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid employee ID", err)
	}

	h.store.Remove(c.Request().Context(), id)
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Bookmark removed", BookmarkStatus{ID: id, Bookmarked: false})
}
