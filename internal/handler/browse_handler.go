package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/performpulse/internal/service"
	"github.com/locvowork/performpulse/internal/service/serviceutils"
)

var errUnknownSession = errors.New("unknown or expired browse session")

type BrowseHandler struct {
	sessions *service.BrowseSessions
}

func NewBrowseHandler(sessions *service.BrowseSessions) *BrowseHandler {
	return &BrowseHandler{sessions: sessions}
}

func (h *BrowseHandler) CreateHandler(c echo.Context) error {
	var q service.BrowseQuery
	if err := c.Bind(&q); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	// the session outlives a failed first page; its id lets the client retry
	id, ctrl, err := h.sessions.Create(c.Request().Context(), q)
	if err != nil {
		return respondErrorWithData(c, "Failed to fetch first page", err,
			BrowseResponse{ID: id, BrowseSnapshot: ctrl.Snapshot()})
	}
	return serviceutils.ResponseSuccess(c, http.StatusCreated, "Browse session created", BrowseResponse{ID: id, BrowseSnapshot: ctrl.Snapshot()})
}

func (h *BrowseHandler) GetHandler(c echo.Context) error {
	id := c.Param("id")
	ctrl, ok := h.sessions.Get(id)
	if !ok {
		return serviceutils.ResponseError(c, http.StatusNotFound, "Browse session not found", errUnknownSession)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Browse session retrieved", BrowseResponse{ID: id, BrowseSnapshot: ctrl.Snapshot()})
}

// QueryHandler replaces search term and department at once and fetches page 0.
func (h *BrowseHandler) QueryHandler(c echo.Context) error {
	id := c.Param("id")
	ctrl, ok := h.sessions.Get(id)
	if !ok {
		return serviceutils.ResponseError(c, http.StatusNotFound, "Browse session not found", errUnknownSession)
	}

	var q service.BrowseQuery
	if err := c.Bind(&q); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	if err := ctrl.SetQuery(c.Request().Context(), q); err != nil {
		return respondError(c, "Failed to fetch first page", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Query applied", BrowseResponse{ID: id, BrowseSnapshot: ctrl.Snapshot()})
}

// SearchHandler schedules a debounced search and answers before it runs.
func (h *BrowseHandler) SearchHandler(c echo.Context) error {
	id := c.Param("id")
	ctrl, ok := h.sessions.Get(id)
	if !ok {
		return serviceutils.ResponseError(c, http.StatusNotFound, "Browse session not found", errUnknownSession)
	}

	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	ctrl.SearchDebounced(c.Request().Context(), req.Search)
	return serviceutils.ResponseSuccess(c, http.StatusAccepted, "Search scheduled", nil)
}

func (h *BrowseHandler) MoreHandler(c echo.Context) error {
	id := c.Param("id")
	ctrl, ok := h.sessions.Get(id)
	if !ok {
		return serviceutils.ResponseError(c, http.StatusNotFound, "Browse session not found", errUnknownSession)
	}

	loaded, err := ctrl.LoadMore(c.Request().Context())
	if err != nil {
		return respondError(c, "Failed to load more employees", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Load more handled", LoadMoreResponse{
		Loaded:         loaded,
		BrowseResponse: BrowseResponse{ID: id, BrowseSnapshot: ctrl.Snapshot()},
	})
}

func (h *BrowseHandler) DeleteHandler(c echo.Context) error {
	if !h.sessions.Delete(c.Param("id")) {
		return serviceutils.ResponseError(c, http.StatusNotFound, "Browse session not found", errUnknownSession)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Browse session closed", nil)
}
