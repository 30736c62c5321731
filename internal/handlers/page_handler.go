package handlers

import (
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

const pagesPrefix = "/api/pages/"

// PageHandler serves pages, their detected lines and reading order
type PageHandler struct {
	pageService interfaces.PageService
	logger      arbor.ILogger
}

// NewPageHandler creates a new page handler
func NewPageHandler(pageService interfaces.PageService, logger arbor.ILogger) *PageHandler {
	return &PageHandler{
		pageService: pageService,
		logger:      logger,
	}
}

// pageID returns the {id} of /api/pages/{id}/...
func pageID(r *http.Request) string {
	segments := PathSegments(r.URL.Path, pagesPrefix)
	if len(segments) == 0 {
		return ""
	}
	return segments[0]
}

// CreatePageHandler handles POST /api/pages
func (h *PageHandler) CreatePageHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.CreatePageRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteServiceError(w, h.logger, err, "create page")
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.pageService.CreatePage(r.Context(), req.DocumentID, req.PageNumber)
	if err != nil {
		WriteServiceError(w, h.logger, err, "create page")
		return
	}
	WriteJSON(w, http.StatusCreated, page)
}

// GetPageHandler handles GET /api/pages/{id}
func (h *PageHandler) GetPageHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	page, err := h.pageService.GetPage(r.Context(), pageID(r))
	if err != nil {
		WriteServiceError(w, h.logger, err, "get page")
		return
	}
	WriteJSON(w, http.StatusOK, page)
}

// DeletePageHandler handles DELETE /api/pages/{id}
func (h *PageHandler) DeletePageHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	id := pageID(r)
	if err := h.pageService.DeletePage(r.Context(), id); err != nil {
		WriteServiceError(w, h.logger, err, "delete page")
		return
	}
	WriteSuccess(w, fmt.Sprintf("Page %s deleted", id))
}

// GetLinesHandler handles GET /api/pages/{id}/lines
func (h *PageHandler) GetLinesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	lineSet, err := h.pageService.GetLines(r.Context(), pageID(r))
	if err != nil {
		WriteServiceError(w, h.logger, err, "get lines")
		return
	}
	WriteJSON(w, http.StatusOK, lineSet)
}

// SetLinesHandler handles PUT /api/pages/{id}/lines
func (h *PageHandler) SetLinesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}

	var req models.DetectedLinesRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteServiceError(w, h.logger, err, "store lines")
		return
	}

	lineSet, err := h.pageService.SetDetectedLines(r.Context(), pageID(r), req.Lines)
	if err != nil {
		WriteServiceError(w, h.logger, err, "store lines")
		return
	}
	WriteJSON(w, http.StatusOK, lineSet)
}

// UpdateLineOrderHandler handles PUT /api/pages/{id}/line-order. A rejected
// manual order still answers 200 with applied=false and a warning.
func (h *PageHandler) UpdateLineOrderHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}

	var req models.LineOrderUpdate
	if err := DecodeJSON(r, &req); err != nil {
		WriteServiceError(w, h.logger, err, "update line order")
		return
	}

	result, err := h.pageService.UpdateLineOrder(r.Context(), pageID(r), &req)
	if err != nil {
		WriteServiceError(w, h.logger, err, "update line order")
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// ProgressHandler handles GET /api/pages/{id}/progress
func (h *PageHandler) ProgressHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	progress, err := h.pageService.Progress(r.Context(), pageID(r))
	if err != nil {
		WriteServiceError(w, h.logger, err, "get progress")
		return
	}
	WriteJSON(w, http.StatusOK, progress)
}
