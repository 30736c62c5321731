package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

// TranscriptionHandler serves transcription edits and version history.
// Paths have the form /api/pages/{id}/transcriptions/{segment}[/{segment}].
type TranscriptionHandler struct {
	transcriptionService interfaces.TranscriptionService
	logger               arbor.ILogger
}

// NewTranscriptionHandler creates a new transcription handler
func NewTranscriptionHandler(transcriptionService interfaces.TranscriptionService, logger arbor.ILogger) *TranscriptionHandler {
	return &TranscriptionHandler{
		transcriptionService: transcriptionService,
		logger:               logger,
	}
}

// segment returns the n-th path segment after /api/pages/, or ""
func segment(r *http.Request, n int) string {
	segments := PathSegments(r.URL.Path, pagesPrefix)
	if n >= len(segments) {
		return ""
	}
	return segments[n]
}

// GetTranscriptionHandler handles GET /api/pages/{id}/transcriptions/{type}
func (h *TranscriptionHandler) GetTranscriptionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	view, err := h.transcriptionService.Get(r.Context(), segment(r, 0), models.TranscriptionType(segment(r, 2)))
	if err != nil {
		WriteServiceError(w, h.logger, err, "get transcription")
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

// UpdateManualHandler handles PUT /api/pages/{id}/transcriptions/manual
func (h *TranscriptionHandler) UpdateManualHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}

	var req models.TranscriptionUpdate
	if err := DecodeJSON(r, &req); err != nil {
		WriteServiceError(w, h.logger, err, "update transcription")
		return
	}

	view, err := h.transcriptionService.UpdateManual(r.Context(), segment(r, 0), &req)
	if err != nil {
		WriteServiceError(w, h.logger, err, "update transcription")
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

// SaveModelOutputHandler handles PUT /api/pages/{id}/transcriptions/model
func (h *TranscriptionHandler) SaveModelOutputHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}

	var req models.ModelOutput
	if err := DecodeJSON(r, &req); err != nil {
		WriteServiceError(w, h.logger, err, "save model output")
		return
	}

	view, err := h.transcriptionService.SaveModelOutput(r.Context(), segment(r, 0), &req)
	if err != nil {
		WriteServiceError(w, h.logger, err, "save model output")
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

// VersionsHandler handles GET /api/pages/{id}/transcriptions/{type}/versions
// with optional offset, limit and include_snapshot query parameters
func (h *TranscriptionHandler) VersionsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	offset, limit := GetPaginationParams(r)
	history, err := h.transcriptionService.History(
		r.Context(),
		segment(r, 0),
		models.TranscriptionType(segment(r, 2)),
		offset,
		limit,
		QueryBool(r, "include_snapshot", false),
	)
	if err != nil {
		WriteServiceError(w, h.logger, err, "list versions")
		return
	}
	WriteJSON(w, http.StatusOK, history)
}

// RestoreHandler handles POST /api/pages/{id}/transcriptions/restore/{versionID}
func (h *TranscriptionHandler) RestoreHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	versionID, err := strconv.ParseUint(segment(r, 3), 10, 64)
	if err != nil || versionID == 0 {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid version ID %q", segment(r, 3)))
		return
	}

	view, err := h.transcriptionService.RestoreVersion(r.Context(), segment(r, 0), versionID)
	if err != nil {
		WriteServiceError(w, h.logger, err, "restore version")
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

// CopyToManualHandler handles POST /api/pages/{id}/transcriptions/copy-to-manual
func (h *TranscriptionHandler) CopyToManualHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	view, err := h.transcriptionService.CopyFromModel(r.Context(), segment(r, 0))
	if err != nil {
		WriteServiceError(w, h.logger, err, "copy model transcription")
		return
	}
	WriteJSON(w, http.StatusOK, view)
}
