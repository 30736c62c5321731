// -----------------------------------------------------------------------
// Last Modified: Monday, 19th October 2026 10:12:40 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

const documentsPrefix = "/api/documents/"

// DocumentHandler serves document level operations: page listing and
// plain text import and export
type DocumentHandler struct {
	pageService   interfaces.PageService
	importService interfaces.ImportService
	exportService interfaces.ExportService
	logger        arbor.ILogger
}

func NewDocumentHandler(
	pageService interfaces.PageService,
	importService interfaces.ImportService,
	exportService interfaces.ExportService,
	logger arbor.ILogger,
) *DocumentHandler {
	return &DocumentHandler{
		pageService:   pageService,
		importService: importService,
		exportService: exportService,
		logger:        logger,
	}
}

func documentID(r *http.Request) string {
	segments := PathSegments(r.URL.Path, documentsPrefix)
	if len(segments) == 0 {
		return ""
	}
	return segments[0]
}

// ListPagesHandler handles GET /api/documents/{id}/pages
func (h *DocumentHandler) ListPagesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	pages, err := h.pageService.ListPages(r.Context(), documentID(r))
	if err != nil {
		WriteServiceError(w, h.logger, err, "list pages")
		return
	}
	if pages == nil {
		pages = []*models.Page{}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"document_id": documentID(r),
		"pages":       pages,
	})
}

// ImportHandler handles POST /api/documents/{id}/import. The body is either
// a JSON TextImportRequest or, with a text/plain content type, the raw text;
// skip_page_identifier may then be given as a query parameter.
func (h *DocumentHandler) ImportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.TextImportRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "text/plain") {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Failed to read request body")
			return
		}
		req.Content = string(body)
		if r.URL.Query().Get("skip_page_identifier") != "" {
			skip := QueryBool(r, "skip_page_identifier", true)
			req.SkipPageIdentifier = &skip
		}
	} else if err := DecodeJSON(r, &req); err != nil {
		WriteServiceError(w, h.logger, err, "import text")
		return
	}

	result, err := h.importService.ImportText(r.Context(), documentID(r), &req)
	if err != nil {
		WriteServiceError(w, h.logger, err, "import text")
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// ExportHandler handles POST /api/documents/{id}/export. An empty body uses
// the default export options; fields given in the body override them.
func (h *DocumentHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	opts := models.DefaultExportOptions()
	if err := DecodeOptionalJSON(r, &opts); err != nil {
		WriteServiceError(w, h.logger, err, "export text")
		return
	}
	if opts.Type == "" {
		opts.Type = models.TranscriptionManual
	}

	id := documentID(r)
	var buf bytes.Buffer
	if _, err := h.exportService.ExportText(r.Context(), &buf, id, opts); err != nil {
		WriteServiceError(w, h.logger, err, "export text")
		return
	}

	charset := "utf-8"
	if opts.Encoding == models.EncodingUTF16 {
		charset = "utf-16"
	}
	w.Header().Set("Content-Type", "text/plain; charset="+charset)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+"_"+string(opts.Type)+".txt"))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Warn().Err(err).Str("document_id", id).Msg("Failed to write export response")
	}
}
