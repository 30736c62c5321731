// -----------------------------------------------------------------------
// Last Modified: Monday, 19th October 2026 10:12:40 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package server

import (
	"net/http"

	"github.com/ternarybob/folio/internal/handlers"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Pages, lines and transcriptions
	mux.HandleFunc("/api/pages", s.app.PageHandler.CreatePageHandler) // POST - register a page
	mux.HandleFunc("/api/pages/", s.handlePageRoutes)                 // /{id}[/...]

	// API routes - Documents (page listing, text import/export)
	mux.HandleFunc("/api/documents/", s.handleDocumentRoutes)

	// API routes - Maintenance
	mux.HandleFunc("/api/maintenance/sweep", func(w http.ResponseWriter, r *http.Request) {
		RouteByMethod(w, r, MethodRouter{
			http.MethodGet:  s.app.SchedulerHandler.StatusHandler,
			http.MethodPost: s.app.SchedulerHandler.TriggerSweepHandler,
		})
	})

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handlePageRoutes routes /api/pages/{id} and its subpaths
func (s *Server) handlePageRoutes(w http.ResponseWriter, r *http.Request) {
	segments := handlers.PathSegments(r.URL.Path, "/api/pages/")
	ph := s.app.PageHandler
	th := s.app.TranscriptionHandler

	switch {
	case len(segments) == 1:
		// GET/DELETE /api/pages/{id}
		RouteResourceItem(w, r, ph.GetPageHandler, nil, ph.DeletePageHandler)
		return

	case len(segments) == 2:
		switch segments[1] {
		case "lines":
			RouteResourceItem(w, r, ph.GetLinesHandler, ph.SetLinesHandler, nil)
			return
		case "line-order":
			ph.UpdateLineOrderHandler(w, r)
			return
		case "progress":
			ph.ProgressHandler(w, r)
			return
		}

	case len(segments) == 3 && segments[1] == "transcriptions":
		switch segments[2] {
		case "copy-to-manual":
			th.CopyToManualHandler(w, r)
			return
		case "manual":
			RouteResourceItem(w, r, th.GetTranscriptionHandler, th.UpdateManualHandler, nil)
			return
		case "model":
			RouteResourceItem(w, r, th.GetTranscriptionHandler, th.SaveModelOutputHandler, nil)
			return
		default:
			// Unknown types are rejected by the service with 400
			th.GetTranscriptionHandler(w, r)
			return
		}

	case len(segments) == 4 && segments[1] == "transcriptions":
		if segments[2] == "restore" {
			th.RestoreHandler(w, r)
			return
		}
		if segments[3] == "versions" {
			th.VersionsHandler(w, r)
			return
		}
	}

	s.app.APIHandler.NotFoundHandler(w, r)
}

// handleDocumentRoutes routes /api/documents/{id}/{action}
func (s *Server) handleDocumentRoutes(w http.ResponseWriter, r *http.Request) {
	segments := handlers.PathSegments(r.URL.Path, "/api/documents/")
	if len(segments) == 2 {
		switch segments[1] {
		case "pages":
			s.app.DocumentHandler.ListPagesHandler(w, r)
			return
		case "import":
			s.app.DocumentHandler.ImportHandler(w, r)
			return
		case "export":
			s.app.DocumentHandler.ExportHandler(w, r)
			return
		}
	}

	s.app.APIHandler.NotFoundHandler(w, r)
}
