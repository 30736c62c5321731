package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
)

// maxBodyBytes caps request bodies; a full-document text import is the largest
const maxBodyBytes = 32 << 20

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a standard success JSON response.
func WriteSuccess(w http.ResponseWriter, message string) error {
	return WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": message,
	})
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// StatusForError maps a service error kind to an HTTP status
func StatusForError(err error) int {
	switch {
	case errors.Is(err, interfaces.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, interfaces.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, interfaces.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteServiceError writes err with the status of its kind. Storage and
// unknown failures are logged and reported without internal detail.
func WriteServiceError(w http.ResponseWriter, logger arbor.ILogger, err error, action string) {
	status := StatusForError(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Msg("Failed to " + action)
		WriteError(w, status, "Failed to "+action)
		return
	}
	logger.Debug().Err(err).Int("status", status).Msg("Request rejected")
	WriteError(w, status, err.Error())
}

// DecodeJSON reads a JSON request body into v, rejecting unknown fields
func DecodeJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", interfaces.ErrValidation, err)
	}
	return nil
}

// DecodeOptionalJSON is DecodeJSON for bodies that may be empty; v is left
// untouched when there is no body
func DecodeOptionalJSON(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: invalid request body: %v", interfaces.ErrValidation, err)
	}
	return nil
}

// PathSegments returns the non-empty path segments that follow prefix.
// Example: PathSegments("/api/pages/p1/lines", "/api/pages/") -> [p1 lines]
func PathSegments(path, prefix string) []string {
	rest := strings.TrimPrefix(path, prefix)
	if rest == path && prefix != "" {
		return nil
	}
	segments := []string{}
	for _, s := range strings.Split(rest, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// GetPaginationParams extracts offset and limit from the query string.
// Missing or malformed values yield 0; range checks are left to the service.
func GetPaginationParams(r *http.Request) (offset, limit int) {
	query := r.URL.Query()
	if v := query.Get("offset"); v != "" {
		offset, _ = strconv.Atoi(v)
	}
	if v := query.Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}
	return offset, limit
}

// QueryBool parses a boolean query parameter, returning def when absent or malformed
func QueryBool(r *http.Request, name string, def bool) bool {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
