package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/app"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/models"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.Storage.Badger.Path = t.TempDir()
	cfg.Versions.SweepEnabled = false

	application, err := app.New(cfg, arbor.NewLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	return New(application).Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndNotFound(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(t, h, http.MethodGet, "/api/nothing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/pages/p1/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodOptions, "/api/pages", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTranscriptionWorkflow(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/pages", models.CreatePageRequest{DocumentID: "doc_1", PageNumber: 1})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	page := decode[models.Page](t, rec)

	lines := models.DetectedLinesRequest{Lines: []models.DetectedLine{
		{Baseline: []models.Point{{100, 50}, {200, 50}}},
		{Baseline: []models.Point{{400, 50}, {500, 50}}},
	}}
	rec = do(t, h, http.MethodPut, "/api/pages/"+page.ID+"/lines", lines)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPut, "/api/pages/"+page.ID+"/line-order", models.LineOrderUpdate{Mode: models.LineOrderRTL})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	order := decode[models.LineOrderResult](t, rec)
	assert.True(t, order.Applied)
	assert.Equal(t, 1, order.LineSet.Lines[0].LineNumber)

	edit := func(texts ...string) *httptest.ResponseRecorder {
		update := models.TranscriptionUpdate{}
		for i, text := range texts {
			update.Lines = append(update.Lines, models.TranscriptionLineInput{LineNumber: i, Text: text})
		}
		return do(t, h, http.MethodPut, "/api/pages/"+page.ID+"/transcriptions/manual", update)
	}

	rec = edit("first draft")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = edit("שורה א", "שורה ב")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/pages/"+page.ID, nil)
	assert.True(t, decode[models.Page](t, rec).IsGroundTruth)

	rec = do(t, h, http.MethodGet, "/api/pages/"+page.ID+"/transcriptions/manual/versions?include_snapshot=true", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	history := decode[models.VersionHistory](t, rec)
	require.Equal(t, 2, history.Total)
	draft := history.Versions[1]
	assert.Equal(t, "first draft", draft.LinesSnapshot[0].Text)

	rec = do(t, h, http.MethodPost, fmt.Sprintf("/api/pages/%s/transcriptions/restore/%d", page.ID, draft.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	restored := decode[models.TranscriptionView](t, rec)
	require.Len(t, restored.Lines, 1)
	assert.Equal(t, "first draft", restored.Lines[0].Text)

	rec = do(t, h, http.MethodGet, "/api/pages/"+page.ID+"/transcriptions/manual/versions", nil)
	history = decode[models.VersionHistory](t, rec)
	assert.Equal(t, 4, history.Total)
	assert.Equal(t, fmt.Sprintf("Restored from version %d", draft.ID), history.Versions[0].ChangeSummary)

	rec = do(t, h, http.MethodPost, "/api/pages/"+page.ID+"/transcriptions/copy-to-manual", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/pages/"+page.ID+"/progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	progress := decode[models.PageProgress](t, rec)
	assert.Equal(t, 2, progress.DetectedLines)
	assert.Equal(t, 1, progress.FilledLines)
	assert.True(t, progress.IsGroundTruth, "ground truth is never cleared")

	rec = do(t, h, http.MethodPost, "/api/documents/doc_1/export", models.ExportOptions{
		LineEnding:         models.LineEndingLF,
		Encoding:           models.EncodingUTF8,
		IncludePageHeaders: true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Page 1\n\nfirst draft\n", rec.Body.String())
}

func TestImportThroughAPI(t *testing.T) {
	h := newTestServer(t)

	for n := 1; n <= 2; n++ {
		rec := do(t, h, http.MethodPost, "/api/pages", models.CreatePageRequest{DocumentID: "doc_2", PageNumber: n})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/documents/doc_2/import", strings.NewReader("Page 1\nalpha\nPage 2\nbeta\ngamma\nPage 9\nlost\n"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	result := decode[models.ImportResult](t, rec)
	assert.Equal(t, []int{1, 2}, result.ImportedPages)
	assert.Equal(t, []string{"Page 9 not found in document"}, result.Warnings)

	rec = do(t, h, http.MethodGet, "/api/documents/doc_2/pages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listing := decode[struct {
		Pages []models.Page `json:"pages"`
	}](t, rec)
	require.Len(t, listing.Pages, 2)

	rec = do(t, h, http.MethodGet, "/api/pages/"+listing.Pages[1].ID+"/transcriptions/manual", nil)
	view := decode[models.TranscriptionView](t, rec)
	require.Len(t, view.Lines, 2)
	assert.Equal(t, models.SourceImported, view.Source)
}

func TestMaintenanceSweepEndpoint(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/maintenance/sweep", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(0), decode[map[string]interface{}](t, rec)["deleted"])

	rec = do(t, h, http.MethodDelete, "/api/maintenance/sweep", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMiddlewareRecoversPanicAsJSON(t *testing.T) {
	s := &Server{app: &app.App{Logger: arbor.NewLogger()}}
	h := s.withMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := do(t, h, http.MethodGet, "/api/pages/p1", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "error", body["status"])
	assert.NotContains(t, rec.Body.String(), "boom")
	assert.Equal(t, "Content-Disposition", rec.Header().Get("Access-Control-Expose-Headers"))
}
