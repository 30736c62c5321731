package main

import (
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/folio/internal/models"
)

func TestIntSlice(t *testing.T) {
	var request mcp.CallToolRequest
	request.Params.Arguments = map[string]any{
		"display_order": []interface{}{float64(2), float64(0), float64(1)},
		"bad":           []interface{}{1.5},
	}

	order, err := intSlice(request, "display_order")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0, 1}, order)

	_, err = intSlice(request, "bad")
	assert.Error(t, err)

	missing, err := intSlice(request, "absent")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFormatTranscription(t *testing.T) {
	confidence := 0.87
	view := &models.TranscriptionView{
		ID:        3,
		PageID:    "page_1",
		Type:      models.TranscriptionModel,
		Revision:  2,
		UpdatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Lines: []models.TranscriptionLine{
			{LineNumber: 4, Text: "בראשית", Confidence: &confidence},
		},
	}

	out := formatTranscription(view)
	assert.Contains(t, out, "## model transcription of page_1")
	assert.Contains(t, out, "  4. בראשית [87%]")

	empty := formatTranscription(&models.TranscriptionView{PageID: "page_2", Type: models.TranscriptionManual})
	assert.Contains(t, empty, "No transcription yet.")
}

func TestFormatHistory(t *testing.T) {
	history := &models.VersionHistory{
		Total:  3,
		Offset: 0,
		Limit:  2,
		Versions: []models.VersionSummary{
			{ID: 9, ChangeSummary: "Auto-save", LineCount: 4},
			{ID: 8, ChangeSummary: "Before restore", LineCount: 3},
		},
	}

	out := formatHistory("page_1", history)
	assert.Contains(t, out, "(3 total)")
	assert.Contains(t, out, "| 9 |")
	assert.Contains(t, out, "1 more; use offset=2.")
}

func TestFormatLineOrder(t *testing.T) {
	rejected := formatLineOrder("page_1", &models.LineOrderResult{Applied: false, Warning: "manual order has 2 entries but page has 3 lines; order unchanged"})
	assert.Contains(t, rejected, "unchanged: manual order has 2 entries")

	applied := formatLineOrder("page_1", &models.LineOrderResult{
		Applied:     true,
		Mode:        models.LineOrderRTL,
		ColumnCount: 2,
		LineSet:     &models.LineSet{Lines: []models.Line{{LineNumber: 2}, {LineNumber: 0}}},
	})
	assert.Contains(t, applied, "set to rtl (2 columns)")
	assert.Contains(t, applied, "2, 0")
}
