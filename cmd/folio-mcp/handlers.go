package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(format string, args ...interface{}) *mcp.CallToolResult {
	result := textResult(fmt.Sprintf(format, args...))
	result.IsError = true
	return result
}

// intSlice reads an array argument of numbers. JSON numbers arrive as float64.
func intSlice(request mcp.CallToolRequest, name string) ([]int, error) {
	raw, ok := request.GetArguments()[name]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s must be an array of integers", name)
	}
	out := make([]int, len(items))
	for i, item := range items {
		f, ok := item.(float64)
		if !ok || f != float64(int(f)) {
			return nil, fmt.Errorf("%s[%d] is not an integer", name, i)
		}
		out[i] = int(f)
	}
	return out, nil
}

// handleReorderLines implements the reorder_lines tool
func handleReorderLines(pageService interfaces.PageService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pageID, err := request.RequireString("page_id")
		if err != nil || pageID == "" {
			return errorResult("Error: page_id parameter is required"), nil
		}
		mode, err := request.RequireString("mode")
		if err != nil || mode == "" {
			return errorResult("Error: mode parameter is required"), nil
		}
		order, err := intSlice(request, "display_order")
		if err != nil {
			return errorResult("Error: %v", err), nil
		}

		result, err := pageService.UpdateLineOrder(ctx, pageID, &models.LineOrderUpdate{
			Mode:         models.LineOrderMode(mode),
			DisplayOrder: order,
		})
		if err != nil {
			logger.Error().Err(err).Str("page_id", pageID).Msg("Reorder failed")
			return errorResult("Reorder error: %v", err), nil
		}

		return textResult(formatLineOrder(pageID, result)), nil
	}
}

// handleGetTranscription implements the get_transcription tool
func handleGetTranscription(transcriptionService interfaces.TranscriptionService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pageID, err := request.RequireString("page_id")
		if err != nil || pageID == "" {
			return errorResult("Error: page_id parameter is required"), nil
		}
		transcriptionType := models.TranscriptionType(request.GetString("type", string(models.TranscriptionManual)))

		view, err := transcriptionService.Get(ctx, pageID, transcriptionType)
		if err != nil {
			logger.Error().Err(err).Str("page_id", pageID).Msg("Get transcription failed")
			return errorResult("Transcription error: %v", err), nil
		}

		return textResult(formatTranscription(view)), nil
	}
}

// handleListVersions implements the list_versions tool
func handleListVersions(transcriptionService interfaces.TranscriptionService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pageID, err := request.RequireString("page_id")
		if err != nil || pageID == "" {
			return errorResult("Error: page_id parameter is required"), nil
		}
		transcriptionType := models.TranscriptionType(request.GetString("type", string(models.TranscriptionManual)))
		offset := request.GetInt("offset", 0)
		limit := request.GetInt("limit", 20)
		if limit > 100 {
			limit = 100
		}

		history, err := transcriptionService.History(ctx, pageID, transcriptionType, offset, limit, false)
		if err != nil {
			logger.Error().Err(err).Str("page_id", pageID).Msg("List versions failed")
			return errorResult("History error: %v", err), nil
		}

		return textResult(formatHistory(pageID, history)), nil
	}
}

// handleRestoreVersion implements the restore_version tool
func handleRestoreVersion(transcriptionService interfaces.TranscriptionService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pageID, err := request.RequireString("page_id")
		if err != nil || pageID == "" {
			return errorResult("Error: page_id parameter is required"), nil
		}
		versionID := request.GetInt("version_id", 0)
		if versionID <= 0 {
			return errorResult("Error: version_id must be a positive integer"), nil
		}

		view, err := transcriptionService.RestoreVersion(ctx, pageID, uint64(versionID))
		if err != nil {
			logger.Error().Err(err).Str("page_id", pageID).Int("version_id", versionID).Msg("Restore failed")
			return errorResult("Restore error: %v", err), nil
		}

		return textResult(fmt.Sprintf("Restored version %d.\n\n%s", versionID, formatTranscription(view))), nil
	}
}
