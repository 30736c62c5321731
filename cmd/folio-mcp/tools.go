package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createReorderLinesTool returns the reorder_lines tool definition
func createReorderLinesTool() mcp.Tool {
	return mcp.NewTool("reorder_lines",
		mcp.WithDescription("Set the reading order of a page's detected lines"),
		mcp.WithString("page_id",
			mcp.Required(),
			mcp.Description("Page ID (format: page_{uuid})"),
		),
		mcp.WithString("mode",
			mcp.Required(),
			mcp.Description("Ordering mode"),
			mcp.Enum("auto", "rtl", "ltr", "manual"),
		),
		mcp.WithArray("display_order",
			mcp.Items(map[string]any{"type": "integer"}),
			mcp.Description("Manual mode only: new position -> current line index"),
		),
	)
}

// createGetTranscriptionTool returns the get_transcription tool definition
func createGetTranscriptionTool() mcp.Tool {
	return mcp.NewTool("get_transcription",
		mcp.WithDescription("Retrieve the manual or model transcription of a page in reading order"),
		mcp.WithString("page_id",
			mcp.Required(),
			mcp.Description("Page ID (format: page_{uuid})"),
		),
		mcp.WithString("type",
			mcp.Description("Transcription type (default: manual)"),
			mcp.Enum("manual", "model"),
		),
	)
}

// createListVersionsTool returns the list_versions tool definition
func createListVersionsTool() mcp.Tool {
	return mcp.NewTool("list_versions",
		mcp.WithDescription("List the version history of a page's transcription, newest first"),
		mcp.WithString("page_id",
			mcp.Required(),
			mcp.Description("Page ID (format: page_{uuid})"),
		),
		mcp.WithString("type",
			mcp.Description("Transcription type (default: manual)"),
			mcp.Enum("manual", "model"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Versions to skip (default: 0)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max results (default: 20, max: 100)"),
		),
	)
}

// createRestoreVersionTool returns the restore_version tool definition
func createRestoreVersionTool() mcp.Tool {
	return mcp.NewTool("restore_version",
		mcp.WithDescription("Replace a page's transcription with the content of a stored version"),
		mcp.WithString("page_id",
			mcp.Required(),
			mcp.Description("Page ID (format: page_{uuid})"),
		),
		mcp.WithNumber("version_id",
			mcp.Required(),
			mcp.Description("Version ID from list_versions"),
		),
	)
}
