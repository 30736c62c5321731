package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/folio/internal/models"
)

// formatTranscription formats a transcription as markdown, one numbered line
// per row in reading order
func formatTranscription(view *models.TranscriptionView) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s transcription of %s\n\n", view.Type, view.PageID))

	if view.ID == 0 {
		sb.WriteString("No transcription yet.\n")
		return sb.String()
	}

	if view.Source != "" {
		sb.WriteString(fmt.Sprintf("**Source:** %s\n", view.Source))
	}
	if view.ModelVersion != "" {
		sb.WriteString(fmt.Sprintf("**Model:** %s\n", view.ModelVersion))
	}
	sb.WriteString(fmt.Sprintf("**Revision:** %d\n", view.Revision))
	sb.WriteString(fmt.Sprintf("**Updated:** %s\n\n", view.UpdatedAt.Format(time.RFC3339)))

	for _, line := range view.Lines {
		sb.WriteString(fmt.Sprintf("%3d. %s", line.LineNumber, line.Text))
		if line.Confidence != nil {
			sb.WriteString(fmt.Sprintf(" [%.0f%%]", *line.Confidence*100))
		}
		if line.Notes != nil {
			sb.WriteString(fmt.Sprintf(" _(%s)_", *line.Notes))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatHistory formats a version listing as a markdown table
func formatHistory(pageID string, history *models.VersionHistory) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Versions of %s (%d total)\n\n", pageID, history.Total))

	if len(history.Versions) == 0 {
		sb.WriteString("No versions found.\n")
		return sb.String()
	}

	sb.WriteString("| ID | Created | Lines | Summary |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, v := range history.Versions {
		sb.WriteString(fmt.Sprintf("| %d | %s | %d | %s |\n", v.ID, v.CreatedAt.Format(time.RFC3339), v.LineCount, v.ChangeSummary))
	}

	if shown := history.Offset + len(history.Versions); shown < history.Total {
		sb.WriteString(fmt.Sprintf("\n%d more; use offset=%d.\n", history.Total-shown, shown))
	}
	return sb.String()
}

// formatLineOrder describes the outcome of a reorder request
func formatLineOrder(pageID string, result *models.LineOrderResult) string {
	var sb strings.Builder
	if !result.Applied {
		sb.WriteString(fmt.Sprintf("Line order of %s unchanged: %s\n", pageID, result.Warning))
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("Line order of %s set to %s", pageID, result.Mode))
	if result.ColumnCount > 0 {
		sb.WriteString(fmt.Sprintf(" (%d columns)", result.ColumnCount))
	}
	sb.WriteString(".\n\nReading order by line number: ")

	numbers := make([]string, result.LineSet.Count())
	for i, line := range result.LineSet.Lines {
		numbers[i] = fmt.Sprintf("%d", line.LineNumber)
	}
	sb.WriteString(strings.Join(numbers, ", "))
	sb.WriteString("\n")
	return sb.String()
}
