package models

import "time"

// Change summaries written by the transcription workflows. Versions carrying
// any of the protected summaries are never removed by retention.
const (
	SummaryAutoSave            = "Auto-save"
	SummaryImported            = "Imported from file"
	SummaryCopiedFromModel     = "Copied from model"
	SummaryRestoredFrom        = "Restored from version"
	SummaryBeforeRestore       = "Before restore"
	SummaryBeforeCopyFromModel = "Before copy from model"
	SummaryModelInference      = "Model inference"
	SummaryBeforeImport        = "Before import"
)

// SnapshotLine is the content of one line as captured in a version.
// Field order is alphabetical by JSON key so the encoded form is canonical.
type SnapshotLine struct {
	LineNumber int     `json:"line_number"`
	Notes      *string `json:"notes"`
	Text       string  `json:"text"`
}

// TranscriptionVersion is an immutable snapshot of a transcription's content.
// CreatedAt is refreshed when identical content is saved again.
type TranscriptionVersion struct {
	ID              uint64         `json:"id" badgerhold:"key"`
	TranscriptionID uint64         `json:"transcription_id" badgerhold:"index"`
	ContentHash     string         `json:"content_hash" badgerhold:"index"`
	LinesSnapshot   []SnapshotLine `json:"lines_snapshot,omitempty"`
	ChangeSummary   string         `json:"change_summary"`
	CreatedAt       time.Time      `json:"created_at"`
}

// Snapshots projects transcription lines onto their versioned content
func Snapshots(lines []TranscriptionLine) []SnapshotLine {
	out := make([]SnapshotLine, len(lines))
	for i, l := range lines {
		out[i] = l.Snapshot()
	}
	return out
}

// CloneSnapshot returns a deep copy of a snapshot
func CloneSnapshot(lines []SnapshotLine) []SnapshotLine {
	out := make([]SnapshotLine, len(lines))
	for i, l := range lines {
		out[i] = SnapshotLine{LineNumber: l.LineNumber, Text: l.Text}
		if l.Notes != nil {
			n := *l.Notes
			out[i].Notes = &n
		}
	}
	return out
}
