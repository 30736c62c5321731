package models

import (
	"strings"
	"time"
)

// TranscriptionType distinguishes the human transcription from recogniser output
type TranscriptionType string

const (
	TranscriptionManual TranscriptionType = "manual"
	TranscriptionModel  TranscriptionType = "model"
)

// IsValid reports whether t is a known transcription type
func (t TranscriptionType) IsValid() bool {
	return t == TranscriptionManual || t == TranscriptionModel
}

// TranscriptionSource records where the manual transcription content came from
type TranscriptionSource string

const (
	SourceManual          TranscriptionSource = "manual"
	SourceImported        TranscriptionSource = "imported"
	SourceCopiedFromModel TranscriptionSource = "copied_from_model"
)

// Transcription is the single editable transcription of a page for one type.
// Revision increases on every write and backs the optional stale-write check.
type Transcription struct {
	ID           uint64              `json:"id" badgerhold:"key"`
	PageID       string              `json:"page_id" badgerhold:"index"`
	Type         TranscriptionType   `json:"type"`
	Source       TranscriptionSource `json:"source,omitempty"`
	ModelVersion string              `json:"model_version,omitempty"`
	Revision     uint64              `json:"revision"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// TranscriptionLine is the editable text of one detected line
type TranscriptionLine struct {
	ID              uint64   `json:"id" badgerhold:"key"`
	TranscriptionID uint64   `json:"transcription_id" badgerhold:"index"`
	LineNumber      int      `json:"line_number"`
	DisplayOrder    int      `json:"display_order"`
	Text            string   `json:"text"`
	Confidence      *float64 `json:"confidence,omitempty"`
	Notes           *string  `json:"notes,omitempty"`
}

// IsFilled reports whether the line carries non-blank text
func (l TranscriptionLine) IsFilled() bool {
	return strings.TrimSpace(l.Text) != ""
}

// Snapshot returns the versioned projection of the line
func (l TranscriptionLine) Snapshot() SnapshotLine {
	return SnapshotLine{LineNumber: l.LineNumber, Text: l.Text, Notes: l.Notes}
}

// TranscriptionView is a transcription together with its active lines,
// ordered by display order then line number.
type TranscriptionView struct {
	ID           uint64              `json:"id"`
	PageID       string              `json:"page_id"`
	Type         TranscriptionType   `json:"type"`
	Source       TranscriptionSource `json:"source,omitempty"`
	ModelVersion string              `json:"model_version,omitempty"`
	Revision     uint64              `json:"revision"`
	UpdatedAt    time.Time           `json:"updated_at"`
	Lines        []TranscriptionLine `json:"lines"`
}

// FilledCount returns the number of lines with non-blank text
func FilledCount(lines []TranscriptionLine) int {
	n := 0
	for _, l := range lines {
		if l.IsFilled() {
			n++
		}
	}
	return n
}
