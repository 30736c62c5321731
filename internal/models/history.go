package models

import "time"

// VersionSummary is one entry of a version history listing. LinesSnapshot is
// only populated when the caller asks for it.
type VersionSummary struct {
	ID            uint64         `json:"id"`
	ContentHash   string         `json:"content_hash"`
	ChangeSummary string         `json:"change_summary"`
	LineCount     int            `json:"line_count"`
	CreatedAt     time.Time      `json:"created_at"`
	LinesSnapshot []SnapshotLine `json:"lines_snapshot,omitempty"`
}

// VersionHistory is a page of versions, newest first
type VersionHistory struct {
	TranscriptionID uint64           `json:"transcription_id"`
	Total           int              `json:"total"`
	Offset          int              `json:"offset"`
	Limit           int              `json:"limit"`
	Versions        []VersionSummary `json:"versions"`
}

// Summarise converts a stored version into a history entry
func Summarise(v *TranscriptionVersion, includeSnapshot bool) VersionSummary {
	s := VersionSummary{
		ID:            v.ID,
		ContentHash:   v.ContentHash,
		ChangeSummary: v.ChangeSummary,
		LineCount:     len(v.LinesSnapshot),
		CreatedAt:     v.CreatedAt,
	}
	if includeSnapshot {
		s.LinesSnapshot = CloneSnapshot(v.LinesSnapshot)
	}
	return s
}
