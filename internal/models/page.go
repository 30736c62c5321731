package models

import "time"

// LineOrderMode selects how a page's lines are put into reading order
type LineOrderMode string

const (
	// LineOrderAuto keeps detection order
	LineOrderAuto LineOrderMode = "auto"
	// LineOrderRTL reads the rightmost column first (Hebrew, Arabic, ...)
	LineOrderRTL LineOrderMode = "rtl"
	// LineOrderLTR reads the leftmost column first
	LineOrderLTR LineOrderMode = "ltr"
	// LineOrderManual applies a caller supplied permutation
	LineOrderManual LineOrderMode = "manual"
)

// IsValid reports whether m is a known mode
func (m LineOrderMode) IsValid() bool {
	switch m {
	case LineOrderAuto, LineOrderRTL, LineOrderLTR, LineOrderManual:
		return true
	}
	return false
}

// Page is a single manuscript page. Pages are registered by the document
// layer; this module only reads and updates ordering and ground truth.
type Page struct {
	ID            string        `json:"id" badgerhold:"key"` // page_{uuid}
	DocumentID    string        `json:"document_id" badgerhold:"index"`
	PageNumber    int           `json:"page_number"`
	IsGroundTruth bool          `json:"is_ground_truth"`
	LineOrderMode LineOrderMode `json:"line_order_mode"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// PageProgress summarises how much of a page has been transcribed manually
type PageProgress struct {
	PageID                     string  `json:"page_id"`
	DetectedLines              int     `json:"detected_lines"`
	FilledLines                int     `json:"filled_lines"`
	ManualTranscriptionPercent float64 `json:"manual_transcription_percent"`
	HasModelTranscription      bool    `json:"has_model_transcription"`
	IsGroundTruth              bool    `json:"is_ground_truth"`
}
