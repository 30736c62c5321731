package models

// ParsedPage is one page of an imported text file
type ParsedPage struct {
	PageNumber int                      `json:"page_number"`
	Lines      []TranscriptionLineInput `json:"lines"`
}

// ImportResult reports which pages received imported text
type ImportResult struct {
	DocumentID        string   `json:"document_id"`
	ImportedPages     []int    `json:"imported_pages"`
	Warnings          []string `json:"warnings"`
	SkippedIdentifier string   `json:"skipped_identifier,omitempty"`
}

// ExportResult summarises a completed export
type ExportResult struct {
	DocumentID string `json:"document_id"`
	Pages      int    `json:"pages"`
	Lines      int    `json:"lines"`
	Bytes      int64  `json:"bytes"`
}
