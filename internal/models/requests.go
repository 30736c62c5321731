package models

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// TranscriptionLineInput is one line of an incoming manual edit
type TranscriptionLineInput struct {
	LineNumber   int      `json:"line_number" validate:"gte=0"`
	DisplayOrder *int     `json:"display_order,omitempty" validate:"omitempty,gte=0"`
	Text         string   `json:"text"`
	Confidence   *float64 `json:"confidence,omitempty" validate:"omitempty,gte=0,lte=1"`
	Notes        *string  `json:"notes,omitempty"`
}

// TranscriptionUpdate replaces all lines of a manual transcription.
// ExpectedRevision, when non-zero, must match the stored revision.
type TranscriptionUpdate struct {
	Lines            []TranscriptionLineInput `json:"lines" validate:"dive"`
	Source           TranscriptionSource      `json:"source,omitempty" validate:"omitempty,oneof=manual imported copied_from_model"`
	ExpectedRevision uint64                   `json:"expected_revision,omitempty"`
}

// Validate checks field constraints
func (u *TranscriptionUpdate) Validate() error {
	return validate.Struct(u)
}

// ModelOutput carries recogniser results for a page
type ModelOutput struct {
	ModelVersion string                   `json:"model_version"`
	Lines        []TranscriptionLineInput `json:"lines" validate:"dive"`
}

// Validate checks field constraints
func (m *ModelOutput) Validate() error {
	return validate.Struct(m)
}

// LineOrderUpdate changes the reading order mode of a page
type LineOrderUpdate struct {
	Mode         LineOrderMode `json:"mode" validate:"required,oneof=auto rtl ltr manual"`
	DisplayOrder []int         `json:"display_order,omitempty" validate:"omitempty,dive,gte=0"`
}

// Validate checks field constraints
func (u *LineOrderUpdate) Validate() error {
	if err := validate.Struct(u); err != nil {
		return err
	}
	if u.Mode == LineOrderManual && u.DisplayOrder == nil {
		return fmt.Errorf("display_order is required for manual mode")
	}
	return nil
}

// TextImportRequest imports plain text transcriptions into a document
type TextImportRequest struct {
	Content            string `json:"content" validate:"required"`
	SkipPageIdentifier *bool  `json:"skip_page_identifier,omitempty"`
}

// Validate checks field constraints
func (r *TextImportRequest) Validate() error {
	return validate.Struct(r)
}

// LineEnding selects the newline sequence of exported text
type LineEnding string

const (
	LineEndingLF   LineEnding = "lf"
	LineEndingCRLF LineEnding = "crlf"
	LineEndingCR   LineEnding = "cr"
)

// TextEncoding selects the byte encoding of exported text
type TextEncoding string

const (
	EncodingUTF8    TextEncoding = "utf-8"
	EncodingUTF8BOM TextEncoding = "utf-8-sig"
	EncodingUTF16   TextEncoding = "utf-16" // little endian with BOM
)

// ExportOptions configures plain text export
type ExportOptions struct {
	Type               TranscriptionType `json:"type" validate:"omitempty,oneof=manual model"`
	LineEnding         LineEnding        `json:"line_ending" validate:"omitempty,oneof=lf crlf cr"`
	Encoding           TextEncoding      `json:"encoding" validate:"omitempty,oneof=utf-8 utf-8-sig utf-16"`
	IncludePageHeaders bool              `json:"include_page_headers"`
	IncludeLineNumbers bool              `json:"include_line_numbers"`
	IncludeConfidence  bool              `json:"include_confidence"`
}

// DefaultExportOptions mirrors the editor's export dialog defaults
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		Type:               TranscriptionManual,
		LineEnding:         LineEndingLF,
		Encoding:           EncodingUTF8BOM,
		IncludePageHeaders: true,
	}
}

// Validate checks field constraints
func (o *ExportOptions) Validate() error {
	return validate.Struct(o)
}

// CreatePageRequest registers a page of a document
type CreatePageRequest struct {
	DocumentID string `json:"document_id" validate:"required"`
	PageNumber int    `json:"page_number" validate:"gte=1"`
}

// Validate checks field constraints
func (r *CreatePageRequest) Validate() error {
	return validate.Struct(r)
}

// DetectedLinesRequest carries line detector output for a page
type DetectedLinesRequest struct {
	Lines []DetectedLine `json:"lines"`
}
