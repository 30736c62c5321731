// Package imports loads plain text transcriptions into existing pages.
package imports

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

// PageImporter writes imported lines as a page's manual transcription
type PageImporter interface {
	ImportInTx(tx interfaces.Tx, pageID string, lines []models.TranscriptionLineInput) (*models.TranscriptionView, error)
}

var _ interfaces.ImportService = (*Service)(nil)

// Service implements interfaces.ImportService
type Service struct {
	storage  interfaces.StorageManager
	importer PageImporter
	config   common.ImportConfig
	logger   arbor.ILogger
}

// NewService creates a new import service
func NewService(storage interfaces.StorageManager, importer PageImporter, config common.ImportConfig, logger arbor.ILogger) *Service {
	return &Service{
		storage:  storage,
		importer: importer,
		config:   config,
		logger:   logger,
	}
}

// ImportText parses content and writes each page that exists in the
// document. Pages are committed one transaction each; pages missing from the
// document are reported as warnings.
func (s *Service) ImportText(ctx context.Context, documentID string, req *models.TextImportRequest) (*models.ImportResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrValidation, err)
	}

	skip := s.config.SkipPageIdentifier
	if req.SkipPageIdentifier != nil {
		skip = *req.SkipPageIdentifier
	}
	parsed := ParseText(req.Content, skip)
	if parsed.SkippedIdentifier != "" {
		s.logger.Info().Str("identifier", parsed.SkippedIdentifier).Msg("Skipping page identifier")
	}
	s.logger.Debug().Int("pages", len(parsed.Pages)).Msg("Text import parsed")

	var pages []*models.Page
	err := s.storage.View(ctx, func(tx interfaces.Tx) error {
		var err error
		pages, err = tx.ListPagesByDocument(documentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: document %s has no pages", interfaces.ErrNotFound, documentID)
	}

	byNumber := make(map[int]*models.Page, len(pages))
	for _, p := range pages {
		byNumber[p.PageNumber] = p
	}

	result := &models.ImportResult{
		DocumentID:        documentID,
		ImportedPages:     []int{},
		Warnings:          []string{},
		SkippedIdentifier: parsed.SkippedIdentifier,
	}

	for _, pp := range parsed.Pages {
		page, ok := byNumber[pp.PageNumber]
		if !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Page %d not found in document", pp.PageNumber))
			continue
		}

		err := s.storage.Update(ctx, func(tx interfaces.Tx) error {
			_, err := s.importer.ImportInTx(tx, page.ID, pp.Lines)
			return err
		})
		if err != nil {
			s.logger.Error().Err(err).Str("page_id", page.ID).Int("page_number", pp.PageNumber).Msg("Failed to import page")
			return result, fmt.Errorf("failed to import page %d: %w", pp.PageNumber, err)
		}
		result.ImportedPages = append(result.ImportedPages, pp.PageNumber)
	}

	s.logger.Info().
		Str("document_id", documentID).
		Int("pages_imported", len(result.ImportedPages)).
		Int("warnings", len(result.Warnings)).
		Msg("Text imported")
	return result, nil
}
