// Package exports renders document transcriptions for download.
package exports

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

var _ interfaces.ExportService = (*Service)(nil)

// Service implements interfaces.ExportService
type Service struct {
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

// NewService creates a new export service
func NewService(storage interfaces.StorageManager, logger arbor.ILogger) *Service {
	return &Service{storage: storage, logger: logger}
}

// ExportText writes every page of a document as plain text. Pages without a
// transcription of the requested type are exported with no lines.
func (s *Service) ExportText(ctx context.Context, w io.Writer, documentID string, opts models.ExportOptions) (*models.ExportResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrValidation, err)
	}
	if opts.Type == "" {
		opts.Type = models.TranscriptionManual
	}

	var pages []PageText
	err := s.storage.View(ctx, func(tx interfaces.Tx) error {
		docPages, err := tx.ListPagesByDocument(documentID)
		if err != nil {
			return err
		}
		if len(docPages) == 0 {
			return fmt.Errorf("%w: document %s has no pages", interfaces.ErrNotFound, documentID)
		}

		for _, p := range docPages {
			pt := PageText{PageNumber: p.PageNumber}
			t, err := tx.FindTranscription(p.ID, opts.Type)
			switch {
			case err == nil:
				if pt.Lines, err = tx.GetLines(t.ID); err != nil {
					return err
				}
			case !errors.Is(err, interfaces.ErrNotFound):
				return err
			}
			pages = append(pages, pt)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	n, err := Text(w, pages, opts)
	if err != nil {
		return nil, err
	}

	result := &models.ExportResult{DocumentID: documentID, Pages: len(pages), Bytes: n}
	for _, p := range pages {
		result.Lines += len(p.Lines)
	}

	s.logger.Info().
		Str("document_id", documentID).
		Str("type", string(opts.Type)).
		Int("pages", result.Pages).
		Int64("bytes", n).
		Msg("Text export completed")
	return result, nil
}
