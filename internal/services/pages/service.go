// Package pages manages pages, their detected lines and reading order.
package pages

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/layout"
	"github.com/ternarybob/folio/internal/models"
)

var _ interfaces.PageService = (*Service)(nil)

// Service implements interfaces.PageService
type Service struct {
	storage     interfaces.StorageManager
	resolver    *layout.Resolver
	defaultMode models.LineOrderMode
	logger      arbor.ILogger
	now         func() time.Time
}

// NewService creates a new page service
func NewService(storage interfaces.StorageManager, config common.OrderingConfig, logger arbor.ILogger) *Service {
	mode := models.LineOrderMode(config.DefaultMode)
	if !mode.IsValid() || mode == models.LineOrderManual {
		mode = models.LineOrderAuto
	}
	return &Service{
		storage:     storage,
		resolver:    layout.NewResolverWithConfig(layout.ReadingOrderConfig{ColumnThreshold: config.ColumnThreshold}),
		defaultMode: mode,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreatePage registers a page of a document
func (s *Service) CreatePage(ctx context.Context, documentID string, pageNumber int) (*models.Page, error) {
	if documentID == "" {
		return nil, fmt.Errorf("%w: document ID is required", interfaces.ErrValidation)
	}
	if pageNumber < 1 {
		return nil, fmt.Errorf("%w: page number must be at least 1, got %d", interfaces.ErrValidation, pageNumber)
	}

	now := s.now()
	page := &models.Page{
		ID:            common.NewPageID(),
		DocumentID:    documentID,
		PageNumber:    pageNumber,
		LineOrderMode: s.defaultMode,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.storage.Update(ctx, func(tx interfaces.Tx) error {
		existing, err := tx.ListPagesByDocument(documentID)
		if err != nil {
			return err
		}
		for _, p := range existing {
			if p.PageNumber == pageNumber {
				return fmt.Errorf("%w: document %s already has page %d", interfaces.ErrConflict, documentID, pageNumber)
			}
		}
		return tx.SavePage(page)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("page_id", page.ID).Str("document_id", documentID).Int("page_number", pageNumber).Msg("Page created")
	return page, nil
}

// GetPage returns a page by ID
func (s *Service) GetPage(ctx context.Context, pageID string) (*models.Page, error) {
	var page *models.Page
	err := s.storage.View(ctx, func(tx interfaces.Tx) error {
		var err error
		page, err = tx.GetPage(pageID)
		return err
	})
	return page, err
}

// ListPages returns the pages of a document ordered by page number
func (s *Service) ListPages(ctx context.Context, documentID string) ([]*models.Page, error) {
	var pages []*models.Page
	err := s.storage.View(ctx, func(tx interfaces.Tx) error {
		var err error
		pages, err = tx.ListPagesByDocument(documentID)
		return err
	})
	return pages, err
}

// SetDetectedLines replaces the detected lines of a page. Lines are numbered
// in detection order and arranged by the page's current mode; a manual page
// keeps detection order until a new permutation is supplied.
func (s *Service) SetDetectedLines(ctx context.Context, pageID string, detected []models.DetectedLine) (*models.LineSet, error) {
	lines := make([]models.Line, len(detected))
	for i, d := range detected {
		lines[i] = models.Line{
			LineNumber: i,
			Baseline:   append([]models.Point(nil), d.Baseline...),
			Boundary:   append([]models.Point(nil), d.Boundary...),
		}
	}

	var lineSet *models.LineSet
	err := s.storage.Update(ctx, func(tx interfaces.Tx) error {
		page, err := tx.GetPage(pageID)
		if err != nil {
			return err
		}

		mode := page.LineOrderMode
		if mode == models.LineOrderManual {
			mode = models.LineOrderAuto
		}
		result, err := s.resolver.Reorder(lines, mode, nil)
		if err != nil {
			return fmt.Errorf("%w: %v", interfaces.ErrValidation, err)
		}

		now := s.now()
		lineSet = &models.LineSet{
			PageID:       pageID,
			Lines:        result.Lines,
			DisplayOrder: result.DisplayOrder(),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if existing, err := tx.GetLineSet(pageID); err == nil {
			lineSet.CreatedAt = existing.CreatedAt
		} else if !errors.Is(err, interfaces.ErrNotFound) {
			return err
		}
		return tx.SaveLineSet(lineSet)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("page_id", pageID).Int("line_count", len(lines)).Msg("Detected lines stored")
	return lineSet, nil
}

// GetLines returns the detected lines of a page in reading order. A page
// without detection results yields an empty set.
func (s *Service) GetLines(ctx context.Context, pageID string) (*models.LineSet, error) {
	var lineSet *models.LineSet
	err := s.storage.View(ctx, func(tx interfaces.Tx) error {
		var err error
		lineSet, err = s.lineSetInTx(tx, pageID)
		return err
	})
	return lineSet, err
}

// UpdateLineOrder resolves a new reading order and stores it with the mode.
// A rejected manual order leaves storage untouched and is reported through
// the result's Warning.
func (s *Service) UpdateLineOrder(ctx context.Context, pageID string, update *models.LineOrderUpdate) (*models.LineOrderResult, error) {
	if err := update.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrValidation, err)
	}

	var result *models.LineOrderResult
	err := s.storage.Update(ctx, func(tx interfaces.Tx) error {
		page, err := tx.GetPage(pageID)
		if err != nil {
			return err
		}
		lineSet, err := s.lineSetInTx(tx, pageID)
		if err != nil {
			return err
		}

		source := lineSet.Lines
		if update.Mode != models.LineOrderManual {
			source = detectionOrder(lineSet.Lines)
		}
		ordered, err := s.resolver.Reorder(source, update.Mode, update.DisplayOrder)
		if err != nil {
			return fmt.Errorf("%w: %v", interfaces.ErrValidation, err)
		}

		result = &models.LineOrderResult{
			Mode:        update.Mode,
			Applied:     ordered.Applied,
			Warning:     ordered.Warning,
			ColumnCount: ordered.ColumnCount,
			LineSet:     lineSet,
		}
		if !ordered.Applied {
			result.Mode = page.LineOrderMode
			return nil
		}

		now := s.now()
		updated := &models.LineSet{
			PageID:       pageID,
			Lines:        ordered.Lines,
			DisplayOrder: ordered.DisplayOrder(),
			CreatedAt:    lineSet.CreatedAt,
			UpdatedAt:    now,
		}
		if updated.CreatedAt.IsZero() {
			updated.CreatedAt = now
		}
		if err := tx.SaveLineSet(updated); err != nil {
			return err
		}

		page.LineOrderMode = update.Mode
		page.UpdatedAt = now
		if err := tx.SavePage(page); err != nil {
			return err
		}

		result.LineSet = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.Applied {
		s.logger.Warn().Str("page_id", pageID).Str("warning", result.Warning).Msg("Manual line order not applied")
	} else {
		s.logger.Info().
			Str("page_id", pageID).
			Str("mode", string(update.Mode)).
			Int("line_count", result.LineSet.Count()).
			Int("columns", result.ColumnCount).
			Msg("Line order updated")
	}
	return result, nil
}

// Progress reports how much of the page is covered by the manual transcription
func (s *Service) Progress(ctx context.Context, pageID string) (*models.PageProgress, error) {
	var progress *models.PageProgress
	err := s.storage.View(ctx, func(tx interfaces.Tx) error {
		page, err := tx.GetPage(pageID)
		if err != nil {
			return err
		}
		lineSet, err := s.lineSetInTx(tx, pageID)
		if err != nil {
			return err
		}

		progress = &models.PageProgress{
			PageID:        pageID,
			DetectedLines: lineSet.Count(),
			IsGroundTruth: page.IsGroundTruth,
		}

		transcriptions, err := tx.ListTranscriptionsByPage(pageID)
		if err != nil {
			return err
		}
		for _, t := range transcriptions {
			switch t.Type {
			case models.TranscriptionModel:
				progress.HasModelTranscription = true
			case models.TranscriptionManual:
				lines, err := tx.GetLines(t.ID)
				if err != nil {
					return err
				}
				progress.FilledLines = models.FilledCount(lines)
			}
		}

		if progress.DetectedLines > 0 {
			progress.ManualTranscriptionPercent = float64(progress.FilledLines) / float64(progress.DetectedLines) * 100
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// DeletePage removes a page with its lines, transcriptions and versions
func (s *Service) DeletePage(ctx context.Context, pageID string) error {
	err := s.storage.Update(ctx, func(tx interfaces.Tx) error {
		if _, err := tx.GetPage(pageID); err != nil {
			return err
		}
		transcriptions, err := tx.ListTranscriptionsByPage(pageID)
		if err != nil {
			return err
		}
		for _, t := range transcriptions {
			if err := tx.DeleteVersionsByTranscription(t.ID); err != nil {
				return err
			}
			if err := tx.DeleteTranscription(t.ID); err != nil {
				return err
			}
		}
		if err := tx.DeleteLineSet(pageID); err != nil {
			return err
		}
		return tx.DeletePage(pageID)
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("page_id", pageID).Msg("Page deleted")
	return nil
}

// detectionOrder returns the lines sorted by line number. Manual positions
// refer to the stored order; every other mode starts from detection.
func detectionOrder(lines []models.Line) []models.Line {
	out := append([]models.Line(nil), lines...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].LineNumber < out[j].LineNumber })
	return out
}

func (s *Service) lineSetInTx(tx interfaces.Tx, pageID string) (*models.LineSet, error) {
	lineSet, err := tx.GetLineSet(pageID)
	if errors.Is(err, interfaces.ErrNotFound) {
		return &models.LineSet{PageID: pageID, Lines: []models.Line{}, DisplayOrder: []int{}}, nil
	}
	return lineSet, err
}
