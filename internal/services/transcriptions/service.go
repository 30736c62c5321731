// Package transcriptions applies edits, restores and model copies to page
// transcriptions, recording versions and deriving the ground truth flag.
package transcriptions

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
	"github.com/ternarybob/folio/internal/services/text"
	"github.com/ternarybob/folio/internal/services/versions"
)

var _ interfaces.TranscriptionService = (*Service)(nil)

// Service implements interfaces.TranscriptionService
type Service struct {
	storage  interfaces.StorageManager
	versions *versions.Service
	logger   arbor.ILogger
	now      func() time.Time
}

// NewService creates a new transcription service
func NewService(storage interfaces.StorageManager, versionService *versions.Service, logger arbor.ILogger) *Service {
	return &Service{
		storage:  storage,
		versions: versionService,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func validType(t models.TranscriptionType) error {
	if !t.IsValid() {
		return fmt.Errorf("%w: type must be 'manual' or 'model', got %q", interfaces.ErrValidation, t)
	}
	return nil
}

// Get returns a transcription with its lines. A page without a transcription
// of the requested type yields an empty view with ID 0.
func (s *Service) Get(ctx context.Context, pageID string, transcriptionType models.TranscriptionType) (*models.TranscriptionView, error) {
	if err := validType(transcriptionType); err != nil {
		return nil, err
	}

	var view *models.TranscriptionView
	err := s.storage.View(ctx, func(tx interfaces.Tx) error {
		if _, err := tx.GetPage(pageID); err != nil {
			return err
		}
		t, err := tx.FindTranscription(pageID, transcriptionType)
		if errors.Is(err, interfaces.ErrNotFound) {
			view = &models.TranscriptionView{
				PageID:    pageID,
				Type:      transcriptionType,
				UpdatedAt: s.now(),
				Lines:     []models.TranscriptionLine{},
			}
			return nil
		}
		if err != nil {
			return err
		}
		view, err = s.viewInTx(tx, t)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// UpdateManual replaces the manual transcription of a page with the incoming
// lines. The normalized incoming content is versioned as "Auto-save" before
// the active lines are replaced.
func (s *Service) UpdateManual(ctx context.Context, pageID string, update *models.TranscriptionUpdate) (*models.TranscriptionView, error) {
	if err := update.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrValidation, err)
	}

	var view *models.TranscriptionView
	err := s.storage.Update(ctx, func(tx interfaces.Tx) error {
		var err error
		view, err = s.updateManualInTx(tx, pageID, update)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("page_id", pageID).
		Int("line_count", len(update.Lines)).
		Int64("revision", int64(view.Revision)).
		Msg("Manual transcription updated")
	return view, nil
}

func (s *Service) updateManualInTx(tx interfaces.Tx, pageID string, update *models.TranscriptionUpdate) (*models.TranscriptionView, error) {
	page, err := tx.GetPage(pageID)
	if err != nil {
		return nil, err
	}

	t, err := s.getOrCreate(tx, pageID, models.TranscriptionManual)
	if err != nil {
		return nil, err
	}
	if update.ExpectedRevision != 0 && update.ExpectedRevision != t.Revision {
		return nil, fmt.Errorf("%w: transcription %d is at revision %d, expected %d",
			interfaces.ErrConflict, t.ID, t.Revision, update.ExpectedRevision)
	}

	lines := toLines(text.NormalizeLines(update.Lines), false)
	if _, err := s.versions.SaveInTx(tx, t.ID, models.Snapshots(lines), models.SummaryAutoSave); err != nil {
		return nil, err
	}
	if err := tx.ReplaceLines(t.ID, lines); err != nil {
		return nil, err
	}

	t.Source = models.SourceManual
	if update.Source != "" {
		t.Source = update.Source
	}
	if err := s.touch(tx, t); err != nil {
		return nil, err
	}

	if err := s.markGroundTruth(tx, page, lines); err != nil {
		return nil, err
	}

	return s.viewInTx(tx, t)
}

// ImportInTx replaces the manual transcription with imported lines. Existing
// content is recorded as "Before import" and the result as "Imported from file".
func (s *Service) ImportInTx(tx interfaces.Tx, pageID string, inputs []models.TranscriptionLineInput) (*models.TranscriptionView, error) {
	page, err := tx.GetPage(pageID)
	if err != nil {
		return nil, err
	}

	t, err := s.getOrCreate(tx, pageID, models.TranscriptionManual)
	if err != nil {
		return nil, err
	}

	current, err := tx.GetLines(t.ID)
	if err != nil {
		return nil, err
	}
	if len(current) > 0 {
		if _, err := s.versions.RecordInTx(tx, t.ID, models.Snapshots(current), models.SummaryBeforeImport); err != nil {
			return nil, err
		}
	}

	lines := toLines(text.NormalizeLines(inputs), false)
	if err := tx.ReplaceLines(t.ID, lines); err != nil {
		return nil, err
	}
	if _, err := s.versions.RecordInTx(tx, t.ID, models.Snapshots(lines), models.SummaryImported); err != nil {
		return nil, err
	}

	t.Source = models.SourceImported
	if err := s.touch(tx, t); err != nil {
		return nil, err
	}
	if err := s.markGroundTruth(tx, page, lines); err != nil {
		return nil, err
	}

	return s.viewInTx(tx, t)
}

// RestoreVersion replaces the active lines of the version's transcription
// with the version snapshot. The version must belong to a transcription of
// the given page.
func (s *Service) RestoreVersion(ctx context.Context, pageID string, versionID uint64) (*models.TranscriptionView, error) {
	var view *models.TranscriptionView
	err := s.storage.Update(ctx, func(tx interfaces.Tx) error {
		page, err := tx.GetPage(pageID)
		if err != nil {
			return err
		}
		version, err := tx.GetVersion(versionID)
		if err != nil {
			return err
		}
		t, err := tx.GetTranscription(version.TranscriptionID)
		if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
			return err
		}
		if t == nil || t.PageID != pageID {
			return fmt.Errorf("%w: version %d does not belong to page %s", interfaces.ErrValidation, versionID, pageID)
		}

		current, err := tx.GetLines(t.ID)
		if err != nil {
			return err
		}
		if len(current) > 0 {
			if _, err := s.versions.RecordInTx(tx, t.ID, models.Snapshots(current), models.SummaryBeforeRestore); err != nil {
				return err
			}
		}

		lines := make([]models.TranscriptionLine, len(version.LinesSnapshot))
		for i, snap := range version.LinesSnapshot {
			lines[i] = models.TranscriptionLine{
				LineNumber:   snap.LineNumber,
				DisplayOrder: i,
				Text:         snap.Text,
				Notes:        copyString(snap.Notes),
			}
		}
		if err := tx.ReplaceLines(t.ID, lines); err != nil {
			return err
		}

		summary := fmt.Sprintf("%s %d", models.SummaryRestoredFrom, versionID)
		if _, err := s.versions.RecordInTx(tx, t.ID, version.LinesSnapshot, summary); err != nil {
			return err
		}

		if err := s.touch(tx, t); err != nil {
			return err
		}
		if t.Type == models.TranscriptionManual {
			if err := s.markGroundTruth(tx, page, lines); err != nil {
				return err
			}
		}

		view, err = s.viewInTx(tx, t)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("page_id", pageID).
		Int64("version_id", int64(versionID)).
		Msg("Transcription restored from version")
	return view, nil
}

// CopyFromModel replaces the manual transcription with the model lines,
// ordered by line number and with confidence cleared
func (s *Service) CopyFromModel(ctx context.Context, pageID string) (*models.TranscriptionView, error) {
	var view *models.TranscriptionView
	err := s.storage.Update(ctx, func(tx interfaces.Tx) error {
		page, err := tx.GetPage(pageID)
		if err != nil {
			return err
		}
		model, err := tx.FindTranscription(pageID, models.TranscriptionModel)
		if errors.Is(err, interfaces.ErrNotFound) {
			return fmt.Errorf("%w: no model transcription for page %s", interfaces.ErrNotFound, pageID)
		}
		if err != nil {
			return err
		}

		modelLines, err := tx.GetLines(model.ID)
		if err != nil {
			return err
		}
		sort.SliceStable(modelLines, func(i, j int) bool {
			return modelLines[i].LineNumber < modelLines[j].LineNumber
		})

		manual, err := s.getOrCreate(tx, pageID, models.TranscriptionManual)
		if err != nil {
			return err
		}

		current, err := tx.GetLines(manual.ID)
		if err != nil {
			return err
		}
		if len(current) > 0 {
			if _, err := s.versions.RecordInTx(tx, manual.ID, models.Snapshots(current), models.SummaryBeforeCopyFromModel); err != nil {
				return err
			}
		}

		lines := make([]models.TranscriptionLine, len(modelLines))
		for i, l := range modelLines {
			lines[i] = models.TranscriptionLine{
				LineNumber:   l.LineNumber,
				DisplayOrder: l.DisplayOrder,
				Text:         l.Text,
				Notes:        copyString(l.Notes),
			}
		}
		if err := tx.ReplaceLines(manual.ID, lines); err != nil {
			return err
		}
		if _, err := s.versions.RecordInTx(tx, manual.ID, models.Snapshots(lines), models.SummaryCopiedFromModel); err != nil {
			return err
		}

		manual.Source = models.SourceCopiedFromModel
		if err := s.touch(tx, manual); err != nil {
			return err
		}
		if err := s.markGroundTruth(tx, page, lines); err != nil {
			return err
		}

		view, err = s.viewInTx(tx, manual)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("page_id", pageID).Int("line_count", len(view.Lines)).Msg("Transcription copied from model")
	return view, nil
}

// SaveModelOutput stores recogniser output as the page's model transcription
func (s *Service) SaveModelOutput(ctx context.Context, pageID string, output *models.ModelOutput) (*models.TranscriptionView, error) {
	if err := output.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrValidation, err)
	}

	var view *models.TranscriptionView
	err := s.storage.Update(ctx, func(tx interfaces.Tx) error {
		if _, err := tx.GetPage(pageID); err != nil {
			return err
		}
		t, err := s.getOrCreate(tx, pageID, models.TranscriptionModel)
		if err != nil {
			return err
		}

		lines := toLines(text.NormalizeLines(output.Lines), true)
		if _, err := s.versions.SaveInTx(tx, t.ID, models.Snapshots(lines), models.SummaryModelInference); err != nil {
			return err
		}
		if err := tx.ReplaceLines(t.ID, lines); err != nil {
			return err
		}

		t.ModelVersion = output.ModelVersion
		if err := s.touch(tx, t); err != nil {
			return err
		}

		view, err = s.viewInTx(tx, t)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("page_id", pageID).
		Str("model_version", output.ModelVersion).
		Int("line_count", len(output.Lines)).
		Msg("Model transcription saved")
	return view, nil
}

// History lists the versions of a page's transcription, newest first
func (s *Service) History(ctx context.Context, pageID string, transcriptionType models.TranscriptionType, offset, limit int, includeSnapshot bool) (*models.VersionHistory, error) {
	if err := validType(transcriptionType); err != nil {
		return nil, err
	}

	var history *models.VersionHistory
	err := s.storage.View(ctx, func(tx interfaces.Tx) error {
		if _, err := tx.GetPage(pageID); err != nil {
			return err
		}
		var transcriptionID uint64
		t, err := tx.FindTranscription(pageID, transcriptionType)
		switch {
		case err == nil:
			transcriptionID = t.ID
		case errors.Is(err, interfaces.ErrNotFound):
			// ID 0 is never assigned, so the listing is empty
		default:
			return err
		}
		history, err = s.versions.ListInTx(tx, transcriptionID, offset, limit, includeSnapshot)
		return err
	})
	if err != nil {
		return nil, err
	}
	return history, nil
}

func (s *Service) getOrCreate(tx interfaces.Tx, pageID string, transcriptionType models.TranscriptionType) (*models.Transcription, error) {
	t, err := tx.FindTranscription(pageID, transcriptionType)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, err
	}

	now := s.now()
	t = &models.Transcription{
		PageID:    pageID,
		Type:      transcriptionType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if transcriptionType == models.TranscriptionManual {
		t.Source = models.SourceManual
	}
	if err := tx.CreateTranscription(t); err != nil {
		return nil, err
	}
	return t, nil
}

// touch bumps the revision and stores the transcription
func (s *Service) touch(tx interfaces.Tx, t *models.Transcription) error {
	t.Revision++
	t.UpdatedAt = s.now()
	return tx.SaveTranscription(t)
}

func (s *Service) viewInTx(tx interfaces.Tx, t *models.Transcription) (*models.TranscriptionView, error) {
	lines, err := tx.GetLines(t.ID)
	if err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []models.TranscriptionLine{}
	}
	return &models.TranscriptionView{
		ID:           t.ID,
		PageID:       t.PageID,
		Type:         t.Type,
		Source:       t.Source,
		ModelVersion: t.ModelVersion,
		Revision:     t.Revision,
		UpdatedAt:    t.UpdatedAt,
		Lines:        lines,
	}, nil
}

// toLines converts request lines into stored lines. A missing display order
// defaults to the line's position in the request.
func toLines(inputs []models.TranscriptionLineInput, keepConfidence bool) []models.TranscriptionLine {
	lines := make([]models.TranscriptionLine, len(inputs))
	for i, in := range inputs {
		lines[i] = models.TranscriptionLine{
			LineNumber:   in.LineNumber,
			DisplayOrder: i,
			Text:         in.Text,
			Notes:        copyString(in.Notes),
		}
		if in.DisplayOrder != nil {
			lines[i].DisplayOrder = *in.DisplayOrder
		}
		if keepConfidence && in.Confidence != nil {
			c := *in.Confidence
			lines[i].Confidence = &c
		}
	}
	return lines
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
