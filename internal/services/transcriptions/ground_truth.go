package transcriptions

import (
	"errors"
	"time"

	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

// EvaluateGroundTruth reports whether a page with detected lines and filled
// manual lines counts as fully transcribed
func EvaluateGroundTruth(detected, filled int) bool {
	return detected > 0 && filled >= detected
}

// markGroundTruth sets the page's ground truth flag when the manual lines
// cover every detected line. The flag is never cleared here.
func (s *Service) markGroundTruth(tx interfaces.Tx, page *models.Page, lines []models.TranscriptionLine) error {
	if page.IsGroundTruth {
		return nil
	}

	detected := 0
	lineSet, err := tx.GetLineSet(page.ID)
	switch {
	case err == nil:
		detected = lineSet.Count()
	case errors.Is(err, interfaces.ErrNotFound):
	default:
		return err
	}

	filled := models.FilledCount(lines)
	if !EvaluateGroundTruth(detected, filled) {
		return nil
	}

	page.IsGroundTruth = true
	page.UpdatedAt = time.Now().UTC()
	if err := tx.SavePage(page); err != nil {
		return err
	}

	s.logger.Info().
		Str("page_id", page.ID).
		Int("detected_lines", detected).
		Int("filled_lines", filled).
		Msg("Page marked as ground truth")
	return nil
}
