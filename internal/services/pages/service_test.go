package pages

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
	"github.com/ternarybob/folio/internal/storage/badger"
)

func newTestService(t *testing.T, mode string) (*Service, interfaces.StorageManager) {
	t.Helper()
	logger := arbor.NewLogger()
	storage, err := badger.NewManager(logger, &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	return NewService(storage, common.OrderingConfig{ColumnThreshold: 0.1, DefaultMode: mode}, logger), storage
}

func detected(x1, x2, y float64) models.DetectedLine {
	return models.DetectedLine{
		Baseline: []models.Point{{x1, y}, {x2, y}},
		Boundary: []models.Point{{x1, y - 10}, {x2, y - 10}, {x2, y + 10}, {x1, y + 10}},
	}
}

// twoColumns is detected left column first: 0,1 on the left and 2,3 on the right
func twoColumns() []models.DetectedLine {
	return []models.DetectedLine{
		detected(100, 200, 50),
		detected(100, 200, 100),
		detected(400, 500, 50),
		detected(400, 500, 100),
	}
}

func lineNumbers(ls *models.LineSet) []int {
	out := make([]int, len(ls.Lines))
	for i, l := range ls.Lines {
		out[i] = l.LineNumber
	}
	return out
}

func TestCreatePage(t *testing.T) {
	svc, _ := newTestService(t, "rtl")
	ctx := context.Background()

	page, err := svc.CreatePage(ctx, "doc_1", 2)
	require.NoError(t, err)
	assert.Contains(t, page.ID, "page_")
	assert.Equal(t, models.LineOrderRTL, page.LineOrderMode)
	assert.False(t, page.IsGroundTruth)

	_, err = svc.CreatePage(ctx, "doc_1", 1)
	require.NoError(t, err)

	_, err = svc.CreatePage(ctx, "doc_1", 2)
	assert.ErrorIs(t, err, interfaces.ErrConflict)

	_, err = svc.CreatePage(ctx, "doc_1", 0)
	assert.ErrorIs(t, err, interfaces.ErrValidation)

	_, err = svc.CreatePage(ctx, "", 3)
	assert.ErrorIs(t, err, interfaces.ErrValidation)

	pages, err := svc.ListPages(ctx, "doc_1")
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, 1, pages[0].PageNumber)
	assert.Equal(t, 2, pages[1].PageNumber)

	_, err = svc.GetPage(ctx, "page_missing")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestSetDetectedLinesUsesPageMode(t *testing.T) {
	svc, _ := newTestService(t, "rtl")
	ctx := context.Background()
	page, err := svc.CreatePage(ctx, "doc_1", 1)
	require.NoError(t, err)

	ls, err := svc.SetDetectedLines(ctx, page.ID, twoColumns())
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 0, 1}, lineNumbers(ls))
	assert.Equal(t, []int{0, 1, 2, 3}, ls.DisplayOrder)

	stored, err := svc.GetLines(ctx, page.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 0, 1}, lineNumbers(stored))

	// Re-detection replaces the whole set but keeps its creation time.
	again, err := svc.SetDetectedLines(ctx, page.ID, twoColumns()[:2])
	require.NoError(t, err)
	assert.Equal(t, 2, again.Count())
	assert.Equal(t, ls.CreatedAt.Unix(), again.CreatedAt.Unix())
}

func TestGetLinesWithoutDetection(t *testing.T) {
	svc, _ := newTestService(t, "auto")
	page, err := svc.CreatePage(context.Background(), "doc_1", 1)
	require.NoError(t, err)

	ls, err := svc.GetLines(context.Background(), page.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, ls.Count())
	assert.NotNil(t, ls.Lines)
}

func TestUpdateLineOrder(t *testing.T) {
	svc, _ := newTestService(t, "auto")
	ctx := context.Background()
	page, err := svc.CreatePage(ctx, "doc_1", 1)
	require.NoError(t, err)
	_, err = svc.SetDetectedLines(ctx, page.ID, twoColumns())
	require.NoError(t, err)

	result, err := svc.UpdateLineOrder(ctx, page.ID, &models.LineOrderUpdate{Mode: models.LineOrderRTL})
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, 2, result.ColumnCount)
	assert.Equal(t, []int{2, 3, 0, 1}, lineNumbers(result.LineSet))

	// Applying the same mode to its own output changes nothing.
	again, err := svc.UpdateLineOrder(ctx, page.ID, &models.LineOrderUpdate{Mode: models.LineOrderRTL})
	require.NoError(t, err)
	assert.Equal(t, lineNumbers(result.LineSet), lineNumbers(again.LineSet))

	// Auto returns to detection order.
	auto, err := svc.UpdateLineOrder(ctx, page.ID, &models.LineOrderUpdate{Mode: models.LineOrderAuto})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, lineNumbers(auto.LineSet))

	// Manual positions refer to the stored order.
	manual, err := svc.UpdateLineOrder(ctx, page.ID, &models.LineOrderUpdate{Mode: models.LineOrderManual, DisplayOrder: []int{3, 2, 1, 0}})
	require.NoError(t, err)
	assert.True(t, manual.Applied)
	assert.Equal(t, []int{3, 2, 1, 0}, lineNumbers(manual.LineSet))

	stored, err := svc.GetPage(ctx, page.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LineOrderManual, stored.LineOrderMode)
}

func TestUpdateLineOrderManualMismatchIsNoop(t *testing.T) {
	svc, _ := newTestService(t, "ltr")
	ctx := context.Background()
	page, err := svc.CreatePage(ctx, "doc_1", 1)
	require.NoError(t, err)
	_, err = svc.SetDetectedLines(ctx, page.ID, twoColumns())
	require.NoError(t, err)

	result, err := svc.UpdateLineOrder(ctx, page.ID, &models.LineOrderUpdate{Mode: models.LineOrderManual, DisplayOrder: []int{1, 0}})
	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.NotEmpty(t, result.Warning)
	assert.Equal(t, models.LineOrderLTR, result.Mode)
	assert.Equal(t, []int{0, 1, 2, 3}, lineNumbers(result.LineSet))

	stored, err := svc.GetPage(ctx, page.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LineOrderLTR, stored.LineOrderMode)
}

func TestUpdateLineOrderValidation(t *testing.T) {
	svc, _ := newTestService(t, "auto")
	ctx := context.Background()
	page, err := svc.CreatePage(ctx, "doc_1", 1)
	require.NoError(t, err)

	_, err = svc.UpdateLineOrder(ctx, page.ID, &models.LineOrderUpdate{Mode: "diagonal"})
	assert.ErrorIs(t, err, interfaces.ErrValidation)

	_, err = svc.UpdateLineOrder(ctx, page.ID, &models.LineOrderUpdate{Mode: models.LineOrderManual})
	assert.ErrorIs(t, err, interfaces.ErrValidation)

	_, err = svc.UpdateLineOrder(ctx, "page_missing", &models.LineOrderUpdate{Mode: models.LineOrderRTL})
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestProgress(t *testing.T) {
	svc, storage := newTestService(t, "auto")
	ctx := context.Background()
	page, err := svc.CreatePage(ctx, "doc_1", 1)
	require.NoError(t, err)
	_, err = svc.SetDetectedLines(ctx, page.ID, twoColumns())
	require.NoError(t, err)

	err = storage.Update(ctx, func(tx interfaces.Tx) error {
		manual := &models.Transcription{PageID: page.ID, Type: models.TranscriptionManual}
		if err := tx.CreateTranscription(manual); err != nil {
			return err
		}
		if err := tx.CreateTranscription(&models.Transcription{PageID: page.ID, Type: models.TranscriptionModel}); err != nil {
			return err
		}
		return tx.ReplaceLines(manual.ID, []models.TranscriptionLine{
			{LineNumber: 0, Text: "one"},
			{LineNumber: 1, DisplayOrder: 1, Text: " "},
			{LineNumber: 2, DisplayOrder: 2, Text: "three"},
		})
	})
	require.NoError(t, err)

	progress, err := svc.Progress(ctx, page.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, progress.DetectedLines)
	assert.Equal(t, 2, progress.FilledLines)
	assert.InDelta(t, 50.0, progress.ManualTranscriptionPercent, 0.001)
	assert.True(t, progress.HasModelTranscription)
	assert.False(t, progress.IsGroundTruth)
}

func TestDeletePageCascades(t *testing.T) {
	svc, storage := newTestService(t, "auto")
	ctx := context.Background()
	page, err := svc.CreatePage(ctx, "doc_1", 1)
	require.NoError(t, err)
	_, err = svc.SetDetectedLines(ctx, page.ID, twoColumns())
	require.NoError(t, err)

	var transcriptionID uint64
	err = storage.Update(ctx, func(tx interfaces.Tx) error {
		tr := &models.Transcription{PageID: page.ID, Type: models.TranscriptionManual}
		if err := tx.CreateTranscription(tr); err != nil {
			return err
		}
		transcriptionID = tr.ID
		return tx.InsertVersion(&models.TranscriptionVersion{TranscriptionID: tr.ID, ContentHash: "h", ChangeSummary: models.SummaryAutoSave})
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePage(ctx, page.ID))

	err = storage.View(ctx, func(tx interfaces.Tx) error {
		_, err := tx.GetPage(page.ID)
		assert.ErrorIs(t, err, interfaces.ErrNotFound)
		_, err = tx.GetLineSet(page.ID)
		assert.ErrorIs(t, err, interfaces.ErrNotFound)
		_, err = tx.GetTranscription(transcriptionID)
		assert.ErrorIs(t, err, interfaces.ErrNotFound)
		count, err := tx.CountVersions(transcriptionID)
		assert.NoError(t, err)
		assert.Zero(t, count)
		return nil
	})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeletePage(ctx, page.ID), interfaces.ErrNotFound)
}
