package versions

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
	"github.com/ternarybob/folio/internal/storage/badger"
)

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestService(t *testing.T, config common.VersionsConfig) (*Service, interfaces.StorageManager, *testClock) {
	t.Helper()
	logger := arbor.NewLogger()
	storage, err := badger.NewManager(logger, &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	clock := &testClock{t: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	svc := NewService(storage, config, logger)
	svc.now = clock.now
	return svc, storage, clock
}

func snapshot(texts ...string) []models.SnapshotLine {
	lines := make([]models.SnapshotLine, len(texts))
	for i, text := range texts {
		lines[i] = models.SnapshotLine{LineNumber: i, Text: text}
	}
	return lines
}

func listVersions(t *testing.T, storage interfaces.StorageManager, transcriptionID uint64) []*models.TranscriptionVersion {
	t.Helper()
	var versions []*models.TranscriptionVersion
	err := storage.View(context.Background(), func(tx interfaces.Tx) error {
		var err error
		versions, err = tx.ListVersions(transcriptionID)
		return err
	})
	require.NoError(t, err)
	return versions
}

func TestSaveVersionDeduplicates(t *testing.T) {
	svc, storage, clock := newTestService(t, common.VersionsConfig{MaxVersions: 100, RetentionDays: 30})
	ctx := context.Background()

	first, err := svc.SaveVersion(ctx, 1, snapshot("a", "b"), models.SummaryAutoSave)
	require.NoError(t, err)
	assert.False(t, first.Deduplicated)

	clock.advance(time.Minute)
	_, err = svc.SaveVersion(ctx, 1, snapshot("a", "c"), models.SummaryAutoSave)
	require.NoError(t, err)

	clock.advance(time.Minute)
	again, err := svc.SaveVersion(ctx, 1, snapshot("a", "b"), models.SummaryAutoSave)
	require.NoError(t, err)
	assert.True(t, again.Deduplicated)
	assert.Equal(t, first.Version.ID, again.Version.ID)

	versions := listVersions(t, storage, 1)
	require.Len(t, versions, 2)
	assert.Equal(t, first.Version.ID, versions[0].ID, "touched version becomes newest")
	assert.True(t, versions[0].CreatedAt.Equal(clock.now()))
}

func TestSaveVersionScopedByTranscription(t *testing.T) {
	svc, storage, _ := newTestService(t, common.VersionsConfig{MaxVersions: 100, RetentionDays: 30})
	ctx := context.Background()

	_, err := svc.SaveVersion(ctx, 1, snapshot("same"), "")
	require.NoError(t, err)
	res, err := svc.SaveVersion(ctx, 2, snapshot("same"), "")
	require.NoError(t, err)
	assert.False(t, res.Deduplicated)
	assert.Equal(t, models.SummaryAutoSave, res.Version.ChangeSummary)

	assert.Len(t, listVersions(t, storage, 1), 1)
	assert.Len(t, listVersions(t, storage, 2), 1)
}

func TestRetentionKeepsProtectedAndRecent(t *testing.T) {
	svc, storage, clock := newTestService(t, common.VersionsConfig{MaxVersions: 3, RetentionDays: 30})
	ctx := context.Background()

	// Five old versions, two of them protected.
	summaries := []string{
		models.SummaryAutoSave,
		models.SummaryImported,
		models.SummaryAutoSave,
		models.SummaryRestoredFrom + " 12",
		models.SummaryAutoSave,
	}
	for i, summary := range summaries {
		_, err := svc.SaveVersion(ctx, 1, snapshot(fmt.Sprintf("old %d", i)), summary)
		require.NoError(t, err)
		clock.advance(time.Minute)
	}
	assert.Len(t, listVersions(t, storage, 1), 5)

	clock.advance(40 * 24 * time.Hour)
	for i := 0; i < 2; i++ {
		_, err := svc.SaveVersion(ctx, 1, snapshot(fmt.Sprintf("new %d", i)), models.SummaryAutoSave)
		require.NoError(t, err)
		clock.advance(time.Minute)
	}

	versions := listVersions(t, storage, 1)
	var remaining []string
	for _, v := range versions {
		remaining = append(remaining, v.LinesSnapshot[0].Text)
	}
	// Newest three always kept; beyond them only protected versions survive.
	assert.Equal(t, []string{"new 1", "new 0", "old 4", "old 3", "old 1"}, remaining)
}

func TestRetentionKeepsYoungVersionsBeyondCap(t *testing.T) {
	svc, storage, clock := newTestService(t, common.VersionsConfig{MaxVersions: 2, RetentionDays: 30})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.SaveVersion(ctx, 1, snapshot(fmt.Sprintf("v%d", i)), models.SummaryAutoSave)
		require.NoError(t, err)
		clock.advance(24 * time.Hour)
	}
	assert.Len(t, listVersions(t, storage, 1), 5)

	clock.advance(60 * 24 * time.Hour)
	deleted, err := svc.ApplyRetention(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)
	assert.Len(t, listVersions(t, storage, 1), 2)
}

func TestRetentionNoopUnderCap(t *testing.T) {
	svc, storage, clock := newTestService(t, common.VersionsConfig{MaxVersions: 10, RetentionDays: 1})
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := svc.SaveVersion(ctx, 1, snapshot(fmt.Sprintf("v%d", i)), models.SummaryAutoSave)
		require.NoError(t, err)
	}
	clock.advance(365 * 24 * time.Hour)

	deleted, err := svc.ApplyRetention(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.Len(t, listVersions(t, storage, 1), 4)
}

func TestIsProtected(t *testing.T) {
	tests := []struct {
		summary   string
		protected bool
	}{
		{models.SummaryImported, true},
		{models.SummaryCopiedFromModel, true},
		{models.SummaryBeforeRestore, true},
		{models.SummaryBeforeCopyFromModel, true},
		{"Restored from version 42", true},
		{models.SummaryRestoredFrom, true},
		{models.SummaryAutoSave, false},
		{models.SummaryModelInference, false},
		{models.SummaryBeforeImport, false},
		{"imported from file", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.protected, IsProtected(tt.summary), tt.summary)
	}
}

func TestListInTxPaginates(t *testing.T) {
	svc, storage, clock := newTestService(t, common.VersionsConfig{MaxVersions: 100, RetentionDays: 30})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.SaveVersion(ctx, 9, snapshot(fmt.Sprintf("v%d", i)), models.SummaryAutoSave)
		require.NoError(t, err)
		clock.advance(time.Second)
	}

	err := storage.View(ctx, func(tx interfaces.Tx) error {
		history, err := svc.ListInTx(tx, 9, 1, 2, false)
		require.NoError(t, err)
		assert.Equal(t, 5, history.Total)
		require.Len(t, history.Versions, 2)
		assert.Equal(t, 1, history.Versions[0].LineCount)
		assert.Nil(t, history.Versions[0].LinesSnapshot)

		withSnapshot, err := svc.ListInTx(tx, 9, 0, 0, true)
		require.NoError(t, err)
		assert.Equal(t, DefaultHistoryLimit, withSnapshot.Limit)
		require.Len(t, withSnapshot.Versions, 5)
		assert.Equal(t, "v4", withSnapshot.Versions[0].LinesSnapshot[0].Text)

		_, err = svc.ListInTx(tx, 9, 0, MaxHistoryLimit+1, false)
		assert.ErrorIs(t, err, interfaces.ErrValidation)
		_, err = svc.ListInTx(tx, 9, -1, 10, false)
		assert.ErrorIs(t, err, interfaces.ErrValidation)
		return nil
	})
	require.NoError(t, err)
}

func TestSweepAll(t *testing.T) {
	svc, storage, clock := newTestService(t, common.VersionsConfig{MaxVersions: 1, RetentionDays: 30})
	ctx := context.Background()
	old := clock.now().AddDate(0, 0, -90)

	// Versions written directly so retention has not run yet.
	var ids []uint64
	err := storage.Update(ctx, func(tx interfaces.Tx) error {
		for p := 0; p < 2; p++ {
			tr := &models.Transcription{PageID: fmt.Sprintf("page_%d", p), Type: models.TranscriptionManual}
			if err := tx.CreateTranscription(tr); err != nil {
				return err
			}
			ids = append(ids, tr.ID)
			for i := 0; i < 3; i++ {
				v := &models.TranscriptionVersion{
					TranscriptionID: tr.ID,
					ContentHash:     fmt.Sprintf("hash-%d-%d", p, i),
					ChangeSummary:   models.SummaryAutoSave,
					CreatedAt:       old.Add(time.Duration(i) * time.Hour),
				}
				if err := tx.InsertVersion(v); err != nil {
					return err
				}
			}
		}
		return nil
	})
	require.NoError(t, err)

	deleted, err := svc.SweepAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, deleted)
	for _, id := range ids {
		assert.Len(t, listVersions(t, storage, id), 1)
	}
}

func TestRecordInTxAlwaysInserts(t *testing.T) {
	svc, storage, clock := newTestService(t, common.VersionsConfig{MaxVersions: 100, RetentionDays: 30})
	ctx := context.Background()

	saved, err := svc.SaveVersion(ctx, 3, snapshot("a"), models.SummaryAutoSave)
	require.NoError(t, err)
	clock.advance(time.Minute)

	err = storage.Update(ctx, func(tx interfaces.Tx) error {
		res, err := svc.RecordInTx(tx, 3, snapshot("a"), models.SummaryBeforeRestore)
		require.NoError(t, err)
		assert.False(t, res.Deduplicated)
		assert.NotEqual(t, saved.Version.ID, res.Version.ID)
		assert.Equal(t, saved.Version.ContentHash, res.Version.ContentHash)

		_, err = svc.RecordInTx(tx, 3, snapshot("a"), "")
		assert.ErrorIs(t, err, interfaces.ErrValidation)
		return nil
	})
	require.NoError(t, err)

	versions := listVersions(t, storage, 3)
	require.Len(t, versions, 2)
	assert.Equal(t, models.SummaryBeforeRestore, versions[0].ChangeSummary)

	// A later identical auto-save touches the newest matching row.
	clock.advance(time.Minute)
	again, err := svc.SaveVersion(ctx, 3, snapshot("a"), models.SummaryAutoSave)
	require.NoError(t, err)
	assert.True(t, again.Deduplicated)
	assert.Equal(t, versions[0].ID, again.Version.ID)
}
