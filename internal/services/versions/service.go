// Package versions keeps the append-only, deduplicated version log of
// transcriptions and prunes it under the retention policy.
package versions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// protectedSummaries are never removed by retention. Summaries starting with
// models.SummaryRestoredFrom are protected as well.
var protectedSummaries = map[string]bool{
	models.SummaryImported:            true,
	models.SummaryCopiedFromModel:     true,
	models.SummaryBeforeRestore:       true,
	models.SummaryBeforeCopyFromModel: true,
}

// IsProtected reports whether a version with this summary survives retention
func IsProtected(summary string) bool {
	return protectedSummaries[summary] || strings.HasPrefix(summary, models.SummaryRestoredFrom)
}

// SaveResult describes the outcome of SaveVersion
type SaveResult struct {
	// Version is the inserted version, or the existing one whose timestamp was refreshed
	Version      *models.TranscriptionVersion
	Deduplicated bool
	// Deleted is the number of versions removed by retention after the insert
	Deleted int
}

// Service manages transcription versions
type Service struct {
	storage interfaces.StorageManager
	config  common.VersionsConfig
	logger  arbor.ILogger
	now     func() time.Time
}

// NewService creates a new version service
func NewService(storage interfaces.StorageManager, config common.VersionsConfig, logger arbor.ILogger) *Service {
	if config.MaxVersions < 1 {
		config.MaxVersions = 100
	}
	if config.RetentionDays < 0 {
		config.RetentionDays = 30
	}
	return &Service{
		storage: storage,
		config:  config,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SaveVersion records a snapshot of a transcription in its own transaction
func (s *Service) SaveVersion(ctx context.Context, transcriptionID uint64, lines []models.SnapshotLine, summary string) (*SaveResult, error) {
	var result *SaveResult
	err := s.storage.Update(ctx, func(tx interfaces.Tx) error {
		var err error
		result, err = s.SaveInTx(tx, transcriptionID, lines, summary)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SaveInTx records a snapshot inside the caller's transaction. Identical
// content already stored for the transcription is not inserted again; its
// created_at is moved to now instead. A fresh insert is followed by retention.
func (s *Service) SaveInTx(tx interfaces.Tx, transcriptionID uint64, lines []models.SnapshotLine, summary string) (*SaveResult, error) {
	if summary == "" {
		summary = models.SummaryAutoSave
	}

	hash, err := Fingerprint(lines)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrValidation, err)
	}

	now := s.now()

	existing, err := tx.FindVersionByHash(transcriptionID, hash)
	if err == nil {
		if err := tx.TouchVersion(existing.ID, now); err != nil {
			return nil, err
		}
		existing.CreatedAt = now
		s.logger.Debug().
			Int64("transcription_id", int64(transcriptionID)).
			Int64("version_id", int64(existing.ID)).
			Msg("Version deduplicated")
		return &SaveResult{Version: existing, Deduplicated: true}, nil
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, err
	}

	return s.insertInTx(tx, transcriptionID, hash, lines, summary, now)
}

// RecordInTx always appends a version, even when identical content is already
// stored. Restore, copy and import use it so their before/after markers are
// present in the history regardless of earlier auto-saves.
func (s *Service) RecordInTx(tx interfaces.Tx, transcriptionID uint64, lines []models.SnapshotLine, summary string) (*SaveResult, error) {
	if summary == "" {
		return nil, fmt.Errorf("%w: change summary is required", interfaces.ErrValidation)
	}
	hash, err := Fingerprint(lines)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrValidation, err)
	}
	return s.insertInTx(tx, transcriptionID, hash, lines, summary, s.now())
}

func (s *Service) insertInTx(tx interfaces.Tx, transcriptionID uint64, hash string, lines []models.SnapshotLine, summary string, now time.Time) (*SaveResult, error) {
	version := &models.TranscriptionVersion{
		TranscriptionID: transcriptionID,
		ContentHash:     hash,
		LinesSnapshot:   models.CloneSnapshot(lines),
		ChangeSummary:   summary,
		CreatedAt:       now,
	}
	if err := tx.InsertVersion(version); err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int64("transcription_id", int64(transcriptionID)).
		Int64("version_id", int64(version.ID)).
		Str("hash", hash[:8]).
		Str("summary", summary).
		Msg("Version created")

	deleted, err := s.ApplyRetentionInTx(tx, transcriptionID)
	if err != nil {
		return nil, err
	}

	return &SaveResult{Version: version, Deleted: deleted}, nil
}

// ApplyRetention prunes the versions of one transcription in its own transaction
func (s *Service) ApplyRetention(ctx context.Context, transcriptionID uint64) (int, error) {
	var deleted int
	err := s.storage.Update(ctx, func(tx interfaces.Tx) error {
		var err error
		deleted, err = s.ApplyRetentionInTx(tx, transcriptionID)
		return err
	})
	return deleted, err
}

// ApplyRetentionInTx deletes versions that are beyond the newest MaxVersions,
// older than RetentionDays and not protected. It returns the number deleted.
func (s *Service) ApplyRetentionInTx(tx interfaces.Tx, transcriptionID uint64) (int, error) {
	versions, err := tx.ListVersions(transcriptionID)
	if err != nil {
		return 0, err
	}
	if len(versions) <= s.config.MaxVersions {
		return 0, nil
	}

	cutoff := s.now().AddDate(0, 0, -s.config.RetentionDays)

	deleted := 0
	for _, v := range versions[s.config.MaxVersions:] {
		if IsProtected(v.ChangeSummary) {
			continue
		}
		if !v.CreatedAt.Before(cutoff) {
			continue
		}
		if err := tx.DeleteVersion(v.ID); err != nil {
			return deleted, err
		}
		deleted++
	}

	if deleted > 0 {
		s.logger.Debug().
			Int64("transcription_id", int64(transcriptionID)).
			Int("deleted", deleted).
			Msg("Versions cleaned")
	}
	return deleted, nil
}

// ListInTx returns one page of a transcription's history, newest first
func (s *Service) ListInTx(tx interfaces.Tx, transcriptionID uint64, offset, limit int, includeSnapshot bool) (*models.VersionHistory, error) {
	if offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", interfaces.ErrValidation)
	}
	if limit == 0 {
		limit = DefaultHistoryLimit
	}
	if limit < 1 || limit > MaxHistoryLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", interfaces.ErrValidation, MaxHistoryLimit)
	}

	versions, err := tx.ListVersions(transcriptionID)
	if err != nil {
		return nil, err
	}

	history := &models.VersionHistory{
		TranscriptionID: transcriptionID,
		Total:           len(versions),
		Offset:          offset,
		Limit:           limit,
		Versions:        []models.VersionSummary{},
	}
	for i := offset; i < len(versions) && i < offset+limit; i++ {
		history.Versions = append(history.Versions, models.Summarise(versions[i], includeSnapshot))
	}
	return history, nil
}

// SweepAll applies retention to every transcription, one transaction each.
// It stops early when ctx is cancelled.
func (s *Service) SweepAll(ctx context.Context) (int, error) {
	var ids []uint64
	err := s.storage.View(ctx, func(tx interfaces.Tx) error {
		var err error
		ids, err = tx.ListTranscriptionIDs()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list transcriptions: %w", err)
	}

	start := time.Now()
	total := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		deleted, err := s.ApplyRetention(ctx, id)
		if err != nil {
			s.logger.Error().Err(err).Int64("transcription_id", int64(id)).Msg("Retention sweep failed for transcription")
			return total, err
		}
		total += deleted
	}

	s.logger.Info().
		Int("transcriptions", len(ids)).
		Int("deleted", total).
		Dur("duration", time.Since(start)).
		Msg("Retention sweep completed")
	return total, nil
}
