package badger

import (
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// InsertVersion appends a version and assigns its ID
func (s *txStore) InsertVersion(v *models.TranscriptionVersion) error {
	if v.ID != 0 {
		return fmt.Errorf("%w: version %d already has an ID", interfaces.ErrValidation, v.ID)
	}
	id, err := s.ids.next("version")
	if err != nil {
		return storageErr(err, "insert version")
	}
	v.ID = id
	if err := s.store.TxInsert(s.txn, id, v); err != nil {
		return storageErr(err, "insert version")
	}
	return nil
}

// GetVersion retrieves a version by ID
func (s *txStore) GetVersion(id uint64) (*models.TranscriptionVersion, error) {
	var v models.TranscriptionVersion
	if err := s.store.TxGet(s.txn, id, &v); err != nil {
		return nil, notFound(err, "version", id)
	}
	return &v, nil
}

// FindVersionByHash returns the newest version of a transcription with the
// given content hash
func (s *txStore) FindVersionByHash(transcriptionID uint64, contentHash string) (*models.TranscriptionVersion, error) {
	var results []models.TranscriptionVersion
	query := badgerhold.Where("TranscriptionID").Eq(transcriptionID).And("ContentHash").Eq(contentHash)
	if err := s.store.TxFind(s.txn, &results, query); err != nil {
		return nil, storageErr(err, "find version by hash")
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: version with hash %s", interfaces.ErrNotFound, contentHash)
	}
	newest := 0
	for i := range results {
		if newerVersion(&results[i], &results[newest]) {
			newest = i
		}
	}
	return &results[newest], nil
}

// TouchVersion sets CreatedAt of an existing version
func (s *txStore) TouchVersion(id uint64, at time.Time) error {
	v, err := s.GetVersion(id)
	if err != nil {
		return err
	}
	v.CreatedAt = at
	if err := s.store.TxUpdate(s.txn, id, v); err != nil {
		return storageErr(err, "touch version")
	}
	return nil
}

// ListVersions returns all versions of a transcription, newest first.
// Versions sharing a timestamp are ordered by descending ID.
func (s *txStore) ListVersions(transcriptionID uint64) ([]*models.TranscriptionVersion, error) {
	var results []models.TranscriptionVersion
	if err := s.store.TxFind(s.txn, &results, badgerhold.Where("TranscriptionID").Eq(transcriptionID)); err != nil {
		return nil, storageErr(err, "list versions")
	}
	sort.SliceStable(results, func(i, j int) bool {
		return newerVersion(&results[i], &results[j])
	})
	out := make([]*models.TranscriptionVersion, len(results))
	for i := range results {
		out[i] = &results[i]
	}
	return out, nil
}

// CountVersions returns the number of versions of a transcription
func (s *txStore) CountVersions(transcriptionID uint64) (int, error) {
	count, err := s.store.TxCount(s.txn, &models.TranscriptionVersion{}, badgerhold.Where("TranscriptionID").Eq(transcriptionID))
	if err != nil {
		return 0, storageErr(err, "count versions")
	}
	return int(count), nil
}

// DeleteVersion removes one version
func (s *txStore) DeleteVersion(id uint64) error {
	if err := s.store.TxDelete(s.txn, id, &models.TranscriptionVersion{}); err != nil {
		return notFound(err, "version", id)
	}
	return nil
}

// DeleteVersionsByTranscription removes every version of a transcription
func (s *txStore) DeleteVersionsByTranscription(transcriptionID uint64) error {
	query := badgerhold.Where("TranscriptionID").Eq(transcriptionID)
	if err := s.store.TxDeleteMatching(s.txn, &models.TranscriptionVersion{}, query); err != nil {
		return storageErr(err, "delete versions")
	}
	return nil
}

func newerVersion(a, b *models.TranscriptionVersion) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
