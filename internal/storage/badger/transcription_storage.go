package badger

import (
	"fmt"
	"sort"

	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// CreateTranscription inserts a new transcription and assigns its ID
func (s *txStore) CreateTranscription(t *models.Transcription) error {
	if t.ID != 0 {
		return fmt.Errorf("%w: transcription %d already has an ID", interfaces.ErrValidation, t.ID)
	}
	id, err := s.ids.next("transcription")
	if err != nil {
		return storageErr(err, "create transcription")
	}
	t.ID = id
	if err := s.store.TxInsert(s.txn, id, t); err != nil {
		return storageErr(err, "create transcription")
	}
	s.logger.Debug().
		Int64("transcription_id", int64(t.ID)).
		Str("page_id", t.PageID).
		Str("type", string(t.Type)).
		Msg("Transcription created")
	return nil
}

// SaveTranscription updates an existing transcription
func (s *txStore) SaveTranscription(t *models.Transcription) error {
	if err := s.store.TxUpdate(s.txn, t.ID, t); err != nil {
		return notFound(err, "transcription", t.ID)
	}
	return nil
}

// GetTranscription retrieves a transcription by ID
func (s *txStore) GetTranscription(id uint64) (*models.Transcription, error) {
	var t models.Transcription
	if err := s.store.TxGet(s.txn, id, &t); err != nil {
		return nil, notFound(err, "transcription", id)
	}
	return &t, nil
}

// FindTranscription returns the transcription of a page for one type
func (s *txStore) FindTranscription(pageID string, transcriptionType models.TranscriptionType) (*models.Transcription, error) {
	var results []models.Transcription
	query := badgerhold.Where("PageID").Eq(pageID).And("Type").Eq(transcriptionType)
	if err := s.store.TxFind(s.txn, &results, query); err != nil {
		return nil, storageErr(err, "find transcription")
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %s transcription for page %s", interfaces.ErrNotFound, transcriptionType, pageID)
	}
	return &results[0], nil
}

// ListTranscriptionsByPage returns every transcription of a page
func (s *txStore) ListTranscriptionsByPage(pageID string) ([]*models.Transcription, error) {
	var results []models.Transcription
	if err := s.store.TxFind(s.txn, &results, badgerhold.Where("PageID").Eq(pageID)); err != nil {
		return nil, storageErr(err, "list transcriptions")
	}
	out := make([]*models.Transcription, len(results))
	for i := range results {
		out[i] = &results[i]
	}
	return out, nil
}

// ListTranscriptionIDs returns the ID of every stored transcription
func (s *txStore) ListTranscriptionIDs() ([]uint64, error) {
	var results []models.Transcription
	if err := s.store.TxFind(s.txn, &results, nil); err != nil {
		return nil, storageErr(err, "list transcriptions")
	}
	ids := make([]uint64, len(results))
	for i, t := range results {
		ids[i] = t.ID
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// DeleteTranscription removes a transcription together with its active lines
func (s *txStore) DeleteTranscription(id uint64) error {
	if err := s.deleteLines(id); err != nil {
		return err
	}
	if err := s.store.TxDelete(s.txn, id, &models.Transcription{}); err != nil {
		return notFound(err, "transcription", id)
	}
	return nil
}

// GetLines returns active lines ordered by display order, then line number
func (s *txStore) GetLines(transcriptionID uint64) ([]models.TranscriptionLine, error) {
	var lines []models.TranscriptionLine
	if err := s.store.TxFind(s.txn, &lines, badgerhold.Where("TranscriptionID").Eq(transcriptionID)); err != nil {
		return nil, storageErr(err, "get transcription lines")
	}
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].DisplayOrder != lines[j].DisplayOrder {
			return lines[i].DisplayOrder < lines[j].DisplayOrder
		}
		return lines[i].LineNumber < lines[j].LineNumber
	})
	return lines, nil
}

// ReplaceLines deletes every active line and inserts lines in their place.
// New IDs are written back into lines.
func (s *txStore) ReplaceLines(transcriptionID uint64, lines []models.TranscriptionLine) error {
	if err := s.deleteLines(transcriptionID); err != nil {
		return err
	}
	for i := range lines {
		id, err := s.ids.next("transcription_line")
		if err != nil {
			return storageErr(err, "insert transcription line")
		}
		lines[i].ID = id
		lines[i].TranscriptionID = transcriptionID
		if err := s.store.TxInsert(s.txn, id, &lines[i]); err != nil {
			return storageErr(err, "insert transcription line")
		}
	}
	return nil
}

func (s *txStore) deleteLines(transcriptionID uint64) error {
	query := badgerhold.Where("TranscriptionID").Eq(transcriptionID)
	if err := s.store.TxDeleteMatching(s.txn, &models.TranscriptionLine{}, query); err != nil {
		return storageErr(err, "delete transcription lines")
	}
	return nil
}
