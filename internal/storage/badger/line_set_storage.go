package badger

import (
	"errors"

	"github.com/ternarybob/folio/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// SaveLineSet inserts or replaces the detected lines of a page
func (s *txStore) SaveLineSet(lineSet *models.LineSet) error {
	if err := s.store.TxUpsert(s.txn, lineSet.PageID, lineSet); err != nil {
		return storageErr(err, "save line set")
	}
	return nil
}

// GetLineSet retrieves the detected lines of a page
func (s *txStore) GetLineSet(pageID string) (*models.LineSet, error) {
	var lineSet models.LineSet
	if err := s.store.TxGet(s.txn, pageID, &lineSet); err != nil {
		return nil, notFound(err, "line set", pageID)
	}
	return &lineSet, nil
}

// DeleteLineSet removes the detected lines of a page. Missing sets are ignored.
func (s *txStore) DeleteLineSet(pageID string) error {
	err := s.store.TxDelete(s.txn, pageID, &models.LineSet{})
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return storageErr(err, "delete line set")
	}
	return nil
}
