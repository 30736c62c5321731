package badger

import (
	"fmt"
	"sort"

	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// SavePage inserts or replaces a page
func (s *txStore) SavePage(page *models.Page) error {
	if page.ID == "" {
		return fmt.Errorf("%w: page ID is required", interfaces.ErrValidation)
	}
	if err := s.store.TxUpsert(s.txn, page.ID, page); err != nil {
		return storageErr(err, "save page")
	}
	return nil
}

// GetPage retrieves a page by ID
func (s *txStore) GetPage(id string) (*models.Page, error) {
	var page models.Page
	if err := s.store.TxGet(s.txn, id, &page); err != nil {
		return nil, notFound(err, "page", id)
	}
	return &page, nil
}

// ListPagesByDocument returns the pages of a document ordered by page number
func (s *txStore) ListPagesByDocument(documentID string) ([]*models.Page, error) {
	var pages []models.Page
	if err := s.store.TxFind(s.txn, &pages, badgerhold.Where("DocumentID").Eq(documentID)); err != nil {
		return nil, storageErr(err, "list pages")
	}

	sort.SliceStable(pages, func(i, j int) bool {
		if pages[i].PageNumber != pages[j].PageNumber {
			return pages[i].PageNumber < pages[j].PageNumber
		}
		return pages[i].ID < pages[j].ID
	})

	result := make([]*models.Page, len(pages))
	for i := range pages {
		result[i] = &pages[i]
	}
	return result, nil
}

// DeletePage removes a page record
func (s *txStore) DeletePage(id string) error {
	if err := s.store.TxDelete(s.txn, id, &models.Page{}); err != nil {
		return notFound(err, "page", id)
	}
	return nil
}
