package badger

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/timshannon/badgerhold/v4"
)

// txStore implements interfaces.Tx on top of a single badger transaction.
// Its methods are split across the *_storage.go files by record type.
type txStore struct {
	store  *badgerhold.Store
	txn    *badger.Txn
	ids    *sequences
	logger arbor.ILogger
}

var _ interfaces.Tx = (*txStore)(nil)

// notFound converts badgerhold's not-found error into the domain kind
func notFound(err error, what string, id interface{}) error {
	if errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("%w: %s %v", interfaces.ErrNotFound, what, id)
	}
	return fmt.Errorf("%w: failed to get %s %v: %v", interfaces.ErrStorage, what, id, err)
}

// storageErr wraps a failed store operation
func storageErr(err error, op string) error {
	return fmt.Errorf("%w: failed to %s: %v", interfaces.ErrStorage, op, err)
}
