package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db     *BadgerDB
	ids    *sequences
	logger arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (*Manager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("path", config.Path).Msg("Badger storage manager initialized")

	return &Manager{db: db, ids: newSequences(db.Store().Badger()), logger: logger}, nil
}

// Update runs fn in a read-write transaction. The transaction commits when fn
// returns nil and is discarded otherwise.
func (m *Manager) Update(ctx context.Context, fn func(tx interfaces.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := m.db.Store().Badger().Update(func(txn *badger.Txn) error {
		return fn(m.bind(txn))
	})
	return m.classify(err)
}

// View runs fn in a read-only transaction
func (m *Manager) View(ctx context.Context, fn func(tx interfaces.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := m.db.Store().Badger().View(func(txn *badger.Txn) error {
		return fn(m.bind(txn))
	})
	return m.classify(err)
}

func (m *Manager) bind(txn *badger.Txn) *txStore {
	return &txStore{store: m.db.Store(), txn: txn, ids: m.ids, logger: m.logger}
}

// classify marks commit failures raised by badger itself as storage errors.
// Errors returned by fn keep their own kind.
func (m *Manager) classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, badger.ErrConflict) || errors.Is(err, badger.ErrTxnTooBig) {
		m.logger.Error().Err(err).Msg("Transaction commit failed")
		return fmt.Errorf("%w: commit failed: %v", interfaces.ErrStorage, err)
	}
	return err
}

// DB returns the underlying badgerhold store
func (m *Manager) DB() interface{} {
	if m.db != nil {
		return m.db.Store()
	}
	return nil
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.ids != nil {
		m.ids.release()
	}
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
