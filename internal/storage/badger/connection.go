package badger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
	"github.com/timshannon/badgerhold/v4"
)

// BadgerDB owns the badgerhold store holding pages, line sets,
// transcriptions and version snapshots
type BadgerDB struct {
	store  *badgerhold.Store
	logger arbor.ILogger
	path   string
}

// NewBadgerDB opens (and creates when missing) the database directory.
// With reset_on_startup the directory is wiped first.
func NewBadgerDB(logger arbor.ILogger, config *common.BadgerConfig) (*BadgerDB, error) {
	path := filepath.Clean(config.Path)

	if config.ResetOnStartup {
		if err := resetDatabase(logger, path); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory %s: %w", path, err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil // badger's own logger is noisy; failures surface through arbor
	// Snapshots are append-mostly and pruned by retention; compacting L0 on
	// close keeps the directory small between restarts
	options.CompactL0OnClose = true

	store, err := badgerhold.Open(options)
	if err != nil {
		logger.Error().Err(err).Str("path", path).Msg("Failed to open transcription database")
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	logger.Debug().Str("path", path).Msg("Transcription database opened")

	return &BadgerDB{store: store, logger: logger, path: path}, nil
}

func resetDatabase(logger arbor.ILogger, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	logger.Warn().Str("path", path).Msg("Deleting existing database (reset_on_startup=true)")
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to reset database %s: %w", path, err)
	}
	return nil
}

// Store returns the underlying badgerhold store
func (b *BadgerDB) Store() *badgerhold.Store {
	return b.store
}

// Close flushes and closes the store
func (b *BadgerDB) Close() error {
	if b.store == nil {
		return nil
	}
	if err := b.store.Close(); err != nil {
		return fmt.Errorf("failed to close database %s: %w", b.path, err)
	}
	b.store = nil
	return nil
}
