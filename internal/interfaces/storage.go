package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/folio/internal/models"
)

// StorageManager runs logical operations against the transactional store.
// Every call to Update commits atomically or not at all.
type StorageManager interface {
	// Update runs fn in a read-write transaction
	Update(ctx context.Context, fn func(tx Tx) error) error

	// View runs fn in a read-only transaction
	View(ctx context.Context, fn func(tx Tx) error) error

	Close() error
}

// Tx is the set of storage operations bound to one transaction
type Tx interface {
	PageStorage
	LineSetStorage
	TranscriptionStorage
	VersionStorage
}

// PageStorage - interface for page persistence
type PageStorage interface {
	SavePage(page *models.Page) error
	GetPage(id string) (*models.Page, error)
	ListPagesByDocument(documentID string) ([]*models.Page, error)
	DeletePage(id string) error
}

// LineSetStorage - interface for detected line persistence (one set per page)
type LineSetStorage interface {
	SaveLineSet(lineSet *models.LineSet) error
	GetLineSet(pageID string) (*models.LineSet, error)
	DeleteLineSet(pageID string) error
}

// TranscriptionStorage - interface for transcriptions and their active lines
type TranscriptionStorage interface {
	// CreateTranscription inserts a new transcription and assigns its ID
	CreateTranscription(t *models.Transcription) error
	SaveTranscription(t *models.Transcription) error
	GetTranscription(id uint64) (*models.Transcription, error)
	FindTranscription(pageID string, transcriptionType models.TranscriptionType) (*models.Transcription, error)
	ListTranscriptionsByPage(pageID string) ([]*models.Transcription, error)
	ListTranscriptionIDs() ([]uint64, error)
	DeleteTranscription(id uint64) error

	// GetLines returns active lines ordered by display order, then line number
	GetLines(transcriptionID uint64) ([]models.TranscriptionLine, error)

	// ReplaceLines deletes every active line and inserts lines in their place,
	// assigning fresh IDs
	ReplaceLines(transcriptionID uint64, lines []models.TranscriptionLine) error
}

// VersionStorage - interface for the append-only version log
type VersionStorage interface {
	// InsertVersion appends a version and assigns its ID
	InsertVersion(v *models.TranscriptionVersion) error
	GetVersion(id uint64) (*models.TranscriptionVersion, error)
	FindVersionByHash(transcriptionID uint64, contentHash string) (*models.TranscriptionVersion, error)

	// TouchVersion sets CreatedAt of an existing version
	TouchVersion(id uint64, at time.Time) error

	// ListVersions returns all versions of a transcription, newest first
	ListVersions(transcriptionID uint64) ([]*models.TranscriptionVersion, error)
	CountVersions(transcriptionID uint64) (int, error)
	DeleteVersion(id uint64) error
	DeleteVersionsByTranscription(transcriptionID uint64) error
}
