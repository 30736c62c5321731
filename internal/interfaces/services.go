package interfaces

import (
	"context"
	"io"

	"github.com/ternarybob/folio/internal/models"
)

// PageService manages pages, their detected lines and reading order
type PageService interface {
	CreatePage(ctx context.Context, documentID string, pageNumber int) (*models.Page, error)
	GetPage(ctx context.Context, pageID string) (*models.Page, error)
	ListPages(ctx context.Context, documentID string) ([]*models.Page, error)
	DeletePage(ctx context.Context, pageID string) error

	// SetDetectedLines replaces the page's lines with fresh detection output
	SetDetectedLines(ctx context.Context, pageID string, detected []models.DetectedLine) (*models.LineSet, error)
	GetLines(ctx context.Context, pageID string) (*models.LineSet, error)

	// UpdateLineOrder never fails on a bad manual permutation; the result
	// carries a warning and the unchanged set instead
	UpdateLineOrder(ctx context.Context, pageID string, update *models.LineOrderUpdate) (*models.LineOrderResult, error)
	Progress(ctx context.Context, pageID string) (*models.PageProgress, error)
}

// TranscriptionService edits transcriptions and exposes their history
type TranscriptionService interface {
	Get(ctx context.Context, pageID string, transcriptionType models.TranscriptionType) (*models.TranscriptionView, error)
	UpdateManual(ctx context.Context, pageID string, update *models.TranscriptionUpdate) (*models.TranscriptionView, error)
	SaveModelOutput(ctx context.Context, pageID string, output *models.ModelOutput) (*models.TranscriptionView, error)
	RestoreVersion(ctx context.Context, pageID string, versionID uint64) (*models.TranscriptionView, error)
	CopyFromModel(ctx context.Context, pageID string) (*models.TranscriptionView, error)
	History(ctx context.Context, pageID string, transcriptionType models.TranscriptionType, offset, limit int, includeSnapshot bool) (*models.VersionHistory, error)
}

// ImportService loads plain text transcriptions into a document's pages
type ImportService interface {
	ImportText(ctx context.Context, documentID string, req *models.TextImportRequest) (*models.ImportResult, error)
}

// ExportService renders a document's transcriptions
type ExportService interface {
	ExportText(ctx context.Context, w io.Writer, documentID string, opts models.ExportOptions) (*models.ExportResult, error)
}

// SchedulerService runs periodic maintenance
type SchedulerService interface {
	Start() error
	Stop() error

	// RunSweep runs the retention sweep now; it is skipped when one is running
	RunSweep(ctx context.Context) (int, error)
}
