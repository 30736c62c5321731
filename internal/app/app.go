// -----------------------------------------------------------------------
// Last Modified: Monday, 19th October 2026 10:12:40 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package app

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/handlers"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/services/exports"
	"github.com/ternarybob/folio/internal/services/imports"
	"github.com/ternarybob/folio/internal/services/pages"
	"github.com/ternarybob/folio/internal/services/scheduler"
	"github.com/ternarybob/folio/internal/services/transcriptions"
	"github.com/ternarybob/folio/internal/services/versions"
	"github.com/ternarybob/folio/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Domain services
	VersionService       *versions.Service
	PageService          *pages.Service
	TranscriptionService *transcriptions.Service
	ImportService        *imports.Service
	ExportService        *exports.Service
	SchedulerService     *scheduler.Service

	// HTTP handlers
	APIHandler           *handlers.APIHandler
	PageHandler          *handlers.PageHandler
	TranscriptionHandler *handlers.TranscriptionHandler
	DocumentHandler      *handlers.DocumentHandler
	SchedulerHandler     *handlers.SchedulerHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app.initServices()
	app.initHandlers()

	return app, nil
}

func (a *App) initDatabase() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")
	return nil
}

// initServices initializes the domain services in dependency order:
// versions first, then the transcription workflows built on it, then the
// page, import and export services and the retention scheduler.
func (a *App) initServices() {
	a.VersionService = versions.NewService(a.StorageManager, a.Config.Versions, a.Logger)
	a.TranscriptionService = transcriptions.NewService(a.StorageManager, a.VersionService, a.Logger)
	a.PageService = pages.NewService(a.StorageManager, a.Config.Ordering, a.Logger)
	a.ImportService = imports.NewService(a.StorageManager, a.TranscriptionService, a.Config.Import, a.Logger)
	a.ExportService = exports.NewService(a.StorageManager, a.Logger)
	a.SchedulerService = scheduler.NewService(a.VersionService, a.Config.Versions, a.Logger)

	a.Logger.Debug().
		Int("max_versions", a.Config.Versions.MaxVersions).
		Int("retention_days", a.Config.Versions.RetentionDays).
		Str("default_order", a.Config.Ordering.DefaultMode).
		Msg("Services initialized")
}

func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.Logger)
	a.PageHandler = handlers.NewPageHandler(a.PageService, a.Logger)
	a.TranscriptionHandler = handlers.NewTranscriptionHandler(a.TranscriptionService, a.Logger)
	a.DocumentHandler = handlers.NewDocumentHandler(a.PageService, a.ImportService, a.ExportService, a.Logger)
	a.SchedulerHandler = handlers.NewSchedulerHandler(a.SchedulerService, a.Logger)
}

// Start starts background services
func (a *App) Start() error {
	if err := a.SchedulerService.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	return nil
}

// Close closes all application resources
func (a *App) Close() error {
	if a.SchedulerService != nil {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler service")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
