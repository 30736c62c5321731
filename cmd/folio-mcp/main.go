package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/services/pages"
	"github.com/ternarybob/folio/internal/services/transcriptions"
	"github.com/ternarybob/folio/internal/services/versions"
	"github.com/ternarybob/folio/internal/storage"
)

func main() {
	// FOLIO_CONFIG may name several files separated by commas
	var configFiles []string
	for _, path := range strings.Split(os.Getenv("FOLIO_CONFIG"), ",") {
		if path = strings.TrimSpace(path); path != "" {
			configFiles = append(configFiles, path)
		}
	}
	if len(configFiles) == 0 {
		if _, err := os.Stat("folio.toml"); err == nil {
			configFiles = append(configFiles, "folio.toml")
		}
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Minimal logging to avoid cluttering MCP stdio
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	storageManager, err := storage.NewStorageManager(logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage")
		os.Exit(1)
	}
	defer storageManager.Close()

	versionService := versions.NewService(storageManager, config.Versions, logger)
	transcriptionService := transcriptions.NewService(storageManager, versionService, logger)
	pageService := pages.NewService(storageManager, config.Ordering, logger)

	mcpServer := server.NewMCPServer(
		"folio",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	// Register page and transcription tools
	mcpServer.AddTool(createReorderLinesTool(), handleReorderLines(pageService, logger))
	mcpServer.AddTool(createGetTranscriptionTool(), handleGetTranscription(transcriptionService, logger))
	mcpServer.AddTool(createListVersionsTool(), handleListVersions(transcriptionService, logger))
	mcpServer.AddTool(createRestoreVersionTool(), handleRestoreVersion(transcriptionService, logger))

	// Start server (blocks on stdio)
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
