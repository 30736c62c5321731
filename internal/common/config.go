package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string         `toml:"environment"` // "development" or "production"
	Server      ServerConfig   `toml:"server"`
	Storage     StorageConfig  `toml:"storage"`
	Logging     LoggingConfig  `toml:"logging"`
	Versions    VersionsConfig `toml:"versions"`
	Ordering    OrderingConfig `toml:"ordering"`
	Import      ImportConfig   `toml:"import"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Type   string       `toml:"type"` // only "badger" is supported
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// VersionsConfig controls version retention
type VersionsConfig struct {
	RetentionDays int    `toml:"retention_days"` // Versions younger than this are always kept
	MaxVersions   int    `toml:"max_versions"`   // Newest N versions per transcription are always kept
	SweepEnabled  bool   `toml:"sweep_enabled"`  // Run the scheduled retention sweep
	SweepSchedule string `toml:"sweep_schedule"` // Cron schedule (5 fields)
}

// OrderingConfig controls reading order resolution
type OrderingConfig struct {
	ColumnThreshold float64 `toml:"column_threshold"` // Column gap as a fraction of image width
	DefaultMode     string  `toml:"default_mode"`     // Mode assigned to new pages
}

// ImportConfig controls plain text import
type ImportConfig struct {
	SkipPageIdentifier bool `toml:"skip_page_identifier"` // Drop a leading folio marker line
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8086,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Type: "badger",
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		Versions: VersionsConfig{
			RetentionDays: 30,
			MaxVersions:   100,
			SweepEnabled:  true,
			SweepSchedule: "0 3 * * *", // Daily at 03:00
		},
		Ordering: OrderingConfig{
			ColumnThreshold: 0.1,
			DefaultMode:     "auto",
		},
		Import: ImportConfig{
			SkipPageIdentifier: true,
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env
// Later files override earlier files. CLI flags are applied afterwards by ApplyFlagOverrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FOLIO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("FOLIO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("FOLIO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if badgerPath := os.Getenv("FOLIO_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if reset := os.Getenv("FOLIO_BADGER_RESET_ON_STARTUP"); reset != "" {
		if r, err := strconv.ParseBool(reset); err == nil {
			config.Storage.Badger.ResetOnStartup = r
		}
	}

	// Logging configuration
	if level := os.Getenv("FOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("FOLIO_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Versions configuration
	if days := os.Getenv("FOLIO_VERSIONS_RETENTION_DAYS"); days != "" {
		if d, err := strconv.Atoi(days); err == nil {
			config.Versions.RetentionDays = d
		}
	}
	if maxVersions := os.Getenv("FOLIO_VERSIONS_MAX_VERSIONS"); maxVersions != "" {
		if m, err := strconv.Atoi(maxVersions); err == nil {
			config.Versions.MaxVersions = m
		}
	}
	if enabled := os.Getenv("FOLIO_VERSIONS_SWEEP_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Versions.SweepEnabled = e
		}
	}
	if schedule := os.Getenv("FOLIO_VERSIONS_SWEEP_SCHEDULE"); schedule != "" {
		config.Versions.SweepSchedule = schedule
	}

	// Ordering configuration
	if threshold := os.Getenv("FOLIO_ORDERING_COLUMN_THRESHOLD"); threshold != "" {
		if t, err := strconv.ParseFloat(threshold, 64); err == nil {
			config.Ordering.ColumnThreshold = t
		}
	}
	if mode := os.Getenv("FOLIO_ORDERING_DEFAULT_MODE"); mode != "" {
		config.Ordering.DefaultMode = mode
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks values that cannot be repaired with a default
func (c *Config) Validate() error {
	if c.Storage.Type != "badger" && c.Storage.Type != "" {
		return fmt.Errorf("unsupported storage type: %s (only 'badger' is supported)", c.Storage.Type)
	}
	if c.Versions.RetentionDays < 0 {
		return fmt.Errorf("versions.retention_days must not be negative, got %d", c.Versions.RetentionDays)
	}
	if c.Versions.MaxVersions < 1 {
		return fmt.Errorf("versions.max_versions must be at least 1, got %d", c.Versions.MaxVersions)
	}
	if c.Ordering.ColumnThreshold <= 0 || c.Ordering.ColumnThreshold >= 1 {
		return fmt.Errorf("ordering.column_threshold must be between 0 and 1, got %v", c.Ordering.ColumnThreshold)
	}
	switch c.Ordering.DefaultMode {
	case "auto", "rtl", "ltr":
	default:
		return fmt.Errorf("ordering.default_mode must be auto, rtl or ltr, got %q", c.Ordering.DefaultMode)
	}
	if c.Versions.SweepEnabled {
		if err := ValidateSweepSchedule(c.Versions.SweepSchedule); err != nil {
			return fmt.Errorf("versions.sweep_schedule: %w", err)
		}
	}
	return nil
}

// ValidateSweepSchedule validates a cron schedule expression and ensures the
// sweep runs at most once per hour
func ValidateSweepSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	parts := strings.Fields(schedule)
	if len(parts) != 5 {
		return fmt.Errorf("invalid cron format: expected 5 fields")
	}

	minuteField := parts[0]
	if minuteField == "*" || strings.HasPrefix(minuteField, "*/") || strings.Contains(minuteField, ",") || strings.Contains(minuteField, "-") {
		return fmt.Errorf("sweep schedule must run at a fixed minute, got %q", minuteField)
	}

	return nil
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
