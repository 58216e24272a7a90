package startup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"media-catalog/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Catalog drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DatabaseFile is the SQLite file created inside DatabaseDir.
const DatabaseFile = "catalog.db"

// Config holds all application configuration
type Config struct {
	MediaDir      string
	DatabaseDir   string
	Driver        string
	DatabaseURL   string
	Port          string
	IndexInterval time.Duration

	FFmpegPath       string
	FFprobePath      string
	ThumbnailSize    int
	ThumbnailQuality int
	VipsEnabled      bool

	MetricsEnabled  bool
	LogHealthChecks bool

	// Derived paths
	DatabasePath string
}

// dotEnvFiles are loaded in order; variables already set are never
// overridden.
var dotEnvFiles = []string{".env", "../.env"}

// LoadConfig loads and validates configuration from the environment. Values
// from .env files fill in anything the environment leaves unset.
func LoadConfig() (*Config, error) {
	for _, path := range dotEnvFiles {
		_ = godotenv.Load(path)
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		level, err := logging.ParseLevel(lvl)
		if err != nil {
			logging.Warn("Invalid LOG_LEVEL %q, using info", lvl)
		}
		logging.SetLevel(level)
	}

	config := &Config{
		MediaDir:         getEnv("MEDIA_DIR", "/media"),
		DatabaseDir:      getEnv("DATABASE_DIR", "/database"),
		Driver:           getEnv("CATALOG_DRIVER", DriverSQLite),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		Port:             getEnv("PORT", "8080"),
		FFmpegPath:       getEnv("FFMPEG_PATH", "ffmpeg"),
		FFprobePath:      getEnv("FFPROBE_PATH", "ffprobe"),
		ThumbnailSize:    getEnvInt("THUMBNAIL_SIZE", 256),
		ThumbnailQuality: getEnvInt("THUMBNAIL_QUALITY", 80),
		VipsEnabled:      getEnvBool("VIPS_ENABLED", true),
		MetricsEnabled:   getEnvBool("METRICS_ENABLED", true),
		LogHealthChecks:  getEnvBool("LOG_HEALTH_CHECKS", true),
	}

	indexIntervalStr := getEnv("INDEX_INTERVAL", "30m")
	indexInterval, err := time.ParseDuration(indexIntervalStr)
	if err != nil || indexInterval < 0 {
		logging.Warn("Invalid INDEX_INTERVAL %q, using default: 30m", indexIntervalStr)
		indexInterval = 30 * time.Minute
	}
	config.IndexInterval = indexInterval

	if config.ThumbnailQuality < 1 || config.ThumbnailQuality > 100 {
		logging.Warn("THUMBNAIL_QUALITY %d out of range (1-100), using default: 80", config.ThumbnailQuality)
		config.ThumbnailQuality = 80
	}
	if config.ThumbnailSize < 1 {
		logging.Warn("THUMBNAIL_SIZE %d must be positive, using default: 256", config.ThumbnailSize)
		config.ThumbnailSize = 256
	}

	config.MediaDir, err = filepath.Abs(config.MediaDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve media directory path: %w", err)
	}

	switch config.Driver {
	case DriverSQLite:
		config.DatabaseDir, err = filepath.Abs(config.DatabaseDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database directory path: %w", err)
		}
		config.DatabasePath = filepath.Join(config.DatabaseDir, DatabaseFile)
	case DriverPostgres:
		if config.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required when CATALOG_DRIVER=postgres")
		}
	case DriverMemory:
		logging.Warn("CATALOG_DRIVER=memory: the catalog is lost on exit")
	default:
		return nil, fmt.Errorf("unknown CATALOG_DRIVER %q (want %s, %s or %s)", config.Driver, DriverSQLite, DriverPostgres, DriverMemory)
	}

	return config, nil
}

// PrepareDatabaseDir creates the SQLite directory when missing and checks
// that it is writable. It is a no-op for other drivers.
func (c *Config) PrepareDatabaseDir() error {
	if c.Driver != DriverSQLite {
		return nil
	}
	if err := ensureDirectory(c.DatabaseDir, "database"); err != nil {
		return fmt.Errorf("database directory error: %w", err)
	}

	logging.Debug("  Testing database directory write access...")
	if err := testWriteAccess(c.DatabaseDir); err != nil {
		return fmt.Errorf("database directory is not writable: %w", err)
	}
	logging.Debug("  [OK] Database directory is writable")
	return nil
}

// LogConfig logs the effective configuration.
func LogConfig(c *Config) {
	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  MEDIA_DIR:           %s", c.MediaDir)
	logging.Info("  CATALOG_DRIVER:      %s", c.Driver)
	if c.Driver == DriverSQLite {
		logging.Info("  DATABASE_DIR:        %s", c.DatabaseDir)
	} else {
		logging.Info("  DATABASE_URL:        %s", redactURL(c.DatabaseURL))
	}
	logging.Info("  PORT:                %s", c.Port)
	logging.Info("  INDEX_INTERVAL:      %s", c.IndexInterval)
	logging.Info("  FFMPEG_PATH:         %s", c.FFmpegPath)
	logging.Info("  FFPROBE_PATH:        %s", c.FFprobePath)
	logging.Info("  THUMBNAIL_SIZE:      %d", c.ThumbnailSize)
	logging.Info("  THUMBNAIL_QUALITY:   %d", c.ThumbnailQuality)
	logging.Info("  VIPS_ENABLED:        %v", c.VipsEnabled)
	logging.Info("  METRICS_ENABLED:     %v", c.MetricsEnabled)
	logging.Info("  LOG_HEALTH_CHECKS:   %v", c.LogHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		// Write access was confirmed
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
