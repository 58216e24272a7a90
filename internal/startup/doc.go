// Package startup handles configuration loading and startup/shutdown logging.
//
// # Configuration
//
// [LoadConfig] reads the environment after filling unset variables from a
// .env file in the working directory or its parent:
//
//   - MEDIA_DIR: Media root to reconcile (default: /media)
//   - DATABASE_DIR: Directory holding the SQLite catalog (default: /database)
//   - CATALOG_DRIVER: sqlite or postgres (default: sqlite)
//   - DATABASE_URL: PostgreSQL connection string, required for postgres
//   - PORT: HTTP server port (default: 8080)
//   - INDEX_INTERVAL: Period between reconciliation passes; 0 disables (default: 30m)
//   - FFMPEG_PATH, FFPROBE_PATH: Encoder binaries (default: from PATH)
//   - THUMBNAIL_SIZE: Longest thumbnail edge in pixels (default: 256)
//   - THUMBNAIL_QUALITY: JPEG quality 1-100 (default: 80)
//   - VIPS_ENABLED: Decode images through libvips (default: true)
//   - METRICS_ENABLED: Serve /metrics and record HTTP metrics (default: true)
//   - LOG_HEALTH_CHECKS: Include probe requests in the access log (default: true)
//   - LOG_LEVEL: debug, info, warn or error
//
// Invalid durations and numbers fall back to their defaults with a warning.
// An unknown driver, or postgres without DATABASE_URL, is an error.
//
// # Memory
//
// [ConfigureMemoryLimit] derives GOMEMLIMIT from MEMORY_LIMIT and
// MEMORY_RATIO when GOMEMLIMIT is not set explicitly.
//
// # Build Information
//
// Version, Commit and BuildTime are set at link time:
//
//	go build -ldflags "-X media-catalog/internal/startup.Version=1.0.0" ./cmd/media-catalog
package startup
