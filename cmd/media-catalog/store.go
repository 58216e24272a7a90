package main

import (
	"context"
	"fmt"
	"time"

	"media-catalog/internal/catalog"
	"media-catalog/internal/database"
	"media-catalog/internal/filesystem"
	"media-catalog/internal/logging"
	"media-catalog/internal/media"
	"media-catalog/internal/metrics"
	"media-catalog/internal/postgres"
	"media-catalog/internal/reconcile"
	"media-catalog/internal/startup"
)

// catalogStore is a Store that also reports its own database metrics.
type catalogStore interface {
	catalog.Store
	UpdateDBMetrics()
}

// lastPassRecorder is implemented by stores that persist when the last
// pass completed.
type lastPassRecorder interface {
	SetLastPass(ctx context.Context, t time.Time) error
}

// memoryStore is the in-memory catalog. It has no connections or files to
// report.
type memoryStore struct {
	*catalog.MemoryStore
}

func (memoryStore) UpdateDBMetrics() {}

// openStore connects to the catalog backend selected by cfg.Driver.
func openStore(ctx context.Context, cfg *startup.Config) (catalogStore, error) {
	start := time.Now()
	switch cfg.Driver {
	case startup.DriverPostgres:
		store, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		logging.Info("Connected to PostgreSQL catalog in %v", time.Since(start))
		return store, nil
	case startup.DriverMemory:
		logging.Info("Using in-memory catalog")
		return memoryStore{catalog.NewMemoryStore()}, nil
	default:
		if err := cfg.PrepareDatabaseDir(); err != nil {
			return nil, err
		}
		db, err := database.New(ctx, cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("open catalog database: %w", err)
		}
		logging.Info("Opened SQLite catalog %s in %v", cfg.DatabasePath, time.Since(start))
		return db, nil
	}
}

// afterPass records a completed pass on the store.
func afterPass(ctx context.Context, store catalogStore, report reconcile.Report) {
	if rec, ok := store.(lastPassRecorder); ok {
		if err := rec.SetLastPass(ctx, report.Started.Add(report.Duration)); err != nil {
			logging.Warn("Failed to record last pass time: %v", err)
		}
	}
	store.UpdateDBMetrics()
}

// setupMedia installs the filesystem metrics for root, starts libvips when
// enabled and returns the thumbnail encoder along with its cleanup.
func setupMedia(cfg *startup.Config, root string) (*media.Transcoder, func()) {
	volumes := map[string]string{"media": root}
	if cfg.Driver == startup.DriverSQLite {
		volumes["database"] = cfg.DatabaseDir
	}
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(volumes))
	filesystem.SetObserver(metrics.NewFilesystemObserver())

	cleanup := func() {}
	if cfg.VipsEnabled {
		media.InitVips()
		cleanup = media.ShutdownVips
	}
	return media.NewTranscoder(media.Options{
		FFmpegPath:  cfg.FFmpegPath,
		FFprobePath: cfg.FFprobePath,
		Size:        cfg.ThumbnailSize,
		Quality:     cfg.ThumbnailQuality,
		UseVips:     cfg.VipsEnabled,
	}), cleanup
}

func closeStore(store catalog.Store) {
	if err := store.Close(); err != nil {
		logging.Warn("Failed to close catalog: %v", err)
	}
}
