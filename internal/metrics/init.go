package metrics

// Classification labels used by ReconcileClassificationsTotal.
var Classifications = []string{
	"unchanged", "modified", "new", "duplicate", "renamed", "renamed_modified", "orphaned",
}

// InitializeMetrics pre-populates the expected label combinations so every
// metric is exported from the first Prometheus scrape. Call it once at startup.
func InitializeMetrics() {
	for _, status := range []string{"success", "error"} {
		ReconcilePassesTotal.WithLabelValues(status)
		VideoProbesTotal.WithLabelValues(status)
	}
	for _, c := range Classifications {
		ReconcileClassificationsTotal.WithLabelValues(c)
	}

	for _, mt := range []string{"image", "video", "unknown"} {
		CatalogEntriesTotal.WithLabelValues(mt)
	}

	for _, t := range []string{"image", "video"} {
		for _, status := range []string{"success", "error", "error_unsupported", "error_encode"} {
			ThumbnailGenerationsTotal.WithLabelValues(t, status)
		}
		ThumbnailGenerationDuration.WithLabelValues(t)
		ThumbnailFFmpegDuration.WithLabelValues(t)
	}
	for _, d := range []string{"vips", "imaging", "ffmpeg"} {
		ThumbnailDecoderTotal.WithLabelValues(d)
	}

	for _, file := range []string{"main", "wal", "shm"} {
		DBSizeBytes.WithLabelValues(file)
	}
	for _, op := range []string{"initialize_schema", "all_entries", "entry_by_path", "entries_by_hash",
		"insert_entry", "update_entry_metadata", "update_entry_path", "delete_entry",
		"upsert_thumbnail", "get_thumbnail", "stats"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}
	for _, t := range []string{"commit", "rollback"} {
		DBTransactionDuration.WithLabelValues(t)
	}

	volumes := []string{"media", "database", "unknown"}
	for _, op := range []string{"stat", "open"} {
		for _, vol := range volumes {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}
}
