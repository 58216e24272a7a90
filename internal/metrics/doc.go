// Package metrics provides Prometheus instrumentation for media-catalog.
//
// All metrics are registered with the default registry through promauto and
// are prefixed with "media_catalog_".
//
// # Metric Categories
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal: requests by method, route template and status
//   - HTTPRequestDuration: request duration by method and route template
//   - HTTPRequestsInFlight: requests currently being served
//
// ## Database Metrics
//
//   - DBQueryTotal, DBQueryDuration: catalog store calls by operation
//   - DBTransactionDuration: commit and rollback timings
//   - DBConnectionsOpen, DBSizeBytes: connection count and SQLite file sizes
//
// ## Reconciliation Metrics
//
//   - ReconcilePassesTotal: passes by outcome (success/error)
//   - ReconcilePassDuration, ReconcileLastPassDuration, ReconcileLastPassTimestamp
//   - ReconcileRunning: 1 while a pass is in progress
//   - ReconcileFilesScanned: media files visited
//   - ReconcileClassificationsTotal: per classification (see Classifications)
//   - ReconcileOrphanDeleteFailures: orphans left behind by a failed delete
//
// ## Hashing Metrics
//
//   - HashBytesTotal, HashDuration, HashErrorsTotal
//
// ## Thumbnail Metrics
//
//   - ThumbnailGenerationsTotal: by media type and status
//   - ThumbnailGenerationDuration, ThumbnailFFmpegDuration
//   - ThumbnailDecoderTotal: which decoder produced the source image
//   - VideoProbesTotal: ffprobe duration probes by outcome
//
// ## Catalog Metrics
//
// Refreshed by a [Collector] from a store's Stats:
//
//   - CatalogEntriesTotal, CatalogThumbnailsTotal, CatalogBytesTotal
//
// ## Filesystem Metrics
//
// Recorded through the observer returned by NewFilesystemObserver:
//
//   - FilesystemOperationDuration, FilesystemOperationErrors
//   - FilesystemRetryAttempts, FilesystemRetrySuccess, FilesystemRetryFailures
//   - FilesystemStaleErrors, FilesystemRetryDuration
//
// # Usage
//
//	filesystem.SetObserver(metrics.NewFilesystemObserver())
//	metrics.InitializeMetrics()
//
//	collector := metrics.NewCollector(store, time.Minute)
//	collector.Start()
//	defer collector.Stop()
//
//	router.Handle("/metrics", promhttp.Handler())
//
// # Prometheus Queries
//
// Files needing work per pass:
//
//	sum(rate(media_catalog_reconcile_classifications_total{classification!="unchanged"}[1h])) by (classification)
//
// Hashing throughput:
//
//	rate(media_catalog_hash_bytes_total[5m])
//
// Database query latency by operation:
//
//	histogram_quantile(0.95, sum(rate(media_catalog_db_query_duration_seconds_bucket[5m])) by (le, operation))
package metrics
