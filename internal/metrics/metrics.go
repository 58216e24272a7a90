package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_catalog_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_db_queries_total",
			Help: "Total number of catalog store queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_catalog_db_query_duration_seconds",
			Help:    "Catalog store query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBTransactionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_catalog_db_transaction_duration_seconds",
			Help:    "Catalog store transaction duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"type"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_db_connections_open",
			Help: "Number of open catalog store connections",
		},
	)

	DBSizeBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_catalog_db_size_bytes",
			Help: "Size of SQLite database files in bytes",
		},
		[]string{"file"}, // "main", "wal", "shm"
	)
)

// Reconciliation metrics
var (
	ReconcilePassesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_reconcile_passes_total",
			Help: "Total number of reconciliation passes by outcome",
		},
		[]string{"status"}, // "success", "error"
	)

	ReconcilePassDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_catalog_reconcile_pass_duration_seconds",
			Help:    "Duration of reconciliation passes in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900, 3600},
		},
	)

	ReconcileLastPassTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_reconcile_last_pass_timestamp",
			Help: "Unix timestamp of the last completed reconciliation pass",
		},
	)

	ReconcileLastPassDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_reconcile_last_pass_duration_seconds",
			Help: "Duration of the last reconciliation pass in seconds",
		},
	)

	ReconcileRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_reconcile_running",
			Help: "Whether a reconciliation pass is running (1 = running, 0 = idle)",
		},
	)

	ReconcileFilesScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_catalog_reconcile_files_scanned_total",
			Help: "Total number of media files visited by reconciliation passes",
		},
	)

	ReconcileClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_reconcile_classifications_total",
			Help: "Total number of files classified, by classification",
		},
		[]string{"classification"},
	)

	ReconcileOrphanDeleteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_catalog_reconcile_orphan_delete_failures_total",
			Help: "Total number of orphaned entries that could not be deleted",
		},
	)
)

// Hashing metrics
var (
	HashBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_catalog_hash_bytes_total",
			Help: "Total number of bytes hashed",
		},
	)

	HashDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_catalog_hash_duration_seconds",
			Help:    "Time taken to hash one file in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
	)

	HashErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_catalog_hash_errors_total",
			Help: "Total number of files whose hash failed mid-read",
		},
	)
)

// Thumbnail and probe metrics
var (
	ThumbnailGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_thumbnail_generations_total",
			Help: "Total number of thumbnail generations",
		},
		[]string{"type", "status"},
	)

	ThumbnailGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_catalog_thumbnail_generation_duration_seconds",
			Help:    "Thumbnail generation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"type"},
	)

	ThumbnailDecoderTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_thumbnail_decoder_total",
			Help: "Images decoded for thumbnails, by decoder",
		},
		[]string{"decoder"}, // "vips", "imaging", "ffmpeg"
	)

	ThumbnailFFmpegDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_catalog_thumbnail_ffmpeg_duration_seconds",
			Help:    "Duration of ffmpeg invocations for thumbnails in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"media_type"},
	)

	VideoProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_video_probes_total",
			Help: "Total number of ffprobe duration probes by outcome",
		},
		[]string{"status"},
	)
)

// Catalog content metrics
var (
	CatalogEntriesTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_catalog_entries_total",
			Help: "Number of cataloged entries by media type",
		},
		[]string{"media_type"},
	)

	CatalogThumbnailsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_thumbnails_total",
			Help: "Number of stored thumbnails",
		},
	)

	CatalogBytesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_catalog_bytes_total",
			Help: "Sum of the sizes of all cataloged files in bytes",
		},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_catalog_filesystem_operation_duration_seconds",
			Help:    "Filesystem operation duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"volume", "operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_filesystem_operation_errors_total",
			Help: "Total number of failed filesystem operations",
		},
		[]string{"volume", "operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_filesystem_retry_attempts_total",
			Help: "Total number of retries after NFS stale file handle errors",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_filesystem_retry_success_total",
			Help: "Total number of operations that succeeded after retrying",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_filesystem_retry_failures_total",
			Help: "Total number of operations that failed after exhausting retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_catalog_filesystem_stale_errors_total",
			Help: "Total number of NFS stale file handle errors encountered",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_catalog_filesystem_retry_duration_seconds",
			Help:    "Total time spent in filesystem operations including retries",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"operation", "volume"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_catalog_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)
