package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_admin_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gallery_admin_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_admin_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_admin_uploads_total",
			Help: "Total number of image uploads by status",
		},
		[]string{"status"}, // "success", "rejected", "error"
	)

	UploadBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_admin_upload_bytes_total",
			Help: "Total number of bytes written by image uploads",
		},
	)
)

// Metadata extraction metrics
var (
	ExifExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_admin_exif_extractions_total",
			Help: "Total number of EXIF extractions by status",
		},
		[]string{"status"}, // "success", "no_metadata", "error"
	)

	ExifExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gallery_admin_exif_extraction_duration_seconds",
			Help:    "EXIF extraction duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		},
	)

	ExifTagsExtracted = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gallery_admin_exif_tags_extracted",
			Help:    "Number of labelled tags produced per successful extraction",
			Buckets: []float64{1, 5, 10, 20, 30, 40, 60, 80},
		},
	)
)

// Thumbnail metrics
var (
	ThumbnailGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_admin_thumbnail_generations_total",
			Help: "Total number of thumbnail requests by outcome",
		},
		[]string{"outcome"}, // "reused", "copied", "resized", "fallback", "error"
	)

	ThumbnailGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gallery_admin_thumbnail_generation_duration_seconds",
			Help:    "Thumbnail generation duration in seconds by phase",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"phase"}, // "decode", "resize", "encode", "total"
	)

	ThumbnailImageDecodeByFormat = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_admin_thumbnail_image_decode_total",
			Help: "Source images decoded for thumbnails by detected format",
		},
		[]string{"format"},
	)

	ThumbnailDecoderFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_admin_thumbnail_decoder_fallbacks_total",
			Help: "Number of times a secondary decoder was tried after imaging failed",
		},
		[]string{"decoder", "status"}, // decoder: "vips"
	)
)

// Catalog metrics
var (
	CatalogRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_admin_catalog_runs_total",
			Help: "Total number of catalog update runs by mode and status",
		},
		[]string{"mode", "status"}, // status: "success", "missing", "empty", "canceled", "error"
	)

	CatalogRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gallery_admin_catalog_run_duration_seconds",
			Help:    "Catalog update run duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
		},
		[]string{"mode"},
	)

	CatalogRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_admin_catalog_records_total",
			Help: "Catalog records visited by update runs by result",
		},
		[]string{"result"}, // "updated", "unchanged", "skipped"
	)

	CatalogLastRunRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gallery_admin_catalog_last_run_records",
			Help: "Record counts of the last completed catalog run",
		},
		[]string{"count"}, // "processed", "updated", "skipped"
	)

	CatalogLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_admin_catalog_last_run_timestamp",
			Help: "Unix timestamp of the last completed catalog run",
		},
	)

	CatalogSavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_admin_catalog_saves_total",
			Help: "Total number of catalog file writes by source and status",
		},
		[]string{"source", "status"}, // source: "run", "admin"
	)
)

// Filesystem metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_admin_filesystem_retry_attempts_total",
			Help: "Filesystem operations retried after a transient error",
		},
		[]string{"operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_admin_filesystem_operation_errors_total",
			Help: "Filesystem operations that failed after all retries",
		},
		[]string{"operation"},
	)
)

// Watcher metrics
var (
	WatcherEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_admin_watcher_events_total",
			Help: "Total number of upload directory watcher events",
		},
		[]string{"event_type"},
	)

	WatcherErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_admin_watcher_errors_total",
			Help: "Total number of upload directory watcher errors",
		},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gallery_admin_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
