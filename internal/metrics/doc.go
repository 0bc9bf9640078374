// Package metrics provides Prometheus instrumentation for the gallery admin
// server and the batch tool.
//
// All metrics are prefixed with "gallery_admin_" and registered on the default
// registry through promauto, so the admin server only has to mount
// promhttp.Handler on its metrics port.
//
// # Metric Categories
//
// ## HTTP Metrics
//   - HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight
//   - UploadsTotal, UploadBytes
//
// ## Metadata Metrics
//   - ExifExtractionsTotal: extractions by status (success, no_metadata, error)
//   - ExifExtractionDuration, ExifTagsExtracted
//
// ## Thumbnail Metrics
//   - ThumbnailGenerationsTotal: requests by outcome (reused, copied, resized, fallback, error)
//   - ThumbnailGenerationDuration: per phase (decode, resize, encode, total)
//   - ThumbnailImageDecodeByFormat, ThumbnailDecoderFallbacks
//
// ## Catalog Metrics
//   - CatalogRunsTotal, CatalogRunDuration, CatalogRecordsTotal
//   - CatalogLastRunRecords, CatalogLastRunTimestamp, CatalogSavesTotal
//
// ## Filesystem and Watcher Metrics
//   - FilesystemRetryAttempts, FilesystemOperationErrors
//   - WatcherEventsTotal, WatcherErrors
//
// Call [InitializeMetrics] once at startup so every label combination is
// exported from the first scrape.
package metrics
