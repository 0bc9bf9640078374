package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, status := range []string{"success", "rejected", "error"} {
		UploadsTotal.WithLabelValues(status)
	}

	for _, status := range []string{"success", "no_metadata", "error"} {
		ExifExtractionsTotal.WithLabelValues(status)
	}

	for _, outcome := range []string{"reused", "copied", "resized", "fallback", "error"} {
		ThumbnailGenerationsTotal.WithLabelValues(outcome)
	}
	for _, phase := range []string{"decode", "resize", "encode", "total"} {
		ThumbnailGenerationDuration.WithLabelValues(phase)
	}
	for _, format := range []string{"jpeg", "png", "gif", "webp", "bmp", "tiff", "unknown"} {
		ThumbnailImageDecodeByFormat.WithLabelValues(format)
	}
	for _, decoder := range []string{"vips"} {
		ThumbnailDecoderFallbacks.WithLabelValues(decoder, "success")
		ThumbnailDecoderFallbacks.WithLabelValues(decoder, "error")
	}

	for _, mode := range []string{"metadata", "thumbnails", "both"} {
		for _, status := range []string{"success", "missing", "empty", "canceled", "error"} {
			CatalogRunsTotal.WithLabelValues(mode, status)
		}
		CatalogRunDuration.WithLabelValues(mode)
	}
	for _, result := range []string{"updated", "unchanged", "skipped"} {
		CatalogRecordsTotal.WithLabelValues(result)
	}
	for _, count := range []string{"processed", "updated", "skipped"} {
		CatalogLastRunRecords.WithLabelValues(count)
	}
	for _, source := range []string{"run", "admin"} {
		CatalogSavesTotal.WithLabelValues(source, "success")
		CatalogSavesTotal.WithLabelValues(source, "error")
	}

	for _, op := range []string{"stat", "open", "write", "copy"} {
		FilesystemRetryAttempts.WithLabelValues(op)
		FilesystemOperationErrors.WithLabelValues(op)
	}

	for _, ev := range []string{"create", "write", "ignored"} {
		WatcherEventsTotal.WithLabelValues(ev)
	}
}
