// Package startup handles configuration loading and startup/shutdown logging
// for the gallery admin server and the batch tool.
//
// # Configuration
//
// Configuration is read from environment variables by [ReadConfig]; the
// server uses [LoadConfig], which also prints the banner and the
// configuration table and prepares the gallery directories.
//
//   - GALLERY_ROOT: Directory holding photos.json, data/ and thumbnails/ (default: .)
//   - CATALOG_FILE: Catalog path, relative to the root unless absolute (default: photos.json)
//   - DATA_DIR: Upload directory (default: data)
//   - THUMBNAIL_DIR: Thumbnail directory (default: thumbnails)
//   - PORT: Admin server port (default: 3001)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable the metrics server (default: true)
//   - THUMBNAIL_MAX_WIDTH, THUMBNAIL_MAX_HEIGHT, THUMBNAIL_QUALITY: Thumbnail box and JPEG quality (default: 400, 300, 85)
//   - VIPS_ENABLED: Use libvips as a fallback decoder (default: false)
//   - MAX_UPLOAD_MB: Largest accepted upload (default: 32)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_STATIC_FILES: Log static file requests (default: false)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
//
// # Example Usage
//
//	config, err := startup.LoadConfig()
//	if err != nil {
//	    startup.LogFatal("Configuration error: %v", err)
//	}
//
//	startup.LogServerStarted(startup.ServerConfig{
//	    Port:            config.Port,
//	    MetricsPort:     config.MetricsPort,
//	    MetricsEnabled:  config.MetricsEnabled,
//	    StartupDuration: time.Since(startTime),
//	})
package startup
