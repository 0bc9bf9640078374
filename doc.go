// Package main provides the entry point for the Gallery Admin server.
//
// Gallery Admin is the backend of a static photo gallery. The site reads a
// single catalog file, photos.json, at the gallery root; this server keeps
// that file up to date. It stores uploaded images under data/, extracts
// their EXIF data into Chinese display labels, writes bounded thumbnails
// under thumbnails/, and accepts catalog edits from the admin panel.
//
// # Application Lifecycle
//
//  1. Configuration Loading: reads environment variables, creates the upload
//     and thumbnail directories and checks that they are writable
//  2. Metrics: pre-populates Prometheus label sets and records build info
//  3. Image Decoders: optionally starts libvips (VIPS_ENABLED)
//  4. Catalog Pipeline: store, EXIF extractor, thumbnail generator, updater
//  5. HTTP Server Setup: routes, middleware, admin and metrics listeners
//  6. Graceful Shutdown: SIGINT/SIGTERM cancel the server context
//
// # HTTP Server
//
// The application runs two HTTP servers:
//
//  1. Admin Server (default port 3001):
//     - POST /copy-image, /save-json, /extract-exif, /generate-thumbnails
//     - GET /api/catalog, /health, /healthz, /livez, /version
//     - the gallery site itself, served from the root directory
//
//  2. Metrics Server (default port 9090, METRICS_ENABLED):
//     - GET /metrics in Prometheus text format
//
// Batch runs outside the server are handled by cmd/gallerytool.
//
// # Build Information
//
// Version information is injected at build time:
//
//	go build -ldflags "-X gallery-admin/internal/startup.Version=1.0.0 \
//	  -X gallery-admin/internal/startup.Commit=abc123 \
//	  -X gallery-admin/internal/startup.BuildTime=2024-01-01T00:00:00Z"
package main
