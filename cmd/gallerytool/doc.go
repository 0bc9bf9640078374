// Command gallerytool runs the gallery catalog pipeline from the command line.
//
// It reads the same environment variables as the admin server (GALLERY_ROOT,
// CATALOG_FILE, DATA_DIR, THUMBNAIL_DIR, THUMBNAIL_*) and shares the catalog
// lock semantics of the server, so the two should not be pointed at the same
// gallery at the same time.
//
// # Commands
//
//	gallerytool extract              refresh the exif field of every record
//	gallerytool thumbnails           generate thumbnails for every record
//	gallerytool thumbnails --all-files
//	                                 thumbnail every image in the upload directory
//	gallerytool update               both of the above in one pass
//	gallerytool watch                thumbnail new uploads as they arrive
//	gallerytool version              print build information
//
// Global flags:
//
//	--root DIR          gallery root (overrides GALLERY_ROOT)
//	--log-level LEVEL   debug, info, warn or error
//	--vips              enable the libvips decoder
//
// Catalog failures (missing file, no records, malformed JSON) exit with
// status 1. Per-photo failures are logged and counted as skipped.
package main
