// Package handlers provides the HTTP handlers of the gallery admin server.
//
// It includes handlers for:
//   - Image upload (POST /copy-image), which also extracts metadata and
//     generates the thumbnail for the new file
//   - Catalog persistence (POST /save-json, GET /api/catalog)
//   - Catalog-wide metadata extraction and thumbnail generation
//     (POST /extract-exif, POST /generate-thumbnails)
//   - Static files from the gallery root
//   - Health checks and build information
//
// Every JSON response carries a success flag; failures add error and message
// fields.
package handlers
