package media

import (
	"path/filepath"
	"strings"
)

// ImageExtensions maps file extensions to whether they are supported image formats.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
	".webp": true,
}

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".bmp":  "image/bmp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// IsSupportedImage reports whether path has a supported image extension.
func IsSupportedImage(path string) bool {
	return ImageExtensions[strings.ToLower(filepath.Ext(path))]
}

// GetMimeType returns the MIME type for an image path, or
// application/octet-stream when the extension is unknown.
func GetMimeType(path string) string {
	if mime, ok := MimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mime
	}
	return "application/octet-stream"
}

// keepsPNG reports whether a thumbnail of path is encoded as PNG. Every
// other source is re-encoded as JPEG.
func keepsPNG(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".png"
}
