package media

import (
	"fmt"
	"image"
	"image/color"

	"gallery-admin/internal/filesystem"
	"gallery-admin/internal/logging"
	"gallery-admin/internal/metrics"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // WebP format support
)

const (
	// MaxImagePixels is the largest source (width * height) decoded in full.
	// Bigger images are shrunk at decode time by libvips when it is enabled.
	// A 50MP image would be ~50,000,000 pixels, which uses ~200MB in RGBA.
	MaxImagePixels = 40_000_000
)

// ImageDimensions holds image width and height
type ImageDimensions struct {
	Width  int
	Height int
}

// GetImageDimensions returns image dimensions without fully decoding the image
func GetImageDimensions(path string) (*ImageDimensions, error) {
	dims, _, err := probeImage(path)
	return dims, err
}

// probeImage reads the image header only, returning its raw (unrotated)
// dimensions and the registered format name.
func probeImage(path string) (*ImageDimensions, string, error) {
	file, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, "", err
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close image file %s: %v", path, err)
		}
	}()

	config, format, err := image.DecodeConfig(file)
	if err != nil {
		return nil, "", err
	}

	return &ImageDimensions{
		Width:  config.Width,
		Height: config.Height,
	}, format, nil
}

// decodeImage fully decodes path with EXIF orientation applied. targetWidth
// and targetHeight are a hint for libvips, which can shrink during decode;
// the caller still resizes the result to its exact size.
func decodeImage(path string, pixels, targetWidth, targetHeight int) (image.Image, error) {
	if pixels > MaxImagePixels && IsVipsAvailable() {
		img, err := LoadImageWithVips(path, targetWidth, targetHeight)
		if err == nil {
			metrics.ThumbnailDecoderFallbacks.WithLabelValues("vips", "success").Inc()
			return img, nil
		}
		logging.Debug("vips pre-shrink failed for %s: %v, decoding in full", path, err)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err == nil {
		return img, nil
	}

	if !IsVipsAvailable() {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}

	logging.Debug("imaging.Open failed for %s: %v, trying libvips", path, err)
	vimg, verr := DecodeWithVips(path)
	if verr != nil {
		metrics.ThumbnailDecoderFallbacks.WithLabelValues("vips", "error").Inc()
		return nil, fmt.Errorf("%w: %s: %v (vips: %v)", ErrDecode, path, err, verr)
	}
	metrics.ThumbnailDecoderFallbacks.WithLabelValues("vips", "success").Inc()
	return vimg, nil
}

// needsFlatten reports whether img has an alpha channel or a palette and
// must be converted to opaque RGB before JPEG-style processing.
func needsFlatten(img image.Image) bool {
	if _, ok := img.(*image.Paletted); ok {
		return true
	}
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return true
}

// flattenImage composites img onto an opaque white background.
func flattenImage(img image.Image) image.Image {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

// fitDimensions scales (w, h) by the largest ratio that fits within
// (maxW, maxH). The ratio is never above 1; each side is floored and kept
// at least 1 pixel.
func fitDimensions(w, h, maxW, maxH int) (int, int, float64) {
	if w <= 0 || h <= 0 {
		return w, h, 1
	}
	ratio := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	if ratio >= 1 {
		return w, h, 1
	}
	nw := max(int(float64(w)*ratio+1e-9), 1)
	nh := max(int(float64(h)*ratio+1e-9), 1)
	return nw, nh, ratio
}
