package media

import (
	"errors"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gallery-admin/internal/filesystem"
	"gallery-admin/internal/logging"
	"gallery-admin/internal/metrics"

	"github.com/disintegration/imaging"
)

// Default thumbnail bounds and JPEG quality.
const (
	DefaultMaxWidth    = 400
	DefaultMaxHeight   = 300
	DefaultJPEGQuality = 85
)

// ThumbnailSpec describes the bounding box and encoder quality of thumbnails.
type ThumbnailSpec struct {
	MaxWidth    int
	MaxHeight   int
	JPEGQuality int
}

// DefaultThumbnailSpec returns the 400x300, quality 85 spec.
func DefaultThumbnailSpec() ThumbnailSpec {
	return ThumbnailSpec{
		MaxWidth:    DefaultMaxWidth,
		MaxHeight:   DefaultMaxHeight,
		JPEGQuality: DefaultJPEGQuality,
	}
}

// Validate checks the spec for usable values.
func (s ThumbnailSpec) Validate() error {
	if s.MaxWidth <= 0 || s.MaxHeight <= 0 {
		return fmt.Errorf("thumbnail bounds must be positive, got %dx%d", s.MaxWidth, s.MaxHeight)
	}
	if s.JPEGQuality < 1 || s.JPEGQuality > 100 {
		return fmt.Errorf("thumbnail JPEG quality must be within 1-100, got %d", s.JPEGQuality)
	}
	return nil
}

// Outcome records how a thumbnail came to exist.
type Outcome string

const (
	// OutcomeReused means a thumbnail was already on disk and left untouched.
	OutcomeReused Outcome = "reused"
	// OutcomeCopied means the source already fit the bounds and was copied verbatim.
	OutcomeCopied Outcome = "copied"
	// OutcomeResized means the source was decoded, scaled and re-encoded.
	OutcomeResized Outcome = "resized"
	// OutcomeFallback means processing failed and the original was copied instead.
	OutcomeFallback Outcome = "fallback"
)

// Generated reports whether the outcome wrote a new file.
func (o Outcome) Generated() bool {
	return o != OutcomeReused
}

// ThumbnailResult describes one Generate call.
type ThumbnailResult struct {
	Path    string
	Outcome Outcome
	Width   int
	Height  int
	// Cause holds the processing error behind an OutcomeFallback.
	Cause error
}

// ThumbnailGenerator writes bounded thumbnails into a single output
// directory, named after the source's base name.
type ThumbnailGenerator struct {
	outputDir string
	spec      ThumbnailSpec
	mu        sync.Mutex
}

// NewThumbnailGenerator creates a generator. The output directory is created
// on first use.
func NewThumbnailGenerator(outputDir string, spec ThumbnailSpec) *ThumbnailGenerator {
	logging.Debug("ThumbnailGenerator: output dir %s, bounds %dx%d, quality %d",
		outputDir, spec.MaxWidth, spec.MaxHeight, spec.JPEGQuality)
	return &ThumbnailGenerator{
		outputDir: outputDir,
		spec:      spec,
	}
}

// OutputDir returns the directory thumbnails are written to.
func (t *ThumbnailGenerator) OutputDir() string {
	return t.outputDir
}

// Spec returns the size and quality settings in use.
func (t *ThumbnailGenerator) Spec() ThumbnailSpec {
	return t.spec
}

// OutputPath returns where the thumbnail for src is written. Sources that
// share a base name share a thumbnail.
func (t *ThumbnailGenerator) OutputPath(src string) string {
	return filepath.Join(t.outputDir, filepath.Base(src))
}

// Generate produces the thumbnail for src unless one already exists.
//
// Decode and encode failures do not surface as errors: the original file is
// copied into place and the result carries OutcomeFallback. An error is
// returned only when the source cannot be read or nothing could be written.
func (t *ThumbnailGenerator) Generate(src string) (ThumbnailResult, error) {
	out := t.OutputPath(src)

	if filesystem.IsRegularFile(out) {
		logging.Debug("Thumbnail exists, reusing: %s", out)
		metrics.ThumbnailGenerationsTotal.WithLabelValues(string(OutcomeReused)).Inc()
		return ThumbnailResult{Path: out, Outcome: OutcomeReused}, nil
	}

	if err := statSource(src); err != nil {
		return ThumbnailResult{}, fmt.Errorf("thumbnail source %s: %w", src, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Another caller may have produced it while we waited.
	if filesystem.IsRegularFile(out) {
		metrics.ThumbnailGenerationsTotal.WithLabelValues(string(OutcomeReused)).Inc()
		return ThumbnailResult{Path: out, Outcome: OutcomeReused}, nil
	}

	if err := os.MkdirAll(t.outputDir, 0o755); err != nil {
		return ThumbnailResult{}, fmt.Errorf("failed to create thumbnail dir: %w", err)
	}

	start := time.Now()
	result, err := t.render(src, out)
	if err != nil {
		logging.Warn("Thumbnail for %s failed, copying original: %v", src, err)
		if cerr := filesystem.CopyFile(src, out); cerr != nil {
			metrics.ThumbnailGenerationsTotal.WithLabelValues("error").Inc()
			return ThumbnailResult{}, fmt.Errorf("thumbnail fallback copy for %s: %w", src, cerr)
		}
		result = ThumbnailResult{Path: out, Outcome: OutcomeFallback, Cause: err}
	}

	metrics.ThumbnailGenerationsTotal.WithLabelValues(string(result.Outcome)).Inc()
	metrics.ThumbnailGenerationDuration.WithLabelValues("total").Observe(time.Since(start).Seconds())
	logging.Debug("Thumbnail %s: %s (%dx%d)", result.Outcome, out, result.Width, result.Height)
	return result, nil
}

func (t *ThumbnailGenerator) render(src, out string) (ThumbnailResult, error) {
	dims, format, probeErr := probeImage(src)
	if probeErr == nil {
		metrics.ThumbnailImageDecodeByFormat.WithLabelValues(format).Inc()
		if dims.Width <= t.spec.MaxWidth && dims.Height <= t.spec.MaxHeight {
			if err := filesystem.CopyFile(src, out); err != nil {
				return ThumbnailResult{}, err
			}
			return ThumbnailResult{Path: out, Outcome: OutcomeCopied, Width: dims.Width, Height: dims.Height}, nil
		}
	} else {
		logging.Debug("Could not read image header for %s: %v", src, probeErr)
	}

	pixels := 0
	if dims != nil {
		pixels = dims.Width * dims.Height
	}

	decodeStart := time.Now()
	img, err := decodeImage(src, pixels, t.spec.MaxWidth, t.spec.MaxHeight)
	metrics.ThumbnailGenerationDuration.WithLabelValues("decode").Observe(time.Since(decodeStart).Seconds())
	if err != nil {
		return ThumbnailResult{}, err
	}

	if needsFlatten(img) {
		img = flattenImage(img)
	}

	// Bounds come from the original size; a vips pre-shrink or an EXIF
	// rotation changes what was decoded.
	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if dims != nil {
		srcW, srcH = dims.Width, dims.Height
		if (b.Dx() > b.Dy()) != (srcW > srcH) {
			srcW, srcH = srcH, srcW
		}
	}
	width, height, _ := fitDimensions(srcW, srcH, t.spec.MaxWidth, t.spec.MaxHeight)

	resizeStart := time.Now()
	if width != b.Dx() || height != b.Dy() {
		img = imaging.Resize(img, width, height, imaging.Lanczos)
	}
	metrics.ThumbnailGenerationDuration.WithLabelValues("resize").Observe(time.Since(resizeStart).Seconds())

	encodeStart := time.Now()
	err = filesystem.WriteAtomic(out, 0o644, func(w io.Writer) error {
		if keepsPNG(src) {
			return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
		}
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(t.spec.JPEGQuality))
	})
	metrics.ThumbnailGenerationDuration.WithLabelValues("encode").Observe(time.Since(encodeStart).Seconds())
	if err != nil {
		return ThumbnailResult{}, fmt.Errorf("%w: %s: %v", ErrEncode, out, err)
	}

	return ThumbnailResult{Path: out, Outcome: OutcomeResized, Width: width, Height: height}, nil
}

// statSource checks that src exists and is a regular file.
func statSource(src string) error {
	info, err := filesystem.StatWithRetry(src, filesystem.DefaultRetryConfig())
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return errors.New("not a regular file")
	}
	return nil
}
