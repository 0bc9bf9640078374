package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gallery-admin/internal/filesystem"
	"gallery-admin/internal/logging"
	"gallery-admin/internal/media"
	"gallery-admin/internal/metrics"
)

// Mode selects which fields a run writes.
type Mode string

const (
	ModeMetadata   Mode = "metadata"
	ModeThumbnails Mode = "thumbnails"
	ModeBoth       Mode = "both"
)

// ParseMode converts a mode name. The empty string means ModeBoth.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeMetadata:
		return ModeMetadata, nil
	case ModeThumbnails:
		return ModeThumbnails, nil
	case ModeBoth, "":
		return ModeBoth, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want metadata, thumbnails or both)", s)
	}
}

func (m Mode) metadata() bool   { return m == ModeMetadata || m == ModeBoth }
func (m Mode) thumbnails() bool { return m == ModeThumbnails || m == ModeBoth }

// Extractor reads display metadata from an image file.
type Extractor interface {
	Extract(path string) (media.Metadata, error)
}

// Thumbnailer produces a bounded preview of an image file.
type Thumbnailer interface {
	Generate(src string) (media.ThumbnailResult, error)
}

// Config locates the gallery on disk.
type Config struct {
	// Root is the gallery root; record src values are relative to it.
	Root string
	// DataDir is the upload directory scanned by GenerateDirectory.
	DataDir string
}

// RunResult summarises one catalog pass.
type RunResult struct {
	Processed           int `json:"processed"`
	Updated             int `json:"updated"`
	MetadataUpdated     int `json:"metadataUpdated"`
	ThumbnailsGenerated int `json:"thumbnailsGenerated"`
	Skipped             int `json:"skipped"`
}

// FileResult is what ProcessFile learned about a single image.
type FileResult struct {
	Exif          media.Metadata
	ThumbnailPath string
}

// DirectoryResult summarises a GenerateDirectory pass.
type DirectoryResult struct {
	Found     int `json:"found"`
	Generated int `json:"generated"`
	Reused    int `json:"reused"`
	Failed    int `json:"failed"`
}

// Updater applies the metadata and thumbnail pipeline to the catalog.
// Every public operation holds the same mutex, so HTTP requests, the watcher
// and batch runs never overlap.
type Updater struct {
	cfg        Config
	store      *Store
	extractor  Extractor
	thumbnails Thumbnailer

	mu sync.Mutex
}

// NewUpdater creates an updater. Root is made absolute so that skip checks
// compare cleaned paths.
func NewUpdater(cfg Config, store *Store, extractor Extractor, thumbnails Thumbnailer) *Updater {
	if abs, err := filepath.Abs(cfg.Root); err == nil {
		cfg.Root = abs
	}
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(cfg.Root, "data")
	}
	return &Updater{
		cfg:        cfg,
		store:      store,
		extractor:  extractor,
		thumbnails: thumbnails,
	}
}

// Root returns the absolute gallery root.
func (u *Updater) Root() string {
	return u.cfg.Root
}

// Store returns the catalog store the updater saves to.
func (u *Updater) Store() *Store {
	return u.store
}

// ReadCatalog returns the catalog document as stored on disk.
func (u *Updater) ReadCatalog() ([]byte, error) {
	return u.store.ReadRaw()
}

// Run visits every record of the catalog in order and writes the fields
// selected by mode. Per-record failures are logged and never abort the run.
// The catalog is saved once at the end; a cancelled context stops the run
// before the next record and nothing is written.
func (u *Updater) Run(ctx context.Context, mode Mode) (RunResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	start := time.Now()
	defer func() {
		metrics.CatalogRunDuration.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())
	}()

	var result RunResult

	c, err := u.store.Load()
	if err != nil {
		u.recordRun(mode, runStatus(err))
		return result, err
	}
	if len(c.Photos) == 0 {
		u.recordRun(mode, "empty")
		return result, fmt.Errorf("%w: %s", ErrCatalogEmpty, u.store.Path())
	}

	logging.Info("Catalog run (%s) started: %d photos in %s", mode, len(c.Photos), u.store.Path())

	for i := range c.Photos {
		if err := ctx.Err(); err != nil {
			logging.Warn("Catalog run (%s) canceled after %d of %d photos, catalog left unchanged",
				mode, result.Processed, len(c.Photos))
			u.recordRun(mode, "canceled")
			return result, err
		}

		rec := &c.Photos[i]
		result.Processed++

		path, err := u.resolve(rec.Src)
		if err != nil {
			logging.Warn("Skipping photo %d: %v", i, err)
			result.Skipped++
			metrics.CatalogRecordsTotal.WithLabelValues("skipped").Inc()
			continue
		}

		updated := false
		if mode.metadata() && u.applyMetadata(rec, path) {
			result.MetadataUpdated++
			updated = true
		}
		if mode.thumbnails() && u.applyThumbnail(rec, path) {
			result.ThumbnailsGenerated++
			updated = true
		}

		if updated {
			result.Updated++
			metrics.CatalogRecordsTotal.WithLabelValues("updated").Inc()
		} else {
			metrics.CatalogRecordsTotal.WithLabelValues("unchanged").Inc()
		}
	}

	if err := u.store.Save(c, "run"); err != nil {
		u.recordRun(mode, "error")
		return result, err
	}

	u.recordRun(mode, "success")
	metrics.CatalogLastRunRecords.WithLabelValues("processed").Set(float64(result.Processed))
	metrics.CatalogLastRunRecords.WithLabelValues("updated").Set(float64(result.Updated))
	metrics.CatalogLastRunRecords.WithLabelValues("skipped").Set(float64(result.Skipped))
	metrics.CatalogLastRunTimestamp.SetToCurrentTime()

	logging.Info("Catalog run (%s) finished in %v: processed=%d updated=%d skipped=%d",
		mode, time.Since(start).Round(time.Millisecond), result.Processed, result.Updated, result.Skipped)
	return result, nil
}

func (u *Updater) applyMetadata(rec *PhotoRecord, path string) bool {
	md, err := u.extractor.Extract(path)
	if err != nil {
		// Extract has already logged the cause.
		return false
	}
	rec.SetExif(md)
	return true
}

func (u *Updater) applyThumbnail(rec *PhotoRecord, path string) bool {
	res, err := u.thumbnails.Generate(path)
	if err != nil {
		logging.Warn("Thumbnail failed for %s: %v", rec.Src, err)
		return false
	}
	rel, err := u.relative(res.Path)
	if err != nil {
		logging.Warn("Thumbnail for %s is outside the gallery root: %s", rec.Src, res.Path)
		return false
	}
	rec.SetThumbnailPath(rel)
	return true
}

// ProcessFile extracts metadata and generates a thumbnail for one image
// without touching the catalog. Either field may be empty when that step
// produced nothing.
func (u *Updater) ProcessFile(path string) FileResult {
	u.mu.Lock()
	defer u.mu.Unlock()

	var result FileResult
	if md, err := u.extractor.Extract(path); err == nil {
		result.Exif = md
	}

	res, err := u.thumbnails.Generate(path)
	if err != nil {
		logging.Warn("Thumbnail failed for %s: %v", path, err)
		return result
	}
	if rel, err := u.relative(res.Path); err == nil {
		result.ThumbnailPath = rel
	}
	return result
}

// GenerateDirectory creates thumbnails for every supported image in the
// upload directory, whether or not the catalog references it. A fallback
// copy counts as generated.
func (u *Updater) GenerateDirectory(ctx context.Context) (DirectoryResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	var result DirectoryResult

	images, err := media.NewScanner(u.cfg.DataDir).ListImages()
	if err != nil {
		return result, err
	}
	result.Found = len(images)
	logging.Info("Found %d images in %s", len(images), u.cfg.DataDir)

	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		res, err := u.thumbnails.Generate(img.Path)
		switch {
		case err != nil:
			logging.Warn("Thumbnail failed for %s: %v", img.Name, err)
			result.Failed++
		case res.Outcome == media.OutcomeReused:
			logging.Debug("Skipping %s (thumbnail exists)", img.Name)
			result.Reused++
		default:
			result.Generated++
		}
	}

	logging.Info("Thumbnail pass finished: generated=%d reused=%d failed=%d",
		result.Generated, result.Reused, result.Failed)
	return result, nil
}

// SaveDocument validates and writes a catalog document submitted by the
// admin panel.
func (u *Updater) SaveDocument(data []byte) error {
	c, err := ValidateDocument(data)
	if err != nil {
		return err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	return u.store.Save(c, "admin")
}

// resolve maps a record's src to a file under the gallery root.
func (u *Updater) resolve(src string) (string, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", fmt.Errorf("%w: empty src", ErrSourceMissing)
	}
	if isURL(src) {
		return "", fmt.Errorf("%w: %s is a URL", ErrSourceMissing, src)
	}

	path := filepath.Join(u.cfg.Root, filepath.FromSlash(src))
	if !isSubPath(u.cfg.Root, path) {
		return "", fmt.Errorf("%w: %s escapes the gallery root", ErrSourceMissing, src)
	}
	if !filesystem.IsRegularFile(path) {
		return "", fmt.Errorf("%w: %s", ErrSourceMissing, src)
	}
	return path, nil
}

// relative renders path as a slash-separated path relative to the root.
func (u *Updater) relative(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if !isSubPath(u.cfg.Root, abs) {
		return "", fmt.Errorf("%s is outside %s", path, u.cfg.Root)
	}
	rel, err := filepath.Rel(u.cfg.Root, abs)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

func (u *Updater) recordRun(mode Mode, status string) {
	metrics.CatalogRunsTotal.WithLabelValues(string(mode), status).Inc()
}

func runStatus(err error) string {
	switch {
	case errors.Is(err, ErrCatalogMissing):
		return "missing"
	case errors.Is(err, ErrCatalogEmpty):
		return "empty"
	default:
		return "error"
	}
}

func isURL(src string) bool {
	return strings.Contains(src, "://") || strings.HasPrefix(src, "//") ||
		strings.HasPrefix(strings.ToLower(src), "data:")
}

// isSubPath reports whether path is root or lies beneath it.
func isSubPath(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
