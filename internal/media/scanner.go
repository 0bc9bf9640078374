package media

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gallery-admin/internal/logging"
)

// ImageFile is a supported image found in a scanned directory.
type ImageFile struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Scanner lists the images of a single directory. Subdirectories are not
// descended into.
type Scanner struct {
	dir string
}

// NewScanner creates a new Scanner instance.
func NewScanner(dir string) *Scanner {
	return &Scanner{dir: dir}
}

// Dir returns the scanned directory.
func (s *Scanner) Dir() string {
	return s.dir
}

// ListImages returns the supported images in the directory sorted by name.
// Hidden files are skipped.
func (s *Scanner) ListImages() ([]ImageFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var images []ImageFile
	for _, entry := range entries {
		item, ok := s.entryToImageFile(entry)
		if ok {
			images = append(images, item)
		}
	}

	sort.Slice(images, func(i, j int) bool {
		return strings.ToLower(images[i].Name) < strings.ToLower(images[j].Name)
	})

	logging.Debug("Scanner found %d images in %s", len(images), s.dir)
	return images, nil
}

// entryToImageFile converts a directory entry to an ImageFile
func (s *Scanner) entryToImageFile(entry os.DirEntry) (ImageFile, bool) {
	if strings.HasPrefix(entry.Name(), ".") || entry.IsDir() {
		return ImageFile{}, false
	}
	if !IsSupportedImage(entry.Name()) {
		return ImageFile{}, false
	}

	info, err := entry.Info()
	if err != nil || !info.Mode().IsRegular() {
		return ImageFile{}, false
	}

	return ImageFile{
		Path:    filepath.Join(s.dir, entry.Name()),
		Name:    entry.Name(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, true
}
