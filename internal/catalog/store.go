package catalog

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"gallery-admin/internal/logging"
	"gallery-admin/internal/metrics"
)

// Store owns the catalog file on disk. Reads and writes are serialised so an
// admin save never interleaves with a pipeline save.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store for the catalog file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the catalog file path.
func (s *Store) Path() string {
	return s.path
}

// Load parses the catalog file.
func (s *Store) Load() (*Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Load(s.path)
}

// ReadRaw returns the catalog file contents without parsing them.
func (s *Store) ReadRaw() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCatalogMissing, s.path)
		}
		return nil, err
	}
	return data, nil
}

// Save writes c atomically. source labels the caller in metrics ("run" for
// pipeline runs, "admin" for documents posted by the admin panel).
func (s *Store) Save(c *Catalog, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := Save(s.path, c); err != nil {
		metrics.CatalogSavesTotal.WithLabelValues(source, "error").Inc()
		return err
	}
	metrics.CatalogSavesTotal.WithLabelValues(source, "success").Inc()
	logging.Debug("Catalog saved to %s (%d photos)", s.path, len(c.Photos))
	return nil
}

// ValidateDocument parses a document submitted for saving. It must be a JSON
// object carrying a photos array.
func ValidateDocument(data []byte) (*Catalog, error) {
	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if !c.HasPhotosArray() {
		return nil, fmt.Errorf("%w: missing photos array", ErrInvalidCatalog)
	}
	return c, nil
}
