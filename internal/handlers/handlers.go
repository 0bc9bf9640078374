package handlers

import (
	"context"
	"path/filepath"
	"time"

	"gallery-admin/internal/catalog"
	"gallery-admin/internal/startup"
)

// Pipeline is the part of catalog.Updater the admin endpoints drive.
type Pipeline interface {
	Run(ctx context.Context, mode catalog.Mode) (catalog.RunResult, error)
	ProcessFile(path string) catalog.FileResult
	SaveDocument(data []byte) error
	ReadCatalog() ([]byte, error)
}

type Handlers struct {
	pipeline       Pipeline
	root           string
	dataDir        string
	maxUploadBytes int64
	startTime      time.Time
}

func New(pipeline Pipeline, config *startup.Config) *Handlers {
	return &Handlers{
		pipeline:       pipeline,
		root:           config.Root,
		dataDir:        config.DataDir,
		maxUploadBytes: config.MaxUploadBytes,
		startTime:      time.Now(),
	}
}

// relPath renders path relative to the gallery root with forward slashes,
// the form stored in the catalog.
func (h *Handlers) relPath(path string) string {
	rel, err := filepath.Rel(h.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
