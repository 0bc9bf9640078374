package startup

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version == "" {
		t.Error("Expected Version to be set")
	}
	if info.OS == "" || info.Arch == "" {
		t.Error("Expected OS and Arch to be set")
	}
	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("GALLERY_TEST_SET", "custom")
	t.Setenv("GALLERY_TEST_EMPTY", "")

	if got := getEnv("GALLERY_TEST_SET", "default"); got != "custom" {
		t.Errorf("getEnv(set) = %q", got)
	}
	if got := getEnv("GALLERY_TEST_EMPTY", "default"); got != "default" {
		t.Errorf("getEnv(empty) = %q, want default", got)
	}
	if got := getEnv("GALLERY_TEST_NEVER_SET", "default"); got != "default" {
		t.Errorf("getEnv(unset) = %q, want default", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
		want         bool
	}{
		{"unset uses default", "", true, true},
		{"true", "true", false, true},
		{"one", "1", false, true},
		{"false", "false", true, false},
		{"zero", "0", true, false},
		{"invalid uses default", "maybe", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GALLERY_TEST_BOOL", tt.envValue)
			if got := getEnvBool("GALLERY_TEST_BOOL", tt.defaultValue); got != tt.want {
				t.Errorf("getEnvBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		want     int
	}{
		{"unset uses default", "", 400},
		{"valid", "640", 640},
		{"whitespace", " 85 ", 85},
		{"invalid uses default", "wide", 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GALLERY_TEST_INT", tt.envValue)
			if got := getEnvInt("GALLERY_TEST_INT", 400); got != tt.want {
				t.Errorf("getEnvInt() = %d, want %d", got, tt.want)
			}
		})
	}
}

func clearGalleryEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GALLERY_ROOT", "CATALOG_FILE", "DATA_DIR", "THUMBNAIL_DIR", "PORT",
		"METRICS_PORT", "METRICS_ENABLED", "VIPS_ENABLED", "MAX_UPLOAD_MB",
		"THUMBNAIL_MAX_WIDTH", "THUMBNAIL_MAX_HEIGHT", "THUMBNAIL_QUALITY",
	} {
		t.Setenv(key, "")
	}
}

func TestReadConfigDefaults(t *testing.T) {
	clearGalleryEnv(t)
	root := t.TempDir()
	t.Setenv("GALLERY_ROOT", root)

	config, err := ReadConfig("")
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	if config.Root != root {
		t.Errorf("Root = %q, want %q", config.Root, root)
	}
	if config.CatalogPath != filepath.Join(root, "photos.json") {
		t.Errorf("CatalogPath = %q", config.CatalogPath)
	}
	if config.DataDir != filepath.Join(root, "data") || config.ThumbnailDir != filepath.Join(root, "thumbnails") {
		t.Errorf("DataDir = %q, ThumbnailDir = %q", config.DataDir, config.ThumbnailDir)
	}
	if config.Port != "3001" || config.MetricsPort != "9090" || !config.MetricsEnabled {
		t.Errorf("unexpected ports: %+v", config)
	}
	if config.VipsEnabled {
		t.Error("VipsEnabled should default to false")
	}
	if config.MaxUploadBytes != 32<<20 {
		t.Errorf("MaxUploadBytes = %d", config.MaxUploadBytes)
	}
	if config.Thumbnail.MaxWidth != 400 || config.Thumbnail.MaxHeight != 300 || config.Thumbnail.JPEGQuality != 85 {
		t.Errorf("Thumbnail = %+v", config.Thumbnail)
	}
}

func TestReadConfigOverrides(t *testing.T) {
	clearGalleryEnv(t)
	root := t.TempDir()
	abs := filepath.Join(t.TempDir(), "elsewhere")

	t.Setenv("GALLERY_ROOT", "/does/not/matter")
	t.Setenv("CATALOG_FILE", "site/photos.json")
	t.Setenv("THUMBNAIL_DIR", abs)
	t.Setenv("THUMBNAIL_MAX_WIDTH", "640")
	t.Setenv("MAX_UPLOAD_MB", "8")

	config, err := ReadConfig(root)
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}
	if config.Root != root {
		t.Errorf("root override ignored: %q", config.Root)
	}
	if config.CatalogPath != filepath.Join(root, "site", "photos.json") {
		t.Errorf("CatalogPath = %q", config.CatalogPath)
	}
	if config.ThumbnailDir != abs {
		t.Errorf("absolute ThumbnailDir should be kept, got %q", config.ThumbnailDir)
	}
	if config.Thumbnail.MaxWidth != 640 {
		t.Errorf("MaxWidth = %d", config.Thumbnail.MaxWidth)
	}
	if config.MaxUploadBytes != 8<<20 {
		t.Errorf("MaxUploadBytes = %d", config.MaxUploadBytes)
	}
}

func TestReadConfigInvalidThumbnail(t *testing.T) {
	clearGalleryEnv(t)
	t.Setenv("THUMBNAIL_QUALITY", "150")

	if _, err := ReadConfig(t.TempDir()); err == nil {
		t.Error("expected error for quality 150")
	}
}

func TestPrepareDirectories(t *testing.T) {
	root := t.TempDir()
	config := &Config{
		Root:         root,
		DataDir:      filepath.Join(root, "data"),
		ThumbnailDir: filepath.Join(root, "thumbnails"),
	}

	if err := PrepareDirectories(config); err != nil {
		t.Fatalf("PrepareDirectories() error = %v", err)
	}
	for _, dir := range []string{config.DataDir, config.ThumbnailDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("%s not created", dir)
		}
		if _, err := os.Stat(filepath.Join(dir, ".write-test")); !os.IsNotExist(err) {
			t.Errorf("write test file left in %s", dir)
		}
	}
}

func TestPrepareDirectoriesErrors(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "data")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	config := &Config{Root: root, DataDir: file, ThumbnailDir: filepath.Join(root, "thumbnails")}
	if err := PrepareDirectories(config); err == nil {
		t.Error("expected error when data dir is a file")
	}

	config = &Config{Root: filepath.Join(root, "missing")}
	if err := PrepareDirectories(config); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestGetRoutes(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/health", func(http.ResponseWriter, *http.Request) {}).Methods("GET").Name("health")
	router.HandleFunc("/save-json", func(http.ResponseWriter, *http.Request) {}).Methods("POST")

	routes, err := GetRoutes(router)
	if err != nil {
		t.Fatalf("GetRoutes() error = %v", err)
	}
	if len(routes) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(routes))
	}
	if routes[0].Method != "GET" || routes[0].Path != "/health" || routes[0].Name != "health" {
		t.Errorf("routes[0] = %+v", routes[0])
	}
	if routes[1].Method != "POST" || routes[1].Path != "/save-json" {
		t.Errorf("routes[1] = %+v", routes[1])
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/health", "health"},
		{"/api/catalog", "api/catalog"},
		{"/", ""},
		{"/data/{file}", "data"},
	}
	for _, tt := range tests {
		if got := getRouteGroup(tt.path); got != tt.want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
