package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"gallery-admin/internal/logging"
	"gallery-admin/internal/media"

	"github.com/gorilla/mux"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Config holds all application configuration
type Config struct {
	Root           string
	CatalogPath    string
	DataDir        string
	ThumbnailDir   string
	Port           string
	MetricsPort    string
	MetricsEnabled bool
	VipsEnabled    bool
	MaxUploadBytes int64

	LogStaticFiles  bool
	LogHealthChecks bool

	Thumbnail media.ThumbnailSpec
}

// LoadConfig prints the startup banner, reads the configuration from the
// environment and prepares the gallery directories. It is used by the admin
// server.
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	config, err := ReadConfig("")
	if err != nil {
		return nil, err
	}

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  GALLERY_ROOT:        %s", config.Root)
	logging.Info("  CATALOG_FILE:        %s", config.CatalogPath)
	logging.Info("  DATA_DIR:            %s", config.DataDir)
	logging.Info("  THUMBNAIL_DIR:       %s", config.ThumbnailDir)
	logging.Info("  PORT:                %s", config.Port)
	logging.Info("  METRICS_PORT:        %s", config.MetricsPort)
	logging.Info("  METRICS_ENABLED:     %v", config.MetricsEnabled)
	logging.Info("  THUMBNAIL_BOX:       %dx%d (quality %d)",
		config.Thumbnail.MaxWidth, config.Thumbnail.MaxHeight, config.Thumbnail.JPEGQuality)
	logging.Info("  VIPS_ENABLED:        %v", config.VipsEnabled)
	logging.Info("  MAX_UPLOAD_MB:       %d", config.MaxUploadBytes>>20)
	logging.Info("  LOG_STATIC_FILES:    %v", config.LogStaticFiles)
	logging.Info("  LOG_HEALTH_CHECKS:   %v", config.LogHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	if err := PrepareDirectories(config); err != nil {
		return nil, err
	}

	if _, err := os.Stat(config.CatalogPath); os.IsNotExist(err) {
		logging.Warn("  Catalog %s does not exist yet; runs will fail until it is saved", config.CatalogPath)
	} else {
		logging.Info("  [OK] Catalog found")
	}

	return config, nil
}

// ReadConfig reads the configuration from the environment without logging.
// A non-empty rootOverride replaces GALLERY_ROOT; relative CATALOG_FILE,
// DATA_DIR and THUMBNAIL_DIR values are resolved against the root.
func ReadConfig(rootOverride string) (*Config, error) {
	root := getEnv("GALLERY_ROOT", ".")
	if rootOverride != "" {
		root = rootOverride
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve gallery root: %w", err)
	}

	spec := media.ThumbnailSpec{
		MaxWidth:    getEnvInt("THUMBNAIL_MAX_WIDTH", media.DefaultMaxWidth),
		MaxHeight:   getEnvInt("THUMBNAIL_MAX_HEIGHT", media.DefaultMaxHeight),
		JPEGQuality: getEnvInt("THUMBNAIL_QUALITY", media.DefaultJPEGQuality),
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid thumbnail settings: %w", err)
	}

	maxUploadMB := getEnvInt("MAX_UPLOAD_MB", 32)
	if maxUploadMB <= 0 {
		logging.Warn("Invalid MAX_UPLOAD_MB %d, using default: 32", maxUploadMB)
		maxUploadMB = 32
	}

	return &Config{
		Root:            root,
		CatalogPath:     underRoot(root, getEnv("CATALOG_FILE", "photos.json")),
		DataDir:         underRoot(root, getEnv("DATA_DIR", "data")),
		ThumbnailDir:    underRoot(root, getEnv("THUMBNAIL_DIR", "thumbnails")),
		Port:            getEnv("PORT", "3001"),
		MetricsPort:     getEnv("METRICS_PORT", "9090"),
		MetricsEnabled:  getEnvBool("METRICS_ENABLED", true),
		VipsEnabled:     getEnvBool("VIPS_ENABLED", false),
		MaxUploadBytes:  int64(maxUploadMB) << 20,
		LogStaticFiles:  getEnvBool("LOG_STATIC_FILES", false),
		LogHealthChecks: getEnvBool("LOG_HEALTH_CHECKS", true),
		Thumbnail:       spec,
	}, nil
}

// PrepareDirectories checks the gallery root and creates the upload and
// thumbnail directories, verifying that both are writable.
func PrepareDirectories(config *Config) error {
	info, err := os.Stat(config.Root)
	if err != nil {
		return fmt.Errorf("gallery root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("gallery root %s is not a directory", config.Root)
	}

	for _, dir := range []struct{ path, name string }{
		{config.DataDir, "upload"},
		{config.ThumbnailDir, "thumbnail"},
	} {
		if err := ensureDirectory(dir.path, dir.name); err != nil {
			return fmt.Errorf("%s directory error: %w", dir.name, err)
		}
		if err := testWriteAccess(dir.path); err != nil {
			return fmt.Errorf("%s directory is not writable: %w", dir.name, err)
		}
		logging.Info("  [OK] %s directory is writable: %s", dir.name, dir.path)
	}
	return nil
}

func underRoot(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}

// LogVipsInit logs the libvips decoder setup.
func LogVipsInit(enabled bool, err error) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("IMAGE DECODERS")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go decoders: jpeg, png, gif, bmp, tiff, webp")

	switch {
	case !enabled:
		logging.Info("  libvips:     DISABLED (set VIPS_ENABLED=true to enable)")
	case err != nil:
		logging.Warn("  libvips:     FAILED (%v)", err)
	default:
		logging.Info("  libvips:     ENABLED")
	}
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			// PathPrefix-less catch-all routes have no template
			pathTemplate = "/*"
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   route.GetName(),
			})
		}
		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs the registered routes at debug level and the access log
// settings at info level.
func LogHTTPRoutes(router *mux.Router, logStaticFiles, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		sort.SliceStable(routes, func(i, j int) bool {
			return getRouteGroup(routes[i].Path) < getRouteGroup(routes[j].Path)
		})

		logging.Debug("  Registered routes (%d total):", len(routes))
		for _, route := range routes {
			logging.Debug("    %-7s %s", route.Method, route.Path)
		}
		logging.Debug("")
	}

	logging.Info("  HTTP logging enabled")
	if logStaticFiles {
		logging.Info("    Static file logging: ON")
	} else {
		logging.Info("    Static file logging: OFF (set LOG_STATIC_FILES=true to enable)")
	}
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	first := parts[0]

	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}
	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Admin panel:     http://localhost:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("  Metrics:         http://localhost:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("  Metrics:         DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(reason string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (%s)", reason)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
   ____       _ _                      _       _           _
  / ___| __ _| | | ___ _ __ _   _     / \   __| |_ __ ___ (_)_ __
 | |  _ / _' | | |/ _ \ '__| | | |   / _ \ / _' | '_ ' _ \| | '_ \
 | |_| | (_| | | |  __/ |  | |_| |  / ___ \ (_| | | | | | | | | | |
  \____|\__,_|_|_|\___|_|   \__, | /_/   \_\__,_|_| |_| |_|_|_| |_|
                            |___/
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())

	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
