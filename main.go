package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"gallery-admin/internal/catalog"
	"gallery-admin/internal/handlers"
	"gallery-admin/internal/media"
	"gallery-admin/internal/metrics"
	"gallery-admin/internal/server"
	"gallery-admin/internal/startup"
)

func main() {
	startTime := time.Now()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)

	// Optional libvips decoder
	if config.VipsEnabled {
		err := media.InitVips()
		startup.LogVipsInit(true, err)
		defer media.ShutdownVips()
	} else {
		startup.LogVipsInit(false, nil)
	}

	// Catalog pipeline
	store := catalog.NewStore(config.CatalogPath)
	updater := catalog.NewUpdater(
		catalog.Config{Root: config.Root, DataDir: config.DataDir},
		store,
		media.NewMetadataExtractor(),
		media.NewThumbnailGenerator(config.ThumbnailDir, config.Thumbnail),
	)

	// HTTP server
	h := handlers.New(updater, config)
	srv := server.New(config, h)
	startup.LogHTTPRoutes(srv.Router(), config.LogStaticFiles, config.LogHealthChecks)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})

	if err := srv.Run(ctx); err != nil {
		if config.VipsEnabled {
			media.ShutdownVips()
		}
		startup.LogFatal("Server error: %v", err)
	}

	startup.LogShutdownComplete()
}
