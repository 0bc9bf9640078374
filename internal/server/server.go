package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"gallery-admin/internal/handlers"
	"gallery-admin/internal/logging"
	"gallery-admin/internal/middleware"
	"gallery-admin/internal/startup"

	"github.com/gorilla/mux"
)

// ShutdownTimeout bounds how long in-flight requests may run after shutdown
// starts.
const ShutdownTimeout = 30 * time.Second

// Server owns the admin HTTP server and the optional metrics server.
type Server struct {
	config  *startup.Config
	router  *mux.Router
	handler http.Handler

	srv        *http.Server
	metricsSrv *http.Server
}

// New builds the router and middleware chain. Nothing listens until Run.
func New(config *startup.Config, h *handlers.Handlers) *Server {
	router := NewRouter(h, config.Root)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks

	// Outermost first: request id, access log, CORS, metrics, router.
	var handler http.Handler = router
	handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)
	handler = middleware.CORS(middleware.DefaultCORSConfig())(handler)
	handler = middleware.Logger(loggingConfig)(handler)
	handler = middleware.RequestID(handler)

	s := &Server{
		config:  config,
		router:  router,
		handler: handler,
		srv: &http.Server{
			Addr:              ":" + config.Port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       5 * time.Minute,
			WriteTimeout:      0,
			IdleTimeout:       60 * time.Second,
		},
	}

	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", h.MetricsHandler())
		s.metricsSrv = &http.Server{
			Addr:              ":" + config.MetricsPort,
			Handler:           metricsMux,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	return s
}

// NewRouter registers the admin routes. Everything not matched by an API
// route is served from the gallery root; API paths never fall through to the
// site, so a wrong method on them answers 405.
func NewRouter(h *handlers.Handlers, root string) *mux.Router {
	r := mux.NewRouter()
	apiPaths := make(map[string]bool)

	handle := func(r *mux.Router, prefix, path string, f http.HandlerFunc, methods ...string) {
		apiPaths[prefix+path] = true
		r.HandleFunc(path, f).Methods(methods...)
	}

	handle(r, "", "/health", h.HealthCheck, "GET", "HEAD")
	handle(r, "", "/healthz", h.HealthCheck, "GET", "HEAD")
	handle(r, "", "/livez", h.LivenessCheck, "GET", "HEAD")
	handle(r, "", "/version", h.GetVersion, "GET")

	handle(r, "", "/copy-image", h.CopyImage, "POST")
	handle(r, "", "/save-json", h.SaveJSON, "POST")
	handle(r, "", "/extract-exif", h.ExtractExif, "POST")
	handle(r, "", "/generate-thumbnails", h.GenerateThumbnails, "POST")

	api := r.PathPrefix("/api").Subrouter()
	handle(api, "/api", "/catalog", h.GetCatalog, "GET")

	// The path check must come before PathPrefix: a successful path match
	// clears the method mismatch recorded by the API routes.
	r.MatcherFunc(func(req *http.Request, _ *mux.RouteMatch) bool {
		return !apiPaths[req.URL.Path]
	}).PathPrefix("/").Handler(handlers.StaticFiles(root)).Methods("GET", "HEAD")

	return r
}

// Router returns the route table, for startup logging.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Handler returns the full middleware chain.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured ports and blocks until ctx is cancelled or a
// listener fails. On cancellation the servers are shut down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.srv.Addr, err)
	}

	var metricsLn net.Listener
	if s.metricsSrv != nil {
		metricsLn, err = net.Listen("tcp", s.metricsSrv.Addr)
		if err != nil {
			_ = ln.Close()
			return fmt.Errorf("failed to listen on %s: %w", s.metricsSrv.Addr, err)
		}
	}

	return s.serve(ctx, ln, metricsLn)
}

// serve runs the servers on already-open listeners. metricsLn may be nil.
func (s *Server) serve(ctx context.Context, ln, metricsLn net.Listener) error {
	errCh := make(chan error, 2)

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("admin server: %w", err)
		}
	}()

	if metricsLn != nil {
		go func() {
			logging.Debug("Metrics server listening on %s", metricsLn.Addr())
			if err := s.metricsSrv.Serve(metricsLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		startup.LogShutdownInitiated(context.Cause(ctx).Error())
	case runErr = <-errCh:
		logging.Error("Server error: %v", runErr)
		startup.LogShutdownInitiated("server error")
	}

	s.shutdown()
	return runErr
}

func (s *Server) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := s.srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if s.metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := s.metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}
}
