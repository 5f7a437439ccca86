package restapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"eth_block_explorer/internal/config"
	"eth_block_explorer/internal/logger"
	"eth_block_explorer/internal/metrics"
	"eth_block_explorer/pkg/blockexplorer"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	explorer   blockexplorer.Explorer
	logger     logger.AppLogger
}

// Option configures optional Server features.
type Option func(*serverOptions)

type serverOptions struct {
	recorder    *metrics.Recorder
	gatherer    prometheus.Gatherer
	metricsPath string
}

// WithMetrics instruments every API route with recorder and serves gatherer at path.
func WithMetrics(recorder *metrics.Recorder, gatherer prometheus.Gatherer, path string) Option {
	return func(o *serverOptions) {
		o.recorder = recorder
		o.gatherer = gatherer
		o.metricsPath = path
	}
}

// NewServer creates a new instance of the REST API server.
func NewServer(explorer blockexplorer.Explorer, appLogger logger.AppLogger, cfg *config.ServerConfig, opts ...Option) (*Server, error) {
	if explorer == nil {
		return nil, errors.New("explorer cannot be nil for Server")
	}
	if appLogger == nil {
		return nil, errors.New("logger cannot be nil for Server")
	}
	if cfg == nil {
		return nil, errors.New("config cannot be nil for Server")
	}

	var o serverOptions
	for _, opt := range opts {
		opt(&o)
	}

	h, err := NewHTTPHandler(explorer, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize handler: %w", err)
	}

	router := newRouter(h, o)
	logRoutes(appLogger, cfg.Port, o)

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           router,
		ReadTimeout:       time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(cfg.IdleTimeoutSeconds) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.ReadHeaderTimeoutSeconds) * time.Second,
	}

	return &Server{
		httpServer: server,
		explorer:   explorer,
		logger:     appLogger,
	}, nil
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("HTTP server starting", "address", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("HTTP server ListenAndServe error", "error", err)
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}
	s.logger.Info("HTTP server stopped gracefully.")
	return nil
}

// newRouter registers all API handlers on a gorilla/mux router.
func newRouter(h *HTTPHandler, o serverOptions) *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", h.HandleHealth).Methods(http.MethodGet)
	api.HandleFunc("/state", h.HandleGetState).Methods(http.MethodGet)
	api.HandleFunc("/initialize", h.HandleInitialize).Methods(http.MethodPost)
	api.HandleFunc("/select", h.HandleSelect).Methods(http.MethodPost)
	api.HandleFunc("/ws", h.HandleStream).Methods(http.MethodGet)

	if o.recorder != nil {
		api.Use(o.recorder.Middleware())
	}
	if o.gatherer != nil && o.metricsPath != "" {
		r.Handle(o.metricsPath, metrics.Handler(o.gatherer)).Methods(http.MethodGet)
	}

	return r
}

func logRoutes(l logger.AppLogger, port string, o serverOptions) {
	l.Info("-------------------------------------")
	l.Info("API Server starting", "address", port)
	l.Info("Available Endpoints:")
	l.Info("  GET  /api/health")
	l.Info("  GET  /api/state")
	l.Info("  POST /api/initialize")
	l.Info("  POST /api/select     (Body: {'blockNumber':123})")
	l.Info("  GET  /api/ws         (WebSocket state stream)")
	if o.gatherer != nil && o.metricsPath != "" {
		l.Info("  GET  " + o.metricsPath)
	}
	l.Info("-------------------------------------")
}
