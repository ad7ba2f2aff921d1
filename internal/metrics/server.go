package metrics

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/systmms/ssmconfig/internal/logging"
)

// ServerConfig holds configuration for the metrics HTTP server.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":9090". Empty disables the server.
	Addr string

	// Path is the path to serve metrics on.
	Path string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns the default metrics server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Path:         "/metrics",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// Server serves a Prometheus gatherer over HTTP.
type Server struct {
	config   ServerConfig
	gatherer prometheus.Gatherer
	logger   *logging.Logger

	server   *http.Server
	listener net.Listener
}

// NewServer creates a metrics server for gatherer. A nil gatherer means the
// default Prometheus registry.
func NewServer(config ServerConfig, gatherer prometheus.Gatherer, logger *logging.Logger) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{
		config:   config,
		gatherer: gatherer,
		logger:   logger,
	}
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	if s.config.Addr == "" {
		return nil
	}

	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	s.listener = ln

	mux := http.NewServeMux()
	mux.Handle(s.config.Path, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Warn("metrics server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Addr returns the bound address, or "" when not started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
