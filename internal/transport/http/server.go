package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joshdurbin/golinks/internal/service"
)

// Server represents the HTTP server
type Server struct {
	handler *Handler
	router  http.Handler
	server  *http.Server
	port    string
	log     *slog.Logger
}

// NewServer creates a new HTTP server. Metrics from gatherer are exposed
// under the management prefix.
func NewServer(links service.LinkService, gatherer prometheus.Gatherer, port, baseURL string, verbose bool, log *slog.Logger) *Server {
	handler := NewHandler(links, baseURL, log)

	mux := http.NewServeMux()

	// Management endpoints
	mux.HandleFunc(ManagementPrefix, handler.Index)
	mux.HandleFunc(ManagementPrefix+"/links", handler.ListLinks)
	mux.HandleFunc(ManagementPrefix+"/links/", handler.GetLink)
	mux.HandleFunc(ManagementPrefix+"/add", handler.AddLink)
	mux.HandleFunc(ManagementPrefix+"/update", handler.UpdateLink)
	mux.HandleFunc(ManagementPrefix+"/delete", handler.DeleteLink)
	mux.HandleFunc(ManagementPrefix+"/stats", handler.Stats)
	mux.HandleFunc(ManagementPrefix+"/health", handler.Health)
	mux.Handle(ManagementPrefix+"/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc(ManagementPrefix+"/", http.NotFound)

	// Redirect endpoint (catch-all)
	mux.HandleFunc("/", handler.Redirect)

	var router http.Handler = mux
	if verbose {
		router = NewLoggingMiddleware(log).Middleware(router)
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		handler: handler,
		router:  router,
		server:  server,
		port:    port,
		log:     log,
	}
}

// Start starts the HTTP server. It returns nil after Shutdown.
func (s *Server) Start() error {
	s.log.Info("server starting", "port", s.port)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Serve serves on an existing listener. It returns nil after Shutdown.
func (s *Server) Serve(l net.Listener) error {
	s.log.Info("server starting", "addr", l.Addr().String())
	if err := s.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("server shutting down")
	return s.server.Shutdown(ctx)
}

// Port returns the server port
func (s *Server) Port() string {
	return s.port
}

// Handler returns the server handler (useful for testing)
func (s *Server) Handler() *Handler {
	return s.handler
}

// Router returns the routed http.Handler including middleware
func (s *Server) Router() http.Handler {
	return s.router
}
