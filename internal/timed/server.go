// Package timed serves the cached stable-time reading over HTTP so
// cooperating processes can read and refresh it without opening the
// preference medium themselves.
package timed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/host"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/louisbranch/stabletime/internal/timestore"
)

// ServerConfig defines the inputs for the daemon server.
type ServerConfig struct {
	HTTPAddr string
	Storage  *timestore.Storage
	// Uptime overrides the live system-uptime reading. Tests inject a fixed
	// value here; a nil func reads the host.
	Uptime func() (float64, error)
}

// Server hosts the stable-time HTTP API.
type Server struct {
	httpAddr   string
	storage    *timestore.Storage
	uptime     func() (float64, error)
	httpServer *http.Server
}

// NewServer builds a configured daemon server.
func NewServer(config ServerConfig) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if config.Storage == nil {
		return nil, errors.New("storage is required")
	}
	uptime := config.Uptime
	if uptime == nil {
		uptime = func() (float64, error) {
			value, err := host.Uptime()
			if err != nil {
				return 0, fmt.Errorf("read system uptime: %w", err)
			}
			return float64(value), nil
		}
	}

	server := &Server{
		httpAddr: httpAddr,
		storage:  config.Storage,
		uptime:   uptime,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", server.handleHealth)
	mux.HandleFunc("GET /v1/stable-time", server.handleGetStableTime)
	mux.HandleFunc("PUT /v1/stable-time", server.handlePutStableTime)
	mux.HandleFunc("GET /v1/stable-time/now", server.handleNow)

	server.httpServer = &http.Server{
		Addr:              httpAddr,
		Handler:           otelhttp.NewHandler(mux, "timed"),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server, nil
}

// Handler exposes the HTTP handler for tests.
func (s *Server) Handler() http.Handler {
	if s == nil || s.httpServer == nil {
		return nil
	}
	return s.httpServer.Handler
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("timed server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	serveErr := make(chan error, 1)
	log.Printf("timed listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
