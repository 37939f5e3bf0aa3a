package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/todoist-mcp/internal/instrumentation"
)

// MCPEndpointPath is where the streamable HTTP transport is mounted.
const MCPEndpointPath = "/mcp"

// HTTPServerConfig configures the streamable HTTP transport.
type HTTPServerConfig struct {
	// Addr is the listen address, e.g. "127.0.0.1:8080".
	Addr string

	// AuthToken is the bearer token clients must send to /mcp and
	// /healthz/detailed. Required.
	AuthToken string

	// DisableStreaming turns off SSE responses for clients that cannot
	// handle them.
	DisableStreaming bool

	// Metrics records one sample per HTTP request. May be nil.
	Metrics *instrumentation.Metrics

	// Info is reported by /healthz/detailed.
	Info HealthInfo

	// APIProbe, when set, is run by /healthz/detailed.
	APIProbe APIProbe
}

// HTTPServer serves the MCP server over streamable HTTP together with the
// health endpoints. /mcp requires the configured bearer token.
type HTTPServer struct {
	config  HTTPServerConfig
	handler http.Handler
	health  *HealthChecker

	mu         sync.Mutex
	addr       string
	httpServer *http.Server
}

// NewHTTPServer wires mcpSrv and the health checks of sc onto one mux.
func NewHTTPServer(mcpSrv *mcpserver.MCPServer, sc *ServerContext, config HTTPServerConfig) (*HTTPServer, error) {
	if mcpSrv == nil {
		return nil, fmt.Errorf("mcp server is required")
	}
	if config.Addr == "" {
		return nil, fmt.Errorf("listen address is required")
	}
	if config.AuthToken == "" {
		return nil, fmt.Errorf("auth token is required")
	}

	opts := []mcpserver.StreamableHTTPOption{
		mcpserver.WithEndpointPath(MCPEndpointPath),
	}
	if config.DisableStreaming {
		opts = append(opts, mcpserver.WithDisableStreaming(true))
	}
	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv, opts...)

	health := NewHealthChecker(sc)
	health.SetInfo(config.Info)
	if config.APIProbe != nil {
		health.SetAPIProbe(config.APIProbe)
	}

	protect := func(h http.Handler) http.Handler { return bearerAuth(config.AuthToken, h) }

	mux := http.NewServeMux()
	mux.Handle(MCPEndpointPath, protect(streamable))
	health.RegisterHealthEndpoints(mux, protect)

	return &HTTPServer{
		config:  config,
		handler: metricsMiddleware(config.Metrics, mux),
		health:  health,
		addr:    config.Addr,
	}, nil
}

// Handler returns the root handler, for tests and embedding.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

// Health returns the health checker backing /healthz and /readyz.
func (s *HTTPServer) Health() *HealthChecker {
	return s.health
}

// Start listens and serves until Shutdown. ready, when non-nil, is closed
// once the listener is bound.
func (s *HTTPServer) Start(ready chan<- struct{}) error {
	s.mu.Lock()
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.addr = ln.Addr().String()
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	slog.Info("starting streamable HTTP server", "addr", ln.Addr().String(), "endpoint", MCPEndpointPath)
	if ready != nil {
		close(ready)
	}
	return srv.Serve(ln)
}

// Shutdown marks the server not ready and drains open connections.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)

	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Addr returns the listen address. Once started it is the bound address.
func (s *HTTPServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streaming working through the wrapper.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// metricsMiddleware labels requests by the matched mux pattern so that
// arbitrary paths cannot grow the label set.
func metricsMiddleware(m *instrumentation.Metrics, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.RecordHTTPRequest(r.Context(), r.Method, route, rec.status, time.Since(start))
	})
}
