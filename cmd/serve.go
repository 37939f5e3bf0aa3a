package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/todoist-mcp/internal/config"
	"github.com/teemow/todoist-mcp/internal/format"
	"github.com/teemow/todoist-mcp/internal/instrumentation"
	"github.com/teemow/todoist-mcp/internal/logging"
	"github.com/teemow/todoist-mcp/internal/resources"
	"github.com/teemow/todoist-mcp/internal/server"
	"github.com/teemow/todoist-mcp/internal/todoist"
	"github.com/teemow/todoist-mcp/internal/tools/todoist_tools"
)

// MetricsConfig holds configuration for the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool
	Addr    string
}

// serveOptions are the settings that only affect the process, not the tools.
type serveOptions struct {
	debug            bool
	logFormat        string
	disableStreaming bool
	metrics          MetricsConfig
}

func newServeCmd() *cobra.Command {
	var (
		flags configFlags
		opts  serveOptions
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server exposing Todoist task,
project, section and comment tools to AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport on /mcp, with /healthz, /readyz and /healthz/detailed.
    Binds 127.0.0.1:8080 by default and requires a bearer token
    (--http-token or TODOIST_MCP_HTTP_TOKEN) on /mcp and /healthz/detailed.

Configuration (highest priority first):
  - command-line flags
  - environment variables (TODOIST_API_KEY, TODOIST_TIMEZONE, ...)
  - a dotenv file (--env-file, default .env)
  - a YAML config file (--config)

Read-only mode:
  Use --read-only (or TODOIST_READ_ONLY=true) to register only the tools
  that never change data.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("metrics-enabled") && os.Getenv("METRICS_ENABLED") == "true" {
				opts.metrics.Enabled = true
			}
			if !cmd.Flags().Changed("metrics-addr") {
				if addr := os.Getenv("METRICS_ADDR"); addr != "" {
					opts.metrics.Addr = addr
				}
			}

			return runServe(cfg, opts)
		},
	}

	flags.registerServe(cmd)
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&opts.logFormat, "log-format", logging.FormatText, "Log format: text or json")
	cmd.Flags().BoolVar(&opts.disableStreaming, "disable-streaming", false, "Disable streaming for HTTP transport (for compatibility with certain clients)")
	cmd.Flags().BoolVar(&opts.metrics.Enabled, "metrics-enabled", false, "Serve Prometheus metrics on a dedicated port (HTTP transport only)")
	cmd.Flags().StringVar(&opts.metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address")

	return cmd
}

func runServe(cfg config.Config, opts serveOptions) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// stdout belongs to the stdio transport, so logs always go to stderr.
	logger, err := logging.New(os.Stderr, opts.logFormat, opts.debug)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	stdio := cfg.Transport == config.TransportStdio

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	var metricsServer *server.MetricsServer
	if !stdio && opts.metrics.Enabled && provider.Enabled() {
		metricsServer, err = startMetricsServer(opts.metrics, provider)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Warn("metrics server shutdown failed", logging.Err(err))
			}
		}()
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	clientConfig := cfg.ClientConfig()
	if provider.Enabled() {
		clientConfig.Metrics = provider.Metrics()
	}
	client, err := todoist.NewClient(shutdownCtx, clientConfig)
	if err != nil {
		return fmt.Errorf("failed to create Todoist client: %w", err)
	}

	serverContext, err := server.NewServerContext(shutdownCtx, client,
		server.WithFormatter(format.New(cfg.FormatConfig())),
		server.WithLocation(loc),
		server.WithLogger(logger),
		server.WithOutputValidation(cfg.ValidateOutput),
	)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("server context shutdown failed", logging.Err(err))
		}
	}()

	// Set metrics and audit logger on server context for tool instrumentation
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(instrumentation.NewAuditLogger(logger, instrConfig.AuditLogging))
	}

	mcpSrv := mcpserver.NewMCPServer("todoist-mcp", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)

	if err := registerAllTools(mcpSrv, serverContext, cfg.ReadOnly); err != nil {
		return err
	}

	logger.Info("todoist-mcp configured",
		slog.String("transport", cfg.Transport),
		slog.Bool("read_only", cfg.ReadOnly),
		slog.String("timezone", loc.String()),
		slog.String("output_mode", cfg.OutputMode),
		slog.String("token", logging.SanitizeToken(cfg.APIKey)))

	switch cfg.Transport {
	case config.TransportStdio:
		return runStdioServer(mcpSrv)
	case config.TransportStreamableHTTP:
		info := server.HealthInfo{
			Version:  version,
			ReadOnly: cfg.ReadOnly,
			Timezone: loc.String(),
			Tools:    len(mcpSrv.ListTools()),
		}
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, cfg.HTTPAddr, cfg.HTTPToken, info, opts, provider)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", cfg.Transport)
	}
}

func startMetricsServer(metricsConfig MetricsConfig, provider *instrumentation.Provider) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    metricsConfig.Addr,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	// Use ready channel to confirm metrics server started successfully
	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	select {
	case <-metricsReady:
		slog.Info("metrics server started", "addr", metricsServer.Addr(), "path", provider.MetricsPath())
		return metricsServer, nil
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("metrics server startup timed out")
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// registerAllTools registers the Todoist tools and resources.
func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Todoist tools",
			register: func() error {
				return todoist_tools.RegisterTodoistTools(mcpSrv, sc, readOnly)
			},
		},
		{
			name: "Todoist resources",
			register: func() error {
				return resources.RegisterTodoistResources(mcpSrv, sc)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, addr, token string, info server.HealthInfo, opts serveOptions, provider *instrumentation.Provider) error {
	httpConfig := server.HTTPServerConfig{
		Addr:             addr,
		AuthToken:        token,
		DisableStreaming: opts.disableStreaming,
		Info:             info,
		APIProbe: func(ctx context.Context) error {
			_, err := sc.Client().GetUser(ctx)
			return err
		},
	}
	if provider.Enabled() {
		httpConfig.Metrics = provider.Metrics()
	}

	httpServer, err := server.NewHTTPServer(mcpSrv, sc, httpConfig)
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	ready := make(chan struct{})
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(ready); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ready:
	case err := <-serverDone:
		return fmt.Errorf("HTTP server failed to start: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Streamable HTTP server starting on %s\n", httpServer.Addr())
	fmt.Fprintf(os.Stderr, "  HTTP endpoint: %s\n", server.MCPEndpointPath)
	fmt.Fprintf(os.Stderr, "  Health endpoints: /healthz, /readyz, /healthz/detailed\n")
	if opts.metrics.Enabled {
		fmt.Fprintf(os.Stderr, "  Metrics endpoint: %s%s\n", opts.metrics.Addr, provider.MetricsPath())
	}

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	slog.Info("HTTP server gracefully stopped")
	return nil
}
