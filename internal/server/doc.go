// Package server holds the runtime pieces shared by the MCP tools and the
// transports.
//
// # Key Components
//
// ServerContext carries the Todoist client, the response formatter, the
// configured timezone and clock, and the optional metrics and audit
// logger. It is built once at startup and is read-only afterwards.
//
// HTTPServer mounts the streamable HTTP transport at /mcp next to the
// health endpoints:
//   - /healthz: liveness
//   - /readyz: readiness, fails once shutdown has begun
//   - /healthz/detailed: status and uptime
//
// MetricsServer exposes the Prometheus registry of the instrumentation
// provider on a separate port.
package server
