// Package instrumentation wires OpenTelemetry metrics and tracing and the
// tool-call audit log for todoist-mcp.
//
// # Metrics
//
//   - http_requests_total, http_request_duration_seconds: streamable HTTP
//     requests by method, route pattern and status
//   - todoist_api_operations_total, todoist_api_operation_duration_seconds:
//     REST calls by operation ("tasks.filter", "projects.list") and status
//   - mcp_tool_invocations_total, mcp_tool_duration_seconds: tool calls by
//     tool name and status
//   - mcp_batch_items_total: batch items by failure policy and status
//
// With the prometheus exporter the series are served from a private
// registry by Provider.MetricsHandler, next to the Go runtime and process
// collectors.
//
// # Tracing
//
// Tool calls get a server span named tool.<name>. Every Todoist request gets
// a client span named todoist.<operation> whose url.template has the IDs
// replaced. Batch tools record their size on the tool span and add a
// batch.item_failed event per failed item.
//
// # Configuration
//
// DefaultConfig reads INSTRUMENTATION_ENABLED, METRICS_EXPORTER
// (prometheus, otlp, stdout), TRACING_EXPORTER (otlp, stdout, none),
// OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_TRACES_SAMPLER_ARG, OTEL_SERVICE_NAME,
// METRICS_DETAILED_LABELS and the AUDIT_LOGGING_* switches.
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
package instrumentation
