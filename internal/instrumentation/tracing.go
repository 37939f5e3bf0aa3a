package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer every span in this module is started from.
const TracerName = "github.com/teemow/todoist-mcp"

// Span attribute keys.
const (
	SpanAttrTool       = "mcp.tool"
	SpanAttrMutability = "mcp.mutability"
	SpanAttrItemCount  = "mcp.item_count"
	SpanAttrOperation  = "todoist.operation"
	SpanAttrMethod     = "http.request.method"
	SpanAttrRoute      = "url.template"
	SpanAttrItem       = "todoist.item"
	SpanAttrErrorCode  = "todoist.error_code"
)

// Span event names.
const (
	EventBatchItemFailed = "batch.item_failed"
)

func tracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(TracerName)
}

// StartToolSpan starts the server span for one MCP tool call. An empty
// mutability is left off the span.
func StartToolSpan(ctx context.Context, tool, mutability string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.String(SpanAttrTool, tool)}
	if mutability != "" {
		attrs = append(attrs, attribute.String(SpanAttrMutability, mutability))
	}
	return tracer().Start(ctx, "tool."+tool,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attrs...))
}

// StartTodoistAPISpan starts the client span for one Todoist REST call.
// IDs in path are replaced by NormalizeAPIPath.
func StartTodoistAPISpan(ctx context.Context, operation, method, path string) (context.Context, trace.Span) {
	return tracer().Start(ctx, "todoist."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(SpanAttrOperation, operation),
			attribute.String(SpanAttrMethod, method),
			attribute.String(SpanAttrRoute, NormalizeAPIPath(path)),
		))
}

// FinishSpan sets the span status from err and ends the span.
func FinishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// RecordBatchSize sets the number of items a batch tool received on the
// span in ctx.
func RecordBatchSize(ctx context.Context, n int) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int(SpanAttrItemCount, n))
}

// RecordBatchFailure adds an item failure event to the span in ctx.
func RecordBatchFailure(ctx context.Context, item, code string) {
	attrs := []attribute.KeyValue{attribute.String(SpanAttrItem, item)}
	if code != "" {
		attrs = append(attrs, attribute.String(SpanAttrErrorCode, code))
	}
	trace.SpanFromContext(ctx).AddEvent(EventBatchItemFailed, trace.WithAttributes(attrs...))
}

// TraceID returns the trace ID of the span in ctx, or "" when there is none.
func TraceID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}
