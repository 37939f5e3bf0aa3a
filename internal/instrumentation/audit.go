package instrumentation

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Audit log messages.
const (
	auditMsgExecuted = "tool_executed"
	auditMsgFailed   = "tool_failed"
)

// ToolInvocation is one audited MCP tool call.
//
// Arguments hold task content, comments and collaborator emails. They are
// only logged when AuditLoggingConfig.IncludeArguments is set.
type ToolInvocation struct {
	Tool       string
	Mutability string
	Arguments  map[string]any

	Start    time.Time
	Duration time.Duration
	Failed   bool
	Error    string

	TraceID string
	SpanID  string
}

// StartToolInvocation begins timing a tool call. ctx should carry the tool
// span so the audit record can be joined with the trace.
func StartToolInvocation(ctx context.Context, tool, mutability string, args map[string]any) *ToolInvocation {
	ti := &ToolInvocation{
		Tool:       tool,
		Mutability: mutability,
		Arguments:  args,
		Start:      time.Now(),
	}
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		ti.TraceID = sc.TraceID().String()
		ti.SpanID = sc.SpanID().String()
	}
	return ti
}

// Finish stops the clock. failed covers both Go errors and error results;
// msg is the error text, possibly empty.
func (ti *ToolInvocation) Finish(failed bool, msg string) {
	ti.Duration = time.Since(ti.Start)
	ti.Failed = failed
	ti.Error = msg
}

// Status returns StatusSuccess or StatusError.
func (ti *ToolInvocation) Status() string {
	if ti.Failed {
		return StatusError
	}
	return StatusSuccess
}

func (ti *ToolInvocation) attrs(includeArguments bool) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", !ti.Failed),
		slog.Int("arg_count", len(ti.Arguments)),
	}
	if ti.Mutability != "" {
		attrs = append(attrs, slog.String("mutability", ti.Mutability))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}
	if !includeArguments {
		return attrs
	}

	if ti.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ti.SpanID))
	}
	if len(ti.Arguments) > 0 {
		if raw, err := json.Marshal(ti.Arguments); err == nil {
			attrs = append(attrs, slog.String("arguments", string(raw)))
		}
	}
	return attrs
}

// AuditLogger writes one record per tool call. Failures are logged at warn
// level. A nil *AuditLogger discards everything.
type AuditLogger struct {
	logger *slog.Logger
	config AuditLoggingConfig
}

// NewAuditLogger returns an AuditLogger writing to logger, or slog.Default
// when logger is nil.
func NewAuditLogger(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{logger: logger, config: config}
}

// Log writes the audit record for ti.
func (al *AuditLogger) Log(ti *ToolInvocation) {
	if al == nil || !al.config.Enabled {
		return
	}

	level, msg := slog.LevelInfo, auditMsgExecuted
	if ti.Failed {
		level, msg = slog.LevelWarn, auditMsgFailed
	}
	al.logger.LogAttrs(context.Background(), level, msg, ti.attrs(al.config.IncludeArguments)...)
}
