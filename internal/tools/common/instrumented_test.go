package common

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/teemow/todoist-mcp/internal/instrumentation"
	"github.com/teemow/todoist-mcp/internal/server"
)

// nopClient satisfies server.TodoistClient; calling any method panics.
type nopClient struct {
	server.TodoistClient
}

func newTestServerContext(t *testing.T, opts ...server.Option) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(context.Background(), nopClient{}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func withSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func withNoopMetrics(t *testing.T, sc *server.ServerContext) {
	t.Helper()
	metrics, err := instrumentation.NewMetrics(noop.NewMeterProvider().Meter("test"), false)
	require.NoError(t, err)
	sc.SetMetrics(metrics)
}

var testDef = Definition{Name: "find-tasks", Mutability: ReadOnly}

func TestInstrumentedToolHandler_Uninstrumented(t *testing.T) {
	recorder := withSpanRecorder(t)
	sc := newTestServerContext(t)

	called := false
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("ok"), nil
	}

	result, err := InstrumentedToolHandler(testDef, sc, handler)(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, called)
	assert.Empty(t, recorder.Ended(), "no span without metrics or audit logger")
}

func TestInstrumentedToolHandler_SpanStatus(t *testing.T) {
	handlerErr := errors.New("connection reset")

	tests := []struct {
		name       string
		handler    func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
		wantErr    error
		wantStatus codes.Code
		wantDesc   string
	}{
		{
			name: "success",
			handler: func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return mcp.NewToolResultText("ok"), nil
			},
			wantStatus: codes.Ok,
		},
		{
			name: "go error",
			handler: func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return nil, handlerErr
			},
			wantErr:    handlerErr,
			wantStatus: codes.Error,
			wantDesc:   "connection reset",
		},
		{
			name: "error result",
			handler: func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return mcp.NewToolResultError("Task not found"), nil
			},
			wantStatus: codes.Error,
			wantDesc:   "Task not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := withSpanRecorder(t)
			sc := newTestServerContext(t)
			withNoopMetrics(t, sc)

			_, err := InstrumentedToolHandler(testDef, sc, tt.handler)(context.Background(), mcp.CallToolRequest{})
			assert.Equal(t, tt.wantErr, err)

			ended := recorder.Ended()
			require.Len(t, ended, 1)
			assert.Equal(t, "tool.find-tasks", ended[0].Name())
			assert.Equal(t, tt.wantStatus, ended[0].Status().Code)
			assert.Equal(t, tt.wantDesc, ended[0].Status().Description)
		})
	}
}

func TestInstrumentedToolHandler_AuditLog(t *testing.T) {
	withSpanRecorder(t)
	sc := newTestServerContext(t)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	sc.SetAuditLogger(instrumentation.NewAuditLogger(logger, instrumentation.AuditLoggingConfig{Enabled: true}))

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("Task not found"), nil
	}

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"ids": []any{"t1"}, "dryRun": true}

	_, err := InstrumentedToolHandler(Definition{Name: "complete-tasks", Mutability: Mutating}, sc, handler)(context.Background(), req)
	require.NoError(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "tool_failed", rec["msg"])
	assert.Equal(t, "complete-tasks", rec["tool"])
	assert.Equal(t, "mutating", rec["mutability"])
	assert.Equal(t, float64(2), rec["arg_count"])
	assert.Equal(t, "Task not found", rec["error"])
	assert.NotEmpty(t, rec["trace_id"])
	assert.NotContains(t, rec, "arguments", "arguments are only logged when enabled")
}
