package common

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/todoist-mcp/internal/instrumentation"
	"github.com/teemow/todoist-mcp/internal/server"
)

// InstrumentedToolHandler gives every call of handler a server span, a
// mcp_tool_invocations_total sample and one audit record. Error results
// count as failures.
func InstrumentedToolHandler(def Definition, sc *server.ServerContext, handler mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		// both are nil-safe; with neither set the call is not traced
		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()
		if metrics == nil && auditLogger == nil {
			return handler(ctx, request)
		}

		ctx, span := instrumentation.StartToolSpan(ctx, def.Name, string(def.Mutability))
		invocation := instrumentation.StartToolInvocation(ctx, def.Name, string(def.Mutability), request.GetArguments())

		result, err := handler(ctx, request)

		switch {
		case err != nil:
			invocation.Finish(true, err.Error())
			instrumentation.FinishSpan(span, err)
		case result != nil && result.IsError:
			invocation.Finish(true, resultText(result))
			instrumentation.FinishSpan(span, errors.New(invocation.Error))
		default:
			invocation.Finish(false, "")
			instrumentation.FinishSpan(span, nil)
		}

		metrics.RecordToolInvocation(ctx, def.Name, invocation.Status(), invocation.Duration)
		auditLogger.Log(invocation)

		return result, err
	}
}

// resultText returns the first text block of an error result.
func resultText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		switch t := c.(type) {
		case mcp.TextContent:
			return t.Text
		case *mcp.TextContent:
			return t.Text
		}
	}
	return ""
}
