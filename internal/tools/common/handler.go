package common

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/todoist-mcp/internal/format"
	"github.com/teemow/todoist-mcp/internal/logging"
	"github.com/teemow/todoist-mcp/internal/server"
)

// Execute is the body of a tool: it receives the bound arguments and
// returns the summary text plus the structured payload.
type Execute[A any] func(ctx context.Context, sc *server.ServerContext, args A) (format.Output, error)

// TypedHandler binds the request arguments into A, runs exec and turns the
// output into a tool result. Errors from binding or exec become MCP error
// results; they are never returned as Go errors.
func TypedHandler[A any](def Definition, sc *server.ServerContext, exec Execute[A]) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args A
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments for %s: %v", def.Name, err)), nil
		}

		logger := logging.WithTool(sc.Logger(), def.Name)
		out, err := exec(ctx, sc, args)
		if err != nil {
			logger.Debug("tool failed",
				logging.Status(logging.StatusError),
				logging.Err(err))
			return mcp.NewToolResultError(ErrorMessage(err)), nil
		}

		if sc.ValidateOutput() {
			checkOutput(logger, def, out.Structured)
		}

		return sc.Formatter().Result(out)
	}
}

// Register adds the tool described by def to s with a typed, instrumented
// handler.
func Register[A any](s *mcpserver.MCPServer, sc *server.ServerContext, def Definition, exec Execute[A]) {
	s.AddTool(def.Tool(), InstrumentedToolHandler(def, sc, TypedHandler(def, sc, exec)))
}

// checkOutput expects a logger already scoped to the tool.
func checkOutput(logger *slog.Logger, def Definition, structured any) {
	violations, err := ValidateOutput(def.OutputSchema(), structured)
	if err != nil {
		logger.Warn("output validation failed", logging.Err(err))
		return
	}
	if len(violations) > 0 {
		logger.Warn("structured output does not match schema",
			logging.Count(len(violations)),
			slog.String("violations", joinViolations(violations)))
	}
}
