package todoist_tools

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/todoist-mcp/internal/failure"
	"github.com/teemow/todoist-mcp/internal/filter"
	"github.com/teemow/todoist-mcp/internal/logging"
	"github.com/teemow/todoist-mcp/internal/resolve"
	"github.com/teemow/todoist-mcp/internal/server"
	"github.com/teemow/todoist-mcp/internal/tools/batch"
	"github.com/teemow/todoist-mcp/internal/tools/common"
)

// Page size bounds shared by list tools.
const (
	defaultTaskLimit      = 10
	defaultCompletedLimit = 50
	defaultProjectLimit   = 50
	defaultActivityLimit  = 20
	maxLimit              = 200

	// batchConcurrency bounds parallel API calls per batch tool.
	batchConcurrency = 8
)

// RegisterTodoistTools registers every Todoist tool with the MCP server.
// In read-only mode only tools that never change data are registered.
func RegisterTodoistTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	seen := make(map[string]struct{})
	for _, def := range Definitions() {
		if _, ok := seen[def.Name]; ok {
			return fmt.Errorf("duplicate tool name %q", def.Name)
		}
		seen[def.Name] = struct{}{}
	}

	registerTaskTools(s, sc, readOnly)
	registerProjectTools(s, sc, readOnly)
	registerSectionTools(s, sc, readOnly)
	registerCommentTools(s, sc, readOnly)
	registerActivityTools(s, sc, readOnly)
	registerOverviewTools(s, sc, readOnly)
	registerUserTools(s, sc, readOnly)
	registerAssignmentTools(s, sc, readOnly)
	registerSearchTools(s, sc, readOnly)
	registerDeleteTools(s, sc, readOnly)
	return nil
}

// Definitions returns the definitions of every tool, in registration order.
// Used to generate documentation.
func Definitions() []common.Definition {
	return []common.Definition{
		findTasksDef, findTasksByDateDef, findCompletedTasksDef,
		addTasksDef, updateTasksDef, completeTasksDef,
		findProjectsDef, addProjectsDef, updateProjectsDef,
		findSectionsDef, addSectionsDef, updateSectionsDef,
		findCommentsDef, addCommentsDef, updateCommentsDef,
		findActivityDef, getOverviewDef, userInfoDef, findCollaboratorsDef,
		manageAssignmentsDef, searchDef, fetchDef, deleteObjectDef,
	}
}

// register adds def unless it would change data while in read-only mode.
func register[A any](s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool, def common.Definition, exec common.Execute[A]) {
	if readOnly && def.Mutability != common.ReadOnly {
		return
	}
	common.Register(s, sc, def, exec)
}

func newResolver(sc *server.ServerContext) *resolve.Resolver {
	return resolve.New(sc.Client(), logging.NewSlogAdapter(logging.WithOperation(sc.Logger(), "resolve_user")))
}

// logTaskFailures records each failed task of a CollectPartial batch at
// debug level. The summary already reports them to the caller.
func logTaskFailures(sc *server.ServerContext, tool, operation string, failures []failure.Report) {
	for _, f := range failures {
		sc.Logger().Debug("task operation failed",
			logging.Tool(tool),
			logging.Operation(operation),
			logging.Task(f.Item),
			logging.Status(logging.StatusError),
			slog.String("code", f.Code),
			slog.String("reason", f.Error))
	}
}

func batchOptions(sc *server.ServerContext, tool string) batch.Options {
	return batch.Options{Tool: tool, Limit: batchConcurrency, Metrics: sc.Metrics()}
}

// clampLimit applies the default for unset limits and rejects out-of-range ones.
func clampLimit(limit, def int) (int, error) {
	switch {
	case limit == 0:
		return def, nil
	case limit < 0 || limit > maxLimit:
		return 0, fmt.Errorf("limit must be between 1 and %d", maxLimit)
	}
	return limit, nil
}

// parseResponsibleMode validates the responsibleUserFiltering argument.
func parseResponsibleMode(s string, def filter.ResponsibleFiltering) (filter.ResponsibleFiltering, error) {
	if s == "" {
		return def, nil
	}
	if !slices.Contains(filter.ResponsibleModes, s) {
		return "", fmt.Errorf("invalid responsibleUserFiltering %q, must be one of: %s", s, strings.Join(filter.ResponsibleModes, ", "))
	}
	return filter.ResponsibleFiltering(s), nil
}

// parseOperator validates the labelsOperator argument.
func parseOperator(s string) (filter.Operator, error) {
	switch filter.Operator(s) {
	case "":
		return filter.OperatorOr, nil
	case filter.OperatorAnd, filter.OperatorOr:
		return filter.Operator(s), nil
	}
	return "", fmt.Errorf("invalid labelsOperator %q, must be \"and\" or \"or\"", s)
}

// responsibleClause resolves ref to a user, when given, and renders the
// assignee clause for mode.
func responsibleClause(ctx context.Context, sc *server.ServerContext, ref string, mode filter.ResponsibleFiltering) (string, error) {
	if ref == "" {
		return filter.ResponsibleClause(mode, ""), nil
	}
	user, err := newResolver(sc).ResolveUser(ctx, ref, "")
	if err != nil {
		return "", err
	}
	return filter.ResponsibleClause(mode, user.Email), nil
}

// Shared parameter declarations.

func limitParam(def int) mcp.ToolOption {
	return mcp.WithNumber("limit",
		mcp.Description(fmt.Sprintf("Maximum number of results (default %d, max %d).", def, maxLimit)),
		mcp.Min(1),
		mcp.Max(maxLimit),
	)
}

func cursorParam() mcp.ToolOption {
	return mcp.WithString("cursor",
		mcp.Description("Cursor from a previous call's nextCursor to fetch the next page."),
	)
}

func labelsParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithArray("labels",
			mcp.Description("Label names to filter by. The @ prefix is optional."),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("labelsOperator",
			mcp.Description("How to combine labels: \"or\" (default) matches any, \"and\" matches all."),
			mcp.Enum(string(filter.OperatorOr), string(filter.OperatorAnd)),
		),
	}
}

func responsibleParams(def filter.ResponsibleFiltering) []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("responsibleUser",
			mcp.Description("Only tasks assigned to this user: \"me\", an ID, an email or a name."),
		),
		mcp.WithString("responsibleUserFiltering",
			mcp.Description(fmt.Sprintf("Assignee filter when no responsibleUser is given (default %q).", def)),
			mcp.Enum(filter.ResponsibleModes...),
		),
	}
}

// objectArray declares a required array parameter whose items are objects.
func objectArray(name, description string, required []string, props map[string]any) mcp.ToolOption {
	return mcp.WithArray(name,
		mcp.Required(),
		mcp.Description(description),
		mcp.MinItems(1),
		mcp.Items(map[string]any{
			"type":                 "object",
			"properties":           props,
			"required":             required,
			"additionalProperties": false,
		}),
	)
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}

func enumProp(description string, values ...string) map[string]any {
	return map[string]any{"type": "string", "description": description, "enum": values}
}

func stringArrayProp(description string) map[string]any {
	return map[string]any{"type": "array", "description": description, "items": map[string]any{"type": "string"}}
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
