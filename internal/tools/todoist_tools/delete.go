package todoist_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/todoist-mcp/internal/format"
	"github.com/teemow/todoist-mcp/internal/resolve"
	"github.com/teemow/todoist-mcp/internal/server"
	"github.com/teemow/todoist-mcp/internal/tools/common"
)

var deletableTypes = []string{"project", "section", "task", "comment"}

func registerDeleteTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) {
	register(s, sc, readOnly, deleteObjectDef, deleteObject)
}

type deleteObjectArgs struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type deleteObjectOutput struct {
	DeletedType string `json:"deletedType" jsonschema:"enum=project,enum=section,enum=task,enum=comment"`
	DeletedID   string `json:"deletedId"`
	Success     bool   `json:"success"`
}

var deleteObjectDef = common.NewDefinition[deleteObjectOutput](
	"delete-object",
	"Delete object",
	"Permanently delete a project, section, task or comment. Deleting a project or section deletes everything in it.",
	common.Mutating,
	mcp.WithString("type",
		mcp.Required(),
		mcp.Description("Kind of object to delete."),
		mcp.Enum(deletableTypes...),
	),
	mcp.WithString("id", mcp.Required(), mcp.Description("ID of the object to delete.")),
)

func deleteObject(ctx context.Context, sc *server.ServerContext, args deleteObjectArgs) (format.Output, error) {
	if strings.TrimSpace(args.ID) == "" {
		return format.Output{}, fmt.Errorf("id is required")
	}

	var del func(context.Context, string) error
	switch args.Type {
	case "project":
		if resolve.IsInbox(args.ID) {
			return format.Output{}, fmt.Errorf("the inbox project cannot be deleted")
		}
		del = sc.Client().DeleteProject
	case "section":
		del = sc.Client().DeleteSection
	case "task":
		del = sc.Client().DeleteTask
	case "comment":
		del = sc.Client().DeleteComment
	default:
		return format.Output{}, fmt.Errorf("invalid type %q, must be one of: %s", args.Type, strings.Join(deletableTypes, ", "))
	}

	if err := del(ctx, args.ID); err != nil {
		return format.Output{}, fmt.Errorf("failed to delete %s: %w", args.Type, err)
	}

	return format.Output{
		Text:       fmt.Sprintf("Deleted %s %s.", args.Type, args.ID),
		Structured: deleteObjectOutput{DeletedType: args.Type, DeletedID: args.ID, Success: true},
	}, nil
}
