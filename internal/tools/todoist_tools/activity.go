package todoist_tools

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/todoist-mcp/internal/format"
	"github.com/teemow/todoist-mcp/internal/mapping"
	"github.com/teemow/todoist-mcp/internal/server"
	"github.com/teemow/todoist-mcp/internal/todoist"
	"github.com/teemow/todoist-mcp/internal/tools/common"
)

// activityObjectTypes maps tool object types to activity log object types.
var activityObjectTypes = map[string]string{
	"task":    "item",
	"project": "project",
	"section": "section",
	"comment": "note",
}

var activityEventTypes = []string{
	"added", "updated", "deleted", "completed", "uncompleted",
	"archived", "unarchived", "shared", "left",
}

func registerActivityTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) {
	register(s, sc, readOnly, findActivityDef, findActivity)
}

type activityOutput struct {
	Events     []mapping.ActivityEvent `json:"events"`
	NextCursor string                  `json:"nextCursor,omitempty"`
	TotalCount int                     `json:"totalCount"`
	HasMore    bool                    `json:"hasMore"`
}

type findActivityArgs struct {
	ObjectType  string `json:"objectType"`
	ObjectID    string `json:"objectId"`
	EventType   string `json:"eventType"`
	ProjectID   string `json:"projectId"`
	TaskID      string `json:"taskId"`
	InitiatorID string `json:"initiatorId"`
	Limit       int    `json:"limit"`
	Cursor      string `json:"cursor"`
}

var findActivityDef = common.NewDefinition[activityOutput](
	"find-activity",
	"Find activity",
	"List recent account activity, newest first, optionally narrowed by object, event type, project, parent task or initiator.",
	common.ReadOnly,
	mcp.WithString("objectType",
		mcp.Description("Kind of object the event is about."),
		mcp.Enum("task", "project", "section", "comment"),
	),
	mcp.WithString("objectId", mcp.Description("Only events about this object. Requires objectType.")),
	mcp.WithString("eventType",
		mcp.Description("Only events of this type."),
		mcp.Enum(activityEventTypes...),
	),
	mcp.WithString("projectId", mcp.Description("Only events inside this project. Accepts \"inbox\".")),
	mcp.WithString("taskId", mcp.Description("Only events on comments or subtasks of this task.")),
	mcp.WithString("initiatorId", mcp.Description("Only events caused by this user.")),
	limitParam(defaultActivityLimit),
	cursorParam(),
)

func findActivity(ctx context.Context, sc *server.ServerContext, args findActivityArgs) (format.Output, error) {
	limit, err := clampLimit(args.Limit, defaultActivityLimit)
	if err != nil {
		return format.Output{}, err
	}

	req := todoist.ActivityArgs{
		ObjectID:     args.ObjectID,
		ParentItemID: args.TaskID,
		InitiatorID:  args.InitiatorID,
		PageArgs:     todoist.PageArgs{Cursor: args.Cursor, Limit: limit},
	}
	if args.ObjectType != "" {
		remote, ok := activityObjectTypes[args.ObjectType]
		if !ok {
			return format.Output{}, fmt.Errorf("invalid objectType %q, must be one of: task, project, section, comment", args.ObjectType)
		}
		req.ObjectType = remote
	} else if args.ObjectID != "" {
		return format.Output{}, fmt.Errorf("objectId requires objectType")
	}
	if args.EventType != "" {
		if !slices.Contains(activityEventTypes, args.EventType) {
			return format.Output{}, fmt.Errorf("invalid eventType %q, must be one of: %s", args.EventType, strings.Join(activityEventTypes, ", "))
		}
		req.EventType = args.EventType
	}
	if args.ProjectID != "" {
		projectID, err := newResolver(sc).ResolveProjectID(ctx, args.ProjectID)
		if err != nil {
			return format.Output{}, err
		}
		req.ParentProjectID = projectID
	}

	page, err := sc.Client().GetActivityLogs(ctx, req)
	if err != nil {
		return format.Output{}, fmt.Errorf("failed to list activity: %w", err)
	}

	out := activityOutput{
		Events:     mapping.MapActivityEvents(page.Results),
		NextCursor: page.NextCursor,
		TotalCount: len(page.Results),
		HasMore:    page.NextCursor != "",
	}

	var hints []string
	for _, h := range []struct{ name, value string }{
		{"objectType", args.ObjectType}, {"objectId", args.ObjectID}, {"eventType", args.EventType},
		{"projectId", args.ProjectID}, {"taskId", args.TaskID}, {"initiatorId", args.InitiatorID},
	} {
		if h.value != "" {
			hints = append(hints, h.name+": "+h.value)
		}
	}
	text := sc.Formatter().SummarizeList(format.ListSummary{
		Subject:         "Activity events",
		Count:           out.TotalCount,
		Limit:           limit,
		NextCursor:      out.NextCursor,
		FilterHints:     hints,
		PreviewLines:    format.Lines(out.Events, format.PreviewActivity),
		ZeroReasonHints: []string{"No matching activity was recorded", "Activity history depends on the account plan"},
	})
	return format.Output{Text: text, Structured: out}, nil
}
