package todoist_tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/todoist-mcp/internal/format"
	"github.com/teemow/todoist-mcp/internal/mapping"
	"github.com/teemow/todoist-mcp/internal/resolve"
	"github.com/teemow/todoist-mcp/internal/server"
	"github.com/teemow/todoist-mcp/internal/todoist"
	"github.com/teemow/todoist-mcp/internal/tools/batch"
	"github.com/teemow/todoist-mcp/internal/tools/common"
)

func registerCommentTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) {
	register(s, sc, readOnly, findCommentsDef, findComments)
	register(s, sc, readOnly, addCommentsDef, addComments)
	register(s, sc, readOnly, updateCommentsDef, updateComments)
}

type commentListOutput struct {
	Comments   []mapping.Comment `json:"comments"`
	NextCursor string            `json:"nextCursor,omitempty"`
	TotalCount int               `json:"totalCount"`
	HasMore    bool              `json:"hasMore"`
}

// find-comments

type findCommentsArgs struct {
	TaskID    string `json:"taskId"`
	ProjectID string `json:"projectId"`
	CommentID string `json:"commentId"`
	Cursor    string `json:"cursor"`
	Limit     int    `json:"limit"`
}

var findCommentsDef = common.NewDefinition[commentListOutput](
	"find-comments",
	"Find comments",
	"List the comments of a task or a project, or fetch a single comment. Give exactly one of taskId, projectId or commentId.",
	common.ReadOnly,
	mcp.WithString("taskId", mcp.Description("Task whose comments to list.")),
	mcp.WithString("projectId", mcp.Description("Project whose comments to list. Accepts \"inbox\".")),
	mcp.WithString("commentId", mcp.Description("A single comment to fetch.")),
	limitParam(defaultProjectLimit),
	cursorParam(),
)

func findComments(ctx context.Context, sc *server.ServerContext, args findCommentsArgs) (format.Output, error) {
	given := 0
	for _, v := range []string{args.TaskID, args.ProjectID, args.CommentID} {
		if v != "" {
			given++
		}
	}
	if given != 1 {
		return format.Output{}, errors.New("Provide exactly one of: taskId, projectId, or commentId.")
	}
	limit, err := clampLimit(args.Limit, defaultProjectLimit)
	if err != nil {
		return format.Output{}, err
	}

	var (
		comments []todoist.Comment
		next     string
		hint     string
	)
	if args.CommentID != "" {
		c, err := sc.Client().GetComment(ctx, args.CommentID)
		if err != nil {
			return format.Output{}, fmt.Errorf("failed to get comment: %w", err)
		}
		comments = []todoist.Comment{*c}
		hint = "commentId: " + args.CommentID
	} else {
		projectID, err := newResolver(sc).ResolveProjectID(ctx, args.ProjectID)
		if err != nil {
			return format.Output{}, err
		}
		page, err := sc.Client().GetComments(ctx, todoist.CommentListArgs{
			TaskID:    args.TaskID,
			ProjectID: projectID,
			PageArgs:  todoist.PageArgs{Cursor: args.Cursor, Limit: limit},
		})
		if err != nil {
			return format.Output{}, fmt.Errorf("failed to list comments: %w", err)
		}
		comments, next = page.Results, page.NextCursor
		if args.TaskID != "" {
			hint = "taskId: " + args.TaskID
		} else {
			hint = "projectId: " + args.ProjectID
		}
	}

	out := commentListOutput{
		Comments:   mapping.MapComments(comments),
		NextCursor: next,
		TotalCount: len(comments),
		HasMore:    next != "",
	}
	text := sc.Formatter().SummarizeList(format.ListSummary{
		Subject:         "Comments",
		Count:           out.TotalCount,
		Limit:           limit,
		NextCursor:      next,
		FilterHints:     []string{hint},
		PreviewLines:    format.Lines(out.Comments, format.PreviewComment),
		ZeroReasonHints: []string{"Nobody has commented yet", "Use add-comments to start the discussion"},
	})
	return format.Output{Text: text, Structured: out}, nil
}

type commentBatchOutput struct {
	Comments   []mapping.Comment `json:"comments"`
	TotalCount int               `json:"totalCount"`
}

func commentBatchResult(sc *server.ServerContext, action string, comments []*todoist.Comment) (format.Output, error) {
	mapped := make([]mapping.Comment, 0, len(comments))
	for _, c := range comments {
		mapped = append(mapped, mapping.MapComment(*c))
	}
	text, err := sc.Formatter().SummarizeBatch(format.BatchSummary{
		Action:       action,
		Success:      len(mapped),
		Total:        len(mapped),
		SuccessItems: format.Lines(mapped, format.PreviewComment),
	})
	if err != nil {
		return format.Output{}, err
	}
	return format.Output{Text: text, Structured: commentBatchOutput{Comments: mapped, TotalCount: len(mapped)}}, nil
}

// add-comments

type newComment struct {
	Content   string `json:"content"`
	TaskID    string `json:"taskId"`
	ProjectID string `json:"projectId"`
}

type addCommentsArgs struct {
	Comments []newComment `json:"comments"`
}

var addCommentsDef = common.NewDefinition[commentBatchOutput](
	"add-comments",
	"Add comments",
	"Add one or more comments. Each comment targets exactly one of taskId or projectId. "+
		"Either every comment is added or the call fails.",
	common.Additive,
	objectArray("comments", "Comments to add.", []string{"content"}, map[string]any{
		"content":   prop("string", "Comment text, markdown supported."),
		"taskId":    prop("string", "Task to comment on."),
		"projectId": prop("string", "Project to comment on. Accepts \"inbox\"."),
	}),
)

func addComments(ctx context.Context, sc *server.ServerContext, args addCommentsArgs) (format.Output, error) {
	if len(args.Comments) == 0 {
		return format.Output{}, errors.New("comments must contain at least one comment")
	}
	items := make([]todoist.AddCommentArgs, 0, len(args.Comments))
	for i, c := range args.Comments {
		if err := resolve.ValidateCommentTarget(c.TaskID, c.ProjectID); err != nil {
			return format.Output{}, fmt.Errorf("comments[%d]: %w", i, err)
		}
		if strings.TrimSpace(c.Content) == "" {
			return format.Output{}, fmt.Errorf("comments[%d]: content is required", i)
		}
		items = append(items, todoist.AddCommentArgs{Content: c.Content, TaskID: c.TaskID, ProjectID: c.ProjectID})
	}

	r := newResolver(sc)
	outcome, err := batch.Run(ctx, batch.FailFast, items,
		func(a todoist.AddCommentArgs) string {
			if a.TaskID != "" {
				return resolve.CompositeID{Type: resolve.ObjectTask, ID: a.TaskID}.String()
			}
			return resolve.CompositeID{Type: resolve.ObjectProject, ID: a.ProjectID}.String()
		},
		func(ctx context.Context, a todoist.AddCommentArgs) (*todoist.Comment, error) {
			if a.ProjectID != "" {
				projectID, err := r.ResolveProjectID(ctx, a.ProjectID)
				if err != nil {
					return nil, err
				}
				a.ProjectID = projectID
			}
			c, err := sc.Client().AddComment(ctx, a)
			if err != nil {
				return nil, fmt.Errorf("failed to add comment: %w", err)
			}
			return c, nil
		}, batchOptions(sc, addCommentsDef.Name))
	if err != nil {
		return format.Output{}, err
	}
	return commentBatchResult(sc, "Added comments", outcome.Succeeded)
}

// update-comments

type commentUpdate struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

type updateCommentsArgs struct {
	Comments []commentUpdate `json:"comments"`
}

var updateCommentsDef = common.NewDefinition[commentBatchOutput](
	"update-comments",
	"Update comments",
	"Replace the text of one or more comments. Either every comment is updated or the call fails.",
	common.Mutating,
	objectArray("comments", "Comment updates.", []string{"id", "content"}, map[string]any{
		"id":      prop("string", "ID of the comment to update."),
		"content": prop("string", "New comment text."),
	}),
)

func updateComments(ctx context.Context, sc *server.ServerContext, args updateCommentsArgs) (format.Output, error) {
	if len(args.Comments) == 0 {
		return format.Output{}, errors.New("comments must contain at least one comment")
	}
	items := make([]idUpdate[todoist.UpdateCommentArgs], 0, len(args.Comments))
	for i, c := range args.Comments {
		switch {
		case strings.TrimSpace(c.ID) == "":
			return format.Output{}, fmt.Errorf("comments[%d]: id is required", i)
		case strings.TrimSpace(c.Content) == "":
			return format.Output{}, fmt.Errorf("comments[%d]: content is required", i)
		}
		items = append(items, idUpdate[todoist.UpdateCommentArgs]{id: c.ID, args: todoist.UpdateCommentArgs{Content: c.Content}})
	}

	outcome, err := batch.Run(ctx, batch.FailFast, items,
		func(u idUpdate[todoist.UpdateCommentArgs]) string { return u.id },
		func(ctx context.Context, u idUpdate[todoist.UpdateCommentArgs]) (*todoist.Comment, error) {
			c, err := sc.Client().UpdateComment(ctx, u.id, u.args)
			if err != nil {
				return nil, fmt.Errorf("failed to update comment: %w", err)
			}
			return c, nil
		}, batchOptions(sc, updateCommentsDef.Name))
	if err != nil {
		return format.Output{}, err
	}
	return commentBatchResult(sc, "Updated comments", outcome.Succeeded)
}
