package todoist_tools

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/todoist-mcp/internal/format"
	"github.com/teemow/todoist-mcp/internal/mapping"
	"github.com/teemow/todoist-mcp/internal/pagination"
	"github.com/teemow/todoist-mcp/internal/server"
	"github.com/teemow/todoist-mcp/internal/todoist"
	"github.com/teemow/todoist-mcp/internal/tools/batch"
	"github.com/teemow/todoist-mcp/internal/tools/common"
)

var viewStyles = []string{"list", "board", "calendar"}

func registerProjectTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) {
	register(s, sc, readOnly, findProjectsDef, findProjects)
	register(s, sc, readOnly, addProjectsDef, addProjects)
	register(s, sc, readOnly, updateProjectsDef, updateProjects)
}

type projectListOutput struct {
	Projects   []mapping.Project `json:"projects"`
	NextCursor string            `json:"nextCursor,omitempty"`
	TotalCount int               `json:"totalCount"`
	HasMore    bool              `json:"hasMore"`
}

// find-projects

type findProjectsArgs struct {
	Search string `json:"search"`
	Limit  int    `json:"limit"`
	Cursor string `json:"cursor"`
}

var findProjectsDef = common.NewDefinition[projectListOutput](
	"find-projects",
	"Find projects",
	"List projects, optionally narrowed by a case-insensitive name search. A search covers every project and returns at most limit matches; it takes no cursor.",
	common.ReadOnly,
	mcp.WithString("search", mcp.Description("Only projects whose name contains this text.")),
	limitParam(defaultProjectLimit),
	cursorParam(),
)

func findProjects(ctx context.Context, sc *server.ServerContext, args findProjectsArgs) (format.Output, error) {
	limit, err := clampLimit(args.Limit, defaultProjectLimit)
	if err != nil {
		return format.Output{}, err
	}

	var (
		projects []todoist.Project
		next     string
		matches  int
	)
	search := strings.ToLower(strings.TrimSpace(args.Search))
	if search != "" {
		if args.Cursor != "" {
			return format.Output{}, errors.New("cursor cannot be combined with search; a search already covers every project")
		}
		all, err := pagination.DrainAll(ctx, func(ctx context.Context, cursor string) (todoist.Page[todoist.Project], error) {
			return sc.Client().GetProjects(ctx, todoist.PageArgs{Cursor: cursor, Limit: maxLimit})
		})
		if err != nil {
			return format.Output{}, fmt.Errorf("failed to list projects: %w", err)
		}
		for _, p := range all {
			if strings.Contains(strings.ToLower(p.Common().Name), search) {
				projects = append(projects, p)
			}
		}
		matches = len(projects)
		projects = projects[:min(matches, limit)]
	} else {
		page, err := sc.Client().GetProjects(ctx, todoist.PageArgs{Cursor: args.Cursor, Limit: limit})
		if err != nil {
			return format.Output{}, fmt.Errorf("failed to list projects: %w", err)
		}
		projects, next = page.Results, page.NextCursor
	}

	out := projectListOutput{
		Projects:   mapping.MapProjects(projects),
		NextCursor: next,
		TotalCount: len(projects),
		HasMore:    next != "" || matches > len(projects),
	}

	var hints, zero, steps []string
	if search != "" {
		hints = []string{"search: " + args.Search}
		zero = []string{"No project name contains the search text", "Try a shorter search or list all projects"}
		if matches > len(projects) {
			hints = append(hints, fmt.Sprintf("showing %d of %d matches", len(projects), matches))
			steps = append(steps, "Narrow the search or raise limit to see the remaining matches.")
		}
	}
	if out.TotalCount > 0 {
		steps = append(steps,
			"Use get-overview with a projectId to see its sections and tasks.",
			"Use find-tasks with a projectId to list its tasks.",
		)
	}
	text := sc.Formatter().SummarizeList(format.ListSummary{
		Subject:         "Projects",
		Count:           out.TotalCount,
		Limit:           limit,
		NextCursor:      next,
		FilterHints:     hints,
		PreviewLines:    format.Lines(out.Projects, format.PreviewProject),
		ZeroReasonHints: zero,
		NextSteps:       steps,
	})
	return format.Output{Text: text, Structured: out}, nil
}

// projectBatchOutput is the structured result of add-projects and update-projects.
type projectBatchOutput struct {
	Projects   []mapping.Project `json:"projects"`
	TotalCount int               `json:"totalCount"`
}

func projectBatchResult(sc *server.ServerContext, action string, projects []todoist.Project) (format.Output, error) {
	mapped := mapping.MapProjects(projects)
	text, err := sc.Formatter().SummarizeBatch(format.BatchSummary{
		Action:       action,
		Success:      len(mapped),
		Total:        len(mapped),
		SuccessItems: format.Lines(mapped, format.PreviewProject),
		NextSteps:    []string{"Use add-sections to structure a project, add-tasks to fill it."},
	})
	if err != nil {
		return format.Output{}, err
	}
	return format.Output{Text: text, Structured: projectBatchOutput{Projects: mapped, TotalCount: len(mapped)}}, nil
}

var projectProps = map[string]any{
	"description": prop("string", "Project description."),
	"color":       enumProp("Project color.", mapping.Colors...),
	"isFavorite":  prop("boolean", "Whether the project is a favorite."),
	"viewStyle":   enumProp("How the project is displayed.", viewStyles...),
}

// add-projects

type newProject struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ParentID    string `json:"parentId"`
	Color       string `json:"color"`
	IsFavorite  bool   `json:"isFavorite"`
	ViewStyle   string `json:"viewStyle"`
	WorkspaceID string `json:"workspaceId"`
}

type addProjectsArgs struct {
	Projects []newProject `json:"projects"`
}

var addProjectsDef = common.NewDefinition[projectBatchOutput](
	"add-projects",
	"Add projects",
	"Create one or more projects. Either every project is created or the call fails.",
	common.Additive,
	objectArray("projects", "Projects to create.", []string{"name"}, withProps(projectProps, map[string]any{
		"name":        prop("string", "Project name."),
		"parentId":    prop("string", "Parent project, making this a sub-project."),
		"workspaceId": prop("string", "Workspace to create the project in."),
	})),
)

func addProjects(ctx context.Context, sc *server.ServerContext, args addProjectsArgs) (format.Output, error) {
	if len(args.Projects) == 0 {
		return format.Output{}, errors.New("projects must contain at least one project")
	}

	items := make([]todoist.AddProjectArgs, 0, len(args.Projects))
	for i, p := range args.Projects {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return format.Output{}, fmt.Errorf("projects[%d]: name is required", i)
		}
		item := todoist.AddProjectArgs{
			Name:        name,
			Description: p.Description,
			ParentID:    p.ParentID,
			IsFavorite:  p.IsFavorite,
			WorkspaceID: p.WorkspaceID,
		}
		if p.Color != "" {
			color, err := mapping.NormalizeColor(p.Color)
			if err != nil {
				return format.Output{}, fmt.Errorf("projects[%d]: %w", i, err)
			}
			item.Color = color
		}
		if p.ViewStyle != "" {
			if err := validateViewStyle(p.ViewStyle); err != nil {
				return format.Output{}, fmt.Errorf("projects[%d]: %w", i, err)
			}
			item.ViewStyle = p.ViewStyle
		}
		items = append(items, item)
	}

	outcome, err := batch.Run(ctx, batch.FailFast, items,
		func(a todoist.AddProjectArgs) string { return a.Name },
		func(ctx context.Context, a todoist.AddProjectArgs) (todoist.Project, error) {
			p, err := sc.Client().AddProject(ctx, a)
			if err != nil {
				return nil, fmt.Errorf("failed to add project: %w", err)
			}
			return p, nil
		}, batchOptions(sc, addProjectsDef.Name))
	if err != nil {
		return format.Output{}, err
	}
	return projectBatchResult(sc, "Added projects", outcome.Succeeded)
}

// update-projects

type projectUpdate struct {
	ID          string  `json:"id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	IsFavorite  *bool   `json:"isFavorite"`
	ViewStyle   *string `json:"viewStyle"`
}

type updateProjectsArgs struct {
	Projects []projectUpdate `json:"projects"`
}

type idUpdate[A any] struct {
	id   string
	args A
}

var updateProjectsDef = common.NewDefinition[projectBatchOutput](
	"update-projects",
	"Update projects",
	"Update one or more projects. Only the given fields change. Either every project is updated or the call fails.",
	common.Mutating,
	objectArray("projects", "Project updates.", []string{"id"}, withProps(projectProps, map[string]any{
		"id":   prop("string", "ID of the project to update."),
		"name": prop("string", "New project name."),
	})),
)

func updateProjects(ctx context.Context, sc *server.ServerContext, args updateProjectsArgs) (format.Output, error) {
	if len(args.Projects) == 0 {
		return format.Output{}, errors.New("projects must contain at least one project")
	}

	items := make([]idUpdate[todoist.UpdateProjectArgs], 0, len(args.Projects))
	for i, p := range args.Projects {
		if strings.TrimSpace(p.ID) == "" {
			return format.Output{}, fmt.Errorf("projects[%d]: id is required", i)
		}
		u := todoist.UpdateProjectArgs{
			Name:        p.Name,
			Description: p.Description,
			IsFavorite:  p.IsFavorite,
		}
		if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
			return format.Output{}, fmt.Errorf("projects[%d]: name cannot be empty", i)
		}
		if p.Color != nil {
			color, err := mapping.NormalizeColor(*p.Color)
			if err != nil {
				return format.Output{}, fmt.Errorf("projects[%d]: %w", i, err)
			}
			u.Color = &color
		}
		if p.ViewStyle != nil {
			if err := validateViewStyle(*p.ViewStyle); err != nil {
				return format.Output{}, fmt.Errorf("projects[%d]: %w", i, err)
			}
			u.ViewStyle = p.ViewStyle
		}
		if u == (todoist.UpdateProjectArgs{}) {
			return format.Output{}, fmt.Errorf("projects[%d]: nothing to update", i)
		}
		items = append(items, idUpdate[todoist.UpdateProjectArgs]{id: p.ID, args: u})
	}

	outcome, err := batch.Run(ctx, batch.FailFast, items,
		func(u idUpdate[todoist.UpdateProjectArgs]) string { return u.id },
		func(ctx context.Context, u idUpdate[todoist.UpdateProjectArgs]) (todoist.Project, error) {
			p, err := sc.Client().UpdateProject(ctx, u.id, u.args)
			if err != nil {
				return nil, fmt.Errorf("failed to update project: %w", err)
			}
			return p, nil
		}, batchOptions(sc, updateProjectsDef.Name))
	if err != nil {
		return format.Output{}, err
	}
	return projectBatchResult(sc, "Updated projects", outcome.Succeeded)
}

func validateViewStyle(s string) error {
	if slices.Contains(viewStyles, s) {
		return nil
	}
	return fmt.Errorf("invalid viewStyle %q, must be one of: %s", s, strings.Join(viewStyles, ", "))
}
