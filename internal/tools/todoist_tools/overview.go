package todoist_tools

import (
	"cmp"
	"context"
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
	"github.com/teemow/todoist-mcp/internal/tools/common"
)

const (
	overviewAccount = "account"
	overviewProject = "project"
)

func registerOverviewTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) {
	register(s, sc, readOnly, getOverviewDef, getOverview)
}

type projectEntry struct {
	Project mapping.Project `json:"project"`
	Depth   int             `json:"depth"`
}

type sectionTasks struct {
	Section mapping.Section `json:"section"`
	Tasks   []mapping.Task  `json:"tasks"`
}

type overviewOutput struct {
	Type string `json:"type" jsonschema:"enum=account,enum=project"`

	// account overview
	Inbox    *mapping.Project `json:"inbox,omitempty"`
	Projects []projectEntry   `json:"projects,omitempty"`

	// project overview
	Project          *mapping.Project `json:"project,omitempty"`
	Sections         []sectionTasks   `json:"sections,omitempty"`
	UnsectionedTasks []mapping.Task   `json:"unsectionedTasks,omitempty"`
	TotalTasks       int              `json:"totalTasks"`
}

type getOverviewArgs struct {
	ProjectID string `json:"projectId"`
}

var getOverviewDef = common.NewDefinition[overviewOutput](
	"get-overview",
	"Get overview",
	"Without projectId: the project hierarchy of the account, inbox first. "+
		"With projectId: the project's sections with their open tasks.",
	common.ReadOnly,
	mcp.WithString("projectId", mcp.Description("Project to describe. Accepts \"inbox\".")),
)

func getOverview(ctx context.Context, sc *server.ServerContext, args getOverviewArgs) (format.Output, error) {
	if strings.TrimSpace(args.ProjectID) == "" {
		return accountOverview(ctx, sc)
	}
	return projectOverview(ctx, sc, args.ProjectID)
}

func accountOverview(ctx context.Context, sc *server.ServerContext) (format.Output, error) {
	projects, err := pagination.DrainAll(ctx, func(ctx context.Context, cursor string) (todoist.Page[todoist.Project], error) {
		return sc.Client().GetProjects(ctx, todoist.PageArgs{Cursor: cursor, Limit: maxLimit})
	})
	if err != nil {
		return format.Output{}, fmt.Errorf("failed to list projects: %w", err)
	}

	out := overviewOutput{Type: overviewAccount, Projects: []projectEntry{}}
	var rest []todoist.Project
	for _, p := range projects {
		if pp, ok := p.(*todoist.PersonalProject); ok && pp.InboxProject && out.Inbox == nil {
			inbox := mapping.MapProject(p)
			out.Inbox = &inbox
			continue
		}
		rest = append(rest, p)
	}
	out.Projects = projectTree(rest)

	var b strings.Builder
	fmt.Fprintf(&b, "Account overview: %d %s.", len(out.Projects), plural(len(out.Projects), "project", "projects"))
	if out.Inbox != nil {
		b.WriteString("\n  Inbox • id=" + out.Inbox.ID)
	}
	for _, e := range out.Projects {
		b.WriteString("\n" + strings.Repeat("  ", e.Depth+1) + format.PreviewProject(e.Project))
	}
	b.WriteString("\nNext steps:\n- Use get-overview with a projectId to see a project's sections and tasks.")
	return format.Output{Text: b.String(), Structured: out}, nil
}

// projectTree orders projects depth first, siblings by child order.
// Projects whose parent is not in the list are treated as roots.
func projectTree(projects []todoist.Project) []projectEntry {
	known := make(map[string]struct{}, len(projects))
	for _, p := range projects {
		known[p.Common().ID] = struct{}{}
	}
	children := make(map[string][]todoist.Project)
	for _, p := range projects {
		parent := ""
		if pp, ok := p.(*todoist.PersonalProject); ok {
			if _, found := known[pp.ParentID]; found {
				parent = pp.ParentID
			}
		}
		children[parent] = append(children[parent], p)
	}
	for _, list := range children {
		slices.SortStableFunc(list, func(a, b todoist.Project) int {
			return cmp.Compare(a.Common().ChildOrder, b.Common().ChildOrder)
		})
	}

	out := make([]projectEntry, 0, len(projects))
	var walk func(parent string, depth int)
	walk = func(parent string, depth int) {
		for _, p := range children[parent] {
			out = append(out, projectEntry{Project: mapping.MapProject(p), Depth: depth})
			walk(p.Common().ID, depth+1)
		}
	}
	walk("", 0)
	return out
}

func projectOverview(ctx context.Context, sc *server.ServerContext, id string) (format.Output, error) {
	projectID, err := newResolver(sc).ResolveProjectID(ctx, id)
	if err != nil {
		return format.Output{}, err
	}

	project, err := sc.Client().GetProject(ctx, projectID)
	if err != nil {
		return format.Output{}, fmt.Errorf("failed to get project: %w", err)
	}
	sections, err := drainSections(ctx, sc, projectID)
	if err != nil {
		return format.Output{}, err
	}
	tasks, err := pagination.DrainAll(ctx, func(ctx context.Context, cursor string) (todoist.Page[todoist.Task], error) {
		return sc.Client().GetTasks(ctx, todoist.TaskListArgs{
			ProjectID: projectID,
			PageArgs:  todoist.PageArgs{Cursor: cursor, Limit: maxLimit},
		})
	})
	if err != nil {
		return format.Output{}, fmt.Errorf("failed to list tasks: %w", err)
	}

	mapped := mapping.MapProject(project)
	out := overviewOutput{
		Type:             overviewProject,
		Project:          &mapped,
		Sections:         make([]sectionTasks, 0, len(sections)),
		UnsectionedTasks: []mapping.Task{},
		TotalTasks:       len(tasks),
	}
	index := make(map[string]int, len(sections))
	for i, s := range sections {
		index[s.ID] = i
		out.Sections = append(out.Sections, sectionTasks{Section: mapping.MapSection(s), Tasks: []mapping.Task{}})
	}
	for _, t := range tasks {
		if i, ok := index[t.SectionID]; ok {
			out.Sections[i].Tasks = append(out.Sections[i].Tasks, mapping.MapTask(t))
			continue
		}
		out.UnsectionedTasks = append(out.UnsectionedTasks, mapping.MapTask(t))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Project %s: %d %s, %d %s.", mapped.Name,
		len(out.Sections), plural(len(out.Sections), "section", "sections"),
		out.TotalTasks, plural(out.TotalTasks, "task", "tasks"))
	writeTaskGroup(&b, "", out.UnsectionedTasks)
	for _, s := range out.Sections {
		writeTaskGroup(&b, s.Section.Name, s.Tasks)
	}
	b.WriteString("\nNext steps:\n- Use find-tasks with a sectionId to page through a large section.")
	return format.Output{Text: b.String(), Structured: out}, nil
}

func writeTaskGroup(b *strings.Builder, name string, tasks []mapping.Task) {
	if name == "" {
		if len(tasks) == 0 {
			return
		}
		name = "(no section)"
	}
	fmt.Fprintf(b, "\n%s (%d):", name, len(tasks))
	for _, t := range tasks {
		b.WriteString("\n  " + format.PreviewTask(t))
	}
}
