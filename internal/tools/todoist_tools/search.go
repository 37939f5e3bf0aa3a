package todoist_tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/todoist-mcp/internal/filter"
	"github.com/teemow/todoist-mcp/internal/format"
	"github.com/teemow/todoist-mcp/internal/mapping"
	"github.com/teemow/todoist-mcp/internal/pagination"
	"github.com/teemow/todoist-mcp/internal/resolve"
	"github.com/teemow/todoist-mcp/internal/server"
	"github.com/teemow/todoist-mcp/internal/todoist"
	"github.com/teemow/todoist-mcp/internal/tools/common"
)

const appURL = "https://app.todoist.com/app"

func registerSearchTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) {
	register(s, sc, readOnly, searchDef, search)
	register(s, sc, readOnly, fetchDef, fetch)
}

func objectURL(id resolve.CompositeID) string {
	return appURL + "/" + string(id.Type) + "/" + id.ID
}

// search

type searchArgs struct {
	Query string `json:"query"`
}

type searchResult struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

type searchOutput struct {
	Results []searchResult `json:"results"`
}

var searchDef = common.NewDefinition[searchOutput](
	"search",
	"Search",
	"Search open tasks and projects by text. Results carry composite IDs such as \"task:123\" for use with fetch.",
	common.ReadOnly,
	mcp.WithString("query", mcp.Required(), mcp.Description("Text to search for.")),
)

func search(ctx context.Context, sc *server.ServerContext, args searchArgs) (format.Output, error) {
	query := strings.TrimSpace(args.Query)
	if query == "" {
		return format.Output{}, errors.New("query is required")
	}

	clause := filter.SearchClause(query)
	page, err := sc.Client().GetTasksByFilter(ctx, todoist.TaskFilterArgs{
		Query:    clause,
		PageArgs: todoist.PageArgs{Limit: defaultProjectLimit},
	})
	if err != nil {
		return format.Output{}, common.FilterError(fmt.Errorf("failed to search tasks: %w", err), clause)
	}
	projects, err := pagination.DrainAll(ctx, func(ctx context.Context, cursor string) (todoist.Page[todoist.Project], error) {
		return sc.Client().GetProjects(ctx, todoist.PageArgs{Cursor: cursor, Limit: maxLimit})
	})
	if err != nil {
		return format.Output{}, fmt.Errorf("failed to list projects: %w", err)
	}

	out := searchOutput{Results: []searchResult{}}
	for _, t := range page.Results {
		id := resolve.CompositeID{Type: resolve.ObjectTask, ID: t.ID}
		out.Results = append(out.Results, searchResult{ID: id.String(), Title: t.Content, URL: objectURL(id)})
	}
	needle := strings.ToLower(query)
	for _, p := range projects {
		c := p.Common()
		if !strings.Contains(strings.ToLower(c.Name), needle) {
			continue
		}
		id := resolve.CompositeID{Type: resolve.ObjectProject, ID: c.ID}
		out.Results = append(out.Results, searchResult{ID: id.String(), Title: c.Name, URL: objectURL(id)})
	}

	var steps []string
	if len(out.Results) > 0 {
		steps = []string{"Use fetch with a result id to read the full task or project."}
	}
	text := sc.Formatter().SummarizeList(format.ListSummary{
		Subject:         "Search results",
		Count:           len(out.Results),
		FilterHints:     []string{"query: " + query},
		PreviewLines:    format.Lines(out.Results, func(r searchResult) string { return r.Title + " • id=" + r.ID }),
		ZeroReasonHints: format.SearchHints(query),
		NextSteps:       steps,
	})
	return format.Output{Text: text, Structured: out}, nil
}

// fetch

type fetchArgs struct {
	ID string `json:"id"`
}

type fetchOutput struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Text     string            `json:"text"`
	URL      string            `json:"url"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

var fetchDef = common.NewDefinition[fetchOutput](
	"fetch",
	"Fetch",
	"Fetch a task or project by composite ID (\"task:<id>\" or \"project:<id>\"), as returned by search.",
	common.ReadOnly,
	mcp.WithString("id", mcp.Required(), mcp.Description("Composite ID, e.g. \"task:123\".")),
)

func fetch(ctx context.Context, sc *server.ServerContext, args fetchArgs) (format.Output, error) {
	id, err := resolve.ParseCompositeID(args.ID)
	if err != nil {
		return format.Output{}, err
	}

	out := fetchOutput{ID: id.String(), URL: objectURL(id), Metadata: map[string]string{}}
	switch id.Type {
	case resolve.ObjectTask:
		t, err := sc.Client().GetTask(ctx, id.ID)
		if err != nil {
			return format.Output{}, fmt.Errorf("failed to get task: %w", err)
		}
		task := mapping.MapTask(*t)
		out.Title = task.Content
		out.Text = task.Content
		if task.Description != "" {
			out.Text += "\n\n" + task.Description
		}
		out.Metadata["priority"] = string(task.Priority)
		out.Metadata["projectId"] = task.ProjectID
		setIfPresent(out.Metadata, "sectionId", task.SectionID)
		setIfPresent(out.Metadata, "parentId", task.ParentID)
		setIfPresent(out.Metadata, "dueDate", task.DueDate)
		setIfPresent(out.Metadata, "recurring", string(task.Recurring))
		setIfPresent(out.Metadata, "deadlineDate", task.DeadlineDate)
		setIfPresent(out.Metadata, "duration", task.Duration)
		setIfPresent(out.Metadata, "responsibleUid", task.ResponsibleUID)
		setIfPresent(out.Metadata, "labels", strings.Join(task.Labels, ", "))

	case resolve.ObjectProject:
		p, err := sc.Client().GetProject(ctx, id.ID)
		if err != nil {
			return format.Output{}, fmt.Errorf("failed to get project: %w", err)
		}
		project := mapping.MapProject(p)
		out.Title = project.Name
		out.Text = project.Name
		if desc := p.Common().Description; desc != "" {
			out.Text += "\n\n" + desc
		}
		out.Metadata["color"] = project.Color
		out.Metadata["viewStyle"] = project.ViewStyle
		out.Metadata["isShared"] = fmt.Sprint(project.IsShared)
		out.Metadata["isFavorite"] = fmt.Sprint(project.IsFavorite)
		setIfPresent(out.Metadata, "parentId", project.ParentID)
		setIfPresent(out.Metadata, "workspaceId", project.WorkspaceID)
	}

	text := fmt.Sprintf("%s %s: %s\n%s", id.Type, id.ID, out.Title, out.URL)
	return format.Output{Text: text, Structured: out}, nil
}

func setIfPresent(m map[string]string, key, value string) {
	if value != "" {
		m[key] = value
	}
}
