package todoist_tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/todoist-mcp/internal/filter"
	"github.com/teemow/todoist-mcp/internal/format"
	"github.com/teemow/todoist-mcp/internal/mapping"
	"github.com/teemow/todoist-mcp/internal/resolve"
	"github.com/teemow/todoist-mcp/internal/server"
	"github.com/teemow/todoist-mcp/internal/todoist"
	"github.com/teemow/todoist-mcp/internal/tools/common"
)

// taskListOutput is the structured result of the task search tools.
type taskListOutput struct {
	Tasks      []mapping.Task `json:"tasks"`
	NextCursor string         `json:"nextCursor,omitempty"`
	TotalCount int            `json:"totalCount"`
	HasMore    bool           `json:"hasMore"`
	Query      string         `json:"query,omitempty"`
}

func newTaskListOutput(tasks []todoist.Task, next, query string) taskListOutput {
	mapped := mapping.MapTasks(tasks)
	return taskListOutput{
		Tasks:      mapped,
		NextCursor: next,
		TotalCount: len(mapped),
		HasMore:    next != "",
		Query:      query,
	}
}

var taskNextSteps = []string{
	"Use update-tasks to change content, dates, priority or location.",
	"Use complete-tasks to mark tasks as done.",
}

// find-tasks

type findTasksArgs struct {
	SearchText               string   `json:"searchText"`
	ProjectID                string   `json:"projectId"`
	SectionID                string   `json:"sectionId"`
	ParentID                 string   `json:"parentId"`
	ResponsibleUser          string   `json:"responsibleUser"`
	ResponsibleUserFiltering string   `json:"responsibleUserFiltering"`
	Labels                   []string `json:"labels"`
	LabelsOperator           string   `json:"labelsOperator"`
	Limit                    int      `json:"limit"`
	Cursor                   string   `json:"cursor"`
}

var findTasksDef = common.NewDefinition[taskListOutput](
	"find-tasks",
	"Find tasks",
	"Find open tasks by text, container (project, section or parent task), labels or assignee. "+
		"Container lookups are cheapest; free-text search uses the filter endpoint.",
	common.ReadOnly,
	append(append([]mcp.ToolOption{
		mcp.WithString("searchText", mcp.Description("Text to search for in task content.")),
		mcp.WithString("projectId", mcp.Description("Only tasks in this project. Accepts \"inbox\".")),
		mcp.WithString("sectionId", mcp.Description("Only tasks in this section.")),
		mcp.WithString("parentId", mcp.Description("Only subtasks of this task.")),
		limitParam(defaultTaskLimit),
		cursorParam(),
	}, labelsParams()...), responsibleParams(filter.ResponsibleAll)...)...,
)

func findTasks(ctx context.Context, sc *server.ServerContext, args findTasksArgs) (format.Output, error) {
	limit, err := clampLimit(args.Limit, defaultTaskLimit)
	if err != nil {
		return format.Output{}, err
	}
	op, err := parseOperator(args.LabelsOperator)
	if err != nil {
		return format.Output{}, err
	}
	mode, err := parseResponsibleMode(args.ResponsibleUserFiltering, filter.ResponsibleAll)
	if err != nil {
		return format.Output{}, err
	}

	hasContainer := args.ProjectID != "" || args.SectionID != "" || args.ParentID != ""
	switch {
	case hasContainer:
		return findTasksInContainer(ctx, sc, args, limit, op, mode)
	case args.ResponsibleUser != "" && args.SearchText == "" && len(args.Labels) == 0:
		return findTasksByAssignee(ctx, sc, args, limit)
	default:
		return findTasksByQuery(ctx, sc, args, limit, op, mode)
	}
}

// findTasksInContainer lists a project, section or parent task directly and
// narrows the page client-side.
func findTasksInContainer(ctx context.Context, sc *server.ServerContext, args findTasksArgs, limit int, op filter.Operator, mode filter.ResponsibleFiltering) (format.Output, error) {
	r := newResolver(sc)
	projectID, err := r.ResolveProjectID(ctx, args.ProjectID)
	if err != nil {
		return format.Output{}, err
	}

	page, err := sc.Client().GetTasks(ctx, todoist.TaskListArgs{
		ProjectID: projectID,
		SectionID: args.SectionID,
		ParentID:  args.ParentID,
		PageArgs:  todoist.PageArgs{Cursor: args.Cursor, Limit: limit},
	})
	if err != nil {
		return format.Output{}, fmt.Errorf("failed to list tasks: %w", err)
	}

	keep, err := assigneePredicate(ctx, sc, r, args.ResponsibleUser, projectID, mode)
	if err != nil {
		return format.Output{}, err
	}

	var tasks []todoist.Task
	for _, t := range page.Results {
		if matchesText(t, args.SearchText) && matchesLabels(t.Labels, args.Labels, op) && keep(t) {
			tasks = append(tasks, t)
		}
	}

	out := newTaskListOutput(tasks, page.NextCursor, "")
	var hints []string
	for _, h := range []struct{ name, value string }{
		{"projectId", args.ProjectID}, {"sectionId", args.SectionID}, {"parentId", args.ParentID},
		{"search", args.SearchText}, {"labels", strings.Join(args.Labels, ", ")}, {"responsible", args.ResponsibleUser},
	} {
		if h.value != "" {
			hints = append(hints, h.name+": "+h.value)
		}
	}

	return taskListResult(sc, "Tasks", out, limit, hints, format.SearchHints(args.SearchText)), nil
}

// findTasksByAssignee uses the dedicated assignee filter.
func findTasksByAssignee(ctx context.Context, sc *server.ServerContext, args findTasksArgs, limit int) (format.Output, error) {
	user, err := newResolver(sc).ResolveUser(ctx, args.ResponsibleUser, "")
	if err != nil {
		return format.Output{}, err
	}
	query := filter.ResponsibleClause(filter.ResponsibleAll, user.Email)

	page, err := sc.Client().GetTasksByFilter(ctx, todoist.TaskFilterArgs{
		Query:    query,
		PageArgs: todoist.PageArgs{Cursor: args.Cursor, Limit: limit},
	})
	if err != nil {
		return format.Output{}, common.FilterError(fmt.Errorf("failed to search tasks: %w", err), query)
	}

	out := newTaskListOutput(page.Results, page.NextCursor, query)
	return taskListResult(sc, "Tasks assigned to "+user.Name, out, limit, []string{"query: " + query},
		[]string{"The user has no open tasks assigned"}), nil
}

// findTasksByQuery composes search text, labels and assignee into one filter.
func findTasksByQuery(ctx context.Context, sc *server.ServerContext, args findTasksArgs, limit int, op filter.Operator, mode filter.ResponsibleFiltering) (format.Output, error) {
	responsible, err := responsibleClause(ctx, sc, args.ResponsibleUser, mode)
	if err != nil {
		return format.Output{}, err
	}

	var search string
	if text := strings.TrimSpace(args.SearchText); text != "" {
		search = filter.SearchClause(text)
	}

	query, err := filter.Build(search, filter.LabelsClause(args.Labels, op), responsible)
	if errors.Is(err, filter.ErrEmptyQuery) {
		return format.Output{}, errors.New("At least one filter must be provided: searchText, projectId, sectionId, " +
			"parentId, responsibleUser, responsibleUserFiltering or labels.")
	}
	if err != nil {
		return format.Output{}, err
	}

	page, err := sc.Client().GetTasksByFilter(ctx, todoist.TaskFilterArgs{
		Query:    query,
		PageArgs: todoist.PageArgs{Cursor: args.Cursor, Limit: limit},
	})
	if err != nil {
		return format.Output{}, common.FilterError(fmt.Errorf("failed to search tasks: %w", err), query)
	}

	out := newTaskListOutput(page.Results, page.NextCursor, query)
	zero := append(format.SearchHints(args.SearchText), format.FilterQueryHints(query)...)
	return taskListResult(sc, "Tasks matching filter", out, limit, []string{"query: " + query}, zero), nil
}

func taskListResult(sc *server.ServerContext, subject string, out taskListOutput, limit int, hints, zero []string) format.Output {
	var steps []string
	if out.TotalCount > 0 {
		steps = taskNextSteps
	}
	text := sc.Formatter().SummarizeList(format.ListSummary{
		Subject:         subject,
		Count:           out.TotalCount,
		Limit:           limit,
		NextCursor:      out.NextCursor,
		FilterHints:     hints,
		PreviewLines:    format.Lines(out.Tasks, format.PreviewTask),
		ZeroReasonHints: zero,
		NextSteps:       steps,
	})
	return format.Output{Text: text, Structured: out}
}

// assigneePredicate returns the client-side assignee filter for container
// listings. A named user wins over mode.
func assigneePredicate(ctx context.Context, sc *server.ServerContext, r *resolve.Resolver, ref, projectID string, mode filter.ResponsibleFiltering) (func(todoist.Task) bool, error) {
	if ref != "" {
		user, err := r.ResolveUser(ctx, ref, projectID)
		if err != nil {
			return nil, err
		}
		return func(t todoist.Task) bool { return t.ResponsibleUID == user.ID }, nil
	}
	if mode == filter.ResponsibleAll {
		return func(todoist.Task) bool { return true }, nil
	}

	me, err := sc.Client().GetUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load current user: %w", err)
	}
	if mode == filter.ResponsibleAssigned {
		return func(t todoist.Task) bool { return t.ResponsibleUID != "" && t.ResponsibleUID != me.ID }, nil
	}
	return func(t todoist.Task) bool { return t.ResponsibleUID == "" || t.ResponsibleUID == me.ID }, nil
}

func matchesText(t todoist.Task, text string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Content), text) ||
		strings.Contains(strings.ToLower(t.Description), text)
}

// matchesLabels applies the same label list LabelsClause would send to the
// filter endpoint: blank and bare "@" entries are ignored.
func matchesLabels(have, want []string, op filter.Operator) bool {
	set := make(map[string]struct{}, len(have))
	for _, l := range have {
		set[strings.ToLower(l)] = struct{}{}
	}
	wanted, hits := 0, 0
	for _, w := range want {
		w = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(w), "@"))
		if w == "" {
			continue
		}
		wanted++
		if _, ok := set[w]; ok {
			hits++
		}
	}
	switch {
	case wanted == 0:
		return true
	case op == filter.OperatorAnd:
		return hits == wanted
	default:
		return hits > 0
	}
}

// find-tasks-by-date

type findTasksByDateArgs struct {
	StartDate                string   `json:"startDate"`
	DaysCount                int      `json:"daysCount"`
	OverdueOption            string   `json:"overdueOption"`
	ResponsibleUser          string   `json:"responsibleUser"`
	ResponsibleUserFiltering string   `json:"responsibleUserFiltering"`
	Labels                   []string `json:"labels"`
	LabelsOperator           string   `json:"labelsOperator"`
	Limit                    int      `json:"limit"`
	Cursor                   string   `json:"cursor"`
}

const maxDaysCount = 30

var findTasksByDateDef = common.NewDefinition[taskListOutput](
	"find-tasks-by-date",
	"Find tasks by date",
	"Find tasks due in a window of whole days. Dates are evaluated in the server's configured timezone.",
	common.ReadOnly,
	append(append([]mcp.ToolOption{
		mcp.WithString("startDate",
			mcp.Description("First day of the window: \"today\" (default) or YYYY-MM-DD."),
		),
		mcp.WithNumber("daysCount",
			mcp.Description("Number of days in the window (default 1)."),
			mcp.Min(1),
			mcp.Max(maxDaysCount),
		),
		mcp.WithString("overdueOption",
			mcp.Description("How to treat overdue tasks. Defaults to include-overdue when the window starts today, exclude-overdue otherwise."),
			mcp.Enum(filter.OverdueOptions...),
		),
		limitParam(defaultTaskLimit),
		cursorParam(),
	}, labelsParams()...), responsibleParams(filter.ResponsibleUnassignedOrMe)...)...,
)

func findTasksByDate(ctx context.Context, sc *server.ServerContext, args findTasksByDateArgs) (format.Output, error) {
	limit, err := clampLimit(args.Limit, defaultTaskLimit)
	if err != nil {
		return format.Output{}, err
	}
	if args.DaysCount < 0 || args.DaysCount > maxDaysCount {
		return format.Output{}, fmt.Errorf("daysCount must be between 1 and %d", maxDaysCount)
	}
	op, err := parseOperator(args.LabelsOperator)
	if err != nil {
		return format.Output{}, err
	}
	mode, err := parseResponsibleMode(args.ResponsibleUserFiltering, filter.ResponsibleUnassignedOrMe)
	if err != nil {
		return format.Output{}, err
	}

	window := filter.DateWindow{Start: args.StartDate, Days: max(args.DaysCount, 1)}
	switch overdue := filter.OverdueOption(args.OverdueOption); overdue {
	case "":
		window.Overdue = filter.OverdueExclude
		if start := strings.TrimSpace(args.StartDate); start == "" || strings.EqualFold(start, filter.Today) {
			window.Overdue = filter.OverdueInclude
		}
	case filter.OverdueExclude, filter.OverdueInclude, filter.OverdueOnly:
		window.Overdue = overdue
	default:
		return format.Output{}, fmt.Errorf("invalid overdueOption %q, must be one of: %s", args.OverdueOption, strings.Join(filter.OverdueOptions, ", "))
	}

	now, loc := sc.Now(), sc.Location()
	dateClause, err := window.Clause(now, loc)
	if err != nil {
		return format.Output{}, err
	}
	responsible, err := responsibleClause(ctx, sc, args.ResponsibleUser, mode)
	if err != nil {
		return format.Output{}, err
	}

	query, err := filter.Build(dateClause, filter.LabelsClause(args.Labels, op), responsible)
	if err != nil {
		return format.Output{}, err
	}

	page, err := sc.Client().GetTasksByFilter(ctx, todoist.TaskFilterArgs{
		Query:    query,
		PageArgs: todoist.PageArgs{Cursor: args.Cursor, Limit: limit},
	})
	if err != nil {
		return format.Output{}, common.FilterError(fmt.Errorf("failed to search tasks: %w", err), query)
	}

	subject, err := dateSubject(window, now, loc)
	if err != nil {
		return format.Output{}, err
	}
	zero := format.DateFilterHints(window.Overdue == filter.OverdueOnly)
	if len(args.Labels) > 0 {
		zero = append(zero, format.FilterQueryHints(query)...)
	}

	out := newTaskListOutput(page.Results, page.NextCursor, query)
	return taskListResult(sc, subject, out, limit, []string{"query: " + query}, zero), nil
}

func dateSubject(w filter.DateWindow, now time.Time, loc *time.Location) (string, error) {
	if w.Overdue == filter.OverdueOnly {
		return "Overdue tasks", nil
	}
	start, err := w.StartDate(now, loc)
	if err != nil {
		return "", err
	}
	subject := "Tasks due " + start.Format(filter.DateLayout)
	if w.Days > 1 {
		subject += " to " + start.AddDate(0, 0, w.Days-1).Format(filter.DateLayout)
	}
	if w.Overdue == filter.OverdueInclude {
		subject += " (including overdue)"
	}
	return subject, nil
}

// find-completed-tasks

type findCompletedTasksArgs struct {
	GetBy                    string   `json:"getBy"`
	Since                    string   `json:"since"`
	Until                    string   `json:"until"`
	ProjectID                string   `json:"projectId"`
	SectionID                string   `json:"sectionId"`
	ParentID                 string   `json:"parentId"`
	FilterQuery              string   `json:"filterQuery"`
	ResponsibleUser          string   `json:"responsibleUser"`
	ResponsibleUserFiltering string   `json:"responsibleUserFiltering"`
	Labels                   []string `json:"labels"`
	LabelsOperator           string   `json:"labelsOperator"`
	Limit                    int      `json:"limit"`
	Cursor                   string   `json:"cursor"`
}

const (
	getByCompletion = "completion"
	getByDue        = "due"
)

var findCompletedTasksDef = common.NewDefinition[taskListOutput](
	"find-completed-tasks",
	"Find completed tasks",
	"Find completed tasks by completion date or by due date. since and until are inclusive calendar days "+
		"in the server's configured timezone.",
	common.ReadOnly,
	append(append([]mcp.ToolOption{
		mcp.WithString("getBy",
			mcp.Description("Which date since/until apply to (default completion)."),
			mcp.Enum(getByCompletion, getByDue),
		),
		mcp.WithString("since", mcp.Required(), mcp.Description("First day, YYYY-MM-DD.")),
		mcp.WithString("until", mcp.Required(), mcp.Description("Last day, YYYY-MM-DD.")),
		mcp.WithString("projectId", mcp.Description("Only tasks in this project. Accepts \"inbox\".")),
		mcp.WithString("sectionId", mcp.Description("Only tasks in this section.")),
		mcp.WithString("parentId", mcp.Description("Only subtasks of this task.")),
		mcp.WithString("filterQuery", mcp.Description("Raw Todoist filter, e.g. \"##Work\".")),
		limitParam(defaultCompletedLimit),
		cursorParam(),
	}, labelsParams()...), responsibleParams(filter.ResponsibleAll)...)...,
)

func findCompletedTasks(ctx context.Context, sc *server.ServerContext, args findCompletedTasksArgs) (format.Output, error) {
	limit, err := clampLimit(args.Limit, defaultCompletedLimit)
	if err != nil {
		return format.Output{}, err
	}
	getBy := args.GetBy
	if getBy == "" {
		getBy = getByCompletion
	}
	if getBy != getByCompletion && getBy != getByDue {
		return format.Output{}, fmt.Errorf("invalid getBy %q, must be %q or %q", args.GetBy, getByCompletion, getByDue)
	}
	op, err := parseOperator(args.LabelsOperator)
	if err != nil {
		return format.Output{}, err
	}
	mode, err := parseResponsibleMode(args.ResponsibleUserFiltering, filter.ResponsibleAll)
	if err != nil {
		return format.Output{}, err
	}

	since, until, err := filter.CompletionBounds(args.Since, args.Until, sc.Location())
	if err != nil {
		return format.Output{}, err
	}

	projectID, err := newResolver(sc).ResolveProjectID(ctx, args.ProjectID)
	if err != nil {
		return format.Output{}, err
	}
	responsible, err := responsibleClause(ctx, sc, args.ResponsibleUser, mode)
	if err != nil {
		return format.Output{}, err
	}

	query, err := filter.Build(filter.Group(args.FilterQuery), filter.LabelsClause(args.Labels, op), responsible)
	if err != nil && !errors.Is(err, filter.ErrEmptyQuery) {
		return format.Output{}, err
	}

	req := todoist.CompletedTasksArgs{
		Since:       since,
		Until:       until,
		ProjectID:   projectID,
		SectionID:   args.SectionID,
		ParentID:    args.ParentID,
		FilterQuery: query,
		PageArgs:    todoist.PageArgs{Cursor: args.Cursor, Limit: limit},
	}
	list := sc.Client().GetCompletedTasksByCompletionDate
	if getBy == getByDue {
		list = sc.Client().GetCompletedTasksByDueDate
	}
	page, err := list(ctx, req)
	if err != nil {
		return format.Output{}, common.FilterError(fmt.Errorf("failed to list completed tasks: %w", err), query)
	}

	hints := []string{fmt.Sprintf("%s between %s and %s", getBy, args.Since, args.Until)}
	if query != "" {
		hints = append(hints, "query: "+query)
	}
	zero := []string{"No tasks were completed in this range"}
	if query != "" {
		zero = append(zero, format.FilterQueryHints(query)...)
	}

	out := newTaskListOutput(page.Results, page.NextCursor, query)
	text := sc.Formatter().SummarizeList(format.ListSummary{
		Subject:         "Completed tasks",
		Count:           out.TotalCount,
		Limit:           limit,
		NextCursor:      out.NextCursor,
		FilterHints:     hints,
		PreviewLines:    format.Lines(out.Tasks, format.PreviewTask),
		ZeroReasonHints: zero,
	})
	return format.Output{Text: text, Structured: out}, nil
}
