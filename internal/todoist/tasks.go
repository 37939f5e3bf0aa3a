package todoist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// TaskListArgs filters a direct task listing by container.
type TaskListArgs struct {
	ProjectID string
	SectionID string
	ParentID  string
	Label     string
	IDs       []string
	PageArgs
}

// TaskFilterArgs runs a filter-query search.
type TaskFilterArgs struct {
	Query string
	Lang  string
	PageArgs
}

// CompletedTasksArgs selects completed tasks within a time range. Since and
// Until are RFC 3339 timestamps.
type CompletedTasksArgs struct {
	Since       string
	Until       string
	ProjectID   string
	SectionID   string
	ParentID    string
	FilterQuery string
	FilterLang  string
	PageArgs
}

// AddTaskArgs is the body of a task creation.
type AddTaskArgs struct {
	Content        string   `json:"content"`
	Description    string   `json:"description,omitempty"`
	ProjectID      string   `json:"project_id,omitempty"`
	SectionID      string   `json:"section_id,omitempty"`
	ParentID       string   `json:"parent_id,omitempty"`
	Labels         []string `json:"labels,omitempty"`
	Priority       int      `json:"priority,omitempty"`
	DueString      string   `json:"due_string,omitempty"`
	DueDate        string   `json:"due_date,omitempty"`
	DueLang        string   `json:"due_lang,omitempty"`
	DeadlineDate   string   `json:"deadline_date,omitempty"`
	Duration       int      `json:"duration,omitempty"`
	DurationUnit   string   `json:"duration_unit,omitempty"`
	AssigneeID     string   `json:"assignee_id,omitempty"`
	ResponsibleUID string   `json:"responsible_uid,omitempty"`
	Order          int      `json:"order,omitempty"`
}

// UpdateTaskArgs is the body of a task update. Nil fields are left
// untouched. ClearAssignee sends an explicit null assignee.
type UpdateTaskArgs struct {
	Content      *string   `json:"content,omitempty"`
	Description  *string   `json:"description,omitempty"`
	Labels       *[]string `json:"labels,omitempty"`
	Priority     *int      `json:"priority,omitempty"`
	DueString    *string   `json:"due_string,omitempty"`
	DueDate      *string   `json:"due_date,omitempty"`
	DueLang      *string   `json:"due_lang,omitempty"`
	DeadlineDate *string   `json:"deadline_date,omitempty"`
	Duration     *int      `json:"duration,omitempty"`
	DurationUnit *string   `json:"duration_unit,omitempty"`
	AssigneeID   *string   `json:"assignee_id,omitempty"`

	ClearAssignee bool `json:"-"`
}

// MarshalJSON implements json.Marshaler.
func (a UpdateTaskArgs) MarshalJSON() ([]byte, error) {
	type plain UpdateTaskArgs
	if !a.ClearAssignee {
		return json.Marshal(plain(a))
	}
	raw, err := json.Marshal(plain(a))
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	fields["assignee_id"] = nil
	return json.Marshal(fields)
}

// MoveTaskArgs moves a task. Exactly one field must be set.
type MoveTaskArgs struct {
	ProjectID string `json:"project_id,omitempty"`
	SectionID string `json:"section_id,omitempty"`
	ParentID  string `json:"parent_id,omitempty"`
}

// GetTask returns a single task.
func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	var task Task
	if err := c.do(ctx, "tasks.get", http.MethodGet, "/tasks/"+pathEscape(id), nil, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// GetTasks lists active tasks by container.
func (c *Client) GetTasks(ctx context.Context, args TaskListArgs) (Page[Task], error) {
	q := args.PageArgs.apply(nil)
	setIfNotEmpty(q, "project_id", args.ProjectID)
	setIfNotEmpty(q, "section_id", args.SectionID)
	setIfNotEmpty(q, "parent_id", args.ParentID)
	setIfNotEmpty(q, "label", args.Label)
	if len(args.IDs) > 0 {
		q.Set("ids", strings.Join(args.IDs, ","))
	}

	var raw rawPage[Task]
	if err := c.do(ctx, "tasks.list", http.MethodGet, "/tasks", q, nil, &raw); err != nil {
		return Page[Task]{}, err
	}
	return raw.page(), nil
}

// GetTasksByFilter lists active tasks matching a filter query.
func (c *Client) GetTasksByFilter(ctx context.Context, args TaskFilterArgs) (Page[Task], error) {
	q := args.PageArgs.apply(url.Values{"query": {args.Query}})
	setIfNotEmpty(q, "lang", args.Lang)

	var raw rawPage[Task]
	if err := c.do(ctx, "tasks.filter", http.MethodGet, "/tasks/filter", q, nil, &raw); err != nil {
		return Page[Task]{}, err
	}
	return raw.page(), nil
}

// GetCompletedTasksByCompletionDate lists tasks completed within the range.
func (c *Client) GetCompletedTasksByCompletionDate(ctx context.Context, args CompletedTasksArgs) (Page[Task], error) {
	return c.completedTasks(ctx, "tasks.completed_by_completion_date", "/tasks/completed/by_completion_date", args)
}

// GetCompletedTasksByDueDate lists completed tasks whose due date is within the range.
func (c *Client) GetCompletedTasksByDueDate(ctx context.Context, args CompletedTasksArgs) (Page[Task], error) {
	return c.completedTasks(ctx, "tasks.completed_by_due_date", "/tasks/completed/by_due_date", args)
}

func (c *Client) completedTasks(ctx context.Context, operation, path string, args CompletedTasksArgs) (Page[Task], error) {
	q := args.PageArgs.apply(url.Values{
		"since": {args.Since},
		"until": {args.Until},
	})
	setIfNotEmpty(q, "project_id", args.ProjectID)
	setIfNotEmpty(q, "section_id", args.SectionID)
	setIfNotEmpty(q, "parent_id", args.ParentID)
	setIfNotEmpty(q, "filter_query", args.FilterQuery)
	setIfNotEmpty(q, "filter_lang", args.FilterLang)

	var raw rawPage[Task]
	if err := c.do(ctx, operation, http.MethodGet, path, q, nil, &raw); err != nil {
		return Page[Task]{}, err
	}
	return raw.page(), nil
}

// AddTask creates a task.
func (c *Client) AddTask(ctx context.Context, args AddTaskArgs) (*Task, error) {
	var task Task
	if err := c.do(ctx, "tasks.create", http.MethodPost, "/tasks", nil, args, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask updates the task's fields.
func (c *Client) UpdateTask(ctx context.Context, id string, args UpdateTaskArgs) (*Task, error) {
	var task Task
	if err := c.do(ctx, "tasks.update", http.MethodPost, "/tasks/"+pathEscape(id), nil, args, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// MoveTask moves a task to another project, section or parent.
func (c *Client) MoveTask(ctx context.Context, id string, args MoveTaskArgs) (*Task, error) {
	var task Task
	if err := c.do(ctx, "tasks.move", http.MethodPost, "/tasks/"+pathEscape(id)+"/move", nil, args, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CloseTask completes a task.
func (c *Client) CloseTask(ctx context.Context, id string) error {
	return c.do(ctx, "tasks.close", http.MethodPost, "/tasks/"+pathEscape(id)+"/close", nil, nil, nil)
}

// DeleteTask deletes a task and its sub-tasks.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, "tasks.delete", http.MethodDelete, "/tasks/"+pathEscape(id), nil, nil, nil)
}
