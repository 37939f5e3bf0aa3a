package todoist_tools

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/todoist-mcp/internal/failure"
	"github.com/teemow/todoist-mcp/internal/format"
	"github.com/teemow/todoist-mcp/internal/mapping"
	"github.com/teemow/todoist-mcp/internal/resolve"
	"github.com/teemow/todoist-mcp/internal/server"
	"github.com/teemow/todoist-mcp/internal/todoist"
	"github.com/teemow/todoist-mcp/internal/tools/batch"
	"github.com/teemow/todoist-mcp/internal/tools/common"
)

// unassignKeyword clears the assignee in update-tasks.
const unassignKeyword = "unassign"

func registerTaskTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) {
	register(s, sc, readOnly, findTasksDef, findTasks)
	register(s, sc, readOnly, findTasksByDateDef, findTasksByDate)
	register(s, sc, readOnly, findCompletedTasksDef, findCompletedTasks)
	register(s, sc, readOnly, addTasksDef, addTasks)
	register(s, sc, readOnly, updateTasksDef, updateTasks)
	register(s, sc, readOnly, completeTasksDef, completeTasks)
}

// taskBatchOutput is the structured result of add-tasks and update-tasks.
type taskBatchOutput struct {
	Tasks      []mapping.Task `json:"tasks"`
	TotalCount int            `json:"totalCount"`
}

func taskBatchResult(sc *server.ServerContext, action, detail string, tasks []*todoist.Task) format.Output {
	mapped := make([]mapping.Task, 0, len(tasks))
	for _, t := range tasks {
		mapped = append(mapped, mapping.MapTask(*t))
	}
	text := sc.Formatter().SummarizeTaskOperation(action, mapped, format.TaskOperationOptions{
		Context:   detail,
		NextSteps: taskNextSteps,
	})
	return format.Output{
		Text:       text,
		Structured: taskBatchOutput{Tasks: mapped, TotalCount: len(mapped)},
	}
}

// add-tasks

type newTask struct {
	Content         string   `json:"content"`
	Description     string   `json:"description"`
	ProjectID       string   `json:"projectId"`
	SectionID       string   `json:"sectionId"`
	ParentID        string   `json:"parentId"`
	Labels          []string `json:"labels"`
	Priority        string   `json:"priority"`
	DueString       string   `json:"dueString"`
	DeadlineDate    string   `json:"deadlineDate"`
	Duration        string   `json:"duration"`
	ResponsibleUser string   `json:"responsibleUser"`
}

type addTasksArgs struct {
	Tasks []newTask `json:"tasks"`
}

var taskProps = map[string]any{
	"description":     prop("string", "Markdown description."),
	"labels":          stringArrayProp("Label names."),
	"priority":        enumProp("p1 is highest, p4 (default) lowest.", mapping.Priorities...),
	"dueString":       prop("string", "Natural-language due date, e.g. \"tomorrow 5pm\" or \"every monday\"."),
	"deadlineDate":    prop("string", "Hard deadline, YYYY-MM-DD."),
	"duration":        prop("string", "Estimated duration such as \"2h30m\", \"2h\" or \"45m\". At most 24h."),
	"responsibleUser": prop("string", "Assignee: \"me\", a user ID, an email or a name. Only for shared projects."),
	"sectionId":       prop("string", "Section to place the task in."),
	"parentId":        prop("string", "Parent task, making this a subtask."),
}

var addTasksDef = common.NewDefinition[taskBatchOutput](
	"add-tasks",
	"Add tasks",
	"Create one or more tasks. Either every task is created or the call fails.",
	common.Additive,
	objectArray("tasks", "Tasks to create.", []string{"content"}, withProps(taskProps, map[string]any{
		"content":   prop("string", "Task title."),
		"projectId": prop("string", "Project to add the task to. Accepts \"inbox\". Defaults to the inbox."),
	})),
)

// preparedTask is a validated add-tasks item.
type preparedTask struct {
	args todoist.AddTaskArgs
	user string
}

func addTasks(ctx context.Context, sc *server.ServerContext, args addTasksArgs) (format.Output, error) {
	if len(args.Tasks) == 0 {
		return format.Output{}, errors.New("tasks must contain at least one task")
	}

	prepared := make([]preparedTask, 0, len(args.Tasks))
	for i, t := range args.Tasks {
		p, err := prepareTask(t)
		if err != nil {
			return format.Output{}, fmt.Errorf("tasks[%d]: %w", i, err)
		}
		prepared = append(prepared, p)
	}

	r := newResolver(sc)
	label := func(p preparedTask) string { return p.args.Content }
	outcome, err := batch.Run(ctx, batch.FailFast, prepared, label, func(ctx context.Context, p preparedTask) (*todoist.Task, error) {
		projectID, err := r.ResolveProjectID(ctx, p.args.ProjectID)
		if err != nil {
			return nil, err
		}
		p.args.ProjectID = projectID
		if p.user != "" {
			user, err := r.ResolveUser(ctx, p.user, projectID)
			if err != nil {
				return nil, err
			}
			p.args.AssigneeID = user.ID
		}
		task, err := sc.Client().AddTask(ctx, p.args)
		if err != nil {
			return nil, fmt.Errorf("failed to add task: %w", err)
		}
		return task, nil
	}, batchOptions(sc, addTasksDef.Name))
	if err != nil {
		return format.Output{}, err
	}

	return taskBatchResult(sc, "Added", "", outcome.Succeeded), nil
}

func prepareTask(t newTask) (preparedTask, error) {
	content := strings.TrimSpace(t.Content)
	if content == "" {
		return preparedTask{}, errors.New("content is required")
	}
	p := preparedTask{
		args: todoist.AddTaskArgs{
			Content:      content,
			Description:  t.Description,
			ProjectID:    t.ProjectID,
			SectionID:    t.SectionID,
			ParentID:     t.ParentID,
			Labels:       t.Labels,
			DueString:    t.DueString,
			DeadlineDate: t.DeadlineDate,
		},
		user: strings.TrimSpace(t.ResponsibleUser),
	}
	if t.Priority != "" {
		prio, err := mapping.ParsePriority(t.Priority)
		if err != nil {
			return preparedTask{}, err
		}
		p.args.Priority = prio.ToRemote()
	}
	if t.Duration != "" {
		minutes, err := mapping.ParseDuration(t.Duration)
		if err != nil {
			return preparedTask{}, err
		}
		p.args.Duration = minutes
		p.args.DurationUnit = todoist.DurationUnitMinute
	}
	return p, nil
}

// update-tasks

type taskUpdate struct {
	ID              string    `json:"id"`
	Content         *string   `json:"content"`
	Description     *string   `json:"description"`
	Labels          *[]string `json:"labels"`
	Priority        *string   `json:"priority"`
	DueString       *string   `json:"dueString"`
	DeadlineDate    *string   `json:"deadlineDate"`
	Duration        *string   `json:"duration"`
	ResponsibleUser *string   `json:"responsibleUser"`
	ProjectID       string    `json:"projectId"`
	SectionID       string    `json:"sectionId"`
	ParentID        string    `json:"parentId"`
}

type updateTasksArgs struct {
	Tasks []taskUpdate `json:"tasks"`
}

var updateTasksDef = common.NewDefinition[taskBatchOutput](
	"update-tasks",
	"Update tasks",
	"Update or move one or more tasks. Only the given fields change. To move a task give exactly one of "+
		"projectId, sectionId or parentId. Either every task is updated or the call fails.",
	common.Mutating,
	objectArray("tasks", "Task updates.", []string{"id"}, withProps(taskProps, map[string]any{
		"id":              prop("string", "ID of the task to update."),
		"content":         prop("string", "New task title."),
		"projectId":       prop("string", "Move to this project. Accepts \"inbox\"."),
		"sectionId":       prop("string", "Move to this section."),
		"parentId":        prop("string", "Move under this parent task."),
		"responsibleUser": prop("string", "New assignee: \"me\", a user ID, an email or a name. \"unassign\" removes the assignee."),
	})),
)

// preparedUpdate is a validated update-tasks item.
type preparedUpdate struct {
	id     string
	move   *todoist.MoveTaskArgs
	update todoist.UpdateTaskArgs
	fields bool
	user   string
}

func updateTasks(ctx context.Context, sc *server.ServerContext, args updateTasksArgs) (format.Output, error) {
	if len(args.Tasks) == 0 {
		return format.Output{}, errors.New("tasks must contain at least one task")
	}

	prepared := make([]preparedUpdate, 0, len(args.Tasks))
	for i, t := range args.Tasks {
		p, err := prepareUpdate(t)
		if err != nil {
			return format.Output{}, fmt.Errorf("tasks[%d]: %w", i, err)
		}
		prepared = append(prepared, p)
	}

	r := newResolver(sc)
	label := func(p preparedUpdate) string { return p.id }
	outcome, err := batch.Run(ctx, batch.FailFast, prepared, label, func(ctx context.Context, p preparedUpdate) (*todoist.Task, error) {
		var task *todoist.Task
		if p.move != nil {
			if p.move.ProjectID != "" {
				projectID, err := r.ResolveProjectID(ctx, p.move.ProjectID)
				if err != nil {
					return nil, err
				}
				p.move.ProjectID = projectID
			}
			moved, err := sc.Client().MoveTask(ctx, p.id, *p.move)
			if err != nil {
				return nil, fmt.Errorf("failed to move task: %w", err)
			}
			task = moved
		}

		switch {
		case p.user == unassignKeyword:
			p.update.ClearAssignee = true
			p.fields = true
		case p.user != "":
			projectID := ""
			if task != nil {
				projectID = task.ProjectID
			}
			user, err := r.ResolveUser(ctx, p.user, projectID)
			if err != nil {
				return nil, err
			}
			p.update.AssigneeID = &user.ID
			p.fields = true
		}

		if p.fields {
			updated, err := sc.Client().UpdateTask(ctx, p.id, p.update)
			if err != nil {
				return nil, fmt.Errorf("failed to update task: %w", err)
			}
			return updated, nil
		}
		if task != nil {
			return task, nil
		}

		current, err := sc.Client().GetTask(ctx, p.id)
		if err != nil {
			return nil, fmt.Errorf("failed to get task: %w", err)
		}
		return current, nil
	}, batchOptions(sc, updateTasksDef.Name))
	if err != nil {
		return format.Output{}, err
	}

	return taskBatchResult(sc, "Updated", "", outcome.Succeeded), nil
}

func prepareUpdate(t taskUpdate) (preparedUpdate, error) {
	if strings.TrimSpace(t.ID) == "" {
		return preparedUpdate{}, errors.New("id is required")
	}
	p := preparedUpdate{id: t.ID}

	if t.ProjectID != "" || t.SectionID != "" || t.ParentID != "" {
		move, err := resolve.CreateMoveTaskArgs(t.ProjectID, t.SectionID, t.ParentID)
		if err != nil {
			return preparedUpdate{}, err
		}
		p.move = &move
	}

	u := &p.update
	if t.Content != nil {
		if strings.TrimSpace(*t.Content) == "" {
			return preparedUpdate{}, errors.New("content cannot be empty")
		}
		u.Content = t.Content
	}
	u.Description = t.Description
	u.Labels = t.Labels
	u.DueString = t.DueString
	u.DeadlineDate = t.DeadlineDate
	if t.Priority != nil {
		prio, err := mapping.ParsePriority(*t.Priority)
		if err != nil {
			return preparedUpdate{}, err
		}
		remote := prio.ToRemote()
		u.Priority = &remote
	}
	if t.Duration != nil {
		minutes, err := mapping.ParseDuration(*t.Duration)
		if err != nil {
			return preparedUpdate{}, err
		}
		unit := todoist.DurationUnitMinute
		u.Duration = &minutes
		u.DurationUnit = &unit
	}
	p.fields = u.Content != nil || u.Description != nil || u.Labels != nil || u.DueString != nil ||
		u.DeadlineDate != nil || u.Priority != nil || u.Duration != nil

	if t.ResponsibleUser != nil {
		p.user = strings.TrimSpace(*t.ResponsibleUser)
		if p.user == "" {
			return preparedUpdate{}, fmt.Errorf("responsibleUser cannot be empty, use %q to remove the assignee", unassignKeyword)
		}
	}
	return p, nil
}

// complete-tasks

type completeTasksArgs struct {
	IDs batch.StringList `json:"ids"`
}

type completeTasksOutput struct {
	Completed    []string         `json:"completed"`
	Failures     []failure.Report `json:"failures"`
	SuccessCount int              `json:"successCount"`
	FailureCount int              `json:"failureCount"`
}

var completeTasksDef = common.NewDefinition[completeTasksOutput](
	"complete-tasks",
	"Complete tasks",
	"Mark one or more tasks as done. Every task is attempted; failures are reported per task.",
	common.Mutating,
	mcp.WithArray("ids",
		mcp.Required(),
		mcp.Description("IDs of the tasks to complete."),
		mcp.MinItems(1),
		mcp.Items(map[string]any{"type": "string"}),
	),
)

func completeTasks(ctx context.Context, sc *server.ServerContext, args completeTasksArgs) (format.Output, error) {
	if err := args.IDs.Validate("ids"); err != nil {
		return format.Output{}, err
	}

	ids := []string(args.IDs)
	outcome, _ := batch.Run(ctx, batch.CollectPartial, ids, func(id string) string { return id },
		func(ctx context.Context, id string) (string, error) {
			if err := sc.Client().CloseTask(ctx, id); err != nil {
				return "", err
			}
			return id, nil
		}, batchOptions(sc, completeTasksDef.Name))
	logTaskFailures(sc, completeTasksDef.Name, "close_task", outcome.Failures)

	out := completeTasksOutput{
		Completed:    orEmpty(outcome.Succeeded),
		Failures:     orEmpty(outcome.Failures),
		SuccessCount: len(outcome.Succeeded),
		FailureCount: len(outcome.Failures),
	}

	var steps []string
	if out.FailureCount > 0 {
		steps = []string{"Check the failed IDs with find-tasks; completed or deleted tasks cannot be completed again."}
	}
	text, err := sc.Formatter().SummarizeBatch(format.BatchSummary{
		Action:       "Completed tasks",
		Success:      out.SuccessCount,
		Total:        len(ids),
		SuccessItems: out.Completed,
		Failures:     out.Failures,
		NextSteps:    steps,
	})
	if err != nil {
		return format.Output{}, err
	}
	return format.Output{Text: text, Structured: out}, nil
}

// withProps merges extra into a copy of base.
func withProps(base, extra map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(extra))
	maps.Copy(out, base)
	maps.Copy(out, extra)
	return out
}
