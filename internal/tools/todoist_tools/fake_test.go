package todoist_tools

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/teemow/todoist-mcp/internal/server"
	"github.com/teemow/todoist-mcp/internal/todoist"
)

// fakeClient is an in-memory server.TodoistClient. Calls are recorded so
// tests can assert on what reached the remote API.
type fakeClient struct {
	mu sync.Mutex

	user          todoist.User
	tasks         []todoist.Task
	filterResults []todoist.Task
	completed     []todoist.Task
	projects      []todoist.Project
	sections      []todoist.Section
	comments      []todoist.Comment
	collaborators map[string][]todoist.Collaborator
	events        []todoist.ActivityEvent

	// errs maps "<method>:<id>" to the error that call returns.
	errs map[string]error

	listArgs      []todoist.TaskListArgs
	filterQueries []string
	completedArgs []todoist.CompletedTasksArgs
	completedVia  []string
	added         []todoist.AddTaskArgs
	updated       map[string]todoist.UpdateTaskArgs
	moved         map[string]todoist.MoveTaskArgs
	closed        []string
	deleted       []string
	addedComments []todoist.AddCommentArgs
	activityArgs  []todoist.ActivityArgs
}

var _ server.TodoistClient = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{
		user: todoist.User{
			ID:             "u1",
			Email:          "alex@example.com",
			FullName:       "Alex Doe",
			InboxProjectID: "inbox-1",
			TZInfo:         todoist.TZInfo{Timezone: "Europe/Berlin"},
			StartDay:       1,
			DailyGoal:      5,
			WeeklyGoal:     25,
		},
		projects: []todoist.Project{
			&todoist.PersonalProject{ProjectCommon: todoist.ProjectCommon{ID: "inbox-1", Name: "Inbox"}, InboxProject: true},
			&todoist.PersonalProject{ProjectCommon: todoist.ProjectCommon{ID: "p1", Name: "Work", IsShared: true, ChildOrder: 1}},
			&todoist.PersonalProject{ProjectCommon: todoist.ProjectCommon{ID: "p2", Name: "Home", ChildOrder: 2}},
			&todoist.PersonalProject{ProjectCommon: todoist.ProjectCommon{ID: "p3", Name: "Work reports", ChildOrder: 1}, ParentID: "p1"},
		},
		collaborators: map[string][]todoist.Collaborator{
			"p1": {
				{ID: "u1", Name: "Alex Doe", Email: "alex@example.com"},
				{ID: "u2", Name: "Sam Poe", Email: "sam@example.com"},
			},
		},
		errs:    map[string]error{},
		updated: map[string]todoist.UpdateTaskArgs{},
		moved:   map[string]todoist.MoveTaskArgs{},
	}
}

func (f *fakeClient) err(method, id string) error {
	return f.errs[method+":"+id]
}

func notFound(what string) error {
	return &todoist.APIError{StatusCode: http.StatusNotFound, Message: what + " not found", Tag: todoist.TagNotFound}
}

func (f *fakeClient) GetTask(_ context.Context, id string) (*todoist.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("GetTask", id); err != nil {
		return nil, err
	}
	for _, t := range f.tasks {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, notFound("task")
}

func (f *fakeClient) GetTasks(_ context.Context, args todoist.TaskListArgs) (todoist.Page[todoist.Task], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listArgs = append(f.listArgs, args)
	var out []todoist.Task
	for _, t := range f.tasks {
		if args.ProjectID != "" && t.ProjectID != args.ProjectID {
			continue
		}
		if args.SectionID != "" && t.SectionID != args.SectionID {
			continue
		}
		if args.ParentID != "" && t.ParentID != args.ParentID {
			continue
		}
		out = append(out, t)
	}
	return todoist.Page[todoist.Task]{Results: out}, nil
}

func (f *fakeClient) GetTasksByFilter(_ context.Context, args todoist.TaskFilterArgs) (todoist.Page[todoist.Task], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filterQueries = append(f.filterQueries, args.Query)
	if err := f.err("GetTasksByFilter", ""); err != nil {
		return todoist.Page[todoist.Task]{}, err
	}
	return todoist.Page[todoist.Task]{Results: f.filterResults}, nil
}

func (f *fakeClient) completedTasks(via string, args todoist.CompletedTasksArgs) (todoist.Page[todoist.Task], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completedArgs = append(f.completedArgs, args)
	f.completedVia = append(f.completedVia, via)
	return todoist.Page[todoist.Task]{Results: f.completed, NextCursor: ""}, nil
}

func (f *fakeClient) GetCompletedTasksByCompletionDate(_ context.Context, args todoist.CompletedTasksArgs) (todoist.Page[todoist.Task], error) {
	return f.completedTasks("completion", args)
}

func (f *fakeClient) GetCompletedTasksByDueDate(_ context.Context, args todoist.CompletedTasksArgs) (todoist.Page[todoist.Task], error) {
	return f.completedTasks("due", args)
}

func (f *fakeClient) AddTask(_ context.Context, args todoist.AddTaskArgs) (*todoist.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("AddTask", args.Content); err != nil {
		return nil, err
	}
	f.added = append(f.added, args)
	t := todoist.Task{
		ID:             fmt.Sprintf("new-%s", args.Content),
		Content:        args.Content,
		ProjectID:      args.ProjectID,
		SectionID:      args.SectionID,
		Labels:         args.Labels,
		Priority:       max(args.Priority, 1),
		ResponsibleUID: args.AssigneeID,
	}
	if args.Duration > 0 {
		t.Duration = &todoist.Duration{Amount: args.Duration, Unit: args.DurationUnit}
	}
	return &t, nil
}

func (f *fakeClient) UpdateTask(_ context.Context, id string, args todoist.UpdateTaskArgs) (*todoist.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("UpdateTask", id); err != nil {
		return nil, err
	}
	f.updated[id] = args
	for i, t := range f.tasks {
		if t.ID != id {
			continue
		}
		if args.Content != nil {
			t.Content = *args.Content
		}
		if args.Priority != nil {
			t.Priority = *args.Priority
		}
		if args.AssigneeID != nil {
			t.ResponsibleUID = *args.AssigneeID
		}
		if args.ClearAssignee {
			t.ResponsibleUID = ""
		}
		f.tasks[i] = t
		return &t, nil
	}
	return nil, notFound("task")
}

func (f *fakeClient) MoveTask(_ context.Context, id string, args todoist.MoveTaskArgs) (*todoist.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moved[id] = args
	for i, t := range f.tasks {
		if t.ID != id {
			continue
		}
		if args.ProjectID != "" {
			t.ProjectID = args.ProjectID
		}
		if args.SectionID != "" {
			t.SectionID = args.SectionID
		}
		if args.ParentID != "" {
			t.ParentID = args.ParentID
		}
		f.tasks[i] = t
		return &t, nil
	}
	return nil, notFound("task")
}

func (f *fakeClient) CloseTask(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("CloseTask", id); err != nil {
		return err
	}
	f.closed = append(f.closed, id)
	return nil
}

func (f *fakeClient) remove(kind, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("Delete"+kind, id); err != nil {
		return err
	}
	f.deleted = append(f.deleted, kind+":"+id)
	return nil
}

func (f *fakeClient) DeleteTask(_ context.Context, id string) error    { return f.remove("Task", id) }
func (f *fakeClient) DeleteProject(_ context.Context, id string) error { return f.remove("Project", id) }
func (f *fakeClient) DeleteSection(_ context.Context, id string) error { return f.remove("Section", id) }
func (f *fakeClient) DeleteComment(_ context.Context, id string) error { return f.remove("Comment", id) }

func (f *fakeClient) GetProject(_ context.Context, id string) (todoist.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.projects {
		if p.Common().ID == id {
			return p, nil
		}
	}
	return nil, notFound("project")
}

func (f *fakeClient) GetProjects(_ context.Context, _ todoist.PageArgs) (todoist.Page[todoist.Project], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return todoist.Page[todoist.Project]{Results: slices.Clone(f.projects)}, nil
}

func (f *fakeClient) AddProject(_ context.Context, args todoist.AddProjectArgs) (todoist.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("AddProject", args.Name); err != nil {
		return nil, err
	}
	p := &todoist.PersonalProject{
		ProjectCommon: todoist.ProjectCommon{ID: "new-" + args.Name, Name: args.Name, Color: args.Color, ViewStyle: args.ViewStyle},
		ParentID:      args.ParentID,
	}
	f.projects = append(f.projects, p)
	return p, nil
}

func (f *fakeClient) UpdateProject(_ context.Context, id string, args todoist.UpdateProjectArgs) (todoist.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.projects {
		pp, ok := p.(*todoist.PersonalProject)
		if !ok || pp.ID != id {
			continue
		}
		if args.Name != nil {
			pp.Name = *args.Name
		}
		if args.Color != nil {
			pp.Color = *args.Color
		}
		return pp, nil
	}
	return nil, notFound("project")
}

func (f *fakeClient) GetProjectCollaborators(_ context.Context, projectID string, _ todoist.PageArgs) (todoist.Page[todoist.Collaborator], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return todoist.Page[todoist.Collaborator]{Results: f.collaborators[projectID]}, nil
}

func (f *fakeClient) GetSection(_ context.Context, id string) (*todoist.Section, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sections {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, notFound("section")
}

func (f *fakeClient) GetSections(_ context.Context, projectID string, _ todoist.PageArgs) (todoist.Page[todoist.Section], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []todoist.Section
	for _, s := range f.sections {
		if s.ProjectID == projectID {
			out = append(out, s)
		}
	}
	return todoist.Page[todoist.Section]{Results: out}, nil
}

func (f *fakeClient) AddSection(_ context.Context, args todoist.AddSectionArgs) (*todoist.Section, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := todoist.Section{ID: "new-" + args.Name, ProjectID: args.ProjectID, Name: args.Name, SectionOrder: args.Order}
	f.sections = append(f.sections, s)
	return &s, nil
}

func (f *fakeClient) UpdateSection(_ context.Context, id string, args todoist.UpdateSectionArgs) (*todoist.Section, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, s := range f.sections {
		if s.ID == id {
			f.sections[i].Name = args.Name
			s.Name = args.Name
			return &s, nil
		}
	}
	return nil, notFound("section")
}

func (f *fakeClient) GetComment(_ context.Context, id string) (*todoist.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.comments {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, notFound("comment")
}

func (f *fakeClient) GetComments(_ context.Context, args todoist.CommentListArgs) (todoist.Page[todoist.Comment], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []todoist.Comment
	for _, c := range f.comments {
		if (args.TaskID != "" && c.TaskID == args.TaskID) || (args.ProjectID != "" && c.ProjectID == args.ProjectID) {
			out = append(out, c)
		}
	}
	return todoist.Page[todoist.Comment]{Results: out}, nil
}

func (f *fakeClient) AddComment(_ context.Context, args todoist.AddCommentArgs) (*todoist.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addedComments = append(f.addedComments, args)
	c := todoist.Comment{ID: fmt.Sprintf("c%d", len(f.addedComments)), TaskID: args.TaskID, ProjectID: args.ProjectID, Content: args.Content}
	return &c, nil
}

func (f *fakeClient) UpdateComment(_ context.Context, id string, args todoist.UpdateCommentArgs) (*todoist.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.comments {
		if c.ID == id {
			f.comments[i].Content = args.Content
			c.Content = args.Content
			return &c, nil
		}
	}
	return nil, notFound("comment")
}

func (f *fakeClient) GetUser(_ context.Context) (*todoist.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.user
	return &u, nil
}

func (f *fakeClient) GetActivityLogs(_ context.Context, args todoist.ActivityArgs) (todoist.Page[todoist.ActivityEvent], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activityArgs = append(f.activityArgs, args)
	return todoist.Page[todoist.ActivityEvent]{Results: f.events, NextCursor: "next"}, nil
}

// fixedNow is 2025-08-14 10:00 UTC, a Thursday.
var fixedNow = time.Date(2025, 8, 14, 10, 0, 0, 0, time.UTC)

func newTestContext(t *testing.T, client *fakeClient, opts ...server.Option) *server.ServerContext {
	t.Helper()
	opts = append([]server.Option{server.WithClock(func() time.Time { return fixedNow })}, opts...)
	sc, err := server.NewServerContext(context.Background(), client, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}
