package todoist_tools

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/todoist-mcp/internal/mapping"
	"github.com/teemow/todoist-mcp/internal/resolve"
	"github.com/teemow/todoist-mcp/internal/todoist"
	"github.com/teemow/todoist-mcp/internal/tools/batch"
)

func TestRegisterTodoistTools(t *testing.T) {
	tests := []struct {
		name     string
		readOnly bool
		want     int
	}{
		{"all tools", false, 23},
		{"read-only", true, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithToolCapabilities(false))
			sc := newTestContext(t, newFakeClient())

			require.NoError(t, RegisterTodoistTools(s, sc, tt.readOnly))

			tools := s.ListTools()
			assert.Len(t, tools, tt.want)
			for name, tool := range tools {
				if tt.readOnly {
					require.NotNil(t, tool.Tool.Annotations.ReadOnlyHint, name)
					assert.True(t, *tool.Tool.Annotations.ReadOnlyHint, name)
				}
			}
			_, hasAdd := tools["add-tasks"]
			assert.Equal(t, !tt.readOnly, hasAdd)
			assert.Contains(t, tools, "find-tasks")
		})
	}
}

func TestDefinitions_UniqueNamesAndSchemas(t *testing.T) {
	seen := map[string]bool{}
	for _, def := range Definitions() {
		assert.False(t, seen[def.Name], "duplicate tool %s", def.Name)
		seen[def.Name] = true

		schema, err := def.OutputSchemaJSON()
		require.NoError(t, err, def.Name)
		assert.NotEmpty(t, schema, def.Name)
	}
	assert.Len(t, seen, 23)
}

func TestHandler_EndToEnd(t *testing.T) {
	client := newFakeClient()
	seedTasks(client)
	s := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithToolCapabilities(false))
	sc := newTestContext(t, client)
	require.NoError(t, RegisterTodoistTools(s, sc, false))

	tool, ok := s.ListTools()["complete-tasks"]
	require.True(t, ok)

	req := mcp.CallToolRequest{}
	req.Params.Name = "complete-tasks"
	req.Params.Arguments = map[string]any{"ids": "t1"}

	result, err := tool.Handler(context.Background(), req)
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "Completed tasks: 1/1 successful.")
	assert.Equal(t, []string{"t1"}, client.closed)
}

func TestFindProjects(t *testing.T) {
	client := newFakeClient()
	sc := newTestContext(t, client)
	ctx := context.Background()

	out, err := findProjects(ctx, sc, findProjectsArgs{Search: "WORK"})
	require.NoError(t, err)
	res := out.Structured.(projectListOutput)
	require.Len(t, res.Projects, 2)
	assert.Equal(t, "Work", res.Projects[0].Name)
	assert.Equal(t, "Work reports", res.Projects[1].Name)
	assert.Equal(t, "p1", res.Projects[1].ParentID)
	assert.Equal(t, "list", res.Projects[0].ViewStyle)
	requireValidOutput(t, findProjectsDef, out)

	out, err = findProjects(ctx, sc, findProjectsArgs{})
	require.NoError(t, err)
	assert.Equal(t, 4, out.Structured.(projectListOutput).TotalCount)
}

func TestFindProjects_SearchHonorsLimit(t *testing.T) {
	sc := newTestContext(t, newFakeClient())
	ctx := context.Background()

	out, err := findProjects(ctx, sc, findProjectsArgs{Search: "work", Limit: 1})
	require.NoError(t, err)
	res := out.Structured.(projectListOutput)
	require.Len(t, res.Projects, 1)
	assert.Equal(t, "Work", res.Projects[0].Name)
	assert.Equal(t, 1, res.TotalCount)
	assert.True(t, res.HasMore, "a second match was cut off")
	assert.Empty(t, res.NextCursor)
	assert.Contains(t, out.Text, "Projects: 1 (limit 1).")
	assert.Contains(t, out.Text, "showing 1 of 2 matches")
	requireValidOutput(t, findProjectsDef, out)

	out, err = findProjects(ctx, sc, findProjectsArgs{Search: "work", Limit: 2})
	require.NoError(t, err)
	res = out.Structured.(projectListOutput)
	assert.Len(t, res.Projects, 2)
	assert.False(t, res.HasMore)
	assert.NotContains(t, out.Text, "matches")

	_, err = findProjects(ctx, sc, findProjectsArgs{Search: "work", Cursor: "c1"})
	assert.ErrorContains(t, err, "cursor cannot be combined with search")
}

func TestAddProjects(t *testing.T) {
	client := newFakeClient()
	sc := newTestContext(t, client)
	ctx := context.Background()

	out, err := addProjects(ctx, sc, addProjectsArgs{Projects: []newProject{
		{Name: "Garden", Color: "Berry Red", ViewStyle: "board"},
	}})
	require.NoError(t, err)
	res := out.Structured.(projectBatchOutput)
	require.Len(t, res.Projects, 1)
	assert.Equal(t, "berry_red", res.Projects[0].Color)
	assert.Equal(t, "board", res.Projects[0].ViewStyle)
	requireValidOutput(t, addProjectsDef, out)

	_, err = addProjects(ctx, sc, addProjectsArgs{Projects: []newProject{{Name: "x", Color: "neon"}}})
	assert.ErrorContains(t, err, "invalid color")

	_, err = addProjects(ctx, sc, addProjectsArgs{Projects: []newProject{{Name: "x", ViewStyle: "gallery"}}})
	assert.ErrorContains(t, err, "invalid viewStyle")
}

func TestUpdateProjects(t *testing.T) {
	client := newFakeClient()
	sc := newTestContext(t, client)
	ctx := context.Background()

	name := "Day job"
	out, err := updateProjects(ctx, sc, updateProjectsArgs{Projects: []projectUpdate{{ID: "p1", Name: &name}}})
	require.NoError(t, err)
	assert.Equal(t, "Day job", out.Structured.(projectBatchOutput).Projects[0].Name)

	_, err = updateProjects(ctx, sc, updateProjectsArgs{Projects: []projectUpdate{{ID: "p1"}}})
	assert.EqualError(t, err, "projects[0]: nothing to update")

	_, err = updateProjects(ctx, sc, updateProjectsArgs{Projects: []projectUpdate{{ID: "missing", Name: &name}}})
	assert.ErrorContains(t, err, "project not found")
}

func TestSections(t *testing.T) {
	client := newFakeClient()
	client.sections = []todoist.Section{
		{ID: "s1", ProjectID: "inbox-1", Name: "Someday", SectionOrder: 1},
		{ID: "s2", ProjectID: "inbox-1", Name: "Errands", SectionOrder: 2},
		{ID: "s3", ProjectID: "p1", Name: "Backlog", SectionOrder: 1},
	}
	sc := newTestContext(t, client)
	ctx := context.Background()

	out, err := findSections(ctx, sc, findSectionsArgs{ProjectID: "inbox"})
	require.NoError(t, err)
	res := out.Structured.(sectionListOutput)
	assert.Equal(t, 2, res.TotalCount)
	requireValidOutput(t, findSectionsDef, out)

	out, err = findSections(ctx, sc, findSectionsArgs{ProjectID: "inbox", Search: "err"})
	require.NoError(t, err)
	res = out.Structured.(sectionListOutput)
	require.Len(t, res.Sections, 1)
	assert.Equal(t, "s2", res.Sections[0].ID)

	_, err = findSections(ctx, sc, findSectionsArgs{})
	assert.EqualError(t, err, "projectId is required")

	out, err = addSections(ctx, sc, addSectionsArgs{Sections: []newSection{{Name: "Later", ProjectID: "inbox"}}})
	require.NoError(t, err)
	added := out.Structured.(sectionListOutput).Sections
	require.Len(t, added, 1)
	assert.Equal(t, "inbox-1", added[0].ProjectID)

	_, err = addSections(ctx, sc, addSectionsArgs{Sections: []newSection{{Name: "Later"}}})
	assert.EqualError(t, err, "sections[0]: projectId is required")

	out, err = updateSections(ctx, sc, updateSectionsArgs{Sections: []sectionUpdate{{ID: "s3", Name: "Icebox"}}})
	require.NoError(t, err)
	assert.Equal(t, "Icebox", out.Structured.(sectionListOutput).Sections[0].Name)
}

func TestFindComments(t *testing.T) {
	client := newFakeClient()
	client.comments = []todoist.Comment{
		{ID: "c1", TaskID: "t1", Content: "Whole milk"},
		{ID: "c2", ProjectID: "inbox-1", Content: "Inbox note"},
	}
	sc := newTestContext(t, client)
	ctx := context.Background()

	for _, args := range []findCommentsArgs{{}, {TaskID: "t1", ProjectID: "p1"}, {TaskID: "t1", CommentID: "c1"}} {
		_, err := findComments(ctx, sc, args)
		assert.EqualError(t, err, "Provide exactly one of: taskId, projectId, or commentId.")
	}

	out, err := findComments(ctx, sc, findCommentsArgs{ProjectID: "inbox"})
	require.NoError(t, err)
	res := out.Structured.(commentListOutput)
	require.Len(t, res.Comments, 1)
	assert.Equal(t, "c2", res.Comments[0].ID)
	requireValidOutput(t, findCommentsDef, out)

	out, err = findComments(ctx, sc, findCommentsArgs{CommentID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, "Whole milk", out.Structured.(commentListOutput).Comments[0].Content)
}

func TestAddComments(t *testing.T) {
	client := newFakeClient()
	sc := newTestContext(t, client)
	ctx := context.Background()

	_, err := addComments(ctx, sc, addCommentsArgs{Comments: []newComment{
		{Content: "ok", TaskID: "t1"},
		{Content: "both", TaskID: "t1", ProjectID: "p1"},
	}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, resolve.ErrBothCommentTarget))
	assert.Empty(t, client.addedComments, "validation runs before any call")

	_, err = addComments(ctx, sc, addCommentsArgs{Comments: []newComment{{Content: "none"}}})
	assert.True(t, errors.Is(err, resolve.ErrNoCommentTarget))

	out, err := addComments(ctx, sc, addCommentsArgs{Comments: []newComment{{Content: "hello", ProjectID: "inbox"}}})
	require.NoError(t, err)
	require.Len(t, client.addedComments, 1)
	assert.Equal(t, "inbox-1", client.addedComments[0].ProjectID)
	assert.Equal(t, 1, out.Structured.(commentBatchOutput).TotalCount)
	requireValidOutput(t, addCommentsDef, out)
}

func TestFindActivity(t *testing.T) {
	client := newFakeClient()
	client.events = []todoist.ActivityEvent{
		{ID: "e1", ObjectType: "item", ObjectID: "t1", EventType: "completed", EventDate: "2025-08-13T09:00:00Z"},
	}
	sc := newTestContext(t, client)
	ctx := context.Background()

	out, err := findActivity(ctx, sc, findActivityArgs{ObjectType: "comment", ProjectID: "inbox", EventType: "added"})
	require.NoError(t, err)
	require.Len(t, client.activityArgs, 1)
	got := client.activityArgs[0]
	assert.Equal(t, "note", got.ObjectType)
	assert.Equal(t, "inbox-1", got.ParentProjectID)
	assert.Equal(t, "added", got.EventType)
	assert.Equal(t, defaultActivityLimit, got.Limit)

	res := out.Structured.(activityOutput)
	assert.True(t, res.HasMore)
	assert.Equal(t, "next", res.NextCursor)
	assert.Len(t, res.Events, 1)
	assert.Contains(t, out.Text, `Pass cursor "next" to fetch the next page.`)
	requireValidOutput(t, findActivityDef, out)

	_, err = findActivity(ctx, sc, findActivityArgs{ObjectID: "t1"})
	assert.EqualError(t, err, "objectId requires objectType")

	_, err = findActivity(ctx, sc, findActivityArgs{ObjectType: "label"})
	assert.Error(t, err)
}

func TestGetOverview_Account(t *testing.T) {
	client := newFakeClient()
	sc := newTestContext(t, client)

	out, err := getOverview(context.Background(), sc, getOverviewArgs{})
	require.NoError(t, err)
	res := out.Structured.(overviewOutput)
	assert.Equal(t, overviewAccount, res.Type)
	require.NotNil(t, res.Inbox)
	assert.Equal(t, "inbox-1", res.Inbox.ID)

	var order []string
	for _, e := range res.Projects {
		order = append(order, e.Project.ID)
	}
	assert.Equal(t, []string{"p1", "p3", "p2"}, order)
	assert.Equal(t, 1, res.Projects[1].Depth)
	assert.Contains(t, out.Text, "Account overview: 3 projects.")
	requireValidOutput(t, getOverviewDef, out)
}

func TestProjectTree_OrphansBecomeRoots(t *testing.T) {
	projects := []todoist.Project{
		&todoist.PersonalProject{ProjectCommon: todoist.ProjectCommon{ID: "b", ChildOrder: 2}},
		&todoist.PersonalProject{ProjectCommon: todoist.ProjectCommon{ID: "orphan", ChildOrder: 1}, ParentID: "gone"},
		&todoist.PersonalProject{ProjectCommon: todoist.ProjectCommon{ID: "a", ChildOrder: 3}},
	}

	tree := projectTree(projects)
	require.Len(t, tree, 3)
	assert.Equal(t, "orphan", tree[0].Project.ID)
	assert.Equal(t, 0, tree[0].Depth)
	assert.Equal(t, "b", tree[1].Project.ID)
	assert.Equal(t, "a", tree[2].Project.ID)
}

func TestGetOverview_Project(t *testing.T) {
	client := newFakeClient()
	seedTasks(client)
	client.tasks[1].SectionID = "s1"
	client.sections = []todoist.Section{{ID: "s1", ProjectID: "p1", Name: "Reports"}}
	sc := newTestContext(t, client)

	out, err := getOverview(context.Background(), sc, getOverviewArgs{ProjectID: "p1"})
	require.NoError(t, err)
	res := out.Structured.(overviewOutput)
	assert.Equal(t, overviewProject, res.Type)
	assert.Equal(t, 2, res.TotalTasks)
	require.Len(t, res.Sections, 1)
	assert.Equal(t, []string{"t2"}, taskIDs(res.Sections[0].Tasks))
	assert.Equal(t, []string{"t1"}, taskIDs(res.UnsectionedTasks))
	assert.Contains(t, out.Text, "Project Work: 1 section, 2 tasks.")
	assert.Contains(t, out.Text, "Reports (1):")
	requireValidOutput(t, getOverviewDef, out)
}

func TestDeleteObject(t *testing.T) {
	client := newFakeClient()
	sc := newTestContext(t, client)
	ctx := context.Background()

	out, err := deleteObject(ctx, sc, deleteObjectArgs{Type: "task", ID: "t1"})
	require.NoError(t, err)
	assert.Equal(t, "Deleted task t1.", out.Text)
	assert.Equal(t, deleteObjectOutput{DeletedType: "task", DeletedID: "t1", Success: true}, out.Structured)
	assert.Equal(t, []string{"Task:t1"}, client.deleted)

	_, err = deleteObject(ctx, sc, deleteObjectArgs{Type: "project", ID: "inbox"})
	assert.EqualError(t, err, "the inbox project cannot be deleted")

	_, err = deleteObject(ctx, sc, deleteObjectArgs{Type: "label", ID: "x"})
	assert.Error(t, err)

	client.errs["DeleteSection:s9"] = notFound("section")
	_, err = deleteObject(ctx, sc, deleteObjectArgs{Type: "section", ID: "s9"})
	assert.ErrorContains(t, err, "failed to delete section")
	assert.Len(t, client.deleted, 1)
}

func TestWeekBounds(t *testing.T) {
	tests := []struct {
		name      string
		startDay  int
		wantStart string
		wantEnd   string
	}{
		{"monday", 1, "2025-08-11", "2025-08-17"},
		{"sunday", 7, "2025-08-10", "2025-08-16"},
		{"thursday is today", 4, "2025-08-14", "2025-08-20"},
		{"out of range defaults to monday", 0, "2025-08-11", "2025-08-17"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := weekBounds(fixedNow, tt.startDay)
			assert.Equal(t, tt.wantStart, start.Format(time.DateOnly))
			assert.Equal(t, tt.wantEnd, end.Format(time.DateOnly))
		})
	}
}

func TestUserInfo(t *testing.T) {
	client := newFakeClient()
	client.user.TZInfo.Timezone = ""
	sc := newTestContext(t, client)

	out, err := userInfo(context.Background(), sc, userInfoArgs{})
	require.NoError(t, err)
	res := out.Structured.(userInfoOutput)
	assert.Equal(t, "u1", res.ID)
	assert.Equal(t, "UTC", res.Timezone)
	assert.Equal(t, "2025-08-14T10:00:00Z", res.LocalTime)
	assert.Equal(t, "Monday", res.StartDayName)
	assert.Equal(t, "2025-08-11", res.WeekStart)
	assert.Equal(t, "2025-08-17", res.WeekEnd)
	assert.Contains(t, out.Text, "Goals: 5 tasks daily, 25 weekly.")
	requireValidOutput(t, userInfoDef, out)
}

func TestFindCollaborators(t *testing.T) {
	client := newFakeClient()
	sc := newTestContext(t, client)
	ctx := context.Background()

	out, err := findCollaborators(ctx, sc, findCollaboratorsArgs{ProjectID: "p1"})
	require.NoError(t, err)
	res := out.Structured.(collaboratorsOutput)
	assert.True(t, res.IsShared)
	assert.Equal(t, 2, res.TotalCount)
	requireValidOutput(t, findCollaboratorsDef, out)

	out, err = findCollaborators(ctx, sc, findCollaboratorsArgs{ProjectID: "p1", SearchTerm: "SAM"})
	require.NoError(t, err)
	res = out.Structured.(collaboratorsOutput)
	require.Len(t, res.Collaborators, 1)
	assert.Equal(t, "u2", res.Collaborators[0].ID)

	out, err = findCollaborators(ctx, sc, findCollaboratorsArgs{ProjectID: "p2"})
	require.NoError(t, err)
	res = out.Structured.(collaboratorsOutput)
	assert.False(t, res.IsShared)
	assert.Empty(t, res.Collaborators)
	assert.Contains(t, out.Text, "is not shared")
}

func TestManageAssignments(t *testing.T) {
	t.Run("dry run changes nothing", func(t *testing.T) {
		client := newFakeClient()
		seedTasks(client)
		sc := newTestContext(t, client)

		out, err := manageAssignments(context.Background(), sc, manageAssignmentsArgs{
			Operation:       opAssign,
			TaskIDs:         batch.StringList{"t1"},
			ResponsibleUser: "Sam",
			DryRun:          true,
		})
		require.NoError(t, err)
		assert.Empty(t, client.updated)
		res := out.Structured.(manageAssignmentsOutput)
		require.Len(t, res.Results, 1)
		assert.Equal(t, "u2", res.Results[0].NewAssignee)
		assert.Contains(t, out.Text, "dry run")
		requireValidOutput(t, manageAssignmentsDef, out)
	})

	t.Run("reassign collects failures", func(t *testing.T) {
		client := newFakeClient()
		seedTasks(client)
		sc := newTestContext(t, client)

		out, err := manageAssignments(context.Background(), sc, manageAssignmentsArgs{
			Operation:        opReassign,
			TaskIDs:          batch.StringList{"t1", "t2"},
			ResponsibleUser:  "me",
			FromAssigneeUser: "sam@example.com",
		})
		require.NoError(t, err)
		res := out.Structured.(manageAssignmentsOutput)
		assert.Equal(t, 1, res.SuccessCount)
		assert.Equal(t, 1, res.FailureCount)
		assert.Equal(t, "t1", res.Failures[0].Item)
		require.NotNil(t, client.updated["t2"].AssigneeID)
		assert.Equal(t, "u1", *client.updated["t2"].AssigneeID)
	})

	t.Run("unassign skips unassigned tasks", func(t *testing.T) {
		client := newFakeClient()
		seedTasks(client)
		sc := newTestContext(t, client)

		_, err := manageAssignments(context.Background(), sc, manageAssignmentsArgs{
			Operation: opUnassign,
			TaskIDs:   batch.StringList{"t1", "t2"},
		})
		require.NoError(t, err)
		assert.NotContains(t, client.updated, "t1")
		assert.True(t, client.updated["t2"].ClearAssignee)
	})

	t.Run("argument validation", func(t *testing.T) {
		sc := newTestContext(t, newFakeClient())
		ctx := context.Background()

		_, err := manageAssignments(ctx, sc, manageAssignmentsArgs{Operation: opUnassign, TaskIDs: batch.StringList{"t1"}, ResponsibleUser: "me"})
		assert.Error(t, err)
		_, err = manageAssignments(ctx, sc, manageAssignmentsArgs{Operation: opAssign, TaskIDs: batch.StringList{"t1"}})
		assert.Error(t, err)
		_, err = manageAssignments(ctx, sc, manageAssignmentsArgs{Operation: "swap", TaskIDs: batch.StringList{"t1"}})
		assert.Error(t, err)
		_, err = manageAssignments(ctx, sc, manageAssignmentsArgs{Operation: opAssign, ResponsibleUser: "me"})
		assert.EqualError(t, err, "taskIds is required")
	})
}

func TestSearchAndFetch(t *testing.T) {
	client := newFakeClient()
	seedTasks(client)
	client.filterResults = []todoist.Task{client.tasks[1]}
	sc := newTestContext(t, client)
	ctx := context.Background()

	out, err := search(ctx, sc, searchArgs{Query: "work"})
	require.NoError(t, err)
	assert.Equal(t, []string{"search: work"}, client.filterQueries)
	res := out.Structured.(searchOutput)
	var ids []string
	for _, r := range res.Results {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"task:t2", "project:p1", "project:p3"}, ids)
	assert.Equal(t, "https://app.todoist.com/app/task/t2", res.Results[0].URL)
	requireValidOutput(t, searchDef, out)

	out, err = fetch(ctx, sc, fetchArgs{ID: "task:t2"})
	require.NoError(t, err)
	doc := out.Structured.(fetchOutput)
	assert.Equal(t, "Write report", doc.Title)
	assert.Equal(t, string(mapping.P1), doc.Metadata["priority"])
	assert.Equal(t, "u2", doc.Metadata["responsibleUid"])
	requireValidOutput(t, fetchDef, out)

	out, err = fetch(ctx, sc, fetchArgs{ID: "project:p1"})
	require.NoError(t, err)
	assert.Equal(t, "true", out.Structured.(fetchOutput).Metadata["isShared"])

	_, err = fetch(ctx, sc, fetchArgs{ID: "bogus"})
	assert.ErrorContains(t, err, "Invalid ID format")

	_, err = search(ctx, sc, searchArgs{Query: " "})
	assert.EqualError(t, err, "query is required")
}
