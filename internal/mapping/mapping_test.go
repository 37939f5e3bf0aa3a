package mapping

import (
	"encoding/json"
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/todoist-mcp/internal/todoist"
)

func TestPriority_RoundTrip(t *testing.T) {
	for _, p := range []Priority{P1, P2, P3, P4} {
		assert.Equal(t, p, PriorityFromRemote(p.ToRemote()), "round trip for %s", p)
	}
}

func TestPriorityFromRemote(t *testing.T) {
	tests := []struct {
		remote int
		want   Priority
	}{
		{4, P1},
		{3, P2},
		{2, P3},
		{1, P4},
		{0, P4},
		{5, P4},
		{-1, P4},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PriorityFromRemote(tt.remote), "remote %d", tt.remote)
	}
}

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority(" P2 ")
	require.NoError(t, err)
	assert.Equal(t, P2, p)
	assert.Equal(t, 3, p.ToRemote())

	_, err = ParsePriority("p5")
	assert.ErrorContains(t, err, "invalid priority")
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, ""},
		{-5, ""},
		{45, "45m"},
		{60, "1h"},
		{120, "2h"},
		{150, "2h30m"},
		{1440, "24h"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.minutes), "minutes %d", tt.minutes)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr string
	}{
		{in: "2h30m", want: 150},
		{in: "2h", want: 120},
		{in: "45m", want: 45},
		{in: "1.5h", want: 90},
		{in: " 2h 15m ", want: 135},
		{in: "2H30M", want: 150},
		{in: "24h", want: 1440},
		{in: "", wantErr: "invalid duration"},
		{in: "30", wantErr: "invalid duration"},
		{in: "abc", wantErr: "invalid duration"},
		{in: "0m", wantErr: "greater than zero"},
		{in: "24h1m", wantErr: "exceeds the maximum"},
		{in: "25h", wantErr: "exceeds the maximum"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDuration_RoundTrip(t *testing.T) {
	for m := 1; m <= MaxDurationMinutes; m++ {
		got, err := ParseDuration(FormatDuration(m))
		require.NoError(t, err, "minutes %d", m)
		require.Equal(t, m, got, "minutes %d", m)
	}
}

func TestFormatTaskDuration(t *testing.T) {
	assert.Equal(t, "", FormatTaskDuration(nil))
	assert.Equal(t, "1h30m", FormatTaskDuration(&todoist.Duration{Amount: 90, Unit: todoist.DurationUnitMinute}))
	assert.Equal(t, "3d", FormatTaskDuration(&todoist.Duration{Amount: 3, Unit: todoist.DurationUnitDay}))
}

func TestRecurrence_JSON(t *testing.T) {
	raw, err := json.Marshal(struct {
		R Recurrence `json:"recurring"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"recurring": false}`, string(raw))

	raw, err = json.Marshal(Recurrence("every monday"))
	require.NoError(t, err)
	assert.Equal(t, `"every monday"`, string(raw))

	var r Recurrence
	require.NoError(t, json.Unmarshal([]byte(`"every day"`), &r))
	assert.Equal(t, Recurrence("every day"), r)
	require.NoError(t, json.Unmarshal([]byte(`false`), &r))
	assert.Equal(t, Recurrence(""), r)
	assert.Error(t, json.Unmarshal([]byte(`true`), &r))
}

func TestRecurrence_Schema(t *testing.T) {
	schema := (&jsonschema.Reflector{}).Reflect(Task{})
	raw, err := json.Marshal(schema)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"oneOf"`)
}

func TestMapTask(t *testing.T) {
	task := todoist.Task{
		ID:          "t1",
		Content:     "Buy milk",
		ProjectID:   "p1",
		Priority:    4,
		Due:         &todoist.Due{Date: "2025-08-14", String: "every thursday", IsRecurring: true},
		Deadline:    &todoist.Deadline{Date: "2025-09-01"},
		Duration:    &todoist.Duration{Amount: 150, Unit: todoist.DurationUnitMinute},
		CompletedAt: "",
	}

	got := MapTask(task)
	assert.Equal(t, P1, got.Priority)
	assert.Equal(t, "2025-08-14", got.DueDate)
	assert.Equal(t, Recurrence("every thursday"), got.Recurring)
	assert.Equal(t, "2025-09-01", got.DeadlineDate)
	assert.Equal(t, "2h30m", got.Duration)
	assert.NotNil(t, got.Labels)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))

	for _, key := range []string{"description", "labels", "checked", "recurring"} {
		assert.Contains(t, fields, key, "%s is always present", key)
	}
	for _, key := range []string{"sectionId", "parentId", "responsibleUid", "completedAt"} {
		assert.NotContains(t, fields, key, "%s should be pruned", key)
	}
}

func TestMapTask_NonRecurring(t *testing.T) {
	got := MapTask(todoist.Task{ID: "t2", Due: &todoist.Due{Date: "2025-08-14", String: "tomorrow"}})
	assert.Equal(t, Recurrence(""), got.Recurring)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"recurring":false`)
}

func TestMapProject(t *testing.T) {
	personal := &todoist.PersonalProject{
		ProjectCommon: todoist.ProjectCommon{ID: "p1", Name: "Inbox", Color: "charcoal"},
		InboxProject:  true,
		ParentID:      "",
	}
	got := MapProject(personal)
	assert.True(t, got.InboxProject)
	assert.Equal(t, "list", got.ViewStyle)
	assert.Empty(t, got.WorkspaceID)

	workspace := &todoist.WorkspaceProject{
		ProjectCommon: todoist.ProjectCommon{ID: "p2", Name: "Team", Color: "not_a_palette_color", ViewStyle: "board"},
		WorkspaceID:   "w1",
	}
	got = MapProject(workspace)
	assert.False(t, got.InboxProject)
	assert.Equal(t, "w1", got.WorkspaceID)
	assert.Empty(t, got.ParentID)
	assert.Equal(t, "board", got.ViewStyle)
	assert.Equal(t, "not_a_palette_color", got.Color, "colors are preserved verbatim")
}

func TestMapComment(t *testing.T) {
	got := MapComment(todoist.Comment{ID: "c1", TaskID: "t1", ProjectID: "p1", Content: "hi"})
	assert.Equal(t, "t1", got.TaskID)
	assert.Empty(t, got.ProjectID)

	got = MapComment(todoist.Comment{
		ID:        "c2",
		ProjectID: "p1",
		FileAttachment: &todoist.Attachment{
			ResourceType: "file",
			FileName:     "notes.pdf",
			FileSize:     1024,
		},
	})
	assert.Empty(t, got.TaskID)
	assert.Equal(t, "p1", got.ProjectID)
	require.NotNil(t, got.FileAttachment)
	assert.Equal(t, "notes.pdf", got.FileAttachment.FileName)
}

func TestMapSlices_PreserveOrder(t *testing.T) {
	tasks := MapTasks([]todoist.Task{{ID: "b"}, {ID: "a"}, {ID: "c"}})
	require.Len(t, tasks, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{tasks[0].ID, tasks[1].ID, tasks[2].ID})

	sections := MapSections([]todoist.Section{{ID: "s1", SectionOrder: 2}})
	assert.Equal(t, 2, sections[0].Order)

	events := MapActivityEvents([]todoist.ActivityEvent{{ObjectType: "item", EventType: "completed"}})
	assert.Nil(t, events[0].ExtraData)

	collaborators := MapCollaborators([]todoist.Collaborator{{ID: "u1", Email: "a@example.com"}})
	assert.Equal(t, "a@example.com", collaborators[0].Email)
}

func TestNormalizeColor(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "red", want: "red"},
		{in: "Berry Red", want: "berry_red"},
		{in: "sky-blue", want: "sky_blue"},
		{in: "#ff0000", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeColor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
