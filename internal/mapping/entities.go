package mapping

import (
	"github.com/teemow/todoist-mcp/internal/todoist"
)

// Task is the normalized task shape returned to clients. Absent optional
// fields are omitted rather than sent as null.
type Task struct {
	ID             string     `json:"id"`
	Content        string     `json:"content"`
	Description    string     `json:"description"`
	DueDate        string     `json:"dueDate,omitempty"`
	Recurring      Recurrence `json:"recurring"`
	DeadlineDate   string     `json:"deadlineDate,omitempty"`
	Priority       Priority   `json:"priority" jsonschema:"enum=p1,enum=p2,enum=p3,enum=p4"`
	ProjectID      string     `json:"projectId"`
	SectionID      string     `json:"sectionId,omitempty"`
	ParentID       string     `json:"parentId,omitempty"`
	Labels         []string   `json:"labels"`
	Duration       string     `json:"duration,omitempty"`
	ResponsibleUID string     `json:"responsibleUid,omitempty"`
	AssignedByUID  string     `json:"assignedByUid,omitempty"`
	Checked        bool       `json:"checked"`
	CompletedAt    string     `json:"completedAt,omitempty"`
}

// Project is the normalized project shape. ParentID and InboxProject only
// apply to personal projects, WorkspaceID only to workspace projects.
type Project struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Color        string `json:"color"`
	IsFavorite   bool   `json:"isFavorite"`
	IsShared     bool   `json:"isShared"`
	ParentID     string `json:"parentId,omitempty"`
	InboxProject bool   `json:"inboxProject"`
	ViewStyle    string `json:"viewStyle" jsonschema:"enum=list,enum=board,enum=calendar"`
	WorkspaceID  string `json:"workspaceId,omitempty"`
}

// Attachment is the file attached to a comment.
type Attachment struct {
	ResourceType string `json:"resourceType"`
	FileName     string `json:"fileName,omitempty"`
	FileSize     int64  `json:"fileSize,omitempty"`
	FileType     string `json:"fileType,omitempty"`
	FileURL      string `json:"fileUrl,omitempty"`
	UploadState  string `json:"uploadState,omitempty"`
}

// Comment is the normalized comment shape. Exactly one of TaskID and
// ProjectID is set.
type Comment struct {
	ID             string      `json:"id"`
	TaskID         string      `json:"taskId,omitempty"`
	ProjectID      string      `json:"projectId,omitempty"`
	Content        string      `json:"content"`
	PostedAt       string      `json:"postedAt"`
	FileAttachment *Attachment `json:"fileAttachment,omitempty"`
}

// Section is the normalized section shape.
type Section struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ProjectID string `json:"projectId"`
	Order     int    `json:"order"`
}

// ActivityEvent is the normalized activity-log entry.
type ActivityEvent struct {
	ID              string         `json:"id,omitempty"`
	ObjectType      string         `json:"objectType"`
	ObjectID        string         `json:"objectId"`
	EventType       string         `json:"eventType"`
	EventDate       string         `json:"eventDate"`
	ParentProjectID string         `json:"parentProjectId,omitempty"`
	ParentItemID    string         `json:"parentItemId,omitempty"`
	InitiatorID     string         `json:"initiatorId,omitempty"`
	ExtraData       map[string]any `json:"extraData,omitempty"`
}

// Collaborator is a user sharing a project.
type Collaborator struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Default view style when the API omits one.
const defaultViewStyle = "list"

// MapTask converts an API task.
func MapTask(t todoist.Task) Task {
	out := Task{
		ID:             t.ID,
		Content:        t.Content,
		Description:    t.Description,
		Priority:       PriorityFromRemote(t.Priority),
		ProjectID:      t.ProjectID,
		SectionID:      t.SectionID,
		ParentID:       t.ParentID,
		Labels:         t.Labels,
		Duration:       FormatTaskDuration(t.Duration),
		ResponsibleUID: t.ResponsibleUID,
		AssignedByUID:  t.AssignedByUID,
		Checked:        t.Checked,
		CompletedAt:    t.CompletedAt,
	}
	if out.Labels == nil {
		out.Labels = []string{}
	}
	if t.Due != nil {
		out.DueDate = t.Due.Date
		if t.Due.IsRecurring {
			out.Recurring = Recurrence(t.Due.String)
		}
	}
	if t.Deadline != nil {
		out.DeadlineDate = t.Deadline.Date
	}
	return out
}

// MapTasks converts a slice of API tasks, preserving order.
func MapTasks(tasks []todoist.Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, MapTask(t))
	}
	return out
}

// MapProject converts either project variant.
func MapProject(p todoist.Project) Project {
	c := p.Common()
	out := Project{
		ID:         c.ID,
		Name:       c.Name,
		Color:      c.Color,
		IsFavorite: c.IsFavorite,
		IsShared:   c.IsShared,
		ViewStyle:  c.ViewStyle,
	}
	if out.ViewStyle == "" {
		out.ViewStyle = defaultViewStyle
	}

	switch v := p.(type) {
	case *todoist.PersonalProject:
		out.ParentID = v.ParentID
		out.InboxProject = v.InboxProject
	case *todoist.WorkspaceProject:
		out.WorkspaceID = v.WorkspaceID
	}
	return out
}

// MapProjects converts a slice of projects, preserving order.
func MapProjects(projects []todoist.Project) []Project {
	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		out = append(out, MapProject(p))
	}
	return out
}

// MapComment converts an API comment. Task comments drop the project ID the
// API may echo alongside the task ID.
func MapComment(c todoist.Comment) Comment {
	out := Comment{
		ID:       c.ID,
		Content:  c.Content,
		PostedAt: c.PostedAt,
	}
	if c.TaskID != "" {
		out.TaskID = c.TaskID
	} else {
		out.ProjectID = c.ProjectID
	}
	if a := c.FileAttachment; a != nil {
		out.FileAttachment = &Attachment{
			ResourceType: a.ResourceType,
			FileName:     a.FileName,
			FileSize:     a.FileSize,
			FileType:     a.FileType,
			FileURL:      a.FileURL,
			UploadState:  a.UploadState,
		}
	}
	return out
}

// MapComments converts a slice of comments, preserving order.
func MapComments(comments []todoist.Comment) []Comment {
	out := make([]Comment, 0, len(comments))
	for _, c := range comments {
		out = append(out, MapComment(c))
	}
	return out
}

// MapSection converts an API section.
func MapSection(s todoist.Section) Section {
	return Section{
		ID:        s.ID,
		Name:      s.Name,
		ProjectID: s.ProjectID,
		Order:     s.SectionOrder,
	}
}

// MapSections converts a slice of sections, preserving order.
func MapSections(sections []todoist.Section) []Section {
	out := make([]Section, 0, len(sections))
	for _, s := range sections {
		out = append(out, MapSection(s))
	}
	return out
}

// MapActivityEvent converts an activity-log entry.
func MapActivityEvent(e todoist.ActivityEvent) ActivityEvent {
	out := ActivityEvent{
		ID:              e.ID,
		ObjectType:      e.ObjectType,
		ObjectID:        e.ObjectID,
		EventType:       e.EventType,
		EventDate:       e.EventDate,
		ParentProjectID: e.ParentProjectID,
		ParentItemID:    e.ParentItemID,
		InitiatorID:     e.InitiatorID,
	}
	if len(e.ExtraData) > 0 {
		out.ExtraData = e.ExtraData
	}
	return out
}

// MapActivityEvents converts a slice of activity events, preserving order.
func MapActivityEvents(events []todoist.ActivityEvent) []ActivityEvent {
	out := make([]ActivityEvent, 0, len(events))
	for _, e := range events {
		out = append(out, MapActivityEvent(e))
	}
	return out
}

// MapCollaborator converts a project collaborator.
func MapCollaborator(c todoist.Collaborator) Collaborator {
	return Collaborator{ID: c.ID, Name: c.Name, Email: c.Email}
}

// MapCollaborators converts a slice of collaborators, preserving order.
func MapCollaborators(cs []todoist.Collaborator) []Collaborator {
	out := make([]Collaborator, 0, len(cs))
	for _, c := range cs {
		out = append(out, MapCollaborator(c))
	}
	return out
}
