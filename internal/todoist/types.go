package todoist

import (
	"encoding/json"
	"fmt"
)

// Due is the due-date descriptor attached to a task.
type Due struct {
	Date        string `json:"date"`
	String      string `json:"string,omitempty"`
	Lang        string `json:"lang,omitempty"`
	IsRecurring bool   `json:"is_recurring"`
	Timezone    string `json:"timezone,omitempty"`
}

// Deadline is the hard deadline of a task. Unlike Due it is never recurring.
type Deadline struct {
	Date string `json:"date"`
	Lang string `json:"lang,omitempty"`
}

// Duration units accepted by the API.
const (
	DurationUnitMinute = "minute"
	DurationUnitDay    = "day"
)

// Duration is the estimated time a task takes.
type Duration struct {
	Amount int    `json:"amount"`
	Unit   string `json:"unit"`
}

// Task is a Todoist task (called "item" in parts of the API).
type Task struct {
	ID             string    `json:"id"`
	Content        string    `json:"content"`
	Description    string    `json:"description"`
	ProjectID      string    `json:"project_id"`
	SectionID      string    `json:"section_id"`
	ParentID       string    `json:"parent_id"`
	Labels         []string  `json:"labels"`
	Priority       int       `json:"priority"`
	Due            *Due      `json:"due"`
	Deadline       *Deadline `json:"deadline"`
	Duration       *Duration `json:"duration"`
	ResponsibleUID string    `json:"responsible_uid"`
	AssignedByUID  string    `json:"assigned_by_uid"`
	Checked        bool      `json:"checked"`
	CompletedAt    string    `json:"completed_at"`
	ChildOrder     int       `json:"child_order"`
	AddedAt        string    `json:"added_at"`
}

// Project is either a PersonalProject or a WorkspaceProject. The set of
// implementations is closed; use a type switch to branch on the variant.
type Project interface {
	Common() ProjectCommon
	isProject()
}

// ProjectCommon holds the fields shared by both project variants.
type ProjectCommon struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	IsFavorite  bool   `json:"is_favorite"`
	IsShared    bool   `json:"is_shared"`
	IsArchived  bool   `json:"is_archived"`
	ViewStyle   string `json:"view_style"`
	ChildOrder  int    `json:"child_order"`
	Description string `json:"description"`
}

// PersonalProject lives in the user's personal space and may be nested.
type PersonalProject struct {
	ProjectCommon
	ParentID     string `json:"parent_id"`
	InboxProject bool   `json:"inbox_project"`
}

// WorkspaceProject belongs to a team workspace.
type WorkspaceProject struct {
	ProjectCommon
	WorkspaceID string `json:"workspace_id"`
	FolderID    string `json:"folder_id"`
	AccessLevel string `json:"access_level"`
}

func (p *PersonalProject) Common() ProjectCommon  { return p.ProjectCommon }
func (p *WorkspaceProject) Common() ProjectCommon { return p.ProjectCommon }

func (*PersonalProject) isProject()  {}
func (*WorkspaceProject) isProject() {}

// decodeProject inspects the raw payload once and builds the matching
// variant. The API does not tag the variant: personal projects carry
// "inbox_project", workspace projects carry "workspace_id" or
// "access_level". A payload with neither is treated as personal.
func decodeProject(raw json.RawMessage) (Project, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, fmt.Errorf("failed to decode project: %w", err)
	}

	_, hasInbox := keys["inbox_project"]
	_, hasWorkspace := keys["workspace_id"]
	_, hasAccess := keys["access_level"]

	if !hasInbox && (hasWorkspace || hasAccess) {
		var p WorkspaceProject
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("failed to decode workspace project: %w", err)
		}
		return &p, nil
	}

	var p PersonalProject
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode personal project: %w", err)
	}
	return &p, nil
}

func decodeProjects(raws []json.RawMessage) ([]Project, error) {
	projects := make([]Project, 0, len(raws))
	for _, raw := range raws {
		p, err := decodeProject(raw)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// Section groups tasks inside a project.
type Section struct {
	ID           string `json:"id"`
	ProjectID    string `json:"project_id"`
	Name         string `json:"name"`
	SectionOrder int    `json:"section_order"`
	IsArchived   bool   `json:"is_archived"`
}

// Attachment describes a file attached to a comment.
type Attachment struct {
	ResourceType string `json:"resource_type"`
	FileName     string `json:"file_name"`
	FileSize     int64  `json:"file_size"`
	FileType     string `json:"file_type"`
	FileURL      string `json:"file_url"`
	UploadState  string `json:"upload_state"`
}

// Comment is a note on either a task or a project.
type Comment struct {
	ID             string      `json:"id"`
	TaskID         string      `json:"item_id"`
	ProjectID      string      `json:"project_id"`
	Content        string      `json:"content"`
	PostedAt       string      `json:"posted_at"`
	PostedUID      string      `json:"posted_uid"`
	FileAttachment *Attachment `json:"file_attachment"`
}

// TZInfo is the timezone configured on the user's account.
type TZInfo struct {
	Timezone  string `json:"timezone"`
	GMTString string `json:"gmt_string"`
}

// User is the authenticated account.
type User struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	FullName       string `json:"full_name"`
	InboxProjectID string `json:"inbox_project_id"`
	TZInfo         TZInfo `json:"tz_info"`
	StartDay       int    `json:"start_day"`
	Lang           string `json:"lang"`
	IsPremium      bool   `json:"is_premium"`
	DailyGoal      int    `json:"daily_goal"`
	WeeklyGoal     int    `json:"weekly_goal"`
}

// Collaborator is a user with access to a shared project.
type Collaborator struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ActivityEvent is one entry of the activity log.
type ActivityEvent struct {
	ID              string         `json:"id"`
	ObjectType      string         `json:"object_type"`
	ObjectID        string         `json:"object_id"`
	EventType       string         `json:"event_type"`
	EventDate       string         `json:"event_date"`
	ParentProjectID string         `json:"parent_project_id"`
	ParentItemID    string         `json:"parent_item_id"`
	InitiatorID     string         `json:"initiator_id"`
	ExtraData       map[string]any `json:"extra_data"`
}

// Page is one page of a cursor-paginated listing. An empty NextCursor
// marks the last page.
type Page[T any] struct {
	Results    []T
	NextCursor string
}

// rawPage covers both envelope shapes returned by list endpoints:
// most use "results", the completed-task endpoints use "items".
type rawPage[T any] struct {
	Results    []T     `json:"results"`
	Items      []T     `json:"items"`
	NextCursor *string `json:"next_cursor"`
}

func (r rawPage[T]) page() Page[T] {
	p := Page[T]{Results: r.Results}
	if p.Results == nil {
		p.Results = r.Items
	}
	if r.NextCursor != nil {
		p.NextCursor = *r.NextCursor
	}
	return p
}
