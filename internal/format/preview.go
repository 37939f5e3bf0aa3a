package format

import (
	"strings"
	"unicode/utf8"

	"github.com/teemow/todoist-mcp/internal/mapping"
)

const (
	sep           = " • "
	previewIndent = "    "
	maxSnippet    = 80
)

// PreviewTask renders one task as a single line.
func PreviewTask(t mapping.Task) string {
	parts := []string{Truncate(t.Content, maxSnippet)}
	if t.DueDate != "" {
		parts = append(parts, "due "+t.DueDate)
	}
	if t.Recurring != "" {
		parts = append(parts, "recurring "+string(t.Recurring))
	}
	if t.DeadlineDate != "" {
		parts = append(parts, "deadline "+t.DeadlineDate)
	}
	if t.Priority != "" && t.Priority != mapping.P4 {
		parts = append(parts, strings.ToUpper(string(t.Priority)))
	}
	if t.Duration != "" {
		parts = append(parts, t.Duration)
	}
	if t.ResponsibleUID != "" {
		parts = append(parts, "assigned "+t.ResponsibleUID)
	}
	if t.Checked {
		parts = append(parts, "completed")
	}
	parts = append(parts, "id="+t.ID)
	return strings.Join(parts, sep)
}

// PreviewProject renders one project as a single line.
func PreviewProject(p mapping.Project) string {
	parts := []string{p.Name}
	if p.InboxProject {
		parts = append(parts, "Inbox")
	}
	if p.IsFavorite {
		parts = append(parts, "favorite")
	}
	if p.IsShared {
		parts = append(parts, "shared")
	}
	if p.ViewStyle != "" && p.ViewStyle != "list" {
		parts = append(parts, p.ViewStyle)
	}
	if p.ParentID != "" {
		parts = append(parts, "parent="+p.ParentID)
	}
	parts = append(parts, "id="+p.ID)
	return strings.Join(parts, sep)
}

// PreviewSection renders one section as a single line.
func PreviewSection(s mapping.Section) string {
	return s.Name + sep + "id=" + s.ID
}

// PreviewComment renders one comment as a single line.
func PreviewComment(c mapping.Comment) string {
	parts := []string{Truncate(singleLine(c.Content), maxSnippet)}
	if c.FileAttachment != nil && c.FileAttachment.FileName != "" {
		parts = append(parts, "attachment "+c.FileAttachment.FileName)
	}
	if c.PostedAt != "" {
		parts = append(parts, "posted "+c.PostedAt)
	}
	parts = append(parts, "id="+c.ID)
	return strings.Join(parts, sep)
}

// PreviewActivity renders one activity event as a single line.
func PreviewActivity(e mapping.ActivityEvent) string {
	parts := []string{e.EventDate, e.EventType + " " + e.ObjectType}
	if content, ok := e.ExtraData["content"].(string); ok && content != "" {
		parts = append(parts, Truncate(singleLine(content), maxSnippet))
	} else if name, ok := e.ExtraData["name"].(string); ok && name != "" {
		parts = append(parts, name)
	}
	parts = append(parts, "id="+e.ObjectID)
	return strings.Join(parts, sep)
}

// PreviewCollaborator renders one collaborator as a single line.
func PreviewCollaborator(c mapping.Collaborator) string {
	return c.Name + sep + c.Email + sep + "id=" + c.ID
}

// Truncate shortens s to at most n runes, marking the cut with "…".
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Lines maps items through preview, preserving order.
func Lines[T any](items []T, preview func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, preview(it))
	}
	return out
}
