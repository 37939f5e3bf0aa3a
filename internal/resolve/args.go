package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/teemow/todoist-mcp/internal/todoist"
)

// Validation errors for task moves and comment targets.
var (
	ErrNoMoveDestination = errors.New("Must provide exactly one of: projectId, sectionId, or parentId.")
	ErrMultipleMoveDestinations = errors.New("Only one of projectId, sectionId, or parentId can be specified at a time. " +
		"Multiple destination parameters were provided.")

	ErrNoCommentTarget   = errors.New("Either taskId or projectId must be provided.")
	ErrBothCommentTarget = errors.New("Cannot provide both taskId and projectId. Choose one.")
)

// CreateMoveTaskArgs builds move arguments. Exactly one destination must be set.
func CreateMoveTaskArgs(projectID, sectionID, parentID string) (todoist.MoveTaskArgs, error) {
	set := 0
	for _, v := range []string{projectID, sectionID, parentID} {
		if v != "" {
			set++
		}
	}
	switch {
	case set == 0:
		return todoist.MoveTaskArgs{}, ErrNoMoveDestination
	case set > 1:
		return todoist.MoveTaskArgs{}, ErrMultipleMoveDestinations
	}
	return todoist.MoveTaskArgs{ProjectID: projectID, SectionID: sectionID, ParentID: parentID}, nil
}

// ValidateCommentTarget requires exactly one of taskID and projectID.
func ValidateCommentTarget(taskID, projectID string) error {
	switch {
	case taskID == "" && projectID == "":
		return ErrNoCommentTarget
	case taskID != "" && projectID != "":
		return ErrBothCommentTarget
	}
	return nil
}

// ObjectType is the kind prefix of a composite ID.
type ObjectType string

const (
	ObjectTask    ObjectType = "task"
	ObjectProject ObjectType = "project"
)

// CompositeID identifies a task or project as "<type>:<id>".
type CompositeID struct {
	Type ObjectType
	ID   string
}

func (c CompositeID) String() string {
	return string(c.Type) + ":" + c.ID
}

// ParseCompositeID parses "task:<id>" or "project:<id>".
func ParseCompositeID(s string) (CompositeID, error) {
	kind, id, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || kind == "" || id == "" {
		return CompositeID{}, invalidID(s)
	}
	switch t := ObjectType(kind); t {
	case ObjectTask, ObjectProject:
		return CompositeID{Type: t, ID: id}, nil
	default:
		return CompositeID{}, invalidID(s)
	}
}

func invalidID(s string) error {
	return fmt.Errorf("Invalid ID format: %q. Expected \"task:<id>\" or \"project:<id>\"", s)
}
