package todoist

import (
	"context"
	"encoding/json"
	"net/http"
)

// AddProjectArgs is the body of a project creation.
type AddProjectArgs struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ParentID    string `json:"parent_id,omitempty"`
	Color       string `json:"color,omitempty"`
	IsFavorite  bool   `json:"is_favorite,omitempty"`
	ViewStyle   string `json:"view_style,omitempty"`
	WorkspaceID string `json:"workspace_id,omitempty"`
}

// UpdateProjectArgs is the body of a project update. Nil fields are left untouched.
type UpdateProjectArgs struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
	IsFavorite  *bool   `json:"is_favorite,omitempty"`
	ViewStyle   *string `json:"view_style,omitempty"`
}

// GetProject returns a single project.
func (c *Client) GetProject(ctx context.Context, id string) (Project, error) {
	var raw json.RawMessage
	if err := c.do(ctx, "projects.get", http.MethodGet, "/projects/"+pathEscape(id), nil, nil, &raw); err != nil {
		return nil, err
	}
	return decodeProject(raw)
}

// GetProjects lists one page of the user's active projects.
func (c *Client) GetProjects(ctx context.Context, args PageArgs) (Page[Project], error) {
	var raw rawPage[json.RawMessage]
	if err := c.do(ctx, "projects.list", http.MethodGet, "/projects", args.apply(nil), nil, &raw); err != nil {
		return Page[Project]{}, err
	}
	page := raw.page()
	projects, err := decodeProjects(page.Results)
	if err != nil {
		return Page[Project]{}, err
	}
	return Page[Project]{Results: projects, NextCursor: page.NextCursor}, nil
}

// AddProject creates a project.
func (c *Client) AddProject(ctx context.Context, args AddProjectArgs) (Project, error) {
	var raw json.RawMessage
	if err := c.do(ctx, "projects.create", http.MethodPost, "/projects", nil, args, &raw); err != nil {
		return nil, err
	}
	return decodeProject(raw)
}

// UpdateProject updates a project.
func (c *Client) UpdateProject(ctx context.Context, id string, args UpdateProjectArgs) (Project, error) {
	var raw json.RawMessage
	if err := c.do(ctx, "projects.update", http.MethodPost, "/projects/"+pathEscape(id), nil, args, &raw); err != nil {
		return nil, err
	}
	return decodeProject(raw)
}

// DeleteProject deletes a project with its sections and tasks.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, "projects.delete", http.MethodDelete, "/projects/"+pathEscape(id), nil, nil, nil)
}

// GetProjectCollaborators lists one page of a shared project's collaborators.
func (c *Client) GetProjectCollaborators(ctx context.Context, projectID string, args PageArgs) (Page[Collaborator], error) {
	var raw rawPage[Collaborator]
	path := "/projects/" + pathEscape(projectID) + "/collaborators"
	if err := c.do(ctx, "projects.collaborators", http.MethodGet, path, args.apply(nil), nil, &raw); err != nil {
		return Page[Collaborator]{}, err
	}
	return raw.page(), nil
}
