package todoist

import (
	"context"
	"net/http"
)

// AddSectionArgs is the body of a section creation.
type AddSectionArgs struct {
	Name      string `json:"name"`
	ProjectID string `json:"project_id"`
	Order     int    `json:"order,omitempty"`
}

// UpdateSectionArgs is the body of a section update.
type UpdateSectionArgs struct {
	Name string `json:"name"`
}

// GetSection returns a single section.
func (c *Client) GetSection(ctx context.Context, id string) (*Section, error) {
	var section Section
	if err := c.do(ctx, "sections.get", http.MethodGet, "/sections/"+pathEscape(id), nil, nil, &section); err != nil {
		return nil, err
	}
	return &section, nil
}

// GetSections lists one page of sections, optionally restricted to a project.
func (c *Client) GetSections(ctx context.Context, projectID string, args PageArgs) (Page[Section], error) {
	q := args.apply(nil)
	setIfNotEmpty(q, "project_id", projectID)

	var raw rawPage[Section]
	if err := c.do(ctx, "sections.list", http.MethodGet, "/sections", q, nil, &raw); err != nil {
		return Page[Section]{}, err
	}
	return raw.page(), nil
}

// AddSection creates a section.
func (c *Client) AddSection(ctx context.Context, args AddSectionArgs) (*Section, error) {
	var section Section
	if err := c.do(ctx, "sections.create", http.MethodPost, "/sections", nil, args, &section); err != nil {
		return nil, err
	}
	return &section, nil
}

// UpdateSection renames a section.
func (c *Client) UpdateSection(ctx context.Context, id string, args UpdateSectionArgs) (*Section, error) {
	var section Section
	if err := c.do(ctx, "sections.update", http.MethodPost, "/sections/"+pathEscape(id), nil, args, &section); err != nil {
		return nil, err
	}
	return &section, nil
}

// DeleteSection deletes a section and its tasks.
func (c *Client) DeleteSection(ctx context.Context, id string) error {
	return c.do(ctx, "sections.delete", http.MethodDelete, "/sections/"+pathEscape(id), nil, nil, nil)
}
