package todoist

import (
	"context"
	"net/http"
)

// CommentListArgs selects the comments of one task or one project.
type CommentListArgs struct {
	TaskID    string
	ProjectID string
	PageArgs
}

// AddCommentArgs is the body of a comment creation. Exactly one of TaskID
// and ProjectID is expected.
type AddCommentArgs struct {
	Content   string `json:"content"`
	TaskID    string `json:"task_id,omitempty"`
	ProjectID string `json:"project_id,omitempty"`
}

// UpdateCommentArgs is the body of a comment update.
type UpdateCommentArgs struct {
	Content string `json:"content"`
}

// GetComment returns a single comment.
func (c *Client) GetComment(ctx context.Context, id string) (*Comment, error) {
	var comment Comment
	if err := c.do(ctx, "comments.get", http.MethodGet, "/comments/"+pathEscape(id), nil, nil, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetComments lists one page of comments.
func (c *Client) GetComments(ctx context.Context, args CommentListArgs) (Page[Comment], error) {
	q := args.PageArgs.apply(nil)
	setIfNotEmpty(q, "task_id", args.TaskID)
	setIfNotEmpty(q, "project_id", args.ProjectID)

	var raw rawPage[Comment]
	if err := c.do(ctx, "comments.list", http.MethodGet, "/comments", q, nil, &raw); err != nil {
		return Page[Comment]{}, err
	}
	return raw.page(), nil
}

// AddComment creates a comment.
func (c *Client) AddComment(ctx context.Context, args AddCommentArgs) (*Comment, error) {
	var comment Comment
	if err := c.do(ctx, "comments.create", http.MethodPost, "/comments", nil, args, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// UpdateComment replaces a comment's content.
func (c *Client) UpdateComment(ctx context.Context, id string, args UpdateCommentArgs) (*Comment, error) {
	var comment Comment
	if err := c.do(ctx, "comments.update", http.MethodPost, "/comments/"+pathEscape(id), nil, args, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment deletes a comment.
func (c *Client) DeleteComment(ctx context.Context, id string) error {
	return c.do(ctx, "comments.delete", http.MethodDelete, "/comments/"+pathEscape(id), nil, nil, nil)
}
