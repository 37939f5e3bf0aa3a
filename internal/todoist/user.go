package todoist

import (
	"context"
	"net/http"
)

// ActivityArgs filters the activity log.
type ActivityArgs struct {
	ObjectType      string
	ObjectID        string
	EventType       string
	ParentProjectID string
	ParentItemID    string
	InitiatorID     string
	PageArgs
}

// GetUser returns the authenticated user.
func (c *Client) GetUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, "user.get", http.MethodGet, "/user", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetActivityLogs lists one page of activity events, newest first.
func (c *Client) GetActivityLogs(ctx context.Context, args ActivityArgs) (Page[ActivityEvent], error) {
	q := args.PageArgs.apply(nil)
	setIfNotEmpty(q, "object_type", args.ObjectType)
	setIfNotEmpty(q, "object_id", args.ObjectID)
	setIfNotEmpty(q, "event_type", args.EventType)
	setIfNotEmpty(q, "parent_project_id", args.ParentProjectID)
	setIfNotEmpty(q, "parent_item_id", args.ParentItemID)
	setIfNotEmpty(q, "initiator_id", args.InitiatorID)

	var raw rawPage[ActivityEvent]
	if err := c.do(ctx, "activities.list", http.MethodGet, "/activities", q, nil, &raw); err != nil {
		return Page[ActivityEvent]{}, err
	}
	return raw.page(), nil
}
