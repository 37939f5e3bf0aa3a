package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/todoist-mcp/internal/mapping"
	"github.com/teemow/todoist-mcp/internal/pagination"
	"github.com/teemow/todoist-mcp/internal/server"
	"github.com/teemow/todoist-mcp/internal/todoist"
)

// Resource URIs.
const (
	ProfileURI  = "todoist://user/profile"
	ProjectsURI = "todoist://projects"
)

// RegisterTodoistResources registers the read-only account resources.
func RegisterTodoistResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	profileResource := mcp.NewResource(
		ProfileURI,
		"Todoist Profile",
		mcp.WithResourceDescription("The authenticated Todoist user, with timezone and inbox project"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(profileResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleProfile(ctx, request, sc)
	})

	projectsResource := mcp.NewResource(
		ProjectsURI,
		"Todoist Projects",
		mcp.WithResourceDescription("Every project the user can access, in API order"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(projectsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleProjects(ctx, request, sc)
	})

	return nil
}

// profile is the JSON body of the profile resource.
type profile struct {
	ID             string `json:"id"`
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	Timezone       string `json:"timezone"`
	InboxProjectID string `json:"inboxProjectId"`
	StartDay       int    `json:"startDay"`
	IsPremium      bool   `json:"isPremium"`
}

func handleProfile(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	user, err := sc.Client().GetUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}

	return jsonContents(request.Params.URI, profile{
		ID:             user.ID,
		FullName:       user.FullName,
		Email:          user.Email,
		Timezone:       user.TZInfo.Timezone,
		InboxProjectID: user.InboxProjectID,
		StartDay:       user.StartDay,
		IsPremium:      user.IsPremium,
	})
}

func handleProjects(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	projects, err := pagination.DrainAll(ctx, func(ctx context.Context, cursor string) (todoist.Page[todoist.Project], error) {
		return sc.Client().GetProjects(ctx, todoist.PageArgs{Cursor: cursor})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return jsonContents(request.Params.URI, map[string]any{
		"projects": mapping.MapProjects(projects),
	})
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}
	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
