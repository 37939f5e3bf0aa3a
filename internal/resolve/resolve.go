package resolve

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/teemow/todoist-mcp/internal/logging"
	"github.com/teemow/todoist-mcp/internal/pagination"
	"github.com/teemow/todoist-mcp/internal/todoist"
)

// InboxAlias may be passed wherever a project ID is expected.
const InboxAlias = "inbox"

// Client is the subset of the Todoist client used for resolution.
type Client interface {
	GetUser(ctx context.Context) (*todoist.User, error)
	GetProjects(ctx context.Context, args todoist.PageArgs) (todoist.Page[todoist.Project], error)
	GetProjectCollaborators(ctx context.Context, projectID string, args todoist.PageArgs) (todoist.Page[todoist.Collaborator], error)
}

// Resolver turns human references into Todoist IDs.
type Resolver struct {
	client Client
	logger logging.Logger
}

// New returns a Resolver. A nil logger logs through slog.Default.
func New(client Client, logger logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Resolver{client: client, logger: logger}
}

// IsInbox reports whether id is the inbox alias.
func IsInbox(id string) bool {
	return strings.EqualFold(strings.TrimSpace(id), InboxAlias)
}

// ResolveProjectID expands the inbox alias to the user's inbox project ID.
// Any other value is returned unchanged.
func (r *Resolver) ResolveProjectID(ctx context.Context, id string) (string, error) {
	if !IsInbox(id) {
		return id, nil
	}
	user, err := r.client.GetUser(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to resolve inbox project: %w", err)
	}
	if user.InboxProjectID == "" {
		return "", fmt.Errorf("the account has no inbox project")
	}
	return user.InboxProjectID, nil
}

// ResolveUser finds the user ref refers to: "me", a user ID, an email, a
// full name or a unique partial name. Candidates are the authenticated user
// plus the collaborators of projectID, or of every shared project when
// projectID is empty. Zero or ambiguous matches are errors.
func (r *Resolver) ResolveUser(ctx context.Context, ref, projectID string) (todoist.Collaborator, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return todoist.Collaborator{}, fmt.Errorf("a user reference is required")
	}

	me, err := r.client.GetUser(ctx)
	if err != nil {
		return todoist.Collaborator{}, fmt.Errorf("failed to load current user: %w", err)
	}
	self := todoist.Collaborator{ID: me.ID, Name: me.FullName, Email: me.Email}
	if strings.EqualFold(ref, "me") {
		return self, nil
	}

	candidates, err := r.collaborators(ctx, projectID)
	if err != nil {
		return todoist.Collaborator{}, err
	}
	candidates = dedupe(append([]todoist.Collaborator{self}, candidates...))

	match, err := match(ref, candidates)
	if err != nil {
		return todoist.Collaborator{}, err
	}
	r.logger.Debug("resolved user reference",
		logging.KeyUserHash, logging.AnonymizeEmail(match.Email),
		logging.KeyProject, projectID,
	)
	return match, nil
}

func (r *Resolver) collaborators(ctx context.Context, projectID string) ([]todoist.Collaborator, error) {
	if projectID != "" {
		pid, err := r.ResolveProjectID(ctx, projectID)
		if err != nil {
			return nil, err
		}
		return r.projectCollaborators(ctx, pid)
	}

	projects, err := pagination.DrainAll(ctx, func(ctx context.Context, cursor string) (todoist.Page[todoist.Project], error) {
		return r.client.GetProjects(ctx, todoist.PageArgs{Cursor: cursor})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	var all []todoist.Collaborator
	for _, p := range projects {
		if !p.Common().IsShared {
			continue
		}
		cs, err := r.projectCollaborators(ctx, p.Common().ID)
		if err != nil {
			return nil, err
		}
		all = append(all, cs...)
	}
	return all, nil
}

func (r *Resolver) projectCollaborators(ctx context.Context, projectID string) ([]todoist.Collaborator, error) {
	cs, err := pagination.DrainAll(ctx, func(ctx context.Context, cursor string) (todoist.Page[todoist.Collaborator], error) {
		return r.client.GetProjectCollaborators(ctx, projectID, todoist.PageArgs{Cursor: cursor})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list collaborators of project %s: %w", projectID, err)
	}
	return cs, nil
}

func dedupe(cs []todoist.Collaborator) []todoist.Collaborator {
	seen := make(map[string]struct{}, len(cs))
	out := cs[:0]
	for _, c := range cs {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}

// match applies the precedence ID, email, full name, then partial name or
// email. Each stage must produce exactly one candidate to win.
func match(ref string, candidates []todoist.Collaborator) (todoist.Collaborator, error) {
	lower := strings.ToLower(ref)

	stages := []func(todoist.Collaborator) bool{
		func(c todoist.Collaborator) bool { return c.ID == ref },
		func(c todoist.Collaborator) bool { return strings.EqualFold(c.Email, ref) },
		func(c todoist.Collaborator) bool { return strings.EqualFold(c.Name, ref) },
		func(c todoist.Collaborator) bool {
			return strings.Contains(strings.ToLower(c.Name), lower) ||
				strings.Contains(strings.ToLower(c.Email), lower)
		},
	}

	for _, pred := range stages {
		var found []todoist.Collaborator
		for _, c := range candidates {
			if pred(c) {
				found = append(found, c)
			}
		}
		switch len(found) {
		case 0:
			continue
		case 1:
			return found[0], nil
		default:
			return todoist.Collaborator{}, ambiguous(ref, found)
		}
	}

	return todoist.Collaborator{}, fmt.Errorf("Could not find user %q. Use find-project-collaborators to list the users you can assign to", ref)
}

func ambiguous(ref string, found []todoist.Collaborator) error {
	names := make([]string, 0, len(found))
	for _, c := range found {
		names = append(names, fmt.Sprintf("%s <%s> (id %s)", c.Name, c.Email, c.ID))
	}
	sort.Strings(names)
	return fmt.Errorf("user reference %q is ambiguous, it matches: %s. Use an email or ID instead", ref, strings.Join(names, "; "))
}
