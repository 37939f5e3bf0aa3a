package todoist_tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/todoist-mcp/internal/filter"
	"github.com/teemow/todoist-mcp/internal/format"
	"github.com/teemow/todoist-mcp/internal/mapping"
	"github.com/teemow/todoist-mcp/internal/pagination"
	"github.com/teemow/todoist-mcp/internal/server"
	"github.com/teemow/todoist-mcp/internal/todoist"
	"github.com/teemow/todoist-mcp/internal/tools/common"
)

func registerUserTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) {
	register(s, sc, readOnly, userInfoDef, userInfo)
	register(s, sc, readOnly, findCollaboratorsDef, findCollaborators)
}

// user-info

type userInfoOutput struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	FullName       string `json:"fullName"`
	InboxProjectID string `json:"inboxProjectId"`
	Timezone       string `json:"timezone"`
	LocalTime      string `json:"localTime"`
	StartDay       int    `json:"startDay"`
	StartDayName   string `json:"startDayName"`
	WeekStart      string `json:"weekStart"`
	WeekEnd        string `json:"weekEnd"`
	Lang           string `json:"lang,omitempty"`
	IsPremium      bool   `json:"isPremium"`
	DailyGoal      int    `json:"dailyGoal"`
	WeeklyGoal     int    `json:"weeklyGoal"`
}

type userInfoArgs struct{}

var userInfoDef = common.NewDefinition[userInfoOutput](
	"user-info",
	"User info",
	"Show the authenticated user: name, email, timezone with current local time, "+
		"the current week according to the user's start day, and productivity goals.",
	common.ReadOnly,
)

func userInfo(ctx context.Context, sc *server.ServerContext, _ userInfoArgs) (format.Output, error) {
	user, err := sc.Client().GetUser(ctx)
	if err != nil {
		return format.Output{}, fmt.Errorf("failed to get user: %w", err)
	}

	loc := sc.Location()
	if tz := user.TZInfo.Timezone; tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		} else {
			sc.Logger().Debug("unknown user timezone, using server timezone", slog.String("timezone", tz))
		}
	}
	now := sc.Now().In(loc)
	weekStart, weekEnd := weekBounds(now, user.StartDay)

	out := userInfoOutput{
		ID:             user.ID,
		Email:          user.Email,
		FullName:       user.FullName,
		InboxProjectID: user.InboxProjectID,
		Timezone:       loc.String(),
		LocalTime:      now.Format(time.RFC3339),
		StartDay:       normalizeStartDay(user.StartDay),
		StartDayName:   isoWeekday(normalizeStartDay(user.StartDay)).String(),
		WeekStart:      weekStart.Format(filter.DateLayout),
		WeekEnd:        weekEnd.Format(filter.DateLayout),
		Lang:           user.Lang,
		IsPremium:      user.IsPremium,
		DailyGoal:      user.DailyGoal,
		WeeklyGoal:     user.WeeklyGoal,
	}

	var b strings.Builder
	fmt.Fprintf(&b, "User: %s <%s> (id %s).", out.FullName, out.Email, out.ID)
	fmt.Fprintf(&b, "\nTimezone: %s, local time %s.", out.Timezone, now.Format("2006-01-02 15:04 Mon"))
	fmt.Fprintf(&b, "\nWeek: %s to %s (starts %s).", out.WeekStart, out.WeekEnd, out.StartDayName)
	fmt.Fprintf(&b, "\nGoals: %d tasks daily, %d weekly.", out.DailyGoal, out.WeeklyGoal)
	plan := "free"
	if out.IsPremium {
		plan = "premium"
	}
	fmt.Fprintf(&b, "\nPlan: %s. Inbox project: %s.", plan, out.InboxProjectID)
	return format.Output{Text: b.String(), Structured: out}, nil
}

// normalizeStartDay maps the account's start day to 1 (Monday) through
// 7 (Sunday), defaulting to Monday.
func normalizeStartDay(d int) int {
	if d < 1 || d > 7 {
		return 1
	}
	return d
}

func isoWeekday(d int) time.Weekday {
	return time.Weekday(d % 7)
}

// weekBounds returns midnight of the first and last day of the week
// containing now.
func weekBounds(now time.Time, startDay int) (time.Time, time.Time) {
	start := isoWeekday(normalizeStartDay(startDay))
	offset := (int(now.Weekday()) - int(start) + 7) % 7
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	first := day.AddDate(0, 0, -offset)
	return first, first.AddDate(0, 0, 6)
}

// find-project-collaborators

type collaboratorsOutput struct {
	Collaborators []mapping.Collaborator `json:"collaborators"`
	TotalCount    int                    `json:"totalCount"`
	ProjectID     string                 `json:"projectId"`
	IsShared      bool                   `json:"isShared"`
}

type findCollaboratorsArgs struct {
	ProjectID  string `json:"projectId"`
	SearchTerm string `json:"searchTerm"`
}

var findCollaboratorsDef = common.NewDefinition[collaboratorsOutput](
	"find-project-collaborators",
	"Find project collaborators",
	"List the users a shared project's tasks can be assigned to, optionally narrowed by name or email.",
	common.ReadOnly,
	mcp.WithString("projectId", mcp.Required(), mcp.Description("The shared project.")),
	mcp.WithString("searchTerm", mcp.Description("Only users whose name or email contains this text.")),
)

func findCollaborators(ctx context.Context, sc *server.ServerContext, args findCollaboratorsArgs) (format.Output, error) {
	if strings.TrimSpace(args.ProjectID) == "" {
		return format.Output{}, errors.New("projectId is required")
	}
	projectID, err := newResolver(sc).ResolveProjectID(ctx, args.ProjectID)
	if err != nil {
		return format.Output{}, err
	}

	project, err := sc.Client().GetProject(ctx, projectID)
	if err != nil {
		return format.Output{}, fmt.Errorf("failed to get project: %w", err)
	}
	info := project.Common()
	out := collaboratorsOutput{Collaborators: []mapping.Collaborator{}, ProjectID: projectID, IsShared: info.IsShared}
	if !info.IsShared {
		return format.Output{
			Text:       fmt.Sprintf("Project %s is not shared, so it has no collaborators. Tasks in it can only be assigned to you.", info.Name),
			Structured: out,
		}, nil
	}

	all, err := pagination.DrainAll(ctx, func(ctx context.Context, cursor string) (todoist.Page[todoist.Collaborator], error) {
		return sc.Client().GetProjectCollaborators(ctx, projectID, todoist.PageArgs{Cursor: cursor, Limit: maxLimit})
	})
	if err != nil {
		return format.Output{}, fmt.Errorf("failed to list collaborators: %w", err)
	}

	term := strings.ToLower(strings.TrimSpace(args.SearchTerm))
	var matched []todoist.Collaborator
	for _, c := range all {
		if term == "" || strings.Contains(strings.ToLower(c.Name), term) || strings.Contains(strings.ToLower(c.Email), term) {
			matched = append(matched, c)
		}
	}
	out.Collaborators = mapping.MapCollaborators(matched)
	out.TotalCount = len(out.Collaborators)

	hints := []string{"project: " + info.Name}
	var zero []string
	if term != "" {
		hints = append(hints, "search: "+args.SearchTerm)
		zero = []string{"No collaborator name or email contains the search term"}
	}
	var steps []string
	if out.TotalCount > 0 {
		steps = []string{"Use manage-assignments or the responsibleUser field of add-tasks to assign tasks."}
	}
	text := sc.Formatter().SummarizeList(format.ListSummary{
		Subject:         "Collaborators",
		Count:           out.TotalCount,
		FilterHints:     hints,
		PreviewLines:    format.Lines(out.Collaborators, format.PreviewCollaborator),
		ZeroReasonHints: zero,
		NextSteps:       steps,
	})
	return format.Output{Text: text, Structured: out}, nil
}
