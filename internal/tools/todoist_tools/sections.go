package todoist_tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/todoist-mcp/internal/format"
	"github.com/teemow/todoist-mcp/internal/mapping"
	"github.com/teemow/todoist-mcp/internal/pagination"
	"github.com/teemow/todoist-mcp/internal/server"
	"github.com/teemow/todoist-mcp/internal/todoist"
	"github.com/teemow/todoist-mcp/internal/tools/batch"
	"github.com/teemow/todoist-mcp/internal/tools/common"
)

func registerSectionTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) {
	register(s, sc, readOnly, findSectionsDef, findSections)
	register(s, sc, readOnly, addSectionsDef, addSections)
	register(s, sc, readOnly, updateSectionsDef, updateSections)
}

type sectionListOutput struct {
	Sections   []mapping.Section `json:"sections"`
	TotalCount int               `json:"totalCount"`
}

// find-sections

type findSectionsArgs struct {
	ProjectID string `json:"projectId"`
	Search    string `json:"search"`
}

var findSectionsDef = common.NewDefinition[sectionListOutput](
	"find-sections",
	"Find sections",
	"List every section of a project, optionally narrowed by a case-insensitive name search.",
	common.ReadOnly,
	mcp.WithString("projectId",
		mcp.Required(),
		mcp.Description("Project whose sections to list. Accepts \"inbox\"."),
	),
	mcp.WithString("search", mcp.Description("Only sections whose name contains this text.")),
)

func findSections(ctx context.Context, sc *server.ServerContext, args findSectionsArgs) (format.Output, error) {
	if strings.TrimSpace(args.ProjectID) == "" {
		return format.Output{}, errors.New("projectId is required")
	}
	projectID, err := newResolver(sc).ResolveProjectID(ctx, args.ProjectID)
	if err != nil {
		return format.Output{}, err
	}

	sections, err := drainSections(ctx, sc, projectID)
	if err != nil {
		return format.Output{}, err
	}

	search := strings.ToLower(strings.TrimSpace(args.Search))
	hints := []string{"projectId: " + args.ProjectID}
	if search != "" {
		var matched []todoist.Section
		for _, s := range sections {
			if strings.Contains(strings.ToLower(s.Name), search) {
				matched = append(matched, s)
			}
		}
		sections = matched
		hints = append(hints, "search: "+args.Search)
	}

	out := sectionListOutput{Sections: mapping.MapSections(sections), TotalCount: len(sections)}
	zero := []string{"The project has no sections"}
	if search != "" {
		zero = []string{"No section name contains the search text"}
	}
	var steps []string
	if out.TotalCount > 0 {
		steps = []string{"Use find-tasks with a sectionId to list a section's tasks."}
	}
	text := sc.Formatter().SummarizeList(format.ListSummary{
		Subject:         "Sections",
		Count:           out.TotalCount,
		FilterHints:     hints,
		PreviewLines:    format.Lines(out.Sections, format.PreviewSection),
		ZeroReasonHints: zero,
		NextSteps:       steps,
	})
	return format.Output{Text: text, Structured: out}, nil
}

func drainSections(ctx context.Context, sc *server.ServerContext, projectID string) ([]todoist.Section, error) {
	sections, err := pagination.DrainAll(ctx, func(ctx context.Context, cursor string) (todoist.Page[todoist.Section], error) {
		return sc.Client().GetSections(ctx, projectID, todoist.PageArgs{Cursor: cursor, Limit: maxLimit})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	return sections, nil
}

func sectionBatchResult(sc *server.ServerContext, action string, sections []*todoist.Section) (format.Output, error) {
	mapped := make([]mapping.Section, 0, len(sections))
	for _, s := range sections {
		mapped = append(mapped, mapping.MapSection(*s))
	}
	text, err := sc.Formatter().SummarizeBatch(format.BatchSummary{
		Action:       action,
		Success:      len(mapped),
		Total:        len(mapped),
		SuccessItems: format.Lines(mapped, format.PreviewSection),
		NextSteps:    []string{"Use add-tasks with a sectionId to add tasks to a section."},
	})
	if err != nil {
		return format.Output{}, err
	}
	return format.Output{Text: text, Structured: sectionListOutput{Sections: mapped, TotalCount: len(mapped)}}, nil
}

// add-sections

type newSection struct {
	Name      string `json:"name"`
	ProjectID string `json:"projectId"`
	Order     int    `json:"order"`
}

type addSectionsArgs struct {
	Sections []newSection `json:"sections"`
}

var addSectionsDef = common.NewDefinition[sectionListOutput](
	"add-sections",
	"Add sections",
	"Create one or more sections. Either every section is created or the call fails.",
	common.Additive,
	objectArray("sections", "Sections to create.", []string{"name", "projectId"}, map[string]any{
		"name":      prop("string", "Section name."),
		"projectId": prop("string", "Project to add the section to. Accepts \"inbox\"."),
		"order":     prop("integer", "Position within the project."),
	}),
)

func addSections(ctx context.Context, sc *server.ServerContext, args addSectionsArgs) (format.Output, error) {
	if len(args.Sections) == 0 {
		return format.Output{}, errors.New("sections must contain at least one section")
	}
	items := make([]todoist.AddSectionArgs, 0, len(args.Sections))
	for i, s := range args.Sections {
		name := strings.TrimSpace(s.Name)
		switch {
		case name == "":
			return format.Output{}, fmt.Errorf("sections[%d]: name is required", i)
		case strings.TrimSpace(s.ProjectID) == "":
			return format.Output{}, fmt.Errorf("sections[%d]: projectId is required", i)
		}
		items = append(items, todoist.AddSectionArgs{Name: name, ProjectID: s.ProjectID, Order: s.Order})
	}

	r := newResolver(sc)
	outcome, err := batch.Run(ctx, batch.FailFast, items,
		func(a todoist.AddSectionArgs) string { return a.Name },
		func(ctx context.Context, a todoist.AddSectionArgs) (*todoist.Section, error) {
			projectID, err := r.ResolveProjectID(ctx, a.ProjectID)
			if err != nil {
				return nil, err
			}
			a.ProjectID = projectID
			s, err := sc.Client().AddSection(ctx, a)
			if err != nil {
				return nil, fmt.Errorf("failed to add section: %w", err)
			}
			return s, nil
		}, batchOptions(sc, addSectionsDef.Name))
	if err != nil {
		return format.Output{}, err
	}
	return sectionBatchResult(sc, "Added sections", outcome.Succeeded)
}

// update-sections

type sectionUpdate struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type updateSectionsArgs struct {
	Sections []sectionUpdate `json:"sections"`
}

var updateSectionsDef = common.NewDefinition[sectionListOutput](
	"update-sections",
	"Update sections",
	"Rename one or more sections. Either every section is renamed or the call fails.",
	common.Mutating,
	objectArray("sections", "Section updates.", []string{"id", "name"}, map[string]any{
		"id":   prop("string", "ID of the section to rename."),
		"name": prop("string", "New section name."),
	}),
)

func updateSections(ctx context.Context, sc *server.ServerContext, args updateSectionsArgs) (format.Output, error) {
	if len(args.Sections) == 0 {
		return format.Output{}, errors.New("sections must contain at least one section")
	}
	items := make([]idUpdate[todoist.UpdateSectionArgs], 0, len(args.Sections))
	for i, s := range args.Sections {
		name := strings.TrimSpace(s.Name)
		switch {
		case strings.TrimSpace(s.ID) == "":
			return format.Output{}, fmt.Errorf("sections[%d]: id is required", i)
		case name == "":
			return format.Output{}, fmt.Errorf("sections[%d]: name is required", i)
		}
		items = append(items, idUpdate[todoist.UpdateSectionArgs]{id: s.ID, args: todoist.UpdateSectionArgs{Name: name}})
	}

	outcome, err := batch.Run(ctx, batch.FailFast, items,
		func(u idUpdate[todoist.UpdateSectionArgs]) string { return u.id },
		func(ctx context.Context, u idUpdate[todoist.UpdateSectionArgs]) (*todoist.Section, error) {
			s, err := sc.Client().UpdateSection(ctx, u.id, u.args)
			if err != nil {
				return nil, fmt.Errorf("failed to update section: %w", err)
			}
			return s, nil
		}, batchOptions(sc, updateSectionsDef.Name))
	if err != nil {
		return format.Output{}, err
	}
	return sectionBatchResult(sc, "Updated sections", outcome.Succeeded)
}
