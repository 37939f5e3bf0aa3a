package todoist_tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/todoist-mcp/internal/failure"
	"github.com/teemow/todoist-mcp/internal/format"
	"github.com/teemow/todoist-mcp/internal/server"
	"github.com/teemow/todoist-mcp/internal/todoist"
	"github.com/teemow/todoist-mcp/internal/tools/batch"
	"github.com/teemow/todoist-mcp/internal/tools/common"
)

const (
	opAssign   = "assign"
	opUnassign = "unassign"
	opReassign = "reassign"
)

func registerAssignmentTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) {
	register(s, sc, readOnly, manageAssignmentsDef, manageAssignments)
}

type manageAssignmentsArgs struct {
	Operation        string           `json:"operation"`
	TaskIDs          batch.StringList `json:"taskIds"`
	ResponsibleUser  string           `json:"responsibleUser"`
	FromAssigneeUser string           `json:"fromAssigneeUser"`
	DryRun           bool             `json:"dryRun"`
}

type assignmentResult struct {
	TaskID           string `json:"taskId"`
	Content          string `json:"content"`
	ProjectID        string `json:"projectId"`
	PreviousAssignee string `json:"previousAssignee,omitempty"`
	NewAssignee      string `json:"newAssignee,omitempty"`
	NewAssigneeName  string `json:"newAssigneeName,omitempty"`
}

type manageAssignmentsOutput struct {
	Operation    string             `json:"operation" jsonschema:"enum=assign,enum=unassign,enum=reassign"`
	DryRun       bool               `json:"dryRun"`
	Results      []assignmentResult `json:"results"`
	Failures     []failure.Report   `json:"failures"`
	SuccessCount int                `json:"successCount"`
	FailureCount int                `json:"failureCount"`
}

var manageAssignmentsDef = common.NewDefinition[manageAssignmentsOutput](
	"manage-assignments",
	"Manage assignments",
	"Assign, unassign or reassign tasks in shared projects. Every task is attempted; failures are reported per task. "+
		"Use dryRun to preview the changes.",
	common.Mutating,
	mcp.WithString("operation",
		mcp.Required(),
		mcp.Description("assign sets the assignee, unassign removes it, reassign moves tasks that already have an assignee."),
		mcp.Enum(opAssign, opUnassign, opReassign),
	),
	mcp.WithArray("taskIds",
		mcp.Required(),
		mcp.Description("IDs of the tasks to change."),
		mcp.MinItems(1),
		mcp.Items(map[string]any{"type": "string"}),
	),
	mcp.WithString("responsibleUser",
		mcp.Description("New assignee for assign and reassign: \"me\", a user ID, an email or a name."),
	),
	mcp.WithString("fromAssigneeUser",
		mcp.Description("For reassign: only change tasks currently assigned to this user."),
	),
	mcp.WithBoolean("dryRun", mcp.Description("Report what would change without changing anything.")),
)

func manageAssignments(ctx context.Context, sc *server.ServerContext, args manageAssignmentsArgs) (format.Output, error) {
	switch args.Operation {
	case opAssign, opReassign:
		if args.ResponsibleUser == "" {
			return format.Output{}, fmt.Errorf("responsibleUser is required for %s", args.Operation)
		}
	case opUnassign:
		if args.ResponsibleUser != "" {
			return format.Output{}, errors.New("responsibleUser cannot be used with unassign")
		}
	default:
		return format.Output{}, fmt.Errorf("invalid operation %q, must be one of: assign, unassign, reassign", args.Operation)
	}
	if args.FromAssigneeUser != "" && args.Operation != opReassign {
		return format.Output{}, errors.New("fromAssigneeUser can only be used with reassign")
	}
	if err := args.TaskIDs.Validate("taskIds"); err != nil {
		return format.Output{}, err
	}

	r := newResolver(sc)
	ids := []string(args.TaskIDs)
	outcome, _ := batch.Run(ctx, batch.CollectPartial, ids, func(id string) string { return id },
		func(ctx context.Context, id string) (assignmentResult, error) {
			task, err := sc.Client().GetTask(ctx, id)
			if err != nil {
				return assignmentResult{}, err
			}
			res := assignmentResult{
				TaskID:           task.ID,
				Content:          task.Content,
				ProjectID:        task.ProjectID,
				PreviousAssignee: task.ResponsibleUID,
			}

			update := todoist.UpdateTaskArgs{}
			switch args.Operation {
			case opUnassign:
				if task.ResponsibleUID == "" {
					return res, nil
				}
				update.ClearAssignee = true
			default:
				if args.Operation == opReassign {
					if task.ResponsibleUID == "" {
						return assignmentResult{}, errors.New("task has no assignee to reassign from")
					}
					if args.FromAssigneeUser != "" {
						from, err := r.ResolveUser(ctx, args.FromAssigneeUser, task.ProjectID)
						if err != nil {
							return assignmentResult{}, err
						}
						if task.ResponsibleUID != from.ID {
							return assignmentResult{}, fmt.Errorf("task is not assigned to %s", from.Name)
						}
					}
				}
				to, err := r.ResolveUser(ctx, args.ResponsibleUser, task.ProjectID)
				if err != nil {
					return assignmentResult{}, err
				}
				res.NewAssignee, res.NewAssigneeName = to.ID, to.Name
				if task.ResponsibleUID == to.ID {
					return res, nil
				}
				update.AssigneeID = &to.ID
			}

			if args.DryRun {
				return res, nil
			}
			if _, err := sc.Client().UpdateTask(ctx, id, update); err != nil {
				return assignmentResult{}, err
			}
			return res, nil
		}, batchOptions(sc, manageAssignmentsDef.Name))
	logTaskFailures(sc, manageAssignmentsDef.Name, args.Operation, outcome.Failures)

	out := manageAssignmentsOutput{
		Operation:    args.Operation,
		DryRun:       args.DryRun,
		Results:      orEmpty(outcome.Succeeded),
		Failures:     orEmpty(outcome.Failures),
		SuccessCount: len(outcome.Succeeded),
		FailureCount: len(outcome.Failures),
	}

	items := make([]string, 0, len(out.Results))
	for _, res := range out.Results {
		line := res.Content + " (id=" + res.TaskID + ")"
		switch {
		case res.NewAssigneeName != "":
			line += " → " + res.NewAssigneeName
		case args.Operation == opUnassign:
			line += " → unassigned"
		}
		items = append(items, line)
	}
	action := map[string]string{opAssign: "Assigned tasks", opUnassign: "Unassigned tasks", opReassign: "Reassigned tasks"}[args.Operation]
	if args.DryRun {
		action += " (dry run, nothing changed)"
	}
	var steps []string
	if args.DryRun && out.SuccessCount > 0 {
		steps = []string{"Call manage-assignments again without dryRun to apply the changes."}
	}
	text, err := sc.Formatter().SummarizeBatch(format.BatchSummary{
		Action:       action,
		Success:      out.SuccessCount,
		Total:        len(ids),
		SuccessItems: items,
		Failures:     out.Failures,
		NextSteps:    steps,
	})
	if err != nil {
		return format.Output{}, err
	}
	return format.Output{Text: text, Structured: out}, nil
}
