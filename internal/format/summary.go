package format

import (
	"fmt"
	"strings"

	"github.com/teemow/todoist-mcp/internal/failure"
	"github.com/teemow/todoist-mcp/internal/mapping"
)

// ListSummary describes the result of a list or search tool.
type ListSummary struct {
	// Subject names what was listed, e.g. "Tasks due today".
	Subject string
	// Count is the number of results returned.
	Count int
	// Limit is the page size requested, 0 when not applicable.
	Limit int
	// NextCursor is set when more results are available.
	NextCursor string
	// FilterHints describe the filters that were applied.
	FilterHints []string
	// PreviewLines are one-line renderings of the results, in result order.
	PreviewLines []string
	// ZeroReasonHints are only shown when Count is 0.
	ZeroReasonHints []string
	// NextSteps suggest follow-up tool calls.
	NextSteps []string
}

// SummarizeList renders a list summary. The output is deterministic for a
// given input.
func (f *Formatter) SummarizeList(s ListSummary) string {
	var b strings.Builder

	header := fmt.Sprintf("%s: %d", s.Subject, s.Count)
	if s.Limit > 0 {
		header += fmt.Sprintf(" (limit %d)", s.Limit)
	}
	if s.NextCursor != "" {
		header += ", more available"
	}
	b.WriteString(header + ".")

	if len(s.FilterHints) > 0 {
		b.WriteString("\nFilter: " + strings.Join(s.FilterHints, "; ") + ".")
	}

	if len(s.PreviewLines) > 0 {
		b.WriteString("\nPreview:")
		shown := min(len(s.PreviewLines), f.cfg.PreviewLimit)
		for _, line := range s.PreviewLines[:shown] {
			b.WriteString("\n" + previewIndent + line)
		}
		if more := max(s.Count, len(s.PreviewLines)) - shown; more > 0 {
			b.WriteString(fmt.Sprintf("\n%s…and %d more", previewIndent, more))
		}
	}

	if s.Count == 0 && len(s.ZeroReasonHints) > 0 {
		b.WriteString("\nNo results. Possible causes:")
		for _, h := range s.ZeroReasonHints {
			b.WriteString("\n- " + h)
		}
	}

	steps := s.NextSteps
	if s.NextCursor != "" {
		steps = append([]string{fmt.Sprintf("Pass cursor %q to fetch the next page.", s.NextCursor)}, steps...)
	}
	writeNextSteps(&b, steps)

	return b.String()
}

// BatchSummary describes the outcome of a batch mutation.
type BatchSummary struct {
	// Action names the operation, e.g. "Completed tasks".
	Action string
	// Success and Total are the succeeded and requested item counts.
	Success int
	Total   int
	// SuccessItems are one-line renderings of the succeeded items.
	SuccessItems []string
	Failures     []failure.Report
	NextSteps    []string
	// RaiseOnFailure makes SummarizeBatch return an error when any item
	// failed. The summary text is returned either way.
	RaiseOnFailure bool
}

// SummarizeBatch renders a batch summary. Partial failure is reported in
// the text and only returned as an error when RaiseOnFailure is set.
func (f *Formatter) SummarizeBatch(s BatchSummary) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %d/%d successful.", s.Action, s.Success, s.Total)

	if len(s.SuccessItems) > 0 {
		b.WriteString("\nSucceeded:")
		for _, item := range s.SuccessItems {
			b.WriteString("\n" + previewIndent + item)
		}
	}

	if len(s.Failures) > 0 {
		fmt.Fprintf(&b, "\nFailures (%d):", len(s.Failures))
		for _, fail := range s.Failures {
			line := fail.Item + ": " + fail.Error
			if fail.Code != "" {
				line += " (code: " + fail.Code + ")"
			}
			b.WriteString("\n" + previewIndent + line)
		}
	}

	writeNextSteps(&b, s.NextSteps)

	text := b.String()
	if s.RaiseOnFailure && len(s.Failures) > 0 {
		return text, fmt.Errorf("%s: %d of %d items failed", s.Action, len(s.Failures), s.Total)
	}
	return text, nil
}

// detailedTaskThreshold is the largest result set listed task by task.
const detailedTaskThreshold = 5

// TaskOperationOptions tunes SummarizeTaskOperation.
type TaskOperationOptions struct {
	// Context is appended to the header, e.g. "to project Work".
	Context   string
	NextSteps []string
}

// SummarizeTaskOperation summarizes a mutation over tasks. Up to five tasks
// are listed individually, larger sets are reported as a count.
func (f *Formatter) SummarizeTaskOperation(action string, tasks []mapping.Task, opts TaskOperationOptions) string {
	var b strings.Builder

	noun := "tasks"
	if len(tasks) == 1 {
		noun = "task"
	}
	header := fmt.Sprintf("%s %d %s", action, len(tasks), noun)
	if opts.Context != "" {
		header += " " + opts.Context
	}

	if len(tasks) > 0 && len(tasks) <= detailedTaskThreshold {
		b.WriteString(header + ":")
		for _, t := range tasks {
			b.WriteString("\n" + previewIndent + PreviewTask(t))
		}
	} else {
		b.WriteString(header + ".")
	}

	writeNextSteps(&b, opts.NextSteps)
	return b.String()
}

func writeNextSteps(b *strings.Builder, steps []string) {
	if len(steps) == 0 {
		return
	}
	b.WriteString("\nNext steps:")
	for _, s := range steps {
		b.WriteString("\n- " + s)
	}
}
