package filter

import (
	"errors"
	"strings"
)

// ErrEmptyQuery is returned by Build when no clause survived composition.
var ErrEmptyQuery = errors.New("filter: composed query is empty")

// Operator joins label clauses.
type Operator string

const (
	OperatorAnd Operator = "and"
	OperatorOr  Operator = "or"
)

// ResponsibleFiltering selects which tasks to keep based on their assignee.
type ResponsibleFiltering string

const (
	// ResponsibleAll applies no assignee restriction.
	ResponsibleAll ResponsibleFiltering = "all"
	// ResponsibleAssigned keeps tasks assigned to someone other than the caller.
	ResponsibleAssigned ResponsibleFiltering = "assigned"
	// ResponsibleUnassignedOrMe keeps unassigned tasks and tasks assigned to the caller.
	ResponsibleUnassignedOrMe ResponsibleFiltering = "unassignedOrMe"
)

// ResponsibleModes lists the accepted ResponsibleFiltering values in schema order.
var ResponsibleModes = []string{
	string(ResponsibleAssigned),
	string(ResponsibleUnassignedOrMe),
	string(ResponsibleAll),
}

// AppendToQuery joins base and clause with "&". A blank side leaves the
// other one untouched, so AppendToQuery(q, "") == q for every q.
func AppendToQuery(base, clause string) string {
	b, c := strings.TrimSpace(base), strings.TrimSpace(clause)
	switch {
	case c == "":
		return base
	case b == "":
		return clause
	default:
		return b + " & " + c
	}
}

// Build folds clauses left to right with AppendToQuery and trims the result.
func Build(clauses ...string) (string, error) {
	var query string
	for _, c := range clauses {
		query = AppendToQuery(query, c)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}
	return query, nil
}

// LabelsClause renders labels as a parenthesised group joined by op.
// Missing "@" prefixes are added and blank names skipped. An unknown or
// empty operator means "or".
func LabelsClause(labels []string, op Operator) string {
	tokens := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" || l == "@" {
			continue
		}
		if !strings.HasPrefix(l, "@") {
			l = "@" + l
		}
		tokens = append(tokens, l)
	}
	if len(tokens) == 0 {
		return ""
	}

	sep := " | "
	if op == OperatorAnd {
		sep = " & "
	}
	return "(" + strings.Join(tokens, sep) + ")"
}

// ResponsibleClause returns the assignee clause. A non-empty email wins
// over mode.
func ResponsibleClause(mode ResponsibleFiltering, email string) string {
	if email = strings.TrimSpace(email); email != "" {
		return "assigned to: " + email
	}
	switch mode {
	case ResponsibleAssigned:
		return "assigned to: others"
	case ResponsibleUnassignedOrMe:
		return "!assigned to: others"
	default:
		return ""
	}
}

// SearchClause matches task content containing text.
func SearchClause(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	return "search: " + text
}

// ProjectClause scopes a query to a project by name. With subprojects the
// hierarchy operator "##" is used.
func ProjectClause(name string, subprojects bool) string {
	name = strings.TrimSpace(strings.TrimLeft(name, "#"))
	if name == "" {
		return ""
	}
	if subprojects {
		return "##" + name
	}
	return "#" + name
}

// Group wraps a query in parentheses when it contains a top-level "|",
// so appending "& clause" keeps the caller's intended precedence.
func Group(query string) string {
	query = strings.TrimSpace(query)
	if query == "" || !hasTopLevelOr(query) {
		return query
	}
	return "(" + query + ")"
}

func hasTopLevelOr(q string) bool {
	depth := 0
	for _, r := range q {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case '|':
			if depth == 0 {
				return true
			}
		}
	}
	return false
}
