// Package filter composes Todoist filter queries from structured tool
// arguments.
//
// Clauses are plain strings in Todoist's filter grammar ("@label",
// "#Project", "due before: 2025-08-01", "assigned to: others", ...) joined
// conjunctively with AppendToQuery or Build. Date windows are evaluated
// against an explicit *time.Location and a caller-supplied "now", never the
// process locale.
//
// Only the vocabulary Todoist understands is produced; raw caller filters
// are passed through untouched apart from grouping.
package filter
