// Package mapping converts Todoist API entities into the stable shapes
// returned by MCP tools.
//
// The conversions invert the API priority scale (API 4 is p1), format
// durations as "2h30m", serialise recurrence as false-or-string and prune
// absent optional fields. Project variants are already decoded by the
// todoist package; MapProject only switches on the concrete type.
package mapping
