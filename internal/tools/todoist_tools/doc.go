// Package todoist_tools provides MCP tools for managing Todoist.
//
// Every tool is a typed adapter: its arguments are bound into a struct,
// validated before any remote call, translated into Todoist REST calls and
// returned as a deterministic text summary plus a structured payload that
// matches the tool's output schema.
//
// # Available Tools
//
// Tasks:
//   - find-tasks: Search open tasks by text, container, labels or assignee
//   - find-tasks-by-date: Tasks due in a window of days, with overdue handling
//   - find-completed-tasks: Completed tasks by completion or due date
//   - add-tasks: Create tasks (fail-fast)
//   - update-tasks: Update or move tasks (fail-fast)
//   - complete-tasks: Complete tasks (collects per-task failures)
//
// Projects, sections and comments:
//   - find-projects, add-projects, update-projects
//   - find-sections, add-sections, update-sections
//   - find-comments, add-comments, update-comments
//
// Account and collaboration:
//   - get-overview: Project hierarchy, or one project's sections and tasks
//   - find-activity: Activity log
//   - user-info: Profile, timezone and current week
//   - find-project-collaborators: Users a shared project can assign to
//   - manage-assignments: Assign, unassign or reassign tasks
//
// Generic:
//   - search, fetch: Composite-ID search over tasks and projects
//   - delete-object: Delete a project, section, task or comment
//
// # Project IDs
//
// Wherever a projectId is accepted, the alias "inbox" resolves to the
// user's inbox project.
//
// # Read-only mode
//
// When registered read-only, only tools that never change data are added.
package todoist_tools
