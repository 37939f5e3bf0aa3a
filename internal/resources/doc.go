// Package resources provides MCP resources for the authenticated Todoist
// account. Resources are read-only and are registered in every mode:
//   - todoist://user/profile: the user, timezone and inbox project
//   - todoist://projects: every project, drained across pages
package resources
