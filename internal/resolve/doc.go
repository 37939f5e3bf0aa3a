// Package resolve turns agent-supplied references into Todoist IDs and
// checks cross-field preconditions before any remote call: the inbox
// alias, responsible-user references, move destinations, comment targets
// and composite "type:id" references.
package resolve
