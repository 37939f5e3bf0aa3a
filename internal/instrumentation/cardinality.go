package instrumentation

import "strings"

// Tool arguments and API paths carry IDs. Never use them as metric labels
// or span names directly.

// NormalizeAPIPath replaces ID segments of a Todoist API path with
// placeholders, so "/tasks/6X7rM8997g3RQmvh/close" becomes "/tasks/{id}/close".
// Only the fixed resource names and verbs are kept.
func NormalizeAPIPath(path string) string {
	if path == "" {
		return "/"
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segments {
		if _, ok := knownPathSegments[seg]; !ok {
			segments[i] = "{id}"
		}
	}
	return "/" + strings.Join(segments, "/")
}

var knownPathSegments = map[string]struct{}{
	"tasks":              {},
	"projects":           {},
	"sections":           {},
	"comments":           {},
	"activities":         {},
	"user":               {},
	"filter":             {},
	"completed":          {},
	"by_completion_date": {},
	"by_due_date":        {},
	"close":              {},
	"move":               {},
	"collaborators":      {},
}
