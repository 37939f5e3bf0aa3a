package format

import "strings"

// FilterQueryHints lists likely causes of an empty result for a raw filter.
func FilterQueryHints(query string) []string {
	var hints []string
	switch {
	case strings.Contains(query, "##"):
		hints = append(hints, "Ensure the parent project exists and has sub-projects")
	case strings.Contains(query, "#"):
		hints = append(hints, "Verify the project name is correct")
	}
	if strings.Contains(query, "@") {
		hints = append(hints, "Check that the labels exist and are spelled correctly")
	}
	return append(hints, "Verify filter syntax is correct")
}

// DateFilterHints lists likely causes of an empty date-window search.
func DateFilterHints(overdueOnly bool) []string {
	if overdueOnly {
		return []string{"There are no overdue tasks"}
	}
	return []string{
		"No tasks are due in this window",
		"Try a wider window with daysCount or include overdue tasks",
	}
}

// SearchHints lists likely causes of an empty free-text search.
func SearchHints(text string) []string {
	if text == "" {
		return []string{"Loosen the filters"}
	}
	return []string{
		"Try a shorter or different search term",
		"Completed tasks are not searched; use find-completed-tasks",
	}
}
