package common

import (
	"errors"
	"fmt"

	"github.com/teemow/todoist-mcp/internal/todoist"
)

// FilterError translates a rejected filter query into an actionable
// message. Other errors are returned unchanged.
func FilterError(err error, query string) error {
	var apiErr *todoist.APIError
	if !errors.As(err, &apiErr) || apiErr.Tag != todoist.TagInvalidSearchQuery {
		return err
	}
	return fmt.Errorf("Invalid filter query %q: %s. Check the filter syntax, "+
		"for example \"today & @work\" or \"#Project & p1\"", query, apiErr.Message)
}

// ErrorMessage renders err as the text of an MCP error result.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
