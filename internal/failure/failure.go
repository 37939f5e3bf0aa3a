// Package failure describes why one item of a batch operation failed.
//
// It sits below both the batch runner and the summary formatter, so either
// can carry failure records without importing the other.
package failure

import (
	"errors"
	"strconv"

	"github.com/teemow/todoist-mcp/internal/todoist"
)

// Report records one failed item.
type Report struct {
	Item  string `json:"item"`
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// New builds a failure record. API errors contribute their error code, or
// their HTTP status when no code is set.
func New(item string, err error) Report {
	r := Report{Item: item, Error: err.Error()}
	var apiErr *todoist.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			r.Error = apiErr.Message
		}
		switch {
		case apiErr.Code != 0:
			r.Code = strconv.Itoa(apiErr.Code)
		case apiErr.StatusCode != 0:
			r.Code = strconv.Itoa(apiErr.StatusCode)
		}
	}
	return r
}
