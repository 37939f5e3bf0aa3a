package todoist

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error tags the tool layer reacts to.
const (
	TagInvalidSearchQuery = "INVALID_SEARCH_QUERY"
	TagNotFound           = "NOT_FOUND"
)

// APIError is the error envelope returned by the REST API.
type APIError struct {
	StatusCode int            `json:"http_code"`
	Message    string         `json:"error"`
	Code       int            `json:"error_code"`
	Tag        string         `json:"error_tag"`
	Extra      map[string]any `json:"error_extra,omitempty"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	var details []string
	if e.Code != 0 {
		details = append(details, fmt.Sprintf("code: %d", e.Code))
	}
	if e.Tag != "" {
		details = append(details, "tag: "+e.Tag)
	}
	if len(details) == 0 {
		return fmt.Sprintf("todoist: %s (status %d)", msg, e.StatusCode)
	}
	return fmt.Sprintf("todoist: %s (%s)", msg, strings.Join(details, ", "))
}

// IsTag reports whether err is an APIError carrying the given tag.
func IsTag(err error, tag string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Tag == tag
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusNotFound || apiErr.Tag == TagNotFound
}

// parseAPIError builds an APIError from a non-2xx response body. Bodies that
// are not the JSON envelope are kept verbatim as the message.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	apiErr.StatusCode = status
	return apiErr
}
