package filter

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-day format used in filter clauses and tool arguments.
const DateLayout = "2006-01-02"

// completionLayout is what the completed-tasks endpoints accept.
const completionLayout = "2006-01-02T15:04:05.000Z"

// Today is the anchor keyword accepted in place of a date.
const Today = "today"

// OverdueOption controls how overdue tasks combine with a date window.
type OverdueOption string

const (
	OverdueExclude OverdueOption = "exclude-overdue"
	OverdueInclude OverdueOption = "include-overdue"
	OverdueOnly    OverdueOption = "overdue-only"
)

// OverdueOptions lists the accepted OverdueOption values.
var OverdueOptions = []string{
	string(OverdueExclude),
	string(OverdueInclude),
	string(OverdueOnly),
}

// DateWindow is a run of whole calendar days starting at Start.
type DateWindow struct {
	// Start is "today", a YYYY-MM-DD date, or empty for today.
	Start string
	// Days is the window length. Values below 1 mean 1.
	Days    int
	Overdue OverdueOption
}

// StartDate resolves Start against now in loc and returns midnight of that day.
func (w DateWindow) StartDate(now time.Time, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	start := strings.TrimSpace(w.Start)
	if start == "" || strings.EqualFold(start, Today) {
		local := now.In(loc)
		return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc), nil
	}
	t, err := time.ParseInLocation(DateLayout, start, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start date %q, expected YYYY-MM-DD or %q", w.Start, Today)
	}
	return t, nil
}

// Clause renders the window as a filter clause. Day arithmetic uses
// AddDate so DST transitions in loc never shift the calendar date.
func (w DateWindow) Clause(now time.Time, loc *time.Location) (string, error) {
	if w.Overdue == OverdueOnly {
		return "overdue", nil
	}

	start, err := w.StartDate(now, loc)
	if err != nil {
		return "", err
	}
	days := w.Days
	if days < 1 {
		days = 1
	}

	s := start.Format(DateLayout)
	var window string
	if days == 1 {
		window = "due: " + s
	} else {
		e := start.AddDate(0, 0, days).Format(DateLayout)
		window = fmt.Sprintf("(due: %s | due after: %s) & due before: %s", s, s, e)
	}

	if w.Overdue == OverdueInclude {
		return "(overdue | " + window + ")", nil
	}
	return window, nil
}

// CompletionBounds expands since and until (YYYY-MM-DD, inclusive) to the
// first and last second of those days in loc, rendered in UTC.
func CompletionBounds(since, until string, loc *time.Location) (string, string, error) {
	if loc == nil {
		loc = time.UTC
	}
	s, err := time.ParseInLocation(DateLayout, strings.TrimSpace(since), loc)
	if err != nil {
		return "", "", fmt.Errorf("invalid since date %q, expected YYYY-MM-DD", since)
	}
	u, err := time.ParseInLocation(DateLayout, strings.TrimSpace(until), loc)
	if err != nil {
		return "", "", fmt.Errorf("invalid until date %q, expected YYYY-MM-DD", until)
	}
	if u.Before(s) {
		return "", "", fmt.Errorf("until (%s) must not be before since (%s)", until, since)
	}

	end := time.Date(u.Year(), u.Month(), u.Day(), 23, 59, 59, 0, loc)
	return s.UTC().Format(completionLayout), end.UTC().Format(completionLayout), nil
}
