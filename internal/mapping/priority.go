package mapping

import (
	"fmt"
	"strings"
)

// Priority is the user-facing priority level. p1 is the most urgent.
//
// The API numbers priorities the other way round (4 is the most urgent),
// so level pN corresponds to remote value 5-N.
type Priority string

const (
	P1 Priority = "p1"
	P2 Priority = "p2"
	P3 Priority = "p3"
	P4 Priority = "p4"
)

// Priorities lists the accepted levels, most urgent first.
var Priorities = []string{string(P1), string(P2), string(P3), string(P4)}

// PriorityFromRemote converts an API priority. Values outside 1..4 map to p4,
// the API default.
func PriorityFromRemote(n int) Priority {
	if n < 1 || n > 4 {
		return P4
	}
	return Priority(fmt.Sprintf("p%d", 5-n))
}

// ParsePriority accepts "p1".."p4", case-insensitively.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case P1, P2, P3, P4:
		return p, nil
	default:
		return "", fmt.Errorf("invalid priority %q, must be one of: p1, p2, p3, p4", s)
	}
}

// ToRemote returns the API value for p. Unknown levels map to 1.
func (p Priority) ToRemote() int {
	switch p {
	case P1:
		return 4
	case P2:
		return 3
	case P3:
		return 2
	default:
		return 1
	}
}
