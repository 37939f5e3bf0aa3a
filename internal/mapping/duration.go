package mapping

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/teemow/todoist-mcp/internal/todoist"
)

// MaxDurationMinutes is the longest duration a task may carry.
const MaxDurationMinutes = 24 * 60

var durationPattern = regexp.MustCompile(`^(?:(\d+(?:\.\d+)?)\s*h)?\s*(?:(\d+)\s*m)?$`)

// FormatDuration renders minutes as "2h30m", "2h" or "45m". Zero or
// negative values render as "".
func FormatDuration(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%dm", h, m)
	}
}

// ParseDuration reads "2h30m", "2h", "45m" or "1.5h" (whitespace between
// parts allowed) and returns whole minutes. The result must be positive
// and at most MaxDurationMinutes.
func ParseDuration(s string) (int, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	match := durationPattern.FindStringSubmatch(in)
	if in == "" || match == nil || (match[1] == "" && match[2] == "") {
		return 0, fmt.Errorf("invalid duration %q, use a format like \"2h30m\", \"2h\" or \"45m\"", s)
	}

	var total float64
	if match[1] != "" {
		h, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid hours in duration %q: %w", s, err)
		}
		total += h * 60
	}
	if match[2] != "" {
		m, err := strconv.Atoi(match[2])
		if err != nil {
			return 0, fmt.Errorf("invalid minutes in duration %q: %w", s, err)
		}
		total += float64(m)
	}

	minutes := int(math.Round(total))
	if minutes <= 0 {
		return 0, fmt.Errorf("duration %q must be greater than zero", s)
	}
	if minutes > MaxDurationMinutes {
		return 0, fmt.Errorf("duration %q exceeds the maximum of 24h", s)
	}
	return minutes, nil
}

// FormatTaskDuration renders an API duration. Day-unit durations render as "Nd".
func FormatTaskDuration(d *todoist.Duration) string {
	if d == nil || d.Amount <= 0 {
		return ""
	}
	if d.Unit == todoist.DurationUnitDay {
		return fmt.Sprintf("%dd", d.Amount)
	}
	return FormatDuration(d.Amount)
}
