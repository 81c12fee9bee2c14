// internal/normalize/duration.go

package normalize

import (
	"fmt"
	"regexp"
	"strconv"
)

var isoDurationRe = regexp.MustCompile(`(?i)^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseDuration converts an ISO 8601 time duration ("PT1H30M") into whole
// minutes, rounding seconds up. Non-strings, malformed values and zero
// durations report ok=false.
func ParseDuration(v interface{}) (minutes int, ok bool) {
	s, isString := v.(string)
	if !isString || s == "" {
		return 0, false
	}

	m := isoDurationRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}

	hours := atoiOrZero(m[1])
	mins := atoiOrZero(m[2])
	secs := atoiOrZero(m[3])

	total := hours*60 + mins + (secs+59)/60
	if total <= 0 {
		return 0, false
	}
	return total, true
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// FormatDuration renders minutes as "45m", "1h" or "1h 30m".
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	h, m := minutes/60, minutes%60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
