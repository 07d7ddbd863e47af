package youtube

import (
	"fmt"
	"regexp"
	"strconv"
)

var durationPattern = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// ParseDuration decodes an ISO-8601 duration code ("PT1H2M3S") into seconds.
// Missing components contribute zero. Empty or malformed input decodes to 0,
// which callers treat as "duration unknown" rather than zero-length.
func ParseDuration(code string) int {
	m := durationPattern.FindStringSubmatch(code)
	if m == nil {
		return 0
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	s, _ := strconv.Atoi(m[3])
	return h*3600 + min*60 + s
}

// FormatDuration renders seconds as a "m:ss" or "h:mm:ss" badge.
// Zero (unknown) durations render as the empty string.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return ""
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
