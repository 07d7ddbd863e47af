// Package display provides terminal output formatting for alttube.
package display

import (
	"fmt"
	"strings"
	"time"

	"alttube/internal/youtube"
)

const separator = " • "

// TerminalFormatter formats curated videos for terminal display.
type TerminalFormatter struct{}

// NewTerminalFormatter creates a new terminal formatter.
func NewTerminalFormatter() *TerminalFormatter {
	return &TerminalFormatter{}
}

// FormatVideo formats a single curated video for display.
func (f *TerminalFormatter) FormatVideo(v youtube.Video) string {
	var lines []string

	title := v.Title
	if badge := youtube.FormatDuration(youtube.ParseDuration(v.Duration)); badge != "" {
		title = fmt.Sprintf("%s [%s]", title, badge)
	}
	lines = append(lines, title)

	meta := fmt.Sprintf("  %s%s%s views%s%s",
		v.ChannelTitle, separator, formatCount(v.ViewCount), separator, f.FormatTimestamp(v.PublishedAt))
	lines = append(lines, meta)

	if v.URL != "" {
		lines = append(lines, "  "+v.URL)
	}

	return strings.Join(lines, "\n") + "\n"
}

// FormatFeed formats multiple curated videos for display.
func (f *TerminalFormatter) FormatFeed(videos []youtube.Video) string {
	if len(videos) == 0 {
		return "No videos to display. Try loosening the filters.\n"
	}

	var formatted []string
	for _, v := range videos {
		formatted = append(formatted, f.FormatVideo(v))
	}

	return strings.Join(formatted, "\n")
}

// FormatTimestamp formats a timestamp as relative time. A zero time
// (unparseable publish date) renders as "unknown age".
func (f *TerminalFormatter) FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "unknown age"
	}

	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return pluralize(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return pluralize(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return pluralize(int(diff.Hours()/24), "day")
	default:
		return t.Format("Jan 2, 2006")
	}
}

// pluralize returns "N unit ago" or "N units ago" based on count.
func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// formatCount renders large counters with thousands separators.
func formatCount(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
