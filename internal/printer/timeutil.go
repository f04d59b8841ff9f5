package printer

import (
	"fmt"
	"time"
)

// FormatDuration returns a compact human duration using the two most
// significant units, e.g. "45s", "12m 3s", "2h 5m", "3d 4h".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Truncate(time.Second)

	days := int(d / (24 * time.Hour))
	hours := int(d % (24 * time.Hour) / time.Hour)
	minutes := int(d % time.Hour / time.Minute)
	seconds := int(d % time.Minute / time.Second)

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// Elapsed returns the time spent between start and end. A running
// intervention (nil end) is measured until now. Returns "-" when not started.
func Elapsed(start, end *time.Time, now time.Time) string {
	if start == nil {
		return "-"
	}
	until := now
	if end != nil {
		until = *end
	}
	return FormatDuration(until.Sub(*start))
}

// FormatTimestamp returns a formatted timestamp string in UTC.
// Format: "2006-01-02 15:04:05 UTC".
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

func formatOptionalTimestamp(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return FormatTimestamp(*t)
}
