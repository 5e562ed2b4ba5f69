package units

import (
	"fmt"
	"time"
)

// FormatTimeLeft renders a countdown as "1h 2m 3s", "2m 3s", "3s", or
// "Ended" once nothing remains.
func FormatTimeLeft(secs int64) string {
	if secs <= 0 {
		return "Ended"
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// FormatDeadline renders the coarse campaign countdown: "3d 4h left",
// "4h 12m left", or "Expired".
func FormatDeadline(deadline int64, now time.Time) string {
	left := deadline - now.Unix()
	if left <= 0 {
		return "Expired"
	}
	d := left / 86400
	h := (left % 86400) / 3600
	m := (left % 3600) / 60
	if d > 0 {
		return fmt.Sprintf("%dd %dh left", d, h)
	}
	return fmt.Sprintf("%dh %dm left", h, m)
}

// SecondsUntil is max(0, end-now).
func SecondsUntil(end int64, now time.Time) int64 {
	if left := end - now.Unix(); left > 0 {
		return left
	}
	return 0
}
