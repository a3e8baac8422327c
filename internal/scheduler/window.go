package scheduler

import (
	"time"
)

// inSendWindow reports whether now falls within tolerance of the
// configured send time of day. The scheduler polls on an interval, so
// an exact-time match would miss almost every day.
func inSendWindow(now time.Time, sendTime string, tolerance time.Duration) bool {
	parsed, err := time.Parse("15:04", sendTime)
	if err != nil {
		return false
	}
	target := time.Date(now.Year(), now.Month(), now.Day(), parsed.Hour(), parsed.Minute(), 0, 0, now.Location())

	diff := now.Sub(target)
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}
