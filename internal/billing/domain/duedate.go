package domain

import "time"

// NextDueDate computes the next occurrence of dueDay relative to today.
// The candidate is (today's year, today's month, dueDay); if that date
// has already passed it rolls forward one month, with the year rolling
// over at December.
//
// When dueDay exceeds the length of the target month (31 in February,
// say), the date is clamped to the last day of that month instead of
// overflowing into the next one.
//
// This function is PURE:
// - No side effects
// - Fully deterministic at calendar-date granularity
func NextDueDate(dueDay int, today time.Time) time.Time {
	today = truncateToDate(today)

	candidate := dateInMonth(today.Year(), today.Month(), dueDay)
	if candidate.Before(today) {
		// Roll from the first of the month so a late-January "today"
		// cannot normalize past February.
		next := time.Date(today.Year(), today.Month()+1, 1, 0, 0, 0, 0, time.UTC)
		candidate = dateInMonth(next.Year(), next.Month(), dueDay)
	}
	return candidate
}

// dateInMonth builds (year, month, day) with day clamped to the month's
// last day.
func dateInMonth(year int, month time.Month, day int) time.Time {
	if day < 1 {
		day = 1
	}
	if last := lastDayOfMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func lastDayOfMonth(year int, month time.Month) int {
	// Day zero of the following month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func truncateToDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
