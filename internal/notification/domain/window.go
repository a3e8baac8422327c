package domain

import "time"

// NotificationDate is the day a reminder should go out for the given
// due date and days-before interval.
func NotificationDate(dueDate time.Time, daysBefore int) time.Time {
	return truncateToDate(dueDate).AddDate(0, 0, -daysBefore)
}

// IsNotificationDue reports whether today is exactly the notification
// date for (dueDate, daysBefore), at calendar-date granularity.
// Pure, deterministic, no side effects.
func IsNotificationDue(dueDate time.Time, daysBefore int, today time.Time) bool {
	return NotificationDate(dueDate, daysBefore).Equal(truncateToDate(today))
}

func truncateToDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
