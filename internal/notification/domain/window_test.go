package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsNotificationDue(t *testing.T) {
	due := day(2024, time.April, 15)

	assert.True(t, IsNotificationDue(due, 7, day(2024, time.April, 8)))
	assert.False(t, IsNotificationDue(due, 7, day(2024, time.April, 9)))
	assert.False(t, IsNotificationDue(due, 7, day(2024, time.April, 7)))
}

func TestIsNotificationDueZeroDaysBefore(t *testing.T) {
	due := day(2024, time.April, 15)

	assert.True(t, IsNotificationDue(due, 0, due))
	assert.False(t, IsNotificationDue(due, 0, day(2024, time.April, 14)))
}

func TestIsNotificationDueIgnoresTimeOfDay(t *testing.T) {
	due := time.Date(2024, time.April, 15, 18, 30, 0, 0, time.UTC)
	today := time.Date(2024, time.April, 8, 6, 1, 0, 0, time.UTC)

	assert.True(t, IsNotificationDue(due, 7, today))
}

func TestNotificationDateCrossesMonthBoundary(t *testing.T) {
	due := day(2024, time.March, 3)

	assert.Equal(t, day(2024, time.February, 25), NotificationDate(due, 7))
	assert.True(t, IsNotificationDue(due, 7, day(2024, time.February, 25)))
}
