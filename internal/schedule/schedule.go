// Package schedule computes the wake calendar the displays follow: overnight
// the frame is not worth refreshing, during the day it refreshes every other
// hour. The service renders on the same calendar so a waking display always
// pulls a frame produced for its wake slot.
package schedule

import "time"

const (
	quietStartHour = 20 // after this hour, sleep until morning
	morningHour    = 6
)

// SleepDuration returns how long to sleep from the given local wall-clock time
// until the next wake.
func SleepDuration(local time.Time) time.Duration {
	hour := local.Hour()
	minutes := local.Minute()

	var sleepMinutes int
	switch {
	case hour > quietStartHour:
		// After 8pm: sleep until 6am tomorrow.
		sleepMinutes = ((24-hour)*60 - minutes) + morningHour*60
	case hour < morningHour:
		// After midnight but before 6am: sleep until 6am.
		sleepMinutes = (morningHour-hour)*60 - minutes
	default:
		// Sleep to the next even-hour boundary.
		sleepMinutes = (hour%2)*60 + (60 - minutes)
	}

	return time.Duration(sleepMinutes) * time.Minute
}

// NextWake returns the local wall-clock time of the next wake.
func NextWake(local time.Time) time.Time {
	return local.Add(SleepDuration(local))
}
