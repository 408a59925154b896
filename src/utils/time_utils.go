package utils

import (
	"time"

	logger "github.com/sirupsen/logrus"
)

// ResetTime resets the time component based on the granularity specified.
// Pass "minute" to reset seconds to zero.
// Pass "hour" to reset minutes and seconds to zero.
// Pass "day" to reset to UTC midnight.
func ResetTime(t time.Time, granularity string) time.Time {
	switch granularity {
	case "minute":
		return t.Truncate(time.Minute)
	case "hour":
		return t.Truncate(time.Hour)
	case "day":
		u := t.UTC()
		return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	default:
		logger.WithField("granularity", granularity).Warn("invalid granularity, use minute, hour or day")
		return t
	}
}

// DaysHeld returns the whole days elapsed from entry to now, never negative.
func DaysHeld(entry, now time.Time) int {
	if now.Before(entry) {
		return 0
	}
	return int(now.Sub(entry) / (24 * time.Hour))
}
