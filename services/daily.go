package services

import "time"

// DailyID returns the calendar-date batch key for a point in time.
func DailyID(t time.Time) string {
	return t.Format("2006-01-02")
}

// LegacyDailyID is the date-string format older app versions stamped on
// tasks. Fetches fall back to it when no ISO-keyed batch exists.
func LegacyDailyID(t time.Time) string {
	return t.Format("1/2/2006")
}

// BonusDailyID keys a bonus batch so it never collides with the regular
// daily batch for the same day.
func BonusDailyID(t time.Time) string {
	return "bonus_" + DailyID(t)
}

// IsBonusDailyID reports whether a batch key belongs to a bonus batch.
func IsBonusDailyID(dailyID string) bool {
	return len(dailyID) > 6 && dailyID[:6] == "bonus_"
}

// SameCalendarDay compares two times by calendar date, not time of day.
func SameCalendarDay(a, b time.Time) bool {
	return DailyID(a) == DailyID(b)
}
