package services

import (
	"testing"
	"time"
)

func TestDailyIDFormats(t *testing.T) {
	at := time.Date(2025, 6, 3, 23, 59, 0, 0, time.UTC)

	if got := DailyID(at); got != "2025-06-03" {
		t.Errorf("DailyID = %s, want 2025-06-03", got)
	}
	// Legacy keys carry no zero padding.
	if got := LegacyDailyID(at); got != "6/3/2025" {
		t.Errorf("LegacyDailyID = %s, want 6/3/2025", got)
	}
	if got := BonusDailyID(at); got != "bonus_2025-06-03" {
		t.Errorf("BonusDailyID = %s, want bonus_2025-06-03", got)
	}
}

func TestIsBonusDailyID(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"bonus_2025-06-03", true},
		{"2025-06-03", false},
		{"6/3/2025", false},
		{"bonus_", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsBonusDailyID(tc.in); got != tc.want {
			t.Errorf("IsBonusDailyID(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSameCalendarDay(t *testing.T) {
	morning := time.Date(2025, 6, 3, 0, 1, 0, 0, time.UTC)
	night := time.Date(2025, 6, 3, 23, 59, 0, 0, time.UTC)
	nextDay := time.Date(2025, 6, 4, 0, 1, 0, 0, time.UTC)

	if !SameCalendarDay(morning, night) {
		t.Error("same date, different hours must match")
	}
	if SameCalendarDay(night, nextDay) {
		t.Error("adjacent dates must not match")
	}
}
