package worktime

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate reads a YYYY-MM-DD calendar date as a local calendar day. The
// result is pinned to UTC midnight so weekday lookups never shift a day.
func ParseDate(value string) (time.Time, bool) {
	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

func IsWeekend(date time.Time) bool {
	day := date.Weekday()
	return day == time.Saturday || day == time.Sunday
}

// firstMonday returns the first Monday of the given year.
func firstMonday(year int) time.Time {
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(time.Monday) - int(jan1.Weekday()) + 7) % 7
	return jan1.AddDate(0, 0, offset)
}

// weekOf returns the anchoring year and 1-based week number for date. Days
// before the year's first Monday roll into the previous year's last week.
func weekOf(date time.Time) (int, int) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	year := day.Year()
	start := firstMonday(year)
	if day.Before(start) {
		year--
		start = firstMonday(year)
	}
	days := int(day.Sub(start).Hours() / 24)
	return year, days/7 + 1
}

// WeekKey returns W01..W53 with week 1 starting on the first Monday of the year.
func WeekKey(date time.Time) string {
	_, week := weekOf(date)
	return fmt.Sprintf("W%02d", week)
}

// WeekID is WeekKey qualified with its anchoring year, e.g. "2025-W07".
func WeekID(date time.Time) string {
	year, week := weekOf(date)
	return fmt.Sprintf("%d-W%02d", year, week)
}

// WeekStart returns the Monday that opens date's week.
func WeekStart(date time.Time) time.Time {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
