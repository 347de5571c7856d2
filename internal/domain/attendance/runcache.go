package attendance

import (
	"fmt"
	"time"

	"timekeeper/internal/domain/worktime"
)

// RunCache holds state that is computed once per correction run and shared
// between its stages. Build one per run with NewRunCache and drop it after.
type RunCache struct {
	calendar        HolidayCalendar
	holidays        map[string]bool
	lastWorkingDays map[string]string
	weeklyUsed      map[string]int
}

func NewRunCache(cal HolidayCalendar) *RunCache {
	return &RunCache{
		calendar:        calendarOrEmpty(cal),
		holidays:        make(map[string]bool),
		lastWorkingDays: make(map[string]string),
		weeklyUsed:      make(map[string]int),
	}
}

// IsHoliday memoizes the underlying calendar so a RunCache can stand in for it.
func (c *RunCache) IsHoliday(date time.Time) bool {
	day := date.Format(worktime.DateLayout)
	if value, ok := c.holidays[day]; ok {
		return value
	}
	value := c.calendar.IsHoliday(date)
	c.holidays[day] = value
	return value
}

// LastWorkingDay returns the last weekday of the month that is not a holiday.
func (c *RunCache) LastWorkingDay(year int, month time.Month) string {
	key := fmt.Sprintf("%04d-%02d", year, month)
	if day, ok := c.lastWorkingDays[key]; ok {
		return day
	}
	day := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	result := ""
	for ; !day.Before(first); day = day.AddDate(0, 0, -1) {
		if worktime.IsWeekend(day) || c.IsHoliday(day) {
			continue
		}
		result = day.Format(worktime.DateLayout)
		break
	}
	c.lastWorkingDays[key] = result
	return result
}

// WeeklyUsage is the effective overtime (standard plus calibrated special work)
// the calibrator booked for an employee's week.
func (c *RunCache) WeeklyUsage(employeeID, weekID string) int {
	return c.weeklyUsed[employeeID+"|"+weekID]
}

func (c *RunCache) setWeeklyUsage(employeeID, weekID string, minutes int) {
	c.weeklyUsed[employeeID+"|"+weekID] = minutes
}
