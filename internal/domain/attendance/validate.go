package attendance

import (
	"fmt"
	"strings"
	"time"

	"timekeeper/internal/domain/worktime"
)

const (
	PeriodWeek  = "week"
	PeriodMonth = "month"

	maxRangeDays = 366
)

// ValidatePunch checks what the store needs; loose clock cells are left to
// the classifier.
func ValidatePunch(p RawPunch) error {
	if strings.TrimSpace(p.EmployeeID) == "" {
		return fmt.Errorf("%w: employeeId is required", ErrInvalidPunch)
	}
	if _, ok := worktime.ParseDate(p.Date); !ok {
		return fmt.Errorf("%w: date %q", ErrInvalidPunch, p.Date)
	}
	if status := strings.TrimSpace(p.LogStatus); status != "" && !ValidLogStatus(strings.ToUpper(status)) {
		return fmt.Errorf("%w: log status %q", ErrInvalidPunch, p.LogStatus)
	}
	return nil
}

func ValidatePolicy(in worktime.PolicyInput) error {
	if _, ok := worktime.ParseDate(in.EffectiveDate); !ok {
		return fmt.Errorf("%w: effectiveDate %q", ErrInvalidPolicy, in.EffectiveDate)
	}
	clocks := map[string]string{
		"standardStartTime":  in.StandardStart,
		"standardEndTime":    in.StandardEnd,
		"clockInCutoffTime":  in.ClockInCutoff,
		"clockOutCutoffTime": in.ClockOutCutoff,
	}
	for field, value := range clocks {
		if !validClock(value) {
			return fmt.Errorf("%w: %s %q", ErrInvalidPolicy, field, value)
		}
	}
	if in.StandardStart != "" && in.StandardEnd != "" &&
		worktime.ParseClock(in.StandardStart) >= worktime.ParseClock(in.StandardEnd) {
		return fmt.Errorf("%w: standard start must be before standard end", ErrInvalidPolicy)
	}
	minutes := map[string]*int{
		"lateClockInGraceMinutes":  in.LateGraceMinutes,
		"breakTime4hDeduction":     in.BreakTime4hDeduction,
		"breakTime8hDeduction":     in.BreakTime8hDeduction,
		"breakTimeMinutes":         in.BreakTimeMinutes,
		"maxWeeklyOvertimeMinutes": in.MaxWeeklyOvertimeMinutes,
	}
	for field, value := range minutes {
		if value != nil && *value < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidPolicy, field)
		}
	}
	return nil
}

// validClock accepts blank, HH:mm or HH:mm:ss.
func validClock(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return true
	}
	for _, layout := range []string{"15:04", "15:04:05"} {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

func validateRange(from, to string) error {
	start, ok := worktime.ParseDate(from)
	if !ok {
		return fmt.Errorf("%w: from %q", ErrInvalidRange, from)
	}
	end, ok := worktime.ParseDate(to)
	if !ok {
		return fmt.Errorf("%w: to %q", ErrInvalidRange, to)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: to is before from", ErrInvalidRange)
	}
	if end.Sub(start).Hours()/24 > maxRangeDays {
		return fmt.Errorf("%w: longer than %d days", ErrInvalidRange, maxRangeDays)
	}
	return nil
}
