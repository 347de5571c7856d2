package attendance

import (
	"sort"

	"timekeeper/internal/domain/worktime"
)

type CalibrationOptions struct {
	// FlattenStandardOvertime resets weekday overtime to the standard window.
	FlattenStandardOvertime bool
}

const (
	laborHolidayMonth = 5
	laborHolidayDay   = 1
)

// Calibrate keeps every employee's effective weekly overtime (weekday overtime
// plus weekend/holiday work) under the active policy's weekly ceiling. It
// returns a new slice; records marked ERROR pass through untouched.
func Calibrate(records []Record, policies worktime.PolicySet, cache *RunCache, opts CalibrationOptions) []Record {
	if cache == nil {
		cache = NewRunCache(nil)
	}
	out := make([]Record, len(records))
	copy(out, records)

	for i := range out {
		applyFixedRules(&out[i])
	}

	type weekGroup struct {
		employeeID string
		weekID     string
		indexes    []int
	}
	groups := make(map[string]*weekGroup)
	var order []string
	for i, rec := range out {
		date, ok := worktime.ParseDate(rec.Date)
		if !ok {
			continue
		}
		weekID := worktime.WeekID(date)
		key := rec.EmployeeID + "|" + weekID
		group, ok := groups[key]
		if !ok {
			group = &weekGroup{employeeID: rec.EmployeeID, weekID: weekID}
			groups[key] = group
			order = append(order, key)
		}
		group.indexes = append(group.indexes, i)
	}
	sort.Strings(order)

	for _, key := range order {
		group := groups[key]
		sort.SliceStable(group.indexes, func(a, b int) bool {
			return out[group.indexes[a]].Date < out[group.indexes[b]].Date
		})
		first, _ := worktime.ParseDate(out[group.indexes[0]].Date)
		policy := policies.ActiveFor(first)
		used := calibrateWeek(out, group.indexes, group.employeeID, policy, opts)
		cache.setWeeklyUsage(group.employeeID, group.weekID, used)
	}
	return out
}

// applyFixedRules runs the calendar and noise rules that precede budgeting.
func applyFixedRules(rec *Record) {
	if isLaborHoliday(rec.Date) {
		zeroRecord(rec, LogRest, NoteLaborHoliday)
		rec.Status = StatusNormal
		return
	}
	if rec.Status == StatusError {
		return
	}
	if rec.ActualWorkDuration > 0 && rec.ActualWorkDuration < noiseFloorMinutes {
		zeroRecord(rec, LogRest, NoteNoiseFiltered)
		rec.Status = StatusNormal
	}
}

func isLaborHoliday(date string) bool {
	day, ok := worktime.ParseDate(date)
	return ok && int(day.Month()) == laborHolidayMonth && day.Day() == laborHolidayDay
}

func calibrateWeek(out []Record, indexes []int, employeeID string, policy worktime.Policy, opts CalibrationOptions) int {
	var standard, special []int
	for _, i := range indexes {
		if out[i].Status == StatusError {
			continue
		}
		if out[i].IsSpecialDay() {
			special = append(special, i)
		} else {
			standard = append(standard, i)
		}
	}

	used := 0
	for _, i := range standard {
		if opts.FlattenStandardOvertime && out[i].OvertimeDuration > 0 {
			StandardCalibration(&out[i], policy)
		}
		used += out[i].OvertimeDuration
	}

	ceiling := policy.MaxWeeklyOvertimeMinutes - employeeBuffer(employeeID)
	sort.SliceStable(special, func(a, b int) bool {
		ra, rb := out[special[a]], out[special[b]]
		if ra.ActualWorkDuration != rb.ActualWorkDuration {
			return ra.ActualWorkDuration < rb.ActualWorkDuration
		}
		return ra.Date < rb.Date
	})
	for _, i := range special {
		used += calibrateSpecial(&out[i], policy, max(0, ceiling-used))
	}
	return used
}

// calibrateSpecial fits one weekend/holiday record into the remaining budget
// and returns the minutes it consumed.
func calibrateSpecial(rec *Record, policy worktime.Policy, remaining int) int {
	if rec.ActualWorkDuration == 0 {
		status := rec.LogStatus
		if status == LogSpecial || status == LogOther {
			status = LogRest
		}
		zeroRecord(rec, status, "")
		return 0
	}
	if remaining <= 0 {
		zeroRecord(rec, LogRest, NoteBudgetExhausted)
		rec.Status = StatusWarning
		return 0
	}

	targetEnd := rec.EndTime
	if targetEnd > policy.ClockOutCutoff {
		targetEnd = policy.StandardEnd
	}
	targetStart := rec.StartTime
	if targetStart < policy.StandardStart {
		targetStart = policy.StandardStart
	}

	fit := fitSpecialWork(targetEnd - targetStart)
	if fit <= 0 {
		zeroRecord(rec, LogOther, NoteOutsideWindow)
		rec.Status = StatusError
		return 0
	}

	target := min(fit, rec.ActualWorkDuration, remaining)
	brk := specialBreak(target)
	total := target + brk
	finalStart := max(targetStart, targetEnd-total)

	trimmed := target < rec.ActualWorkDuration
	rec.StartTime = finalStart
	rec.EndTime = targetEnd
	rec.TotalDuration = targetEnd - finalStart
	rec.BreakDuration = rec.TotalDuration - target
	rec.ActualWorkDuration = target
	rec.OvertimeDuration = target
	rec.SpecialWorkMinutes = target
	rec.NightWorkMinutes = worktime.NightMinutes(finalStart, targetEnd)
	rec.StartDisplay = stampClock(finalStart, rec.ID, "start")
	rec.EndDisplay = stampClock(targetEnd, rec.ID, "end")
	if !explicitSpecial(rec.LogStatus) {
		rec.LogStatus = LogSpecial
	}
	if trimmed {
		rec.Status = StatusWarning
		rec.Note = appendNote(rec.Note, NoteBudgetTrimmed)
	}
	return target
}

// fitSpecialWork is the most actual work whose tiered break still fits in a
// span of gross minutes.
func fitSpecialWork(gross int) int {
	switch {
	case gross-60 >= 450:
		return gross - 60
	case gross-30 >= 240:
		return min(gross-30, 449)
	default:
		return max(0, min(gross, 239))
	}
}

// specialBreak is the weekend/holiday deduction, tiered on actual work.
func specialBreak(actual int) int {
	switch {
	case actual >= 450:
		return 60
	case actual >= 240:
		return 30
	default:
		return 0
	}
}

func zeroRecord(rec *Record, logStatus, note string) {
	rec.StartTime = 0
	rec.EndTime = 0
	rec.StartDisplay = ""
	rec.EndDisplay = ""
	rec.TotalDuration = 0
	rec.BreakDuration = 0
	rec.ActualWorkDuration = 0
	rec.OvertimeDuration = 0
	rec.SpecialWorkMinutes = 0
	rec.NightWorkMinutes = 0
	rec.LogStatus = logStatus
	if note != "" {
		rec.Note = appendNote(rec.Note, note)
	}
}
