package attendance

import (
	"strings"

	"timekeeper/internal/domain/worktime"
)

// dayFacts is what the status decision table looks at.
type dayFacts struct {
	special bool
	start   int
	end     int
	actual  int
}

type statusRule struct {
	name      string
	applies   func(dayFacts) bool
	status    string
	logStatus string
	note      string
}

// statusRules is evaluated top to bottom; the first match wins.
var statusRules = []statusRule{
	{
		name:      "special day worked",
		applies:   func(f dayFacts) bool { return f.special && f.actual > 0 },
		status:    StatusNormal,
		logStatus: LogSpecial,
	},
	{
		name:      "special day off",
		applies:   func(f dayFacts) bool { return f.special },
		status:    StatusNormal,
		logStatus: LogRest,
	},
	{
		name:      "no punches",
		applies:   func(f dayFacts) bool { return f.start == 0 && f.end == 0 },
		status:    StatusNormal,
		logStatus: LogVacation,
	},
	{
		name:      "single punch",
		applies:   func(f dayFacts) bool { return f.start == 0 || f.end == 0 },
		status:    StatusError,
		logStatus: LogOther,
		note:      NoteManualCheck,
	},
	{
		name:      "no measurable work",
		applies:   func(f dayFacts) bool { return f.actual == 0 },
		status:    StatusWarning,
		logStatus: LogOther,
		note:      NoteManualCheck,
	},
	{
		name:      "worked",
		applies:   func(dayFacts) bool { return true },
		status:    StatusNormal,
		logStatus: LogNormal,
	},
}

func decideStatus(f dayFacts) statusRule {
	for _, rule := range statusRules {
		if rule.applies(f) {
			return rule
		}
	}
	return statusRules[len(statusRules)-1]
}

// Classify turns one raw punch into a fully populated record under policy p.
func Classify(punch RawPunch, p worktime.Policy, cal HolidayCalendar) Record {
	cal = calendarOrEmpty(cal)

	explicit := strings.ToUpper(strings.TrimSpace(punch.LogStatus))
	if !ValidLogStatus(explicit) {
		explicit = ""
	}

	inToken, _ := worktime.SanitizeClock(punch.ClockIn)
	outToken, _ := worktime.SanitizeClock(punch.ClockOut)
	rawStart := worktime.ParseClock(inToken)
	rawEnd := worktime.ParseClock(outToken)
	work := worktime.CalculateActualWork(rawStart, rawEnd, p)

	rec := Record{
		ID:            RecordID(punch.EmployeeID, punch.Date),
		EmployeeID:    punch.EmployeeID,
		EmployeeName:  punch.EmployeeName,
		Title:         punch.Title,
		Department:    punch.Department,
		Date:          punch.Date,
		OriginalStart: inToken,
		OriginalEnd:   outToken,
		WorkType:      WorkTypeWeekday,
	}

	date, ok := worktime.ParseDate(punch.Date)
	if ok {
		switch {
		case cal.IsHoliday(date):
			rec.IsHoliday = true
			rec.WorkType = WorkTypeHoliday
		case worktime.IsWeekend(date):
			rec.WorkType = WorkTypeWeekend
		}
	}
	special := rec.IsSpecialDay()

	startShown, endShown := work.SnappedStart, work.SnappedEnd
	rec.StartDisplay, rec.EndDisplay = clockDisplay(work.SnappedStart), clockDisplay(work.SnappedEnd)
	if p.DisableSnap {
		startShown, endShown = rawStart, rawEnd
		rec.StartDisplay, rec.EndDisplay = inToken, outToken
	}

	if special && !explicitSpecial(explicit) {
		rawStart, rawEnd = 0, 0
		startShown, endShown = 0, 0
		rec.StartDisplay, rec.EndDisplay = "", ""
		work = worktime.WorkResult{}
	}

	rec.StartTime = startShown
	rec.EndTime = endShown
	rec.TotalDuration = work.TotalDuration
	rec.BreakDuration = work.BreakDuration
	rec.ActualWorkDuration = work.ActualWork
	if work.ActualWork > 0 {
		rec.NightWorkMinutes = worktime.NightMinutes(work.SnappedStart, work.SnappedEnd)
	}
	applyWorkSplit(&rec)

	if stickyStatus(explicit) {
		rec.Status = StatusNormal
		rec.LogStatus = explicit
		return rec
	}

	rule := decideStatus(dayFacts{
		special: special,
		start:   rawStart,
		end:     rawEnd,
		actual:  work.ActualWork,
	})
	rec.Status = rule.status
	rec.LogStatus = rule.logStatus
	rec.Note = rule.note
	return rec
}

// applyWorkSplit derives overtime and special-work minutes from actual work.
func applyWorkSplit(rec *Record) {
	if rec.IsSpecialDay() {
		rec.SpecialWorkMinutes = rec.ActualWorkDuration
		rec.OvertimeDuration = 0
		return
	}
	rec.SpecialWorkMinutes = 0
	rec.OvertimeDuration = max(0, rec.ActualWorkDuration-worktime.StandardDayMinutes)
}

func clockDisplay(minutes int) string {
	if minutes == 0 {
		return ""
	}
	return worktime.FormatClock(minutes)
}
