package attendance

import (
	"testing"
	"time"

	"timekeeper/internal/domain/worktime"
)

type fakeCalendar map[string]bool

func (f fakeCalendar) IsHoliday(date time.Time) bool {
	return f[date.Format(worktime.DateLayout)]
}

func punch(employeeID, date, in, out string) RawPunch {
	return RawPunch{EmployeeID: employeeID, EmployeeName: "Employee " + employeeID, Date: date, ClockIn: in, ClockOut: out}
}

func TestClassifyNormalWeekday(t *testing.T) {
	rec := Classify(punch("E1", "2025-03-04", "08:52", "18:05"), worktime.DefaultPolicy(), nil)
	if rec.StartTime != 540 || rec.EndTime != 1080 {
		t.Fatalf("expected snapped 09:00-18:00, got %d-%d", rec.StartTime, rec.EndTime)
	}
	if rec.StartDisplay != "09:00" || rec.EndDisplay != "18:00" {
		t.Fatalf("unexpected displays %q %q", rec.StartDisplay, rec.EndDisplay)
	}
	if rec.OriginalStart != "08:52" || rec.OriginalEnd != "18:05" {
		t.Fatalf("expected original punches preserved, got %q %q", rec.OriginalStart, rec.OriginalEnd)
	}
	if rec.TotalDuration != 540 || rec.BreakDuration != 60 || rec.ActualWorkDuration != 480 || rec.OvertimeDuration != 0 {
		t.Fatalf("unexpected durations: %+v", rec)
	}
	if rec.Status != StatusNormal || rec.LogStatus != LogNormal {
		t.Fatalf("expected NORMAL/NORMAL, got %s/%s", rec.Status, rec.LogStatus)
	}
	if rec.ID != RecordID("E1", "2025-03-04") {
		t.Fatalf("expected deterministic id, got %s", rec.ID)
	}
}

func TestClassifyMissingStart(t *testing.T) {
	rec := Classify(punch("E1", "2025-03-04", "", "19:10"), worktime.DefaultPolicy(), nil)
	if rec.Status != StatusError || rec.LogStatus != LogOther {
		t.Fatalf("expected ERROR/OTHER, got %s/%s", rec.Status, rec.LogStatus)
	}
	if rec.ActualWorkDuration != 0 {
		t.Fatalf("expected no actual work, got %d", rec.ActualWorkDuration)
	}
	if rec.Note != NoteManualCheck {
		t.Fatalf("expected manual check note, got %q", rec.Note)
	}
}

func TestClassifyZeroLengthPunch(t *testing.T) {
	rec := Classify(punch("E1", "2025-03-04", "09:00", "09:00"), worktime.DefaultPolicy(), nil)
	if rec.ActualWorkDuration != 0 || rec.Status != StatusWarning || rec.LogStatus != LogOther {
		t.Fatalf("expected WARNING/OTHER with no work, got %+v", rec)
	}
}

func TestClassifyNoPunchesIsVacation(t *testing.T) {
	rec := Classify(punch("E1", "2025-03-05", "00:00", ""), worktime.DefaultPolicy(), nil)
	if rec.Status != StatusNormal || rec.LogStatus != LogVacation {
		t.Fatalf("expected NORMAL/VACATION, got %s/%s", rec.Status, rec.LogStatus)
	}
}

func TestClassifyOvertime(t *testing.T) {
	rec := Classify(punch("E1", "2025-03-04", "09:00", "20:10"), worktime.DefaultPolicy(), nil)
	if rec.ActualWorkDuration != 610 || rec.OvertimeDuration != 130 || rec.SpecialWorkMinutes != 0 {
		t.Fatalf("unexpected overtime split: %+v", rec)
	}
}

func TestClassifyWeekendIgnoresRawPunches(t *testing.T) {
	rec := Classify(punch("E1", "2025-03-08", "09:00", "15:00"), worktime.DefaultPolicy(), nil)
	if rec.WorkType != WorkTypeWeekend {
		t.Fatalf("expected weekend work type, got %s", rec.WorkType)
	}
	if rec.StartTime != 0 || rec.EndTime != 0 || rec.ActualWorkDuration != 0 || rec.StartDisplay != "" {
		t.Fatalf("expected zeroed weekend record, got %+v", rec)
	}
	if rec.LogStatus != LogRest || rec.Status != StatusNormal {
		t.Fatalf("expected REST, got %s/%s", rec.Status, rec.LogStatus)
	}
}

func TestClassifyExplicitSpecialWeekend(t *testing.T) {
	p := punch("E1", "2025-03-08", "09:00", "15:00")
	p.LogStatus = "special"
	rec := Classify(p, worktime.DefaultPolicy(), nil)
	if rec.LogStatus != LogSpecial {
		t.Fatalf("expected SPECIAL, got %s", rec.LogStatus)
	}
	if rec.ActualWorkDuration != 330 || rec.SpecialWorkMinutes != 330 || rec.OvertimeDuration != 0 {
		t.Fatalf("unexpected special split: %+v", rec)
	}
}

func TestClassifyHoliday(t *testing.T) {
	cal := fakeCalendar{"2025-03-03": true}
	rec := Classify(punch("E1", "2025-03-03", "09:00", "18:00"), worktime.DefaultPolicy(), cal)
	if !rec.IsHoliday || rec.WorkType != WorkTypeHoliday || rec.LogStatus != LogRest {
		t.Fatalf("expected holiday REST, got %+v", rec)
	}

	p := punch("E1", "2025-03-03", "09:00", "18:00")
	p.LogStatus = LogTrip
	trip := Classify(p, worktime.DefaultPolicy(), cal)
	if trip.LogStatus != LogTrip || trip.SpecialWorkMinutes != 480 {
		t.Fatalf("expected TRIP with special work, got %+v", trip)
	}
}

func TestClassifyExplicitStatusPrecedence(t *testing.T) {
	sick := punch("E1", "2025-03-04", "", "19:10")
	sick.LogStatus = LogSick
	rec := Classify(sick, worktime.DefaultPolicy(), nil)
	if rec.Status != StatusNormal || rec.LogStatus != LogSick {
		t.Fatalf("expected explicit SICK to stick, got %s/%s", rec.Status, rec.LogStatus)
	}

	other := punch("E1", "2025-03-04", "09:00", "18:00")
	other.LogStatus = LogOther
	rec = Classify(other, worktime.DefaultPolicy(), nil)
	if rec.LogStatus != LogNormal {
		t.Fatalf("expected OTHER to be re-derived, got %s", rec.LogStatus)
	}

	normal := punch("E1", "2025-03-04", "", "19:10")
	normal.LogStatus = LogNormal
	rec = Classify(normal, worktime.DefaultPolicy(), nil)
	if rec.Status != StatusError || rec.LogStatus != LogOther {
		t.Fatalf("expected NORMAL to be re-derived as ERROR/OTHER, got %s/%s", rec.Status, rec.LogStatus)
	}

	rest := punch("E1", "2025-03-04", "", "")
	rest.LogStatus = LogRest
	rec = Classify(rest, worktime.DefaultPolicy(), nil)
	if rec.LogStatus != LogVacation {
		t.Fatalf("expected REST to be re-derived, got %s", rec.LogStatus)
	}

	unknown := punch("E1", "2025-03-04", "09:00", "18:00")
	unknown.LogStatus = "HOLIDAY_PARTY"
	rec = Classify(unknown, worktime.DefaultPolicy(), nil)
	if rec.LogStatus != LogNormal {
		t.Fatalf("expected unknown status to be ignored, got %s", rec.LogStatus)
	}
}

func TestClassifyDisableSnap(t *testing.T) {
	p := worktime.DefaultPolicy()
	p.DisableSnap = true
	rec := Classify(punch("E1", "2025-03-04", "08:52:13", "18:05"), p, nil)
	if rec.StartDisplay != "08:52:13" || rec.EndDisplay != "18:05" {
		t.Fatalf("expected raw displays, got %q %q", rec.StartDisplay, rec.EndDisplay)
	}
	if rec.StartTime != 532 || rec.EndTime != 1085 {
		t.Fatalf("expected raw minutes, got %d-%d", rec.StartTime, rec.EndTime)
	}
	if rec.ActualWorkDuration != 480 || rec.TotalDuration != 540 {
		t.Fatalf("expected snapped durations, got %+v", rec)
	}
}

func TestClassifyMalformedInput(t *testing.T) {
	rec := Classify(RawPunch{EmployeeID: "E1", Date: "03/04/2025", ClockIn: "late", ClockOut: "??"}, worktime.DefaultPolicy(), nil)
	if rec.LogStatus != LogVacation || rec.WorkType != WorkTypeWeekday {
		t.Fatalf("expected best-effort record, got %+v", rec)
	}
}

func TestClassifyDurationInvariant(t *testing.T) {
	clocks := []string{"", "07:55", "08:30", "08:59", "09:11", "12:00", "13:30", "17:59", "18:20", "19:45", "23:10"}
	dates := []string{"2025-03-04", "2025-03-08", "2025-03-09"}
	for _, date := range dates {
		for _, in := range clocks {
			for _, out := range clocks {
				rec := Classify(punch("E1", date, in, out), worktime.DefaultPolicy(), nil)
				if rec.ActualWorkDuration != max(0, rec.TotalDuration-rec.BreakDuration) {
					t.Fatalf("duration invariant broken for %s %s-%s: %+v", date, in, out, rec)
				}
			}
		}
	}
}

func TestDecisionTableOrder(t *testing.T) {
	tests := []struct {
		name      string
		facts     dayFacts
		status    string
		logStatus string
	}{
		{"special worked", dayFacts{special: true, start: 540, end: 900, actual: 330}, StatusNormal, LogSpecial},
		{"special idle", dayFacts{special: true}, StatusNormal, LogRest},
		{"vacation", dayFacts{}, StatusNormal, LogVacation},
		{"missing end", dayFacts{start: 540}, StatusError, LogOther},
		{"no work", dayFacts{start: 540, end: 540}, StatusWarning, LogOther},
		{"worked", dayFacts{start: 540, end: 1080, actual: 480}, StatusNormal, LogNormal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := decideStatus(tt.facts)
			if rule.status != tt.status || rule.logStatus != tt.logStatus {
				t.Fatalf("got %s/%s, want %s/%s", rule.status, rule.logStatus, tt.status, tt.logStatus)
			}
		})
	}
}

func TestRecalculateIdempotent(t *testing.T) {
	cal := fakeCalendar{"2025-03-06": true}
	policies := []worktime.Policy{worktime.DefaultPolicy()}
	noSnap := worktime.DefaultPolicy()
	noSnap.DisableSnap = true
	policies = append(policies, noSnap)

	punches := []RawPunch{
		punch("E1", "2025-03-04", "08:52", "18:05"),
		punch("E1", "2025-03-04", "", "19:10"),
		punch("E1", "2025-03-04", "09:00", "09:00"),
		punch("E1", "2025-03-05", "", ""),
		punch("E1", "2025-03-05", "09:40", "21:15:09"),
		punch("E1", "2025-03-06", "09:00", "18:00"),
		punch("E1", "2025-03-08", "10:00", "16:00"),
		{EmployeeID: "E1", Date: "2025-03-08", ClockIn: "10:00", ClockOut: "16:00", LogStatus: LogSpecial},
		{EmployeeID: "E1", Date: "2025-03-07", ClockIn: "", ClockOut: "", LogStatus: LogEducation},
		{EmployeeID: "E1", Date: "2025-03-07", ClockIn: "09:00", ClockOut: "18:00", LogStatus: LogVacation},
		{EmployeeID: "E1", Date: "2025-03-04", ClockIn: "", ClockOut: "19:10", LogStatus: LogNormal},
		{EmployeeID: "E1", Date: "2025-03-04", ClockIn: "09:00", ClockOut: "18:00", LogStatus: LogNormal},
	}
	for _, p := range policies {
		for _, raw := range punches {
			rec := Classify(raw, p, cal)
			again := Recalculate(rec, p, cal)
			if again != rec {
				t.Fatalf("recalculate changed record:\n before %+v\n after  %+v", rec, again)
			}
		}
	}
}

func TestRecalculateAfterEdit(t *testing.T) {
	rec := Classify(punch("E1", "2025-03-04", "08:52", "18:05"), worktime.DefaultPolicy(), nil)
	cell := rec
	cell.EndDisplay = "20:00"
	edited := Recalculate(cell, worktime.DefaultPolicy(), nil)
	if edited.ActualWorkDuration != 600 || edited.OvertimeDuration != 120 {
		t.Fatalf("unexpected durations after edit: %+v", edited)
	}
	if edited.OriginalEnd != "18:05" {
		t.Fatalf("expected original end kept for audit, got %q", edited.OriginalEnd)
	}
	changes := DiffRecord(rec, edited)
	if len(changes) == 0 || changes[0].Field != "endTimeDisplay" {
		t.Fatalf("expected end display change first, got %+v", changes)
	}
}
