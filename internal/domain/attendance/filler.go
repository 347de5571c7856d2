package attendance

import (
	"sort"

	"timekeeper/internal/domain/worktime"
)

// FillMissingDays returns a record set with exactly one record per employee for
// every calendar day between the earliest and latest date in records.
// Duplicate employee-days keep the record with the most actual work; records
// with unreadable dates are passed through at the end.
func FillMissingDays(records []Record, cal HolidayCalendar) []Record {
	cal = calendarOrEmpty(cal)

	byKey := make(map[recordKey]Record, len(records))
	identities := make(map[string]Record)
	var undated []Record
	var minDate, maxDate string
	for _, rec := range records {
		if _, ok := worktime.ParseDate(rec.Date); !ok {
			undated = append(undated, rec)
			continue
		}
		if minDate == "" || rec.Date < minDate {
			minDate = rec.Date
		}
		if rec.Date > maxDate {
			maxDate = rec.Date
		}
		if _, ok := identities[rec.EmployeeID]; !ok {
			identities[rec.EmployeeID] = rec
		}
		if existing, ok := byKey[rec.key()]; ok && existing.ActualWorkDuration >= rec.ActualWorkDuration {
			continue
		}
		byKey[rec.key()] = rec
	}
	if minDate == "" {
		return records
	}

	start, _ := worktime.ParseDate(minDate)
	end, _ := worktime.ParseDate(maxDate)

	employees := make([]string, 0, len(identities))
	for id := range identities {
		employees = append(employees, id)
	}
	sort.Strings(employees)

	out := make([]Record, 0, len(employees)*(int(end.Sub(start).Hours()/24)+1))
	for _, employeeID := range employees {
		for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
			date := day.Format(worktime.DateLayout)
			if rec, ok := byKey[recordKey{EmployeeID: employeeID, Date: date}]; ok {
				out = append(out, rec)
				continue
			}
			out = append(out, placeholder(identities[employeeID], date, cal))
		}
	}
	return append(out, undated...)
}

func placeholder(identity Record, date string, cal HolidayCalendar) Record {
	rec := Record{
		ID:           RecordID(identity.EmployeeID, date),
		EmployeeID:   identity.EmployeeID,
		EmployeeName: identity.EmployeeName,
		Title:        identity.Title,
		Department:   identity.Department,
		Date:         date,
		WorkType:     WorkTypeWeekday,
		Status:       StatusNormal,
		LogStatus:    LogVacation,
		Note:         NoteGapFilled,
	}
	day, _ := worktime.ParseDate(date)
	switch {
	case cal.IsHoliday(day):
		rec.IsHoliday = true
		rec.WorkType = WorkTypeHoliday
		rec.LogStatus = LogRest
	case worktime.IsWeekend(day):
		rec.WorkType = WorkTypeWeekend
		rec.LogStatus = LogRest
	}
	return rec
}
