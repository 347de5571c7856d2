package attendance

import "timekeeper/internal/domain/worktime"

// Recalculate rebuilds a record from its current display strings, as after a
// single-cell edit. Statuses that classification cannot derive on its own are
// carried over; derived ones are recomputed. Running it on classifier output
// reproduces the same record.
func Recalculate(rec Record, p worktime.Policy, cal HolidayCalendar) Record {
	explicit := ""
	if stickyStatus(rec.LogStatus) {
		explicit = rec.LogStatus
	}
	out := Classify(RawPunch{
		EmployeeID:   rec.EmployeeID,
		EmployeeName: rec.EmployeeName,
		Title:        rec.Title,
		Department:   rec.Department,
		Date:         rec.Date,
		ClockIn:      rec.StartDisplay,
		ClockOut:     rec.EndDisplay,
		LogStatus:    explicit,
	}, p, cal)
	out.ID = rec.ID
	out.OriginalStart = rec.OriginalStart
	out.OriginalEnd = rec.OriginalEnd
	return out
}
