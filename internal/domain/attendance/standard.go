package attendance

import "timekeeper/internal/domain/worktime"

const displayBandMinutes = 29

// StandardCalibration resets a weekday record to the policy's standard window
// and drops its measured overtime. The displayed punches land a little before
// the start and a little after the end so they never read exactly on the hour.
func StandardCalibration(rec *Record, p worktime.Policy) {
	rec.StartTime = p.StandardStart
	rec.EndTime = p.StandardEnd
	rec.TotalDuration = max(0, p.StandardEnd-p.StandardStart)
	rec.BreakDuration = p.BreakFor(rec.TotalDuration)
	rec.ActualWorkDuration = max(0, rec.TotalDuration-rec.BreakDuration)
	rec.OvertimeDuration = 0
	rec.SpecialWorkMinutes = 0
	rec.NightWorkMinutes = worktime.NightMinutes(rec.StartTime, rec.EndTime)

	shownStart := bandMinute(rec.ID, "start", max(1, p.StandardStart-displayBandMinutes), p.StandardStart)
	shownEnd := bandMinute(rec.ID, "end", p.StandardEnd, p.StandardEnd+displayBandMinutes)
	rec.StartDisplay = stampClock(shownStart, rec.ID, "start")
	rec.EndDisplay = stampClock(shownEnd, rec.ID, "end")
	rec.Note = appendNote(rec.Note, NoteStandardized)
}
