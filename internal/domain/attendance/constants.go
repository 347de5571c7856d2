package attendance

const (
	StatusNormal  = "NORMAL"
	StatusWarning = "WARNING"
	StatusError   = "ERROR"
	StatusMissing = "MISSING"

	LogNormal    = "NORMAL"
	LogVacation  = "VACATION"
	LogTrip      = "TRIP"
	LogEducation = "EDUCATION"
	LogSick      = "SICK"
	LogRest      = "REST"
	LogSpecial   = "SPECIAL"
	LogOther     = "OTHER"
	LogBridgeDay = "BRIDGE_DAY"

	WorkTypeWeekday = "WEEKDAY"
	WorkTypeWeekend = "WEEKEND"
	WorkTypeHoliday = "HOLIDAY"

	CompliancePass      = "PASS"
	ComplianceWarning   = "WARNING"
	ComplianceViolation = "VIOLATION"

	MergeOverrides = "OVERRIDES"
	MergeBaseline  = "BASELINE"
	MergeMerged    = "MERGED"

	NoteManualCheck     = "needs manual check"
	NoteMissingStart    = "end time recorded without start time"
	NoteBudgetExhausted = "budget exhausted"
	NoteBudgetTrimmed   = "special work trimmed to weekly budget"
	NoteOutsideWindow   = "special work outside calibratable window"
	NoteNoiseFiltered   = "under 30 minutes of work"
	NoteLaborHoliday    = "labor holiday"
	NoteStandardized    = "reset to standard hours"
	NoteGapFilled       = "no punch data"

	standardWeekMinutes     = 2400
	weeklyComplianceMinutes = 720
	noiseFloorMinutes       = 30
)

var logStatuses = map[string]struct{}{
	LogNormal: {}, LogVacation: {}, LogTrip: {}, LogEducation: {}, LogSick: {},
	LogRest: {}, LogSpecial: {}, LogOther: {}, LogBridgeDay: {},
}

// ValidLogStatus reports whether value is part of the fine-grained taxonomy.
func ValidLogStatus(value string) bool {
	_, ok := logStatuses[value]
	return ok
}

// LogStatuses lists the fine-grained taxonomy in display order.
func LogStatuses() []string {
	return []string{LogNormal, LogVacation, LogTrip, LogEducation, LogSick, LogRest, LogSpecial, LogOther, LogBridgeDay}
}

// explicitSpecial statuses keep weekend/holiday punches instead of zeroing them.
func explicitSpecial(logStatus string) bool {
	switch logStatus {
	case LogSpecial, LogTrip, LogEducation:
		return true
	}
	return false
}

// stickyStatus reports whether a supplied status survives re-derivation.
// NORMAL, OTHER and REST are always derived from the punches.
func stickyStatus(logStatus string) bool {
	switch logStatus {
	case "", LogNormal, LogOther, LogRest:
		return false
	}
	return true
}
