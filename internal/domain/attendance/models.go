package attendance

import (
	"time"

	"github.com/google/uuid"
)

// RawPunch is one employee-day as delivered by ingestion.
type RawPunch struct {
	EmployeeID   string `json:"employeeId"`
	EmployeeName string `json:"employeeName"`
	Title        string `json:"title,omitempty"`
	Department   string `json:"department,omitempty"`
	Date         string `json:"date"`
	ClockIn      string `json:"clockIn"`
	ClockOut     string `json:"clockOut"`
	LogStatus    string `json:"logStatus,omitempty"`
}

// Record is the processed attendance row for one (employee, date).
type Record struct {
	ID           string `json:"id"`
	EmployeeID   string `json:"employeeId"`
	EmployeeName string `json:"employeeName"`
	Title        string `json:"title,omitempty"`
	Department   string `json:"department,omitempty"`
	Date         string `json:"date"`

	StartTime     int    `json:"startTime"`
	EndTime       int    `json:"endTime"`
	StartDisplay  string `json:"startTimeDisplay"`
	EndDisplay    string `json:"endTimeDisplay"`
	OriginalStart string `json:"originalStartTime"`
	OriginalEnd   string `json:"originalEndTime"`

	TotalDuration      int `json:"totalDuration"`
	BreakDuration      int `json:"breakDuration"`
	ActualWorkDuration int `json:"actualWorkDuration"`
	OvertimeDuration   int `json:"overtimeDuration"`
	SpecialWorkMinutes int `json:"specialWorkMinutes"`
	NightWorkMinutes   int `json:"nightWorkMinutes"`

	WorkType  string `json:"workType"`
	IsHoliday bool   `json:"isHoliday"`
	Status    string `json:"status"`
	LogStatus string `json:"logStatus"`
	Note      string `json:"note,omitempty"`
}

// IsSpecialDay reports whether the record falls on a weekend or holiday.
func (r Record) IsSpecialDay() bool {
	return r.WorkType == WorkTypeWeekend || r.WorkType == WorkTypeHoliday
}

func (r Record) key() recordKey {
	return recordKey{EmployeeID: r.EmployeeID, Date: r.Date}
}

type recordKey struct {
	EmployeeID string
	Date       string
}

// Summary is a per-employee compliance rollup over a window of records.
type Summary struct {
	EmployeeID         string `json:"employeeId"`
	EmployeeName       string `json:"employeeName"`
	Key                string `json:"key"`
	Period             string `json:"period,omitempty"`
	ClosingDate        string `json:"closingDate,omitempty"`
	TotalWorkMinutes   int    `json:"totalWorkMinutes"`
	WeekdayWorkMinutes int    `json:"weekdayWorkMinutes"`
	BasicWorkMinutes   int    `json:"basicWorkMinutes"`
	OvertimeMinutes    int    `json:"overtimeMinutes"`
	SpecialWorkMinutes int    `json:"specialWorkMinutes"`
	Compliance         string `json:"complianceStatus"`
}

// FieldChange is one edited cell between two generations of a record.
type FieldChange struct {
	Field  string `json:"field"`
	Before any    `json:"before"`
	After  any    `json:"after"`
}

// HolidayCalendar answers whether a calendar day is a public holiday.
type HolidayCalendar interface {
	IsHoliday(date time.Time) bool
}

type noHolidays struct{}

func (noHolidays) IsHoliday(time.Time) bool { return false }

func calendarOrEmpty(cal HolidayCalendar) HolidayCalendar {
	if cal == nil {
		return noHolidays{}
	}
	return cal
}

var recordNamespace = uuid.MustParse("6f1c52a4-3f0e-4c55-9d1e-8a52b1f0c7a1")

// RecordID is stable for an (employee, date) pair so that display seeds and
// change logs survive recomputation.
func RecordID(employeeID, date string) string {
	return uuid.NewSHA1(recordNamespace, []byte(employeeID+"|"+date)).String()
}
