package attendance

import (
	"sort"

	"timekeeper/internal/domain/worktime"
)

// Summarize rolls one employee's records into a compliance summary keyed by
// the earliest date in the set.
func Summarize(records []Record) Summary {
	var summary Summary
	for _, rec := range records {
		if summary.EmployeeID == "" {
			summary.EmployeeID = rec.EmployeeID
			summary.EmployeeName = rec.EmployeeName
		}
		if summary.Key == "" || rec.Date < summary.Key {
			summary.Key = rec.Date
		}
		summary.TotalWorkMinutes += rec.ActualWorkDuration
		if onSpecialDay(rec) {
			summary.SpecialWorkMinutes += rec.ActualWorkDuration
		}
	}
	summary.WeekdayWorkMinutes = summary.TotalWorkMinutes - summary.SpecialWorkMinutes
	summary.BasicWorkMinutes = min(summary.WeekdayWorkMinutes, standardWeekMinutes)
	summary.OvertimeMinutes = max(0, summary.WeekdayWorkMinutes-standardWeekMinutes)
	summary.Compliance = complianceVerdict(summary.OvertimeMinutes, summary.SpecialWorkMinutes)
	return summary
}

// complianceVerdict never yields WARNING; no threshold for it is defined.
func complianceVerdict(overtime, special int) string {
	if overtime+special > weeklyComplianceMinutes {
		return ComplianceViolation
	}
	return CompliancePass
}

func onSpecialDay(rec Record) bool {
	if rec.IsSpecialDay() || rec.IsHoliday {
		return true
	}
	date, ok := worktime.ParseDate(rec.Date)
	return ok && worktime.IsWeekend(date)
}

// SummarizeWeeks produces one summary per employee and week.
func SummarizeWeeks(records []Record) []Summary {
	return summarizeBy(records, func(date string) string {
		day, ok := worktime.ParseDate(date)
		if !ok {
			return ""
		}
		return worktime.WeekID(day)
	}, nil)
}

// SummarizeMonths produces one summary per employee and calendar month. The
// closing date is the month's last working day.
func SummarizeMonths(records []Record, cache *RunCache) []Summary {
	if cache == nil {
		cache = NewRunCache(nil)
	}
	return summarizeBy(records, func(date string) string {
		if len(date) < 7 {
			return ""
		}
		return date[:7]
	}, func(summary *Summary) {
		day, ok := worktime.ParseDate(summary.Period + "-01")
		if ok {
			summary.ClosingDate = cache.LastWorkingDay(day.Year(), day.Month())
		}
	})
}

func summarizeBy(records []Record, period func(date string) string, finish func(*Summary)) []Summary {
	type bucket struct {
		employeeID string
		period     string
		records    []Record
	}
	buckets := make(map[string]*bucket)
	var keys []string
	for _, rec := range records {
		p := period(rec.Date)
		if p == "" {
			continue
		}
		key := rec.EmployeeID + "|" + p
		b, ok := buckets[key]
		if !ok {
			b = &bucket{employeeID: rec.EmployeeID, period: p}
			buckets[key] = b
			keys = append(keys, key)
		}
		b.records = append(b.records, rec)
	}

	out := make([]Summary, 0, len(keys))
	for _, key := range keys {
		b := buckets[key]
		summary := Summarize(b.records)
		summary.Period = b.period
		if finish != nil {
			finish(&summary)
		}
		out = append(out, summary)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Period != out[j].Period {
			return out[i].Period < out[j].Period
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out
}
