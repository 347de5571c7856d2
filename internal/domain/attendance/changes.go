package attendance

type fieldAccessor struct {
	name string
	get  func(Record) any
}

var trackedFields = []fieldAccessor{
	{"startTimeDisplay", func(r Record) any { return r.StartDisplay }},
	{"endTimeDisplay", func(r Record) any { return r.EndDisplay }},
	{"totalDuration", func(r Record) any { return r.TotalDuration }},
	{"breakDuration", func(r Record) any { return r.BreakDuration }},
	{"actualWorkDuration", func(r Record) any { return r.ActualWorkDuration }},
	{"overtimeDuration", func(r Record) any { return r.OvertimeDuration }},
	{"specialWorkMinutes", func(r Record) any { return r.SpecialWorkMinutes }},
	{"status", func(r Record) any { return r.Status }},
	{"logStatus", func(r Record) any { return r.LogStatus }},
}

// Diff compares two generations of the same record set and returns the edited
// fields keyed by record id. Records missing from either side are skipped.
func Diff(before, after []Record) map[string][]FieldChange {
	previous := make(map[string]Record, len(before))
	for _, rec := range before {
		previous[rec.ID] = rec
	}
	changes := make(map[string][]FieldChange)
	for _, rec := range after {
		old, ok := previous[rec.ID]
		if !ok {
			continue
		}
		if fields := DiffRecord(old, rec); len(fields) > 0 {
			changes[rec.ID] = fields
		}
	}
	return changes
}

func DiffRecord(before, after Record) []FieldChange {
	var fields []FieldChange
	for _, field := range trackedFields {
		b, a := field.get(before), field.get(after)
		if b != a {
			fields = append(fields, FieldChange{Field: field.name, Before: b, After: a})
		}
	}
	return fields
}
