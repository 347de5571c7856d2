package attendance

import "sort"

// groupByEmployee returns record indexes per employee, each list sorted by date.
func groupByEmployee(records []Record) (map[string][]int, []string) {
	groups := make(map[string][]int)
	var order []string
	for i, rec := range records {
		if _, ok := groups[rec.EmployeeID]; !ok {
			order = append(order, rec.EmployeeID)
		}
		groups[rec.EmployeeID] = append(groups[rec.EmployeeID], i)
	}
	for _, idx := range groups {
		sort.SliceStable(idx, func(a, b int) bool {
			return records[idx[a]].Date < records[idx[b]].Date
		})
	}
	sort.Strings(order)
	return groups, order
}

// DetectAnomalies flags records whose end punch has no matching start punch.
// Flagged records keep their punches for review but carry no work time, so the
// calibrator leaves them out of the weekly budget. Returns the flagged count.
func DetectAnomalies(records []Record) int {
	groups, order := groupByEmployee(records)
	flagged := 0
	for _, employeeID := range order {
		for _, i := range groups[employeeID] {
			rec := &records[i]
			if rec.StartTime != 0 || rec.EndTime <= 0 {
				continue
			}
			rec.Status = StatusError
			rec.LogStatus = LogOther
			rec.TotalDuration = 0
			rec.BreakDuration = 0
			rec.ActualWorkDuration = 0
			rec.OvertimeDuration = 0
			rec.SpecialWorkMinutes = 0
			rec.NightWorkMinutes = 0
			rec.Note = appendNote(rec.Note, NoteMissingStart)
			flagged++
		}
	}
	return flagged
}

func appendNote(existing, note string) string {
	switch {
	case existing == "":
		return note
	case existing == note:
		return existing
	default:
		return existing + "; " + note
	}
}
