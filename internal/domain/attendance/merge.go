package attendance

import (
	"sort"
	"strings"
)

// Merge combines the baseline stream with the override stream. In MERGED mode
// an override replaces its baseline counterpart only when it carries work, so
// an empty override never erases a meaningful baseline day. Records taken from
// the override stream are tagged SPECIAL. Output is sorted by date, employee.
func Merge(baseline, overrides []Record, mode string) []Record {
	var out []Record
	switch strings.ToUpper(strings.TrimSpace(mode)) {
	case MergeOverrides:
		out = make([]Record, 0, len(overrides))
		for _, rec := range overrides {
			out = append(out, fromOverride(rec))
		}
	case MergeBaseline:
		out = make([]Record, len(baseline))
		copy(out, baseline)
	default:
		out = mergeStreams(baseline, overrides)
	}
	sortRecords(out)
	return out
}

func mergeStreams(baseline, overrides []Record) []Record {
	out := make([]Record, 0, len(baseline)+len(overrides))
	index := make(map[recordKey]int, len(baseline))
	for _, rec := range baseline {
		if i, ok := index[rec.key()]; ok {
			out[i] = rec
			continue
		}
		index[rec.key()] = len(out)
		out = append(out, rec)
	}

	for _, rec := range overrides {
		hasWork := rec.ActualWorkDuration > 0 || rec.OvertimeDuration > 0
		i, exists := index[rec.key()]
		switch {
		case hasWork && exists:
			out[i] = fromOverride(rec)
		case hasWork:
			index[rec.key()] = len(out)
			out = append(out, fromOverride(rec))
		case exists:
			continue
		case rec.LogStatus == LogRest:
			continue
		default:
			index[rec.key()] = len(out)
			out = append(out, fromOverride(rec))
		}
	}
	return out
}

func fromOverride(rec Record) Record {
	rec.LogStatus = LogSpecial
	return rec
}

func sortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date < records[j].Date
		}
		return records[i].EmployeeID < records[j].EmployeeID
	})
}
