package attendance

import (
	"timekeeper/internal/domain/worktime"
)

type CorrectionInput struct {
	Punches  []RawPunch
	Policies []worktime.PolicyInput
	Calendar HolidayCalendar
	Options  CalibrationOptions
}

type RunStats struct {
	Punches   int `json:"punches"`
	Records   int `json:"records"`
	Filled    int `json:"filled"`
	Anomalies int `json:"anomalies"`
	Changed   int `json:"changed"`
}

type Result struct {
	Records   []Record                 `json:"records"`
	Changes   map[string][]FieldChange `json:"changes"`
	Summaries []Summary                `json:"summaries"`
	Stats     RunStats                 `json:"stats"`
	cache     *RunCache
}

// Cache exposes the run's cache for follow-up aggregation over the same run.
func (r Result) Cache() *RunCache {
	return r.cache
}

// Correct runs the full correction cycle over one reporting period:
// classify, fill gaps, flag anomalies, calibrate, diff and summarize.
func Correct(in CorrectionInput) Result {
	cache := NewRunCache(in.Calendar)
	policies := worktime.NewPolicySet(in.Policies)

	classified := make([]Record, 0, len(in.Punches))
	for _, punch := range in.Punches {
		policy := worktime.DefaultPolicy()
		if date, ok := worktime.ParseDate(punch.Date); ok {
			policy = policies.ActiveFor(date)
		}
		classified = append(classified, Classify(punch, policy, cache))
	}

	filled := FillMissingDays(classified, cache)
	anomalies := DetectAnomalies(filled)

	before := make([]Record, len(filled))
	copy(before, filled)
	calibrated := Calibrate(filled, policies, cache, in.Options)
	sortRecords(calibrated)

	changes := Diff(before, calibrated)
	return Result{
		Records:   calibrated,
		Changes:   changes,
		Summaries: SummarizeWeeks(calibrated),
		Stats: RunStats{
			Punches:   len(in.Punches),
			Records:   len(calibrated),
			Filled:    max(0, len(filled)-countDistinct(classified)),
			Anomalies: anomalies,
			Changed:   len(changes),
		},
		cache: cache,
	}
}

func countDistinct(records []Record) int {
	seen := make(map[recordKey]struct{}, len(records))
	for _, rec := range records {
		seen[rec.key()] = struct{}{}
	}
	return len(seen)
}
