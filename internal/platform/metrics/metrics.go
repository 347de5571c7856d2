package metrics

import (
	"sync/atomic"
	"time"
)

// Collector keeps process-lifetime counters for requests and correction runs.
type Collector struct {
	totalRequests   atomic.Uint64
	errorRequests   atomic.Uint64
	rateLimited     atomic.Uint64
	totalDurationMs atomic.Uint64

	correctionRuns    atomic.Uint64
	correctedRecords  atomic.Uint64
	flaggedAnomalies  atomic.Uint64
	calibratedRecords atomic.Uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	c.totalRequests.Add(1)
	if status >= 500 {
		c.errorRequests.Add(1)
	}
	if status == 429 {
		c.rateLimited.Add(1)
	}
	c.totalDurationMs.Add(uint64(max(duration.Milliseconds(), 0)))
}

// RecordCorrection counts one finished correction run.
func (c *Collector) RecordCorrection(records, anomalies, changed int) {
	c.correctionRuns.Add(1)
	c.correctedRecords.Add(uint64(max(records, 0)))
	c.flaggedAnomalies.Add(uint64(max(anomalies, 0)))
	c.calibratedRecords.Add(uint64(max(changed, 0)))
}

func (c *Collector) Snapshot() map[string]any {
	total := c.totalRequests.Load()
	totalMs := c.totalDurationMs.Load()
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":          total,
		"errorsTotal":            c.errorRequests.Load(),
		"rateLimitedTotal":       c.rateLimited.Load(),
		"avgDurationMs":          avg,
		"totalDurationMs":        totalMs,
		"correctionRunsTotal":    c.correctionRuns.Load(),
		"correctedRecordsTotal":  c.correctedRecords.Load(),
		"anomaliesTotal":         c.flaggedAnomalies.Load(),
		"calibratedRecordsTotal": c.calibratedRecords.Load(),
	}
}
