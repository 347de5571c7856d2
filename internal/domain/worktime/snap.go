package worktime

// Snap pulls a punch inside its grace window onto the standard boundary.
// Start times in [clockInCutoff, standardStart+grace] become standardStart;
// end times in [standardEnd, clockOutCutoff] become standardEnd. Zero means a
// missing punch and is never snapped.
func Snap(minutes int, isStart bool, p Policy) int {
	if minutes == 0 {
		return 0
	}
	if isStart {
		if minutes >= p.ClockInCutoff && minutes <= p.StandardStart+p.LateGraceMinutes {
			return p.StandardStart
		}
		return minutes
	}
	if minutes >= p.StandardEnd && minutes <= p.ClockOutCutoff {
		return p.StandardEnd
	}
	return minutes
}

type WorkResult struct {
	ActualWork    int
	TotalDuration int
	BreakDuration int
	SnappedStart  int
	SnappedEnd    int
}

// CalculateActualWork snaps both bounds and deducts the policy break. A
// missing bound means no attendance and zeroes every duration.
func CalculateActualWork(start, end int, p Policy) WorkResult {
	result := WorkResult{
		SnappedStart: Snap(start, true, p),
		SnappedEnd:   Snap(end, false, p),
	}
	if result.SnappedStart == 0 || result.SnappedEnd == 0 {
		return result
	}

	total := result.SnappedEnd - result.SnappedStart
	if total < 0 {
		total = 0
	}
	brk := p.BreakFor(total)
	actual := total - brk
	if actual < 0 {
		actual = 0
	}
	result.TotalDuration = total
	result.BreakDuration = brk
	result.ActualWork = actual
	return result
}

const (
	nightStart = 22 * 60
	nightEnd   = 6 * 60
)

// NightMinutes counts the part of [start, end) that falls between 22:00 and
// 06:00. Spans crossing midnight are expected with end > 24:00.
func NightMinutes(start, end int) int {
	if start <= 0 || end <= start {
		return 0
	}
	total := 0
	for dayOffset := 0; dayOffset <= MinutesPerDay; dayOffset += MinutesPerDay {
		total += overlap(start, end, dayOffset-MinutesPerDay+nightStart, dayOffset+nightEnd)
	}
	total += overlap(start, end, nightStart+MinutesPerDay, 2*MinutesPerDay+nightEnd)
	return total
}

func overlap(a0, a1, b0, b1 int) int {
	lo := max(a0, b0)
	hi := min(a1, b1)
	if hi <= lo {
		return 0
	}
	return hi - lo
}
