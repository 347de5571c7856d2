package attendance

import (
	"hash/fnv"
	"math/rand/v2"

	"timekeeper/internal/domain/worktime"
)

const displayStream = 0x9e3779b97f4a7c15

func hash32(parts ...string) uint32 {
	h := fnv.New32a()
	for i, part := range parts {
		if i > 0 {
			_, _ = h.Write([]byte{'|'})
		}
		_, _ = h.Write([]byte(part))
	}
	return h.Sum32()
}

// employeeBuffer is the per-employee margin under the weekly cap, in [10, 30].
func employeeBuffer(employeeID string) int {
	return 10 + int(hash32(employeeID)%21)
}

func displayRand(recordID, field string) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(hash32(recordID, field)), displayStream))
}

// displaySeconds picks a non-zero second for a displayed punch.
func displaySeconds(recordID, field string) int {
	return 1 + displayRand(recordID, field+":sec").IntN(59)
}

// bandMinute picks a minute in [lo, hi] for a displayed punch.
func bandMinute(recordID, field string, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + displayRand(recordID, field+":min").IntN(hi-lo+1)
}

// stampClock renders minutes with seeded seconds. Cosmetic only: arithmetic
// always uses the minute value.
func stampClock(minutes int, recordID, field string) string {
	if minutes <= 0 {
		return ""
	}
	return worktime.FormatClockSeconds(minutes, displaySeconds(recordID, field))
}
