package worktime

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	MinutesPerDay      = 24 * 60
	StandardDayMinutes = 480
)

var clockPattern = regexp.MustCompile(`(\d{1,2}):(\d{2})(?::(\d{2}))?`)

// ParseClock converts "HH:mm" or "HH:mm:ss" into minutes from midnight.
// Seconds are dropped. Anything unparseable yields 0.
func ParseClock(value string) int {
	match := clockPattern.FindStringSubmatch(strings.TrimSpace(value))
	if match == nil {
		return 0
	}
	hours, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	minutes, err := strconv.Atoi(match[2])
	if err != nil || minutes > 59 {
		return 0
	}
	return hours*60 + minutes
}

// SanitizeClock extracts the first HH:mm[:ss] token from a loosely formatted
// cell value. Midnight ("00:00", "0:00") counts as absent.
func SanitizeClock(raw string) (string, bool) {
	match := clockPattern.FindStringSubmatch(raw)
	if match == nil {
		return "", false
	}
	hours, err := strconv.Atoi(match[1])
	if err != nil || hours > 23 {
		return "", false
	}
	minutes, err := strconv.Atoi(match[2])
	if err != nil || minutes > 59 {
		return "", false
	}
	if hours == 0 && minutes == 0 {
		return "", false
	}
	token := fmt.Sprintf("%02d:%02d", hours, minutes)
	if match[3] != "" {
		token += ":" + match[3]
	}
	return token, true
}

func FormatClock(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func FormatClockSeconds(minutes, seconds int) string {
	if seconds < 0 || seconds > 59 {
		seconds = 0
	}
	return fmt.Sprintf("%s:%02d", FormatClock(minutes), seconds)
}

// FormatDuration renders minutes as "Xh Ym".
func FormatDuration(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// BreakMinutes is the fixed statutory deduction for a worked span.
func BreakMinutes(total int) int {
	switch {
	case total >= 480:
		return 60
	case total >= 240:
		return 30
	default:
		return 0
	}
}
