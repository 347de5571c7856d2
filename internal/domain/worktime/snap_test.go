package worktime

import (
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func TestSnapStart(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"missing", 0, 0},
		{"before cutoff", 8*60 + 10, 8*60 + 10},
		{"at cutoff", 8*60 + 30, 540},
		{"early within window", 8*60 + 52, 540},
		{"inside grace", 9*60 + 10, 540},
		{"late", 9*60 + 11, 9*60 + 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Snap(tt.in, true, p); got != tt.want {
				t.Fatalf("Snap(%d) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestSnapEnd(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"missing", 0, 0},
		{"early leave", 17*60 + 40, 17*60 + 40},
		{"at standard end", 1080, 1080},
		{"inside window", 18*60 + 5, 1080},
		{"at cutoff", 18*60 + 30, 1080},
		{"overtime", 19*60 + 10, 19*60 + 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Snap(tt.in, false, p); got != tt.want {
				t.Fatalf("Snap(%d) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestSnapIdempotent(t *testing.T) {
	policies := []Policy{
		DefaultPolicy(),
		Resolve(PolicyInput{StandardStart: "08:00", StandardEnd: "17:00", ClockInCutoff: "07:00", ClockOutCutoff: "17:45", LateGraceMinutes: intPtr(0)}),
		// Misconfigured cutoff after the standard start.
		Resolve(PolicyInput{StandardStart: "09:00", ClockInCutoff: "09:30"}),
	}
	for _, p := range policies {
		for minute := 0; minute < MinutesPerDay; minute++ {
			for _, isStart := range []bool{true, false} {
				once := Snap(minute, isStart, p)
				if twice := Snap(once, isStart, p); twice != once {
					t.Fatalf("snap not idempotent for %d (start=%v): %d then %d", minute, isStart, once, twice)
				}
			}
		}
	}
}

func TestCalculateActualWork(t *testing.T) {
	p := DefaultPolicy()
	got := CalculateActualWork(ParseClock("08:52"), ParseClock("18:05"), p)
	if got.SnappedStart != 540 || got.SnappedEnd != 1080 {
		t.Fatalf("unexpected snapped bounds: %+v", got)
	}
	if got.TotalDuration != 540 || got.BreakDuration != 60 || got.ActualWork != 480 {
		t.Fatalf("unexpected durations: %+v", got)
	}
}

func TestCalculateActualWorkMissingBound(t *testing.T) {
	p := DefaultPolicy()
	got := CalculateActualWork(0, ParseClock("19:10"), p)
	if got.TotalDuration != 0 || got.BreakDuration != 0 || got.ActualWork != 0 {
		t.Fatalf("expected zero durations, got %+v", got)
	}
	if got.SnappedEnd != ParseClock("19:10") {
		t.Fatalf("expected end to pass through, got %d", got.SnappedEnd)
	}
}

func TestBreakTiering(t *testing.T) {
	policies := []Policy{
		DefaultPolicy(),
		Resolve(PolicyInput{BreakTime4hDeduction: intPtr(45), BreakTime8hDeduction: intPtr(90)}),
		Resolve(PolicyInput{BreakTimeMinutes: intPtr(60)}),
	}
	for _, p := range policies {
		for start := 300; start < 700; start += 7 {
			for end := start; end < start+720; end += 11 {
				got := CalculateActualWork(start, end, p)
				if got.ActualWork != max(0, got.TotalDuration-got.BreakDuration) {
					t.Fatalf("duration invariant broken: %+v", got)
				}
				switch total := got.TotalDuration; {
				case total >= 480:
					if got.BreakDuration != 60 && got.BreakDuration != p.Break8h {
						t.Fatalf("8h tier break %d for total %d", got.BreakDuration, total)
					}
				case total >= 240:
					if got.BreakDuration != 30 && got.BreakDuration != p.Break4h {
						t.Fatalf("4h tier break %d for total %d", got.BreakDuration, total)
					}
				default:
					if got.BreakDuration != 0 {
						t.Fatalf("expected no break for total %d, got %d", total, got.BreakDuration)
					}
				}
			}
		}
	}
}

func TestResolveBreakPrecedence(t *testing.T) {
	granular := Resolve(PolicyInput{BreakTime8hDeduction: intPtr(75), BreakTimeMinutes: intPtr(20)})
	if granular.BreakRule != BreakRuleGranular || granular.Break8h != 75 || granular.Break4h != 30 {
		t.Fatalf("unexpected granular resolution: %+v", granular)
	}
	legacy := Resolve(PolicyInput{BreakTimeMinutes: intPtr(45)})
	if legacy.BreakRule != BreakRuleLegacy || legacy.Break8h != 45 || legacy.Break4h != 45 {
		t.Fatalf("unexpected legacy resolution: %+v", legacy)
	}
	def := Resolve(PolicyInput{})
	if def.BreakRule != BreakRuleDefault || def.StandardStart != 540 || def.MaxWeeklyOvertimeMinutes != 720 {
		t.Fatalf("unexpected default resolution: %+v", def)
	}
}

func TestPolicySetActiveFor(t *testing.T) {
	set := NewPolicySet([]PolicyInput{
		{EffectiveDate: "2025-03-01", StandardStart: "08:30"},
		{EffectiveDate: "2025-01-01", StandardStart: "10:00"},
		{EffectiveDate: "not-a-date", StandardStart: "07:00"},
	})
	if set.Len() != 2 {
		t.Fatalf("expected 2 valid policies, got %d", set.Len())
	}

	before := set.ActiveFor(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	if before.StandardStart != 540 || before.EffectiveDate != "" {
		t.Fatalf("expected default policy before first effective date, got %+v", before)
	}
	jan := set.ActiveFor(time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC))
	if jan.StandardStart != 600 {
		t.Fatalf("expected january policy, got %+v", jan)
	}
	march := set.ActiveFor(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	if march.StandardStart != 510 {
		t.Fatalf("expected march policy on its effective date, got %+v", march)
	}
}

func TestNightMinutes(t *testing.T) {
	if got := NightMinutes(540, 1080); got != 0 {
		t.Fatalf("expected no night minutes, got %d", got)
	}
	if got := NightMinutes(20*60, 23*60); got != 60 {
		t.Fatalf("expected 60 night minutes, got %d", got)
	}
	if got := NightMinutes(5*60, 7*60); got != 60 {
		t.Fatalf("expected 60 early minutes, got %d", got)
	}
	if got := NightMinutes(21*60, 24*60+120); got != 240 {
		t.Fatalf("expected 240 minutes across midnight, got %d", got)
	}
}
