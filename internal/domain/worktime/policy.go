package worktime

import (
	"sort"
	"strings"
	"time"
)

// PolicyInput is a work-time policy as stored or configured. Optional fields
// are pointers; Resolve turns it into a fully populated Policy.
type PolicyInput struct {
	ID                       string `json:"id,omitempty" yaml:"id,omitempty"`
	EffectiveDate            string `json:"effectiveDate" yaml:"effective_date"`
	StandardStart            string `json:"standardStartTime,omitempty" yaml:"standard_start_time,omitempty"`
	StandardEnd              string `json:"standardEndTime,omitempty" yaml:"standard_end_time,omitempty"`
	ClockInCutoff            string `json:"clockInCutoffTime,omitempty" yaml:"clock_in_cutoff_time,omitempty"`
	ClockOutCutoff           string `json:"clockOutCutoffTime,omitempty" yaml:"clock_out_cutoff_time,omitempty"`
	LateGraceMinutes         *int   `json:"lateClockInGraceMinutes,omitempty" yaml:"late_clock_in_grace_minutes,omitempty"`
	BreakTime4hDeduction     *int   `json:"breakTime4hDeduction,omitempty" yaml:"break_time_4h_deduction,omitempty"`
	BreakTime8hDeduction     *int   `json:"breakTime8hDeduction,omitempty" yaml:"break_time_8h_deduction,omitempty"`
	BreakTimeMinutes         *int   `json:"breakTimeMinutes,omitempty" yaml:"break_time_minutes,omitempty"`
	MaxWeeklyOvertimeMinutes *int   `json:"maxWeeklyOvertimeMinutes,omitempty" yaml:"max_weekly_overtime_minutes,omitempty"`
	DisableSnap              bool   `json:"disableSnap,omitempty" yaml:"disable_snap,omitempty"`
}

type BreakRule string

const (
	BreakRuleGranular BreakRule = "granular"
	BreakRuleLegacy   BreakRule = "legacy"
	BreakRuleDefault  BreakRule = "default"
)

// Policy is a resolved policy. All times are minutes from midnight.
type Policy struct {
	ID                       string
	EffectiveDate            string
	StandardStart            int
	StandardEnd              int
	ClockInCutoff            int
	ClockOutCutoff           int
	LateGraceMinutes         int
	Break4h                  int
	Break8h                  int
	BreakRule                BreakRule
	MaxWeeklyOvertimeMinutes int
	DisableSnap              bool
}

const (
	defaultStandardStart     = 9 * 60
	defaultStandardEnd       = 18 * 60
	defaultClockInCutoff     = 8*60 + 30
	defaultClockOutCutoff    = 18*60 + 30
	defaultLateGrace         = 10
	defaultBreak4h           = 30
	defaultBreak8h           = 60
	defaultMaxWeeklyOvertime = 720
)

// DefaultPolicy applies when no configured policy covers a date.
func DefaultPolicy() Policy {
	return Policy{
		StandardStart:            defaultStandardStart,
		StandardEnd:              defaultStandardEnd,
		ClockInCutoff:            defaultClockInCutoff,
		ClockOutCutoff:           defaultClockOutCutoff,
		LateGraceMinutes:         defaultLateGrace,
		Break4h:                  defaultBreak4h,
		Break8h:                  defaultBreak8h,
		BreakRule:                BreakRuleDefault,
		MaxWeeklyOvertimeMinutes: defaultMaxWeeklyOvertime,
	}
}

// Resolve fills every unset field from the default policy. Granular break
// deductions win over the legacy flat break, which applies to both tiers.
func Resolve(in PolicyInput) Policy {
	p := DefaultPolicy()
	p.ID = in.ID
	p.EffectiveDate = strings.TrimSpace(in.EffectiveDate)
	p.DisableSnap = in.DisableSnap

	p.StandardStart = clockOr(in.StandardStart, p.StandardStart)
	p.StandardEnd = clockOr(in.StandardEnd, p.StandardEnd)
	p.ClockInCutoff = clockOr(in.ClockInCutoff, p.ClockInCutoff)
	p.ClockOutCutoff = clockOr(in.ClockOutCutoff, p.ClockOutCutoff)
	if in.LateGraceMinutes != nil && *in.LateGraceMinutes >= 0 {
		p.LateGraceMinutes = *in.LateGraceMinutes
	}
	if in.MaxWeeklyOvertimeMinutes != nil && *in.MaxWeeklyOvertimeMinutes >= 0 {
		p.MaxWeeklyOvertimeMinutes = *in.MaxWeeklyOvertimeMinutes
	}

	switch {
	case in.BreakTime4hDeduction != nil || in.BreakTime8hDeduction != nil:
		p.BreakRule = BreakRuleGranular
		if in.BreakTime4hDeduction != nil && *in.BreakTime4hDeduction >= 0 {
			p.Break4h = *in.BreakTime4hDeduction
		}
		if in.BreakTime8hDeduction != nil && *in.BreakTime8hDeduction >= 0 {
			p.Break8h = *in.BreakTime8hDeduction
		}
	case in.BreakTimeMinutes != nil && *in.BreakTimeMinutes >= 0:
		p.BreakRule = BreakRuleLegacy
		p.Break4h = *in.BreakTimeMinutes
		p.Break8h = *in.BreakTimeMinutes
	}
	return p
}

func clockOr(value string, fallback int) int {
	token, ok := SanitizeClock(value)
	if !ok {
		return fallback
	}
	return ParseClock(token)
}

// BreakFor returns the deduction for a total span under this policy.
func (p Policy) BreakFor(total int) int {
	switch {
	case total >= 480:
		return p.Break8h
	case total >= 240:
		return p.Break4h
	default:
		return 0
	}
}

// StandardDayMinutes is the net length of the policy's standard day.
func (p Policy) StandardDayMinutes() int {
	total := p.StandardEnd - p.StandardStart
	if total < 0 {
		return 0
	}
	return total - p.BreakFor(total)
}

// PolicySet selects the active policy for a date.
type PolicySet struct {
	policies []Policy
}

func NewPolicySet(inputs []PolicyInput) PolicySet {
	set := PolicySet{policies: make([]Policy, 0, len(inputs))}
	for _, in := range inputs {
		p := Resolve(in)
		if _, ok := ParseDate(p.EffectiveDate); !ok {
			continue
		}
		set.policies = append(set.policies, p)
	}
	sort.SliceStable(set.policies, func(i, j int) bool {
		return set.policies[i].EffectiveDate < set.policies[j].EffectiveDate
	})
	return set
}

// ActiveFor returns the latest policy effective on or before date, or the
// default policy when none is.
func (s PolicySet) ActiveFor(date time.Time) Policy {
	day := date.Format(DateLayout)
	active := DefaultPolicy()
	for _, p := range s.policies {
		if p.EffectiveDate > day {
			break
		}
		active = p
	}
	return active
}

func (s PolicySet) Len() int {
	return len(s.policies)
}
