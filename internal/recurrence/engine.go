// Package recurrence expands recurring booking rules into concrete calendar
// dates. Expansion is a pure function of the start date and the rule; callers
// re-run it whenever an input changes.
package recurrence

import (
	"errors"
	"fmt"
	"time"
)

// Pattern identifies how a booking repeats.
type Pattern int

const (
	// PatternUnspecified indicates the rule pattern is not set.
	PatternUnspecified Pattern = iota
	// PatternDaily repeats every Frequency days.
	PatternDaily
	// PatternWeekly repeats on the selected weekdays every Frequency weeks.
	PatternWeekly
	// PatternMonthly repeats on the start date's day of month every
	// Frequency months.
	PatternMonthly
	// PatternCustom repeats every Frequency days; the frequency governs
	// spacing only and no weekday filter applies.
	PatternCustom
)

// String returns the lowercase pattern name used on the wire.
func (p Pattern) String() string {
	switch p {
	case PatternDaily:
		return "daily"
	case PatternWeekly:
		return "weekly"
	case PatternMonthly:
		return "monthly"
	case PatternCustom:
		return "custom"
	default:
		return "unspecified"
	}
}

// ParsePattern converts a wire name into a Pattern.
func ParsePattern(value string) (Pattern, error) {
	switch value {
	case "daily":
		return PatternDaily, nil
	case "weekly":
		return PatternWeekly, nil
	case "monthly":
		return PatternMonthly, nil
	case "custom":
		return PatternCustom, nil
	default:
		return PatternUnspecified, fmt.Errorf("%w: %q", ErrInvalidPattern, value)
	}
}

// MonthlyMode selects how a monthly rule anchors its day. Only day-of-month
// is implemented; the weekday-position variant is reserved so adding it later
// stays additive.
type MonthlyMode int

const (
	// MonthlyModeDayOfMonth anchors on the start date's numeric day,
	// clamped to the last day of shorter months.
	MonthlyModeDayOfMonth MonthlyMode = iota
	// MonthlyModeWeekdayPosition is reserved and rejected by Validate.
	MonthlyModeWeekdayPosition
)

// Rule describes a recurrence configuration for a draft booking. Exactly one
// of Count and Until must be set: Count caps the number of occurrences, Until
// bounds the series by an inclusive calendar date.
type Rule struct {
	Pattern     Pattern
	Frequency   int
	Weekdays    []time.Weekday
	MonthlyMode MonthlyMode
	Count       int
	Until       *time.Time
}

var (
	// ErrInvalidPattern indicates an unknown or unset recurrence pattern.
	ErrInvalidPattern = errors.New("recurrence: invalid pattern")
	// ErrInvalidFrequency indicates a non-positive step size.
	ErrInvalidFrequency = errors.New("recurrence: frequency must be positive")
	// ErrEmptyWeekdays indicates a weekly rule without any selected weekday.
	ErrEmptyWeekdays = errors.New("recurrence: weekly rule requires at least one weekday")
	// ErrInvalidCount indicates a non-positive occurrence count.
	ErrInvalidCount = errors.New("recurrence: occurrence count must be positive")
	// ErrEndBeforeStart indicates the rule ends before the series starts.
	ErrEndBeforeStart = errors.New("recurrence: end date is before the start date")
	// ErrAmbiguousEnd indicates the rule carries both or neither of an
	// occurrence count and an end date.
	ErrAmbiguousEnd = errors.New("recurrence: exactly one of count and end date must be set")
	// ErrUnsupportedMonthlyMode indicates the reserved weekday-position
	// monthly variant was requested.
	ErrUnsupportedMonthlyMode = errors.New("recurrence: monthly weekday-position mode is not supported")
	// ErrSpanExceeded indicates expansion hit the safety cap before the end
	// condition was satisfied.
	ErrSpanExceeded = errors.New("recurrence: rule exceeds the supported expansion span")
)

const (
	// maxSpanDays bounds the distance expansion will walk from the start
	// date, keeping every rule terminating even when it can never match.
	maxSpanDays = 5 * 366
	// maxOccurrences bounds the size of a single expanded series; it
	// admits a five-year daily rule.
	maxOccurrences = 2000
)

// Validate reports the first problem with the rule relative to the series
// start date. All failures are ordinary values surfaced to form validation,
// never panics.
func (r Rule) Validate(start time.Time) error {
	switch r.Pattern {
	case PatternDaily, PatternWeekly, PatternMonthly, PatternCustom:
	default:
		return ErrInvalidPattern
	}
	if r.Frequency <= 0 {
		return ErrInvalidFrequency
	}
	if r.Pattern == PatternWeekly && len(r.Weekdays) == 0 {
		return ErrEmptyWeekdays
	}
	if r.Pattern == PatternMonthly && r.MonthlyMode != MonthlyModeDayOfMonth {
		return ErrUnsupportedMonthlyMode
	}

	hasCount := r.Count != 0
	hasUntil := r.Until != nil
	if hasCount == hasUntil {
		return ErrAmbiguousEnd
	}
	if hasCount && (r.Count < 0 || r.Count > maxOccurrences) {
		return ErrInvalidCount
	}
	if hasUntil && DateOnly(*r.Until).Before(DateOnly(start)) {
		return ErrEndBeforeStart
	}
	return nil
}

// Expand produces the ordered, duplicate-free sequence of calendar dates on
// which the rule recurs, starting at start. The end date bound is inclusive:
// an occurrence falling exactly on Until is generated.
func Expand(start time.Time, rule Rule) ([]time.Time, error) {
	if err := rule.Validate(start); err != nil {
		return nil, err
	}

	startDate := DateOnly(start)
	var until time.Time
	if rule.Until != nil {
		until = DateOnly(*rule.Until)
	}

	switch rule.Pattern {
	case PatternDaily, PatternCustom:
		return expandByDays(startDate, rule.Frequency, rule.Count, until)
	case PatternWeekly:
		return expandWeekly(startDate, rule, until)
	case PatternMonthly:
		return expandMonthly(startDate, rule.Frequency, rule.Count, until)
	default:
		return nil, ErrInvalidPattern
	}
}

// expandByDays serves both daily and custom patterns: every visited date is
// included and the frequency governs spacing.
func expandByDays(start time.Time, frequency, count int, until time.Time) ([]time.Time, error) {
	dates := make([]time.Time, 0, boundedCapacity(count))
	current := start
	for {
		done, err := endReached(current, start, len(dates), count, until)
		if err != nil {
			return nil, err
		}
		if done {
			return dates, nil
		}
		dates = append(dates, current)
		current = current.AddDate(0, 0, frequency)
	}
}

// expandWeekly walks day by day and includes a date when its weekday is
// selected and the week containing it lies on the frequency grid relative to
// the start date's week.
func expandWeekly(start time.Time, rule Rule, until time.Time) ([]time.Time, error) {
	selected := make(map[time.Weekday]struct{}, len(rule.Weekdays))
	for _, day := range rule.Weekdays {
		selected[day] = struct{}{}
	}

	dates := make([]time.Time, 0, boundedCapacity(rule.Count))
	current := start
	for offset := 0; ; offset++ {
		done, err := endReached(current, start, len(dates), rule.Count, until)
		if err != nil {
			return nil, err
		}
		if done {
			return dates, nil
		}
		if _, ok := selected[current.Weekday()]; ok && (offset/7)%rule.Frequency == 0 {
			dates = append(dates, current)
		}
		current = current.AddDate(0, 0, 1)
	}
}

// expandMonthly steps whole months at a time, clamping the anchor day to the
// last day of shorter months (Jan 31 recurs on Feb 29 in a leap year).
func expandMonthly(start time.Time, frequency, count int, until time.Time) ([]time.Time, error) {
	dates := make([]time.Time, 0, boundedCapacity(count))
	for step := 0; ; step++ {
		current := addMonthsClamped(start, step*frequency)
		done, err := endReached(current, start, len(dates), count, until)
		if err != nil {
			return nil, err
		}
		if done {
			return dates, nil
		}
		dates = append(dates, current)
	}
}

// endReached decides whether expansion is complete, and distinguishes normal
// completion from hitting the safety cap while the end condition is still
// unsatisfied.
func endReached(current, start time.Time, produced, count int, until time.Time) (bool, error) {
	if count > 0 && produced >= count {
		return true, nil
	}
	if !until.IsZero() && current.After(until) {
		return true, nil
	}
	if daysBetween(start, current) > maxSpanDays || produced >= maxOccurrences {
		return true, ErrSpanExceeded
	}
	return false, nil
}

// DateOnly strips the clock portion, keeping the calendar day in the value's
// own location.
func DateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// SameDate reports whether two values fall on the same calendar day.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// addMonthsClamped adds months to a date keeping its day of month, clamping
// to the target month's last day instead of letting time.AddDate normalize
// Feb 31 into March.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := lastDayOfMonth(first); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}

func lastDayOfMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

func boundedCapacity(count int) int {
	if count > 0 && count <= maxOccurrences {
		return count
	}
	return 16
}
