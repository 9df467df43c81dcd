package recurrence

import (
	"errors"
	"testing"
	"time"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := date(year, month, day)
	return &d
}

func assertDates(t *testing.T, got []time.Time, want []time.Time) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d dates, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("dates[%d] = %s, want %s", i, got[i].Format("2006-01-02"), want[i].Format("2006-01-02"))
		}
	}
}

func TestExpandDaily(t *testing.T) {
	t.Parallel()

	t.Run("count mode yields consecutive dates", func(t *testing.T) {
		t.Parallel()

		dates, err := Expand(date(2024, time.January, 1), Rule{Pattern: PatternDaily, Frequency: 1, Count: 4})
		if err != nil {
			t.Fatalf("Expand: %v", err)
		}
		assertDates(t, dates, []time.Time{
			date(2024, time.January, 1),
			date(2024, time.January, 2),
			date(2024, time.January, 3),
			date(2024, time.January, 4),
		})
	})

	t.Run("end date is inclusive", func(t *testing.T) {
		t.Parallel()

		dates, err := Expand(date(2024, time.January, 1), Rule{
			Pattern:   PatternDaily,
			Frequency: 1,
			Until:     datePtr(2024, time.January, 5),
		})
		if err != nil {
			t.Fatalf("Expand: %v", err)
		}
		if len(dates) != 5 {
			t.Fatalf("got %d dates, want 5 (boundary date must be generated)", len(dates))
		}
		if !dates[4].Equal(date(2024, time.January, 5)) {
			t.Errorf("last date = %s, want the end date itself", dates[4].Format("2006-01-02"))
		}
	})

	t.Run("frequency spaces occurrences", func(t *testing.T) {
		t.Parallel()

		dates, err := Expand(date(2024, time.February, 1), Rule{Pattern: PatternDaily, Frequency: 3, Count: 3})
		if err != nil {
			t.Fatalf("Expand: %v", err)
		}
		assertDates(t, dates, []time.Time{
			date(2024, time.February, 1),
			date(2024, time.February, 4),
			date(2024, time.February, 7),
		})
	})
}

func TestExpandWeekly(t *testing.T) {
	t.Parallel()

	t.Run("selected weekdays across weeks", func(t *testing.T) {
		t.Parallel()

		// 2024-01-01 is a Monday.
		dates, err := Expand(date(2024, time.January, 1), Rule{
			Pattern:   PatternWeekly,
			Frequency: 1,
			Weekdays:  []time.Weekday{time.Monday, time.Wednesday},
			Count:     6,
		})
		if err != nil {
			t.Fatalf("Expand: %v", err)
		}
		assertDates(t, dates, []time.Time{
			date(2024, time.January, 1),
			date(2024, time.January, 3),
			date(2024, time.January, 8),
			date(2024, time.January, 10),
			date(2024, time.January, 15),
			date(2024, time.January, 17),
		})
	})

	t.Run("multi-week frequency skips off-grid weeks", func(t *testing.T) {
		t.Parallel()

		dates, err := Expand(date(2024, time.January, 1), Rule{
			Pattern:   PatternWeekly,
			Frequency: 2,
			Weekdays:  []time.Weekday{time.Monday, time.Wednesday},
			Count:     4,
		})
		if err != nil {
			t.Fatalf("Expand: %v", err)
		}
		assertDates(t, dates, []time.Time{
			date(2024, time.January, 1),
			date(2024, time.January, 3),
			date(2024, time.January, 15),
			date(2024, time.January, 17),
		})
	})

	t.Run("start mid-week only hits remaining selected days", func(t *testing.T) {
		t.Parallel()

		// 2024-01-04 is a Thursday; Monday of that week is already past.
		dates, err := Expand(date(2024, time.January, 4), Rule{
			Pattern:   PatternWeekly,
			Frequency: 1,
			Weekdays:  []time.Weekday{time.Monday, time.Friday},
			Count:     3,
		})
		if err != nil {
			t.Fatalf("Expand: %v", err)
		}
		assertDates(t, dates, []time.Time{
			date(2024, time.January, 5),
			date(2024, time.January, 8),
			date(2024, time.January, 12),
		})
	})

	t.Run("weekday numbering is Sunday based", func(t *testing.T) {
		t.Parallel()

		// A Sunday-only rule starting Monday begins the following Sunday.
		dates, err := Expand(date(2024, time.January, 1), Rule{
			Pattern:   PatternWeekly,
			Frequency: 1,
			Weekdays:  []time.Weekday{time.Sunday},
			Count:     2,
		})
		if err != nil {
			t.Fatalf("Expand: %v", err)
		}
		assertDates(t, dates, []time.Time{
			date(2024, time.January, 7),
			date(2024, time.January, 14),
		})
	})
}

func TestExpandMonthly(t *testing.T) {
	t.Parallel()

	t.Run("clamps to the last day of shorter months", func(t *testing.T) {
		t.Parallel()

		dates, err := Expand(date(2024, time.January, 31), Rule{Pattern: PatternMonthly, Frequency: 1, Count: 3})
		if err != nil {
			t.Fatalf("Expand: %v", err)
		}
		assertDates(t, dates, []time.Time{
			date(2024, time.January, 31),
			date(2024, time.February, 29), // leap year clamp
			date(2024, time.March, 31),
		})
	})

	t.Run("non-leap February clamps to the 28th", func(t *testing.T) {
		t.Parallel()

		dates, err := Expand(date(2025, time.January, 31), Rule{Pattern: PatternMonthly, Frequency: 1, Count: 2})
		if err != nil {
			t.Fatalf("Expand: %v", err)
		}
		assertDates(t, dates, []time.Time{
			date(2025, time.January, 31),
			date(2025, time.February, 28),
		})
	})

	t.Run("frequency steps whole months", func(t *testing.T) {
		t.Parallel()

		dates, err := Expand(date(2024, time.March, 15), Rule{Pattern: PatternMonthly, Frequency: 3, Count: 3})
		if err != nil {
			t.Fatalf("Expand: %v", err)
		}
		assertDates(t, dates, []time.Time{
			date(2024, time.March, 15),
			date(2024, time.June, 15),
			date(2024, time.September, 15),
		})
	})

	t.Run("end date bounds the series inclusively", func(t *testing.T) {
		t.Parallel()

		dates, err := Expand(date(2024, time.January, 10), Rule{
			Pattern:   PatternMonthly,
			Frequency: 1,
			Until:     datePtr(2024, time.March, 10),
		})
		if err != nil {
			t.Fatalf("Expand: %v", err)
		}
		if len(dates) != 3 {
			t.Fatalf("got %d dates, want 3", len(dates))
		}
	})
}

func TestExpandCustom(t *testing.T) {
	t.Parallel()

	dates, err := Expand(date(2024, time.January, 1), Rule{Pattern: PatternCustom, Frequency: 10, Count: 3})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	assertDates(t, dates, []time.Time{
		date(2024, time.January, 1),
		date(2024, time.January, 11),
		date(2024, time.January, 21),
	})
}

func TestExpandOrdering(t *testing.T) {
	t.Parallel()

	dates, err := Expand(date(2024, time.January, 4), Rule{
		Pattern:   PatternWeekly,
		Frequency: 1,
		Weekdays:  []time.Weekday{time.Friday, time.Monday, time.Wednesday},
		Count:     9,
	})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	for i := 1; i < len(dates); i++ {
		if !dates[i-1].Before(dates[i]) {
			t.Fatalf("dates not strictly increasing at %d: %v", i, dates)
		}
	}
}

func TestRuleValidate(t *testing.T) {
	t.Parallel()

	start := date(2024, time.January, 1)

	cases := []struct {
		name string
		rule Rule
		want error
	}{
		{
			name: "unset pattern",
			rule: Rule{Frequency: 1, Count: 1},
			want: ErrInvalidPattern,
		},
		{
			name: "zero frequency",
			rule: Rule{Pattern: PatternDaily, Count: 1},
			want: ErrInvalidFrequency,
		},
		{
			name: "weekly without weekdays",
			rule: Rule{Pattern: PatternWeekly, Frequency: 1, Count: 1},
			want: ErrEmptyWeekdays,
		},
		{
			name: "negative count",
			rule: Rule{Pattern: PatternDaily, Frequency: 1, Count: -2},
			want: ErrInvalidCount,
		},
		{
			name: "end date before start",
			rule: Rule{Pattern: PatternDaily, Frequency: 1, Until: datePtr(2023, time.December, 31)},
			want: ErrEndBeforeStart,
		},
		{
			name: "neither end condition",
			rule: Rule{Pattern: PatternDaily, Frequency: 1},
			want: ErrAmbiguousEnd,
		},
		{
			name: "both end conditions",
			rule: Rule{Pattern: PatternDaily, Frequency: 1, Count: 3, Until: datePtr(2024, time.February, 1)},
			want: ErrAmbiguousEnd,
		},
		{
			name: "reserved monthly mode",
			rule: Rule{Pattern: PatternMonthly, Frequency: 1, Count: 1, MonthlyMode: MonthlyModeWeekdayPosition},
			want: ErrUnsupportedMonthlyMode,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if err := tc.rule.Validate(start); !errors.Is(err, tc.want) {
				t.Errorf("Validate = %v, want %v", err, tc.want)
			}
			if _, err := Expand(start, tc.rule); !errors.Is(err, tc.want) {
				t.Errorf("Expand = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestExpandSpanCap(t *testing.T) {
	t.Parallel()

	// An extreme week grid pushes the third occurrence past the supported
	// span; expansion must fail instead of looping.
	_, err := Expand(date(2024, time.January, 2), Rule{
		Pattern:   PatternWeekly,
		Frequency: 200,
		Weekdays:  []time.Weekday{time.Tuesday},
		Count:     3,
	})
	if !errors.Is(err, ErrSpanExceeded) {
		t.Fatalf("expected ErrSpanExceeded, got %v", err)
	}
}

func TestParsePattern(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"daily", "weekly", "monthly", "custom"} {
		pattern, err := ParsePattern(name)
		if err != nil {
			t.Fatalf("ParsePattern(%q): %v", name, err)
		}
		if pattern.String() != name {
			t.Errorf("round trip %q -> %q", name, pattern.String())
		}
	}

	if _, err := ParsePattern("yearly"); !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("ParsePattern(yearly) = %v, want ErrInvalidPattern", err)
	}
}
