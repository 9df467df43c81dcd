package recurrence

import (
	"testing"
	"time"
)

func BenchmarkExpandWeeklyYear(b *testing.B) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.Local)
	until := start.AddDate(1, 0, 0)
	rule := Rule{
		Pattern:   PatternWeekly,
		Frequency: 1,
		Weekdays:  []time.Weekday{time.Monday, time.Wednesday, time.Friday},
		Until:     &until,
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Expand(start, rule); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkExpandDailyCount(b *testing.B) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.Local)
	rule := Rule{Pattern: PatternDaily, Frequency: 1, Count: 365}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Expand(start, rule); err != nil {
			b.Fatal(err)
		}
	}
}
