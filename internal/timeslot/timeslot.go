// Package timeslot provides the canonical wall-clock time representation used
// by the booking engine. All time-of-day values are carried as minutes since
// midnight so interval comparisons never depend on string ordering.
package timeslot

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Minutes is a time of day expressed as minutes since midnight.
type Minutes int

// MinutesPerDay bounds valid Minutes values. 24:00 itself is a legal interval
// end ("books until end of day") but not a legal interval start.
const MinutesPerDay Minutes = 24 * 60

// ErrInvalidTime indicates a value outside "00:00".."24:00" or a malformed
// "HH:MM" string.
var ErrInvalidTime = errors.New("timeslot: invalid time of day")

// Parse converts a zero-padded "HH:MM" string into Minutes.
func Parse(value string) (Minutes, error) {
	if len(value) != 5 || value[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, value)
	}
	for _, i := range [4]int{0, 1, 3, 4} {
		if value[i] < '0' || value[i] > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, value)
		}
	}
	hour := int(value[0]-'0')*10 + int(value[1]-'0')
	minute := int(value[3]-'0')*10 + int(value[4]-'0')
	if minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, value)
	}
	m := Minutes(hour*60 + minute)
	if m > MinutesPerDay {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, value)
	}
	return m, nil
}

// MustParse is a test and fixture helper that panics on malformed input.
func MustParse(value string) Minutes {
	m, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return m
}

// Valid reports whether the value lies within a single day.
func (m Minutes) Valid() bool {
	return m >= 0 && m <= MinutesPerDay
}

// String renders the canonical zero-padded "HH:MM" form.
func (m Minutes) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// MarshalJSON encodes the value as its "HH:MM" string.
func (m Minutes) MarshalJSON() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d minutes", ErrInvalidTime, int(m))
	}
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes an "HH:MM" string.
func (m *Minutes) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTime, data)
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. A booking ending at 10:00 does not conflict with
// one starting at 10:00.
func Overlaps(aStart, aEnd, bStart, bEnd Minutes) bool {
	return aStart < bEnd && bStart < aEnd
}

// Span is a half-open [Start, End) interval within one calendar day.
type Span struct {
	Start Minutes
	End   Minutes
}

// Valid reports whether the span lies within one day and has positive length.
func (s Span) Valid() bool {
	return s.Start.Valid() && s.End.Valid() && s.Start < s.End
}

// Overlaps reports whether two spans on the same calendar date intersect.
func (s Span) Overlaps(other Span) bool {
	return Overlaps(s.Start, s.End, other.Start, other.End)
}

// Duration returns the span length in minutes.
func (s Span) Duration() Minutes {
	return s.End - s.Start
}

// String renders the span as "HH:MM-HH:MM".
func (s Span) String() string {
	return s.Start.String() + "-" + s.End.String()
}
