// Package ics renders a resolved recurring booking series as an iCalendar
// document so users can import the series into their own calendars.
package ics

import (
	"errors"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/example/workplace-booking/internal/planner"
	"github.com/example/workplace-booking/internal/recurrence"
	"github.com/example/workplace-booking/internal/timeslot"
)

const productID = "-//workplace-booking//bookingd//EN"

// Series describes a resolved recurring booking batch for export.
type Series struct {
	ID        string
	Title     string
	RoomName  string
	Location  string
	Start     timeslot.Minutes
	End       timeslot.Minutes
	Rule      recurrence.Rule
	Instances []planner.Instance
}

// ErrEmptySeries indicates there is nothing to export.
var ErrEmptySeries = errors.New("ics: series has no instances")

// Export renders the series as an iCalendar document. When the rule maps
// cleanly onto RFC 5545 and no instance was moved to an alternate room, a
// single VEVENT with an RRULE is emitted; otherwise each instance becomes its
// own VEVENT, since per-instance rooms and clamped monthly dates cannot be
// expressed as a plain RRULE.
func Export(series Series) (string, error) {
	if len(series.Instances) == 0 {
		return "", ErrEmptySeries
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	if rule, ok := rruleFor(series); ok && uniformRoom(series.Instances) {
		event := cal.AddEvent(series.ID)
		fillEvent(event, series, series.Instances[0], series.RoomName)
		event.SetProperty(ical.ComponentPropertyRrule, rule)
		return cal.Serialize(), nil
	}

	for i, instance := range series.Instances {
		event := cal.AddEvent(fmt.Sprintf("%s-%d", series.ID, i))
		fillEvent(event, series, instance, series.RoomName)
	}
	return cal.Serialize(), nil
}

func fillEvent(event *ical.VEvent, series Series, instance planner.Instance, roomName string) {
	start := withClock(instance.Date, instance.Start)
	end := withClock(instance.Date, instance.End)

	event.SetSummary(series.Title)
	event.SetStartAt(start)
	event.SetEndAt(end)
	event.SetDtStampTime(start)
	if series.Location != "" {
		event.SetLocation(series.Location)
	}
	if roomName != "" {
		event.SetDescription("Room: " + roomName)
	}
}

// rruleFor converts the recurrence rule to an RFC 5545 RRULE string where the
// semantics line up. Monthly rules are excluded because the engine clamps to
// month ends while RFC 5545 skips months without the anchor day; custom rules
// with multi-day spacing map onto DAILY with an interval.
func rruleFor(series Series) (string, bool) {
	rule := series.Rule
	opt := rrule.ROption{
		Interval: rule.Frequency,
		Dtstart:  withClock(series.Instances[0].Date, series.Start),
	}

	switch rule.Pattern {
	case recurrence.PatternDaily, recurrence.PatternCustom:
		opt.Freq = rrule.DAILY
	case recurrence.PatternWeekly:
		opt.Freq = rrule.WEEKLY
		opt.Byweekday = rruleWeekdays(rule.Weekdays)
	default:
		return "", false
	}

	if rule.Count > 0 {
		opt.Count = rule.Count
	} else if rule.Until != nil {
		// The engine's end date is inclusive, as is RFC 5545 UNTIL.
		opt.Until = withClock(recurrence.DateOnly(*rule.Until), series.End)
	}

	if _, err := rrule.NewRRule(opt); err != nil {
		return "", false
	}
	return opt.RRuleString(), true
}

var rruleWeekdayTable = [...]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

func rruleWeekdays(weekdays []time.Weekday) []rrule.Weekday {
	out := make([]rrule.Weekday, 0, len(weekdays))
	for _, day := range weekdays {
		out = append(out, rruleWeekdayTable[day])
	}
	return out
}

func uniformRoom(instances []planner.Instance) bool {
	for _, instance := range instances {
		if instance.Status == planner.StatusAlternative {
			return false
		}
	}
	return true
}

func withClock(date time.Time, clock timeslot.Minutes) time.Time {
	year, month, day := date.Date()
	return time.Date(year, month, day, int(clock)/60, int(clock)%60, 0, 0, date.Location())
}
