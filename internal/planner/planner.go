// Package planner turns expanded recurrence dates into booking instances,
// classifies each against the current booking snapshot, and supports swapping
// a conflicting instance onto an alternate room. The planner owns no state:
// callers re-run resolution whenever an input changes and discard the
// instance list once the batch is committed or cancelled.
package planner

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/workplace-booking/internal/availability"
	"github.com/example/workplace-booking/internal/recurrence"
	"github.com/example/workplace-booking/internal/timeslot"
)

// Room is a catalog entry as seen by eligibility checks.
type Room struct {
	ID        string
	Name      string
	Location  string
	Capacity  int
	Equipment []string
}

// HasEquipment reports whether the room carries every required tag.
func (r Room) HasEquipment(required []string) bool {
	for _, tag := range required {
		found := false
		for _, own := range r.Equipment {
			if strings.EqualFold(own, tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// EligibleRooms narrows the catalog to rooms seating at least minCapacity
// with all required equipment. Catalog order is preserved; an empty result is
// valid and means no alternative is available.
func EligibleRooms(catalog []Room, minCapacity int, requiredEquipment []string) []Room {
	eligible := make([]Room, 0, len(catalog))
	for _, room := range catalog {
		if room.Capacity < minCapacity {
			continue
		}
		if !room.HasEquipment(requiredEquipment) {
			continue
		}
		eligible = append(eligible, room)
	}
	return eligible
}

// Status classifies a booking instance within a resolution pass.
type Status string

const (
	// StatusAvailable means the requested room is free on the instance date.
	StatusAvailable Status = "available"
	// StatusConflicting means the requested room is already booked.
	StatusConflicting Status = "conflicting"
	// StatusAlternative means a conflicting instance was moved to another room.
	StatusAlternative Status = "alternative"
)

// Instance is one dated occurrence of a recurring booking draft. Instances
// are ephemeral: they are not persisted until the caller commits the batch.
type Instance struct {
	Date           time.Time        `json:"date"`
	RoomID         string           `json:"room_id"`
	OriginalRoomID string           `json:"original_room_id"`
	Start          timeslot.Minutes `json:"start"`
	End            timeslot.Minutes `json:"end"`
	Status         Status           `json:"status"`
}

var (
	// ErrIndexOutOfRange indicates an instance index outside the batch.
	ErrIndexOutOfRange = errors.New("planner: instance index out of range")
	// ErrNotSubstitutable indicates a substitution on an available instance;
	// only conflicting and alternative instances may change rooms.
	ErrNotSubstitutable = errors.New("planner: instance is not conflicting")
	// ErrNotReverted indicates a revert on an instance that carries no
	// substitution.
	ErrNotReverted = errors.New("planner: instance has no substitution to revert")
)

// Resolve builds one instance per date, tagging each as available or
// conflicting against the supplied booking snapshot. The result is a fresh
// slice; resolving twice with identical inputs yields identical output.
func Resolve(dates []time.Time, roomID string, start, end timeslot.Minutes, bookings []availability.Booking) []Instance {
	instances := make([]Instance, 0, len(dates))
	for _, date := range dates {
		status := StatusConflicting
		if availability.IsFree(bookings, roomID, date, start, end) {
			status = StatusAvailable
		}
		instances = append(instances, Instance{
			Date:           recurrence.DateOnly(date),
			RoomID:         roomID,
			OriginalRoomID: roomID,
			Start:          start,
			End:            end,
			Status:         status,
		})
	}
	return instances
}

// SubstituteRoom assigns newRoomID to the instance at index and marks it as
// an alternative. The original room is preserved so the caller can render
// "alternative X instead of Y". The input slice is not mutated.
func SubstituteRoom(instances []Instance, index int, newRoomID string) ([]Instance, error) {
	if index < 0 || index >= len(instances) {
		return nil, ErrIndexOutOfRange
	}
	target := instances[index]
	if target.Status != StatusConflicting && target.Status != StatusAlternative {
		return nil, ErrNotSubstitutable
	}

	updated := cloneInstances(instances)
	updated[index].RoomID = newRoomID
	updated[index].Status = StatusAlternative
	return updated, nil
}

// Revert undoes a substitution, restoring the original room and conflicting
// status. It is the only transition out of the alternative state.
func Revert(instances []Instance, index int) ([]Instance, error) {
	if index < 0 || index >= len(instances) {
		return nil, ErrIndexOutOfRange
	}
	if instances[index].Status != StatusAlternative {
		return nil, ErrNotReverted
	}

	updated := cloneInstances(instances)
	updated[index].RoomID = updated[index].OriginalRoomID
	updated[index].Status = StatusConflicting
	return updated, nil
}

// HasConflicts reports whether any instance is still conflicting. Commit is
// blocked while this holds.
func HasConflicts(instances []Instance) bool {
	for _, instance := range instances {
		if instance.Status == StatusConflicting {
			return true
		}
	}
	return false
}

// CountByStatus tallies instances per status for display purposes.
func CountByStatus(instances []Instance) map[Status]int {
	counts := make(map[Status]int, 3)
	for _, instance := range instances {
		counts[instance.Status]++
	}
	return counts
}

func cloneInstances(instances []Instance) []Instance {
	out := make([]Instance, len(instances))
	copy(out, instances)
	return out
}

// Summarize renders a one-line human description of the whole series, e.g.
// "Weekly on Mon, Wed, 09:00-10:00, 6 occurrences (2 conflicting)".
func Summarize(rule recurrence.Rule, span timeslot.Span, instances []Instance) string {
	var b strings.Builder

	switch rule.Pattern {
	case recurrence.PatternDaily:
		if rule.Frequency == 1 {
			b.WriteString("Daily")
		} else {
			fmt.Fprintf(&b, "Every %d days", rule.Frequency)
		}
	case recurrence.PatternWeekly:
		if rule.Frequency == 1 {
			b.WriteString("Weekly on ")
		} else {
			fmt.Fprintf(&b, "Every %d weeks on ", rule.Frequency)
		}
		b.WriteString(weekdayList(rule.Weekdays))
	case recurrence.PatternMonthly:
		if rule.Frequency == 1 {
			b.WriteString("Monthly")
		} else {
			fmt.Fprintf(&b, "Every %d months", rule.Frequency)
		}
	case recurrence.PatternCustom:
		fmt.Fprintf(&b, "Every %d days", rule.Frequency)
	default:
		b.WriteString("Once")
	}

	fmt.Fprintf(&b, ", %s, %d occurrences", span.String(), len(instances))

	counts := CountByStatus(instances)
	if conflicts := counts[StatusConflicting]; conflicts > 0 {
		fmt.Fprintf(&b, " (%d conflicting)", conflicts)
	} else if alternatives := counts[StatusAlternative]; alternatives > 0 {
		fmt.Fprintf(&b, " (%d moved to alternate rooms)", alternatives)
	}

	if rule.Until != nil {
		fmt.Fprintf(&b, ", until %s", rule.Until.Format("2006-01-02"))
	}

	return b.String()
}

// weekdayList renders weekdays in calendar order regardless of rule order.
func weekdayList(weekdays []time.Weekday) string {
	selected := make(map[time.Weekday]bool, len(weekdays))
	for _, day := range weekdays {
		selected[day] = true
	}
	names := make([]string, 0, len(selected))
	for day := time.Sunday; day <= time.Saturday; day++ {
		if selected[day] {
			names = append(names, day.String()[:3])
		}
	}
	return strings.Join(names, ", ")
}
