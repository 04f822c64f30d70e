// Package model defines the core domain types of the scheduling engine:
// roles, employees, coverage, business scenarios, policies, and the
// schedule the engine produces.
package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Day is an integer 0..6 (Monday..Sunday).
type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// IsWeekend reports whether d is Saturday or Sunday.
func (d Day) IsWeekend() bool {
	return d >= Saturday
}

func (d Day) String() string {
	names := [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	if d < Monday || d > Sunday {
		return "Day(?)"
	}
	return names[d]
}

// Slot is a (day, hour) pair denoting one hour of one open day.
type Slot struct {
	Day  Day
	Hour int
}

// MarshalText renders a Slot as "day,hour" so it can serve as a JSON
// object key (encoding/json only accepts string, integer, or
// TextMarshaler map keys — SlotSet is keyed by Slot directly).
func (s Slot) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("%d,%d", int(s.Day), s.Hour)), nil
}

// UnmarshalText reverses MarshalText.
func (s *Slot) UnmarshalText(text []byte) error {
	parts := strings.SplitN(string(text), ",", 2)
	if len(parts) != 2 {
		return fmt.Errorf("malformed slot key %q", text)
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return fmt.Errorf("malformed slot key %q: %w", text, err)
	}
	hour, err := strconv.Atoi(parts[1])
	if err != nil {
		return fmt.Errorf("malformed slot key %q: %w", text, err)
	}
	s.Day = Day(day)
	s.Hour = hour
	return nil
}

// SlotSet is a set of slots. Kept as a map for O(1) membership checks;
// iteration order is never relied upon (see Sorted).
type SlotSet map[Slot]struct{}

// NewSlotSet builds a SlotSet from a list of slots.
func NewSlotSet(slots ...Slot) SlotSet {
	s := make(SlotSet, len(slots))
	for _, sl := range slots {
		s[sl] = struct{}{}
	}
	return s
}

// Has reports whether the slot is a member of the set.
func (s SlotSet) Has(sl Slot) bool {
	_, ok := s[sl]
	return ok
}

// Add inserts a slot into the set.
func (s SlotSet) Add(sl Slot) {
	s[sl] = struct{}{}
}

// Sorted returns the set's slots ordered by (day, hour), the
// deterministic order the model builder relies on (spec §5).
func (s SlotSet) Sorted() []Slot {
	out := make([]Slot, 0, len(s))
	for sl := range s {
		out = append(out, sl)
	}
	sortSlots(out)
	return out
}

func sortSlots(slots []Slot) {
	for i := 1; i < len(slots); i++ {
		j := i
		for j > 0 && slotLess(slots[j], slots[j-1]) {
			slots[j], slots[j-1] = slots[j-1], slots[j]
			j--
		}
	}
}

func slotLess(a, b Slot) bool {
	if a.Day != b.Day {
		return a.Day < b.Day
	}
	return a.Hour < b.Hour
}

// TimeRange is a sub-hour, fractional-day availability window as
// recorded by the employee-facing portal (15-minute precision). The
// solver never sees TimeRange directly; QuantizeRanges converts it to
// the hour-grid Slot form it operates on.
type TimeRange struct {
	Day             Day
	StartMinute     int // minutes since midnight, e.g. 9*60+15
	EndMinuteExcl   int
}

// QuantizeRanges converts sub-hour availability ranges into the
// hour-grid SlotSet the solver operates on. The rounding rule (Design
// Notes, spec §9): a slot is available iff the entire hour is covered
// by at least one availability range.
func QuantizeRanges(ranges []TimeRange) SlotSet {
	out := make(SlotSet)
	for _, r := range ranges {
		startHour := r.StartMinute / 60
		if r.StartMinute%60 != 0 {
			startHour++ // hour not fully covered from its start
		}
		endHour := r.EndMinuteExcl / 60
		for h := startHour; h < endHour; h++ {
			out.Add(Slot{Day: r.Day, Hour: h})
		}
	}
	return out
}
