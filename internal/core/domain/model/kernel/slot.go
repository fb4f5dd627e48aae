package kernel

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"parcelbot/internal/pkg/errs"
)

// Slot is a delivery time window [Start, End) within one day, kept in
// minutes from midnight. The zero Slot means that no slot has been chosen.
//
// Any well-formed window can be represented so that a request for, say,
// 08:30-09:00 reaches the scheduling policy and is rejected there as out of
// range; only the four fixed slots are ever stored on an order.
type Slot struct {
	start int
	end   int
}

const minutesPerDay = 24 * 60

var (
	SlotMorning   = Slot{start: 9 * 60, end: 12 * 60}
	SlotMidday    = Slot{start: 12 * 60, end: 15 * 60}
	SlotAfternoon = Slot{start: 15 * 60, end: 18 * 60}
	SlotEvening   = Slot{start: 18 * 60, end: 22 * 60}
)

var slotPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*[-–]\s*(\d{1,2}):(\d{2})$`)

// FixedSlots lists the slots offered to customers, earliest first.
func FixedSlots() []Slot {
	return []Slot{SlotMorning, SlotMidday, SlotAfternoon, SlotEvening}
}

// NewSlot builds a window of whole hours within one day.
func NewSlot(startHour, endHour int) (Slot, error) {
	if startHour < 0 || startHour > 23 {
		return Slot{}, errs.NewValueIsOutOfRangeError("slot start hour", startHour, 0, 23)
	}
	return newSlot(startHour*60, endHour*60)
}

func newSlot(start, end int) (Slot, error) {
	if end <= start || end > minutesPerDay {
		return Slot{}, errs.NewValueIsInvalidErrorWithCause(
			"slot",
			fmt.Errorf("end %s must be after start %s", clock(end), clock(start)),
		)
	}
	return Slot{start: start, end: end}, nil
}

// ParseSlot reads "HH:MM-HH:MM". An en dash is accepted as the separator.
// Empty input yields the zero Slot.
func ParseSlot(s string) (Slot, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Slot{}, nil
	}
	m := slotPattern.FindStringSubmatch(s)
	if m == nil {
		return Slot{}, errs.NewValueIsInvalidErrorWithCause("slot", fmt.Errorf("%q is not HH:MM-HH:MM", s))
	}
	start, err := minuteOfDay(m[1], m[2], 23)
	if err != nil {
		return Slot{}, err
	}
	end, err := minuteOfDay(m[3], m[4], 24)
	if err != nil {
		return Slot{}, err
	}
	return newSlot(start, end)
}

func minuteOfDay(hh, mm string, maxHour int) (int, error) {
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	if h > maxHour {
		return 0, errs.NewValueIsOutOfRangeError("slot hour", h, 0, maxHour)
	}
	if m > 59 {
		return 0, errs.NewValueIsOutOfRangeError("slot minute", m, 0, 59)
	}
	return h*60 + m, nil
}

func clock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// SlotStartingAt restores a fixed slot from the hour-of-day kept by the
// order store. Hour 0 means no slot.
func SlotStartingAt(hour int) (Slot, error) {
	if hour == 0 {
		return Slot{}, nil
	}
	for _, s := range FixedSlots() {
		if s.start == hour*60 {
			return s, nil
		}
	}
	return Slot{}, errs.NewValueIsInvalidErrorWithCause("slot", fmt.Errorf("no fixed slot starts at %02d:00", hour))
}

func (s Slot) IsZero() bool {
	return s == Slot{}
}

// IsFixed reports whether s is one of FixedSlots.
func (s Slot) IsFixed() bool {
	for _, f := range FixedSlots() {
		if s == f {
			return true
		}
	}
	return false
}

// StartHour is the hour the slot starts in.
func (s Slot) StartHour() int {
	return s.start / 60
}

func (s Slot) String() string {
	if s.IsZero() {
		return ""
	}
	return clock(s.start) + "-" + clock(s.end)
}
