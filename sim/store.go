package sim

import (
	"fmt"
	"math"
)

// ShiftStore owns every shift in the market and enforces the Open↔Filled
// state machine. Shifts are indexed by ID, which equals their position.
type ShiftStore struct {
	shifts      []Shift
	filledCount int
}

// NewShiftStore takes ownership of shifts, which must have IDs 0..n-1 in
// order and start Open.
func NewShiftStore(shifts []Shift) *ShiftStore {
	s := &ShiftStore{shifts: shifts}
	for i := range s.shifts {
		if s.shifts[i].ID != i {
			panic(fmt.Sprintf("NewShiftStore: shift at index %d has ID %d", i, s.shifts[i].ID))
		}
		if s.shifts[i].State == "" {
			s.shifts[i].State = ShiftOpen
		}
		if s.shifts[i].State == ShiftFilled {
			s.filledCount++
		}
	}
	return s
}

// AvailableShifts returns copies of all shifts Open at time at, in ID order.
// Release events reopen shifts on schedule, so state alone decides.
func (s *ShiftStore) AvailableShifts(at float64) []Shift {
	open := make([]Shift, 0, len(s.shifts)-s.filledCount)
	for _, sh := range s.shifts {
		if sh.State == ShiftOpen {
			open = append(open, sh)
		}
	}
	return open
}

// Book fills shift id at time at for duration. Returns a *StateError if the
// shift is already Filled. The reopening time is strictly after at, even for
// a zero duration, so the release always follows the booking.
func (s *ShiftStore) Book(id int, at, duration float64) error {
	sh, err := s.lookup(id)
	if err != nil {
		return err
	}
	if sh.State != ShiftOpen {
		return &StateError{ShiftID: id, Op: "book", State: sh.State, Time: at}
	}
	reopen := at + duration
	if !(reopen > at) {
		reopen = math.Nextafter(at, math.Inf(1))
	}
	sh.State = ShiftFilled
	sh.AvailableAt = reopen
	s.filledCount++
	return nil
}

// Release returns shift id to Open. Returns a *StateError if it is already Open.
func (s *ShiftStore) Release(id int) error {
	sh, err := s.lookup(id)
	if err != nil {
		return err
	}
	if sh.State != ShiftFilled {
		return &StateError{ShiftID: id, Op: "release", State: sh.State, Time: sh.AvailableAt}
	}
	sh.State = ShiftOpen
	s.filledCount--
	return nil
}

// Shift returns a copy of shift id.
func (s *ShiftStore) Shift(id int) (Shift, bool) {
	if id < 0 || id >= len(s.shifts) {
		return Shift{}, false
	}
	return s.shifts[id], true
}

// Snapshot returns copies of every shift in ID order.
func (s *ShiftStore) Snapshot() []Shift {
	out := make([]Shift, len(s.shifts))
	copy(out, s.shifts)
	return out
}

// Len returns the number of shifts.
func (s *ShiftStore) Len() int { return len(s.shifts) }

// OpenCount returns the number of Open shifts.
func (s *ShiftStore) OpenCount() int { return len(s.shifts) - s.filledCount }

// FilledCount returns the number of Filled shifts.
func (s *ShiftStore) FilledCount() int { return s.filledCount }

// FilledTreatedCount returns the number of Filled shifts carrying the
// Treated arm. Always 0 under customer randomization.
func (s *ShiftStore) FilledTreatedCount() int {
	n := 0
	for _, sh := range s.shifts {
		if sh.State == ShiftFilled && sh.Arm == Treated {
			n++
		}
	}
	return n
}

func (s *ShiftStore) lookup(id int) (*Shift, error) {
	if id < 0 || id >= len(s.shifts) {
		return nil, fmt.Errorf("unknown shift %d", id)
	}
	return &s.shifts[id], nil
}
