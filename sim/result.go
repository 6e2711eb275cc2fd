package sim

import "github.com/market-sim/market-sim/sim/trace"

// BookingEvent records one successful booking. The ordered sequence of
// BookingEvents is the canonical output of a run.
type BookingEvent struct {
	Time     float64
	NurseID  int
	ShiftID  int
	ShiftArm Arm
	NurseArm Arm
	// ChosenPosition is the 0-based rank of the chosen shift in the
	// consideration set.
	ChosenPosition       int
	ConsiderationSetSize int
	ShiftUtility         float64 // base utility; the treatment boost is not included
	ReleaseAt            float64 // when the shift reopens; may exceed the horizon
}

// ArrivalRecord records one nurse arrival, booked or not.
type ArrivalRecord struct {
	Time         float64
	NurseID      int
	NurseArm     Arm
	BookingIndex int // index into SimulationResult.Bookings, or -1
}

// Booked reports whether the arrival ended in a booking.
func (a ArrivalRecord) Booked() bool { return a.BookingIndex >= 0 }

// OccupancySample is the market state right after an event was processed.
type OccupancySample struct {
	Time          float64
	Open          int
	Filled        int
	FilledTreated int
}

// SimulationResult is the complete output of one run. Immutable once
// returned.
type SimulationResult struct {
	Key           SimulationKey
	MarketKey     SimulationKey // equals Key unless the market was drawn separately
	Config        Config
	Horizon       float64
	Bookings      []BookingEvent
	Arrivals      []ArrivalRecord
	Shifts        []Shift // final snapshot in ID order
	TotalArrivals int
	Occupancy     []OccupancySample      // nil unless track_occupancy
	Trace         *trace.SimulationTrace // nil unless trace_level is decisions
}

// TotalBookings returns the number of bookings.
func (r *SimulationResult) TotalBookings() int { return len(r.Bookings) }

// BookingRate returns bookings per arrival, or 0 with no arrivals.
func (r *SimulationResult) BookingRate() float64 {
	if r.TotalArrivals == 0 {
		return 0
	}
	return float64(len(r.Bookings)) / float64(r.TotalArrivals)
}

// ArmBookings counts bookings per arm: by shift arm under listing
// randomization, by nurse arm under customer randomization.
func (r *SimulationResult) ArmBookings() map[Arm]int {
	counts := make(map[Arm]int, 2)
	cr := r.Config.Mode == CustomerRandomization
	for _, b := range r.Bookings {
		if cr {
			counts[b.NurseArm]++
		} else {
			counts[b.ShiftArm]++
		}
	}
	return counts
}

// ShiftCounts counts shifts per arm.
func (r *SimulationResult) ShiftCounts() map[Arm]int {
	counts := make(map[Arm]int, 2)
	for _, sh := range r.Shifts {
		counts[sh.Arm]++
	}
	return counts
}

// ArrivalCounts counts arrivals per nurse arm.
func (r *SimulationResult) ArrivalCounts() map[Arm]int {
	counts := make(map[Arm]int, 2)
	for _, a := range r.Arrivals {
		counts[a.NurseArm]++
	}
	return counts
}
