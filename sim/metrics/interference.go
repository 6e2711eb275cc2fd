package metrics

import (
	"math"

	"github.com/market-sim/market-sim/sim"
)

// DefaultInterferenceThreshold is the per-unit booking-rate gap above which
// DetectInterference flags a run.
const DefaultInterferenceThreshold = 0.1

// InterferenceReport compares booking rates normalized by arm size.
type InterferenceReport struct {
	TreatedUnits    int
	ControlUnits    int
	TreatedBookings int
	ControlBookings int
	TreatedRate     float64 // bookings per treated unit
	ControlRate     float64 // bookings per control unit
	RateDifference  float64 // TreatedRate − ControlRate
	Detected        bool
}

// DetectInterference flags runs where treated units book noticeably more
// than control units. Units are shifts under listing randomization and
// arriving nurses under customer randomization; an empty arm counts as one
// unit.
func DetectInterference(res *sim.SimulationResult, threshold float64) InterferenceReport {
	arms := res.ArmBookings()
	r := InterferenceReport{
		TreatedBookings: arms[sim.Treated],
		ControlBookings: arms[sim.Control],
	}
	if res.Config.Mode == sim.CustomerRandomization {
		counts := res.ArrivalCounts()
		r.TreatedUnits, r.ControlUnits = counts[sim.Treated], counts[sim.Control]
	} else {
		counts := res.ShiftCounts()
		r.TreatedUnits, r.ControlUnits = counts[sim.Treated], counts[sim.Control]
	}
	if res.TotalBookings() == 0 {
		return r
	}
	r.TreatedRate = float64(r.TreatedBookings) / float64(max(r.TreatedUnits, 1))
	r.ControlRate = float64(r.ControlBookings) / float64(max(r.ControlUnits, 1))
	r.RateDifference = r.TreatedRate - r.ControlRate
	r.Detected = r.RateDifference > threshold
	return r
}

// MeanOccupancy returns the time-averaged fraction of Filled shifts over
// [0, horizon], from the samples recorded with track_occupancy. Returns
// false when the run recorded none.
func MeanOccupancy(res *sim.SimulationResult) (float64, bool) {
	samples := res.Occupancy
	n := len(res.Shifts)
	if len(samples) == 0 || n == 0 || !(res.Horizon > 0) {
		return 0, false
	}
	area := 0.0
	for i, s := range samples {
		end := res.Horizon
		if i+1 < len(samples) {
			end = math.Min(samples[i+1].Time, res.Horizon)
		}
		if end > s.Time {
			area += float64(s.Filled) * (end - s.Time)
		}
	}
	return area / (res.Horizon * float64(n)), true
}
