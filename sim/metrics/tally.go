package metrics

import "github.com/market-sim/market-sim/sim"

// Tally holds the additive sufficient statistics of a slice of the run.
// Tallies of disjoint slices add up to the tally of their union, which lets
// the bootstrap recompute the lift on resampled blocks without replaying
// the simulation.
type Tally struct {
	Span float64 // simulated time covered

	// Customer randomization: arrivals and bookings by nurse arm.
	TreatedArrivals int
	ControlArrivals int
	TreatedMatches  int
	ControlMatches  int

	// Listing randomization: filled shift-time by shift arm, credited to the
	// slice in which the booking was made.
	TreatedFilled float64
	ControlFilled float64
}

// Add returns the sum of t and o.
func (t Tally) Add(o Tally) Tally {
	return Tally{
		Span:            t.Span + o.Span,
		TreatedArrivals: t.TreatedArrivals + o.TreatedArrivals,
		ControlArrivals: t.ControlArrivals + o.ControlArrivals,
		TreatedMatches:  t.TreatedMatches + o.TreatedMatches,
		ControlMatches:  t.ControlMatches + o.ControlMatches,
		TreatedFilled:   t.TreatedFilled + o.TreatedFilled,
		ControlFilled:   t.ControlFilled + o.ControlFilled,
	}
}

// inRange reports whether t falls in [lo, hi). The range is closed on the
// right when it ends at the horizon, since events at exactly the horizon
// still fire.
func inRange(t, lo, hi, horizon float64) bool {
	if t < lo {
		return false
	}
	return t < hi || (hi >= horizon && t <= hi)
}

// TallyRange tallies arrivals and bookings with times in [lo, hi).
func TallyRange(res *sim.SimulationResult, lo, hi float64) Tally {
	t := Tally{Span: hi - lo}
	for _, a := range res.Arrivals {
		if !inRange(a.Time, lo, hi, res.Horizon) {
			continue
		}
		switch a.NurseArm {
		case sim.Treated:
			t.TreatedArrivals++
			if a.Booked() {
				t.TreatedMatches++
			}
		case sim.Control:
			t.ControlArrivals++
			if a.Booked() {
				t.ControlMatches++
			}
		}
	}
	for _, b := range res.Bookings {
		if !inRange(b.Time, lo, hi, res.Horizon) {
			continue
		}
		switch b.ShiftArm {
		case sim.Treated:
			t.TreatedFilled += FilledTime(b, res.Horizon)
		case sim.Control:
			t.ControlFilled += FilledTime(b, res.Horizon)
		}
	}
	return t
}

// Population is the fixed unit count of each arm, needed to turn a Tally
// into per-unit means.
type Population struct {
	Mode          sim.RandomizationMode
	TreatedShifts int
	ControlShifts int
}

// PopulationOf returns the arm sizes of res.
func PopulationOf(res *sim.SimulationResult) Population {
	counts := res.ShiftCounts()
	return Population{
		Mode:          res.Config.Mode,
		TreatedShifts: counts[sim.Treated],
		ControlShifts: counts[sim.Control],
	}
}

// Lift returns mean(treated) − mean(control) over the tallied slice. Over the
// whole run it equals Collect's Lift. Rates with a zero denominator are 0.
func (p Population) Lift(t Tally) float64 {
	if p.Mode == sim.CustomerRandomization {
		return ratio(float64(t.TreatedMatches), float64(t.TreatedArrivals)) -
			ratio(float64(t.ControlMatches), float64(t.ControlArrivals))
	}
	return ratio(t.TreatedFilled, float64(p.TreatedShifts)*t.Span) -
		ratio(t.ControlFilled, float64(p.ControlShifts)*t.Span)
}

func ratio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}
