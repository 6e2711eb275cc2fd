// Package metrics turns a finished simulation into per-arm outcomes, the
// treatment lift, and its naive standard error.
//
// Under listing randomization the unit is a shift and its outcome is the
// time-weighted fill rate over the horizon. Under customer randomization the
// unit is a nurse and its outcome is 1 if it booked, else 0.
package metrics

import (
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/market-sim/market-sim/sim"
)

// ArmStats summarizes the unit outcomes of one arm.
type ArmStats struct {
	Units  int
	Mean   float64
	StdDev float64 // sample standard deviation; NaN with fewer than 2 units
}

// Report is the metrics summary of one run.
type Report struct {
	Mode    sim.RandomizationMode
	Treated ArmStats
	Control ArmStats
	Lift    float64
	// NaiveSE treats every unit as independent, which interference through
	// shared supply violates.
	NaiveSE float64

	TotalArrivals   int
	TotalBookings   int
	TreatedBookings int
	ControlBookings int
	BookingRate     float64
}

// Collect computes the Report for res.
func Collect(res *sim.SimulationResult) *Report {
	treated, control := UnitOutcomes(res)
	arms := res.ArmBookings()
	r := &Report{
		Mode:            res.Config.Mode,
		Treated:         armStats(treated),
		Control:         armStats(control),
		NaiveSE:         NaiveSE(treated, control),
		TotalArrivals:   res.TotalArrivals,
		TotalBookings:   res.TotalBookings(),
		TreatedBookings: arms[sim.Treated],
		ControlBookings: arms[sim.Control],
		BookingRate:     res.BookingRate(),
	}
	r.Lift = r.Treated.Mean - r.Control.Mean
	if r.Treated.Units == 0 || r.Control.Units == 0 {
		logrus.Warnf("arm with no units (treated=%d, control=%d); its mean is reported as 0",
			r.Treated.Units, r.Control.Units)
	}
	return r
}

// UnitOutcomes returns the outcome of every experimental unit, split by arm.
func UnitOutcomes(res *sim.SimulationResult) (treated, control []float64) {
	if res.Config.Mode == sim.CustomerRandomization {
		for _, a := range res.Arrivals {
			outcome := 0.0
			if a.Booked() {
				outcome = 1
			}
			switch a.NurseArm {
			case sim.Treated:
				treated = append(treated, outcome)
			case sim.Control:
				control = append(control, outcome)
			}
		}
		return treated, control
	}

	util := Utilization(res)
	for _, sh := range res.Shifts {
		switch sh.Arm {
		case sim.Treated:
			treated = append(treated, util[sh.ID])
		case sim.Control:
			control = append(control, util[sh.ID])
		}
	}
	return treated, control
}

// Utilization returns each shift's fill rate: the fraction of [0, horizon]
// it spent Filled. Indexed by shift ID.
func Utilization(res *sim.SimulationResult) []float64 {
	util := make([]float64, len(res.Shifts))
	if !(res.Horizon > 0) {
		return util
	}
	for _, b := range res.Bookings {
		if b.ShiftID < 0 || b.ShiftID >= len(util) {
			continue
		}
		util[b.ShiftID] += FilledTime(b, res.Horizon)
	}
	for i := range util {
		util[i] = math.Min(util[i]/res.Horizon, 1)
	}
	return util
}

// FilledTime is the part of a booking's fill interval inside the horizon.
func FilledTime(b sim.BookingEvent, horizon float64) float64 {
	return math.Max(0, math.Min(b.ReleaseAt, horizon)-b.Time)
}

// NaiveSE is the pooled two-sample standard error of the difference in
// means. NaN when either arm is empty or there are fewer than 3 units.
func NaiveSE(treated, control []float64) float64 {
	n1, n2 := len(treated), len(control)
	if n1 == 0 || n2 == 0 || n1+n2 < 3 {
		return math.NaN()
	}
	ss := sumSquares(treated) + sumSquares(control)
	pooled := ss / float64(n1+n2-2)
	return math.Sqrt(pooled * (1/float64(n1) + 1/float64(n2)))
}

// sumSquares returns the sum of squared deviations from the mean.
func sumSquares(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	_, variance := stat.MeanVariance(xs, nil)
	return variance * float64(len(xs)-1)
}

func armStats(xs []float64) ArmStats {
	s := ArmStats{Units: len(xs), StdDev: math.NaN()}
	switch len(xs) {
	case 0:
		return s
	case 1:
		s.Mean = xs[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(xs, nil)
	return s
}
