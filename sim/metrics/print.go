package metrics

import (
	"fmt"
	"io"
	"math"

	"github.com/market-sim/market-sim/sim"
)

// Print writes a human-readable summary of the report.
func (r *Report) Print(w io.Writer) {
	unit, outcome := "shifts", "fill rate"
	if r.Mode == sim.CustomerRandomization {
		unit, outcome = "nurses", "match rate"
	}
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintf(w, "Randomization        : %s (%s, %s)\n", r.Mode, unit, outcome)
	fmt.Fprintf(w, "Arrivals             : %d\n", r.TotalArrivals)
	fmt.Fprintf(w, "Bookings             : %d (treated %d, control %d)\n", r.TotalBookings, r.TreatedBookings, r.ControlBookings)
	fmt.Fprintf(w, "Booking Rate         : %.4f\n", r.BookingRate)
	fmt.Fprintf(w, "Treated              : n=%d mean=%.4f sd=%s\n", r.Treated.Units, r.Treated.Mean, formatFloat(r.Treated.StdDev))
	fmt.Fprintf(w, "Control              : n=%d mean=%.4f sd=%s\n", r.Control.Units, r.Control.Mean, formatFloat(r.Control.StdDev))
	fmt.Fprintf(w, "Lift                 : %.4f\n", r.Lift)
	fmt.Fprintf(w, "Naive SE             : %s\n", formatFloat(r.NaiveSE))
}

// Print writes the interference indicators.
func (r InterferenceReport) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Interference ===")
	fmt.Fprintf(w, "Treated Rate         : %.4f per unit (%d units)\n", r.TreatedRate, r.TreatedUnits)
	fmt.Fprintf(w, "Control Rate         : %.4f per unit (%d units)\n", r.ControlRate, r.ControlUnits)
	fmt.Fprintf(w, "Rate Difference      : %.4f\n", r.RateDifference)
	fmt.Fprintf(w, "Detected             : %t\n", r.Detected)
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v)
}
