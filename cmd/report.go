package cmd

import (
	"fmt"
	"io"

	"github.com/market-sim/market-sim/sim"
	"github.com/market-sim/market-sim/sim/bootstrap"
	"github.com/market-sim/market-sim/sim/metrics"
	"github.com/market-sim/market-sim/sim/trace"
)

// printRunReport writes the metrics of one run and any diagnostics it recorded.
func printRunReport(w io.Writer, res *sim.SimulationResult) {
	fmt.Fprintf(w, "Seed                 : %d\n", int64(res.Key))
	metrics.Collect(res).Print(w)
	metrics.DetectInterference(res, metrics.DefaultInterferenceThreshold).Print(w)

	if occ, ok := metrics.MeanOccupancy(res); ok {
		fmt.Fprintf(w, "Mean Occupancy       : %.4f\n", occ)
	}
	if res.Trace != nil {
		s := trace.Summarize(res.Trace)
		fmt.Fprintln(w, "=== Decision Trace ===")
		fmt.Fprintf(w, "Decisions            : %d (booked %d, outside option %d, empty market %d)\n",
			s.TotalDecisions, s.BookedCount, s.NoChoiceCount, s.EmptyMarketCount)
		fmt.Fprintf(w, "Mean Chosen Position : %.4f\n", s.MeanChosenPosition)
		fmt.Fprintf(w, "Mean Consideration   : %.4f\n", s.MeanConsiderationSet)
		fmt.Fprintf(w, "Treated Share        : %.4f\n", s.TreatedShare)
	}
}

// printInterval writes a bootstrap interval next to the naive standard error.
func printInterval(w io.Writer, iv *bootstrap.Interval, naiveSE float64) {
	fmt.Fprintln(w, "=== Block Bootstrap ===")
	fmt.Fprintf(w, "Blocks               : %d\n", iv.NumBlocks)
	fmt.Fprintf(w, "Replicates           : %d\n", len(iv.ReplicateLifts))
	fmt.Fprintf(w, "Observed Lift        : %.4f\n", iv.ObservedLift)
	fmt.Fprintf(w, "Bootstrap SE         : %.4f\n", iv.BootstrapSE)
	fmt.Fprintf(w, "Naive SE             : %.4f\n", naiveSE)
	fmt.Fprintf(w, "%2.0f%% CI               : [%.4f, %.4f]\n", iv.Confidence*100, iv.CILower, iv.CIUpper)
}
