package cmd

import (
	"fmt"
	"io"
	"math"
	"os"
	"runtime"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/market-sim/market-sim/sim"
	"github.com/market-sim/market-sim/sim/bootstrap"
	"github.com/market-sim/market-sim/sim/metrics"
)

var trials int // Independent simulations per coverage study

// coverageCmd checks how often bootstrap intervals cover the true lift
var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Estimate bootstrap interval coverage over repeated runs of one market",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		log := logrus.WithField("run_id", uuid.NewString())
		log.Infof("Starting coverage study: %d trials", trials)

		study, err := runCoverage(cfg, sim.ResolveSeed(cfg), trials)
		if err != nil {
			log.Fatalf("Coverage study failed: %v", err)
		}
		study.Print(os.Stdout)
		log.Info("Coverage study complete.")
	},
}

// CoverageStudy summarizes repeated runs of one market. Every trial faces the
// same shifts, arms and boosted subset, drawn from MarketSeed; only arrivals,
// nurse arms, choices and fill durations are redrawn. The true lift is
// estimated by the mean observed lift across trials, and the spread of
// observed lifts is the reference standard error both estimators are judged
// against.
type CoverageStudy struct {
	MarketSeed    int64
	Trials        int
	TrueLift      float64
	EmpiricalSE   float64 // std-dev of observed lifts across trials
	MeanNaiveSE   float64
	MeanBootSE    float64
	Coverage      float64 // fraction of bootstrap intervals containing TrueLift
	NaiveCoverage float64 // same for lift ± z·naive SE
	Confidence    float64
	ObservedLifts []float64
}

type trialOutcome struct {
	lift    float64
	naiveSE float64
	iv      *bootstrap.Interval
}

// runCoverage simulates n trials of the market drawn from seed, in parallel.
// Trial i uses a run seed derived from seed and i, so results do not depend
// on scheduling.
func runCoverage(cfg sim.Config, seed int64, n int) (*CoverageStudy, error) {
	if n < 2 {
		return nil, fmt.Errorf("coverage needs at least 2 trials, got %d", n)
	}
	seeds := sim.NewPartitionedRNG(sim.NewSimulationKey(seed))
	outcomes := make([]trialOutcome, n)

	limit := cfg.BootstrapWorkers
	if limit == 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i := range outcomes {
		trialSeed := seeds.DeriveSeed(sim.SubsystemTrial(i))
		g.Go(func() error {
			res, err := sim.SimulateMarket(cfg, seed, trialSeed)
			if err != nil {
				return fmt.Errorf("trial %d: %w", i, err)
			}
			opts := bootstrap.OptionsFromResult(res)
			opts.Workers = 1 // trials already saturate the workers
			iv, err := bootstrap.Run(res, opts)
			if err != nil {
				return fmt.Errorf("trial %d: %w", i, err)
			}
			outcomes[i] = trialOutcome{lift: iv.ObservedLift, naiveSE: metrics.Collect(res).NaiveSE, iv: iv}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	study := summarizeCoverage(outcomes, cfg.ConfidenceLevel)
	study.MarketSeed = seed
	return study, nil
}

func summarizeCoverage(outcomes []trialOutcome, confidence float64) *CoverageStudy {
	n := len(outcomes)
	lifts := make([]float64, n)
	naive := make([]float64, 0, n)
	boot := make([]float64, n)
	for i, o := range outcomes {
		lifts[i] = o.lift
		boot[i] = o.iv.BootstrapSE
		if !math.IsNaN(o.naiveSE) {
			naive = append(naive, o.naiveSE)
		}
	}

	study := &CoverageStudy{
		Trials:        n,
		TrueLift:      stat.Mean(lifts, nil),
		EmpiricalSE:   stat.StdDev(lifts, nil),
		MeanBootSE:    stat.Mean(boot, nil),
		Confidence:    confidence,
		ObservedLifts: lifts,
	}
	if len(naive) > 0 {
		study.MeanNaiveSE = stat.Mean(naive, nil)
	}

	z := distuv.UnitNormal.Quantile(0.5 + confidence/2)
	covered, naiveCovered := 0, 0
	for _, o := range outcomes {
		if o.iv.Covers(study.TrueLift) {
			covered++
		}
		if d := o.lift - study.TrueLift; d*d <= z*z*o.naiveSE*o.naiveSE {
			naiveCovered++
		}
	}
	study.Coverage = float64(covered) / float64(n)
	study.NaiveCoverage = float64(naiveCovered) / float64(n)
	return study
}

// Print writes the study summary.
func (s *CoverageStudy) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Coverage Study ===")
	fmt.Fprintf(w, "Market Seed          : %d\n", s.MarketSeed)
	fmt.Fprintf(w, "Trials               : %d\n", s.Trials)
	fmt.Fprintf(w, "True Lift (mean)     : %.4f\n", s.TrueLift)
	fmt.Fprintf(w, "Empirical SE         : %.4f\n", s.EmpiricalSE)
	fmt.Fprintf(w, "Mean Bootstrap SE    : %.4f\n", s.MeanBootSE)
	fmt.Fprintf(w, "Mean Naive SE        : %.4f\n", s.MeanNaiveSE)
	fmt.Fprintf(w, "Bootstrap Coverage   : %.3f (target %.3f)\n", s.Coverage, s.Confidence)
	fmt.Fprintf(w, "Naive Coverage       : %.3f\n", s.NaiveCoverage)
}

func init() {
	coverageCmd.Flags().IntVar(&trials, "trials", 100, "Number of independent simulations")
	rootCmd.AddCommand(coverageCmd)
}
