package bootstrap

import (
	"fmt"
	"math/rand"
	"runtime"
	"slices"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/market-sim/market-sim/sim"
	"github.com/market-sim/market-sim/sim/metrics"
)

// Interval is the bootstrap estimate for one run.
type Interval struct {
	ObservedLift   float64
	BootstrapSE    float64 // sample std-dev of ReplicateLifts; NaN with one replicate
	CILower        float64
	CIUpper        float64
	Confidence     float64
	ReplicateLifts []float64 // in replicate index order
	NumBlocks      int
}

// Covers reports whether truth lies inside the confidence interval.
func (iv *Interval) Covers(truth float64) bool {
	return iv.CILower <= truth && truth <= iv.CIUpper
}

// Run block-bootstraps the lift of res. Replicates are computed in parallel;
// replicate i draws from its own stream seeded by opts.Seed and i, so the
// result does not depend on scheduling or the number of workers.
func Run(res *sim.SimulationResult, opts Options) (*Interval, error) {
	blocks, err := Partition(res, opts)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	if len(blocks) == 1 {
		logrus.Warnf("bootstrap: run fits in a single block (block_size=%g %s); every replicate equals the observed lift",
			opts.BlockSize, opts.Unit)
	}

	pop := metrics.PopulationOf(res)
	lifts := make([]float64, opts.Replicates)
	seeds := sim.NewPartitionedRNG(sim.NewSimulationKey(opts.Seed))

	workers := opts.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i := range lifts {
		seed := seeds.DeriveSeed(sim.SubsystemReplicate(i))
		g.Go(func() error {
			lifts[i] = replicate(blocks, pop, rand.New(rand.NewSource(seed)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	iv := &Interval{
		ObservedLift:   metrics.Collect(res).Lift,
		BootstrapSE:    stat.StdDev(lifts, nil),
		Confidence:     opts.Confidence,
		ReplicateLifts: lifts,
		NumBlocks:      len(blocks),
	}
	iv.CILower, iv.CIUpper = PercentileInterval(lifts, opts.Confidence)
	logrus.Infof("bootstrap: %d replicates over %d blocks, lift=%.4f se=%.4f CI=[%.4f, %.4f]",
		opts.Replicates, len(blocks), iv.ObservedLift, iv.BootstrapSE, iv.CILower, iv.CIUpper)
	return iv, nil
}

// replicate resamples len(blocks) blocks with replacement and returns the
// lift of their concatenation.
func replicate(blocks []Block, pop metrics.Population, rng *rand.Rand) float64 {
	var sum metrics.Tally
	for range blocks {
		sum = sum.Add(blocks[rng.Intn(len(blocks))].Tally)
	}
	return pop.Lift(sum)
}

// PercentileInterval returns the empirical (1−confidence)/2 and
// (1+confidence)/2 quantiles of values.
func PercentileInterval(values []float64, confidence float64) (lo, hi float64) {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	alpha := 1 - confidence
	lo = stat.Quantile(alpha/2, stat.Empirical, sorted, nil)
	hi = stat.Quantile(1-alpha/2, stat.Empirical, sorted, nil)
	return lo, hi
}
