// Package bootstrap estimates the sampling variability of the treatment lift
// with a block bootstrap over the simulated timeline.
//
// The timeline is cut into contiguous, non-overlapping blocks; replicates
// resample whole blocks with replacement so that the dependence between
// nearby events, which share shift availability, survives resampling.
package bootstrap

import (
	"fmt"
	"math"

	"github.com/market-sim/market-sim/sim"
	"github.com/market-sim/market-sim/sim/metrics"
)

// Span is a half-open interval [Lo, Hi) of simulated time.
type Span struct {
	Lo, Hi float64
}

// Block is one resampling unit: one span of the timeline, or two when the
// boundary policy wrapped an undersized tail onto the first block.
type Block struct {
	Spans   []Span
	Tally   metrics.Tally
	Wrapped bool
}

// Start returns the beginning of the block's first span.
func (b Block) Start() float64 { return b.Spans[0].Lo }

// End returns the end of the block's last span.
func (b Block) End() float64 { return b.Spans[len(b.Spans)-1].Hi }

// Partition cuts res into blocks of opts.BlockSize, measured in bookings or
// simulated time, then applies the boundary policy to a final undersized
// block. A run too short for even one full block yields a single block
// covering the whole horizon.
func Partition(res *sim.SimulationResult, opts Options) ([]Block, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	var (
		bounds []float64
		short  bool
	)
	switch opts.Unit {
	case sim.BlockUnitTime:
		bounds, short = timeBounds(res.Horizon, opts.BlockSize)
	default:
		bounds, short = eventBounds(res, int(opts.BlockSize))
	}

	blocks := make([]Block, 0, len(bounds)-1)
	for i := 0; i+1 < len(bounds); i++ {
		span := Span{Lo: bounds[i], Hi: bounds[i+1]}
		blocks = append(blocks, Block{
			Spans: []Span{span},
			Tally: metrics.TallyRange(res, span.Lo, span.Hi),
		})
	}
	if !short || len(blocks) < 2 {
		return blocks, nil
	}

	tail := blocks[len(blocks)-1]
	blocks = blocks[:len(blocks)-1]
	if opts.Boundary == sim.BoundaryWrap {
		head := &blocks[0]
		head.Spans = append(head.Spans, tail.Spans...)
		head.Tally = head.Tally.Add(tail.Tally)
		head.Wrapped = true
	}
	return blocks, nil
}

// timeBounds returns block boundaries every size time units and whether the
// last block is shorter than size.
func timeBounds(horizon, size float64) ([]float64, bool) {
	full := int(math.Floor(horizon / size))
	bounds := make([]float64, 0, full+2)
	for j := 0; j <= full; j++ {
		bounds = append(bounds, float64(j)*size)
	}
	last := bounds[len(bounds)-1]
	if horizon-last > 1e-9*size {
		return append(bounds, horizon), true
	}
	bounds[len(bounds)-1] = horizon
	if full == 0 {
		return []float64{0, horizon}, true
	}
	return bounds, false
}

// eventBounds returns block boundaries at every size-th booking and whether
// the last block holds fewer than size bookings. Each block starts at the
// time of its first booking; the first starts at 0 and the last ends at the
// horizon, so blocks also cover the arrivals between bookings.
func eventBounds(res *sim.SimulationResult, size int) ([]float64, bool) {
	n := len(res.Bookings)
	bounds := []float64{0}
	for j := size; j < n; j += size {
		bounds = append(bounds, res.Bookings[j].Time)
	}
	bounds = append(bounds, res.Horizon)
	return bounds, n%size != 0 || n == 0
}

// Options configures a bootstrap run.
type Options struct {
	BlockSize  float64
	Unit       sim.BlockUnit
	Boundary   sim.BoundaryPolicy
	Replicates int
	Confidence float64
	Workers    int // 0 = GOMAXPROCS
	Seed       int64
}

// OptionsFromResult takes the bootstrap settings from the run's config and
// derives the bootstrap seed from the run's key.
func OptionsFromResult(res *sim.SimulationResult) Options {
	cfg := res.Config.Normalize()
	return Options{
		BlockSize:  cfg.BlockSize,
		Unit:       cfg.BlockUnit,
		Boundary:   cfg.BoundaryPolicy,
		Replicates: cfg.NBootstrap,
		Confidence: cfg.ConfidenceLevel,
		Workers:    cfg.BootstrapWorkers,
		Seed:       sim.NewPartitionedRNG(res.Key).DeriveSeed(sim.SubsystemBootstrap),
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	if math.IsNaN(o.BlockSize) || math.IsInf(o.BlockSize, 0) || o.BlockSize <= 0 {
		return fmt.Errorf("block size must be a finite positive number, got %f", o.BlockSize)
	}
	switch o.Unit {
	case sim.BlockUnitTime:
	case sim.BlockUnitEvents, "":
		if o.BlockSize != math.Trunc(o.BlockSize) {
			return fmt.Errorf("event block size must be a whole number, got %f", o.BlockSize)
		}
	default:
		return fmt.Errorf("unknown block unit %q", o.Unit)
	}
	switch o.Boundary {
	case sim.BoundaryDrop, sim.BoundaryWrap, "":
	default:
		return fmt.Errorf("unknown boundary policy %q", o.Boundary)
	}
	if o.Replicates < 1 {
		return fmt.Errorf("replicates must be >= 1, got %d", o.Replicates)
	}
	if math.IsNaN(o.Confidence) || o.Confidence <= 0 || o.Confidence >= 1 {
		return fmt.Errorf("confidence must be in (0, 1), got %f", o.Confidence)
	}
	if o.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", o.Workers)
	}
	return nil
}
