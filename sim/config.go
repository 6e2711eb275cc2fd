package sim

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/market-sim/market-sim/sim/trace"
	"github.com/market-sim/market-sim/sim/workload"
)

// RandomizationMode selects which entity carries the treatment arm.
type RandomizationMode string

const (
	// ListingRandomization assigns arms to shifts at creation.
	ListingRandomization RandomizationMode = "LR"
	// CustomerRandomization assigns arms to nurses at arrival.
	CustomerRandomization RandomizationMode = "CR"
)

// RankingRule selects how the choice engine orders open shifts.
type RankingRule string

const (
	// RankBoostFirst places every boosted shift ahead of every unboosted
	// shift, then orders by descending base utility.
	RankBoostFirst RankingRule = "boost-first"
	// RankUtility orders by descending effective utility (base plus
	// treatment boost) and uses boosting only to break exact ties.
	RankUtility RankingRule = "utility"
)

// BlockUnit selects how bootstrap block sizes are measured.
type BlockUnit string

const (
	BlockUnitEvents BlockUnit = "events" // block_size booking events per block
	BlockUnitTime   BlockUnit = "time"   // block_size simulated time units per block
)

// BoundaryPolicy selects what happens to a final undersized bootstrap block.
type BoundaryPolicy string

const (
	BoundaryDrop BoundaryPolicy = "drop" // discard it
	BoundaryWrap BoundaryPolicy = "wrap" // merge it circularly with the first block
)

// Config is the full, typed configuration of one simulation run and its
// bootstrap. Loaded from YAML via LoadConfig(path) or built from
// DefaultConfig(). Validate must pass before a run starts.
type Config struct {
	// Market dynamics
	Horizon float64              `yaml:"horizon"`  // simulated time span (> 0)
	LambdaC float64              `yaml:"lambda_c"` // nurse arrival rate (> 0)
	Mu      float64              `yaml:"mu"`       // shift reopening rate (> 0; +Inf = instant)
	Arrival workload.ArrivalSpec `yaml:"arrival"`

	// Market structure
	K             int     `yaml:"k"`        // consideration set size
	NShifts       int     `yaml:"n_shifts"` // number of shifts
	UtilityMean   float64 `yaml:"utility_mean"`
	UtilityStdDev float64 `yaml:"utility_std_dev"`

	// Choice model
	PositionWeights     []float64   `yaml:"position_weights"`
	OutsideOptionWeight float64     `yaml:"outside_option_weight"`
	RankingRule         RankingRule `yaml:"ranking_rule"`

	// Experiment
	Mode           RandomizationMode `yaml:"randomization_mode"`
	TreatmentProb  float64           `yaml:"treatment_prob"`
	TreatmentBoost float64           `yaml:"treatment_boost"` // utility bonus on boosted shifts
	BoostedShare   float64           `yaml:"boosted_share"`   // CR only: share of shifts a treated nurse sees boosted
	RandomSeed     *int64            `yaml:"random_seed,omitempty"`

	// Block bootstrap
	BlockSize        float64        `yaml:"block_size"`
	BlockUnit        BlockUnit      `yaml:"block_unit"`
	BoundaryPolicy   BoundaryPolicy `yaml:"boundary_policy"`
	NBootstrap       int            `yaml:"n_bootstrap"`
	ConfidenceLevel  float64        `yaml:"confidence_level"`
	BootstrapWorkers int            `yaml:"bootstrap_workers"` // 0 = GOMAXPROCS

	// Diagnostics
	TrackOccupancy bool             `yaml:"track_occupancy"`
	TraceLevel     trace.TraceLevel `yaml:"trace_level"`
}

// DefaultConfig returns the baseline marketplace configuration.
func DefaultConfig() Config {
	return Config{
		Horizon:             1000,
		LambdaC:             0.5,
		Mu:                  1.0,
		Arrival:             workload.ArrivalSpec{Process: workload.ProcessPoisson},
		K:                   5,
		NShifts:             20,
		UtilityMean:         0,
		UtilityStdDev:       1,
		PositionWeights:     []float64{1.0, 0.8, 0.6, 0.4, 0.2},
		OutsideOptionWeight: 1.0,
		RankingRule:         RankBoostFirst,
		Mode:                ListingRandomization,
		TreatmentProb:       0.5,
		TreatmentBoost:      0,
		BoostedShare:        0.5,
		BlockSize:           50,
		BlockUnit:           BlockUnitEvents,
		BoundaryPolicy:      BoundaryDrop,
		NBootstrap:          1000,
		ConfidenceLevel:     0.95,
		TraceLevel:          trace.TraceLevelNone,
	}
}

// Normalize fills empty enum fields with their defaults and returns the copy.
func (c Config) Normalize() Config {
	if c.Mode == "" {
		c.Mode = ListingRandomization
	}
	if c.RankingRule == "" {
		c.RankingRule = RankBoostFirst
	}
	if c.BlockUnit == "" {
		c.BlockUnit = BlockUnitEvents
	}
	if c.BoundaryPolicy == "" {
		c.BoundaryPolicy = BoundaryDrop
	}
	if c.TraceLevel == "" {
		c.TraceLevel = trace.TraceLevelNone
	}
	if c.Arrival.Process == "" {
		c.Arrival.Process = workload.ProcessPoisson
	}
	c.PositionWeights = slices.Clone(c.PositionWeights)
	return c
}

// Valid value registries.
var (
	validModes            = map[RandomizationMode]bool{"": true, ListingRandomization: true, CustomerRandomization: true}
	validRankingRules     = map[RankingRule]bool{"": true, RankBoostFirst: true, RankUtility: true}
	validBlockUnits       = map[BlockUnit]bool{"": true, BlockUnitEvents: true, BlockUnitTime: true}
	validBoundaryPolicies = map[BoundaryPolicy]bool{"": true, BoundaryDrop: true, BoundaryWrap: true}
)

// Validate checks every field and returns the first violation, wrapped in
// ErrInvalidConfig.
func (c Config) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (c Config) validate() error {
	if err := validateFinitePositive("horizon", c.Horizon); err != nil {
		return err
	}
	if err := validateFinitePositive("lambda_c", c.LambdaC); err != nil {
		return err
	}
	if math.IsNaN(c.Mu) || c.Mu <= 0 {
		return fmt.Errorf("mu must be positive, got %f", c.Mu)
	}
	if err := c.Arrival.Validate(); err != nil {
		return err
	}
	if c.K < 1 {
		return fmt.Errorf("k must be >= 1, got %d", c.K)
	}
	if c.NShifts < 1 {
		return fmt.Errorf("n_shifts must be >= 1, got %d", c.NShifts)
	}
	if err := validateFinite("utility_mean", c.UtilityMean); err != nil {
		return err
	}
	if err := validateFinite("utility_std_dev", c.UtilityStdDev); err != nil {
		return err
	}
	if c.UtilityStdDev < 0 {
		return fmt.Errorf("utility_std_dev must be non-negative, got %f", c.UtilityStdDev)
	}
	if len(c.PositionWeights) < c.K {
		return fmt.Errorf("position_weights has %d entries, need at least k=%d", len(c.PositionWeights), c.K)
	}
	for i, w := range c.PositionWeights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return fmt.Errorf("position_weights[%d] must be a finite non-negative number, got %f", i, w)
		}
	}
	if err := validateFinite("outside_option_weight", c.OutsideOptionWeight); err != nil {
		return err
	}
	if c.OutsideOptionWeight < 0 {
		return fmt.Errorf("outside_option_weight must be non-negative, got %f", c.OutsideOptionWeight)
	}
	if !validRankingRules[c.RankingRule] {
		return fmt.Errorf("unknown ranking_rule %q; valid: boost-first, utility", c.RankingRule)
	}
	if !validModes[c.Mode] {
		return fmt.Errorf("unknown randomization_mode %q; valid: LR, CR", c.Mode)
	}
	if err := validateProbability("treatment_prob", c.TreatmentProb); err != nil {
		return err
	}
	if err := validateFinite("treatment_boost", c.TreatmentBoost); err != nil {
		return err
	}
	if err := validateProbability("boosted_share", c.BoostedShare); err != nil {
		return err
	}
	if err := validateFinitePositive("block_size", c.BlockSize); err != nil {
		return err
	}
	if !validBlockUnits[c.BlockUnit] {
		return fmt.Errorf("unknown block_unit %q; valid: events, time", c.BlockUnit)
	}
	if c.BlockUnit != BlockUnitTime && c.BlockSize != math.Trunc(c.BlockSize) {
		return fmt.Errorf("block_size must be a whole number of events, got %f", c.BlockSize)
	}
	if !validBoundaryPolicies[c.BoundaryPolicy] {
		return fmt.Errorf("unknown boundary_policy %q; valid: drop, wrap", c.BoundaryPolicy)
	}
	if c.NBootstrap < 1 {
		return fmt.Errorf("n_bootstrap must be >= 1, got %d", c.NBootstrap)
	}
	if math.IsNaN(c.ConfidenceLevel) || c.ConfidenceLevel <= 0 || c.ConfidenceLevel >= 1 {
		return fmt.Errorf("confidence_level must be in (0, 1), got %f", c.ConfidenceLevel)
	}
	if c.BootstrapWorkers < 0 {
		return fmt.Errorf("bootstrap_workers must be non-negative, got %d", c.BootstrapWorkers)
	}
	if !trace.IsValidTraceLevel(string(c.TraceLevel)) {
		return fmt.Errorf("unknown trace_level %q; valid: none, decisions", c.TraceLevel)
	}
	return nil
}

func validateFinite(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	return nil
}

func validateFinitePositive(name string, val float64) error {
	if err := validateFinite(name, val); err != nil {
		return err
	}
	if val <= 0 {
		return fmt.Errorf("%s must be positive, got %f", name, val)
	}
	return nil
}

func validateProbability(name string, val float64) error {
	if math.IsNaN(val) || val < 0 || val > 1 {
		return fmt.Errorf("%s must be in [0, 1], got %f", name, val)
	}
	return nil
}

// DecodeConfig parses YAML over base, so keys absent from data keep base's
// values. Uses strict parsing: unrecognized keys (typos) are rejected.
// The result is not validated.
func DecodeConfig(data []byte, base Config) (Config, error) {
	cfg := base
	cfg.PositionWeights = slices.Clone(base.PositionWeights)
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads a YAML config file over DefaultConfig() and validates it.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := DecodeConfig(data, DefaultConfig())
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ResolveSeed returns the configured random seed, or a time-derived one when
// none is set. A time-derived seed is logged so the run can be replayed.
func ResolveSeed(cfg Config) int64 {
	if cfg.RandomSeed != nil {
		return *cfg.RandomSeed
	}
	seed := time.Now().UnixNano()
	logrus.Warnf("random_seed not set; using time-derived seed %d", seed)
	return seed
}
