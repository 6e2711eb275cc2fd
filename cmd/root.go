package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/market-sim/market-sim/sim"
	"github.com/market-sim/market-sim/sim/trace"
)

var (
	// Config sources, applied in order: built-in defaults, preset, config file, flags
	configPath       string // YAML config file
	presetName       string // preset name in defaults.yaml
	defaultsFilePath string // path to defaults.yaml

	// CLI flags for market dynamics
	seed           int64   // Random seed; time-derived when neither flag nor config sets one
	horizon        float64 // Simulated time span
	lambdaC        float64 // Nurse arrival rate
	mu             float64 // Shift reopening rate
	k              int     // Consideration set size
	nShifts        int     // Number of shifts
	treatmentProb  float64 // Treatment probability
	treatmentBoost float64 // Utility bonus for boosted shifts
	mode           string  // LR or CR
	trackOccupancy bool    // Record open/filled counts after every event
	traceLevel     string  // none or decisions

	// CLI flags for the block bootstrap
	blockSize  float64 // Block size in events or time units
	blockUnit  string  // events or time
	boundary   string  // drop or wrap
	nBootstrap int     // Bootstrap replicates
	confidence float64 // Confidence level of the interval
	workers    int     // Parallel workers; 0 = GOMAXPROCS

	logLevel string // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "marketsim",
	Short: "Discrete-event simulator for interference in two-sided marketplace experiments",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// runCmd simulates one market and prints its metrics
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one marketplace simulation",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		log := logrus.WithField("run_id", uuid.NewString())
		log.Infof("Starting simulation: mode=%s horizon=%g n_shifts=%d k=%d", cfg.Mode, cfg.Horizon, cfg.NShifts, cfg.K)

		res, err := sim.Simulate(cfg, sim.ResolveSeed(cfg))
		if err != nil {
			log.Fatalf("Simulation failed: %v", err)
		}
		printRunReport(os.Stdout, res)
		log.Info("Simulation complete.")
	},
}

// resolveConfig layers defaults, preset, config file and changed flags, then
// validates the result.
func resolveConfig(cmd *cobra.Command) (sim.Config, error) {
	cfg := sim.DefaultConfig()
	var err error
	if presetName != "" {
		cfg, err = loadPreset(defaultsFilePath, presetName, cfg)
		if err != nil {
			return sim.Config{}, err
		}
	}
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return sim.Config{}, fmt.Errorf("reading config: %w", err)
		}
		cfg, err = sim.DecodeConfig(data, cfg)
		if err != nil {
			return sim.Config{}, fmt.Errorf("%s: %w", configPath, err)
		}
	}
	applyFlagOverrides(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return sim.Config{}, err
	}
	return cfg, nil
}

// applyFlagOverrides copies explicitly set flags into cfg. Flags left at
// their defaults never overwrite preset or file values.
func applyFlagOverrides(cmd *cobra.Command, cfg *sim.Config) {
	flags := cmd.Flags()
	if flags.Changed("seed") {
		s := seed
		cfg.RandomSeed = &s
	}
	if flags.Changed("horizon") {
		cfg.Horizon = horizon
	}
	if flags.Changed("lambda") {
		cfg.LambdaC = lambdaC
	}
	if flags.Changed("mu") {
		cfg.Mu = mu
	}
	if flags.Changed("k") {
		cfg.K = k
	}
	if flags.Changed("n-shifts") {
		cfg.NShifts = nShifts
	}
	if flags.Changed("treatment-prob") {
		cfg.TreatmentProb = treatmentProb
	}
	if flags.Changed("treatment-boost") {
		cfg.TreatmentBoost = treatmentBoost
	}
	if flags.Changed("mode") {
		cfg.Mode = sim.RandomizationMode(mode)
	}
	if flags.Changed("track-occupancy") {
		cfg.TrackOccupancy = trackOccupancy
	}
	if flags.Changed("trace-level") {
		cfg.TraceLevel = trace.TraceLevel(traceLevel)
	}
	if flags.Changed("block-size") {
		cfg.BlockSize = blockSize
	}
	if flags.Changed("block-unit") {
		cfg.BlockUnit = sim.BlockUnit(blockUnit)
	}
	if flags.Changed("boundary") {
		cfg.BoundaryPolicy = sim.BoundaryPolicy(boundary)
	}
	if flags.Changed("n-bootstrap") {
		cfg.NBootstrap = nBootstrap
	}
	if flags.Changed("confidence") {
		cfg.ConfidenceLevel = confidence
	}
	if flags.Changed("workers") {
		cfg.BootstrapWorkers = workers
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// registerConfigFlags binds the config-source and override flags to flags.
func registerConfigFlags(flags *pflag.FlagSet) {
	defaults := sim.DefaultConfig()

	flags.StringVar(&configPath, "config", "", "Path to a YAML config file")
	flags.StringVar(&presetName, "preset", "", "Named preset from the defaults file")
	flags.StringVar(&defaultsFilePath, "defaults-file", "defaults.yaml", "Path to the presets file")

	// Market configs
	flags.Int64Var(&seed, "seed", 42, "Random seed (overrides random_seed)")
	flags.Float64Var(&horizon, "horizon", defaults.Horizon, "Simulated time span")
	flags.Float64Var(&lambdaC, "lambda", defaults.LambdaC, "Nurse arrival rate")
	flags.Float64Var(&mu, "mu", defaults.Mu, "Shift reopening rate")
	flags.IntVar(&k, "k", defaults.K, "Consideration set size")
	flags.IntVar(&nShifts, "n-shifts", defaults.NShifts, "Number of shifts")
	flags.Float64Var(&treatmentProb, "treatment-prob", defaults.TreatmentProb, "Probability a unit is treated")
	flags.Float64Var(&treatmentBoost, "treatment-boost", defaults.TreatmentBoost, "Utility bonus for boosted shifts")
	flags.StringVar(&mode, "mode", string(defaults.Mode), "Randomization mode (LR, CR)")
	flags.BoolVar(&trackOccupancy, "track-occupancy", false, "Record open/filled shift counts after every event")
	flags.StringVar(&traceLevel, "trace-level", string(trace.TraceLevelNone), "Decision trace level (none, decisions)")

	// Bootstrap configs
	flags.Float64Var(&blockSize, "block-size", defaults.BlockSize, "Bootstrap block size")
	flags.StringVar(&blockUnit, "block-unit", string(defaults.BlockUnit), "Block size unit (events, time)")
	flags.StringVar(&boundary, "boundary", string(defaults.BoundaryPolicy), "Undersized final block policy (drop, wrap)")
	flags.IntVar(&nBootstrap, "n-bootstrap", defaults.NBootstrap, "Bootstrap replicates")
	flags.Float64Var(&confidence, "confidence", defaults.ConfidenceLevel, "Confidence level of the bootstrap interval")
	flags.IntVar(&workers, "workers", 0, "Parallel workers (0 = GOMAXPROCS)")
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	registerConfigFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(runCmd)
}
