package sim

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/market-sim/market-sim/sim/trace"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1000.0, cfg.Horizon)
	assert.Equal(t, 0.5, cfg.LambdaC)
	assert.Equal(t, 1.0, cfg.Mu)
	assert.Equal(t, 5, cfg.K)
	assert.Equal(t, 20, cfg.NShifts)
	assert.Equal(t, 0.5, cfg.TreatmentProb)
	assert.Equal(t, []float64{1.0, 0.8, 0.6, 0.4, 0.2}, cfg.PositionWeights)
	assert.Nil(t, cfg.RandomSeed)
	assert.Equal(t, ListingRandomization, cfg.Mode)
	assert.Equal(t, 50.0, cfg.BlockSize)
	assert.Equal(t, 1000, cfg.NBootstrap)
	assert.Equal(t, 1.0, cfg.OutsideOptionWeight)
	assert.Equal(t, 0.95, cfg.ConfidenceLevel)
}

func TestConfig_Validate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero horizon", func(c *Config) { c.Horizon = 0 }, "horizon"},
		{"infinite horizon", func(c *Config) { c.Horizon = math.Inf(1) }, "horizon"},
		{"negative lambda", func(c *Config) { c.LambdaC = -1 }, "lambda_c"},
		{"zero mu", func(c *Config) { c.Mu = 0 }, "mu"},
		{"NaN mu", func(c *Config) { c.Mu = math.NaN() }, "mu"},
		{"zero k", func(c *Config) { c.K = 0 }, "k must"},
		{"zero shifts", func(c *Config) { c.NShifts = 0 }, "n_shifts"},
		{"too few position weights", func(c *Config) { c.K = 6 }, "position_weights"},
		{"negative position weight", func(c *Config) { c.PositionWeights[2] = -0.1 }, "position_weights[2]"},
		{"treatment prob above one", func(c *Config) { c.TreatmentProb = 1.5 }, "treatment_prob"},
		{"unknown mode", func(c *Config) { c.Mode = "XR" }, "randomization_mode"},
		{"unknown ranking rule", func(c *Config) { c.RankingRule = "random" }, "ranking_rule"},
		{"zero block size", func(c *Config) { c.BlockSize = 0 }, "block_size"},
		{"fractional event block", func(c *Config) { c.BlockSize = 2.5 }, "block_size"},
		{"unknown block unit", func(c *Config) { c.BlockUnit = "bytes" }, "block_unit"},
		{"unknown boundary policy", func(c *Config) { c.BoundaryPolicy = "pad" }, "boundary_policy"},
		{"zero bootstrap replicates", func(c *Config) { c.NBootstrap = 0 }, "n_bootstrap"},
		{"confidence of one", func(c *Config) { c.ConfidenceLevel = 1 }, "confidence_level"},
		{"negative outside weight", func(c *Config) { c.OutsideOptionWeight = -1 }, "outside_option_weight"},
		{"negative utility std dev", func(c *Config) { c.UtilityStdDev = -1 }, "utility_std_dev"},
		{"boosted share above one", func(c *Config) { c.BoostedShare = 2 }, "boosted_share"},
		{"negative workers", func(c *Config) { c.BootstrapWorkers = -1 }, "bootstrap_workers"},
		{"unknown trace level", func(c *Config) { c.TraceLevel = "verbose" }, "trace_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN the default config with one invalid field
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			// WHEN validated
			err := cfg.Validate()

			// THEN the error wraps ErrInvalidConfig and names the field
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestConfig_Validate_Accepts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"infinite mu", func(c *Config) { c.Mu = math.Inf(1) }},
		{"fractional time block", func(c *Config) {
			c.BlockUnit = BlockUnitTime
			c.BlockSize = 12.5
		}},
		{"extra position weights", func(c *Config) { c.K = 2 }},
		{"empty enums", func(c *Config) {
			c.Mode = ""
			c.RankingRule = ""
			c.BlockUnit = ""
			c.BoundaryPolicy = ""
			c.TraceLevel = ""
		}},
		{"customer randomization", func(c *Config) { c.Mode = CustomerRandomization }},
		{"treatment prob bounds", func(c *Config) { c.TreatmentProb = 1 }},
		{"zero outside weight", func(c *Config) { c.OutsideOptionWeight = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestConfig_Normalize_FillsEnums(t *testing.T) {
	cfg := Config{PositionWeights: []float64{1}}
	got := cfg.Normalize()
	assert.Equal(t, ListingRandomization, got.Mode)
	assert.Equal(t, RankBoostFirst, got.RankingRule)
	assert.Equal(t, BlockUnitEvents, got.BlockUnit)
	assert.Equal(t, BoundaryDrop, got.BoundaryPolicy)
	assert.Equal(t, trace.TraceLevelNone, got.TraceLevel)

	// Normalize copies the weights slice.
	got.PositionWeights[0] = 9
	assert.Equal(t, 1.0, cfg.PositionWeights[0])
}

func TestDecodeConfig_OverlaysBase(t *testing.T) {
	// GIVEN YAML that sets only a few keys
	data := []byte(`
horizon: 250
randomization_mode: CR
random_seed: 11
position_weights: [1.0, 0.5]
k: 2
arrival:
  process: gamma
  cv: 2.0
`)
	// WHEN decoded over the defaults
	cfg, err := DecodeConfig(data, DefaultConfig())

	// THEN set keys override and absent keys keep their defaults
	require.NoError(t, err)
	assert.Equal(t, 250.0, cfg.Horizon)
	assert.Equal(t, CustomerRandomization, cfg.Mode)
	require.NotNil(t, cfg.RandomSeed)
	assert.Equal(t, int64(11), *cfg.RandomSeed)
	assert.Equal(t, []float64{1.0, 0.5}, cfg.PositionWeights)
	assert.Equal(t, "gamma", cfg.Arrival.Process)
	assert.Equal(t, 0.5, cfg.LambdaC)
	assert.Equal(t, 20, cfg.NShifts)
	assert.NoError(t, cfg.Validate())
}

func TestDecodeConfig_DoesNotAliasBaseWeights(t *testing.T) {
	base := DefaultConfig()
	cfg, err := DecodeConfig([]byte("horizon: 10\n"), base)
	require.NoError(t, err)
	cfg.PositionWeights[0] = 42
	assert.Equal(t, 1.0, base.PositionWeights[0])
}

func TestDecodeConfig_RejectsUnknownKeys(t *testing.T) {
	// GIVEN a typo in a key name
	_, err := DecodeConfig([]byte("lamda_c: 0.5\n"), DefaultConfig())

	// THEN strict parsing rejects it
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lamda_c")
}

func TestDecodeConfig_EmptyDocumentKeepsBase(t *testing.T) {
	cfg, err := DecodeConfig(nil, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, "ok.yaml")
		require.NoError(t, os.WriteFile(path, []byte("n_shifts: 3\nk: 2\n"), 0o644))
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.NShifts)
		assert.Equal(t, 2, cfg.K)
	})

	t.Run("invalid value", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("mu: -2\n"), 0o644))
		_, err := LoadConfig(path)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(dir, "absent.yaml"))
		assert.Error(t, err)
	})
}

func TestResolveSeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RandomSeed = int64Ptr(-5)
	assert.Equal(t, int64(-5), ResolveSeed(cfg))

	// Without a seed a time-derived one is returned; it only needs to differ
	// from run to run, which a single call cannot show.
	cfg.RandomSeed = nil
	assert.NotPanics(t, func() { ResolveSeed(cfg) })
}
