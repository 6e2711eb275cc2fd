package sim

import "math/rand"

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func int64Ptr(v int64) *int64 { return &v }

// testConfig returns a small, fast, valid configuration.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Horizon = 200
	cfg.RandomSeed = int64Ptr(42)
	return cfg
}
