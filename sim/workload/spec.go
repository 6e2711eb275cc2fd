// Package workload generates the stochastic inputs of a marketplace run:
// nurse inter-arrival gaps and shift service (fill) durations.
package workload

import (
	"fmt"
	"math"
	"math/rand"
)

// Arrival process names accepted in ArrivalSpec.Process.
const (
	ProcessPoisson = "poisson"
	ProcessGamma   = "gamma"
	ProcessWeibull = "weibull"
)

// ArrivalSpec configures the inter-arrival process. The mean rate is set
// separately (lambda_c); ArrivalSpec only shapes the gap distribution.
type ArrivalSpec struct {
	Process string   `yaml:"process"`
	CV      *float64 `yaml:"cv,omitempty"`
}

var validArrivalProcesses = map[string]bool{
	"": true, ProcessPoisson: true, ProcessGamma: true, ProcessWeibull: true,
}

// Validate checks the process name and coefficient of variation.
func (s ArrivalSpec) Validate() error {
	if !validArrivalProcesses[s.Process] {
		return fmt.Errorf("unknown arrival process %q; valid: poisson, gamma, weibull", s.Process)
	}
	if s.CV == nil {
		return nil
	}
	cv := *s.CV
	if math.IsNaN(cv) || math.IsInf(cv, 0) || cv <= 0 {
		return fmt.Errorf("arrival.cv must be a finite positive number, got %f", cv)
	}
	if s.Process == ProcessWeibull && (cv < 0.01 || cv > 10.4) {
		return fmt.Errorf("weibull cv must be in [0.01, 10.4], got %f", cv)
	}
	return nil
}

// ServiceDuration draws how long a booked shift stays Filled: exponential
// with rate mu. An infinite mu means instant reopening and returns 0.
func ServiceDuration(rng *rand.Rand, mu float64) float64 {
	if math.IsInf(mu, 1) {
		return 0
	}
	return rng.ExpFloat64() / mu
}
