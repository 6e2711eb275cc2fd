// Package testutil provides shared test infrastructure for the marketplace
// simulator: the reference scenario set and float assertion helpers used
// across sim/ and its sub-package tests.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// ScenarioSet represents the structure of testdata/scenarios.json.
type ScenarioSet struct {
	Scenarios []Scenario `json:"scenarios"`
}

// Scenario is one reference market configuration. Fields left zero fall back
// to the simulator defaults.
type Scenario struct {
	Name              string    `json:"name"`
	Mode              string    `json:"randomization_mode"`
	Horizon           float64   `json:"horizon"`
	LambdaC           float64   `json:"lambda_c"`
	Mu                float64   `json:"mu"`
	K                 int       `json:"k"`
	NShifts           int       `json:"n_shifts"`
	TreatmentProb     float64   `json:"treatment_prob"`
	TreatmentBoost    float64   `json:"treatment_boost"`
	PositionWeights   []float64 `json:"position_weights"`
	Seed              int64     `json:"seed"`
	MaxBookingRate    float64   `json:"max_booking_rate"` // upper bound on bookings/arrivals; 0 = unchecked
	ExpectSomeBooking bool      `json:"expect_some_booking"`
}

// LoadScenarios loads the reference scenarios from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadScenarios(t *testing.T) *ScenarioSet {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "scenarios.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read scenarios: %v", err)
	}

	var set ScenarioSet
	if err := json.Unmarshal(data, &set); err != nil {
		t.Fatalf("Failed to parse scenarios: %v", err)
	}
	return &set
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertNonDecreasing fails if values ever decrease.
func AssertNonDecreasing(t *testing.T, name string, values []float64) {
	t.Helper()
	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1] {
			t.Errorf("%s: value %d (%v) precedes value %d (%v)", name, i, values[i], i-1, values[i-1])
			return
		}
	}
}

// AssertProbabilityVector fails unless every entry is in [0, 1] and the
// entries sum to 1 within tol.
func AssertProbabilityVector(t *testing.T, name string, probs []float64, tol float64) {
	t.Helper()
	sum := 0.0
	for i, p := range probs {
		if math.IsNaN(p) || p < 0 || p > 1 {
			t.Errorf("%s[%d] = %v, not a probability", name, i, p)
		}
		sum += p
	}
	if math.Abs(sum-1) > tol {
		t.Errorf("%s: sums to %v, want 1", name, sum)
	}
}
