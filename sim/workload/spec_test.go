package workload

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }

func TestArrivalSpec_Validate(t *testing.T) {
	tests := []struct {
		name    string
		spec    ArrivalSpec
		wantErr bool
	}{
		{"empty defaults to poisson", ArrivalSpec{}, false},
		{"poisson", ArrivalSpec{Process: ProcessPoisson}, false},
		{"gamma with cv", ArrivalSpec{Process: ProcessGamma, CV: floatPtr(2)}, false},
		{"weibull with cv", ArrivalSpec{Process: ProcessWeibull, CV: floatPtr(0.5)}, false},
		{"unknown process", ArrivalSpec{Process: "uniform"}, true},
		{"zero cv", ArrivalSpec{Process: ProcessGamma, CV: floatPtr(0)}, true},
		{"NaN cv", ArrivalSpec{Process: ProcessGamma, CV: floatPtr(math.NaN())}, true},
		{"weibull cv out of range", ArrivalSpec{Process: ProcessWeibull, CV: floatPtr(20)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestServiceDuration_MeanMatchesRate(t *testing.T) {
	// GIVEN mu = 4 (mean fill duration 0.25)
	rng := rand.New(rand.NewSource(3))

	// WHEN 20000 durations are drawn
	sum := 0.0
	for i := 0; i < 20000; i++ {
		sum += ServiceDuration(rng, 4)
	}

	// THEN the sample mean is within 5% of 1/mu
	assert.InEpsilon(t, 0.25, sum/20000, 0.05)
}

func TestServiceDuration_InfiniteMu_Instant(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	assert.Equal(t, 0.0, ServiceDuration(rng, math.Inf(1)))
}
