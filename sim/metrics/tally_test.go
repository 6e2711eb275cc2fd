package metrics

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/market-sim/market-sim/sim"
	"github.com/market-sim/market-sim/sim/internal/testutil"
)

func TestTallyRange_ListingRandomization(t *testing.T) {
	res := lrResult()

	first := TallyRange(res, 0, 5)
	second := TallyRange(res, 5, 10)

	assert.Equal(t, 5.0, first.Span)
	assert.Equal(t, 4.0, first.TreatedFilled)
	assert.Equal(t, 1.0, first.ControlFilled)
	assert.Equal(t, 5.0, second.TreatedFilled)
	assert.Equal(t, 0.0, second.ControlFilled)
}

func TestTallyRange_IncludesEventsAtHorizon(t *testing.T) {
	res := crResult()
	res.Arrivals = append(res.Arrivals, sim.ArrivalRecord{Time: 10, NurseArm: sim.Control, BookingIndex: -1})
	// arrivals at 5 (T), 6 (C), 7 (T) and 10 (C)
	tally := TallyRange(res, 5, 10)
	assert.Equal(t, 2, tally.TreatedArrivals)
	assert.Equal(t, 2, tally.ControlArrivals)
	assert.Equal(t, 1, tally.TreatedMatches)
}

func TestTally_AddIsWholeRun(t *testing.T) {
	for _, res := range []*sim.SimulationResult{lrResult(), crResult()} {
		t.Run(string(res.Config.Mode), func(t *testing.T) {
			// GIVEN the run split into two halves
			pop := PopulationOf(res)
			halves := TallyRange(res, 0, 5).Add(TallyRange(res, 5, 10))

			// THEN the summed tally reproduces the collected lift
			testutil.AssertFloat64Equal(t, "lift", Collect(res).Lift, pop.Lift(halves), 1e-12)
			assert.Equal(t, TallyRange(res, 0, 10), halves)
		})
	}
}

func TestPopulation_Lift_ZeroDenominators(t *testing.T) {
	pop := Population{Mode: sim.ListingRandomization}
	assert.Equal(t, 0.0, pop.Lift(Tally{Span: 5, TreatedFilled: 3}))

	cr := Population{Mode: sim.CustomerRandomization}
	assert.Equal(t, 0.0, cr.Lift(Tally{}))
}

func TestDetectInterference(t *testing.T) {
	tests := []struct {
		name      string
		res       *sim.SimulationResult
		threshold float64
		treated   float64
		control   float64
		detected  bool
	}{
		// 3 bookings over 2 treated shifts vs 1 over 2 control shifts
		{"listing", lrResult(), DefaultInterferenceThreshold, 1.5, 0.5, true},
		{"listing high threshold", lrResult(), 2, 1.5, 0.5, false},
		// 2 of 3 treated nurses vs 1 of 2 control nurses
		{"customer", crResult(), DefaultInterferenceThreshold, 2.0 / 3, 0.5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DetectInterference(tt.res, tt.threshold)
			assert.InDelta(t, tt.treated, r.TreatedRate, 1e-12)
			assert.InDelta(t, tt.control, r.ControlRate, 1e-12)
			assert.Equal(t, tt.detected, r.Detected)
		})
	}
}

func TestDetectInterference_NoBookings(t *testing.T) {
	res := lrResult()
	res.Bookings = nil
	r := DetectInterference(res, DefaultInterferenceThreshold)
	assert.False(t, r.Detected)
	assert.Equal(t, 0.0, r.RateDifference)
	assert.Equal(t, 2, r.TreatedUnits)

	var buf bytes.Buffer
	r.Print(&buf)
	assert.Contains(t, buf.String(), "Detected")
}

func TestMeanOccupancy(t *testing.T) {
	// GIVEN 2 shifts: one filled over [2, 6), both over [6, 8), none after
	res := &sim.SimulationResult{
		Horizon: 10,
		Shifts:  []sim.Shift{{ID: 0}, {ID: 1}},
		Occupancy: []sim.OccupancySample{
			{Time: 0, Open: 2},
			{Time: 2, Open: 1, Filled: 1},
			{Time: 6, Filled: 2},
			{Time: 8, Open: 2},
		},
	}

	// WHEN averaged over time
	occ, ok := MeanOccupancy(res)

	// THEN filled shift-time (4 + 4) over 2 shifts × 10
	assert.True(t, ok)
	assert.InDelta(t, 0.4, occ, 1e-12)

	_, ok = MeanOccupancy(&sim.SimulationResult{Horizon: 10})
	assert.False(t, ok)
}
