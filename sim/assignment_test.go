package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssigner_ListingRandomization(t *testing.T) {
	// GIVEN listing randomization at p = 0.3
	cfg := DefaultConfig()
	cfg.TreatmentProb = 0.3
	a := NewAssigner(cfg, newRand(8), newRand(9))

	// WHEN 10000 shift arms are drawn
	treated := 0
	for i := 0; i < 10000; i++ {
		arm, boosted := a.ShiftArm()
		assert.NotEqual(t, Unassigned, arm)
		assert.Equal(t, arm == Treated, boosted)
		if arm == Treated {
			treated++
		}
	}

	// THEN about 30% are treated and nurses carry no arm
	assert.InDelta(t, 0.3, float64(treated)/10000, 0.02)
	assert.Equal(t, Unassigned, a.NurseArm())
}

func TestAssigner_CustomerRandomization(t *testing.T) {
	// GIVEN customer randomization with p = 0.5 and boosted share 0.25
	cfg := DefaultConfig()
	cfg.Mode = CustomerRandomization
	cfg.BoostedShare = 0.25
	a := NewAssigner(cfg, newRand(8), newRand(9))

	// WHEN shift flags and nurse arms are drawn
	boosted, treated := 0, 0
	for i := 0; i < 10000; i++ {
		arm, b := a.ShiftArm()
		assert.Equal(t, Unassigned, arm)
		if b {
			boosted++
		}
		if a.NurseArm() == Treated {
			treated++
		}
	}

	// THEN the boosted share and the nurse treatment rate match the config
	assert.InDelta(t, 0.25, float64(boosted)/10000, 0.02)
	assert.InDelta(t, 0.5, float64(treated)/10000, 0.02)
}

func TestAssigner_ExtremeProbabilities(t *testing.T) {
	tests := []struct {
		name string
		p    float64
		want Arm
	}{
		{"never treat", 0, Control},
		{"always treat", 1, Treated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.TreatmentProb = tt.p
			a := NewAssigner(cfg, newRand(1), newRand(2))
			for i := 0; i < 100; i++ {
				arm, _ := a.ShiftArm()
				assert.Equal(t, tt.want, arm)
			}
		})
	}
}

func TestAssigner_NurseArmsDoNotDisturbShifts(t *testing.T) {
	// GIVEN two CR assigners sharing a shift stream seed but not a nurse one
	cfg := DefaultConfig()
	cfg.Mode = CustomerRandomization
	a := NewAssigner(cfg, newRand(4), newRand(5))
	b := NewAssigner(cfg, newRand(4), newRand(6))

	// WHEN b draws nurse arms between its shift draws
	for i := 0; i < 100; i++ {
		_, wantBoosted := a.ShiftArm()
		b.NurseArm()
		_, gotBoosted := b.ShiftArm()

		// THEN the boosted subset is unchanged
		assert.Equal(t, wantBoosted, gotBoosted, "shift %d", i)
	}
}

func TestArm_String(t *testing.T) {
	assert.Equal(t, "treated", Treated.String())
	assert.Equal(t, "control", Control.String())
	assert.Equal(t, "unassigned", Unassigned.String())
}
