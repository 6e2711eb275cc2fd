package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two simulations with the same SimulationKey and identical configuration
// MUST produce bit-for-bit identical booking logs.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemShifts draws base utilities at shift creation.
	SubsystemShifts = "shifts"

	// SubsystemAssignment draws shift arms under LR and the boosted subset
	// under CR. Both are part of the market, fixed at shift creation.
	SubsystemAssignment = "assignment"

	// SubsystemNurseArms draws nurse arms under CR.
	SubsystemNurseArms = "nurse_arms"

	// SubsystemArrivals draws inter-arrival gaps.
	SubsystemArrivals = "arrivals"

	// SubsystemChoice draws ranking tie-breaks and categorical choices.
	SubsystemChoice = "choice"

	// SubsystemService draws fill durations of booked shifts.
	SubsystemService = "service"

	// SubsystemBootstrap seeds the block bootstrap.
	SubsystemBootstrap = "bootstrap"
)

// SubsystemReplicate returns the subsystem name for bootstrap replicate N.
func SubsystemReplicate(idx int) string {
	return fmt.Sprintf("replicate_%d", idx)
}

// SubsystemTrial returns the subsystem name for independent trial N of a
// repeated-run experiment.
func SubsystemTrial(idx int) string {
	return fmt.Sprintf("trial_%d", idx)
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula: masterSeed XOR fnv1a64(subsystemName).
// Drawing from one subsystem never shifts another subsystem's sequence, so
// e.g. changing the choice model leaves shift utilities and arms untouched.
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
// Parallel consumers should take a seed from DeriveSeed and build their own
// *rand.Rand.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(p.DeriveSeed(name)))
	p.subsystems[name] = rng
	return rng
}

// DeriveSeed returns the seed ForSubsystem would use for name, without
// creating or caching an RNG.
func (p *PartitionedRNG) DeriveSeed(name string) int64 {
	return int64(p.key) ^ fnv1a64(name)
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
