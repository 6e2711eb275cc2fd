package sim

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/market-sim/market-sim/sim/trace"
	"github.com/market-sim/market-sim/sim/workload"
)

// Simulator runs one marketplace simulation. It owns its shift store, event
// clock and random streams; nothing is shared between simulators, so
// independent runs may execute in parallel.
type Simulator struct {
	cfg       Config
	key       SimulationKey
	marketKey SimulationKey
	rng       *PartitionedRNG
	clock     *EventClock
	store     *ShiftStore

	choice   *ChoiceEngine
	assigner *Assigner
	arrivals workload.ArrivalSampler

	arrivalRNG *rand.Rand
	serviceRNG *rand.Rand

	nextNurseID int
	bookings    []BookingEvent
	records     []ArrivalRecord
	occupancy   []OccupancySample
	trace       *trace.SimulationTrace
	ran         bool
}

// NewSimulator validates cfg and builds the initial market: n_shifts Open
// shifts with base utilities and arms drawn from their own streams, and the
// first arrival scheduled. The market and the run share key.
func NewSimulator(cfg Config, key SimulationKey) (*Simulator, error) {
	return NewMarketSimulator(cfg, key, key)
}

// NewMarketSimulator is NewSimulator with the market drawn from marketKey:
// base utilities, LR shift arms and the CR boosted subset. Arrivals, nurse
// arms, choices and fill durations come from key. Runs sharing marketKey
// face the same shifts.
func NewMarketSimulator(cfg Config, marketKey, key SimulationKey) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Normalize()

	rng := NewPartitionedRNG(key)
	market := rng
	if marketKey != key {
		market = NewPartitionedRNG(marketKey)
	}
	sim := &Simulator{
		cfg:        cfg,
		key:        key,
		marketKey:  marketKey,
		rng:        rng,
		clock:      NewEventClock(cfg.Horizon),
		choice:     NewChoiceEngine(cfg, rng.ForSubsystem(SubsystemChoice)),
		assigner:   NewAssigner(cfg, market.ForSubsystem(SubsystemAssignment), rng.ForSubsystem(SubsystemNurseArms)),
		arrivals:   workload.NewArrivalSampler(cfg.Arrival, cfg.LambdaC),
		arrivalRNG: rng.ForSubsystem(SubsystemArrivals),
		serviceRNG: rng.ForSubsystem(SubsystemService),
		bookings:   make([]BookingEvent, 0),
		records:    make([]ArrivalRecord, 0),
	}

	utilRNG := market.ForSubsystem(SubsystemShifts)
	shifts := make([]Shift, cfg.NShifts)
	for i := range shifts {
		arm, boosted := sim.assigner.ShiftArm()
		shifts[i] = Shift{
			ID:          i,
			BaseUtility: cfg.UtilityMean + cfg.UtilityStdDev*utilRNG.NormFloat64(),
			Arm:         arm,
			Boosted:     boosted,
			State:       ShiftOpen,
		}
	}
	sim.store = NewShiftStore(shifts)

	if cfg.TraceLevel.Enabled() {
		sim.trace = trace.NewSimulationTrace(trace.TraceConfig{Level: cfg.TraceLevel})
	}
	if cfg.TrackOccupancy {
		sim.occupancy = []OccupancySample{sim.sampleOccupancy()}
	}

	first := sim.arrivals.SampleGap(sim.arrivalRNG)
	if err := sim.clock.Schedule(&ArrivalEvent{time: first, NurseID: sim.nextNurseID}); err != nil {
		return nil, err
	}
	sim.nextNurseID++
	return sim, nil
}

// Simulate runs one simulation of cfg with the given seed.
func Simulate(cfg Config, seed int64) (*SimulationResult, error) {
	sim, err := NewSimulator(cfg, NewSimulationKey(seed))
	if err != nil {
		return nil, err
	}
	return sim.Run()
}

// SimulateMarket runs one simulation of cfg on the market drawn from
// marketSeed, with every other draw from seed.
func SimulateMarket(cfg Config, marketSeed, seed int64) (*SimulationResult, error) {
	sim, err := NewMarketSimulator(cfg, NewSimulationKey(marketSeed), NewSimulationKey(seed))
	if err != nil {
		return nil, err
	}
	return sim.Run()
}

// Run processes events until the horizon and returns the result.
// Panics if called more than once.
func (sim *Simulator) Run() (*SimulationResult, error) {
	if sim.ran {
		panic("Simulator.Run called twice")
	}
	sim.ran = true

	logrus.Infof("Simulation started: mode=%s n_shifts=%d k=%d lambda_c=%g mu=%g horizon=%g seed=%d",
		sim.cfg.Mode, sim.cfg.NShifts, sim.cfg.K, sim.cfg.LambdaC, sim.cfg.Mu, sim.cfg.Horizon, int64(sim.key))

	for {
		ev, ok := sim.clock.Advance()
		if !ok {
			break
		}
		logrus.Debugf("[t=%.6f] Executing %T", sim.clock.Now(), ev)
		if err := ev.Execute(sim); err != nil {
			return nil, fmt.Errorf("simulation aborted at t=%.6f: %w", sim.clock.Now(), err)
		}
		if sim.cfg.TrackOccupancy {
			sim.occupancy = append(sim.occupancy, sim.sampleOccupancy())
		}
	}

	res := &SimulationResult{
		Key:           sim.key,
		MarketKey:     sim.marketKey,
		Config:        sim.cfg,
		Horizon:       sim.cfg.Horizon,
		Bookings:      sim.bookings,
		Arrivals:      sim.records,
		Shifts:        sim.store.Snapshot(),
		TotalArrivals: len(sim.records),
		Occupancy:     sim.occupancy,
		Trace:         sim.trace,
	}
	logrus.Infof("Simulation ended: %d arrivals, %d bookings (rate %.4f)",
		res.TotalArrivals, res.TotalBookings(), res.BookingRate())
	return res, nil
}

// Now returns the current simulated time.
func (sim *Simulator) Now() float64 { return sim.clock.Now() }

// Store exposes the shift store for inspection.
func (sim *Simulator) Store() *ShiftStore { return sim.store }

func (sim *Simulator) handleArrival(e *ArrivalEvent) error {
	now := e.time
	nurse := Nurse{ID: e.NurseID, ArrivedAt: now, Arm: sim.assigner.NurseArm()}

	next := now + sim.arrivals.SampleGap(sim.arrivalRNG)
	if err := sim.clock.Schedule(&ArrivalEvent{time: next, NurseID: sim.nextNurseID}); err != nil {
		return err
	}
	sim.nextNurseID++

	available := sim.store.AvailableShifts(now)
	outcome := sim.choice.Choose(available, nurse)
	if sim.trace != nil {
		sim.trace.RecordChoice(toChoiceRecord(nurse, len(available), outcome))
	}

	record := ArrivalRecord{Time: now, NurseID: nurse.ID, NurseArm: nurse.Arm, BookingIndex: -1}
	if !outcome.Booked() {
		sim.records = append(sim.records, record)
		return nil
	}

	chosen := outcome.Chosen()
	duration := workload.ServiceDuration(sim.serviceRNG, sim.cfg.Mu)
	if err := sim.store.Book(chosen.Shift.ID, now, duration); err != nil {
		return err
	}
	booked, _ := sim.store.Shift(chosen.Shift.ID)
	if err := sim.clock.Schedule(&ReleaseEvent{time: booked.AvailableAt, ShiftID: booked.ID}); err != nil {
		return err
	}

	record.BookingIndex = len(sim.bookings)
	sim.records = append(sim.records, record)
	sim.bookings = append(sim.bookings, BookingEvent{
		Time:                 now,
		NurseID:              nurse.ID,
		ShiftID:              booked.ID,
		ShiftArm:             booked.Arm,
		NurseArm:             nurse.Arm,
		ChosenPosition:       outcome.ChosenPosition,
		ConsiderationSetSize: len(outcome.Candidates),
		ShiftUtility:         booked.BaseUtility,
		ReleaseAt:            booked.AvailableAt,
	})
	logrus.Debugf("[t=%.6f] nurse %d booked shift %d (position %d, release at %.6f)",
		now, nurse.ID, booked.ID, outcome.ChosenPosition, booked.AvailableAt)
	return nil
}

func (sim *Simulator) sampleOccupancy() OccupancySample {
	return OccupancySample{
		Time:          sim.clock.Now(),
		Open:          sim.store.OpenCount(),
		Filled:        sim.store.FilledCount(),
		FilledTreated: sim.store.FilledTreatedCount(),
	}
}

func toChoiceRecord(nurse Nurse, available int, outcome ChoiceOutcome) trace.ChoiceRecord {
	rec := trace.ChoiceRecord{
		NurseID:        nurse.ID,
		Clock:          nurse.ArrivedAt,
		NurseArm:       nurse.Arm.String(),
		Available:      available,
		Candidates:     make([]trace.CandidateScore, len(outcome.Candidates)),
		NoChoiceProb:   outcome.NoChoiceProb,
		ChosenPosition: outcome.ChosenPosition,
		ChosenShift:    trace.NoChoice,
	}
	for i, cand := range outcome.Candidates {
		score := trace.CandidateScore{
			ShiftID: cand.Shift.ID,
			Utility: cand.Utility,
			Boosted: cand.Boosted,
			Treated: cand.Shift.Arm == Treated,
		}
		if i < len(outcome.Probabilities) {
			score.Probability = outcome.Probabilities[i]
		}
		rec.Candidates[i] = score
	}
	if outcome.Booked() {
		rec.ChosenShift = outcome.Chosen().Shift.ID
	}
	return rec
}
