// Defines the marketplace entities: shifts (the supply side, long-lived) and
// nurses (the demand side, ephemeral), plus the experiment arm they carry.

package sim

// Arm is the experiment arm carried by a shift (listing randomization) or a
// nurse (customer randomization).
type Arm int

const (
	// Unassigned marks an entity that carries no arm under the active mode.
	Unassigned Arm = iota
	Control
	Treated
)

func (a Arm) String() string {
	switch a {
	case Control:
		return "control"
	case Treated:
		return "treated"
	default:
		return "unassigned"
	}
}

// ShiftState is the booking state of a shift.
type ShiftState string

const (
	ShiftOpen   ShiftState = "open"
	ShiftFilled ShiftState = "filled"
)

// Shift is a bookable slot. Created once per run, cycles Open↔Filled, never destroyed.
type Shift struct {
	ID          int
	BaseUtility float64
	Arm         Arm // fixed at creation; Unassigned under customer randomization
	// Boosted marks the subset a treated nurse sees promoted under customer
	// randomization. Under listing randomization it mirrors Arm == Treated.
	Boosted     bool
	State       ShiftState
	AvailableAt float64 // reopening time; meaningful only while Filled
}

// IsOpen reports whether the shift can be booked.
func (s Shift) IsOpen() bool {
	return s.State == ShiftOpen
}

// Nurse is an arriving customer. Created by an arrival event and discarded
// once its choice is resolved.
type Nurse struct {
	ID        int
	ArrivedAt float64
	Arm       Arm // Unassigned under listing randomization
}
