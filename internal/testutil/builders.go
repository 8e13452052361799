package testutil

import (
	"fmt"

	"github.com/roach88/expo/internal/ir"
)

// UnitOption customizes a unit built by NewUnit.
type UnitOption func(*ir.Unit)

// NewUnit builds a unit with neutral attributes: low complexity, proximity 5,
// not accessible, one standard seat. Options override them.
func NewUnit(id string, opts ...UnitOption) ir.Unit {
	u := ir.Unit{
		ID:                 id,
		Label:              id,
		Section:            "main",
		Complexity:         ir.ComplexityLow,
		ProximityToKitchen: 5,
		Seats:              []ir.Seat{{Number: 1, VIPStatus: ir.VIPStatusStandard}},
	}
	for _, opt := range opts {
		opt(&u)
	}
	return u
}

// Proximity sets ProximityToKitchen.
func Proximity(p int) UnitOption {
	return func(u *ir.Unit) { u.ProximityToKitchen = p }
}

// Complexity sets the complexity tier.
func Complexity(c ir.Complexity) UnitOption {
	return func(u *ir.Unit) { u.Complexity = c }
}

// High marks the unit high complexity.
func High() UnitOption {
	return Complexity(ir.ComplexityHigh)
}

// VIP adds a seat carrying status.
func VIP(status string) UnitOption {
	return func(u *ir.Unit) {
		u.Seats = append(u.Seats, ir.Seat{Number: len(u.Seats) + 1, VIPStatus: status})
	}
}

// Accessible marks the unit accessibility friendly.
func Accessible() UnitOption {
	return func(u *ir.Unit) { u.AccessibilityFriendly = true }
}

// OwnedBy sets CaptainID.
func OwnedBy(captainID string) UnitOption {
	return func(u *ir.Unit) { u.CaptainID = captainID }
}

// Index builds a registry from units.
func Index(units ...ir.Unit) ir.UnitIndex {
	return ir.NewUnitIndex(units)
}

// SequenceIDs returns "T1".."Tn".
func SequenceIDs(n int) ir.Sequence {
	seq := make(ir.Sequence, n)
	for i := range seq {
		seq[i] = fmt.Sprintf("T%d", i+1)
	}
	return seq
}

// PlainUnits builds neutral units for ids, keyed by id.
func PlainUnits(ids []string) ir.UnitIndex {
	out := make(ir.UnitIndex, len(ids))
	for _, id := range ids {
		out[id] = NewUnit(id)
	}
	return out
}

// NewFloor builds a floor with one captain owning every unit, in order.
// The captain's firing sequence is left empty.
func NewFloor(captainID string, units ...ir.Unit) *ir.Floor {
	c := ir.Captain{ID: captainID, Name: captainID}
	owned := make([]ir.Unit, len(units))
	for i, u := range units {
		u.CaptainID = captainID
		owned[i] = u
		c.TableIDs = append(c.TableIDs, u.ID)
	}
	return &ir.Floor{Units: owned, Captains: []ir.Captain{c}}
}
