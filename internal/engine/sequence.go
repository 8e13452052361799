package engine

import (
	"fmt"
	"slices"

	"github.com/roach88/expo/internal/ir"
)

// Move swaps unitID with its immediate neighbour in dir and returns the new
// sequence. The input is never modified.
//
// Moving the first unit up or the last unit down is a no-op that returns the
// unchanged sequence together with an OUT_OF_BOUNDS error. A unit that is not
// in the sequence yields UNKNOWN_UNIT.
func Move(seq ir.Sequence, unitID string, dir ir.Direction) (ir.Sequence, error) {
	idx := seq.IndexOf(unitID)
	if idx < 0 {
		return seq.Clone(), NewUnknownUnitError(unitID)
	}

	var target int
	switch dir {
	case ir.DirectionUp:
		target = idx - 1
	case ir.DirectionDown:
		target = idx + 1
	default:
		return seq.Clone(), &SequenceError{
			Code:    ErrCodeOutOfBounds,
			Message: fmt.Sprintf("unknown direction %q", dir),
			UnitID:  unitID,
		}
	}

	if target < 0 || target >= len(seq) {
		return seq.Clone(), NewOutOfBoundsError(unitID, idx, len(seq), string(dir))
	}

	out := seq.Clone()
	out[idx], out[target] = out[target], out[idx]
	return out, nil
}

// CheckPermutation verifies that got holds exactly the ids of want: same
// multiset, no duplicates, no omissions. Order is ignored.
func CheckPermutation(want, got []string) error {
	if len(want) != len(got) {
		return NewInvariantViolationError(
			fmt.Sprintf("length changed from %d to %d", len(want), len(got)))
	}

	counts := make(map[string]int, len(want))
	for _, id := range want {
		counts[id]++
	}
	for _, id := range got {
		counts[id]--
		if counts[id] < 0 {
			return NewInvariantViolationError(fmt.Sprintf("unit %s duplicated or foreign", id))
		}
	}
	for id, n := range counts {
		if n != 0 {
			return NewInvariantViolationError(fmt.Sprintf("unit %s dropped", id))
		}
	}
	return nil
}

// hasDuplicates reports whether ids repeats any id.
func hasDuplicates(ids []string) bool {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}

// removeID deletes the first occurrence of id. The caller owns seq.
func removeID(seq ir.Sequence, id string) ir.Sequence {
	idx := seq.IndexOf(id)
	if idx < 0 {
		return seq
	}
	return slices.Delete(seq, idx, idx+1)
}

// insertAt inserts id at idx, clamping idx into [0, len(seq)]. The caller owns seq.
func insertAt(seq ir.Sequence, idx int, id string) ir.Sequence {
	idx = max(0, min(idx, len(seq)))
	return slices.Insert(seq, idx, id)
}
